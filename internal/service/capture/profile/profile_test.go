package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/capture-server/internal/service/contract"
)

func validProfile(id contract.RetailerID) *Profile {
	return &Profile{
		ID:    id,
		Name:  "테스트 소매점",
		Hosts: []string{"example.com"},
		ProductClassify: ClassifyRules{
			URLKeywords: []string{"/p/"},
		},
	}
}

func TestProfile_Validate(t *testing.T) {
	t.Run("유효한 프로파일", func(t *testing.T) {
		assert.NoError(t, validProfile("test").Validate())
	})

	t.Run("빈 소매점 ID", func(t *testing.T) {
		p := validProfile("")
		assert.Error(t, p.Validate())
	})

	t.Run("빈 호스트 목록", func(t *testing.T) {
		p := validProfile("test")
		p.Hosts = nil
		assert.Error(t, p.Validate())
	})

	t.Run("분류 규칙 없음", func(t *testing.T) {
		p := validProfile("test")
		p.ProductClassify = ClassifyRules{}
		assert.Error(t, p.Validate())
	})

	t.Run("잘못된 SKU 정규식", func(t *testing.T) {
		p := validProfile("test")
		p.Product.SKUPattern = `([`
		assert.Error(t, p.Validate())
	})

	t.Run("셀렉터가 비어있는 규칙", func(t *testing.T) {
		p := validProfile("test")
		p.Product.Price = []TextRule{{Pattern: `(\d+)`}}
		assert.Error(t, p.Validate())
	})
}

func TestTextRule_CompiledPattern(t *testing.T) {
	re, err := TextRule{Pattern: `(\d+)`}.CompiledPattern()
	require.NoError(t, err)
	require.NotNil(t, re)
	assert.Equal(t, []string{"123", "123"}, re.FindStringSubmatch("abc123"))

	re, err = TextRule{}.CompiledPattern()
	require.NoError(t, err)
	assert.Nil(t, re, "Pattern이 비어있으면 nil을 반환해야 합니다")

	_, err = TextRule{Pattern: `([`}.CompiledPattern()
	assert.Error(t, err)
}

func TestProfile_MatchesHost(t *testing.T) {
	p := validProfile("test")
	p.Hosts = []string{"homedepot.com"}

	assert.True(t, p.MatchesHost("homedepot.com"))
	assert.True(t, p.MatchesHost("www.homedepot.com"))
	assert.False(t, p.MatchesHost("fakehomedepot.com"), "접미사 우회 도메인은 일치로 판정하지 않아야 합니다")
	assert.False(t, p.MatchesHost("lowes.com"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	p := validProfile("homedepot")
	p.Hosts = []string{"homedepot.com"}
	require.NoError(t, r.Register(p))

	t.Run("등록된 프로파일 조회", func(t *testing.T) {
		got, err := r.Get("homedepot")
		require.NoError(t, err)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("미등록 프로파일 조회", func(t *testing.T) {
		_, err := r.Get("없는소매점")
		assert.Error(t, err)
	})

	t.Run("중복 등록 거부", func(t *testing.T) {
		assert.Error(t, r.Register(validProfile("homedepot")))
	})

	t.Run("호스트로 프로파일 탐색", func(t *testing.T) {
		assert.NotNil(t, r.FindByHost("www.homedepot.com"))
		assert.Nil(t, r.FindByHost("unknown.example.com"))
	})

	t.Run("nil 프로파일 등록 거부", func(t *testing.T) {
		assert.Error(t, r.Register(nil))
	})

	t.Run("전체 프로파일 조회", func(t *testing.T) {
		assert.Len(t, r.All(), 1)
	})

	t.Run("테스트용 초기화", func(t *testing.T) {
		r.ClearForTest()
		assert.Empty(t, r.All())
	})
}

package inject

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/capture-server/internal/service/capture/page/htmldoc"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		ID:    "testmart",
		Name:  "Test Mart",
		Hosts: []string{"testmart.com"},
		ProductClassify: profile.ClassifyRules{
			URLKeywords: []string{"/p/"},
		},
		CTA: profile.CTARules{
			ProductAnchors: []string{".add-to-cart-button"},
			CartAnchors:    []string{".checkout-button"},
			AnchorKeywords: []string{"add to cart", "checkout"},
			ProductLabel:   "Buy from My Site",
			CartLabel:      "Checkout on My Site",
		},
	}
}

func TestEnsureProductCTA(t *testing.T) {
	p := testProfile()

	t.Run("기준 요소 다음 형제로 삽입", func(t *testing.T) {
		doc := htmldoc.MustParse(
			`<html><body><div><button class="add-to-cart-button">Add to Cart</button></div></body></html>`,
			"https://www.testmart.com/p/1")

		injected, err := EnsureProductCTA(doc, p)
		require.NoError(t, err)
		assert.True(t, injected)

		anchor := doc.First(".add-to-cart-button")
		require.NotNil(t, anchor)

		next := anchor.NextSibling()
		require.NotNil(t, next, "컨트롤이 기준 요소의 바로 다음 형제여야 합니다")
		assert.True(t, next.HasClass(MarkerClass))
		assert.Equal(t, "Buy from My Site", next.Text())
	})

	t.Run("반복 호출해도 컨트롤은 하나만 존재", func(t *testing.T) {
		doc := htmldoc.MustParse(
			`<html><body><div><button class="add-to-cart-button">Add to Cart</button></div></body></html>`,
			"https://www.testmart.com/p/1")

		injected, err := EnsureProductCTA(doc, p)
		require.NoError(t, err)
		assert.True(t, injected)

		for range 3 {
			injected, err = EnsureProductCTA(doc, p)
			require.NoError(t, err)
			assert.False(t, injected)
		}

		assert.Len(t, doc.Find("."+MarkerClass), 1)
	})

	t.Run("셀렉터 실패 시 버튼 텍스트 키워드로 기준 요소 탐색", func(t *testing.T) {
		doc := htmldoc.MustParse(
			`<html><body><div><button class="buy-box-btn">Add To Cart Now</button></div></body></html>`,
			"https://www.testmart.com/p/1")

		injected, err := EnsureProductCTA(doc, p)
		require.NoError(t, err)
		assert.True(t, injected)

		anchor := doc.First(".buy-box-btn")
		require.NotNil(t, anchor)
		require.NotNil(t, anchor.NextSibling())
		assert.True(t, anchor.NextSibling().HasClass(MarkerClass))
	})

	t.Run("기준 요소가 전혀 없으면 화면 고정 위치로 추가", func(t *testing.T) {
		doc := htmldoc.MustParse(
			`<html><body><p>본문</p></body></html>`,
			"https://www.testmart.com/p/1")

		injected, err := EnsureProductCTA(doc, p)
		require.NoError(t, err)
		assert.True(t, injected)

		control := doc.First("." + MarkerClass)
		require.NotNil(t, control)
		assert.Contains(t, control.Attr("style"), "position:fixed")
	})
}

func TestEnsureCartCTA(t *testing.T) {
	p := testProfile()

	doc := htmldoc.MustParse(
		`<html><body><div><button class="checkout-button">Checkout</button></div></body></html>`,
		"https://www.testmart.com/cart")

	injected, err := EnsureCartCTA(doc, p)
	require.NoError(t, err)
	assert.True(t, injected)

	control := doc.First("." + MarkerClass)
	require.NotNil(t, control)
	assert.Equal(t, "Checkout on My Site", control.Text())

	// 상품 컨트롤의 멱등성 검사와 장바구니 컨트롤의 멱등성 검사는 서로 독립적이다.
	injected, err = EnsureCartCTA(doc, p)
	require.NoError(t, err)
	assert.False(t, injected)
}

func TestActivation(t *testing.T) {
	t.Run("정상 실행 후 Idle 복원", func(t *testing.T) {
		a := NewActivation()

		ran, err := a.TryRun(func() error { return nil })
		assert.True(t, ran)
		assert.NoError(t, err)
		assert.False(t, a.Busy())
	})

	t.Run("실행 중의 중복 활성화는 무시됨", func(t *testing.T) {
		a := NewActivation()
		started := make(chan struct{})
		release := make(chan struct{})
		done := make(chan struct{})

		go func() {
			defer close(done)
			_, _ = a.TryRun(func() error {
				close(started)
				<-release
				return nil
			})
		}()

		<-started
		ran, err := a.TryRun(func() error {
			t.Error("Busy 상태의 활성화가 실행되었습니다")
			return nil
		})
		assert.False(t, ran)
		assert.NoError(t, err)

		close(release)
		<-done
		assert.False(t, a.Busy())
	})

	t.Run("실패해도 Idle로 복원됨", func(t *testing.T) {
		a := NewActivation()

		ran, err := a.TryRun(func() error { return errors.New("추출 실패") })
		assert.True(t, ran)
		assert.Error(t, err)
		assert.False(t, a.Busy())
	})

	t.Run("패닉이 발생해도 Idle로 복원됨", func(t *testing.T) {
		a := NewActivation()

		assert.Panics(t, func() {
			_, _ = a.TryRun(func() error { panic("의도된 패닉") })
		})
		assert.False(t, a.Busy())
	})
}

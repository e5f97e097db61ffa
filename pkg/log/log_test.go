package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSensitiveData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"빈 문자열", "", ""},
		{"3자 이하 전체 마스킹", "abc", "***"},
		{"짧은 토큰 앞 4자만 표시", "abcdefgh", "abcd***"},
		{"긴 토큰 앞뒤 4자 표시", "1234567890abcdef", "1234***cdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskSensitiveData(tt.input))
		})
	}
}

func TestWithComponent(t *testing.T) {
	entry := WithComponent("capture")
	assert.Equal(t, "capture", entry.Data["component"])
}

func TestWithComponentAndFields(t *testing.T) {
	entry := WithComponentAndFields("bridge", Fields{"retailer": "homedepot"})
	assert.Equal(t, "bridge", entry.Data["component"])
	assert.Equal(t, "homedepot", entry.Data["retailer"])
}

func TestOptions_Validate(t *testing.T) {
	opts := Options{}
	assert.Error(t, opts.Validate(), "Name이 비어있으면 검증에 실패해야 합니다")

	opts = Options{Name: "capture-server", MaxAge: -1}
	assert.Error(t, opts.Validate())

	opts = Options{Name: "capture-server"}
	assert.NoError(t, opts.Validate())
}

func TestHook_LevelRouting(t *testing.T) {
	var mainBuf, criticalBuf, verboseBuf bytes.Buffer

	h := &hook{
		mainWriter:     &mainBuf,
		criticalWriter: &criticalBuf,
		verboseWriter:  &verboseBuf,
		formatter:      &logrus.TextFormatter{DisableTimestamp: true},
	}

	logger := logrus.New()

	fire := func(level Level, msg string) {
		entry := logrus.NewEntry(logger)
		entry.Level = level
		entry.Message = msg
		require.NoError(t, h.Fire(entry))
	}

	fire(InfoLevel, "정상 동작")
	fire(ErrorLevel, "추출 실패")
	fire(DebugLevel, "셀렉터 탐색")

	// Info는 메인에만, Error는 메인과 Critical에, Debug는 Verbose에만 기록되어야 합니다.
	assert.Contains(t, mainBuf.String(), "정상 동작")
	assert.Contains(t, mainBuf.String(), "추출 실패")
	assert.NotContains(t, mainBuf.String(), "셀렉터 탐색")

	assert.Contains(t, criticalBuf.String(), "추출 실패")
	assert.NotContains(t, criticalBuf.String(), "정상 동작")

	assert.Contains(t, verboseBuf.String(), "셀렉터 탐색")
	assert.NotContains(t, verboseBuf.String(), "추출 실패")
}

func TestHook_ClosedRejectsWrites(t *testing.T) {
	var buf bytes.Buffer

	h := &hook{
		mainWriter: &buf,
		formatter:  &logrus.TextFormatter{DisableTimestamp: true},
	}
	require.NoError(t, h.Close())

	entry := logrus.NewEntry(logrus.New())
	entry.Level = InfoLevel
	entry.Message = "종료 후 로그"
	require.NoError(t, h.Fire(entry))

	assert.Empty(t, buf.String())
}

package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ExecutionFailed, "추출 파이프라인이 실패하였습니다")

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, ExecutionFailed, appErr.Type())
	assert.Equal(t, "추출 파이프라인이 실패하였습니다", appErr.Message())
	assert.Contains(t, err.Error(), "[ExecutionFailed]")
}

func TestWrap(t *testing.T) {
	rootErr := errors.New("selector query failed")
	wrapped := Wrap(rootErr, ParsingFailed, "장바구니 품목 추출 실패")

	assert.True(t, Is(wrapped, ParsingFailed))
	assert.False(t, Is(wrapped, NotFound))
	assert.Equal(t, rootErr, RootCause(wrapped))
	assert.ErrorIs(t, wrapped, rootErr)
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, Internal, "무시되어야 합니다"))
	assert.Nil(t, Wrapf(nil, Internal, "무시되어야 합니다: %d", 1))
}

func TestIs_ChainedTypes(t *testing.T) {
	err := Wrap(New(NotFound, "요약 컨테이너를 찾을 수 없습니다"), ExecutionFailed, "합계 추출 실패")

	// 체인에 포함된 모든 타입이 탐지되어야 합니다.
	assert.True(t, Is(err, ExecutionFailed))
	assert.True(t, Is(err, NotFound))
	assert.False(t, Is(err, Timeout))
}

func TestFormat_VerboseOutput(t *testing.T) {
	err := Wrap(errors.New("root"), ExecutionFailed, "wrapper")

	verbose := fmt.Sprintf("%+v", err)
	assert.Contains(t, verbose, "Stack trace:")
	assert.Contains(t, verbose, "Caused by:")

	short := fmt.Sprintf("%s", err)
	assert.NotContains(t, short, "Stack trace:")
}

func TestErrorType_String(t *testing.T) {
	assert.Equal(t, "ExecutionFailed", ExecutionFailed.String())
	assert.Equal(t, "Unknown", Unknown.String())
	assert.Equal(t, "Unknown", ErrorType(999).String())
}

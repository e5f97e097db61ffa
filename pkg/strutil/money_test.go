package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"이미 정규화된 금액", "19.99", "19.99"},
		{"통화 기호와 천 단위 구분자", "$1,234.50", "1234.50"},
		{"공백이 섞인 표기", "$ 199.00", "199.00"},
		{"FREE 표기", "FREE", ZeroAmount},
		{"소문자 free", "free shipping", ZeroAmount},
		{"미정 금액", "---", PendingAmount},
		{"미정 금액이 섞인 텍스트", "Tax: ---", PendingAmount},
		{"금액 없음", "no price here", ""},
		{"빈 문자열", "", ""},
		{"정수 금액", "$199", "199"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractAmount(tt.text))
		})
	}
}

// TestExtractAmount_Idempotence 금액 정규화가 멱등적인지 확인합니다.
// 이미 정규화된 값을 다시 정규화해도 결과가 변하지 않아야 합니다.
func TestExtractAmount_Idempotence(t *testing.T) {
	inputs := []string{"19.99", "1234.50", "0.00", "199"}
	for _, input := range inputs {
		assert.Equal(t, input, ExtractAmount(ExtractAmount(input)))
	}
}

func TestExtractStrictAmount(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"단가 표기", "$9.98/ea", "9.98"},
		{"천 단위 구분자", "$1,299.00", "1299.00"},
		{"소수점 없는 숫자는 매칭하지 않음", "Qty: 3", ""},
		{"소수점 한 자리는 매칭하지 않음", "4.5 stars", ""},
		{"빈 문자열", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractStrictAmount(tt.text))
		})
	}
}

func TestParseAmount(t *testing.T) {
	assert.Equal(t, 19.99, ParseAmount("19.99"))
	assert.Equal(t, 0.0, ParseAmount(PendingAmount), "미정 금액은 산술 연산에서 0으로 취급되어야 합니다")
	assert.Equal(t, 0.0, ParseAmount("invalid"))
	assert.Equal(t, 0.0, ParseAmount(""))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "29.97", FormatAmount(29.97))
	assert.Equal(t, "9.90", FormatAmount(9.9))
	assert.Equal(t, "0.00", FormatAmount(0))
}

func TestNormalizeAmount(t *testing.T) {
	assert.Equal(t, "1234.50", NormalizeAmount("$1,234.50"))
	assert.Equal(t, ZeroAmount, NormalizeAmount("FREE"))
	assert.Equal(t, ZeroAmount, NormalizeAmount("unknown"))
	assert.Equal(t, PendingAmount, NormalizeAmount("---"), "미정 금액 표기는 정규화 과정에서 소실되면 안 됩니다")
}

func TestIsZeroAmount(t *testing.T) {
	assert.True(t, IsZeroAmount("0.00"))
	assert.True(t, IsZeroAmount(""))
	assert.False(t, IsZeroAmount("0.01"))
	assert.False(t, IsZeroAmount(PendingAmount), "미정 금액은 0이 아니라 '아직 모름'입니다")
}

func TestTrim(t *testing.T) {
	assert.Equal(t, "DEWALT 20V MAX", Trim("  DEWALT\n20V   MAX  "))
	assert.Equal(t, "", Trim("   "))
}

func TestHasAnyKeyword(t *testing.T) {
	assert.True(t, HasAnyKeyword("Out of Stock", "out of stock"))
	assert.True(t, HasAnyKeyword("SAVE $20 with promo", "promo"))
	assert.False(t, HasAnyKeyword("In Stock", "unavailable"))
	assert.False(t, HasAnyKeyword("anything", ""))
}

func TestStripPrefixes(t *testing.T) {
	assert.Equal(t, "12345", StripPrefixes("Item #12345", "Item #", "Item#"))
	assert.Equal(t, "ABC-1", StripPrefixes("Model #ABC-1", "Model #", "Model#"))
	assert.Equal(t, "12345", StripPrefixes("Item#12345", "Item #", "Item#"))
}

package strutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// ZeroAmount 금액 필드의 기본값입니다. 추출에 실패한 금액은 모두 이 값으로 정규화됩니다.
	ZeroAmount = "0.00"

	// PendingAmount 사이트가 아직 계산하지 않은 금액을 나타내는 문자 그대로의 표기입니다.
	// (예: 배송지 입력 전의 세금 항목)
	//
	// 이 값은 화면 표시 단계까지 원형 그대로 유지되어야 하며,
	// 산술 연산에 참여할 때에만 0으로 취급됩니다. ZeroAmount로 덮어쓰면 안 됩니다.
	PendingAmount = "---"
)

var (
	// 통화 기호와 천 단위 구분자가 섞인 텍스트에서 금액 부분만 찾아내는 정규식입니다.
	// "$1,234.50", "1234.5", "$ 199" 등의 표기를 허용합니다.
	amountRegexp = regexp.MustCompile(`(\d+[\d,]*\.?\d*)`)

	// 정수부와 소수부가 붙어 있는 두 자리 소수 금액("9.98")만을 엄격하게 매칭하는 정규식입니다.
	strictAmountRegexp = regexp.MustCompile(`(\d+)(\.\d{2})`)
)

// ExtractAmount 화면에 표시된 텍스트에서 금액을 찾아 십진수 문자열로 정규화하여 반환합니다.
//
// 정규화 규칙:
//   - 통화 기호($)와 천 단위 구분자(,)는 제거되고 소수점은 보존됩니다. ("$1,234.50" -> "1234.50")
//   - "FREE" 표기는 0원 청구를 의미하므로 ZeroAmount로 정규화됩니다.
//   - "---" 표기는 미정 금액이므로 PendingAmount 그대로 반환됩니다. (호출부가 보존 여부를 결정)
//   - 금액을 찾을 수 없으면 빈 문자열을 반환합니다. (기본값 적용은 호출부의 몫)
func ExtractAmount(text string) string {
	if text == "" {
		return ""
	}

	if HasAnyKeyword(text, "free") {
		return ZeroAmount
	}
	if strings.Contains(text, PendingAmount) {
		return PendingAmount
	}

	match := amountRegexp.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return ""
	}
	return match
}

// ExtractStrictAmount 소수점 이하 두 자리가 명시된 금액만을 추출합니다.
//
// 장바구니 요약 영역처럼 수량 등 금액이 아닌 숫자가 섞여 있는 텍스트에서는
// ExtractAmount의 느슨한 매칭이 오탐을 일으킬 수 있으므로,
// "12.34" 형태의 완전한 금액 표기만 허용하는 이 함수를 사용합니다.
func ExtractStrictAmount(text string) string {
	if text == "" {
		return ""
	}

	matches := strictAmountRegexp.FindStringSubmatch(strings.ReplaceAll(text, ",", ""))
	if matches == nil {
		return ""
	}
	return matches[1] + matches[2]
}

// ParseAmount 십진수 문자열 금액을 float64로 변환합니다.
// PendingAmount("---")는 산술 연산에서 0으로 취급되므로 0을 반환하며,
// 그 외의 파싱 불가능한 값도 안전하게 0으로 처리됩니다.
func ParseAmount(amount string) float64 {
	if amount == "" || amount == PendingAmount {
		return 0
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return 0
	}
	return value
}

// FormatAmount float64 금액을 소수점 이하 두 자리의 십진수 문자열로 변환합니다.
// 예: 29.965 -> "29.97" (반올림), 9.9 -> "9.90"
func FormatAmount(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

// NormalizeAmount 이미 추출된 금액 문자열을 표시용 표준 형태로 재정규화합니다.
// 멱등성이 보장됩니다. ("19.99" -> "19.99", "$1,234.50" -> "1234.50", "FREE" -> "0.00")
func NormalizeAmount(text string) string {
	amount := ExtractAmount(text)
	if amount == "" {
		return ZeroAmount
	}
	return amount
}

// IsZeroAmount 금액이 0(또는 미추출 상태)인지 확인합니다.
// PendingAmount는 '아직 모름'이지 0이 아니므로 false를 반환합니다.
func IsZeroAmount(amount string) bool {
	if amount == PendingAmount {
		return false
	}
	return ParseAmount(amount) == 0
}

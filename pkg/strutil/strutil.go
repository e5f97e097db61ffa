// Package strutil 화면에 표시된 문자열을 추출 파이프라인에서 사용할 수 있는
// 정규화된 형태로 변환하는 유틸리티 함수들을 제공합니다.
package strutil

import (
	"strings"
)

// Trim 문자열의 앞뒤 공백을 제거하고 연속된 공백(개행 포함)을 하나로 축약합니다.
// 예: "  DEWALT\n20V MAX  " -> "DEWALT 20V MAX"
func Trim(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

// HasAnyKeyword 문자열에 지정된 키워드 중 하나라도 포함되어 있는지 확인합니다.
// 비교는 대소문자를 구분하지 않습니다.
func HasAnyKeyword(s string, keywords ...string) bool {
	lower := strings.ToLower(s)
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// StripPrefixes 문자열에서 지정된 접두어들을 제거한 후 공백을 정리하여 반환합니다.
// 상품 번호 표기("Item #12345", "Model #ABC-1")에서 라벨 부분을 벗겨낼 때 사용됩니다.
func StripPrefixes(s string, prefixes ...string) string {
	for _, prefix := range prefixes {
		s = strings.ReplaceAll(s, prefix, "")
	}
	return Trim(s)
}

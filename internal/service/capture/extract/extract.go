// Package extract 사이트 프로파일의 선언적 규칙을 해석하여 페이지에서 필드 값을
// 추출하는 범용 필드 추출기를 제공합니다.
//
// 모든 추출기는 전함수(Total Function)입니다. 호스팅된 페이지의 구조는 신뢰할 수 없으므로,
// 어떤 전략도 일치하지 않으면 예외 대신 문서화된 안전한 기본값(빈 문자열, "0.00", "1",
// 빈 컬렉션)을 반환합니다. 개별 필드의 추출 실패는 에러가 아닙니다.
package extract

import (
	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/pkg/strutil"
)

// Scope 추출 규칙을 적용할 수 있는 탐색 범위입니다.
// 문서 전체(page.Document)와 개별 요소(page.Element) 모두 이 인터페이스를 만족합니다.
type Scope interface {
	Find(selector string) []page.Element
	First(selector string) page.Element
}

// Text 규칙 하나를 적용하여 텍스트 값을 추출합니다. 실패 시 빈 문자열을 반환합니다.
func Text(s Scope, rule profile.TextRule) string {
	el := s.First(rule.Selector)
	if el == nil {
		return ""
	}

	if rule.Value != "" {
		return rule.Value
	}

	var raw string
	if rule.Attr != "" {
		raw = el.Attr(rule.Attr)
	} else {
		raw = el.Text()
	}

	raw = strutil.Trim(raw)
	raw = strutil.StripPrefixes(raw, rule.StripPrefixes...)

	if re, err := rule.CompiledPattern(); err == nil && re != nil {
		m := re.FindStringSubmatch(raw)
		if len(m) < 2 {
			return ""
		}
		raw = m[1]
	}

	return strutil.Trim(raw)
}

// FirstText 규칙 목록을 순서대로 적용하여 첫 번째 비어있지 않은 값을 반환합니다.
func FirstText(s Scope, rules []profile.TextRule) string {
	for _, rule := range rules {
		if v := Text(s, rule); v != "" {
			return v
		}
	}
	return ""
}

// FirstAmount 규칙 목록을 순서대로 적용하여 첫 번째로 금액이 파싱되는 값을 반환합니다.
//
// 각 규칙에 대해 일치하는 모든 요소를 순회하며, 통화 기호와 천 단위 구분자를 제거한
// 금액 문자열을 반환합니다. 실패 시 빈 문자열을 반환합니다.
func FirstAmount(s Scope, rules []profile.TextRule) string {
	for _, rule := range rules {
		for _, el := range s.Find(rule.Selector) {
			var raw string
			if rule.Attr != "" {
				raw = el.Attr(rule.Attr)
			} else {
				raw = el.Text()
			}
			if amount := strutil.ExtractAmount(raw); amount != "" {
				return amount
			}
		}
	}
	return ""
}

// Package classify 현재 문서가 상품 페이지인지 장바구니 페이지인지 판별합니다.
//
// 판별은 프로파일의 선언적 규칙(URL 키워드, 마커 요소)만으로 수행되며,
// 소매점별 분기 코드는 존재하지 않습니다.
package classify

import (
	"strings"

	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
)

// PageType 페이지 분류의 결과입니다.
type PageType int

const (
	// PageTypeUnclassified 아직 분류가 수행되지 않은 상태 (제로 값)
	PageTypeUnclassified PageType = iota

	// PageTypeProduct 상품 상세 페이지
	PageTypeProduct

	// PageTypeCart 장바구니/결제 페이지
	PageTypeCart

	// PageTypeNeither 상품도 장바구니도 아닌 페이지 (추출 대상 아님)
	PageTypeNeither
)

func (t PageType) String() string {
	switch t {
	case PageTypeProduct:
		return "product"
	case PageTypeCart:
		return "cart"
	case PageTypeNeither:
		return "neither"
	default:
		return "unclassified"
	}
}

// Classify 문서를 프로파일의 분류 규칙으로 판별합니다.
//
// 장바구니 규칙을 먼저 검사합니다. 장바구니 페이지는 상품 추천 영역 등으로 인해
// 상품 규칙에도 걸릴 수 있지만, 그 반대는 드물기 때문입니다.
func Classify(doc page.Document, p *profile.Profile) PageType {
	if matches(doc, p.CartClassify) {
		return PageTypeCart
	}
	if matches(doc, p.ProductClassify) {
		return PageTypeProduct
	}
	return PageTypeNeither
}

// matches URL 키워드 일치 또는 마커 요소 존재 중 하나라도 충족하면 true를 반환합니다.
func matches(doc page.Document, rules profile.ClassifyRules) bool {
	url := strings.ToLower(doc.URL())
	for _, keyword := range rules.URLKeywords {
		if keyword != "" && strings.Contains(url, strings.ToLower(keyword)) {
			return true
		}
	}

	for _, marker := range rules.Markers {
		if marker != "" && doc.First(marker) != nil {
			return true
		}
	}

	return false
}

package extract

import (
	"fmt"
	"regexp"

	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/pkg/strutil"
)

// CanonicalURL 페이지의 정규 URL을 추출합니다. 규칙이 모두 실패하면 현재 URL을 반환합니다.
func CanonicalURL(doc page.Document, rules []profile.TextRule) string {
	if u := FirstText(doc, rules); u != "" {
		return u
	}
	return doc.URL()
}

// SKU 상품의 SKU를 추출합니다.
//
// 전략 순서:
//  1. 정규 URL에 프로파일의 SKU 정규식 적용
//  2. 프로파일의 SKU 규칙 목록 (meta 태그 등)
//  3. ".html"로 끝나는 링크의 href에 SKULinkPattern 적용
//  4. 빈 문자열 (SKU 없는 상품도 허용되며, 다운스트림에서 URL 기반 식별로 대체)
func SKU(doc page.Document, p *profile.Profile) string {
	canonical := CanonicalURL(doc, p.Product.Canonical)

	if p.Product.SKUPattern != "" {
		if re, err := regexp.Compile(p.Product.SKUPattern); err == nil {
			if m := re.FindStringSubmatch(canonical); len(m) > 1 {
				return m[1]
			}
		}
	}

	if v := FirstText(doc, p.Product.SKU); v != "" {
		return v
	}

	if p.Cart.SKULinkPattern != "" {
		if re, err := regexp.Compile(p.Cart.SKULinkPattern); err == nil {
			for _, link := range doc.Find(`a[href*=".html"]`) {
				if m := re.FindStringSubmatch(link.Attr("href")); len(m) > 1 {
					return m[1]
				}
			}
		}
	}

	return ""
}

// SyntheticSKU 목록 컨텍스트에서 SKU를 찾지 못한 아이템에 부여할 합성 SKU를 생성합니다.
func SyntheticSKU(index int) string {
	return fmt.Sprintf("SKU-UNKNOWN-%d", index)
}

// Title 상품 제목을 추출합니다. 규칙이 모두 실패하면 문서의 title 요소를 사용합니다.
func Title(doc page.Document, rules []profile.TextRule) string {
	if v := FirstText(doc, rules); v != "" {
		return v
	}
	if el := doc.First("title"); el != nil {
		return strutil.Trim(el.Text())
	}
	return ""
}

// Brand 브랜드명을 추출합니다. 실패 시 빈 문자열을 반환합니다.
func Brand(doc page.Document, rules []profile.TextRule) string {
	return FirstText(doc, rules)
}

// Description 상품 설명을 추출합니다. 실패 시 빈 문자열을 반환합니다.
func Description(doc page.Document, rules []profile.TextRule) string {
	return FirstText(doc, rules)
}

// MainImage 대표 이미지 URL을 추출합니다. 실패 시 빈 문자열을 반환합니다.
func MainImage(doc page.Document, rules []profile.TextRule) string {
	return FirstText(doc, rules)
}

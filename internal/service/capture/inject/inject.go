// Package inject 분류된 페이지에 추출 시작 컨트롤(CTA)을 주입합니다.
//
// 주입은 멱등(Idempotent)입니다. 신호 루프가 같은 페이지를 반복 평가하더라도
// 마커 클래스 검사를 통해 컨트롤은 한 번만 삽입됩니다. 페이지 구조가 변경되어
// 기존 컨트롤이 사라진 경우에만 다시 삽입됩니다.
package inject

import (
	"fmt"
	"html"
	"strings"

	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
)

const (
	// MarkerClass 주입된 모든 컨트롤이 공유하는 마커 클래스입니다.
	// 멱등성 검사와 기준 요소 탐색의 자기 제외에 사용됩니다.
	MarkerClass = "capture-cta"

	productMarkerClass = "capture-cta-product"
	cartMarkerClass    = "capture-cta-cart"

	defaultProductLabel = "Buy from My Site"
	defaultCartLabel    = "Checkout on My Site"
)

// EnsureProductCTA 상품 페이지에 상품 컨트롤이 존재함을 보장합니다.
// 새로 삽입한 경우 true를 반환합니다.
func EnsureProductCTA(doc page.EditableDocument, p *profile.Profile) (bool, error) {
	label := p.CTA.ProductLabel
	if label == "" {
		label = defaultProductLabel
	}
	return ensure(doc, p.CTA.ProductAnchors, p.CTA.AnchorKeywords, productMarkerClass, label)
}

// EnsureCartCTA 장바구니 페이지에 장바구니 컨트롤이 존재함을 보장합니다.
// 새로 삽입한 경우 true를 반환합니다.
func EnsureCartCTA(doc page.EditableDocument, p *profile.Profile) (bool, error) {
	label := p.CTA.CartLabel
	if label == "" {
		label = defaultCartLabel
	}
	return ensure(doc, p.CTA.CartAnchors, p.CTA.AnchorKeywords, cartMarkerClass, label)
}

func ensure(doc page.EditableDocument, anchors, keywords []string, marker, label string) (bool, error) {
	// 이미 주입된 컨트롤이 남아있으면 아무것도 하지 않는다.
	if doc.First("."+marker) != nil {
		return false, nil
	}

	if anchor := resolveAnchor(doc, anchors, keywords); anchor != nil {
		// 기준 요소의 바로 다음 형제가 컨트롤인지 한 번 더 확인한다.
		// (마커 검사가 실패하는 비정상 문서에서도 중복 삽입을 막기 위함)
		if next := anchor.NextSibling(); next != nil && next.HasClass(marker) {
			return false, nil
		}
		if err := doc.InsertAfter(anchor, controlHTML(marker, label, false)); err != nil {
			return false, err
		}
		return true, nil
	}

	// 기준 요소를 찾지 못하면 화면 고정 위치로 body에 추가한다.
	if err := doc.AppendToBody(controlHTML(marker, label, true)); err != nil {
		return false, err
	}
	return true, nil
}

// resolveAnchor 컨트롤을 삽입할 기준 요소를 찾습니다.
//
// 프로파일의 셀렉터 후보를 우선하고, 모두 실패하면 버튼/링크 텍스트에서
// 키워드를 탐색합니다. 이미 주입된 컨트롤 자신은 탐색에서 제외됩니다.
func resolveAnchor(doc page.Document, anchors, keywords []string) page.Element {
	for _, selector := range anchors {
		if el := doc.First(selector); el != nil {
			return el
		}
	}

	if len(keywords) == 0 {
		return nil
	}
	for _, el := range doc.Find("button, a") {
		if el.HasClass(MarkerClass) {
			continue
		}
		text := strings.ToLower(el.Text())
		for _, keyword := range keywords {
			if keyword != "" && strings.Contains(text, strings.ToLower(keyword)) {
				return el
			}
		}
	}

	return nil
}

func controlHTML(marker, label string, fixed bool) string {
	style := "display:block;width:100%;margin-top:8px;padding:12px 16px;" +
		"background-color:#1a73e8;color:#ffffff;border:none;border-radius:4px;" +
		"font-size:16px;font-weight:bold;cursor:pointer;"
	if fixed {
		style += "position:fixed;bottom:20px;right:20px;width:auto;z-index:2147483647;"
	}

	return fmt.Sprintf(
		`<button type="button" class="%s %s" style="%s">%s</button>`,
		MarkerClass, marker, style, html.EscapeString(label))
}

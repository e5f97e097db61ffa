package extract

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/pkg/strutil"
)

// Price 상품 가격을 추출합니다.
//
// 전략 순서:
//  1. 프로파일의 가격 셀렉터 목록 (화면에 표시된 가격이 선택 옵션을 가장 잘 반영)
//  2. 구조화 데이터(JSON-LD) 스크립트의 Product.offers
//  3. 기본값 "0.00"
func Price(doc page.Document, p *profile.Profile) string {
	if amount := FirstAmount(doc, p.Product.Price); amount != "" {
		return amount
	}

	if price := priceFromJSONLD(doc); price != "" {
		return price
	}

	return strutil.ZeroAmount
}

// priceFromJSONLD 페이지에 포함된 JSON-LD 구조화 데이터에서 가격을 추출합니다.
func priceFromJSONLD(doc page.Document) string {
	for _, node := range jsonLDProducts(doc) {
		price := node.Get("offers.price")
		if !price.Exists() {
			price = node.Get("offers.lowPrice")
		}
		if !price.Exists() {
			price = node.Get("offers.0.price")
		}
		if price.Exists() && price.String() != "" {
			return strutil.NormalizeAmount(price.String())
		}
	}
	return ""
}

// availabilityFromJSONLD JSON-LD 구조화 데이터의 offers.availability 값을 반환합니다.
func availabilityFromJSONLD(doc page.Document) string {
	for _, node := range jsonLDProducts(doc) {
		availability := node.Get("offers.availability")
		if !availability.Exists() {
			availability = node.Get("offers.0.availability")
		}
		if availability.Exists() {
			return availability.String()
		}
	}
	return ""
}

// jsonLDProducts 문서의 모든 JSON-LD 스크립트에서 Product 타입 노드를 수집합니다.
// 최상위가 배열이거나 @graph로 감싸진 형태도 지원합니다.
func jsonLDProducts(doc page.Document) []gjson.Result {
	var products []gjson.Result

	collect := func(node gjson.Result) {
		if strings.EqualFold(node.Get("@type").String(), "Product") {
			products = append(products, node)
		}
	}

	for _, script := range doc.Find(`script[type="application/ld+json"]`) {
		raw := script.Text()
		if !gjson.Valid(raw) {
			continue
		}

		root := gjson.Parse(raw)
		switch {
		case root.IsArray():
			root.ForEach(func(_, node gjson.Result) bool {
				collect(node)
				return true
			})
		case root.Get("@graph").IsArray():
			root.Get("@graph").ForEach(func(_, node gjson.Result) bool {
				collect(node)
				return true
			})
		default:
			collect(root)
		}
	}

	return products
}

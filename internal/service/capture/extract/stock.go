package extract

import (
	"strings"

	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	"github.com/darkkaiser/capture-server/pkg/strutil"
)

// Stock 상품의 재고 상태를 추출합니다.
//
// 전략 순서:
//  1. 재고 안내 메시지 요소의 키워드 분류
//  2. 주 구매 버튼의 비활성화 상태 (disabled/aria-disabled → 품절, 활성+표시 → 재고 있음)
//  3. JSON-LD 구조화 데이터의 offers.availability
//  4. 전체 페이지 텍스트 키워드 스캔
//  5. 기본값 "Check Availability"
func Stock(doc page.Document, rules profile.StockRules) contract.StockStatus {
	// 1. 재고 안내 메시지 요소
	for _, selector := range rules.Availability {
		for _, el := range doc.Find(selector) {
			if status, ok := classifyStockText(el.Text()); ok {
				return status
			}
		}
	}

	// 2. 주 구매 버튼의 상태
	for _, selector := range rules.PurchaseControl {
		el := doc.First(selector)
		if el == nil {
			continue
		}
		if el.Attr("disabled") != "" || el.Attr("aria-disabled") == "true" {
			return contract.StockStatusOutOfStock
		}
		if el.IsVisible() {
			return contract.StockStatusInStock
		}
	}

	// 3. JSON-LD availability
	if availability := availabilityFromJSONLD(doc); availability != "" {
		if strings.Contains(availability, "OutOfStock") {
			return contract.StockStatusOutOfStock
		}
		if strings.Contains(availability, "InStock") {
			return contract.StockStatusInStock
		}
	}

	// 4. 전체 페이지 텍스트 스캔
	if status, ok := classifyStockText(doc.Text()); ok {
		return status
	}

	return contract.StockStatusCheckAvailability
}

// classifyStockText 텍스트의 재고 관련 키워드를 분류합니다.
// 품절 키워드를 재고 키워드보다 먼저 검사합니다. ("out of stock"은 "in stock"을 포함하므로)
func classifyStockText(text string) (contract.StockStatus, bool) {
	if strutil.HasAnyKeyword(text, "out of stock", "unavailable", "sold out") {
		return contract.StockStatusOutOfStock, true
	}
	if strutil.HasAnyKeyword(text, "in stock", "available") {
		return contract.StockStatusInStock, true
	}
	return "", false
}

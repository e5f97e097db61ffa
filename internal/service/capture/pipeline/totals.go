package pipeline

import (
	"github.com/darkkaiser/capture-server/internal/service/capture/extract"
	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	"github.com/darkkaiser/capture-server/pkg/strutil"
)

// totalsBuilder 합계 필드의 채움 여부를 추적하며 단계별 보정을 수행합니다.
// 사이트가 보고한 값("0.00"으로 정규화된 FREE 포함)은 이후 단계에서 덮어쓰지 않습니다.
type totalsBuilder struct {
	totals contract.CartTotals
	filled map[string]bool
}

func newTotalsBuilder() *totalsBuilder {
	return &totalsBuilder{
		totals: contract.NewCartTotals(),
		filled: make(map[string]bool),
	}
}

func (b *totalsBuilder) set(field, amount string) {
	if amount == "" || b.filled[field] {
		return
	}
	b.filled[field] = true

	switch field {
	case "subtotal":
		b.totals.Subtotal = amount
	case "tax":
		b.totals.Tax = amount
	case "shipping":
		b.totals.Shipping = amount
	case "pickup":
		b.totals.Pickup = amount
	case "discount":
		b.totals.Discount = amount
	case "total":
		b.totals.Total = amount
	}
}

// reconcileTotals 장바구니 합계를 추출하고 누락된 필드를 보정합니다.
//
// 보정 순서:
//  1. 필드별 전용 셀렉터 (사이트 보고 값 우선, "FREE"는 "0.00", "---"는 그대로 유지)
//  2. 요약 행 키워드 스캔
//  3. 전체 페이지에서 키워드와 금액을 함께 포함하는 짧은 요소 탐색
//  4. 소계가 누락되었거나 0으로 보고된 경우 라인 아이템 소계 합산
//  5. 총계가 누락되었거나 0으로 보고된 경우 총계 = 소계 + 세금 + 배송비 - 할인
func reconcileTotals(doc page.Document, rules profile.TotalsRules, items []contract.CartItem) contract.CartTotals {
	b := newTotalsBuilder()

	// 1. 필드별 전용 셀렉터
	b.set("subtotal", extract.FirstAmount(doc, rules.Subtotal))
	b.set("tax", extract.FirstAmount(doc, rules.Tax))
	b.set("shipping", extract.FirstAmount(doc, rules.Shipping))
	b.set("pickup", extract.FirstAmount(doc, rules.Pickup))
	b.set("discount", extract.FirstAmount(doc, rules.Discount))
	b.set("total", extract.FirstAmount(doc, rules.Total))

	// 2. 요약 행 키워드 스캔
	for _, selector := range rules.SummaryRows {
		for _, row := range doc.Find(selector) {
			b.classifyRow(row, rules.RowAmount)
		}
	}

	// 3. 전체 페이지의 짧은 합계성 요소 탐색
	if !b.filled["subtotal"] || !b.filled["total"] {
		for _, el := range doc.Find(`[class*="total"], [class*="Total"], [class*="summary"], [class*="Summary"]`) {
			if len(el.Text()) >= 100 {
				continue
			}
			b.classifyRow(el, "")
		}
	}

	// 4. 라인 아이템 소계 합산
	//
	// 사이트가 "$0.00"을 보고한 경우는 추출 실패로 간주하고 재계산한다.
	// "---"는 0이 아니라 미정이므로 그대로 유지한다.
	if strutil.IsZeroAmount(b.totals.Subtotal) && len(items) > 0 {
		var sum float64
		for _, item := range items {
			sum += strutil.ParseAmount(item.Subtotal)
		}
		if sum > 0 {
			b.totals.Subtotal = strutil.FormatAmount(sum)
		}
	}

	// 5. 총계가 비어있거나 0으로 보고된 경우 소계에 부대 비용을 더해 재계산
	if strutil.IsZeroAmount(b.totals.Total) && !strutil.IsZeroAmount(b.totals.Subtotal) {
		total := strutil.ParseAmount(b.totals.Subtotal) +
			strutil.ParseAmount(b.totals.Tax) +
			strutil.ParseAmount(b.totals.Shipping) -
			strutil.ParseAmount(b.totals.Discount)
		b.totals.Total = strutil.FormatAmount(total)
	}

	return b.totals
}

// classifyRow 행 텍스트의 키워드로 합계 필드를 판별하고 금액을 채웁니다.
// "subtotal"은 "total"의 부분 문자열이므로 반드시 먼저 검사합니다.
func (b *totalsBuilder) classifyRow(row page.Element, amountSelector string) {
	text := row.Text()

	var amount string
	if amountSelector != "" {
		if amountEl := row.First(amountSelector); amountEl != nil {
			amount = strutil.ExtractAmount(amountEl.Text())
		}
	}
	if amount == "" {
		// "Subtotal (3 items) $29.97"처럼 수량이 섞인 행에서는 느슨한 매칭이
		// 수량을 금액으로 오인하므로 두 자리 소수 표기를 우선한다.
		amount = strutil.ExtractAmount(text)
		if amount != strutil.ZeroAmount && amount != strutil.PendingAmount {
			if strict := strutil.ExtractStrictAmount(text); strict != "" {
				amount = strict
			}
		}
	}
	if amount == "" {
		return
	}

	switch {
	case strutil.HasAnyKeyword(text, "subtotal"):
		b.set("subtotal", amount)
	case strutil.HasAnyKeyword(text, "estimated tax", "sales tax", "tax"):
		b.set("tax", amount)
	case strutil.HasAnyKeyword(text, "shipping", "delivery"):
		b.set("shipping", amount)
	case strutil.HasAnyKeyword(text, "pickup", "pick up"):
		b.set("pickup", amount)
	case strutil.HasAnyKeyword(text, "discount", "savings", "you saved"):
		b.set("discount", amount)
	case strutil.HasAnyKeyword(text, "order total", "estimated total", "total"):
		b.set("total", amount)
	}
}

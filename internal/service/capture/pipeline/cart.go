package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/darkkaiser/capture-server/internal/service/capture/extract"
	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	"github.com/darkkaiser/capture-server/pkg/strutil"
)

// Cart 장바구니 페이지 문서에서 장바구니 스냅샷을 추출합니다.
//
// 라인 아이템은 SKU 기준으로 중복이 제거되며, SKU를 찾지 못한 아이템은 위치
// 기반 합성 SKU를 부여받아 모두 유지됩니다. 합계는 사이트가 보고한 값을
// 우선하고, 누락된 필드는 요약 행 스캔과 아이템 합산으로 보정합니다.
func Cart(doc page.Document, p *profile.Profile) (cart *contract.CartData, err error) {
	defer recoverAsError("장바구니 추출", &err)

	cart = contract.NewCartData()
	cart.Retailer = p.ID
	cart.CartURL = doc.URL()

	seenSKUs := make(map[string]bool)
	for i, el := range findCartItems(doc, p.Cart.Container) {
		item := extractCartItem(el, &p.Cart)

		// SKU가 있는 아이템은 첫 번째 등장만 유지한다. SKU를 끝내 찾지 못한
		// 아이템은 서로 다른 상품일 수 있으므로 위치 기반 합성 SKU를 부여하여
		// 중복 제거에 걸리지 않도록 한다.
		if item.SKU == "" {
			item.SKU = extract.SyntheticSKU(i)
		}
		if seenSKUs[item.SKU] {
			continue
		}
		seenSKUs[item.SKU] = true

		cart.Items = append(cart.Items, item)
	}

	cart.Discounts = extractDiscounts(doc, p.DiscountBanners)
	cart.Discounts = append(cart.Discounts, itemDiscounts(cart.Items)...)
	cart.Totals = reconcileTotals(doc, p.Totals, cart.Items)

	return cart, nil
}

// findCartItems 컨테이너 셀렉터 후보를 순서대로 시도하여 라인 아이템 요소를 찾습니다.
// 첫 번째로 일치하는 셀렉터의 결과를 사용합니다.
func findCartItems(doc page.Document, containers []string) []page.Element {
	for _, selector := range containers {
		if items := doc.Find(selector); len(items) > 0 {
			return items
		}
	}
	return nil
}

// extractCartItem 라인 아이템 요소 하나에서 CartItem을 추출합니다.
func extractCartItem(el page.Element, rules *profile.CartItemRules) contract.CartItem {
	item := contract.CartItem{
		SKU:      extractItemSKU(el, rules),
		Title:    extract.FirstText(el, rules.Title),
		Brand:    extract.FirstText(el, rules.Brand),
		Image:    extractItemImage(el, rules.Image),
		Quantity: extractItemQuantity(el, rules.Quantity),
	}

	item.UnitPrice = extract.FirstAmount(el, rules.UnitPrice)
	item.OriginalPrice = extract.FirstAmount(el, rules.OriginalPrice)
	item.Savings = extract.FirstAmount(el, rules.Savings)
	item.Subtotal = extract.FirstAmount(el, rules.Subtotal)

	// 단가와 소계 중 한쪽만 추출된 경우 다른 쪽을 계산으로 채운다.
	// 사이트가 보고한 소계가 있으면 그 값이 우선하며 단가를 역산한다.
	switch {
	case item.UnitPrice == "" && item.Subtotal != "":
		item.UnitPrice = strutil.FormatAmount(strutil.ParseAmount(item.Subtotal) / float64(item.Quantity))
	case item.Subtotal == "" && item.UnitPrice != "":
		item.Subtotal = strutil.FormatAmount(strutil.ParseAmount(item.UnitPrice) * float64(item.Quantity))
	case item.UnitPrice == "" && item.Subtotal == "":
		item.UnitPrice = strutil.ZeroAmount
		item.Subtotal = strutil.ZeroAmount
	}

	item.SelectedOptions.Fulfillment = extract.FirstText(el, rules.Fulfillment)
	item.SelectedOptions.PickupLocation = extract.FirstText(el, rules.PickupLocation)
	item.SelectedOptions.PickupETA = extract.FirstText(el, rules.PickupETA)
	item.SelectedOptions.DeliveryZip = extract.FirstText(el, rules.DeliveryZip)
	item.SelectedOptions.Addons = extractItemAddons(el, rules.Addons)

	return item
}

// extractItemAddons 선택 상태의 부가 상품 이름을 수집합니다. (규칙당 하나, 중복 제거)
func extractItemAddons(el page.Element, rules []profile.TextRule) []string {
	var addons []string
	seen := make(map[string]bool)
	for _, rule := range rules {
		name := extract.Text(el, rule)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		addons = append(addons, name)
	}
	return addons
}

// extractItemSKU 라인 아이템의 SKU를 추출합니다. (규칙 목록 우선, 링크 href 패턴 보조)
func extractItemSKU(el page.Element, rules *profile.CartItemRules) string {
	if sku := extract.FirstText(el, rules.SKU); sku != "" {
		return sku
	}

	if rules.SKULinkPattern != "" {
		if re, err := regexp.Compile(rules.SKULinkPattern); err == nil {
			for _, link := range el.Find("a") {
				if m := re.FindStringSubmatch(link.Attr("href")); len(m) > 1 {
					return m[1]
				}
			}
		}
	}

	return ""
}

func extractItemImage(el page.Element, rules []profile.TextRule) string {
	if img := extract.FirstText(el, rules); img != "" {
		return img
	}
	if imgEl := el.First("img"); imgEl != nil {
		return imgEl.Attr("src")
	}
	return ""
}

// extractItemQuantity 라인 아이템의 수량을 추출합니다. 실패 시 1을 반환합니다.
func extractItemQuantity(el page.Element, rules []profile.TextRule) int {
	raw := extract.FirstText(el, rules)
	if raw == "" {
		if input := el.First("input, select"); input != nil {
			raw = input.Attr("value")
		}
	}

	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
		return n
	}
	return 1
}

// extractDiscounts 할인/프로모션 배너를 스캔하여 할인 항목을 수집합니다.
func extractDiscounts(doc page.Document, banners []string) []contract.Discount {
	discounts := []contract.Discount{}
	seen := make(map[string]bool)

	for _, selector := range banners {
		for _, el := range doc.Find(selector) {
			text := strutil.Trim(el.Text())
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true

			// 배너 텍스트에는 프로모션 코드("SAVE10")처럼 금액이 아닌 숫자가
			// 흔하므로 두 자리 소수 표기만 금액으로 인정한다.
			amount := strutil.ExtractStrictAmount(text)
			if amount == "" {
				amount = strutil.ZeroAmount
			}

			discounts = append(discounts, contract.Discount{
				Type:        classifyDiscountText(text),
				Description: text,
				Amount:      amount,
			})
		}
	}

	return discounts
}

// itemDiscounts 라인 아이템별 절약 금액을 아이템 단위 할인 항목으로 변환합니다.
func itemDiscounts(items []contract.CartItem) []contract.Discount {
	var discounts []contract.Discount
	for _, item := range items {
		if item.Savings == "" || strutil.IsZeroAmount(item.Savings) {
			continue
		}
		discounts = append(discounts, contract.Discount{
			Type:        contract.DiscountTypeItem,
			Description: item.Title,
			Amount:      item.Savings,
		})
	}
	return discounts
}

func classifyDiscountText(text string) contract.DiscountType {
	switch {
	case strutil.HasAnyKeyword(text, "promo", "coupon", "code"):
		return contract.DiscountTypePromo
	case strutil.HasAnyKeyword(text, "bulk", "quantity"):
		return contract.DiscountTypeBulk
	default:
		return contract.DiscountTypeCart
	}
}

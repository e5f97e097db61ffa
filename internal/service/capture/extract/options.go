package extract

import (
	"fmt"
	"strings"

	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	"github.com/darkkaiser/capture-server/pkg/strutil"
)

// Options 사용자가 선택한 옵션(배송 방식, 부가 상품, 변형)을 추출합니다.
//
// 체크된 라디오/체크박스와 선택 상태로 표시된 스와치 컨트롤을 연결된 레이블 텍스트로 분류합니다.
//   - 배송 지시 텍스트(ship/delivery/pick up/store)는 fulfillment로 별도 기록
//   - "Plan", "Warranty", "Year" 또는 통화 기호를 포함하면 addon
//   - 그 외는 variant
//
// addon과 variant 집합은 정확한 텍스트 기준으로 중복이 제거됩니다.
func Options(doc page.Document, rules profile.OptionRules) contract.SelectedOptions {
	options := contract.SelectedOptions{
		Addons:   []string{},
		Variants: []string{},
	}

	// 1. 선택된 배송 방식
	for _, selector := range rules.FulfillmentSelected {
		if el := doc.First(selector); el != nil {
			if text := strutil.Trim(el.Text()); text != "" {
				options.Fulfillment = text
				break
			}
		}
	}

	seenAddons := make(map[string]bool)
	seenVariants := make(map[string]bool)

	addAddon := func(text string) {
		if !seenAddons[text] {
			seenAddons[text] = true
			options.Addons = append(options.Addons, text)
		}
	}
	addVariant := func(text string) {
		if !seenVariants[text] {
			seenVariants[text] = true
			options.Variants = append(options.Variants, text)
		}
	}

	// 2. 체크된 라디오/체크박스 입력의 레이블 분류
	for _, input := range doc.Find(`input[type="radio"]:checked, input[type="checkbox"]:checked`) {
		text := labelTextFor(doc, input)
		if text == "" {
			continue
		}

		if isFulfillmentText(text) {
			continue // 배송 방식은 이미 별도로 기록됨
		}

		if isAddonText(text) {
			addAddon(text)
		} else if input.Attr("name") != "fulfillment" {
			addVariant(text)
		}
	}

	// 3. 선택 상태의 스와치 컨트롤 (색상/크기 변형은 버튼으로 표현되는 경우가 많음)
	for _, selector := range rules.SwatchSelectors {
		for _, sw := range doc.Find(selector) {
			if sw.TagName() == "input" {
				continue // 위에서 처리됨
			}
			text := strutil.Trim(sw.Text())
			if text == "" {
				text = strutil.Trim(sw.Attr("aria-label"))
			}
			if text == "" || isFulfillmentText(text) {
				continue
			}
			addVariant(text)
		}
	}

	return options
}

// labelTextFor 입력 요소에 연결된 레이블의 텍스트를 찾습니다.
// label[for=id]를 우선하고, 없으면 부모 요소의 텍스트를 사용합니다.
func labelTextFor(doc page.Document, input page.Element) string {
	if id := input.Attr("id"); id != "" {
		if label := doc.First(fmt.Sprintf(`label[for="%s"]`, id)); label != nil {
			if text := strutil.Trim(label.Text()); text != "" {
				return text
			}
		}
	}
	if parent := input.Parent(); parent != nil {
		return strutil.Trim(parent.Text())
	}
	return ""
}

// isFulfillmentText 텍스트가 배송/수령 방식 지시자인지 확인합니다.
func isFulfillmentText(text string) bool {
	return strutil.HasAnyKeyword(text, "ship", "delivery", "pick up", "store")
}

// isAddonText 텍스트가 부가 상품(보증 플랜 등)으로 보이는지 확인합니다.
func isAddonText(text string) bool {
	return strings.Contains(text, "Plan") ||
		strings.Contains(text, "Warranty") ||
		strings.Contains(text, "Year") ||
		strings.Contains(text, "$")
}

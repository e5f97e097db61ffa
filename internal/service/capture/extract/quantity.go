package extract

import (
	"strconv"
	"strings"

	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
)

// Quantity 사용자가 선택한 구매 수량을 추출합니다.
//
// 전략 순서:
//  1. aria-valuenow 속성을 가진 스텝퍼 입력
//  2. pattern="[0-9]*"로 제한된 텍스트 입력
//  3. 프로파일의 소매점 고유 스텝퍼 셀렉터 후보 목록
//  4. 배송 옵션 영역 내부의 숫자 입력
//  5. 수량 지시 속성을 가진 화면 표시 입력 중 값이 [1,999] 범위인 것
//  6. name 또는 aria-label에 "quantity"/"qty"가 포함된 입력
//  7. 기본값 "1"
func Quantity(doc page.Document, rules profile.QuantityRules) string {
	// 1. aria-valuenow 스텝퍼
	if el := doc.First("input[aria-valuenow]"); el != nil {
		if v := inputValue(el); isPositiveInt(v) {
			return v
		}
	}

	// 2. pattern 제한 텍스트 입력
	if el := doc.First(`input[type="text"][pattern="[0-9]*"]`); el != nil {
		if v := inputValue(el); isPositiveInt(v) {
			return v
		}
	}

	// 3. 소매점 고유 스텝퍼 셀렉터
	for _, selector := range rules.StepperSelectors {
		if el := doc.First(selector); el != nil {
			if v := inputValue(el); isPositiveInt(v) {
				return v
			}
		}
	}

	// 4. 배송 옵션 영역 내부의 입력
	if rules.FulfillmentContainer != "" {
		if container := doc.First(rules.FulfillmentContainer); container != nil {
			for _, el := range container.Find(`input[type="text"], input[type="number"]`) {
				if v := inputValue(el); isQuantityRange(v) {
					return v
				}
			}
		}
	}

	// 5. 수량 지시 속성을 가진 화면 표시 입력 전수 조사
	for _, el := range doc.Find("input") {
		if !el.IsVisible() {
			continue
		}
		v := inputValue(el)
		if !isQuantityRange(v) {
			continue
		}
		if hasQuantityAttributes(el) {
			return v
		}
	}

	// 6. name/aria-label 기반 탐색
	if el := doc.First(`input[name*="quantity"], input[name*="qty"], input[aria-label*="quantity"], input[aria-label*="Quantity"]`); el != nil {
		if v := inputValue(el); isPositiveInt(v) {
			return v
		}
	}

	return "1"
}

// inputValue 입력 요소의 현재 값을 반환합니다. (value 속성 우선, aria-valuenow 보조)
func inputValue(el page.Element) string {
	if v := el.Attr("value"); v != "" {
		return v
	}
	return el.Attr("aria-valuenow")
}

func isPositiveInt(v string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	return err == nil && n > 0
}

// isQuantityRange 값이 수량으로 보이는 [1,999] 범위의 정수인지 확인합니다.
func isQuantityRange(v string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	return err == nil && n > 0 && n < 1000
}

// hasQuantityAttributes 입력이 수량 지시 속성을 하나 이상 가지는지 확인합니다.
func hasQuantityAttributes(el page.Element) bool {
	if el.Attr("aria-valuemin") != "" || el.Attr("aria-valuemax") != "" {
		return true
	}
	if el.Attr("pattern") == "[0-9]*" {
		return true
	}
	class := strings.ToLower(el.Attr("class"))
	return strings.Contains(class, "stepper") || strings.Contains(class, "quantity")
}

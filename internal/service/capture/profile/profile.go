// Package profile 소매점별 추출 규칙을 선언적으로 정의하는 사이트 프로파일과
// 그 전역 레지스트리를 제공합니다.
//
// 프로파일은 실행 코드가 아닌 설정 값입니다. 페이지 분류 규칙, 필드별 셀렉터 목록,
// 장바구니 품목/합계 셀렉터를 열거하며, 범용 추출 엔진이 이를 해석하여 실행합니다.
// 새로운 소매점 추가는 새 프로파일 등록만으로 완료됩니다.
package profile

import (
	"fmt"
	"regexp"
	"slices"
	"sync"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

// TextRule 문서에서 텍스트 값 하나를 추출하는 규칙입니다.
//
// Selector로 요소를 찾고, Attr이 지정되어 있으면 해당 속성을, 아니면 텍스트를 읽습니다.
// StripPrefixes에 나열된 접두사를 제거한 후, Pattern이 지정되어 있으면
// 첫 번째 캡처 그룹을 최종 값으로 사용합니다.
//
// Value가 지정된 규칙은 셀렉터 일치 자체를 신호로 보고 요소의 내용 대신
// Value를 그대로 반환합니다. (예: 선택 상태의 픽업 탭 → "Pickup")
type TextRule struct {
	Selector      string
	Attr          string
	StripPrefixes []string
	Pattern       string
	Value         string
}

// patternCache 컴파일된 정규식의 캐시 (추출 실행마다 재컴파일 방지)
var patternCache sync.Map

// CompiledPattern 규칙의 Pattern을 컴파일하여 반환합니다. Pattern이 비어있으면 nil입니다.
func (r TextRule) CompiledPattern() (*regexp.Regexp, error) {
	if r.Pattern == "" {
		return nil, nil
	}
	if cached, ok := patternCache.Load(r.Pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("추출 규칙의 정규식이 유효하지 않습니다: '%s'", r.Pattern))
	}
	patternCache.Store(r.Pattern, re)
	return re, nil
}

// ClassifyRules 페이지의 종류(상품/장바구니)를 판별하는 규칙입니다.
// URL 키워드 일치 또는 마커 요소 존재 중 하나라도 충족하면 해당 페이지로 분류합니다.
type ClassifyRules struct {
	// URLKeywords URL에 포함되면 일치로 판정하는 키워드 목록 (예: "/p/", "cart")
	URLKeywords []string

	// Markers 존재하면 일치로 판정하는 소매점 고유 마커 요소의 셀렉터 목록
	Markers []string
}

// QuantityRules 수량 추출 규칙입니다. 범용 프로브(aria-valuenow, pattern 입력 등)에 더해
// 소매점 고유의 스텝퍼 셀렉터와 배송 영역 컨테이너를 지정합니다.
type QuantityRules struct {
	// StepperSelectors 소매점 고유의 수량 스텝퍼 입력 셀렉터 후보 목록
	StepperSelectors []string

	// FulfillmentContainer 수량 입력을 포함할 수 있는 배송 옵션 영역의 셀렉터
	FulfillmentContainer string
}

// StockRules 재고 상태 추출 규칙입니다.
type StockRules struct {
	// Availability 재고 안내 메시지 요소의 셀렉터 목록 (키워드 분류 대상)
	Availability []string

	// PurchaseControl 주 구매 버튼의 셀렉터 목록 (비활성화 여부로 재고 판정)
	PurchaseControl []string
}

// OptionRules 선택된 옵션(배송 방식, 부가 상품, 변형) 추출 규칙입니다.
type OptionRules struct {
	// FulfillmentSelected 선택된 배송 방식 요소의 셀렉터 목록
	FulfillmentSelected []string

	// SwatchSelectors 선택 상태로 표시된 스와치 컨트롤의 셀렉터 목록
	SwatchSelectors []string
}

// SpecRules 상품 사양 표 추출 규칙입니다. Row가 비어있으면 사양 추출을 생략합니다.
type SpecRules struct {
	Row   string // 사양 행 셀렉터
	Key   string // 행 내부의 항목명 셀렉터
	Value string // 행 내부의 값 셀렉터
}

// ProductRules 상품 페이지 추출 규칙의 집합입니다.
type ProductRules struct {
	Canonical   []TextRule // 정규 URL (보통 link[rel=canonical]의 href)
	SKUPattern  string     // 정규 URL에 적용할 SKU 추출 정규식 (첫 캡처 그룹)
	SKU         []TextRule // URL 추출 실패 시의 SKU 규칙 목록
	Title       []TextRule
	Brand       []TextRule
	Price       []TextRule
	MainImage   []TextRule
	Description []TextRule

	// ImageHosts 이미지 URL이 포함해야 하는 정적 자산 호스트 패턴 목록
	ImageHosts []string

	Quantity QuantityRules
	Stock    StockRules
	Options  OptionRules
	Specs    SpecRules
}

// CartItemRules 장바구니 라인 아이템 추출 규칙의 집합입니다.
type CartItemRules struct {
	// Container 라인 아이템 컨테이너 요소의 셀렉터 목록
	Container []string

	SKU []TextRule

	// SKULinkPattern 아이템 내부 링크의 href에 적용할 SKU 추출 정규식 (첫 캡처 그룹)
	SKULinkPattern string

	Title         []TextRule
	Brand         []TextRule
	Image         []TextRule
	Quantity      []TextRule
	UnitPrice     []TextRule
	OriginalPrice []TextRule
	Savings       []TextRule

	// Subtotal 사이트가 직접 보고하는 라인 소계 규칙 목록.
	// 단가 규칙이 실패한 경우 이 값에서 단가를 역산합니다.
	Subtotal []TextRule

	Fulfillment    []TextRule
	PickupLocation []TextRule
	PickupETA      []TextRule
	DeliveryZip    []TextRule

	// Addons 선택 상태의 부가 상품(보호 플랜 등)을 감지하는 규칙 목록.
	// 일치하는 규칙마다 부가 상품 이름 하나를 수집합니다.
	Addons []TextRule
}

// TotalsRules 장바구니 합계 추출 규칙의 집합입니다.
//
// 필드별 전용 셀렉터가 우선하며, SummaryRows가 지정된 경우 행 단위 키워드 스캔을,
// 둘 다 실패하면 엔진의 전체 페이지 키워드 탐색을 수행합니다.
type TotalsRules struct {
	Subtotal []TextRule
	Tax      []TextRule
	Shipping []TextRule
	Pickup   []TextRule
	Discount []TextRule
	Total    []TextRule

	// SummaryRows 합계 요약의 행 요소 셀렉터 목록 (행 텍스트를 키워드로 분류)
	SummaryRows []string

	// RowAmount 요약 행 내부의 금액 요소 셀렉터 (비어있으면 행 전체 텍스트 사용)
	RowAmount string
}

// CTARules 주입할 컨트롤(CTA)의 구성 규칙입니다.
type CTARules struct {
	// ProductAnchors 상품 페이지에서 기준 요소로 사용할 셀렉터 목록
	ProductAnchors []string

	// CartAnchors 장바구니 페이지에서 기준 요소로 사용할 셀렉터 목록
	CartAnchors []string

	// AnchorKeywords 기준 요소 탐색 실패 시 버튼 텍스트 휴리스틱에 사용할 키워드 목록
	AnchorKeywords []string

	ProductLabel string // 상품 컨트롤의 표시 텍스트
	CartLabel    string // 장바구니 컨트롤의 표시 텍스트
}

// Profile 소매점 하나의 전체 추출 프로파일입니다.
//
// Registry에 등록된 후에는 불변으로 취급해야 합니다.
type Profile struct {
	ID   contract.RetailerID
	Name string

	// Hosts 이 소매점에 속하는 것으로 인정하는 호스트 이름 접미사 목록
	Hosts []string

	ProductClassify ClassifyRules
	CartClassify    ClassifyRules

	Product ProductRules
	Cart    CartItemRules
	Totals  TotalsRules
	CTA     CTARules

	// DiscountBanners 할인/프로모션 배너 요소의 셀렉터 목록
	DiscountBanners []string
}

// Validate 프로파일의 무결성을 검증합니다.
func (p *Profile) Validate() error {
	if p.ID.IsEmpty() {
		return apperrors.New(apperrors.InvalidInput, "프로파일의 소매점 ID가 비어있습니다")
	}
	if len(p.Hosts) == 0 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("프로파일('%s')의 허용 호스트 목록이 비어있습니다", p.ID))
	}
	if len(p.ProductClassify.URLKeywords) == 0 && len(p.ProductClassify.Markers) == 0 &&
		len(p.CartClassify.URLKeywords) == 0 && len(p.CartClassify.Markers) == 0 {
		return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("프로파일('%s')에 페이지 분류 규칙이 하나도 정의되지 않았습니다", p.ID))
	}

	// 모든 정규식이 컴파일 가능한지 사전 확인 (Fail Fast)
	for _, pattern := range []string{p.Product.SKUPattern, p.Cart.SKULinkPattern} {
		if pattern == "" {
			continue
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("프로파일('%s')의 SKU 정규식이 유효하지 않습니다: '%s'", p.ID, pattern))
		}
	}
	for _, rules := range [][]TextRule{
		p.Product.Canonical, p.Product.SKU, p.Product.Title, p.Product.Brand,
		p.Product.Price, p.Product.MainImage, p.Product.Description,
		p.Cart.SKU, p.Cart.Title, p.Cart.Brand, p.Cart.Image, p.Cart.Quantity,
		p.Cart.UnitPrice, p.Cart.OriginalPrice, p.Cart.Savings, p.Cart.Subtotal,
		p.Cart.Fulfillment, p.Cart.PickupLocation, p.Cart.PickupETA,
		p.Cart.DeliveryZip, p.Cart.Addons,
		p.Totals.Subtotal, p.Totals.Tax, p.Totals.Shipping, p.Totals.Pickup,
		p.Totals.Discount, p.Totals.Total,
	} {
		for _, rule := range rules {
			if rule.Selector == "" {
				return apperrors.New(apperrors.InvalidInput, fmt.Sprintf("프로파일('%s')에 셀렉터가 비어있는 추출 규칙이 존재합니다", p.ID))
			}
			if _, err := rule.CompiledPattern(); err != nil {
				return err
			}
		}
	}

	return nil
}

// MatchesHost 주어진 호스트 이름이 이 프로파일에 속하는지 확인합니다.
// 등록된 호스트와 정확히 일치하거나, "."을 경계로 한 하위 도메인이면 일치로 판정합니다.
func (p *Profile) MatchesHost(hostname string) bool {
	return slices.ContainsFunc(p.Hosts, func(h string) bool {
		return hostname == h || hasDomainSuffix(hostname, h)
	})
}

func hasDomainSuffix(hostname, domain string) bool {
	if len(hostname) <= len(domain) {
		return false
	}
	return hostname[len(hostname)-len(domain):] == domain &&
		hostname[len(hostname)-len(domain)-1] == '.'
}

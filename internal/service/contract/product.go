// Package contract 캡처 파이프라인과 호스트 애플리케이션 간에 주고받는
// 데이터 모델 및 서비스 인터페이스를 정의합니다.
//
// 모든 금액 필드는 표시 형식 보존을 위해 10진수 문자열("199.00")로 다루며,
// 파싱된 부동소수점 값을 저장하지 않습니다.
package contract

// StockStatus 상품의 재고 상태입니다.
type StockStatus string

const (
	// StockStatusInStock 구매 가능한 재고가 있는 상태입니다.
	StockStatusInStock StockStatus = "In Stock"

	// StockStatusOutOfStock 재고가 없는 상태입니다.
	StockStatusOutOfStock StockStatus = "Out of Stock"

	// StockStatusCheckAvailability 재고 여부를 판단할 수 없어 확인이 필요한 상태입니다.
	// 상품 페이지 컨텍스트에서의 기본값입니다.
	StockStatusCheckAvailability StockStatus = "Check Availability"

	// StockStatusUnknown 재고 정보를 추적하지 않는 컨텍스트(장바구니 라인 등)의 기본값입니다.
	StockStatusUnknown StockStatus = "Unknown"
)

// SelectedOptions 상품 페이지에서 사용자가 선택한 옵션의 집합입니다.
type SelectedOptions struct {
	// Fulfillment 배송/수령 방식 (예: "Ship to Home", "Store Pickup")
	Fulfillment string `json:"fulfillment,omitempty"`

	// Addons 보증 플랜 등 부가 상품 옵션 목록 (정확한 텍스트 기준으로 중복 제거됨)
	Addons []string `json:"addons"`

	// Variants 색상, 크기 등 상품 변형 옵션 목록 (정확한 텍스트 기준으로 중복 제거됨)
	Variants []string `json:"variants"`
}

// ExtractedProduct 상품 페이지에서 추출된 단일 상품의 스냅샷입니다.
//
// 추출 실행마다 새로 생성되며, Bridge로 전달된 이후에는 불변(Immutable)으로 취급합니다.
// SKU와 URL의 조합이 상품 인스턴스를 식별하지만, SKU가 비어있는 경우도 허용됩니다.
// (다운스트림에서 URL 기반 식별로 대체)
type ExtractedProduct struct {
	SKU         string `json:"sku"`
	Title       string `json:"title"`
	Brand       string `json:"brand"`
	Price       string `json:"price"` // 10진수 문자열 (예: "199.00"), 기본값 "0.00"
	Image       string `json:"image"` // 대표 이미지 URL
	Images      []string `json:"images"` // URL 기준으로 중복 제거된 이미지 목록 (문서 순서 유지)
	Description string `json:"description"`
	URL         string `json:"url"` // 정규(canonical) URL, 없으면 현재 위치

	// Quantity 사용자가 선택한 구매 수량의 10진수 문자열, 기본값 "1"
	Quantity string `json:"quantity"`

	StockStatus     StockStatus       `json:"stockStatus"`
	SelectedOptions SelectedOptions   `json:"selectedOptions"`
	Specifications  map[string]string `json:"specifications"`

	// Retailer 이 상품이 추출된 소매점의 식별자
	Retailer RetailerID `json:"retailer,omitempty"`
}

// NewExtractedProduct 모든 필드가 안전한 기본값으로 채워진 ExtractedProduct를 생성합니다.
func NewExtractedProduct() *ExtractedProduct {
	return &ExtractedProduct{
		Price:       "0.00",
		Quantity:    "1",
		StockStatus: StockStatusCheckAvailability,
		Images:      []string{},
		SelectedOptions: SelectedOptions{
			Addons:   []string{},
			Variants: []string{},
		},
		Specifications: map[string]string{},
	}
}

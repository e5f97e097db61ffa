package contract

// CartItemOptions 장바구니 라인 아이템에 연결된 선택 옵션입니다.
type CartItemOptions struct {
	Fulfillment    string   `json:"fulfillment,omitempty"`
	PickupLocation string   `json:"pickupLocation,omitempty"`
	PickupETA      string   `json:"pickupETA,omitempty"`
	DeliveryZip    string   `json:"deliveryZip,omitempty"`
	Addons         []string `json:"addons,omitempty"`
}

// CartItem 장바구니의 라인 아이템 하나를 나타냅니다.
//
// Subtotal은 UnitPrice × Quantity를 소수점 2자리로 포맷한 값과 일치해야 하며,
// 사이트가 직접 보고한 소계가 있는 경우 그 값이 우선하고 UnitPrice가 역산됩니다.
type CartItem struct {
	SKU   string `json:"sku"`
	Title string `json:"title"`
	Brand string `json:"brand"`
	Image string `json:"image"`

	UnitPrice     string `json:"unitPrice"`
	OriginalPrice string `json:"originalPrice,omitempty"`
	Savings       string `json:"savings,omitempty"`

	Quantity int    `json:"quantity"` // 1 이상
	Subtotal string `json:"subtotal"`

	SelectedOptions CartItemOptions `json:"selectedOptions"`
}

// DiscountType 할인의 적용 범위를 나타냅니다.
type DiscountType string

const (
	DiscountTypePromo DiscountType = "promo" // 프로모션 코드에 의한 할인
	DiscountTypeBulk  DiscountType = "bulk"  // 수량 기반 할인
	DiscountTypeItem  DiscountType = "item"  // 개별 상품 할인
	DiscountTypeCart  DiscountType = "cart"  // 장바구니 전체 할인
)

// Discount 장바구니에서 발견된 할인/프로모션 항목입니다.
type Discount struct {
	Type        DiscountType `json:"type"`
	Code        string       `json:"code,omitempty"`
	Description string       `json:"description"`
	Amount      string       `json:"amount"`
}

// CartTotals 장바구니 수준의 합계 정보입니다.
//
// 모든 필드는 기본값 "0.00"의 10진수 문자열입니다. "---"는 "아직 미확정"을 의미하는
// 유효한 리터럴이며 표시 계층까지 변경 없이 전달되어야 합니다.
// (산술 연산에서만 0으로 취급)
type CartTotals struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Pickup   string `json:"pickup,omitempty"`
	Discount string `json:"discount"`
	Savings  string `json:"savings,omitempty"`
	Delivery string `json:"delivery,omitempty"`
	Total    string `json:"total"`
}

// NewCartTotals 모든 필드가 "0.00"으로 초기화된 CartTotals를 생성합니다.
func NewCartTotals() CartTotals {
	return CartTotals{
		Subtotal: "0.00",
		Tax:      "0.00",
		Shipping: "0.00",
		Discount: "0.00",
		Total:    "0.00",
	}
}

// CartData 장바구니 추출의 전체 결과입니다.
//
// Items는 비어있지 않은 SKU 기준으로 중복이 제거됩니다.
// SKU가 빈 아이템은 다른 빈 SKU 아이템과 중복으로 취급되지 않고 모두 유지됩니다.
type CartData struct {
	Items     []CartItem `json:"items"`
	Discounts []Discount `json:"discounts"`
	Totals    CartTotals `json:"totals"`
	CartURL   string     `json:"cartUrl,omitempty"`

	// Retailer 이 장바구니가 추출된 소매점의 식별자
	Retailer RetailerID `json:"retailer,omitempty"`
}

// NewCartData 안전한 기본값으로 초기화된 CartData를 생성합니다.
func NewCartData() *CartData {
	return &CartData{
		Items:     []CartItem{},
		Discounts: []Discount{},
		Totals:    NewCartTotals(),
	}
}

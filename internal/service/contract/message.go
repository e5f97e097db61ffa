package contract

// MessageType Bridge를 통해 전달되는 메시지의 종류입니다.
type MessageType string

const (
	// MessageTypeProductData 단일 상품 추출 결과 메시지입니다. Payload는 ExtractedProduct입니다.
	MessageTypeProductData MessageType = "PRODUCT_DATA"

	// MessageTypeCartData 장바구니 추출 결과 메시지입니다. Payload는 CartData입니다.
	MessageTypeCartData MessageType = "CART_DATA"

	// MessageTypeError 추출 파이프라인 실패 메시지입니다. 오류 설명 문자열만 전달합니다.
	MessageTypeError MessageType = "ERROR"
)

// IsValid 메시지 타입이 정의된 값 중 하나인지 확인합니다.
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeProductData, MessageTypeCartData, MessageTypeError:
		return true
	}
	return false
}

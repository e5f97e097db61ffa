// Package bridge 추출 파이프라인과 호스트 애플리케이션 간의 메시지 교환을 담당합니다.
//
// 모든 메시지는 버전이 명시된 봉투(Envelope)로 감싸져 전달됩니다. 전송은
// Fire-and-Forget입니다. 전송 계층이 사용 불가능하거나 전송에 실패하더라도
// 추출 루프는 중단되지 않으며, 메시지는 로그를 남기고 폐기됩니다.
package bridge

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

// EnvelopeVersion 현재 봉투 스키마의 버전입니다.
// 수신측은 버전이 일치하지 않는 봉투를 해석하지 않고 거부해야 합니다.
const EnvelopeVersion = 1

// instanceID 이 프로세스에서 생성된 모든 봉투가 공유하는 캡처 인스턴스 식별자입니다.
// 수신측이 여러 캡처 인스턴스의 메시지를 구분하는 데 사용합니다.
var instanceID = uuid.NewString()

// Envelope 브리지를 통해 전달되는 메시지의 봉투입니다.
type Envelope struct {
	Version int                  `json:"version"`
	Type    contract.MessageType `json:"type"`

	// Payload 메시지 종류에 따른 본문 (PRODUCT_DATA, CART_DATA)
	Payload json.RawMessage `json:"payload,omitempty"`

	// Message 사람이 읽을 수 있는 설명 (ERROR 메시지에서 사용)
	Message string `json:"message,omitempty"`

	Retailer   contract.RetailerID `json:"retailer,omitempty"`
	InstanceID string              `json:"instanceId"`
	CapturedAt time.Time           `json:"capturedAt"`
}

func newEnvelope(msgType contract.MessageType, retailer contract.RetailerID) *Envelope {
	return &Envelope{
		Version:    EnvelopeVersion,
		Type:       msgType,
		Retailer:   retailer,
		InstanceID: instanceID,
		CapturedAt: time.Now(),
	}
}

// NewProductEnvelope 상품 스냅샷을 담은 봉투를 생성합니다.
func NewProductEnvelope(product *contract.ExtractedProduct) (*Envelope, error) {
	payload, err := json.Marshal(product)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "상품 스냅샷의 직렬화가 실패하였습니다")
	}

	envelope := newEnvelope(contract.MessageTypeProductData, product.Retailer)
	envelope.Payload = payload
	return envelope, nil
}

// NewCartEnvelope 장바구니 스냅샷을 담은 봉투를 생성합니다.
func NewCartEnvelope(cart *contract.CartData) (*Envelope, error) {
	payload, err := json.Marshal(cart)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "장바구니 스냅샷의 직렬화가 실패하였습니다")
	}

	envelope := newEnvelope(contract.MessageTypeCartData, cart.Retailer)
	envelope.Payload = payload
	return envelope, nil
}

// NewErrorEnvelope 파이프라인 수준의 실패를 알리는 봉투를 생성합니다.
func NewErrorEnvelope(retailer contract.RetailerID, message string) *Envelope {
	envelope := newEnvelope(contract.MessageTypeError, retailer)
	envelope.Message = message
	return envelope
}

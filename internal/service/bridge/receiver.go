package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

// Decode 수신한 원시 JSON을 봉투로 해석합니다.
//
// 외부에서 들어오는 메시지는 신뢰할 수 없으므로 구조 검증을 먼저 수행합니다.
// 버전이 일치하지 않거나 타입이 정의되지 않은 봉투는 거부됩니다.
func Decode(raw []byte) (*Envelope, error) {
	if !gjson.ValidBytes(raw) {
		return nil, apperrors.New(apperrors.ParsingFailed, "수신한 메시지가 유효한 JSON이 아닙니다")
	}

	parsed := gjson.ParseBytes(raw)

	version := parsed.Get("version")
	if !version.Exists() || version.Int() != EnvelopeVersion {
		return nil, apperrors.Newf(apperrors.InvalidInput,
			"지원하지 않는 봉투 버전입니다. (수신:%s, 지원:%d)", version.String(), EnvelopeVersion)
	}

	msgType := contract.MessageType(parsed.Get("type").String())
	if !msgType.IsValid() {
		return nil, apperrors.Newf(apperrors.InvalidInput, "정의되지 않은 메시지 타입입니다. (%s)", msgType)
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "봉투의 역직렬화가 실패하였습니다")
	}

	return &envelope, nil
}

// DecodeProduct PRODUCT_DATA 봉투의 본문을 상품 스냅샷으로 해석합니다.
func DecodeProduct(envelope *Envelope) (*contract.ExtractedProduct, error) {
	if err := requireType(envelope, contract.MessageTypeProductData); err != nil {
		return nil, err
	}

	product := contract.NewExtractedProduct()
	if err := json.Unmarshal(envelope.Payload, product); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "상품 스냅샷의 역직렬화가 실패하였습니다")
	}
	return product, nil
}

// DecodeCart CART_DATA 봉투의 본문을 장바구니 스냅샷으로 해석합니다.
func DecodeCart(envelope *Envelope) (*contract.CartData, error) {
	if err := requireType(envelope, contract.MessageTypeCartData); err != nil {
		return nil, err
	}

	cart := contract.NewCartData()
	if err := json.Unmarshal(envelope.Payload, cart); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "장바구니 스냅샷의 역직렬화가 실패하였습니다")
	}
	return cart, nil
}

func requireType(envelope *Envelope, expected contract.MessageType) error {
	if envelope == nil {
		return apperrors.New(apperrors.InvalidInput, "봉투가 비어 있습니다")
	}
	if envelope.Type != expected {
		return apperrors.New(apperrors.InvalidInput,
			fmt.Sprintf("메시지 타입이 일치하지 않습니다. (기대:%s, 수신:%s)", expected, envelope.Type))
	}
	if len(envelope.Payload) == 0 {
		return apperrors.New(apperrors.InvalidInput, "봉투에 본문이 없습니다")
	}
	return nil
}

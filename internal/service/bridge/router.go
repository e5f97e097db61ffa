package bridge

import (
	"github.com/sirupsen/logrus"

	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// Router 봉투를 메시지 타입별 핸들러로 분배합니다.
//
// 핸들러가 등록되지 않은 타입의 봉투는 로그만 남기고 폐기됩니다.
// 핸들러에서 발생한 패닉은 수신 루프를 중단시키지 않도록 Router가 흡수합니다.
type Router struct {
	onProduct func(*contract.ExtractedProduct)
	onCart    func(*contract.CartData)
	onError   func(retailer contract.RetailerID, message string)

	log *logrus.Entry
}

// NewRouter 핸들러가 비어있는 Router를 생성합니다.
func NewRouter() *Router {
	return &Router{
		log: applog.WithComponent("bridge.router"),
	}
}

// OnProduct PRODUCT_DATA 봉투의 핸들러를 등록합니다.
func (r *Router) OnProduct(fn func(*contract.ExtractedProduct)) *Router {
	r.onProduct = fn
	return r
}

// OnCart CART_DATA 봉투의 핸들러를 등록합니다.
func (r *Router) OnCart(fn func(*contract.CartData)) *Router {
	r.onCart = fn
	return r
}

// OnError ERROR 봉투의 핸들러를 등록합니다.
func (r *Router) OnError(fn func(retailer contract.RetailerID, message string)) *Router {
	r.onError = fn
	return r
}

// Dispatch 봉투를 해석하여 해당 핸들러를 호출합니다.
func (r *Router) Dispatch(envelope *Envelope) {
	if envelope == nil {
		return
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.WithFields(logrus.Fields{
				"type":     envelope.Type,
				"retailer": envelope.Retailer,
			}).Errorf("메시지 핸들러 실행 중에 복구 불가능한 오류가 발생하였습니다. (%v)", p)
		}
	}()

	switch envelope.Type {
	case contract.MessageTypeProductData:
		r.dispatchProduct(envelope)

	case contract.MessageTypeCartData:
		r.dispatchCart(envelope)

	case contract.MessageTypeError:
		if r.onError != nil {
			r.onError(envelope.Retailer, envelope.Message)
		}

	default:
		r.log.Warnf("핸들러가 정의되지 않은 메시지 타입이므로 폐기합니다. (%s)", envelope.Type)
	}
}

func (r *Router) dispatchProduct(envelope *Envelope) {
	if r.onProduct == nil {
		return
	}

	product, err := DecodeProduct(envelope)
	if err != nil {
		r.log.WithError(err).Error("상품 메시지의 해석이 실패하여 폐기합니다.")
		return
	}
	r.onProduct(product)
}

func (r *Router) dispatchCart(envelope *Envelope) {
	if r.onCart == nil {
		return
	}

	cart, err := DecodeCart(envelope)
	if err != nil {
		r.log.WithError(err).Error("장바구니 메시지의 해석이 실패하여 폐기합니다.")
		return
	}
	r.onCart(cart)
}

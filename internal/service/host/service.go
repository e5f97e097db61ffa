// Package host 브리지로 수신된 추출 결과를 처리하는 호스트 수신부 서비스입니다.
//
// 수신부는 상품/장바구니 스냅샷을 검증하고 부족한 합계를 보정한 후 저장소에
// 기록하며, 파이프라인 실패(ERROR 메시지)는 관리자 알림으로 전환합니다.
package host

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/darkkaiser/capture-server/internal/config"
	"github.com/darkkaiser/capture-server/internal/service/bridge"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	"github.com/darkkaiser/capture-server/internal/service/storage"
	applog "github.com/darkkaiser/capture-server/pkg/log"
	"github.com/darkkaiser/capture-server/pkg/strutil"
)

// Service 브리지 수신 루프를 실행하는 서비스입니다.
type Service struct {
	appConfig *config.AppConfig

	transport *bridge.ChannelTransport
	router    *bridge.Router

	snapshotStorage    *storage.Storage
	notificationSender contract.NotificationSender

	running   bool
	runningMu sync.Mutex
}

// NewService 호스트 수신부 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig, transport *bridge.ChannelTransport, notificationSender contract.NotificationSender) *Service {
	if appConfig == nil {
		panic("AppConfig 객체가 초기화되지 않았습니다")
	}
	if transport == nil {
		panic("Transport 객체가 초기화되지 않았습니다")
	}

	s := &Service{
		appConfig: appConfig,

		transport: transport,

		snapshotStorage:    storage.New(appConfig.Storage.Dir),
		notificationSender: notificationSender,

		running:   false,
		runningMu: sync.Mutex{},
	}

	s.router = bridge.NewRouter().
		OnProduct(s.handleProduct).
		OnCart(s.handleCart).
		OnError(s.handleError)

	return s
}

// Router 수신부의 메시지 Router를 반환합니다.
// BridgeAPI 서버는 외부에서 수신한 봉투를 이 Router로 분배합니다.
func (s *Service) Router() *bridge.Router {
	return s.router
}

// Start 수신 루프를 시작합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent("host.service").Info("Host 수신부 서비스 시작중...")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent("host.service").Warn("Host 수신부 서비스가 이미 시작됨!!!")
		return nil
	}

	s.running = true

	go s.runReceiveLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent("host.service").Info("Host 수신부 서비스 시작됨")

	return nil
}

func (s *Service) runReceiveLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	for {
		select {
		case envelope := <-s.transport.C():
			s.router.Dispatch(envelope)

		case <-serviceStopCtx.Done():
			applog.WithComponent("host.service").Info("Host 수신부 서비스 중지중...")

			s.transport.Close()

			s.runningMu.Lock()
			s.running = false
			s.runningMu.Unlock()

			applog.WithComponent("host.service").Info("Host 수신부 서비스 중지됨")

			return
		}
	}
}

func (s *Service) handleProduct(product *contract.ExtractedProduct) {
	entry := applog.WithComponentAndFields("host.service", log.Fields{
		"retailer": product.Retailer,
		"sku":      product.SKU,
		"price":    product.Price,
	})
	entry.Info("상품 스냅샷을 수신하였습니다.")

	path, err := s.snapshotStorage.SaveProduct(product)
	if err != nil {
		entry.WithError(err).Error("상품 스냅샷의 저장이 실패하였습니다.")
		return
	}
	entry.Debugf("상품 스냅샷이 저장됨(%s)", path)
}

func (s *Service) handleCart(cart *contract.CartData) {
	normalizeCartTotals(cart)

	entry := applog.WithComponentAndFields("host.service", log.Fields{
		"retailer":   cart.Retailer,
		"item_count": len(cart.Items),
		"total":      cart.Totals.Total,
	})
	entry.Info("장바구니 스냅샷을 수신하였습니다.")

	path, err := s.snapshotStorage.SaveCart(cart)
	if err != nil {
		entry.WithError(err).Error("장바구니 스냅샷의 저장이 실패하였습니다.")
		return
	}
	entry.Debugf("장바구니 스냅샷이 저장됨(%s)", path)
}

func (s *Service) handleError(retailer contract.RetailerID, message string) {
	applog.WithComponentAndFields("host.service", log.Fields{
		"retailer": retailer,
	}).Error(message)

	if s.notificationSender != nil {
		_ = s.notificationSender.NotifyDefaultWithError(
			fmt.Sprintf("소매점('%s')의 추출이 실패하였습니다.\r\n\r\n%s", retailer, message))
	}
}

// normalizeCartTotals 수신한 장바구니의 합계에서 비어있는 필드를 보정합니다.
//
// 외부 캡처 인스턴스가 보낸 스냅샷은 스키마 버전만 일치할 뿐 모든 필드의
// 채움을 보장하지 않으므로, 표시 계층이 기대하는 기본값을 채워 넣습니다.
// "---" 표기는 유효한 값이므로 변경하지 않습니다.
func normalizeCartTotals(cart *contract.CartData) {
	fields := []*string{
		&cart.Totals.Subtotal,
		&cart.Totals.Tax,
		&cart.Totals.Shipping,
		&cart.Totals.Discount,
		&cart.Totals.Total,
	}
	for _, field := range fields {
		if *field == "" {
			*field = strutil.ZeroAmount
		}
	}

	// 소계가 0으로 보고된 스냅샷은 라인 아이템 소계의 합으로 재계산한다.
	if strutil.IsZeroAmount(cart.Totals.Subtotal) && len(cart.Items) > 0 {
		var sum float64
		for _, item := range cart.Items {
			sum += strutil.ParseAmount(item.Subtotal)
		}
		if sum > 0 {
			cart.Totals.Subtotal = strutil.FormatAmount(sum)
		}
	}

	// 총계가 비어있거나 0으로 보고된 스냅샷은 소계에 부대 비용을 더해 재계산한다.
	if strutil.IsZeroAmount(cart.Totals.Total) && !strutil.IsZeroAmount(cart.Totals.Subtotal) {
		total := strutil.ParseAmount(cart.Totals.Subtotal) +
			strutil.ParseAmount(cart.Totals.Tax) +
			strutil.ParseAmount(cart.Totals.Shipping) -
			strutil.ParseAmount(cart.Totals.Discount)
		cart.Totals.Total = strutil.FormatAmount(total)
	}
}

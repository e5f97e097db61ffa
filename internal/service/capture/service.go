// Package capture 소매점별 브라우저 세션을 관리하며, 페이지 변경 신호에 따라
// 분류, CTA 컨트롤 주입, 추출 파이프라인 실행, 결과 분배를 수행하는
// 캡처 오케스트레이션 서비스를 제공합니다.
package capture

import (
	"context"
	"sync"
	"time"

	"github.com/darkkaiser/capture-server/internal/config"
	"github.com/darkkaiser/capture-server/internal/service/bridge"
	"github.com/darkkaiser/capture-server/internal/service/capture/classify"
	"github.com/darkkaiser/capture-server/internal/service/capture/inject"
	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/page/webview"
	"github.com/darkkaiser/capture-server/internal/service/capture/pipeline"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/capture/signal"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// component 캡처 서비스의 로깅용 컴포넌트 이름
const component = "capture.service"

// signalMutation 페이지 변경 감지 방식 설정값 중 MutationObserver 기반 감지
const signalMutation = "mutation"

// PageAccessor 소매점 세션이 페이지에 접근하기 위한 인터페이스입니다.
//
// 운영 환경에서는 헤드리스 브라우저(webview)가 사용되지만,
// 테스트에서는 정적 HTML 기반의 구현으로 대체할 수 있습니다.
type PageAccessor interface {
	// Navigate 지정된 URL로 이동합니다.
	Navigate(ctx context.Context, url string) error

	// Snapshot 페이지의 현재 상태를 문서로 반환합니다.
	Snapshot(ctx context.Context) (page.EditableDocument, error)

	// Close 세션과 관련 리소스를 해제합니다.
	Close()
}

// MutationProber 라이브 DOM의 변경 횟수를 조회할 수 있는 PageAccessor의 확장입니다.
type MutationProber interface {
	InstallMutationProbe(ctx context.Context) error
	MutationCount(ctx context.Context) (int64, error)
}

// AccessorFactory 소매점 세션마다 PageAccessor를 생성하는 팩토리 함수입니다.
type AccessorFactory func(ctx context.Context, browserConfig *config.BrowserConfig) (PageAccessor, error)

// newWebviewAccessor 헤드리스 브라우저 기반의 PageAccessor를 생성합니다.
func newWebviewAccessor(ctx context.Context, browserConfig *config.BrowserConfig) (PageAccessor, error) {
	session, err := webview.NewSession(ctx, browserConfig)
	if err != nil {
		return nil, err
	}
	return &webviewAccessor{session: session}, nil
}

type webviewAccessor struct {
	session *webview.Session
}

var (
	_ PageAccessor   = (*webviewAccessor)(nil)
	_ MutationProber = (*webviewAccessor)(nil)
)

func (a *webviewAccessor) Navigate(ctx context.Context, url string) error {
	return a.session.Navigate(ctx, url)
}

func (a *webviewAccessor) Snapshot(ctx context.Context) (page.EditableDocument, error) {
	return a.session.Snapshot(ctx)
}

func (a *webviewAccessor) InstallMutationProbe(ctx context.Context) error {
	return a.session.InstallMutationProbe(ctx)
}

func (a *webviewAccessor) MutationCount(ctx context.Context) (int64, error) {
	return a.session.MutationCount(ctx)
}

func (a *webviewAccessor) Close() {
	a.session.Close()
}

// Service 활성화된 모든 소매점의 캡처 세션을 관리하는 서비스입니다.
type Service struct {
	appConfig *config.AppConfig

	registry *profile.Registry

	sender *bridge.Sender

	// newAccessor 세션별 PageAccessor 생성 함수 (테스트에서 교체 가능)
	newAccessor AccessorFactory

	running   bool
	runningMu sync.Mutex
}

// NewService 캡처 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig, registry *profile.Registry, transport bridge.Transport) *Service {
	if appConfig == nil {
		panic("AppConfig 객체가 초기화되지 않았습니다")
	}
	if registry == nil {
		panic("Registry 객체가 초기화되지 않았습니다")
	}
	if transport == nil {
		panic("Transport 객체가 초기화되지 않았습니다")
	}

	return &Service{
		appConfig: appConfig,

		registry: registry,

		sender: bridge.NewSender(transport),

		newAccessor: newWebviewAccessor,
	}
}

// Start 활성화된 소매점마다 캡처 세션을 시작합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("캡처 서비스 시작중...")

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("캡처 서비스가 이미 시작됨!!!")
		return nil
	}

	var sessionWG sync.WaitGroup
	started := 0
	for _, retailerConfig := range s.appConfig.Retailers {
		if !retailerConfig.Enabled {
			continue
		}

		p, err := s.registry.Get(contract.RetailerID(retailerConfig.ID))
		if err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"retailer": retailerConfig.ID,
			}).WithError(err).Error("소매점 프로파일을 찾을 수 없어 세션 시작을 건너뜁니다")
			continue
		}

		sessionWG.Add(1)
		go s.runRetailerSession(serviceStopCtx, &sessionWG, retailerConfig, p)
		started++
	}

	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"sessions": started,
	}).Info("캡처 서비스 시작됨")

	go s.waitForShutdown(serviceStopCtx, serviceStopWG, &sessionWG)

	return nil
}

func (s *Service) waitForShutdown(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup, sessionWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	<-serviceStopCtx.Done()

	applog.WithComponent(component).Info("캡처 서비스 중지중...")

	sessionWG.Wait()

	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(component).Info("캡처 서비스 중지됨")
}

// runRetailerSession 단일 소매점의 캡처 세션을 실행합니다.
// 세션은 페이지 변경 신호를 수신할 때마다 분류와 추출 흐름을 재평가합니다.
func (s *Service) runRetailerSession(ctx context.Context, sessionWG *sync.WaitGroup, retailerConfig config.RetailerConfig, p *profile.Profile) {
	defer sessionWG.Done()

	sessionLog := applog.WithComponentAndFields(component, applog.Fields{
		"retailer": retailerConfig.ID,
	})

	accessor, err := s.newAccessor(ctx, &s.appConfig.Browser)
	if err != nil {
		sessionLog.WithError(err).Error("브라우저 세션 생성이 실패하여 캡처 세션을 시작할 수 없습니다")
		return
	}
	defer accessor.Close()

	if retailerConfig.StartURL != "" {
		if err := accessor.Navigate(ctx, retailerConfig.StartURL); err != nil {
			sessionLog.WithError(err).Error("시작 페이지 탐색이 실패하여 캡처 세션을 시작할 수 없습니다")
			return
		}
	}

	source := s.newSignalSource(ctx, accessor, retailerConfig)
	defer source.Stop()

	session := &retailerSession{
		service:    s,
		profile:    p,
		accessor:   accessor,
		activation: inject.NewActivation(),
	}

	sessionLog.Info("캡처 세션 시작됨")

	for {
		select {
		case <-ctx.Done():
			sessionLog.Info("캡처 세션 중지됨")
			return

		case <-source.C():
			session.handleSignal(ctx)
		}
	}
}

// newSignalSource 설정된 감지 방식에 맞는 페이지 변경 신호 소스를 생성합니다.
//
// "mutation" 방식은 PageAccessor가 MutationObserver를 지원하는 경우에만 사용되며,
// 지원하지 않으면 주기적 재평가(poll)로 대체됩니다.
func (s *Service) newSignalSource(ctx context.Context, accessor PageAccessor, retailerConfig config.RetailerConfig) signal.Source {
	interval := retailerConfig.PollIntervalDuration()

	if retailerConfig.Signal == signalMutation {
		if prober, ok := accessor.(MutationProber); ok {
			if err := prober.InstallMutationProbe(ctx); err == nil {
				return newMutationSource(ctx, prober, interval)
			}

			applog.WithComponentAndFields(component, applog.Fields{
				"retailer": retailerConfig.ID,
			}).Warn("페이지 변경 관찰자 설치가 실패하여 주기적 재평가로 대체합니다")
		}
	}

	return signal.NewPoller(interval)
}

// mutationSource MutationObserver의 누적 변경 횟수를 주기적으로 확인하여
// 변경이 있을 때만 신호를 발생시키는 Source 구현체입니다.
type mutationSource struct {
	*signal.Notifier
}

func newMutationSource(ctx context.Context, prober MutationProber, interval time.Duration) *mutationSource {
	notifier := signal.NewNotifier()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var lastCount int64
		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				count, err := prober.MutationCount(ctx)
				if err != nil {
					continue
				}
				if count != lastCount {
					lastCount = count
					notifier.Notify()
				}
			}
		}
	}()

	return &mutationSource{Notifier: notifier}
}

// retailerSession 단일 소매점 캡처 세션의 상태입니다.
type retailerSession struct {
	service *Service

	profile  *profile.Profile
	accessor PageAccessor

	// activation 동일 컨트롤의 중복 추출을 막는 busy 가드
	activation *inject.Activation

	// lastURL / lastType 마지막으로 추출을 수행한 페이지의 식별 정보
	lastURL  string
	lastType classify.PageType
}

// handleSignal 페이지 변경 신호를 처리합니다.
//
// 페이지를 다시 분류하고 필요한 CTA 컨트롤을 주입한 후, 페이지의 식별 정보
// (URL, 분류 결과)가 바뀐 경우에만 추출을 수행합니다.
func (ss *retailerSession) handleSignal(ctx context.Context) {
	sessionLog := applog.WithComponentAndFields(component, applog.Fields{
		"retailer": ss.profile.ID,
	})

	doc, err := ss.accessor.Snapshot(ctx)
	if err != nil {
		sessionLog.WithError(err).Warn("페이지 스냅샷 생성이 실패하였습니다")
		return
	}

	pageType := classify.Classify(doc, ss.profile)

	switch pageType {
	case classify.PageTypeProduct:
		if _, err := inject.EnsureProductCTA(doc, ss.profile); err != nil {
			sessionLog.WithError(err).Warn("상품 CTA 컨트롤 주입이 실패하였습니다")
		}
	case classify.PageTypeCart:
		if _, err := inject.EnsureCartCTA(doc, ss.profile); err != nil {
			sessionLog.WithError(err).Warn("장바구니 CTA 컨트롤 주입이 실패하였습니다")
		}
	}

	if doc.URL() == ss.lastURL && pageType == ss.lastType {
		return
	}
	ss.lastURL = doc.URL()
	ss.lastType = pageType

	if pageType == classify.PageTypeNeither {
		return
	}

	ss.activate(ctx, pageType)
}

// activate 추출 파이프라인을 실행하고 결과 봉투를 분배합니다.
//
// busy 가드가 이미 점유된 경우(이전 추출이 진행 중) 이번 신호는 무시되며,
// 추출 실패 시 정확히 하나의 ERROR 봉투가 발송됩니다.
func (ss *retailerSession) activate(ctx context.Context, pageType classify.PageType) {
	sessionLog := applog.WithComponentAndFields(component, applog.Fields{
		"retailer":  ss.profile.ID,
		"page_type": pageType.String(),
	})

	ran, err := ss.activation.TryRun(func() error {
		// 클라이언트측 렌더링이 마무리되기를 기다린 후 최종 상태를 스냅샷합니다.
		if delay := ss.service.appConfig.Browser.SettleDelayDuration(); delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		doc, err := ss.accessor.Snapshot(ctx)
		if err != nil {
			return err
		}

		envelope, err := ss.buildEnvelope(doc, pageType)
		if err != nil {
			return err
		}

		ss.service.sender.Send(envelope)
		return nil
	})

	if !ran {
		sessionLog.Debug("이전 추출이 진행 중이어서 이번 신호를 무시합니다")
		return
	}

	if err != nil {
		sessionLog.WithError(err).Error("추출 파이프라인 실행이 실패하였습니다")
		ss.service.sender.Send(bridge.NewErrorEnvelope(ss.profile.ID, err.Error()))
		return
	}

	sessionLog.Debug("추출 결과 봉투 발송 완료")
}

func (ss *retailerSession) buildEnvelope(doc page.Document, pageType classify.PageType) (*bridge.Envelope, error) {
	switch pageType {
	case classify.PageTypeCart:
		cart, err := pipeline.Cart(doc, ss.profile)
		if err != nil {
			return nil, err
		}
		cart.Retailer = ss.profile.ID
		return bridge.NewCartEnvelope(cart)

	default:
		product, err := pipeline.Product(doc, ss.profile)
		if err != nil {
			return nil, err
		}
		product.Retailer = ss.profile.ID
		return bridge.NewProductEnvelope(product)
	}
}

package importer

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/darkkaiser/capture-server/internal/config"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// component Importer 서비스의 로깅용 컴포넌트 이름
const component = "importer.service"

// Service 이전에 가져온 상품들의 가격 정보를 Cron 스케줄에 맞춰 주기적으로
// 다시 가져오는 갱신 서비스입니다.
type Service struct {
	importerConfig *config.ImporterConfig

	client *Client

	cron *cron.Cron

	notificationSender contract.NotificationSender

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 Importer 갱신 서비스 인스턴스를 생성합니다.
func NewService(importerConfig *config.ImporterConfig, client *Client, notificationSender contract.NotificationSender) *Service {
	if importerConfig == nil {
		panic("ImporterConfig는 필수입니다")
	}
	if client == nil {
		panic("Client는 필수입니다")
	}
	if notificationSender == nil {
		panic("NotificationSender는 필수입니다")
	}

	return &Service{
		importerConfig: importerConfig,

		client: client,

		notificationSender: notificationSender,
	}
}

// Client 이 서비스가 사용하는 가져오기 클라이언트를 반환합니다.
// 공유 인텐트 처리부 등 다른 협력자가 동일한 캐시를 공유할 수 있도록 합니다.
func (s *Service) Client() *Client {
	return s.client
}

// Start 갱신 서비스를 시작합니다. 설정에서 갱신 스케줄이 비활성화된 경우에는
// Cron 엔진을 기동하지 않고 종료 신호 대기만 수행합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Importer 갱신 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Importer 갱신 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	if s.importerConfig.Refresh.Runnable {
		// Recover: 갱신 작업에서 Panic이 발생해도 Cron 엔진은 유지됩니다.
		// SkipIfStillRunning: 이전 갱신이 끝나지 않았으면 다음 실행을 건너뜁니다.
		s.cron = cron.New(
			cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.WithChain(
				cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
				cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
			),
		)

		if _, err := s.cron.AddFunc(s.importerConfig.Refresh.TimeSpec, s.refresh); err != nil {
			serviceStopWG.Done()
			applog.WithComponent(component).WithError(err).Errorf("갱신 스케줄 등록 실패: 잘못된 Cron 표현식입니다 (TimeSpec: %s)", s.importerConfig.Refresh.TimeSpec)
			return err
		}

		s.cron.Start()

		applog.WithComponentAndFields(component, applog.Fields{
			"time_spec": s.importerConfig.Refresh.TimeSpec,
		}).Info("가격 갱신 스케줄이 등록되었습니다")
	}

	s.running = true

	applog.WithComponent(component).Info("서비스 시작 완료: Importer 갱신 서비스가 정상적으로 초기화되었습니다")

	go s.waitForShutdown(serviceStopCtx, serviceStopWG)

	return nil
}

func (s *Service) waitForShutdown(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	<-serviceStopCtx.Done()

	applog.WithComponent(component).Info("종료 절차 진입: Importer 갱신 서비스 중지 시그널을 수신했습니다")

	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	// Cron 엔진 중지 및 실행 중인 갱신 작업 완료 대기
	if s.cron != nil {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.cron = nil
	}

	s.running = false

	applog.WithComponent(component).Info("Importer 갱신 서비스 종료 완료: 모든 리소스가 정리되었습니다")
}

// refresh 지금까지 가져온 모든 상품 URL의 정보를 캐시를 우회하여 다시 가져오고,
// 결과 요약을 설정된 Notifier로 발송합니다.
func (s *Service) refresh() {
	urls := s.client.ImportedURLs()
	if len(urls) == 0 {
		applog.WithComponent(component).Debug("가격 갱신 대상 URL이 없어 이번 주기를 건너뜁니다")
		return
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"url_count": len(urls),
	}).Info("가격 갱신을 시작합니다")

	var succeeded, failed int
	var failureDetails string
	for _, pageURL := range urls {
		ctx, cancel := context.WithTimeout(context.Background(), s.importerConfig.TimeoutDuration())
		product, err := s.client.Refresh(ctx, pageURL)
		cancel()

		if err != nil {
			failed++
			failureDetails += fmt.Sprintf("\r\n- %s: %s", pageURL, err)
			applog.WithComponentAndFields(component, applog.Fields{
				"url": pageURL,
			}).WithError(err).Error("상품 가격 갱신이 실패하였습니다")
			continue
		}

		succeeded++
		applog.WithComponentAndFields(component, applog.Fields{
			"url":   pageURL,
			"sku":   product.SKU,
			"price": product.Price,
		}).Debug("상품 가격 갱신 성공")
	}

	message := fmt.Sprintf("가격 갱신이 완료되었습니다. (성공: %d건, 실패: %d건)%s", succeeded, failed, failureDetails)
	s.notifyRefreshResult(message, failed > 0)
}

func (s *Service) notifyRefreshResult(message string, errorOccurred bool) {
	var err error
	if notifierID := s.importerConfig.Refresh.NotifierID; notifierID != "" {
		err = s.notificationSender.Notify(contract.NotifierID(notifierID), "상품 가격 갱신", message, errorOccurred)
	} else if errorOccurred {
		err = s.notificationSender.NotifyDefaultWithError(message)
	} else {
		err = s.notificationSender.NotifyDefault(message)
	}

	if err != nil {
		applog.WithComponent(component).WithError(err).Error("가격 갱신 결과 알림 발송이 실패하였습니다")
	}
}

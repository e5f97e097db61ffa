package notification

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/darkkaiser/capture-server/internal/config"
	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// NotificationService 설정된 알림 채널들을 실행하고 알림 발송 요청을 분배하는 서비스입니다.
// contract.NotificationSender를 구현합니다.
type NotificationService struct {
	appConfig *config.AppConfig

	running   bool
	runningMu sync.Mutex

	notifierHandlers       []notifierHandler
	defaultNotifierHandler notifierHandler

	// notificationStopWaiter 모든 하위 알림 채널의 종료를 대기하는 WaitGroup
	notificationStopWaiter *sync.WaitGroup
}

// NewService 알림 서비스를 생성합니다.
func NewService(appConfig *config.AppConfig) *NotificationService {
	return &NotificationService{
		appConfig: appConfig,

		running:   false,
		runningMu: sync.Mutex{},

		notificationStopWaiter: &sync.WaitGroup{},
	}
}

// Start 알림 서비스를 시작하여 설정된 알림 채널들을 활성화합니다.
func (s *NotificationService) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent("notification.service").Info("Notification 서비스 시작중...")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent("notification.service").Warn("Notification 서비스가 이미 시작됨!!!")
		return nil
	}

	// 1. 설정된 알림 채널들을 초기화한다. 채널이 하나도 없으면 콘솔 채널로 대체한다.
	handlers, err := s.createNotifiers()
	if err != nil {
		defer serviceStopWG.Done()
		return apperrors.Wrap(err, apperrors.Internal, "Notifier 초기화 중 에러가 발생했습니다")
	}

	for _, h := range handlers {
		s.notifierHandlers = append(s.notifierHandlers, h)

		s.notificationStopWaiter.Add(1)

		go h.Run(serviceStopCtx, s.notificationStopWaiter)

		applog.WithComponentAndFields("notification.service", log.Fields{
			"notifier_id": h.ID(),
		}).Debug("Notifier가 Notification 서비스에 등록됨")
	}

	// 2. 기본 알림 채널을 결정한다.
	defaultID := contract.NotifierID(s.appConfig.Notifiers.DefaultNotifierID)
	for _, h := range s.notifierHandlers {
		if h.ID() == defaultID {
			s.defaultNotifierHandler = h
			break
		}
	}
	if s.defaultNotifierHandler == nil {
		if len(s.appConfig.Notifiers.Telegrams) > 0 {
			defer serviceStopWG.Done()
			return apperrors.New(apperrors.NotFound, fmt.Sprintf("기본 NotifierID('%s')를 찾을 수 없습니다", defaultID))
		}
		s.defaultNotifierHandler = s.notifierHandlers[0]
	}

	// 3. 서비스 종료 감시 루틴 실행
	go s.waitForShutdown(serviceStopCtx, serviceStopWG)

	s.running = true

	applog.WithComponent("notification.service").Info("Notification 서비스 시작됨")

	return nil
}

func (s *NotificationService) createNotifiers() ([]notifierHandler, error) {
	if len(s.appConfig.Notifiers.Telegrams) == 0 {
		applog.WithComponent("notification.service").Warn("설정된 알림 채널이 없으므로 콘솔 알림으로 대체됩니다")
		return []notifierHandler{newConsoleNotifier()}, nil
	}

	var handlers []notifierHandler
	for _, telegram := range s.appConfig.Notifiers.Telegrams {
		h, err := newTelegramNotifier(contract.NotifierID(telegram.ID), telegram.BotToken, telegram.ChatID)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}
	return handlers, nil
}

// waitForShutdown 서비스의 종료 신호를 감지하고 리소스를 안전하게 정리합니다.
func (s *NotificationService) waitForShutdown(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	<-serviceStopCtx.Done()

	applog.WithComponent("notification.service").Info("Notification 서비스 중지중...")

	// 등록된 모든 알림 채널의 고루틴 작업이 완료될 때까지 대기한다.
	s.notificationStopWaiter.Wait()

	s.runningMu.Lock()
	s.running = false
	s.notifierHandlers = nil
	s.defaultNotifierHandler = nil
	s.runningMu.Unlock()

	applog.WithComponent("notification.service").Info("Notification 서비스 중지됨")
}

// Notify 지정된 Notifier를 통해 알림 메시지를 발송합니다.
// 발송 요청이 정상적으로 큐에 등록되면 nil을 반환합니다. (실제 전송 결과와는 무관)
func (s *NotificationService) Notify(notifierID contract.NotifierID, title string, message string, errorOccurred bool) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		applog.WithComponentAndFields("notification.service", log.Fields{
			"notifier_id": notifierID,
		}).Warn("Notification 서비스가 실행 중이 아니어서 메시지를 전송할 수 없습니다")
		return contract.ErrServiceStopped
	}

	request := &notifyRequest{
		title:         title,
		message:       message,
		errorOccurred: errorOccurred,
	}

	for _, h := range s.notifierHandlers {
		if h.ID() == notifierID {
			if !h.Notify(request) {
				return apperrors.New(apperrors.Unavailable, fmt.Sprintf("Notifier('%s')의 발송 큐 등록이 실패하였습니다", notifierID))
			}
			return nil
		}
	}

	m := fmt.Sprintf("알 수 없는 Notifier('%s')입니다. 알림메시지 발송이 실패하였습니다.(Message:%s)", notifierID, message)

	applog.WithComponentAndFields("notification.service", log.Fields{
		"notifier_id": notifierID,
	}).Error(m)

	s.defaultNotifierHandler.Notify(&notifyRequest{message: m, errorOccurred: true})

	return contract.ErrNotFoundNotifier
}

// NotifyDefault 시스템 기본 알림 채널로 알림 메시지를 발송합니다.
func (s *NotificationService) NotifyDefault(message string) error {
	return s.notifyDefault(&notifyRequest{message: message})
}

// NotifyDefaultWithError 시스템 기본 알림 채널로 "에러" 알림 메시지를 발송합니다.
// 추출 파이프라인 실패 등 관리자의 주의가 필요한 상황에서 사용합니다.
func (s *NotificationService) NotifyDefaultWithError(message string) error {
	return s.notifyDefault(&notifyRequest{message: message, errorOccurred: true})
}

func (s *NotificationService) notifyDefault(request *notifyRequest) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.defaultNotifierHandler == nil {
		applog.WithComponent("notification.service").Warn("Notification 서비스가 중지된 상태여서 메시지를 전송할 수 없습니다")
		return contract.ErrServiceStopped
	}

	if !s.defaultNotifierHandler.Notify(request) {
		return apperrors.New(apperrors.Unavailable, "기본 Notifier의 발송 큐 등록이 실패하였습니다")
	}

	return nil
}

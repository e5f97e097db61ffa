package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/darkkaiser/capture-server/internal/config"
	"github.com/darkkaiser/capture-server/internal/pkg/version"
	"github.com/darkkaiser/capture-server/internal/service/api/handler"
	"github.com/darkkaiser/capture-server/internal/service/bridge"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// shutdownTimeout Graceful Shutdown 시 최대 대기 시간
const shutdownTimeout = 5 * time.Second

// Service Bridge API 서버의 생명주기를 관리하는 서비스입니다.
//
// 외부에서 실행되는 캡처 인스턴스가 보낸 봉투를 HTTP로 수신하여
// 프로세스 내 수신부와 동일한 Router로 분배합니다.
type Service struct {
	appConfig *config.AppConfig

	router             *bridge.Router
	resolver           handler.ShareResolver
	notificationSender contract.NotificationSender

	running   bool
	runningMu sync.Mutex
}

// NewService API 서비스를 생성합니다. resolver는 nil일 수 있습니다.
func NewService(appConfig *config.AppConfig, router *bridge.Router, resolver handler.ShareResolver, notificationSender contract.NotificationSender) *Service {
	if appConfig == nil {
		panic("AppConfig 객체가 초기화되지 않았습니다")
	}
	if router == nil {
		panic("Router 객체가 초기화되지 않았습니다")
	}

	return &Service{
		appConfig: appConfig,

		router:             router,
		resolver:           resolver,
		notificationSender: notificationSender,

		running:   false,
		runningMu: sync.Mutex{},
	}
}

// Start API 서비스를 시작합니다. 실제 서버는 고루틴에서 실행되며 즉시 반환합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent("api.service").Info("BridgeAPI 서비스 시작중...")

	if s.running {
		defer serviceStopWG.Done()
		applog.WithComponent("api.service").Warn("BridgeAPI 서비스가 이미 시작됨!!!")
		return nil
	}

	s.running = true

	go s.runServiceLoop(serviceStopCtx, serviceStopWG)

	applog.WithComponent("api.service").Info("BridgeAPI 서비스 시작됨")

	return nil
}

// runServiceLoop 서버 설정, HTTP 서버 시작, 종료 대기를 순차적으로 수행합니다.
func (s *Service) runServiceLoop(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()

	e := s.setupServer()

	httpServerDone := make(chan struct{})
	go s.startHTTPServer(e, httpServerDone)

	s.waitForShutdown(serviceStopCtx, e, httpServerDone)
}

func (s *Service) setupServer() *echo.Echo {
	h := handler.NewHandler(s.router, s.resolver, version.Get())

	e := NewHTTPServer(HTTPServerConfig{
		Debug:     s.appConfig.Debug,
		RateLimit: s.appConfig.BridgeAPI.RateLimit,
		RateBurst: s.appConfig.BridgeAPI.RateBurst,
	})

	SetupRoutes(e, h)

	return e
}

// startHTTPServer HTTP 서버를 시작합니다. 서버가 종료될 때까지 블로킹됩니다.
func (s *Service) startHTTPServer(e *echo.Echo, done chan struct{}) {
	defer close(done)

	port := s.appConfig.BridgeAPI.ListenPort
	applog.WithComponentAndFields("api.service", log.Fields{
		"port": port,
	}).Debug("BridgeAPI HTTP 서버 시작중...")

	s.handleServerError(e.Start(fmt.Sprintf(":%d", port)))
}

// handleServerError HTTP 서버 종료 시의 에러를 처리합니다.
// Graceful Shutdown은 정상 흐름이며, 그 외의 에러는 관리자에게 알립니다.
func (s *Service) handleServerError(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent("api.service").Info("BridgeAPI HTTP 서버 중지됨")
		return
	}

	message := "BridgeAPI HTTP 서버가 비정상적으로 중지되었습니다"
	applog.WithComponentAndFields("api.service", log.Fields{
		"port":  s.appConfig.BridgeAPI.ListenPort,
		"error": err,
	}).Error(message)

	if s.notificationSender != nil {
		_ = s.notificationSender.NotifyDefaultWithError(fmt.Sprintf("%s\r\n\r\n%s", message, err))
	}
}

// waitForShutdown 종료 신호를 대기하고 Graceful Shutdown을 수행합니다.
func (s *Service) waitForShutdown(serviceStopCtx context.Context, e *echo.Echo, httpServerDone chan struct{}) {
	select {
	case <-serviceStopCtx.Done():
		applog.WithComponent("api.service").Info("BridgeAPI 서비스 중지중...")

	case <-httpServerDone:
		// HTTP 서버가 예기치 않게 종료됨 (포트 바인딩 실패 등)
		applog.WithComponent("api.service").Error("BridgeAPI HTTP 서버가 예기치 않게 종료되어 서비스를 중지합니다")

		s.cleanup()

		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields("api.service", log.Fields{
			"error": err,
		}).Error("BridgeAPI HTTP 서버의 Graceful Shutdown이 실패하였습니다")
	}

	<-httpServerDone

	s.cleanup()
}

func (s *Service) cleanup() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent("api.service").Info("BridgeAPI 서비스 중지됨")
}

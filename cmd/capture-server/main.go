package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/darkkaiser/capture-server/internal/config"
	"github.com/darkkaiser/capture-server/internal/pkg/version"
	"github.com/darkkaiser/capture-server/internal/service"
	"github.com/darkkaiser/capture-server/internal/service/api"
	"github.com/darkkaiser/capture-server/internal/service/bridge"
	"github.com/darkkaiser/capture-server/internal/service/capture"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	_ "github.com/darkkaiser/capture-server/internal/service/capture/profile/harborfreight"
	_ "github.com/darkkaiser/capture-server/internal/service/capture/profile/homedepot"
	_ "github.com/darkkaiser/capture-server/internal/service/capture/profile/lowes"
	"github.com/darkkaiser/capture-server/internal/service/host"
	"github.com/darkkaiser/capture-server/internal/service/importer"
	"github.com/darkkaiser/capture-server/internal/service/notification"
	"github.com/darkkaiser/capture-server/internal/service/share"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

const (
	banner = `
   ____                _                       ____
  / ___|  __ _  _ __  | |_  _   _  _ __  ___  / ___|   ___  _ __ __   __  ___  _ __
 | |     / _' || '_ \ | __|| | | || '__|/ _ \ \___ \  / _ \| '__|\ \ / / / _ \| '__|
 | |___ | (_| || |_) || |_ | |_| || |  |  __/  ___) ||  __/| |    \ V / |  __/| |
  \____| \__,_|| .__/  \__| \__,_||_|   \___| |____/  \___||_|     \_/   \___||_|
               |_|                                             %s
                                                        developed by DarkKaiser
--------------------------------------------------------------------------------
`
)

func main() {
	// 환경변수 파일(.env)은 환경설정 로드보다 먼저 읽어야 한다. (파일이 없으면 무시)
	_ = godotenv.Load()

	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := loadAppConfig(os.Args[1:])
	if err != nil {
		// 로거 초기화 전이므로 표준 에러에 출력
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		os.Exit(1)
	}

	// 2. 로그 시스템 초기화
	var logOpts applog.Options
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	} else {
		logOpts = applog.NewProductionOptions(config.AppName)
	}

	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		os.Exit(1)
	}
	defer appLogCloser.Close()

	// 3. 로그 레벨 최종 확정
	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()

	// 아스키아트 출력(https://ko.rakko.tools/tools/68/, 폰트:standard)
	fmt.Printf(banner, buildInfo.Version)

	// 빌드 정보 출력
	applog.WithComponentAndFields("main", log.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	// 서비스를 생성하고 초기화한다.
	transport := bridge.NewChannelTransport()

	notificationService := notification.NewService(appConfig)
	hostService := host.NewService(appConfig, transport, notificationService)

	importerClient := importer.NewClient(&appConfig.Importer)
	importerService := importer.NewService(&appConfig.Importer, importerClient, notificationService)

	resolver := share.NewResolver(&appConfig.Share, profile.Default(), importerClient, bridge.NewSender(transport))

	apiService := api.NewService(appConfig, hostService.Router(), resolver, notificationService)
	captureService := capture.NewService(appConfig, profile.Default(), transport)

	// Set up cancellation context and waitgroup
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	serviceStopWG := &sync.WaitGroup{}

	// 서비스를 시작한다.
	services := []service.Service{notificationService, hostService, importerService, apiService, captureService}
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			applog.WithComponentAndFields("main", log.Fields{
				"error": err,
			}).Error("서비스 초기화 실패")

			cancel() // 다른 서비스들도 종료
			serviceStopWG.Wait()

			log.Fatal("서비스 초기화 실패로 프로그램을 종료합니다")
		}
	}

	// Handle sigterm and await termC signal
	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC // Blocks here until interrupted

	// Handle shutdown
	applog.WithComponent("main").Info("Shutdown signal received")
	cancel()             // Signal cancellation to context.Context
	serviceStopWG.Wait() // Block here until are workers are done
}

// loadAppConfig 실행 인자로 설정 파일 경로가 주어지면 해당 파일을, 아니면 기본 설정 파일을 로드합니다.
func loadAppConfig(args []string) (*config.AppConfig, error) {
	if len(args) > 0 && args[0] != "" {
		return config.LoadWithFile(args[0])
	}
	return config.Load()
}

// Package api 외부 캡처 인스턴스용 Bridge API 서버를 제공합니다.
package api

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	appmiddleware "github.com/darkkaiser/capture-server/internal/service/api/middleware"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

const (
	defaultReadTimeout       = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second

	// defaultMaxBodySize 수신 가능한 봉투의 최대 크기.
	// 장바구니 스냅샷 전체를 담아도 충분한 값이다.
	defaultMaxBodySize = "2M"
)

// HTTPServerConfig HTTP 서버 생성에 필요한 설정입니다.
type HTTPServerConfig struct {
	Debug bool

	// RateLimit 클라이언트 IP당 초당 허용 요청 수 (0: 제한 없음)
	RateLimit float64

	// RateBurst 순간적으로 허용하는 최대 요청 수
	RateBurst int
}

// NewHTTPServer 미들웨어가 구성된 Echo 인스턴스를 생성합니다.
//
// 미들웨어 적용 순서:
//  1. PanicRecovery - 핸들러의 panic 복구 (가장 먼저 적용)
//  2. RequestID - 요청 추적용 ID 부여
//  3. Server 헤더 제거 - 기술 스택 노출 방지
//  4. RateLimiting - IP 기반 요청 제한
//  5. BodyLimit - 요청 본문 크기 제한
//  6. Secure - 보안 헤더 추가
//
// 라우트 설정은 포함되지 않으며, 반환된 인스턴스에 별도로 설정해야 합니다.
func NewHTTPServer(cfg HTTPServerConfig) *echo.Echo {
	e := echo.New()

	e.Debug = cfg.Debug
	e.HideBanner = true
	e.Logger = appmiddleware.Logger{Logger: applog.StandardLogger()}

	e.Server.ReadTimeout = defaultReadTimeout
	e.Server.ReadHeaderTimeout = defaultReadHeaderTimeout
	e.Server.WriteTimeout = defaultWriteTimeout
	e.Server.IdleTimeout = defaultIdleTimeout

	e.Use(appmiddleware.PanicRecovery())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set(echo.HeaderServer, "")
			return next(c)
		}
	})
	e.Use(appmiddleware.RateLimiting(cfg.RateLimit, cfg.RateBurst))
	e.Use(middleware.BodyLimit(defaultMaxBodySize))
	e.Use(middleware.Secure())

	return e
}

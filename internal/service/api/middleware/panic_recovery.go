// Package middleware Bridge API 서버의 공통 미들웨어를 제공합니다.
package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// stackBufferSize panic 발생 시 스택 트레이스를 저장할 버퍼 크기 (4KB)
const stackBufferSize = 4 << 10

// PanicRecovery 핸들러에서 발생한 panic을 복구하고 로깅하는 미들웨어를 반환합니다.
// 서버 다운을 방지하기 위해 가장 먼저 적용되어야 합니다.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					err, ok := r.(error)
					if !ok {
						err = apperrors.New(apperrors.Internal, fmt.Sprintf("%v", r))
					}

					stack := make([]byte, stackBufferSize)
					length := runtime.Stack(stack, false)

					fields := log.Fields{
						"error": err,
						"stack": string(stack[:length]),
					}
					if requestID := c.Response().Header().Get(echo.HeaderXRequestID); requestID != "" {
						fields["request_id"] = requestID
					}

					applog.WithComponentAndFields("api.middleware", fields).Error("HTTP 요청 처리중에 panic 발생")

					c.Error(echo.NewHTTPError(http.StatusInternalServerError))
				}
			}()

			return next(c)
		}
	}
}

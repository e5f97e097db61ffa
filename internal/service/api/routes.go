package api

import (
	"github.com/labstack/echo/v4"

	"github.com/darkkaiser/capture-server/internal/service/api/handler"
)

// SetupRoutes 모든 API 엔드포인트를 등록합니다.
func SetupRoutes(e *echo.Echo, h *handler.Handler) {
	e.GET("/healthz", h.Healthz)
	e.GET("/version", h.Version)

	v1 := e.Group("/api/v1")
	v1.POST("/bridge", h.Bridge)
	v1.POST("/share", h.Share)
}

// Package handler Bridge API의 HTTP 요청 핸들러를 제공합니다.
package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/pkg/version"
	"github.com/darkkaiser/capture-server/internal/service/api/model"
	"github.com/darkkaiser/capture-server/internal/service/bridge"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// ShareResolver 공유된 자유 형식 텍스트를 상품 정보로 변환하는 인터페이스입니다.
type ShareResolver interface {
	Resolve(ctx context.Context, text string) (*contract.ExtractedProduct, error)
}

// Handler Bridge API의 모든 엔드포인트 핸들러입니다.
type Handler struct {
	router    *bridge.Router
	resolver  ShareResolver
	buildInfo version.Info
}

// NewHandler Handler를 생성합니다. resolver는 nil일 수 있으며,
// 이 경우 공유 인텐트 엔드포인트는 비활성화됩니다.
func NewHandler(router *bridge.Router, resolver ShareResolver, buildInfo version.Info) *Handler {
	if router == nil {
		panic("Router 객체가 초기화되지 않았습니다")
	}

	return &Handler{
		router:    router,
		resolver:  resolver,
		buildInfo: buildInfo,
	}
}

// Bridge 외부 캡처 인스턴스가 보낸 봉투를 수신하여 수신부로 분배합니다.
//
// 봉투의 구조 검증(버전, 타입)에 실패하면 400을 반환하고, 검증을 통과한
// 봉투는 즉시 202로 응답한 후 핸들러에서 처리됩니다. 본문 처리의 실패는
// 송신측의 관심사가 아니므로 응답에 반영되지 않습니다.
func (h *Handler) Bridge(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, model.Error("요청 본문을 읽을 수 없습니다."))
	}

	envelope, err := bridge.Decode(raw)
	if err != nil {
		applog.WithComponent("api.handler").WithError(err).Warn("수신한 봉투의 해석이 실패하였습니다.")
		return c.JSON(http.StatusBadRequest, model.Error(err.Error()))
	}

	h.router.Dispatch(envelope)

	return c.JSON(http.StatusAccepted, model.Accepted())
}

// shareRequest 공유 인텐트 엔드포인트의 요청 본문
type shareRequest struct {
	Text string `json:"text"`
}

// Share 공유된 자유 형식 텍스트에서 상품 URL을 추출하여 상품 정보로 변환합니다.
func (h *Handler) Share(c echo.Context) error {
	if h.resolver == nil {
		return c.JSON(http.StatusServiceUnavailable, model.Error("공유 인텐트 처리가 비활성화되어 있습니다."))
	}

	var req shareRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, model.Error("요청 본문을 해석할 수 없습니다."))
	}
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, model.Error("공유된 텍스트가 비어 있습니다."))
	}

	product, err := h.resolver.Resolve(c.Request().Context(), req.Text)
	if err != nil {
		applog.WithComponent("api.handler").WithError(err).Warn("공유된 텍스트의 변환이 실패하였습니다.")

		if apperrors.Is(err, apperrors.InvalidInput) {
			return c.JSON(http.StatusBadRequest, model.Error(err.Error()))
		}
		return c.JSON(http.StatusBadGateway, model.Error(err.Error()))
	}

	return c.JSON(http.StatusOK, product)
}

// Healthz 서버의 동작 여부를 확인합니다.
func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, model.OK())
}

// Version 서버의 빌드 정보를 반환합니다.
func (h *Handler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, h.buildInfo.ToMap())
}

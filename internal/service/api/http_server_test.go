package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/pkg/version"
	"github.com/darkkaiser/capture-server/internal/service/api/handler"
	"github.com/darkkaiser/capture-server/internal/service/bridge"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

func newTestServer(router *bridge.Router, cfg HTTPServerConfig) http.Handler {
	return newTestServerWithResolver(router, nil, cfg)
}

func newTestServerWithResolver(router *bridge.Router, resolver handler.ShareResolver, cfg HTTPServerConfig) http.Handler {
	e := NewHTTPServer(cfg)
	SetupRoutes(e, handler.NewHandler(router, resolver, version.Get()))
	return e
}

// stubResolver 고정된 결과를 반환하는 ShareResolver 테스트 구현체
type stubResolver struct {
	product *contract.ExtractedProduct
	err     error
}

func (r *stubResolver) Resolve(_ context.Context, _ string) (*contract.ExtractedProduct, error) {
	return r.product, r.err
}

func TestHealthz(t *testing.T) {
	server := newTestServer(bridge.NewRouter(), HTTPServerConfig{})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVersion(t *testing.T) {
	server := newTestServer(bridge.NewRouter(), HTTPServerConfig{})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "version")
}

func TestBridgeEndpoint(t *testing.T) {
	t.Run("유효한 봉투 수신", func(t *testing.T) {
		var gotMessage string
		router := bridge.NewRouter().
			OnError(func(_ contract.RetailerID, message string) { gotMessage = message })
		server := newTestServer(router, HTTPServerConfig{})

		envelope := bridge.NewErrorEnvelope("homedepot", "추출 실패")
		raw, err := json.Marshal(envelope)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bridge", strings.NewReader(string(raw)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "추출 실패", gotMessage)
	})

	t.Run("유효하지 않은 봉투 거부", func(t *testing.T) {
		server := newTestServer(bridge.NewRouter(), HTTPServerConfig{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bridge", strings.NewReader(`{invalid`))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("버전 불일치 봉투 거부", func(t *testing.T) {
		server := newTestServer(bridge.NewRouter(), HTTPServerConfig{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/bridge",
			strings.NewReader(`{"version":99,"type":"ERROR","message":"실패"}`))
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestShareEndpoint(t *testing.T) {
	t.Run("변환된 상품 정보를 반환한다", func(t *testing.T) {
		product := contract.NewExtractedProduct()
		product.SKU = "204233858"
		product.Title = "Husky Tool Chest"

		server := newTestServerWithResolver(bridge.NewRouter(), &stubResolver{product: product}, HTTPServerConfig{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/share",
			strings.NewReader(`{"text":"https://www.homedepot.com/p/204233858"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "204233858", body["sku"])
	})

	t.Run("잘못된 URL은 400으로 거부한다", func(t *testing.T) {
		resolver := &stubResolver{err: apperrors.New(apperrors.InvalidInput, "지원하지 않는 소매점의 URL입니다")}
		server := newTestServerWithResolver(bridge.NewRouter(), resolver, HTTPServerConfig{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/share",
			strings.NewReader(`{"text":"https://www.amazon.com/dp/B000000000"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("원격 서비스 실패는 502로 응답한다", func(t *testing.T) {
		resolver := &stubResolver{err: apperrors.New(apperrors.Unavailable, "원격 가져오기 서비스 호출 실패")}
		server := newTestServerWithResolver(bridge.NewRouter(), resolver, HTTPServerConfig{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/share",
			strings.NewReader(`{"text":"https://www.homedepot.com/p/1"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("빈 텍스트는 400으로 거부한다", func(t *testing.T) {
		server := newTestServerWithResolver(bridge.NewRouter(), &stubResolver{}, HTTPServerConfig{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/share", strings.NewReader(`{"text":""}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("처리부 미설정 시 503으로 응답한다", func(t *testing.T) {
		server := newTestServer(bridge.NewRouter(), HTTPServerConfig{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/share", strings.NewReader(`{"text":"anything"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestRateLimiting(t *testing.T) {
	server := newTestServer(bridge.NewRouter(), HTTPServerConfig{RateLimit: 1, RateBurst: 1})

	first := httptest.NewRecorder()
	server.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	server.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
}

package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/capture-server/internal/config"
	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
)

// newTestClient 지정된 서버를 바라보는 Client를 생성합니다.
// 실패 경로 테스트가 재시도 대기로 느려지지 않도록 재시도 없는 Fetcher로 교체합니다.
func newTestClient(serverURL string) *Client {
	c := NewClient(&config.ImporterConfig{
		Endpoint: serverURL,
		Timeout:  "2s",
		CacheTTL: "1m",
	})
	c.fetcher = newUserAgentFetcher(newHTTPFetcher(2*time.Second), "")
	return c
}

func TestClientImport(t *testing.T) {
	t.Run("원격 응답을 상품 정보로 디코딩한다", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sku":"1001141525","title":"DEWALT 20V MAX Drill","price":"99.00"}`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		product, err := c.Import(context.Background(), "https://www.homedepot.com/p/1001141525")
		require.NoError(t, err)

		assert.Equal(t, "1001141525", product.SKU)
		assert.Equal(t, "DEWALT 20V MAX Drill", product.Title)
		assert.Equal(t, "99.00", product.Price)
		// 응답에 없는 필드는 안전한 기본값을 유지한다
		assert.Equal(t, "1", product.Quantity)
		// 응답에 URL이 없으면 요청 URL로 채운다
		assert.Equal(t, "https://www.homedepot.com/p/1001141525", product.URL)
	})

	t.Run("동일 URL의 재호출은 캐시로 응답한다", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sku":"204233858","title":"Husky Tool Chest"}`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		first, err := c.Import(context.Background(), "https://www.homedepot.com/p/204233858")
		require.NoError(t, err)
		second, err := c.Import(context.Background(), "https://www.homedepot.com/p/204233858")
		require.NoError(t, err)

		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, first.SKU, second.SKU)
	})

	t.Run("Refresh는 캐시를 우회하여 다시 가져온다", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			if hits.Load() == 1 {
				_, _ = w.Write([]byte(`{"sku":"5001740917","price":"329.00"}`))
			} else {
				_, _ = w.Write([]byte(`{"sku":"5001740917","price":"299.00"}`))
			}
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		product, err := c.Import(context.Background(), "https://www.lowes.com/pd/5001740917")
		require.NoError(t, err)
		assert.Equal(t, "329.00", product.Price)

		refreshed, err := c.Refresh(context.Background(), "https://www.lowes.com/pd/5001740917")
		require.NoError(t, err)
		assert.Equal(t, "299.00", refreshed.Price)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("성공한 URL은 중복 없이 기록된다", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sku":"57448","title":"Predator Generator"}`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		_, err := c.Import(context.Background(), "https://www.harborfreight.com/57448.html")
		require.NoError(t, err)
		_, err = c.Refresh(context.Background(), "https://www.harborfreight.com/57448.html")
		require.NoError(t, err)

		assert.Equal(t, []string{"https://www.harborfreight.com/57448.html"}, c.ImportedURLs())
	})
}

func TestClientImportFailures(t *testing.T) {
	t.Run("엔드포인트 미설정 시 Unavailable 에러를 반환한다", func(t *testing.T) {
		c := NewClient(&config.ImporterConfig{})

		_, err := c.Import(context.Background(), "https://www.homedepot.com/p/1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Unavailable))
	})

	t.Run("빈 URL은 InvalidInput 에러를 반환한다", func(t *testing.T) {
		c := newTestClient("http://127.0.0.1:0")

		_, err := c.Import(context.Background(), "")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("서버 오류 상태 코드는 Unavailable 에러로 변환된다", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		_, err := c.Import(context.Background(), "https://www.homedepot.com/p/1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.Unavailable))
	})

	t.Run("JSON이 아닌 응답은 ParsingFailed 에러로 처리된다", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		_, err := c.Import(context.Background(), "https://www.homedepot.com/p/1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
	})

	t.Run("식별 정보가 없는 응답은 거부한다", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := newTestClient(server.URL)

		_, err := c.Import(context.Background(), "https://www.homedepot.com/p/1")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ParsingFailed))
		// 실패한 URL은 갱신 대상으로 기록되지 않는다
		assert.Empty(t, c.ImportedURLs())
	})
}

func TestRetryFetcher(t *testing.T) {
	t.Run("일시적인 서버 오류 후 재시도하여 성공한다", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		f := newRetryFetcher(newHTTPFetcher(2*time.Second), 2, time.Millisecond)

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := f.Do(req)
		require.NoError(t, err)
		defer drainAndCloseBody(resp)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("재시도 횟수를 모두 소진하면 마지막 응답을 반환한다", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		f := newRetryFetcher(newHTTPFetcher(2*time.Second), 2, time.Millisecond)

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := f.Do(req)
		require.NoError(t, err)
		defer drainAndCloseBody(resp)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("4xx 응답은 재시도하지 않는다", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		f := newRetryFetcher(newHTTPFetcher(2*time.Second), 2, time.Millisecond)

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := f.Do(req)
		require.NoError(t, err)
		defer drainAndCloseBody(resp)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, int32(1), hits.Load())
	})
}

func TestUserAgentFetcher(t *testing.T) {
	t.Run("User-Agent 헤더가 없으면 기본값을 주입한다", func(t *testing.T) {
		var receivedUA string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			receivedUA = r.Header.Get("User-Agent")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		f := newUserAgentFetcher(newHTTPFetcher(2*time.Second), "")

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		require.NoError(t, err)

		resp, err := f.Do(req)
		require.NoError(t, err)
		drainAndCloseBody(resp)

		assert.Equal(t, defaultUserAgent, receivedUA)
	})
}

// Package importer 외부 가져오기(Import) 서비스를 호출하여 상품 URL로부터
// 추출 결과와 동일한 형태의 상품 정보를 가져오는 클라이언트와 주기적인
// 가격 갱신 서비스를 제공합니다.
package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/darkkaiser/capture-server/internal/config"
	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/contract"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// importRequest 원격 가져오기 서비스로 전송되는 요청 본문
type importRequest struct {
	URL string `json:"url"`
}

// Client 원격 가져오기 서비스의 HTTP 클라이언트입니다.
//
// 동일 URL에 대한 결과를 일정 시간 캐싱하고, 초당 호출 횟수를 제한하여
// 원격 서비스에 과도한 부하가 가지 않도록 합니다.
type Client struct {
	endpoint string

	fetcher Fetcher

	// resultCache URL별 가져오기 결과 캐시
	resultCache *cache.Cache

	// limiter 원격 서비스 호출의 클라이언트측 속도 제한기
	limiter *rate.Limiter

	// importedURLs 지금까지 성공적으로 가져온 URL 목록 (등록 순서 유지)
	importedURLs   []string
	importedURLSet map[string]struct{}
	importedMu     sync.Mutex
}

// NewClient 설정값을 기반으로 새로운 Client 인스턴스를 생성합니다.
func NewClient(importerConfig *config.ImporterConfig) *Client {
	if importerConfig == nil {
		panic("ImporterConfig는 필수입니다")
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if importerConfig.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(importerConfig.RateLimit), 1)
	}

	cacheTTL := importerConfig.CacheTTLDuration()

	var fetcher Fetcher = newHTTPFetcher(importerConfig.TimeoutDuration())
	fetcher = newUserAgentFetcher(fetcher, "")
	fetcher = newRetryFetcher(fetcher, defaultMaxRetries, defaultRetryDelay)

	return &Client{
		endpoint: importerConfig.Endpoint,

		fetcher: fetcher,

		resultCache: cache.New(cacheTTL, 2*cacheTTL),

		limiter: limiter,

		importedURLSet: make(map[string]struct{}),
	}
}

// Import 지정된 상품 URL의 정보를 원격 가져오기 서비스로부터 조회합니다.
// 동일 URL에 대한 최근 결과가 캐시에 남아 있으면 원격 호출 없이 캐시된 값을 반환합니다.
func (c *Client) Import(ctx context.Context, pageURL string) (*contract.ExtractedProduct, error) {
	if c.endpoint == "" {
		return nil, apperrors.New(apperrors.Unavailable, "원격 가져오기 서비스의 엔드포인트가 설정되지 않았습니다")
	}
	if pageURL == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "가져오기 대상 URL이 비어 있습니다")
	}

	if v, found := c.resultCache.Get(pageURL); found {
		cached := v.(contract.ExtractedProduct)
		return &cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "원격 가져오기 호출의 속도 제한 대기 중 취소되었습니다")
	}

	product, err := c.fetchProduct(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	c.resultCache.Set(pageURL, *product, cache.DefaultExpiration)
	c.recordImported(pageURL)

	applog.WithComponentAndFields("importer.client", applog.Fields{
		"url": pageURL,
		"sku": product.SKU,
	}).Debug("원격 상품 가져오기 성공")

	return product, nil
}

// Refresh 캐시를 무시하고 지정된 URL의 상품 정보를 다시 가져옵니다.
func (c *Client) Refresh(ctx context.Context, pageURL string) (*contract.ExtractedProduct, error) {
	c.resultCache.Delete(pageURL)
	return c.Import(ctx, pageURL)
}

// ImportedURLs 지금까지 성공적으로 가져온 URL 목록의 복사본을 반환합니다.
func (c *Client) ImportedURLs() []string {
	c.importedMu.Lock()
	defer c.importedMu.Unlock()

	urls := make([]string, len(c.importedURLs))
	copy(urls, c.importedURLs)
	return urls
}

func (c *Client) recordImported(pageURL string) {
	c.importedMu.Lock()
	defer c.importedMu.Unlock()

	if _, exists := c.importedURLSet[pageURL]; exists {
		return
	}
	c.importedURLSet[pageURL] = struct{}{}
	c.importedURLs = append(c.importedURLs, pageURL)
}

func (c *Client) fetchProduct(ctx context.Context, pageURL string) (*contract.ExtractedProduct, error) {
	requestBody, err := json.Marshal(&importRequest{URL: pageURL})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "가져오기 요청 본문 생성에 실패했습니다")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, fmt.Sprintf("가져오기 요청 생성에 실패했습니다. (URL: %s)", c.endpoint))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("원격 가져오기 서비스(%s) 호출 중 네트워크 오류가 발생했습니다", c.endpoint))
	}
	defer drainAndCloseBody(resp)

	if err := checkResponseStatus(resp); err != nil {
		return nil, err
	}
	if err := checkContentType(resp, "application/json"); err != nil {
		return nil, err
	}

	body, err := readLimitedBody(resp)
	if err != nil {
		return nil, err
	}

	product := contract.NewExtractedProduct()
	if err := json.Unmarshal(body, product); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "원격 가져오기 응답을 상품 정보로 해석할 수 없습니다")
	}

	if product.SKU == "" && product.Title == "" {
		return nil, apperrors.New(apperrors.ParsingFailed, "원격 가져오기 응답에 상품 식별 정보(SKU, 상품명)가 없습니다")
	}
	if product.URL == "" {
		product.URL = pageURL
	}

	return product, nil
}

package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
)

const (
	// defaultUserAgent 원격 가져오기 서비스 호출 시 사용하는 User-Agent 문자열입니다.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// defaultMaxRetries 네트워크 오류 또는 일시적인 서버 오류 시의 기본 재시도 횟수입니다.
	defaultMaxRetries = 2

	// defaultRetryDelay 재시도 간 기본 대기 시간입니다. (지수 백오프의 시작점)
	defaultRetryDelay = 1 * time.Second

	// maxResponseBytes 응답 본문의 최대 허용 크기입니다. 이 크기를 초과하는 응답은 거부됩니다.
	maxResponseBytes = 1 << 20

	// maxDrainBytes 재시도 전에 커넥션 재사용을 위해 비워내는 응답 본문의 최대 크기입니다.
	maxDrainBytes = 64 << 10
)

// Fetcher HTTP 요청을 수행하는 인터페이스
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// httpFetcher 표준 http.Client를 감싼 가장 안쪽의 Fetcher 구현체입니다.
type httpFetcher struct {
	client *http.Client
}

var _ Fetcher = (*httpFetcher)(nil)

func newHTTPFetcher(timeout time.Duration) *httpFetcher {
	return &httpFetcher{
		client: &http.Client{Timeout: timeout},
	}
}

func (f *httpFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}

// userAgentFetcher 요청에 User-Agent 헤더가 없는 경우 기본값을 주입하는 미들웨어입니다.
type userAgentFetcher struct {
	delegate  Fetcher
	userAgent string
}

var _ Fetcher = (*userAgentFetcher)(nil)

func newUserAgentFetcher(delegate Fetcher, userAgent string) *userAgentFetcher {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &userAgentFetcher{
		delegate:  delegate,
		userAgent: userAgent,
	}
}

func (f *userAgentFetcher) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	return f.delegate.Do(req)
}

// retryFetcher 네트워크 오류 또는 일시적인 서버 오류(5xx, 429) 발생 시
// 지수 백오프로 재시도하는 미들웨어입니다.
//
// 본문이 있는 요청을 재전송할 수 있도록 req.GetBody가 설정된 요청만 재시도합니다.
type retryFetcher struct {
	delegate   Fetcher
	maxRetries int
	retryDelay time.Duration
}

var _ Fetcher = (*retryFetcher)(nil)

func newRetryFetcher(delegate Fetcher, maxRetries int, retryDelay time.Duration) *retryFetcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}
	return &retryFetcher{
		delegate:   delegate,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

func (f *retryFetcher) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	for attempt := 0; ; attempt++ {
		resp, err = f.delegate.Do(req)
		if !f.shouldRetry(resp, err) || attempt >= f.maxRetries {
			return resp, err
		}

		// 재시도 전 기존 응답의 커넥션을 재사용할 수 있도록 본문을 정리합니다.
		if resp != nil {
			drainAndCloseBody(resp)
		}

		// 본문이 있는 요청은 GetBody로 본문을 복원해야 재전송이 가능합니다.
		if req.Body != nil {
			if req.GetBody == nil {
				return resp, err
			}
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return resp, err
			}
			req.Body = body
		}

		delay := f.retryDelay * (1 << attempt)
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}
	}
}

func (f *retryFetcher) shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		// 컨텍스트 취소/타임아웃은 호출자의 의도이므로 재시도하지 않습니다.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		return true
	}
	return resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
}

// drainAndCloseBody 응답 본문을 제한된 크기까지 읽어서 버린 후 닫습니다.
func drainAndCloseBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
}

// checkResponseStatus HTTP 응답 상태 코드를 분석하여 도메인 에러로 변환합니다.
// 200 OK가 아닌 경우 상태 코드에 따라 적절한 에러 타입을 반환합니다.
func checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	errType := apperrors.ExecutionFailed
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		errType = apperrors.Unavailable
	}

	return apperrors.New(errType, fmt.Sprintf("HTTP 요청이 실패했습니다. 상태 코드: %s", resp.Status))
}

// checkContentType 응답의 Content-Type이 기대하는 MIME 타입인지 검사합니다.
func checkContentType(resp *http.Response, wantMimeType string) error {
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return apperrors.New(apperrors.ParsingFailed, "응답에 Content-Type 헤더가 없습니다")
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ParsingFailed, fmt.Sprintf("응답의 Content-Type 헤더를 해석할 수 없습니다: '%s'", contentType))
	}
	if !strings.EqualFold(mediaType, wantMimeType) {
		return apperrors.New(apperrors.ParsingFailed, fmt.Sprintf("기대하지 않은 응답 형식입니다. Content-Type: '%s'", mediaType))
	}

	return nil
}

// readLimitedBody 응답 본문을 최대 허용 크기까지 읽어 반환합니다.
// 허용 크기를 초과하는 응답은 에러로 처리하여 과도한 메모리 사용을 방지합니다.
func readLimitedBody(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "응답 본문을 읽는 중 오류가 발생했습니다")
	}
	if len(body) > maxResponseBytes {
		return nil, apperrors.Newf(apperrors.ExecutionFailed, "응답 본문이 허용된 최대 크기(%d바이트)를 초과하였습니다", maxResponseBytes)
	}
	return body, nil
}

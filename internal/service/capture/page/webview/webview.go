// Package webview 헤드리스 Chrome(chromedp) 세션 위에서 동작하는 page.Document
// 구현을 제공합니다.
//
// 문서의 읽기는 렌더링된 페이지의 HTML 스냅샷을 파싱하여 수행하고,
// CTA 컨트롤 주입과 같은 수정은 라이브 DOM에 JavaScript로 반영합니다.
package webview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/darkkaiser/capture-server/internal/config"
	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/capture/page"
	"github.com/darkkaiser/capture-server/internal/service/capture/page/htmldoc"
	applog "github.com/darkkaiser/capture-server/pkg/log"
)

// component 웹뷰 세션의 로깅용 컴포넌트 이름
const component = "webview.session"

// mutationProbeScript 라이브 DOM의 변경 횟수를 누적하는 MutationObserver를 설치합니다.
// 중복 설치를 방지하기 위해 설치 여부를 전역 플래그로 기록합니다.
const mutationProbeScript = `(() => {
	if (window.__captureMutationProbe) { return true; }
	window.__captureMutationProbe = true;
	window.__captureMutationCount = 0;
	new MutationObserver(() => { window.__captureMutationCount++; })
		.observe(document.documentElement, { childList: true, subtree: true, attributes: true });
	return true;
})()`

// elementLocator 파싱된 스냅샷의 요소를 라이브 DOM에서 다시 찾기 위한
// CSS 셀렉터 경로를 제공하는 요소입니다.
type elementLocator interface {
	SelectorPath() string
}

// Session 단일 소매점을 담당하는 헤드리스 브라우저 세션입니다.
type Session struct {
	browserCtx context.Context

	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc

	navTimeout time.Duration
}

// NewSession 새로운 브라우저 세션을 생성합니다.
//
// 반환된 세션은 사용이 끝나면 반드시 Close()로 해제해야 합니다.
func NewSession(ctx context.Context, browserConfig *config.BrowserConfig) (*Session, error) {
	if browserConfig == nil {
		return nil, apperrors.New(apperrors.InvalidInput, "BrowserConfig는 필수입니다")
	}

	// chromedp 내부의 표준 로그 출력을 억제합니다.
	stdlog.SetOutput(io.Discard)

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", browserConfig.Headless))
	if browserConfig.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(browserConfig.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// 브라우저 프로세스를 미리 기동하여 이후 탐색의 실패를 조기에 감지합니다.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, apperrors.Wrap(err, apperrors.System, "헤드리스 브라우저 기동이 실패하였습니다")
	}

	return &Session{
		browserCtx: browserCtx,

		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,

		navTimeout: browserConfig.NavTimeoutDuration(),
	}, nil
}

// Navigate 지정된 URL로 이동하고 페이지 로드가 완료될 때까지 대기합니다.
func (s *Session) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, fmt.Sprintf("페이지(%s) 탐색이 실패하였습니다", url))
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"url": url,
	}).Debug("페이지 탐색 완료")

	return nil
}

// Snapshot 렌더링된 페이지의 현재 상태를 파싱하여 문서로 반환합니다.
//
// 반환된 문서의 읽기는 스냅샷 시점의 상태에 고정되며,
// 수정(Editor)은 이 세션의 라이브 DOM에 반영됩니다.
func (s *Session) Snapshot(ctx context.Context) (*Document, error) {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	var html, location string
	err := chromedp.Run(runCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Unavailable, "페이지 스냅샷 생성이 실패하였습니다")
	}

	snapshot, err := htmldoc.ParseString(html, location)
	if err != nil {
		return nil, err
	}

	return &Document{
		Document: snapshot,
		session:  s,
		ctx:      ctx,
	}, nil
}

// InstallMutationProbe 라이브 DOM의 변경 횟수를 추적하는 관찰자를 설치합니다.
// 이미 설치된 경우에는 아무 동작도 하지 않습니다.
func (s *Session) InstallMutationProbe(ctx context.Context) error {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	var installed bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(mutationProbeScript, &installed)); err != nil {
		return apperrors.Wrap(err, apperrors.ExecutionFailed, "페이지 변경 관찰자 설치가 실패하였습니다")
	}
	return nil
}

// MutationCount 페이지 변경 관찰자가 기록한 누적 변경 횟수를 반환합니다.
// 관찰자가 설치되지 않은 경우 0을 반환합니다.
func (s *Session) MutationCount(ctx context.Context) (int64, error) {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	var count int64
	err := chromedp.Run(runCtx, chromedp.Evaluate("window.__captureMutationCount || 0", &count))
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ExecutionFailed, "페이지 변경 횟수 조회가 실패하였습니다")
	}
	return count, nil
}

// Close 브라우저 세션과 관련 리소스를 해제합니다.
func (s *Session) Close() {
	s.cancelBrowser()
	s.cancelAlloc()
}

func (s *Session) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.navTimeout <= 0 {
		return s.browserCtx, func() {}
	}

	// 호출자 컨텍스트의 취소를 브라우저 컨텍스트에 전파합니다.
	runCtx, cancel := context.WithTimeout(s.browserCtx, s.navTimeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

// insertAfter 라이브 DOM에서 지정된 셀렉터 경로의 요소 바로 다음에 HTML 조각을 삽입합니다.
func (s *Session) insertAfter(ctx context.Context, selectorPath, html string) error {
	script := fmt.Sprintf(`(() => {
	const anchor = document.querySelector(%s);
	if (!anchor) { return false; }
	anchor.insertAdjacentHTML('afterend', %s);
	return true;
})()`, jsString(selectorPath), jsString(html))

	return s.evaluateInsert(ctx, script, selectorPath)
}

// appendToBody 라이브 DOM의 body 끝에 HTML 조각을 추가합니다.
func (s *Session) appendToBody(ctx context.Context, html string) error {
	script := fmt.Sprintf(`(() => {
	if (!document.body) { return false; }
	document.body.insertAdjacentHTML('beforeend', %s);
	return true;
})()`, jsString(html))

	return s.evaluateInsert(ctx, script, "body")
}

func (s *Session) evaluateInsert(ctx context.Context, script, target string) error {
	runCtx, cancel := s.runContext(ctx)
	defer cancel()

	var inserted bool
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &inserted)); err != nil {
		return apperrors.Wrap(err, apperrors.ExecutionFailed, "페이지 수정 스크립트 실행이 실패하였습니다")
	}
	if !inserted {
		return apperrors.Newf(apperrors.NotFound, "페이지 수정 대상 요소('%s')를 찾을 수 없습니다", target)
	}
	return nil
}

// jsString Go 문자열을 JavaScript 문자열 리터럴로 안전하게 변환합니다.
// 주입할 HTML 조각이 포함될 수 있으므로 HTML 이스케이프(<, >, &)는 수행하지 않습니다.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimRight(buf.String(), "\n")
}

// Document 스냅샷 기반의 읽기와 라이브 DOM 기반의 수정을 결합한
// page.EditableDocument 구현체입니다.
type Document struct {
	*htmldoc.Document

	session *Session
	ctx     context.Context
}

var _ page.EditableDocument = (*Document)(nil)

// InsertAfter 지정된 요소의 바로 다음 형제로 HTML 조각을 삽입합니다.
//
// 수정은 라이브 DOM과 스냅샷 양쪽에 반영되어, 같은 스냅샷 위에서의
// 후속 멱등성 검사가 라이브 페이지와 동일하게 동작하도록 합니다.
func (d *Document) InsertAfter(anchor page.Element, html string) error {
	locator, ok := anchor.(elementLocator)
	if !ok {
		return apperrors.New(apperrors.InvalidInput, "삽입 기준 요소의 위치를 확인할 수 없습니다")
	}
	selectorPath := locator.SelectorPath()
	if selectorPath == "" {
		return apperrors.New(apperrors.InvalidInput, "삽입 기준 요소의 셀렉터 경로를 계산할 수 없습니다")
	}

	if err := d.session.insertAfter(d.ctx, selectorPath, html); err != nil {
		return err
	}
	return d.Document.InsertAfter(anchor, html)
}

// AppendToBody 문서의 body 끝에 HTML 조각을 추가합니다.
func (d *Document) AppendToBody(html string) error {
	if err := d.session.appendToBody(d.ctx, html); err != nil {
		return err
	}
	return d.Document.AppendToBody(html)
}

// Package htmldoc goquery 기반의 page.Document 구현을 제공합니다.
//
// 실제 렌더링 엔진 없이 정적 HTML 스냅샷 위에서 추출 엔진을 실행할 때 사용하며,
// 원격 서비스에서 가져온 HTML의 파싱과 엔진 테스트의 합성 문서 생성을 모두 담당합니다.
package htmldoc

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"

	apperrors "github.com/darkkaiser/capture-server/internal/pkg/errors"
	"github.com/darkkaiser/capture-server/internal/service/capture/page"
)

// Document goquery.Document를 감싸는 page.EditableDocument 구현체입니다.
type Document struct {
	doc *goquery.Document
	url string
}

var _ page.EditableDocument = (*Document)(nil)

// ParseString HTML 문자열을 파싱하여 Document를 생성합니다.
func ParseString(html, url string) (*Document, error) {
	return ParseReader(strings.NewReader(html), url, "")
}

// ParseReader Reader로부터 HTML을 읽어 Document를 생성합니다.
//
// contentType 헤더와 문서 앞부분을 참고하여 인코딩을 감지한 후 UTF-8로 변환하여 파싱합니다.
func ParseReader(r io.Reader, url, contentType string) (*Document, error) {
	// charset.NewReader의 불투명한 버퍼링으로 인한 데이터 소실을 피하기 위해,
	// 먼저 데이터를 Peek하여 인코딩을 결정한 후 원본 Reader를 래핑합니다.
	bufReader := bufio.NewReader(r)

	const peekSize = 1024
	peekBytes, _ := bufReader.Peek(peekSize) // 에러(EOF 등)가 발생해도 읽은 만큼 반환

	var utf8Reader io.Reader = bufReader
	if e, _, _ := charset.DetermineEncoding(peekBytes, contentType); e != nil && e != unicode.UTF8 {
		// 이미 UTF-8인 문서는 변환 없이 그대로 파싱한다.
		utf8Reader = e.NewDecoder().Reader(bufReader)
	}

	doc, err := goquery.NewDocumentFromReader(utf8Reader)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "HTML 데이터 파싱이 실패하였습니다")
	}

	return &Document{doc: doc, url: url}, nil
}

// MustParse HTML 문자열을 파싱하고, 실패 시 패닉을 발생시킵니다. (테스트 편의용)
func MustParse(html, url string) *Document {
	d, err := ParseString(html, url)
	if err != nil {
		panic(err)
	}
	return d
}

// URL 페이지의 현재 URL을 반환합니다.
func (d *Document) URL() string {
	return d.url
}

// Find 문서 전체에서 셀렉터와 일치하는 모든 요소를 반환합니다.
func (d *Document) Find(selector string) []page.Element {
	return wrapSelections(d.doc.Find(selector))
}

// First 문서 전체에서 셀렉터와 일치하는 첫 번째 요소를 반환합니다.
func (d *Document) First(selector string) page.Element {
	return wrapFirst(d.doc.Find(selector))
}

// Text 문서 전체의 표시 텍스트를 반환합니다.
func (d *Document) Text() string {
	return strings.TrimSpace(d.doc.Text())
}

// InsertAfter 지정된 요소의 바로 다음 형제로 HTML 조각을 삽입합니다.
func (d *Document) InsertAfter(anchor page.Element, html string) error {
	el, ok := anchor.(*element)
	if !ok || el.sel.Length() == 0 {
		return apperrors.New(apperrors.InvalidInput, "삽입 기준 요소가 이 문서에 속해 있지 않습니다")
	}
	el.sel.AfterHtml(html)
	return nil
}

// AppendToBody 문서의 body 끝에 HTML 조각을 추가합니다.
func (d *Document) AppendToBody(html string) error {
	body := d.doc.Find("body")
	if body.Length() == 0 {
		return apperrors.New(apperrors.NotFound, "문서에 body 요소가 존재하지 않습니다")
	}
	body.AppendHtml(html)
	return nil
}

// element goquery.Selection의 첫 번째 노드를 감싸는 page.Element 구현체입니다.
type element struct {
	sel *goquery.Selection
}

var _ page.Element = (*element)(nil)

func wrapSelections(sel *goquery.Selection) []page.Element {
	elements := make([]page.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &element{sel: s})
	})
	return elements
}

func wrapFirst(sel *goquery.Selection) page.Element {
	if sel.Length() == 0 {
		return nil
	}
	return &element{sel: sel.First()}
}

func (e *element) Text() string {
	return strings.TrimSpace(e.sel.Text())
}

func (e *element) Attr(name string) string {
	val, _ := e.sel.Attr(name)
	return val
}

func (e *element) TagName() string {
	return strings.ToLower(goquery.NodeName(e.sel))
}

func (e *element) Find(selector string) []page.Element {
	return wrapSelections(e.sel.Find(selector))
}

func (e *element) First(selector string) page.Element {
	return wrapFirst(e.sel.Find(selector))
}

func (e *element) Parent() page.Element {
	return wrapFirst(e.sel.Parent())
}

func (e *element) NextSibling() page.Element {
	return wrapFirst(e.sel.Next())
}

func (e *element) HasClass(name string) bool {
	return e.sel.HasClass(name)
}

// IsVisible 요소가 화면에 표시되는 상태인지 추정합니다.
//
// 정적 문서에서는 실제 렌더링 정보(Bounding Box)를 알 수 없으므로,
// hidden 속성과 인라인 스타일 기반의 보수적인 판정을 수행합니다.
func (e *element) IsVisible() bool {
	if _, hidden := e.sel.Attr("hidden"); hidden {
		return false
	}
	if e.Attr("aria-hidden") == "true" {
		return false
	}
	if e.TagName() == "input" && strings.EqualFold(e.Attr("type"), "hidden") {
		return false
	}

	style := strings.ReplaceAll(strings.ToLower(e.Attr("style")), " ", "")
	if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
		return false
	}

	return true
}

// SelectorPath 문서 루트로부터 이 요소에 도달하는 CSS 셀렉터 경로를 반환합니다.
//
// 파싱된 스냅샷의 요소를 실제 렌더링된 DOM(querySelector)에서 다시 찾아야 하는
// 라이브 페이지 연동에서 사용합니다. 경로를 계산할 수 없으면 빈 문자열을 반환합니다.
func (e *element) SelectorPath() string {
	if e.sel.Length() == 0 {
		return ""
	}

	var parts []string
	for n := e.sel.Get(0); n != nil && n.Type == html.ElementNode; n = n.Parent {
		part := n.Data
		if n.Parent != nil && n.Parent.Type == html.ElementNode {
			part = fmt.Sprintf("%s:nth-child(%d)", n.Data, elementIndex(n))
		}
		parts = append(parts, part)
	}

	slices.Reverse(parts)
	return strings.Join(parts, " > ")
}

// elementIndex 요소 형제들 사이에서의 1부터 시작하는 위치를 반환합니다.
func elementIndex(node *html.Node) int {
	index := 1
	for sibling := node.Parent.FirstChild; sibling != nil; sibling = sibling.NextSibling {
		if sibling == node {
			return index
		}
		if sibling.Type == html.ElementNode {
			index++
		}
	}
	return index
}

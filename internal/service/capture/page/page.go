// Package page 추출 엔진이 페이지 구조에 접근하기 위한 좁은 인터페이스를 정의합니다.
//
// 엔진은 이 인터페이스를 통해서만 페이지를 읽고 수정하므로, 실제 렌더링 엔진 없이도
// 합성 문서(goquery 기반)로 엔진 전체를 테스트할 수 있습니다.
package page

// Element 단일 요소에 대한 읽기 전용 접근을 제공합니다.
//
// 호스팅된 페이지의 구조는 신뢰할 수 없고 예고 없이 변경될 수 있으므로,
// 모든 메서드는 실패 시 패닉 대신 빈 값을 반환해야 합니다.
type Element interface {
	// Text 요소와 그 하위의 전체 텍스트를 앞뒤 공백이 제거된 상태로 반환합니다.
	Text() string

	// Attr 지정된 속성의 값을 반환합니다. 속성이 없으면 빈 문자열을 반환합니다.
	Attr(name string) string

	// TagName 요소의 태그 이름을 소문자로 반환합니다.
	TagName() string

	// Find 요소의 하위에서 셀렉터와 일치하는 모든 요소를 문서 순서로 반환합니다.
	Find(selector string) []Element

	// First 요소의 하위에서 셀렉터와 일치하는 첫 번째 요소를 반환합니다. 없으면 nil입니다.
	First(selector string) Element

	// Parent 부모 요소를 반환합니다. 루트인 경우 nil입니다.
	Parent() Element

	// NextSibling 다음 형제 요소를 반환합니다. 없으면 nil입니다.
	NextSibling() Element

	// HasClass 요소가 지정된 클래스를 가지고 있는지 확인합니다.
	HasClass(name string) bool

	// IsVisible 요소가 화면에 표시되는 상태인지 추정합니다.
	// (hidden 속성, display:none 스타일, type=hidden 입력 등을 비표시로 판정)
	IsVisible() bool
}

// Document 페이지 전체에 대한 읽기 접근을 제공합니다.
type Document interface {
	// URL 페이지의 현재 URL을 반환합니다.
	URL() string

	// Find 문서 전체에서 셀렉터와 일치하는 모든 요소를 문서 순서로 반환합니다.
	Find(selector string) []Element

	// First 문서 전체에서 셀렉터와 일치하는 첫 번째 요소를 반환합니다. 없으면 nil입니다.
	First(selector string) Element

	// Text 문서 전체의 표시 텍스트를 반환합니다. (키워드 스캔용)
	Text() string
}

// Editor 페이지에 대한 제한된 수정 기능을 제공합니다. (CTA 컨트롤 주입용)
type Editor interface {
	// InsertAfter 지정된 요소의 바로 다음 형제로 HTML 조각을 삽입합니다.
	InsertAfter(anchor Element, html string) error

	// AppendToBody 문서의 body 끝에 HTML 조각을 추가합니다.
	AppendToBody(html string) error
}

// EditableDocument 읽기와 수정이 모두 가능한 문서입니다.
type EditableDocument interface {
	Document
	Editor
}

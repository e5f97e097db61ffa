package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/darkkaiser/capture-server/internal/service/capture/page/htmldoc"
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
)

func testProfile() *profile.Profile {
	return &profile.Profile{
		ID:    "testmart",
		Name:  "Test Mart",
		Hosts: []string{"testmart.com"},
		ProductClassify: profile.ClassifyRules{
			URLKeywords: []string{"/p/"},
			Markers:     []string{".product-detail-root"},
		},
		CartClassify: profile.ClassifyRules{
			URLKeywords: []string{"/cart", "/checkout"},
			Markers:     []string{".cart-items-wrap"},
		},
	}
}

func TestClassify(t *testing.T) {
	p := testProfile()
	emptyBody := `<html><body></body></html>`

	tests := []struct {
		name     string
		html     string
		url      string
		expected PageType
	}{
		{
			name:     "URL 키워드로 상품 페이지 판별",
			html:     emptyBody,
			url:      "https://www.testmart.com/p/cordless-drill/204233858",
			expected: PageTypeProduct,
		},
		{
			name:     "마커 요소로 상품 페이지 판별",
			html:     `<html><body><div class="product-detail-root"></div></body></html>`,
			url:      "https://www.testmart.com/some-landing",
			expected: PageTypeProduct,
		},
		{
			name:     "URL 키워드로 장바구니 페이지 판별",
			html:     emptyBody,
			url:      "https://www.testmart.com/cart",
			expected: PageTypeCart,
		},
		{
			name:     "URL 키워드는 대소문자를 구분하지 않음",
			html:     emptyBody,
			url:      "https://www.testmart.com/Checkout/review",
			expected: PageTypeCart,
		},
		{
			name:     "마커 요소로 장바구니 페이지 판별",
			html:     `<html><body><div class="cart-items-wrap"></div></body></html>`,
			url:      "https://www.testmart.com/some-landing",
			expected: PageTypeCart,
		},
		{
			name:     "상품과 장바구니 규칙이 모두 일치하면 장바구니 우선",
			html:     `<html><body><div class="product-detail-root"></div><div class="cart-items-wrap"></div></body></html>`,
			url:      "https://www.testmart.com/cart",
			expected: PageTypeCart,
		},
		{
			name:     "어느 규칙에도 걸리지 않는 페이지",
			html:     emptyBody,
			url:      "https://www.testmart.com/customer-service",
			expected: PageTypeNeither,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := htmldoc.MustParse(tt.html, tt.url)
			assert.Equal(t, tt.expected, Classify(doc, p))
		})
	}
}

func TestPageTypeString(t *testing.T) {
	assert.Equal(t, "unclassified", PageTypeUnclassified.String())
	assert.Equal(t, "product", PageTypeProduct.String())
	assert.Equal(t, "cart", PageTypeCart.String())
	assert.Equal(t, "neither", PageTypeNeither.String())
}

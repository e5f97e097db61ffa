// Package harborfreight Harbor Freight의 사이트 프로파일을 정의합니다.
package harborfreight

import (
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

// ID Harbor Freight 소매점 식별자
const ID contract.RetailerID = "harborfreight"

func init() {
	profile.MustRegister(newProfile())
}

func newProfile() *profile.Profile {
	return &profile.Profile{
		ID:    ID,
		Name:  "Harbor Freight",
		Hosts: []string{"harborfreight.com"},

		ProductClassify: profile.ClassifyRules{
			URLKeywords: []string{".html"},
			Markers:     []string{".product-detail-root"},
		},
		CartClassify: profile.ClassifyRules{
			URLKeywords: []string{"cart", "checkout"},
			Markers: []string{
				`[class*="cart-items__wrap"]`,
				`[class*="checkout-totals__wrap"]`,
			},
		},

		Product: profile.ProductRules{
			Canonical: []profile.TextRule{
				{Selector: `link[rel="canonical"]`, Attr: "href"},
			},
			// 상품 URL은 "...-12345.html" 형태로 끝납니다.
			SKUPattern: `-(\d+)\.html`,
			Title: []profile.TextRule{
				{Selector: "h1"},
			},
			Price: []profile.TextRule{
				{Selector: `[class*="styled-price__styledPrice"]`},
			},
			MainImage: []profile.TextRule{
				{Selector: `meta[property="og:image"]`, Attr: "content"},
			},
			Description: []profile.TextRule{
				{Selector: `meta[name="description"]`, Attr: "content"},
			},
		},

		Cart: profile.CartItemRules{
			Container: []string{`li[class*="cart-items__item"]`},
			Title: []profile.TextRule{
				{Selector: "h3 a"},
			},
			Brand: []profile.TextRule{
				{Selector: `[class*="cart-items__brand"]`},
			},
			Image: []profile.TextRule{
				{Selector: "img", Attr: "src"},
			},
			Quantity: []profile.TextRule{
				{Selector: "select", Attr: "value"},
			},
			UnitPrice: []profile.TextRule{
				{Selector: `[class*="styled-price__styledPrice"]`},
			},
			SKULinkPattern: `-(\d+)\.html`,
		},

		Totals: profile.TotalsRules{
			SummaryRows: []string{
				`li[class*="checkout-totals__line"]`,
				`li[class*="checkout-totals__grandTotal"]`,
			},
			RowAmount: `[class*="styled-price__styledPrice"]`,
		},
		DiscountBanners: []string{
			`[class*="promo"]`,
			`[class*="discount"]`,
			`[class*="coupon"]`,
		},

		CTA: profile.CTARules{
			ProductAnchors: []string{
				".productActionButton",
				".add-to-cart",
			},
			CartAnchors: []string{
				".startCheckoutButton",
				`[data-testid="totalsWrap"] button`,
				`[class*="checkout-totals__wrap"]`,
				"button.buttonPrimary",
			},
			AnchorKeywords: []string{"add to cart", "add to order"},
			ProductLabel:   "Buy from My Site",
			CartLabel:      "🛒 Checkout on My Site",
		},
	}
}

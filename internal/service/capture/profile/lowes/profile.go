// Package lowes Lowe's의 사이트 프로파일을 정의합니다.
package lowes

import (
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

// ID Lowe's 소매점 식별자
const ID contract.RetailerID = "lowes"

func init() {
	profile.MustRegister(newProfile())
}

func newProfile() *profile.Profile {
	return &profile.Profile{
		ID:    ID,
		Name:  "Lowe's",
		Hosts: []string{"lowes.com"},

		ProductClassify: profile.ClassifyRules{
			URLKeywords: []string{"/pd/"},
		},
		CartClassify: profile.ClassifyRules{
			URLKeywords: []string{"/cart", "/mycart"},
		},

		Product: profile.ProductRules{
			Canonical: []profile.TextRule{
				{Selector: `link[rel="canonical"]`, Attr: "href"},
			},
			SKUPattern: `/(\d+)$`,
			SKU: []profile.TextRule{
				{Selector: `meta[itemprop="sku"]`, Attr: "content"},
			},
			Title: []profile.TextRule{
				{Selector: "h1"},
			},
			Brand: []profile.TextRule{
				{Selector: `[itemprop="brand"]`},
			},
			Price: []profile.TextRule{
				{Selector: ".main-price"},
				{Selector: ".price"},
			},
			MainImage: []profile.TextRule{
				{Selector: `meta[property="og:image"]`, Attr: "content"},
				{Selector: "img.main-image", Attr: "src"},
			},
			Description: []profile.TextRule{
				{Selector: `meta[name="description"]`, Attr: "content"},
			},
		},

		Cart: profile.CartItemRules{
			Container: []string{`[data-test="cc-product-details"]`},
			SKU: []profile.TextRule{
				{Selector: `[data-selector="art-sc-itemNum"]`, StripPrefixes: []string{"Item #"}},
				{Selector: `[data-selector="art-sc-modelNum"]`, StripPrefixes: []string{"Model #"}},
			},
			Title: []profile.TextRule{
				{Selector: `[data-selector="art-sc-prodDesc"]`},
			},
			Brand: []profile.TextRule{
				{Selector: `[data-selector="art-sc-prodDesc"] b`},
			},
			Image: []profile.TextRule{
				{Selector: `[data-selector="art-sc-productImg"] img`, Attr: "src"},
			},
			Quantity: []profile.TextRule{
				{Selector: `[data-selector="art-sc-quantity-input"]`, Attr: "value"},
			},
			UnitPrice: []profile.TextRule{
				{Selector: `[data-selector="art-sc-itemPrice-now"]`},
			},
			OriginalPrice: []profile.TextRule{
				{Selector: `[data-selector="art-sc-wasPriced-txt"]`},
			},
			Savings: []profile.TextRule{
				{Selector: `[data-selector="art-sc-priceSavings"]`},
			},
		},

		Totals: profile.TotalsRules{
			Subtotal: []profile.TextRule{
				{Selector: `[data-selector="art-sc-subtotal"]`},
				{Selector: ".subtotal"},
				{Selector: `[class*="subTotal"]`},
			},
			Tax: []profile.TextRule{
				{Selector: `[data-selector="art-sc-tax"]`},
				{Selector: ".tax"},
				{Selector: `[class*="tax"]`},
			},
			Shipping: []profile.TextRule{
				{Selector: `[data-selector="art-sc-shipping"]`},
				{Selector: ".shipping"},
				{Selector: `[class*="shipping"]`},
			},
			Discount: []profile.TextRule{
				{Selector: `[data-selector="art-sc-savings"]`},
			},
			Total: []profile.TextRule{
				{Selector: `[data-selector="art-sc-estimatedTotal"]`},
				{Selector: ".estimated-total"},
				{Selector: `[class*="estimatedTotal"]`},
			},
		},
		DiscountBanners: []string{
			`[class*="promo"]`,
			`[class*="discount"]`,
			`[data-testid*="discount"]`,
			`[data-testid*="promo"]`,
		},

		CTA: profile.CTARules{
			ProductAnchors: []string{
				`[data-testid="add-to-cart-button"]`,
				`[data-selector="add-to-cart"]`,
				".add-to-cart",
				"button.add-to-cart",
			},
			CartAnchors: []string{
				`[data-selector="art-sc-emailCartBtn"]`,
				".cart-summary",
				".order-summary",
			},
			AnchorKeywords: []string{"add to cart", "add to delivery", "checkout"},
			ProductLabel:   "Buy from My Site",
			CartLabel:      "🛒 Checkout on My Site",
		},
	}
}

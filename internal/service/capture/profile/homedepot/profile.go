// Package homedepot Home Depot의 사이트 프로파일을 정의합니다.
package homedepot

import (
	"github.com/darkkaiser/capture-server/internal/service/capture/profile"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

// ID Home Depot 소매점 식별자
const ID contract.RetailerID = "homedepot"

func init() {
	profile.MustRegister(newProfile())
}

func newProfile() *profile.Profile {
	return &profile.Profile{
		ID:    ID,
		Name:  "The Home Depot",
		Hosts: []string{"homedepot.com"},

		ProductClassify: profile.ClassifyRules{
			URLKeywords: []string{"/p/"},
		},
		CartClassify: profile.ClassifyRules{
			URLKeywords: []string{"/cart", "/checkout"},
		},

		Product: profile.ProductRules{
			Canonical: []profile.TextRule{
				{Selector: `link[rel="canonical"]`, Attr: "href"},
			},
			// 정규 URL의 마지막 숫자 경로 세그먼트가 SKU입니다.
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
				{Selector: `div[data-testid="product-price"] span`},
				{Selector: ".price-format__large-price"},
				{Selector: `[data-testid="price-format__main-price"]`},
				{Selector: "span.price-format__main-price"},
				{Selector: `[data-automation-id="product-price"]`},
			},
			MainImage: []profile.TextRule{
				{Selector: `meta[property="og:image"]`, Attr: "content"},
				{Selector: "img.mediagallery__main-image", Attr: "src"},
			},
			Description: []profile.TextRule{
				{Selector: `meta[name="description"]`, Attr: "content"},
				{Selector: `[itemprop="description"]`},
			},
			ImageHosts: []string{"thdstatic.com"},

			Quantity: profile.QuantityRules{
				StepperSelectors: []string{
					"input.sui-input-base-input",
					`input[class*="stepper"]`,
					`input[class*="Stepper"]`,
					`[data-testid="stepper-input"] input`,
					`input[id*="stepper"]`,
				},
				FulfillmentContainer: `[data-testid="fulfillment-content"]`,
			},
			Stock: profile.StockRules{
				PurchaseControl: []string{
					`[data-testid="add-to-cart-button"]`,
					`[data-testid="fulfillment-add-to-cart-button"]`,
				},
			},
			Options: profile.OptionRules{
				FulfillmentSelected: []string{
					`[data-testid="fulfillment-option"][aria-checked="true"]`,
				},
				SwatchSelectors: []string{
					`button[class*="selected"]`,
					`div[class*="selected"]`,
					`[aria-checked="true"][role="radio"]`,
				},
			},
			Specs: profile.SpecRules{
				Row:   ".specifications__table tr",
				Key:   "th",
				Value: "td",
			},
		},

		Cart: profile.CartItemRules{
			Container: []string{
				`[data-automation-id="cart-item"]`,
			},
			SKU: []profile.TextRule{
				{Selector: `[data-line-item-id]`, Attr: "data-item-id"},
			},
			Title: []profile.TextRule{
				{Selector: `[data-automation-id="productDescription"]`},
			},
			Brand: []profile.TextRule{
				{Selector: `[data-automation-id="productBrand"]`},
			},
			Image: []profile.TextRule{
				{Selector: `img[data-automation-id="productImage"]`, Attr: "src"},
			},
			Quantity: []profile.TextRule{
				{Selector: `input[type="checkbox"][data-quantity]`, Attr: "data-quantity"},
				{Selector: `input[id*="quantity-stepper"]`, Attr: "value"},
			},
			UnitPrice: []profile.TextRule{
				// "($69.97/item)" 형식
				{Selector: `[data-automation-id="pricingScenariosPerItemText"]`},
			},
			OriginalPrice: []profile.TextRule{
				{Selector: ".sui-line-through"},
			},
			Savings: []profile.TextRule{
				{Selector: `[data-automation-id="pricingScenariosPercentOffText"]`},
			},
			Subtotal: []profile.TextRule{
				{Selector: `[data-automation-id="pricingScenariosTotalPriceAddedText"]`},
				{Selector: `input[type="checkbox"][data-item-price]`, Attr: "data-item-price"},
			},
			Fulfillment: []profile.TextRule{
				{Selector: `[data-automation-id="fulfillment-container"] button[value="pickupTile"][aria-pressed="true"]`, Value: "Pickup"},
				{Selector: `[data-automation-id="fulfillment-container"] button[value="deliveryTile"][aria-pressed="true"]`, Value: "Delivery"},
			},
			PickupETA: []profile.TextRule{
				{Selector: `[data-automation-id="sthETA"]`},
			},
			Addons: []profile.TextRule{
				{Selector: `[data-automation-id="addon_protectionPlan"] input[type="checkbox"]:checked`, Value: "Protection Plan"},
			},
		},
		Totals: profile.TotalsRules{
			Subtotal: []profile.TextRule{
				{Selector: `[data-automation-id="orderSummary"] [data-automation-id="totalsSubTotal"]`},
			},
			Tax: []profile.TextRule{
				{Selector: `[data-automation-id="orderSummary"] [data-automation-id="salesTaxTotal"]`},
			},
			Shipping: []profile.TextRule{
				{Selector: `[data-automation-id="orderSummary"] [data-automation-id="deliveryTotal"]`},
			},
			Pickup: []profile.TextRule{
				{Selector: `[data-automation-id="orderSummary"] [data-automation-id="pickupTotal"]`},
			},
			Discount: []profile.TextRule{
				{Selector: `[data-automation-id="orderSummary"] [data-automation-id="totalsSavings"]`},
			},
			Total: []profile.TextRule{
				{Selector: `[data-automation-id="orderSummary"] [data-automation-id="totalsTotal"]`},
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
				`[data-testid="fulfillment-add-to-cart-button"]`,
				".sticky-header__add-to-cart",
				".buying-actions__add-to-cart",
			},
			CartAnchors: []string{
				`[data-testid="checkout-button"]`,
				`button[data-automation-id="checkout-button"]`,
				".checkout-button",
				".cart-actions",
				`[class*="cart-actions"]`,
				".checkout-actions",
				".cart-summary",
				".order-summary",
			},
			AnchorKeywords: []string{"add to cart", "add to delivery", "checkout"},
			ProductLabel:   "Buy from My Site",
			CartLabel:      "🛒 Checkout on My Site",
		},
	}
}

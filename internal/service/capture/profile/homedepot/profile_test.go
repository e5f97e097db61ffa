package homedepot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/capture-server/internal/service/capture/page/htmldoc"
	"github.com/darkkaiser/capture-server/internal/service/capture/pipeline"
)

func TestNewProfile(t *testing.T) {
	p := newProfile()
	require.NoError(t, p.Validate())

	assert.Equal(t, ID, p.ID)
	assert.True(t, p.MatchesHost("www.homedepot.com"))
	assert.Contains(t, p.ProductClassify.URLKeywords, "/p/")
	assert.NotEmpty(t, p.Product.Price, "가격 셀렉터가 정의되어 있어야 합니다")
	assert.NotEmpty(t, p.Cart.Container, "장바구니 품목 컨테이너 셀렉터가 정의되어 있어야 합니다")
	assert.NotEmpty(t, p.Totals.Subtotal)
	assert.NotEmpty(t, p.DiscountBanners)
	assert.NotEmpty(t, p.CTA.ProductAnchors)
	assert.NotEmpty(t, p.CTA.CartAnchors)
}

func TestCartExtraction(t *testing.T) {
	p := newProfile()

	doc := htmldoc.MustParse(`<html><body>
		<div class="cart-item-wrapper" data-automation-id="cart-item">
			<div data-line-item-id="li-1" data-item-id="204233858"></div>
			<span data-automation-id="productBrand">Milwaukee</span>
			<a data-automation-id="productDescription">M18 Cordless Drill Kit</a>
			<img data-automation-id="productImage" src="https://images.thdstatic.com/204233858_main.jpg">
			<input type="checkbox" data-quantity="2" data-item-price="139.94" checked>
			<span data-automation-id="pricingScenariosPerItemText">($69.97/item)</span>
			<span data-automation-id="pricingScenariosTotalPriceAddedText">$139.94</span>
			<span class="sui-line-through">$159.00</span>
			<div data-automation-id="fulfillment-container">
				<button value="pickupTile" aria-pressed="true">Pickup</button>
				<button value="deliveryTile" aria-pressed="false">Delivery</button>
			</div>
			<div data-automation-id="addon_protectionPlan">
				<input type="checkbox" checked>
			</div>
		</div>
		<div data-automation-id="orderSummary">
			<div data-automation-id="totalsSubTotal">$139.94</div>
			<div data-automation-id="pickupTotal">FREE</div>
			<div data-automation-id="salesTaxTotal">---</div>
			<div data-automation-id="totalsTotal">$139.94</div>
		</div>
	</body></html>`, "https://www.homedepot.com/cart")

	cart, err := pipeline.Cart(doc, p)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "장바구니 컨테이너 셀렉터가 라인 아이템을 찾아야 합니다")

	item := cart.Items[0]
	assert.Equal(t, "204233858", item.SKU)
	assert.Equal(t, "M18 Cordless Drill Kit", item.Title)
	assert.Equal(t, "Milwaukee", item.Brand)
	assert.Equal(t, "https://images.thdstatic.com/204233858_main.jpg", item.Image)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, "69.97", item.UnitPrice)
	assert.Equal(t, "139.94", item.Subtotal)
	assert.Equal(t, "159.00", item.OriginalPrice)
	assert.Equal(t, "Pickup", item.SelectedOptions.Fulfillment)
	assert.Equal(t, []string{"Protection Plan"}, item.SelectedOptions.Addons)

	assert.Equal(t, "139.94", cart.Totals.Subtotal)
	assert.Equal(t, "0.00", cart.Totals.Pickup, "FREE는 0원 청구로 정규화되어야 합니다")
	assert.Equal(t, "---", cart.Totals.Tax)
	assert.Equal(t, "139.94", cart.Totals.Total)
}

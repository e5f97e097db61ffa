package contract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExtractedProduct_Defaults(t *testing.T) {
	t.Parallel()

	p := NewExtractedProduct()

	assert.Equal(t, "0.00", p.Price)
	assert.Equal(t, "1", p.Quantity)
	assert.Equal(t, StockStatusCheckAvailability, p.StockStatus)
	assert.NotNil(t, p.Images)
	assert.NotNil(t, p.SelectedOptions.Addons)
	assert.NotNil(t, p.SelectedOptions.Variants)
	assert.NotNil(t, p.Specifications)
}

func TestNewCartData_Defaults(t *testing.T) {
	t.Parallel()

	c := NewCartData()

	assert.Empty(t, c.Items)
	assert.Empty(t, c.Discounts)
	assert.Equal(t, "0.00", c.Totals.Subtotal)
	assert.Equal(t, "0.00", c.Totals.Total)
}

func TestCartTotals_PendingTaxRoundTrip(t *testing.T) {
	t.Parallel()

	// 미확정("---") 세금 값은 직렬화를 거쳐도 변경 없이 유지되어야 합니다.
	totals := NewCartTotals()
	totals.Tax = "---"

	data, err := json.Marshal(totals)
	require.NoError(t, err)

	var decoded CartTotals
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "---", decoded.Tax)
}

func TestExtractedProduct_JSONFieldNames(t *testing.T) {
	t.Parallel()

	p := NewExtractedProduct()
	p.SKU = "123456"
	p.StockStatus = StockStatusInStock

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	// 호스트 수신부가 기대하는 camelCase 필드명을 유지해야 합니다.
	assert.Equal(t, "123456", m["sku"])
	assert.Equal(t, "In Stock", m["stockStatus"])
	assert.Contains(t, m, "selectedOptions")
	assert.Contains(t, m, "specifications")
}

func TestMessageType_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, MessageTypeProductData.IsValid())
	assert.True(t, MessageTypeCartData.IsValid())
	assert.True(t, MessageTypeError.IsValid())
	assert.False(t, MessageType("UNKNOWN_TYPE").IsValid())
	assert.False(t, MessageType("").IsValid())
}

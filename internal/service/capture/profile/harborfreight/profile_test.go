package harborfreight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProfile(t *testing.T) {
	p := newProfile()
	require.NoError(t, p.Validate())

	assert.Equal(t, ID, p.ID)
	assert.True(t, p.MatchesHost("www.harborfreight.com"))
	assert.NotEmpty(t, p.CartClassify.Markers, "장바구니 마커 셀렉터가 정의되어 있어야 합니다")
	assert.NotEmpty(t, p.Totals.SummaryRows, "합계 요약 행 셀렉터가 정의되어 있어야 합니다")
	assert.Equal(t, `-(\d+)\.html`, p.Cart.SKULinkPattern)
	assert.NotEmpty(t, p.DiscountBanners, "할인 배너 셀렉터가 정의되어 있어야 합니다")
}

package host

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/capture-server/internal/config"
	"github.com/darkkaiser/capture-server/internal/service/bridge"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

// mockNotificationSender 발송된 메시지를 기록하는 테스트용 NotificationSender
type mockNotificationSender struct {
	mu            sync.Mutex
	errorMessages []string
}

func (m *mockNotificationSender) Notify(contract.NotifierID, string, string, bool) error {
	return nil
}

func (m *mockNotificationSender) NotifyDefault(string) error {
	return nil
}

func (m *mockNotificationSender) NotifyDefaultWithError(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMessages = append(m.errorMessages, message)
	return nil
}

func (m *mockNotificationSender) errorMessageCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errorMessages)
}

func startHostService(t *testing.T) (*Service, *bridge.ChannelTransport, *mockNotificationSender, string, func()) {
	t.Helper()

	storageDir := filepath.Join(t.TempDir(), "snapshots")
	appConfig := &config.AppConfig{}
	appConfig.Storage.Dir = storageDir

	transport := bridge.NewChannelTransport()
	sender := &mockNotificationSender{}
	service := NewService(appConfig, transport, sender)

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	wg.Add(1)
	require.NoError(t, service.Start(ctx, wg))

	return service, transport, sender, storageDir, func() {
		cancel()
		wg.Wait()
	}
}

func snapshotFiles(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestHostService(t *testing.T) {
	t.Run("상품 스냅샷 수신과 저장", func(t *testing.T) {
		_, transport, _, storageDir, stop := startHostService(t)
		defer stop()

		product := contract.NewExtractedProduct()
		product.SKU = "204233858"
		product.Retailer = "homedepot"

		envelope, err := bridge.NewProductEnvelope(product)
		require.NoError(t, err)
		require.NoError(t, transport.Deliver(envelope))

		assert.Eventually(t, func() bool {
			return len(snapshotFiles(t, storageDir)) == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("장바구니 합계 보정 후 저장", func(t *testing.T) {
		_, transport, _, storageDir, stop := startHostService(t)
		defer stop()

		cart := contract.NewCartData()
		cart.Retailer = "lowes"
		cart.Totals.Subtotal = "29.97"
		cart.Totals.Total = "" // 외부 인스턴스가 총계를 채우지 않은 경우

		envelope, err := bridge.NewCartEnvelope(cart)
		require.NoError(t, err)
		require.NoError(t, transport.Deliver(envelope))

		require.Eventually(t, func() bool {
			return len(snapshotFiles(t, storageDir)) == 1
		}, time.Second, 10*time.Millisecond)

		data, err := os.ReadFile(filepath.Join(storageDir, snapshotFiles(t, storageDir)[0]))
		require.NoError(t, err)

		var restored contract.CartData
		require.NoError(t, json.Unmarshal(data, &restored))
		assert.Equal(t, "29.97", restored.Totals.Total, "비어있는 총계는 소계로 승격되어야 합니다")
	})

	t.Run("파이프라인 실패는 관리자 알림으로 전환", func(t *testing.T) {
		_, transport, sender, _, stop := startHostService(t)
		defer stop()

		require.NoError(t, transport.Deliver(bridge.NewErrorEnvelope("homedepot", "추출 실패")))

		assert.Eventually(t, func() bool {
			return sender.errorMessageCount() == 1
		}, time.Second, 10*time.Millisecond)
	})
}

func TestNormalizeCartTotals(t *testing.T) {
	t.Run("미정 금액 표기는 유지됨", func(t *testing.T) {
		cart := contract.NewCartData()
		cart.Totals.Tax = "---"
		cart.Totals.Total = "10.00"

		normalizeCartTotals(cart)

		assert.Equal(t, "---", cart.Totals.Tax)
		assert.Equal(t, "10.00", cart.Totals.Total)
	})

	t.Run("0원으로 보고된 합계는 아이템 합산으로 재계산됨", func(t *testing.T) {
		cart := contract.NewCartData()
		cart.Items = []contract.CartItem{
			{SKU: "111", Quantity: 2, UnitPrice: "9.99", Subtotal: "19.98"},
			{SKU: "222", Quantity: 1, UnitPrice: "14.99", Subtotal: "14.99"},
		}
		cart.Totals.Subtotal = "0.00"
		cart.Totals.Tax = "2.40"
		cart.Totals.Total = "0.00"

		normalizeCartTotals(cart)

		assert.Equal(t, "34.97", cart.Totals.Subtotal)
		assert.Equal(t, "37.37", cart.Totals.Total, "총계 = 소계 + 세금 + 배송비 - 할인")
	})

	t.Run("빈 필드는 기본값으로 채워짐", func(t *testing.T) {
		cart := &contract.CartData{}

		normalizeCartTotals(cart)

		assert.Equal(t, "0.00", cart.Totals.Subtotal)
		assert.Equal(t, "0.00", cart.Totals.Tax)
		assert.Equal(t, "0.00", cart.Totals.Total)
	})
}

package importer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkkaiser/capture-server/internal/config"
	"github.com/darkkaiser/capture-server/internal/service/contract"
)

// recordingSender 발송 요청을 기록하는 NotificationSender 테스트 구현체
type recordingSender struct {
	mu       sync.Mutex
	messages []string

	// notifierIDs Notify로 지정된 Notifier ID 목록
	notifierIDs []contract.NotifierID

	errorCount int
}

var _ contract.NotificationSender = (*recordingSender)(nil)

func (s *recordingSender) Notify(notifierID contract.NotifierID, title string, message string, errorOccurred bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifierIDs = append(s.notifierIDs, notifierID)
	s.messages = append(s.messages, message)
	if errorOccurred {
		s.errorCount++
	}
	return nil
}

func (s *recordingSender) NotifyDefault(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSender) NotifyDefaultWithError(message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
	s.errorCount++
	return nil
}

func (s *recordingSender) lastMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		return ""
	}
	return s.messages[len(s.messages)-1]
}

func TestServiceLifecycle(t *testing.T) {
	t.Run("갱신 스케줄 비활성화 상태에서도 시작과 종료가 정상 동작한다", func(t *testing.T) {
		importerConfig := &config.ImporterConfig{Timeout: "1s", CacheTTL: "1m"}
		s := NewService(importerConfig, NewClient(importerConfig), &recordingSender{})

		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup

		wg.Add(1)
		require.NoError(t, s.Start(ctx, &wg))

		cancel()
		wg.Wait()
	})

	t.Run("잘못된 Cron 표현식이면 시작이 실패한다", func(t *testing.T) {
		importerConfig := &config.ImporterConfig{Timeout: "1s", CacheTTL: "1m"}
		importerConfig.Refresh.Runnable = true
		importerConfig.Refresh.TimeSpec = "매일 아침"

		s := NewService(importerConfig, NewClient(importerConfig), &recordingSender{})

		var wg sync.WaitGroup
		wg.Add(1)
		assert.Error(t, s.Start(context.Background(), &wg))
		wg.Wait()
	})

	t.Run("중복 시작 요청은 무시된다", func(t *testing.T) {
		importerConfig := &config.ImporterConfig{Timeout: "1s", CacheTTL: "1m"}
		s := NewService(importerConfig, NewClient(importerConfig), &recordingSender{})

		ctx, cancel := context.WithCancel(context.Background())
		var wg sync.WaitGroup

		wg.Add(2)
		require.NoError(t, s.Start(ctx, &wg))
		require.NoError(t, s.Start(ctx, &wg))

		cancel()
		wg.Wait()
	})
}

func TestServiceRefresh(t *testing.T) {
	t.Run("가져온 상품을 다시 조회하고 결과를 알린다", func(t *testing.T) {
		var mu sync.Mutex
		price := "329.00"
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			current := price
			mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sku":"5001740917","price":"` + current + `"}`))
		}))
		defer server.Close()

		importerConfig := &config.ImporterConfig{Endpoint: server.URL, Timeout: "2s", CacheTTL: "1m"}
		importerConfig.Refresh.NotifierID = "telegram-ops"

		client := newTestClient(server.URL)
		sender := &recordingSender{}
		s := NewService(importerConfig, client, sender)

		_, err := client.Import(context.Background(), "https://www.lowes.com/pd/5001740917")
		require.NoError(t, err)

		mu.Lock()
		price = "299.00"
		mu.Unlock()

		s.refresh()

		refreshed, err := client.Import(context.Background(), "https://www.lowes.com/pd/5001740917")
		require.NoError(t, err)
		assert.Equal(t, "299.00", refreshed.Price)

		assert.Equal(t, []contract.NotifierID{"telegram-ops"}, sender.notifierIDs)
		assert.Contains(t, sender.lastMessage(), "성공: 1건")
		assert.Contains(t, sender.lastMessage(), "실패: 0건")
	})

	t.Run("갱신 실패 시 오류 알림을 발송한다", func(t *testing.T) {
		var failing bool
		var mu sync.Mutex
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			shouldFail := failing
			mu.Unlock()
			if shouldFail {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"sku":"57448"}`))
		}))
		defer server.Close()

		importerConfig := &config.ImporterConfig{Endpoint: server.URL, Timeout: "2s", CacheTTL: "1m"}

		client := newTestClient(server.URL)
		sender := &recordingSender{}
		s := NewService(importerConfig, client, sender)

		_, err := client.Import(context.Background(), "https://www.harborfreight.com/57448.html")
		require.NoError(t, err)

		mu.Lock()
		failing = true
		mu.Unlock()

		s.refresh()

		assert.Equal(t, 1, sender.errorCount)
		assert.True(t, strings.Contains(sender.lastMessage(), "실패: 1건"))
	})

	t.Run("갱신 대상이 없으면 알림을 발송하지 않는다", func(t *testing.T) {
		importerConfig := &config.ImporterConfig{Timeout: "1s", CacheTTL: "1m"}
		sender := &recordingSender{}
		s := NewService(importerConfig, NewClient(importerConfig), sender)

		s.refresh()

		assert.Empty(t, sender.messages)
	})
}

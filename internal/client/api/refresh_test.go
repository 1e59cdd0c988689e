package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maintly/fieldsync/pkg/api"
)

// refreshTestServer поднимает сервер, который отвергает старый access token
// и ротирует пару на refresh endpoint
type refreshTestServer struct {
	server       *httptest.Server
	refreshCalls atomic.Int64
	refreshDelay time.Duration
	rejectAll    bool
	mu           sync.Mutex
	validAccess  string
}

func newRefreshTestServer(t *testing.T) *refreshTestServer {
	t.Helper()

	rts := &refreshTestServer{validAccess: "access-2"}

	rts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh/" {
			rts.refreshCalls.Add(1)
			if rts.refreshDelay > 0 {
				time.Sleep(rts.refreshDelay)
			}

			if rts.rejectAll {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"refresh token expired"}`))
				return
			}

			_ = json.NewEncoder(w).Encode(api.TokenResponse{
				AccessToken:  "access-2",
				RefreshToken: "refresh-2",
				ExpiresIn:    900,
			})
			return
		}

		rts.mu.Lock()
		valid := "Bearer " + rts.validAccess
		rts.mu.Unlock()

		if r.Header.Get("Authorization") != valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"token invalid"}`))
			return
		}

		_ = json.NewEncoder(w).Encode(api.AlertListResponse{
			Count:   1,
			Results: []api.Alert{{ID: 42, Status: "active", Severity: "critical"}},
		})
	}))

	t.Cleanup(rts.server.Close)
	return rts
}

// TestClient_RefreshAndRetryOnce: 401 -> refresh -> повторная попытка
func TestClient_RefreshAndRetryOnce(t *testing.T) {
	rts := newRefreshTestServer(t)

	tokens := newFakeTokenSource("access-1", "refresh-1")
	client := NewClient(rts.server.URL, WithTokenSource(tokens))

	resp, err := client.ListAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)

	// Ровно один refresh, новая пара сохранена
	assert.Equal(t, int64(1), rts.refreshCalls.Load())
	stored, err := tokens.Tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", stored.Access)
	assert.Equal(t, "refresh-2", stored.Refresh)
}

// TestClient_AtMostOneRefresh: N конкурентных 401 порождают ровно один
// refresh; остальные запросы паркуются и разделяют его исход
func TestClient_AtMostOneRefresh(t *testing.T) {
	rts := newRefreshTestServer(t)
	rts.refreshDelay = 150 * time.Millisecond

	tokens := newFakeTokenSource("access-1", "refresh-1")
	client := NewClient(rts.server.URL, WithTokenSource(tokens))

	const concurrent = 10

	var wg sync.WaitGroup
	errs := make([]error, concurrent)

	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.ListAlerts(context.Background())
		}(i)
	}
	wg.Wait()

	// Все запросы завершились успешно после единственного refresh
	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int64(1), rts.refreshCalls.Load())
}

// TestClient_SecondUnauthorizedSurfaces: запрос, уже повторенный после
// refresh, при втором 401 не уходит в цикл
func TestClient_SecondUnauthorizedSurfaces(t *testing.T) {
	rts := newRefreshTestServer(t)
	// Сервер не примет и новый токен
	rts.mu.Lock()
	rts.validAccess = "never-valid"
	rts.mu.Unlock()

	tokens := newFakeTokenSource("access-1", "refresh-1")
	client := NewClient(rts.server.URL, WithTokenSource(tokens))

	_, err := client.ListAlerts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// Refresh выполнился один раз, второго retry не было
	assert.Equal(t, int64(1), rts.refreshCalls.Load())
}

// TestClient_RefreshRejected: отклоненный refresh очищает токены
func TestClient_RefreshRejected(t *testing.T) {
	rts := newRefreshTestServer(t)
	rts.rejectAll = true

	tokens := newFakeTokenSource("access-1", "refresh-1")
	client := NewClient(rts.server.URL, WithTokenSource(tokens))

	_, err := client.ListAlerts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, tokens.wasCleared())
}

// TestClient_RefreshRejected_Concurrent: припаркованные запросы разделяют
// отказ единственного refresh
func TestClient_RefreshRejected_Concurrent(t *testing.T) {
	rts := newRefreshTestServer(t)
	rts.rejectAll = true
	rts.refreshDelay = 150 * time.Millisecond

	tokens := newFakeTokenSource("access-1", "refresh-1")
	client := NewClient(rts.server.URL, WithTokenSource(tokens))

	const concurrent = 5

	var wg sync.WaitGroup
	errs := make([]error, concurrent)
	for i := 0; i < concurrent; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.ListAlerts(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.ErrorIs(t, err, ErrSessionExpired, "request %d", i)
	}
	assert.Equal(t, int64(1), rts.refreshCalls.Load())
	assert.True(t, tokens.wasCleared())
}

// TestClient_RefreshOffline: network error во время refresh не очищает
// токены — сессия останется пригодной при следующем подключении
func TestClient_RefreshOffline(t *testing.T) {
	// Отдельный сервер: 401 на запрос, обрыв соединения на refresh
	var stopRefresh atomic.Bool
	stopRefresh.Store(true)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/auth/refresh/" && stopRefresh.Load() {
			// симулируем обрыв: закрываем соединение без ответа
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_ = conn.Close()
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"token invalid"}`))
	}))
	defer backend.Close()

	tokens := newFakeTokenSource("access-1", "refresh-1")
	client := NewClient(backend.URL, WithTokenSource(tokens))

	_, err := client.ListAlerts(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.False(t, tokens.wasCleared())

	// Refresh token на месте для следующей попытки
	stored, err := tokens.Tokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", stored.Refresh)
}

// TestRefreshCoordinator_Sequential: после завершения refresh координатор
// возвращается в IDLE и готов к следующему циклу
func TestRefreshCoordinator_Sequential(t *testing.T) {
	coord := &refreshCoordinator{}

	var calls int
	for i := 0; i < 3; i++ {
		err := coord.do(context.Background(), func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

// TestRefreshCoordinator_ParkedContextCancel: припаркованный вызов
// снимается по отмене контекста, не дожидаясь лидера
func TestRefreshCoordinator_ParkedContextCancel(t *testing.T) {
	coord := &refreshCoordinator{}

	leaderStarted := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = coord.do(context.Background(), func() error {
			close(leaderStarted)
			<-release
			return nil
		})
	}()

	<-leaderStarted

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := coord.do(ctx, func() error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/maintly/fieldsync/internal/models"
	"github.com/maintly/fieldsync/pkg/api"
)

// DefaultTimeout - таймаут HTTP-запросов; его истечение классифицируется
// как network error и для мутаций ведет в offline-очередь
const DefaultTimeout = 30 * time.Second

// TenantHeader - заголовок с slug организации, добавляется когда хост
// сервера не кодирует tenant в subdomain
const TenantHeader = "X-Tenant"

// IdempotencyKeyHeader - заголовок с idempotency key мутации
const IdempotencyKeyHeader = "Idempotency-Key"

// Tokens представляет пару токенов в памяти (plaintext)
type Tokens struct {
	Access    string
	Refresh   string
	ExpiresIn int64
}

// TokenSource defines how the client core reads and rotates the stored
// token pair. The client never persists tokens itself beyond this interface.
type TokenSource interface {
	// Tokens returns the current plaintext token pair
	Tokens(ctx context.Context) (*Tokens, error)

	// StoreTokens atomically replaces the stored pair after a refresh
	StoreTokens(ctx context.Context, tokens *Tokens) error

	// ClearTokens removes the stored pair (irrecoverable refresh failure)
	ClearTokens(ctx context.Context) error
}

// Client представляет HTTP клиент для взаимодействия с backend.
// Все аутентифицированные вызовы доменных сервисов проходят через него.
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	refresh    *refreshCoordinator
	baseURL    string
	tenant     models.TenantContext
	tenantMu   sync.RWMutex
}

// Option настраивает клиента при создании
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithTokenSource attaches the token source used for auth-header injection
// and 401-triggered refresh.
func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger attaches a logger; by default the client is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  slog.New(slog.DiscardHandler),
		refresh: &refreshCoordinator{},
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetTenant устанавливает контекст организации для последующих запросов
func (c *Client) SetTenant(tenant models.TenantContext) {
	c.tenantMu.Lock()
	defer c.tenantMu.Unlock()
	c.tenant = tenant
}

// ClearTenant сбрасывает контекст организации (logout)
func (c *Client) ClearTenant() {
	c.tenantMu.Lock()
	defer c.tenantMu.Unlock()
	c.tenant = models.TenantContext{}
}

// Tenant возвращает текущий контекст организации
func (c *Client) Tenant() models.TenantContext {
	c.tenantMu.RLock()
	defer c.tenantMu.RUnlock()
	return c.tenant
}

// requestOptions собирает опции одного запроса
type requestOptions struct {
	idempotencyKey string
	noAuth         bool
}

// RequestOption настраивает отдельный запрос
type RequestOption func(*requestOptions)

// WithIdempotencyKey attaches the Idempotency-Key header. The key must be
// the one assigned at enqueue time: it is never regenerated per attempt.
func WithIdempotencyKey(key string) RequestOption {
	return func(o *requestOptions) {
		o.idempotencyKey = key
	}
}

// WithoutAuth skips auth-header injection (login and refresh endpoints).
func WithoutAuth() RequestOption {
	return func(o *requestOptions) {
		o.noAuth = true
	}
}

// Do выполняет HTTP запрос с подстановкой заголовков, классификацией
// ошибок и обновлением токенов по 401.
//
// Запрос, уже повторенный после refresh, при втором 401 не повторяется
// снова, а завершается ErrSessionExpired — это исключает бесконечный цикл.
func (c *Client) Do(ctx context.Context, method, path string, body, result any, opts ...RequestOption) error {
	reqOpts := &requestOptions{}
	for _, opt := range opts {
		opt(reqOpts)
	}

	// Тело сериализуем один раз; reader пересоздается на каждую попытку
	var bodyBytes []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyBytes = data
	}

	respBody, status, err := c.dispatch(ctx, method, path, bodyBytes, reqOpts, false)
	if err != nil {
		return err
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response (%d): %w", status, err)
		}
	}

	return nil
}

// dispatch выполняет одну или (после refresh) две попытки запроса
func (c *Client) dispatch(ctx context.Context, method, path string, bodyBytes []byte, reqOpts *requestOptions, retried bool) ([]byte, int, error) {
	// Запоминаем access token, с которым уходит запрос: по нему
	// определяется, нужен ли refresh при 401 или пара уже ротирована
	var usedAccess string
	if c.tokens != nil && !reqOpts.noAuth {
		tokens, err := c.tokens.Tokens(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read tokens: %w", err)
		}
		usedAccess = tokens.Access
	}

	req, err := c.buildRequest(ctx, method, path, bodyBytes, reqOpts, usedAccess)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Ответ не получен вовсе: кандидат на offline-очередь
		return nil, 0, &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &NetworkError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	// 401 на аутентифицированном запросе: refresh и одна повторная попытка
	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil && !reqOpts.noAuth {
		if retried {
			// Повторный 401 после refresh — не входим в цикл
			return nil, resp.StatusCode, ErrSessionExpired
		}

		if err := c.refreshTokens(ctx, usedAccess); err != nil {
			return nil, resp.StatusCode, err
		}

		c.logger.Debug("retrying request after token refresh", "method", method, "path", path)
		return c.dispatch(ctx, method, path, bodyBytes, reqOpts, true)
	}

	// Полученный статус >= 400 — application-level ошибка
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &HTTPError{
			Status:  resp.StatusCode,
			Message: api.ParseErrorBody(respBody),
			Body:    respBody,
		}
	}

	return respBody, resp.StatusCode, nil
}

// buildRequest создает запрос с заголовками авторизации и тенанта
func (c *Client) buildRequest(ctx context.Context, method, path string, bodyBytes []byte, reqOpts *requestOptions, accessToken string) (*http.Request, error) {
	var bodyReader io.Reader
	if bodyBytes != nil {
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if reqOpts.idempotencyKey != "" {
		req.Header.Set(IdempotencyKeyHeader, reqOpts.idempotencyKey)
	}

	// Заголовок тенанта: только если хост не кодирует tenant в subdomain
	tenant := c.Tenant()
	if !tenant.IsZero() && !c.hostEncodesTenant(tenant.Slug) {
		req.Header.Set(TenantHeader, tenant.Slug)
	}

	// Заголовок авторизации
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return req, nil
}

// hostEncodesTenant проверяет, начинается ли хост baseURL с "<slug>."
func (c *Client) hostEncodesTenant(slug string) bool {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	return strings.HasPrefix(parsed.Hostname(), slug+".")
}

// refreshTokens обновляет пару токенов, координируя конкурентные 401.
// Системный инвариант: не более одного refresh-вызова одновременно;
// остальные запросы паркуются и разделяют его исход.
func (c *Client) refreshTokens(ctx context.Context, staleAccess string) error {
	return c.refresh.do(ctx, func() error {
		tokens, err := c.tokens.Tokens(ctx)
		if err != nil {
			return fmt.Errorf("failed to read refresh token: %w", err)
		}

		// Пара уже ротирована параллельным запросом — повторный refresh
		// не нужен, запрос сразу уходит на retry с новым токеном
		if tokens.Access != staleAccess {
			return nil
		}

		c.logger.Info("access token rejected, refreshing")

		refreshed, err := c.Refresh(ctx, tokens.Refresh)
		if err != nil {
			if IsNetworkError(err) {
				// Offline во время refresh: токены не трогаем, сессия
				// останется пригодной для следующей попытки
				return err
			}

			// Refresh token отклонен — сессия невосстановима
			c.logger.Warn("token refresh rejected, clearing session", "error", err)
			if clearErr := c.tokens.ClearTokens(ctx); clearErr != nil {
				c.logger.Error("failed to clear tokens", "error", clearErr)
			}
			return ErrSessionExpired
		}

		// Персистим новую пару атомарно
		if err := c.tokens.StoreTokens(ctx, &Tokens{
			Access:    refreshed.AccessToken,
			Refresh:   refreshed.RefreshToken,
			ExpiresIn: refreshed.ExpiresIn,
		}); err != nil {
			return fmt.Errorf("failed to store refreshed tokens: %w", err)
		}

		return nil
	})
}

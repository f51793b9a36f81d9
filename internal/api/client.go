// Package api предоставляет HTTP-клиент REST API системы заказа еды.
//
// Клиент подставляет сохранённый токен доступа в каждый запрос и при ответе 401
// один раз обновляет токен и повторяет исходный запрос.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mmeshcher/foodorder-client/internal/obs"
	"github.com/mmeshcher/foodorder-client/internal/storage"
)

const refreshEndpoint = "/auth/jwt/refresh/"

// ErrSessionExpired возвращается, если токен доступа отклонён, а обновить его не удалось.
// Сохранённые учётные данные к этому моменту уже удалены.
var ErrSessionExpired = errors.New("session expired")

type contextKey string

const retriedKey contextKey = "retried"

func withRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey, true)
}

func isRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey).(bool)
	return v
}

// Client инкапсулирует HTTP-взаимодействие с REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	storage    storage.Store
	logger     *zap.Logger
	metrics    *obs.Metrics
	limiter    *rate.Limiter
	onExpired  func(ctx context.Context)
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient задаёт HTTP-клиент транспорта.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout задаёт таймаут HTTP-клиента. Нулевое значение означает отсутствие таймаута.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger задаёт логгер.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics задаёт коллекторы метрик.
func WithMetrics(m *obs.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithRateLimit ограничивает частоту исходящих запросов. rps <= 0 снимает ограничение.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSessionExpiredHook задаёт функцию, вызываемую после удаления учётных данных
// из-за неудачного обновления токена. Это точка перехода на страницу входа.
func WithSessionExpiredHook(fn func(ctx context.Context)) Option {
	return func(c *Client) { c.onExpired = fn }
}

// NewClient создаёт клиент API по указанному адресу.
func NewClient(baseURL string, store storage.Store, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{},
		storage:    store,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do выполняет авторизованный запрос и декодирует ответ в out.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, in, out any) error {
	return c.roundTrip(ctx, method, endpoint, query, in, out, true)
}

// doPublic выполняет запрос без токена доступа и без перехвата 401.
// Используется для выдачи учётных данных и сброса пароля.
func (c *Client) doPublic(ctx context.Context, method, endpoint string, in, out any) error {
	return c.roundTrip(ctx, method, endpoint, nil, in, out, false)
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, query url.Values, in, out any, authorized bool) error {
	if c == nil || c.baseURL == "" {
		return errors.New("api client not configured")
	}

	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	resp, err := c.send(ctx, method, endpoint, query, payload, authorized)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, resp.Header, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send отправляет запрос. Ответ 401 на авторизованный запрос, который ещё не
// повторялся, запускает обновление токена и единственный повтор.
func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, payload []byte, authorized bool) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := c.newRequest(ctx, method, endpoint, query, payload)
	if err != nil {
		return nil, err
	}

	if authorized {
		token, err := c.storage.Get(ctx, storage.KeyAccessToken)
		switch {
		case err == nil && token != "":
			req.Header.Set("Authorization", "Bearer "+token)
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("read access token: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveAPI(method, endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("do request: %w", err)
	}
	c.metrics.ObserveAPI(method, endpoint, resp.StatusCode, time.Since(start))

	if !authorized || resp.StatusCode != http.StatusUnauthorized || isRetried(ctx) {
		return resp, nil
	}

	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if err := c.refresh(ctx); err != nil {
		c.expire(ctx, err)
		return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	return c.send(withRetried(ctx), method, endpoint, query, payload, authorized)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, payload []byte) (*http.Request, error) {
	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// refresh обменивает сохранённый refresh-токен на новый токен доступа и сохраняет его.
func (c *Client) refresh(ctx context.Context) error {
	refreshToken, err := c.storage.Get(ctx, storage.KeyRefreshToken)
	if err != nil || refreshToken == "" {
		c.metrics.ObserveRefresh("missing")
		return errors.New("no refresh token")
	}

	var resp refreshResponse
	err = c.doPublic(ctx, http.MethodPost, refreshEndpoint, refreshRequest{Refresh: refreshToken}, &resp)
	if err != nil {
		c.metrics.ObserveRefresh("failure")
		return fmt.Errorf("refresh token: %w", err)
	}
	if resp.Access == "" {
		c.metrics.ObserveRefresh("failure")
		return errors.New("refresh token: empty access token")
	}

	if err := c.storage.Set(ctx, storage.KeyAccessToken, resp.Access); err != nil {
		c.metrics.ObserveRefresh("failure")
		return fmt.Errorf("store access token: %w", err)
	}
	if resp.Refresh != "" {
		if err := c.storage.Set(ctx, storage.KeyRefreshToken, resp.Refresh); err != nil {
			c.metrics.ObserveRefresh("failure")
			return fmt.Errorf("store refresh token: %w", err)
		}
	}

	c.metrics.ObserveRefresh("success")
	fields := []zap.Field{}
	if exp, ok := AccessExpiry(resp.Access); ok {
		fields = append(fields, zap.Time("expires_at", exp))
	}
	c.logger.Debug("access token refreshed", fields...)
	return nil
}

// expire удаляет сохранённые учётные данные и сообщает о завершении сессии.
func (c *Client) expire(ctx context.Context, cause error) {
	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
		if err := c.storage.Remove(ctx, key); err != nil {
			c.logger.Error("remove credential", zap.String("key", key), zap.Error(err))
		}
	}

	c.logger.Info("session expired", zap.Error(cause))

	if c.onExpired != nil {
		c.onExpired(ctx)
	}
}

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/sentinel-console/internal/domain"
	"github.com/xela07ax/sentinel-console/internal/metrics"
)

// TrainEndpoint фиксирован на стороне бэкенда и не конфигурируется.
const TrainEndpoint = "/ai/train"

// maxBodySize ограничивает чтение ответа, лента и алерты укладываются с запасом.
const maxBodySize = 4 << 20

type Options struct {
	BaseURL string
	Timeout time.Duration

	// Сессия Flask: кука передается в каждый запрос как есть
	SessionCookieName string
	SessionCookie     string

	// Клиентский лимитер исходящих запросов
	RateLimit float64
	RateBurst int

	Breaker BreakerSettings
}

// Client — единственная точка общения консоли с бэкендом CyberSentinel.
type Client struct {
	base    *url.URL
	http    *http.Client
	cookie  *http.Cookie
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func New(opts Options, m *metrics.Metrics, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base url %q: %w", opts.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q: scheme and host are required", opts.BaseURL)
	}

	if m == nil {
		m = metrics.New(nil)
	}
	logger = logger.Named("backend")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	var cookie *http.Cookie
	if opts.SessionCookie != "" {
		cookie = &http.Cookie{Name: opts.SessionCookieName, Value: opts.SessionCookie}
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   timeout,
			Transport: &traceTransport{next: http.DefaultTransport},
		},
		cookie:  cookie,
		limiter: rate.NewLimiter(limit, burst),
		breaker: newBreaker("backend-feed", opts.Breaker, m, logger),
		metrics: m,
		logger:  logger,
	}, nil
}

// Detect отправляет поля формы ручной детекции. Ровно одна попытка.
func (c *Client) Detect(ctx context.Context, endpoint string, fields map[string]string) (*domain.DetectionResult, error) {
	var res domain.DetectionResult
	if err := c.do(ctx, "detect", http.MethodPost, endpoint, fields, &res); err != nil {
		return nil, err
	}
	if err := res.Validate(); err != nil {
		c.metrics.RequestsTotal.WithLabelValues("detect", "decode").Inc()
		return nil, fmt.Errorf("detect: %w", err)
	}
	return &res, nil
}

// Notifications читает ленту событий. Идет через предохранитель.
func (c *Client) Notifications(ctx context.Context, endpoint string) ([]domain.NotificationEvent, error) {
	var events []domain.NotificationEvent
	err := c.guarded(func() error {
		return c.do(ctx, "notifications", http.MethodGet, endpoint, nil, &events)
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Train запускает переобучение моделей. Тело ответа не используется.
func (c *Client) Train(ctx context.Context, limit int) error {
	return c.do(ctx, "train", http.MethodPost, TrainEndpoint, map[string]int{"limit": limit}, nil)
}

// Alerts читает последние алерты для таблицы отчета.
func (c *Client) Alerts(ctx context.Context, endpoint string) ([]domain.Alert, error) {
	var alerts []domain.Alert
	err := c.guarded(func() error {
		return c.do(ctx, "alerts", http.MethodGet, endpoint, nil, &alerts)
	})
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// ActivityStats читает агрегаты активности по типам событий.
func (c *Client) ActivityStats(ctx context.Context, endpoint string) ([]domain.ActivityStatRow, error) {
	var rows []domain.ActivityStatRow
	if err := c.do(ctx, "activity_stats", http.MethodGet, endpoint, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) resolve(endpoint string) (string, error) {
	ref, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	return c.base.ResolveReference(ref).String(), nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, in, out any) error {
	// 1. Rate Limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait: %w", op, err)
	}

	target, err := c.resolve(endpoint)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	// 2. Сам запрос
	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.RequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.RequestsTotal.WithLabelValues(op, "transport").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.RequestsTotal.WithLabelValues(op, "transport").Inc()
		return fmt.Errorf("%s: read response: %w", op, err)
	}

	// 3. Классификация статуса
	if resp.StatusCode == http.StatusUnauthorized {
		c.metrics.RequestsTotal.WithLabelValues(op, "unauthorized").Inc()
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.RequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
		return &StatusError{Op: op, Code: resp.StatusCode, Message: errorMessage(raw)}
	}

	// 4. Разбор тела
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			c.metrics.RequestsTotal.WithLabelValues(op, "decode").Inc()
			return fmt.Errorf("%s: decode response: %w", op, err)
		}
	}

	c.metrics.RequestsTotal.WithLabelValues(op, "ok").Inc()
	c.logger.Debug("backend request completed",
		zap.String("op", op),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))
	return nil
}

// errorMessage достает {"error": "..."} из тела ошибки, если оно есть.
func errorMessage(raw []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	return envelope.Error
}

// IsUnauthorized сообщает, что бэкенд ответил 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

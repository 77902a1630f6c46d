package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/metrics"
)

// BreakerSettings — параметры предохранителя для фоновых чтений (лента, алерты).
type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	Failures    uint32 // сколько ошибок подряд открывает предохранитель
}

func newBreaker(name string, s BreakerSettings, m *metrics.Metrics, logger *zap.Logger) *gobreaker.CircuitBreaker {
	failures := s.Failures
	if failures == 0 {
		failures = 5
	}

	m.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 401 говорит о сессии, а не о здоровье бэкенда
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnauthorized)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// guarded выполняет fn через предохранитель. Открытый CB отдает ErrCircuitOpen.
func (c *Client) guarded(fn func() error) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}

// Retry повторяет fn с экспоненциальной задержкой. Используется только для
// разовых загрузок при старте; интерактивные действия не повторяются.
func Retry(ctx context.Context, attempts uint, fn func(ctx context.Context) error) error {
	if attempts == 0 {
		attempts = 1
	}

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
			// Нет смысла долбить бэкенд без сессии
			if errors.Is(err, ErrUnauthorized) {
				return 0
			}
			return retry.BackOffDelay(n, err, config)
		}),
	)

	return r.Do(func() error {
		return fn(ctx)
	})
}

package detect

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/backend"
	"github.com/xela07ax/sentinel-console/internal/domain"
	"github.com/xela07ax/sentinel-console/internal/metrics"
	"github.com/xela07ax/sentinel-console/internal/view"
)

// UnauthorizedMessage показывается на любой 401, тело ответа не важно.
const UnauthorizedMessage = "You must be logged in to run detections."

// Detector описывает, что нужно сабмиттеру от бэкенда.
type Detector interface {
	Detect(ctx context.Context, endpoint string, fields map[string]string) (*domain.DetectionResult, error)
}

// ResultView — область результата на странице.
type ResultView interface {
	SetResult(view.ResultRegion)
	Result() view.ResultRegion
}

type Submitter struct {
	client   Detector
	page     ResultView
	endpoint func() string
	metrics  *metrics.Metrics
	logger   *zap.Logger

	// Поколение отправки: ответ старой отправки не затирает более новую.
	mu  sync.Mutex
	gen uint64
}

// endpoint читается заново на каждую отправку.
func NewSubmitter(client Detector, page ResultView, endpoint func() string, m *metrics.Metrics, logger *zap.Logger) *Submitter {
	if m == nil {
		m = metrics.New(nil)
	}
	return &Submitter{
		client:   client,
		page:     page,
		endpoint: endpoint,
		metrics:  m,
		logger:   logger.Named("submitter"),
	}
}

// Submit отправляет поля формы и отрисовывает результат. Одна попытка, без повторов.
// Возвращает актуальное содержимое области: если за время запроса началась
// более новая отправка, это ее состояние, а не устаревший ответ.
func (s *Submitter) Submit(ctx context.Context, fields map[string]string) view.ResultRegion {
	// 1. Индикатор ожидания
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.page.SetResult(view.RenderPending())
	s.mu.Unlock()

	// 2. Запрос
	var region view.ResultRegion
	res, err := s.client.Detect(ctx, s.endpoint(), fields)
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		s.logger.Warn("detection rejected: not logged in")
		region = view.RenderFailure(UnauthorizedMessage)
	case err != nil:
		s.logger.Warn("detection failed", zap.Error(err))
		region = view.RenderFailure(err.Error())
	default:
		region = view.RenderDetection(*res)
		s.logger.Info("detection completed",
			zap.String("risk_level", string(res.RiskLevel)),
			zap.Float64("risk_score", res.RiskScore))
	}
	s.metrics.DetectionsTotal.WithLabelValues(string(region.Severity)).Inc()

	// 3. Отрисовка, если за это время не было новой отправки
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("stale detection response dropped", zap.Uint64("generation", gen))
		return s.page.Result()
	}
	s.page.SetResult(region)
	return region
}

package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/backend"
	"github.com/xela07ax/sentinel-console/internal/domain"
	"github.com/xela07ax/sentinel-console/internal/metrics"
	"github.com/xela07ax/sentinel-console/internal/view"
)

const (
	DefaultRefreshInterval = 60 * time.Second
	DefaultTrainResetAfter = 4 * time.Second
)

// TrainLimit — размер выборки переобучения, фиксирован контрактом /ai/train.
const TrainLimit = 500

// Backend описывает, что контроллеру нужно от бэкенда.
type Backend interface {
	Notifications(ctx context.Context, endpoint string) ([]domain.NotificationEvent, error)
	Train(ctx context.Context, limit int) error
	Alerts(ctx context.Context, endpoint string) ([]domain.Alert, error)
	ActivityStats(ctx context.Context, endpoint string) ([]domain.ActivityStatRow, error)
}

type Settings struct {
	NotificationsEndpoint string
	AlertsEndpoint        string
	ActivityStatsEndpoint string

	// Статистика из конфигурации; запасной вариант, если эндпоинт не задан или недоступен
	ActivityStats []domain.ActivityStatRow
	StatsAttempts uint

	RefreshInterval time.Duration
	TrainResetAfter time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.RefreshInterval <= 0 {
		s.RefreshInterval = DefaultRefreshInterval
	}
	if s.TrainResetAfter <= 0 {
		s.TrainResetAfter = DefaultTrainResetAfter
	}
	if s.StatsAttempts == 0 {
		s.StatsAttempts = 3
	}
	return s
}

// Controller — фоновая часть дашборда: лента, переобучение, графики.
type Controller struct {
	backend  Backend
	page     *view.Page
	settings atomic.Pointer[Settings]
	metrics  *metrics.Metrics
	logger   *zap.Logger

	// незавершенные таймеры сброса кнопки
	resets sync.WaitGroup
}

func New(b Backend, page *view.Page, s Settings, m *metrics.Metrics, logger *zap.Logger) *Controller {
	if m == nil {
		m = metrics.New(nil)
	}
	c := &Controller{
		backend: b,
		page:    page,
		metrics: m,
		logger:  logger.Named("dashboard"),
	}
	c.UpdateSettings(s)
	return c
}

// UpdateSettings применяет новые эндпоинты со следующего цикла.
// Интервал опроса меняется только при перезапуске.
func (c *Controller) UpdateSettings(s Settings) {
	s = s.withDefaults()
	c.settings.Store(&s)
}

func (c *Controller) Settings() Settings {
	return *c.settings.Load()
}

// Start выполняет загрузку страницы: график активности и таблица алертов
// рисуются один раз, лента опрашивается сразу и далее по интервалу.
// Возвращенный stop останавливает опрос.
func (c *Controller) Start(ctx context.Context) (stop func()) {
	c.RenderActivityChart(ctx)
	if err := c.LoadAlerts(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.logger.Warn("alert table load failed", zap.Error(err))
	}

	interval := c.Settings().RefreshInterval
	c.logger.Info("notification refresh loop started", zap.Duration("interval", interval))

	return Every(ctx, interval, func(ctx context.Context) {
		if err := c.RefreshNotifications(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Warn("notification refresh failed", zap.Error(err))
		}
	})
}

// RefreshNotifications перечитывает ленту. При ошибке лента на странице не трогается.
func (c *Controller) RefreshNotifications(ctx context.Context) error {
	s := c.Settings()
	if s.NotificationsEndpoint == "" {
		return nil
	}

	events, err := c.backend.Notifications(ctx, s.NotificationsEndpoint)
	if err != nil {
		c.metrics.FeedRefreshTotal.WithLabelValues("error").Inc()
		return err
	}

	c.page.ReplaceFeed(view.RenderFeed(events))
	c.metrics.FeedRefreshTotal.WithLabelValues("ok").Inc()
	c.logger.Debug("notification feed refreshed", zap.Int("events", len(events)))
	return nil
}

// Retrain обрабатывает клик по кнопке переобучения.
// Возвращает false, если кнопка была выключена и клик проигнорирован.
// Через TrainResetAfter кнопка возвращается в исходное состояние независимо от исхода.
func (c *Controller) Retrain(ctx context.Context) bool {
	if !c.page.BeginTrain() {
		c.logger.Debug("retrain click ignored: button disabled")
		return false
	}
	s := c.Settings()

	err := c.backend.Train(ctx, TrainLimit)
	if err != nil {
		c.logger.Error("model retrain failed", zap.Int("limit", TrainLimit), zap.Error(err))
		c.metrics.TrainTotal.WithLabelValues("error").Inc()
	} else {
		c.logger.Info("model retrain completed", zap.Int("limit", TrainLimit))
		c.metrics.TrainTotal.WithLabelValues("ok").Inc()
	}
	c.page.SetTrainButton(view.FinishedTrainButton(err == nil))

	c.resets.Add(1)
	time.AfterFunc(s.TrainResetAfter, func() {
		defer c.resets.Done()
		c.page.SetTrainButton(view.DefaultTrainButton())
	})
	return true
}

// WaitResets ждет срабатывания всех запланированных сбросов кнопки.
func (c *Controller) WaitResets() {
	c.resets.Wait()
}

// RenderActivityChart рисует столбцы активности один раз при загрузке.
func (c *Controller) RenderActivityChart(ctx context.Context) {
	s := c.Settings()
	rows := s.ActivityStats

	if s.ActivityStatsEndpoint != "" {
		var fetched []domain.ActivityStatRow
		err := backend.Retry(ctx, s.StatsAttempts, func(ctx context.Context) error {
			var err error
			fetched, err = c.backend.ActivityStats(ctx, s.ActivityStatsEndpoint)
			return err
		})
		if err != nil {
			c.logger.Warn("activity stats fetch failed, using configured rows",
				zap.String("endpoint", s.ActivityStatsEndpoint),
				zap.Error(err))
		} else {
			rows = fetched
		}
	}

	c.page.SetChart(view.ActivityChartID, view.RenderActivityChart(rows))
}

// LoadAlerts заполняет таблицу отчета и строит по ней тренд риска.
func (c *Controller) LoadAlerts(ctx context.Context) error {
	s := c.Settings()
	if s.AlertsEndpoint == "" {
		c.page.SetChart(view.TrendChartID, view.RenderTrendChart(nil))
		return nil
	}

	alerts, err := c.backend.Alerts(ctx, s.AlertsEndpoint)
	if err != nil {
		c.page.SetChart(view.TrendChartID, view.RenderTrendChart(nil))
		return err
	}

	c.page.SetAlerts(alerts)
	c.page.SetChart(view.TrendChartID, view.RenderTrendChart(alerts))
	return nil
}

// Package app собирает зависимости консоли в одном месте для обеих точек входа.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/backend"
	"github.com/xela07ax/sentinel-console/internal/chart"
	"github.com/xela07ax/sentinel-console/internal/dashboard"
	"github.com/xela07ax/sentinel-console/internal/detect"
	"github.com/xela07ax/sentinel-console/internal/infra"
	"github.com/xela07ax/sentinel-console/internal/metrics"
	"github.com/xela07ax/sentinel-console/internal/view"
)

type App struct {
	Loader     *infra.Loader
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Client     *backend.Client
	Page       *view.Page
	Board      *chart.Board
	Controller *dashboard.Controller
	Submitter  *detect.Submitter
}

// Build — Dependency Injection: конфиг -> клиент -> страница -> компоненты.
func Build(loader *infra.Loader, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	cfg := loader.Config()
	m := metrics.New(reg)

	client, err := backend.New(BackendOptions(cfg.Backend), m, logger)
	if err != nil {
		return nil, err
	}

	page := view.NewPage()
	ctrl := dashboard.New(client, page, DashboardSettings(cfg.Dashboard), m, logger)
	sub := detect.NewSubmitter(client, page, func() string {
		return loader.Config().Dashboard.DetectEndpoint
	}, m, logger)

	a := &App{
		Loader:     loader,
		Logger:     logger,
		Metrics:    m,
		Client:     client,
		Page:       page,
		Board:      chart.NewBoard(),
		Controller: ctrl,
		Submitter:  sub,
	}

	// Новые эндпоинты применяются со следующего цикла опроса
	loader.OnChange(func(cfg *infra.Config) {
		ctrl.UpdateSettings(DashboardSettings(cfg.Dashboard))
	})
	return a, nil
}

// Start загружает страницу и запускает опрос ленты.
func (a *App) Start(ctx context.Context) (stop func()) {
	return a.Controller.Start(ctx)
}

func BackendOptions(c infra.BackendConfig) backend.Options {
	return backend.Options{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		SessionCookieName: c.SessionCookieName,
		SessionCookie:     c.SessionCookie,
		RateLimit:         c.RateLimit,
		RateBurst:         c.RateBurst,
		Breaker: backend.BreakerSettings{
			MaxRequests: c.CBMaxRequests,
			Interval:    c.CBInterval,
			Timeout:     c.CBTimeout,
			Failures:    c.CBFailures,
		},
	}
}

func DashboardSettings(c infra.DashboardConfig) dashboard.Settings {
	return dashboard.Settings{
		NotificationsEndpoint: c.NotificationsEndpoint,
		AlertsEndpoint:        c.AlertsEndpoint,
		ActivityStatsEndpoint: c.ActivityStatsEndpoint,
		ActivityStats:         c.ActivityStats,
		StatsAttempts:         c.StatsAttempts,
		RefreshInterval:       c.RefreshInterval,
		TrainResetAfter:       c.TrainResetAfter,
	}
}

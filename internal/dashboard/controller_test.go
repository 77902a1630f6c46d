package dashboard_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/xela07ax/sentinel-console/internal/chart"
	"github.com/xela07ax/sentinel-console/internal/dashboard"
	"github.com/xela07ax/sentinel-console/internal/domain"
	"github.com/xela07ax/sentinel-console/internal/metrics"
	"github.com/xela07ax/sentinel-console/internal/view"
)

// Незаданные функции fakeBackend возвращают пустой успех.
type fakeBackend struct {
	mu            sync.Mutex
	notifications func() ([]domain.NotificationEvent, error)
	train         func(limit int) error
	alerts        func() ([]domain.Alert, error)
	stats         func() ([]domain.ActivityStatRow, error)

	notifyCalls atomic.Int32
	trainCalls  atomic.Int32
	statsCalls  atomic.Int32
}

func (f *fakeBackend) Notifications(ctx context.Context, endpoint string) ([]domain.NotificationEvent, error) {
	f.notifyCalls.Add(1)
	f.mu.Lock()
	fn := f.notifications
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn()
}

func (f *fakeBackend) Train(ctx context.Context, limit int) error {
	f.trainCalls.Add(1)
	if f.train == nil {
		return nil
	}
	return f.train(limit)
}

func (f *fakeBackend) Alerts(ctx context.Context, endpoint string) ([]domain.Alert, error) {
	if f.alerts == nil {
		return nil, nil
	}
	return f.alerts()
}

func (f *fakeBackend) ActivityStats(ctx context.Context, endpoint string) ([]domain.ActivityStatRow, error) {
	f.statsCalls.Add(1)
	if f.stats == nil {
		return nil, nil
	}
	return f.stats()
}

func (f *fakeBackend) setNotifications(fn func() ([]domain.NotificationEvent, error)) {
	f.mu.Lock()
	f.notifications = fn
	f.mu.Unlock()
}

func newController(t *testing.T, b dashboard.Backend, s dashboard.Settings) (*dashboard.Controller, *view.Page, *metrics.Metrics) {
	t.Helper()
	page := view.NewPage()
	m := metrics.New(prometheus.NewRegistry())
	return dashboard.New(b, page, s, m, zaptest.NewLogger(t)), page, m
}

func baseSettings() dashboard.Settings {
	return dashboard.Settings{
		NotificationsEndpoint: "/ai/activity-feed",
		AlertsEndpoint:        "/admin/api/alerts",
		TrainResetAfter:       20 * time.Millisecond,
	}
}

func TestSettingsDefaults(t *testing.T) {
	c, _, _ := newController(t, &fakeBackend{}, dashboard.Settings{})
	s := c.Settings()
	if s.RefreshInterval != dashboard.DefaultRefreshInterval ||
		s.TrainResetAfter != dashboard.DefaultTrainResetAfter {
		t.Errorf("settings = %+v", s)
	}
}

func TestRefreshNotifications(t *testing.T) {
	events := []domain.NotificationEvent{{EventType: "login", Timestamp: "t1"}, {EventType: "upload", Timestamp: "t2"}}
	b := &fakeBackend{}
	b.setNotifications(func() ([]domain.NotificationEvent, error) { return events, nil })
	c, page, m := newController(t, b, baseSettings())

	if err := c.RefreshNotifications(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	first := page.Feed()
	if err := c.RefreshNotifications(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !reflect.DeepEqual(first, page.Feed()) || len(first) != 2 {
		t.Errorf("feed after identical refresh = %v, first = %v", page.Feed(), first)
	}

	b.setNotifications(func() ([]domain.NotificationEvent, error) { return nil, errors.New("connection refused") })
	if err := c.RefreshNotifications(context.Background()); err == nil {
		t.Fatal("expected refresh error")
	}
	if !reflect.DeepEqual(first, page.Feed()) {
		t.Errorf("failed refresh changed the feed: %v", page.Feed())
	}

	if v := testutil.ToFloat64(m.FeedRefreshTotal.WithLabelValues("ok")); v != 2 {
		t.Errorf("ok refreshes = %v", v)
	}
	if v := testutil.ToFloat64(m.FeedRefreshTotal.WithLabelValues("error")); v != 1 {
		t.Errorf("failed refreshes = %v", v)
	}
}

func TestRefreshWithoutEndpointIsNoop(t *testing.T) {
	b := &fakeBackend{}
	c, _, _ := newController(t, b, dashboard.Settings{})
	if err := c.RefreshNotifications(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if b.notifyCalls.Load() != 0 {
		t.Error("backend called without endpoint")
	}
}

func TestRetrainSuccessResetsButton(t *testing.T) {
	var gotLimit int
	b := &fakeBackend{train: func(limit int) error { gotLimit = limit; return nil }}
	c, page, _ := newController(t, b, baseSettings())

	if !c.Retrain(context.Background()) {
		t.Fatal("retrain click ignored")
	}
	if gotLimit != 500 {
		t.Errorf("limit = %d, want 500", gotLimit)
	}
	if got := page.TrainButton(); got.Label != view.TrainLabelDone || !got.Disabled {
		t.Errorf("button after success = %+v", got)
	}

	c.WaitResets()
	if got := page.TrainButton(); got != view.DefaultTrainButton() {
		t.Errorf("button after reset = %+v", got)
	}
}

func TestRetrainFailureResetsButton(t *testing.T) {
	b := &fakeBackend{train: func(int) error { return errors.New("boom") }}
	c, page, m := newController(t, b, baseSettings())

	c.Retrain(context.Background())
	if got := page.TrainButton(); got.Label != view.TrainLabelRetry || !got.Disabled {
		t.Errorf("button after failure = %+v", got)
	}
	c.WaitResets()
	if got := page.TrainButton(); got != view.DefaultTrainButton() {
		t.Errorf("button after reset = %+v", got)
	}
	if v := testutil.ToFloat64(m.TrainTotal.WithLabelValues("error")); v != 1 {
		t.Errorf("failed trains = %v", v)
	}
}

func TestRetrainIgnoredWhileDisabled(t *testing.T) {
	b := &fakeBackend{}
	c, page, _ := newController(t, b, baseSettings())

	page.BeginTrain()
	if c.Retrain(context.Background()) {
		t.Error("click on a disabled button was accepted")
	}
	if n := b.trainCalls.Load(); n != 0 {
		t.Errorf("train called %d times", n)
	}
}

func TestRenderActivityChartFallsBackToConfiguredRows(t *testing.T) {
	c, page, _ := newController(t, &fakeBackend{}, dashboard.Settings{})
	c.RenderActivityChart(context.Background())

	spec, ok := page.Chart(view.ActivityChartID)
	if !ok {
		t.Fatal("activity chart not rendered")
	}
	want := []chart.Point{{Label: view.NoDataLabel, Value: 0}}
	if !reflect.DeepEqual(spec.Series, want) {
		t.Errorf("series = %v, want %v", spec.Series, want)
	}
}

func TestRenderActivityChartRetriesEndpoint(t *testing.T) {
	b := &fakeBackend{}
	b.stats = func() ([]domain.ActivityStatRow, error) {
		if b.statsCalls.Load() < 2 {
			return nil, errors.New("temporary")
		}
		return []domain.ActivityStatRow{{EventType: "login", Count: 9}}, nil
	}
	s := baseSettings()
	s.ActivityStatsEndpoint = "/admin/api/activity-stats"
	s.ActivityStats = []domain.ActivityStatRow{{EventType: "configured", Count: 1}}
	c, page, _ := newController(t, b, s)

	c.RenderActivityChart(context.Background())

	spec, _ := page.Chart(view.ActivityChartID)
	want := []chart.Point{{Label: "login", Value: 9}}
	if !reflect.DeepEqual(spec.Series, want) {
		t.Errorf("series = %v, want %v", spec.Series, want)
	}
	if n := b.statsCalls.Load(); n != 2 {
		t.Errorf("stats calls = %d, want 2", n)
	}
}

func TestRenderActivityChartUsesConfigWhenEndpointFails(t *testing.T) {
	b := &fakeBackend{stats: func() ([]domain.ActivityStatRow, error) { return nil, errors.New("down") }}
	s := baseSettings()
	s.ActivityStatsEndpoint = "/admin/api/activity-stats"
	s.StatsAttempts = 2
	s.ActivityStats = []domain.ActivityStatRow{{EventType: "configured", Count: 1}}
	c, page, _ := newController(t, b, s)

	c.RenderActivityChart(context.Background())

	spec, _ := page.Chart(view.ActivityChartID)
	want := []chart.Point{{Label: "configured", Value: 1}}
	if !reflect.DeepEqual(spec.Series, want) {
		t.Errorf("series = %v, want %v", spec.Series, want)
	}
	if n := b.statsCalls.Load(); n != 2 {
		t.Errorf("stats calls = %d, want 2", n)
	}
}

func TestLoadAlerts(t *testing.T) {
	b := &fakeBackend{alerts: func() ([]domain.Alert, error) {
		return []domain.Alert{{ID: 2, RiskScore: 0.9, CreatedAt: "b"}, {ID: 1, RiskScore: 0.3, CreatedAt: "a"}}, nil
	}}
	c, page, _ := newController(t, b, baseSettings())

	if err := c.LoadAlerts(context.Background()); err != nil {
		t.Fatalf("LoadAlerts: %v", err)
	}
	if got := page.Snapshot().Alerts; len(got) != 2 {
		t.Errorf("alerts = %v", got)
	}
	spec, _ := page.Chart(view.TrendChartID)
	if len(spec.Series) != 2 || spec.Series[0].Label != "a" {
		t.Errorf("trend = %v", spec.Series)
	}
}

func TestLoadAlertsFailureKeepsEmptyTrend(t *testing.T) {
	b := &fakeBackend{alerts: func() ([]domain.Alert, error) { return nil, errors.New("down") }}
	c, page, _ := newController(t, b, baseSettings())

	if err := c.LoadAlerts(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	spec, ok := page.Chart(view.TrendChartID)
	if !ok || len(spec.Series) != 0 {
		t.Errorf("trend = %+v, ok = %v", spec, ok)
	}
}

func TestStartPollsUntilStopped(t *testing.T) {
	b := &fakeBackend{}
	s := baseSettings()
	s.RefreshInterval = 10 * time.Millisecond
	c, page, _ := newController(t, b, s)

	stop := c.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for b.notifyCalls.Load() < 3 {
		if time.Now().After(deadline) {
			stop()
			t.Fatalf("only %d refreshes before deadline", b.notifyCalls.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
	stop()

	after := b.notifyCalls.Load()
	time.Sleep(50 * time.Millisecond)
	if n := b.notifyCalls.Load(); n != after {
		t.Errorf("refreshes continued after stop: %d -> %d", after, n)
	}

	if _, ok := page.Chart(view.ActivityChartID); !ok {
		t.Error("activity chart not rendered on start")
	}
	if _, ok := page.Chart(view.TrendChartID); !ok {
		t.Error("trend chart not rendered on start")
	}
}

func TestUpdateSettingsAppliesOnNextRefresh(t *testing.T) {
	b := &fakeBackend{}
	c, _, _ := newController(t, b, dashboard.Settings{})

	c.RefreshNotifications(context.Background())
	if b.notifyCalls.Load() != 0 {
		t.Fatal("refresh without endpoint reached backend")
	}

	c.UpdateSettings(baseSettings())
	c.RefreshNotifications(context.Background())
	if b.notifyCalls.Load() != 1 {
		t.Error("new endpoint was not picked up")
	}
}

package view

import (
	"fmt"
	"strings"

	"github.com/xela07ax/sentinel-console/internal/chart"
	"github.com/xela07ax/sentinel-console/internal/domain"
)

// Severity — визуальный класс алерта в области результата.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

const PendingMessage = "Submitting for analysis..."

// ResultRegion — содержимое области результата ручной детекции.
// Либо Message (ожидание/ошибка), либо тройка RiskLevel/Score/Insight.
type ResultRegion struct {
	Severity  Severity `json:"severity,omitempty"`
	Message   string   `json:"message,omitempty"`
	RiskLevel string   `json:"risk_level,omitempty"`
	Score     string   `json:"score,omitempty"`
	Insight   string   `json:"insight,omitempty"`
}

// Empty: область еще ни разу не отрисовывалась.
func (r ResultRegion) Empty() bool {
	return r.Severity == ""
}

// Lines возвращает текст для терминала и логов.
func (r ResultRegion) Lines() []string {
	if r.Empty() {
		return nil
	}
	if r.Message != "" {
		return []string{r.Message}
	}
	lines := []string{
		"Risk Level: " + r.RiskLevel,
		"Score: " + r.Score,
	}
	if r.Insight != "" {
		lines = append(lines, "Insight: "+r.Insight)
	}
	return lines
}

// SeverityFor: critical -> danger, high -> warning, все остальное -> success.
func SeverityFor(level domain.RiskLevel) Severity {
	switch level {
	case domain.RiskCritical:
		return SeverityDanger
	case domain.RiskHigh:
		return SeverityWarning
	default:
		return SeveritySuccess
	}
}

// FormatScore печатает долю как процент с одним знаком: 0.437 -> "43.7%".
func FormatScore(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

func RenderPending() ResultRegion {
	return ResultRegion{Severity: SeverityInfo, Message: PendingMessage}
}

func RenderDetection(res domain.DetectionResult) ResultRegion {
	return ResultRegion{
		Severity:  SeverityFor(res.RiskLevel),
		RiskLevel: strings.ToUpper(string(res.RiskLevel)),
		Score:     FormatScore(res.RiskScore),
		Insight:   res.Insight,
	}
}

func RenderFailure(message string) ResultRegion {
	return ResultRegion{Severity: SeverityDanger, Message: message}
}

// FeedItem — строка ленты уведомлений.
type FeedItem struct {
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp"`
}

// RenderFeed строит ленту целиком в порядке, в котором пришли события.
func RenderFeed(events []domain.NotificationEvent) []FeedItem {
	items := make([]FeedItem, 0, len(events))
	for _, e := range events {
		items = append(items, FeedItem{EventType: e.EventType, Timestamp: e.Timestamp})
	}
	return items
}

// Состояния кнопки переобучения
const (
	TrainLabelDefault = "Retrain AI Models"
	TrainLabelBusy    = "Training"
	TrainLabelDone    = "Models Updated"
	TrainLabelRetry   = "Retry"
)

type Button struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
	Spinner  bool   `json:"spinner,omitempty"`
}

func DefaultTrainButton() Button { return Button{Label: TrainLabelDefault} }
func BusyTrainButton() Button    { return Button{Label: TrainLabelBusy, Disabled: true, Spinner: true} }

// FinishedTrainButton остается выключенной до сброса.
func FinishedTrainButton(ok bool) Button {
	if ok {
		return Button{Label: TrainLabelDone, Disabled: true}
	}
	return Button{Label: TrainLabelRetry, Disabled: true}
}

// Идентификаторы графиков на странице
const (
	ActivityChartID = "activityChart"
	TrendChartID    = "trendChart"
)

const NoDataLabel = "No Data"

// RenderActivityChart строит параллельные ряды меток и счетчиков.
// Пустая статистика превращается ровно в один столбец "No Data" = 0.
func RenderActivityChart(rows []domain.ActivityStatRow) chart.Spec {
	series := make([]chart.Point, 0, len(rows))
	for _, row := range rows {
		series = append(series, chart.Point{Label: row.EventType, Value: float64(row.Count)})
	}
	if len(series) == 0 {
		series = append(series, chart.Point{Label: NoDataLabel, Value: 0})
	}
	return chart.Spec{Kind: chart.KindBar, Title: "Events", Series: series}
}

// RenderTrendChart строит тренд риска по алертам, от старых к новым.
// Бэкенд отдает алерты от новых к старым.
func RenderTrendChart(alerts []domain.Alert) chart.Spec {
	series := make([]chart.Point, 0, len(alerts))
	for i := len(alerts) - 1; i >= 0; i-- {
		a := alerts[i]
		series = append(series, chart.Point{Label: a.CreatedAt, Value: float64(a.RiskScore)})
	}
	return chart.Spec{Kind: chart.KindLine, Title: "Risk Score", Series: series}
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/chart"
	"github.com/xela07ax/sentinel-console/internal/report"
	"github.com/xela07ax/sentinel-console/internal/view"
)

// Trainer — кнопка переобучения.
type Trainer interface {
	Retrain(ctx context.Context) bool
}

const helpLine = "[t] retrain  [e] export report  [q] quit"

type Dashboard struct {
	page      *view.Page
	board     *chart.Board
	trainer   Trainer
	reportDir string
	now       func() time.Time
	logger    *zap.Logger

	status string
}

func NewDashboard(page *view.Page, board *chart.Board, trainer Trainer, reportDir string, logger *zap.Logger) *Dashboard {
	return &Dashboard{
		page:      page,
		board:     board,
		trainer:   trainer,
		reportDir: reportDir,
		now:       time.Now,
		logger:    logger.Named("tui"),
		status:    helpLine,
	}
}

// Run занимает терминал до q / Ctrl+C или отмены ctx.
// Вся отрисовка идет из этого цикла, фоновые компоненты только меняют Page.
func (d *Dashboard) Run(ctx context.Context) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer ui.Close()

	width, height := ui.TerminalDimensions()
	d.render(width, height)

	updates, unsubscribe := d.page.Subscribe()
	defer unsubscribe()

	events := ui.PollEvents()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-updates:
			d.render(width, height)
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			case "t":
				// запрос идет в фоне, кнопка обновится через Page
				go d.trainer.Retrain(ctx)
			case "e":
				d.export()
				d.render(width, height)
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				width, height = payload.Width, payload.Height
				ui.Clear()
				d.render(width, height)
			}
		}
	}
}

func (d *Dashboard) export() {
	path, err := report.WriteFile(d.reportDir, d.page.Table(), d.now())
	if err != nil {
		d.logger.Error("report export failed", zap.Error(err))
		d.status = "export failed: " + err.Error()
		return
	}
	d.logger.Info("report exported", zap.String("path", path))
	d.status = "report saved to " + path
}

// render собирает сетку заново: termui Grid копит элементы при повторном Set.
func (d *Dashboard) render(width, height int) {
	snap := d.page.Snapshot()

	activity := d.chartWidget(view.ActivityChartID, snap)
	trend := d.chartWidget(view.TrendChartID, snap)

	feed := widgets.NewList()
	feed.Title = "Notifications"
	feed.Rows = FeedRows(snap.Feed)
	feed.TextStyle = ui.NewStyle(ui.ColorWhite)
	feed.WrapText = false

	result := widgets.NewParagraph()
	result.Title = "Manual Detection"
	result.Text = ResultText(snap.Result)
	result.BorderStyle.Fg = severityColor(snap.Result.Severity)

	button := widgets.NewParagraph()
	button.Title = "Models"
	button.Text = ButtonText(snap.TrainButton)

	status := widgets.NewParagraph()
	status.Title = "Keys"
	status.Text = d.status

	grid := ui.NewGrid()
	grid.SetRect(0, 0, width, height)
	grid.Set(
		ui.NewRow(0.45,
			ui.NewCol(0.5, activity),
			ui.NewCol(0.5, trend),
		),
		ui.NewRow(0.45,
			ui.NewCol(0.5, feed),
			ui.NewCol(0.5,
				ui.NewRow(0.65, result),
				ui.NewRow(0.35, button),
			),
		),
		ui.NewRow(0.1, ui.NewCol(1.0, status)),
	)
	ui.Render(grid)
}

func (d *Dashboard) chartWidget(id string, snap view.Snapshot) ui.Drawable {
	spec, ok := snap.Charts[id]
	if !ok {
		p := widgets.NewParagraph()
		p.Title = id
		p.Text = "Loading..."
		return p
	}
	return d.board.Render(id, spec)
}

// FeedRows возвращает строки ленты в порядке получения.
func FeedRows(items []view.FeedItem) []string {
	rows := make([]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, fmt.Sprintf("[%s](fg:green,mod:bold) %s", it.EventType, it.Timestamp))
	}
	return rows
}

func ResultText(r view.ResultRegion) string {
	if r.Empty() {
		return "Submit a detection from the web console."
	}
	return strings.Join(r.Lines(), "\n")
}

func ButtonText(b view.Button) string {
	if b.Disabled {
		return fmt.Sprintf("%s (busy)", b.Label)
	}
	return fmt.Sprintf("[%s](fg:cyan,mod:bold)  press t", b.Label)
}

func severityColor(s view.Severity) ui.Color {
	switch s {
	case view.SeverityDanger:
		return ui.ColorRed
	case view.SeverityWarning:
		return ui.ColorYellow
	case view.SeveritySuccess:
		return ui.ColorGreen
	default:
		return ui.ColorCyan
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/chart"
	"github.com/xela07ax/sentinel-console/internal/view"
)

// Trainer — кнопка переобучения.
type Trainer interface {
	Retrain(ctx context.Context) bool
}

// Размер текстового снимка графика на странице
const (
	chartWidth  = 72
	chartHeight = 16
)

type DashboardHandler struct {
	page          *view.Page
	board         *chart.Board
	trainer       Trainer
	logger        *zap.Logger
	feedReloadFor time.Duration
	trainResetFor time.Duration
}

// feedReload - период опроса ленты браузером, trainReset - через сколько
// кнопка переобучения возвращается в исходное состояние.
func NewDashboardHandler(page *view.Page, board *chart.Board, trainer Trainer, feedReload, trainReset time.Duration, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		page:          page,
		board:         board,
		trainer:       trainer,
		logger:        logger.Named("dashboard-handler"),
		feedReloadFor: feedReload,
		trainResetFor: trainReset,
	}
}

// Index отдает страницу целиком.
// GET /
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	snap := h.page.Snapshot()

	ids := make([]string, 0, len(snap.Charts))
	for id := range snap.Charts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	// Каждый показ пересоздает виджеты: старые экземпляры выбрасываются
	charts := make([]string, 0, len(ids))
	for _, id := range ids {
		d := h.board.Render(id, snap.Charts[id])
		charts = append(charts, chart.Snapshot(d, chartWidth, chartHeight))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := view.NewPageData(snap, h.page.Table(), charts, h.feedReloadFor, h.trainResetFor)
	if err := view.WritePage(w, data); err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
	}
}

// Feed отдает фрагмент ленты уведомлений.
// GET /feed
func (h *DashboardHandler) Feed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.WriteFeed(w, h.page.Feed()); err != nil {
		h.logger.Error("failed to render feed", zap.Error(err))
	}
}

// Train нажимает кнопку переобучения и отдает ее актуальное состояние.
// POST /train
func (h *DashboardHandler) Train(w http.ResponseWriter, r *http.Request) {
	if !h.trainer.Retrain(r.Context()) {
		h.logger.Debug("train request ignored: already running")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.WriteTrainButton(w, h.page.TrainButton()); err != nil {
		h.logger.Error("failed to render train button", zap.Error(err))
	}
}

// TrainButton отдает текущее состояние кнопки, браузер перечитывает его после сброса.
// GET /train
func (h *DashboardHandler) TrainButton(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.WriteTrainButton(w, h.page.TrainButton()); err != nil {
		h.logger.Error("failed to render train button", zap.Error(err))
	}
}

// View отдает состояние страницы в JSON.
// GET /api/view
func (h *DashboardHandler) View(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.page.Snapshot())
}

package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/report"
)

// TableSource — откуда берется разметка таблицы отчета.
type TableSource interface {
	Table() template.HTML
}

type ReportHandler struct {
	tables TableSource
	now    func() time.Time
	logger *zap.Logger
}

func NewReportHandler(tables TableSource, now func() time.Time, logger *zap.Logger) *ReportHandler {
	if now == nil {
		now = time.Now
	}
	return &ReportHandler{tables: tables, now: now, logger: logger.Named("report-handler")}
}

// Download отдает отчет вложением cybersentinel-report.html.
// GET /report
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	body, err := report.Export(h.tables.Table(), h.now())
	if err != nil {
		h.logger.Error("report export failed", zap.Error(err))
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

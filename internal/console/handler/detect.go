package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/view"
)

// DetectionSubmitter описывает, что нужно обработчику от сабмиттера.
type DetectionSubmitter interface {
	Submit(ctx context.Context, fields map[string]string) view.ResultRegion
}

type DetectHandler struct {
	submitter DetectionSubmitter
	logger    *zap.Logger
}

func NewDetectHandler(s DetectionSubmitter, logger *zap.Logger) *DetectHandler {
	return &DetectHandler{submitter: s, logger: logger.Named("detect-handler")}
}

// Submit принимает форму ручной детекции и отдает фрагмент области результата.
// Ошибки бэкенда показываются внутри фрагмента, статус ответа всегда 200.
// POST /detect
func (h *DetectHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	region := h.submitter.Submit(r.Context(), FormFields(r))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.WriteResult(w, region); err != nil {
		h.logger.Error("failed to render detection result", zap.Error(err))
	}
}

// FormFields сворачивает форму в плоский словарь.
// Для повторяющихся полей побеждает последнее значение.
func FormFields(r *http.Request) map[string]string {
	fields := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) == 0 {
			continue
		}
		fields[key] = values[len(values)-1]
	}
	return fields
}

package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/console/handler"
)

type ConsoleServer struct {
	router   *chi.Mux
	logger   *zap.Logger
	gatherer prometheus.Gatherer

	// Обработчики
	dashHandler   *handler.DashboardHandler // страница, лента, переобучение
	detectHandler *handler.DetectHandler    // ручная детекция
	reportHandler *handler.ReportHandler    // выгрузка отчета
}

// NewConsoleServer инициализирует веб-консоль со всеми зависимостями
func NewConsoleServer(
	logger *zap.Logger,
	gatherer prometheus.Gatherer,
	dashH *handler.DashboardHandler,
	detectH *handler.DetectHandler,
	reportH *handler.ReportHandler,
) *ConsoleServer {
	s := &ConsoleServer{
		router:        chi.NewRouter(),
		logger:        logger.Named("console-api"),
		gatherer:      gatherer,
		dashHandler:   dashH,
		detectHandler: detectH,
		reportHandler: reportH,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	// --- 2. Служебные роуты ---
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// --- 3. Дашборд ---
	r.Get("/", s.dashHandler.Index)
	r.Get("/feed", s.dashHandler.Feed)
	r.Get("/train", s.dashHandler.TrainButton)
	r.Post("/train", s.dashHandler.Train)
	r.Get("/api/view", s.dashHandler.View)

	r.Post("/detect", s.detectHandler.Submit)
	r.Get("/report", s.reportHandler.Download)
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// requestLogger — аналог middleware.Logger, но пишет в zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("request served",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)))
		})
	}
}

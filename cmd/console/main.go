package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/app"
	"github.com/xela07ax/sentinel-console/internal/console/handler"
	"github.com/xela07ax/sentinel-console/internal/console/server"
	"github.com/xela07ax/sentinel-console/internal/infra"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config.yaml (default: ./config.yaml or ./configs/config.yaml)")
	flag.Parse()

	// 1. Конфигурация и логгер
	loader, err := infra.NewLoader(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := loader.Config()

	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Метрики
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 3. Сборка компонентов (Dependency Injection)
	a, err := app.Build(loader, logger, reg)
	if err != nil {
		logger.Fatal("failed to build console", zap.Error(err))
	}
	loader.Watch(logger)

	// Контекст фоновых горутин; cancel() при SIGTERM остановит опрос
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stopRefresh := a.Start(appCtx)

	// 4. HTTP Server
	console := server.NewConsoleServer(
		logger,
		reg,
		handler.NewDashboardHandler(a.Page, a.Board, a.Controller, cfg.Dashboard.RefreshInterval, cfg.Dashboard.TrainResetAfter, logger),
		handler.NewDetectHandler(a.Submitter, logger),
		handler.NewReportHandler(a.Page, time.Now, logger),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      console,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("console started", zap.String("addr", srv.Addr), zap.String("backend", cfg.Backend.BaseURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 5. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("console stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	stopRefresh()
	a.Controller.WaitResets()
	logger.Info("console exited properly")
}

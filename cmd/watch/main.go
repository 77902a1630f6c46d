package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xela07ax/sentinel-console/internal/app"
	"github.com/xela07ax/sentinel-console/internal/infra"
	"github.com/xela07ax/sentinel-console/internal/tui"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config.yaml (default: ./config.yaml or ./configs/config.yaml)")
	logPath := flag.String("log", "sentinel-watch.log", "Log file; the terminal is taken by the dashboard")
	flag.Parse()

	loader, err := infra.NewLoader(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := loader.Config()

	// Терминал занят termui, поэтому stderr подменяем файлом
	logCfg := cfg.Logger
	if logCfg.Output == "" || logCfg.Output == "stderr" || logCfg.Output == "stdout" {
		logCfg.Output = *logPath
	}
	logger, err := infra.NewLogger(logCfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Метрики без HTTP: наружу их отдает только веб-консоль
	a, err := app.Build(loader, logger, nil)
	if err != nil {
		logger.Fatal("failed to build dashboard", zap.Error(err))
	}
	loader.Watch(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Загрузка страницы идет в фоне, чтобы терминал открылся сразу
	stopCh := make(chan func(), 1)
	go func() { stopCh <- a.Start(ctx) }()

	dash := tui.NewDashboard(a.Page, a.Board, a.Controller, cfg.Dashboard.ReportDir, logger)
	if err := dash.Run(ctx); err != nil {
		logger.Error("dashboard exited with error", zap.Error(err))
	}

	cancel()
	stopRefresh := <-stopCh
	stopRefresh()
	logger.Info("watch exited")
}

// Package main runs the background job worker (daily cycle, status report, resend).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/anpi-survey/backend/config"
	"github.com/anpi-survey/backend/internal/app"
	"github.com/anpi-survey/backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		app.NewLogger("info").Fatal("load config", zap.Error(err))
	}
	logger := app.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("bootstrap", zap.Error(err))
	}
	defer a.Close()

	rotator, err := a.Rotator(ctx)
	if err != nil {
		logger.Fatal("rotator", zap.Error(err))
	}

	processor := worker.NewJobProcessor(worker.Deps{
		Rotator:    rotator,
		Sender:     a.Sender,
		Store:      a.Store,
		Roster:     a.Roster,
		Digests:    a.Aggregator,
		Dispatcher: a.Dispatcher,
		Location:   cfg.Survey.Location(),
	}, a.Queue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

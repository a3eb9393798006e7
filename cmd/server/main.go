// Package main runs the survey bot HTTP server: webhook receivers, scheduler trigger and
// operator routes, with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anpi-survey/backend/config"
	"github.com/anpi-survey/backend/internal/app"
	"github.com/anpi-survey/backend/internal/auth"
	"github.com/anpi-survey/backend/internal/commands"
	"github.com/anpi-survey/backend/internal/middleware"
	"github.com/anpi-survey/backend/internal/survey"
	"github.com/anpi-survey/backend/internal/triggers"
	"github.com/anpi-survey/backend/internal/worker"
	"github.com/anpi-survey/backend/pkg/response"
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

	if cfg.Server.PublicBaseURL == "" {
		logger.Warn("PUBLIC_BASE_URL not set, webhook reconcile will fail")
	}

	// The bot receives its own messages through the message webhook.
	botEmail := ""
	if me, err := a.Webex.Me(ctx); err != nil {
		logger.Warn("could not resolve bot identity", zap.Error(err))
	} else {
		botEmail = me.PrimaryEmail()
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	ingester := survey.NewIngester(a.Webex, a.Store, a.Dispatcher, logger)
	surveyHandler := survey.NewHandler(ingester, logger)

	router := commands.NewRouter(a.Store, a.Aggregator, cfg.Survey.SubstituteURL, logger)
	commandHandler := commands.NewHandler(router, a.Webex, a.Dispatcher, a.Roster, botEmail, logger)

	triggerHandler := triggers.NewHandler(a.Queue, a.Webhooks, a.Targets(), cfg.Scheduler.Source, logger)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.Logger(logger))

	engine.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Webex deliveries, signed when WEBEX_WEBHOOK_SECRET is set
	hooks := engine.Group("/webhooks")
	hooks.Use(middleware.WebexSignature(cfg.Webex.WebhookSecret, logger))
	{
		hooks.POST("/survey", surveyHandler.Submit)
		hooks.POST("/check", commandHandler.Check)
	}

	engine.POST("/events/scheduled", triggerHandler.Scheduled)

	admin := engine.Group("/admin")
	admin.Use(middleware.JWT(jwtService), middleware.RequireRole(auth.RoleOperator))
	{
		admin.POST("/resend", triggerHandler.Resend)
		admin.POST("/webhooks/reconcile", triggerHandler.Reconcile)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if cfg.Server.RunWorker {
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
		go processor.Run(workerCtx)
		logger.Info("in-process worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

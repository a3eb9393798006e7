// Package app wires configuration into the bot's components for the server, worker and CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/anpi-survey/backend/config"
	"github.com/anpi-survey/backend/internal/archive"
	"github.com/anpi-survey/backend/internal/identity"
	"github.com/anpi-survey/backend/internal/models"
	"github.com/anpi-survey/backend/internal/notify"
	"github.com/anpi-survey/backend/internal/responses"
	"github.com/anpi-survey/backend/internal/roster"
	"github.com/anpi-survey/backend/internal/status"
	"github.com/anpi-survey/backend/internal/survey"
	"github.com/anpi-survey/backend/internal/webex"
	"github.com/anpi-survey/backend/internal/webhooks"
	"github.com/anpi-survey/backend/pkg/database"
	"github.com/anpi-survey/backend/pkg/queue"
	"github.com/anpi-survey/backend/pkg/redis"
	"github.com/anpi-survey/backend/pkg/storage"
)

// RotationLockKey is the Redis key that serializes archive rotations.
const RotationLockKey = "lock:rotation"

// NewLogger builds the production zap logger at level (debug, info, warn, error).
func NewLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// App holds the shared components.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Redis      *redis.Client
	Pool       *pgxpool.Pool
	Store      responses.Store
	Webex      *webex.Client
	Roster     *roster.FileSource
	Definition models.SurveyDefinition
	Dispatcher *notify.Dispatcher
	Names      *identity.Resolver
	Aggregator *status.Aggregator
	Queue      *queue.Queue
	Webhooks   *webhooks.Manager
	Sender     *survey.Sender
}

// New connects to Redis (and PostgreSQL when it backs the store) and builds the components.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		return nil, err
	}
	a.Redis = rdb

	switch cfg.Store.Backend {
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), 0, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Pool = pool
		if err := database.Migrate(ctx, pool); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		a.Store = responses.NewPostgresStore(pool)
	case "memory":
		a.Store = responses.NewMemoryStore()
	default:
		a.Store = responses.NewRedisStore(rdb.Client, cfg.Store.RedisKey, logger)
	}

	a.Roster = roster.NewFileSource(cfg.Survey.OrganizationsFile, cfg.Survey.DefinitionFile)
	def, err := a.Roster.LoadSurveyDefinition()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Definition = def

	a.Webex = webex.NewClient(webex.Config{
		BaseURL:     cfg.Webex.BaseURL,
		AccessToken: cfg.Webex.AccessToken,
		RateLimit:   cfg.Webex.RateLimit,
		RateBurst:   cfg.Webex.RateBurst,
		Timeout:     time.Duration(cfg.Webex.TimeoutSec) * time.Second,
	}, logger)
	a.Dispatcher = notify.NewDispatcher(a.Webex, logger)
	a.Names = identity.NewResolver(a.Webex, cfg.Survey.ResolverWorkers, logger)
	a.Aggregator = status.NewAggregator(a.Names, def, cfg.Survey.NormalAnswer)
	a.Queue = queue.NewQueue(rdb.Client, logger)
	a.Webhooks = webhooks.NewManager(a.Webex, cfg.Webex.WebhookSecret, logger)
	a.Sender = survey.NewSender(a.Dispatcher, a.Roster, cfg.Survey.Location(), logger)
	return a, nil
}

// Targets returns the webhook target URLs derived from the public base URL.
func (a *App) Targets() webhooks.Targets {
	return webhooks.Targets{
		SubmissionURL: a.Config.Server.SubmissionTargetURL(),
		MessageURL:    a.Config.Server.MessageTargetURL(),
	}
}

// Archive connects to the archive bucket.
func (a *App) Archive(ctx context.Context) (*storage.S3, error) {
	return storage.NewS3(ctx, storage.S3Config{
		Region:          a.Config.AWS.Region,
		AccessKeyID:     a.Config.AWS.AccessKeyID,
		SecretAccessKey: a.Config.AWS.SecretAccessKey,
		Bucket:          a.Config.AWS.ArchiveBucket,
	}, a.Logger)
}

// Rotator builds the archive rotator, locked through Redis.
func (a *App) Rotator(ctx context.Context) (*archive.Rotator, error) {
	blob, err := a.Archive(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive bucket: %w", err)
	}
	lock := redis.NewLock(a.Redis.Client, RotationLockKey, a.Config.Scheduler.RotationLock)
	return archive.NewRotator(a.Store, blob, lock, a.Config.AWS.ArchivePrefix, a.Logger), nil
}

// Close releases connections.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

// Package main is surveyctl, the operations CLI for the survey bot.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anpi-survey/backend/config"
	"github.com/anpi-survey/backend/internal/app"
	"github.com/anpi-survey/backend/internal/webex"
	"github.com/anpi-survey/backend/internal/webhooks"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	rootCmd = &cobra.Command{
		Use:           "surveyctl",
		Short:         "Operate the safety-check survey bot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			logger = app.NewLogger(cfg.LogLevel)
			return nil
		},
	}
)

func main() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(webhooksCmd, rotateCmd, broadcastCmd, resendCmd, statusCmd, archiveCmd, tokenCmd)
}

// bootstrap connects the full component set.
func bootstrap(ctx context.Context) (*app.App, error) {
	return app.New(ctx, cfg, logger)
}

// webhookManager needs only the chat API, not the stores.
func webhookManager() *webhooks.Manager {
	client := webex.NewClient(webex.Config{
		BaseURL:     cfg.Webex.BaseURL,
		AccessToken: cfg.Webex.AccessToken,
		RateLimit:   cfg.Webex.RateLimit,
		RateBurst:   cfg.Webex.RateBurst,
		Timeout:     time.Duration(cfg.Webex.TimeoutSec) * time.Second,
	}, logger)
	return webhooks.NewManager(client, cfg.Webex.WebhookSecret, logger)
}

// parseDate reads a YYYY-MM-DD flag in loc; empty means now.
func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

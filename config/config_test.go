package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WEBEX_ACCESS_TOKEN", "token")
	t.Setenv("PUBLIC_BASE_URL", "https://bot.example.com/prod/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "false", cfg.Survey.NormalAnswer)
	assert.Equal(t, "aws.events", cfg.Scheduler.Source)
	assert.Equal(t, 10, cfg.Survey.ResolverWorkers)
	assert.Equal(t, 5*time.Minute, cfg.Scheduler.RotationLock)
	assert.False(t, cfg.Server.RunWorker)
	assert.Equal(t, "https://bot.example.com/prod/webhooks/survey", cfg.Server.SubmissionTargetURL())
	assert.Equal(t, "https://bot.example.com/prod/webhooks/check", cfg.Server.MessageTargetURL())
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("WEBEX_ACCESS_TOKEN", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("WEBEX_ACCESS_TOKEN", "token")
	t.Setenv("STORE_BACKEND", "dynamo")
	_, err := Load()
	assert.ErrorContains(t, err, "STORE_BACKEND")
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "survey", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/survey?sslmode=disable", c.DSN())
	c.URL = "postgres://override"
	assert.Equal(t, "postgres://override", c.DSN())
}

func TestLocationFallback(t *testing.T) {
	assert.Equal(t, time.Local, SurveyConfig{Timezone: "Nowhere/Invalid"}.Location())
	assert.Equal(t, "UTC", SurveyConfig{Timezone: "UTC"}.Location().String())
}

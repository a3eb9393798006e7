package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestNewLoggerLevel(t *testing.T) {
	logger := NewLogger("debug")
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger = NewLogger("warn")
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger = NewLogger("nonsense")
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

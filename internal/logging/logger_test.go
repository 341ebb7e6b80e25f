package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/dudu/poseperfect/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	jsonLogger := logging.New("warn", "json")
	assert.NotNil(t, jsonLogger)
	assert.False(t, jsonLogger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, jsonLogger.Core().Enabled(zapcore.WarnLevel))

	consoleLogger := logging.New("debug", "console")
	assert.True(t, consoleLogger.Core().Enabled(zapcore.DebugLevel))
}

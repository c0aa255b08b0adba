package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGet_BeforeInitializeIsNoop(t *testing.T) {
	log = nil
	l := Get()
	require.NotNil(t, l)
	assert.NoError(t, Sync())
}

func TestInitialize_Levels(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zapcore.Level
	}{
		{"debug", "debug", zapcore.DebugLevel},
		{"warn", "warn", zapcore.WarnLevel},
		{"unknown falls back to info", "chatty", zapcore.InfoLevel},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, Initialize("development", tc.level))
			assert.True(t, Get().Core().Enabled(tc.expected))
			if tc.expected > zapcore.DebugLevel {
				assert.False(t, Get().Core().Enabled(tc.expected-1))
			}
		})
	}
	log = nil
}

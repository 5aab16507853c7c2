package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_SetsGlobalsAndLevel(t *testing.T) {
	l, err := New("warn")
	require.NoError(t, err)

	assert.Same(t, l, InfoLogger)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	assert.NotPanics(t, func() { Error("[TEST] %d", 1) })
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	l, err := New("loud")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}

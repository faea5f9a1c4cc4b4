package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	l, err := New("debug", "console")
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))

	l, err = New("", "json")
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))

	l, err = New("WARN", "")
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zapcore.InfoLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty", "json")
	assert.Error(t, err)
}

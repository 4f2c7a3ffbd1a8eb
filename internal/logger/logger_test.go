package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewProduction(t *testing.T) {
	log, err := New(false)
	require.NoError(t, err)
	defer log.Sync()

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewVerbose(t *testing.T) {
	log, err := New(true)
	require.NoError(t, err)
	defer log.Sync()

	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/palemoky/fakeplayers/internal/config"
)

func TestBuild_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, _, err := build(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestBuild_LevelFiltering(t *testing.T) {
	t.Parallel()

	l, r, err := build(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fakeplayers.log")

	l, err := Init(config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)
	t.Cleanup(Close)

	l.Info("hello from test")
	_ = l.Sync()

	assert.Equal(t, path, GetLogPath())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Same(t, l, L())
}

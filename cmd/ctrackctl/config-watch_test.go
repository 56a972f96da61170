package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/doodlesbykumbi/ctrack/pkg/config"
)

func TestWatchConfigAppliesLogLevel(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CTRACK_CONFIG_PATH", dir)
	t.Setenv("CTRACK_LOG_LEVEL", "")
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watchConfig(ctx, path, level, zap.NewNop()) }()

	// Rewrite until the watcher has registered and picked the change up
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("log_level: debug\n"), 0o600)
		return level.Level() == zapcore.DebugLevel
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestApplyConfigChangeKeepsLevelOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CTRACK_CONFIG_PATH", dir)
	t.Setenv("CTRACK_LOG_LEVEL", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte("log_level: shouting\n"), 0o600))

	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	applyConfigChange(level, zap.NewNop())
	assert.Equal(t, zapcore.WarnLevel, level.Level())
}

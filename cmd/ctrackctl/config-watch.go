package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ctrack/pkg/config"
	"github.com/doodlesbykumbi/ctrack/pkg/logging"
)

// watchConfig reloads the configuration whenever path is written and
// applies the new log_level to level. Other attributes need a restart.
// The parent directory is watched so that editors which replace the file
// are noticed.
func watchConfig(ctx context.Context, path string, level zap.AtomicLevel, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		logger.Warn("config directory not found, not watching", zap.String("dir", dir))
		<-ctx.Done()
		return nil
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logger.Info("watching config file", zap.String("path", path))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			applyConfigChange(level, logger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-ctx.Done():
			return nil
		}
	}
}

func applyConfigChange(level zap.AtomicLevel, logger *zap.Logger) {
	if err := config.Reload(); err != nil {
		logger.Error("config reload failed, keeping previous settings", zap.Error(err))
		return
	}

	cfg := config.Get()
	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Error("invalid log_level in reloaded config", zap.Error(err))
		return
	}
	if lvl != level.Level() {
		level.SetLevel(lvl)
		logger.Info("log level changed", zap.String("level", lvl.String()))
	} else {
		logger.Info("config reloaded")
	}
}

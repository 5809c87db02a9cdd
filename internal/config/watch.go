package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"ChartBridge/internal/logger"
)

// Watcher reloads the config file on change and invokes the callback with
// the freshly loaded (and validated) config.
type Watcher struct {
	Path     string
	Debounce time.Duration
}

// Start blocks until ctx is done, delivering reloads to onUpdate.
// Reload failures are logged and skipped; the previous config stays active.
func (w Watcher) Start(ctx context.Context, onUpdate func(*Config)) error {
	if w.Debounce <= 0 {
		w.Debounce = 500 * time.Millisecond
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	// Watch the directory: editors replace files on save, which drops a
	// watch on the file itself.
	if err := fw.Add(filepath.Dir(w.Path)); err != nil {
		return err
	}

	var timer *time.Timer
	reload := func() {
		cfg, err := Load(w.Path)
		if err != nil {
			logger.Log.Warn("config reload failed", zap.Error(err))
			return
		}
		if err := cfg.Validate(); err != nil {
			logger.Log.Warn("reloaded config invalid", zap.Error(err))
			return
		}
		logger.Log.Info("config reloaded", zap.String("path", w.Path))
		if onUpdate != nil {
			onUpdate(cfg)
		}
	}

	target := filepath.Clean(w.Path)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.Debounce, reload)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Log.Warn("config watcher error", zap.Error(err))
		}
	}
}

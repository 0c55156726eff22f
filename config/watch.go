// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gviegas/hybrid/internal/log"
)

// Debounce is how long Watch waits for a file to stop
// changing before reloading it.
var Debounce = 100 * time.Millisecond

// Reload is the result of reloading a watched file.
// Exactly one of Config and Err is set.
type Reload struct {
	Config *Config
	Err    error
}

// Watch reloads the configuration file at path whenever
// it changes.
// The directory is watched rather than the file, so that
// editors that replace files on save are handled.
// Results are sent on the returned channel, which is
// closed once ctx is done. A result is dropped if the
// previous one was not received yet.
func Watch(ctx context.Context, path string) (<-chan Reload, error) {
	path = filepath.Clean(path)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	ch := make(chan Reload, 1)
	go watch(ctx, w, path, ch)
	return ch, nil
}

func watch(ctx context.Context, w *fsnotify.Watcher, path string, ch chan<- Reload) {
	defer close(ch)
	defer w.Close()

	timer := time.NewTimer(Debounce)
	timer.Stop()
	send := func(r Reload) {
		select {
		case ch <- r:
		default:
			log.L().Debug("config reload dropped", log.String("path", path))
		}
	}
	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(Debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			send(Reload{Err: fmt.Errorf("config: watch: %w", err)})
		case <-timer.C:
			c, err := Load(path)
			if err != nil {
				log.L().Warn("config reload failed", log.String("path", path), log.Err(err))
				send(Reload{Err: err})
				continue
			}
			log.L().Info("config reloaded", log.String("path", path))
			send(Reload{Config: c})
		}
	}
}

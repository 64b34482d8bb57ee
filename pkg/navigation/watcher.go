// Copyright (C) 2026 Icinga GmbH (info@icinga.com)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 2 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package navigation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses bursts of filesystem events (editors write
// manifests in several steps) into one cache invalidation.
const watchDebounce = 500 * time.Millisecond

// Watch invalidates the provider's cache whenever a manifest beneath
// the module directory changes. It blocks until the context is
// cancelled; callers run it in its own goroutine.
func (p *ModuleProvider) Watch(ctx context.Context, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create manifest watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.dir); err != nil {
		return fmt.Errorf("watch modules directory %q: %w", p.dir, err)
	}
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return fmt.Errorf("read modules directory %q: %w", p.dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			// Module subdirectories hold the manifests themselves.
			if err := watcher.Add(filepath.Join(p.dir, e.Name())); err != nil {
				log.Warn("cannot watch module directory",
					"module", e.Name(), "error", err)
			}
		}
	}

	var debounce *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !p.relevant(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						log.Warn("cannot watch module directory",
							"path", event.Name, "error", err)
					}
				}
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				debounce.Reset(watchDebounce)
			}
			fire = debounce.C
		case <-fire:
			fire = nil
			p.Invalidate()
			log.Info("module manifests changed, cache invalidated")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("manifest watcher error", "error", err)
		}
	}
}

// relevant reports whether an event may change the pane list: a
// manifest write/remove, or a module directory appearing or vanishing.
func (p *ModuleProvider) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) == ManifestName {
		return true
	}
	return filepath.Dir(event.Name) == filepath.Clean(p.dir)
}

// Copyright (c) 2025 BloodLink Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an atomic rename produces.
const watchDebounce = 200 * time.Millisecond

// Watcher notifies a callback when the credentials file changes on disk,
// so a logout or login performed by another bloodlink process is reflected
// in a running TUI.
type Watcher struct {
	store    *fsWatch
	onChange func()
}

type fsWatch struct {
	watcher *fsnotify.Watcher
	path    string
	mu      sync.Mutex
	last    time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

// Watch starts watching the store's backing file. The callback runs on the
// watcher goroutine; keep it short and hand heavier work off. Close the
// returned Watcher to release the underlying file handle.
func (s *Store) Watch(onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: atomic writes replace the file by
	// rename, which would drop a direct file watch.
	if err := fw.Add(filepath.Dir(s.path)); err != nil {
		fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		store: &fsWatch{
			watcher: fw,
			path:    s.path,
			ctx:     ctx,
			cancel:  cancel,
		},
		onChange: onChange,
	}
	go w.loop()
	return w, nil
}

// Close stops the watcher and releases its resources. Safe to call more
// than once.
func (w *Watcher) Close() error {
	w.store.cancel()
	return w.store.watcher.Close()
}

func (w *Watcher) loop() {
	fw := w.store
	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(fw.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.mu.Lock()
			now := time.Now()
			fire := now.Sub(fw.last) >= watchDebounce
			if fire {
				fw.last = now
			}
			fw.mu.Unlock()
			if fire && w.onChange != nil {
				w.onChange()
			}

		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next event still fires.
		}
	}
}

// Reload re-reads the backing file into memory, discarding in-memory state.
// Used by watcher callbacks after an external change.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = entries{}
	return s.load()
}

// Package watch reloads the trace when its file changes on disk. The
// watcher only signals; the frontend polls the resulting load future
// between frames so the store swap never races a render pass.
package watch

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce absorbs the write bursts editors and tracers produce.
const debounce = 250 * time.Millisecond

// Watcher signals on C when the watched file has settled after a change.
type Watcher struct {
	C chan struct{}

	path string
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// New starts watching path's directory; renames and atomic replaces of
// the file itself still produce events that way.
func New(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		C:    make(chan struct{}, 1),
		path: filepath.Clean(path),
		fsw:  fsw,
		done: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			select {
			case w.C <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("trace watcher error", "path", w.path, "err", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

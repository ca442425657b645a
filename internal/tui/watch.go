package tui

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// MapWatcher reports changes to the map file. It watches the containing
// directory so that editors which replace the file on save are seen too.
type MapWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	log      *zap.Logger
	once     sync.Once
}

// NewMapWatcher starts watching path.
func NewMapWatcher(path string, log *zap.Logger) (*MapWatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	log.Debug("watching map file", zap.String("path", abs))
	return &MapWatcher{path: abs, watcher: w, debounce: 250 * time.Millisecond, log: log}, nil
}

// Path is the absolute path being watched.
func (w *MapWatcher) Path() string { return w.path }

// Close releases the watcher. Safe to call more than once.
func (w *MapWatcher) Close() error {
	var err error
	w.once.Do(func() { err = w.watcher.Close() })
	return err
}

// mapChangedMsg is sent once a burst of writes to the map file settles.
type mapChangedMsg struct{ path string }

// watchErrMsg carries a watcher failure.
type watchErrMsg struct{ err error }

func (w *MapWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// wait blocks until the map file changes. Further events within the
// debounce window are folded into the same message. It returns nil once
// the watcher is closed.
func (w *MapWatcher) wait() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if !w.relevant(ev) {
					continue
				}
				w.log.Debug("map file event", zap.String("op", ev.Op.String()))
				w.settle()
				return mapChangedMsg{path: w.path}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}

func (w *MapWatcher) settle() {
	timer := time.NewTimer(w.debounce)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-w.watcher.Events:
			if !ok {
				return
			}
		case <-timer.C:
			return
		}
	}
}

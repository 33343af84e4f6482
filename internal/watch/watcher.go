package watch

import (
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/LFroesch/fcmd/internal/fileops"
	"github.com/LFroesch/fcmd/internal/logger"
)

const DefaultDebounce = 150 * time.Millisecond

// Event names the watched directories whose contents changed during one
// debounce window.
type Event struct {
	Dirs []string
}

// Watcher reports changes to a small, frequently replaced set of
// directories (the ones currently on screen).
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	mu   sync.Mutex
	dirs map[string]bool
}

func New(debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fsWatcher: fsWatcher,
		debounce:  debounce,
		events:    make(chan Event, 4),
		done:      make(chan struct{}),
		dirs:      make(map[string]bool),
	}
	go w.loop()
	return w, nil
}

// Events delivers coalesced change notifications until Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Set replaces the watched directories. Directories that cannot be watched
// are logged and skipped.
func (w *Watcher) Set(dirs []string) {
	want := make(map[string]bool, len(dirs))
	for _, d := range dirs {
		want[filepath.Clean(d)] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for d := range w.dirs {
		if !want[d] {
			if err := w.fsWatcher.Remove(d); err != nil {
				logger.Debug("unwatch %s: %v", d, err)
			}
			delete(w.dirs, d)
		}
	}
	for d := range want {
		if w.dirs[d] {
			continue
		}
		if err := w.fsWatcher.Add(d); err != nil {
			logger.Debug("watch %s: %v", d, err)
			continue
		}
		w.dirs[d] = true
	}
}

// Watched returns the directories currently watched, sorted.
func (w *Watcher) Watched() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.dirs))
	for d := range w.dirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.events)

	pending := make(map[string]bool)
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if fileops.IsPartial(filepath.Base(ev.Name)) {
				continue
			}
			w.mu.Lock()
			for _, d := range []string{filepath.Dir(ev.Name), filepath.Clean(ev.Name)} {
				if w.dirs[d] {
					pending[d] = true
				}
			}
			w.mu.Unlock()
			if len(pending) > 0 && fire == nil {
				fire = time.After(w.debounce)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Warn("fsnotify watcher error: %v", err)

		case <-fire:
			fire = nil
			out := Event{}
			for d := range pending {
				out.Dirs = append(out.Dirs, d)
			}
			sort.Strings(out.Dirs)
			pending = make(map[string]bool)
			select {
			case w.events <- out:
			case <-w.done:
				return
			}
		}
	}
}

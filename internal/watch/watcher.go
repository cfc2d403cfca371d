// Package watch reports debounced changes under the Claude projects directory.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/baaaaaaaka/claude_sessions/internal/logger"
)

const DefaultDebounce = 300 * time.Millisecond

// Watcher monitors the projects directory and each project directory in it.
// Bursts of relevant events collapse into a single onChange call.
type Watcher struct {
	fsWatcher   *fsnotify.Watcher
	projectsDir string
	debounce    time.Duration
	onChange    func()
	log         *slog.Logger

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool

	done     chan struct{}
	stopOnce sync.Once
}

func New(projectsDir string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if onChange == nil {
		return nil, fmt.Errorf("watch: onChange is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsWatcher:   fsw,
		projectsDir: filepath.Clean(projectsDir),
		debounce:    debounce,
		onChange:    onChange,
		log:         logger.Component("watch"),
		done:        make(chan struct{}),
	}, nil
}

// Start creates the projects directory if needed, subscribes to it and to
// every existing project directory, and begins delivering changes.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.projectsDir, 0o755); err != nil {
		return fmt.Errorf("create projects dir: %w", err)
	}
	if err := w.fsWatcher.Add(w.projectsDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.projectsDir, err)
	}
	entries, err := os.ReadDir(w.projectsDir)
	if err != nil {
		return fmt.Errorf("read projects dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addDir(filepath.Join(w.projectsDir, entry.Name()))
		}
	}
	go w.watchLoop()
	return nil
}

func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		w.stopped = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) addDir(dir string) {
	if err := w.fsWatcher.Add(dir); err != nil {
		w.log.Warn("watch project dir", "path", dir, "err", err)
	}
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "err", err)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	projectLevel := filepath.Dir(event.Name) == w.projectsDir
	if event.Has(fsnotify.Create) && projectLevel {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addDir(event.Name)
			w.schedule()
			return
		}
	}
	if projectLevel && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
		w.schedule()
		return
	}
	if isRelevantFile(event.Name) {
		w.log.Debug("change", "path", event.Name, "op", event.Op.String())
		w.schedule()
	}
}

func isRelevantFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".jsonl") ||
		strings.HasSuffix(base, ".jsonl.xz") ||
		base == "metadata.json"
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	select {
	case <-w.done:
		return
	default:
	}
	w.onChange()
}

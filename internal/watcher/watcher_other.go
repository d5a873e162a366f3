//go:build !darwin && !windows

package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of filesystem event
type EventType int

const (
	EventDeleted EventType = iota
	EventCreated
	EventModified
)

// Event represents a filesystem change event
type Event struct {
	Type EventType
	Path string
}

type fileStamp struct {
	modTime time.Time
	size    int64
}

// Watcher polls directory listings on platforms without a native backend.
// FSEvents covers darwin and ReadDirectoryChangesW covers windows.
// TODO: switch Linux to inotify via x/sys/unix
type Watcher struct {
	eventCh  chan Event
	done     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	interval time.Duration
	roots    []string
	seen     map[string]fileStamp
}

func New() (*Watcher, error) {
	return &Watcher{
		eventCh:  make(chan Event, 100),
		done:     make(chan struct{}),
		interval: 500 * time.Millisecond,
		seen:     make(map[string]fileStamp),
	}, nil
}

func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// Add registers a directory whose immediate files are polled. The current
// listing becomes the baseline, so pre-existing files emit nothing.
func (w *Watcher) Add(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.roots = append(w.roots, root)
	for path, stamp := range listFiles(root) {
		w.seen[path] = stamp
	}
	return nil
}

func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *Watcher) poll() {
	w.mu.Lock()
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()

	current := make(map[string]fileStamp)
	for _, root := range roots {
		for path, stamp := range listFiles(root) {
			current[path] = stamp
		}
	}

	w.mu.Lock()
	prev := w.seen
	w.seen = current
	w.mu.Unlock()

	for path, stamp := range current {
		old, ok := prev[path]
		if !ok {
			w.send(Event{Type: EventCreated, Path: path})
			continue
		}
		if !old.modTime.Equal(stamp.modTime) || old.size != stamp.size {
			w.send(Event{Type: EventModified, Path: path})
		}
	}
	for path := range prev {
		if _, ok := current[path]; !ok {
			w.send(Event{Type: EventDeleted, Path: path})
		}
	}
}

func listFiles(root string) map[string]fileStamp {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	files := make(map[string]fileStamp, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files[filepath.Join(root, e.Name())] = fileStamp{modTime: info.ModTime(), size: info.Size()}
	}
	return files
}

func (w *Watcher) send(e Event) {
	select {
	case w.eventCh <- e:
	default:
	}
}

func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	close(w.eventCh)
	return nil
}

package catalog

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
)

// Entry describes one discovered workbook file.
type Entry struct {
	Path    string
	Name    string
	Size    int64
	Kind    string // xlsx, json or csv
	ModTime time.Time
}

// Progress reports discovery progress
type Progress struct {
	FilesScanned int64
	Matched      int64
	CurrentPath  string
}

// Finder defines the interface for workbook discovery
type Finder interface {
	// Find walks the given root and returns the workbooks under it
	Find(ctx context.Context, root string) ([]Entry, error)

	// Progress returns a channel that receives progress updates
	Progress() <-chan Progress
}

// Walker implements parallel workbook discovery
type Walker struct {
	workers    int
	progressCh chan Progress
	progress   Progress
}

// NewWalker creates a new parallel workbook walker
func NewWalker(workers int) *Walker {
	if workers < 1 {
		workers = 8
	}
	return &Walker{
		workers:    workers,
		progressCh: make(chan Progress, 100),
	}
}

// Progress returns the progress channel. It is closed when Find returns.
func (w *Walker) Progress() <-chan Progress {
	return w.progressCh
}

// Find walks the filesystem starting at root using fastwalk and collects
// workbook files, path-sorted. Cancellation yields the partial result.
func (w *Walker) Find(ctx context.Context, root string) ([]Entry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	// Use a channel for lock-free entry collection
	entryChan := make(chan Entry, 1024)
	var entries []Entry
	var entriesWg sync.WaitGroup

	entriesWg.Add(1)
	go func() {
		defer entriesWg.Done()
		collected := make([]Entry, 0, 256)
		for e := range entryChan {
			collected = append(collected, e)
		}
		entries = collected
	}()

	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: w.workers,
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // Skip entries with errors
		}

		if path == absRoot {
			return nil
		}

		if d.IsDir() {
			// Hidden trees never hold interesting workbooks
			if strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}

		if n := atomic.AddInt64(&w.progress.FilesScanned, 1); n%512 == 0 {
			w.report(path)
		}

		kind := KindOf(path)
		if kind == "" {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		atomic.AddInt64(&w.progress.Matched, 1)
		entryChan <- Entry{
			Path:    path,
			Name:    d.Name(),
			Size:    info.Size(),
			Kind:    kind,
			ModTime: info.ModTime(),
		}

		return nil
	})

	// Close channel and wait for collector to finish
	close(entryChan)
	entriesWg.Wait()

	if walkErr != nil && walkErr != ctx.Err() {
		close(w.progressCh)
		return nil, walkErr
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	close(w.progressCh)
	return entries, nil
}

// report sends a progress update without blocking the walk.
func (w *Walker) report(path string) {
	p := Progress{
		FilesScanned: atomic.LoadInt64(&w.progress.FilesScanned),
		Matched:      atomic.LoadInt64(&w.progress.Matched),
		CurrentPath:  path,
	}
	select {
	case w.progressCh <- p:
	default:
	}
}

// KindOf classifies a path by extension, returning "" for non-workbooks.
func KindOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return "xlsx"
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	}
	return ""
}

// Ensure Walker implements Finder
var _ Finder = (*Walker)(nil)

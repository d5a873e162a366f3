package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carrerajorge/Hola-sub011/internal/chunk"
	"github.com/Carrerajorge/Hola-sub011/internal/geom"
	"github.com/Carrerajorge/Hola-sub011/internal/grid"
	"github.com/Carrerajorge/Hola-sub011/internal/logging"
	"github.com/Carrerajorge/Hola-sub011/internal/sched"
	"github.com/Carrerajorge/Hola-sub011/internal/snapshot"
	"github.com/Carrerajorge/Hola-sub011/internal/watcher"
)

// Config tunes a session. Zero values use the package defaults.
type Config struct {
	ChunkSize   int
	LoadAhead   int
	MaxChunks   int
	Workers     int
	Frame       time.Duration
	SnapshotDir string // empty disables autosave
}

// ChunkInfo describes one loaded chunk for display purposes.
type ChunkInfo struct {
	Key      chunk.Key
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
	Cells    int
}

// Controller coordinates a viewing session without UI dependencies: it owns
// the grid, geometry and chunk tracking, throttles viewport updates,
// fetches missing chunks from the source on a worker pool, and emits typed
// events for the consumer to react to.
type Controller struct {
	mu sync.RWMutex

	// State
	source     Source
	grid       *grid.SparseGrid
	geo        *geom.Cache
	session    SessionState
	colWidths  map[int]float64
	rowHeights map[int]float64

	viewport     geom.VisibleRange
	viewVersion  int
	scrollTop    float64
	scrollLeft   float64
	viewW        float64
	viewH        float64
	renderQueued bool

	// Internal services
	tracker   *chunk.Tracker
	throttler *sched.Throttler
	scheduler *sched.Scheduler
	watcher   *watcher.Watcher
	snapshots *snapshot.Manager

	// Fetch workers
	workers int
	jobs    chan chunk.Key
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// Event handling
	eventCh chan Event
	done    chan struct{}
	stopped bool
}

// New creates a controller for the given source.
func New(source Source, cfg Config) *Controller {
	rows, cols := source.Dims()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}

	c := &Controller{
		source:    source,
		grid:      grid.New(rows, cols),
		tracker:   chunk.New(cfg.ChunkSize, cfg.LoadAhead, cfg.MaxChunks),
		throttler: sched.NewThrottler(cfg.Frame),
		scheduler: sched.NewScheduler(cfg.Frame),
		workers:   workers,
		jobs:      make(chan chunk.Key, 256),
		eventCh:   make(chan Event, 100),
		done:      make(chan struct{}),
	}
	c.tracker.SetGrid(rows, cols)
	c.adoptOverrides(source)
	c.geo = geom.NewCache(rows, cols, c.colWidths, c.rowHeights)

	if cfg.SnapshotDir != "" {
		c.snapshots = snapshot.NewManager(cfg.SnapshotDir, c.gridSnapshot)
	}
	return c
}

// adoptOverrides copies the source's sizing overrides so later per-session
// resizes do not mutate the source's maps.
func (c *Controller) adoptOverrides(source Source) {
	c.colWidths = make(map[int]float64)
	c.rowHeights = make(map[int]float64)
	if ss, ok := source.(SizedSource); ok {
		cw, rh := ss.Overrides()
		for k, v := range cw {
			c.colWidths[k] = v
		}
		for k, v := range rh {
			c.rowHeights[k] = v
		}
	}
}

func (c *Controller) gridSnapshot() grid.Snapshot {
	c.mu.RLock()
	g := c.grid
	c.mu.RUnlock()
	return g.Snapshot()
}

// Events returns the controller's event stream. Events are dropped, not
// queued, when the consumer falls behind.
func (c *Controller) Events() <-chan Event { return c.eventCh }

// Start launches the fetch workers. The initial viewport resolve happens on
// the first SetViewport call, once the consumer knows its size.
func (c *Controller) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.ctx = ctx
	c.cancel = cancel
	c.session.Phase = PhaseOpening
	c.session.StartTime = time.Now()
	c.session.Name = c.source.Name()
	c.session.Rows, c.session.Cols = c.source.Dims()
	rows, cols := c.session.Rows, c.session.Cols
	name := c.session.Name
	c.mu.Unlock()

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.fetchWorker()
	}

	logging.Loader.Printf("[Controller] Opened %s (%dx%d), %d workers", name, rows, cols, c.workers)
	c.emit(OpenedEvent{Name: name, Rows: rows, Cols: cols})
}

// SetViewport records the consumer's scroll offsets and viewport size in
// pixels and schedules a throttled resolve. Bursts collapse to at most one
// resolve per frame, always computed from the latest values.
func (c *Controller) SetViewport(scrollTop, scrollLeft, width, height float64) {
	c.mu.Lock()
	c.scrollTop = scrollTop
	c.scrollLeft = scrollLeft
	c.viewW = width
	c.viewH = height
	c.mu.Unlock()

	c.throttler.Do(c.resolveViewport)
}

// resolveViewport recomputes the visible range from the current scroll
// state, requests missing chunks, and prunes distant ones.
func (c *Controller) resolveViewport() {
	c.mu.Lock()
	v := c.geo.VisibleRange(c.scrollTop, c.scrollLeft, c.viewW, c.viewH)
	c.viewport = v
	c.viewVersion++
	version := c.viewVersion
	c.mu.Unlock()

	c.emit(ViewportChangedEvent{Range: v, Version: version})

	required := c.tracker.Required(v)
	missing := c.tracker.Missing(required)
	if len(missing) > 0 {
		c.setPhase(PhaseStreaming)
	}
	for _, k := range missing {
		c.tracker.MarkLoading(k)
		select {
		case c.jobs <- k:
		default:
			// Queue full; drop the claim so a later resolve retries
			c.tracker.UnmarkLoading(k)
		}
	}

	if evicted := c.tracker.Prune(v); evicted > 0 {
		logging.Loader.Printf("[Controller] Pruned %d distant chunks (loaded=%d)",
			evicted, c.tracker.LoadedCount())
		c.emit(EvictedEvent{Count: evicted})
	}

	c.scheduleRender()
}

// fetchWorker services chunk fetches until the session stops.
func (c *Controller) fetchWorker() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case k := <-c.jobs:
			c.fetchChunk(k)
		}
	}
}

func (c *Controller) fetchChunk(k chunk.Key) {
	c.mu.RLock()
	source := c.source
	g := c.grid
	c.mu.RUnlock()

	startRow, endRow, startCol, endCol := c.tracker.Span(k)
	cells, err := source.FetchChunk(c.ctx, startRow, endRow, startCol, endCol)
	if err != nil {
		c.tracker.UnmarkLoading(k)
		if errors.Is(err, context.Canceled) {
			return
		}
		logging.Loader.Printf("[Fetch] chunk (%d,%d) failed: %v", k.Row, k.Col, err)
		c.emit(ChunkFailedEvent{Key: k, Err: err})
		return
	}

	g.PutCells(cells)
	c.tracker.MarkLoaded(k)

	c.mu.Lock()
	c.session.ChunksLoaded++
	c.session.CellsLoaded += len(cells)
	c.mu.Unlock()

	c.emit(ChunkLoadedEvent{Key: k, Cells: len(cells)})
	c.scheduleRender()
	c.maybeReady()
}

// maybeReady flips the phase to Ready once nothing is missing or in flight
// for the current viewport.
func (c *Controller) maybeReady() {
	c.mu.RLock()
	v := c.viewport
	c.mu.RUnlock()

	if c.tracker.LoadingCount() > 0 {
		return
	}
	if len(c.tracker.Missing(c.tracker.Required(v))) > 0 {
		return
	}
	c.setPhase(PhaseReady)
}

func (c *Controller) setPhase(p Phase) {
	c.mu.Lock()
	if c.session.Phase == p {
		c.mu.Unlock()
		return
	}
	c.session.Phase = p
	c.mu.Unlock()
	c.emit(PhaseChangedEvent{Phase: p})
}

// scheduleRender queues at most one render notification per frame.
func (c *Controller) scheduleRender() {
	c.mu.Lock()
	if c.renderQueued {
		c.mu.Unlock()
		return
	}
	c.renderQueued = true
	c.mu.Unlock()

	c.scheduler.Schedule(func() {
		c.mu.Lock()
		c.renderQueued = false
		version := c.viewVersion
		c.mu.Unlock()
		c.emit(RenderEvent{Version: version})
	})
}

// EditCell applies a bounds-checked patch, marks the session dirty and
// schedules autosave and a render.
func (c *Controller) EditCell(row, col int, patch grid.CellPatch) error {
	c.mu.RLock()
	g := c.grid
	c.mu.RUnlock()

	if err := g.SetCellChecked(row, col, patch); err != nil {
		return err
	}

	c.mu.Lock()
	c.session.Dirty = true
	c.mu.Unlock()

	if c.snapshots != nil {
		c.snapshots.MarkDirty()
	}
	c.emit(CellChangedEvent{Row: row, Col: col})
	c.scheduleRender()
	return nil
}

// SetColWidth overrides a column's pixel width and rebuilds the geometry.
func (c *Controller) SetColWidth(col int, px float64) {
	c.mu.Lock()
	c.colWidths[col] = px
	c.rebuildGeometry()
	c.mu.Unlock()

	c.emit(GeometryChangedEvent{})
	c.throttler.Do(c.resolveViewport)
}

// SetRowHeight overrides a row's pixel height and rebuilds the geometry.
func (c *Controller) SetRowHeight(row int, px float64) {
	c.mu.Lock()
	c.rowHeights[row] = px
	c.rebuildGeometry()
	c.mu.Unlock()

	c.emit(GeometryChangedEvent{})
	c.throttler.Do(c.resolveViewport)
}

// rebuildGeometry swaps in a fresh position cache. Caller must hold the
// lock.
func (c *Controller) rebuildGeometry() {
	rows, cols := c.grid.Rows(), c.grid.Cols()
	c.geo = geom.NewCache(rows, cols, c.colWidths, c.rowHeights)
}

// Grid returns the live grid. It is safe for concurrent use.
func (c *Controller) Grid() *grid.SparseGrid {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.grid
}

// Geometry returns the current position cache. The pointer is replaced,
// never mutated, on sizing changes.
func (c *Controller) Geometry() *geom.Cache {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.geo
}

// Viewport returns the last resolved range and its version.
func (c *Controller) Viewport() (geom.VisibleRange, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewport, c.viewVersion
}

// Session returns a read-only snapshot of the session state.
func (c *Controller) Session() SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Metrics returns the chunk tracker's counters.
func (c *Controller) Metrics() chunk.Metrics {
	return c.tracker.Metrics()
}

// ChunkLoadedAt reports whether the chunk covering (row, col) has been
// applied to the grid. Renderers use this to tell an empty cell from a
// not-yet-streamed one.
func (c *Controller) ChunkLoadedAt(row, col int) bool {
	return c.tracker.IsLoaded(c.tracker.KeyFor(row, col))
}

// LoadedChunks lists loaded chunks, most recently used first, with their
// spans and stored-cell counts.
func (c *Controller) LoadedChunks() []ChunkInfo {
	c.mu.RLock()
	g := c.grid
	c.mu.RUnlock()

	keys := c.tracker.LoadedKeys()
	infos := make([]ChunkInfo, 0, len(keys))
	for _, k := range keys {
		sr, er, sc, ec := c.tracker.Span(k)
		infos = append(infos, ChunkInfo{
			Key:      k,
			StartRow: sr,
			EndRow:   er,
			StartCol: sc,
			EndCol:   ec,
			Cells:    g.CountInRange(sr, er, sc, ec),
		})
	}
	return infos
}

// SaveSnapshot writes the grid to the snapshot directory immediately.
func (c *Controller) SaveSnapshot() error {
	if c.snapshots == nil {
		return errors.New("snapshots disabled")
	}
	if err := c.snapshots.Flush(); err != nil {
		return err
	}
	c.mu.Lock()
	c.session.Dirty = false
	c.mu.Unlock()
	return nil
}

// StartWatching begins watching the opened workbook for on-disk changes.
// Does nothing when the source is not a regular file.
func (c *Controller) StartWatching() error {
	path := c.source.Name()
	if st, err := os.Stat(path); err != nil || st.IsDir() {
		return nil
	}

	w, err := watcher.New()
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.watcher != nil {
		_ = c.watcher.Stop()
	}
	c.watcher = w
	c.mu.Unlock()

	if err := w.Add(filepath.Dir(path)); err != nil {
		logging.Debug.Printf("Failed to watch %s: %v", path, err)
	}
	w.Start()
	logging.Debug.Printf("Filesystem watcher started for %s", path)

	c.wg.Add(1)
	go c.watchLoop(w, path)
	return nil
}

// watchLoop forwards modification events for the opened file.
func (c *Controller) watchLoop(w *watcher.Watcher, path string) {
	defer c.wg.Done()
	for event := range w.Events() {
		if event.Type != watcher.EventModified && event.Type != watcher.EventCreated {
			continue
		}
		if !sameFile(event.Path, path) {
			continue
		}
		logging.Debug.Printf("Watcher: %s changed on disk", event.Path)
		c.emit(FileChangedEvent{Path: path})
	}
}

// sameFile compares paths loosely enough to survive the /private prefix
// some watchers report on darwin.
func sameFile(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	return a == b || strings.HasSuffix(a, string(filepath.Separator)+filepath.Base(b))
}

// Reload reopens the backing file, resets the grid and chunk state, and
// resolves the viewport again. The session keeps running throughout.
func (c *Controller) Reload() error {
	path := c.source.Name()
	src, err := OpenPath(path)
	if err != nil {
		return err
	}
	rows, cols := src.Dims()

	c.mu.Lock()
	c.source = src
	c.grid = grid.New(rows, cols)
	c.session.Rows, c.session.Cols = rows, cols
	c.session.ChunksLoaded = 0
	c.session.CellsLoaded = 0
	c.adoptOverrides(src)
	c.rebuildGeometry()
	c.mu.Unlock()

	c.tracker.Clear()
	c.tracker.SetGrid(rows, cols)

	logging.Loader.Printf("[Controller] Reloaded %s (%dx%d)", path, rows, cols)
	c.emit(OpenedEvent{Name: path, Rows: rows, Cols: cols})
	c.throttler.Do(c.resolveViewport)
	return nil
}

// Stop cancels pending work, stops the workers and the watcher, and
// flushes any dirty snapshot state. Stop is idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	cancel := c.cancel
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()

	c.throttler.Cancel()
	c.scheduler.Cancel()

	if cancel != nil {
		cancel()
	}
	if w != nil {
		_ = w.Stop()
	}
	c.wg.Wait()

	if c.snapshots != nil {
		_ = c.snapshots.Close()
	}
	close(c.done)
}

// Done returns a channel closed once Stop has finished. Event consumers
// select on it so they are not left blocked on a stopped controller.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// emit sends an event to the consumer, dropping it when the channel is
// full.
func (c *Controller) emit(event Event) {
	select {
	case c.eventCh <- event:
	default:
		// Channel full, drop event
	}
}

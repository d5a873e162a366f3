package chunk

import (
	"container/list"
	"sync"

	"github.com/Carrerajorge/Hola-sub011/internal/geom"
)

const (
	// DefaultSize is the chunk edge length in rows/columns.
	DefaultSize = 100
	// DefaultLoadAhead is how many chunk-units beyond the visible range are
	// requested ahead of scrolling.
	DefaultLoadAhead = 2
	// DefaultMaxChunks caps the loaded set before pruning kicks in.
	DefaultMaxChunks = 50
)

// Key identifies one chunk: the visible grid quantized by the chunk size.
type Key struct {
	Row int
	Col int
}

// Metrics counts tracker activity since creation or the last Clear.
type Metrics struct {
	Loads     int
	Evictions int
}

// Tracker follows which chunks of the grid are loaded or being loaded. The
// loaded set is recency-ordered so pruning evicts the least recently used
// chunks first, never a chunk required by the current viewport. Safe for
// concurrent use.
type Tracker struct {
	mu        sync.Mutex
	size      int
	loadAhead int
	maxChunks int
	maxRows   int
	maxCols   int

	loaded  map[Key]*list.Element
	lru     *list.List // front is most recently used
	loading map[Key]struct{}
	metrics Metrics
}

// New creates a tracker. Non-positive size and maxChunks fall back to the
// defaults; loadAhead falls back only when negative, zero disables
// look-ahead.
func New(size, loadAhead, maxChunks int) *Tracker {
	if size <= 0 {
		size = DefaultSize
	}
	if loadAhead < 0 {
		loadAhead = DefaultLoadAhead
	}
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	return &Tracker{
		size:      size,
		loadAhead: loadAhead,
		maxChunks: maxChunks,
		loaded:    make(map[Key]*list.Element),
		lru:       list.New(),
		loading:   make(map[Key]struct{}),
	}
}

// SetGrid bounds the tracker to the grid dimensions so look-ahead never
// requests chunks past the edge. Zero dimensions leave the extent unbounded.
func (t *Tracker) SetGrid(maxRows, maxCols int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.maxRows = maxRows
	t.maxCols = maxCols
}

// Size returns the chunk edge length.
func (t *Tracker) Size() int { return t.size }

// KeyFor returns the chunk containing (row, col).
func (t *Tracker) KeyFor(row, col int) Key {
	return Key{Row: row / t.size, Col: col / t.size}
}

// Span returns the inclusive cell rectangle covered by a chunk, clamped to
// the grid extent when known.
func (t *Tracker) Span(k Key) (startRow, endRow, startCol, endCol int) {
	startRow = k.Row * t.size
	startCol = k.Col * t.size
	endRow = startRow + t.size - 1
	endCol = startCol + t.size - 1

	t.mu.Lock()
	if t.maxRows > 0 && endRow > t.maxRows-1 {
		endRow = t.maxRows - 1
	}
	if t.maxCols > 0 && endCol > t.maxCols-1 {
		endCol = t.maxCols - 1
	}
	t.mu.Unlock()
	return startRow, endRow, startCol, endCol
}

// Required enumerates every chunk intersecting the visible range expanded
// by the look-ahead margin, row-major.
func (t *Tracker) Required(v geom.VisibleRange) []Key {
	startRow := v.StartRow/t.size - t.loadAhead
	endRow := v.EndRow/t.size + t.loadAhead
	startCol := v.StartCol/t.size - t.loadAhead
	endCol := v.EndCol/t.size + t.loadAhead

	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	t.mu.Lock()
	if t.maxRows > 0 {
		if last := (t.maxRows - 1) / t.size; endRow > last {
			endRow = last
		}
	}
	if t.maxCols > 0 {
		if last := (t.maxCols - 1) / t.size; endCol > last {
			endCol = last
		}
	}
	t.mu.Unlock()

	keys := make([]Key, 0, (endRow-startRow+1)*(endCol-startCol+1))
	for r := startRow; r <= endRow; r++ {
		for c := startCol; c <= endCol; c++ {
			keys = append(keys, Key{Row: r, Col: c})
		}
	}
	return keys
}

// Missing filters required down to the chunks that are neither loaded nor
// already being loaded. This is the set the fetch layer must act on.
func (t *Tracker) Missing(required []Key) []Key {
	t.mu.Lock()
	defer t.mu.Unlock()

	var missing []Key
	for _, k := range required {
		if _, ok := t.loaded[k]; ok {
			continue
		}
		if _, ok := t.loading[k]; ok {
			continue
		}
		missing = append(missing, k)
	}
	return missing
}

// MarkLoading records that a fetch for the chunk is in flight.
func (t *Tracker) MarkLoading(k Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading[k] = struct{}{}
}

// UnmarkLoading clears the in-flight state after a failed fetch so a later
// viewport pass can request the chunk again.
func (t *Tracker) UnmarkLoading(k Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.loading, k)
}

// MarkLoaded records a completed load, superseding any in-flight state. A
// chunk that was already loaded is refreshed to most recently used.
func (t *Tracker) MarkLoaded(k Key) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.loading, k)
	if e, ok := t.loaded[k]; ok {
		t.lru.MoveToFront(e)
		return
	}
	t.loaded[k] = t.lru.PushFront(k)
	t.metrics.Loads++
}

// IsLoaded reports whether the chunk is loaded. It does not refresh
// recency.
func (t *Tracker) IsLoaded(k Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.loaded[k]
	return ok
}

// IsLoading reports whether a fetch for the chunk is in flight.
func (t *Tracker) IsLoading(k Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.loading[k]
	return ok
}

// Touch refreshes a loaded chunk to most recently used.
func (t *Tracker) Touch(k Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.loaded[k]; ok {
		t.lru.MoveToFront(e)
	}
}

// LoadedCount returns the size of the loaded set.
func (t *Tracker) LoadedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.loaded)
}

// LoadingCount returns the number of in-flight chunks.
func (t *Tracker) LoadingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.loading)
}

// LoadedKeys returns the loaded chunks, most recently used first.
func (t *Tracker) LoadedKeys() []Key {
	t.mu.Lock()
	defer t.mu.Unlock()
	keys := make([]Key, 0, t.lru.Len())
	for e := t.lru.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(Key))
	}
	return keys
}

// Prune evicts distant chunks once the loaded set exceeds the cap. Chunks
// required by the current range are refreshed and kept; the rest are
// evicted least recently used first, stopping at half the cap so the set
// is not emptied outright. Returns the number of evicted chunks.
func (t *Tracker) Prune(current geom.VisibleRange) int {
	required := t.Required(current)

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.loaded) <= t.maxChunks {
		return 0
	}

	need := make(map[Key]struct{}, len(required))
	for _, k := range required {
		need[k] = struct{}{}
		if e, ok := t.loaded[k]; ok {
			t.lru.MoveToFront(e)
		}
	}

	floor := t.maxChunks / 2
	evicted := 0
	for e := t.lru.Back(); e != nil && t.lru.Len() > floor; {
		prev := e.Prev()
		k := e.Value.(Key)
		if _, keep := need[k]; !keep {
			t.lru.Remove(e)
			delete(t.loaded, k)
			evicted++
		}
		e = prev
	}

	t.metrics.Evictions += evicted
	return evicted
}

// Clear resets both tracking sets and the metrics, for document close or a
// full reset.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loaded = make(map[Key]*list.Element)
	t.lru.Init()
	t.loading = make(map[Key]struct{})
	t.metrics = Metrics{}
}

// Metrics returns a copy of the activity counters.
func (t *Tracker) Metrics() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metrics
}

package loader

import (
	"github.com/Carrerajorge/Hola-sub011/internal/chunk"
	"github.com/Carrerajorge/Hola-sub011/internal/geom"
)

// Event represents a state change from the session controller
type Event interface {
	isEvent()
}

// OpenedEvent is emitted once the source metadata is known and the
// geometry is built
type OpenedEvent struct {
	Name string
	Rows int
	Cols int
}

func (OpenedEvent) isEvent() {}

// ViewportChangedEvent is emitted after a scroll or resize resolves to a
// new visible range
type ViewportChangedEvent struct {
	Range   geom.VisibleRange
	Version int // For debouncing
}

func (ViewportChangedEvent) isEvent() {}

// ChunkLoadedEvent is emitted when one chunk has been fetched and applied
// to the grid
type ChunkLoadedEvent struct {
	Key   chunk.Key
	Cells int
}

func (ChunkLoadedEvent) isEvent() {}

// ChunkFailedEvent is emitted when a chunk fetch fails; the chunk returns
// to the unloaded state and may be requested again
type ChunkFailedEvent struct {
	Key chunk.Key
	Err error
}

func (ChunkFailedEvent) isEvent() {}

// PhaseChangedEvent is emitted when the load phase changes
type PhaseChangedEvent struct {
	Phase Phase
}

func (PhaseChangedEvent) isEvent() {}

// RenderEvent is emitted at most once per frame when batched work has
// finished and consumers should redraw
type RenderEvent struct {
	Version int
}

func (RenderEvent) isEvent() {}

// CellChangedEvent is emitted when an edit lands in the grid
type CellChangedEvent struct {
	Row int
	Col int
}

func (CellChangedEvent) isEvent() {}

// GeometryChangedEvent is emitted when row/column sizing changed and the
// position cache was rebuilt
type GeometryChangedEvent struct{}

func (GeometryChangedEvent) isEvent() {}

// EvictedEvent is emitted when pruning removed distant chunks
type EvictedEvent struct {
	Count int
}

func (EvictedEvent) isEvent() {}

// FileChangedEvent is emitted when the opened workbook changed on disk
type FileChangedEvent struct {
	Path string
}

func (FileChangedEvent) isEvent() {}

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Err error
}

func (ErrorEvent) isEvent() {}

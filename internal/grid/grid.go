package grid

import (
	"fmt"
	"sort"
	"sync"
)

// Coord addresses one cell by zero-based row and column.
type Coord struct {
	Row int
	Col int
}

// PlacedCell pairs a coordinate with its cell payload. It is also the wire
// representation of one stored cell.
type PlacedCell struct {
	Row  int  `json:"row"`
	Col  int  `json:"col"`
	Data Cell `json:"data"`
}

// Bounds is the tight bounding box over all stored cells.
type Bounds struct {
	MinRow int
	MaxRow int
	MinCol int
	MaxCol int
}

// BoundsError reports an access outside the grid dimensions.
type BoundsError struct {
	Row     int
	Col     int
	MaxRows int
	MaxCols int
}

func (e *BoundsError) Error() string {
	if e.Row < 0 || e.Row >= e.MaxRows {
		return fmt.Sprintf("row %d out of bounds (grid has %d rows)", e.Row, e.MaxRows)
	}
	return fmt.Sprintf("column %d out of bounds (grid has %d columns)", e.Col, e.MaxCols)
}

// SparseGrid stores only non-empty cells of a fixed-dimension grid. A
// coordinate is present in the backing map iff its cell is non-empty; writes
// that produce an empty cell delete the entry instead. Safe for concurrent
// use.
type SparseGrid struct {
	mu      sync.RWMutex
	cells   map[Coord]Cell
	maxRows int
	maxCols int
}

// New creates an empty grid with the given dimensions. Non-positive
// dimensions are clamped to 1.
func New(maxRows, maxCols int) *SparseGrid {
	if maxRows < 1 {
		maxRows = 1
	}
	if maxCols < 1 {
		maxCols = 1
	}
	return &SparseGrid{
		cells:   make(map[Coord]Cell),
		maxRows: maxRows,
		maxCols: maxCols,
	}
}

// Rows returns the row dimension.
func (g *SparseGrid) Rows() int { return g.maxRows }

// Cols returns the column dimension.
func (g *SparseGrid) Cols() int { return g.maxCols }

// CheckBounds returns a *BoundsError when (row, col) lies outside the grid.
func (g *SparseGrid) CheckBounds(row, col int) error {
	if row < 0 || row >= g.maxRows || col < 0 || col >= g.maxCols {
		return &BoundsError{Row: row, Col: col, MaxRows: g.maxRows, MaxCols: g.maxCols}
	}
	return nil
}

// Cell returns the cell at (row, col), or the zero Cell if none is stored.
func (g *SparseGrid) Cell(row, col int) Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cells[Coord{row, col}]
}

// SetCell merges the patch onto the existing cell. If the merged result is
// empty the entry is deleted. No bounds check is performed.
func (g *SparseGrid) SetCell(row, col int, patch CellPatch) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.put(Coord{row, col}, g.cells[Coord{row, col}].Apply(patch))
}

// SetCellChecked is SetCell with bounds validation. The mutation is only
// applied when (row, col) is inside the grid.
func (g *SparseGrid) SetCellChecked(row, col int, patch CellPatch) error {
	if err := g.CheckBounds(row, col); err != nil {
		return err
	}
	g.SetCell(row, col, patch)
	return nil
}

// PutCell stores a whole cell, replacing any existing one. Empty cells are
// deleted rather than stored.
func (g *SparseGrid) PutCell(row, col int, c Cell) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.put(Coord{row, col}, c)
}

// PutCells stores a batch of whole cells under one lock. Used when applying
// a fetched chunk.
func (g *SparseGrid) PutCells(cells []PlacedCell) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, pc := range cells {
		g.put(Coord{pc.Row, pc.Col}, pc.Data)
	}
}

func (g *SparseGrid) put(at Coord, c Cell) {
	if c.Empty() {
		delete(g.cells, at)
		return
	}
	g.cells[at] = c
}

// DeleteCell removes the cell at (row, col) if present.
func (g *SparseGrid) DeleteCell(row, col int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.cells, Coord{row, col})
}

// HasData reports whether any cell is stored.
func (g *SparseGrid) HasData() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells) > 0
}

// Len returns the number of stored cells.
func (g *SparseGrid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.cells)
}

// AllCells returns every stored cell. Order is unspecified; callers needing
// a deterministic order must sort.
func (g *SparseGrid) AllCells() []PlacedCell {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]PlacedCell, 0, len(g.cells))
	for at, c := range g.cells {
		out = append(out, PlacedCell{Row: at.Row, Col: at.Col, Data: c})
	}
	return out
}

// CellsInRange returns the stored cells inside the inclusive rectangle,
// row-major sorted. When the rectangle is smaller than the stored cell
// count it probes each coordinate directly instead of scanning the whole
// map.
func (g *SparseGrid) CellsInRange(startRow, endRow, startCol, endCol int) []PlacedCell {
	rows := endRow - startRow + 1
	cols := endCol - startCol + 1
	if rows <= 0 || cols <= 0 {
		return nil
	}

	g.mu.RLock()
	n := len(g.cells)
	var out []PlacedCell
	if rows <= n && cols <= n && rows*cols < n {
		for r := startRow; r <= endRow; r++ {
			for c := startCol; c <= endCol; c++ {
				if cell, ok := g.cells[Coord{r, c}]; ok {
					out = append(out, PlacedCell{Row: r, Col: c, Data: cell})
				}
			}
		}
		g.mu.RUnlock()
		return out
	}
	for at, cell := range g.cells {
		if at.Row >= startRow && at.Row <= endRow && at.Col >= startCol && at.Col <= endCol {
			out = append(out, PlacedCell{Row: at.Row, Col: at.Col, Data: cell})
		}
	}
	g.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// CountInRange returns how many cells are stored inside the inclusive
// rectangle, without materializing them.
func (g *SparseGrid) CountInRange(startRow, endRow, startCol, endCol int) int {
	rows := endRow - startRow + 1
	cols := endCol - startCol + 1
	if rows <= 0 || cols <= 0 {
		return 0
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	n := len(g.cells)
	count := 0
	if rows <= n && cols <= n && rows*cols < n {
		for r := startRow; r <= endRow; r++ {
			for c := startCol; c <= endCol; c++ {
				if _, ok := g.cells[Coord{r, c}]; ok {
					count++
				}
			}
		}
		return count
	}
	for at := range g.cells {
		if at.Row >= startRow && at.Row <= endRow && at.Col >= startCol && at.Col <= endCol {
			count++
		}
	}
	return count
}

// DataBounds returns the bounding box over all stored cells. ok is false
// when the grid is empty.
func (g *SparseGrid) DataBounds() (b Bounds, ok bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.cells) == 0 {
		return Bounds{}, false
	}
	first := true
	for at := range g.cells {
		if first {
			b = Bounds{MinRow: at.Row, MaxRow: at.Row, MinCol: at.Col, MaxCol: at.Col}
			first = false
			continue
		}
		if at.Row < b.MinRow {
			b.MinRow = at.Row
		}
		if at.Row > b.MaxRow {
			b.MaxRow = at.Row
		}
		if at.Col < b.MinCol {
			b.MinCol = at.Col
		}
		if at.Col > b.MaxCol {
			b.MaxCol = at.Col
		}
	}
	return b, true
}

// Clone returns a deep copy with the same dimensions and cells.
func (g *SparseGrid) Clone() *SparseGrid {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cp := &SparseGrid{
		cells:   make(map[Coord]Cell, len(g.cells)),
		maxRows: g.maxRows,
		maxCols: g.maxCols,
	}
	for at, c := range g.cells {
		cp.cells[at] = c
	}
	return cp
}

// Clear removes every stored cell. Dimensions are unchanged.
func (g *SparseGrid) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cells = make(map[Coord]Cell)
}

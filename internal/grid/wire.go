package grid

import (
	"encoding/json"
	"sort"
)

// Snapshot is the serialized form of a grid: dimensions plus every stored
// cell. It is the interchange format for save/load and transmission.
type Snapshot struct {
	MaxRows int          `json:"maxRows"`
	MaxCols int          `json:"maxCols"`
	Cells   []PlacedCell `json:"cells"`
}

// Snapshot captures the grid as a Snapshot with cells in row-major order.
func (g *SparseGrid) Snapshot() Snapshot {
	cells := g.AllCells()
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return Snapshot{MaxRows: g.maxRows, MaxCols: g.maxCols, Cells: cells}
}

// Restore replaces the grid's dimensions and contents with the snapshot's.
// Empty cells in the snapshot are dropped, preserving the absence
// invariant.
func (g *SparseGrid) Restore(s Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.maxRows = s.MaxRows
	g.maxCols = s.MaxCols
	if g.maxRows < 1 {
		g.maxRows = 1
	}
	if g.maxCols < 1 {
		g.maxCols = 1
	}
	g.cells = make(map[Coord]Cell, len(s.Cells))
	for _, pc := range s.Cells {
		g.put(Coord{pc.Row, pc.Col}, pc.Data)
	}
}

// FromSnapshot builds a grid from a snapshot.
func FromSnapshot(s Snapshot) *SparseGrid {
	g := New(s.MaxRows, s.MaxCols)
	for _, pc := range s.Cells {
		g.PutCell(pc.Row, pc.Col, pc.Data)
	}
	return g
}

// MarshalJSON encodes the grid in its wire format
// {"maxRows":..,"maxCols":..,"cells":[{"row":..,"col":..,"data":{..}}]}.
func (g *SparseGrid) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Snapshot())
}

// UnmarshalJSON reconstructs the grid from its wire format, replacing any
// existing contents.
func (g *SparseGrid) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	g.Restore(s)
	return nil
}

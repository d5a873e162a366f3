package snapshot

import (
	"fmt"
	"reflect"

	"github.com/Carrerajorge/Hola-sub011/internal/grid"
)

// Summary counts cell-level differences between two snapshots.
type Summary struct {
	Added   int
	Removed int
	Changed int
}

// Empty reports whether the snapshots hold identical cells.
func (s Summary) Empty() bool {
	return s.Added == 0 && s.Removed == 0 && s.Changed == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("+%d -%d ~%d cells", s.Added, s.Removed, s.Changed)
}

// Compare diffs current against previous cell by cell.
func Compare(previous, current grid.Snapshot) Summary {
	// Build lookup map of previous cells by coordinate
	prev := make(map[grid.Coord]grid.Cell, len(previous.Cells))
	for _, pc := range previous.Cells {
		prev[grid.Coord{Row: pc.Row, Col: pc.Col}] = pc.Data
	}

	var s Summary
	for _, pc := range current.Cells {
		at := grid.Coord{Row: pc.Row, Col: pc.Col}
		old, exists := prev[at]
		if !exists {
			s.Added++
			continue
		}
		// Values are interfaces, so DeepEqual rather than ==
		if !reflect.DeepEqual(old, pc.Data) {
			s.Changed++
		}
		delete(prev, at)
	}
	s.Removed = len(prev)
	return s
}

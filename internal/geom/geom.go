package geom

import "sort"

// Default pixel sizes used wherever no explicit override exists.
const (
	DefaultRowHeight = 28.0
	DefaultColWidth  = 100.0
)

// Default buffer applied by VisibleRange, in rows/columns beyond the
// viewport edge. Pre-rendering just-off-screen cells masks pop-in while
// scrolling.
const (
	DefaultBufferRows = 5
	DefaultBufferCols = 3
)

// Cache maps logical row/column indexes to pixel offsets via prefix sums.
// positions[i] is the leading edge of index i and positions[i+1]-positions[i]
// its size, so positions has one more entry than the dimension. A Cache is
// immutable; rebuild it when sizing changes.
type Cache struct {
	rowPositions []float64
	colPositions []float64
}

// NewCache builds the prefix-sum arrays for a maxRows x maxCols grid.
// colWidths and rowHeights carry per-index pixel overrides; indexes without
// a positive override use the defaults (28px rows, 100px columns).
func NewCache(maxRows, maxCols int, colWidths, rowHeights map[int]float64) *Cache {
	if maxRows < 1 {
		maxRows = 1
	}
	if maxCols < 1 {
		maxCols = 1
	}

	rows := make([]float64, maxRows+1)
	for i := 0; i < maxRows; i++ {
		h := DefaultRowHeight
		if o, ok := rowHeights[i]; ok && o > 0 {
			h = o
		}
		rows[i+1] = rows[i] + h
	}

	cols := make([]float64, maxCols+1)
	for i := 0; i < maxCols; i++ {
		w := DefaultColWidth
		if o, ok := colWidths[i]; ok && o > 0 {
			w = o
		}
		cols[i+1] = cols[i] + w
	}

	return &Cache{rowPositions: rows, colPositions: cols}
}

// Rows returns the row dimension.
func (c *Cache) Rows() int { return len(c.rowPositions) - 1 }

// Cols returns the column dimension.
func (c *Cache) Cols() int { return len(c.colPositions) - 1 }

// TotalHeight returns the pixel height of the full grid.
func (c *Cache) TotalHeight() float64 { return c.rowPositions[len(c.rowPositions)-1] }

// TotalWidth returns the pixel width of the full grid.
func (c *Cache) TotalWidth() float64 { return c.colPositions[len(c.colPositions)-1] }

// RowTop returns the top pixel edge of a row.
func (c *Cache) RowTop(row int) float64 {
	return c.rowPositions[clampIndex(row, len(c.rowPositions)-1)]
}

// ColLeft returns the left pixel edge of a column.
func (c *Cache) ColLeft(col int) float64 {
	return c.colPositions[clampIndex(col, len(c.colPositions)-1)]
}

// RowHeight returns the pixel height of a row.
func (c *Cache) RowHeight(row int) float64 {
	i := clampIndex(row, len(c.rowPositions)-2)
	return c.rowPositions[i+1] - c.rowPositions[i]
}

// ColWidth returns the pixel width of a column.
func (c *Cache) ColWidth(col int) float64 {
	i := clampIndex(col, len(c.colPositions)-2)
	return c.colPositions[i+1] - c.colPositions[i]
}

func clampIndex(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// SearchPosition returns the index i with positions[i] <= offset <
// positions[i+1]. Offsets before the first or past the last boundary clamp
// to the first and last valid index.
func SearchPosition(positions []float64, offset float64) int {
	n := len(positions)
	if n < 2 {
		return 0
	}
	i := sort.Search(n, func(i int) bool { return positions[i] > offset }) - 1
	if i < 0 {
		return 0
	}
	if i > n-2 {
		return n - 2
	}
	return i
}

// VisibleRange is the inclusive row/column window intersecting a viewport,
// buffer included. Invariant: 0 <= Start <= End <= dim-1 on both axes.
type VisibleRange struct {
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
}

// Contains reports whether (row, col) lies inside the range.
func (v VisibleRange) Contains(row, col int) bool {
	return row >= v.StartRow && row <= v.EndRow && col >= v.StartCol && col <= v.EndCol
}

// VisibleRange resolves the scroll offset and viewport size to the logical
// window to materialize, using the default buffers.
func (c *Cache) VisibleRange(scrollTop, scrollLeft, viewportWidth, viewportHeight float64) VisibleRange {
	return c.VisibleRangeBuffered(scrollTop, scrollLeft, viewportWidth, viewportHeight,
		DefaultBufferRows, DefaultBufferCols)
}

// VisibleRangeBuffered is VisibleRange with explicit buffer sizes. Buffers
// are applied in index space after the edge lookups and the result is
// clamped to the grid.
func (c *Cache) VisibleRangeBuffered(scrollTop, scrollLeft, viewportWidth, viewportHeight float64, bufferRows, bufferCols int) VisibleRange {
	maxRow := len(c.rowPositions) - 2
	maxCol := len(c.colPositions) - 2

	startRow := SearchPosition(c.rowPositions, scrollTop) - bufferRows
	endRow := SearchPosition(c.rowPositions, scrollTop+viewportHeight) + bufferRows
	startCol := SearchPosition(c.colPositions, scrollLeft) - bufferCols
	endCol := SearchPosition(c.colPositions, scrollLeft+viewportWidth) + bufferCols

	return VisibleRange{
		StartRow: clampIndex(startRow, maxRow),
		EndRow:   clampIndex(endRow, maxRow),
		StartCol: clampIndex(startCol, maxCol),
		EndCol:   clampIndex(endCol, maxCol),
	}
}

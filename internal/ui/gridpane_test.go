package ui

import (
	"testing"

	"github.com/Carrerajorge/Hola-sub011/internal/geom"
	"github.com/Carrerajorge/Hola-sub011/internal/grid"
)

func newTestPane(rows, cols int) GridPane {
	g := grid.New(rows, cols)
	geo := geom.NewCache(rows, cols, nil, nil)
	pane := NewGridPane()
	pane.SetData(g, geo, nil)
	pane.SetSize(80, 24)
	return pane
}

func TestGridPaneViewportTracksCursor(t *testing.T) {
	pane := newTestPane(1000, 100)

	if pane.startRow != 0 {
		t.Fatalf("expected startRow 0, got %d", pane.startRow)
	}

	visible := pane.dataRows()
	t.Logf("pane shows %d data rows", visible)

	// Walk the cursor past the bottom edge; the window must follow
	for i := 0; i < visible+5; i++ {
		pane.MoveDown()
	}
	if pane.cursorRow != visible+5 {
		t.Fatalf("cursorRow = %d, want %d", pane.cursorRow, visible+5)
	}
	if pane.startRow != pane.cursorRow-visible+1 {
		t.Errorf("startRow = %d, want %d", pane.startRow, pane.cursorRow-visible+1)
	}

	// Pixel viewport starts at the window's top edge
	top, left, w, h := pane.Viewport()
	if top != pane.geo.RowTop(pane.startRow) {
		t.Errorf("viewport top = %v, want %v", top, pane.geo.RowTop(pane.startRow))
	}
	if left != 0 {
		t.Errorf("viewport left = %v, want 0", left)
	}
	if w <= 0 || h <= 0 {
		t.Errorf("viewport size %vx%v, want positive", w, h)
	}

	// Moving back up scrolls the window back too
	for i := 0; i < visible+5; i++ {
		pane.MoveUp()
	}
	if pane.cursorRow != 0 || pane.startRow != 0 {
		t.Errorf("after moving back: cursor %d start %d, want 0 0", pane.cursorRow, pane.startRow)
	}
}

func TestGridPaneHorizontalScroll(t *testing.T) {
	pane := newTestPane(100, 200)

	cols := pane.visibleCols()
	if len(cols) == 0 {
		t.Fatal("no visible columns")
	}
	t.Logf("pane shows %d columns", len(cols))

	// Move right past the last visible column
	steps := len(cols) + 2
	for i := 0; i < steps; i++ {
		pane.MoveRight()
	}
	if pane.cursorCol != steps {
		t.Fatalf("cursorCol = %d, want %d", pane.cursorCol, steps)
	}
	if !containsInt(pane.visibleCols(), pane.cursorCol) {
		t.Errorf("cursor column %d not in visible set %v", pane.cursorCol, pane.visibleCols())
	}
	if pane.startCol == 0 {
		t.Error("window did not scroll horizontally")
	}
}

func TestGridPaneJumpTo(t *testing.T) {
	pane := newTestPane(10000, 10000)

	pane.JumpTo(500, 50)
	if r, c := pane.Cursor(); r != 500 || c != 50 {
		t.Fatalf("cursor = (%d,%d), want (500,50)", r, c)
	}
	if got := pane.CursorRef(); got != "AY501" {
		t.Errorf("CursorRef = %q, want AY501", got)
	}
	if !containsInt(pane.visibleCols(), 50) {
		t.Error("jumped column not visible")
	}
	if pane.cursorRow < pane.startRow || pane.cursorRow >= pane.startRow+pane.dataRows() {
		t.Errorf("jumped row %d outside window [%d,%d)", pane.cursorRow, pane.startRow, pane.startRow+pane.dataRows())
	}

	// Out-of-range jumps clamp
	pane.JumpTo(-5, 20000)
	if r, c := pane.Cursor(); r != 0 || c != 9999 {
		t.Errorf("clamped cursor = (%d,%d), want (0,9999)", r, c)
	}
}

func TestGridPaneColChars(t *testing.T) {
	g := grid.New(100, 100)
	geo := geom.NewCache(100, 100, map[int]float64{
		0: 160,
		1: 500,
		2: 20,
	}, nil)
	pane := NewGridPane()
	pane.SetData(g, geo, nil)
	pane.SetSize(80, 24)

	cases := []struct {
		col  int
		want int
	}{
		{0, 16},          // 160px
		{1, maxColChars}, // 500px clamps
		{2, minColChars}, // 20px clamps
		{3, 10},          // default 100px
	}
	for _, c := range cases {
		if got := pane.colChars(c.col); got != c.want {
			t.Errorf("colChars(%d) = %d, want %d", c.col, got, c.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"widget", "widget"},
		{1250.5, "1250.5"},
		{float64(3), "3"},
		{true, "TRUE"},
		{false, "FALSE"},
		{42, "42"},
	}
	for _, c := range cases {
		if got := FormatValue(c.in); got != c.want {
			t.Errorf("FormatValue(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPad(t *testing.T) {
	if got := pad("ab", 5, alignLeft); got != "ab   " {
		t.Errorf("left pad = %q", got)
	}
	if got := pad("ab", 5, alignRight); got != "   ab" {
		t.Errorf("right pad = %q", got)
	}
	if got := pad("ab", 6, alignCenter); got != "  ab  " {
		t.Errorf("center pad = %q", got)
	}
	if got := pad("abcdefgh", 5, alignLeft); got != "abcd…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestCellAlign(t *testing.T) {
	if got := cellAlign(grid.Cell{Value: "x", Align: "right"}); got != alignRight {
		t.Errorf("explicit right ignored")
	}
	if got := cellAlign(grid.Cell{Value: 3.14}); got != alignRight {
		t.Errorf("numbers should right-align by default")
	}
	if got := cellAlign(grid.Cell{Value: "text"}); got != alignLeft {
		t.Errorf("text should left-align by default")
	}
}

package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Carrerajorge/Hola-sub011/internal/geom"
	"github.com/Carrerajorge/Hola-sub011/internal/grid"
	"github.com/Carrerajorge/Hola-sub011/internal/refs"
)

// Terminal cells are not pixels. One terminal column stands in for this
// many horizontal pixels when mapping the geometry cache onto the screen,
// so a default 100px column renders 10 characters wide.
const pxPerChar = 10.0

const (
	minColChars = 4
	maxColChars = 24
)

// GridPane displays a window of the sparse grid. It tracks the cursor and
// the top-left visible cell in index space; the pixel viewport it reports
// drives the loader's chunk streaming.
type GridPane struct {
	grid   *grid.SparseGrid
	geo    *geom.Cache
	loaded func(row, col int) bool

	cursorRow int
	cursorCol int
	startRow  int
	startCol  int
	width     int
	height    int
	focused   bool
}

// NewGridPane creates a new grid pane
func NewGridPane() GridPane {
	return GridPane{focused: true}
}

// SetData points the pane at the grid, its geometry and a probe telling
// whether a coordinate's chunk has streamed in yet. The cursor is clamped
// to the new dimensions.
func (g *GridPane) SetData(gr *grid.SparseGrid, geo *geom.Cache, loaded func(row, col int) bool) {
	g.grid = gr
	g.geo = geo
	g.loaded = loaded
	if gr != nil {
		g.cursorRow = clamp(g.cursorRow, 0, gr.Rows()-1)
		g.cursorCol = clamp(g.cursorCol, 0, gr.Cols()-1)
		g.startRow = clamp(g.startRow, 0, gr.Rows()-1)
		g.startCol = clamp(g.startCol, 0, gr.Cols()-1)
	}
}

// SetSize sets the panel dimensions
func (g *GridPane) SetSize(w, h int) {
	g.width = w
	g.height = h
	g.ensureVisible()
}

// SetFocused sets focus state
func (g *GridPane) SetFocused(focused bool) {
	g.focused = focused
}

// Cursor returns the selected coordinate
func (g GridPane) Cursor() (row, col int) {
	return g.cursorRow, g.cursorCol
}

// CursorRef returns the selection in A1 notation
func (g GridPane) CursorRef() string {
	return refs.FormatCell(g.cursorRow, g.cursorCol)
}

// SelectedCell returns the cell under the cursor
func (g GridPane) SelectedCell() grid.Cell {
	if g.grid == nil {
		return grid.Cell{}
	}
	return g.grid.Cell(g.cursorRow, g.cursorCol)
}

// Update handles messages
func (g GridPane) Update(msg tea.Msg) (GridPane, tea.Cmd) {
	return g, nil
}

// MoveUp moves cursor up
func (g *GridPane) MoveUp() {
	if g.cursorRow > 0 {
		g.cursorRow--
		g.ensureVisible()
	}
}

// MoveDown moves cursor down
func (g *GridPane) MoveDown() {
	if g.grid != nil && g.cursorRow < g.grid.Rows()-1 {
		g.cursorRow++
		g.ensureVisible()
	}
}

// MoveLeft moves cursor left
func (g *GridPane) MoveLeft() {
	if g.cursorCol > 0 {
		g.cursorCol--
		g.ensureVisible()
	}
}

// MoveRight moves cursor right
func (g *GridPane) MoveRight() {
	if g.grid != nil && g.cursorCol < g.grid.Cols()-1 {
		g.cursorCol++
		g.ensureVisible()
	}
}

// PageUp moves cursor up by one screen of rows
func (g *GridPane) PageUp() {
	g.cursorRow = clampLow(g.cursorRow-g.dataRows(), 0)
	g.ensureVisible()
}

// PageDown moves cursor down by one screen of rows
func (g *GridPane) PageDown() {
	if g.grid == nil {
		return
	}
	g.cursorRow = clamp(g.cursorRow+g.dataRows(), 0, g.grid.Rows()-1)
	g.ensureVisible()
}

// GoToTop moves the cursor to A1
func (g *GridPane) GoToTop() {
	g.cursorRow = 0
	g.cursorCol = 0
	g.startRow = 0
	g.startCol = 0
}

// GoToBottom moves the cursor to the last row, keeping the column
func (g *GridPane) GoToBottom() {
	if g.grid == nil {
		return
	}
	g.cursorRow = g.grid.Rows() - 1
	g.ensureVisible()
}

// JumpTo moves the cursor to (row, col) and centers the window on it.
// Out-of-range coordinates clamp to the grid.
func (g *GridPane) JumpTo(row, col int) {
	if g.grid == nil {
		return
	}
	g.cursorRow = clamp(row, 0, g.grid.Rows()-1)
	g.cursorCol = clamp(col, 0, g.grid.Cols()-1)
	g.startRow = clampLow(g.cursorRow-g.dataRows()/2, 0)
	g.startCol = g.cursorCol
	g.ensureVisible()
}

// Viewport returns the pixel rectangle currently on screen, for feeding
// the loader.
func (g GridPane) Viewport() (scrollTop, scrollLeft, width, height float64) {
	if g.geo == nil {
		return 0, 0, 0, 0
	}
	scrollTop = g.geo.RowTop(g.startRow)
	scrollLeft = g.geo.ColLeft(g.startCol)
	for _, r := range g.visibleRows() {
		height += g.geo.RowHeight(r)
	}
	for _, c := range g.visibleCols() {
		width += g.geo.ColWidth(c)
	}
	return scrollTop, scrollLeft, width, height
}

// dataRows is the number of grid rows the pane can draw: the height minus
// the border and the column heading line.
func (g GridPane) dataRows() int {
	n := g.height - 3
	if n < 1 {
		n = 1
	}
	return n
}

// colChars maps a column's pixel width to terminal characters
func (g GridPane) colChars(col int) int {
	if g.geo == nil {
		return minColChars
	}
	w := int(g.geo.ColWidth(col)/pxPerChar + 0.5)
	return clamp(w, minColChars, maxColChars)
}

func (g GridPane) gutterWidth() int {
	last := g.startRow + g.dataRows()
	w := len(strconv.Itoa(last)) + 1
	if w < 4 {
		w = 4
	}
	return w
}

// visibleRows lists the row indexes the pane draws
func (g GridPane) visibleRows() []int {
	if g.grid == nil {
		return nil
	}
	rows := make([]int, 0, g.dataRows())
	for r := g.startRow; r < g.grid.Rows() && len(rows) < g.dataRows(); r++ {
		rows = append(rows, r)
	}
	return rows
}

// visibleCols lists the column indexes that fit in the pane width, gutter
// and separators included
func (g GridPane) visibleCols() []int {
	if g.grid == nil {
		return nil
	}
	budget := g.width - 2 - g.gutterWidth() // borders and row gutter
	var cols []int
	for c := g.startCol; c < g.grid.Cols(); c++ {
		need := g.colChars(c) + 1
		if budget-need < 0 && len(cols) > 0 {
			break
		}
		cols = append(cols, c)
		budget -= need
		if budget <= 0 {
			break
		}
	}
	return cols
}

func (g *GridPane) ensureVisible() {
	if g.cursorRow < g.startRow {
		g.startRow = g.cursorRow
	}
	if g.cursorRow >= g.startRow+g.dataRows() {
		g.startRow = g.cursorRow - g.dataRows() + 1
	}
	if g.cursorCol < g.startCol {
		g.startCol = g.cursorCol
	}
	// Advance the window until the cursor column fits on screen
	for g.startCol < g.cursorCol && !containsInt(g.visibleCols(), g.cursorCol) {
		g.startCol++
	}
}

// View renders the grid window
func (g GridPane) View() string {
	if g.grid == nil || g.geo == nil {
		style := GridPanelStyle.Width(g.width - 2).Height(g.height - 2)
		return style.Render("No workbook")
	}

	rows := g.visibleRows()
	cols := g.visibleCols()
	gutterW := g.gutterWidth()

	var lines []string

	// Column heading line
	var heading strings.Builder
	heading.WriteString(strings.Repeat(" ", gutterW))
	for _, c := range cols {
		label := pad(refs.ColumnName(c), g.colChars(c), alignCenter)
		if c == g.cursorCol {
			heading.WriteString(lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render(label))
		} else {
			heading.WriteString(GridHeadingStyle.Render(label))
		}
		heading.WriteString(" ")
	}
	lines = append(lines, heading.String())

	for _, r := range rows {
		var line strings.Builder

		gutter := fmt.Sprintf("%*d ", gutterW-1, r+1)
		if r == g.cursorRow {
			line.WriteString(lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render(gutter))
		} else {
			line.WriteString(GridHeadingStyle.Render(gutter))
		}

		for _, c := range cols {
			line.WriteString(g.renderCell(r, c))
			line.WriteString(" ")
		}
		lines = append(lines, line.String())
	}

	content := strings.Join(lines, "\n")

	// Width and Height are inner dimensions; the border adds the rest
	style := GridPanelStyle.Width(g.width - 2).Height(g.height - 2)
	if g.focused {
		style = style.BorderForeground(ColorPrimary)
	}
	return style.Render(content)
}

func (g GridPane) renderCell(r, c int) string {
	cell := g.grid.Cell(r, c)
	w := g.colChars(c)

	selected := r == g.cursorRow && c == g.cursorCol

	if cell.Empty() {
		pending := g.loaded != nil && !g.loaded(r, c)
		switch {
		case selected && g.focused:
			return CellSelected.Render(strings.Repeat(" ", w))
		case selected:
			return CellSelectedUnfocused.Render(strings.Repeat(" ", w))
		case pending:
			return CellPending.Render(pad("⋯", w, alignCenter))
		default:
			return strings.Repeat(" ", w)
		}
	}

	text := pad(FormatValue(cell.Value), w, cellAlign(cell))

	switch {
	case selected && g.focused:
		return CellSelected.Render(text)
	case selected:
		return CellSelectedUnfocused.Render(text)
	}

	style := CellStyle
	if cell.Bold {
		style = style.Bold(true)
	}
	if cell.Italic {
		style = style.Italic(true)
	}
	if cell.Underline {
		style = style.Underline(true)
	}
	switch {
	case cell.Color != "":
		style = style.Foreground(lipgloss.Color("#" + cell.Color))
	case cell.Formula != "":
		style = style.Foreground(ColorFormula)
	}
	if cell.Background != "" {
		style = style.Background(lipgloss.Color("#" + cell.Background))
	}
	return style.Render(text)
}

type alignment int

const (
	alignLeft alignment = iota
	alignRight
	alignCenter
)

// cellAlign resolves a cell's alignment: explicit wins, numbers default to
// right, everything else to left
func cellAlign(c grid.Cell) alignment {
	switch c.Align {
	case "right":
		return alignRight
	case "center":
		return alignCenter
	case "left":
		return alignLeft
	}
	switch c.Value.(type) {
	case float64, int, int64:
		return alignRight
	}
	return alignLeft
}

// FormatValue renders a cell value for display
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// pad fits s into exactly w display columns, truncating with an ellipsis
// when it does not fit
func pad(s string, w int, a alignment) string {
	if w <= 0 {
		return ""
	}
	if lipgloss.Width(s) > w {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	switch a {
	case alignRight:
		return strings.Repeat(" ", gap) + s
	case alignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampLow(v, lo int) int {
	if v < lo {
		return lo
	}
	return v
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

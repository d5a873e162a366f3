package grid

// Cell holds the value, formula and formatting of one grid position. The
// zero Cell is the empty cell.
type Cell struct {
	Value      any    `json:"value,omitempty"`
	Formula    string `json:"formula,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
	Italic     bool   `json:"italic,omitempty"`
	Underline  bool   `json:"underline,omitempty"`
	Align      string `json:"align,omitempty"`
	Font       string `json:"font,omitempty"`
	Color      string `json:"color,omitempty"`
	Background string `json:"background,omitempty"`
}

// Empty reports whether the cell carries no value, formula or formatting.
// Empty cells are never stored; they are deleted on write.
func (c Cell) Empty() bool {
	return !c.hasValue() &&
		c.Formula == "" &&
		!c.Bold && !c.Italic && !c.Underline &&
		c.Align == "" && c.Font == "" && c.Color == "" && c.Background == ""
}

func (c Cell) hasValue() bool {
	if c.Value == nil {
		return false
	}
	if s, ok := c.Value.(string); ok && s == "" {
		return false
	}
	return true
}

// CellPatch is a partial cell update. Nil pointer fields leave the existing
// attribute untouched; HasValue gates Value so a patch can clear a value by
// carrying HasValue with a nil Value.
type CellPatch struct {
	Value      any
	HasValue   bool
	Formula    *string
	Bold       *bool
	Italic     *bool
	Underline  *bool
	Align      *string
	Font       *string
	Color      *string
	Background *string
}

// Apply merges the patch onto the cell and returns the result.
func (c Cell) Apply(p CellPatch) Cell {
	if p.HasValue {
		c.Value = p.Value
	}
	if p.Formula != nil {
		c.Formula = *p.Formula
	}
	if p.Bold != nil {
		c.Bold = *p.Bold
	}
	if p.Italic != nil {
		c.Italic = *p.Italic
	}
	if p.Underline != nil {
		c.Underline = *p.Underline
	}
	if p.Align != nil {
		c.Align = *p.Align
	}
	if p.Font != nil {
		c.Font = *p.Font
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if p.Background != nil {
		c.Background = *p.Background
	}
	return c
}

// ValuePatch builds a patch that only sets the cell value.
func ValuePatch(v any) CellPatch {
	return CellPatch{Value: v, HasValue: true}
}

// Str returns a pointer to s, for building CellPatch fields.
func Str(s string) *string { return &s }

// Flag returns a pointer to b, for building CellPatch fields.
func Flag(b bool) *bool { return &b }

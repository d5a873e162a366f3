package refs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadRef indicates a string that does not match A1-style cell notation.
	ErrBadRef = errors.New("invalid cell reference")
	// ErrBadRange indicates a string that does not match A1-style range notation.
	ErrBadRange = errors.New("invalid range reference")
)

// CellRef is a zero-based grid coordinate parsed from A1 notation.
type CellRef struct {
	Row int
	Col int
}

// ColumnName converts a zero-based column index to its spreadsheet name
// (0 -> "A", 25 -> "Z", 26 -> "AA"). Bijective base-26: there is no zero
// digit, so the alphabet restarts with an extra letter instead.
func ColumnName(index int) string {
	if index < 0 {
		return ""
	}
	var buf [8]byte
	pos := len(buf)
	n := index + 1
	for n > 0 {
		n--
		pos--
		buf[pos] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[pos:])
}

// ColumnIndex converts a spreadsheet column name to its zero-based index.
// Accepts upper or lower case.
func ColumnIndex(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: empty column name", ErrBadRef)
	}
	idx := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return 0, fmt.Errorf("%w: %q", ErrBadRef, name)
		}
	}
	return idx - 1, nil
}

// ParseCell parses an A1-style reference like "B12" into zero-based row and
// column. Row numbers are one-based in the textual form.
func ParseCell(ref string) (row, col int, err error) {
	letters := 0
	for letters < len(ref) && isLetter(ref[letters]) {
		letters++
	}
	if letters == 0 || letters == len(ref) {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	num := 0
	for i := letters; i < len(ref); i++ {
		c := ref[i]
		if c < '0' || c > '9' {
			return 0, 0, fmt.Errorf("%w: %q", ErrBadRef, ref)
		}
		num = num*10 + int(c-'0')
	}
	col, err = ColumnIndex(ref[:letters])
	if err != nil {
		return 0, 0, err
	}
	return num - 1, col, nil
}

// FormatCell renders zero-based row and column as an A1-style reference.
func FormatCell(row, col int) string {
	return fmt.Sprintf("%s%d", ColumnName(col), row+1)
}

// ParseSpan parses a range like "A1:C10" into its two corner cells. A bare
// cell reference is treated as a one-cell range. The returned corners are
// normalized so start is the top-left and end the bottom-right, regardless
// of which corner the input named first.
func ParseSpan(s string) (start, end CellRef, err error) {
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		return CellRef{}, CellRef{}, fmt.Errorf("%w: %q", ErrBadRange, s)
	}
	r1, c1, err := ParseCell(parts[0])
	if err != nil {
		return CellRef{}, CellRef{}, err
	}
	r2, c2 := r1, c1
	if len(parts) == 2 {
		r2, c2, err = ParseCell(parts[1])
		if err != nil {
			return CellRef{}, CellRef{}, err
		}
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	return CellRef{Row: r1, Col: c1}, CellRef{Row: r2, Col: c2}, nil
}

// ParseRange expands a range reference into every cell of the rectangular
// span, row-major.
func ParseRange(s string) ([]CellRef, error) {
	start, end, err := ParseSpan(s)
	if err != nil {
		return nil, err
	}
	cells := make([]CellRef, 0, (end.Row-start.Row+1)*(end.Col-start.Col+1))
	for r := start.Row; r <= end.Row; r++ {
		for c := start.Col; c <= end.Col; c++ {
			cells = append(cells, CellRef{Row: r, Col: c})
		}
	}
	return cells, nil
}

// ValidateCell reports whether ref is a well-formed A1-style cell reference
// with a positive row number.
func ValidateCell(ref string) error {
	row, _, err := ParseCell(ref)
	if err != nil {
		return err
	}
	if row < 0 {
		return fmt.Errorf("%w: %q: row numbers start at 1", ErrBadRef, ref)
	}
	return nil
}

// ValidateRange reports whether s is a well-formed range reference. At most
// one ":" separator is allowed.
func ValidateRange(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		return fmt.Errorf("%w: %q: too many ':' separators", ErrBadRange, s)
	}
	for _, p := range parts {
		if err := ValidateCell(p); err != nil {
			return err
		}
	}
	return nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

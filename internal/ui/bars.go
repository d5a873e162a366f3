package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Carrerajorge/Hola-sub011/internal/grid"
)

// InputMode says what the input bar is collecting
type InputMode int

const (
	InputNone InputMode = iota
	InputGoto
	InputEdit
)

// InputBar is a one-line prompt at the bottom of the screen, used both
// for go-to-cell and for cell editing
type InputBar struct {
	input textinput.Model
	mode  InputMode
	label string
	width int
}

// NewInputBar creates the bar in its closed state
func NewInputBar() InputBar {
	ti := textinput.New()
	ti.CharLimit = 256
	return InputBar{input: ti}
}

// OpenGoto prompts for a cell reference
func (b *InputBar) OpenGoto() {
	b.mode = InputGoto
	b.label = "Go to"
	b.input.Placeholder = "A1"
	b.input.SetValue("")
	b.input.Focus()
}

// OpenEdit prompts for a new cell value, prefilled with the current one
func (b *InputBar) OpenEdit(ref, current string) {
	b.mode = InputEdit
	b.label = ref
	b.input.Placeholder = "value or =formula"
	b.input.SetValue(current)
	b.input.CursorEnd()
	b.input.Focus()
}

// Close dismisses the bar
func (b *InputBar) Close() {
	b.mode = InputNone
	b.input.Blur()
	b.input.SetValue("")
}

// Active reports whether the bar is capturing input
func (b InputBar) Active() bool {
	return b.mode != InputNone
}

// Mode returns what the bar is collecting
func (b InputBar) Mode() InputMode {
	return b.mode
}

// Value returns the current text
func (b InputBar) Value() string {
	return b.input.Value()
}

// SetWidth sets the bar width
func (b *InputBar) SetWidth(w int) {
	b.width = w
	b.input.Width = w - len(b.label) - 8
	if b.input.Width < 10 {
		b.input.Width = 10
	}
}

// Update forwards messages to the text input
func (b InputBar) Update(msg tea.Msg) (InputBar, tea.Cmd) {
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	return b, cmd
}

// View renders the bar
func (b InputBar) View() string {
	if b.mode == InputNone {
		return ""
	}
	return BarStyle.Width(b.width).Render(BarLabel.Render(b.label+" ") + b.input.View())
}

// parseCellInput turns edit bar text into a cell patch. Leading "=" means
// formula, numbers become float64, TRUE/FALSE become bool, empty input
// clears the cell's value and formula, anything else is a string.
func parseCellInput(text string) grid.CellPatch {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return grid.CellPatch{HasValue: true, Value: nil, Formula: grid.Str("")}
	}
	if strings.HasPrefix(trimmed, "=") {
		return grid.CellPatch{HasValue: true, Value: nil, Formula: grid.Str(trimmed)}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return grid.CellPatch{HasValue: true, Value: f, Formula: grid.Str("")}
	}
	switch strings.ToLower(trimmed) {
	case "true":
		return grid.CellPatch{HasValue: true, Value: true, Formula: grid.Str("")}
	case "false":
		return grid.CellPatch{HasValue: true, Value: false, Formula: grid.Str("")}
	}
	return grid.CellPatch{HasValue: true, Value: trimmed, Formula: grid.Str("")}
}

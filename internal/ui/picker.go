package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Carrerajorge/Hola-sub011/internal/catalog"
)

const pickerMaxVisible = 12 // entries shown before the list scrolls

// Picker displays discovered workbooks for selection
type Picker struct {
	entries  []catalog.Entry
	selected int
	offset   int
	visible  bool
	scanning bool
	progress string
	width    int
	height   int
}

// NewPicker creates a new workbook picker component
func NewPicker() Picker {
	return Picker{}
}

// SetEntries updates the discovered workbooks
func (p *Picker) SetEntries(entries []catalog.Entry) {
	p.entries = entries
	p.scanning = false
	if p.selected >= len(entries) {
		p.selected = 0
		p.offset = 0
	}
}

// SetScanning marks the catalog walk as running with a progress note
func (p *Picker) SetScanning(scanning bool, progress string) {
	p.scanning = scanning
	p.progress = progress
}

// SelectedEntry returns the currently highlighted workbook
func (p Picker) SelectedEntry() *catalog.Entry {
	if p.selected >= 0 && p.selected < len(p.entries) {
		return &p.entries[p.selected]
	}
	return nil
}

// Toggle toggles visibility of the picker
func (p *Picker) Toggle() {
	p.visible = !p.visible
}

// SetVisible sets visibility of the picker
func (p *Picker) SetVisible(visible bool) {
	p.visible = visible
}

// IsVisible returns whether the picker is visible
func (p Picker) IsVisible() bool {
	return p.visible
}

// SetSize sets the dimensions for centering
func (p *Picker) SetSize(w, h int) {
	p.width = w
	p.height = h
}

// MoveUp moves selection up
func (p *Picker) MoveUp() {
	if p.selected > 0 {
		p.selected--
		if p.selected < p.offset {
			p.offset = p.selected
		}
	}
}

// MoveDown moves selection down
func (p *Picker) MoveDown() {
	if p.selected < len(p.entries)-1 {
		p.selected++
		if p.selected >= p.offset+pickerMaxVisible {
			p.offset = p.selected - pickerMaxVisible + 1
		}
	}
}

// View renders the picker overlay
func (p Picker) View() string {
	if !p.visible {
		return ""
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2).
		Background(lipgloss.Color("#1F1F23"))

	titleStyle := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		MarginBottom(1)

	normalStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E4E4E7")).
		PaddingLeft(1).
		PaddingRight(1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(ColorPrimary).
		Bold(true).
		PaddingLeft(1).
		PaddingRight(1)

	kindStyle := lipgloss.NewStyle().
		Foreground(ColorMuted)

	hintStyle := lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)

	var content strings.Builder

	content.WriteString(titleStyle.Render("Open Workbook"))
	content.WriteString("\n")

	switch {
	case p.scanning:
		note := "scanning…"
		if p.progress != "" {
			note = "scanning… " + p.progress
		}
		content.WriteString(normalStyle.Render(note))
		content.WriteString("\n")
	case len(p.entries) == 0:
		content.WriteString(normalStyle.Render("no workbooks found"))
		content.WriteString("\n")
	default:
		end := p.offset + pickerMaxVisible
		if end > len(p.entries) {
			end = len(p.entries)
		}
		for i := p.offset; i < end; i++ {
			e := p.entries[i]
			line := fmt.Sprintf("%-32s %4s %8s", truncateName(e.Name, 32), e.Kind, FormatSize(e.Size))
			if i == p.selected {
				content.WriteString(selectedStyle.Render(line))
			} else {
				content.WriteString(normalStyle.Render(line))
			}
			content.WriteString("\n")
		}
		if len(p.entries) > pickerMaxVisible {
			content.WriteString(kindStyle.Render(fmt.Sprintf(" %d of %d", p.selected+1, len(p.entries))))
			content.WriteString("\n")
		}
	}

	content.WriteString(hintStyle.Render("↑/↓ select  Enter open  Esc cancel"))

	box := boxStyle.Render(strings.TrimSuffix(content.String(), "\n"))

	return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, box)
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

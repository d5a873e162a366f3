package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Carrerajorge/Hola-sub011/internal/loader"
)

// Header displays the workbook tab, the current selection and load stats
type Header struct {
	session   loader.SessionState
	selection string // cell reference, e.g. "C7"
	preview   string // formatted value of the selected cell
	maxChunks int
	spinner   string
	width     int
}

// NewHeader creates a new header component
func NewHeader(maxChunks int) Header {
	return Header{maxChunks: maxChunks}
}

// SetSession updates the session stats shown on the right
func (h *Header) SetSession(s loader.SessionState) {
	h.session = s
}

// SetSelection updates the cursor reference and its value preview
func (h *Header) SetSelection(ref, preview string) {
	h.selection = ref
	h.preview = preview
}

// SetSpinner sets the frame rendered while chunks are streaming
func (h *Header) SetSpinner(frame string) {
	h.spinner = frame
}

// SetWidth sets the header width
func (h *Header) SetWidth(w int) {
	h.width = w
}

// View renders the header
func (h Header) View() string {
	appName := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#C084FC")). // soft violet
		Bold(true).
		Render("HOLAGRID")

	// Workbook tab
	name := h.session.Name
	if name == "" {
		name = "no workbook"
	}
	docTab := TitleStyle.Render(name)
	if h.session.Dirty {
		docTab += DirtyBadge.Render("●")
	}

	// Selection (middle): reference plus value preview
	var selection string
	if h.selection != "" {
		ref := lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Render(h.selection)
		if h.preview != "" {
			div := lipgloss.NewStyle().Foreground(ColorMuted).Render(" │ ")
			selection = ref + div + StatsStyle.Render(h.preview)
		} else {
			selection = ref
		}
	}

	// Stats (right): dimensions and chunk counters, or streaming progress
	var stats, statsCompact string
	if h.session.Rows > 0 {
		if h.session.IsLoading() {
			stats = StatsStyle.Render(fmt.Sprintf(
				"%s %s  %d chunks",
				h.spinner, h.session.Phase, h.session.ChunksLoaded,
			))
			statsCompact = StatsStyle.Render(fmt.Sprintf("%s %d", h.spinner, h.session.ChunksLoaded))
		} else {
			stats = StatsStyle.Render(fmt.Sprintf(
				"%d×%d  chunks %d/%d  cells %s",
				h.session.Rows, h.session.Cols,
				h.session.ChunksLoaded, h.maxChunks,
				FormatCount(h.session.CellsLoaded),
			))
			statsCompact = StatsStyle.Render(fmt.Sprintf(
				"chunks %d/%d", h.session.ChunksLoaded, h.maxChunks,
			))
		}
	}

	appNameWidth := lipgloss.Width(appName)
	tabWidth := lipgloss.Width(docTab)
	selectionWidth := lipgloss.Width(selection)
	statsWidth := lipgloss.Width(stats)

	sep := lipgloss.NewStyle().Foreground(ColorBorder).Render(" │ ")
	sepWidth := lipgloss.Width(sep)

	totalContent := appNameWidth + sepWidth + tabWidth + selectionWidth + statsWidth + 4 // +4 for min gaps

	// For narrow terminals, progressively hide elements
	if h.width < totalContent {
		// First: compact stats
		if statsWidth > 0 && statsCompact != "" {
			stats = statsCompact
			statsWidth = lipgloss.Width(stats)
			totalContent = appNameWidth + sepWidth + tabWidth + selectionWidth + statsWidth + 4
		}
	}
	if h.width < totalContent {
		// Then drop the selection preview
		if selectionWidth > 0 {
			selection = ""
			selectionWidth = 0
			totalContent = appNameWidth + sepWidth + tabWidth + statsWidth + 2
		}
	}
	if h.width < totalContent {
		// Finally drop stats entirely
		if statsWidth > 0 {
			stats = ""
			statsWidth = 0
			totalContent = appNameWidth + sepWidth + tabWidth
		}
	}

	remainingSpace := h.width - totalContent
	if remainingSpace < 2 {
		remainingSpace = 2
	}

	leftGap := remainingSpace / 2
	rightGap := remainingSpace - leftGap
	if leftGap < 1 {
		leftGap = 1
	}
	if rightGap < 1 {
		rightGap = 1
	}

	line := appName + sep + docTab + strings.Repeat(" ", leftGap) + selection + strings.Repeat(" ", rightGap) + stats

	return HeaderStyle.MaxHeight(1).Render(line)
}

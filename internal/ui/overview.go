package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jeffwilliams/squarify"

	"github.com/Carrerajorge/Hola-sub011/internal/chunk"
	"github.com/Carrerajorge/Hola-sub011/internal/loader"
	"github.com/Carrerajorge/Hola-sub011/internal/refs"
)

// Block is one rectangle in the chunk overview
type Block struct {
	Info          loader.ChunkInfo
	X, Y          int
	Width, Height int
	// For the grouped remainder (no Info)
	IsGrouped  bool
	GroupCount int
	GroupCells int
}

const (
	minBlockWidth    = 9  // fits a short span label
	minBlockHeight   = 3  // border plus one text line
	maxVisibleBlocks = 12 // before grouping the remainder into "N more"

	overviewMarginH = 2 // room for the rightmost block borders
)

// OverviewPanel shows the loaded chunks as a treemap, each block sized by
// how many cells the chunk holds. It makes the cache visible: what is
// resident, what is dense, and what pruning would evict next.
type OverviewPanel struct {
	chunks      []loader.ChunkInfo
	blocks      []Block
	selectedKey chunk.Key
	hasSelected bool
	width       int
	height      int
	focused     bool
}

// NewOverviewPanel creates a new overview panel
func NewOverviewPanel() OverviewPanel {
	return OverviewPanel{}
}

// SetChunks replaces the chunk list and recomputes the layout
func (o *OverviewPanel) SetChunks(chunks []loader.ChunkInfo) {
	o.chunks = chunks
	if o.hasSelected && o.findChunk(o.selectedKey) < 0 {
		o.hasSelected = false
	}
	if !o.hasSelected && len(chunks) > 0 {
		o.selectedKey = chunks[0].Key
		o.hasSelected = true
	}
	o.layout()
}

// SetSize sets the panel dimensions
func (o *OverviewPanel) SetSize(w, h int) {
	if o.width != w || o.height != h {
		o.width = w
		o.height = h
		o.layout()
	}
}

// SetFocused sets focus state
func (o *OverviewPanel) SetFocused(focused bool) {
	o.focused = focused
}

// Selected returns the selected chunk, if any
func (o OverviewPanel) Selected() (loader.ChunkInfo, bool) {
	if i := o.findChunk(o.selectedKey); o.hasSelected && i >= 0 {
		return o.chunks[i], true
	}
	return loader.ChunkInfo{}, false
}

// FollowCursor selects the chunk whose span contains (row, col)
func (o *OverviewPanel) FollowCursor(row, col int) {
	for _, c := range o.chunks {
		if row >= c.StartRow && row <= c.EndRow && col >= c.StartCol && col <= c.EndCol {
			o.selectedKey = c.Key
			o.hasSelected = true
			return
		}
	}
}

func (o OverviewPanel) findChunk(k chunk.Key) int {
	for i, c := range o.chunks {
		if c.Key == k {
			return i
		}
	}
	return -1
}

// MoveToBlock moves selection to the nearest block in the given direction
func (o *OverviewPanel) MoveToBlock(dx, dy int) {
	if len(o.blocks) == 0 {
		return
	}

	var current *Block
	for i := range o.blocks {
		if !o.blocks[i].IsGrouped && o.blocks[i].Info.Key == o.selectedKey {
			current = &o.blocks[i]
			break
		}
	}
	if current == nil {
		for i := range o.blocks {
			if !o.blocks[i].IsGrouped {
				o.selectedKey = o.blocks[i].Info.Key
				o.hasSelected = true
				return
			}
		}
		return
	}

	cx := current.X + current.Width/2
	cy := current.Y + current.Height/2

	var best *Block
	bestDist := -1
	for i := range o.blocks {
		b := &o.blocks[i]
		if b.IsGrouped || b.Info.Key == o.selectedKey {
			continue
		}
		bx := b.X + b.Width/2
		by := b.Y + b.Height/2
		if dx > 0 && bx <= cx {
			continue
		}
		if dx < 0 && bx >= cx {
			continue
		}
		if dy > 0 && by <= cy {
			continue
		}
		if dy < 0 && by >= cy {
			continue
		}
		dist := abs(bx-cx) + abs(by-cy)
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			best = b
		}
	}
	if best != nil {
		o.selectedKey = best.Info.Key
		o.hasSelected = true
	}
}

// overviewItem wraps a chunk for the squarify algorithm
type overviewItem struct {
	info     loader.ChunkInfo
	size     float64
	children []*overviewItem
}

// Size implements squarify.TreeSizer
func (o *overviewItem) Size() float64 { return o.size }

// NumChildren implements squarify.TreeSizer
func (o *overviewItem) NumChildren() int { return len(o.children) }

// Child implements squarify.TreeSizer
func (o *overviewItem) Child(i int) squarify.TreeSizer { return o.children[i] }

// layout computes block rectangles with the squarify library. Blocks that
// would render below the minimum size push items into a grouped strip at
// the bottom instead.
func (o *OverviewPanel) layout() {
	o.blocks = nil
	if len(o.chunks) == 0 || o.width <= 2 || o.height <= 2 {
		return
	}

	contentW := o.width - overviewMarginH
	contentH := o.height
	if contentW < 1 {
		contentW = 1
	}
	if contentH < 1 {
		contentH = 1
	}

	items := make([]*overviewItem, 0, len(o.chunks))
	for _, c := range o.chunks {
		size := float64(c.Cells)
		if size < 1 {
			size = 1 // keep zero-cell chunks visible
		}
		items = append(items, &overviewItem{info: c, size: size})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].size > items[j].size })

	maxVisible := len(items)
	if maxVisible > maxVisibleBlocks {
		maxVisible = maxVisibleBlocks
	}

	for maxVisible >= 1 {
		numVisible := maxVisible
		grouped := len(items) - numVisible
		if grouped == 1 {
			// A strip labeled "1 more" is silly; try the stray block inline
			numVisible = len(items)
			grouped = 0
		}

		mainRect := squarify.Rect{W: float64(contentW), H: float64(contentH)}
		if grouped > 0 {
			mainRect.H = float64(contentH - minBlockHeight)
		}

		root := &overviewItem{children: items[:numVisible]}
		for _, it := range items[:numVisible] {
			root.size += it.size
		}

		blocks, metas := squarify.Squarify(root, mainRect, squarify.Options{
			MaxDepth: 1,
			Sort:     true,
		})

		if !blocksFit(blocks, metas) {
			maxVisible--
			continue
		}

		mainEndY := o.convert(blocks, metas, contentW, contentH)
		if grouped > 0 {
			groupCells := 0
			for _, it := range items[numVisible:] {
				groupCells += it.info.Cells
			}
			h := contentH - mainEndY
			if h < 1 {
				h = 1
			}
			o.blocks = append(o.blocks, Block{
				X:          0,
				Y:          mainEndY,
				Width:      contentW,
				Height:     h,
				IsGrouped:  true,
				GroupCount: grouped,
				GroupCells: groupCells,
			})
		}
		return
	}

	// Nothing fits; give the whole pane to the densest chunk
	o.blocks = []Block{{
		Info:   items[0].info,
		Width:  contentW,
		Height: contentH,
	}}
}

// blocksFit reports whether every depth-0 block meets the minimum size
func blocksFit(blocks []squarify.Block, metas []squarify.Meta) bool {
	for i, b := range blocks {
		if i >= len(metas) || metas[i].Depth != 0 {
			continue
		}
		w := int(math.Floor(b.X+b.W)) - int(math.Floor(b.X))
		h := int(math.Floor(b.Y+b.H)) - int(math.Floor(b.Y))
		if w < minBlockWidth || h < minBlockHeight {
			return false
		}
	}
	return true
}

// convert turns squarify output into clipped integer blocks and returns
// the lowest Y any block reached
func (o *OverviewPanel) convert(blocks []squarify.Block, metas []squarify.Meta, contentW, contentH int) int {
	mainEndY := 0
	for i, b := range blocks {
		item, ok := b.TreeSizer.(*overviewItem)
		if !ok {
			continue
		}
		if i >= len(metas) || metas[i].Depth != 0 {
			continue
		}

		// Round both edges so adjacent blocks share boundaries instead of
		// overlapping
		x := int(math.Round(b.X))
		y := int(math.Round(b.Y))
		w := int(math.Round(b.X+b.W)) - x
		h := int(math.Round(b.Y+b.H)) - y

		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		if x+w > contentW {
			w = contentW - x
		}
		if y+h > contentH {
			h = contentH - y
		}
		if w < 1 || h < 1 || x >= contentW || y >= contentH {
			continue
		}

		if y+h > mainEndY {
			mainEndY = y + h
		}
		o.blocks = append(o.blocks, Block{
			Info:   item.info,
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
		})
	}
	return mainEndY
}

// View renders the overview
func (o OverviewPanel) View() string {
	if len(o.blocks) == 0 {
		title := GridHeadingStyle.Render("Loaded chunks")
		empty := StatusStyle.Render("nothing resident")
		return OverviewPanelStyle.Width(o.width).Height(o.height).Render(title + "\n" + empty)
	}

	contentW := o.width - overviewMarginH
	contentH := o.height
	if contentW < 1 {
		contentW = 1
	}
	if contentH < 1 {
		contentH = 1
	}

	type renderedBlock struct {
		block Block
		lines []string
	}
	var rendered []renderedBlock
	for _, b := range o.blocks {
		if b.Width < 1 || b.Height < 1 {
			continue
		}
		rendered = append(rendered, renderedBlock{b, strings.Split(o.renderBlock(b), "\n")})
	}

	// Composite line by line: place each block's slice at its X offset
	var outputLines []string
	for y := 0; y < contentH; y++ {
		type segment struct {
			x     int
			width int
			line  string
		}
		var segments []segment
		for _, rb := range rendered {
			idx := y - rb.block.Y
			if idx >= 0 && idx < len(rb.lines) && idx < rb.block.Height {
				segments = append(segments, segment{rb.block.X, rb.block.Width, rb.lines[idx]})
			}
		}
		sort.Slice(segments, func(i, j int) bool { return segments[i].x < segments[j].x })

		var line strings.Builder
		currentX := 0
		for _, seg := range segments {
			if seg.x > currentX {
				line.WriteString(strings.Repeat(" ", seg.x-currentX))
			}
			line.WriteString(seg.line)
			currentX = seg.x + seg.width
		}
		outputLines = append(outputLines, line.String())
	}

	content := strings.Join(outputLines, "\n")
	return lipgloss.NewStyle().Height(o.height).MaxHeight(o.height).Render(content)
}

func (o OverviewPanel) renderBlock(b Block) string {
	fgColor := lipgloss.Color("#E4E4E7")
	borderColor := ColorSecondary

	if b.IsGrouped {
		fgColor = lipgloss.Color("#6B7280")
		borderColor = lipgloss.Color("#4B5563")
	}

	selected := !b.IsGrouped && o.hasSelected && b.Info.Key == o.selectedKey
	if selected && o.focused {
		fgColor = lipgloss.Color("#FFFFFF")
		borderColor = ColorPrimary
	} else if selected {
		fgColor = lipgloss.Color("#E0E0E0")
		borderColor = lipgloss.Color("#9D7CD8")
	}

	var label, detail string
	if b.IsGrouped {
		label = fmt.Sprintf("%d more", b.GroupCount)
		detail = fmt.Sprintf("%s cells", FormatCount(b.GroupCells))
	} else {
		label = refs.FormatCell(b.Info.StartRow, b.Info.StartCol)
		detail = fmt.Sprintf("%s cells", FormatCount(b.Info.Cells))
	}

	innerW := b.Width - 2
	innerH := b.Height - 2
	if innerW < 0 {
		innerW = 0
	}
	if innerH < 0 {
		innerH = 0
	}

	text := label
	if innerH > 1 && detail != "" {
		text = label + "\n" + detail
	}

	blockStyle := lipgloss.NewStyle().
		Width(innerW).
		Height(innerH).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Foreground(fgColor)
	if selected {
		blockStyle = blockStyle.Bold(true)
	}
	return blockStyle.Render(text)
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

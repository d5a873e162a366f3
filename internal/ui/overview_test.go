package ui

import (
	"testing"

	"github.com/Carrerajorge/Hola-sub011/internal/chunk"
	"github.com/Carrerajorge/Hola-sub011/internal/loader"
)

func chunkInfo(row, col, cells int) loader.ChunkInfo {
	return loader.ChunkInfo{
		Key:      chunk.Key{Row: row, Col: col},
		StartRow: row * 100,
		EndRow:   row*100 + 99,
		StartCol: col * 100,
		EndCol:   col*100 + 99,
		Cells:    cells,
	}
}

func TestOverviewLayoutBounds(t *testing.T) {
	panel := NewOverviewPanel()
	panel.SetSize(40, 20)

	chunks := []loader.ChunkInfo{
		chunkInfo(0, 0, 900),
		chunkInfo(0, 1, 400),
		chunkInfo(1, 0, 250),
		chunkInfo(1, 1, 120),
		chunkInfo(2, 0, 30),
	}
	panel.SetChunks(chunks)

	if len(panel.blocks) == 0 {
		t.Fatal("expected blocks to be generated")
	}
	t.Logf("generated %d blocks for %d chunks", len(panel.blocks), len(chunks))

	contentW := panel.width - overviewMarginH
	contentH := panel.height
	for i, b := range panel.blocks {
		t.Logf("block[%d] grouped=%v x=%d y=%d w=%d h=%d", i, b.IsGrouped, b.X, b.Y, b.Width, b.Height)
		if b.X < 0 || b.Y < 0 {
			t.Errorf("block[%d] has negative origin (%d,%d)", i, b.X, b.Y)
		}
		if b.X+b.Width > contentW {
			t.Errorf("block[%d] exceeds width: x=%d w=%d contentW=%d", i, b.X, b.Width, contentW)
		}
		if b.Y+b.Height > contentH {
			t.Errorf("block[%d] exceeds height: y=%d h=%d contentH=%d", i, b.Y, b.Height, contentH)
		}
	}
}

func TestOverviewGroupsRemainder(t *testing.T) {
	panel := NewOverviewPanel()
	panel.SetSize(40, 18)

	var chunks []loader.ChunkInfo
	for i := 0; i < maxVisibleBlocks+8; i++ {
		chunks = append(chunks, chunkInfo(i, 0, 1000-i*10))
	}
	panel.SetChunks(chunks)

	var grouped *Block
	individual := 0
	for i := range panel.blocks {
		if panel.blocks[i].IsGrouped {
			grouped = &panel.blocks[i]
		} else {
			individual++
		}
	}
	if grouped == nil {
		t.Fatalf("expected a grouped block for %d chunks, got %d individual blocks", len(chunks), individual)
	}
	if grouped.GroupCount+individual != len(chunks) {
		t.Errorf("blocks account for %d chunks, want %d", grouped.GroupCount+individual, len(chunks))
	}
	if grouped.GroupCells <= 0 {
		t.Errorf("grouped cells = %d, want positive", grouped.GroupCells)
	}
}

func TestOverviewFollowCursor(t *testing.T) {
	panel := NewOverviewPanel()
	panel.SetSize(40, 20)
	panel.SetChunks([]loader.ChunkInfo{
		chunkInfo(0, 0, 10),
		chunkInfo(3, 2, 20),
	})

	panel.FollowCursor(350, 250)
	info, ok := panel.Selected()
	if !ok {
		t.Fatal("no selection after FollowCursor")
	}
	if info.Key != (chunk.Key{Row: 3, Col: 2}) {
		t.Errorf("selected %v, want {3 2}", info.Key)
	}

	// A coordinate outside every loaded chunk leaves the selection alone
	panel.FollowCursor(9999, 9999)
	info, _ = panel.Selected()
	if info.Key != (chunk.Key{Row: 3, Col: 2}) {
		t.Errorf("selection moved to %v on a miss", info.Key)
	}
}

func TestOverviewMoveToBlock(t *testing.T) {
	panel := NewOverviewPanel()
	panel.SetSize(60, 12)
	panel.SetChunks([]loader.ChunkInfo{
		chunkInfo(0, 0, 500),
		chunkInfo(0, 1, 480),
	})

	if len(panel.blocks) < 2 {
		t.Skipf("layout produced %d blocks, need 2 side by side", len(panel.blocks))
	}

	first, _ := panel.Selected()
	panel.MoveToBlock(1, 0)
	second, _ := panel.Selected()
	if first.Key == second.Key {
		panel.MoveToBlock(0, 1)
		second, _ = panel.Selected()
	}
	if first.Key == second.Key {
		t.Error("MoveToBlock did not change selection")
	}

	// Moving back returns to the start
	panel.MoveToBlock(-1, 0)
	panel.MoveToBlock(0, -1)
	back, _ := panel.Selected()
	if back.Key != first.Key {
		t.Errorf("did not move back to %v, at %v", first.Key, back.Key)
	}
}

func TestOverviewSelectionSurvivesRefresh(t *testing.T) {
	panel := NewOverviewPanel()
	panel.SetSize(40, 20)

	a := chunkInfo(0, 0, 100)
	b := chunkInfo(0, 1, 90)
	panel.SetChunks([]loader.ChunkInfo{a, b})
	panel.FollowCursor(b.StartRow, b.StartCol)

	// Same chunks again, new counts: selection stays on the same key
	b2 := b
	b2.Cells = 95
	panel.SetChunks([]loader.ChunkInfo{a, b2})
	info, ok := panel.Selected()
	if !ok || info.Key != b.Key {
		t.Errorf("selection lost on refresh: %v %v", info.Key, ok)
	}

	// Selected chunk evicted: selection falls back to the first entry
	panel.SetChunks([]loader.ChunkInfo{a})
	info, ok = panel.Selected()
	if !ok || info.Key != a.Key {
		t.Errorf("selection after eviction: %v %v", info.Key, ok)
	}
}

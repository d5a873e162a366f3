package chunk

import (
	"testing"

	"github.com/Carrerajorge/Hola-sub011/internal/geom"
)

func TestKeyFor(t *testing.T) {
	tr := New(100, 2, 50)

	cases := []struct {
		row, col int
		want     Key
	}{
		{0, 0, Key{0, 0}},
		{99, 99, Key{0, 0}},
		{100, 0, Key{1, 0}},
		{250, 375, Key{2, 3}},
	}
	for _, tc := range cases {
		if got := tr.KeyFor(tc.row, tc.col); got != tc.want {
			t.Errorf("KeyFor(%d,%d): expected %+v, got %+v", tc.row, tc.col, tc.want, got)
		}
	}
}

func TestRequiredCoversRangeWithoutLookAhead(t *testing.T) {
	tr := New(100, 0, 50)
	v := geom.VisibleRange{StartRow: 50, EndRow: 250, StartCol: 0, EndCol: 99}

	keys := tr.Required(v)
	want := []Key{{0, 0}, {1, 0}, {2, 0}}
	if len(keys) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %+v", len(want), len(keys), keys)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Errorf("chunk %d: expected %+v, got %+v", i, k, keys[i])
		}
	}
}

func TestRequiredExpandsByLookAhead(t *testing.T) {
	tr := New(100, 2, 50)
	v := geom.VisibleRange{StartRow: 500, EndRow: 599, StartCol: 500, EndCol: 599}

	keys := tr.Required(v)
	// Chunk (5,5) expanded 2 units on all sides: rows 3-7, cols 3-7
	if len(keys) != 25 {
		t.Fatalf("expected 25 chunks, got %d", len(keys))
	}
	if keys[0] != (Key{3, 3}) || keys[24] != (Key{7, 7}) {
		t.Errorf("unexpected corners: %+v .. %+v", keys[0], keys[24])
	}
}

func TestRequiredClampsAtOrigin(t *testing.T) {
	tr := New(100, 2, 50)
	v := geom.VisibleRange{StartRow: 0, EndRow: 99, StartCol: 0, EndCol: 99}

	for _, k := range tr.Required(v) {
		if k.Row < 0 || k.Col < 0 {
			t.Errorf("negative chunk key %+v", k)
		}
	}
}

func TestRequiredClampsToGridExtent(t *testing.T) {
	tr := New(100, 2, 50)
	tr.SetGrid(250, 250)
	v := geom.VisibleRange{StartRow: 200, EndRow: 249, StartCol: 200, EndCol: 249}

	keys := tr.Required(v)
	for _, k := range keys {
		if k.Row > 2 || k.Col > 2 {
			t.Errorf("chunk %+v past grid extent", k)
		}
	}
}

func TestMissingFiltersLoadedAndLoading(t *testing.T) {
	tr := New(100, 0, 50)
	tr.MarkLoaded(Key{0, 0})
	tr.MarkLoading(Key{1, 0})

	missing := tr.Missing([]Key{{0, 0}, {1, 0}, {2, 0}})
	if len(missing) != 1 || missing[0] != (Key{2, 0}) {
		t.Errorf("expected only {2,0} missing, got %+v", missing)
	}
}

func TestMarkLoadedSupersedesLoading(t *testing.T) {
	tr := New(100, 0, 50)
	k := Key{3, 3}

	tr.MarkLoading(k)
	if !tr.IsLoading(k) {
		t.Fatal("expected loading state")
	}

	tr.MarkLoaded(k)
	if tr.IsLoading(k) {
		t.Error("expected loading state cleared after load")
	}
	if !tr.IsLoaded(k) {
		t.Error("expected loaded state")
	}
	if tr.LoadingCount() != 0 {
		t.Errorf("expected 0 loading, got %d", tr.LoadingCount())
	}
}

func TestPruneNoOpUnderCap(t *testing.T) {
	tr := New(100, 0, 50)
	for i := 0; i < 50; i++ {
		tr.MarkLoaded(Key{i, 0})
	}

	evicted := tr.Prune(geom.VisibleRange{StartRow: 0, EndRow: 99, StartCol: 0, EndCol: 99})
	if evicted != 0 {
		t.Errorf("expected no eviction at the cap, got %d", evicted)
	}
	if tr.LoadedCount() != 50 {
		t.Errorf("expected 50 loaded, got %d", tr.LoadedCount())
	}
}

func TestPruneEvictsOldestDownToFloor(t *testing.T) {
	tr := New(100, 0, 10)
	for i := 0; i < 20; i++ {
		tr.MarkLoaded(Key{i, 0})
	}

	// Viewport over chunk {19,0} only
	v := geom.VisibleRange{StartRow: 1900, EndRow: 1999, StartCol: 0, EndCol: 99}
	evicted := tr.Prune(v)

	if evicted != 15 {
		t.Errorf("expected 15 evictions, got %d", evicted)
	}
	if tr.LoadedCount() != 5 {
		t.Errorf("expected floor of 5 loaded, got %d", tr.LoadedCount())
	}
	if tr.IsLoaded(Key{0, 0}) {
		t.Error("oldest chunk should be evicted first")
	}
	for i := 15; i < 20; i++ {
		if !tr.IsLoaded(Key{i, 0}) {
			t.Errorf("expected recent chunk {%d,0} to survive", i)
		}
	}
}

func TestPruneNeverEvictsRequired(t *testing.T) {
	tr := New(100, 0, 4)
	for i := 0; i < 8; i++ {
		tr.MarkLoaded(Key{i, 0})
	}

	// Chunks {0,0} and {1,0} are required despite being the oldest
	v := geom.VisibleRange{StartRow: 0, EndRow: 199, StartCol: 0, EndCol: 99}
	tr.Prune(v)

	if !tr.IsLoaded(Key{0, 0}) || !tr.IsLoaded(Key{1, 0}) {
		t.Error("required chunks must never be evicted")
	}
	if tr.LoadedCount() < 2 {
		t.Errorf("loaded set fell below the floor: %d", tr.LoadedCount())
	}
}

func TestTouchRefreshesRecency(t *testing.T) {
	tr := New(100, 0, 4)
	for i := 0; i < 6; i++ {
		tr.MarkLoaded(Key{i, 0})
	}
	tr.Touch(Key{0, 0})

	// Viewport far away so nothing loaded is required
	tr.Prune(geom.VisibleRange{StartRow: 900, EndRow: 999, StartCol: 900, EndCol: 999})

	if !tr.IsLoaded(Key{0, 0}) {
		t.Error("touched chunk should survive eviction")
	}
	if tr.IsLoaded(Key{1, 0}) {
		t.Error("least recently used chunk should be evicted")
	}
}

func TestClearResets(t *testing.T) {
	tr := New(100, 0, 50)
	tr.MarkLoaded(Key{0, 0})
	tr.MarkLoading(Key{1, 0})

	tr.Clear()

	if tr.LoadedCount() != 0 || tr.LoadingCount() != 0 {
		t.Error("expected empty tracking sets after Clear")
	}
	if m := tr.Metrics(); m.Loads != 0 || m.Evictions != 0 {
		t.Errorf("expected metrics reset, got %+v", m)
	}
}

func TestMetricsCount(t *testing.T) {
	tr := New(100, 0, 4)
	for i := 0; i < 8; i++ {
		tr.MarkLoaded(Key{i, 0})
	}
	// Re-marking an already loaded chunk is not a new load
	tr.MarkLoaded(Key{7, 0})

	tr.Prune(geom.VisibleRange{StartRow: 900, EndRow: 999, StartCol: 900, EndCol: 999})

	m := tr.Metrics()
	if m.Loads != 8 {
		t.Errorf("expected 8 loads, got %d", m.Loads)
	}
	if m.Evictions != 6 {
		t.Errorf("expected 6 evictions, got %d", m.Evictions)
	}
}

func TestSpanClampsToGrid(t *testing.T) {
	tr := New(100, 0, 50)
	tr.SetGrid(250, 250)

	sr, er, sc, ec := tr.Span(Key{2, 2})
	if sr != 200 || sc != 200 {
		t.Errorf("expected span start (200,200), got (%d,%d)", sr, sc)
	}
	if er != 249 || ec != 249 {
		t.Errorf("expected span end clamped to (249,249), got (%d,%d)", er, ec)
	}
}

func TestLoadedKeysMostRecentFirst(t *testing.T) {
	tr := New(100, 0, 50)
	tr.MarkLoaded(Key{0, 0})
	tr.MarkLoaded(Key{1, 0})
	tr.MarkLoaded(Key{2, 0})
	tr.Touch(Key{0, 0})

	keys := tr.LoadedKeys()
	if len(keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(keys))
	}
	if keys[0] != (Key{0, 0}) || keys[1] != (Key{2, 0}) {
		t.Errorf("unexpected recency order: %+v", keys)
	}
}

package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Carrerajorge/Hola-sub011/internal/chunk"
	"github.com/Carrerajorge/Hola-sub011/internal/grid"
)

// waitEvent drains the stream until an event matches or the timeout fires.
func waitEvent(t *testing.T, ch <-chan Event, timeout time.Duration, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case e := <-ch:
			if match(e) {
				return e
			}
		case <-deadline:
			t.Fatal("timed out waiting for event")
			return nil
		}
	}
}

func eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestDemoSourceDeterministic(t *testing.T) {
	d := NewDemoSource(0, 0)
	d.latency = 0

	if r, c := d.Dims(); r != 10000 || c != 10000 {
		t.Fatalf("expected 10000x10000 defaults, got %dx%d", r, c)
	}

	a, err := d.FetchChunk(context.Background(), 0, 99, 0, 99)
	if err != nil {
		t.Fatalf("FetchChunk failed: %v", err)
	}
	b, err := d.FetchChunk(context.Background(), 0, 99, 0, 99)
	if err != nil {
		t.Fatalf("FetchChunk failed: %v", err)
	}

	if len(a) == 0 {
		t.Fatal("expected demo cells in the first chunk")
	}
	if len(a) != len(b) {
		t.Errorf("expected identical chunks, got %d vs %d cells", len(a), len(b))
	}

	if a[0].Row != 0 || a[0].Col != 0 {
		t.Fatalf("expected first cell at (0,0), got (%d,%d)", a[0].Row, a[0].Col)
	}
	if a[0].Data.Value != "Total" || !a[0].Data.Bold {
		t.Errorf("expected bold Total at origin, got %+v", a[0].Data)
	}
}

func TestDemoSourceClampsSpan(t *testing.T) {
	d := NewDemoSource(100, 100)
	d.latency = 0

	cells, err := d.FetchChunk(context.Background(), 0, 199, 0, 199)
	if err != nil {
		t.Fatalf("FetchChunk failed: %v", err)
	}
	for _, pc := range cells {
		if pc.Row > 99 || pc.Col > 99 {
			t.Fatalf("cell (%d,%d) outside the 100x100 grid", pc.Row, pc.Col)
		}
	}
}

func TestDemoSourceHonorsCancel(t *testing.T) {
	d := NewDemoSource(100, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := d.FetchChunk(ctx, 0, 9, 0, 9); err == nil {
		t.Error("expected error from canceled fetch")
	}
}

func TestOpenCSV(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "data.csv")
	content := "name,count,price\nwidget,5,9.99\ngadget,12,\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenCSV(path)
	if err != nil {
		t.Fatalf("OpenCSV failed: %v", err)
	}

	// Tiny files are padded up to a workable grid
	rows, cols := src.Dims()
	if rows != 100 || cols != 26 {
		t.Errorf("expected 100x26 padded dims, got %dx%d", rows, cols)
	}

	cells, err := src.FetchChunk(context.Background(), 0, 9, 0, 9)
	if err != nil {
		t.Fatalf("FetchChunk failed: %v", err)
	}
	byCoord := make(map[grid.Coord]grid.Cell)
	for _, pc := range cells {
		byCoord[grid.Coord{Row: pc.Row, Col: pc.Col}] = pc.Data
	}

	if got := byCoord[grid.Coord{Row: 1, Col: 0}].Value; got != "widget" {
		t.Errorf("expected widget, got %v", got)
	}
	if got := byCoord[grid.Coord{Row: 1, Col: 1}].Value; got != float64(5) {
		t.Errorf("expected numeric 5, got %v", got)
	}
	if got := byCoord[grid.Coord{Row: 2, Col: 1}].Value; got != float64(12) {
		t.Errorf("expected numeric 12, got %v", got)
	}
	// Empty trailing field stores nothing
	if _, ok := byCoord[grid.Coord{Row: 2, Col: 2}]; ok {
		t.Error("expected empty field to stay absent")
	}
}

func TestOpenJSON(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "book.json")
	doc := `{"maxRows":500,"maxCols":50,"cells":[
		{"row":0,"col":0,"data":{"value":"Budget","bold":true}},
		{"row":2,"col":3,"data":{"value":125.5,"align":"right"}}
	]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenJSON(path)
	if err != nil {
		t.Fatalf("OpenJSON failed: %v", err)
	}

	rows, cols := src.Dims()
	if rows != 500 || cols != 50 {
		t.Errorf("expected 500x50, got %dx%d", rows, cols)
	}

	cells, err := src.FetchChunk(context.Background(), 0, 9, 0, 9)
	if err != nil {
		t.Fatalf("FetchChunk failed: %v", err)
	}
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0].Data.Value != "Budget" || !cells[0].Data.Bold {
		t.Errorf("unexpected first cell: %+v", cells[0].Data)
	}
	if cells[1].Data.Value != 125.5 || cells[1].Data.Align != "right" {
		t.Errorf("unexpected second cell: %+v", cells[1].Data)
	}
}

func TestOpenPathDetectsJSON(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "book.json")
	doc := `{"maxRows":10,"maxCols":10,"cells":[{"row":1,"col":1,"data":{"value":"x"}}]}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	if rows, _ := src.Dims(); rows != 10 {
		t.Errorf("expected 10 rows, got %d", rows)
	}
}

func TestOpenPathUnsupported(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "notes.txt")
	if err := os.WriteFile(path, []byte("just some text\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := OpenPath(path); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestControllerStreamsVisibleChunks(t *testing.T) {
	d := NewDemoSource(500, 200)
	d.latency = 0
	c := New(d, Config{ChunkSize: 100, LoadAhead: 0, Frame: 2 * time.Millisecond})
	c.Start(context.Background())
	defer c.Stop()

	// 300x200px at the origin touches only the first chunk
	c.SetViewport(0, 0, 300, 200)

	eventually(t, time.Second, func() bool {
		return c.Grid().Cell(0, 0).Value == "Total"
	}, "origin chunk never loaded")

	if got := c.Metrics().Loads; got != 1 {
		t.Errorf("expected 1 chunk load, got %d", got)
	}
	eventually(t, time.Second, func() bool {
		return c.Session().Phase == PhaseReady
	}, "session never became ready")

	infos := c.LoadedChunks()
	if len(infos) != 1 {
		t.Fatalf("expected 1 loaded chunk, got %d", len(infos))
	}
	if infos[0].Key != (chunk.Key{Row: 0, Col: 0}) {
		t.Errorf("expected chunk (0,0), got %+v", infos[0].Key)
	}
	if infos[0].Cells == 0 {
		t.Error("expected a non-empty chunk")
	}
}

func TestControllerEventStream(t *testing.T) {
	d := NewDemoSource(500, 200)
	d.latency = 0
	c := New(d, Config{ChunkSize: 100, LoadAhead: 0, Frame: 2 * time.Millisecond})
	c.Start(context.Background())
	defer c.Stop()

	opened := waitEvent(t, c.Events(), time.Second, func(e Event) bool {
		_, ok := e.(OpenedEvent)
		return ok
	}).(OpenedEvent)
	if opened.Rows != 500 || opened.Cols != 200 {
		t.Errorf("expected 500x200 open, got %dx%d", opened.Rows, opened.Cols)
	}

	c.SetViewport(0, 0, 300, 200)

	vc := waitEvent(t, c.Events(), time.Second, func(e Event) bool {
		_, ok := e.(ViewportChangedEvent)
		return ok
	}).(ViewportChangedEvent)
	if !vc.Range.Contains(0, 0) {
		t.Errorf("expected range containing the origin, got %+v", vc.Range)
	}
	if vc.Version != 1 {
		t.Errorf("expected first resolve to be version 1, got %d", vc.Version)
	}

	cl := waitEvent(t, c.Events(), time.Second, func(e Event) bool {
		_, ok := e.(ChunkLoadedEvent)
		return ok
	}).(ChunkLoadedEvent)
	if cl.Key != (chunk.Key{Row: 0, Col: 0}) {
		t.Errorf("expected chunk (0,0), got %+v", cl.Key)
	}

	waitEvent(t, c.Events(), time.Second, func(e Event) bool {
		_, ok := e.(RenderEvent)
		return ok
	})
}

func TestControllerEditCell(t *testing.T) {
	d := NewDemoSource(100, 100)
	d.latency = 0
	c := New(d, Config{Frame: 2 * time.Millisecond})
	c.Start(context.Background())
	defer c.Stop()

	if err := c.EditCell(5, 5, grid.ValuePatch("edited")); err != nil {
		t.Fatalf("EditCell failed: %v", err)
	}
	if got := c.Grid().Cell(5, 5).Value; got != "edited" {
		t.Errorf("expected edited, got %v", got)
	}
	if !c.Session().Dirty {
		t.Error("expected session to be dirty after an edit")
	}

	err := c.EditCell(100, 0, grid.ValuePatch("nope"))
	var be *grid.BoundsError
	if !errors.As(err, &be) {
		t.Fatalf("expected BoundsError, got %v", err)
	}
	if c.Grid().Cell(100, 0).Value != nil {
		t.Error("out-of-bounds edit must not store anything")
	}
}

func TestControllerSizingOverrides(t *testing.T) {
	d := NewDemoSource(100, 100)
	d.latency = 0
	c := New(d, Config{Frame: 2 * time.Millisecond})

	// Demo source widens col 0 and heightens row 0
	if got := c.Geometry().ColWidth(0); got != 160 {
		t.Errorf("expected source override 160, got %v", got)
	}
	if got := c.Geometry().RowHeight(0); got != 36 {
		t.Errorf("expected source override 36, got %v", got)
	}

	c.Start(context.Background())
	defer c.Stop()

	c.SetColWidth(2, 250)
	if got := c.Geometry().ColWidth(2); got != 250 {
		t.Errorf("expected 250 after resize, got %v", got)
	}
	// Source override survives the rebuild
	if got := c.Geometry().ColWidth(0); got != 160 {
		t.Errorf("expected 160 after resize, got %v", got)
	}

	c.SetRowHeight(3, 60)
	if got := c.Geometry().RowHeight(3); got != 60 {
		t.Errorf("expected 60 after resize, got %v", got)
	}
}

func TestControllerPrunesDistantChunks(t *testing.T) {
	d := NewDemoSource(10000, 10000)
	d.latency = 0
	c := New(d, Config{ChunkSize: 100, LoadAhead: 0, MaxChunks: 4, Frame: time.Millisecond})
	c.Start(context.Background())
	defer c.Stop()

	// Each chunk spans 2800px of rows; scroll through ten distinct areas
	for i := 0; i < 10; i++ {
		c.SetViewport(float64(i)*3000, 0, 300, 200)
		time.Sleep(10 * time.Millisecond)
	}

	eventually(t, 2*time.Second, func() bool {
		return c.Metrics().Evictions > 0
	}, "scrolling past the budget never evicted")

	c.SetViewport(0, 0, 300, 200)
	eventually(t, 2*time.Second, func() bool {
		return len(c.LoadedChunks()) <= 4
	}, "loaded chunks never settled under the budget")
}

// flakySource fails its first fetch, then defers to the demo data.
type flakySource struct {
	*DemoSource
	mu    sync.Mutex
	calls int
}

func (f *flakySource) FetchChunk(ctx context.Context, startRow, endRow, startCol, endCol int) ([]grid.PlacedCell, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()
	if first {
		return nil, errors.New("transient backend failure")
	}
	return f.DemoSource.FetchChunk(ctx, startRow, endRow, startCol, endCol)
}

func TestControllerRetriesFailedChunk(t *testing.T) {
	d := NewDemoSource(500, 200)
	d.latency = 0
	f := &flakySource{DemoSource: d}
	c := New(f, Config{ChunkSize: 100, LoadAhead: 0, Frame: 2 * time.Millisecond})
	c.Start(context.Background())
	defer c.Stop()

	c.SetViewport(0, 0, 300, 200)

	waitEvent(t, c.Events(), time.Second, func(e Event) bool {
		_, ok := e.(ChunkFailedEvent)
		return ok
	})

	// A later resolve sees the chunk as missing again and retries
	time.Sleep(10 * time.Millisecond)
	c.SetViewport(0, 1, 300, 200)

	eventually(t, time.Second, func() bool {
		return c.Grid().Cell(0, 0).Value == "Total"
	}, "failed chunk was never retried")
}

func TestControllerSnapshotOnEdit(t *testing.T) {
	tmp := t.TempDir()
	d := NewDemoSource(100, 100)
	d.latency = 0
	c := New(d, Config{Frame: 2 * time.Millisecond, SnapshotDir: tmp})
	c.Start(context.Background())

	if err := c.EditCell(5, 5, grid.ValuePatch("edited")); err != nil {
		t.Fatalf("EditCell failed: %v", err)
	}
	if err := c.SaveSnapshot(); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if c.Session().Dirty {
		t.Error("expected save to clear the dirty flag")
	}

	files, _ := filepath.Glob(filepath.Join(tmp, "grid-*.gob.gz"))
	if len(files) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(files))
	}

	c.Stop()
}

func TestControllerSnapshotsDisabled(t *testing.T) {
	d := NewDemoSource(100, 100)
	d.latency = 0
	c := New(d, Config{Frame: 2 * time.Millisecond})
	c.Start(context.Background())
	defer c.Stop()

	if err := c.SaveSnapshot(); err == nil {
		t.Error("expected error when no snapshot dir is configured")
	}
}

func TestControllerReload(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "data.csv")
	if err := os.WriteFile(path, []byte("name,count\nwidget,5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	src, err := OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	c := New(src, Config{ChunkSize: 100, LoadAhead: 0, Frame: 2 * time.Millisecond})
	c.Start(context.Background())
	defer c.Stop()

	c.SetViewport(0, 0, 400, 200)
	eventually(t, time.Second, func() bool {
		return c.Grid().Cell(1, 0).Value == "widget"
	}, "initial chunk never loaded")

	if err := os.WriteFile(path, []byte("name,count\ngadget,7\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := c.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	eventually(t, time.Second, func() bool {
		return c.Grid().Cell(1, 0).Value == "gadget"
	}, "reload never picked up the new contents")
}

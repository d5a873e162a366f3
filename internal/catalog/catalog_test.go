package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestWalkerFind(t *testing.T) {
	// Create temp directory structure
	tmp := t.TempDir()

	os.MkdirAll(filepath.Join(tmp, "reports"), 0755)
	os.MkdirAll(filepath.Join(tmp, ".git"), 0755)
	os.WriteFile(filepath.Join(tmp, "budget.csv"), []byte("a,b\n1,2\n"), 0644)
	os.WriteFile(filepath.Join(tmp, "reports", "q1.json"), []byte(`{"maxRows":1,"maxCols":1,"cells":[]}`), 0644)
	os.WriteFile(filepath.Join(tmp, "readme.txt"), []byte("not a workbook"), 0644)
	os.WriteFile(filepath.Join(tmp, ".git", "hidden.csv"), []byte("x\n"), 0644)

	w := NewWalker(4)
	entries, err := w.Find(context.Background(), tmp)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 workbooks, got %d: %+v", len(entries), entries)
	}

	// Path-sorted
	if entries[0].Name != "budget.csv" || entries[0].Kind != "csv" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Name != "q1.json" || entries[1].Kind != "json" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}

	if entries[0].Size == 0 {
		t.Error("expected non-zero size")
	}
	if entries[0].ModTime.IsZero() {
		t.Error("expected a modification time")
	}
}

func TestWalkerProgressCloses(t *testing.T) {
	tmp := t.TempDir()
	os.WriteFile(filepath.Join(tmp, "one.csv"), []byte("a\n"), 0644)

	w := NewWalker(2)
	if _, err := w.Find(context.Background(), tmp); err != nil {
		t.Fatalf("find failed: %v", err)
	}

	// Small trees emit no reports, so the first receive sees the close
	if _, open := <-w.Progress(); open {
		t.Error("expected progress channel to be closed after Find")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"Budget.XLSX", "xlsx"},
		{"data/q1.json", "json"},
		{"export.csv", "csv"},
		{"readme.txt", ""},
		{"noextension", ""},
		{"archive.csv.bak", ""},
	}

	for _, tt := range tests {
		if got := KindOf(tt.path); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

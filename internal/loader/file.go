package loader

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/Carrerajorge/Hola-sub011/internal/grid"
	"github.com/Carrerajorge/Hola-sub011/internal/logging"
)

// Minimum dimensions for file-backed grids, so small files still present a
// sheet worth of scrollable space.
const (
	minFileRows = 100
	minFileCols = 26
)

// FileSource serves chunks from a fully parsed workbook file. Parsing
// happens once at open; FetchChunk is then a range query against the
// backing grid.
type FileSource struct {
	name       string
	backing    *grid.SparseGrid
	colWidths  map[int]float64
	rowHeights map[int]float64
}

// NewGridSource wraps an in-memory grid as a Source, e.g. one restored
// from a snapshot.
func NewGridSource(name string, g *grid.SparseGrid) *FileSource {
	return &FileSource{name: name, backing: g}
}

func (f *FileSource) Name() string { return f.name }

func (f *FileSource) Dims() (int, int) { return f.backing.Rows(), f.backing.Cols() }

func (f *FileSource) Overrides() (map[int]float64, map[int]float64) {
	return f.colWidths, f.rowHeights
}

func (f *FileSource) FetchChunk(ctx context.Context, startRow, endRow, startCol, endCol int) ([]grid.PlacedCell, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.backing.CellsInRange(startRow, endRow, startCol, endCol), nil
}

// OpenPath sniffs the file format and returns the matching source.
// Detection uses magic numbers first and falls back to the extension.
func OpenPath(path string) (Source, error) {
	format := ""
	if mtype, err := mimetype.DetectFile(path); err == nil {
		switch {
		case mtype.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
			format = "xlsx"
		case mtype.Is("application/json"):
			format = "json"
		case mtype.Is("text/csv"):
			format = "csv"
		}
		logging.Loader.Printf("[Open] %s detected as %s", path, mtype.String())
	}
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx":
			format = "xlsx"
		case ".json":
			format = "json"
		case ".csv":
			format = "csv"
		}
	}

	switch format {
	case "xlsx":
		return OpenXLSX(path)
	case "json":
		return OpenJSON(path)
	case "csv":
		return OpenCSV(path)
	default:
		return nil, fmt.Errorf("unsupported workbook format: %s", path)
	}
}

// OpenJSON reads a workbook in the grid wire format
// {"maxRows":..,"maxCols":..,"cells":[..]}.
func OpenJSON(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snap grid.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &FileSource{name: path, backing: grid.FromSnapshot(snap)}, nil
}

// OpenCSV reads a delimited file, storing numeric-looking fields as
// numbers and everything else as text.
func OpenCSV(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	rows := len(records)
	cols := 0
	for _, rec := range records {
		if len(rec) > cols {
			cols = len(rec)
		}
	}
	if rows < minFileRows {
		rows = minFileRows
	}
	if cols < minFileCols {
		cols = minFileCols
	}

	g := grid.New(rows, cols)
	for ri, rec := range records {
		for ci, field := range rec {
			if field == "" {
				continue
			}
			if n, err := strconv.ParseFloat(field, 64); err == nil {
				g.PutCell(ri, ci, grid.Cell{Value: n})
				continue
			}
			g.PutCell(ri, ci, grid.Cell{Value: field})
		}
	}

	logging.Loader.Printf("[Open] %s: %d records, %d cells", path, len(records), g.Len())
	return &FileSource{name: path, backing: g}, nil
}

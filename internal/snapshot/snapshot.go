package snapshot

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Carrerajorge/Hola-sub011/internal/grid"
)

const (
	filePrefix = "grid-"
	fileSuffix = ".gob.gz"
	timeLayout = "20060102-150405"
)

func init() {
	// Cell values travel through an interface field, so the concrete
	// types must be registered for gob.
	gob.Register("")
	gob.Register(float64(0))
	gob.Register(false)
	gob.Register(int(0))
}

// Store handles saving and loading grid snapshots
type Store struct {
	dir string
}

// NewStore creates a new store in the given directory
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the default snapshot directory
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".holagrid"
	}
	return filepath.Join(home, ".holagrid", "snapshots")
}

// Save writes a timestamped snapshot and returns its path
func (s *Store) Save(snap grid.Snapshot) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	filename := fmt.Sprintf("%s%s%s",
		filePrefix,
		time.Now().Format(timeLayout),
		fileSuffix)

	path := filepath.Join(s.dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	defer gzWriter.Close()

	encoder := gob.NewEncoder(gzWriter)
	if err := encoder.Encode(&snap); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}

	return path, nil
}

// List returns all snapshot paths, oldest first
func (s *Store) List() ([]string, error) {
	pattern := filepath.Join(s.dir, filePrefix+"*"+fileSuffix)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob: %w", err)
	}
	// Filenames embed the timestamp, so a string sort is chronological
	sort.Strings(files)
	return files, nil
}

// LoadLatest loads the most recent snapshot
func (s *Store) LoadLatest() (grid.Snapshot, error) {
	files, err := s.List()
	if err != nil {
		return grid.Snapshot{}, err
	}
	if len(files) == 0 {
		return grid.Snapshot{}, fmt.Errorf("no snapshot in %s", s.dir)
	}
	return Load(files[len(files)-1])
}

// Load reads one snapshot file
func Load(path string) (grid.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return grid.Snapshot{}, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return grid.Snapshot{}, fmt.Errorf("gzip reader: %w", err)
	}
	defer gzReader.Close()

	var snap grid.Snapshot
	decoder := gob.NewDecoder(gzReader)
	if err := decoder.Decode(&snap); err != nil {
		return grid.Snapshot{}, fmt.Errorf("decode: %w", err)
	}

	return snap, nil
}

// Timestamp returns the timestamp of the latest snapshot
func (s *Store) Timestamp() (time.Time, error) {
	files, err := s.List()
	if err != nil {
		return time.Time{}, err
	}
	if len(files) == 0 {
		return time.Time{}, fmt.Errorf("no snapshot")
	}

	latest := files[len(files)-1]

	// Extract timestamp from filename
	base := filepath.Base(latest)
	base = strings.TrimSuffix(base, fileSuffix)
	base = strings.TrimPrefix(base, filePrefix)

	return time.Parse(timeLayout, base)
}

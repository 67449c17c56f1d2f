// Package datasource detects what kind of input file a dataset path points
// at and reads path rows out of SQLite databases. Text formats (CSV, JSONL)
// are delegated to pkg/loader.
package datasource

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies the kind of dataset file.
type SourceType string

const (
	SourceTypeSQLite SourceType = "sqlite"
	SourceTypeJSONL  SourceType = "jsonl"
	SourceTypeCSV    SourceType = "csv"
)

// DataSource describes a dataset file on disk.
type DataSource struct {
	Type    SourceType
	Path    string // absolute
	ModTime time.Time
	Size    int64
}

// String returns a human-readable description of the source.
func (s DataSource) String() string {
	return fmt.Sprintf("%s (%s, mod=%s, %d bytes)",
		s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.Size)
}

// sqliteMagic is the 16-byte header every SQLite 3 database starts with.
var sqliteMagic = []byte("SQLite format 3\x00")

// Detect classifies the file at path. Extension wins; extensionless files
// are sniffed for the SQLite header so `tv data` works on bare db files.
func Detect(path string) (DataSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return DataSource{}, fmt.Errorf("stat dataset: %w", err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("dataset %s is a directory", abs)
	}

	src := DataSource{Path: abs, ModTime: info.ModTime(), Size: info.Size()}

	switch strings.ToLower(filepath.Ext(abs)) {
	case ".db", ".sqlite", ".sqlite3":
		src.Type = SourceTypeSQLite
	case ".jsonl", ".ndjson":
		src.Type = SourceTypeJSONL
	case ".csv", ".tsv":
		src.Type = SourceTypeCSV
	default:
		if hasSQLiteHeader(abs) {
			src.Type = SourceTypeSQLite
		} else {
			src.Type = SourceTypeCSV
		}
	}
	return src, nil
}

func hasSQLiteHeader(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := f.Read(header); err != nil {
		return false
	}
	return bytes.Equal(header, sqliteMagic)
}

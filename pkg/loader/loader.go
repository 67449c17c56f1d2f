// Package loader extracts folder-path rows from tabular inputs. Each input
// row is a sequence of cells; non-empty trimmed cells are joined with "/" to
// form one path, mirroring spreadsheet rows where trailing cells may be
// blank. Malformed rows are skipped with a warning, never a crash.
package loader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/treescope/pkg/tree"
)

// DefaultMaxBufferSize is the maximum JSONL line size (10MB).
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures row parsing.
type ParseOptions struct {
	// WarningHandler is called with recoverable anomalies (malformed rows,
	// oversized lines). If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)

	// BufferSize caps the JSONL line size in bytes. Longer lines are
	// skipped with a warning. 0 means DefaultMaxBufferSize.
	BufferSize int

	// Comma is the CSV field delimiter. 0 means ','.
	Comma rune

	// SkipHeader drops the first CSV record.
	SkipHeader bool
}

func (o ParseOptions) warn() func(string) {
	if o.WarningHandler != nil {
		return o.WarningHandler
	}
	return func(msg string) {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
	}
}

// LoadRows reads path rows from a file, choosing the parser by extension:
// .jsonl/.ndjson are parsed as JSON lines, everything else as CSV (.tsv
// switches the delimiter to a tab).
func LoadRows(path string, opts ParseOptions) ([]tree.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return ParseJSONL(f, opts)
	case ".tsv":
		if opts.Comma == 0 {
			opts.Comma = '\t'
		}
		return ParseCSV(f, opts)
	default:
		return ParseCSV(f, opts)
	}
}

// LoadAll loads several files concurrently and concatenates their rows in
// argument order, so the merged tree is deterministic regardless of which
// file finishes first.
func LoadAll(ctx context.Context, paths []string, opts ParseOptions) ([]tree.Row, error) {
	results := make([][]tree.Row, len(paths))

	g, _ := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			rows, err := LoadRows(p, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []tree.Row
	for _, rows := range results {
		merged = append(merged, rows...)
	}
	return merged, nil
}

// ParseCSV reads CSV records and joins each record's non-empty trimmed
// cells with "/". Records with no usable cells are dropped silently, like
// blank spreadsheet rows.
func ParseCSV(r io.Reader, opts ParseOptions) ([]tree.Row, error) {
	warn := opts.warn()

	br := bufio.NewReader(r)
	stripReaderBOM(br)

	cr := csv.NewReader(br)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1 // rows may have ragged widths
	cr.LazyQuotes = true

	var rows []tree.Row
	recNum := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		recNum++
		if err != nil {
			warn(fmt.Sprintf("skipping malformed CSV record %d: %v", recNum, err))
			continue
		}
		if opts.SkipHeader && recNum == 1 {
			continue
		}
		if path, ok := joinCells(rec); ok {
			rows = append(rows, tree.Row{Path: path})
		}
	}
	return rows, nil
}

// jsonlRow is the object form of a JSONL line. The array form (a bare JSON
// array of cells) is handled separately.
type jsonlRow struct {
	Path     string            `json:"path"`
	Cells    []any             `json:"cells"`
	Metadata map[string]string `json:"metadata"`
}

// ParseJSONL reads one row per line. A line is either a JSON array of cells
// or an object with "path"/"cells" and optional "metadata". Scalar cells are
// stringified the way the original spreadsheet ingestion did; cells that are
// themselves arrays or objects make the row invalid.
func ParseJSONL(r io.Reader, opts ParseOptions) ([]tree.Row, error) {
	warn := opts.warn()

	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}

	reader := bufio.NewReaderSize(r, maxCapacity)
	var rows []tree.Row
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("reading rows at line %d: %w", lineNum, err)
		}

		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			for isPrefix {
				_, isPrefix, err = reader.ReadLine()
				if err == io.EOF {
					break
				}
				if err != nil {
					return nil, fmt.Errorf("skipping long line at line %d: %w", lineNum, err)
				}
			}
			continue
		}

		if lineNum == 1 {
			line = stripBOM(line)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		row, err := decodeJSONLRow(line)
		if err != nil {
			warn(fmt.Sprintf("skipping line %d: %v", lineNum, err))
			continue
		}
		if row.Path != "" {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func decodeJSONLRow(line []byte) (tree.Row, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var cells []any
		if err := json.Unmarshal(trimmed, &cells); err != nil {
			return tree.Row{}, fmt.Errorf("malformed JSON row: %w", err)
		}
		path, err := joinAnyCells(cells)
		if err != nil {
			return tree.Row{}, err
		}
		return tree.Row{Path: path}, nil
	}

	var obj jsonlRow
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return tree.Row{}, fmt.Errorf("malformed JSON row: %w", err)
	}
	if obj.Path != "" {
		return tree.Row{Path: obj.Path, Metadata: obj.Metadata}, nil
	}
	path, err := joinAnyCells(obj.Cells)
	if err != nil {
		return tree.Row{}, err
	}
	return tree.Row{Path: path, Metadata: obj.Metadata}, nil
}

// joinCells joins non-empty trimmed string cells with "/". ok is false when
// every cell is blank.
func joinCells(cells []string) (string, bool) {
	var parts []string
	for _, c := range cells {
		if s := strings.TrimSpace(c); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "/"), true
}

// joinAnyCells stringifies scalar cells and joins them. Null cells are
// skipped like blank spreadsheet cells; composite cells are invalid input.
func joinAnyCells(cells []any) (string, error) {
	var parts []string
	for i, c := range cells {
		switch v := c.(type) {
		case nil:
			continue
		case string:
			if s := strings.TrimSpace(v); s != "" {
				parts = append(parts, s)
			}
		case float64:
			parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			parts = append(parts, strconv.FormatBool(v))
		default:
			return "", &tree.InvalidInputError{Index: i, Value: c}
		}
	}
	return strings.Join(parts, "/"), nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present.
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

// stripReaderBOM consumes a leading BOM without disturbing other bytes.
func stripReaderBOM(br *bufio.Reader) {
	if peek, err := br.Peek(3); err == nil && bytes.Equal(peek, []byte{0xEF, 0xBB, 0xBF}) {
		br.Discard(3)
	}
}

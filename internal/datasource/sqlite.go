package datasource

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/treescope/pkg/tree"
)

// SQLiteReader provides read access to a dataset stored as a SQLite table.
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading.
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	// Open in read-only mode with pragmas tuned for one-shot reads.
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		db.Exec(pragma) // non-fatal
	}

	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection.
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadRows reads path rows from the `paths` table. The full schema carries
// per-row metadata columns; databases exported by older tooling only have
// the path column, so the query degrades to that.
func (r *SQLiteReader) LoadRows() ([]tree.Row, error) {
	query := `
		SELECT path, size, owner, classification, created
		FROM paths
		ORDER BY rowid
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return r.loadRowsSimple()
	}
	defer rows.Close()

	var out []tree.Row
	for rows.Next() {
		var path string
		var size, owner, classification, created sql.NullString

		if err := rows.Scan(&path, &size, &owner, &classification, &created); err != nil {
			continue
		}

		md := make(map[string]string, 4)
		for key, v := range map[string]sql.NullString{
			"size":           size,
			"owner":          owner,
			"classification": classification,
			"created":        created,
		} {
			if v.Valid && v.String != "" {
				md[key] = v.String
			}
		}
		if len(md) == 0 {
			md = nil
		}
		out = append(out, tree.Row{Path: path, Metadata: md})
	}
	return out, rows.Err()
}

// loadRowsSimple reads only the path column.
func (r *SQLiteReader) loadRowsSimple() ([]tree.Row, error) {
	rows, err := r.db.Query(`SELECT path FROM paths ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query paths: %w", err)
	}
	defer rows.Close()

	var out []tree.Row
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			continue
		}
		out = append(out, tree.Row{Path: path})
	}
	return out, rows.Err()
}

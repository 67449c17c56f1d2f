package datasource

import (
	"fmt"

	"github.com/vanderheijden86/treescope/pkg/loader"
	"github.com/vanderheijden86/treescope/pkg/tree"
)

// Load detects the source type and reads all path rows from it.
func Load(path string, opts loader.ParseOptions) ([]tree.Row, error) {
	src, err := Detect(path)
	if err != nil {
		return nil, err
	}

	switch src.Type {
	case SourceTypeSQLite:
		r, err := NewSQLiteReader(src)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.LoadRows()
	case SourceTypeJSONL, SourceTypeCSV:
		return loader.LoadRows(src.Path, opts)
	default:
		return nil, fmt.Errorf("unsupported source type %q", src.Type)
	}
}

package reader

import (
	"fmt"
	"path/filepath"
	"strings"
)

// maxFiles bounds glob expansion
const maxFiles = 1000

// Format names an input file format
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// Data is a loaded table: a schema fixing column order, and rows keyed by
// column name.
type Data struct {
	Schema Schema
	Rows   []map[string]interface{}
}

// Columns returns the column names in schema order
func (d *Data) Columns() []string {
	return d.Schema.Names()
}

// ReadTable loads every file matching pattern and concatenates their rows in
// lexical path order. A pattern without wildcards names a single file. When
// format is empty it is chosen per file from the extension. All files must
// agree on columns.
func ReadTable(pattern string, format Format, schema Schema, opts Options) (*Data, error) {
	paths, err := expandPattern(pattern)
	if err != nil {
		return nil, err
	}

	var out *Data
	for _, path := range paths {
		data, err := readFile(path, format, schema, opts)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = data
			continue
		}
		if !sameColumns(out.Schema, data.Schema) {
			return nil, fmt.Errorf("%w: %s has columns [%s], expected [%s]", ErrSchemaMismatch, path, data.Schema, out.Schema)
		}
		out.Rows = append(out.Rows, data.Rows...)
	}
	return out, nil
}

func expandPattern(pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[") {
		return []string{pattern}, nil
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match pattern: %s", pattern)
	}
	if len(matches) > maxFiles {
		return nil, fmt.Errorf("glob pattern matched too many files (%d), maximum is %d", len(matches), maxFiles)
	}
	return matches, nil
}

func readFile(path string, format Format, schema Schema, opts Options) (*Data, error) {
	if format == "" {
		format = FormatOf(path)
	}
	switch format {
	case FormatCSV:
		return ReadCSV(path, schema, opts)
	case FormatParquet:
		return ReadParquet(path, schema)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// FormatOf guesses the format from a file extension, defaulting to CSV
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FormatParquet
	}
	return FormatCSV
}

func sameColumns(a, b Schema) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i].Name, b[i].Name) || a[i].Type != b[i].Type {
			return false
		}
	}
	return true
}

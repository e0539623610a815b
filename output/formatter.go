package output

import (
	"fmt"
	"io"
	"strings"
)

// Formatter writes a result set. Columns fixes the output order; rows are
// keyed by column name.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(columns []string, rows []map[string]interface{}) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// Options tune the table formatter; the other formats ignore them.
type Options struct {
	NumRows  int
	Truncate bool
}

// DefaultOptions matches Spark's show()
func DefaultOptions() Options {
	return Options{NumRows: DefaultNumRows, Truncate: true}
}

// Formats lists the accepted format names
var Formats = []string{"table", "csv", "json", "jsonl"}

// New returns the formatter for a format name
func New(format string, w io.Writer, opts Options) (Formatter, error) {
	switch strings.ToLower(format) {
	case "table", "":
		return NewTableFormatter(w, opts.NumRows, opts.Truncate), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "json", "jsonl":
		return NewJSONFormatter(w), nil
	}
	return nil, fmt.Errorf("unsupported format '%s' (supported: %s)", format, strings.Join(Formats, ", "))
}

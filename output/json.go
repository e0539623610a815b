package output

import (
	"bufio"
	"encoding/json"
	"io"
	"time"

	"github.com/vegasq/dinersql/query"
)

// JSONFormatter outputs rows as JSON Lines, keys in column order
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON Lines formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes one JSON object per row. Dates are encoded as yyyy-mm-dd
// strings.
func (j *JSONFormatter) Format(columns []string, rows []map[string]interface{}) error {
	w := bufio.NewWriter(j.writer)

	for _, row := range rows {
		if err := w.WriteByte('{'); err != nil {
			return err
		}
		for i, col := range columns {
			if i > 0 {
				_ = w.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return err
			}
			value, err := json.Marshal(jsonValue(row[col]))
			if err != nil {
				return err
			}
			_, _ = w.Write(key)
			_ = w.WriteByte(':')
			_, _ = w.Write(value)
		}
		if _, err := w.WriteString("}\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}

func jsonValue(v interface{}) interface{} {
	if t, ok := v.(time.Time); ok {
		return query.FormatValue(t)
	}
	return v
}

package output

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/vegasq/dinersql/query"
)

const (
	// DefaultNumRows is how many rows show() prints by default
	DefaultNumRows = 20
	// truncateWidth is the longest cell printed in full when truncating
	truncateWidth = 20
)

// TableFormatter renders rows as a boxed ASCII table in the style of
// Spark's DataFrame.show().
type TableFormatter struct {
	writer   io.Writer
	numRows  int
	truncate bool
}

// NewTableFormatter prints at most numRows rows (all rows when numRows <= 0).
// With truncate, cells longer than 20 characters are cut to 17 plus "...".
func NewTableFormatter(w io.Writer, numRows int, truncate bool) *TableFormatter {
	return &TableFormatter{writer: w, numRows: numRows, truncate: truncate}
}

// SetOutput sets the output writer
func (f *TableFormatter) SetOutput(w io.Writer) {
	f.writer = w
}

// Format writes the table followed by a footer when rows were cut off
func (f *TableFormatter) Format(columns []string, rows []map[string]interface{}) error {
	shown := rows
	if f.numRows > 0 && len(rows) > f.numRows {
		shown = rows[:f.numRows]
	}

	table := tablewriter.NewWriter(f.writer)
	table.SetHeader(columns)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetCenterSeparator("+")
	table.SetColumnSeparator("|")
	table.SetRowSeparator("-")

	for _, row := range shown {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = f.cell(row[col])
		}
		table.Append(record)
	}
	table.Render()

	if len(shown) < len(rows) {
		noun := "rows"
		if len(shown) == 1 {
			noun = "row"
		}
		if _, err := fmt.Fprintf(f.writer, "only showing top %d %s\n", len(shown), noun); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(f.writer)
	return err
}

func (f *TableFormatter) cell(v interface{}) string {
	s := query.FormatValue(v)
	if !f.truncate {
		return s
	}
	runes := []rune(s)
	if len(runes) > truncateWidth {
		return string(runes[:truncateWidth-3]) + "..."
	}
	return s
}

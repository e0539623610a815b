package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vegasq/dinersql/frame"
	"github.com/vegasq/dinersql/reader"
)

// DataFrameReader loads files into DataFrames. Settings accumulate through
// chained calls; the first invalid one fails the final load.
type DataFrameReader struct {
	session *Session
	format  reader.Format
	schema  reader.Schema
	options map[string]string
	err     error
}

// Read starts a load
func (s *Session) Read() *DataFrameReader {
	return &DataFrameReader{session: s, options: make(map[string]string)}
}

// Schema declares the column names and types as DDL, e.g.
// "customer_id STRING, join_date DATE"
func (r *DataFrameReader) Schema(ddl string) *DataFrameReader {
	schema, err := reader.ParseSchema(ddl)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("schema: %w", err)
	}
	r.schema = schema
	return r
}

// Option sets a CSV option: header, sep or nullValue
func (r *DataFrameReader) Option(key, value string) *DataFrameReader {
	r.options[key] = value
	return r
}

// Format forces a file format; by default it follows the file extension
func (r *DataFrameReader) Format(format string) *DataFrameReader {
	r.format = reader.Format(strings.ToLower(format))
	return r
}

// CSV loads delimited text files matching pattern
func (r *DataFrameReader) CSV(pattern string) *frame.DataFrame {
	return r.Format(string(reader.FormatCSV)).Load(pattern)
}

// Parquet loads parquet files matching pattern
func (r *DataFrameReader) Parquet(pattern string) *frame.DataFrame {
	return r.Format(string(reader.FormatParquet)).Load(pattern)
}

// Load reads the files matching pattern. The DataFrame is named after the
// file, without extension, so its columns can be qualified in joins.
func (r *DataFrameReader) Load(pattern string) *frame.DataFrame {
	if r.err != nil {
		return frame.Errorf("read %s: %w", pattern, r.err)
	}
	opts, err := reader.ParseOptions(r.options)
	if err != nil {
		return frame.Errorf("read %s: %w", pattern, err)
	}

	data, err := reader.ReadTable(pattern, r.format, r.schema, opts)
	if err != nil {
		return frame.Errorf("read %s: %w", pattern, err)
	}
	r.session.log.Debugf("loaded %d rows from %s", len(data.Rows), pattern)
	return r.session.DataFrame(tableName(pattern), data.Columns(), data.Rows)
}

// tableName derives a qualifier from a path: "data/sales.csv" gives "sales".
// Glob patterns yield no name.
func tableName(pattern string) string {
	if strings.ContainsAny(pattern, "*?[") {
		return ""
	}
	base := filepath.Base(pattern)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

package reader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Options control how delimited text files are parsed
type Options struct {
	// Header reports whether the first record holds column names
	Header bool
	// Delimiter separates fields; ',' when zero
	Delimiter rune
	// NullValue is the field text read as NULL. Empty fields are always NULL.
	NullValue string
}

// DefaultOptions matches the layout of the bundled data files
func DefaultOptions() Options {
	return Options{Header: true, Delimiter: ','}
}

// ParseOptions builds Options from reader option pairs. Recognized keys are
// header, sep (or delimiter) and nullValue; keys are case-insensitive.
func ParseOptions(pairs map[string]string) (Options, error) {
	opts := DefaultOptions()
	for key, value := range pairs {
		switch strings.ToLower(key) {
		case "header":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return opts, fmt.Errorf("option header: %q is not a boolean", value)
			}
			opts.Header = b
		case "sep", "delimiter":
			if utf8.RuneCountInString(value) != 1 {
				return opts, fmt.Errorf("option %s: delimiter must be a single character, got %q", key, value)
			}
			opts.Delimiter, _ = utf8.DecodeRuneInString(value)
		case "nullvalue":
			opts.NullValue = value
		default:
			return opts, fmt.Errorf("unknown reader option %q", key)
		}
	}
	return opts, nil
}

// ReadCSV loads a delimited text file. With a schema each record must have
// exactly len(schema) fields and each field is converted to its declared
// type; the header row, when present, is skipped and not checked against
// the schema names. Without a schema the header names the columns and every
// value is kept as a string.
func ReadCSV(path string, schema Schema, opts Options) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := parseCSV(f, path, schema, opts)
	if err != nil {
		return nil, err
	}
	log.Debugf("read %d rows from %s", len(data.Rows), path)
	return data, nil
}

func parseCSV(in io.Reader, path string, schema Schema, opts Options) (*Data, error) {
	r := csv.NewReader(in)
	if opts.Delimiter != 0 {
		r.Comma = opts.Delimiter
	}
	r.FieldsPerRecord = -1

	if opts.Header {
		header, err := r.Read()
		if errors.Is(err, io.EOF) {
			if schema == nil {
				return nil, fmt.Errorf("%s: empty file has no header", path)
			}
			return &Data{Schema: schema}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if schema == nil {
			if schema, err = headerSchema(header); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	if schema == nil {
		return nil, fmt.Errorf("%s: a schema is required when the file has no header", path)
	}

	data := &Data{Schema: schema}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		line, _ := r.FieldPos(0)

		if len(record) != len(schema) {
			return nil, fmt.Errorf("%s:%d: %w: expected %d fields, got %d", path, line, ErrSchemaMismatch, len(schema), len(record))
		}

		row := make(map[string]interface{}, len(schema))
		for i, col := range schema {
			field := record[i]
			if field == "" || (opts.NullValue != "" && field == opts.NullValue) {
				row[col.Name] = nil
				continue
			}
			v, err := col.Type.Coerce(field)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: column %s: %w", path, line, col.Name, err)
			}
			row[col.Name] = v
		}
		data.Rows = append(data.Rows, row)
	}
	return data, nil
}

func headerSchema(header []string) (Schema, error) {
	schema := make(Schema, 0, len(header))
	seen := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			return nil, fmt.Errorf("header column %d has no name", i+1)
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("duplicate header column %s", name)
		}
		seen[strings.ToLower(name)] = true
		schema = append(schema, Column{Name: name, Type: TypeString})
	}
	return schema, nil
}

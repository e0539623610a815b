package reader

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrSchemaMismatch is returned when input data does not fit the declared
// schema: wrong column count or a value that cannot be converted.
var ErrSchemaMismatch = errors.New("schema mismatch")

// DateLayout is the text form of DATE values in input files
const DateLayout = "2006-01-02"

// ColumnType is the declared type of a column
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeDouble
	TypeBool
	TypeDate
)

var typeNames = map[string]ColumnType{
	"STRING":  TypeString,
	"VARCHAR": TypeString,
	"INT":     TypeInt,
	"INTEGER": TypeInt,
	"BIGINT":  TypeInt,
	"LONG":    TypeInt,
	"DOUBLE":  TypeDouble,
	"FLOAT":   TypeDouble,
	"BOOLEAN": TypeBool,
	"BOOL":    TypeBool,
	"DATE":    TypeDate,
}

func (t ColumnType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeInt:
		return "INT"
	case TypeDouble:
		return "DOUBLE"
	case TypeBool:
		return "BOOLEAN"
	case TypeDate:
		return "DATE"
	}
	return "UNKNOWN"
}

// Column is one named, typed column of a schema
type Column struct {
	Name string
	Type ColumnType
}

// Schema is an ordered list of columns
type Schema []Column

// ParseSchema parses a DDL column list such as
// "customer_id STRING, join_date DATE". Type names are case-insensitive.
func ParseSchema(ddl string) (Schema, error) {
	var schema Schema
	seen := make(map[string]bool)

	for _, part := range strings.Split(ddl, ",") {
		fields := strings.Fields(part)
		if len(fields) != 2 {
			return nil, fmt.Errorf("invalid column definition %q: expected \"name TYPE\"", strings.TrimSpace(part))
		}

		name := strings.Trim(fields[0], "`")
		typ, ok := typeNames[strings.ToUpper(fields[1])]
		if !ok {
			return nil, fmt.Errorf("unsupported type %q for column %s", fields[1], name)
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("duplicate column %s in schema", name)
		}
		seen[strings.ToLower(name)] = true

		schema = append(schema, Column{Name: name, Type: typ})
	}
	return schema, nil
}

// Names returns the column names in order
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// String renders the schema as DDL
func (s Schema) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.Name + " " + c.Type.String()
	}
	return strings.Join(parts, ", ")
}

// Coerce converts a raw value read from a file to the column type. Text,
// Go numeric kinds and parquet DATE day counts are accepted; nil stays nil.
func (t ColumnType) Coerce(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}

	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil

	case TypeInt:
		switch n := v.(type) {
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not an integer", ErrSchemaMismatch, n)
			}
			return i, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case uint32:
			return int64(n), nil
		case float64:
			if n == math.Trunc(n) {
				return int64(n), nil
			}
		}

	case TypeDouble:
		switch n := v.(type) {
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", ErrSchemaMismatch, n)
			}
			return f, nil
		case float32:
			return float64(n), nil
		case float64:
			return n, nil
		case int32:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}

	case TypeBool:
		switch b := v.(type) {
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a boolean", ErrSchemaMismatch, b)
			}
			return parsed, nil
		case bool:
			return b, nil
		}

	case TypeDate:
		switch d := v.(type) {
		case string:
			parsed, err := time.Parse(DateLayout, strings.TrimSpace(d))
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a yyyy-mm-dd date", ErrSchemaMismatch, d)
			}
			return parsed, nil
		case int32:
			// parquet DATE: days since the Unix epoch
			return time.Unix(int64(d)*86400, 0).UTC(), nil
		case time.Time:
			u := d.UTC()
			return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return nil, fmt.Errorf("%w: cannot convert %T to %s", ErrSchemaMismatch, v, t)
}

package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var conversionFunctions = []Function{
	&scalarFunc{name: "CAST", min: 2, max: 2, fn: func(args []interface{}) (interface{}, error) {
		return castArgs("CAST", args)
	}},
	&scalarFunc{name: "TRY_CAST", min: 2, max: 2, fn: func(args []interface{}) (interface{}, error) {
		v, err := castArgs("TRY_CAST", args)
		if err != nil {
			return nil, nil
		}
		return v, nil
	}},
	&scalarFunc{name: "TO_STRING", min: 1, max: 1, fn: func(args []interface{}) (interface{}, error) {
		return FormatValue(args[0]), nil
	}},
	&scalarFunc{name: "TO_NUMBER", min: 1, max: 1, fn: func(args []interface{}) (interface{}, error) {
		if s, ok := args[0].(string); ok {
			s = strings.TrimSpace(s)
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n, nil
			}
			return castValue(s, "DOUBLE")
		}
		if _, ok := toFloat64(args[0]); ok {
			return normalizeValue(args[0]), nil
		}
		return nil, fmt.Errorf("TO_NUMBER: cannot convert %T", args[0])
	}},
	&scalarFunc{name: "TO_DATE", min: 1, max: 1, fn: func(args []interface{}) (interface{}, error) {
		return castValue(args[0], "DATE")
	}},
}

// castArgs evaluates CAST(value, 'TYPE'). The parser rewrites
// CAST(value AS TYPE) to this form.
func castArgs(name string, args []interface{}) (interface{}, error) {
	typeName, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("%s: expected type name, got %T", name, args[1])
	}
	v, err := castValue(args[0], typeName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

// castValue converts v to a STRING, INT, DOUBLE, BOOLEAN or DATE value
func castValue(v interface{}, typeName string) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	v = normalizeValue(v)

	switch strings.ToUpper(strings.TrimSpace(typeName)) {
	case "STRING", "VARCHAR", "TEXT":
		return FormatValue(v), nil

	case "INT", "INTEGER", "BIGINT", "LONG":
		switch n := v.(type) {
		case int64:
			return n, nil
		case float64:
			if math.IsNaN(n) || n > math.MaxInt64 || n < math.MinInt64 {
				return nil, fmt.Errorf("%v out of integer range", n)
			}
			return int64(n), nil
		case bool:
			if n {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			s := strings.TrimSpace(n)
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i, nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return castValue(f, "INT")
			}
			return nil, fmt.Errorf("%q is not an integer", n)
		}

	case "DOUBLE", "FLOAT", "DECIMAL", "NUMBER":
		switch n := v.(type) {
		case int64:
			return float64(n), nil
		case float64:
			return n, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			if err != nil {
				return nil, fmt.Errorf("%q is not a number", n)
			}
			return f, nil
		}

	case "BOOLEAN", "BOOL":
		switch b := v.(type) {
		case bool:
			return b, nil
		case int64:
			return b != 0, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(b))
			if err != nil {
				return nil, fmt.Errorf("%q is not a boolean", b)
			}
			return parsed, nil
		}

	case "DATE":
		if t, ok := toDate(v); ok {
			return truncateDate(t), nil
		}
		if s, ok := v.(string); ok {
			return nil, fmt.Errorf("%q is not a date", s)
		}

	default:
		return nil, fmt.Errorf("unknown type %s", typeName)
	}

	return nil, fmt.Errorf("cannot convert %T to %s", v, strings.ToUpper(typeName))
}

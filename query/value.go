package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the text form of DATE values
const DateLayout = "2006-01-02"

// normalizeValue widens integer and float kinds to int64 and float64.
func normalizeValue(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}
		return float64(n)
	case float32:
		return float64(n)
	}
	return v
}

// toFloat64 converts numeric values to float64
func toFloat64(v interface{}) (float64, bool) {
	switch n := normalizeValue(v).(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// toInt64 converts integer values to int64
func toInt64(v interface{}) (int64, bool) {
	n, ok := normalizeValue(v).(int64)
	return n, ok
}

// toDate converts a time.Time or date string to a time.Time
func toDate(v interface{}) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, strings.TrimSpace(d)); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// compareOrdered returns -1, 0 or 1 for two non-nil values of compatible
// types. Dates compare with date strings.
func compareOrdered(left, right interface{}) (int, error) {
	left, right = normalizeValue(left), normalizeValue(right)

	if li, ok := left.(int64); ok {
		if ri, ok := right.(int64); ok {
			return cmpInt64(li, ri), nil
		}
	}
	if lf, ok := toFloat64(left); ok {
		if rf, ok := toFloat64(right); ok {
			return cmpFloat64(lf, rf), nil
		}
	}

	_, leftIsTime := left.(time.Time)
	_, rightIsTime := right.(time.Time)
	if leftIsTime || rightIsTime {
		lt, lok := toDate(left)
		rt, rok := toDate(right)
		if lok && rok {
			return lt.Compare(rt), nil
		}
	}

	if ls, ok := left.(string); ok {
		if rs, ok := right.(string); ok {
			return strings.Compare(ls, rs), nil
		}
	}

	if lb, ok := left.(bool); ok {
		if rb, ok := right.(bool); ok {
			switch {
			case lb == rb:
				return 0, nil
			case !lb:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}

	return 0, fmt.Errorf("cannot compare %T with %T", left, right)
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// compare evaluates left op right. Comparisons involving NULL are false.
func compare(left interface{}, operator TokenType, right interface{}) (bool, error) {
	if left == nil || right == nil {
		return false, nil
	}

	c, err := compareOrdered(left, right)
	if err != nil {
		return false, err
	}

	switch operator {
	case TokenEqual:
		return c == 0, nil
	case TokenNotEqual:
		return c != 0, nil
	case TokenLess:
		return c < 0, nil
	case TokenGreater:
		return c > 0, nil
	case TokenLessEqual:
		return c <= 0, nil
	case TokenGreaterEqual:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("unsupported comparison operator: %v", operator)
	}
}

// compareValues orders two values for sorting. NULL sorts before every
// other value; incomparable types fall back to their text form.
func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	if c, err := compareOrdered(a, b); err == nil {
		return c
	}
	return strings.Compare(FormatValue(a), FormatValue(b))
}

// arithmetic applies + - * / to two values. Integer operands stay integral
// except for division; NULL operands and division by zero yield NULL.
func arithmetic(operator TokenType, left, right interface{}) (interface{}, error) {
	if left == nil || right == nil {
		return nil, nil
	}

	li, lInt := toInt64(left)
	ri, rInt := toInt64(right)
	if lInt && rInt && operator != TokenSlash {
		switch operator {
		case TokenPlus:
			return li + ri, nil
		case TokenMinus:
			return li - ri, nil
		case TokenStar:
			return li * ri, nil
		}
	}

	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if !lok || !rok {
		return nil, fmt.Errorf("arithmetic %v requires numeric operands, got %T and %T", operator, left, right)
	}

	switch operator {
	case TokenPlus:
		return lf + rf, nil
	case TokenMinus:
		return lf - rf, nil
	case TokenStar:
		return lf * rf, nil
	case TokenSlash:
		if rf == 0 {
			return nil, nil
		}
		return lf / rf, nil
	}
	return nil, fmt.Errorf("unsupported arithmetic operator: %v", operator)
}

// FormatValue renders a value the way result tables print it: dates as
// yyyy-mm-dd, whole floats with one decimal, NULL as "null".
func FormatValue(v interface{}) string {
	switch val := normalizeValue(v).(type) {
	case nil:
		return "null"
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) && math.Abs(val) < 1e15 {
			return strconv.FormatFloat(val, 'f', 1, 64)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(DateLayout)
		}
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", val)
	}
}

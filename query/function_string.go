package query

import (
	"fmt"
	"strings"
)

var stringFunctions = []Function{
	&scalarFunc{name: "UPPER", min: 1, max: 1, fn: stringFunc("UPPER", strings.ToUpper)},
	&scalarFunc{name: "LOWER", min: 1, max: 1, fn: stringFunc("LOWER", strings.ToLower)},
	&scalarFunc{name: "TRIM", min: 1, max: 1, fn: stringFunc("TRIM", strings.TrimSpace)},
	&scalarFunc{name: "LTRIM", min: 1, max: 1, fn: stringFunc("LTRIM", func(s string) string {
		return strings.TrimLeft(s, " \t\r\n")
	})},
	&scalarFunc{name: "RTRIM", min: 1, max: 1, fn: stringFunc("RTRIM", func(s string) string {
		return strings.TrimRight(s, " \t\r\n")
	})},
	&scalarFunc{name: "REVERSE", min: 1, max: 1, fn: stringFunc("REVERSE", func(s string) string {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes)
	})},
	&scalarFunc{name: "LENGTH", min: 1, max: 1, fn: func(args []interface{}) (interface{}, error) {
		return int64(len([]rune(FormatValue(args[0])))), nil
	}},
	&scalarFunc{name: "CONCAT", min: 1, max: -1, fn: func(args []interface{}) (interface{}, error) {
		var b strings.Builder
		for _, arg := range args {
			b.WriteString(FormatValue(arg))
		}
		return b.String(), nil
	}},
	&scalarFunc{name: "SUBSTRING", min: 2, max: 3, fn: substringFunc},
	&alias{Function: &scalarFunc{name: "SUBSTRING", min: 2, max: 3, fn: substringFunc}, name: "SUBSTR"},
	&scalarFunc{name: "REPLACE", min: 2, max: 3, fn: func(args []interface{}) (interface{}, error) {
		strs, err := stringArgs("REPLACE", args)
		if err != nil {
			return nil, err
		}
		with := ""
		if len(strs) == 3 {
			with = strs[2]
		}
		if strs[1] == "" {
			return strs[0], nil
		}
		return strings.ReplaceAll(strs[0], strs[1], with), nil
	}},
	&scalarFunc{name: "REPEAT", min: 2, max: 2, fn: func(args []interface{}) (interface{}, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("REPEAT: expected string, got %T", args[0])
		}
		n, ok := toInt64(args[1])
		if !ok {
			return nil, fmt.Errorf("REPEAT: expected integer count, got %T", args[1])
		}
		if n <= 0 {
			return "", nil
		}
		if int64(len(s))*n > MaxQueryLength {
			return nil, fmt.Errorf("REPEAT: result longer than %d bytes", MaxQueryLength)
		}
		return strings.Repeat(s, int(n)), nil
	}},
	&scalarFunc{name: "CONTAINS", min: 2, max: 2, fn: stringPredicate("CONTAINS", strings.Contains)},
	&scalarFunc{name: "STARTSWITH", min: 2, max: 2, fn: stringPredicate("STARTSWITH", strings.HasPrefix)},
	&scalarFunc{name: "ENDSWITH", min: 2, max: 2, fn: stringPredicate("ENDSWITH", strings.HasSuffix)},
	&alias{Function: &scalarFunc{name: "STARTSWITH", min: 2, max: 2, fn: stringPredicate("STARTS_WITH", strings.HasPrefix)}, name: "STARTS_WITH"},
	&alias{Function: &scalarFunc{name: "ENDSWITH", min: 2, max: 2, fn: stringPredicate("ENDS_WITH", strings.HasSuffix)}, name: "ENDS_WITH"},
}

func stringFunc(name string, fn func(string) string) func([]interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%s: expected string, got %T", name, args[0])
		}
		return fn(s), nil
	}
}

func stringPredicate(name string, fn func(s, sub string) bool) func([]interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		strs, err := stringArgs(name, args)
		if err != nil {
			return nil, err
		}
		return fn(strs[0], strs[1]), nil
	}
}

func stringArgs(name string, args []interface{}) ([]string, error) {
	strs := make([]string, len(args))
	for i, arg := range args {
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d: expected string, got %T", name, i+1, arg)
		}
		strs[i] = s
	}
	return strs, nil
}

// substringFunc is SUBSTRING(str, pos [, len]) with a 1-based rune
// position. A negative pos counts from the end of the string.
func substringFunc(args []interface{}) (interface{}, error) {
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("SUBSTRING: expected string, got %T", args[0])
	}
	pos, ok := toInt64(args[1])
	if !ok {
		return nil, fmt.Errorf("SUBSTRING: expected integer position, got %T", args[1])
	}

	runes := []rune(s)
	start := pos - 1
	if pos < 0 {
		start = int64(len(runes)) + pos
	}
	if start < 0 {
		start = 0
	}
	if start >= int64(len(runes)) {
		return "", nil
	}

	end := int64(len(runes))
	if len(args) == 3 {
		n, ok := toInt64(args[2])
		if !ok {
			return nil, fmt.Errorf("SUBSTRING: expected integer length, got %T", args[2])
		}
		if n < 0 {
			return "", nil
		}
		if start+n < end {
			end = start + n
		}
	}
	return string(runes[start:end]), nil
}

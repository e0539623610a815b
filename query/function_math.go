package query

import (
	"fmt"
	"math"
)

var mathFunctions = []Function{
	&scalarFunc{name: "ABS", min: 1, max: 1, fn: func(args []interface{}) (interface{}, error) {
		if n, ok := toInt64(args[0]); ok {
			if n < 0 {
				return -n, nil
			}
			return n, nil
		}
		f, err := floatArg("ABS", args[0])
		if err != nil {
			return nil, err
		}
		return math.Abs(f), nil
	}},
	&scalarFunc{name: "ROUND", min: 1, max: 2, fn: roundFunc},
	&scalarFunc{name: "FLOOR", min: 1, max: 1, fn: integralFunc("FLOOR", math.Floor)},
	&scalarFunc{name: "CEIL", min: 1, max: 1, fn: integralFunc("CEIL", math.Ceil)},
	&alias{Function: &scalarFunc{name: "CEIL", min: 1, max: 1, fn: integralFunc("CEIL", math.Ceil)}, name: "CEILING"},
	&scalarFunc{name: "TRUNC", min: 1, max: 1, fn: integralFunc("TRUNC", math.Trunc)},
	&scalarFunc{name: "MOD", min: 2, max: 2, fn: func(args []interface{}) (interface{}, error) {
		a, aInt := toInt64(args[0])
		b, bInt := toInt64(args[1])
		if aInt && bInt {
			if b == 0 {
				return nil, nil
			}
			return a % b, nil
		}
		x, err := floatArg("MOD", args[0])
		if err != nil {
			return nil, err
		}
		y, err := floatArg("MOD", args[1])
		if err != nil {
			return nil, err
		}
		if y == 0 {
			return nil, nil
		}
		return math.Mod(x, y), nil
	}},
	&scalarFunc{name: "SQRT", min: 1, max: 1, fn: func(args []interface{}) (interface{}, error) {
		f, err := floatArg("SQRT", args[0])
		if err != nil {
			return nil, err
		}
		if f < 0 {
			return nil, nil
		}
		return math.Sqrt(f), nil
	}},
	&scalarFunc{name: "POW", min: 2, max: 2, fn: powFunc},
	&alias{Function: &scalarFunc{name: "POW", min: 2, max: 2, fn: powFunc}, name: "POWER"},
	&scalarFunc{name: "SIGN", min: 1, max: 1, fn: func(args []interface{}) (interface{}, error) {
		f, err := floatArg("SIGN", args[0])
		if err != nil {
			return nil, err
		}
		switch {
		case f > 0:
			return int64(1), nil
		case f < 0:
			return int64(-1), nil
		}
		return int64(0), nil
	}},
	&scalarFunc{name: "GREATEST", min: 1, max: -1, nullSafe: true, fn: extremeFunc("GREATEST", 1)},
	&scalarFunc{name: "LEAST", min: 1, max: -1, nullSafe: true, fn: extremeFunc("LEAST", -1)},
}

func floatArg(name string, v interface{}) (float64, error) {
	f, ok := toFloat64(v)
	if !ok {
		return 0, fmt.Errorf("%s: expected number, got %T", name, v)
	}
	return f, nil
}

// integralFunc rounds a number to an integer; integers pass through
func integralFunc(name string, fn func(float64) float64) func([]interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		if n, ok := toInt64(args[0]); ok {
			return n, nil
		}
		f, err := floatArg(name, args[0])
		if err != nil {
			return nil, err
		}
		r := fn(f)
		if r > math.MaxInt64 || r < math.MinInt64 || math.IsNaN(r) {
			return nil, fmt.Errorf("%s: %v out of integer range", name, f)
		}
		return int64(r), nil
	}
}

func roundFunc(args []interface{}) (interface{}, error) {
	if n, ok := toInt64(args[0]); ok && len(args) == 1 {
		return n, nil
	}
	f, err := floatArg("ROUND", args[0])
	if err != nil {
		return nil, err
	}
	places := int64(0)
	if len(args) == 2 {
		var ok bool
		places, ok = toInt64(args[1])
		if !ok {
			return nil, fmt.Errorf("ROUND: expected integer precision, got %T", args[1])
		}
	}
	scale := math.Pow(10, float64(places))
	return math.Round(f*scale) / scale, nil
}

func powFunc(args []interface{}) (interface{}, error) {
	base, err := floatArg("POW", args[0])
	if err != nil {
		return nil, err
	}
	exp, err := floatArg("POW", args[1])
	if err != nil {
		return nil, err
	}
	return math.Pow(base, exp), nil
}

// extremeFunc returns the largest (sign 1) or smallest (sign -1) non-NULL
// argument
func extremeFunc(name string, sign int) func([]interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		var best interface{}
		for _, arg := range args {
			if arg == nil {
				continue
			}
			if best == nil {
				best = arg
				continue
			}
			c, err := compareOrdered(arg, best)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			if c*sign > 0 {
				best = arg
			}
		}
		return normalizeValue(best), nil
	}
}

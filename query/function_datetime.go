package query

import (
	"fmt"
	"strings"
	"time"
)

// clock is read by CURRENT_DATE
var clock = time.Now

var dateFunctions = []Function{
	&scalarFunc{name: "YEAR", min: 1, max: 1, fn: dateFunc("YEAR", func(t time.Time) interface{} { return int64(t.Year()) })},
	&scalarFunc{name: "MONTH", min: 1, max: 1, fn: dateFunc("MONTH", func(t time.Time) interface{} { return int64(t.Month()) })},
	&scalarFunc{name: "DAY", min: 1, max: 1, fn: dateFunc("DAY", func(t time.Time) interface{} { return int64(t.Day()) })},
	// 1 = Sunday
	&scalarFunc{name: "DAYOFWEEK", min: 1, max: 1, fn: dateFunc("DAYOFWEEK", func(t time.Time) interface{} { return int64(t.Weekday()) + 1 })},
	&scalarFunc{name: "LAST_DAY", min: 1, max: 1, fn: dateFunc("LAST_DAY", func(t time.Time) interface{} {
		return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	})},
	&scalarFunc{name: "CURRENT_DATE", min: 0, max: 0, fn: func([]interface{}) (interface{}, error) {
		return truncateDate(clock().UTC()), nil
	}},
	&scalarFunc{name: "DATEDIFF", min: 2, max: 2, fn: dateDiffFunc},
	&alias{Function: &scalarFunc{name: "DATEDIFF", min: 2, max: 2, fn: dateDiffFunc}, name: "DATE_DIFF"},
	&scalarFunc{name: "DATE_ADD", min: 2, max: 3, fn: shiftDateFunc("DATE_ADD", 1)},
	&scalarFunc{name: "DATE_SUB", min: 2, max: 3, fn: shiftDateFunc("DATE_SUB", -1)},
	&scalarFunc{name: "DATE_TRUNC", min: 2, max: 2, fn: func(args []interface{}) (interface{}, error) {
		unit, t, err := unitAndDate("DATE_TRUNC", args)
		if err != nil {
			return nil, err
		}
		switch unit {
		case "YEAR", "YYYY", "YY":
			return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC), nil
		case "QUARTER":
			q := (int(t.Month()) - 1) / 3
			return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC), nil
		case "MONTH", "MON", "MM":
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
		case "WEEK":
			// weeks start on Monday
			offset := (int(t.Weekday()) + 6) % 7
			return truncateDate(t).AddDate(0, 0, -offset), nil
		case "DAY", "DD":
			return truncateDate(t), nil
		}
		return nil, fmt.Errorf("DATE_TRUNC: invalid unit %q", unit)
	}},
	&scalarFunc{name: "DATE_PART", min: 2, max: 2, fn: func(args []interface{}) (interface{}, error) {
		unit, t, err := unitAndDate("DATE_PART", args)
		if err != nil {
			return nil, err
		}
		switch unit {
		case "YEAR":
			return int64(t.Year()), nil
		case "QUARTER":
			return int64((int(t.Month())-1)/3 + 1), nil
		case "MONTH":
			return int64(t.Month()), nil
		case "WEEK":
			_, week := t.ISOWeek()
			return int64(week), nil
		case "DAY":
			return int64(t.Day()), nil
		case "DAYOFWEEK":
			return int64(t.Weekday()) + 1, nil
		case "DOY":
			return int64(t.YearDay()), nil
		}
		return nil, fmt.Errorf("DATE_PART: invalid unit %q", unit)
	}},
}

func dateFunc(name string, fn func(time.Time) interface{}) func([]interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		t, ok := toDate(args[0])
		if !ok {
			return nil, fmt.Errorf("%s: expected date, got %T", name, args[0])
		}
		return fn(t), nil
	}
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dateDiffFunc(args []interface{}) (interface{}, error) {
	end, ok := toDate(args[0])
	if !ok {
		return nil, fmt.Errorf("DATEDIFF: expected date, got %T", args[0])
	}
	start, ok := toDate(args[1])
	if !ok {
		return nil, fmt.Errorf("DATEDIFF: expected date, got %T", args[1])
	}
	return int64(truncateDate(end).Sub(truncateDate(start)).Hours() / 24), nil
}

// shiftDateFunc is DATE_ADD/DATE_SUB(date, amount [, unit]). The unit is
// DAY by default; WEEK, MONTH and YEAR are also accepted.
func shiftDateFunc(name string, sign int) func([]interface{}) (interface{}, error) {
	return func(args []interface{}) (interface{}, error) {
		start, ok := toDate(args[0])
		if !ok {
			return nil, fmt.Errorf("%s: expected date, got %T", name, args[0])
		}
		amount, ok := toInt64(args[1])
		if !ok {
			return nil, fmt.Errorf("%s: expected integer amount, got %T", name, args[1])
		}
		if amount > 1<<30 || amount < -(1<<30) {
			return nil, fmt.Errorf("%s: amount %d out of range", name, amount)
		}
		n := int(amount) * sign

		unit := "DAY"
		if len(args) == 3 {
			s, ok := args[2].(string)
			if !ok {
				return nil, fmt.Errorf("%s: expected unit name, got %T", name, args[2])
			}
			unit = strings.ToUpper(s)
		}

		switch unit {
		case "DAY":
			return start.AddDate(0, 0, n), nil
		case "WEEK":
			return start.AddDate(0, 0, 7*n), nil
		case "MONTH":
			return start.AddDate(0, n, 0), nil
		case "YEAR":
			return start.AddDate(n, 0, 0), nil
		}
		return nil, fmt.Errorf("%s: invalid unit %q", name, unit)
	}
}

func unitAndDate(name string, args []interface{}) (string, time.Time, error) {
	unit, ok := args[0].(string)
	if !ok {
		return "", time.Time{}, fmt.Errorf("%s: expected unit name, got %T", name, args[0])
	}
	t, ok := toDate(args[1])
	if !ok {
		return "", time.Time{}, fmt.Errorf("%s: expected date, got %T", name, args[1])
	}
	return strings.ToUpper(unit), t, nil
}

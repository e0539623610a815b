package query

import (
	"fmt"
	"strings"
)

// Group holds the rows sharing one GROUP BY key
type Group struct {
	Key  string
	Rows []map[string]interface{}
}

// ApplyGroupByAndAggregate groups rows, computes the aggregates used by
// the select list and HAVING clause, filters groups with HAVING and
// projects each remaining group to one output row.
//
// Groups are emitted in the order their first row appears. Without GROUP BY
// all rows form one group, so an empty input still yields one row.
func ApplyGroupByAndAggregate(rows []map[string]interface{}, groupByColumns []string, selectList []SelectItem, having Expression) ([]map[string]interface{}, error) {
	if err := validateSelectListWithGroupBy(selectList, groupByColumns); err != nil {
		return nil, err
	}

	aggs := collectAggregates(selectList, having)
	for i, agg := range aggs {
		agg.slot = fmt.Sprintf("__agg_%d", i)
	}

	groups, err := groupRows(rows, groupByColumns)
	if err != nil {
		return nil, err
	}

	var result []map[string]interface{}
	for _, group := range groups {
		rep := make(map[string]interface{})
		if len(group.Rows) > 0 {
			for k, v := range group.Rows[0] {
				rep[k] = v
			}
		}
		for _, agg := range aggs {
			value, err := evaluateAggregate(agg, group.Rows)
			if err != nil {
				return nil, err
			}
			rep[agg.slot] = value
		}

		projected, err := projectRow(rep, selectList, nil)
		if err != nil {
			return nil, err
		}

		if having != nil {
			keep, err := having.Evaluate(mergeRows(rep, projected))
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate HAVING: %w", err)
			}
			if !keep {
				continue
			}
		}

		result = append(result, projected)
	}

	return result, nil
}

// groupRows partitions rows by the GROUP BY columns, keeping first-seen order
func groupRows(rows []map[string]interface{}, groupByColumns []string) ([]*Group, error) {
	if len(groupByColumns) == 0 {
		return []*Group{{Rows: rows}}, nil
	}

	index := make(map[string]*Group)
	var groups []*Group
	for _, row := range rows {
		key, err := computeGroupKey(row, groupByColumns)
		if err != nil {
			return nil, err
		}
		g, ok := index[key]
		if !ok {
			g = &Group{Key: key}
			index[key] = g
			groups = append(groups, g)
		}
		g.Rows = append(g.Rows, row)
	}
	return groups, nil
}

// computeGroupKey builds a key from the group column values
func computeGroupKey(row map[string]interface{}, columns []string) (string, error) {
	var b strings.Builder
	for i, col := range columns {
		value, err := lookupColumn(row, col)
		if err != nil {
			return "", fmt.Errorf("GROUP BY: %w", err)
		}
		if i > 0 {
			b.WriteByte(0)
		}
		b.WriteString(valueKey(value))
	}
	return b.String(), nil
}

// valueKey encodes a value with its type so that 1 and "1" differ
func valueKey(v interface{}) string {
	v = normalizeValue(v)
	if v == nil {
		return "\x01null"
	}
	return fmt.Sprintf("%T:%s", v, FormatValue(v))
}

// evaluateAggregate computes one aggregate over the rows of a group
func evaluateAggregate(agg *AggregateExpr, rows []map[string]interface{}) (interface{}, error) {
	if agg.Arg == nil {
		// COUNT(*)
		return int64(len(rows)), nil
	}

	values := make([]interface{}, 0, len(rows))
	var seen *distinctSet
	if agg.Distinct {
		seen = newDistinctSet()
	}
	for _, row := range rows {
		v, err := agg.Arg.EvaluateSelect(row)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", agg.Function, err)
		}
		if v == nil {
			continue
		}
		if seen != nil && !seen.add(v) {
			continue
		}
		values = append(values, normalizeValue(v))
	}

	switch agg.Function {
	case "COUNT":
		return int64(len(values)), nil
	case "SUM":
		return sumValues(values)
	case "AVG":
		if len(values) == 0 {
			return nil, nil
		}
		total := 0.0
		for _, v := range values {
			f, ok := toFloat64(v)
			if !ok {
				return nil, fmt.Errorf("AVG requires numeric values, got %T", v)
			}
			total += f
		}
		return total / float64(len(values)), nil
	case "MIN", "MAX":
		return extremeValue(agg.Function, values)
	default:
		return nil, fmt.Errorf("unsupported aggregate function: %s", agg.Function)
	}
}

// sumValues adds numbers; the sum stays int64 while every input is an integer
func sumValues(values []interface{}) (interface{}, error) {
	if len(values) == 0 {
		return nil, nil
	}

	var intSum int64
	var floatSum float64
	allInts := true
	for _, v := range values {
		if n, ok := toInt64(v); ok {
			intSum += n
			floatSum += float64(n)
			continue
		}
		f, ok := toFloat64(v)
		if !ok {
			return nil, fmt.Errorf("SUM requires numeric values, got %T", v)
		}
		allInts = false
		floatSum += f
	}

	if allInts {
		return intSum, nil
	}
	return floatSum, nil
}

// extremeValue returns the smallest (MIN) or largest (MAX) value. It works
// for any mutually comparable values, dates included.
func extremeValue(function string, values []interface{}) (interface{}, error) {
	if len(values) == 0 {
		return nil, nil
	}

	best := values[0]
	for _, v := range values[1:] {
		c, err := compareOrdered(v, best)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", function, err)
		}
		if (function == "MIN" && c < 0) || (function == "MAX" && c > 0) {
			best = v
		}
	}
	return best, nil
}

// validateSelectListWithGroupBy checks that every column referenced outside
// an aggregate is a GROUP BY column
func validateSelectListWithGroupBy(selectList []SelectItem, groupByColumns []string) error {
	var invalid error
	for _, item := range selectList {
		walkValue(item.Expr, func(node interface{}) bool {
			if invalid != nil {
				return false
			}
			switch n := node.(type) {
			case *AggregateExpr, *WindowExpr:
				return false
			case *ColumnRef:
				if isStar(n.Column) {
					invalid = fmt.Errorf("%s cannot be used with GROUP BY or aggregates", n.Column)
				} else if !isGroupColumn(n.Column, groupByColumns) {
					invalid = fmt.Errorf("column %s must appear in GROUP BY or be used in an aggregate function", n.Column)
				}
			}
			return true
		})
		if invalid != nil {
			return invalid
		}
	}
	return nil
}

func isGroupColumn(ref string, groupByColumns []string) bool {
	for _, g := range groupByColumns {
		if strings.EqualFold(ref, g) {
			return true
		}
		if (qualifierOf(ref) == "" || qualifierOf(g) == "") && strings.EqualFold(BareName(ref), BareName(g)) {
			return true
		}
	}
	return false
}

package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ApplyFilter keeps the rows for which filter evaluates to true
func ApplyFilter(rows []map[string]interface{}, filter Expression) ([]map[string]interface{}, error) {
	if filter == nil {
		return rows, nil
	}

	var result []map[string]interface{}
	for _, row := range rows {
		match, err := filter.Evaluate(row)
		if err != nil {
			return nil, err
		}
		if match {
			result = append(result, row)
		}
	}
	return result, nil
}

// SelectColumns returns the output column names of a select list. Stars
// expand to the matching input columns; other items use their alias or
// ExpressionName.
func SelectColumns(selectList []SelectItem, inputColumns []string) ([]string, error) {
	var columns []string
	seen := make(map[string]bool)
	for _, item := range selectList {
		for _, name := range itemColumns(item, inputColumns) {
			if seen[name] {
				return nil, fmt.Errorf("duplicate output column %q; add an alias", name)
			}
			seen[name] = true
			columns = append(columns, name)
		}
	}
	return columns, nil
}

// itemColumns names the output columns of one select item
func itemColumns(item SelectItem, inputColumns []string) []string {
	if ref, ok := item.Expr.(*ColumnRef); ok && isStar(ref.Column) {
		return expandStar(inputColumns, ref.Column)
	}
	if item.Alias != "" {
		return []string{item.Alias}
	}
	return []string{ExpressionName(item.Expr)}
}

// ApplySelectList projects rows onto the select list
func ApplySelectList(rows []map[string]interface{}, selectList []SelectItem, inputColumns []string) ([]map[string]interface{}, []string, error) {
	columns, err := SelectColumns(selectList, inputColumns)
	if err != nil {
		return nil, nil, err
	}

	result := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		projected, err := projectRow(row, selectList, inputColumns)
		if err != nil {
			return nil, nil, err
		}
		result = append(result, projected)
	}
	return result, columns, nil
}

// projectRow evaluates the select list against a single row
func projectRow(row map[string]interface{}, selectList []SelectItem, inputColumns []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(selectList))
	for _, item := range selectList {
		if ref, ok := item.Expr.(*ColumnRef); ok && isStar(ref.Column) {
			for _, col := range expandStar(inputColumns, ref.Column) {
				out[col] = row[col]
			}
			continue
		}

		value, err := item.Expr.EvaluateSelect(row)
		if err != nil {
			return nil, err
		}
		out[itemColumns(item, inputColumns)[0]] = value
	}
	return out, nil
}

// ApplyOrderBy sorts rows by the ORDER BY items. The sort is stable, so
// rows with equal keys keep their input order.
func ApplyOrderBy(rows []map[string]interface{}, orderBy []OrderByItem) ([]map[string]interface{}, error) {
	return sortRows(rows, orderBy, func(i int, expr SelectExpression) (interface{}, error) {
		return expr.EvaluateSelect(rows[i])
	})
}

// sortRows sorts rows by keys obtained from keyFn. Keys are computed once
// per row before sorting.
func sortRows(rows []map[string]interface{}, orderBy []OrderByItem, keyFn func(i int, expr SelectExpression) (interface{}, error)) ([]map[string]interface{}, error) {
	if len(orderBy) == 0 || len(rows) < 2 {
		return rows, nil
	}

	keys := make([][]interface{}, len(rows))
	for i := range rows {
		keys[i] = make([]interface{}, len(orderBy))
		for j, item := range orderBy {
			v, err := keyFn(i, item.Expr)
			if err != nil {
				return nil, fmt.Errorf("ORDER BY %s: %w", ExpressionName(item.Expr), err)
			}
			keys[i][j] = v
		}
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lessByKeys(keys[order[a]], keys[order[b]], orderBy)
	})

	sorted := make([]map[string]interface{}, len(rows))
	for i, idx := range order {
		sorted[i] = rows[idx]
	}
	return sorted, nil
}

// lessByKeys compares two precomputed key tuples. NULLs sort first
// ascending and last descending.
func lessByKeys(a, b []interface{}, orderBy []OrderByItem) bool {
	for j, item := range orderBy {
		c := compareValues(a[j], b[j])
		if c == 0 {
			continue
		}
		if item.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

// ApplyLimitOffset skips offset rows and keeps at most limit rows
func ApplyLimitOffset(rows []map[string]interface{}, limit *int64, offset *int64) ([]map[string]interface{}, error) {
	start := int64(0)
	if offset != nil {
		if *offset < 0 {
			return nil, fmt.Errorf("OFFSET must be non-negative, got %d", *offset)
		}
		start = *offset
	}
	if start >= int64(len(rows)) {
		return []map[string]interface{}{}, nil
	}

	end := int64(len(rows))
	if limit != nil {
		if *limit < 0 {
			return nil, fmt.Errorf("LIMIT must be non-negative, got %d", *limit)
		}
		if start+*limit < end {
			end = start + *limit
		}
	}
	return rows[start:end], nil
}

// ApplyDistinct removes duplicate rows, comparing the given columns and
// keeping the first occurrence
func ApplyDistinct(rows []map[string]interface{}, columns []string) []map[string]interface{} {
	seen := make(map[string]bool, len(rows))
	var result []map[string]interface{}
	for _, row := range rows {
		key := rowKey(row, columns)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, row)
	}
	return result
}

func rowKey(row map[string]interface{}, columns []string) string {
	var b strings.Builder
	for _, col := range columns {
		b.WriteString(valueKey(row[col]))
		b.WriteByte(0)
	}
	return b.String()
}

// matchLikePattern matches str against a LIKE pattern where % matches any
// run of characters and _ matches exactly one
func matchLikePattern(str, pattern string) bool {
	s, p := []rune(str), []rune(pattern)
	si, pi := 0, 0
	starP, starS := -1, 0

	for si < len(s) {
		switch {
		case pi < len(p) && (p[pi] == '_' || p[pi] == s[si]):
			si++
			pi++
		case pi < len(p) && p[pi] == '%':
			starP, starS = pi, si
			pi++
		case starP >= 0:
			starS++
			si = starS
			pi = starP + 1
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}

// isMissingColumn reports whether err came from an unresolvable reference
func isMissingColumn(err error) bool {
	return errors.Is(err, ErrColumnNotFound)
}

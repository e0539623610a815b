package query

import "fmt"

// ApplyJoin joins two relations with a nested loop. Row order follows the
// outer loop: left rows for INNER, LEFT, FULL and CROSS joins, right rows
// for RIGHT joins. Unmatched outer rows are padded with NULLs. Both sides
// must carry distinct column keys (qualify them first).
func ApplyJoin(left, right *Result, joinType JoinType, condition Expression) (*Result, error) {
	columns, err := joinColumns(left.Columns, right.Columns)
	if err != nil {
		return nil, err
	}

	if joinType != JoinCross && condition == nil {
		return nil, fmt.Errorf("join requires an ON condition")
	}

	var rows []map[string]interface{}
	switch joinType {
	case JoinInner, JoinCross:
		rows, _, err = nestedLoop(left, right, condition, false)
	case JoinLeft:
		rows, _, err = nestedLoop(left, right, condition, true)
	case JoinRight:
		rows, _, err = nestedLoop(right, left, condition, true)
	case JoinFull:
		var rightMatched []bool
		rows, rightMatched, err = nestedLoop(left, right, condition, true)
		if err == nil {
			leftNulls := nullRowFor(left.Columns)
			for j, r := range right.Rows {
				if !rightMatched[j] {
					rows = append(rows, mergeRows(leftNulls, r))
				}
			}
		}
	default:
		return nil, fmt.Errorf("unsupported join type: %v", joinType)
	}
	if err != nil {
		return nil, err
	}

	return &Result{Columns: columns, Rows: rows}, nil
}

func joinColumns(left, right []string) ([]string, error) {
	seen := make(map[string]bool, len(left))
	for _, col := range left {
		seen[col] = true
	}
	columns := append([]string(nil), left...)
	for _, col := range right {
		if seen[col] {
			return nil, fmt.Errorf("column %q appears on both sides of the join; give the tables distinct aliases", col)
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// nestedLoop pairs every outer row with every inner row satisfying the
// condition (all pairs when it is nil). With padOuter, outer rows without
// a partner are emitted once with NULL inner columns. The second result
// marks which inner rows found a partner.
func nestedLoop(outer, inner *Result, condition Expression, padOuter bool) ([]map[string]interface{}, []bool, error) {
	var result []map[string]interface{}
	innerMatched := make([]bool, len(inner.Rows))
	innerNulls := nullRowFor(inner.Columns)

	for _, o := range outer.Rows {
		found := false
		for j, in := range inner.Rows {
			merged := mergeRows(o, in)
			if condition != nil {
				ok, err := condition.Evaluate(merged)
				if err != nil {
					return nil, nil, fmt.Errorf("failed to evaluate join condition: %w", err)
				}
				if !ok {
					continue
				}
			}
			found = true
			innerMatched[j] = true
			result = append(result, merged)
		}
		if !found && padOuter {
			result = append(result, mergeRows(o, innerNulls))
		}
	}

	return result, innerMatched, nil
}

// mergeRows combines two rows into a new map
func mergeRows(left, right map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(left)+len(right))
	for k, v := range left {
		merged[k] = v
	}
	for k, v := range right {
		merged[k] = v
	}
	return merged
}

// nullRowFor builds a row with every column set to NULL
func nullRowFor(columns []string) map[string]interface{} {
	null := make(map[string]interface{}, len(columns))
	for _, col := range columns {
		null[col] = nil
	}
	return null
}

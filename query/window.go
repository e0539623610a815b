package query

import (
	"fmt"
	"sort"
)

// windowRow pairs a row with its position in the input
type windowRow struct {
	index int
	keys  []interface{} // ORDER BY values
}

// ApplyWindowFunctions computes every window function in the select list.
// The returned rows are copies of the input rows carrying the window
// results, which the window expressions then read during projection.
func ApplyWindowFunctions(rows []map[string]interface{}, selectList []SelectItem) ([]map[string]interface{}, error) {
	windows := collectWindows(selectList)
	if len(windows) == 0 {
		return rows, nil
	}

	result := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		result[i] = mergeRows(row, nil)
	}

	for i, w := range windows {
		w.slot = fmt.Sprintf("__window_%d", i)
		values, err := computeWindowFunction(rows, w)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", w.Function, err)
		}
		for j, v := range values {
			result[j][w.slot] = v
		}
	}
	return result, nil
}

// computeWindowFunction returns the window value for every input row
func computeWindowFunction(rows []map[string]interface{}, w *WindowExpr) ([]interface{}, error) {
	spec := w.Window
	if spec == nil {
		spec = &WindowSpec{}
	}

	partitions, err := partitionRows(rows, spec)
	if err != nil {
		return nil, err
	}

	values := make([]interface{}, len(rows))
	for _, partition := range partitions {
		sort.SliceStable(partition, func(a, b int) bool {
			return lessByKeys(partition[a].keys, partition[b].keys, spec.OrderBy)
		})

		if err := computeWindowFunctionForPartition(rows, partition, w, values); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// partitionRows splits rows by the PARTITION BY columns in first-seen
// order and precomputes each row's ORDER BY keys
func partitionRows(rows []map[string]interface{}, spec *WindowSpec) ([][]windowRow, error) {
	index := make(map[string]int)
	var partitions [][]windowRow

	for i, row := range rows {
		key := ""
		if len(spec.PartitionBy) > 0 {
			var err error
			key, err = computeGroupKey(row, spec.PartitionBy)
			if err != nil {
				return nil, fmt.Errorf("PARTITION BY: %w", err)
			}
		}

		keys := make([]interface{}, len(spec.OrderBy))
		for j, item := range spec.OrderBy {
			v, err := item.Expr.EvaluateSelect(row)
			if err != nil {
				return nil, fmt.Errorf("window ORDER BY: %w", err)
			}
			keys[j] = v
		}

		p, ok := index[key]
		if !ok {
			p = len(partitions)
			index[key] = p
			partitions = append(partitions, nil)
		}
		partitions[p] = append(partitions[p], windowRow{index: i, keys: keys})
	}
	return partitions, nil
}

// computeWindowFunctionForPartition fills values for the rows of one
// sorted partition
func computeWindowFunctionForPartition(rows []map[string]interface{}, partition []windowRow, w *WindowExpr, values []interface{}) error {
	switch w.Function {
	case "ROW_NUMBER":
		for pos, r := range partition {
			values[r.index] = int64(pos + 1)
		}
	case "RANK", "DENSE_RANK":
		rank, dense := int64(0), int64(0)
		for pos, r := range partition {
			if pos == 0 || !sameKeys(partition[pos-1].keys, r.keys) {
				rank = int64(pos + 1)
				dense++
			}
			if w.Function == "RANK" {
				values[r.index] = rank
			} else {
				values[r.index] = dense
			}
		}
	case "LAG", "LEAD":
		return computeOffset(rows, partition, w, values)
	case "NTILE":
		return computeNTile(partition, w, values)
	case "FIRST_VALUE", "LAST_VALUE", "NTH_VALUE":
		return computeFrameValue(rows, partition, w, values)
	default:
		return fmt.Errorf("unsupported window function")
	}
	return nil
}

// computeOffset implements LAG(expr [, offset [, default]]) and LEAD
func computeOffset(rows []map[string]interface{}, partition []windowRow, w *WindowExpr, values []interface{}) error {
	if len(w.Args) == 0 || len(w.Args) > 3 {
		return fmt.Errorf("expected 1 to 3 arguments, got %d", len(w.Args))
	}

	offset := int64(1)
	if len(w.Args) >= 2 {
		v, err := w.Args[1].EvaluateSelect(nil)
		if err != nil {
			return fmt.Errorf("offset must be a constant: %w", err)
		}
		n, ok := toInt64(v)
		if !ok || n < 0 {
			return fmt.Errorf("offset must be a non-negative integer, got %v", v)
		}
		offset = n
	}
	if w.Function == "LAG" {
		offset = -offset
	}

	for pos, r := range partition {
		target := int64(pos) + offset
		if target < 0 || target >= int64(len(partition)) {
			if len(w.Args) == 3 {
				def, err := w.Args[2].EvaluateSelect(rows[r.index])
				if err != nil {
					return err
				}
				values[r.index] = def
			} else {
				values[r.index] = nil
			}
			continue
		}
		v, err := w.Args[0].EvaluateSelect(rows[partition[target].index])
		if err != nil {
			return err
		}
		values[r.index] = v
	}
	return nil
}

// computeNTile deals the partition into n buckets; the first
// len%n buckets hold one extra row
func computeNTile(partition []windowRow, w *WindowExpr, values []interface{}) error {
	if len(w.Args) != 1 {
		return fmt.Errorf("expected 1 argument, got %d", len(w.Args))
	}
	n, err := constantPositive(w.Args[0], "bucket count")
	if err != nil {
		return err
	}

	count := int64(len(partition))
	size, remainder := count/n, count%n
	tile, inTile := int64(1), int64(0)
	for _, r := range partition {
		limit := size
		if tile <= remainder {
			limit++
		}
		if inTile >= limit {
			tile++
			inTile = 0
		}
		values[r.index] = tile
		inTile++
	}
	return nil
}

// computeFrameValue implements FIRST_VALUE, LAST_VALUE and NTH_VALUE over the
// default frame: the partition start through the last peer of the current
// row, or the whole partition when there is no ORDER BY.
func computeFrameValue(rows []map[string]interface{}, partition []windowRow, w *WindowExpr, values []interface{}) error {
	want := 1
	if w.Function == "NTH_VALUE" {
		want = 2
	}
	if len(w.Args) != want {
		return fmt.Errorf("expected %d argument(s), got %d", want, len(w.Args))
	}

	nth := int64(1)
	if w.Function == "NTH_VALUE" {
		n, err := constantPositive(w.Args[1], "position")
		if err != nil {
			return err
		}
		nth = n
	}

	end := 0
	for pos, r := range partition {
		if end < pos {
			end = pos
		}
		for end+1 < len(partition) && sameKeys(partition[end+1].keys, r.keys) {
			end++
		}

		target := int(nth - 1)
		if w.Function == "LAST_VALUE" {
			target = end
		}
		if target > end {
			values[r.index] = nil
			continue
		}
		v, err := w.Args[0].EvaluateSelect(rows[partition[target].index])
		if err != nil {
			return err
		}
		values[r.index] = v
	}
	return nil
}

func constantPositive(expr SelectExpression, what string) (int64, error) {
	v, err := expr.EvaluateSelect(nil)
	if err != nil {
		return 0, fmt.Errorf("%s must be a constant: %w", what, err)
	}
	n, ok := toInt64(v)
	if !ok || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %v", what, v)
	}
	return n, nil
}

func sameKeys(a, b []interface{}) bool {
	for i := range a {
		if compareValues(a[i], b[i]) != 0 {
			return false
		}
	}
	return true
}

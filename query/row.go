package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

var (
	// ErrColumnNotFound is returned when a reference matches no column
	ErrColumnNotFound = errors.New("column not found")

	// ErrAmbiguousColumn is returned when an unqualified reference matches
	// columns of more than one source
	ErrAmbiguousColumn = errors.New("ambiguous column reference")
)

// Qualify returns "qualifier.column". Any existing qualifier on column is
// replaced.
func Qualify(qualifier, column string) string {
	if qualifier == "" {
		return column
	}
	return qualifier + "." + BareName(column)
}

// BareName strips the source qualifier from a column key.
func BareName(column string) string {
	if i := qualifierEnd(column); i >= 0 {
		return column[i+1:]
	}
	return column
}

// qualifierOf returns the qualifier of a column key, or "".
func qualifierOf(column string) string {
	if i := qualifierEnd(column); i >= 0 {
		return column[:i]
	}
	return ""
}

// qualifierEnd returns the index of the dot ending a leading identifier
// qualifier, or -1. Derived names such as "(price * 1.5)" have none.
func qualifierEnd(column string) int {
	for i, r := range column {
		switch {
		case r == '.':
			if i == 0 {
				return -1
			}
			return i
		case r == '_' || unicode.IsLetter(r):
		case unicode.IsDigit(r) && i > 0:
		default:
			return -1
		}
	}
	return -1
}

// qualifyRows rekeys every column of every row under qualifier.
func qualifyRows(qualifier string, columns []string, rows []map[string]interface{}) ([]string, []map[string]interface{}) {
	if qualifier == "" {
		return columns, rows
	}

	qualifiedColumns := make([]string, len(columns))
	for i, col := range columns {
		qualifiedColumns[i] = Qualify(qualifier, col)
	}

	qualifiedRows := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		qualified := make(map[string]interface{}, len(row))
		for col, val := range row {
			qualified[Qualify(qualifier, col)] = val
		}
		qualifiedRows[i] = qualified
	}
	return qualifiedColumns, qualifiedRows
}

// ResolveColumn finds the row key a column reference points at.
//
// Resolution order: exact key; for a qualified reference, its bare name;
// for a bare reference, the single key whose bare name matches. The last two
// steps are case-insensitive. Several matches yield ErrAmbiguousColumn.
func ResolveColumn(row map[string]interface{}, name string) (string, error) {
	if _, ok := row[name]; ok {
		return name, nil
	}

	if qualifier := qualifierOf(name); qualifier != "" {
		bare := BareName(name)
		var match string
		found := 0
		for key := range row {
			if strings.EqualFold(key, name) || strings.EqualFold(key, bare) {
				match = key
				found++
			}
		}
		if found == 1 {
			return match, nil
		}
		if found > 1 {
			return "", fmt.Errorf("%w: %s", ErrAmbiguousColumn, name)
		}
		return "", fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	}

	var matches []string
	for key := range row {
		if strings.EqualFold(BareName(key), name) {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("%w: %s", ErrColumnNotFound, name)
	default:
		return "", fmt.Errorf("%w: %s could refer to %s", ErrAmbiguousColumn, name, strings.Join(sortedStrings(matches), ", "))
	}
}

// lookupColumn resolves name against row and returns its value.
func lookupColumn(row map[string]interface{}, name string) (interface{}, error) {
	key, err := ResolveColumn(row, name)
	if err != nil {
		return nil, err
	}
	return row[key], nil
}

// ResolveColumnName resolves name against a column list using the same
// rules as ResolveColumn.
func ResolveColumnName(columns []string, name string) (string, error) {
	probe := make(map[string]interface{}, len(columns))
	for _, col := range columns {
		probe[col] = nil
	}
	return ResolveColumn(probe, name)
}

// expandStar returns the columns a "*" or "alias.*" reference selects.
func expandStar(columns []string, ref string) []string {
	if ref == "*" {
		return append([]string(nil), columns...)
	}
	qualifier := strings.TrimSuffix(ref, ".*")
	var out []string
	for _, col := range columns {
		if strings.EqualFold(qualifierOf(col), qualifier) {
			out = append(out, col)
		}
	}
	return out
}

func isStar(ref string) bool {
	return ref == "*" || strings.HasSuffix(ref, ".*")
}

func sortedStrings(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}

package query

import (
	"fmt"
	"strings"

	"github.com/op/go-logging"

	dlog "github.com/vegasq/dinersql/internal/logging"
)

var log = logging.MustGetLogger(dlog.EngineModule)

// ExecutionContext holds the context for query execution
type ExecutionContext struct {
	// Catalog resolves table names that are not CTEs
	Catalog Catalog
	// CTEs maps lower-cased CTE names to their materialized results
	CTEs map[string]*Result
	// InProgress tracks CTEs currently being materialized (for circular dependency detection)
	InProgress map[string]bool
	// AllCTENames tracks all CTE names defined in the query (for forward reference detection)
	AllCTENames map[string]bool
}

// NewExecutionContext creates a new execution context
func NewExecutionContext(catalog Catalog) *ExecutionContext {
	return &ExecutionContext{
		Catalog:     catalog,
		CTEs:        make(map[string]*Result),
		InProgress:  make(map[string]bool),
		AllCTENames: make(map[string]bool),
	}
}

// NewChildContext creates a child context for a query with its own WITH
// clause. The child sees the parent's CTEs; its own CTEs do not leak back.
func (ctx *ExecutionContext) NewChildContext() *ExecutionContext {
	child := NewExecutionContext(ctx.Catalog)
	for name, res := range ctx.CTEs {
		child.CTEs[name] = res
	}
	for name := range ctx.AllCTENames {
		child.AllCTENames[name] = true
	}
	for name := range ctx.InProgress {
		child.InProgress[name] = true
	}
	return child
}

// Execute runs a parsed query against catalog
func Execute(q *Query, catalog Catalog) (*Result, error) {
	if catalog == nil {
		return nil, fmt.Errorf("no catalog to resolve tables against")
	}
	return NewExecutionContext(catalog).run(q)
}

// ExecuteSQL parses and runs sql against catalog
func ExecuteSQL(sql string, catalog Catalog) (*Result, error) {
	q, err := Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}
	return Execute(q, catalog)
}

// run executes q, materializing its CTEs in a child scope first
func (ctx *ExecutionContext) run(q *Query) (*Result, error) {
	if len(q.CTEs) == 0 {
		return ctx.executeSelect(q)
	}

	child := ctx.NewChildContext()
	if err := child.materializeCTEs(q.CTEs); err != nil {
		return nil, fmt.Errorf("failed to materialize CTEs: %w", err)
	}
	return child.executeSelect(q)
}

// materializeCTEs evaluates the CTEs of one WITH clause in order
func (ctx *ExecutionContext) materializeCTEs(ctes []CTE) error {
	local := make(map[string]bool)
	for _, cte := range ctes {
		name := strings.ToLower(cte.Name)
		if local[name] {
			return fmt.Errorf("duplicate CTE name in same WITH clause: %s", cte.Name)
		}
		local[name] = true
		ctx.AllCTENames[name] = true
		// an inner definition shadows an outer one of the same name
		delete(ctx.CTEs, name)
	}

	for _, cte := range ctes {
		name := strings.ToLower(cte.Name)
		if ctx.InProgress[name] {
			return fmt.Errorf("circular CTE dependency detected: %s", cte.Name)
		}

		ctx.InProgress[name] = true
		res, err := ctx.run(cte.Query)
		delete(ctx.InProgress, name)
		if err != nil {
			return fmt.Errorf("failed to execute CTE %s: %w", cte.Name, err)
		}

		log.Debugf("materialized CTE %s: %d rows", cte.Name, len(res.Rows))
		ctx.CTEs[name] = res
	}
	return nil
}

// executeSelect executes a SELECT query
func (ctx *ExecutionContext) executeSelect(q *Query) (*Result, error) {
	if err := ctx.prepareSubqueries(q); err != nil {
		return nil, err
	}

	src, err := ctx.loadSource(q.TableName, q.Subquery, q.TableAlias)
	if err != nil {
		return nil, err
	}

	for _, join := range q.Joins {
		right, err := ctx.loadSource(join.TableName, join.Subquery, join.Alias)
		if err != nil {
			return nil, err
		}
		src, err = ApplyJoin(src, right, join.Type, join.Condition)
		if err != nil {
			return nil, fmt.Errorf("failed to execute JOIN: %w", err)
		}
	}
	log.Debugf("query source: %d columns, %d rows", len(src.Columns), len(src.Rows))

	rows, err := ApplyFilter(src.Rows, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to apply filter: %w", err)
	}

	aggregate := len(q.GroupBy) > 0 || HasAggregateFunction(q.SelectList)
	if aggregate && HasWindowFunction(q.SelectList) {
		return nil, fmt.Errorf("window functions cannot be combined with GROUP BY or aggregates in one SELECT; use a CTE")
	}

	rows, err = ApplyWindowFunctions(rows, q.SelectList)
	if err != nil {
		return nil, fmt.Errorf("failed to apply window functions: %w", err)
	}

	var projected []map[string]interface{}
	var columns []string
	if aggregate {
		projected, err = ApplyGroupByAndAggregate(rows, q.GroupBy, q.SelectList, q.Having)
		if err != nil {
			return nil, fmt.Errorf("failed to apply aggregation: %w", err)
		}
		columns, err = SelectColumns(q.SelectList, src.Columns)
	} else {
		projected, columns, err = ApplySelectList(rows, q.SelectList, src.Columns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply select list: %w", err)
	}

	if q.Distinct {
		projected = ApplyDistinct(projected, columns)
	}

	if len(q.OrderBy) > 0 {
		// Without aggregation or DISTINCT, projected[i] comes from rows[i],
		// so ORDER BY may also use columns that were not selected.
		fallback := !aggregate && !q.Distinct
		projected, err = sortRows(projected, q.OrderBy, func(i int, expr SelectExpression) (interface{}, error) {
			if _, isRef := expr.(*ColumnRef); !isRef {
				if name := ExpressionName(expr); containsString(columns, name) {
					return projected[i][name], nil
				}
			}
			v, err := expr.EvaluateSelect(projected[i])
			if err != nil && fallback && isMissingColumn(err) {
				return expr.EvaluateSelect(rows[i])
			}
			return v, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to apply ORDER BY: %w", err)
		}
	}

	if q.Limit != nil || q.Offset != nil {
		projected, err = ApplyLimitOffset(projected, q.Limit, q.Offset)
		if err != nil {
			return nil, fmt.Errorf("failed to apply LIMIT/OFFSET: %w", err)
		}
	}

	return simplifyColumns(&Result{Columns: columns, Rows: projected}, src.Columns), nil
}

// loadSource resolves a FROM or JOIN source and qualifies its columns with
// the alias, or with the table name when there is no alias
func (ctx *ExecutionContext) loadSource(table string, subquery *Query, alias string) (*Result, error) {
	var res *Result
	qualifier := alias

	if subquery != nil {
		var err error
		res, err = ctx.run(subquery)
		if err != nil {
			return nil, fmt.Errorf("failed to execute subquery: %w", err)
		}
	} else {
		if table == "" {
			return nil, fmt.Errorf("no data source specified (table, CTE, or subquery)")
		}
		if qualifier == "" {
			qualifier = table
		}

		name := strings.ToLower(table)
		if cte, ok := ctx.CTEs[name]; ok {
			res = cte
		} else if ctx.InProgress[name] {
			return nil, fmt.Errorf("circular CTE dependency detected: %s", table)
		} else if ctx.AllCTENames[name] {
			return nil, fmt.Errorf("forward CTE reference: %s is defined but not yet materialized (CTEs must be referenced in order)", table)
		} else {
			t, err := ctx.Catalog.Lookup(table)
			if err != nil {
				return nil, err
			}
			res = &Result{Columns: t.Columns, Rows: t.Rows}
		}
	}

	columns, rows := qualifyRows(qualifier, res.Columns, res.Rows)
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if seen[col] {
			return nil, fmt.Errorf("source %s has more than one column named %s", qualifier, BareName(col))
		}
		seen[col] = true
	}
	return &Result{Columns: columns, Rows: rows}, nil
}

// prepareSubqueries executes every uncorrelated subquery of q once and
// stores the outcome in its expression node
func (ctx *ExecutionContext) prepareSubqueries(q *Query) error {
	var failed error
	visit := func(node interface{}) bool {
		if failed != nil {
			return false
		}
		switch n := node.(type) {
		case *ExistsExpr:
			res, err := ctx.run(n.Subquery)
			if err != nil {
				failed = fmt.Errorf("failed to execute EXISTS subquery: %w", err)
				return false
			}
			n.exists = len(res.Rows) > 0
			n.resolved = true
		case *InSubqueryExpr:
			values, err := ctx.singleColumn(n.Subquery, "IN")
			if err != nil {
				failed = err
				return false
			}
			n.values = values
			n.resolved = true
		case *ScalarSubqueryExpr:
			values, err := ctx.singleColumn(n.Query, "scalar")
			if err != nil {
				failed = err
				return false
			}
			if len(values) > 1 {
				failed = fmt.Errorf("scalar subquery returned %d rows, expected at most 1", len(values))
				return false
			}
			n.value = nil
			if len(values) == 1 {
				n.value = values[0]
			}
			n.resolved = true
		}
		return true
	}

	walkCondition(q.Filter, visit)
	walkCondition(q.Having, visit)
	for _, item := range q.SelectList {
		walkValue(item.Expr, visit)
	}
	for _, join := range q.Joins {
		walkCondition(join.Condition, visit)
	}
	for _, item := range q.OrderBy {
		walkValue(item.Expr, visit)
	}
	return failed
}

// singleColumn executes a subquery that must produce exactly one column
func (ctx *ExecutionContext) singleColumn(q *Query, kind string) ([]interface{}, error) {
	res, err := ctx.run(q)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s subquery: %w", kind, err)
	}
	if len(res.Columns) != 1 {
		return nil, fmt.Errorf("%s subquery must return exactly one column, got %d", kind, len(res.Columns))
	}

	col := res.Columns[0]
	values := make([]interface{}, len(res.Rows))
	for i, row := range res.Rows {
		values[i] = row[col]
	}
	return values, nil
}

// simplifyColumns strips the source qualifier from output columns that
// came straight from a source (star expansion) when the resulting names are
// still unique
func simplifyColumns(res *Result, sourceColumns []string) *Result {
	rename := func(col string) string {
		if containsString(sourceColumns, col) {
			return BareName(col)
		}
		return col
	}

	columns := make([]string, len(res.Columns))
	seen := make(map[string]bool, len(res.Columns))
	changed := false
	for i, col := range res.Columns {
		columns[i] = rename(col)
		if seen[columns[i]] {
			return res
		}
		seen[columns[i]] = true
		changed = changed || columns[i] != col
	}
	if !changed {
		return res
	}

	rows := make([]map[string]interface{}, len(res.Rows))
	for i, row := range res.Rows {
		out := make(map[string]interface{}, len(columns))
		for j, col := range res.Columns {
			out[columns[j]] = row[col]
		}
		rows[i] = out
	}
	return &Result{Columns: columns, Rows: rows}
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

package frame

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"

	dlog "github.com/vegasq/dinersql/internal/logging"
	"github.com/vegasq/dinersql/output"
	"github.com/vegasq/dinersql/query"
)

var log = logging.MustGetLogger(dlog.EngineModule)

// ErrNoCatalog is returned when a view is registered from a DataFrame that
// does not belong to a session
var ErrNoCatalog = errors.New("dataframe is not attached to a session catalog")

// Registry receives temp views created from a DataFrame
type Registry interface {
	Register(t *query.Table)
}

// DataFrame is an immutable table value. Transformations return a new
// DataFrame; the first failure is carried along and reported by Collect,
// Show or Err.
type DataFrame struct {
	name     string
	columns  []string
	rows     []map[string]interface{}
	err      error
	registry Registry
}

// New builds a DataFrame. name qualifies the columns in joins and may be
// empty.
func New(name string, columns []string, rows []map[string]interface{}) *DataFrame {
	return &DataFrame{name: name, columns: columns, rows: rows}
}

// FromResult wraps a query result
func FromResult(name string, res *query.Result) *DataFrame {
	return New(name, res.Columns, res.Rows)
}

// Errorf returns a DataFrame carrying an error
func Errorf(format string, args ...interface{}) *DataFrame {
	return &DataFrame{err: fmt.Errorf(format, args...)}
}

// WithRegistry attaches the catalog that CreateOrReplaceTempView writes to.
// Derived DataFrames inherit it.
func (df *DataFrame) WithRegistry(r Registry) *DataFrame {
	out := *df
	out.registry = r
	return &out
}

func (df *DataFrame) derive(columns []string, rows []map[string]interface{}) *DataFrame {
	return &DataFrame{name: df.name, columns: columns, rows: rows, registry: df.registry}
}

func (df *DataFrame) fail(err error) *DataFrame {
	return &DataFrame{name: df.name, err: err, registry: df.registry}
}

// Err reports the first error met while building df
func (df *DataFrame) Err() error { return df.err }

// Name returns the qualifier used for df's columns in joins
func (df *DataFrame) Name() string { return df.name }

// Columns returns the column names in order
func (df *DataFrame) Columns() []string {
	return append([]string(nil), df.columns...)
}

// Alias renames df; its columns are requalified with name
func (df *DataFrame) Alias(name string) *DataFrame {
	if df.err != nil {
		return df
	}
	columns := make([]string, len(df.columns))
	rename := make(map[string]string, len(df.columns))
	seen := make(map[string]bool, len(df.columns))
	for i, col := range df.columns {
		columns[i] = query.Qualify(name, col)
		if seen[columns[i]] {
			return df.fail(fmt.Errorf("alias %s: column %s would appear twice", name, query.BareName(col)))
		}
		seen[columns[i]] = true
		rename[col] = columns[i]
	}

	rows := make([]map[string]interface{}, len(df.rows))
	for i, row := range df.rows {
		out := make(map[string]interface{}, len(row))
		for k, v := range row {
			out[rename[k]] = v
		}
		rows[i] = out
	}

	out := df.derive(columns, rows)
	out.name = name
	return out
}

// Select projects df onto cols. Aggregates without GroupBy reduce df to one
// row; window functions are evaluated over the whole of df.
func (df *DataFrame) Select(cols ...Column) *DataFrame {
	if df.err != nil {
		return df
	}
	items := selectItems(cols)

	if query.HasAggregateFunction(items) {
		if query.HasWindowFunction(items) {
			return df.fail(fmt.Errorf("select: window functions cannot be mixed with aggregates"))
		}
		return df.aggregate(nil, items)
	}

	rows, err := query.ApplyWindowFunctions(df.rows, items)
	if err != nil {
		return df.fail(fmt.Errorf("select: %w", err))
	}
	rows, columns, err := query.ApplySelectList(rows, items, df.columns)
	if err != nil {
		return df.fail(fmt.Errorf("select: %w", err))
	}
	return df.derive(columns, rows)
}

// SelectColumns is Select with plain column names
func (df *DataFrame) SelectColumns(names ...string) *DataFrame {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Col(n)
	}
	return df.Select(cols...)
}

func selectItems(cols []Column) []query.SelectItem {
	items := make([]query.SelectItem, len(cols))
	for i, c := range cols {
		items[i] = c.selectItem()
	}
	return items
}

// Where keeps the rows for which cond holds
func (df *DataFrame) Where(cond Column) *DataFrame {
	if df.err != nil {
		return df
	}
	rows, err := query.ApplyFilter(df.rows, cond.condition())
	if err != nil {
		return df.fail(fmt.Errorf("where: %w", err))
	}
	return df.derive(df.columns, rows)
}

// Filter is Where
func (df *DataFrame) Filter(cond Column) *DataFrame {
	return df.Where(cond)
}

// Join combines df with other. Columns of each side are qualified with the
// side's name first, so both may carry the same bare names. how is one of
// inner, left, right, full (or outer) and cross; cross takes no condition.
func (df *DataFrame) Join(other *DataFrame, on Column, how string) *DataFrame {
	if df.err != nil {
		return df
	}
	if other.err != nil {
		return df.fail(other.err)
	}

	joinType, err := query.ParseJoinType(strings.ToLower(how))
	if err != nil {
		return df.fail(err)
	}
	var cond query.Expression
	if !on.isZero() {
		cond = on.condition()
	}

	left := df.qualified()
	right := other.qualified()
	res, err := query.ApplyJoin(left, right, joinType, cond)
	if err != nil {
		return df.fail(fmt.Errorf("join %s with %s: %w", df.name, other.name, err))
	}
	log.Debugf("join %s with %s (%s): %d rows", df.name, other.name, how, len(res.Rows))

	out := df.derive(res.Columns, res.Rows)
	out.name = ""
	return out
}

// qualified returns df's columns prefixed with its name. Columns that
// already carry a qualifier are left alone.
func (df *DataFrame) qualified() *query.Result {
	if df.name == "" {
		return &query.Result{Columns: df.columns, Rows: df.rows}
	}

	columns := make([]string, len(df.columns))
	rename := make(map[string]string, len(df.columns))
	for i, col := range df.columns {
		columns[i] = col
		if query.BareName(col) == col {
			columns[i] = query.Qualify(df.name, col)
		}
		rename[col] = columns[i]
	}

	rows := make([]map[string]interface{}, len(df.rows))
	for i, row := range df.rows {
		out := make(map[string]interface{}, len(row))
		for k, v := range row {
			if renamed, ok := rename[k]; ok {
				k = renamed
			}
			out[k] = v
		}
		rows[i] = out
	}
	return &query.Result{Columns: columns, Rows: rows}
}

// GroupedData is a DataFrame grouped by key columns, awaiting Agg
type GroupedData struct {
	df      *DataFrame
	columns []string
}

// GroupBy groups rows by the named columns. Groups keep the order in which
// their first row appears.
func (df *DataFrame) GroupBy(columns ...string) *GroupedData {
	return &GroupedData{df: df, columns: columns}
}

// Agg computes one row per group: the key columns followed by aggs
func (g *GroupedData) Agg(aggs ...Column) *DataFrame {
	if g.df.err != nil {
		return g.df
	}
	items := make([]query.SelectItem, 0, len(g.columns)+len(aggs))
	for _, col := range g.columns {
		items = append(items, query.SelectItem{Expr: &query.ColumnRef{Column: col}})
	}
	items = append(items, selectItems(aggs)...)
	return g.df.aggregate(g.columns, items)
}

// Count is Agg(Count(Col("*")).Alias("count"))
func (g *GroupedData) Count() *DataFrame {
	return g.Agg(Count(Col("*")).Alias("count"))
}

func (df *DataFrame) aggregate(groupBy []string, items []query.SelectItem) *DataFrame {
	columns, err := query.SelectColumns(items, nil)
	if err != nil {
		return df.fail(fmt.Errorf("aggregate: %w", err))
	}
	rows, err := query.ApplyGroupByAndAggregate(df.rows, groupBy, items, nil)
	if err != nil {
		return df.fail(fmt.Errorf("aggregate: %w", err))
	}
	return df.derive(columns, rows)
}

// WithColumn adds a column computed from c, or replaces the column that
// name resolves to. Window functions are allowed; aggregates are not.
func (df *DataFrame) WithColumn(name string, c Column) *DataFrame {
	if df.err != nil {
		return df
	}
	items := []query.SelectItem{{Expr: c.value(), Alias: name}}
	if query.HasAggregateFunction(items) {
		return df.fail(fmt.Errorf("withColumn %s: aggregate functions require GroupBy", name))
	}

	evalRows, err := query.ApplyWindowFunctions(df.rows, items)
	if err != nil {
		return df.fail(fmt.Errorf("withColumn %s: %w", name, err))
	}

	key := name
	columns := df.Columns()
	if existing, err := query.ResolveColumnName(df.columns, name); err == nil {
		key = existing
	} else {
		columns = append(columns, name)
	}

	rows := make([]map[string]interface{}, len(df.rows))
	for i, row := range df.rows {
		v, err := items[0].Expr.EvaluateSelect(evalRows[i])
		if err != nil {
			return df.fail(fmt.Errorf("withColumn %s: %w", name, err))
		}
		out := make(map[string]interface{}, len(row)+1)
		for k, val := range row {
			out[k] = val
		}
		out[key] = v
		rows[i] = out
	}
	return df.derive(columns, rows)
}

// WithColumnRenamed renames a column in place. A missing column is not an
// error.
func (df *DataFrame) WithColumnRenamed(existing, newName string) *DataFrame {
	if df.err != nil {
		return df
	}
	key, err := query.ResolveColumnName(df.columns, existing)
	if errors.Is(err, query.ErrColumnNotFound) {
		return df
	}
	if err != nil {
		return df.fail(fmt.Errorf("withColumnRenamed: %w", err))
	}
	for _, col := range df.columns {
		if col != key && col == newName {
			return df.fail(fmt.Errorf("withColumnRenamed: column %s already exists", newName))
		}
	}

	columns := df.Columns()
	for i, col := range columns {
		if col == key {
			columns[i] = newName
		}
	}
	rows := make([]map[string]interface{}, len(df.rows))
	for i, row := range df.rows {
		out := make(map[string]interface{}, len(row))
		for k, v := range row {
			if k == key {
				k = newName
			}
			out[k] = v
		}
		rows[i] = out
	}
	return df.derive(columns, rows)
}

// Drop removes the named columns; unknown names are ignored
func (df *DataFrame) Drop(names ...string) *DataFrame {
	if df.err != nil {
		return df
	}
	drop := make(map[string]bool)
	for _, n := range names {
		if key, err := query.ResolveColumnName(df.columns, n); err == nil {
			drop[key] = true
		}
	}
	var keep []Column
	for _, col := range df.columns {
		if !drop[col] {
			keep = append(keep, Col(col).Alias(col))
		}
	}
	return df.Select(keep...)
}

// Sort orders rows by cols; use Column.Desc for descending keys. The sort
// is stable.
func (df *DataFrame) Sort(cols ...Column) *DataFrame {
	if df.err != nil {
		return df
	}
	orderBy := make([]query.OrderByItem, len(cols))
	for i, c := range cols {
		orderBy[i] = query.OrderByItem{Expr: c.value(), Desc: c.desc}
	}
	rows, err := query.ApplyOrderBy(df.rows, orderBy)
	if err != nil {
		return df.fail(fmt.Errorf("sort: %w", err))
	}
	return df.derive(df.columns, rows)
}

// OrderBy is Sort
func (df *DataFrame) OrderBy(cols ...Column) *DataFrame {
	return df.Sort(cols...)
}

// Limit keeps the first n rows
func (df *DataFrame) Limit(n int) *DataFrame {
	if df.err != nil {
		return df
	}
	limit := int64(n)
	rows, err := query.ApplyLimitOffset(df.rows, &limit, nil)
	if err != nil {
		return df.fail(fmt.Errorf("limit: %w", err))
	}
	return df.derive(df.columns, rows)
}

// Distinct removes duplicate rows, keeping the first occurrence
func (df *DataFrame) Distinct() *DataFrame {
	if df.err != nil {
		return df
	}
	return df.derive(df.columns, query.ApplyDistinct(df.rows, df.columns))
}

// Count returns the number of rows
func (df *DataFrame) Count() (int, error) {
	if df.err != nil {
		return 0, df.err
	}
	return len(df.rows), nil
}

// Collect returns the rows
func (df *DataFrame) Collect() ([]map[string]interface{}, error) {
	if df.err != nil {
		return nil, df.err
	}
	return df.rows, nil
}

// Result returns df as a query result
func (df *DataFrame) Result() (*query.Result, error) {
	if df.err != nil {
		return nil, df.err
	}
	return &query.Result{Columns: df.Columns(), Rows: df.rows}, nil
}

// Table returns df as a catalog table named name
func (df *DataFrame) Table(name string) (*query.Table, error) {
	if df.err != nil {
		return nil, df.err
	}
	return &query.Table{Name: name, Columns: df.Columns(), Rows: df.rows}, nil
}

// CreateOrReplaceTempView registers df under name in its session catalog
func (df *DataFrame) CreateOrReplaceTempView(name string) error {
	if df.registry == nil {
		return ErrNoCatalog
	}
	if err := query.ValidateViewName(name); err != nil {
		return err
	}
	t, err := df.Table(name)
	if err != nil {
		return err
	}
	df.registry.Register(t)
	log.Debugf("registered temp view %s (%d rows)", name, len(t.Rows))
	return nil
}

// Show prints up to 20 rows to stdout, truncating long cells
func (df *DataFrame) Show() error {
	return df.ShowTo(os.Stdout, output.DefaultOptions())
}

// ShowTo prints df as a table to w
func (df *DataFrame) ShowTo(w io.Writer, opts output.Options) error {
	if df.err != nil {
		return df.err
	}
	return output.NewTableFormatter(w, opts.NumRows, opts.Truncate).Format(df.columns, df.rows)
}

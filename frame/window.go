package frame

import (
	"errors"

	"github.com/vegasq/dinersql/query"
)

// Window is a window specification: partition columns and an ordering
type Window struct {
	spec query.WindowSpec
}

// NewWindow returns an empty window covering all rows
func NewWindow() Window {
	return Window{}
}

// PartitionBy restarts the window function for each distinct key
func (w Window) PartitionBy(columns ...string) Window {
	w.spec.PartitionBy = append(append([]string(nil), w.spec.PartitionBy...), columns...)
	return w
}

// OrderBy orders rows within each partition
func (w Window) OrderBy(columns ...Column) Window {
	orderBy := append([]query.OrderByItem(nil), w.spec.OrderBy...)
	for _, c := range columns {
		orderBy = append(orderBy, query.OrderByItem{Expr: c.value(), Desc: c.desc})
	}
	w.spec.OrderBy = orderBy
	return w
}

func windowFunction(name string, args ...Column) Column {
	we := &query.WindowExpr{Function: name}
	for _, a := range args {
		we.Args = append(we.Args, a.value())
	}
	return Column{expr: we}
}

// RowNumber numbers rows 1, 2, 3... within the window; ties keep input order
func RowNumber() Column { return windowFunction("ROW_NUMBER") }

// Rank numbers rows leaving gaps after ties
func Rank() Column { return windowFunction("RANK") }

// DenseRank numbers rows without gaps after ties
func DenseRank() Column { return windowFunction("DENSE_RANK") }

// Lag is the value of c offset rows earlier in the window
func Lag(c Column, offset int) Column { return windowFunction("LAG", c, Lit(offset)) }

// Lead is the value of c offset rows later in the window
func Lead(c Column, offset int) Column { return windowFunction("LEAD", c, Lit(offset)) }

// NTile splits the window into n buckets numbered from 1
func NTile(n int) Column { return windowFunction("NTILE", Lit(n)) }

// FirstValue is the value of c on the first row of the window
func FirstValue(c Column) Column { return windowFunction("FIRST_VALUE", c) }

// LastValue is the value of c on the last peer of the current row
func LastValue(c Column) Column { return windowFunction("LAST_VALUE", c) }

// NthValue is the value of c on the nth row of the window, or null while the
// frame is shorter than n
func NthValue(c Column, n int) Column { return windowFunction("NTH_VALUE", c, Lit(n)) }

var errNotWindowFunction = errors.New("Over() requires a window function such as RowNumber()")

// Over binds a window function to a window
func (c Column) Over(w Window) Column {
	we, ok := c.expr.(*query.WindowExpr)
	if !ok {
		return Column{expr: &invalidExpr{err: errNotWindowFunction}}
	}
	spec := w.spec
	return Column{
		expr:  &query.WindowExpr{Function: we.Function, Args: we.Args, Window: &spec},
		alias: c.alias,
	}
}

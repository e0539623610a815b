package frame

import (
	"fmt"
	"strings"

	"github.com/vegasq/dinersql/query"
)

// Column is an unevaluated expression over the rows of a DataFrame. It is
// either a value (a column, literal, function or aggregate) or a condition
// built by a comparison; each can stand in for the other.
type Column struct {
	expr  query.SelectExpression
	cond  query.Expression
	alias string
	desc  bool
}

// Col references a column by name. "table.column" selects through a
// qualifier and "*" selects every column.
func Col(name string) Column {
	return Column{expr: &query.ColumnRef{Column: name}}
}

// Lit is a constant. Go integer kinds are widened to int64 and float32 to
// float64.
func Lit(v interface{}) Column {
	return Column{expr: &query.LiteralExpr{Value: literalValue(v)}}
}

func literalValue(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case float32:
		return float64(n)
	}
	return v
}

// lift turns a Go value into a literal unless it already is a Column
func lift(v interface{}) Column {
	if c, ok := v.(Column); ok {
		return c
	}
	return Lit(v)
}

func (c Column) value() query.SelectExpression {
	if c.expr != nil {
		return c.expr
	}
	if c.cond == nil {
		return nil
	}
	return &query.PredicateExpr{Cond: c.cond}
}

func (c Column) condition() query.Expression {
	if c.cond != nil {
		return c.cond
	}
	if c.expr == nil {
		return nil
	}
	return &query.TruthExpr{Expr: c.expr}
}

func (c Column) isZero() bool {
	return c.expr == nil && c.cond == nil
}

// Alias names the column in the output
func (c Column) Alias(name string) Column {
	c.alias = name
	return c
}

// As is Alias
func (c Column) As(name string) Column {
	return c.Alias(name)
}

// Name is the output name: the alias, else a name derived from the
// expression
func (c Column) Name() string {
	if c.alias != "" {
		return c.alias
	}
	if c.expr == nil {
		return "condition"
	}
	return query.ExpressionName(c.expr)
}

func (c Column) String() string {
	return c.Name()
}

func (c Column) selectItem() query.SelectItem {
	return query.SelectItem{Expr: c.value(), Alias: c.alias}
}

// Desc sorts by this column descending
func (c Column) Desc() Column {
	c.desc = true
	return c
}

// Asc sorts by this column ascending
func (c Column) Asc() Column {
	c.desc = false
	return c
}

// Desc is Col(name).Desc()
func Desc(name string) Column { return Col(name).Desc() }

// Asc is Col(name).Asc()
func Asc(name string) Column { return Col(name).Asc() }

func (c Column) compare(op query.TokenType, other interface{}) Column {
	return Column{cond: &query.ComparisonExpr{Left: c.value(), Operator: op, Right: lift(other).value()}}
}

// EqualTo is c = other; other is a Column or a Go value
func (c Column) EqualTo(other interface{}) Column { return c.compare(query.TokenEqual, other) }

// NotEqual is c <> other
func (c Column) NotEqual(other interface{}) Column { return c.compare(query.TokenNotEqual, other) }

// Gt is c > other
func (c Column) Gt(other interface{}) Column { return c.compare(query.TokenGreater, other) }

// Geq is c >= other
func (c Column) Geq(other interface{}) Column { return c.compare(query.TokenGreaterEqual, other) }

// Lt is c < other
func (c Column) Lt(other interface{}) Column { return c.compare(query.TokenLess, other) }

// Leq is c <= other
func (c Column) Leq(other interface{}) Column { return c.compare(query.TokenLessEqual, other) }

// IsIn is c IN (values...)
func (c Column) IsIn(values ...interface{}) Column {
	in := &query.InExpr{Expr: c.value()}
	for _, v := range values {
		in.Values = append(in.Values, lift(v).value())
	}
	return Column{cond: in}
}

// Between is lower <= c <= upper
func (c Column) Between(lower, upper interface{}) Column {
	return Column{cond: &query.BetweenExpr{Expr: c.value(), Lower: lift(lower).value(), Upper: lift(upper).value()}}
}

// Like matches a SQL LIKE pattern
func (c Column) Like(pattern string) Column {
	return Column{cond: &query.LikeExpr{Expr: c.value(), Pattern: pattern}}
}

// IsNull is c IS NULL
func (c Column) IsNull() Column {
	return Column{cond: &query.IsNullExpr{Expr: c.value()}}
}

// IsNotNull is c IS NOT NULL
func (c Column) IsNotNull() Column {
	return Column{cond: &query.IsNullExpr{Expr: c.value(), Negate: true}}
}

// And combines two conditions
func (c Column) And(other Column) Column {
	return Column{cond: &query.BinaryExpr{Left: c.condition(), Operator: query.TokenAnd, Right: other.condition()}}
}

// Or combines two conditions
func (c Column) Or(other Column) Column {
	return Column{cond: &query.BinaryExpr{Left: c.condition(), Operator: query.TokenOr, Right: other.condition()}}
}

// Not negates a condition
func Not(c Column) Column {
	return Column{cond: &query.NotExpr{Expr: c.condition()}}
}

func (c Column) arithmetic(op query.TokenType, other interface{}) Column {
	return Column{expr: &query.ArithmeticExpr{Left: c.value(), Operator: op, Right: lift(other).value()}}
}

// Plus is c + other
func (c Column) Plus(other interface{}) Column { return c.arithmetic(query.TokenPlus, other) }

// Minus is c - other
func (c Column) Minus(other interface{}) Column { return c.arithmetic(query.TokenMinus, other) }

// Multiply is c * other
func (c Column) Multiply(other interface{}) Column { return c.arithmetic(query.TokenStar, other) }

// Divide is c / other; the result is a DOUBLE and NULL for a zero divisor
func (c Column) Divide(other interface{}) Column { return c.arithmetic(query.TokenSlash, other) }

func aggregate(function string, c Column, distinct bool) Column {
	agg := &query.AggregateExpr{Function: function, Distinct: distinct}
	if ref, ok := c.expr.(*query.ColumnRef); !ok || ref.Column != "*" {
		agg.Arg = c.value()
	}
	return Column{expr: agg}
}

// Sum adds the non-NULL values of a group; integers stay integral
func Sum(c Column) Column { return aggregate("SUM", c, false) }

// Count counts the non-NULL values of a group; Count(Col("*")) counts rows
func Count(c Column) Column { return aggregate("COUNT", c, false) }

// CountDistinct counts the distinct non-NULL values of a group
func CountDistinct(c Column) Column { return aggregate("COUNT", c, true) }

// Min is the smallest value of a group
func Min(c Column) Column { return aggregate("MIN", c, false) }

// Max is the largest value of a group
func Max(c Column) Column { return aggregate("MAX", c, false) }

// Avg is the mean of a group as a DOUBLE
func Avg(c Column) Column { return aggregate("AVG", c, false) }

// Func calls a scalar function such as UPPER or DATEDIFF by name
func Func(name string, args ...interface{}) Column {
	call := &query.FunctionCall{Name: strings.ToUpper(name)}
	for _, a := range args {
		call.Args = append(call.Args, lift(a).value())
	}
	return Column{expr: call}
}

// When starts a CASE expression: value where cond holds, NULL otherwise
// unless Otherwise is given.
func When(cond Column, value interface{}) Column {
	return Column{expr: &query.CaseExpr{
		WhenClauses: []query.WhenClause{{Condition: cond.condition(), Result: lift(value).value()}},
	}}
}

// When adds a branch to a CASE expression started by the package-level When
func (c Column) When(cond Column, value interface{}) Column {
	ce, ok := c.expr.(*query.CaseExpr)
	if !ok {
		return Column{expr: &invalidExpr{err: fmt.Errorf("When() can only follow when()")}}
	}
	clauses := append(append([]query.WhenClause(nil), ce.WhenClauses...),
		query.WhenClause{Condition: cond.condition(), Result: lift(value).value()})
	return Column{expr: &query.CaseExpr{WhenClauses: clauses, ElseExpr: ce.ElseExpr}, alias: c.alias}
}

// Otherwise sets the ELSE value of a CASE expression
func (c Column) Otherwise(value interface{}) Column {
	ce, ok := c.expr.(*query.CaseExpr)
	if !ok {
		return Column{expr: &invalidExpr{err: fmt.Errorf("Otherwise() can only follow when()")}}
	}
	return Column{expr: &query.CaseExpr{WhenClauses: ce.WhenClauses, ElseExpr: lift(value).value()}, alias: c.alias}
}

// invalidExpr defers a builder misuse to evaluation time
type invalidExpr struct {
	err error
}

func (e *invalidExpr) EvaluateSelect(map[string]interface{}) (interface{}, error) {
	return nil, e.err
}

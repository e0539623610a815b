package query

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenAs
	TokenGroup
	TokenBy
	TokenHaving
	TokenOrder
	TokenAsc
	TokenDesc
	TokenLimit
	TokenOffset
	TokenIn
	TokenLike
	TokenBetween
	TokenIs
	TokenNot
	TokenNull
	TokenDistinct
	TokenCase
	TokenWhen
	TokenThen
	TokenElse
	TokenEnd
	TokenOver
	TokenPartition
	TokenWith
	TokenExists
	TokenJoin
	TokenInner
	TokenLeft
	TokenRight
	TokenFull
	TokenOuter
	TokenCross
	TokenOn

	// Comparison operators
	TokenEqual        // =
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=

	// Arithmetic operators
	TokenPlus  // +
	TokenMinus // -
	TokenStar  // *
	TokenSlash // /

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool

	// Delimiters
	TokenComma      // ,
	TokenLeftParen  // (
	TokenRightParen // )

	// Special
	TokenEOF
	TokenError
)

var tokenNames = map[TokenType]string{
	TokenEqual:        "=",
	TokenNotEqual:     "!=",
	TokenLess:         "<",
	TokenGreater:      ">",
	TokenLessEqual:    "<=",
	TokenGreaterEqual: ">=",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenSlash:        "/",
	TokenComma:        ",",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenIdent:        "identifier",
	TokenBool:         "boolean",
	TokenEOF:          "end of query",
}

// String returns the operator symbol or a readable token class.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	for word, tok := range keywords {
		if tok == t {
			return word
		}
	}
	return "token"
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
}

// Query represents a parsed SQL query.
//
// A Query carries per-execution state in some of its nodes (resolved
// subqueries, aggregate and window result slots), so one Query value must
// not be executed concurrently.
type Query struct {
	CTEs       []CTE  // WITH clause CTEs
	TableName  string // Catalog table or CTE name
	Subquery   *Query // Subquery in FROM clause (alternative to TableName)
	TableAlias string // Optional alias for table/subquery
	Joins      []Join // JOIN clauses
	SelectList []SelectItem
	Filter     Expression
	GroupBy    []string      // Column names to group by
	Having     Expression    // Post-aggregation filter
	OrderBy    []OrderByItem // Sort specification
	Limit      *int64        // Row limit
	Offset     *int64        // Row offset
	Distinct   bool          // DISTINCT modifier
}

// JoinType represents the type of join operation
type JoinType int

const (
	JoinInner JoinType = iota // INNER JOIN (default)
	JoinLeft                  // LEFT JOIN / LEFT OUTER JOIN
	JoinRight                 // RIGHT JOIN / RIGHT OUTER JOIN
	JoinFull                  // FULL JOIN / FULL OUTER JOIN
	JoinCross                 // CROSS JOIN
)

// ParseJoinType maps dataframe-style join names ("inner", "left_outer", ...)
// to a JoinType.
func ParseJoinType(how string) (JoinType, error) {
	switch how {
	case "", "inner":
		return JoinInner, nil
	case "left", "leftouter", "left_outer":
		return JoinLeft, nil
	case "right", "rightouter", "right_outer":
		return JoinRight, nil
	case "full", "outer", "fullouter", "full_outer":
		return JoinFull, nil
	case "cross":
		return JoinCross, nil
	default:
		return JoinInner, fmt.Errorf("unsupported join type: %q", how)
	}
}

// Join represents a JOIN clause
type Join struct {
	Type      JoinType   // Type of join (INNER, LEFT, RIGHT, FULL, CROSS)
	TableName string     // Table or CTE to join
	Subquery  *Query     // Subquery to join (alternative to TableName)
	Alias     string     // Optional alias for joined table/subquery
	Condition Expression // ON clause condition (nil for CROSS JOIN)
}

// CTE represents a Common Table Expression (WITH clause)
type CTE struct {
	Name  string // CTE name
	Query *Query // Subquery defining the CTE
}

// OrderByItem is one sort key
type OrderByItem struct {
	Expr SelectExpression // Column, alias, or expression
	Desc bool             // DESC vs ASC (default)
}

// SelectItem represents a column or expression in the SELECT list
type SelectItem struct {
	Expr  SelectExpression // Column, function, or expression
	Alias string           // Optional alias (AS name)
}

// SelectExpression is an expression that produces a value for a row
type SelectExpression interface {
	EvaluateSelect(row map[string]interface{}) (interface{}, error)
}

// Expression represents a boolean condition (WHERE, ON, HAVING, WHEN)
type Expression interface {
	Evaluate(row map[string]interface{}) (bool, error)
}

// ColumnRef references a column, "*" or "alias.*"
type ColumnRef struct {
	Column string
}

// FunctionCall represents a scalar function invocation
type FunctionCall struct {
	Name string
	Args []SelectExpression
}

// LiteralExpr represents a literal value (int64, float64, string, bool or nil)
type LiteralExpr struct {
	Value interface{}
}

// ArithmeticExpr represents left (+|-|*|/) right
type ArithmeticExpr struct {
	Left     SelectExpression
	Operator TokenType
	Right    SelectExpression
}

// AggregateExpr represents an aggregate function (COUNT, SUM, AVG, MIN, MAX)
type AggregateExpr struct {
	Function string           // COUNT, SUM, AVG, MIN, MAX
	Arg      SelectExpression // Argument expression (nil for COUNT(*))
	Distinct bool             // DISTINCT modifier

	slot string // row key holding the computed value for the current group
}

// CaseExpr represents a searched CASE expression. Simple CASE (CASE x WHEN v)
// is rewritten by the parser into equality conditions.
type CaseExpr struct {
	WhenClauses []WhenClause     // WHEN conditions and their results
	ElseExpr    SelectExpression // ELSE result (optional)
}

// WhenClause represents a single WHEN condition and result
type WhenClause struct {
	Condition Expression       // WHEN condition
	Result    SelectExpression // THEN result
}

// WindowExpr represents a window function call
type WindowExpr struct {
	Function string             // ROW_NUMBER, RANK, DENSE_RANK, LAG, LEAD
	Args     []SelectExpression // Function arguments
	Window   *WindowSpec        // Window specification

	slot string // row key holding the computed value
}

// WindowSpec specifies the window partitioning and ordering
type WindowSpec struct {
	PartitionBy []string      // PARTITION BY column names
	OrderBy     []OrderByItem // ORDER BY specification
}

// ScalarSubqueryExpr is a subquery used as a value. Only uncorrelated
// subqueries are supported; the result is computed once per execution.
type ScalarSubqueryExpr struct {
	Query *Query

	resolved bool
	value    interface{}
}

// BinaryExpr represents a binary expression (AND/OR)
type BinaryExpr struct {
	Left     Expression
	Operator TokenType // TokenAnd or TokenOr
	Right    Expression
}

// NotExpr negates a condition
type NotExpr struct {
	Expr Expression
}

// ComparisonExpr compares two value expressions
type ComparisonExpr struct {
	Left     SelectExpression
	Operator TokenType
	Right    SelectExpression
}

// InExpr represents expr [NOT] IN (v1, v2, ...)
type InExpr struct {
	Expr   SelectExpression
	Values []SelectExpression
	Negate bool
}

// LikeExpr represents expr [NOT] LIKE 'pattern'
type LikeExpr struct {
	Expr    SelectExpression
	Pattern string
	Negate  bool
}

// BetweenExpr represents expr [NOT] BETWEEN lower AND upper
type BetweenExpr struct {
	Expr   SelectExpression
	Lower  SelectExpression
	Upper  SelectExpression
	Negate bool
}

// IsNullExpr represents expr IS [NOT] NULL
type IsNullExpr struct {
	Expr   SelectExpression
	Negate bool
}

// ExistsExpr represents [NOT] EXISTS (subquery)
type ExistsExpr struct {
	Subquery *Query
	Negate   bool

	resolved bool
	exists   bool
}

// InSubqueryExpr represents expr [NOT] IN (subquery)
type InSubqueryExpr struct {
	Expr     SelectExpression
	Subquery *Query
	Negate   bool

	resolved bool
	values   []interface{}
}

// TruthExpr adapts a value expression to a condition. It is true when the
// value is boolean true.
type TruthExpr struct {
	Expr SelectExpression
}

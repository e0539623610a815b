package query

import (
	"fmt"
	"strings"
)

// Evaluate reports whether the condition is TRUE. FALSE and UNKNOWN both
// reject the row.
func (b *BinaryExpr) Evaluate(row map[string]interface{}) (bool, error) {
	return holds(b.truth(row))
}

// truth evaluates AND/OR with short-circuiting
func (b *BinaryExpr) truth(row map[string]interface{}) (Truth, error) {
	left, err := Test(b.Left, row)
	if err != nil {
		return False, err
	}

	switch b.Operator {
	case TokenAnd:
		if left == False {
			return False, nil
		}
	case TokenOr:
		if left == True {
			return True, nil
		}
	default:
		return False, fmt.Errorf("unsupported binary operator: %v", b.Operator)
	}

	right, err := Test(b.Right, row)
	if err != nil {
		return False, err
	}
	if b.Operator == TokenAnd {
		return left.And(right), nil
	}
	return left.Or(right), nil
}

// Evaluate reports whether NOT holds
func (n *NotExpr) Evaluate(row map[string]interface{}) (bool, error) {
	return holds(n.truth(row))
}

func (n *NotExpr) truth(row map[string]interface{}) (Truth, error) {
	v, err := Test(n.Expr, row)
	if err != nil {
		return False, err
	}
	return v.Not(), nil
}

// Evaluate evaluates a comparison expression
func (c *ComparisonExpr) Evaluate(row map[string]interface{}) (bool, error) {
	return holds(c.truth(row))
}

func (c *ComparisonExpr) truth(row map[string]interface{}) (Truth, error) {
	left, err := c.Left.EvaluateSelect(row)
	if err != nil {
		return False, err
	}
	right, err := c.Right.EvaluateSelect(row)
	if err != nil {
		return False, err
	}
	return compareTruth(left, c.Operator, right)
}

func compareTruth(left interface{}, operator TokenType, right interface{}) (Truth, error) {
	if left == nil || right == nil {
		return Unknown, nil
	}
	ok, err := compare(left, operator, right)
	if err != nil {
		return False, err
	}
	return truthOf(ok), nil
}

// membership is TRUE on a match, UNKNOWN when there is no match but the
// candidates include NULL, FALSE otherwise
func membership(value interface{}, candidates []interface{}) (Truth, error) {
	if value == nil {
		return Unknown, nil
	}
	sawNull := false
	for _, candidate := range candidates {
		if candidate == nil {
			sawNull = true
			continue
		}
		match, err := compare(value, TokenEqual, candidate)
		if err != nil {
			return False, err
		}
		if match {
			return True, nil
		}
	}
	if sawNull {
		return Unknown, nil
	}
	return False, nil
}

// Evaluate evaluates an IN list expression
func (i *InExpr) Evaluate(row map[string]interface{}) (bool, error) {
	return holds(i.truth(row))
}

func (i *InExpr) truth(row map[string]interface{}) (Truth, error) {
	value, err := i.Expr.EvaluateSelect(row)
	if err != nil {
		return False, err
	}

	candidates := make([]interface{}, len(i.Values))
	for j, v := range i.Values {
		if candidates[j], err = v.EvaluateSelect(row); err != nil {
			return False, err
		}
	}

	t, err := membership(value, candidates)
	if err != nil || !i.Negate {
		return t, err
	}
	return t.Not(), nil
}

// Evaluate evaluates a LIKE expression
func (l *LikeExpr) Evaluate(row map[string]interface{}) (bool, error) {
	return holds(l.truth(row))
}

func (l *LikeExpr) truth(row map[string]interface{}) (Truth, error) {
	value, err := l.Expr.EvaluateSelect(row)
	if err != nil {
		return False, err
	}
	if value == nil {
		return Unknown, nil
	}

	str, ok := value.(string)
	if !ok {
		return False, fmt.Errorf("LIKE requires a string value, got %T", value)
	}

	return truthOf(matchLikePattern(str, l.Pattern) != l.Negate), nil
}

// Evaluate evaluates a BETWEEN expression (inclusive on both ends)
func (b *BetweenExpr) Evaluate(row map[string]interface{}) (bool, error) {
	return holds(b.truth(row))
}

func (b *BetweenExpr) truth(row map[string]interface{}) (Truth, error) {
	value, err := b.Expr.EvaluateSelect(row)
	if err != nil {
		return False, err
	}
	lower, err := b.Lower.EvaluateSelect(row)
	if err != nil {
		return False, err
	}
	upper, err := b.Upper.EvaluateSelect(row)
	if err != nil {
		return False, err
	}

	lowerMatch, err := compareTruth(value, TokenGreaterEqual, lower)
	if err != nil {
		return False, err
	}
	upperMatch, err := compareTruth(value, TokenLessEqual, upper)
	if err != nil {
		return False, err
	}

	t := lowerMatch.And(upperMatch)
	if b.Negate {
		return t.Not(), nil
	}
	return t, nil
}

// Evaluate evaluates an IS [NOT] NULL expression. It is never UNKNOWN.
func (i *IsNullExpr) Evaluate(row map[string]interface{}) (bool, error) {
	value, err := i.Expr.EvaluateSelect(row)
	if err != nil {
		return false, err
	}
	return (value == nil) != i.Negate, nil
}

// Evaluate evaluates a boolean-valued expression used as a condition
func (t *TruthExpr) Evaluate(row map[string]interface{}) (bool, error) {
	return holds(t.truth(row))
}

func (t *TruthExpr) truth(row map[string]interface{}) (Truth, error) {
	value, err := t.Expr.EvaluateSelect(row)
	if err != nil {
		return False, err
	}
	switch v := value.(type) {
	case nil:
		return Unknown, nil
	case bool:
		return truthOf(v), nil
	default:
		return False, fmt.Errorf("expected boolean condition, got %T", value)
	}
}

// Evaluate reports whether the subquery produced rows. The executor
// resolves the subquery before rows are evaluated.
func (e *ExistsExpr) Evaluate(row map[string]interface{}) (bool, error) {
	if !e.resolved {
		return false, fmt.Errorf("EXISTS subquery evaluation requires executor context")
	}
	return e.exists != e.Negate, nil
}

// Evaluate checks membership in the subquery's single result column.
func (i *InSubqueryExpr) Evaluate(row map[string]interface{}) (bool, error) {
	return holds(i.truth(row))
}

func (i *InSubqueryExpr) truth(row map[string]interface{}) (Truth, error) {
	if !i.resolved {
		return False, fmt.Errorf("IN subquery evaluation requires executor context")
	}

	value, err := i.Expr.EvaluateSelect(row)
	if err != nil {
		return False, err
	}

	t, err := membership(value, i.values)
	if err != nil || !i.Negate {
		return t, err
	}
	return t.Not(), nil
}

// EvaluateSelect evaluates a column reference
func (c *ColumnRef) EvaluateSelect(row map[string]interface{}) (interface{}, error) {
	if isStar(c.Column) {
		return nil, fmt.Errorf("%s is only allowed as a select item or COUNT(*)", c.Column)
	}
	return lookupColumn(row, c.Column)
}

// EvaluateSelect evaluates a function call
func (f *FunctionCall) EvaluateSelect(row map[string]interface{}) (interface{}, error) {
	fn, exists := GetGlobalRegistry().Get(f.Name)
	if !exists {
		return nil, fmt.Errorf("unknown function: %s", f.Name)
	}

	argCount := len(f.Args)
	if min := fn.MinArity(); min >= 0 && argCount < min {
		return nil, fmt.Errorf("function %s: expected at least %d arguments, got %d", f.Name, min, argCount)
	}
	if max := fn.MaxArity(); max >= 0 && argCount > max {
		return nil, fmt.Errorf("function %s: expected at most %d arguments, got %d", f.Name, max, argCount)
	}

	args := make([]interface{}, argCount)
	for i, arg := range f.Args {
		val, err := arg.EvaluateSelect(row)
		if err != nil {
			return nil, fmt.Errorf("function %s: argument %d: %w", f.Name, i+1, err)
		}
		args[i] = val
	}

	return fn.Evaluate(args)
}

// EvaluateSelect evaluates a literal expression
func (l *LiteralExpr) EvaluateSelect(row map[string]interface{}) (interface{}, error) {
	return l.Value, nil
}

// EvaluateSelect evaluates an arithmetic expression
func (a *ArithmeticExpr) EvaluateSelect(row map[string]interface{}) (interface{}, error) {
	left, err := a.Left.EvaluateSelect(row)
	if err != nil {
		return nil, err
	}
	right, err := a.Right.EvaluateSelect(row)
	if err != nil {
		return nil, err
	}
	return arithmetic(a.Operator, left, right)
}

// EvaluateSelect returns the aggregate value computed for the row's group.
func (a *AggregateExpr) EvaluateSelect(row map[string]interface{}) (interface{}, error) {
	if a.slot != "" {
		if v, ok := row[a.slot]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("aggregate function %s cannot be evaluated on individual rows", a.Function)
}

// EvaluateSelect returns the window value computed for the row.
func (w *WindowExpr) EvaluateSelect(row map[string]interface{}) (interface{}, error) {
	if w.slot != "" {
		if v, ok := row[w.slot]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("window function %s cannot be evaluated on individual rows", w.Function)
}

// EvaluateSelect evaluates a CASE expression
func (c *CaseExpr) EvaluateSelect(row map[string]interface{}) (interface{}, error) {
	for _, whenClause := range c.WhenClauses {
		matched, err := whenClause.Condition.Evaluate(row)
		if err != nil {
			return nil, fmt.Errorf("CASE: evaluating WHEN condition: %w", err)
		}
		if matched {
			result, err := whenClause.Result.EvaluateSelect(row)
			if err != nil {
				return nil, fmt.Errorf("CASE: evaluating THEN result: %w", err)
			}
			return result, nil
		}
	}

	if c.ElseExpr != nil {
		result, err := c.ElseExpr.EvaluateSelect(row)
		if err != nil {
			return nil, fmt.Errorf("CASE: evaluating ELSE result: %w", err)
		}
		return result, nil
	}

	return nil, nil
}

// EvaluateSelect returns the resolved scalar subquery value
func (s *ScalarSubqueryExpr) EvaluateSelect(row map[string]interface{}) (interface{}, error) {
	if !s.resolved {
		return nil, fmt.Errorf("scalar subquery evaluation requires executor context")
	}
	return s.value, nil
}

// ExpressionName derives the output column name of an unaliased select
// expression: bare column names, lower-case function names with their
// arguments, and operators spelled out.
func ExpressionName(expr SelectExpression) string {
	switch e := expr.(type) {
	case *ColumnRef:
		return BareName(e.Column)
	case *LiteralExpr:
		if e.Value == nil {
			return "NULL"
		}
		return FormatValue(e.Value)
	case *ArithmeticExpr:
		return fmt.Sprintf("(%s %v %s)", ExpressionName(e.Left), e.Operator, ExpressionName(e.Right))
	case *FunctionCall:
		if (e.Name == "CAST" || e.Name == "TRY_CAST") && len(e.Args) == 2 {
			return strings.ToLower(e.Name) + "(" + ExpressionName(e.Args[0]) + " AS " + ExpressionName(e.Args[1]) + ")"
		}
		return strings.ToLower(e.Name) + "(" + joinNames(e.Args) + ")"
	case *AggregateExpr:
		arg := "*"
		if e.Arg != nil {
			arg = ExpressionName(e.Arg)
		}
		if e.Distinct {
			arg = "DISTINCT " + arg
		}
		return strings.ToLower(e.Function) + "(" + arg + ")"
	case *WindowExpr:
		return strings.ToLower(e.Function) + "(" + joinNames(e.Args) + ")"
	case *CaseExpr:
		return "CASE"
	case *PredicateExpr:
		return "condition"
	case *ScalarSubqueryExpr:
		return "scalarsubquery()"
	}
	return fmt.Sprintf("%T", expr)
}

func joinNames(args []SelectExpression) string {
	names := make([]string, len(args))
	for i, arg := range args {
		names[i] = ExpressionName(arg)
	}
	return strings.Join(names, ", ")
}

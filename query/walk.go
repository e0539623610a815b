package query

// walkValue visits expr and its children depth-first. visit returns false
// to skip the children of a node. Subquery bodies are never entered.
func walkValue(expr SelectExpression, visit func(node interface{}) bool) {
	if expr == nil || !visit(expr) {
		return
	}

	switch e := expr.(type) {
	case *ArithmeticExpr:
		walkValue(e.Left, visit)
		walkValue(e.Right, visit)
	case *FunctionCall:
		for _, arg := range e.Args {
			walkValue(arg, visit)
		}
	case *AggregateExpr:
		walkValue(e.Arg, visit)
	case *CaseExpr:
		for _, when := range e.WhenClauses {
			walkCondition(when.Condition, visit)
			walkValue(when.Result, visit)
		}
		walkValue(e.ElseExpr, visit)
	case *PredicateExpr:
		walkCondition(e.Cond, visit)
	case *WindowExpr:
		for _, arg := range e.Args {
			walkValue(arg, visit)
		}
		if e.Window != nil {
			for _, item := range e.Window.OrderBy {
				walkValue(item.Expr, visit)
			}
		}
	}
}

// walkCondition visits a condition tree and every value expression in it.
func walkCondition(expr Expression, visit func(node interface{}) bool) {
	if expr == nil || !visit(expr) {
		return
	}

	switch e := expr.(type) {
	case *BinaryExpr:
		walkCondition(e.Left, visit)
		walkCondition(e.Right, visit)
	case *NotExpr:
		walkCondition(e.Expr, visit)
	case *ComparisonExpr:
		walkValue(e.Left, visit)
		walkValue(e.Right, visit)
	case *InExpr:
		walkValue(e.Expr, visit)
		for _, v := range e.Values {
			walkValue(v, visit)
		}
	case *LikeExpr:
		walkValue(e.Expr, visit)
	case *BetweenExpr:
		walkValue(e.Expr, visit)
		walkValue(e.Lower, visit)
		walkValue(e.Upper, visit)
	case *IsNullExpr:
		walkValue(e.Expr, visit)
	case *InSubqueryExpr:
		walkValue(e.Expr, visit)
	case *TruthExpr:
		walkValue(e.Expr, visit)
	}
}

// collectAggregates returns the aggregate calls in the select list and
// HAVING clause, in order of appearance.
func collectAggregates(selectList []SelectItem, having Expression) []*AggregateExpr {
	var aggs []*AggregateExpr
	visit := func(node interface{}) bool {
		switch n := node.(type) {
		case *AggregateExpr:
			aggs = append(aggs, n)
			return false
		case *WindowExpr:
			return false
		}
		return true
	}
	for _, item := range selectList {
		walkValue(item.Expr, visit)
	}
	walkCondition(having, visit)
	return aggs
}

// collectWindows returns the window calls in the select list.
func collectWindows(selectList []SelectItem) []*WindowExpr {
	var windows []*WindowExpr
	for _, item := range selectList {
		walkValue(item.Expr, func(node interface{}) bool {
			if w, ok := node.(*WindowExpr); ok {
				windows = append(windows, w)
				return false
			}
			return true
		})
	}
	return windows
}

// HasAggregateFunction checks if the select list contains an aggregate
func HasAggregateFunction(selectList []SelectItem) bool {
	return len(collectAggregates(selectList, nil)) > 0
}

// HasWindowFunction checks if the select list contains a window function
func HasWindowFunction(selectList []SelectItem) bool {
	return len(collectWindows(selectList)) > 0
}

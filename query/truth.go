package query

// Truth is the three-valued result of a SQL condition. A comparison with a
// NULL operand is Unknown, and Unknown survives NOT.
type Truth int8

const (
	False Truth = iota
	True
	Unknown
)

func truthOf(b bool) Truth {
	if b {
		return True
	}
	return False
}

// Not negates t; NOT Unknown is Unknown
func (t Truth) Not() Truth {
	switch t {
	case True:
		return False
	case False:
		return True
	}
	return Unknown
}

// And is the SQL conjunction: False wins over Unknown
func (t Truth) And(other Truth) Truth {
	if t == False || other == False {
		return False
	}
	if t == Unknown || other == Unknown {
		return Unknown
	}
	return True
}

// Or is the SQL disjunction: True wins over Unknown
func (t Truth) Or(other Truth) Truth {
	if t == True || other == True {
		return True
	}
	if t == Unknown || other == Unknown {
		return Unknown
	}
	return False
}

// Value returns the condition as a column value: true, false or nil
func (t Truth) Value() interface{} {
	switch t {
	case True:
		return true
	case False:
		return false
	}
	return nil
}

func (t Truth) String() string {
	switch t {
	case True:
		return "TRUE"
	case False:
		return "FALSE"
	}
	return "UNKNOWN"
}

type truthEvaluator interface {
	truth(row map[string]interface{}) (Truth, error)
}

// Test evaluates cond against row in three-valued logic. Conditions from
// outside this package that only report a bool are never Unknown.
func Test(cond Expression, row map[string]interface{}) (Truth, error) {
	if te, ok := cond.(truthEvaluator); ok {
		return te.truth(row)
	}
	ok, err := cond.Evaluate(row)
	if err != nil {
		return False, err
	}
	return truthOf(ok), nil
}

// holds adapts a three-valued result to a filter decision: only True keeps
// the row.
func holds(t Truth, err error) (bool, error) {
	return t == True && err == nil, err
}

// PredicateExpr uses a condition as a boolean column value. Unknown yields
// NULL.
type PredicateExpr struct {
	Cond Expression
}

// EvaluateSelect returns true, false or nil
func (p *PredicateExpr) EvaluateSelect(row map[string]interface{}) (interface{}, error) {
	t, err := Test(p.Cond, row)
	if err != nil {
		return nil, err
	}
	return t.Value(), nil
}

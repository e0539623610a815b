package query

import (
	"testing"
)

func TestApplyGroupByAndAggregate(t *testing.T) {
	rows := []map[string]interface{}{
		{"customer_id": "B", "product_id": int64(1), "order_date": date("2021-01-01"), "price": int64(10)},
		{"customer_id": "A", "product_id": int64(2), "order_date": date("2021-01-01"), "price": int64(15)},
		{"customer_id": "B", "product_id": int64(3), "order_date": date("2021-01-04"), "price": int64(12)},
		{"customer_id": "B", "product_id": int64(1), "order_date": date("2021-01-04"), "price": nil},
	}

	selectList := []SelectItem{
		{Expr: &ColumnRef{Column: "customer_id"}},
		{Expr: &AggregateExpr{Function: "COUNT"}, Alias: "orders"},
		{Expr: &AggregateExpr{Function: "COUNT", Arg: &ColumnRef{Column: "price"}}, Alias: "priced"},
		{Expr: &AggregateExpr{Function: "COUNT", Arg: &ColumnRef{Column: "order_date"}, Distinct: true}, Alias: "days"},
		{Expr: &AggregateExpr{Function: "COUNT", Arg: &ColumnRef{Column: "product_id"}, Distinct: true}, Alias: "products"},
		{Expr: &AggregateExpr{Function: "SUM", Arg: &ColumnRef{Column: "price"}}, Alias: "total"},
		{Expr: &AggregateExpr{Function: "AVG", Arg: &ColumnRef{Column: "price"}}, Alias: "avg"},
		{Expr: &AggregateExpr{Function: "MIN", Arg: &ColumnRef{Column: "order_date"}}, Alias: "first"},
		{Expr: &AggregateExpr{Function: "MAX", Arg: &ColumnRef{Column: "order_date"}}, Alias: "last"},
	}

	result, err := ApplyGroupByAndAggregate(rows, []string{"customer_id"}, selectList, nil)
	if err != nil {
		t.Fatalf("ApplyGroupByAndAggregate failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(result))
	}

	// groups keep first-seen order
	b, a := result[0], result[1]
	if b["customer_id"] != "B" || a["customer_id"] != "A" {
		t.Fatalf("unexpected group order: %v, %v", b["customer_id"], a["customer_id"])
	}

	checks := []struct {
		column string
		want   interface{}
	}{
		{"orders", int64(3)},
		{"priced", int64(2)},
		{"days", int64(2)},
		{"products", int64(2)},
		{"total", int64(22)},
		{"avg", 11.0},
		{"first", date("2021-01-01")},
		{"last", date("2021-01-04")},
	}
	for _, c := range checks {
		if got := b[c.column]; got != c.want {
			t.Errorf("group B %s = %#v, want %#v", c.column, got, c.want)
		}
	}
	if a["total"] != int64(15) || a["orders"] != int64(1) {
		t.Errorf("group A = %v", a)
	}
}

func TestApplyGroupByCountWhen(t *testing.T) {
	rows := []map[string]interface{}{
		{"customer_id": "A", "pid": int64(1)},
		{"customer_id": "A", "pid": int64(1)},
		{"customer_id": "A", "pid": int64(3)},
		{"customer_id": "B", "pid": int64(2)},
	}

	countWhen := func(id int64) SelectExpression {
		return &AggregateExpr{Function: "COUNT", Arg: &CaseExpr{
			WhenClauses: []WhenClause{{
				Condition: &ComparisonExpr{Left: &ColumnRef{Column: "pid"}, Operator: TokenEqual, Right: &LiteralExpr{Value: id}},
				Result:    &LiteralExpr{Value: int64(1)},
			}},
		}}
	}
	selectList := []SelectItem{
		{Expr: &ColumnRef{Column: "customer_id"}},
		{Expr: countWhen(1), Alias: "Sushi Ordered"},
		{Expr: countWhen(2), Alias: "Curry Ordered"},
		{Expr: countWhen(3), Alias: "Ramen Ordered"},
	}

	result, err := ApplyGroupByAndAggregate(rows, []string{"customer_id"}, selectList, nil)
	if err != nil {
		t.Fatalf("ApplyGroupByAndAggregate failed: %v", err)
	}

	want := []map[string]interface{}{
		{"customer_id": "A", "Sushi Ordered": int64(2), "Curry Ordered": int64(0), "Ramen Ordered": int64(1)},
		{"customer_id": "B", "Sushi Ordered": int64(0), "Curry Ordered": int64(1), "Ramen Ordered": int64(0)},
	}
	for i, w := range want {
		for col, v := range w {
			if result[i][col] != v {
				t.Errorf("row %d %s = %#v, want %#v", i, col, result[i][col], v)
			}
		}
	}
}

func TestApplyGroupByHaving(t *testing.T) {
	rows := []map[string]interface{}{
		{"k": "x", "v": int64(1)},
		{"k": "y", "v": int64(5)},
		{"k": "x", "v": int64(2)},
	}
	selectList := []SelectItem{
		{Expr: &ColumnRef{Column: "k"}},
		{Expr: &AggregateExpr{Function: "SUM", Arg: &ColumnRef{Column: "v"}}, Alias: "s"},
	}
	having := &ComparisonExpr{
		Left:     &AggregateExpr{Function: "COUNT"},
		Operator: TokenGreater,
		Right:    &LiteralExpr{Value: int64(1)},
	}

	result, err := ApplyGroupByAndAggregate(rows, []string{"k"}, selectList, having)
	if err != nil {
		t.Fatalf("ApplyGroupByAndAggregate failed: %v", err)
	}
	if len(result) != 1 || result[0]["k"] != "x" || result[0]["s"] != int64(3) {
		t.Errorf("unexpected result: %v", result)
	}
}

func TestSumMixedNumbers(t *testing.T) {
	got, err := sumValues([]interface{}{int64(1), 2.5})
	if err != nil {
		t.Fatalf("sumValues failed: %v", err)
	}
	if got != 3.5 {
		t.Errorf("sum = %#v, want 3.5", got)
	}

	if _, err := sumValues([]interface{}{"a"}); err == nil {
		t.Error("expected error summing strings")
	}
}

func TestDistinctSet(t *testing.T) {
	set := newDistinctSet()
	inputs := []struct {
		value interface{}
		isNew bool
	}{
		{int64(-3), true},
		{int64(-3), false},
		{int32(-3), false},
		{date("2021-01-01"), true},
		{date("2021-01-01"), false},
		{"2021-01-01", true},
		{"2021-01-01", false},
		{1.5, true},
		{1.5, false},
	}
	for i, in := range inputs {
		if got := set.add(in.value); got != in.isNew {
			t.Errorf("input %d (%v): add = %v, want %v", i, in.value, got, in.isNew)
		}
	}
}

package query

import (
	"testing"
)

func windowRows() []map[string]interface{} {
	return []map[string]interface{}{
		{"customer_id": "A", "order_date": date("2021-01-07"), "product_id": int64(2)},
		{"customer_id": "A", "order_date": date("2021-01-01"), "product_id": int64(1)},
		{"customer_id": "B", "order_date": date("2021-01-02"), "product_id": int64(2)},
		{"customer_id": "A", "order_date": date("2021-01-01"), "product_id": int64(3)},
		{"customer_id": "B", "order_date": date("2021-01-04"), "product_id": int64(1)},
	}
}

func windowOver(function string, args ...SelectExpression) *WindowExpr {
	return &WindowExpr{
		Function: function,
		Args:     args,
		Window: &WindowSpec{
			PartitionBy: []string{"customer_id"},
			OrderBy:     []OrderByItem{{Expr: &ColumnRef{Column: "order_date"}}},
		},
	}
}

func TestApplyWindowFunctions(t *testing.T) {
	tests := []struct {
		name string
		expr *WindowExpr
		want []interface{}
	}{
		{
			name: "ROW_NUMBER keeps input order on ties",
			expr: windowOver("ROW_NUMBER"),
			want: []interface{}{int64(3), int64(1), int64(1), int64(2), int64(2)},
		},
		{
			name: "RANK leaves gaps after ties",
			expr: windowOver("RANK"),
			want: []interface{}{int64(3), int64(1), int64(1), int64(1), int64(2)},
		},
		{
			name: "DENSE_RANK has no gaps",
			expr: windowOver("DENSE_RANK"),
			want: []interface{}{int64(2), int64(1), int64(1), int64(1), int64(2)},
		},
		{
			name: "LAG",
			expr: windowOver("LAG", &ColumnRef{Column: "product_id"}),
			want: []interface{}{int64(3), nil, nil, int64(1), int64(2)},
		},
		{
			name: "LEAD with offset and default",
			expr: windowOver("LEAD", &ColumnRef{Column: "product_id"}, &LiteralExpr{Value: int64(2)}, &LiteralExpr{Value: int64(0)}),
			want: []interface{}{int64(0), int64(2), int64(0), int64(0), int64(0)},
		},
		{
			name: "NTILE gives the first buckets the extra rows",
			expr: windowOver("NTILE", &LiteralExpr{Value: int64(2)}),
			want: []interface{}{int64(2), int64(1), int64(1), int64(1), int64(2)},
		},
		{
			name: "FIRST_VALUE",
			expr: windowOver("FIRST_VALUE", &ColumnRef{Column: "product_id"}),
			want: []interface{}{int64(1), int64(1), int64(2), int64(1), int64(2)},
		},
		{
			name: "LAST_VALUE stops at the last peer",
			expr: windowOver("LAST_VALUE", &ColumnRef{Column: "product_id"}),
			want: []interface{}{int64(2), int64(3), int64(2), int64(3), int64(1)},
		},
		{
			name: "NTH_VALUE is null until the frame reaches n",
			expr: windowOver("NTH_VALUE", &ColumnRef{Column: "product_id"}, &LiteralExpr{Value: int64(2)}),
			want: []interface{}{int64(3), int64(3), nil, int64(3), int64(1)},
		},
		{
			name: "NTILE with more buckets than rows",
			expr: windowOver("NTILE", &LiteralExpr{Value: int64(5)}),
			want: []interface{}{int64(3), int64(1), int64(1), int64(2), int64(2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := windowRows()
			selectList := []SelectItem{
				{Expr: &ColumnRef{Column: "customer_id"}},
				{Expr: tt.expr, Alias: "w"},
			}

			windowed, err := ApplyWindowFunctions(rows, selectList)
			if err != nil {
				t.Fatalf("ApplyWindowFunctions failed: %v", err)
			}
			projected, _, err := ApplySelectList(windowed, selectList, nil)
			if err != nil {
				t.Fatalf("ApplySelectList failed: %v", err)
			}

			for i, want := range tt.want {
				if got := projected[i]["w"]; got != want {
					t.Errorf("row %d: got %#v, want %#v", i, got, want)
				}
			}
		})
	}
}

func TestApplyWindowFunctionsDoesNotModifyInput(t *testing.T) {
	rows := windowRows()
	selectList := []SelectItem{{Expr: windowOver("ROW_NUMBER"), Alias: "rn"}}

	if _, err := ApplyWindowFunctions(rows, selectList); err != nil {
		t.Fatalf("ApplyWindowFunctions failed: %v", err)
	}
	for i, row := range rows {
		if len(row) != 3 {
			t.Errorf("input row %d was modified: %v", i, row)
		}
	}
}

func TestApplyWindowFunctionsWithoutPartition(t *testing.T) {
	rows := windowRows()
	selectList := []SelectItem{{
		Expr: &WindowExpr{
			Function: "ROW_NUMBER",
			Window:   &WindowSpec{OrderBy: []OrderByItem{{Expr: &ColumnRef{Column: "order_date"}, Desc: true}}},
		},
		Alias: "rn",
	}}

	windowed, err := ApplyWindowFunctions(rows, selectList)
	if err != nil {
		t.Fatalf("ApplyWindowFunctions failed: %v", err)
	}
	projected, _, err := ApplySelectList(windowed, selectList, nil)
	if err != nil {
		t.Fatalf("ApplySelectList failed: %v", err)
	}

	want := []int64{1, 4, 3, 5, 2}
	for i, w := range want {
		if projected[i]["rn"] != w {
			t.Errorf("row %d: rn = %v, want %d", i, projected[i]["rn"], w)
		}
	}
}

func TestApplyWindowFunctionsErrors(t *testing.T) {
	tests := []struct {
		name string
		expr *WindowExpr
	}{
		{"LAG without argument", windowOver("LAG")},
		{"LAG with negative offset", windowOver("LAG", &ColumnRef{Column: "product_id"}, &LiteralExpr{Value: int64(-1)})},
		{"NTILE without argument", windowOver("NTILE")},
		{"NTILE with zero buckets", windowOver("NTILE", &LiteralExpr{Value: int64(0)})},
		{"NTH_VALUE without position", windowOver("NTH_VALUE", &ColumnRef{Column: "product_id"})},
		{"NTH_VALUE with column position", windowOver("NTH_VALUE", &ColumnRef{Column: "product_id"}, &ColumnRef{Column: "product_id"})},
		{"FIRST_VALUE without argument", windowOver("FIRST_VALUE")},
		{"unknown partition column", &WindowExpr{Function: "RANK", Window: &WindowSpec{PartitionBy: []string{"missing"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyWindowFunctions(windowRows(), []SelectItem{{Expr: tt.expr}})
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValueWindowFunctionsInSQL(t *testing.T) {
	res := mustExecute(t, dinerCatalog(), `
SELECT customer_id,
       NTILE(2) OVER (ORDER BY order_date) AS half,
       FIRST_VALUE(product_id) OVER (PARTITION BY customer_id ORDER BY order_date) AS first_item,
       LAST_VALUE(product_id) OVER (PARTITION BY customer_id) AS last_item
FROM sales
ORDER BY order_date`)
	assertResult(t, res, []string{"customer_id", "half", "first_item", "last_item"}, [][]interface{}{
		{"C1", int64(1), int64(1), int64(2)},
		{"C1", int64(1), int64(1), int64(2)},
		{"C2", int64(2), int64(1), int64(1)},
	})

	if _, err := ExecuteSQL("SELECT NTILE(2) FROM sales", dinerCatalog()); err == nil {
		t.Error("expected error for NTILE without OVER")
	}
}

package frame

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/dinersql/output"
	"github.com/vegasq/dinersql/query"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func salesFrame() *DataFrame {
	return New("sales", []string{"customer_id", "order_date", "product_id"}, []map[string]interface{}{
		{"customer_id": "C1", "order_date": date("2021-01-01"), "product_id": int64(1)},
		{"customer_id": "C1", "order_date": date("2021-01-02"), "product_id": int64(2)},
		{"customer_id": "C2", "order_date": date("2021-01-05"), "product_id": int64(1)},
	})
}

func menuFrame() *DataFrame {
	return New("menu", []string{"product_id", "product_name", "price"}, []map[string]interface{}{
		{"product_id": int64(1), "product_name": "Sushi", "price": int64(10)},
		{"product_id": int64(2), "product_name": "Curry", "price": int64(15)},
	})
}

func productMatch() Column {
	return Col("sales.product_id").EqualTo(Col("menu.product_id"))
}

// column returns one column of the collected rows
func column(t *testing.T, df *DataFrame, name string) []interface{} {
	t.Helper()
	rows, err := df.Collect()
	require.NoError(t, err)
	values := make([]interface{}, len(rows))
	for i, row := range rows {
		values[i] = row[name]
	}
	return values
}

func TestTotalSpent(t *testing.T) {
	df := salesFrame().
		Join(menuFrame(), productMatch(), "inner").
		GroupBy("customer_id").
		Agg(Sum(Col("price")).Alias("total_amount_spent")).
		OrderBy(Col("total_amount_spent").Desc())

	require.NoError(t, df.Err())
	assert.Equal(t, []string{"customer_id", "total_amount_spent"}, df.Columns())
	assert.Equal(t, []interface{}{"C1", "C2"}, column(t, df, "customer_id"))
	assert.Equal(t, []interface{}{int64(25), int64(10)}, column(t, df, "total_amount_spent"))
}

func TestDaysVisited(t *testing.T) {
	df := salesFrame().
		GroupBy("customer_id").
		Agg(CountDistinct(Col("order_date")).Alias("Days_Visited")).
		Sort(Desc("Days_Visited"))

	assert.Equal(t, []interface{}{int64(2), int64(1)}, column(t, df, "Days_Visited"))
}

func TestFirstItem(t *testing.T) {
	w := NewWindow().PartitionBy("customer_id").OrderBy(Col("order_date"))
	df := salesFrame().
		WithColumn("rank", RowNumber().Over(w)).
		Where(Col("rank").EqualTo(1)).
		Join(menuFrame(), productMatch(), "inner").
		Select(Col("customer_id"), Col("product_name"))

	require.NoError(t, df.Err())
	assert.Equal(t, []string{"customer_id", "product_name"}, df.Columns())
	assert.Equal(t, []interface{}{"C1", "C2"}, column(t, df, "customer_id"))
	assert.Equal(t, []interface{}{"Sushi", "Sushi"}, column(t, df, "product_name"))
}

func TestMostPurchased(t *testing.T) {
	df := salesFrame().
		Join(menuFrame(), productMatch(), "inner").
		GroupBy("product_name").
		Agg(Count(Col("sales.product_id")).Alias("amt_ordered")).
		Sort(Col("amt_ordered").Desc()).
		Limit(1)

	rows, err := df.Collect()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Sushi", rows[0]["product_name"])
	assert.Equal(t, int64(2), rows[0]["amt_ordered"])
}

func TestConditionalCounts(t *testing.T) {
	df := salesFrame().
		GroupBy("customer_id").
		Agg(
			Sum(When(Col("product_id").EqualTo(1), 1).Otherwise(0)).Alias("Sushi Ordered"),
			Sum(When(Col("product_id").EqualTo(2), 1).Otherwise(0)).Alias("Curry Ordered"),
		).
		Sort(Col("customer_id"))

	assert.Equal(t, []interface{}{int64(1), int64(1)}, column(t, df, "Sushi Ordered"))
	assert.Equal(t, []interface{}{int64(1), int64(0)}, column(t, df, "Curry Ordered"))
}

func TestJoinTypes(t *testing.T) {
	sales := New("sales", []string{"customer_id", "product_id"}, []map[string]interface{}{
		{"customer_id": "C1", "product_id": int64(1)},
		{"customer_id": "C3", "product_id": int64(9)},
	})

	tests := []struct {
		how  string
		want []interface{}
	}{
		{"inner", []interface{}{"Sushi"}},
		{"left", []interface{}{"Sushi", nil}},
		{"right", []interface{}{"Sushi", "Curry"}},
		{"full_outer", []interface{}{"Sushi", nil, "Curry"}},
	}

	for _, tt := range tests {
		t.Run(tt.how, func(t *testing.T) {
			df := sales.Join(menuFrame(), productMatch(), tt.how)
			assert.Equal(t, tt.want, column(t, df, "menu.product_name"))
		})
	}

	cross := sales.Join(menuFrame(), Column{}, "cross")
	n, err := cross.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.Error(t, sales.Join(menuFrame(), productMatch(), "sideways").Err())
}

func TestJoinRequiresQualifiedColumn(t *testing.T) {
	df := salesFrame().
		Join(menuFrame(), productMatch(), "inner").
		Select(Col("product_id"))

	assert.ErrorIs(t, df.Err(), query.ErrAmbiguousColumn)
}

func TestAlias(t *testing.T) {
	s := salesFrame().Alias("s")
	m := menuFrame().Alias("m")

	assert.Equal(t, []string{"s.customer_id", "s.order_date", "s.product_id"}, s.Columns())

	df := s.Join(m, Col("s.product_id").EqualTo(Col("m.product_id")), "inner").
		Select(Col("s.customer_id"), Col("m.price").Multiply(10).Alias("points"))
	assert.Equal(t, []interface{}{int64(100), int64(150), int64(100)}, column(t, df, "points"))
}

func TestWithColumn(t *testing.T) {
	df := menuFrame().
		WithColumn("points", Col("price").Multiply(10)).
		WithColumn("price", Col("price").Plus(1))

	require.NoError(t, df.Err())
	assert.Equal(t, []string{"product_id", "product_name", "price", "points"}, df.Columns())
	assert.Equal(t, []interface{}{int64(11), int64(16)}, column(t, df, "price"))
	assert.Equal(t, []interface{}{int64(100), int64(150)}, column(t, df, "points"))

	assert.Error(t, menuFrame().WithColumn("total", Sum(Col("price"))).Err())
}

func TestWithColumnRenamed(t *testing.T) {
	df := menuFrame().WithColumnRenamed("product_name", "name").WithColumnRenamed("missing", "x")

	require.NoError(t, df.Err())
	assert.Equal(t, []string{"product_id", "name", "price"}, df.Columns())
	assert.Equal(t, []interface{}{"Sushi", "Curry"}, column(t, df, "name"))

	assert.Error(t, menuFrame().WithColumnRenamed("price", "product_id").Err())
}

func TestDrop(t *testing.T) {
	df := menuFrame().Drop("price", "unknown")
	assert.Equal(t, []string{"product_id", "product_name"}, df.Columns())
}

func TestFilterConditions(t *testing.T) {
	tests := []struct {
		name string
		cond Column
		want []interface{}
	}{
		{"greater", Col("price").Gt(10), []interface{}{"Curry"}},
		{"in", Col("product_id").IsIn(2, 3), []interface{}{"Curry"}},
		{"between", Col("price").Between(5, 10), []interface{}{"Sushi"}},
		{"like", Col("product_name").Like("S%"), []interface{}{"Sushi"}},
		{"not", Not(Col("product_name").EqualTo("Sushi")), []interface{}{"Curry"}},
		{"or", Col("price").Lt(11).Or(Col("price").Geq(15)), []interface{}{"Sushi", "Curry"}},
		{"and", Col("price").Leq(15).And(Col("product_id").NotEqual(1)), []interface{}{"Curry"}},
		{"is not null", Col("price").IsNotNull(), []interface{}{"Sushi", "Curry"}},
		{"is null", Col("price").IsNull(), []interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			df := menuFrame().Where(tt.cond)
			assert.Equal(t, tt.want, column(t, df, "product_name"))
		})
	}
}

func TestConditionAsValue(t *testing.T) {
	df := menuFrame().Select(Col("product_name"), Col("price").Gt(10).Alias("pricey"))
	assert.Equal(t, []interface{}{false, true}, column(t, df, "pricey"))
}

func TestNullConditions(t *testing.T) {
	df := New("menu", []string{"product_name", "price"}, []map[string]interface{}{
		{"product_name": "Sushi", "price": int64(10)},
		{"product_name": "Curry", "price": nil},
		{"product_name": "Ramen", "price": int64(12)},
	})

	pricey := df.Select(Col("product_name"), Col("price").Gt(11).Alias("pricey"))
	assert.Equal(t, []interface{}{false, nil, true}, column(t, pricey, "pricey"))

	assert.Equal(t, []interface{}{"Sushi"}, column(t, df.Where(Not(Col("price").Gt(11))), "product_name"))
	assert.Equal(t, []interface{}{"Ramen"}, column(t, df.Where(Not(Col("price").IsIn(10))), "product_name"))
	assert.Empty(t, column(t, df.Where(Not(Col("price").IsIn(10, nil))), "product_name"))
}

func TestSelectAggregateWithoutGroupBy(t *testing.T) {
	df := menuFrame().Select(Max(Col("price")).Alias("max"), Min(Col("price")), Avg(Col("price")), Count(Col("*")))

	require.NoError(t, df.Err())
	assert.Equal(t, []string{"max", "min(price)", "avg(price)", "count(*)"}, df.Columns())
	rows, err := df.Collect()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(15), rows[0]["max"])
	assert.Equal(t, int64(10), rows[0]["min(price)"])
	assert.Equal(t, 12.5, rows[0]["avg(price)"])
	assert.Equal(t, int64(2), rows[0]["count(*)"])
}

func TestWindowFunctions(t *testing.T) {
	w := NewWindow().PartitionBy("customer_id").OrderBy(Col("order_date"))
	df := salesFrame().Select(
		Col("customer_id"),
		Rank().Over(w).Alias("rank"),
		DenseRank().Over(w).Alias("dense"),
		Lag(Col("product_id"), 1).Over(w).Alias("prev"),
		Lead(Col("product_id"), 1).Over(w).Alias("next"),
	)

	require.NoError(t, df.Err())
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(1)}, column(t, df, "rank"))
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(1)}, column(t, df, "dense"))
	assert.Equal(t, []interface{}{nil, int64(1), nil}, column(t, df, "prev"))
	assert.Equal(t, []interface{}{int64(2), nil, nil}, column(t, df, "next"))

	assert.Error(t, salesFrame().Select(Col("customer_id").Over(w)).Err())
	assert.Error(t, salesFrame().Select(RowNumber().Over(w), Count(Col("*"))).Err())
}

func TestValueWindowFunctions(t *testing.T) {
	w := NewWindow().PartitionBy("customer_id").OrderBy(Col("order_date"))
	df := salesFrame().Select(
		NTile(2).Over(w).Alias("tile"),
		FirstValue(Col("product_id")).Over(w).Alias("first"),
		LastValue(Col("product_id")).Over(w).Alias("last"),
		NthValue(Col("product_id"), 2).Over(w).Alias("second"),
		LastValue(Col("product_id")).Over(NewWindow().PartitionBy("customer_id")).Alias("last_unordered"),
	)

	require.NoError(t, df.Err())
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(1)}, column(t, df, "tile"))
	assert.Equal(t, []interface{}{int64(1), int64(1), int64(1)}, column(t, df, "first"))
	assert.Equal(t, []interface{}{int64(1), int64(2), int64(1)}, column(t, df, "last"))
	assert.Equal(t, []interface{}{nil, int64(2), nil}, column(t, df, "second"))
	assert.Equal(t, []interface{}{int64(2), int64(2), int64(1)}, column(t, df, "last_unordered"))

	_, err := salesFrame().Select(NTile(0).Over(w)).Collect()
	assert.Error(t, err)
}

func TestDistinctAndLimit(t *testing.T) {
	df := salesFrame().SelectColumns("customer_id").Distinct()
	assert.Equal(t, []interface{}{"C1", "C2"}, column(t, df, "customer_id"))

	n, err := salesFrame().Limit(2).Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Error(t, salesFrame().Limit(-1).Err())
}

func TestErrorsPropagate(t *testing.T) {
	df := salesFrame().
		Where(Col("missing").EqualTo(1)).
		GroupBy("customer_id").
		Agg(Count(Col("*"))).
		Sort(Col("customer_id"))

	assert.ErrorIs(t, df.Err(), query.ErrColumnNotFound)
	_, err := df.Collect()
	assert.Error(t, err)
	assert.Error(t, df.ShowTo(&bytes.Buffer{}, output.DefaultOptions()))

	bad := When(Col("price").Gt(1), 1)
	assert.Error(t, menuFrame().Select(Col("price").Otherwise(0)).Err())
	assert.NoError(t, menuFrame().Select(bad.When(Col("price").Gt(12), 2).Otherwise(0).Alias("tier")).Err())
}

type catalogRecorder struct {
	tables []*query.Table
}

func (c *catalogRecorder) Register(t *query.Table) {
	c.tables = append(c.tables, t)
}

func TestCreateOrReplaceTempView(t *testing.T) {
	assert.ErrorIs(t, menuFrame().CreateOrReplaceTempView("menu"), ErrNoCatalog)

	rec := &catalogRecorder{}
	df := menuFrame().WithRegistry(rec).Where(Col("price").Gt(10))
	require.NoError(t, df.CreateOrReplaceTempView("pricey"))
	require.Len(t, rec.tables, 1)
	assert.Equal(t, "pricey", rec.tables[0].Name)
	assert.Len(t, rec.tables[0].Rows, 1)

	assert.Error(t, df.CreateOrReplaceTempView(""))
	assert.ErrorIs(t, df.CreateOrReplaceTempView("bad name"), query.ErrInvalidViewName)
}

func TestShowTo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, menuFrame().ShowTo(&buf, output.Options{NumRows: 1, Truncate: true}))
	assert.Contains(t, buf.String(), "product_name")
	assert.Contains(t, buf.String(), "Sushi")
	assert.NotContains(t, buf.String(), "Curry")
	assert.Contains(t, buf.String(), "only showing top 1 row")
}

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/dinersql/frame"
	"github.com/vegasq/dinersql/query"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func dinerSession(t *testing.T) *Session {
	t.Helper()
	dir := t.TempDir()
	s, err := New(WithAppName("diner-test"))
	require.NoError(t, err)

	sales := s.Read().
		Schema("customer_id STRING, order_date DATE, product_id INT").
		Option("header", "true").
		CSV(writeCSV(t, dir, "sales.csv", "customer_id,order_date,product_id\nC1,2021-01-01,1\nC1,2021-01-02,2\nC2,2021-01-05,1\nC3,2021-01-06,9\n"))
	menu := s.Read().
		Schema("product_id INT, product_name STRING, price INT").
		Option("header", "true").
		CSV(writeCSV(t, dir, "menu.csv", "product_id,product_name,price\n1,Sushi,10\n2,Curry,15\n"))

	require.NoError(t, sales.CreateOrReplaceTempView("sales"))
	require.NoError(t, menu.CreateOrReplaceTempView("menu"))
	return s
}

func TestNew(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	assert.Equal(t, "dinersql", s.AppName())
	assert.Equal(t, LocalMaster, s.Master())
	_, err = uuid.Parse(s.ID())
	assert.NoError(t, err)

	other, err := New(WithMaster("local[1]"), WithLogger(logging.MustGetLogger("test")))
	require.NoError(t, err)
	assert.NotEqual(t, s.ID(), other.ID())

	_, err = New(WithMaster("yarn"))
	assert.Error(t, err)
	_, err = New(WithAppName(" "))
	assert.Error(t, err)
}

func TestSQL(t *testing.T) {
	s := dinerSession(t)

	df := s.SQL(`SELECT s.customer_id, SUM(m.price) AS total_amount_spent
		FROM sales s JOIN menu m ON s.product_id = m.product_id
		GROUP BY s.customer_id
		ORDER BY total_amount_spent DESC`)
	require.NoError(t, df.Err())

	rows, err := df.Collect()
	require.NoError(t, err)
	require.Len(t, rows, 2, "C3 has no menu item and is dropped by the inner join")
	assert.Equal(t, "C1", rows[0]["customer_id"])
	assert.Equal(t, int64(25), rows[0]["total_amount_spent"])
	assert.Equal(t, int64(10), rows[1]["total_amount_spent"])
}

func TestSQLErrors(t *testing.T) {
	s := dinerSession(t)

	assert.ErrorIs(t, s.SQL("SELECT * FROM members").Err(), query.ErrTableNotFound)
	assert.Error(t, s.SQL("SELEKT 1").Err())
}

func TestTableAndViews(t *testing.T) {
	s := dinerSession(t)
	assert.Equal(t, []string{"menu", "sales"}, s.Views())

	menu := s.Table("MENU")
	require.NoError(t, menu.Err())
	assert.Equal(t, []string{"product_id", "product_name", "price"}, menu.Columns())

	pricey := menu.Where(frame.Col("price").Gt(10))
	require.NoError(t, pricey.CreateOrReplaceTempView("pricey"))
	rows, err := s.SQL("SELECT product_name FROM pricey").Collect()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Curry", rows[0]["product_name"])

	assert.True(t, s.DropView("pricey"))
	assert.False(t, s.DropView("pricey"))
	assert.ErrorIs(t, s.Table("pricey").Err(), query.ErrTableNotFound)
}

func TestSQLResultAsView(t *testing.T) {
	s := dinerSession(t)

	joined := s.SQL("SELECT s.customer_id, m.product_name FROM sales s JOIN menu m ON s.product_id = m.product_id")
	require.NoError(t, joined.CreateOrReplaceTempView("orders"))

	rows, err := s.SQL("SELECT product_name, COUNT(*) AS n FROM orders GROUP BY product_name ORDER BY n DESC").Collect()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sushi", rows[0]["product_name"])
	assert.Equal(t, int64(2), rows[0]["n"])
}

func TestReadDataFrameNames(t *testing.T) {
	s := dinerSession(t)
	dir := t.TempDir()

	members := s.Read().Schema("customer_id STRING, join_date DATE").
		CSV(writeCSV(t, dir, "members.csv", "customer_id,join_date\nC1,2021-01-01\n"))
	require.NoError(t, members.Err())
	assert.Equal(t, "members", members.Name())

	joined := members.Join(s.Table("sales"), frame.Col("members.customer_id").EqualTo(frame.Col("sales.customer_id")), "inner")
	n, err := joined.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestReadErrors(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	dir := t.TempDir()
	path := writeCSV(t, dir, "menu.csv", "product_id,product_name,price\none,Sushi,10\n")

	tests := []struct {
		name string
		df   *frame.DataFrame
	}{
		{"bad schema", s.Read().Schema("product_id NUMBERISH").CSV(path)},
		{"bad option", s.Read().Option("header", "perhaps").CSV(path)},
		{"schema mismatch", s.Read().Schema("product_id INT, product_name STRING, price INT").CSV(path)},
		{"missing file", s.Read().CSV(filepath.Join(dir, "missing.csv"))},
		{"no match", s.Read().CSV(filepath.Join(dir, "*.tsv"))},
		{"not parquet", s.Read().Parquet(path)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.df.Err())
		})
	}
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "sales", tableName("testdata/sales.csv"))
	assert.Equal(t, "menu", tableName("menu.parquet"))
	assert.Equal(t, "", tableName("data/sales-*.csv"))
}

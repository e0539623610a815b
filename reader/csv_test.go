package reader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func salesSchema(t *testing.T) Schema {
	t.Helper()
	schema, err := ParseSchema("customer_id STRING, order_date DATE, product_id INT")
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}
	return schema
}

func TestReadCSV(t *testing.T) {
	path := writeFile(t, "sales.csv", "customer_id,order_date,product_id\nA,2021-01-01,1\nA,2021-01-07,2\nB,2021-01-02,\n")

	data, err := ReadCSV(path, salesSchema(t), DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	if got := strings.Join(data.Columns(), ","); got != "customer_id,order_date,product_id" {
		t.Errorf("Columns() = %s", got)
	}
	if len(data.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(data.Rows))
	}

	first := data.Rows[0]
	if first["customer_id"] != "A" || first["product_id"] != int64(1) {
		t.Errorf("row 0 = %v", first)
	}
	if d, ok := first["order_date"].(time.Time); !ok || !d.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("order_date = %#v", first["order_date"])
	}

	if v, ok := data.Rows[2]["product_id"]; !ok || v != nil {
		t.Errorf("empty field should be NULL, got %#v (present %v)", v, ok)
	}
}

func TestReadCSV_Options(t *testing.T) {
	path := writeFile(t, "menu.txt", "1|Sushi|10\n2|Curry|NA\n")
	schema, err := ParseSchema("product_id INT, product_name STRING, price INT")
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}

	opts, err := ParseOptions(map[string]string{"header": "false", "sep": "|", "nullValue": "NA"})
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}

	data, err := ReadCSV(path, schema, opts)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(data.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(data.Rows))
	}
	if data.Rows[0]["product_name"] != "Sushi" || data.Rows[0]["price"] != int64(10) {
		t.Errorf("row 0 = %v", data.Rows[0])
	}
	if data.Rows[1]["price"] != nil {
		t.Errorf("nullValue should read as NULL, got %#v", data.Rows[1]["price"])
	}
}

func TestReadCSV_WithoutSchema(t *testing.T) {
	path := writeFile(t, "members.csv", "\ufeffcustomer_id,join_date\nA,2021-01-07\n")

	data, err := ReadCSV(path, nil, DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if got := strings.Join(data.Columns(), ","); got != "customer_id,join_date" {
		t.Errorf("Columns() = %s", got)
	}
	if data.Rows[0]["join_date"] != "2021-01-07" {
		t.Errorf("values should stay strings, got %#v", data.Rows[0]["join_date"])
	}
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	path := writeFile(t, "sales.csv", "customer_id,order_date,product_id\n")

	data, err := ReadCSV(path, salesSchema(t), DefaultOptions())
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(data.Rows) != 0 {
		t.Errorf("got %d rows, want 0", len(data.Rows))
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantMatch []string
		mismatch  bool
	}{
		{
			name:      "too few fields",
			content:   "customer_id,order_date,product_id\nA,2021-01-01,1\nB,2021-01-02\n",
			wantMatch: []string{":3:", "expected 3 fields, got 2"},
			mismatch:  true,
		},
		{
			name:      "bad integer",
			content:   "customer_id,order_date,product_id\nA,2021-01-01,one\n",
			wantMatch: []string{":2:", "column product_id"},
			mismatch:  true,
		},
		{
			name:      "bad date",
			content:   "customer_id,order_date,product_id\nA,01/01/2021,1\n",
			wantMatch: []string{"column order_date"},
			mismatch:  true,
		},
		{
			name:      "unterminated quote",
			content:   "customer_id,order_date,product_id\n\"A,2021-01-01,1\n",
			wantMatch: []string{"sales.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "sales.csv", tt.content)
			_, err := ReadCSV(path, salesSchema(t), DefaultOptions())
			if err == nil {
				t.Fatal("expected error")
			}
			for _, want := range tt.wantMatch {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not contain %q", err, want)
				}
			}
			if tt.mismatch && !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("error %v does not wrap ErrSchemaMismatch", err)
			}
		})
	}
}

func TestReadCSV_MissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "missing.csv"), nil, DefaultOptions())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestParseOptions_Errors(t *testing.T) {
	tests := []map[string]string{
		{"header": "sometimes"},
		{"sep": ";;"},
		{"inferSchema": "true"},
	}
	for _, pairs := range tests {
		if _, err := ParseOptions(pairs); err == nil {
			t.Errorf("ParseOptions(%v) expected error", pairs)
		}
	}
}

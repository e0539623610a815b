package reader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
)

type saleRow struct {
	CustomerID string `parquet:"customer_id"`
	OrderDate  int32  `parquet:"order_date,date"`
	ProductID  int64  `parquet:"product_id"`
}

func daysSinceEpoch(s string) int32 {
	d, _ := time.Parse(DateLayout, s)
	return int32(d.Unix() / 86400)
}

func writeParquet[T any](t *testing.T, path string, rows []T) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	writer := parquet.NewGenericWriter[T](f)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("failed to write test data: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close file: %v", err)
	}
}

func writeSales(t *testing.T, dir, name string, rows ...saleRow) string {
	t.Helper()
	path := filepath.Join(dir, name)
	writeParquet(t, path, rows)
	return path
}

func TestExtractSchemaInfo(t *testing.T) {
	path := writeSales(t, t.TempDir(), "sales.parquet", saleRow{"A", daysSinceEpoch("2021-01-01"), 1})

	infos, err := ExtractSchemaInfo(path)
	if err != nil {
		t.Fatalf("ExtractSchemaInfo() error = %v", err)
	}

	want := []struct{ name, typ, physical string }{
		{"customer_id", "STRING", "BYTE_ARRAY"},
		{"order_date", "DATE", "INT32"},
		{"product_id", "INT", "INT64"},
	}
	if len(infos) != len(want) {
		t.Fatalf("got %d columns, want %d", len(infos), len(want))
	}
	for i, w := range want {
		if infos[i].Name != w.name || infos[i].Type != w.typ || infos[i].PhysicalType != w.physical {
			t.Errorf("column %d = %+v, want %+v", i, infos[i], w)
		}
	}
}

func TestExtractSchemaInfo_NestedRejected(t *testing.T) {
	type Address struct {
		City string `parquet:"city"`
	}
	type Row struct {
		ID      int64   `parquet:"id"`
		Address Address `parquet:"address"`
	}

	path := filepath.Join(t.TempDir(), "nested.parquet")
	writeParquet(t, path, []Row{{ID: 1, Address: Address{City: "Tokyo"}}})

	if _, err := ExtractSchemaInfo(path); err == nil {
		t.Error("expected error for nested column")
	}
}

func TestExtractSchemaInfo_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.parquet")
	if err := os.WriteFile(path, []byte("not a parquet file"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := ExtractSchemaInfo(path); err == nil {
		t.Error("expected error for invalid parquet file")
	}
	if _, err := ExtractSchemaInfo(filepath.Join(t.TempDir(), "missing.parquet")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReadParquet(t *testing.T) {
	path := writeSales(t, t.TempDir(), "sales.parquet",
		saleRow{"A", daysSinceEpoch("2021-01-01"), 1},
		saleRow{"B", daysSinceEpoch("2021-01-04"), 3},
	)

	tests := []struct {
		name   string
		schema Schema
	}{
		{"inferred schema", nil},
		{"declared schema", salesSchema(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadParquet(path, tt.schema)
			if err != nil {
				t.Fatalf("ReadParquet() error = %v", err)
			}
			if got := data.Schema.String(); got != "customer_id STRING, order_date DATE, product_id INT" {
				t.Errorf("schema = %s", got)
			}
			if len(data.Rows) != 2 {
				t.Fatalf("got %d rows, want 2", len(data.Rows))
			}

			row := data.Rows[1]
			if row["customer_id"] != "B" || row["product_id"] != int64(3) {
				t.Errorf("row 1 = %v", row)
			}
			want := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
			if d, ok := row["order_date"].(time.Time); !ok || !d.Equal(want) {
				t.Errorf("order_date = %#v, want %v", row["order_date"], want)
			}
		})
	}
}

func TestReadParquet_SchemaMismatch(t *testing.T) {
	path := writeSales(t, t.TempDir(), "sales.parquet", saleRow{"A", daysSinceEpoch("2021-01-01"), 1})

	tests := []string{
		"customer_id STRING, order_date DATE",
		"customer_id STRING, joined DATE, product_id INT",
		"customer_id STRING, order_date DATE, product_id BOOLEAN",
	}

	for _, ddl := range tests {
		schema, err := ParseSchema(ddl)
		if err != nil {
			t.Fatalf("ParseSchema(%q) error = %v", ddl, err)
		}
		_, err = ReadParquet(path, schema)
		if !errors.Is(err, ErrSchemaMismatch) {
			t.Errorf("ReadParquet with %q: error = %v, want ErrSchemaMismatch", ddl, err)
		}
	}
}

func TestReaderClose(t *testing.T) {
	path := writeSales(t, t.TempDir(), "sales.parquet", saleRow{"A", daysSinceEpoch("2021-01-01"), 1})

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

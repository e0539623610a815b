package reader

import (
	"errors"
	"testing"
	"time"
)

func TestParseSchema(t *testing.T) {
	schema, err := ParseSchema("customer_id STRING, order_date date,  product_id INT")
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}

	want := Schema{
		{Name: "customer_id", Type: TypeString},
		{Name: "order_date", Type: TypeDate},
		{Name: "product_id", Type: TypeInt},
	}
	if len(schema) != len(want) {
		t.Fatalf("got %d columns, want %d", len(schema), len(want))
	}
	for i := range want {
		if schema[i] != want[i] {
			t.Errorf("column %d = %+v, want %+v", i, schema[i], want[i])
		}
	}

	if got := schema.String(); got != "customer_id STRING, order_date DATE, product_id INT" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseSchema_Aliases(t *testing.T) {
	schema, err := ParseSchema("a INTEGER, b BIGINT, c DOUBLE, d BOOLEAN, e VARCHAR")
	if err != nil {
		t.Fatalf("ParseSchema() error = %v", err)
	}
	want := []ColumnType{TypeInt, TypeInt, TypeDouble, TypeBool, TypeString}
	for i, typ := range want {
		if schema[i].Type != typ {
			t.Errorf("column %s type = %s, want %s", schema[i].Name, schema[i].Type, typ)
		}
	}
}

func TestParseSchema_Errors(t *testing.T) {
	tests := []struct {
		name string
		ddl  string
	}{
		{"empty", ""},
		{"missing type", "customer_id"},
		{"extra token", "customer_id STRING NOT NULL"},
		{"unknown type", "customer_id TEXTBLOB"},
		{"duplicate column", "a INT, A STRING"},
		{"trailing comma", "a INT,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSchema(tt.ddl); err == nil {
				t.Errorf("ParseSchema(%q) expected error", tt.ddl)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	jan7 := time.Date(2021, 1, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		typ  ColumnType
		in   interface{}
		want interface{}
	}{
		{"string", TypeString, "Sushi", "Sushi"},
		{"bytes to string", TypeString, []byte("Curry"), "Curry"},
		{"int to string", TypeString, int64(5), "5"},
		{"int text", TypeInt, " 15 ", int64(15)},
		{"int32", TypeInt, int32(10), int64(10)},
		{"whole float to int", TypeInt, 12.0, int64(12)},
		{"double text", TypeDouble, "1.5", 1.5},
		{"float32", TypeDouble, float32(0.5), 0.5},
		{"bool text", TypeBool, "true", true},
		{"date text", TypeDate, "2021-01-07", jan7},
		{"date days since epoch", TypeDate, int32(18634), jan7},
		{"timestamp truncated", TypeDate, time.Date(2021, 1, 7, 13, 45, 0, 0, time.UTC), jan7},
		{"nil", TypeInt, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.typ.Coerce(tt.in)
			if err != nil {
				t.Fatalf("Coerce() error = %v", err)
			}
			if wantTime, ok := tt.want.(time.Time); ok {
				if gotTime, ok := got.(time.Time); !ok || !gotTime.Equal(wantTime) {
					t.Errorf("Coerce() = %v, want %v", got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Coerce() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestCoerce_Errors(t *testing.T) {
	tests := []struct {
		name string
		typ  ColumnType
		in   interface{}
	}{
		{"int text", TypeInt, "ten"},
		{"fractional float to int", TypeInt, 1.5},
		{"double text", TypeDouble, "abc"},
		{"bool text", TypeBool, "maybe"},
		{"date layout", TypeDate, "01/07/2021"},
		{"date from bool", TypeDate, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.typ.Coerce(tt.in)
			if !errors.Is(err, ErrSchemaMismatch) {
				t.Errorf("Coerce(%#v) error = %v, want ErrSchemaMismatch", tt.in, err)
			}
		})
	}
}

package query

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateViewName(t *testing.T) {
	for _, name := range []string{"members", "sales_2021", "_tmp", "Menu"} {
		if err := ValidateViewName(name); err != nil {
			t.Errorf("ValidateViewName(%q) = %v, want nil", name, err)
		}
	}

	tests := []struct {
		name string
		want error
	}{
		{"", ErrEmptyTableName},
		{strings.Repeat("v", MaxTableNameLength+1), ErrTableNameTooLong},
		{"1sales", ErrInvalidViewName},
		{"bad name", ErrInvalidViewName},
		{"sales.csv", ErrInvalidViewName},
	}
	for _, tt := range tests {
		if err := ValidateViewName(tt.name); !errors.Is(err, tt.want) {
			t.Errorf("ValidateViewName(%q) = %v, want %v", tt.name, err, tt.want)
		}
	}
}

package query

import "testing"

func TestStringFunctions(t *testing.T) {
	checkFunctions(t, []functionCase{
		{"UPPER", []interface{}{"sushi"}, "SUSHI", false},
		{"LOWER", []interface{}{"Curry"}, "curry", false},
		{"TRIM", []interface{}{"  ramen "}, "ramen", false},
		{"LTRIM", []interface{}{"  ramen "}, "ramen ", false},
		{"RTRIM", []interface{}{"  ramen "}, "  ramen", false},
		{"REVERSE", []interface{}{"Ramen"}, "nemaR", false},
		{"LENGTH", []interface{}{"日本"}, int64(2), false},
		{"LENGTH", []interface{}{int64(350)}, int64(3), false},
		{"CONCAT", []interface{}{"C", int64(1), "-", date("2021-01-07")}, "C1-2021-01-07", false},
		{"SUBSTRING", []interface{}{"Sushi", int64(2), int64(3)}, "ush", false},
		{"SUBSTRING", []interface{}{"Sushi", int64(2)}, "ushi", false},
		{"SUBSTRING", []interface{}{"Sushi", int64(10)}, "", false},
		{"SUBSTRING", []interface{}{"Sushi", int64(1), int64(-1)}, "", false},
		{"SUBSTR", []interface{}{"Sushi", int64(-3)}, "shi", false},
		{"SUBSTR", []interface{}{"日本食", int64(2), int64(1)}, "本", false},
		{"REPLACE", []interface{}{"2021-01-07", "-", "/"}, "2021/01/07", false},
		{"REPLACE", []interface{}{"a-b", "-"}, "ab", false},
		{"REPLACE", []interface{}{"Curry", ""}, "Curry", false},
		{"REPEAT", []interface{}{"ab", int64(3)}, "ababab", false},
		{"REPEAT", []interface{}{"ab", int64(0)}, "", false},
		{"CONTAINS", []interface{}{"Sushi", "ush"}, true, false},
		{"STARTSWITH", []interface{}{"Curry", "Cu"}, true, false},
		{"ENDSWITH", []interface{}{"Curry", "x"}, false, false},
		{"STARTS_WITH", []interface{}{"Ramen", "Ra"}, true, false},
		{"ENDS_WITH", []interface{}{"Ramen", "men"}, true, false},
		{"UPPER", []interface{}{int64(1)}, nil, true},
		{"SUBSTRING", []interface{}{int64(1), int64(1)}, nil, true},
		{"SUBSTRING", []interface{}{"Sushi", "two"}, nil, true},
		{"REPLACE", []interface{}{"Sushi", int64(1), "x"}, nil, true},
		{"REPEAT", []interface{}{"ab", int64(MaxQueryLength)}, nil, true},
	})
}

func TestStringFunctionsInSQL(t *testing.T) {
	res := mustExecute(t, dinerCatalog(),
		"SELECT SUBSTRING(product_name, 1, 2) AS code, REPLACE(product_name, 'u', 'o') AS alt FROM menu ORDER BY product_id")
	assertResult(t, res, []string{"code", "alt"}, [][]interface{}{
		{"Su", "Soshi"},
		{"Cu", "Corry"},
	})
}

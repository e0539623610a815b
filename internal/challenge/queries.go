package challenge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vegasq/dinersql/frame"
	"github.com/vegasq/dinersql/query"
	"github.com/vegasq/dinersql/session"
)

//go:embed queries.yaml
var sqlCatalog []byte

// Query is one business question. Dataframe questions are Go code; the
// others are SQL over the members, sales and menu views.
type Query struct {
	Number int
	Name   string
	Title  string
	SQL    string

	build func(*Tables) *frame.DataFrame
}

// Kind reports how the query is written
func (q Query) Kind() string {
	if q.SQL != "" {
		return "sql"
	}
	return "dataframe"
}

// Run evaluates the query
func (q Query) Run(s *session.Session, t *Tables) (*query.Result, error) {
	var df *frame.DataFrame
	if q.SQL != "" {
		df = s.SQL(q.SQL)
	} else {
		df = q.build(t)
	}
	res, err := df.Result()
	if err != nil {
		return nil, fmt.Errorf("query %d (%s): %w", q.Number, q.Name, err)
	}
	return res, nil
}

type sqlQuery struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	SQL   string `yaml:"sql"`
}

// Queries returns every question in run order
func Queries() ([]Query, error) {
	queries := dataframeQueries()

	var fromYAML []sqlQuery
	if err := yaml.Unmarshal(sqlCatalog, &fromYAML); err != nil {
		return nil, fmt.Errorf("parse query catalog: %w", err)
	}
	for _, q := range fromYAML {
		if q.Name == "" || strings.TrimSpace(q.SQL) == "" {
			return nil, fmt.Errorf("query catalog: entry %q needs a name and sql", q.Name)
		}
		queries = append(queries, Query{Name: q.Name, Title: q.Title, SQL: q.SQL})
	}

	seen := make(map[string]bool, len(queries))
	for i := range queries {
		if seen[queries[i].Name] {
			return nil, fmt.Errorf("query catalog: duplicate query %s", queries[i].Name)
		}
		seen[queries[i].Name] = true
		queries[i].Number = i + 1
	}
	return queries, nil
}

// Select keeps the named queries, in run order. No names keeps them all.
func Select(queries []Query, names []string) ([]Query, error) {
	if len(names) == 0 {
		return queries, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[strings.ToLower(strings.TrimSpace(n))] = true
	}

	var selected []Query
	for _, q := range queries {
		if wanted[q.Name] {
			selected = append(selected, q)
			delete(wanted, q.Name)
		}
	}
	if len(wanted) > 0 {
		var unknown []string
		for n := range wanted {
			unknown = append(unknown, n)
		}
		return nil, fmt.Errorf("unknown queries: %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}

func productMatch(sales string) frame.Column {
	return frame.Col(sales).EqualTo(frame.Col("menu.product_id"))
}

func dataframeQueries() []Query {
	return []Query{
		{
			Name:  "total_spent",
			Title: "Total amount each customer spent",
			build: func(t *Tables) *frame.DataFrame {
				return t.Sales.
					Join(t.Menu, productMatch("sales.product_id"), "inner").
					GroupBy("customer_id").
					Agg(frame.Sum(frame.Col("price")).Alias("total_amount_spent")).
					Sort(frame.Desc("total_amount_spent"))
			},
		},
		{
			Name:  "days_visited",
			Title: "Days each customer visited",
			build: func(t *Tables) *frame.DataFrame {
				return t.Sales.
					GroupBy("customer_id").
					Agg(frame.CountDistinct(frame.Col("order_date")).Alias("Days_Visited")).
					OrderBy(frame.Col("Days_Visited").Desc())
			},
		},
		{
			Name:  "first_item",
			Title: "First item purchased by each customer",
			build: func(t *Tables) *frame.DataFrame {
				w := frame.NewWindow().PartitionBy("customer_id").OrderBy(frame.Col("order_date"))
				return t.Sales.
					WithColumn("row_number", frame.RowNumber().Over(w)).
					Join(t.Menu, productMatch("sales.product_id"), "inner").
					Where(frame.Col("row_number").EqualTo(1)).
					SelectColumns("customer_id", "product_name")
			},
		},
		{
			Name:  "most_purchased",
			Title: "Most purchased item and how often it was ordered",
			build: func(t *Tables) *frame.DataFrame {
				return t.Sales.
					WithColumnRenamed("product_id", "spid").
					Join(t.Menu, productMatch("sales.spid"), "inner").
					GroupBy("product_name").
					Agg(frame.Count(frame.Col("product_id")).Alias("amt_ordered")).
					Sort(frame.Desc("amt_ordered")).
					Limit(1)
			},
		},
		{
			// product ids are fixed to the menu as published
			Name:  "popular_per_customer",
			Title: "Orders of each item per customer",
			build: func(t *Tables) *frame.DataFrame {
				ordered := func(id int) frame.Column {
					return frame.Count(frame.When(frame.Col("pid").EqualTo(id), 1))
				}
				return t.Sales.
					WithColumnRenamed("product_id", "pid").
					GroupBy("customer_id").
					Agg(
						ordered(1).Alias("Sushi Ordered"),
						ordered(2).Alias("Curry Ordered"),
						ordered(3).Alias("Ramen Ordered"),
					).
					Sort(frame.Col("customer_id"))
			},
		},
	}
}

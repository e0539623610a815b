package challenge

import (
	"fmt"

	"github.com/vegasq/dinersql/frame"
	"github.com/vegasq/dinersql/session"
)

// Declared schemas of the three input tables
const (
	MembersSchema = "customer_id STRING, join_date DATE"
	SalesSchema   = "customer_id STRING, order_date DATE, product_id INT"
	MenuSchema    = "product_id INT, product_name STRING, price INT"
)

// Paths locates the input files. A .parquet extension selects the parquet
// reader; anything else is read as CSV with a header row.
type Paths struct {
	Members string
	Sales   string
	Menu    string
}

// Tables are the loaded inputs
type Tables struct {
	Members *frame.DataFrame
	Sales   *frame.DataFrame
	Menu    *frame.DataFrame
}

// Load reads the three tables and registers them as the members, sales and
// menu views of s
func Load(s *session.Session, paths Paths) (*Tables, error) {
	inputs := []struct {
		view   string
		path   string
		schema string
	}{
		{"members", paths.Members, MembersSchema},
		{"sales", paths.Sales, SalesSchema},
		{"menu", paths.Menu, MenuSchema},
	}

	loaded := make(map[string]*frame.DataFrame, len(inputs))
	for _, in := range inputs {
		df := s.Read().Schema(in.schema).Option("header", "true").Load(in.path)
		rows, err := df.Collect()
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", in.view, err)
		}
		// joins qualify columns by view name whatever the file is called
		df = s.DataFrame(in.view, df.Columns(), rows)
		if err := df.CreateOrReplaceTempView(in.view); err != nil {
			return nil, fmt.Errorf("register %s: %w", in.view, err)
		}
		loaded[in.view] = df
		log.Debugf("loaded %s from %s", in.view, in.path)
	}

	return &Tables{
		Members: loaded["members"],
		Sales:   loaded["sales"],
		Menu:    loaded["menu"],
	}, nil
}

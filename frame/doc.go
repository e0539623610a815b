// Package frame is a dataframe API over the query engine's row operators.
//
// A DataFrame is immutable: every transformation returns a new value. The
// first error is carried through later calls and reported by Err, Collect
// or Show, so chains read top to bottom:
//
//	total := sales.
//	    Join(menu, frame.Col("sales.product_id").EqualTo(frame.Col("menu.product_id")), "inner").
//	    GroupBy("customer_id").
//	    Agg(frame.Sum(frame.Col("price")).Alias("total_amount_spent")).
//	    OrderBy(frame.Col("total_amount_spent").Desc())
//
// Join qualifies each side's columns with the DataFrame name (the table
// name, or the one given to Alias). Bare names keep working while they are
// unambiguous.
//
// Window functions take a window built with NewWindow:
//
//	w := frame.NewWindow().PartitionBy("customer_id").OrderBy(frame.Col("order_date"))
//	ranked := sales.WithColumn("rank", frame.RowNumber().Over(w))
package frame

// Package output renders query results.
//
// Every formatter takes the ordered column list of a result and its rows:
//
//	f, err := output.New("table", os.Stdout, output.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	if err := f.Format(res.Columns, res.Rows); err != nil {
//	    return err
//	}
//
// # Formats
//
//   - table: a boxed table like Spark's DataFrame.show(). At most 20 rows by
//     default, long cells truncated, NULL printed as "null".
//   - csv: header row plus one record per row. Strings that start with a
//     spreadsheet formula character are quoted with a leading '.
//   - json, jsonl: JSON Lines, one object per row with keys in column order.
package output

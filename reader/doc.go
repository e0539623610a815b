// Package reader loads typed tables from CSV and Apache Parquet files.
//
// A table schema is declared as DDL and parsed once:
//
//	schema, err := reader.ParseSchema("customer_id STRING, join_date DATE")
//	if err != nil {
//	    return err
//	}
//
// CSV files are read with a fixed column order. Each field is converted to
// its declared type and empty fields become NULL (nil):
//
//	data, err := reader.ReadCSV("members.csv", schema, reader.DefaultOptions())
//
// Parquet files are read through parquet-go. With a nil schema the column
// types come from the file metadata:
//
//	data, err := reader.ReadParquet("members.parquet", nil)
//
// ReadTable accepts glob patterns and picks the format from the file
// extension:
//
//	data, err := reader.ReadTable("data/sales-*.csv", "", schema, opts)
//
// Values that do not fit the schema fail with an error wrapping
// ErrSchemaMismatch that names the file, line and column.
package reader

// Package query provides SQL parsing and execution over in-memory tables.
//
// This package implements a SQL-like query language with support for:
//   - SELECT with column projection, aliases and DISTINCT
//   - WHERE clauses with complex conditions
//   - JOINs (INNER, LEFT, RIGHT, FULL, CROSS)
//   - GROUP BY and HAVING for aggregations
//   - ORDER BY for sorting results
//   - LIMIT and OFFSET for pagination
//   - Common Table Expressions (CTEs with WITH clause)
//   - Subqueries (IN, EXISTS, scalar, FROM)
//   - Window functions (ROW_NUMBER, RANK, DENSE_RANK, LAG, LEAD)
//   - Aggregate functions (COUNT, SUM, AVG, MIN, MAX, with DISTINCT)
//   - Built-in scalar functions (string, math and date operations)
//
// # Basic Usage
//
// Tables are resolved through a Catalog:
//
//	catalog := query.NewMapCatalog(&query.Table{
//	    Name:    "sales",
//	    Columns: []string{"customer_id", "order_date", "product_id"},
//	    Rows:    rows,
//	})
//
//	res, err := query.ExecuteSQL("SELECT customer_id FROM sales WHERE product_id = 1", catalog)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Result.Columns lists the output columns in SELECT order and each row is
// keyed by them.
//
// # Column Resolution
//
// Every FROM and JOIN source is qualified with its alias, or its table
// name when there is no alias, so rows of a join carry keys such as
// "s.customer_id" and "m.customer_id". A reference resolves to the exact
// key first, then to the qualifier-stripped name, then to the single key
// with a matching bare name. A bare reference matching columns of two
// sources fails with ErrAmbiguousColumn.
//
// # Joins
//
//	sql := `
//	    SELECT s.customer_id, SUM(menu.price) AS total_amount_spent
//	    FROM sales s
//	    JOIN menu ON s.product_id = menu.product_id
//	    GROUP BY s.customer_id
//	    ORDER BY total_amount_spent DESC
//	`
//
// Inner joins drop rows without a partner on the other side.
//
// # Window Functions
//
//	sql := `
//	    SELECT customer_id, product_id,
//	           ROW_NUMBER() OVER (PARTITION BY customer_id ORDER BY order_date) AS rn
//	    FROM sales
//	`
//
// Window functions cannot be mixed with aggregation in one SELECT; compute
// the aggregate in a CTE first.
//
// # Ordering
//
// Groups and window partitions keep the order in which their first row
// appears, and every sort is stable. Ties therefore resolve to input order
// and the same input always produces the same output.
//
// # Type System
//
//   - Integers are int64, floating point numbers float64
//   - DATE values are time.Time at UTC midnight and compare with
//     'yyyy-mm-dd' string literals
//   - SUM over integers stays int64; "/" always yields float64
//   - NULL (nil) compares false against everything and sorts first
//
// # Error Handling
//
// The package returns descriptive errors for:
//   - Syntax errors during parsing
//   - Unknown or ambiguous column references
//   - Unknown tables (ErrTableNotFound)
//   - Type mismatches in comparisons and arithmetic
//   - Unsupported operations
package query

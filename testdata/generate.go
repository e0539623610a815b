// Writes parquet copies of the diner CSV tables. Run from this directory:
//
//	go run generate.go
package main

import (
	"log"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/dinersql/reader"
)

type Member struct {
	CustomerID string `parquet:"customer_id"`
	JoinDate   int32  `parquet:"join_date,date"`
}

type Sale struct {
	CustomerID string `parquet:"customer_id"`
	OrderDate  int32  `parquet:"order_date,date"`
	ProductID  int32  `parquet:"product_id"`
}

type MenuItem struct {
	ProductID   int32  `parquet:"product_id"`
	ProductName string `parquet:"product_name"`
	Price       int32  `parquet:"price"`
}

func days(v interface{}) int32 {
	return int32(v.(time.Time).Unix() / 86400)
}

func load(path, ddl string) []map[string]interface{} {
	schema, err := reader.ParseSchema(ddl)
	if err != nil {
		log.Fatal(err)
	}
	data, err := reader.ReadCSV(path, schema, reader.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	return data.Rows
}

func write[T any](path string, rows []T) {
	file, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		log.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		log.Fatal(err)
	}
	log.Printf("Generated %s with %d rows", path, len(rows))
}

func main() {
	var members []Member
	for _, r := range load("members.csv", "customer_id STRING, join_date DATE") {
		members = append(members, Member{CustomerID: r["customer_id"].(string), JoinDate: days(r["join_date"])})
	}
	write("members.parquet", members)

	var sales []Sale
	for _, r := range load("sales.csv", "customer_id STRING, order_date DATE, product_id INT") {
		sales = append(sales, Sale{
			CustomerID: r["customer_id"].(string),
			OrderDate:  days(r["order_date"]),
			ProductID:  int32(r["product_id"].(int64)),
		})
	}
	write("sales.parquet", sales)

	var menu []MenuItem
	for _, r := range load("menu.csv", "product_id INT, product_name STRING, price INT") {
		menu = append(menu, MenuItem{
			ProductID:   int32(r["product_id"].(int64)),
			ProductName: r["product_name"].(string),
			Price:       int32(r["price"].(int64)),
		})
	}
	write("menu.parquet", menu)
}

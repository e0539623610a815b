package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTableNotFound is returned when a FROM or JOIN source is not registered
var ErrTableNotFound = errors.New("table not found")

// Table is a named in-memory relation. Columns fixes the column order;
// Rows are keyed by column name.
type Table struct {
	Name    string
	Columns []string
	Rows    []map[string]interface{}
}

// Result is the output of a query: ordered columns and rows keyed by them.
type Result struct {
	Columns []string
	Rows    []map[string]interface{}
}

// Catalog resolves table names used in FROM and JOIN clauses.
type Catalog interface {
	Lookup(name string) (*Table, error)
}

// MapCatalog is a Catalog backed by a map. Names are case-insensitive.
type MapCatalog map[string]*Table

// NewMapCatalog builds a catalog from tables, keyed by their names.
func NewMapCatalog(tables ...*Table) MapCatalog {
	c := make(MapCatalog, len(tables))
	for _, t := range tables {
		c.Register(t)
	}
	return c
}

// Register adds or replaces a table.
func (c MapCatalog) Register(t *Table) {
	c[strings.ToLower(t.Name)] = t
}

// Lookup returns the table registered under name.
func (c MapCatalog) Lookup(name string) (*Table, error) {
	t, ok := c[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// Names returns the registered table names.
func (c MapCatalog) Names() []string {
	names := make([]string, 0, len(c))
	for _, t := range c {
		names = append(names, t.Name)
	}
	return sortedStrings(names)
}

// Package challenge holds the diner case study: the input tables and the
// eleven questions asked of them.
package challenge

import (
	"fmt"
	"io"

	"github.com/op/go-logging"

	dlog "github.com/vegasq/dinersql/internal/logging"
	"github.com/vegasq/dinersql/output"
	"github.com/vegasq/dinersql/session"
)

var log = logging.MustGetLogger(dlog.AppModule)

// Runner prints query results one after another
type Runner struct {
	Session   *session.Session
	Tables    *Tables
	Formatter output.Formatter
	// Out receives titles; the formatter writes results itself
	Out io.Writer
	// Titles prints a heading above each result
	Titles bool
}

// Run evaluates and prints queries in order, stopping at the first error.
// Output already written stays written.
func (r *Runner) Run(queries []Query) error {
	for _, q := range queries {
		log.Infof("running query %d: %s (%s)", q.Number, q.Name, q.Kind())

		res, err := q.Run(r.Session, r.Tables)
		if err != nil {
			return err
		}

		if r.Titles {
			if _, err := fmt.Fprintf(r.Out, "%d. %s\n", q.Number, q.Title); err != nil {
				return err
			}
		}
		if err := r.Formatter.Format(res.Columns, res.Rows); err != nil {
			return fmt.Errorf("query %d (%s): format: %w", q.Number, q.Name, err)
		}
	}
	return nil
}

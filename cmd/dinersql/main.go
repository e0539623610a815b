package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"

	"github.com/vegasq/dinersql/internal/challenge"
	"github.com/vegasq/dinersql/internal/config"
	dlog "github.com/vegasq/dinersql/internal/logging"
	"github.com/vegasq/dinersql/output"
	"github.com/vegasq/dinersql/reader"
	"github.com/vegasq/dinersql/session"
)

var log = logging.MustGetLogger(dlog.AppModule)

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	format     string
	only       string
	list       bool
	schema     bool
	sql        string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("dinersql", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Config file (YAML or JSON)")
	fs.StringVar(&opts.format, "f", "", "Output format: table, csv, json, jsonl (default from config)")
	fs.StringVar(&opts.only, "only", "", "Comma-separated query names to run (default: all)")
	fs.BoolVar(&opts.list, "list", false, "List query names and exit")
	fs.BoolVar(&opts.schema, "schema", false, "Show the schema of the input tables instead of running queries")
	fs.StringVar(&opts.sql, "q", "", "Run one SQL query against the members, sales and menu views")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: dinersql [options]\n\n")
		fmt.Fprintf(stderr, "Answers the diner case study questions over the members, sales and menu tables.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  dinersql\n")
		fmt.Fprintf(stderr, "  dinersql -only total_spent,points\n")
		fmt.Fprintf(stderr, "  dinersql -f csv -q \"select * from menu\"\n")
		fmt.Fprintf(stderr, "  DINERSQL_SALES_PATH=data/sales.parquet dinersql -schema\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected arguments: %s\n\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return nil, errUsage
	}
	if opts.schema && opts.sql != "" {
		fmt.Fprintf(stderr, "Error: -schema and -q cannot be used together\n")
		return nil, errUsage
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 1
	}

	queries, err := challenge.Queries()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.list {
		for _, q := range queries {
			fmt.Fprintf(stdout, "%-22s %-9s %s\n", q.Name, q.Kind(), q.Title)
		}
		return 0
	}

	cfg, err := config.InitConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if opts.format != "" {
		cfg.Format = opts.format
	}

	if err := dlog.InitLoggerTo(stderr, cfg.LogLevel, cfg.EngineLogLevel); err != nil {
		fmt.Fprintf(stderr, "Error: invalid log level: %v\n", err)
		return 1
	}
	log.Debugf("config: %+v", cfg)

	if err := execute(opts, cfg, queries, stdout); err != nil {
		log.Errorf("%v", err)
		return 1
	}
	return 0
}

func execute(opts *options, cfg *config.Config, queries []challenge.Query, stdout io.Writer) error {
	formatter, err := output.New(cfg.Format, stdout, output.Options{NumRows: cfg.ShowRows, Truncate: cfg.Truncate})
	if err != nil {
		return err
	}

	paths := challenge.Paths{Members: cfg.MembersPath, Sales: cfg.SalesPath, Menu: cfg.MenuPath}
	if opts.schema {
		return showSchemas(paths, formatter)
	}

	selected, err := challenge.Select(queries, splitNames(opts.only))
	if err != nil {
		return err
	}

	s, err := session.New(session.WithAppName(cfg.AppName), session.WithMaster(cfg.Master))
	if err != nil {
		return err
	}
	log.Infof("session %s (%s)", s.ID(), s.AppName())

	tables, err := challenge.Load(s, paths)
	if err != nil {
		return err
	}

	if opts.sql != "" {
		res, err := s.SQL(opts.sql).Result()
		if err != nil {
			return err
		}
		return formatter.Format(res.Columns, res.Rows)
	}

	runner := &challenge.Runner{
		Session:   s,
		Tables:    tables,
		Formatter: formatter,
		Out:       stdout,
		Titles:    strings.EqualFold(cfg.Format, "table"),
	}
	return runner.Run(selected)
}

// showSchemas prints the declared schema of each CSV table, and the stored
// schema of each parquet file
func showSchemas(paths challenge.Paths, formatter output.Formatter) error {
	tables := []struct {
		name, path, ddl string
	}{
		{"members", paths.Members, challenge.MembersSchema},
		{"sales", paths.Sales, challenge.SalesSchema},
		{"menu", paths.Menu, challenge.MenuSchema},
	}

	columns := []string{"table", "column", "type", "physical_type", "logical_type"}
	var rows []map[string]interface{}
	for _, t := range tables {
		if reader.FormatOf(t.path) == reader.FormatParquet {
			infos, err := reader.ExtractSchemaInfo(t.path)
			if err != nil {
				return fmt.Errorf("schema of %s: %w", t.name, err)
			}
			for _, info := range infos {
				rows = append(rows, map[string]interface{}{
					"table": t.name, "column": info.Name, "type": info.Type,
					"physical_type": info.PhysicalType, "logical_type": info.LogicalType,
				})
			}
			continue
		}

		schema, err := reader.ParseSchema(t.ddl)
		if err != nil {
			return err
		}
		for _, col := range schema {
			rows = append(rows, map[string]interface{}{
				"table": t.name, "column": col.Name, "type": col.Type.String(),
				"physical_type": nil, "logical_type": nil,
			})
		}
	}
	return formatter.Format(columns, rows)
}

func splitNames(list string) []string {
	var names []string
	for _, n := range strings.Split(list, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

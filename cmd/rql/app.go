package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/groupcache/lru"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vegasq/rql/internal/config"
	"github.com/vegasq/rql/internal/logger"
	"github.com/vegasq/rql/output"
	"github.com/vegasq/rql/query"
	"github.com/vegasq/rql/reader"
)

// app is the state shared by all subcommands
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	flags struct {
		config     string
		tables     []string
		prefilters []string
		format     string
		limit      int
		logLevel   string
	}

	cfg    *config.Config
	tables map[string]*boundTable
	order  []string
	env    *query.Env
	cache  *lru.Cache // compiled queries by text, nil disables caching
}

type boundTable struct {
	table     reader.Table
	prefilter *reader.Prefilter
}

// setup loads configuration, initializes logging and opens every bound table
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.config)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = a.flags.format
	}
	if flags.Changed("limit") {
		cfg.Limit = a.flags.limit
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.flags.logLevel
	}
	for _, binding := range a.flags.tables {
		t, err := config.ParseTable(binding)
		if err != nil {
			return err
		}
		cfg.AddTable(t)
	}
	for _, binding := range a.flags.prefilters {
		name, expr, ok := strings.Cut(binding, "=")
		if !ok || name == "" || expr == "" {
			return fmt.Errorf("invalid prefilter %q, expected name=expression", binding)
		}
		if !setFilter(cfg, name, expr) {
			return fmt.Errorf("prefilter for unknown table %q", name)
		}
	}

	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: a.stderr})
	a.cfg = cfg
	return a.open()
}

func setFilter(cfg *config.Config, name, expr string) bool {
	for i := range cfg.Tables {
		if cfg.Tables[i].Name == name {
			cfg.Tables[i].Filter = expr
			return true
		}
	}
	return false
}

func (a *app) open() error {
	a.tables = make(map[string]*boundTable, len(a.cfg.Tables))
	a.env = query.NewEnv()

	for _, tc := range a.cfg.Tables {
		t, err := reader.Open(tc.Path)
		if err != nil {
			return fmt.Errorf("table %s: %w", tc.Name, err)
		}
		bound := &boundTable{table: t}
		a.tables[tc.Name] = bound
		a.order = append(a.order, tc.Name)

		if tc.Filter != "" {
			pf, err := reader.NewPrefilter(tc.Filter)
			if err != nil {
				return fmt.Errorf("table %s: %w", tc.Name, err)
			}
			bound.prefilter = pf
		}
		logger.Debug("opened table", "table", tc.Name, "path", tc.Path,
			"columns", len(t.Schema().Columns), "prefilter", tc.Filter)
	}
	a.refresh()
	return nil
}

// refresh gives every table a fresh row stream for the next run
func (a *app) refresh() {
	for name, bound := range a.tables {
		a.env.Tables[name] = reader.Source(bound.table, bound.prefilter)
	}
}

func (a *app) close() error {
	var errs []error
	for _, name := range a.order {
		if err := a.tables[name].table.Close(); err != nil {
			errs = append(errs, fmt.Errorf("table %s: %w", name, err))
		}
	}
	a.tables = nil
	a.order = nil
	return errors.Join(errs...)
}

// compile compiles input, consulting the cache when one is set
func (a *app) compile(input string) (*query.CompileResult, error) {
	if a.cache != nil {
		if cached, ok := a.cache.Get(input); ok {
			logger.Debug("compile cache hit", "query", input)
			return cached.(*query.CompileResult), nil
		}
	}

	result, err := query.Compile(input, a.env)
	if err != nil {
		logger.Debug("compile failed", "error", err)
		return nil, err
	}
	logger.Debug("compiled query", "tokens", len(result.Tokens), "columns", result.Schema().Names())

	if a.cache != nil {
		a.cache.Add(input, result)
	}
	return result, nil
}

// execute compiles and runs input, writing the result to w
func (a *app) execute(input string, w io.Writer) error {
	result, err := a.compile(input)
	if err != nil {
		return err
	}

	f, err := output.New(a.format(w), w)
	if err != nil {
		return err
	}

	a.refresh()
	rows := query.Limit(result.Rows(a.env), a.cfg.Limit)
	if err := f.Format(result.Schema().Names(), rows); err != nil {
		logger.Debug("query failed", "error", err)
		return err
	}
	return nil
}

// format picks the configured output format, or table when w is a terminal
// and jsonl otherwise
func (a *app) format(w io.Writer) string {
	if a.cfg.Format != "" {
		return a.cfg.Format
	}
	if isTerminal(w) {
		return "table"
	}
	return "jsonl"
}

func isTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func formatNames() string {
	return strings.Join(output.Formats, ", ")
}

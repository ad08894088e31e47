// Command rql runs RQL queries against parquet and JSON lines files.
//
// Tables are bound with --table name=path (repeatable) or in an rql.yaml
// config file:
//
//	rql run --table users=data/users.parquet "users | where age > 30 | project name"
//	rql repl --table logs='logs/*.parquet'
//	rql schema --table users=data/users.parquet users
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vegasq/rql/query"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err to w. Query errors carry their position already.
func reportError(w io.Writer, err error) {
	var qerr *query.Error
	if errors.As(err, &qerr) {
		fmt.Fprintln(w, qerr.Error())
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "rql",
		Short:         "Query parquet and JSON lines files with RQL",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.flags.config, "config", "c", "", "config file (default ./rql.yaml if present)")
	flags.StringArrayVarP(&a.flags.tables, "table", "t", nil, "bind a table as name=path, path may be a glob (repeatable)")
	flags.StringArrayVar(&a.flags.prefilters, "prefilter", nil, "filter a table's rows while reading, as name=expression (repeatable)")
	flags.StringVarP(&a.flags.format, "format", "f", "", fmt.Sprintf("output format %v (default table on a terminal, jsonl otherwise)", formatNames()))
	flags.IntVarP(&a.flags.limit, "limit", "n", -1, "maximum number of rows to print (negative = unlimited)")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: DEBUG, INFO, WARN, ERROR")

	root.AddCommand(
		newRunCmd(a),
		newReplCmd(a),
		newSchemaCmd(a),
		newTokensCmd(a),
		newExplainCmd(a),
		newFunctionsCmd(a),
	)
	return root
}

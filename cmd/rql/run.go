package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [query]",
		Short: "Run a query and print the result",
		Long: `Run a query against the bound tables and print the result rows.

The query is read from standard input when it is omitted or given as "-".`,
		Example: `  rql run -t users=users.parquet "users | where age > 30 | project name, age"
  echo "events | summarize count() by kind" | rql run -t events=events.jsonl -f csv`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := a.queryText(args)
			if err != nil {
				return err
			}
			return a.execute(input, a.stdout)
		},
	}
}

// queryText joins args into a query, or reads stdin when there are none
func (a *app) queryText(args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read query: %w", err)
		}
		args = []string{string(data)}
	}
	input := strings.TrimSpace(strings.Join(args, " "))
	if input == "" {
		return "", fmt.Errorf("empty query")
	}
	return input, nil
}

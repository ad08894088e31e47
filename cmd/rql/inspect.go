package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vegasq/rql/output"
	"github.com/vegasq/rql/query"
	"github.com/vegasq/rql/reader"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table]",
		Short: "Print the columns of bound tables",
		Long: `Print the column names and types of a bound table, or of every bound
table when none is named. Parquet tables also show their physical and
logical column types.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := a.order
			if len(args) == 1 {
				if _, ok := a.tables[args[0]]; !ok {
					return fmt.Errorf("no such table as '%s'", args[0])
				}
				names = args
			}
			return a.printSchema(names, a.stdout)
		},
	}
}

func (a *app) printSchema(names []string, w io.Writer) error {
	var rows []query.Row
	for _, name := range names {
		tableRows, err := schemaRows(name, a.tables[name].table)
		if err != nil {
			return err
		}
		rows = append(rows, tableRows...)
	}

	f, err := output.New(a.format(w), w)
	if err != nil {
		return err
	}
	columns := []string{"table", "name", "type", "physical_type", "logical_type", "optional", "repeated"}
	return f.Format(columns, query.NewSliceStream(rows))
}

func schemaRows(name string, t reader.Table) ([]query.Row, error) {
	var details map[string]reader.SchemaInfo
	if pt, ok := t.(*reader.ParquetTable); ok {
		infos, err := pt.SchemaInfo()
		if err != nil {
			return nil, err
		}
		details = make(map[string]reader.SchemaInfo, len(infos))
		for _, info := range infos {
			details[info.Name] = info
		}
	}

	cols := t.Schema().Columns
	rows := make([]query.Row, len(cols))
	for i, col := range cols {
		row := query.Row{"table": name, "name": col.Name, "type": col.Type.String()}
		if info, ok := details[col.Name]; ok {
			row["physical_type"] = info.PhysicalType
			row["logical_type"] = info.LogicalType
			row["optional"] = info.Optional
			row["repeated"] = info.Repeated
		}
		rows[i] = row
	}
	return rows, nil
}

func newTokensCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [query]",
		Short: "Print the tokens of a query",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := a.queryText(args)
			if err != nil {
				return err
			}
			tokens, err := query.Tokenize(input)
			if err != nil {
				return err
			}

			rows := make([]query.Row, len(tokens))
			for i, tok := range tokens {
				line, col := query.SourcePosition(input, tok.Pos)
				rows[i] = query.Row{
					"kind":   tok.Type.String(),
					"text":   tok.Value,
					"offset": float64(tok.Pos),
					"line":   float64(line),
					"col":    float64(col),
				}
			}
			f, err := output.New(a.format(a.stdout), a.stdout)
			if err != nil {
				return err
			}
			return f.Format([]string{"kind", "text", "offset", "line", "col"}, query.NewSliceStream(rows))
		},
	}
}

func newExplainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [query]",
		Short: "Check a query and print its plan with the schema after each stage",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := a.queryText(args)
			if err != nil {
				return err
			}
			result, err := a.compile(input)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, query.Explain(result.Checked))
			return err
		},
	}
}

func newFunctionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the builtin functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printFunctions(a.stdout)
		},
	}
}

func (a *app) printFunctions(w io.Writer) error {
	registry := query.GetGlobalRegistry()
	names := registry.Names()
	rows := make([]query.Row, 0, len(names))
	for _, name := range names {
		f, _ := registry.Get(name)
		rows = append(rows, query.Row{
			"name":      f.Name,
			"signature": f.Signature(),
			"aggregate": f.IsAggregate(),
		})
	}

	out, err := output.New(a.format(w), w)
	if err != nil {
		return err
	}
	return out.Format([]string{"name", "signature", "aggregate"}, query.NewSliceStream(rows))
}

// Package query implements RQL, a pipe-delimited tabular query language for
// row sets held by a host.
//
// A query names a source table and chains operators onto it:
//
//	Events | where level == "error" and ts >= 2024-01-01
//	       | extend day = day(ts)
//	       | summarize n = count(), worst = max(severity) by service
//	       | order by n desc
//
// Operators:
//   - where expr: keeps rows for which expr is true (null excludes the row)
//   - project a, b: keeps the listed columns in the listed order
//   - extend name = expr: appends a computed column
//   - summarize name = f(args), ... [by col, ...]: folds rows with aggregate-capable functions
//   - order by a, b [asc|desc]: stable sort, ascending by default
//
// # Compilation
//
// Compilation is staged: Tokenize, Parse, Check and CompileChecked. Compile
// runs all of them and stops at the first error, which is a *Error of kind
// LexicalError, SyntaxError or SemanticError carrying the line and column of
// the offending input.
//
//	env := query.NewEnv()
//	env.AddTable("Rows", query.NewTableDef(
//	    query.Column{Name: "a", Type: query.TypeNumber},
//	    query.Column{Name: "b", Type: query.TypeString},
//	), query.NewSliceStream(rows))
//
//	stream, err := query.Run("Rows | where a > 1", env)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := query.Collect(stream)
//
// # Execution
//
// A compiled Program is lazy: calling it returns a RowStream without reading
// any input, and each Next pulls only as many upstream rows as it needs.
// order by and summarize read their whole input before emitting their first
// row. A failure while evaluating rows ends the stream with a *Error of kind
// RuntimeError.
//
// # Values
//
// Row values are nil, bool, float64, string, time.Time (a UTC date) or
// map[string]interface{}. Host values of other numeric kinds are converted
// to float64 as they enter a query.
//
// # Functions
//
// Builtins live in the global FunctionRegistry. A FunctionDef with an
// AggregateDef can be used inside summarize; it is called with the
// accumulator as its first argument. Hosts add their own functions with
// Env.AddFunction, which take precedence over builtins of the same name.
package query

// Package output provides formatters that write RQL query results.
//
// Every formatter consumes a query.RowStream and writes the given columns
// in order. JSON Lines and CSV write each row as it arrives; the text table
// waits for the whole result to size its columns.
//
// # Supported Formats
//
//   - jsonl (alias json): One JSON object per line
//   - csv: Comma-separated values with header row
//   - table: Aligned text table with a row count
//
// # Basic Usage
//
//	result, err := query.Compile(q, env)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	formatter, err := output.New("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(result.Schema().Names(), result.Program(env)); err != nil {
//	    log.Fatal(err)
//	}
//
// # Value Rendering
//
// Values are rendered the way the engine prints them: dates as YYYY-MM-DD,
// whole numbers without a fraction, objects as JSON. CSV writes null as an
// empty field and the table writes it as "null".
package output

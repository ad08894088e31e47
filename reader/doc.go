// Package reader loads host tables for RQL queries.
//
// Tables come from Apache Parquet files (one file or a glob of files with
// the same schema) and from JSON lines files. Each table exposes an RQL
// schema and streams its rows lazily; a table can be queried any number of
// times, every call to Rows starting a fresh read.
//
// # Basic Usage
//
//	table, err := reader.Open("events.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer table.Close()
//
//	env := query.NewEnv()
//	env.Tables["Events"] = reader.Source(table, nil)
//
//	stream, err := query.Run("Events | where level == 'error'", env)
//
// # Types
//
// Parquet columns map to RQL types by logical type first, then physical
// type:
//
//   - BOOLEAN: boolean
//   - INT32, INT64, FLOAT, DOUBLE, INT, integer DECIMAL: number
//   - STRING, ENUM, UUID, BSON, byte arrays: string
//   - DATE: date
//   - TIMESTAMP, TIME: string (RFC 3339 / time of day)
//   - JSON: object
//   - repeated columns: object, keyed by element index
//
// Nested groups are flattened into dot separated column names
// (e.g. "address.street").
//
// # Prefilters
//
// A Prefilter evaluates a go-bexpr expression against raw rows before they
// reach the query, which keeps host-side row selection out of the query
// text.
package reader

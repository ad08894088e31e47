package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/rql/query"
)

func TestOpenParquet_SchemaAndRows(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "users.parquet", users())

	table, err := OpenParquet(path)
	require.NoError(t, err)
	defer func() { _ = table.Close() }()

	assert.Equal(t, []query.Column{
		{Name: "active", Type: query.TypeBoolean},
		{Name: "age", Type: query.TypeNumber},
		{Name: "name", Type: query.TypeString},
		{Name: "nick", Type: query.TypeString},
		{Name: "score", Type: query.TypeNumber},
	}, table.Schema().Columns)

	want := []query.Row{
		{"active": true, "age": 30.0, "name": "alice", "nick": "al", "score": 95.5},
		{"active": false, "age": 25.0, "name": "bob", "nick": nil, "score": 82.25},
		{"active": true, "age": 35.0, "name": "charlie", "nick": nil, "score": 88.0},
	}

	rows, err := query.Collect(table.Rows())
	require.NoError(t, err)
	assert.Equal(t, want, rows)

	// Every call to Rows reads the file again
	rows, err = query.Collect(table.Rows())
	require.NoError(t, err)
	assert.Equal(t, want, rows)
}

func TestOpenParquet_ManyRows(t *testing.T) {
	type row struct {
		N int64 `parquet:"n"`
	}
	data := make([]row, 3*batchSize+7)
	for i := range data {
		data[i] = row{N: int64(i)}
	}
	path := writeParquet(t, t.TempDir(), "many.parquet", data)

	table, err := OpenParquet(path)
	require.NoError(t, err)
	defer func() { _ = table.Close() }()

	rows, err := query.Collect(table.Rows())
	require.NoError(t, err)
	require.Len(t, rows, len(data))
	for i, r := range rows {
		assert.Equal(t, float64(i), r["n"])
	}
}

func TestOpenParquet_LogicalTypes(t *testing.T) {
	type row struct {
		Day  int32    `parquet:"day,date"`
		Tags []string `parquet:"tags"`
	}
	path := writeParquet(t, t.TempDir(), "typed.parquet", []row{
		{Day: 19723, Tags: []string{"a", "b"}},
		{Day: 0},
	})

	table, err := OpenParquet(path)
	require.NoError(t, err)
	defer func() { _ = table.Close() }()

	assert.Equal(t, []query.Column{
		{Name: "day", Type: query.TypeDate},
		{Name: "tags", Type: query.TypeObject},
	}, table.Schema().Columns)

	rows, err := query.Collect(table.Rows())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2024-01-01", query.FormatValue(rows[0]["day"]))
	assert.Equal(t, map[string]interface{}{"0": "a", "1": "b"}, rows[0]["tags"])
	assert.Equal(t, "1970-01-01", query.FormatValue(rows[1]["day"]))
	assert.Equal(t, map[string]interface{}{}, rows[1]["tags"])
}

func TestOpenParquet_Glob(t *testing.T) {
	dir := t.TempDir()
	first := writeParquet(t, dir, "part-1.parquet", users()[:2])
	second := writeParquet(t, dir, "part-2.parquet", users()[2:])

	table, err := OpenParquet(dir + "/part-*.parquet")
	require.NoError(t, err)
	defer func() { _ = table.Close() }()

	names := table.Schema().Names()
	assert.Equal(t, FileColumn, names[len(names)-1])

	rows, err := query.Collect(table.Rows())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, first, rows[0][FileColumn])
	assert.Equal(t, first, rows[1][FileColumn])
	assert.Equal(t, second, rows[2][FileColumn])
	assert.Equal(t, "charlie", rows[2]["name"])
}

func TestOpenParquet_SingleFileHasNoFileColumn(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "users.parquet", users())

	table, err := OpenParquet(path)
	require.NoError(t, err)
	defer func() { _ = table.Close() }()

	_, ok := table.Schema().Lookup(FileColumn)
	assert.False(t, ok)
}

func TestOpenParquet_Errors(t *testing.T) {
	dir := t.TempDir()
	writeParquet(t, dir, "a.parquet", users())
	type other struct {
		ID int64 `parquet:"id"`
	}
	writeParquet(t, dir, "b.parquet", []other{{ID: 1}})
	notParquet := writeFile(t, dir, "c.txt", "not a parquet file")

	tests := []struct {
		name    string
		pattern string
		message string
	}{
		{"missing file", dir + "/nope.parquet", "failed to open file"},
		{"no matches", dir + "/*.nothing", "no files match pattern"},
		{"bad pattern", dir + "/[", "invalid glob pattern"},
		{"schema mismatch", dir + "/*.parquet", "differs from"},
		{"not parquet", notParquet, "failed to open parquet file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenParquet(tt.pattern)
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestParquetTable_Query(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "users.parquet", users())
	table, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = table.Close() }()

	env := query.NewEnv()
	env.Tables["Users"] = Source(table, nil)

	stream, err := query.Run("Users | where age > 26 and active | extend label = name + ':' + age | project label", env)
	require.NoError(t, err)
	rows, err := query.Collect(stream)
	require.NoError(t, err)
	assert.Equal(t, []query.Row{{"label": "alice:30"}, {"label": "charlie:35"}}, rows)
}

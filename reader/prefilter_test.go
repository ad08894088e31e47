package reader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/rql/query"
)

func TestPrefilter(t *testing.T) {
	rows := []query.Row{
		{"region": "eu", "name": "a"},
		{"region": "us", "name": "b"},
		{"region": "eu", "name": "c"},
	}

	tests := []struct {
		expr string
		want []string
	}{
		{`region == "eu"`, []string{"a", "c"}},
		{`region != "eu"`, []string{"b"}},
		{`region == "eu" and name == "c"`, []string{"c"}},
		{`name matches "^[ab]$"`, []string{"a", "b"}},
		{`region == "apac"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := NewPrefilter(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, p.String())

			got, err := query.Collect(p.Apply(query.NewSliceStream(rows)))
			require.NoError(t, err)

			var names []string
			for _, r := range got {
				names = append(names, r["name"].(string))
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestPrefilter_InvalidExpression(t *testing.T) {
	_, err := NewPrefilter(`region ==`)
	assert.ErrorContains(t, err, "error parsing prefilter")
}

func TestPrefilter_PassesSourceErrors(t *testing.T) {
	cause := errors.New("read failed")
	p, err := NewPrefilter(`region == "eu"`)
	require.NoError(t, err)

	_, err = p.Apply(query.RowStreamFunc(func() (query.Row, error) {
		return nil, cause
	})).Next()
	assert.ErrorIs(t, err, cause)
}

func TestSource_AppliesPrefilter(t *testing.T) {
	path := writeParquet(t, t.TempDir(), "users.parquet", users())
	table, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = table.Close() }()

	p, err := NewPrefilter(`name != "bob"`)
	require.NoError(t, err)

	env := query.NewEnv()
	env.Tables["Users"] = Source(table, p)
	stream, err := query.Run("Users | project name", env)
	require.NoError(t, err)

	rows, err := query.Collect(stream)
	require.NoError(t, err)
	assert.Equal(t, []query.Row{{"name": "alice"}, {"name": "charlie"}}, rows)
}

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func column(rows []Row, name string) []interface{} {
	values := make([]interface{}, len(rows))
	for i, row := range rows {
		values[i] = row[name]
	}
	return values
}

func TestRowSorter_SingleColumn(t *testing.T) {
	rows := func() []Row {
		return []Row{
			{"name": "charlie", "age": 25.0},
			{"name": "alice", "age": 30.0},
			{"name": "bob", "age": 20.0},
		}
	}

	tests := []struct {
		name      string
		column    string
		direction SortDirection
		want      []interface{}
	}{
		{"age ascending", "age", Ascending, []interface{}{20.0, 25.0, 30.0}},
		{"age descending", "age", Descending, []interface{}{30.0, 25.0, 20.0}},
		{"name ascending", "name", Ascending, []interface{}{"alice", "bob", "charlie"}},
		{"name descending", "name", Descending, []interface{}{"charlie", "bob", "alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted := newRowSorter([]string{tt.column}, tt.direction).sort(rows())
			assert.Equal(t, tt.want, column(sorted, tt.column))
		})
	}
}

func TestRowSorter_MultipleColumns(t *testing.T) {
	rows := []Row{
		{"dept": "ops", "age": 40.0, "id": 1.0},
		{"dept": "dev", "age": 30.0, "id": 2.0},
		{"dept": "ops", "age": 25.0, "id": 3.0},
		{"dept": "dev", "age": 30.0, "id": 4.0},
		{"dept": "dev", "age": 22.0, "id": 5.0},
	}

	sorted := newRowSorter([]string{"dept", "age"}, Ascending).sort(append([]Row(nil), rows...))
	assert.Equal(t, []interface{}{5.0, 2.0, 4.0, 3.0, 1.0}, column(sorted, "id"))

	sorted = newRowSorter([]string{"dept", "age"}, Descending).sort(append([]Row(nil), rows...))
	assert.Equal(t, []interface{}{1.0, 3.0, 2.0, 4.0, 5.0}, column(sorted, "id"))
}

func TestRowSorter_StableTies(t *testing.T) {
	rows := []Row{
		{"k": 1.0, "id": "a"},
		{"k": 0.0, "id": "b"},
		{"k": 1.0, "id": "c"},
		{"k": 0.0, "id": "d"},
		{"k": 1.0, "id": "e"},
	}

	for i := 0; i < 3; i++ {
		sorted := newRowSorter([]string{"k"}, Ascending).sort(append([]Row(nil), rows...))
		assert.Equal(t, []interface{}{"b", "d", "a", "c", "e"}, column(sorted, "id"))

		sorted = newRowSorter([]string{"k"}, Descending).sort(append([]Row(nil), rows...))
		assert.Equal(t, []interface{}{"a", "c", "e", "b", "d"}, column(sorted, "id"))
	}
}

func TestRowSorter_Nulls(t *testing.T) {
	rows := func() []Row {
		return []Row{{"v": 2.0}, {"v": nil}, {"v": 1.0}, {}}
	}

	sorted := newRowSorter([]string{"v"}, Ascending).sort(rows())
	assert.Equal(t, []interface{}{nil, nil, 1.0, 2.0}, column(sorted, "v"))

	sorted = newRowSorter([]string{"v"}, Descending).sort(rows())
	assert.Equal(t, []interface{}{2.0, 1.0, nil, nil}, column(sorted, "v"))
}

func TestRowSorter_Types(t *testing.T) {
	tests := []struct {
		name string
		in   []interface{}
		want []interface{}
	}{
		{
			name: "strings use collation",
			in:   []interface{}{"banana", "Apple", "cherry", "apple"},
			want: []interface{}{"apple", "Apple", "banana", "cherry"},
		},
		{
			name: "numbers",
			in:   []interface{}{10.0, -1.5, 2.0, 0.0},
			want: []interface{}{-1.5, 0.0, 2.0, 10.0},
		},
		{
			name: "booleans",
			in:   []interface{}{true, false, true},
			want: []interface{}{false, true, true},
		},
		{
			name: "dates",
			in:   []interface{}{date(2024, 3, 1), date(2023, 12, 31), date(2024, 1, 15)},
			want: []interface{}{date(2023, 12, 31), date(2024, 1, 15), date(2024, 3, 1)},
		},
		{
			name: "objects by JSON text",
			in: []interface{}{
				map[string]interface{}{"b": 1.0},
				map[string]interface{}{"a": 2.0},
			},
			want: []interface{}{
				map[string]interface{}{"a": 2.0},
				map[string]interface{}{"b": 1.0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]Row, len(tt.in))
			for i, v := range tt.in {
				rows[i] = Row{"v": v}
			}
			sorted := newRowSorter([]string{"v"}, Ascending).sort(rows)
			assert.Equal(t, tt.want, column(sorted, "v"))
		})
	}
}

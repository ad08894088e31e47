package query

import (
	"io"
	"strings"
)

// group holds the accumulators of one summarize group
type group struct {
	values Row // group-by values taken from the group's first row
	accs   []interface{}
	n      int
}

func newGroup(n *CheckedSummarize, values Row) *group {
	accs := make([]interface{}, len(n.Aggregations))
	for i, aggr := range n.Aggregations {
		accs[i] = aggr.InitialValue
	}
	return &group{values: values, accs: accs}
}

// summarize folds every input row into its group and emits one row per group
// in discovery order. Without group-by columns there is exactly one group,
// even over no rows.
func summarize(n *CheckedSummarize, input RowStream) ([]Row, error) {
	groups := make(map[string]*group)
	var order []*group

	if len(n.GroupBy) == 0 {
		g := newGroup(n, Row{})
		groups[""] = g
		order = append(order, g)
	}

	for {
		row, err := input.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		key, values := computeGroupKey(row, n.GroupBy)
		g, exists := groups[key]
		if !exists {
			g = newGroup(n, values)
			groups[key] = g
			order = append(order, g)
		}

		for i, aggr := range n.Aggregations {
			acc, err := step(aggr, g.accs[i], row)
			if err != nil {
				return nil, err
			}
			g.accs[i] = acc
		}
		g.n++
	}

	result := make([]Row, 0, len(order))
	for _, g := range order {
		row, err := finalize(n, g)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, nil
}

// computeGroupKey computes the key of a row's group from the group-by
// columns, along with the values themselves
func computeGroupKey(row Row, groupByColumns []string) (string, Row) {
	var keyBuilder strings.Builder
	values := make(Row, len(groupByColumns))

	for i, col := range groupByColumns {
		value := row[col]
		if i > 0 {
			keyBuilder.WriteString("\x00||\x00") // unlikely separator to avoid collisions
		}
		keyBuilder.WriteString(groupKeyPart(value))
		values[col] = value
	}
	return keyBuilder.String(), values
}

func step(aggr CheckedAggregation, acc interface{}, row Row) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = runtimeError(aggr.Pos, nil, "aggregation '%s' failed: %v", aggr.Name, r)
		}
	}()
	return aggr.Step(acc, row)
}

// finalize applies the final passes and builds the output row of a group
func finalize(n *CheckedSummarize, g *group) (Row, error) {
	out := make(Row, len(n.Aggregations)+len(g.values))
	for i, aggr := range n.Aggregations {
		v := g.accs[i]
		if aggr.FinalPass != nil {
			var err error
			v, err = finalPass(aggr, v, g.n)
			if err != nil {
				return nil, err
			}
		}
		out[aggr.Name] = v
	}
	for col, v := range g.values {
		out[col] = v
	}
	return out, nil
}

func finalPass(aggr CheckedAggregation, acc interface{}, n int) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = runtimeError(aggr.Pos, nil, "final pass of '%s' failed: %v", aggr.Name, r)
		}
	}()
	result, err = aggr.FinalPass(acc, n)
	if err != nil {
		return nil, runtimeError(aggr.Pos, err, "final pass of '%s' failed: %v", aggr.Name, err)
	}
	return NormalizeValue(result), nil
}

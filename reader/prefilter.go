package reader

import (
	"fmt"

	"github.com/hashicorp/go-bexpr"

	"github.com/vegasq/rql/query"
)

// Prefilter drops source rows before they reach a query. The expression
// uses go-bexpr syntax (e.g. `region == "eu" and tags contains "vip"`)
// and is evaluated against each raw row.
type Prefilter struct {
	expr      string
	evaluator *bexpr.Evaluator
}

// NewPrefilter compiles a go-bexpr expression
func NewPrefilter(expr string) (*Prefilter, error) {
	evaluator, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, fmt.Errorf("error parsing prefilter '%s': %w", expr, err)
	}
	return &Prefilter{expr: expr, evaluator: evaluator}, nil
}

// Apply wraps a stream, passing on only rows the expression accepts. An
// evaluation error ends the stream.
func (p *Prefilter) Apply(stream query.RowStream) query.RowStream {
	return query.RowStreamFunc(func() (query.Row, error) {
		for {
			row, err := stream.Next()
			if err != nil {
				return nil, err
			}
			ok, err := p.evaluator.Evaluate(map[string]interface{}(row))
			if err != nil {
				return nil, fmt.Errorf("error evaluating prefilter '%s': %w", p.expr, err)
			}
			if ok {
				return row, nil
			}
		}
	})
}

// String returns the source expression
func (p *Prefilter) String() string {
	return p.expr
}

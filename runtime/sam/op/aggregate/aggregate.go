// Package aggregate runs an aggregate Evaluator over a table of groups.
package aggregate

import (
	"slices"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/runtime/sam/expr/agg"
)

// Result is the output of one group.
type Result struct {
	Key   superagg.Value
	Value superagg.Value
}

// Aggregate holds one Buffer per distinct group key.  Whether it consumes
// raw rows or partials and whether it emits partials or final values is
// determined by the mode of its Evaluator.
type Aggregate struct {
	eval        *agg.Evaluator
	partialsOut bool
	table       map[string]*group
	scratch     []byte
}

type group struct {
	key superagg.Value
	buf *agg.Buffer
}

// New returns an Aggregate driven by eval, which must already be
// initialized.
func New(eval *agg.Evaluator) *Aggregate {
	return &Aggregate{
		eval:        eval,
		partialsOut: eval.Mode().PartialsOut(),
		table:       make(map[string]*group),
	}
}

func (a *Aggregate) lookup(key superagg.Value) (*group, error) {
	a.scratch = superagg.AppendKey(a.scratch[:0], key)
	if g, ok := a.table[string(a.scratch)]; ok {
		return g, nil
	}
	buf, err := a.eval.NewBuffer()
	if err != nil {
		return nil, err
	}
	g := &group{key: key, buf: buf}
	a.table[string(a.scratch)] = g
	return g, nil
}

// Consume folds a row of raw arguments into the group for key.
func (a *Aggregate) Consume(key superagg.Value, args []superagg.Value) error {
	g, err := a.lookup(key)
	if err != nil {
		return err
	}
	return a.eval.Iterate(g.buf, args)
}

// ConsumePartial merges a partial into the group for key.
func (a *Aggregate) ConsumePartial(key superagg.Value, partial superagg.Value) error {
	g, err := a.lookup(key)
	if err != nil {
		return err
	}
	return a.eval.Merge(g.buf, partial)
}

// Len returns the number of groups.
func (a *Aggregate) Len() int {
	return len(a.table)
}

// Results returns one Result per group in key order.  The groups are left
// intact.
func (a *Aggregate) Results() ([]Result, error) {
	groups := make([]*group, 0, len(a.table))
	for _, g := range a.table {
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(x, y *group) int {
		return superagg.Compare(x.key, y.key)
	})
	results := make([]Result, 0, len(groups))
	for _, g := range groups {
		var val superagg.Value
		var err error
		if a.partialsOut {
			val, err = a.eval.TerminatePartial(g.buf)
		} else {
			val, err = a.eval.Terminate(g.buf)
		}
		if err != nil {
			return nil, err
		}
		results = append(results, Result{Key: g.key, Value: val})
	}
	return results, nil
}

// Reset drops every group.
func (a *Aggregate) Reset() {
	clear(a.table)
}

var resultNames = []string{"key", "value"}

// Record returns r as a {key,value} record.
func (r Result) Record() superagg.Value {
	return superagg.NewRecord(resultNames, []superagg.Value{r.Key, r.Value})
}

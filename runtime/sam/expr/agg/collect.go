package agg

import "github.com/brimdata/superagg"

// CollectToArray gathers the non-null values of its argument into a list.
// Duplicates are kept and the order of elements across merges is not
// defined.
var CollectToArray Operator = collectOp{}

type collectOp struct{}

func (collectOp) Name() string { return "collect_to_array" }

func (o collectOp) resolve(args []*superagg.Type) (kernel, error) {
	if err := arity(o.Name(), args, 1); err != nil {
		return nil, err
	}
	return &collect{typ: superagg.NewListType(args[0])}, nil
}

func (o collectOp) resolvePartial(partial *superagg.Type) (kernel, error) {
	if partial == nil || partial.Kind != superagg.KindList {
		return nil, errorf(o.Name(), ErrConfiguration, "partial type %s is not a list", partial)
	}
	return &collect{typ: partial}, nil
}

type collect struct {
	typ *superagg.Type
}

type collectState struct {
	values []superagg.Value
}

func (c *collectState) reset() {
	c.values = c.values[:0]
}

func (c *collect) partialType() *superagg.Type { return c.typ }
func (c *collect) resultType() *superagg.Type  { return c.typ }
func (c *collect) newState() state             { return &collectState{} }

func (c *collect) consume(s state, args []superagg.Value) error {
	if val := args[0]; !val.IsNull() {
		st := s.(*collectState)
		st.values = append(st.values, val)
	}
	return nil
}

func (c *collect) consumeAsPartial(s state, partial superagg.Value) error {
	st := s.(*collectState)
	st.values = append(st.values, partial.Elems()...)
	return nil
}

func (c *collect) resultAsPartial(s state) (superagg.Value, error) {
	return c.result(s)
}

func (c *collect) result(s state) (superagg.Value, error) {
	return superagg.NewList(s.(*collectState).values...), nil
}

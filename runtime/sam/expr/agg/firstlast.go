package agg

import "github.com/brimdata/superagg"

// FirstOfGroup takes (out, sort) rows and returns the out value of the row
// with the smallest sort value.  LastOfGroup returns the one with the
// largest.  Rows whose sort value is null are skipped.  When sort values
// tie, the pair seen first is kept, which makes the result depend on merge
// order.
var (
	FirstOfGroup Operator = selectOp{name: "first_of_group"}
	LastOfGroup  Operator = selectOp{name: "last_of_group", last: true}
)

var pairNames = []string{"out", "sort"}

type selectOp struct {
	name string
	last bool
}

func (o selectOp) Name() string { return o.name }

func (o selectOp) resolve(args []*superagg.Type) (kernel, error) {
	if err := arity(o.name, args, 2); err != nil {
		return nil, err
	}
	return o.newKernel(args[0], args[1]), nil
}

func (o selectOp) resolvePartial(partial *superagg.Type) (kernel, error) {
	if partial == nil || partial.Kind != superagg.KindRecord || len(partial.Fields) != 2 ||
		partial.Fields[0].Name != pairNames[0] || partial.Fields[1].Name != pairNames[1] {
		return nil, errorf(o.name, ErrConfiguration, "partial type %s is not {out:O,sort:S}", partial)
	}
	return o.newKernel(partial.Fields[0].Type, partial.Fields[1].Type), nil
}

func (o selectOp) newKernel(out, sort *superagg.Type) *selectKernel {
	partial := superagg.NewRecordType(
		superagg.NewField(pairNames[0], out),
		superagg.NewField(pairNames[1], sort))
	return &selectKernel{last: o.last, out: out, partial: partial}
}

type selectKernel struct {
	last    bool
	out     *superagg.Type
	partial *superagg.Type
}

// replace reports whether a row whose sort value compares c against the
// kept one displaces it.
func (s *selectKernel) replace(c int) bool {
	if s.last {
		return c > 0
	}
	return c < 0
}

type pairState struct {
	out  superagg.Value
	sort superagg.Value
	ok   bool
}

func (p *pairState) reset() {
	*p = pairState{}
}

func (s *selectKernel) offer(p *pairState, out, sort superagg.Value) {
	if sort.IsNull() {
		return
	}
	if !p.ok || s.replace(superagg.Compare(sort, p.sort)) {
		p.out, p.sort, p.ok = out, sort, true
	}
}

func (s *selectKernel) partialType() *superagg.Type { return s.partial }
func (s *selectKernel) resultType() *superagg.Type  { return s.out }
func (s *selectKernel) newState() state             { return &pairState{} }

func (s *selectKernel) consume(st state, args []superagg.Value) error {
	s.offer(st.(*pairState), args[0], args[1])
	return nil
}

func (s *selectKernel) consumeAsPartial(st state, partial superagg.Value) error {
	out, _ := partial.Deref(pairNames[0])
	sort, _ := partial.Deref(pairNames[1])
	s.offer(st.(*pairState), out, sort)
	return nil
}

func (s *selectKernel) resultAsPartial(st state) (superagg.Value, error) {
	p := st.(*pairState)
	if !p.ok {
		return superagg.Null, nil
	}
	return superagg.NewRecord(pairNames, []superagg.Value{p.out, p.sort}), nil
}

func (s *selectKernel) result(st state) (superagg.Value, error) {
	p := st.(*pairState)
	if !p.ok {
		return superagg.Null, nil
	}
	return p.out, nil
}

package agg

import (
	"fmt"
	"slices"

	"github.com/axiomhq/hyperloglog"
	"github.com/brimdata/superagg"
)

// ApproxCountDistinctToMap is like CountDistinctToMap but keeps a
// hyperloglog sketch per key instead of the full value set.  Partials are
// |{K:bytes}| holding serialized sketches.
var ApproxCountDistinctToMap Operator = approxCountDistinctOp{}

type approxCountDistinctOp struct{}

func (approxCountDistinctOp) Name() string { return "approx_count_distinct_to_map" }

func (o approxCountDistinctOp) resolve(args []*superagg.Type) (kernel, error) {
	if err := arity(o.Name(), args, 2); err != nil {
		return nil, err
	}
	if err := distinctTypes(o.Name(), args[0], args[1]); err != nil {
		return nil, err
	}
	return newApproxCountDistinct(args[0]), nil
}

func (o approxCountDistinctOp) resolvePartial(partial *superagg.Type) (kernel, error) {
	if partial == nil || partial.Kind != superagg.KindMap || partial.Val.Kind != superagg.KindBytes {
		return nil, errorf(o.Name(), ErrConfiguration, "partial type %s is not a map of bytes", partial)
	}
	if err := distinctTypes(o.Name(), partial.Key, superagg.TypeBytes); err != nil {
		return nil, err
	}
	return newApproxCountDistinct(partial.Key), nil
}

func newApproxCountDistinct(key *superagg.Type) *approxCountDistinct {
	return &approxCountDistinct{
		partial:   superagg.NewMapType(key, superagg.TypeBytes),
		resultTyp: superagg.NewMapType(key, superagg.TypeInt64),
	}
}

type approxCountDistinct struct {
	partial   *superagg.Type
	resultTyp *superagg.Type
}

type keyedSketch struct {
	key    superagg.Value
	sketch *hyperloglog.Sketch
}

type approxCountDistinctState struct {
	sketches map[string]*keyedSketch
	scratch  []byte
}

func (a *approxCountDistinctState) reset() {
	clear(a.sketches)
}

func (a *approxCountDistinctState) lookup(key superagg.Value) *keyedSketch {
	a.scratch = superagg.AppendKey(a.scratch[:0], key)
	ks, ok := a.sketches[string(a.scratch)]
	if !ok {
		ks = &keyedSketch{key: key, sketch: hyperloglog.New()}
		a.sketches[string(a.scratch)] = ks
	}
	return ks
}

func (a *approxCountDistinctState) sorted() []*keyedSketch {
	out := make([]*keyedSketch, 0, len(a.sketches))
	for _, ks := range a.sketches {
		out = append(out, ks)
	}
	slices.SortFunc(out, func(x, y *keyedSketch) int {
		return superagg.Compare(x.key, y.key)
	})
	return out
}

func (a *approxCountDistinct) partialType() *superagg.Type { return a.partial }
func (a *approxCountDistinct) resultType() *superagg.Type  { return a.resultTyp }

func (a *approxCountDistinct) newState() state {
	return &approxCountDistinctState{sketches: make(map[string]*keyedSketch)}
}

func (a *approxCountDistinct) consume(s state, args []superagg.Value) error {
	key, val := args[0], args[1]
	if key.IsNull() || val.IsNull() {
		return nil
	}
	st := s.(*approxCountDistinctState)
	ks := st.lookup(key)
	// The key bytes encode the value's kind, so equal payloads of
	// different kinds hash apart.
	st.scratch = superagg.AppendKey(st.scratch[:0], val)
	ks.sketch.Insert(st.scratch)
	return nil
}

func (a *approxCountDistinct) consumeAsPartial(s state, partial superagg.Value) error {
	st := s.(*approxCountDistinctState)
	for _, e := range partial.Entries() {
		if e.Key.IsNull() || e.Val.IsNull() {
			continue
		}
		var sketch hyperloglog.Sketch
		if err := sketch.UnmarshalBinary([]byte(e.Val.Text())); err != nil {
			return fmt.Errorf("unmarshaling sketch: %w", err)
		}
		if err := st.lookup(e.Key).sketch.Merge(&sketch); err != nil {
			return fmt.Errorf("merging sketch: %w", err)
		}
	}
	return nil
}

func (a *approxCountDistinct) resultAsPartial(s state) (superagg.Value, error) {
	sketches := s.(*approxCountDistinctState).sorted()
	entries := make([]superagg.Entry, 0, len(sketches))
	for _, ks := range sketches {
		b, err := ks.sketch.MarshalBinary()
		if err != nil {
			return superagg.Null, fmt.Errorf("marshaling sketch: %w", err)
		}
		entries = append(entries, superagg.Entry{Key: ks.key, Val: superagg.NewBytes(b)})
	}
	return superagg.NewMap(entries), nil
}

func (a *approxCountDistinct) result(s state) (superagg.Value, error) {
	sketches := s.(*approxCountDistinctState).sorted()
	entries := make([]superagg.Entry, 0, len(sketches))
	for _, ks := range sketches {
		entries = append(entries, superagg.Entry{
			Key: ks.key,
			Val: superagg.NewInt64(int64(ks.sketch.Estimate())),
		})
	}
	return superagg.NewMap(entries), nil
}

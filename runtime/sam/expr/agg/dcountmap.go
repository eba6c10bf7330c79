package agg

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/brimdata/superagg"
)

// CountDistinctToMap takes (key, value) rows and returns a map from each
// key to the number of distinct non-null values seen with it.  Partials
// carry the full value sets, |{K:[V]}| with each list sorted, so a value
// seen on two shards is counted once.
var CountDistinctToMap Operator = countDistinctOp{}

type countDistinctOp struct{}

func (countDistinctOp) Name() string { return "count_distinct_to_map" }

func (o countDistinctOp) resolve(args []*superagg.Type) (kernel, error) {
	if err := arity(o.Name(), args, 2); err != nil {
		return nil, err
	}
	return newCountDistinct(o.Name(), args[0], args[1])
}

func (o countDistinctOp) resolvePartial(partial *superagg.Type) (kernel, error) {
	if partial == nil || partial.Kind != superagg.KindMap || partial.Val.Kind != superagg.KindList {
		return nil, errorf(o.Name(), ErrConfiguration, "partial type %s is not a map of lists", partial)
	}
	return newCountDistinct(o.Name(), partial.Key, partial.Val.Elem)
}

func newCountDistinct(name string, key, val *superagg.Type) (*countDistinct, error) {
	if err := distinctTypes(name, key, val); err != nil {
		return nil, err
	}
	return &countDistinct{
		key:       key,
		val:       val,
		partial:   superagg.NewMapType(key, superagg.NewListType(val)),
		resultTyp: superagg.NewMapType(key, superagg.TypeInt64),
	}, nil
}

func distinctTypes(name string, key, val *superagg.Type) error {
	for _, typ := range []*superagg.Type{key, val} {
		if !typ.IsPrimitive() || typ.Kind == superagg.KindNull {
			return errorf(name, ErrConfiguration, "%s is not a primitive type", typ)
		}
	}
	return nil
}

type countDistinct struct {
	key       *superagg.Type
	val       *superagg.Type
	partial   *superagg.Type
	resultTyp *superagg.Type
}

// valueSet is the set of distinct values bound to one key.  Integers live
// in a bitmap after flipping the sign bit so that unsigned order matches
// signed order.  All other kinds are indexed by their canonical key.
type valueSet struct {
	key   superagg.Value
	ints  *roaring64.Bitmap
	other map[string]superagg.Value
}

func (v *valueSet) add(val superagg.Value, scratch []byte) []byte {
	if val.Kind().IsInteger() {
		if v.ints == nil {
			v.ints = roaring64.New()
		}
		v.ints.Add(uint64(val.Int()) ^ signBit)
		return scratch
	}
	scratch = superagg.AppendKey(scratch[:0], val)
	if _, ok := v.other[string(scratch)]; !ok {
		if v.other == nil {
			v.other = make(map[string]superagg.Value)
		}
		v.other[string(scratch)] = val
	}
	return scratch
}

func (v *valueSet) len() int {
	n := len(v.other)
	if v.ints != nil {
		n += int(v.ints.GetCardinality())
	}
	return n
}

func (v *valueSet) values(kind superagg.Kind) []superagg.Value {
	out := make([]superagg.Value, 0, v.len())
	if v.ints != nil {
		for _, u := range v.ints.ToArray() {
			n := int64(u ^ signBit)
			if kind == superagg.KindInt32 {
				out = append(out, superagg.NewInt32(int32(n)))
			} else {
				out = append(out, superagg.NewInt64(n))
			}
		}
	}
	if len(v.other) > 0 {
		others := make([]superagg.Value, 0, len(v.other))
		for _, val := range v.other {
			others = append(others, val)
		}
		slices.SortFunc(others, superagg.Compare)
		out = append(out, others...)
	}
	return out
}

const signBit = 1 << 63

type countDistinctState struct {
	sets    map[string]*valueSet
	scratch []byte
}

func (c *countDistinctState) reset() {
	clear(c.sets)
}

func (c *countDistinctState) add(key, val superagg.Value) {
	c.scratch = superagg.AppendKey(c.scratch[:0], key)
	set, ok := c.sets[string(c.scratch)]
	if !ok {
		set = &valueSet{key: key}
		c.sets[string(c.scratch)] = set
	}
	c.scratch = set.add(val, c.scratch)
}

// sortedSets returns the sets in key order.
func (c *countDistinctState) sortedSets() []*valueSet {
	sets := make([]*valueSet, 0, len(c.sets))
	for _, set := range c.sets {
		sets = append(sets, set)
	}
	slices.SortFunc(sets, func(a, b *valueSet) int {
		return superagg.Compare(a.key, b.key)
	})
	return sets
}

func (c *countDistinct) partialType() *superagg.Type { return c.partial }
func (c *countDistinct) resultType() *superagg.Type  { return c.resultTyp }

func (c *countDistinct) newState() state {
	return &countDistinctState{sets: make(map[string]*valueSet)}
}

func (c *countDistinct) consume(s state, args []superagg.Value) error {
	key, val := args[0], args[1]
	if key.IsNull() || val.IsNull() {
		return nil
	}
	s.(*countDistinctState).add(key, val)
	return nil
}

func (c *countDistinct) consumeAsPartial(s state, partial superagg.Value) error {
	st := s.(*countDistinctState)
	for _, e := range partial.Entries() {
		if e.Key.IsNull() {
			continue
		}
		for _, val := range e.Val.Elems() {
			if !val.IsNull() {
				st.add(e.Key, val)
			}
		}
	}
	return nil
}

func (c *countDistinct) resultAsPartial(s state) (superagg.Value, error) {
	sets := s.(*countDistinctState).sortedSets()
	entries := make([]superagg.Entry, 0, len(sets))
	for _, set := range sets {
		entries = append(entries, superagg.Entry{
			Key: set.key,
			Val: superagg.NewList(set.values(c.val.Kind)...),
		})
	}
	return superagg.NewMap(entries), nil
}

func (c *countDistinct) result(s state) (superagg.Value, error) {
	sets := s.(*countDistinctState).sortedSets()
	entries := make([]superagg.Entry, 0, len(sets))
	for _, set := range sets {
		entries = append(entries, superagg.Entry{
			Key: set.key,
			Val: superagg.NewInt64(int64(set.len())),
		})
	}
	return superagg.NewMap(entries), nil
}

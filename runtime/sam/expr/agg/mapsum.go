package agg

import (
	"fmt"
	"strings"

	"github.com/brimdata/superagg"
	"github.com/cockroachdb/apd/v2"
	"golang.org/x/exp/constraints"
)

// MapGroupSum adds up maps key by key.  Its argument is either
// |{string:N}| for a numeric N or |{char(W):decimal}|.  Entries with a
// null key or value are skipped.  The decimal form trims and re-fixes each
// key to width W when producing its final result, summing keys that
// become equal.
var MapGroupSum Operator = mapSumOp{}

type mapSumOp struct{}

func (mapSumOp) Name() string { return "map_group_sum" }

func (o mapSumOp) resolve(args []*superagg.Type) (kernel, error) {
	if err := arity(o.Name(), args, 1); err != nil {
		return nil, err
	}
	return o.resolvePartial(args[0])
}

func (o mapSumOp) resolvePartial(typ *superagg.Type) (kernel, error) {
	if typ == nil || typ.Kind != superagg.KindMap {
		return nil, errorf(o.Name(), ErrConfiguration, "%s is not a map type", typ)
	}
	switch {
	case typ.Key.Kind == superagg.KindString:
		switch typ.Val.Kind {
		case superagg.KindInt32:
			return newMapSum(typ, func(v superagg.Value) int32 { return int32(v.Int()) }, superagg.NewInt32), nil
		case superagg.KindInt64:
			return newMapSum(typ, superagg.Value.Int, superagg.NewInt64), nil
		case superagg.KindFloat32:
			return newMapSum(typ, func(v superagg.Value) float32 { return float32(v.Float()) }, superagg.NewFloat32), nil
		case superagg.KindFloat64:
			return newMapSum(typ, superagg.Value.Float, superagg.NewFloat64), nil
		}
	case typ.Key.Kind == superagg.KindChar && typ.Val.Kind == superagg.KindDecimal:
		return &decimalMapSum{typ: typ, width: typ.Key.Width}, nil
	}
	return nil, errorf(o.Name(), ErrConfiguration, "unsupported map type %s", typ)
}

type number interface {
	constraints.Integer | constraints.Float
}

// mapSum sums maps with string keys and values of numeric type T.
// Integer sums wrap on overflow.
type mapSum[T number] struct {
	typ     *superagg.Type
	fromVal func(superagg.Value) T
	toVal   func(T) superagg.Value
}

func newMapSum[T number](typ *superagg.Type, from func(superagg.Value) T, to func(T) superagg.Value) *mapSum[T] {
	return &mapSum[T]{typ: typ, fromVal: from, toVal: to}
}

type mapSumState[T number] struct {
	sums map[string]T
}

func (m *mapSumState[T]) reset() {
	clear(m.sums)
}

func (m *mapSum[T]) partialType() *superagg.Type { return m.typ }
func (m *mapSum[T]) resultType() *superagg.Type  { return m.typ }

func (m *mapSum[T]) newState() state {
	return &mapSumState[T]{sums: make(map[string]T)}
}

func (m *mapSum[T]) consume(s state, args []superagg.Value) error {
	return m.consumeAsPartial(s, args[0])
}

func (m *mapSum[T]) consumeAsPartial(s state, val superagg.Value) error {
	sums := s.(*mapSumState[T]).sums
	for _, e := range val.Entries() {
		if e.Key.IsNull() || e.Val.IsNull() {
			continue
		}
		sums[e.Key.Text()] += m.fromVal(e.Val)
	}
	return nil
}

func (m *mapSum[T]) resultAsPartial(s state) (superagg.Value, error) {
	return m.result(s)
}

func (m *mapSum[T]) result(s state) (superagg.Value, error) {
	sums := s.(*mapSumState[T]).sums
	entries := make([]superagg.Entry, 0, len(sums))
	for key, sum := range sums {
		entries = append(entries, superagg.Entry{Key: superagg.NewString(key), Val: m.toVal(sum)})
	}
	return superagg.NewMap(entries), nil
}

// decimalMapSum sums maps from fixed-width keys to exact decimals.
type decimalMapSum struct {
	typ   *superagg.Type
	width int
}

type decimalMapSumState struct {
	sums map[string]*apd.Decimal
}

func (d *decimalMapSumState) reset() {
	clear(d.sums)
}

func (d *decimalMapSumState) add(key string, val *apd.Decimal) error {
	sum, ok := d.sums[key]
	if !ok {
		sum = new(apd.Decimal)
		d.sums[key] = sum
	}
	if _, err := apd.BaseContext.Add(sum, sum, val); err != nil {
		return fmt.Errorf("adding %s to key %q: %w", val, key, err)
	}
	return nil
}

func (d *decimalMapSum) partialType() *superagg.Type { return d.typ }
func (d *decimalMapSum) resultType() *superagg.Type  { return d.typ }

func (d *decimalMapSum) newState() state {
	return &decimalMapSumState{sums: make(map[string]*apd.Decimal)}
}

func (d *decimalMapSum) consume(s state, args []superagg.Value) error {
	return d.consumeAsPartial(s, args[0])
}

func (d *decimalMapSum) consumeAsPartial(s state, val superagg.Value) error {
	st := s.(*decimalMapSumState)
	for _, e := range val.Entries() {
		if e.Key.IsNull() || e.Val.IsNull() {
			continue
		}
		if err := st.add(e.Key.Text(), e.Val.Decimal()); err != nil {
			return err
		}
	}
	return nil
}

func (d *decimalMapSum) resultAsPartial(s state) (superagg.Value, error) {
	return d.entries(s.(*decimalMapSumState).sums), nil
}

// result normalizes the keys.  Normalizing happens only here so that a
// key is trimmed exactly once no matter how many combine rounds precede.
func (d *decimalMapSum) result(s state) (superagg.Value, error) {
	normal := &decimalMapSumState{sums: make(map[string]*apd.Decimal)}
	for key, sum := range s.(*decimalMapSumState).sums {
		key = superagg.NewChar(strings.TrimSpace(key), d.width).Text()
		if err := normal.add(key, sum); err != nil {
			return superagg.Null, err
		}
	}
	return d.entries(normal.sums), nil
}

func (d *decimalMapSum) entries(sums map[string]*apd.Decimal) superagg.Value {
	entries := make([]superagg.Entry, 0, len(sums))
	for key, sum := range sums {
		entries = append(entries, superagg.Entry{
			Key: superagg.NewChar(key, d.width),
			Val: superagg.NewDecimal(sum),
		})
	}
	return superagg.NewMap(entries)
}

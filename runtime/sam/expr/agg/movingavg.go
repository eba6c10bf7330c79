package agg

import (
	"errors"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/pkg/prefixsum"
)

// MovingAvg takes (position, value, window, divisor[, target]) rows and
// returns the exponentially weighted average of the values at the target
// position and up to window-1 positions before it.  The target is the
// highest position seen unless the optional fifth argument supplies it.
// Window and divisor are fixed by the first row and must not change.
// Partials are flat lists [window, divisor, target, p1, v1, ...].
var MovingAvg Operator = movingAvgOp{}

var movingAvgPartial = superagg.NewListType(superagg.TypeFloat64)

type movingAvgOp struct{}

func (movingAvgOp) Name() string { return "moving_avg" }

func (o movingAvgOp) resolve(args []*superagg.Type) (kernel, error) {
	if err := arity(o.Name(), args, 4, 5); err != nil {
		return nil, err
	}
	for k, typ := range args {
		var ok bool
		switch k {
		case 1, 3:
			ok = typ != nil && typ.Kind.IsNumber()
		default:
			ok = typ != nil && typ.Kind.IsInteger()
		}
		if !ok {
			return nil, errorf(o.Name(), ErrConfiguration, "argument %d has unsupported type %s", k, typ)
		}
	}
	return &movingAvg{}, nil
}

func (o movingAvgOp) resolvePartial(partial *superagg.Type) (kernel, error) {
	if !partial.Equal(movingAvgPartial) {
		return nil, errorf(o.Name(), ErrConfiguration, "partial type %s is not %s", partial, movingAvgPartial)
	}
	return &movingAvg{}, nil
}

type movingAvg struct{}

type movingAvgState struct {
	prefixsum.Table
}

func (m *movingAvgState) reset() {
	m.Table.Reset()
}

func (*movingAvg) partialType() *superagg.Type { return movingAvgPartial }
func (*movingAvg) resultType() *superagg.Type  { return superagg.TypeFloat64 }
func (*movingAvg) newState() state             { return &movingAvgState{} }

func (*movingAvg) consume(s state, args []superagg.Value) error {
	for _, arg := range args[:4] {
		if arg.IsNull() {
			return nil
		}
	}
	tbl := &s.(*movingAvgState).Table
	pos, _ := args[0].AsInt64()
	val, _ := args[1].AsFloat64()
	window, _ := args[2].AsInt64()
	divisor, _ := args[3].AsFloat64()
	if err := tbl.Allocate(int(window), divisor); err != nil {
		return err
	}
	tbl.Add(pos, val)
	target := pos
	if len(args) == 5 && !args[4].IsNull() {
		target, _ = args[4].AsInt64()
	}
	tbl.Track(target)
	return nil
}

func (*movingAvg) consumeAsPartial(s state, partial superagg.Value) error {
	elems := partial.Elems()
	if len(elems) == 0 {
		return nil
	}
	flat := make([]float64, 0, len(elems))
	for _, elem := range elems {
		if elem.IsNull() {
			return errors.New("null element in moving average partial")
		}
		flat = append(flat, elem.Float())
	}
	return s.(*movingAvgState).Merge(flat)
}

func (*movingAvg) resultAsPartial(s state) (superagg.Value, error) {
	flat := s.(*movingAvgState).Serialize()
	vals := make([]superagg.Value, 0, len(flat))
	for _, f := range flat {
		vals = append(vals, superagg.NewFloat64(f))
	}
	return superagg.NewList(vals...), nil
}

func (*movingAvg) result(s state) (superagg.Value, error) {
	avg, ok := s.(*movingAvgState).Average()
	if !ok {
		return superagg.Null, nil
	}
	return superagg.NewFloat64(avg), nil
}

package agg

import "github.com/brimdata/superagg"

// Operator is a named aggregate function.  An Operator is resolved into a
// kernel at Init, either from the types of its raw arguments or from the
// type of its partials.
type Operator interface {
	Name() string
	resolve(args []*superagg.Type) (kernel, error)
	resolvePartial(partial *superagg.Type) (kernel, error)
}

// kernel holds the immutable, type-resolved configuration of an operator.
// All mutable accumulation lives in the state values it allocates, so one
// kernel backs any number of groups.
type kernel interface {
	partialType() *superagg.Type
	resultType() *superagg.Type
	newState() state
	consume(state, []superagg.Value) error
	consumeAsPartial(state, superagg.Value) error
	resultAsPartial(state) (superagg.Value, error)
	result(state) (superagg.Value, error)
}

type state interface {
	reset()
}

func arity(op string, args []*superagg.Type, n ...int) error {
	for _, k := range n {
		if len(args) == k {
			return nil
		}
	}
	return errorf(op, ErrConfiguration, "expected %v arguments, got %d", n, len(args))
}

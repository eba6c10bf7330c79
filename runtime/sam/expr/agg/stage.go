package agg

import "github.com/brimdata/superagg"

// stage is the mode-specific strategy chosen at Init.  Each mode permits
// exactly one input method and one output method.
type stage interface {
	iterate(*Evaluator, state, []superagg.Value) error
	merge(*Evaluator, state, superagg.Value) error
	terminatePartial(*Evaluator, state) (superagg.Value, error)
	terminate(*Evaluator, state) (superagg.Value, error)
}

type singleStage struct{}

func (singleStage) iterate(e *Evaluator, s state, args []superagg.Value) error {
	return e.consume(s, args)
}

func (singleStage) merge(e *Evaluator, _ state, _ superagg.Value) error {
	return e.refuse("merge")
}

func (singleStage) terminatePartial(e *Evaluator, _ state) (superagg.Value, error) {
	return superagg.Null, e.refuse("terminatePartial")
}

func (singleStage) terminate(e *Evaluator, s state) (superagg.Value, error) {
	return e.result(s)
}

type partialStage struct{}

func (partialStage) iterate(e *Evaluator, s state, args []superagg.Value) error {
	return e.consume(s, args)
}

func (partialStage) merge(e *Evaluator, _ state, _ superagg.Value) error {
	return e.refuse("merge")
}

func (partialStage) terminatePartial(e *Evaluator, s state) (superagg.Value, error) {
	return e.resultAsPartial(s)
}

func (partialStage) terminate(e *Evaluator, _ state) (superagg.Value, error) {
	return superagg.Null, e.refuse("terminate")
}

type combineStage struct{}

func (combineStage) iterate(e *Evaluator, _ state, _ []superagg.Value) error {
	return e.refuse("iterate")
}

func (combineStage) merge(e *Evaluator, s state, partial superagg.Value) error {
	return e.merge(s, partial)
}

func (combineStage) terminatePartial(e *Evaluator, s state) (superagg.Value, error) {
	return e.resultAsPartial(s)
}

func (combineStage) terminate(e *Evaluator, _ state) (superagg.Value, error) {
	return superagg.Null, e.refuse("terminate")
}

type finalStage struct{}

func (finalStage) iterate(e *Evaluator, _ state, _ []superagg.Value) error {
	return e.refuse("iterate")
}

func (finalStage) merge(e *Evaluator, s state, partial superagg.Value) error {
	return e.merge(s, partial)
}

func (finalStage) terminatePartial(e *Evaluator, _ state) (superagg.Value, error) {
	return superagg.Null, e.refuse("terminatePartial")
}

func (finalStage) terminate(e *Evaluator, s state) (superagg.Value, error) {
	return e.result(s)
}

package agg

import (
	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/sup"
	"go.uber.org/zap"
)

// Evaluator drives one Operator through the aggregation protocol:
// Init once, then any number of Iterate or Merge calls per Buffer, then
// TerminatePartial or Terminate.  Which of these are allowed is fixed by
// the Mode given to Init.  An Evaluator and its Buffers are not safe for
// concurrent use.
type Evaluator struct {
	op     Operator
	logger *zap.Logger
	mode   Mode
	args   []*superagg.Type
	kernel kernel
	stage  stage
}

type Option func(*Evaluator)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

func NewEvaluator(op Operator, opts ...Option) *Evaluator {
	e := &Evaluator{op: op, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Buffer is the accumulator of one group.  A Buffer may only be passed to
// the Evaluator that allocated it.
type Buffer struct {
	owner *Evaluator
	state state
}

// Init resolves the operator for mode.  In ModeSingle and ModePartial,
// inputTypes are the types of the raw arguments.  In ModeCombine and
// ModeFinal, inputTypes holds exactly the partial type.  Init returns the
// type of the values the evaluator will emit.
func (e *Evaluator) Init(mode Mode, inputTypes []*superagg.Type) (*superagg.Type, error) {
	name := e.op.Name()
	if e.stage != nil {
		return nil, errorf(name, ErrConfiguration, "evaluator already initialized")
	}
	for k, typ := range inputTypes {
		if typ == nil {
			return nil, errorf(name, ErrConfiguration, "argument %d has no type", k)
		}
	}
	var k kernel
	var err error
	if mode.PartialsIn() {
		if len(inputTypes) != 1 {
			return nil, errorf(name, ErrConfiguration, "mode %s takes a single partial type, got %d types", mode, len(inputTypes))
		}
		k, err = e.op.resolvePartial(inputTypes[0])
	} else {
		k, err = e.op.resolve(inputTypes)
	}
	if err != nil {
		return nil, wrap(name, ErrConfiguration, err)
	}
	var s stage
	switch mode {
	case ModeSingle:
		s = singleStage{}
	case ModePartial:
		s = partialStage{}
	case ModeCombine:
		s = combineStage{}
	case ModeFinal:
		s = finalStage{}
	default:
		return nil, errorf(name, ErrConfiguration, "unknown mode %d", int(mode))
	}
	e.mode = mode
	e.args = inputTypes
	e.kernel = k
	e.stage = s
	out := k.resultType()
	if mode.PartialsOut() {
		out = k.partialType()
	}
	e.logger.Debug("Aggregate evaluator initialized",
		zap.String("op", name),
		zap.Stringer("mode", mode),
		zap.Stringer("output", out),
	)
	return out, nil
}

func (e *Evaluator) Name() string {
	return e.op.Name()
}

// Mode returns the mode given to Init.
func (e *Evaluator) Mode() Mode {
	return e.mode
}

// PartialType returns the type of the partials the operator exchanges.
func (e *Evaluator) PartialType() *superagg.Type {
	if e.kernel == nil {
		return nil
	}
	return e.kernel.partialType()
}

func (e *Evaluator) NewBuffer() (*Buffer, error) {
	if e.stage == nil {
		return nil, e.notInitialized("newBuffer")
	}
	return &Buffer{owner: e, state: e.kernel.newState()}, nil
}

// Reset returns buf to the state of a fresh Buffer.
func (e *Evaluator) Reset(buf *Buffer) error {
	if err := e.check("reset", buf); err != nil {
		return err
	}
	buf.state.reset()
	return nil
}

// Iterate folds one row of raw arguments into buf.
func (e *Evaluator) Iterate(buf *Buffer, args []superagg.Value) error {
	if err := e.check("iterate", buf); err != nil {
		return err
	}
	return e.stage.iterate(e, buf.state, args)
}

// Merge folds a partial emitted by TerminatePartial into buf.  A null
// partial is ignored.
func (e *Evaluator) Merge(buf *Buffer, partial superagg.Value) error {
	if err := e.check("merge", buf); err != nil {
		return err
	}
	return e.stage.merge(e, buf.state, partial)
}

// TerminatePartial returns buf's partial.  buf is left unchanged.
func (e *Evaluator) TerminatePartial(buf *Buffer) (superagg.Value, error) {
	if err := e.check("terminatePartial", buf); err != nil {
		return superagg.Null, err
	}
	return e.stage.terminatePartial(e, buf.state)
}

// Terminate returns buf's final result.
func (e *Evaluator) Terminate(buf *Buffer) (superagg.Value, error) {
	if err := e.check("terminate", buf); err != nil {
		return superagg.Null, err
	}
	return e.stage.terminate(e, buf.state)
}

func (e *Evaluator) check(method string, buf *Buffer) error {
	if e.stage == nil {
		return e.notInitialized(method)
	}
	if buf == nil || buf.owner != e {
		return errorf(e.op.Name(), ErrConfiguration, "%s: buffer belongs to another evaluator", method)
	}
	return nil
}

func (e *Evaluator) notInitialized(method string) error {
	return errorf(e.op.Name(), ErrNotInitialized, "%s called before init", method)
}

func (e *Evaluator) refuse(method string) error {
	return errorf(e.op.Name(), ErrMode, "%s not allowed in %s mode", method, e.mode)
}

func (e *Evaluator) consume(s state, args []superagg.Value) error {
	if len(args) != len(e.args) {
		return errorf(e.op.Name(), ErrConfiguration, "iterate: expected %d arguments, got %d", len(e.args), len(args))
	}
	for k, arg := range args {
		if !superagg.Conforms(arg, e.args[k]) {
			return errorf(e.op.Name(), ErrConfiguration, "argument %d: %s is not of type %s", k, sup.FormatValue(arg), e.args[k])
		}
	}
	if err := e.kernel.consume(s, args); err != nil {
		return wrap(e.op.Name(), ErrConfiguration, err)
	}
	return nil
}

func (e *Evaluator) merge(s state, partial superagg.Value) error {
	if partial.IsNull() {
		return nil
	}
	typ := e.kernel.partialType()
	if !superagg.Conforms(partial, typ) {
		e.logger.Warn("Rejected partial",
			zap.String("op", e.op.Name()),
			zap.Stringer("type", typ),
			zap.String("partial", sup.FormatValue(partial)),
		)
		return errorf(e.op.Name(), ErrMergeShape, "%s is not of type %s", sup.FormatValue(partial), typ)
	}
	if err := e.kernel.consumeAsPartial(s, partial); err != nil {
		return wrap(e.op.Name(), ErrMergeShape, err)
	}
	return nil
}

func (e *Evaluator) resultAsPartial(s state) (superagg.Value, error) {
	val, err := e.kernel.resultAsPartial(s)
	if err != nil {
		return superagg.Null, wrap(e.op.Name(), ErrConfiguration, err)
	}
	return val, nil
}

func (e *Evaluator) result(s state) (superagg.Value, error) {
	val, err := e.kernel.result(s)
	if err != nil {
		return superagg.Null, wrap(e.op.Name(), ErrConfiguration, err)
	}
	return val, nil
}

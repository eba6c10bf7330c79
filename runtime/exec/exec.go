// Package exec runs an aggregate operator the way a distributed engine
// would: rows are scattered across shards, each shard is reduced to
// partials by a map task, partials are merged by rounds of combine tasks,
// and a final task produces the results.  Shard assignment and merge
// order are drawn from a seeded source so runs are reproducible.
package exec

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/runtime/sam/expr/agg"
	"github.com/brimdata/superagg/runtime/sam/op/aggregate"
	"github.com/brimdata/superagg/sup"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StageMap     = "map"
	StageCombine = "combine"
	StageFinal   = "final"
	StageSingle  = "single"
)

// Config controls the shape of a distributed run.
type Config struct {
	// Shards is the number of map tasks.
	Shards int
	// Fanout is the most partial sets a combine task merges.  Combine
	// rounds continue until no more than Fanout sets remain.
	Fanout int
	// Parallelism limits concurrently running tasks.  Zero means
	// GOMAXPROCS.
	Parallelism int
	Seed        int64
	// WireRoundTrip formats every partial as SUP and parses it back
	// before it is merged, as if it had crossed the network.
	WireRoundTrip bool
	Logger        *zap.Logger
	Metrics       *Metrics
}

func DefaultConfig() Config {
	return Config{
		Shards: 4,
		Fanout: 2,
		Seed:   1,
	}
}

func (c Config) validate() error {
	if c.Shards < 1 {
		return fmt.Errorf("shards must be at least 1: %d", c.Shards)
	}
	if c.Fanout < 2 {
		return fmt.Errorf("fanout must be at least 2: %d", c.Fanout)
	}
	if c.Parallelism < 0 {
		return fmt.Errorf("parallelism must not be negative: %d", c.Parallelism)
	}
	return nil
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Row is one input row.  Rows with equal keys belong to the same group.
type Row struct {
	Key  superagg.Value
	Args []superagg.Value
}

// NewRow builds a Row from one input line.  When grouped is true the
// first value is the group key; otherwise every row is in the null group.
func NewRow(vals []superagg.Value, grouped bool) (Row, error) {
	if !grouped {
		return Row{Key: superagg.Null, Args: vals}, nil
	}
	if len(vals) == 0 {
		return Row{}, errors.New("grouped row is missing its key")
	}
	return Row{Key: vals[0], Args: vals[1:]}, nil
}

// RunSingle aggregates rows in one task in single-pass mode.
func RunSingle(ctx context.Context, cfg Config, op agg.Operator, argTypes []*superagg.Type, rows []Row) ([]aggregate.Result, error) {
	t := newTask(cfg, op, StageSingle)
	a, err := t.aggregate(agg.ModeSingle, argTypes)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := a.Consume(row.Key, row.Args); err != nil {
			return nil, err
		}
	}
	cfg.Metrics.rows(len(rows))
	return t.finish(a, len(rows))
}

// Run aggregates rows through map, combine and final tasks.
func Run(ctx context.Context, cfg Config, op agg.Operator, argTypes []*superagg.Type, rows []Row) ([]aggregate.Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	partialType, err := agg.NewEvaluator(op).Init(agg.ModePartial, argTypes)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	sets, err := runMap(ctx, cfg, op, argTypes, scatter(rng, rows, cfg.Shards))
	if err != nil {
		return nil, err
	}
	partialTypes := []*superagg.Type{partialType}
	for round := 0; len(sets) > cfg.Fanout; round++ {
		cfg.logger().Debug("Combine round",
			zap.Int("round", round),
			zap.Int("sets", len(sets)),
		)
		rng.Shuffle(len(sets), func(i, j int) { sets[i], sets[j] = sets[j], sets[i] })
		sets, err = runCombine(ctx, cfg, op, partialTypes, sets)
		if err != nil {
			return nil, err
		}
	}
	rng.Shuffle(len(sets), func(i, j int) { sets[i], sets[j] = sets[j], sets[i] })
	t := newTask(cfg, op, StageFinal)
	a, err := t.aggregate(agg.ModeFinal, partialTypes)
	if err != nil {
		return nil, err
	}
	n, err := mergeSets(ctx, a, sets)
	if err != nil {
		return nil, err
	}
	return t.finish(a, n)
}

// scatter assigns each row to a random shard after shuffling row order.
func scatter(rng *rand.Rand, rows []Row, n int) [][]Row {
	shards := make([][]Row, n)
	for _, k := range rng.Perm(len(rows)) {
		s := rng.Intn(n)
		shards[s] = append(shards[s], rows[k])
	}
	return shards
}

func (c Config) group(ctx context.Context) (*errgroup.Group, context.Context) {
	group, ctx := errgroup.WithContext(ctx)
	limit := c.Parallelism
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	group.SetLimit(limit)
	return group, ctx
}

func runMap(ctx context.Context, cfg Config, op agg.Operator, argTypes []*superagg.Type, shards [][]Row) ([][]aggregate.Result, error) {
	sets := make([][]aggregate.Result, len(shards))
	group, ctx := cfg.group(ctx)
	for k, shard := range shards {
		group.Go(func() error {
			t := newTask(cfg, op, StageMap)
			a, err := t.aggregate(agg.ModePartial, argTypes)
			if err != nil {
				return err
			}
			for _, row := range shard {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := a.Consume(row.Key, row.Args); err != nil {
					return err
				}
			}
			cfg.Metrics.rows(len(shard))
			sets[k], err = t.finish(a, len(shard))
			return err
		})
	}
	return sets, group.Wait()
}

// runCombine merges sets in consecutive groups of cfg.Fanout.
func runCombine(ctx context.Context, cfg Config, op agg.Operator, partialTypes []*superagg.Type, sets [][]aggregate.Result) ([][]aggregate.Result, error) {
	n := (len(sets) + cfg.Fanout - 1) / cfg.Fanout
	out := make([][]aggregate.Result, n)
	group, ctx := cfg.group(ctx)
	for k := range n {
		chunk := sets[k*cfg.Fanout : min((k+1)*cfg.Fanout, len(sets))]
		group.Go(func() error {
			t := newTask(cfg, op, StageCombine)
			a, err := t.aggregate(agg.ModeCombine, partialTypes)
			if err != nil {
				return err
			}
			consumed, err := mergeSets(ctx, a, chunk)
			if err != nil {
				return err
			}
			out[k], err = t.finish(a, consumed)
			return err
		})
	}
	return out, group.Wait()
}

func mergeSets(ctx context.Context, a *aggregate.Aggregate, sets [][]aggregate.Result) (int, error) {
	var n int
	for _, set := range sets {
		for _, r := range set {
			if err := ctx.Err(); err != nil {
				return n, err
			}
			if err := a.ConsumePartial(r.Key, r.Value); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

// task is one unit of work: a single evaluator over its own table of
// groups.
type task struct {
	cfg    Config
	op     agg.Operator
	stage  string
	logger *zap.Logger
	start  time.Time
}

func newTask(cfg Config, op agg.Operator, stage string) *task {
	logger := cfg.logger().With(
		zap.Stringer("task", ksuid.New()),
		zap.String("stage", stage),
		zap.String("op", op.Name()),
	)
	return &task{cfg: cfg, op: op, stage: stage, logger: logger, start: time.Now()}
}

func (t *task) aggregate(mode agg.Mode, in []*superagg.Type) (*aggregate.Aggregate, error) {
	e := agg.NewEvaluator(t.op, agg.WithLogger(t.logger))
	if _, err := e.Init(mode, in); err != nil {
		return nil, err
	}
	t.logger.Debug("Task started")
	t.cfg.Metrics.task(t.stage)
	return aggregate.New(e), nil
}

func (t *task) finish(a *aggregate.Aggregate, consumed int) ([]aggregate.Result, error) {
	results, err := a.Results()
	if err != nil {
		return nil, err
	}
	if t.stage == StageMap || t.stage == StageCombine {
		t.cfg.Metrics.partials(len(results))
		if t.cfg.WireRoundTrip {
			if results, err = roundTrip(results); err != nil {
				return nil, err
			}
		}
	}
	elapsed := time.Since(t.start)
	t.cfg.Metrics.observe(t.stage, elapsed)
	t.logger.Debug("Task finished",
		zap.Int("consumed", consumed),
		zap.Int("groups", len(results)),
		zap.Duration("elapsed", elapsed),
	)
	return results, nil
}

// roundTrip passes every key and partial through the SUP text format.
func roundTrip(results []aggregate.Result) ([]aggregate.Result, error) {
	out := make([]aggregate.Result, 0, len(results))
	var errs []error
	for _, r := range results {
		key, err := sup.ParseValue(sup.FormatValue(r.Key))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		val, err := sup.ParseValue(sup.FormatValue(r.Value))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, aggregate.Result{Key: key, Value: val})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("partial wire round trip: %w", err)
	}
	return out, nil
}

package root

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/cli/engineflags"
	"github.com/brimdata/superagg/cli/logflags"
	"github.com/brimdata/superagg/cli/outputflags"
	"github.com/brimdata/superagg/pkg/charm"
	"github.com/brimdata/superagg/runtime/exec"
	"github.com/brimdata/superagg/runtime/sam/expr/agg"
	"github.com/brimdata/superagg/runtime/sam/op/aggregate"
	"github.com/brimdata/superagg/sio"
	"github.com/brimdata/superagg/sio/supio"
	"github.com/brimdata/superagg/sup"
	"go.uber.org/zap"
)

var Superagg = &charm.Spec{
	Name:  "superagg",
	Usage: "superagg [options] -op name -types t1,t2,... [ file ... ]",
	Short: "run an aggregate function over rows of SUP values",
	Long: `
The "superagg" command runs one aggregate function over input rows and
prints its results as SUP.  Each input line is a comma-separated list of
SUP values holding the arguments of one row, e.g.,

  "a",1

and -types declares the argument types, e.g., -types string,int64.
Blank lines and lines beginning with "//" are ignored.  Input files may be
file system paths or "-" for standard input.  With no files, standard
input is read.

With -grouped, the first value on each line is a group key and each
result is printed as a {key,value} record in key order.

By default the function runs in a single pass.  With -mode distributed,
rows are scattered across -shards map tasks, whose partial results are
merged by rounds of combine tasks of -fanout sets each and then by a
final task.  -seed fixes shard assignment and merge order.

Use "superagg ops" to list the available functions.
`,
	New:          New,
	InternalLeaf: true,
}

type Command struct {
	logFlags    logflags.Flags
	engineFlags engineflags.Flags
	outputFlags outputflags.Flags
	op          string
	types       string
	grouped     bool
	logger      *zap.Logger
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{}
	c.logFlags.SetFlags(f)
	return c, nil
}

func (c *Command) SetLeafFlags(f *flag.FlagSet) {
	c.engineFlags.SetFlags(f)
	c.outputFlags.SetFlags(f)
	f.StringVar(&c.op, "op", "", "name of the aggregate function")
	f.StringVar(&c.types, "types", "", "comma-separated argument types")
	f.BoolVar(&c.grouped, "grouped", false, "treat the first value of each row as its group key")
}

// Init opens the logger and returns a context canceled on interrupt.
func (c *Command) Init() (context.Context, func(), error) {
	logger, closeLog, err := c.logFlags.Open()
	if err != nil {
		return nil, nil, err
	}
	c.logger = logger
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	return ctx, func() {
		cancel()
		closeLog()
	}, nil
}

func (c *Command) Run(args []string) error {
	if c.op == "" {
		return charm.NeedHelp
	}
	ctx, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	op, err := agg.Lookup(c.op)
	if err != nil {
		return err
	}
	typs, err := sup.ParseTypes(c.types)
	if err != nil {
		return err
	}
	rows, err := c.readRows(args)
	if err != nil {
		return err
	}
	cfg := c.engineFlags.Config
	cfg.Logger = c.logger
	var results []aggregate.Result
	if c.engineFlags.Distributed {
		results, err = exec.Run(ctx, cfg, op, typs, rows)
	} else {
		results, err = exec.RunSingle(ctx, cfg, op, typs, rows)
	}
	if err != nil {
		return err
	}
	w, err := c.outputFlags.Open()
	if err != nil {
		return err
	}
	for _, r := range results {
		val := r.Value
		if c.grouped {
			val = r.Record()
		}
		if err := w.Write(val); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

// ReadValues reads rows of SUP values from the named files, with "-" or
// no files meaning standard input.
func (c *Command) ReadValues(paths []string) ([][]superagg.Value, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	var readers []sio.Reader
	var closers []io.Closer
	defer func() {
		for _, closer := range closers {
			closer.Close()
		}
	}()
	for _, path := range paths {
		if path == "-" {
			readers = append(readers, supio.NewReader(os.Stdin))
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		closers = append(closers, f)
		readers = append(readers, supio.NewReader(f))
	}
	return sio.ReadAll(sio.ConcatReader(readers...))
}

func (c *Command) readRows(paths []string) ([]exec.Row, error) {
	vals, err := c.ReadValues(paths)
	if err != nil {
		return nil, err
	}
	rows := make([]exec.Row, 0, len(vals))
	var errs []error
	for k, v := range vals {
		row, err := exec.NewRow(v, c.grouped)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", k+1, err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, errors.Join(errs...)
}

package rank

import (
	"flag"
	"fmt"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/cli/outputflags"
	"github.com/brimdata/superagg/cmd/superagg/root"
	"github.com/brimdata/superagg/pkg/charm"
	"github.com/brimdata/superagg/runtime/sam/expr/function"
)

var Spec = &charm.Spec{
	Name:  "rank",
	Usage: "rank [options] [ file ... ]",
	Short: "number rows within runs of equal keys",
	Long: `
rank reads rows of SUP values and prints, for each row, the number of
rows immediately before it whose first value equals its first value,
ignoring case.  The count restarts at 0 whenever the key changes, so
input should be ordered by key.  Keys must be strings or null.

With -keyed, each result is printed as a {key,rank} record.
`,
	New: New,
}

func init() {
	root.Superagg.Add(Spec)
}

type Command struct {
	*root.Command
	outputFlags outputflags.Flags
	keyed       bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	c.outputFlags.SetFlags(f)
	f.BoolVar(&c.keyed, "keyed", false, "print each rank with its key")
	return c, nil
}

func (c *Command) Run(args []string) error {
	_, cleanup, err := c.Init()
	if err != nil {
		return err
	}
	defer cleanup()
	rows, err := c.ReadValues(args)
	if err != nil {
		return err
	}
	w, err := c.outputFlags.Open()
	if err != nil {
		return err
	}
	var state function.RankState
	for k, row := range rows {
		if len(row) == 0 {
			w.Close()
			return fmt.Errorf("row %d: missing key", k+1)
		}
		rank, err := function.Rank(&state, row[0])
		if err != nil {
			w.Close()
			return fmt.Errorf("row %d: %w", k+1, err)
		}
		if c.keyed {
			rank = superagg.NewRecord([]string{"key", "rank"}, []superagg.Value{row[0], rank})
		}
		if err := w.Write(rank); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

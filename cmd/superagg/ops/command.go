package ops

import (
	"flag"
	"fmt"

	"github.com/brimdata/superagg/cmd/superagg/root"
	"github.com/brimdata/superagg/pkg/charm"
	"github.com/brimdata/superagg/runtime/sam/expr/agg"
)

var Spec = &charm.Spec{
	Name:  "ops",
	Usage: "ops",
	Short: "list aggregate functions",
	Long: `
ops prints the name of each aggregate function accepted by -op, one per
line.`,
	New: New,
}

func init() {
	root.Superagg.Add(Spec)
}

type Command struct {
	*root.Command
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	return &Command{Command: parent.(*root.Command)}, nil
}

func (c *Command) Run(args []string) error {
	if len(args) > 0 {
		return charm.ErrNoRun
	}
	for _, name := range agg.Names() {
		fmt.Println(name)
	}
	return nil
}

// Package engineflags sets the shape of a distributed aggregation run
// from flags.
package engineflags

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/brimdata/superagg/runtime/exec"
)

// Flags holds the engine settings.  Defaults may be overridden by the
// SUPERAGG_SHARDS, SUPERAGG_FANOUT and SUPERAGG_SEED environment variables.
type Flags struct {
	exec.Config
	Distributed bool
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	def := exec.DefaultConfig()
	fs.IntVar(&f.Shards, "shards", envInt("SUPERAGG_SHARDS", def.Shards), "number of map tasks")
	fs.IntVar(&f.Fanout, "fanout", envInt("SUPERAGG_FANOUT", def.Fanout), "partial sets merged by each combine task")
	fs.IntVar(&f.Parallelism, "P", 0, "maximum concurrent tasks (0=GOMAXPROCS)")
	fs.Int64Var(&f.Seed, "seed", int64(envInt("SUPERAGG_SEED", int(def.Seed))), "seed for shard assignment and merge order")
	fs.BoolVar(&f.WireRoundTrip, "wire", false, "pass every partial through SUP text between stages")
	fs.Func("mode", "execution mode [single,distributed] (default single)", func(s string) error {
		switch s {
		case "single":
			f.Distributed = false
		case "distributed":
			f.Distributed = true
		default:
			return fmt.Errorf("unknown mode %q", s)
		}
		return nil
	})
}

func envInt(name string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return n
	}
	return def
}

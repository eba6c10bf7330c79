package charm

import (
	"errors"
	"flag"
	"io"
)

type node struct {
	spec  *Spec
	cmd   Command
	flags *flag.FlagSet
}

// path is the chain of commands from the root to the one being run.
type path []node

func (p path) run(args []string) error {
	if len(p) == 0 {
		return NeedHelp
	}
	return p[len(p)-1].cmd.Run(args)
}

// parse walks args from spec down to the selected subcommand, creating
// each command and parsing its flags along the way.  A subcommand name
// may follow a parent's flags but an internal leaf's own flags apply only
// when no subcommand is named.
func parse(spec *Spec, args []string) (path, []string, bool, error) {
	var p path
	var parent Command
	var showHidden bool
	for {
		fs := flag.NewFlagSet(spec.Name, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		var help bool
		fs.BoolVar(&help, "h", false, "display help")
		fs.BoolVar(&help, "help", false, "display help")
		fs.BoolVar(&showHidden, "hidden", showHidden, "show hidden options")
		cmd, err := spec.New(parent, fs)
		if err != nil {
			return p, nil, showHidden, err
		}
		p = append(p, node{spec, cmd, fs})
		var child *Spec
		if len(args) > 0 {
			child = spec.lookupSub(args[0])
		}
		if child != nil {
			args = args[1:]
		} else {
			if leaf, ok := cmd.(InternalLeaf); ok && spec.InternalLeaf {
				leaf.SetLeafFlags(fs)
			}
			if err := fs.Parse(args); err != nil {
				if errors.Is(err, flag.ErrHelp) {
					return p, nil, showHidden, NeedHelp
				}
				return p, nil, showHidden, err
			}
			if help {
				return p, nil, showHidden, NeedHelp
			}
			args = fs.Args()
			if len(args) > 0 {
				child = spec.lookupSub(args[0])
			}
			if child == nil {
				return p, args, showHidden, nil
			}
			args = args[1:]
		}
		spec, parent = child, cmd
	}
}

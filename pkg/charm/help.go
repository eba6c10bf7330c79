package charm

import (
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
)

func displayHelp(w io.Writer, p path, showHidden bool) {
	if len(p) == 0 {
		return
	}
	n := p[len(p)-1]
	spec := n.spec
	fmt.Fprintf(w, "NAME\n    %s - %s\n\n", spec.Name, spec.Short)
	fmt.Fprintf(w, "USAGE\n    %s\n\n", spec.Usage)
	if long := strings.TrimSpace(spec.Long); long != "" {
		fmt.Fprintf(w, "DESCRIPTION\n")
		for _, line := range strings.Split(long, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
		fmt.Fprintln(w)
	}
	hidden := strings.Split(spec.HiddenFlags, ",")
	var options []string
	n.flags.VisitAll(func(f *flag.Flag) {
		if !showHidden && (f.Name == "hidden" || slices.Contains(hidden, f.Name)) {
			return
		}
		opt := fmt.Sprintf("    -%s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			opt += fmt.Sprintf(" (default %q)", f.DefValue)
		}
		options = append(options, opt)
	})
	if len(options) > 0 {
		fmt.Fprintf(w, "OPTIONS\n%s\n\n", strings.Join(options, "\n"))
	}
	var commands []string
	for _, child := range spec.children {
		if child.Hidden && !showHidden {
			continue
		}
		commands = append(commands, fmt.Sprintf("    %-12s%s", child.Name, child.Short))
	}
	if len(commands) > 0 {
		fmt.Fprintf(w, "COMMANDS\n%s\n", strings.Join(commands, "\n"))
	}
}

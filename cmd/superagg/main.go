package main

import (
	"fmt"
	"os"

	_ "github.com/brimdata/superagg/cmd/superagg/ops"
	_ "github.com/brimdata/superagg/cmd/superagg/rank"
	"github.com/brimdata/superagg/cmd/superagg/root"
)

func main() {
	if err := root.Superagg.Exec(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

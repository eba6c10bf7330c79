// Package outputflags selects the format and destination of command
// output from flags.
package outputflags

import (
	"flag"
	"fmt"
	"os"

	"github.com/brimdata/superagg/sio"
	"github.com/brimdata/superagg/sio/lineio"
	"github.com/brimdata/superagg/sio/supio"
)

type Flags struct {
	Format     string
	outputFile string
}

func (f *Flags) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.Format, "f", "sup", "format for output data [line,sup]")
	fs.StringVar(&f.outputFile, "o", "", "write data to output file")
}

// Open returns a writer for the selected format writing to the output
// file or, if none was given, to standard output.
func (f *Flags) Open() (sio.WriteCloser, error) {
	switch f.Format {
	case "line", "sup":
	default:
		return nil, fmt.Errorf("unknown output format: %q", f.Format)
	}
	w := sio.NopCloser(os.Stdout)
	if f.outputFile != "" {
		file, err := os.Create(f.outputFile)
		if err != nil {
			return nil, err
		}
		w = file
	}
	if f.Format == "line" {
		return lineio.NewWriter(w), nil
	}
	return supio.NewWriter(w), nil
}

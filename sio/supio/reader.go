package supio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/sio"
	"github.com/brimdata/superagg/sup"
)

// Reader reads argument rows, one per line, where each line is a
// comma-separated list of SUP values.  Blank lines and lines beginning
// with "//" are skipped.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(nil, 16*1024*1024)
	return &Reader{scanner: s}
}

// Read returns the next row or nil at end of input.
func (r *Reader) Read() ([]superagg.Value, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		row, err := sup.ParseValues(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		if row == nil {
			row = []superagg.Value{}
		}
		return row, nil
	}
	return nil, r.scanner.Err()
}

// ReadAll returns every remaining row.
func (r *Reader) ReadAll() ([][]superagg.Value, error) {
	return sio.ReadAll(r)
}

package outputflags

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/brimdata/superagg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, args ...string) *Flags {
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return &f
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	f := open(t, "-f", "line", "-o", path)
	w, err := f.Open()
	require.NoError(t, err)
	require.NoError(t, w.Write(superagg.NewString("x")))
	require.NoError(t, w.Write(superagg.NewList(superagg.NewInt64(1))))
	require.NoError(t, w.Close())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x\n[1]\n", string(b))
}

func TestUnknownFormat(t *testing.T) {
	f := open(t, "-f", "parquet")
	_, err := f.Open()
	assert.ErrorContains(t, err, "unknown output format")
}

package logflags

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaults(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, zapcore.WarnLevel, f.Level)
	assert.Equal(t, "console", f.Format)
	assert.Empty(t, f.Path)
}

func TestRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "superagg.log")
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{"-log.level", "debug", "-log.format", "json", "-log.path", path}))
	logger, cleanup, err := f.Open()
	require.NoError(t, err)
	logger.Debug("Hello")
	cleanup()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"Hello"`)
	assert.Contains(t, string(b), `"level":"debug"`)
}

func TestBadFlags(t *testing.T) {
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f.SetFlags(fs)
	assert.Error(t, fs.Parse([]string{"-log.level", "loud"}))
	require.NoError(t, fs.Parse([]string{"-log.format", "xml"}))
	_, _, err := f.Open()
	assert.ErrorContains(t, err, "unknown log format")
}

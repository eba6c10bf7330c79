package lineio_test

import (
	"strings"
	"testing"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/sio"
	"github.com/brimdata/superagg/sio/lineio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	var b strings.Builder
	w := lineio.NewWriter(sio.NopCloser(&b))
	require.NoError(t, w.Write(superagg.NewString("hello \"world\"")))
	require.NoError(t, w.Write(superagg.NewChar("ab", 4)))
	require.NoError(t, w.Write(superagg.NewInt64(7)))
	require.NoError(t, w.Close())
	assert.Equal(t, "hello \"world\"\nab\n7\n", b.String())
}

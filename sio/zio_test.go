package sio_test

import (
	"strings"
	"testing"

	"github.com/brimdata/superagg/sio"
	"github.com/brimdata/superagg/sio/supio"
	"github.com/brimdata/superagg/sup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcatReader(t *testing.T) {
	r := sio.ConcatReader(
		supio.NewReader(strings.NewReader("1,2\n")),
		supio.NewReader(strings.NewReader("")),
		supio.NewReader(strings.NewReader("3\n4\n")),
	)
	rows, err := sio.ReadAll(r)
	require.NoError(t, err)
	var out []string
	for _, row := range rows {
		var vals []string
		for _, v := range row {
			vals = append(vals, sup.FormatValue(v))
		}
		out = append(out, strings.Join(vals, ","))
	}
	assert.Equal(t, []string{"1,2", "3", "4"}, out)
}

func TestConcatReaderError(t *testing.T) {
	r := sio.ConcatReader(
		supio.NewReader(strings.NewReader("1\n")),
		supio.NewReader(strings.NewReader("[\n")),
	)
	_, err := sio.ReadAll(r)
	assert.ErrorContains(t, err, "line 1")
}

package prefixsum_test

import (
	"math"
	"testing"

	"github.com/brimdata/superagg/pkg/prefixsum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, window int, divisor float64, samples ...[2]float64) *prefixsum.Table {
	var tbl prefixsum.Table
	require.NoError(t, tbl.Allocate(window, divisor))
	for _, s := range samples {
		tbl.Add(int64(s[0]), s[1])
		tbl.Track(int64(s[0]))
	}
	return &tbl
}

func TestAverageWeights(t *testing.T) {
	tbl := build(t, 3, 2, [2]float64{1, 10}, [2]float64{2, 20}, [2]float64{3, 30}, [2]float64{4, 40})
	avg, ok := tbl.Average()
	require.True(t, ok)
	assert.Equal(t, 30/0.875, avg)
}

func TestShardedMergeIsBitExact(t *testing.T) {
	single := build(t, 3, 2, [2]float64{1, 10}, [2]float64{2, 20}, [2]float64{3, 30}, [2]float64{4, 40})
	expected, ok := single.Average()
	require.True(t, ok)

	a := build(t, 3, 2, [2]float64{1, 10}, [2]float64{2, 20})
	b := build(t, 3, 2, [2]float64{3, 30}, [2]float64{4, 40})
	for _, order := range [][]*prefixsum.Table{{a, b}, {b, a}} {
		var merged prefixsum.Table
		for _, part := range order {
			require.NoError(t, merged.Merge(part.Serialize()))
		}
		avg, ok := merged.Average()
		require.True(t, ok)
		assert.Equal(t, expected, avg)
	}
}

func TestUnitDivisorIsPlainMean(t *testing.T) {
	tbl := build(t, 2, 1, [2]float64{1, 3}, [2]float64{2, 5}, [2]float64{3, 7})
	avg, ok := tbl.Average()
	require.True(t, ok)
	assert.Equal(t, 6.0, avg)
}

func TestGapStopsScan(t *testing.T) {
	tbl := build(t, 3, 2, [2]float64{1, 100}, [2]float64{3, 30}, [2]float64{4, 40})
	avg, ok := tbl.Average()
	require.True(t, ok)
	assert.Equal(t, (0.5*40+0.25*30)/(0.5+0.25), avg)
}

func TestPartialWindow(t *testing.T) {
	tbl := build(t, 5, 2, [2]float64{7, 8})
	avg, ok := tbl.Average()
	require.True(t, ok)
	assert.Equal(t, 8.0, avg)
}

func TestTrackPinsTarget(t *testing.T) {
	var tbl prefixsum.Table
	require.NoError(t, tbl.Allocate(2, 1))
	tbl.Add(1, 2)
	tbl.Add(2, 4)
	tbl.Add(5, 100)
	tbl.Track(2)
	avg, ok := tbl.Average()
	require.True(t, ok)
	assert.Equal(t, 3.0, avg)
	target, ok := tbl.Target()
	assert.True(t, ok)
	assert.Equal(t, int64(2), target)
}

func TestMissingTargetSample(t *testing.T) {
	var tbl prefixsum.Table
	require.NoError(t, tbl.Allocate(2, 1))
	tbl.Add(1, 2)
	tbl.Track(9)
	_, ok := tbl.Average()
	assert.False(t, ok)
}

func TestAllocate(t *testing.T) {
	var tbl prefixsum.Table
	assert.ErrorIs(t, tbl.Allocate(0, 2), prefixsum.ErrWindow)
	assert.False(t, tbl.Ready())
	require.NoError(t, tbl.Allocate(3, 2))
	require.NoError(t, tbl.Allocate(3, 2))
	assert.ErrorIs(t, tbl.Allocate(4, 2), prefixsum.ErrParameterMismatch)
	assert.ErrorIs(t, tbl.Allocate(3, 1.5), prefixsum.ErrParameterMismatch)
}

func TestMergeEmptyAndMalformed(t *testing.T) {
	tbl := build(t, 3, 2, [2]float64{1, 10})
	before := tbl.Serialize()
	var empty prefixsum.Table
	require.Equal(t, []float64{0, 0, 0}, empty.Serialize())
	require.NoError(t, tbl.Merge(empty.Serialize()))
	assert.Equal(t, before, tbl.Serialize())

	assert.ErrorIs(t, tbl.Merge(nil), prefixsum.ErrMalformed)
	assert.ErrorIs(t, tbl.Merge([]float64{3, 2, 1, 4}), prefixsum.ErrMalformed)
	assert.ErrorIs(t, tbl.Merge([]float64{2.5, 2, 1}), prefixsum.ErrMalformed)
	assert.ErrorIs(t, tbl.Merge([]float64{3, 2, 1, 1.5, 3}), prefixsum.ErrMalformed)
	assert.ErrorIs(t, tbl.Merge([]float64{4, 2, 1}), prefixsum.ErrParameterMismatch)
}

func TestSerializeLayout(t *testing.T) {
	tbl := build(t, 3, 2, [2]float64{2, 20}, [2]float64{1, 10})
	assert.Equal(t, []float64{3, 2, 2, 2, 20, 1, 10}, tbl.Serialize())
}

func TestReset(t *testing.T) {
	tbl := build(t, 3, 2, [2]float64{1, 10})
	tbl.Reset()
	assert.False(t, tbl.Ready())
	assert.Zero(t, tbl.Len())
	_, ok := tbl.Average()
	assert.False(t, ok)
}

func TestZeroDivisor(t *testing.T) {
	tbl := build(t, 3, 0, [2]float64{1, 10}, [2]float64{2, 20})
	avg, ok := tbl.Average()
	require.True(t, ok)
	assert.True(t, math.IsNaN(avg))
}

func TestDuplicatePositionAcrossShards(t *testing.T) {
	a := build(t, 2, 2, [2]float64{1, 10}, [2]float64{2, 50})
	b := build(t, 2, 2, [2]float64{2, 20})
	var expected float64
	for k, order := range [][]*prefixsum.Table{{a, b}, {b, a}} {
		var merged prefixsum.Table
		for _, part := range order {
			require.NoError(t, merged.Merge(part.Serialize()))
		}
		assert.Equal(t, 3, merged.Len())
		avg, ok := merged.Average()
		require.True(t, ok)
		if k == 0 {
			expected = avg
		}
		assert.Equal(t, expected, avg)
	}
	// 20 wins over 50 at position 2: (20/2 + 10/4) / (1/2 + 1/4)
	assert.InDelta(t, 50.0/3, expected, 1e-12)
}

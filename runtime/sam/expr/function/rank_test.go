package function_test

import (
	"testing"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/runtime/sam/expr/function"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ranks(t *testing.T, s *function.RankState, keys ...superagg.Value) []int64 {
	var out []int64
	for _, key := range keys {
		val, err := function.Rank(s, key)
		require.NoError(t, err)
		n, ok := val.AsInt64()
		require.True(t, ok)
		out = append(out, n)
	}
	return out
}

func TestRank(t *testing.T) {
	var s function.RankState
	a, b := superagg.NewString("a"), superagg.NewString("B")
	got := ranks(t, &s, a, superagg.NewString("A"), a, b, superagg.NewString("b"), a)
	assert.Equal(t, []int64{0, 1, 2, 0, 1, 0}, got)
}

func TestRankNullKeys(t *testing.T) {
	var s function.RankState
	got := ranks(t, &s, superagg.Null, superagg.Null, superagg.NewString(""), superagg.Null)
	assert.Equal(t, []int64{0, 1, 0, 0}, got)
}

func TestRankIndependentStates(t *testing.T) {
	var s1, s2 function.RankState
	x := superagg.NewString("x")
	assert.Equal(t, []int64{0, 1}, ranks(t, &s1, x, x))
	assert.Equal(t, []int64{0}, ranks(t, &s2, x))
	assert.Equal(t, []int64{2}, ranks(t, &s1, x))
}

func TestRankFoldsUnicode(t *testing.T) {
	var s function.RankState
	got := ranks(t, &s, superagg.NewString("STRASSE"), superagg.NewString("straße"))
	assert.Equal(t, []int64{0, 1}, got)
}

func TestRankRejectsNonString(t *testing.T) {
	var s function.RankState
	_, err := function.Rank(&s, superagg.NewInt64(1))
	assert.Error(t, err)
}

package aggregate_test

import (
	"testing"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/runtime/sam/expr/agg"
	"github.com/brimdata/superagg/runtime/sam/op/aggregate"
	"github.com/brimdata/superagg/sup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAggregate(t *testing.T, op agg.Operator, mode agg.Mode, in string) *aggregate.Aggregate {
	typs, err := sup.ParseTypes(in)
	require.NoError(t, err)
	e := agg.NewEvaluator(op)
	_, err = e.Init(mode, typs)
	require.NoError(t, err)
	return aggregate.New(e)
}

func consume(t *testing.T, a *aggregate.Aggregate, lines ...string) {
	for _, line := range lines {
		vals, err := sup.ParseValues(line)
		require.NoError(t, err)
		require.NoError(t, a.Consume(vals[0], vals[1:]))
	}
}

func format(results []aggregate.Result) []string {
	var out []string
	for _, r := range results {
		out = append(out, sup.FormatValue(r.Key)+" "+sup.FormatValue(r.Value))
	}
	return out
}

func TestGroupedSingle(t *testing.T) {
	a := newAggregate(t, agg.FirstOfGroup, agg.ModeSingle, "string,int64")
	consume(t, a, `"g2","x",3`, `"g1","y",5`, `"g2","z",1`, `null,"n",0`)
	assert.Equal(t, 3, a.Len())
	results, err := a.Results()
	require.NoError(t, err)
	assert.Equal(t, []string{`null "n"`, `"g1" "y"`, `"g2" "z"`}, format(results))
}

func TestGroupedPartialsThenFinal(t *testing.T) {
	a := newAggregate(t, agg.CountDistinctToMap, agg.ModePartial, "string,int64")
	b := newAggregate(t, agg.CountDistinctToMap, agg.ModePartial, "string,int64")
	consume(t, a, `1,"a",1`, `1,"a",2`, `2,"b",1`)
	consume(t, b, `1,"a",2`, `1,"c",9`)
	final := newAggregate(t, agg.CountDistinctToMap, agg.ModeFinal, "|{string:[int64]}|")
	for _, src := range []*aggregate.Aggregate{a, b} {
		results, err := src.Results()
		require.NoError(t, err)
		for _, r := range results {
			require.NoError(t, final.ConsumePartial(r.Key, r.Value))
		}
	}
	results, err := final.Results()
	require.NoError(t, err)
	assert.Equal(t, []string{`1 |{"a":2,"c":1}|`, `2 |{"b":1}|`}, format(results))
}

func TestModeErrorsPropagate(t *testing.T) {
	a := newAggregate(t, agg.CollectToArray, agg.ModeFinal, "[int64]")
	err := a.Consume(superagg.Null, []superagg.Value{superagg.NewInt64(1)})
	assert.ErrorIs(t, err, agg.ErrMode)
}

func TestReset(t *testing.T) {
	a := newAggregate(t, agg.CollectToArray, agg.ModeSingle, "int64")
	consume(t, a, "1,1", "2,2")
	a.Reset()
	assert.Zero(t, a.Len())
	results, err := a.Results()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResultRecord(t *testing.T) {
	r := aggregate.Result{Key: superagg.NewString("k"), Value: superagg.NewInt64(3)}
	assert.Equal(t, `{key:"k",value:3}`, sup.FormatValue(r.Record()))
}

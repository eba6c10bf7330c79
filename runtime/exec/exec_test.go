package exec_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brimdata/superagg"
	"github.com/brimdata/superagg/runtime/exec"
	"github.com/brimdata/superagg/runtime/sam/expr/agg"
	"github.com/brimdata/superagg/runtime/sam/op/aggregate"
	"github.com/brimdata/superagg/sup"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func parseRows(t *testing.T, lines ...string) []exec.Row {
	var rows []exec.Row
	for _, line := range lines {
		vals, err := sup.ParseValues(line)
		require.NoError(t, err)
		rows = append(rows, exec.Row{Key: vals[0], Args: vals[1:]})
	}
	return rows
}

func format(results []aggregate.Result) []string {
	var out []string
	for _, r := range results {
		out = append(out, sup.FormatValue(r.Key)+" "+sup.FormatValue(r.Value))
	}
	return out
}

func parseTypes(t *testing.T, s string) []*superagg.Type {
	typs, err := sup.ParseTypes(s)
	require.NoError(t, err)
	return typs
}

var cases = []struct {
	op    agg.Operator
	types string
	rows  []string
}{
	{agg.CountDistinctToMap, "string,int64", []string{`1,"a",1`, `1,"a",1`, `1,"a",2`, `1,"b",3`, `2,"a",5`, `2,"a",5`}},
	{agg.MapGroupSum, "|{string:int64}|", []string{`null,|{"x":1,"y":2}|`, `null,|{"x":3}|`, `null,|{"z":-4}|`}},
	{agg.MapGroupSum, "|{char(4):decimal}|", []string{`"k",|{" ab"::char(4):1.25::decimal}|`, `"k",|{"ab"::char(4):0.75::decimal}|`}},
	{agg.FirstOfGroup, "string,int64", []string{`null,"p",5`, `null,"q",2`, `null,"r",9`}},
	{agg.LastOfGroup, "string,float32", []string{`"g","p",5.5::float32`, `"g","q",2::float32`, `"g","r",9.25::float32`}},
	{agg.CollectToArray, "int64", []string{"null,1", "null,1", "null,1"}},
	{agg.MovingAvg, "int64,float64,int64,float64", []string{"null,1,10.,3,2.", "null,2,20.,3,2.", "null,3,30.,3,2.", "null,4,40.,3,2."}},
	{agg.ApproxCountDistinctToMap, "string,string", []string{`0,"a","x"`, `0,"a","y"`, `0,"b","x"`}},
}

func TestRunMatchesSingle(t *testing.T) {
	for _, c := range cases {
		t.Run(c.op.Name(), func(t *testing.T) {
			ctx := context.Background()
			typs := parseTypes(t, c.types)
			rows := parseRows(t, c.rows...)
			expected, err := exec.RunSingle(ctx, exec.DefaultConfig(), c.op, typs, rows)
			require.NoError(t, err)
			for seed := range int64(5) {
				for _, shards := range []int{1, 2, 5} {
					for _, fanout := range []int{2, 3} {
						cfg := exec.Config{
							Shards:        shards,
							Fanout:        fanout,
							Seed:          seed,
							Parallelism:   2,
							WireRoundTrip: seed%2 == 0,
						}
						actual, err := exec.Run(ctx, cfg, c.op, typs, rows)
						require.NoError(t, err)
						assert.Equal(t, format(expected), format(actual), fmt.Sprintf("%+v", cfg))
					}
				}
			}
		})
	}
}

func TestRunDeterministic(t *testing.T) {
	typs := parseTypes(t, "string,int64")
	rows := parseRows(t, `null,"a",1`, `null,"b",1`, `null,"c",1`, `null,"d",1`)
	cfg := exec.Config{Shards: 3, Fanout: 2, Seed: 7}
	first, err := exec.Run(context.Background(), cfg, agg.FirstOfGroup, typs, rows)
	require.NoError(t, err)
	for range 5 {
		again, err := exec.Run(context.Background(), cfg, agg.FirstOfGroup, typs, rows)
		require.NoError(t, err)
		assert.Equal(t, format(first), format(again))
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := exec.NewMetrics(reg)
	cfg := exec.Config{Shards: 4, Fanout: 2, Seed: 3, Metrics: metrics}
	rows := parseRows(t, `1,"a",1`, `2,"a",2`, `1,"b",3`)
	_, err := exec.Run(context.Background(), cfg, agg.CountDistinctToMap, parseTypes(t, "string,int64"), rows)
	require.NoError(t, err)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Rows))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.Tasks.WithLabelValues(exec.StageMap)))
	// 4 map outputs are combined into 2 sets, then merged by one final task.
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Tasks.WithLabelValues(exec.StageCombine)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Tasks.WithLabelValues(exec.StageFinal)))
	assert.Positive(t, testutil.ToFloat64(metrics.Partials))
	n, err := testutil.GatherAndCount(reg, "superagg_rows_total", "superagg_tasks_total")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 3, testutil.CollectAndCount(metrics.Duration))
}

func TestTaskLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := exec.Config{Shards: 2, Fanout: 2, Seed: 1, Logger: zap.New(core)}
	_, err := exec.Run(context.Background(), cfg, agg.CollectToArray, parseTypes(t, "int64"), parseRows(t, "null,1"))
	require.NoError(t, err)
	finished := logs.FilterMessage("Task finished").All()
	require.Len(t, finished, 3)
	ids := map[string]bool{}
	for _, entry := range finished {
		ids[entry.ContextMap()["task"].(string)] = true
	}
	assert.Len(t, ids, 3)
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	typs := parseTypes(t, "int64")
	_, err := exec.Run(ctx, exec.Config{Shards: 0, Fanout: 2}, agg.CollectToArray, typs, nil)
	assert.Error(t, err)
	_, err = exec.Run(ctx, exec.Config{Shards: 1, Fanout: 1}, agg.CollectToArray, typs, nil)
	assert.Error(t, err)
	_, err = exec.Run(ctx, exec.DefaultConfig(), agg.CollectToArray, parseTypes(t, "int64,int64"), nil)
	assert.ErrorIs(t, err, agg.ErrConfiguration)
	_, err = exec.Run(ctx, exec.DefaultConfig(), agg.CollectToArray, typs, parseRows(t, `null,"x"`))
	assert.ErrorIs(t, err, agg.ErrConfiguration)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = exec.Run(canceled, exec.DefaultConfig(), agg.CollectToArray, typs, parseRows(t, "null,1"))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = exec.RunSingle(canceled, exec.DefaultConfig(), agg.CollectToArray, typs, parseRows(t, "null,1"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRow(t *testing.T) {
	vals, err := sup.ParseValues(`"k",1,2`)
	require.NoError(t, err)
	row, err := exec.NewRow(vals, true)
	require.NoError(t, err)
	assert.Equal(t, `"k"`, sup.FormatValue(row.Key))
	assert.Len(t, row.Args, 2)
	row, err = exec.NewRow(vals, false)
	require.NoError(t, err)
	assert.True(t, row.Key.IsNull())
	assert.Len(t, row.Args, 3)
	_, err = exec.NewRow(nil, true)
	assert.Error(t, err)
}

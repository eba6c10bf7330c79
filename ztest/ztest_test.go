package ztest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromYAMLUnknownField(t *testing.T) {
	_, err := FromYAML(strings.NewReader("op: collect\nspq: count()\n"))
	assert.ErrorContains(t, err, "spq")
}

func TestFromYAMLOneDocument(t *testing.T) {
	_, err := FromYAML(strings.NewReader("op: collect\n---\nop: first\n"))
	assert.ErrorContains(t, err, "one YAML document")
}

func TestShouldSkip(t *testing.T) {
	t.Setenv("ZTEST_TAG", "")
	assert.NotEmpty(t, (&ZTest{Script: "true"}).ShouldSkip(""))
	assert.NotEmpty(t, (&ZTest{Op: "collect"}).ShouldSkip("/bin"))
	assert.Equal(t, "later", (&ZTest{Op: "collect", Skip: "later"}).ShouldSkip(""))
	assert.NotEmpty(t, (&ZTest{Op: "collect", Tag: "slow"}).ShouldSkip(""))
	assert.Empty(t, (&ZTest{Op: "collect"}).ShouldSkip(""))
}

func TestRunInternal(t *testing.T) {
	z, err := FromYAML(strings.NewReader(`
op: map_group_sum
types: '|{string:float64}|'
input: |
  |{"x":1.5}|
  |{"x":2.}|
output: |
  |{"x":3.5}|
`))
	require.NoError(t, err)
	require.NoError(t, z.RunInternal(context.Background()))
	z.Output = "|{\"x\":4.}|\n"
	err = z.RunInternal(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "=== single ===")
	assert.Contains(t, err.Error(), "=== distributed ===")
	assert.Contains(t, err.Error(), "-|{\"x\":4.}|")
	assert.Contains(t, err.Error(), "+|{\"x\":3.5}|")
}

func TestCheck(t *testing.T) {
	assert.Error(t, (&ZTest{}).check())
	assert.Error(t, (&ZTest{Script: "true"}).check())
	data := "x"
	z := &ZTest{
		Script:  "true",
		Inputs:  []File{{Name: "in", Data: &data, Source: "in.sup"}},
		Outputs: []File{},
	}
	assert.ErrorContains(t, z.check(), "at most one")
}

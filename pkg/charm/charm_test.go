package charm

import (
	"bytes"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rootCommand struct {
	verbose bool
	name    string
	ran     []string
}

func (r *rootCommand) SetLeafFlags(fs *flag.FlagSet) {
	fs.StringVar(&r.name, "name", "", "a leaf flag")
}

func (r *rootCommand) Run(args []string) error {
	r.ran = args
	return nil
}

type childCommand struct {
	root *rootCommand
	ran  bool
}

func (c *childCommand) Run(args []string) error {
	c.ran = true
	return nil
}

func newTree() (*Spec, *rootCommand, *childCommand) {
	root := &rootCommand{}
	child := &childCommand{}
	rootSpec := &Spec{
		Name:         "tool",
		Usage:        "tool [options] [file ...]",
		Short:        "a tool",
		InternalLeaf: true,
		New: func(_ Command, fs *flag.FlagSet) (Command, error) {
			fs.BoolVar(&root.verbose, "v", false, "verbose")
			return root, nil
		},
	}
	rootSpec.Add(&Spec{
		Name:  "child",
		Usage: "tool child",
		Short: "a child",
		New: func(parent Command, _ *flag.FlagSet) (Command, error) {
			child.root = parent.(*rootCommand)
			return child, nil
		},
	})
	return rootSpec, root, child
}

func TestLeaf(t *testing.T) {
	spec, root, child := newTree()
	require.NoError(t, spec.Exec([]string{"-v", "-name", "x", "a", "b"}))
	assert.True(t, root.verbose)
	assert.Equal(t, "x", root.name)
	assert.Equal(t, []string{"a", "b"}, root.ran)
	assert.False(t, child.ran)
}

func TestChild(t *testing.T) {
	spec, root, child := newTree()
	require.NoError(t, spec.Exec([]string{"-v", "child"}))
	assert.True(t, child.ran)
	assert.Same(t, root, child.root)
	assert.True(t, root.verbose)
	assert.Nil(t, root.ran)
}

func TestLeafFlagsNotInherited(t *testing.T) {
	spec, _, _ := newTree()
	assert.Error(t, spec.Exec([]string{"child", "-name", "x"}))
}

func TestHelp(t *testing.T) {
	spec, _, _ := newTree()
	p, _, _, err := parse(spec, []string{"-h"})
	assert.ErrorIs(t, err, NeedHelp)
	var b bytes.Buffer
	displayHelp(&b, p, false)
	assert.Contains(t, b.String(), "tool [options] [file ...]")
	assert.Contains(t, b.String(), "-name a leaf flag")
	assert.Contains(t, b.String(), "child       a child")
	assert.NotContains(t, b.String(), "-hidden")
}

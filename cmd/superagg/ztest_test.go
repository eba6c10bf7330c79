package main

import (
	"testing"

	"github.com/brimdata/superagg/ztest"
)

func TestZTest(t *testing.T) { ztest.Run(t, "testdata/ztest") }

package agg

import (
	"fmt"
	"strings"
)

// Mode selects which half of the aggregation protocol an Evaluator runs.
// Raw rows flow in unless PartialsIn and final results flow out unless
// PartialsOut.
type Mode int

const (
	// ModeSingle folds raw rows straight into final results.
	ModeSingle Mode = iota
	// ModePartial folds raw rows into partials on the map side.
	ModePartial
	// ModeCombine merges partials into partials.
	ModeCombine
	// ModeFinal merges partials into final results.
	ModeFinal
)

var modeNames = map[Mode]string{
	ModeSingle:  "single",
	ModePartial: "partial",
	ModeCombine: "combine",
	ModeFinal:   "final",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) PartialsIn() bool {
	return m == ModeCombine || m == ModeFinal
}

func (m Mode) PartialsOut() bool {
	return m == ModePartial || m == ModeCombine
}

// ParseMode accepts the mode names above as well as the Hive names
// complete, partial1, partial2 and final.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "single", "complete":
		return ModeSingle, nil
	case "partial", "partial1":
		return ModePartial, nil
	case "combine", "partial2":
		return ModeCombine, nil
	case "final":
		return ModeFinal, nil
	}
	return 0, fmt.Errorf("unknown aggregation mode %q", s)
}

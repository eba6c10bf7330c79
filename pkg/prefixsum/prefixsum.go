// Package prefixsum maintains a position-indexed table of samples and
// computes an exponentially weighted moving average over a trailing window
// ending at a target position.  Tables serialize to a flat list of floats
// so they can be shipped between workers and merged in any order.
package prefixsum

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	ErrWindow            = errors.New("window size must be at least 1")
	ErrParameterMismatch = errors.New("window parameters differ")
	ErrMalformed         = errors.New("malformed serialized table")
)

// Entry is one sample of the table.
type Entry struct {
	Position int64
	Value    float64
}

// Table is the accumulator behind a moving average.  The zero Table is
// empty and becomes ready once Allocate fixes its window and divisor.
type Table struct {
	window    int
	divisor   float64
	target    int64
	hasTarget bool
	entries   []Entry
	dirty     bool
	average   float64
	found     bool
}

// Ready is true once the window parameters are fixed.
func (t *Table) Ready() bool {
	return t.window > 0
}

// Allocate fixes the window size and decay divisor.  Calling Allocate on
// a ready table is allowed only with the same parameters.
func (t *Table) Allocate(window int, divisor float64) error {
	if window < 1 {
		return fmt.Errorf("%w: %d", ErrWindow, window)
	}
	if t.Ready() {
		if t.window != window || !sameFloat(t.divisor, divisor) {
			return fmt.Errorf("%w: window %d divisor %g, got window %d divisor %g",
				ErrParameterMismatch, t.window, t.divisor, window, divisor)
		}
		return nil
	}
	t.window = window
	t.divisor = divisor
	return nil
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// Add appends a sample.  The average is recomputed lazily.
func (t *Table) Add(position int64, value float64) {
	t.entries = append(t.entries, Entry{Position: position, Value: value})
	t.dirty = true
}

// Track records a candidate target position.  The table's target is the
// highest position ever tracked so that merges commute.
func (t *Table) Track(target int64) {
	if !t.hasTarget || target > t.target {
		t.target = target
		t.hasTarget = true
		t.dirty = true
	}
}

// Merge folds a table produced by Serialize into t and recomputes the
// average at the target.  A serialized table with a zero window is empty
// and leaves t unchanged.
func (t *Table) Merge(flat []float64) error {
	if len(flat) < 3 || (len(flat)-3)%2 != 0 {
		return fmt.Errorf("%w: length %d", ErrMalformed, len(flat))
	}
	if flat[0] == 0 {
		return nil
	}
	window, ok := integral(flat[0])
	if !ok {
		return fmt.Errorf("%w: window %g", ErrMalformed, flat[0])
	}
	target, ok := integral(flat[2])
	if !ok {
		return fmt.Errorf("%w: target %g", ErrMalformed, flat[2])
	}
	entries := make([]Entry, 0, (len(flat)-3)/2)
	for k := 3; k < len(flat); k += 2 {
		pos, ok := integral(flat[k])
		if !ok {
			return fmt.Errorf("%w: position %g", ErrMalformed, flat[k])
		}
		entries = append(entries, Entry{Position: pos, Value: flat[k+1]})
	}
	if err := t.Allocate(int(window), flat[1]); err != nil {
		return err
	}
	t.entries = append(t.entries, entries...)
	t.Track(target)
	t.dirty = true
	t.recompute()
	return nil
}

func integral(f float64) (int64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}

// Serialize flattens t into [window, divisor, target, p1, v1, p2, v2, ...].
// An empty table serializes as [0, 0, 0].
func (t *Table) Serialize() []float64 {
	if !t.Ready() {
		return []float64{0, 0, 0}
	}
	out := make([]float64, 0, 3+2*len(t.entries))
	out = append(out, float64(t.window), t.divisor, float64(t.target))
	for _, e := range t.entries {
		out = append(out, float64(e.Position), e.Value)
	}
	return out
}

// Average returns the moving average at the target position.  The second
// result is false when the table holds no sample at the target.
func (t *Table) Average() (float64, bool) {
	if t.dirty {
		t.recompute()
	}
	return t.average, t.found
}

// recompute sorts the samples by position, then value, and scans backward
// from the target for up to window positions.  The sample at offset i
// carries weight 1/divisor^(i+1).  Scanning stops at the first position
// with no sample, so a gap shortens the window rather than counting as
// zero.  When a position holds several samples the smallest value is used.
func (t *Table) recompute() {
	t.dirty = false
	t.found = false
	t.average = 0
	slices.SortFunc(t.entries, func(a, b Entry) int {
		if c := cmp.Compare(a.Position, b.Position); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	if !t.hasTarget || !t.Ready() {
		return
	}
	var num, den float64
	for i := 0; i < t.window; i++ {
		e, ok := t.lookup(t.target - int64(i))
		if !ok {
			break
		}
		w := 1 / math.Pow(t.divisor, float64(i+1))
		num += w * e.Value
		den += w
	}
	if den == 0 {
		return
	}
	t.average = num / den
	t.found = true
}

func (t *Table) lookup(position int64) (Entry, bool) {
	k, ok := slices.BinarySearchFunc(t.entries, position, func(e Entry, pos int64) int {
		return cmp.Compare(e.Position, pos)
	})
	if !ok {
		return Entry{}, false
	}
	return t.entries[k], true
}

// Len returns the number of samples.
func (t *Table) Len() int {
	return len(t.entries)
}

func (t *Table) Window() int {
	return t.window
}

func (t *Table) Divisor() float64 {
	return t.divisor
}

// Target returns the target position and whether one was tracked.
func (t *Table) Target() (int64, bool) {
	return t.target, t.hasTarget
}

// Reset returns t to the empty state, keeping its sample storage.
func (t *Table) Reset() {
	*t = Table{entries: t.entries[:0]}
}

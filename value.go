package superagg

import (
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v2"
)

// Value is a tagged variant holding one of the kinds enumerated by Kind.
// The zero Value is null.  Values are immutable: constructors copy what
// they are given and accessors never expose mutable internal state.
type Value struct {
	kind    Kind
	bits    uint64
	text    string
	width   int
	dec     *apd.Decimal
	elems   []Value
	names   []string
	entries []Entry
}

// Entry is one key/value pair of a map Value.
type Entry struct {
	Key Value
	Val Value
}

var Null = Value{}

func NewInt32(v int32) Value {
	return Value{kind: KindInt32, bits: uint64(int64(v))}
}

func NewInt64(v int64) Value {
	return Value{kind: KindInt64, bits: uint64(v)}
}

func NewFloat32(v float32) Value {
	return Value{kind: KindFloat32, bits: uint64(math.Float32bits(v))}
}

func NewFloat64(v float64) Value {
	return Value{kind: KindFloat64, bits: math.Float64bits(v)}
}

func NewString(s string) Value {
	return Value{kind: KindString, text: s}
}

// NewChar returns a fixed-width text value.  The text is truncated to
// width characters and trailing blanks are stripped, so two chars compare
// equal whenever their padded forms do.
func NewChar(s string, width int) Value {
	if width > 0 && utf8.RuneCountInString(s) > width {
		n := 0
		for k := range s {
			if n == width {
				s = s[:k]
				break
			}
			n++
		}
	}
	return Value{kind: KindChar, text: strings.TrimRight(s, " "), width: width}
}

// NewDecimal returns a decimal value holding a copy of d.
func NewDecimal(d *apd.Decimal) Value {
	var c apd.Decimal
	c.Set(d)
	return Value{kind: KindDecimal, dec: &c}
}

func NewBytes(b []byte) Value {
	return Value{kind: KindBytes, text: string(b)}
}

func NewList(vals ...Value) Value {
	return Value{kind: KindList, elems: slices.Clone(vals)}
}

// NewMap returns a map holding entries in key order.  When a key appears
// more than once the last entry wins.
func NewMap(entries []Entry) Value {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b Entry) int {
		return Compare(a.Key, b.Key)
	})
	deduped := out[:0]
	for _, e := range out {
		if n := len(deduped); n > 0 && Compare(deduped[n-1].Key, e.Key) == 0 {
			deduped[n-1] = e
			continue
		}
		deduped = append(deduped, e)
	}
	return Value{kind: KindMap, entries: deduped}
}

// NewRecord returns a record with the given field names and values.
// names and vals must have the same length.
func NewRecord(names []string, vals []Value) Value {
	if len(names) != len(vals) {
		panic("superagg.NewRecord: names and values differ in length")
	}
	return Value{kind: KindRecord, names: slices.Clone(names), elems: slices.Clone(vals)}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Int returns the value of an int32 or int64.
func (v Value) Int() int64 {
	return int64(v.bits)
}

// Float returns the value of a float32 or float64.
func (v Value) Float() float64 {
	if v.kind == KindFloat32 {
		return float64(math.Float32frombits(uint32(v.bits)))
	}
	return math.Float64frombits(v.bits)
}

// AsFloat64 converts any numeric value to float64.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindInt32, KindInt64:
		return float64(v.Int()), true
	case KindFloat32, KindFloat64:
		return v.Float(), true
	case KindDecimal:
		f, err := v.dec.Float64()
		return f, err == nil
	}
	return 0, false
}

// AsInt64 returns the value of an integer kind.
func (v Value) AsInt64() (int64, bool) {
	if v.kind.IsInteger() {
		return v.Int(), true
	}
	return 0, false
}

// Text returns the payload of a string, char, or bytes value.
func (v Value) Text() string {
	return v.text
}

// Width returns the declared width of a char value.
func (v Value) Width() int {
	return v.width
}

// Decimal returns a copy of a decimal value's payload.
func (v Value) Decimal() *apd.Decimal {
	var d apd.Decimal
	if v.dec != nil {
		d.Set(v.dec)
	}
	return &d
}

// Len returns the number of elements of a list, entries of a map, or
// fields of a record.
func (v Value) Len() int {
	if v.kind == KindMap {
		return len(v.entries)
	}
	return len(v.elems)
}

// Elems returns the elements of a list.
func (v Value) Elems() []Value {
	return slices.Clone(v.elems)
}

// Entries returns the entries of a map in key order.
func (v Value) Entries() []Entry {
	return slices.Clone(v.entries)
}

// Names returns the field names of a record.
func (v Value) Names() []string {
	return slices.Clone(v.names)
}

// Lookup returns the value bound to key in a map.
func (v Value) Lookup(key Value) (Value, bool) {
	k, ok := slices.BinarySearchFunc(v.entries, key, func(e Entry, key Value) int {
		return Compare(e.Key, key)
	})
	if !ok {
		return Null, false
	}
	return v.entries[k].Val, true
}

// Deref returns the named field of a record.
func (v Value) Deref(name string) (Value, bool) {
	if k := slices.Index(v.names, name); k >= 0 {
		return v.elems[k], true
	}
	return Null, false
}

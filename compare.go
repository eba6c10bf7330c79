package superagg

import (
	"cmp"
	"math"
	"strings"

	"github.com/cockroachdb/apd/v2"
)

// Compare defines a total order over Values.  Null sorts before everything
// else.  Numbers of any kind are compared by magnitude, with NaN ordered
// below every other number and equal magnitudes of different kinds broken
// by kind.  Other kinds sort by kind and then by payload, with composites
// compared lexicographically.
func Compare(a, b Value) int {
	if a.kind == KindNull || b.kind == KindNull {
		return cmp.Compare(nullRank(a), nullRank(b))
	}
	if a.kind.IsNumber() && b.kind.IsNumber() {
		if c := compareNumbers(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.kind, b.kind)
	}
	if a.kind != b.kind {
		return cmp.Compare(kindRank(a.kind), kindRank(b.kind))
	}
	switch a.kind {
	case KindString, KindBytes:
		return strings.Compare(a.text, b.text)
	case KindChar:
		if c := strings.Compare(a.text, b.text); c != 0 {
			return c
		}
		return cmp.Compare(a.width, b.width)
	case KindList:
		return compareSeq(a.elems, b.elems)
	case KindMap:
		for k := 0; k < len(a.entries) && k < len(b.entries); k++ {
			if c := Compare(a.entries[k].Key, b.entries[k].Key); c != 0 {
				return c
			}
			if c := Compare(a.entries[k].Val, b.entries[k].Val); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.entries), len(b.entries))
	case KindRecord:
		for k := 0; k < len(a.names) && k < len(b.names); k++ {
			if c := strings.Compare(a.names[k], b.names[k]); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(len(a.names), len(b.names)); c != 0 {
			return c
		}
		return compareSeq(a.elems, b.elems)
	}
	return 0
}

// Equal reports whether a and b are the same value of the same kind.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

// kindRank places every numeric kind in one class ahead of the
// non-numeric kinds.
func kindRank(k Kind) Kind {
	if k.IsNumber() {
		return KindInt32
	}
	return k
}

func nullRank(v Value) int {
	if v.kind == KindNull {
		return 0
	}
	return 1
}

func compareSeq(a, b []Value) int {
	for k := 0; k < len(a) && k < len(b); k++ {
		if c := Compare(a[k], b[k]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func compareNumbers(a, b Value) int {
	switch {
	case a.kind.IsInteger() && b.kind.IsInteger():
		return cmp.Compare(a.Int(), b.Int())
	case a.kind == KindDecimal || b.kind == KindDecimal:
		return compareDecimal(a, b)
	}
	af, _ := a.AsFloat64()
	bf, _ := b.AsFloat64()
	// cmp.Compare orders NaN before -Inf and treats NaNs as equal.
	return cmp.Compare(af, bf)
}

func compareDecimal(a, b Value) int {
	ad, aspecial := toDecimal(a)
	bd, bspecial := toDecimal(b)
	if aspecial || bspecial {
		af, _ := a.AsFloat64()
		bf, _ := b.AsFloat64()
		return cmp.Compare(af, bf)
	}
	return ad.Cmp(bd)
}

// toDecimal converts a number to a decimal.  The second result is true
// when the number is a NaN or infinite float with no decimal form.
func toDecimal(v Value) (*apd.Decimal, bool) {
	switch v.kind {
	case KindDecimal:
		return v.dec, false
	case KindInt32, KindInt64:
		return apd.New(v.Int(), 0), false
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, true
	}
	var d apd.Decimal
	if _, err := d.SetFloat64(f); err != nil {
		return nil, true
	}
	return &d, false
}

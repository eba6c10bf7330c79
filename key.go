package superagg

import (
	"encoding/binary"
	"math"

	"github.com/cockroachdb/apd/v2"
)

// AppendKey appends a canonical binary encoding of v to dst.  Two values
// produce the same key exactly when Equal reports them equal, so keys may
// be used to index hash tables of Values.
func AppendKey(dst []byte, v Value) []byte {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case KindNull:
	case KindInt32, KindInt64:
		dst = binary.AppendVarint(dst, v.Int())
	case KindFloat32:
		f := math.Float32frombits(uint32(v.bits))
		switch {
		case math.IsNaN(float64(f)):
			f = float32(math.NaN())
		case f == 0:
			f = 0
		}
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(f))
	case KindFloat64:
		f := v.Float()
		switch {
		case math.IsNaN(f):
			f = math.NaN()
		case f == 0:
			f = 0
		}
		dst = binary.BigEndian.AppendUint64(dst, math.Float64bits(f))
	case KindString, KindBytes:
		dst = appendText(dst, v.text)
	case KindChar:
		dst = binary.AppendUvarint(dst, uint64(v.width))
		dst = appendText(dst, v.text)
	case KindDecimal:
		dst = appendText(dst, canonicalDecimal(v.dec))
	case KindList:
		dst = binary.AppendUvarint(dst, uint64(len(v.elems)))
		for _, e := range v.elems {
			dst = AppendKey(dst, e)
		}
	case KindMap:
		dst = binary.AppendUvarint(dst, uint64(len(v.entries)))
		for _, e := range v.entries {
			dst = AppendKey(dst, e.Key)
			dst = AppendKey(dst, e.Val)
		}
	case KindRecord:
		dst = binary.AppendUvarint(dst, uint64(len(v.elems)))
		for k, e := range v.elems {
			dst = appendText(dst, v.names[k])
			dst = AppendKey(dst, e)
		}
	}
	return dst
}

func appendText(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// canonicalDecimal renders d without trailing zeros so that numerically
// equal decimals share a key.
func canonicalDecimal(d *apd.Decimal) string {
	if d == nil || d.IsZero() {
		return "0"
	}
	var r apd.Decimal
	r.Reduce(d)
	return r.String()
}

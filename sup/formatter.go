package sup

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/brimdata/superagg"
)

// FormatValue renders val in SUP.  Values of kinds whose type cannot be
// inferred from their syntax (int32, float32, char, decimal) carry a
// "::type" decorator.
func FormatValue(val superagg.Value) string {
	var b strings.Builder
	formatValue(&b, val)
	return b.String()
}

// FormatType renders typ in SUP type syntax.
func FormatType(typ *superagg.Type) string {
	return typ.String()
}

func formatValue(b *strings.Builder, val superagg.Value) {
	switch val.Kind() {
	case superagg.KindNull:
		b.WriteString("null")
	case superagg.KindInt32:
		b.WriteString(strconv.FormatInt(val.Int(), 10))
		b.WriteString("::int32")
	case superagg.KindInt64:
		b.WriteString(strconv.FormatInt(val.Int(), 10))
	case superagg.KindFloat32:
		b.WriteString(formatFloat(val.Float(), 32))
		b.WriteString("::float32")
	case superagg.KindFloat64:
		b.WriteString(formatFloat(val.Float(), 64))
	case superagg.KindString:
		b.WriteString(strconv.Quote(val.Text()))
	case superagg.KindChar:
		b.WriteString(strconv.Quote(val.Text()))
		b.WriteString("::char(")
		b.WriteString(strconv.Itoa(val.Width()))
		b.WriteByte(')')
	case superagg.KindDecimal:
		b.WriteString(val.Decimal().String())
		b.WriteString("::decimal")
	case superagg.KindBytes:
		b.WriteString("0x")
		b.WriteString(hex.EncodeToString([]byte(val.Text())))
	case superagg.KindList:
		b.WriteByte('[')
		for k, elem := range val.Elems() {
			if k > 0 {
				b.WriteByte(',')
			}
			formatValue(b, elem)
		}
		b.WriteByte(']')
	case superagg.KindMap:
		b.WriteString("|{")
		for k, e := range val.Entries() {
			if k > 0 {
				b.WriteByte(',')
			}
			formatValue(b, e.Key)
			b.WriteByte(':')
			formatValue(b, e.Val)
		}
		b.WriteString("}|")
	case superagg.KindRecord:
		b.WriteByte('{')
		names := val.Names()
		for k, name := range names {
			if k > 0 {
				b.WriteByte(',')
			}
			b.WriteString(formatName(name))
			b.WriteByte(':')
			field, _ := val.Deref(name)
			formatValue(b, field)
		}
		b.WriteByte('}')
	}
}

// formatFloat renders f with the fewest digits that parse back to the
// same bits.  A trailing "." marks integral floats so they are not read
// back as integers.
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, bitSize)
	if !strings.ContainsAny(s, ".e") {
		s += "."
	}
	return s
}

func formatName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for k, c := range s {
		if !isIdentChar(c, k == 0) {
			return false
		}
	}
	return true
}

func isIdentChar(c rune, first bool) bool {
	switch {
	case c == '_' || c == '$':
		return true
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return !first
	}
	return false
}

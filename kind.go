package superagg

import "fmt"

// Kind is the tag of a Value.  The set of kinds is closed and every
// consumer of Values switches over it exhaustively.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindChar
	KindDecimal
	KindBytes
	KindList
	KindMap
	KindRecord
)

var kindNames = [...]string{
	KindNull:    "null",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindString:  "string",
	KindChar:    "char",
	KindDecimal: "decimal",
	KindBytes:   "bytes",
	KindList:    "list",
	KindMap:     "map",
	KindRecord:  "record",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// IsPrimitive is true for the scalar kinds.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindNull, KindInt32, KindInt64, KindFloat32, KindFloat64, KindString, KindChar, KindDecimal, KindBytes:
		return true
	}
	return false
}

func (k Kind) IsInteger() bool {
	return k == KindInt32 || k == KindInt64
}

func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsNumber is true for kinds that participate in arithmetic.
func (k Kind) IsNumber() bool {
	return k.IsInteger() || k.IsFloat() || k == KindDecimal
}

package superagg

import (
	"strconv"
	"strings"
)

// Type describes the shape of the Values an evaluator consumes or emits.
// Types are immutable once built and are compared structurally.
type Type struct {
	Kind Kind
	// Width is the declared length of a char type.
	Width int
	// Elem is the element type of a list.
	Elem *Type
	// Key and Val are the entry types of a map.
	Key *Type
	Val *Type
	// Fields are the ordered fields of a record.
	Fields []Field
}

type Field struct {
	Name string
	Type *Type
}

var (
	TypeNull    = &Type{Kind: KindNull}
	TypeInt32   = &Type{Kind: KindInt32}
	TypeInt64   = &Type{Kind: KindInt64}
	TypeFloat32 = &Type{Kind: KindFloat32}
	TypeFloat64 = &Type{Kind: KindFloat64}
	TypeString  = &Type{Kind: KindString}
	TypeDecimal = &Type{Kind: KindDecimal}
	TypeBytes   = &Type{Kind: KindBytes}
)

// LookupPrimitive returns the primitive type with the given name or nil.
func LookupPrimitive(name string) *Type {
	switch name {
	case "null":
		return TypeNull
	case "int32":
		return TypeInt32
	case "int64":
		return TypeInt64
	case "float32":
		return TypeFloat32
	case "float64":
		return TypeFloat64
	case "string":
		return TypeString
	case "decimal":
		return TypeDecimal
	case "bytes":
		return TypeBytes
	}
	return nil
}

func NewCharType(width int) *Type {
	return &Type{Kind: KindChar, Width: width}
}

func NewListType(elem *Type) *Type {
	return &Type{Kind: KindList, Elem: elem}
}

func NewMapType(key, val *Type) *Type {
	return &Type{Kind: KindMap, Key: key, Val: val}
}

func NewRecordType(fields ...Field) *Type {
	return &Type{Kind: KindRecord, Fields: fields}
}

func NewField(name string, typ *Type) Field {
	return Field{Name: name, Type: typ}
}

// IsPrimitive is true if t is a scalar type.
func (t *Type) IsPrimitive() bool {
	return t != nil && t.Kind.IsPrimitive()
}

// Equal reports whether t and u describe the same shape.
func (t *Type) Equal(u *Type) bool {
	if t == u {
		return true
	}
	if t == nil || u == nil || t.Kind != u.Kind {
		return false
	}
	switch t.Kind {
	case KindChar:
		return t.Width == u.Width
	case KindList:
		return t.Elem.Equal(u.Elem)
	case KindMap:
		return t.Key.Equal(u.Key) && t.Val.Equal(u.Val)
	case KindRecord:
		if len(t.Fields) != len(u.Fields) {
			return false
		}
		for k, f := range t.Fields {
			if f.Name != u.Fields[k].Name || !f.Type.Equal(u.Fields[k].Type) {
				return false
			}
		}
	}
	return true
}

// IndexOfField returns the position of the named field in a record type.
func (t *Type) IndexOfField(name string) (int, bool) {
	for k, f := range t.Fields {
		if f.Name == name {
			return k, true
		}
	}
	return -1, false
}

// String formats t in the SUP type syntax.
func (t *Type) String() string {
	var b strings.Builder
	t.format(&b)
	return b.String()
}

func (t *Type) format(b *strings.Builder) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	switch t.Kind {
	case KindChar:
		b.WriteString("char(")
		b.WriteString(strconv.Itoa(t.Width))
		b.WriteByte(')')
	case KindList:
		b.WriteByte('[')
		t.Elem.format(b)
		b.WriteByte(']')
	case KindMap:
		b.WriteString("|{")
		t.Key.format(b)
		b.WriteByte(':')
		t.Val.format(b)
		b.WriteString("}|")
	case KindRecord:
		b.WriteByte('{')
		for k, f := range t.Fields {
			if k > 0 {
				b.WriteByte(',')
			}
			b.WriteString(f.Name)
			b.WriteByte(':')
			f.Type.format(b)
		}
		b.WriteByte('}')
	default:
		b.WriteString(t.Kind.String())
	}
}

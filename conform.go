package superagg

// Conforms reports whether val is a valid instance of typ.  Null conforms
// to every type.  A char conforms to char(W) when its text fits in W
// characters.
func Conforms(val Value, typ *Type) bool {
	if val.IsNull() {
		return true
	}
	if typ == nil || val.kind != typ.Kind {
		return false
	}
	switch typ.Kind {
	case KindChar:
		return typ.Width <= 0 || len([]rune(val.text)) <= typ.Width
	case KindList:
		for _, elem := range val.elems {
			if !Conforms(elem, typ.Elem) {
				return false
			}
		}
	case KindMap:
		for _, e := range val.entries {
			if !Conforms(e.Key, typ.Key) || !Conforms(e.Val, typ.Val) {
				return false
			}
		}
	case KindRecord:
		if len(val.names) != len(typ.Fields) {
			return false
		}
		for k, f := range typ.Fields {
			if val.names[k] != f.Name || !Conforms(val.elems[k], f.Type) {
				return false
			}
		}
	}
	return true
}

// TypeOf infers the type of a primitive value.  Composite values return
// nil since their element types cannot always be recovered from content.
func TypeOf(val Value) *Type {
	switch val.kind {
	case KindChar:
		return NewCharType(val.width)
	case KindList, KindMap, KindRecord:
		return nil
	}
	return LookupPrimitive(val.kind.String())
}

package sup

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/brimdata/superagg"
	"github.com/cockroachdb/apd/v2"
)

// ParseValue parses a single SUP value.
func ParseValue(s string) (superagg.Value, error) {
	p := &parser{src: s}
	val, err := p.parseValue()
	if err != nil {
		return superagg.Null, err
	}
	return val, p.done()
}

// ParseValues parses a comma-separated sequence of SUP values.  The
// empty string yields no values.
func ParseValues(s string) ([]superagg.Value, error) {
	p := &parser{src: s}
	if p.peek() == 0 {
		return nil, nil
	}
	var vals []superagg.Value
	for {
		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		vals = append(vals, val)
		if !p.match(",") {
			break
		}
	}
	return vals, p.done()
}

// ParseType parses a SUP type.
func ParseType(s string) (*superagg.Type, error) {
	p := &parser{src: s}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return typ, p.done()
}

// ParseTypes parses a comma-separated sequence of SUP types.
func ParseTypes(s string) ([]*superagg.Type, error) {
	p := &parser{src: s}
	if p.peek() == 0 {
		return nil, nil
	}
	var types []*superagg.Type
	for {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		types = append(types, typ)
		if !p.match(",") {
			break
		}
	}
	return types, p.done()
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("sup syntax error at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) match(lit string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], lit) {
		p.pos += len(lit)
		return true
	}
	return false
}

func (p *parser) expect(lit string) error {
	if !p.match(lit) {
		return p.errorf("expected %q", lit)
	}
	return nil
}

func (p *parser) done() error {
	if p.peek() != 0 {
		return p.errorf("unexpected text %q", p.src[p.pos:])
	}
	return nil
}

// word scans a run of identifier and number characters.
func (p *parser) word() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if !isIdentChar(rune(c), false) && c != '.' && c != '+' && c != '-' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) quoted() (string, error) {
	p.skipSpace()
	lit, err := strconv.QuotedPrefix(p.src[p.pos:])
	if err != nil {
		return "", p.errorf("malformed string")
	}
	p.pos += len(lit)
	return strconv.Unquote(lit)
}

func (p *parser) decorator() (*superagg.Type, error) {
	if !p.match("::") {
		return nil, nil
	}
	return p.parseType()
}

func (p *parser) parseValue() (superagg.Value, error) {
	switch p.peek() {
	case 0:
		return superagg.Null, p.errorf("expected a value")
	case '[':
		return p.parseList()
	case '|':
		return p.parseMap()
	case '{':
		return p.parseRecord()
	case '"':
		return p.parseString()
	}
	tok := p.word()
	if tok == "" {
		return superagg.Null, p.errorf("unexpected character %q", p.src[p.pos])
	}
	typ, err := p.decorator()
	if err != nil {
		return superagg.Null, err
	}
	if tok == "null" {
		return superagg.Null, nil
	}
	if strings.HasPrefix(tok, "0x") {
		if typ != nil && typ.Kind != superagg.KindBytes {
			return superagg.Null, p.errorf("bytes literal cannot be cast to %s", typ)
		}
		b, err := hex.DecodeString(tok[2:])
		if err != nil {
			return superagg.Null, p.errorf("malformed bytes literal %q", tok)
		}
		return superagg.NewBytes(b), nil
	}
	return p.number(tok, typ)
}

func (p *parser) number(tok string, typ *superagg.Type) (superagg.Value, error) {
	kind := superagg.KindInt64
	switch {
	case typ != nil:
		kind = typ.Kind
	case strings.ContainsAny(tok, ".eE") || strings.HasSuffix(tok, "Inf") || tok == "NaN":
		kind = superagg.KindFloat64
	}
	switch kind {
	case superagg.KindInt32:
		v, err := strconv.ParseInt(tok, 10, 32)
		if err != nil {
			return superagg.Null, p.errorf("malformed int32 %q", tok)
		}
		return superagg.NewInt32(int32(v)), nil
	case superagg.KindInt64:
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return superagg.Null, p.errorf("malformed int64 %q", tok)
		}
		return superagg.NewInt64(v), nil
	case superagg.KindFloat32:
		v, err := strconv.ParseFloat(tok, 32)
		if err != nil {
			return superagg.Null, p.errorf("malformed float32 %q", tok)
		}
		return superagg.NewFloat32(float32(v)), nil
	case superagg.KindFloat64:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return superagg.Null, p.errorf("malformed float64 %q", tok)
		}
		return superagg.NewFloat64(v), nil
	case superagg.KindDecimal:
		d, _, err := apd.NewFromString(tok)
		if err != nil {
			return superagg.Null, p.errorf("malformed decimal %q", tok)
		}
		return superagg.NewDecimal(d), nil
	}
	return superagg.Null, p.errorf("number %q cannot be cast to %s", tok, typ)
}

func (p *parser) parseString() (superagg.Value, error) {
	s, err := p.quoted()
	if err != nil {
		return superagg.Null, err
	}
	typ, err := p.decorator()
	if err != nil {
		return superagg.Null, err
	}
	switch {
	case typ == nil || typ.Kind == superagg.KindString:
		return superagg.NewString(s), nil
	case typ.Kind == superagg.KindChar:
		return superagg.NewChar(s, typ.Width), nil
	}
	return superagg.Null, p.errorf("string cannot be cast to %s", typ)
}

func (p *parser) parseList() (superagg.Value, error) {
	p.match("[")
	var elems []superagg.Value
	if p.match("]") {
		return superagg.NewList(), nil
	}
	for {
		elem, err := p.parseValue()
		if err != nil {
			return superagg.Null, err
		}
		elems = append(elems, elem)
		if !p.match(",") {
			break
		}
	}
	if err := p.expect("]"); err != nil {
		return superagg.Null, err
	}
	return superagg.NewList(elems...), nil
}

func (p *parser) parseMap() (superagg.Value, error) {
	if err := p.expect("|{"); err != nil {
		return superagg.Null, err
	}
	var entries []superagg.Entry
	if p.match("}|") {
		return superagg.NewMap(nil), nil
	}
	for {
		key, err := p.parseValue()
		if err != nil {
			return superagg.Null, err
		}
		if err := p.expect(":"); err != nil {
			return superagg.Null, err
		}
		val, err := p.parseValue()
		if err != nil {
			return superagg.Null, err
		}
		entries = append(entries, superagg.Entry{Key: key, Val: val})
		if !p.match(",") {
			break
		}
	}
	if err := p.expect("}|"); err != nil {
		return superagg.Null, err
	}
	return superagg.NewMap(entries), nil
}

func (p *parser) parseRecord() (superagg.Value, error) {
	p.match("{")
	var names []string
	var vals []superagg.Value
	if p.match("}") {
		return superagg.NewRecord(nil, nil), nil
	}
	for {
		name, err := p.fieldName()
		if err != nil {
			return superagg.Null, err
		}
		if err := p.expect(":"); err != nil {
			return superagg.Null, err
		}
		val, err := p.parseValue()
		if err != nil {
			return superagg.Null, err
		}
		names = append(names, name)
		vals = append(vals, val)
		if !p.match(",") {
			break
		}
	}
	if err := p.expect("}"); err != nil {
		return superagg.Null, err
	}
	return superagg.NewRecord(names, vals), nil
}

func (p *parser) fieldName() (string, error) {
	if p.peek() == '"' {
		return p.quoted()
	}
	start := p.pos
	for p.pos < len(p.src) && isIdentChar(rune(p.src[p.pos]), p.pos == start) {
		p.pos++
	}
	if p.pos == start {
		return "", p.errorf("expected a field name")
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parseType() (*superagg.Type, error) {
	switch p.peek() {
	case '[':
		p.match("[")
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		return superagg.NewListType(elem), nil
	case '|':
		if err := p.expect("|{"); err != nil {
			return nil, err
		}
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		val, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expect("}|"); err != nil {
			return nil, err
		}
		return superagg.NewMapType(key, val), nil
	case '{':
		return p.parseRecordType()
	}
	name := p.word()
	if name == "char" {
		return p.parseCharType()
	}
	if typ := superagg.LookupPrimitive(name); typ != nil {
		return typ, nil
	}
	return nil, p.errorf("unknown type %q", name)
}

func (p *parser) parseCharType() (*superagg.Type, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	tok := p.word()
	width, err := strconv.Atoi(tok)
	if err != nil || width < 1 {
		return nil, p.errorf("malformed char width %q", tok)
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return superagg.NewCharType(width), nil
}

func (p *parser) parseRecordType() (*superagg.Type, error) {
	p.match("{")
	var fields []superagg.Field
	if p.match("}") {
		return superagg.NewRecordType(), nil
	}
	for {
		name, err := p.fieldName()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fields = append(fields, superagg.NewField(name, typ))
		if !p.match(",") {
			break
		}
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return superagg.NewRecordType(fields...), nil
}

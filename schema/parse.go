package schema

import (
	"fmt"
	"strconv"
	"unicode"
)

// ParseTypeExpr parses a textual type expression into a TypeExpr. The
// grammar mirrors Go type syntax with tuples and generics added:
//
//	*T  []T  [4]T  map[K]V  (A, B)  Option[T]  any  name
func ParseTypeExpr(s string) (TypeExpr, error) {
	p := &typeParser{src: s}

	expr, err := p.parse()
	if err != nil {
		return TypeExpr{}, err
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return TypeExpr{}, fmt.Errorf("unexpected trailing input %q in type %q", p.src[p.pos:], s)
	}

	return expr, nil
}

// MustParseTypeExpr is ParseTypeExpr for statically known inputs.
func MustParseTypeExpr(s string) TypeExpr {
	expr, err := ParseTypeExpr(s)
	if err != nil {
		panic(err)
	}

	return expr
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) parse() (TypeExpr, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return TypeExpr{}, fmt.Errorf("unexpected end of type %q", p.src)
	}

	switch c := p.src[p.pos]; {
	case c == '*':
		p.pos++

		elem, err := p.parse()
		if err != nil {
			return TypeExpr{}, err
		}

		return PointerTo(elem), nil
	case c == '[':
		return p.parseBracket()
	case c == '(':
		return p.parseTuple()
	default:
		return p.parseNamed()
	}
}

// parseBracket handles []T and [N]T.
func (p *typeParser) parseBracket() (TypeExpr, error) {
	p.pos++ // consume '['
	p.skipSpace()

	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}

	digits := p.src[start:p.pos]

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return TypeExpr{}, fmt.Errorf("missing ']' in type %q", p.src)
	}
	p.pos++

	elem, err := p.parse()
	if err != nil {
		return TypeExpr{}, err
	}

	if digits == "" {
		return SliceOf(elem), nil
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return TypeExpr{}, fmt.Errorf("bad array length in type %q: %w", p.src, err)
	}

	return ArrayOf(n, elem), nil
}

func (p *typeParser) parseTuple() (TypeExpr, error) {
	p.pos++ // consume '('

	args, err := p.parseList(')')
	if err != nil {
		return TypeExpr{}, err
	}

	return TupleOf(args...), nil
}

func (p *typeParser) parseNamed() (TypeExpr, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentChar(rune(p.src[p.pos])) {
		p.pos++
	}

	name := p.src[start:p.pos]
	if name == "" {
		return TypeExpr{}, fmt.Errorf("unexpected %q in type %q", p.src[p.pos:], p.src)
	}

	switch name {
	case "any":
		return Iface(), nil
	case "map":
		return p.parseMap()
	}

	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '[' {
		p.pos++

		args, err := p.parseList(']')
		if err != nil {
			return TypeExpr{}, err
		}

		return Named(name, args...), nil
	}

	return Named(name), nil
}

func (p *typeParser) parseMap() (TypeExpr, error) {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != '[' {
		return TypeExpr{}, fmt.Errorf("missing '[' after map in type %q", p.src)
	}
	p.pos++

	key, err := p.parse()
	if err != nil {
		return TypeExpr{}, err
	}

	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return TypeExpr{}, fmt.Errorf("missing ']' after map key in type %q", p.src)
	}
	p.pos++

	value, err := p.parse()
	if err != nil {
		return TypeExpr{}, err
	}

	return MapOf(key, value), nil
}

// parseList parses a comma-separated type list up to the closing rune.
func (p *typeParser) parseList(close byte) ([]TypeExpr, error) {
	var args []TypeExpr

	for {
		arg, err := p.parse()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("missing %q in type %q", string(close), p.src)
		}

		switch p.src[p.pos] {
		case ',':
			p.pos++
		case close:
			p.pos++
			return args, nil
		default:
			return nil, fmt.Errorf("unexpected %q in type %q", p.src[p.pos:], p.src)
		}
	}
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func isIdentChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

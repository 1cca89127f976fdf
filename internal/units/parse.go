package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// Parse reads a quantity such as "9.8 m/s^2", "1e3 N" or "-4". A number
// without a unit is dimensionless.
func Parse(expr string) (Quantity, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Quantity{}, ErrEmpty
	}

	loc := numberPrefix.FindStringIndex(expr)
	if loc == nil {
		return Quantity{}, fmt.Errorf("%q has no leading number: %w", expr, ErrSyntax)
	}
	value, err := strconv.ParseFloat(expr[:loc[1]], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("number %q: %w", expr[:loc[1]], ErrSyntax)
	}

	unit, err := ParseUnit(expr[loc[1]:])
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: value, Unit: unit}, nil
}

// ParseUnit reads a unit expression: tokens joined by '*', '·', '/' or
// whitespace, each optionally raised to an integer power with '^', with
// parentheses for grouping. The empty expression is Dimensionless.
func ParseUnit(expr string) (Unit, error) {
	src := strings.TrimSpace(expr)
	if src == "" {
		return Dimensionless, nil
	}
	p := &parser{src: src}
	u, err := p.expr()
	if err != nil {
		return Unit{}, err
	}
	p.skipSpace()
	if !p.done() {
		return Unit{}, fmt.Errorf("unexpected %q in %q: %w", p.src[p.pos:], src, ErrSyntax)
	}
	u.Symbol = src
	return u, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) done() bool { return p.pos >= len(p.src) }

func (p *parser) peek() rune {
	if p.done() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return r
}

func (p *parser) next() rune {
	r, size := utf8.DecodeRuneInString(p.src[p.pos:])
	p.pos += size
	return r
}

func (p *parser) skipSpace() {
	for !p.done() && unicode.IsSpace(p.peek()) {
		p.next()
	}
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || r == '°' || r == 'Ω'
}

// expr := factor { ('*' | '·' | '/' | juxtaposition) factor }
func (p *parser) expr() (Unit, error) {
	u, err := p.factor()
	if err != nil {
		return Unit{}, err
	}
	for {
		p.skipSpace()
		if p.done() {
			return u, nil
		}
		switch r := p.peek(); {
		case r == '*' || r == '·':
			p.next()
			rhs, err := p.factor()
			if err != nil {
				return Unit{}, err
			}
			u, err = checked(u.mul(rhs), p.src)
			if err != nil {
				return Unit{}, err
			}
		case r == '/':
			p.next()
			rhs, err := p.factor()
			if err != nil {
				return Unit{}, err
			}
			u, err = checked(u.div(rhs), p.src)
			if err != nil {
				return Unit{}, err
			}
		case isIdentRune(r) || r == '(':
			rhs, err := p.factor()
			if err != nil {
				return Unit{}, err
			}
			u, err = checked(u.mul(rhs), p.src)
			if err != nil {
				return Unit{}, err
			}
		default:
			return u, nil
		}
	}
}

// factor := primary [ '^' ['-'] digits ]
func (p *parser) factor() (Unit, error) {
	u, err := p.primary()
	if err != nil {
		return Unit{}, err
	}
	p.skipSpace()
	if p.peek() != '^' {
		return u, nil
	}
	p.next()
	p.skipSpace()
	start := p.pos
	if r := p.peek(); r == '-' || r == '+' {
		p.next()
	}
	for !p.done() && unicode.IsDigit(p.peek()) {
		p.next()
	}
	n, err := strconv.Atoi(p.src[start:p.pos])
	if err != nil {
		return Unit{}, fmt.Errorf("exponent %q: %w", p.src[start:p.pos], ErrSyntax)
	}
	if n > maxExponent || n < -maxExponent {
		return Unit{}, fmt.Errorf("exponent %d out of range: %w", n, ErrSyntax)
	}
	return checked(u.pow(n), p.src)
}

// checked rejects units whose combined exponents leave the supported range.
func checked(u Unit, src string) (Unit, error) {
	if !u.Dim.bounded() {
		return Unit{}, fmt.Errorf("exponents out of range in %q: %w", src, ErrSyntax)
	}
	return u, nil
}

// primary := identifier | '(' expr ')'
func (p *parser) primary() (Unit, error) {
	p.skipSpace()
	if p.done() {
		return Unit{}, fmt.Errorf("unit expected at end of %q: %w", p.src, ErrSyntax)
	}
	if p.peek() == '(' {
		p.next()
		u, err := p.expr()
		if err != nil {
			return Unit{}, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return Unit{}, fmt.Errorf("missing ')' in %q: %w", p.src, ErrSyntax)
		}
		p.next()
		return u, nil
	}

	start := p.pos
	for !p.done() && isIdentRune(p.peek()) {
		p.next()
	}
	if start == p.pos {
		return Unit{}, fmt.Errorf("unexpected %q in %q: %w", p.peek(), p.src, ErrSyntax)
	}
	return Lookup(p.src[start:p.pos])
}

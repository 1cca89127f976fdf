package units

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrEmpty        = errors.New("empty quantity")
	ErrSyntax       = errors.New("malformed quantity")
	ErrUnknownUnit  = errors.New("unknown unit")
	ErrIncompatible = errors.New("incompatible units")
)

// maxExponent bounds every exponent of a parsed unit, both as written after
// '^' and in the combined dimension.
const maxExponent = 32

// Dimension exponents in SI base order: length, mass, time, current,
// temperature, amount, luminous intensity.
type Dimension [7]int

func (d Dimension) add(o Dimension, sign int) Dimension {
	for i := range d {
		d[i] += o[i] * sign
	}
	return d
}

func (d Dimension) scale(n int) Dimension {
	for i := range d {
		d[i] *= n
	}
	return d
}

func (d Dimension) bounded() bool {
	for _, e := range d {
		if e > maxExponent || e < -maxExponent {
			return false
		}
	}
	return true
}

// IsDimensionless reports whether every exponent is zero.
func (d Dimension) IsDimensionless() bool {
	return d == Dimension{}
}

// Unit is a linear unit: Factor converts one of it into the coherent SI
// unit of the same dimension.
type Unit struct {
	Factor float64
	Dim    Dimension
	Symbol string
}

// Dimensionless is the unit of a bare number.
var Dimensionless = Unit{Factor: 1}

func (u Unit) mul(o Unit) Unit {
	return Unit{Factor: u.Factor * o.Factor, Dim: u.Dim.add(o.Dim, 1)}
}

func (u Unit) div(o Unit) Unit {
	return Unit{Factor: u.Factor / o.Factor, Dim: u.Dim.add(o.Dim, -1)}
}

func (u Unit) pow(n int) Unit {
	return Unit{Factor: math.Pow(u.Factor, float64(n)), Dim: u.Dim.scale(n)}
}

// Compatible reports whether values in u can be expressed in o.
func (u Unit) Compatible(o Unit) bool {
	return u.Dim == o.Dim
}

// Quantity is a number with a unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// SI returns the value expressed in coherent SI units.
func (q Quantity) SI() float64 {
	return q.Value * q.Unit.Factor
}

// In converts q to the unit described by expr.
func (q Quantity) In(expr string) (float64, error) {
	target, err := ParseUnit(expr)
	if err != nil {
		return 0, err
	}
	return q.InUnit(target)
}

// InUnit converts q to target.
func (q Quantity) InUnit(target Unit) (float64, error) {
	if !q.Unit.Compatible(target) {
		return 0, fmt.Errorf("%s to %s: %w", q.Unit.Symbol, target.Symbol, ErrIncompatible)
	}
	return q.SI() / target.Factor, nil
}

// String formats the quantity with its source symbol.
func (q Quantity) String() string {
	if q.Unit.Symbol == "" {
		return fmt.Sprintf("%g", q.Value)
	}
	return fmt.Sprintf("%g %s", q.Value, q.Unit.Symbol)
}

// Lookup resolves a single unit token, trying the exact symbol first and
// then an SI prefix on a prefixable unit.
func Lookup(token string) (Unit, error) {
	if def, ok := table[token]; ok {
		return Unit{Factor: def.factor, Dim: def.dim, Symbol: token}, nil
	}
	for _, p := range prefixes {
		if !strings.HasPrefix(token, p.symbol) {
			continue
		}
		base := strings.TrimPrefix(token, p.symbol)
		def, ok := table[base]
		if !ok || !def.prefixable {
			continue
		}
		return Unit{Factor: p.factor * def.factor, Dim: def.dim, Symbol: token}, nil
	}
	return Unit{}, fmt.Errorf("%q: %w", token, ErrUnknownUnit)
}

package numeric

import (
	"math/big"

	"github.com/pkg/errors"
)

// Class names identifying a Numeric's internal representation, used by
// anything that needs to round-trip a Numeric through text (the archive
// node table, the JSON expression codec) without re-inferring the
// representation from the formatted string — which can't distinguish a
// float holding an integral value (formatted as a bare digit string) from
// a true integer.
const (
	ClassInteger  = "integer"
	ClassRational = "rational"
	ClassComplex  = "complex"
	ClassFloat    = "float"
)

// ClassOf returns the class name matching v's internal representation.
func ClassOf(v *Numeric) string {
	switch {
	case v.IsComplex():
		return ClassComplex
	case v.IsFloat():
		return ClassFloat
	case v.IsInteger():
		return ClassInteger
	default:
		return ClassRational
	}
}

// ParseLiteral reconstructs a Numeric from text previously produced by
// v.String(), given the class ClassOf recorded for it at write time.
func ParseLiteral(class, s string) (*Numeric, error) {
	switch class {
	case ClassComplex:
		return parseComplexLiteral(s)
	case ClassInteger:
		i, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, errors.Errorf("numeric: cannot parse integer literal %q", s)
		}
		return NewBigInt(i), nil
	case ClassRational:
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return nil, errors.Errorf("numeric: cannot parse rational literal %q", s)
		}
		return NewRat(r), nil
	case ClassFloat:
		f, ok := new(big.Float).SetPrec(Precision()).SetString(s)
		if !ok {
			return nil, errors.Errorf("numeric: cannot parse float literal %q", s)
		}
		v, _ := f.Float64()
		return NewFloatPrec(v, Precision()), nil
	}
	return nil, errors.Errorf("numeric: unknown class %q for literal %q", class, s)
}

// parseComplexLiteral parses the "(re+imI)" / "(re-imI)" form String writes
// for a complex value.
func parseComplexLiteral(s string) (*Numeric, error) {
	body := s
	if len(body) >= 2 && body[0] == '(' && body[len(body)-1] == ')' {
		body = body[1 : len(body)-1]
	}
	if len(body) == 0 || body[len(body)-1] != 'I' {
		return nil, errors.Errorf("numeric: malformed complex literal %q", s)
	}
	body = body[:len(body)-1]
	splitAt := -1
	for i := len(body) - 1; i > 0; i-- {
		if body[i] == '+' || body[i] == '-' {
			splitAt = i
			break
		}
	}
	if splitAt < 0 {
		return nil, errors.Errorf("numeric: malformed complex literal %q", s)
	}
	reStr, imStr := body[:splitAt], body[splitAt:]
	re, ok := new(big.Rat).SetString(reStr)
	if !ok {
		return nil, errors.Errorf("numeric: malformed complex real part in %q", s)
	}
	im, ok := new(big.Rat).SetString(imStr)
	if !ok {
		return nil, errors.Errorf("numeric: malformed complex imaginary part in %q", s)
	}
	return NewComplex(re, im), nil
}

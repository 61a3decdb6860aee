// Package value is the closed set of shapes a variable dump can be
// classified into.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Kind string

const (
	ScalarKind    Kind = "scalar"
	ComplexKind   Kind = "complex"
	BooleanKind   Kind = "boolean"
	TextKind      Kind = "text"
	StringsKind   Kind = "strings"
	MatrixKind    Kind = "matrix"
	CellKind      Kind = "cell"
	UndefinedKind Kind = "undefined"
)

type Value interface {
	Kind() Kind
	Inspect() string
}

// Scalar
type Scalar struct {
	Value float64
}

func (s *Scalar) Kind() Kind      { return ScalarKind }
func (s *Scalar) Inspect() string { return formatFloat(s.Value) }

// Complex is a complex scalar.
type Complex struct {
	Value complex128
}

func (c *Complex) Kind() Kind { return ComplexKind }
func (c *Complex) Inspect() string {
	im := imag(c.Value)
	sign := "+"
	if math.Signbit(im) {
		sign = "-"
		im = -im
	}
	return fmt.Sprintf("%s %s %si", formatFloat(real(c.Value)), sign, formatFloat(im))
}

// Boolean
type Boolean struct {
	Value bool
}

func (b *Boolean) Kind() Kind      { return BooleanKind }
func (b *Boolean) Inspect() string { return strconv.FormatBool(b.Value) }

// Text is a single-row character array.
type Text struct {
	Value string
}

func (t *Text) Kind() Kind      { return TextKind }
func (t *Text) Inspect() string { return strconv.Quote(t.Value) }

// Strings is a multi-row character array, one string per row.
type Strings struct {
	Values []string
}

func (s *Strings) Kind() Kind { return StringsKind }
func (s *Strings) Inspect() string {
	quoted := make([]string, len(s.Values))
	for i, v := range s.Values {
		quoted[i] = strconv.Quote(v)
	}
	return "[" + strings.Join(quoted, "; ") + "]"
}

// Undefined holds a payload that matched no known shape.
type Undefined struct {
	Raw    string
	Reason string
}

func (u *Undefined) Kind() Kind { return UndefinedKind }
func (u *Undefined) Inspect() string {
	if u.Reason == "" {
		return "<undefined>"
	}
	return "<undefined: " + u.Reason + ">"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

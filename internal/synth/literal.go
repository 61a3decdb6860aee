package synth

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/funvibe/octbridge/internal/value"
)

// literalPrinter renders values as interpreter source literals.
type literalPrinter struct {
	buf bytes.Buffer
}

// Literal renders v as an interpreter expression that evaluates to v.
// Undefined values have no literal form.
func Literal(v value.Value) (string, error) {
	p := &literalPrinter{}
	if err := p.print(v); err != nil {
		return "", err
	}
	return p.buf.String(), nil
}

func (p *literalPrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *literalPrinter) print(v value.Value) error {
	if isNil(v) {
		return errNil
	}
	switch v := v.(type) {
	case *value.Scalar:
		p.write(formatNumber(v.Value))
	case *value.Boolean:
		p.write(strconv.FormatBool(v.Value))
	case *value.Text:
		p.write(quote(v.Value))
	case *value.Complex:
		p.write("complex(")
		p.write(formatNumber(real(v.Value)))
		p.write(", ")
		p.write(formatNumber(imag(v.Value)))
		p.write(")")
	case *value.Strings:
		if len(v.Values) == 0 {
			p.write(`""`)
			return nil
		}
		p.write("char(")
		for i, s := range v.Values {
			if i > 0 {
				p.write(", ")
			}
			p.write(quote(s))
		}
		p.write(")")
	case *value.Matrix:
		return p.printMatrix(v)
	case *value.Cell:
		return p.printCell(v)
	case *value.Undefined:
		return errUndefined
	default:
		return fmt.Errorf("unsupported value kind %s", v.Kind())
	}
	return nil
}

func (p *literalPrinter) printMatrix(m *value.Matrix) error {
	if _, err := value.NewMatrix(m.Rows); err != nil {
		return err
	}
	rows, cols := m.Dims()
	switch {
	case rows == 0:
		p.write("[]")
		return nil
	case cols == 0:
		p.write("zeros(" + strconv.Itoa(rows) + ", 0)")
		return nil
	}
	p.write("[")
	for i, row := range m.Rows {
		if i > 0 {
			p.write("; ")
		}
		for j, x := range row {
			if j > 0 {
				p.write(", ")
			}
			p.write(formatNumber(x))
		}
	}
	p.write("]")
	return nil
}

func (p *literalPrinter) printCell(c *value.Cell) error {
	if _, err := value.NewCell(c.Rows); err != nil {
		return err
	}
	rows, cols := c.Dims()
	if rows == 0 || cols == 0 {
		p.write("{}")
		return nil
	}
	p.write("{")
	for i, row := range c.Rows {
		if i > 0 {
			p.write("; ")
		}
		for j, elem := range row {
			if j > 0 {
				p.write(", ")
			}
			if err := p.print(elem); err != nil {
				return fmt.Errorf("cell element (%d,%d): %w", i+1, j+1, err)
			}
		}
	}
	p.write("}")
	return nil
}

// isNil reports a nil interface or a nil pointer to one of the variants.
func isNil(v value.Value) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// formatNumber prints the shortest decimal that reads back as x.
func formatNumber(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Inf"
	case math.IsInf(x, -1):
		return "-Inf"
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}

// quote produces a double-quoted literal. Backslash escapes are understood
// inside double quotes, so every control character is written as one.
func quote(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '\\':
			buf.WriteString(`\\`)
		case '"':
			buf.WriteString(`\"`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		case '\a':
			buf.WriteString(`\a`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\v':
			buf.WriteString(`\v`)
		default:
			if ch < 0x20 || ch == 0x7f {
				fmt.Fprintf(&buf, `\x%02x`, ch)
				continue
			}
			buf.WriteByte(ch)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

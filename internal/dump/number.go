package dump

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses one numeric token as the interpreter prints it:
// integers, decimals, leading-dot decimals, e/E/d/D exponents, Inf, NaN
// and NA, each optionally signed.
func ParseNumber(tok string) (float64, bool) {
	if tok == "" {
		return 0, false
	}
	sign := 1.0
	body := tok
	switch body[0] {
	case '+':
		body = body[1:]
	case '-':
		sign = -1
		body = body[1:]
	}

	switch body {
	case "Inf", "inf":
		return math.Inf(int(sign)), true
	case "NaN", "nan", "NA":
		return math.NaN(), true
	}

	if !scanDecimal(body) {
		return 0, false
	}
	body = strings.Map(func(r rune) rune {
		if r == 'd' || r == 'D' {
			return 'e'
		}
		return r
	}, body)
	f, err := strconv.ParseFloat(body, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return sign * f, true
}

// scanDecimal accepts digits [. digits] | . digits, followed by an optional
// exponent. No sign, no hex, no underscores.
func scanDecimal(s string) bool {
	i := 0
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && strings.IndexByte("eEdD", s[i]) >= 0 {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

// ParseComplex parses "a + bi", "a - bi", "bi" (i or j suffix). Spaces
// around the sign are optional.
func ParseComplex(s string) (complex128, bool) {
	fields := strings.Fields(s)
	switch {
	case len(fields) == 1:
	case len(fields) == 2 && (fields[1][0] == '+' || fields[1][0] == '-'):
	case len(fields) == 3 && (fields[1] == "+" || fields[1] == "-"):
	default:
		return 0, false
	}
	s = strings.Join(fields, "")
	if len(s) < 2 {
		return 0, false
	}
	last := s[len(s)-1]
	if last != 'i' && last != 'j' {
		return 0, false
	}
	s = s[:len(s)-1]

	split := -1
	for k := len(s) - 1; k > 0; k-- {
		if s[k] != '+' && s[k] != '-' {
			continue
		}
		if prev := s[k-1]; strings.IndexByte("eEdD", prev) >= 0 && k >= 2 && (isDigit(s[k-2]) || s[k-2] == '.') {
			continue
		}
		split = k
		break
	}

	if split < 0 {
		im, ok := ParseNumber(s)
		if !ok {
			return 0, false
		}
		return complex(0, im), true
	}
	re, ok := ParseNumber(s[:split])
	if !ok {
		return 0, false
	}
	im, ok := ParseNumber(s[split:])
	if !ok {
		return 0, false
	}
	return complex(re, im), true
}

// splitTokens splits a matrix row on whitespace and commas.
func splitTokens(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

// parseRow parses every token of a row, failing on the first non-number.
func parseRow(line string) ([]float64, bool) {
	toks := splitTokens(line)
	if len(toks) == 0 {
		return nil, false
	}
	row := make([]float64, len(toks))
	for i, tok := range toks {
		f, ok := ParseNumber(tok)
		if !ok {
			return nil, false
		}
		row[i] = f
	}
	return row, true
}

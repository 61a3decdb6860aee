package value

import "math"

// Equal performs a deep structural comparison. NaN equals NaN so that two
// parses of the same dump compare equal.
func Equal(a, b Value) bool {
	return equal(a, b, floatsEqual)
}

// EqualApprox is Equal with floats compared within a relative tolerance.
func EqualApprox(a, b Value, tol float64) bool {
	return equal(a, b, func(x, y float64) bool {
		if floatsEqual(x, y) {
			return true
		}
		return math.Abs(x-y) <= tol*math.Max(math.Abs(x), math.Abs(y))
	})
}

func equal(a, b Value, eq func(x, y float64) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch aVal := a.(type) {
	case *Scalar:
		bVal := b.(*Scalar)
		return eq(aVal.Value, bVal.Value)
	case *Complex:
		bVal := b.(*Complex)
		return eq(real(aVal.Value), real(bVal.Value)) && eq(imag(aVal.Value), imag(bVal.Value))
	case *Boolean:
		return aVal.Value == b.(*Boolean).Value
	case *Text:
		return aVal.Value == b.(*Text).Value
	case *Strings:
		bVal := b.(*Strings)
		if len(aVal.Values) != len(bVal.Values) {
			return false
		}
		for i := range aVal.Values {
			if aVal.Values[i] != bVal.Values[i] {
				return false
			}
		}
		return true
	case *Matrix:
		bVal := b.(*Matrix)
		ar, ac := aVal.Dims()
		br, bc := bVal.Dims()
		if ar != br || ac != bc {
			return false
		}
		for i := range aVal.Rows {
			if len(aVal.Rows[i]) != len(bVal.Rows[i]) {
				return false
			}
			for j := range aVal.Rows[i] {
				if !eq(aVal.Rows[i][j], bVal.Rows[i][j]) {
					return false
				}
			}
		}
		return true
	case *Cell:
		bVal := b.(*Cell)
		ar, ac := aVal.Dims()
		br, bc := bVal.Dims()
		if ar != br || ac != bc {
			return false
		}
		for i := range aVal.Rows {
			if len(aVal.Rows[i]) != len(bVal.Rows[i]) {
				return false
			}
			for j := range aVal.Rows[i] {
				if !equal(aVal.Rows[i][j], bVal.Rows[i][j], eq) {
					return false
				}
			}
		}
		return true
	case *Undefined:
		bVal := b.(*Undefined)
		return aVal.Raw == bVal.Raw && aVal.Reason == bVal.Reason
	}
	return false
}

func floatsEqual(x, y float64) bool {
	if math.IsNaN(x) && math.IsNaN(y) {
		return true
	}
	return x == y
}

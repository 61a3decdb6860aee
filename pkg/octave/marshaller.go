package octave

import (
	"fmt"
	"math"
	"reflect"

	"github.com/funvibe/octbridge/internal/value"
)

var valueType = reflect.TypeOf((*value.Value)(nil)).Elem()

// Marshaller handles conversion between Go and interpreter values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a Value. Numbers become Scalars, numeric
// slices row vectors, slices of numeric slices matrices, []string a
// Strings value and []any a one-row Cell. nil is the empty matrix.
func (m *Marshaller) ToValue(val any) (value.Value, error) {
	if val == nil {
		return &value.Matrix{}, nil
	}
	if v, ok := val.(value.Value); ok {
		return v, nil
	}

	v := reflect.ValueOf(val)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return &value.Matrix{}, nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &value.Scalar{Value: float64(v.Int())}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &value.Scalar{Value: float64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &value.Scalar{Value: v.Float()}, nil
	case reflect.Complex64, reflect.Complex128:
		return &value.Complex{Value: v.Complex()}, nil
	case reflect.Bool:
		return &value.Boolean{Value: v.Bool()}, nil
	case reflect.String:
		return &value.Text{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		return m.sliceToValue(v)
	}
	return nil, fmt.Errorf("unsupported Go type %s", v.Type())
}

func (m *Marshaller) sliceToValue(v reflect.Value) (value.Value, error) {
	elem := v.Type().Elem()
	switch {
	case isNumeric(elem.Kind()):
		return value.RowVector(floats(v)...), nil
	case elem.Kind() == reflect.String:
		rows := make([]string, v.Len())
		for i := range rows {
			rows[i] = v.Index(i).String()
		}
		return &value.Strings{Values: rows}, nil
	case (elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array) && isNumeric(elem.Elem().Kind()):
		rows := make([][]float64, v.Len())
		for i := range rows {
			rows[i] = floats(v.Index(i))
		}
		mat, err := value.NewMatrix(rows)
		if err != nil {
			return nil, err
		}
		return mat, nil
	case elem.Kind() == reflect.Slice || elem.Kind() == reflect.Array:
		rows := make([][]value.Value, v.Len())
		for i := range rows {
			row, err := m.values(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			rows[i] = row
		}
		cell, err := value.NewCell(rows)
		if err != nil {
			return nil, err
		}
		return cell, nil
	}

	row, err := m.values(v)
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return &value.Cell{}, nil
	}
	return &value.Cell{Rows: [][]value.Value{row}}, nil
}

func (m *Marshaller) values(v reflect.Value) ([]value.Value, error) {
	out := make([]value.Value, v.Len())
	for i := range out {
		el, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i+1, err)
		}
		out[i] = el
	}
	return out, nil
}

func floats(v reflect.Value) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		el := v.Index(i)
		switch {
		case el.CanInt():
			out[i] = float64(el.Int())
		case el.CanUint():
			out[i] = float64(el.Uint())
		default:
			out[i] = el.Float()
		}
	}
	return out
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// Decode stores v in the variable target points to. Integer targets only
// accept integral Scalars; slices accept vectors, slices of slices accept
// matrices and cells. Undefined values never decode except into a Value.
func (m *Marshaller) Decode(v value.Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	return m.decode(v, rv.Elem())
}

func (m *Marshaller) decode(v value.Value, out reflect.Value) error {
	if v == nil {
		return fmt.Errorf("cannot decode nil value")
	}
	if out.Type() == valueType {
		out.Set(reflect.ValueOf(v))
		return nil
	}
	if u, ok := v.(*value.Undefined); ok {
		return fmt.Errorf("cannot decode undefined value (%s)", u.Reason)
	}

	mismatch := func() error {
		return fmt.Errorf("cannot decode %s into %s", v.Kind(), out.Type())
	}

	switch out.Kind() {
	case reflect.Interface:
		if out.NumMethod() != 0 {
			return mismatch()
		}
		natural, err := m.natural(v)
		if err != nil {
			return err
		}
		out.Set(reflect.ValueOf(natural))
		return nil

	case reflect.Float32, reflect.Float64:
		s, ok := v.(*value.Scalar)
		if !ok {
			return mismatch()
		}
		out.SetFloat(s.Value)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		s, ok := v.(*value.Scalar)
		if !ok {
			return mismatch()
		}
		if !isIntegral(s.Value) || s.Value < math.MinInt64 || s.Value >= math.MaxInt64 || out.OverflowInt(int64(s.Value)) {
			return fmt.Errorf("cannot decode %s into %s", formatScalar(s.Value), out.Type())
		}
		out.SetInt(int64(s.Value))
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		s, ok := v.(*value.Scalar)
		if !ok {
			return mismatch()
		}
		if !isIntegral(s.Value) || s.Value < 0 || s.Value >= math.MaxUint64 || out.OverflowUint(uint64(s.Value)) {
			return fmt.Errorf("cannot decode %s into %s", formatScalar(s.Value), out.Type())
		}
		out.SetUint(uint64(s.Value))
		return nil

	case reflect.Complex64, reflect.Complex128:
		switch c := v.(type) {
		case *value.Complex:
			out.SetComplex(c.Value)
		case *value.Scalar:
			out.SetComplex(complex(c.Value, 0))
		default:
			return mismatch()
		}
		return nil

	case reflect.Bool:
		b, ok := v.(*value.Boolean)
		if !ok {
			return mismatch()
		}
		out.SetBool(b.Value)
		return nil

	case reflect.String:
		t, ok := v.(*value.Text)
		if !ok {
			return mismatch()
		}
		out.SetString(t.Value)
		return nil

	case reflect.Slice:
		return m.decodeSlice(v, out, mismatch)
	}
	return mismatch()
}

func (m *Marshaller) decodeSlice(v value.Value, out reflect.Value, mismatch func() error) error {
	elem := out.Type().Elem()
	nested := elem.Kind() == reflect.Slice && elem != valueType

	switch val := v.(type) {
	case *value.Text:
		if elem.Kind() != reflect.String {
			return mismatch()
		}
		s := reflect.MakeSlice(out.Type(), 1, 1)
		s.Index(0).SetString(val.Value)
		out.Set(s)
		return nil

	case *value.Strings:
		if elem.Kind() != reflect.String {
			return mismatch()
		}
		s := reflect.MakeSlice(out.Type(), len(val.Values), len(val.Values))
		for i, row := range val.Values {
			s.Index(i).SetString(row)
		}
		out.Set(s)
		return nil

	case *value.Matrix:
		if nested {
			return m.fill(out, len(val.Rows), func(i int, dst reflect.Value) error {
				return m.fill(dst, len(val.Rows[i]), func(j int, cell reflect.Value) error {
					return m.decode(&value.Scalar{Value: val.Rows[i][j]}, cell)
				})
			})
		}
		r, _ := val.Dims()
		if r == 0 {
			out.Set(reflect.MakeSlice(out.Type(), 0, 0))
			return nil
		}
		xs, ok := val.Vector()
		if !ok {
			return fmt.Errorf("cannot decode a non-vector matrix into %s", out.Type())
		}
		return m.fill(out, len(xs), func(i int, dst reflect.Value) error {
			return m.decode(&value.Scalar{Value: xs[i]}, dst)
		})

	case *value.Cell:
		if nested {
			return m.fill(out, len(val.Rows), func(i int, dst reflect.Value) error {
				return m.fill(dst, len(val.Rows[i]), func(j int, cell reflect.Value) error {
					return m.decode(val.Rows[i][j], cell)
				})
			})
		}
		var flat []value.Value
		rows, cols := val.Dims()
		if rows > 1 && cols > 1 {
			return fmt.Errorf("cannot decode a %dx%d cell into %s", rows, cols, out.Type())
		}
		for _, row := range val.Rows {
			flat = append(flat, row...)
		}
		return m.fill(out, len(flat), func(i int, dst reflect.Value) error {
			return m.decode(flat[i], dst)
		})
	}
	return mismatch()
}

// fill makes out a slice of length n and decodes each element with f.
func (m *Marshaller) fill(out reflect.Value, n int, f func(i int, dst reflect.Value) error) error {
	s := reflect.MakeSlice(out.Type(), n, n)
	for i := 0; i < n; i++ {
		if err := f(i, s.Index(i)); err != nil {
			return fmt.Errorf("element %d: %w", i+1, err)
		}
	}
	out.Set(s)
	return nil
}

// natural returns the plain Go representation used for interface targets.
func (m *Marshaller) natural(v value.Value) (any, error) {
	switch val := v.(type) {
	case *value.Scalar:
		return val.Value, nil
	case *value.Complex:
		return val.Value, nil
	case *value.Boolean:
		return val.Value, nil
	case *value.Text:
		return val.Value, nil
	case *value.Strings:
		return append([]string(nil), val.Values...), nil
	case *value.Matrix:
		return val.Copy(), nil
	case *value.Cell:
		rows := make([][]any, len(val.Rows))
		for i, row := range val.Rows {
			rows[i] = make([]any, len(row))
			for j, el := range row {
				n, err := m.natural(el)
				if err != nil {
					return nil, err
				}
				rows[i][j] = n
			}
		}
		return rows, nil
	case *value.Undefined:
		return nil, fmt.Errorf("cannot decode undefined value (%s)", val.Reason)
	}
	return nil, fmt.Errorf("unsupported value kind %s", v.Kind())
}

func isIntegral(x float64) bool {
	return !math.IsInf(x, 0) && !math.IsNaN(x) && math.Trunc(x) == x
}

func formatScalar(x float64) string {
	return (&value.Scalar{Value: x}).Inspect()
}

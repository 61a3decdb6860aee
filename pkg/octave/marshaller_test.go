package octave_test

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/octbridge/pkg/octave"
)

func TestToValue(t *testing.T) {
	m := octave.NewMarshaller()
	tests := []struct {
		name string
		in   any
		want octave.Value
	}{
		{"int", 42, &octave.Scalar{Value: 42}},
		{"uint8", uint8(7), &octave.Scalar{Value: 7}},
		{"float", 2.5, &octave.Scalar{Value: 2.5}},
		{"bool", true, &octave.Boolean{Value: true}},
		{"string", "hi", &octave.Text{Value: "hi"}},
		{"complex", complex(1, -2), &octave.Complex{Value: complex(1, -2)}},
		{"nil", nil, &octave.Matrix{}},
		{"float slice", []float64{1, 2, 3}, &octave.Matrix{Rows: [][]float64{{1, 2, 3}}}},
		{"int array", [2]int{4, 5}, &octave.Matrix{Rows: [][]float64{{4, 5}}}},
		{"grid", [][]int{{1, 2}, {3, 4}}, &octave.Matrix{Rows: [][]float64{{1, 2}, {3, 4}}}},
		{"strings", []string{"ab", "cd"}, &octave.Strings{Values: []string{"ab", "cd"}}},
		{"mixed", []any{1, "x"}, &octave.Cell{Rows: [][]octave.Value{{&octave.Scalar{Value: 1}, &octave.Text{Value: "x"}}}}},
		{"mixed grid", [][]any{{1}, {true}}, &octave.Cell{Rows: [][]octave.Value{{&octave.Scalar{Value: 1}}, {&octave.Boolean{Value: true}}}}},
		{"pointer", ptr(3.0), &octave.Scalar{Value: 3}},
		{"value", &octave.Text{Value: "as is"}, &octave.Text{Value: "as is"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.ToValue(tt.in)
			if err != nil {
				t.Fatalf("ToValue failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ToValue mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestToValue_Errors(t *testing.T) {
	m := octave.NewMarshaller()
	for _, in := range []any{
		map[string]int{"a": 1},
		struct{ A int }{1},
		[][]float64{{1, 2}, {3}},
		[]any{make(chan int)},
	} {
		if v, err := m.ToValue(in); err == nil {
			t.Errorf("ToValue(%T) = %s, want error", in, v.Inspect())
		}
	}
}

func TestDecode(t *testing.T) {
	m := octave.NewMarshaller()
	row := &octave.Matrix{Rows: [][]float64{{1, 2, 3}}}
	grid := &octave.Matrix{Rows: [][]float64{{1, 2}, {3, 4}}}
	cell := &octave.Cell{Rows: [][]octave.Value{{&octave.Scalar{Value: 1}, &octave.Text{Value: "x"}}}}

	var f float64
	if err := m.Decode(&octave.Scalar{Value: 2.5}, &f); err != nil || f != 2.5 {
		t.Errorf("float64: %v, %v", f, err)
	}

	var n int32
	if err := m.Decode(&octave.Scalar{Value: -7}, &n); err != nil || n != -7 {
		t.Errorf("int32: %v, %v", n, err)
	}

	var b bool
	if err := m.Decode(&octave.Boolean{Value: true}, &b); err != nil || !b {
		t.Errorf("bool: %v, %v", b, err)
	}

	var s string
	if err := m.Decode(&octave.Text{Value: "hi"}, &s); err != nil || s != "hi" {
		t.Errorf("string: %q, %v", s, err)
	}

	var z complex128
	if err := m.Decode(&octave.Scalar{Value: 3}, &z); err != nil || z != complex(3, 0) {
		t.Errorf("complex from scalar: %v, %v", z, err)
	}

	var xs []float64
	if err := m.Decode(row, &xs); err != nil {
		t.Fatalf("[]float64: %v", err)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, xs); diff != "" {
		t.Errorf("[]float64 mismatch (-want +got):\n%s", diff)
	}

	var ints [][]int
	if err := m.Decode(grid, &ints); err != nil {
		t.Fatalf("[][]int: %v", err)
	}
	if diff := cmp.Diff([][]int{{1, 2}, {3, 4}}, ints); diff != "" {
		t.Errorf("[][]int mismatch (-want +got):\n%s", diff)
	}

	var names []string
	if err := m.Decode(&octave.Strings{Values: []string{"ab", "cd"}}, &names); err != nil {
		t.Fatalf("[]string: %v", err)
	}
	if diff := cmp.Diff([]string{"ab", "cd"}, names); diff != "" {
		t.Errorf("[]string mismatch (-want +got):\n%s", diff)
	}

	var cells [][]octave.Value
	if err := m.Decode(cell, &cells); err != nil {
		t.Fatalf("[][]Value: %v", err)
	}
	if diff := cmp.Diff(cell.Rows, cells); diff != "" {
		t.Errorf("[][]Value mismatch (-want +got):\n%s", diff)
	}

	var anything any
	if err := m.Decode(cell, &anything); err != nil {
		t.Fatalf("any: %v", err)
	}
	if diff := cmp.Diff([][]any{{1.0, "x"}}, anything); diff != "" {
		t.Errorf("any mismatch (-want +got):\n%s", diff)
	}

	var raw octave.Value
	undefined := &octave.Undefined{Raw: "?", Reason: "unrecognized payload"}
	if err := m.Decode(undefined, &raw); err != nil || raw != octave.Value(undefined) {
		t.Errorf("Value: %v, %v", raw, err)
	}
}

func TestDecode_Errors(t *testing.T) {
	m := octave.NewMarshaller()
	grid := &octave.Matrix{Rows: [][]float64{{1, 2}, {3, 4}}}

	tests := []struct {
		name   string
		v      octave.Value
		target any
		want   string
	}{
		{"fractional int", &octave.Scalar{Value: 2.5}, new(int), "cannot decode 2.5"},
		{"overflow", &octave.Scalar{Value: 300}, new(int8), "cannot decode 300"},
		{"huge", &octave.Scalar{Value: 1e30}, new(int64), "cannot decode"},
		{"negative uint", &octave.Scalar{Value: -1}, new(uint), "cannot decode -1"},
		{"nan int", &octave.Scalar{Value: math.NaN()}, new(int), "cannot decode"},
		{"matrix to float", grid, new(float64), "cannot decode matrix"},
		{"one by one is not scalar", &octave.Matrix{Rows: [][]float64{{1}}}, new(float64), "cannot decode matrix"},
		{"grid to vector", grid, new([]float64), "non-vector"},
		{"text to bool", &octave.Text{Value: "true"}, new(bool), "cannot decode text"},
		{"undefined", &octave.Undefined{Reason: "empty payload"}, new(float64), "undefined"},
		{"not a pointer", &octave.Scalar{Value: 1}, 1.0, "non-nil pointer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.Decode(tt.v, tt.target)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

package dump

import (
	"math"
	"testing"

	"github.com/funvibe/octbridge/internal/store"
	"github.com/funvibe/octbridge/internal/value"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func mustValue(t *testing.T, s *store.Store, name string) value.Value {
	t.Helper()
	v, ok := s.Value(name)
	if !ok {
		t.Fatalf("variable %q missing; have %v", name, s.Names())
	}
	return v
}

func assertValue(t *testing.T, s *store.Store, name string, want value.Value) {
	t.Helper()
	got := mustValue(t, s, name)
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
	}
}

func assertUndefined(t *testing.T, s *store.Store, name string) {
	t.Helper()
	if got := mustValue(t, s, name); got.Kind() != value.UndefinedKind {
		t.Errorf("%s = %s, want undefined", name, got.Inspect())
	}
}

func TestParseDisplay_ScalarAndMatrix(t *testing.T) {
	s := ParseDisplay("x = 5\n\ny =\n\n   1   2\n   3   4\n\n")

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	assertValue(t, s, "x", &value.Scalar{Value: 5})
	assertValue(t, s, "y", &value.Matrix{Rows: [][]float64{{1, 2}, {3, 4}}})
}

func TestParseDisplay_ScalarLiterals(t *testing.T) {
	tests := []struct {
		lit  string
		want float64
	}{
		{"5", 5},
		{"-3", -3},
		{"3.141592653589793", math.Pi},
		{"-2.5000e-03", -2.5e-3},
		{"1.0000e+10", 1e10},
		{"Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
		{"NaN", math.NaN()},
		{"NA", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.lit, func(t *testing.T) {
			s := ParseDisplay("x = " + tt.lit + "\n")
			assertValue(t, s, "x", &value.Scalar{Value: tt.want})
		})
	}
}

func TestParseDisplay_Shapes(t *testing.T) {
	text := `b = true
f = false
z = 3 - 4i
s = "say \"hi\""
q = 'it''s'
e = [](0x0)
ec = {}(0x0)
v = [1, 2; 3, 4]
row =

   1   2   3

col =

   1
   2
   3

names =

"ab"
"cd"

`
	s := ParseDisplay(text)

	assertValue(t, s, "b", &value.Boolean{Value: true})
	assertValue(t, s, "f", &value.Boolean{Value: false})
	assertValue(t, s, "z", &value.Complex{Value: complex(3, -4)})
	assertValue(t, s, "s", &value.Text{Value: `say "hi"`})
	assertValue(t, s, "q", &value.Text{Value: "it's"})
	assertValue(t, s, "e", &value.Matrix{})
	assertValue(t, s, "ec", &value.Cell{})
	assertValue(t, s, "v", &value.Matrix{Rows: [][]float64{{1, 2}, {3, 4}}})
	assertValue(t, s, "row", value.RowVector(1, 2, 3))
	assertValue(t, s, "col", value.ColumnVector(1, 2, 3))
	assertValue(t, s, "names", &value.Strings{Values: []string{"ab", "cd"}})
}

func TestParseDisplay_RaggedIsUndefined(t *testing.T) {
	s := ParseDisplay("m =\n\n   1   2\n   3\n\nok = 1\n")

	assertUndefined(t, s, "m")
	assertValue(t, s, "ok", &value.Scalar{Value: 1})
	if diff := cmp.Diff([]string{"m"}, s.Degraded()); diff != "" {
		t.Errorf("Degraded() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDisplay_EmptyPayloadIsUndefined(t *testing.T) {
	s := ParseDisplay("x =\n\ny = 2\n")

	assertUndefined(t, s, "x")
	assertValue(t, s, "y", &value.Scalar{Value: 2})
}

func TestParseDisplay_UnrecognizedPayload(t *testing.T) {
	text := "st =\n\n  scalar structure containing the fields:\n\n    a = 1\n\n"
	s := ParseDisplay(text)

	assertUndefined(t, s, "st")
	u := mustValue(t, s, "st").(*value.Undefined)
	if u.Raw == "" {
		t.Error("Undefined.Raw is empty, want the unparsed payload")
	}
	if _, ok := s.Value("a"); ok {
		t.Error("indented field surfaced as a top-level variable")
	}
}

func TestParseDisplay_InvalidHeaderIsSkipped(t *testing.T) {
	s := ParseDisplay("1abc = 5\n   7\ny = 2\n")

	if diff := cmp.Diff([]string{"y"}, s.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDisplay_Empty(t *testing.T) {
	for _, text := range []string{"", "\n\n", "   \n"} {
		if s := ParseDisplay(text); s.Len() != 0 {
			t.Errorf("ParseDisplay(%q).Len() = %d, want 0", text, s.Len())
		}
	}
}

func TestParseDisplay_LaterBlockWins(t *testing.T) {
	s := ParseDisplay("x = 1\nx = 2\n")
	assertValue(t, s, "x", &value.Scalar{Value: 2})
}

func TestParseDisplay_DeclaredDimensions(t *testing.T) {
	s := ParseDisplay("ok = (1x2)\n\n   1   2\n\nbad = (2x2)\n\n   1   2\n\n")

	assertValue(t, s, "ok", value.RowVector(1, 2))
	assertUndefined(t, s, "bad")
}

func TestParseDisplay_ColumnChunks(t *testing.T) {
	text := `p =

 Columns 1 through 13:

    2    3    5    7   11   13   17   19   23   29   31   37   41

 Columns 14 through 25:

   43   47   53   59   61   67   71   73   79   83   89   97

`
	s := ParseDisplay(text)

	want := value.RowVector(2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71, 73, 79, 83, 89, 97)
	assertValue(t, s, "p", want)
}

func TestParseDisplay_ColumnChunkGap(t *testing.T) {
	text := "p =\n\n Columns 1 through 2:\n\n   1   2\n\n Columns 4 and 5:\n\n   4   5\n\n"
	assertUndefined(t, ParseDisplay(text), "p")
}

func TestParseDisplay_ScaleFactor(t *testing.T) {
	text := "a =\n\n   1.0e+03  *\n\n   1.0000   2.5000\n   3.0000   4.0000\n\n"
	s := ParseDisplay(text)

	assertValue(t, s, "a", &value.Matrix{Rows: [][]float64{{1000, 2500}, {3000, 4000}}})
}

func TestParseDisplay_Cell(t *testing.T) {
	text := `c =
{
  [1,1] = 1
  [2,1] =

     1   2
     3   4

  [1,2] = abc
  [2,2] = "quoted"
}

`
	s := ParseDisplay(text)

	want := &value.Cell{Rows: [][]value.Value{
		{&value.Scalar{Value: 1}, &value.Text{Value: "abc"}},
		{&value.Matrix{Rows: [][]float64{{1, 2}, {3, 4}}}, &value.Text{Value: "quoted"}},
	}}
	assertValue(t, s, "c", want)
}

func TestParseDisplay_CellMissingElement(t *testing.T) {
	text := "c =\n{\n  [1,1] = 1\n  [2,2] = 2\n}\n\n"
	assertUndefined(t, ParseDisplay(text), "c")
}

func TestParse_StripsOutputBeforeMarker(t *testing.T) {
	raw := "hello from the script\nans = 3\n__octbridge_dump__\nx = 1\n\n"
	s := Parse(raw)

	if diff := cmp.Diff([]string{"x"}, s.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if s.Raw() != raw {
		t.Errorf("Raw() = %q, want the unmodified input", s.Raw())
	}
}

func TestParse_CRLF(t *testing.T) {
	s := Parse("x = 5\r\n\r\ny =\r\n\r\n   1   2\r\n\r\n")

	assertValue(t, s, "x", &value.Scalar{Value: 5})
	assertValue(t, s, "y", value.RowVector(1, 2))
}

func TestParse_Idempotent(t *testing.T) {
	text := "x = 5\n\ny =\n\n   1   2\n   3   4\n\nbad =\n\n   1\n   2   3\n\n"
	first, second := Parse(text), Parse(text)

	if diff := cmp.Diff(first.Names(), second.Names()); diff != "" {
		t.Fatalf("Names() differ between parses:\n%s", diff)
	}
	for _, name := range first.Names() {
		a, _ := first.Value(name)
		b, _ := second.Value(name)
		if !value.Equal(a, b) {
			t.Errorf("%s: %s != %s", name, a.Inspect(), b.Inspect())
		}
	}
}

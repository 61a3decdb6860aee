package dump

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/octbridge/internal/value"
)

const cellElementName = "<cell-element>"

// maxElements bounds arrays whose size is declared but not backed by one
// data line per element: diagonal matrices and ranges.
const maxElements = 1 << 24

// saveReader walks the interpreter's text save format line by line.
// Every variable starts with "# name: <n>" and "# type: <t>"; the lines
// that follow depend on the type.
type saveReader struct {
	lines []string
	pos   int
}

func parseSave(text string) map[string]value.Value {
	r := &saveReader{lines: strings.Split(text, "\n")}
	vars := make(map[string]value.Value)
	for !r.done() {
		if _, ok := r.peekHeader("name"); !ok {
			r.pos++
			continue
		}
		name, v, ok := r.readVariable()
		if !ok || !identRe.MatchString(name) {
			continue
		}
		vars[name] = v
	}
	return vars
}

func (r *saveReader) done() bool { return r.pos >= len(r.lines) }

// remaining is the number of unread lines.
func (r *saveReader) remaining() int { return len(r.lines) - r.pos }

// product multiplies declared sizes and reports false on overflow.
func product(sizes ...int) (int, bool) {
	for _, n := range sizes {
		if n == 0 {
			return 0, true
		}
	}
	p := 1
	for _, n := range sizes {
		if p > math.MaxInt/n {
			return 0, false
		}
		p *= n
	}
	return p, true
}

// peekHeader returns the value of a "# key: value" line at the cursor.
func (r *saveReader) peekHeader(key string) (string, bool) {
	if r.done() {
		return "", false
	}
	prefix := "# " + key + ":"
	line := strings.TrimRight(r.lines[r.pos], " \t")
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(line[len(prefix):]), true
}

func (r *saveReader) header(key string) (string, bool) {
	v, ok := r.peekHeader(key)
	if ok {
		r.pos++
	}
	return v, ok
}

func (r *saveReader) intHeader(key string) (int, bool) {
	v, ok := r.header(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// dataLine returns the next non-blank line.
func (r *saveReader) dataLine() (string, bool) {
	for !r.done() {
		line := r.lines[r.pos]
		if strings.TrimSpace(line) == "" {
			r.pos++
			continue
		}
		if strings.HasPrefix(line, "# name:") {
			return "", false
		}
		r.pos++
		return line, true
	}
	return "", false
}

// skipToNextVariable discards lines up to the next "# name:" header.
func (r *saveReader) skipToNextVariable() {
	for !r.done() {
		if _, ok := r.peekHeader("name"); ok {
			return
		}
		r.pos++
	}
}

// readVariable reads one "# name:" / "# type:" block. It reports false
// when the header itself is malformed.
func (r *saveReader) readVariable() (string, value.Value, bool) {
	name, _ := r.header("name")
	typ, ok := r.header("type")
	if !ok {
		r.skipToNextVariable()
		return name, nil, false
	}
	start := r.pos
	v := r.readTyped(typ)
	if u, ok := v.(*value.Undefined); ok && u.Raw == "" {
		u.Raw = strings.Join(trimBlank(r.lines[start:r.pos]), "\n")
	}
	return name, v, true
}

func (r *saveReader) undefined(format string, args ...any) value.Value {
	return &value.Undefined{Reason: fmt.Sprintf(format, args...)}
}

func (r *saveReader) readTyped(typ string) value.Value {
	switch {
	case typ == "scalar" || typ == "float scalar" || isIntType(typ, "scalar"):
		return r.readScalar()
	case typ == "bool":
		line, ok := r.dataLine()
		if !ok {
			return r.undefined("missing bool data")
		}
		f, ok := ParseNumber(strings.TrimSpace(line))
		if !ok {
			return r.undefined("invalid bool %q", line)
		}
		return &value.Boolean{Value: f != 0}
	case typ == "complex scalar" || typ == "float complex scalar":
		return r.readComplex()
	case typ == "matrix" || typ == "float matrix":
		return r.readMatrix()
	case typ == "diagonal matrix" || typ == "float diagonal matrix":
		return r.readDiagonal()
	case typ == "bool matrix" || isIntType(typ, "matrix"):
		return r.readNDArray()
	case typ == "range" || typ == "double_range":
		return r.readRange()
	case typ == "string" || typ == "sq_string":
		return r.readString()
	case typ == "null_matrix":
		return &value.Matrix{}
	case typ == "null_string" || typ == "null_sq_string":
		return &value.Text{}
	case typ == "cell":
		return r.readCell()
	case typ == "scalar struct" || typ == "struct":
		return r.readStruct()
	}
	r.skipToNextVariable()
	return r.undefined("unsupported type %q", typ)
}

var intTypes = []string{"int8", "int16", "int32", "int64", "uint8", "uint16", "uint32", "uint64"}

func isIntType(typ, shape string) bool {
	for _, it := range intTypes {
		if typ == it+" "+shape {
			return true
		}
	}
	return false
}

func (r *saveReader) readScalar() value.Value {
	line, ok := r.dataLine()
	if !ok {
		return r.undefined("missing scalar data")
	}
	f, ok := ParseNumber(strings.TrimSpace(line))
	if !ok {
		return r.undefined("invalid scalar %q", line)
	}
	return &value.Scalar{Value: f}
}

// parsePair reads "(re,im)".
func parsePair(s string) (complex128, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return 0, false
	}
	re, im, found := strings.Cut(s[1:len(s)-1], ",")
	if !found {
		return 0, false
	}
	x, ok1 := ParseNumber(strings.TrimSpace(re))
	y, ok2 := ParseNumber(strings.TrimSpace(im))
	return complex(x, y), ok1 && ok2
}

func (r *saveReader) readComplex() value.Value {
	line, ok := r.dataLine()
	if !ok {
		return r.undefined("missing complex data")
	}
	z, ok := parsePair(line)
	if !ok {
		return r.undefined("invalid complex %q", line)
	}
	return &value.Complex{Value: z}
}

func (r *saveReader) readMatrix() value.Value {
	if _, ok := r.peekHeader("ndims"); ok {
		return r.readNDArray()
	}
	rows, ok1 := r.intHeader("rows")
	cols, ok2 := r.intHeader("columns")
	if !ok1 || !ok2 {
		r.skipToNextVariable()
		return r.undefined("missing matrix dimensions")
	}
	if rows == 0 || cols == 0 {
		return &value.Matrix{}
	}
	if rows > r.remaining() {
		r.skipToNextVariable()
		return r.undefined("matrix declares %d rows, %d lines left", rows, r.remaining())
	}
	var grid [][]float64
	for i := 0; i < rows; i++ {
		line, ok := r.dataLine()
		if !ok {
			return r.undefined("matrix has %d of %d rows", i, rows)
		}
		row, ok := parseRow(line)
		if !ok {
			r.skipToNextVariable()
			return r.undefined("non-numeric matrix row %q", line)
		}
		if len(row) != cols {
			r.skipToNextVariable()
			return r.undefined("row %d has %d columns, want %d", i+1, len(row), cols)
		}
		grid = append(grid, row)
	}
	return &value.Matrix{Rows: grid}
}

func (r *saveReader) readDiagonal() value.Value {
	rows, ok1 := r.intHeader("rows")
	cols, ok2 := r.intHeader("columns")
	if !ok1 || !ok2 {
		r.skipToNextVariable()
		return r.undefined("missing matrix dimensions")
	}
	if rows == 0 || cols == 0 {
		return &value.Matrix{}
	}
	n := min(rows, cols)
	if total, ok := product(rows, cols); !ok || total > maxElements || n > r.remaining() {
		r.skipToNextVariable()
		return r.undefined("diagonal matrix of %dx%d is too large", rows, cols)
	}
	diag := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		line, ok := r.dataLine()
		if !ok {
			return r.undefined("diagonal has %d of %d entries", i, n)
		}
		f, ok := ParseNumber(strings.TrimSpace(line))
		if !ok {
			r.skipToNextVariable()
			return r.undefined("invalid diagonal entry %q", line)
		}
		diag = append(diag, f)
	}
	grid := make([][]float64, rows)
	for i := range grid {
		grid[i] = make([]float64, cols)
		if i < n {
			grid[i][i] = diag[i]
		}
	}
	return &value.Matrix{Rows: grid}
}

// readNDArray reads "# ndims: N", a dimensions line and the elements one
// per line in column-major order. Only two-dimensional arrays are kept.
func (r *saveReader) readNDArray() value.Value {
	ndims, ok := r.intHeader("ndims")
	if !ok {
		r.skipToNextVariable()
		return r.undefined("missing ndims")
	}
	line, ok := r.dataLine()
	if !ok {
		return r.undefined("missing dimensions")
	}
	dims := splitTokens(line)
	if len(dims) != ndims {
		r.skipToNextVariable()
		return r.undefined("dimensions %q do not match ndims %d", line, ndims)
	}
	sizes := make([]int, ndims)
	for i, d := range dims {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			r.skipToNextVariable()
			return r.undefined("invalid dimension %q", d)
		}
		sizes[i] = n
	}
	count, ok := product(sizes...)
	if !ok {
		r.skipToNextVariable()
		return r.undefined("dimensions %q overflow", line)
	}
	var elems []float64
	for len(elems) < count {
		line, ok := r.dataLine()
		if !ok {
			return r.undefined("array has %d of %d elements", len(elems), count)
		}
		row, ok := parseRow(line)
		if !ok {
			r.skipToNextVariable()
			return r.undefined("non-numeric element %q", line)
		}
		elems = append(elems, row...)
	}
	if ndims != 2 {
		return r.undefined("%d-dimensional arrays are not supported", ndims)
	}
	rows, cols := sizes[0], sizes[1]
	if rows == 0 || cols == 0 {
		return &value.Matrix{}
	}
	grid := make([][]float64, rows)
	for i := range grid {
		grid[i] = make([]float64, cols)
		for j := range grid[i] {
			grid[i][j] = elems[j*rows+i]
		}
	}
	return &value.Matrix{Rows: grid}
}

// readRange expands "base limit increment" into a row vector.
func (r *saveReader) readRange() value.Value {
	if !r.done() && strings.HasPrefix(r.lines[r.pos], "# base") {
		r.pos++
	}
	line, ok := r.dataLine()
	if !ok {
		return r.undefined("missing range data")
	}
	parts, ok := parseRow(line)
	if !ok || len(parts) < 3 || parts[2] == 0 {
		return r.undefined("invalid range %q", line)
	}
	base, limit, inc := parts[0], parts[1], parts[2]
	count := math.Floor((limit-base)/inc+1e-10) + 1
	switch {
	case math.IsNaN(count) || count > maxElements:
		return r.undefined("range %q is too large", line)
	case count <= 0:
		return &value.Matrix{}
	}
	row := make([]float64, int(count))
	for i := range row {
		row[i] = base + float64(i)*inc
	}
	return value.RowVector(row...)
}

// readString reads "# elements: N" followed by N rows, each introduced by
// "# length: L". A row may contain newlines, so L decides how many lines
// it spans.
func (r *saveReader) readString() value.Value {
	n, ok := r.intHeader("elements")
	if !ok {
		r.skipToNextVariable()
		return r.undefined("missing string elements")
	}
	if n > r.remaining() {
		r.skipToNextVariable()
		return r.undefined("string declares %d rows, %d lines left", n, r.remaining())
	}
	var rows []string
	for i := 0; i < n; i++ {
		length, ok := r.intHeader("length")
		if !ok {
			r.skipToNextVariable()
			return r.undefined("missing length of string row %d", i+1)
		}
		var sb strings.Builder
		for first := true; first || sb.Len() < length; first = false {
			if r.done() {
				return r.undefined("string row %d is truncated", i+1)
			}
			if !first {
				sb.WriteByte('\n')
			}
			sb.WriteString(r.lines[r.pos])
			r.pos++
		}
		s := sb.String()
		if len(s) > length {
			s = s[:length]
		}
		rows = append(rows, s)
	}
	switch len(rows) {
	case 0:
		return &value.Text{}
	case 1:
		return &value.Text{Value: rows[0]}
	}
	return &value.Strings{Values: rows}
}

// readCell reads "# rows", "# columns" and then rows*columns nested
// "<cell-element>" variables in column-major order.
func (r *saveReader) readCell() value.Value {
	if _, ok := r.peekHeader("ndims"); ok {
		r.skipNested()
		return r.undefined("n-dimensional cells are not supported")
	}
	rows, ok1 := r.intHeader("rows")
	cols, ok2 := r.intHeader("columns")
	if !ok1 || !ok2 {
		r.skipToNextVariable()
		return r.undefined("missing cell dimensions")
	}
	if rows == 0 || cols == 0 {
		return &value.Cell{}
	}
	// Every element takes at least a name and a type line.
	if total, ok := product(rows, cols); !ok || total > r.remaining()/2 {
		r.skipNested()
		return r.undefined("cell declares %dx%d elements, %d lines left", rows, cols, r.remaining())
	}
	grid := make([][]value.Value, rows)
	for i := range grid {
		grid[i] = make([]value.Value, cols)
	}
	for k := 0; k < rows*cols; k++ {
		r.skipBlank()
		name, ok := r.peekHeader("name")
		if !ok || name != cellElementName {
			return r.undefined("cell has %d of %d elements", k, rows*cols)
		}
		_, v, ok := r.readVariable()
		if !ok {
			return r.undefined("malformed cell element %d", k+1)
		}
		grid[k%rows][k/rows] = v
	}
	return &value.Cell{Rows: grid}
}

// readStruct consumes the nested field variables of a struct so they do
// not surface as top-level variables. Structs are not a supported shape.
func (r *saveReader) readStruct() value.Value {
	if _, ok := r.header("ndims"); ok {
		r.dataLine()
	}
	n, ok := r.intHeader("length")
	if !ok {
		r.skipNested()
		return r.undefined("struct without field count")
	}
	for i := 0; i < n; i++ {
		r.skipBlank()
		if _, ok := r.peekHeader("name"); !ok {
			break
		}
		r.readVariable()
	}
	return r.undefined("structs are not supported")
}

// skipNested discards an unparsed body up to the next top-level looking
// header that is not a cell element.
func (r *saveReader) skipNested() {
	for !r.done() {
		if name, ok := r.peekHeader("name"); ok && name != cellElementName {
			return
		}
		r.pos++
	}
}

func (r *saveReader) skipBlank() {
	for !r.done() && strings.TrimSpace(r.lines[r.pos]) == "" {
		r.pos++
	}
}

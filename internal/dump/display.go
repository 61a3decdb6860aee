package dump

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/funvibe/octbridge/internal/value"
)

var (
	headerRe      = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=(.*)$`)
	annotationRe  = regexp.MustCompile(`^\((\d+)x(\d+)\)$`)
	emptyRe       = regexp.MustCompile(`^(\[\]|\{\})(?:\((\d+)x(\d+)\))?$`)
	columnsRe     = regexp.MustCompile(`^Columns?\s+(\d+)(?:\s+(?:through|to|and)\s+(\d+))?:?$`)
	scaleRe       = regexp.MustCompile(`^(\S+)\s*\*$`)
	cellElementRe = regexp.MustCompile(`^\[(\d+),(\d+)\]\s*=(.*)$`)
)

// block is one variable as printed by the display routine.
type block struct {
	name   string
	inline string
	lines  []string
	skip   bool
}

// splitBlocks cuts display output at header lines. A header is a line at
// column 0 of the form "<identifier> =<rest>"; blank lines do not end a
// block. A column-0 line that looks like an assignment but has no valid
// identifier opens a block that is dropped.
func splitBlocks(lines []string) []*block {
	var blocks []*block
	var cur *block
	for _, line := range lines {
		if m := headerRe.FindStringSubmatch(line); m != nil {
			cur = &block{name: m[1], inline: strings.TrimSpace(m[2])}
			blocks = append(blocks, cur)
			continue
		}
		if looksLikeHeader(line) {
			cur = &block{skip: true}
			blocks = append(blocks, cur)
			continue
		}
		if cur != nil {
			cur.lines = append(cur.lines, line)
		}
	}
	return blocks
}

func looksLikeHeader(line string) bool {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return false
	}
	if strings.IndexByte(`"'{}[`, line[0]) >= 0 {
		return false
	}
	return strings.Contains(line, "=")
}

func parseDisplay(text string) map[string]value.Value {
	vars := make(map[string]value.Value)
	for _, b := range splitBlocks(strings.Split(text, "\n")) {
		if b.skip {
			continue
		}
		vars[b.name] = b.classify()
	}
	return vars
}

func (b *block) classify() value.Value {
	lines := b.lines
	var declared []int
	if m := annotationRe.FindStringSubmatch(b.inline); m != nil {
		r, _ := strconv.Atoi(m[1])
		c, _ := strconv.Atoi(m[2])
		declared = []int{r, c}
	} else if b.inline != "" {
		lines = append([]string{b.inline}, lines...)
	}

	v := classify(lines, false)
	if declared != nil {
		return checkDims(v, declared[0], declared[1], joinPayload(lines))
	}
	return v
}

func checkDims(v value.Value, rows, cols int, raw string) value.Value {
	var r, c int
	switch val := v.(type) {
	case *value.Undefined:
		return v
	case *value.Matrix:
		r, c = val.Dims()
	case *value.Cell:
		r, c = val.Dims()
	case *value.Strings:
		r, c = len(val.Values), -1
	default:
		r, c = 1, 1
	}
	if r != rows || (c >= 0 && c != cols) {
		return &value.Undefined{Raw: raw, Reason: fmt.Sprintf("declared %dx%d, parsed %dx%d", rows, cols, r, c)}
	}
	return v
}

// classify turns a payload into the most specific matching value. Inside a
// cell, a bare line that matches nothing else is text, because the
// interpreter prints char elements of a cell unquoted.
func classify(lines []string, inCell bool) value.Value {
	lines = trimBlank(lines)
	raw := joinPayload(lines)
	if len(lines) == 0 {
		if inCell {
			return &value.Text{}
		}
		return &value.Undefined{Raw: raw, Reason: "empty payload"}
	}

	if len(lines) == 1 {
		line := strings.TrimSpace(lines[0])
		switch line {
		case "true":
			return &value.Boolean{Value: true}
		case "false":
			return &value.Boolean{Value: false}
		}
		if f, ok := ParseNumber(line); ok {
			return &value.Scalar{Value: f}
		}
		if z, ok := ParseComplex(line); ok {
			return &value.Complex{Value: z}
		}
		if s, ok := unquote(line); ok {
			return &value.Text{Value: s}
		}
		if m := emptyRe.FindStringSubmatch(line); m != nil {
			if m[1] == "{}" {
				return &value.Cell{}
			}
			return &value.Matrix{}
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			return parseBracketMatrix(line)
		}
	}

	if len(lines) > 1 && allQuoted(lines) {
		values := make([]string, len(lines))
		for i, line := range lines {
			values[i], _ = unquote(strings.TrimSpace(line))
		}
		return &value.Strings{Values: values}
	}

	if strings.TrimSpace(lines[0]) == "{" && strings.TrimSpace(lines[len(lines)-1]) == "}" {
		return parseCell(lines[1:len(lines)-1], raw)
	}

	if v, ok := parseGrid(lines, raw); ok {
		return v
	}
	if inCell && len(lines) == 1 {
		return &value.Text{Value: strings.TrimSpace(lines[0])}
	}
	return &value.Undefined{Raw: raw, Reason: "unrecognized payload"}
}

func allQuoted(lines []string) bool {
	for _, line := range lines {
		if !isQuoted(strings.TrimSpace(line)) {
			return false
		}
	}
	return true
}

// parseBracketMatrix reads a literal such as [1, 2; 3, 4].
func parseBracketMatrix(line string) value.Value {
	body := strings.TrimSpace(line[1 : len(line)-1])
	if body == "" {
		return &value.Matrix{}
	}
	var rows [][]float64
	for _, part := range strings.Split(body, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		row, ok := parseRow(part)
		if !ok {
			return &value.Undefined{Raw: line, Reason: "non-numeric matrix element"}
		}
		rows = append(rows, row)
	}
	m, err := value.NewMatrix(rows)
	if err != nil {
		return &value.Undefined{Raw: line, Reason: err.Error()}
	}
	return m
}

type chunk struct {
	first, last int
	declared    bool
	scale       float64
	rows        [][]float64
}

// parseGrid reads numeric rows, including the interpreter's column-chunked
// layout for wide matrices ("Columns 1 through 13:") and common scale
// factor lines ("1.0e+03  *"). It reports false when the payload is not
// numeric at all; a numeric but ragged payload is Undefined.
func parseGrid(lines []string, raw string) (value.Value, bool) {
	var chunks []*chunk
	global := 1.0
	current := func() *chunk {
		if len(chunks) == 0 {
			chunks = append(chunks, &chunk{scale: 1})
		}
		return chunks[len(chunks)-1]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := columnsRe.FindStringSubmatch(line); m != nil {
			first, _ := strconv.Atoi(m[1])
			last := first
			if m[2] != "" {
				last, _ = strconv.Atoi(m[2])
			}
			chunks = append(chunks, &chunk{first: first, last: last, declared: true, scale: 1})
			continue
		}
		if m := scaleRe.FindStringSubmatch(line); m != nil {
			f, ok := ParseNumber(m[1])
			switch {
			case !ok:
				return nil, false
			case len(chunks) == 0:
				global = f
			case len(current().rows) == 0:
				current().scale = f
			default:
				return nil, false
			}
			continue
		}
		row, ok := parseRow(line)
		if !ok {
			return nil, false
		}
		c := current()
		c.rows = append(c.rows, row)
	}
	if len(chunks) == 0 {
		return nil, false
	}

	undefined := func(format string, args ...any) (value.Value, bool) {
		return &value.Undefined{Raw: raw, Reason: fmt.Sprintf(format, args...)}, true
	}

	height := len(chunks[0].rows)
	next := 1
	for _, c := range chunks {
		if len(c.rows) == 0 {
			return undefined("empty column chunk")
		}
		if len(c.rows) != height {
			return undefined("column chunks have %d and %d rows", height, len(c.rows))
		}
		if _, err := value.NewMatrix(c.rows); err != nil {
			return undefined("%v", err)
		}
		if c.declared {
			if c.first != next || c.last-c.first+1 != len(c.rows[0]) {
				return undefined("columns %d-%d do not match %d parsed columns", c.first, c.last, len(c.rows[0]))
			}
			next = c.last + 1
		} else if len(chunks) > 1 {
			return undefined("unlabelled column chunk")
		}
	}

	rows := make([][]float64, height)
	for i := range rows {
		for _, c := range chunks {
			for _, x := range c.rows[i] {
				rows[i] = append(rows[i], x*c.scale*global)
			}
		}
	}
	return &value.Matrix{Rows: rows}, true
}

// parseCell reads the lines between "{" and "}". Elements are introduced
// by "[i,j] =" two columns in from the braces.
func parseCell(inner []string, raw string) value.Value {
	type element struct {
		row, col int
		lines    []string
	}
	var elems []*element
	for _, line := range inner {
		line = dedent(line, 2)
		if m := cellElementRe.FindStringSubmatch(line); m != nil {
			r, _ := strconv.Atoi(m[1])
			c, _ := strconv.Atoi(m[2])
			e := &element{row: r, col: c}
			if rest := strings.TrimSpace(m[3]); rest != "" {
				e.lines = append(e.lines, rest)
			}
			elems = append(elems, e)
			continue
		}
		if len(elems) == 0 {
			if strings.TrimSpace(line) != "" {
				return &value.Undefined{Raw: raw, Reason: "cell content before first element"}
			}
			continue
		}
		last := elems[len(elems)-1]
		last.lines = append(last.lines, line)
	}

	rows, cols := 0, 0
	for _, e := range elems {
		if e.row < 1 || e.col < 1 {
			return &value.Undefined{Raw: raw, Reason: "invalid cell index"}
		}
		rows = max(rows, e.row)
		cols = max(cols, e.col)
	}
	grid := make([][]value.Value, rows)
	for i := range grid {
		grid[i] = make([]value.Value, cols)
	}
	for _, e := range elems {
		grid[e.row-1][e.col-1] = classify(e.lines, true)
	}
	for i := range grid {
		for j := range grid[i] {
			if grid[i][j] == nil {
				return &value.Undefined{Raw: raw, Reason: fmt.Sprintf("missing cell element (%d,%d)", i+1, j+1)}
			}
		}
	}
	return &value.Cell{Rows: grid}
}

func dedent(line string, n int) string {
	for i := 0; i < n && len(line) > 0 && line[0] == ' '; i++ {
		line = line[1:]
	}
	return line
}

func trimBlank(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func joinPayload(lines []string) string {
	return strings.Join(trimBlank(lines), "\n")
}

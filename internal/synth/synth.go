// Package synth builds the interpreter source for a function call whose
// arguments are value.Values. Each argument is bound to a reserved
// temporary and the result to a reserved output variable, so the caller
// can read it back from the dump.
package synth

import (
	"bytes"
	"regexp"
	"strconv"

	"github.com/funvibe/octbridge/internal/config"
	"github.com/funvibe/octbridge/internal/value"
)

var functionRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// TempVar returns the name of the temporary holding argument i (1-based).
func TempVar(i int) string {
	return config.TempVarPrefix + strconv.Itoa(i) + config.TempVarSuffix
}

// OutputVar returns the name receiving output k (1-based) of a
// multi-output call.
func OutputVar(k int) string {
	return config.OutputVarPrefix + strconv.Itoa(k) + config.TempVarSuffix
}

// BuildCall returns a script that evaluates function(args...) into
// config.OutputVarName.
func BuildCall(function string, args []value.Value) (string, error) {
	var buf bytes.Buffer
	temps, err := writeArgs(&buf, function, args)
	if err != nil {
		return "", err
	}
	buf.WriteString(config.OutputVarName)
	buf.WriteString(" = ")
	writeInvocation(&buf, function, temps)
	return buf.String(), nil
}

// BuildCallN returns a script that binds the first nout outputs of
// function(args...) to OutputVar(1) ... OutputVar(nout).
func BuildCallN(function string, nout int, args []value.Value) (string, error) {
	if nout < 1 {
		return "", NewNameError(function, "at least one output is required")
	}
	var buf bytes.Buffer
	temps, err := writeArgs(&buf, function, args)
	if err != nil {
		return "", err
	}
	buf.WriteByte('[')
	for k := 1; k <= nout; k++ {
		if k > 1 {
			buf.WriteString(", ")
		}
		buf.WriteString(OutputVar(k))
	}
	buf.WriteString("] = ")
	writeInvocation(&buf, function, temps)
	return buf.String(), nil
}

// writeArgs validates the function name and emits one assignment per
// argument, failing on the first argument without a literal form.
func writeArgs(buf *bytes.Buffer, function string, args []value.Value) ([]string, error) {
	if !functionRe.MatchString(function) {
		return nil, NewNameError(function, "not a valid function name")
	}
	temps := make([]string, len(args))
	for i, arg := range args {
		lit, err := Literal(arg)
		if err != nil {
			return nil, NewArgumentError(function, i+1, err)
		}
		temps[i] = TempVar(i + 1)
		buf.WriteString(temps[i])
		buf.WriteString(" = ")
		buf.WriteString(lit)
		buf.WriteString(";\n")
	}
	return temps, nil
}

func writeInvocation(buf *bytes.Buffer, function string, temps []string) {
	buf.WriteString(function)
	buf.WriteByte('(')
	for i, t := range temps {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(t)
	}
	buf.WriteString(");\n")
}

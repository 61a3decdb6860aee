// Package dump turns the text an interpreter prints for its bound variables
// into a store.Store.
//
// Two dialects are understood: the interactive display format
// ("x = 5", "y =" followed by indented rows) and the text save format
// ("# name: x" / "# type: scalar" blocks). Parse picks one by looking for
// save-format headers. Parsing never fails: a block that cannot be
// classified is stored as value.Undefined, and a block without a usable
// name is dropped.
package dump

import (
	"regexp"
	"strings"

	"github.com/funvibe/octbridge/internal/config"
	"github.com/funvibe/octbridge/internal/store"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse detects the dialect of raw and parses it.
func Parse(raw string) *store.Store {
	body := payload(raw)
	if IsSaveFormat(body) {
		return store.New(raw, parseSave(body))
	}
	return store.New(raw, parseDisplay(body))
}

// ParseDisplay parses raw as display output.
func ParseDisplay(raw string) *store.Store {
	return store.New(raw, parseDisplay(payload(raw)))
}

// ParseSave parses raw as text save output.
func ParseSave(raw string) *store.Store {
	return store.New(raw, parseSave(payload(raw)))
}

// IsSaveFormat reports whether text contains a save-format variable header.
func IsSaveFormat(text string) bool {
	return strings.HasPrefix(text, "# name: ") || strings.Contains(text, "\n# name: ")
}

// payload normalizes line endings and drops everything up to and including
// the last dump marker line, if there is one.
func payload(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	marker := config.DumpMarker + "\n"
	if i := strings.LastIndex(text, marker); i >= 0 && (i == 0 || text[i-1] == '\n') {
		return text[i+len(marker):]
	}
	return text
}

package octave

import (
	"github.com/funvibe/octbridge/internal/config"
	"github.com/funvibe/octbridge/internal/dump"
	"github.com/funvibe/octbridge/internal/gateway"
	"github.com/funvibe/octbridge/internal/store"
	"github.com/funvibe/octbridge/internal/synth"
	"github.com/funvibe/octbridge/internal/value"
)

// Value model.
type (
	Value     = value.Value
	Kind      = value.Kind
	Scalar    = value.Scalar
	Complex   = value.Complex
	Boolean   = value.Boolean
	Text      = value.Text
	Strings   = value.Strings
	Matrix    = value.Matrix
	Cell      = value.Cell
	Undefined = value.Undefined
)

const (
	ScalarKind    = value.ScalarKind
	ComplexKind   = value.ComplexKind
	BooleanKind   = value.BooleanKind
	TextKind      = value.TextKind
	StringsKind   = value.StringsKind
	MatrixKind    = value.MatrixKind
	CellKind      = value.CellKind
	UndefinedKind = value.UndefinedKind
)

// Results and errors.
type (
	Store             = store.Store
	NotFoundError     = store.NotFoundError
	TypeMismatchError = store.TypeMismatchError
	SynthesisError    = synth.Error
	GatewayError      = gateway.Error
)

// Gateways and configuration.
type (
	Gateway     = gateway.Gateway
	GatewayFunc = gateway.Func
	Config      = config.Config
)

const (
	DialectDisplay = config.DialectDisplay
	DialectSave    = config.DialectSave
)

// Parse parses interpreter dump text; see the dump package.
func Parse(raw string) *Store { return dump.Parse(raw) }

// BuildCall returns the script Call would send for function(args...).
func BuildCall(function string, args []Value) (string, error) {
	return synth.BuildCall(function, args)
}

// NewMatrix validates and builds a rectangular matrix.
func NewMatrix(rows [][]float64) (*Matrix, error) { return value.NewMatrix(rows) }

// Equal reports structural equality; NaN equals NaN.
func Equal(a, b Value) bool { return value.Equal(a, b) }

func LoadConfig(path string) (*Config, error) { return config.LoadConfig(path) }
func FindConfig(dir string) (string, error)   { return config.FindConfig(dir) }
func DefaultConfig() *Config                  { return config.Default() }

// Package store holds the variables recovered from one interpreter run.
//
// A Store is built once from a parsed dump and never changes afterwards.
// Typed accessors check the stored shape exactly: a 1x1 matrix is not a
// scalar, a scalar is not a 1x1 matrix. Slices handed out by accessors are
// copies, so callers may modify them freely.
package store

import (
	"sort"

	"github.com/funvibe/octbridge/internal/value"
)

type Store struct {
	vars map[string]value.Value
	raw  string
}

// New copies vars into a new Store. raw is the text the store was parsed
// from and is kept for diagnostics.
func New(raw string, vars map[string]value.Value) *Store {
	s := &Store{vars: make(map[string]value.Value, len(vars)), raw: raw}
	for name, v := range vars {
		s.vars[name] = v
	}
	return s
}

// Value returns the stored variant without committing to a shape.
func (s *Store) Value(name string) (value.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Len returns the number of variables.
func (s *Store) Len() int { return len(s.vars) }

// Raw returns the dump text the store was parsed from.
func (s *Store) Raw() string { return s.raw }

// Names returns the variable names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.vars))
	for name := range s.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Degraded returns the sorted names of variables that could not be
// classified.
func (s *Store) Degraded() []string {
	var names []string
	for name, v := range s.vars {
		if v.Kind() == value.UndefinedKind {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (s *Store) lookup(name string, kind value.Kind) (value.Value, error) {
	v, ok := s.vars[name]
	if !ok {
		return nil, NewNotFoundError(name)
	}
	if v.Kind() != kind {
		return nil, NewTypeMismatchError(name, v.Kind(), kind)
	}
	return v, nil
}

func (s *Store) Scalar(name string) (float64, error) {
	v, err := s.lookup(name, value.ScalarKind)
	if err != nil {
		return 0, err
	}
	return v.(*value.Scalar).Value, nil
}

func (s *Store) Complex(name string) (complex128, error) {
	v, err := s.lookup(name, value.ComplexKind)
	if err != nil {
		return 0, err
	}
	return v.(*value.Complex).Value, nil
}

func (s *Store) Bool(name string) (bool, error) {
	v, err := s.lookup(name, value.BooleanKind)
	if err != nil {
		return false, err
	}
	return v.(*value.Boolean).Value, nil
}

func (s *Store) Text(name string) (string, error) {
	v, err := s.lookup(name, value.TextKind)
	if err != nil {
		return "", err
	}
	return v.(*value.Text).Value, nil
}

func (s *Store) Strings(name string) ([]string, error) {
	v, err := s.lookup(name, value.StringsKind)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), v.(*value.Strings).Values...), nil
}

func (s *Store) Matrix(name string) ([][]float64, error) {
	v, err := s.lookup(name, value.MatrixKind)
	if err != nil {
		return nil, err
	}
	return v.(*value.Matrix).Copy(), nil
}

// Vector returns a 1xN or Nx1 matrix as a flat slice. Any other matrix
// shape is a TypeMismatchError.
func (s *Store) Vector(name string) ([]float64, error) {
	v, err := s.lookup(name, value.MatrixKind)
	if err != nil {
		return nil, err
	}
	vec, ok := v.(*value.Matrix).Vector()
	if !ok {
		return nil, NewTypeMismatchError(name, value.MatrixKind, "vector")
	}
	return vec, nil
}

func (s *Store) Cell(name string) ([][]value.Value, error) {
	v, err := s.lookup(name, value.CellKind)
	if err != nil {
		return nil, err
	}
	return v.(*value.Cell).Copy(), nil
}

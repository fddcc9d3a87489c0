// Package errs defines the typed error surface of the resolver core.
//
// Failures the core detects itself are reported as one of the three
// sentinel kinds below, wrapped with enough context for callers to
// errors.Is/errors.As against them. Errors returned by a user-supplied
// callable, and YAML decode errors from LoadDocumentYAML, are passed on as
// they are and match none of these kinds. No error is recovered inside the
// core; it always propagates to the top-level driver.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds. Wrap with errors.Is against these, or type-assert the
// detail structs below for context.
var (
	ErrParams           = errors.New("params error")
	ErrVariableNotFound = errors.New("variable not found")
	ErrFunctionNotFound = errors.New("function not found")
)

// ParamsError reports a malformed validator, malformed parameter
// expansion, or illegal arguments to a reserved built-in.
type ParamsError struct {
	Context string // e.g. "validator", "parameterize", "environ"
	Detail  string
}

func (e *ParamsError) Error() string {
	if e.Context == "" {
		return "params error: " + e.Detail
	}
	return fmt.Sprintf("params error in %s: %s", e.Context, e.Detail)
}

func (e *ParamsError) Unwrap() error { return ErrParams }

// NewParamsError builds a ParamsError.
func NewParamsError(context, detail string) *ParamsError {
	return &ParamsError{Context: context, Detail: detail}
}

// VariableNotFoundError reports a variable reference that could not be
// resolved, either because it is absent from the known-variables set at
// prepare time, or absent from the concrete map at evaluate time, or is
// a self-reference / part of an indirect dependency cycle.
type VariableNotFoundError struct {
	Name  string
	Cycle []string // non-empty when the cause is a dependency cycle
}

func (e *VariableNotFoundError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("variable not found: %s (cycle: %s)", e.Name, strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("variable not found: %s", e.Name)
}

func (e *VariableNotFoundError) Unwrap() error { return ErrVariableNotFound }

// NewVariableNotFoundError builds a VariableNotFoundError without cycle info.
func NewVariableNotFoundError(name string) *VariableNotFoundError {
	return &VariableNotFoundError{Name: name}
}

// NewCycleError builds a VariableNotFoundError naming every member of a
// detected dependency cycle.
func NewCycleError(members []string) *VariableNotFoundError {
	name := ""
	if len(members) > 0 {
		name = members[0]
	}
	return &VariableNotFoundError{Name: name, Cycle: members}
}

// FunctionNotFoundError reports a template function reference that could
// not be resolved against the function registry.
type FunctionNotFoundError struct {
	Name string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("function not found: %s", e.Name)
}

func (e *FunctionNotFoundError) Unwrap() error { return ErrFunctionNotFound }

// NewFunctionNotFoundError builds a FunctionNotFoundError.
func NewFunctionNotFoundError(name string) *FunctionNotFoundError {
	return &FunctionNotFoundError{Name: name}
}

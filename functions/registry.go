// Package functions implements the Function Registry (spec §4.C): resolving
// a function name to a callable, in strict lookup-order precedence.
package functions

import (
	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/value"
)

// CSVProvider is the external collaborator backing the built-in
// parameterize/P function (spec §1, collaborator c).
type CSVProvider interface {
	Rows(path string) ([]map[string]any, error)
}

// EnvGetter is the external collaborator backing the built-in environ/ENV
// function (spec §1, collaborator d).
type EnvGetter interface {
	Get(name string) (string, bool)
}

// ResourceProvider backs the supplemented `resource` built-in (SPEC_FULL
// §4): named external dependencies such as a shared base-url pool or an
// auth token, looked up by alias.
type ResourceProvider interface {
	Resource(alias string) (any, bool)
}

// BuiltinLookup is the hook for "a framework-provided set of built-in
// helpers (random strings, timestamps, arithmetic, etc.) — opaque to the
// core" (spec §4.C, step 3). The core never inspects what it returns; it
// is purely a name -> Callable lookup supplied by the embedding
// application. Per spec §9, this replaces the source's unsafe fallback to
// the host language's built-in namespace with an explicit, documented
// registry the caller controls.
type BuiltinLookup func(name string) (value.Callable, bool)

// Registry resolves function names to callables using the precedence
// required by spec §4.C:
//  1. the user-supplied functions_mapping
//  2. the reserved sentinels parameterize/P and environ/ENV, and the
//     supplemented resource built-in
//  3. a framework-provided BuiltinLookup, if configured
//  4. FunctionNotFoundError
type Registry struct {
	mapping   map[string]value.Callable
	csv       CSVProvider
	env       EnvGetter
	resources ResourceProvider
	builtins  BuiltinLookup
}

// New builds a Registry around the user's functions_mapping and the
// external collaborators for the two reserved built-ins.
func New(mapping map[string]value.Callable, csv CSVProvider, env EnvGetter) *Registry {
	r := &Registry{mapping: mapping, csv: csv, env: env}
	return r
}

// WithResources attaches a ResourceProvider backing the `resource`
// built-in. Optional — without it, `resource` is simply unresolvable.
func (r *Registry) WithResources(rp ResourceProvider) *Registry {
	r.resources = rp
	return r
}

// WithBuiltins attaches the framework-provided built-in helper lookup
// (spec §4.C, step 3).
func (r *Registry) WithBuiltins(lookup BuiltinLookup) *Registry {
	r.builtins = lookup
	return r
}

// Resolve looks up name in precedence order. Returns FunctionNotFoundError
// if no entry is found anywhere in the chain.
func (r *Registry) Resolve(name string) (value.Callable, error) {
	if r.mapping != nil {
		if c, ok := r.mapping[name]; ok {
			return c, nil
		}
	}

	switch name {
	case "parameterize", "P":
		return r.parameterizeCallable(), nil
	case "environ", "ENV":
		return r.environCallable(), nil
	case "resource":
		return r.resourceCallable(), nil
	}

	if r.builtins != nil {
		if c, ok := r.builtins(name); ok {
			return c, nil
		}
	}

	return nil, errs.NewFunctionNotFoundError(name)
}

// requireSingleArg enforces the reserved built-ins' contract: exactly one
// positional argument, no keyword arguments.
func requireSingleArg(context string, positional []any, keyword map[string]any) (string, error) {
	if len(keyword) != 0 {
		return "", errs.NewParamsError(context, "does not accept keyword arguments")
	}
	if len(positional) != 1 {
		return "", errs.NewParamsError(context, "requires exactly one positional argument")
	}
	s, ok := positional[0].(string)
	if !ok {
		return "", errs.NewParamsError(context, "argument must be a string")
	}
	return s, nil
}

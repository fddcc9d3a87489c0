package functions

import (
	"errors"
	"testing"

	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/value"
)

type fakeEnv map[string]string

func (f fakeEnv) Get(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

type fakeResources map[string]any

func (f fakeResources) Resource(alias string) (any, bool) {
	v, ok := f[alias]
	return v, ok
}

func TestRegistry_ResolveUserMapping(t *testing.T) {
	called := false
	mapping := map[string]value.Callable{
		"double": func(positional []any, keyword map[string]any) (any, error) {
			called = true
			return nil, nil
		},
	}
	r := New(mapping, nil, nil)

	c, err := r.Resolve("double")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _ = c(nil, nil); !called {
		t.Error("resolved callable should be the user-supplied one")
	}
}

func TestRegistry_ResolveEnviron(t *testing.T) {
	r := New(nil, nil, fakeEnv{"HOME": "/root"})

	c, err := r.Resolve("environ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := c([]any{"HOME"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "/root" {
		t.Errorf("got %v, want /root", v)
	}
}

func TestRegistry_ResolveEnviron_MissingVar(t *testing.T) {
	r := New(nil, nil, fakeEnv{})
	c, _ := r.Resolve("ENV")
	_, err := c([]any{"MISSING"}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing environment variable")
	}
}

func TestRegistry_ResolveResource(t *testing.T) {
	r := New(nil, nil, nil).WithResources(fakeResources{"auth_token": "tok123"})
	c, err := r.Resolve("resource")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := c([]any{"auth_token"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "tok123" {
		t.Errorf("got %v, want tok123", v)
	}
}

func TestRegistry_ResolveBuiltinFallback(t *testing.T) {
	r := New(nil, nil, nil).WithBuiltins(func(name string) (value.Callable, bool) {
		if name == "uuid" {
			return func(positional []any, keyword map[string]any) (any, error) { return "fake-uuid", nil }, true
		}
		return nil, false
	})

	c, err := r.Resolve("uuid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := c(nil, nil)
	if v != "fake-uuid" {
		t.Errorf("got %v, want fake-uuid", v)
	}
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := New(nil, nil, nil)
	_, err := r.Resolve("does_not_exist")
	var fnf *errs.FunctionNotFoundError
	if !errors.As(err, &fnf) {
		t.Fatalf("error = %v, want *errs.FunctionNotFoundError", err)
	}
}

func TestRegistry_PrecedenceUserMappingBeatsReserved(t *testing.T) {
	mapping := map[string]value.Callable{
		"environ": func(positional []any, keyword map[string]any) (any, error) { return "overridden", nil },
	}
	r := New(mapping, nil, fakeEnv{"X": "real"})
	c, _ := r.Resolve("environ")
	v, _ := c(nil, nil)
	if v != "overridden" {
		t.Errorf("user mapping should take precedence over the reserved environ built-in, got %v", v)
	}
}

func TestRequireSingleArg_RejectsKeywordArgs(t *testing.T) {
	_, err := requireSingleArg("environ", []any{"X"}, map[string]any{"extra": 1})
	if err == nil {
		t.Fatal("expected an error when keyword arguments are supplied")
	}
}

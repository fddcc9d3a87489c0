package eval

import (
	"testing"

	"github.com/smilemakc/httpdef/value"
)

func TestEvaluate_Scalars(t *testing.T) {
	for _, v := range []any{nil, 1, "plain", true, 3.14} {
		got, err := Evaluate(v, nil, nil)
		if err != nil {
			t.Fatalf("Evaluate(%v) error: %v", v, err)
		}
		if got != v {
			t.Errorf("Evaluate(%v) = %v, want unchanged", v, got)
		}
	}
}

func TestEvaluate_LazyString_SinglePlaceholderPreservesType(t *testing.T) {
	ls := &value.LazyString{
		TemplateWithPlaceholders: "{}",
		Slots:                    []value.Slot{{VarName: "count"}},
	}
	got, err := Evaluate(ls, map[string]any{"count": int64(42)}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != int64(42) {
		t.Errorf("got %#v (%T), want int64(42)", got, got)
	}
}

func TestEvaluate_LazyString_Interpolation(t *testing.T) {
	ls := &value.LazyString{
		TemplateWithPlaceholders: "hello {}!",
		Slots:                    []value.Slot{{VarName: "name"}},
	}
	got, err := Evaluate(ls, map[string]any{"name": "world"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello world!" {
		t.Errorf("got %q, want %q", got, "hello world!")
	}
}

func TestEvaluate_LazyString_MissingVariable(t *testing.T) {
	ls := &value.LazyString{
		TemplateWithPlaceholders: "{}",
		Slots:                    []value.Slot{{VarName: "missing"}},
	}
	_, err := Evaluate(ls, map[string]any{}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing variable")
	}
}

func TestEvaluate_LazyFunction_CachesResult(t *testing.T) {
	calls := 0
	lf := &value.LazyFunction{
		FuncName: "counter",
		Cached:   true,
		Callable: func(positional []any, keyword map[string]any) (any, error) {
			calls++
			return calls, nil
		},
	}
	cache := NewFunctionCache()

	first, err := Evaluate(lf, nil, cache)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Evaluate(lf, nil, cache)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("cached calls returned different results: %v != %v", first, second)
	}
	if calls != 1 {
		t.Errorf("callable invoked %d times, want 1 (cached)", calls)
	}
}

func TestEvaluate_LazyFunction_UncachedCallsEveryTime(t *testing.T) {
	calls := 0
	lf := &value.LazyFunction{
		FuncName: "counter",
		Cached:   false,
		Callable: func(positional []any, keyword map[string]any) (any, error) {
			calls++
			return calls, nil
		},
	}
	cache := NewFunctionCache()

	if _, err := Evaluate(lf, nil, cache); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Evaluate(lf, nil, cache); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("callable invoked %d times, want 2 (uncached)", calls)
	}
}

func TestEvaluate_NestedStructures(t *testing.T) {
	input := map[string]any{
		"list": []any{
			&value.LazyString{TemplateWithPlaceholders: "{}", Slots: []value.Slot{{VarName: "x"}}},
		},
	}
	got, err := Evaluate(input, map[string]any{"x": "resolved"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := got.(map[string]any)
	list := out["list"].([]any)
	if list[0] != "resolved" {
		t.Errorf("list[0] = %v, want %q", list[0], "resolved")
	}
}

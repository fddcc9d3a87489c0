package value

import (
	"reflect"
	"testing"
)

func TestLazyFunction_CacheKey(t *testing.T) {
	f1 := &LazyFunction{FuncName: "rand", Positional: []any{int64(1)}, Keyword: map[string]any{"b": "x", "a": "y"}}
	f2 := &LazyFunction{FuncName: "rand", Positional: []any{int64(1)}, Keyword: map[string]any{"a": "y", "b": "x"}}
	if f1.CacheKey() != f2.CacheKey() {
		t.Errorf("CacheKey should be independent of keyword insertion order: %q != %q", f1.CacheKey(), f2.CacheKey())
	}

	f3 := &LazyFunction{FuncName: "rand", Positional: []any{int64(2)}}
	if f1.CacheKey() == f3.CacheKey() {
		t.Errorf("different args should produce different cache keys")
	}
}

func TestExtractVariableNames(t *testing.T) {
	ls := &LazyString{Raw: "hello $user, your id is ${upper($role)}"}
	got := ExtractVariableNames(ls)
	want := map[string]struct{}{"user": {}, "role": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractVariableNames() = %v, want %v", got, want)
	}
}

func TestExtractVariableNames_NestedStructure(t *testing.T) {
	input := map[string]any{
		"a": &LazyString{Raw: "$x"},
		"b": []any{
			&LazyString{Raw: "$y"},
			map[string]any{"c": &LazyString{Raw: "$z"}},
		},
	}
	got := ExtractVariableNames(input)
	want := map[string]struct{}{"x": {}, "y": {}, "z": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractVariableNames() = %v, want %v", got, want)
	}
}

func TestIsLazy(t *testing.T) {
	if IsLazy("plain") {
		t.Error("plain string should not be lazy")
	}
	if !IsLazy(&LazyString{}) {
		t.Error("*LazyString should be lazy")
	}
	if !IsLazy(map[string]any{"a": &LazyFunction{}}) {
		t.Error("a map containing a lazy value should be lazy")
	}
	if !IsLazy([]any{1, &LazyString{}}) {
		t.Error("a slice containing a lazy value should be lazy")
	}
}

func TestSlot_IsVar(t *testing.T) {
	if !(Slot{VarName: "x"}).IsVar() {
		t.Error("slot with VarName and no Func should report IsVar true")
	}
	if (Slot{Func: &LazyFunction{}}).IsVar() {
		t.Error("slot with a Func should report IsVar false")
	}
}

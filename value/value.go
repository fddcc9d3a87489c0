// Package value defines the tagged-union data model shared by the
// Preparer, Evaluator, Variable Resolver and Merge Engine.
//
// Go has no native sum type, so — matching the teacher's own style of
// dispatching on interface{} throughout its template engine — a Value is
// represented as a plain `any` holding one of:
//
//	nil, int64, float64, bool, string, []any, map[string]any,
//	*LazyString, *LazyFunction
//
// These nine shapes are what the Preparer builds; any other value it is
// handed (an int, a type sentinel, another opaque scalar) is passed
// through unchanged.
package value

import (
	"encoding/json"
	"regexp"
	"sort"
)

// Callable is the resolved form of a registry entry: a host function that
// accepts already-evaluated positional and keyword arguments and returns a
// concrete value.
type Callable func(positional []any, keyword map[string]any) (any, error)

// Slot is one entry in a LazyString's arg_slots: either a variable
// reference or a deferred function call, in left-to-right template order.
type Slot struct {
	VarName string        // non-empty when this slot is a $var reference
	Func    *LazyFunction // non-nil when this slot is a ${func(...)} call
}

// IsVar reports whether this slot is a plain variable reference.
func (s Slot) IsVar() bool { return s.Func == nil }

// LazyString is an immutable, partially-parsed template string.
type LazyString struct {
	// TemplateWithPlaceholders is the working copy with every function
	// call and variable reference replaced by the literal token "{}",
	// in left-to-right order matching Slots.
	TemplateWithPlaceholders string
	// Slots holds one entry per placeholder, in template order.
	Slots []Slot
	// Raw is the original, untouched string — used by extract_variable_names
	// to recover every $var reference, including ones buried inside
	// function arguments, by re-scanning with the variable regex.
	Raw string
	// Cached marks config-level values whose function calls should share
	// one result across an entire document via the function-result cache.
	Cached bool
}

// LazyFunction is an immutable, deferred function invocation.
type LazyFunction struct {
	FuncName   string
	Callable   Callable
	Positional []any
	Keyword    map[string]any
	// Cached mirrors the owning LazyString's Cached flag; a LazyFunction
	// reached only through prepare(), with no owning cached LazyString,
	// is never memoized.
	Cached bool
}

// CacheKey computes (func_name, repr(args), repr(kwargs)) as a single
// comparable string, canonicalizing through JSON so map key order never
// affects the key (encoding/json always emits map keys sorted).
func (f *LazyFunction) CacheKey() string {
	type keyed struct {
		Name string         `json:"name"`
		Pos  []any          `json:"pos"`
		Kw   map[string]any `json:"kw"`
	}
	b, err := json.Marshal(keyed{Name: f.FuncName, Pos: f.Positional, Kw: f.Keyword})
	if err != nil {
		// Positional/keyword values are always JSON-marshalable concrete
		// values by the time CacheKey is computed (post-evaluation); a
		// marshal failure here means a caller handed the evaluator a
		// non-concrete Go value, which is a programmer error, not a
		// recoverable runtime condition.
		return f.FuncName
	}
	return string(b)
}

var variableRefRe = regexp.MustCompile(`\$([A-Za-z0-9_]+)`)

// ExtractVariableNames recursively scans v for every $NAME reference,
// including ones nested inside lists, maps, and function-call arguments.
// For a LazyString it re-scans the Raw field (not the placeholder
// template) with the variable regex, per spec §4.G.
func ExtractVariableNames(v any) map[string]struct{} {
	out := make(map[string]struct{})
	extractInto(v, out)
	return out
}

func extractInto(v any, out map[string]struct{}) {
	switch t := v.(type) {
	case *LazyString:
		for _, m := range variableRefRe.FindAllStringSubmatch(t.Raw, -1) {
			out[m[1]] = struct{}{}
		}
		// Variable refs inside nested function-call arguments of this
		// same LazyString are already covered by the raw regex scan
		// above if they appear literally in Raw; LazyFunction slots
		// built from quoted-out sub-expressions are walked here too,
		// defensively, in case Raw ever diverges from Slots.
		for _, s := range t.Slots {
			if s.Func != nil {
				extractInto(s.Func, out)
			}
		}
	case *LazyFunction:
		for _, p := range t.Positional {
			extractInto(p, out)
		}
		keys := make([]string, 0, len(t.Keyword))
		for k := range t.Keyword {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			extractInto(t.Keyword[k], out)
		}
	case []any:
		for _, e := range t {
			extractInto(e, out)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			extractInto(k, out) // keys can themselves be templated
			extractInto(t[k], out)
		}
	}
}

// IsLazy reports whether v still contains an unresolved LazyString or
// LazyFunction anywhere in its structure.
func IsLazy(v any) bool {
	switch t := v.(type) {
	case *LazyString, *LazyFunction:
		return true
	case []any:
		for _, e := range t {
			if IsLazy(e) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, e := range t {
			if IsLazy(e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

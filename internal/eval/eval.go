// Package eval implements the Evaluator (spec §4.F): walking a lazy
// structure with a concrete variable-to-value mapping and producing fully
// concrete output, honoring an optional per-call function-result cache.
package eval

import (
	"fmt"
	"sort"
	"sync"

	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/value"
)

// FunctionCache memoizes (func_name, repr(args), repr(kwargs)) -> value
// for LazyFunctions marked Cached. It spans a single top-level parse
// invocation (spec §3, Lifecycle) and is safe for concurrent use within
// that invocation; concurrent parse invocations need separate caches.
type FunctionCache struct {
	mu    sync.Mutex
	items map[string]any
}

// NewFunctionCache creates an empty FunctionCache.
func NewFunctionCache() *FunctionCache {
	return &FunctionCache{items: make(map[string]any)}
}

func (c *FunctionCache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *FunctionCache) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = v
}

// Evaluate recursively resolves every Lazy value in v against vars. The
// returned value contains no LazyString or LazyFunction nodes (spec
// invariant: "After evaluation, the output contains no lazy values").
// cache may be nil, in which case no LazyFunction result is memoized.
func Evaluate(v any, vars map[string]any, cache *FunctionCache) (any, error) {
	switch t := v.(type) {
	case *value.LazyString:
		return evaluateLazyString(t, vars, cache)
	case *value.LazyFunction:
		return evaluateLazyFunction(t, vars, cache)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			r, err := Evaluate(e, vars, cache)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			r, err := Evaluate(e, vars, cache)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	default:
		return v, nil
	}
}

func evaluateLazyString(ls *value.LazyString, vars map[string]any, cache *FunctionCache) (any, error) {
	args := make([]any, len(ls.Slots))
	for i, slot := range ls.Slots {
		if slot.IsVar() {
			val, ok := vars[slot.VarName]
			if !ok {
				return nil, errs.NewVariableNotFoundError(slot.VarName)
			}
			// A value pulled straight from the concrete map may itself
			// still be lazy if the caller handed evaluate() a partially
			// resolved map; resolve it fully so placeholder substitution
			// never leaks a *value.LazyString/*value.LazyFunction.
			resolved, err := Evaluate(val, vars, cache)
			if err != nil {
				return nil, err
			}
			args[i] = resolved
			continue
		}

		result, err := evaluateLazyFunctionCached(slot.Func, vars, cache)
		if err != nil {
			return nil, err
		}
		args[i] = result
	}

	// Single bare placeholder: return the argument with its native type
	// preserved (spec invariant 3 / scenario S1).
	if ls.TemplateWithPlaceholders == "{}" {
		if len(args) == 1 {
			return args[0], nil
		}
		return nil, nil
	}

	out := make([]byte, 0, len(ls.TemplateWithPlaceholders))
	argIdx := 0
	template := ls.TemplateWithPlaceholders
	for i := 0; i < len(template); {
		if i+1 < len(template) && template[i] == '{' && template[i+1] == '}' {
			out = append(out, []byte(stringify(args[argIdx]))...)
			argIdx++
			i += 2
			continue
		}
		out = append(out, template[i])
		i++
	}
	return string(out), nil
}

func evaluateLazyFunctionCached(lf *value.LazyFunction, vars map[string]any, cache *FunctionCache) (any, error) {
	if lf.Cached && cache != nil {
		// The cache key depends on evaluated (concrete) args, so a cached
		// LazyFunction must still evaluate its args before it can check
		// the cache — but the expensive part being cached is the callable
		// invocation itself, which is what a repeated identical call
		// within one document most often incurs (e.g. a random-id
		// generator called once per config, reused by every teststep).
		evaluatedPositional, evaluatedKeyword, err := evaluateArgs(lf, vars, cache)
		if err != nil {
			return nil, err
		}
		key := (&value.LazyFunction{FuncName: lf.FuncName, Positional: evaluatedPositional, Keyword: evaluatedKeyword}).CacheKey()
		if v, ok := cache.get(key); ok {
			return v, nil
		}
		result, err := lf.Callable(evaluatedPositional, evaluatedKeyword)
		if err != nil {
			return nil, err
		}
		cache.put(key, result)
		return result, nil
	}

	evaluatedPositional, evaluatedKeyword, err := evaluateArgs(lf, vars, cache)
	if err != nil {
		return nil, err
	}
	return lf.Callable(evaluatedPositional, evaluatedKeyword)
}

func evaluateArgs(lf *value.LazyFunction, vars map[string]any, cache *FunctionCache) ([]any, map[string]any, error) {
	positional := make([]any, len(lf.Positional))
	for i, p := range lf.Positional {
		r, err := Evaluate(p, vars, cache)
		if err != nil {
			return nil, nil, err
		}
		positional[i] = r
	}

	keyword := make(map[string]any, len(lf.Keyword))
	keys := make([]string, 0, len(lf.Keyword))
	for k := range lf.Keyword {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r, err := Evaluate(lf.Keyword[k], vars, cache)
		if err != nil {
			return nil, nil, err
		}
		keyword[k] = r
	}

	return positional, keyword, nil
}

func evaluateLazyFunction(lf *value.LazyFunction, vars map[string]any, cache *FunctionCache) (any, error) {
	return evaluateLazyFunctionCached(lf, vars, cache)
}

// stringify converts a concrete value to its string representation for
// template substitution.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return fmt.Sprintf("%t", t)
	case int, int64, int32:
		return fmt.Sprintf("%d", t)
	case float64, float32:
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

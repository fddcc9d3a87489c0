// Package merge implements the Merge Engine (spec §4.H): override/extend
// rules for composing API, test case, and test suite definitions.
package merge

import (
	"fmt"

	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/model"
)

// exprCache compiles and caches {expr: "..."} validator expressions across
// the whole process, not just one parse invocation: a compiled program is a
// pure function of its source string, so there's no reason to recompile it
// for every document that reuses the same condition.
var exprCache = NewConditionCache(256)

// NormalizeValidator accepts either form spec §4.H.3 documents and
// collapses it to {check, comparator, expect}. Already-normalized input
// (a model.Validator) is returned unchanged, satisfying the idempotency
// property (spec §8, property 4). A single-key {expr: "..."} form is also
// accepted: the expression is compiled (and the compiled program cached)
// immediately, so a malformed expression fails at merge time rather than
// being silently carried through to whatever evaluates it later.
func NormalizeValidator(v any, defaultComparator string) (model.Validator, error) {
	if defaultComparator == "" {
		defaultComparator = "eq"
	}

	if nv, ok := v.(model.Validator); ok {
		return nv, nil
	}

	m, ok := v.(map[string]any)
	if !ok {
		return model.Validator{}, errs.NewParamsError("validator", "must be a mapping")
	}

	if checkVal, hasCheck := m["check"]; hasCheck {
		expect, hasExpect := m["expect"]
		if !hasExpect {
			expect, hasExpect = m["expected"]
		}
		if !hasExpect {
			return model.Validator{}, errs.NewParamsError("validator", "legacy form requires an 'expect' (or 'expected') key")
		}

		check, ok := checkVal.(string)
		if !ok {
			return model.Validator{}, errs.NewParamsError("validator", "'check' must be a string")
		}

		comparator := defaultComparator
		if c, ok := m["comparator"]; ok {
			cs, ok := c.(string)
			if !ok {
				return model.Validator{}, errs.NewParamsError("validator", "'comparator' must be a string")
			}
			comparator = cs
		}

		return model.Validator{Check: check, Comparator: comparator, Expect: expect}, nil
	}

	// Compact form: a single key is the comparator, its value a two-element list.
	if len(m) != 1 {
		return model.Validator{}, errs.NewParamsError("validator", "unrecognized shape: expected {check, comparator, expect} or a single {comparator: [check, expect]} entry")
	}

	for comparator, raw := range m {
		if comparator == "expr" {
			src, ok := raw.(string)
			if !ok {
				return model.Validator{}, errs.NewParamsError("validator", "'expr' must be a string")
			}
			if _, err := exprCache.CompileAndCache(src); err != nil {
				return model.Validator{}, errs.NewParamsError("validator", fmt.Sprintf("invalid expr: %v", err))
			}
			return model.Validator{Comparator: "expr", Expr: src}, nil
		}

		list, ok := raw.([]any)
		if !ok {
			return model.Validator{}, errs.NewParamsError("validator", fmt.Sprintf("compact form %q must map to a two-element list", comparator))
		}
		if len(list) != 2 {
			return model.Validator{}, errs.NewParamsError("validator", fmt.Sprintf("compact form %q requires exactly two entries, got %d", comparator, len(list)))
		}
		check, ok := list[0].(string)
		if !ok {
			return model.Validator{}, errs.NewParamsError("validator", "compact form's first entry (check) must be a string")
		}
		return model.Validator{Check: check, Comparator: comparator, Expect: list[1]}, nil
	}

	panic("unreachable: len(m) == 1 guarantees the loop runs once")
}

// MergeValidators normalizes both lists then concatenates them so that a
// step validator overrides an API validator targeting the same Check
// (spec §4.H.1: "step wins"). Order is API validators first (for any
// check not overridden), in API declaration order, followed by step
// validators in step declaration order.
func MergeValidators(apiValidators, stepValidators []any, defaultComparator string) ([]model.Validator, error) {
	normalizedAPI, err := normalizeAll(apiValidators, defaultComparator)
	if err != nil {
		return nil, err
	}
	normalizedStep, err := normalizeAll(stepValidators, defaultComparator)
	if err != nil {
		return nil, err
	}

	stepChecks := make(map[string]bool, len(normalizedStep))
	for _, v := range normalizedStep {
		stepChecks[v.Check] = true
	}

	out := make([]model.Validator, 0, len(normalizedAPI)+len(normalizedStep))
	for _, v := range normalizedAPI {
		if stepChecks[v.Check] {
			continue
		}
		out = append(out, v)
	}
	out = append(out, normalizedStep...)
	return out, nil
}

func normalizeAll(raw []any, defaultComparator string) ([]model.Validator, error) {
	out := make([]model.Validator, 0, len(raw))
	for _, r := range raw {
		v, err := NormalizeValidator(r, defaultComparator)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Package prepare implements the Preparer (spec §4.D/E): walking an
// arbitrary nested structure, converting every string containing
// templates into a Lazy value, and verifying that every referenced
// variable name is within a declared set.
package prepare

import (
	"sort"
	"strings"

	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/functions"
	"github.com/smilemakc/httpdef/internal/argparse"
	"github.com/smilemakc/httpdef/internal/scan"
	"github.com/smilemakc/httpdef/value"
)

// KnownVariables is the set of variable names declared in scope at
// preparation time (spec: "Known-variables set").
type KnownVariables map[string]struct{}

// NewKnownVariables builds a KnownVariables set from a list of names.
func NewKnownVariables(names ...string) KnownVariables {
	k := make(KnownVariables, len(names))
	for _, n := range names {
		k[n] = struct{}{}
	}
	return k
}

// Add returns a new set with name added, leaving the receiver untouched —
// callers build up known-variable scope incrementally per teststep (spec
// §4.J) without mutating a shared set.
func (k KnownVariables) Add(names ...string) KnownVariables {
	out := make(KnownVariables, len(k)+len(names))
	for n := range k {
		out[n] = struct{}{}
	}
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

func (k KnownVariables) has(name string) bool {
	_, ok := k[name]
	return ok
}

// Prepare recursively walks content, converting every templated string
// into a *value.LazyString (and its nested function calls into
// *value.LazyFunction), while verifying every $var reference against
// known. cached marks every LazyString/LazyFunction produced by this call
// as eligible for the evaluator's function-result cache (spec §3,
// Lifecycle) — used for config-level values shared across all teststeps.
func Prepare(content any, reg *functions.Registry, known KnownVariables, cached bool) (any, error) {
	switch v := content.(type) {
	case nil, bool, int, int64, float64, float32:
		return v, nil
	case string:
		return prepareString(v, reg, known, cached)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			p, err := Prepare(e, reg, known, cached)
			if err != nil {
				return nil, err
			}
			out[i] = p
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			pk, err := Prepare(k, reg, known, cached)
			if err != nil {
				return nil, err
			}
			pv, err := Prepare(e, reg, known, cached)
			if err != nil {
				return nil, err
			}
			key, ok := pk.(string)
			if !ok {
				// A templated map key is checked against known like any
				// other string, but the entry is stored under the key's raw
				// form; Evaluate does not evaluate or re-key map keys. The
				// core's documents never rely on templated keys in practice,
				// but spec §4.D requires keys to be walked too.
				key = k
			}
			out[key] = pv
		}
		return out, nil
	default:
		// Type sentinel or other opaque scalar: pass through unchanged.
		return v, nil
	}
}

// slotEntry tracks one placeholder's position for left-to-right ordering.
type slotEntry struct {
	offset int
	slot   value.Slot
}

func prepareString(s string, reg *functions.Registry, known KnownVariables, cached bool) (any, error) {
	trimmed := strings.TrimSpace(s)
	if !scan.HasTemplate(trimmed) {
		return s, nil
	}

	var entries []slotEntry

	// Step 1: scan and reify functions first, replacing each leftmost
	// match with "{}" in a single left-to-right pass (spec §4.D.1).
	funcMatches := scan.Functions(trimmed)
	var b1 strings.Builder
	last := 0
	for _, m := range funcMatches {
		b1.WriteString(trimmed[last:m.Start])
		offset := b1.Len()
		b1.WriteString("{}")
		last = m.End

		lf, err := buildLazyFunction(m.Name, m.ArgsText, reg, known, cached)
		if err != nil {
			return nil, err
		}
		entries = append(entries, slotEntry{offset: offset, slot: value.Slot{Func: lf}})
	}
	b1.WriteString(trimmed[last:])
	working1 := b1.String()

	// Step 2: scan the now function-free working copy for variables. The
	// offset recorded here is the match's start in working1 — NOT b2.Len()
	// (b2 shrinks relative to working1 as each $name collapses to "{}",
	// which would put variable offsets in a different coordinate space
	// than the function offsets recorded above and misorder interleaved
	// slots at line sort below).
	varMatches := scan.Variables(working1)
	var b2 strings.Builder
	last = 0
	for _, m := range varMatches {
		if !known.has(m.Name) {
			return nil, errs.NewVariableNotFoundError(m.Name)
		}
		b2.WriteString(working1[last:m.Start])
		b2.WriteString("{}")
		last = m.End

		entries = append(entries, slotEntry{offset: m.Start, slot: value.Slot{VarName: m.Name}})
	}
	b2.WriteString(working1[last:])
	template := b2.String()

	// Step 3: sort by offset into working1 order, which both function
	// and variable offsets now share.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].offset < entries[j].offset })

	slots := make([]value.Slot, len(entries))
	for i, e := range entries {
		slots[i] = e.slot
	}

	return &value.LazyString{
		TemplateWithPlaceholders: template,
		Slots:                    slots,
		Raw:                      s,
		Cached:                   cached,
	}, nil
}

func buildLazyFunction(name, argsText string, reg *functions.Registry, known KnownVariables, cached bool) (*value.LazyFunction, error) {
	callable, err := reg.Resolve(name)
	if err != nil {
		return nil, err
	}

	parsed := argparse.Parse(argsText)

	positional := make([]any, len(parsed.Positional))
	for i, a := range parsed.Positional {
		p, err := Prepare(a, reg, known, cached)
		if err != nil {
			return nil, err
		}
		positional[i] = p
	}

	keyword := make(map[string]any, len(parsed.Keyword))
	for k, a := range parsed.Keyword {
		p, err := Prepare(a, reg, known, cached)
		if err != nil {
			return nil, err
		}
		keyword[k] = p
	}

	return &value.LazyFunction{
		FuncName:   name,
		Callable:   callable,
		Positional: positional,
		Keyword:    keyword,
		Cached:     cached,
	}, nil
}

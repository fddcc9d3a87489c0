// Package resolve implements the Variable Resolver (spec §4.G): computing
// a fixed point over a map of name -> (possibly-lazy) value in dependency
// order, detecting self-references, and — per the REDESIGN FLAGS section
// on indirect cycles — naming every member of any detected dependency
// cycle rather than silently stalling.
package resolve

import (
	"sort"

	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/internal/eval"
	"github.com/smilemakc/httpdef/value"
)

// Resolve computes the fixed point of input, evaluating each entry once
// every one of its dependencies has itself been resolved. ignoreSelf
// controls the handling of a direct self-reference (spec scenario S5):
// when true, the value is returned unevaluated instead of failing —
// used during initial discovery over partially-known maps (spec §4.G).
func Resolve(input map[string]any, ignoreSelf bool, cache *eval.FunctionCache) (map[string]any, error) {
	deps := make(map[string]map[string]struct{}, len(input))
	names := make([]string, 0, len(input))
	for name, v := range input {
		deps[name] = value.ExtractVariableNames(v)
		names = append(names, name)
	}
	sort.Strings(names) // deterministic iteration order

	resolved := make(map[string]any, len(input))

	for len(resolved) < len(input) {
		progress := false

		for _, name := range names {
			if _, done := resolved[name]; done {
				continue
			}

			if _, selfRef := deps[name][name]; selfRef {
				if ignoreSelf {
					resolved[name] = input[name]
					progress = true
					continue
				}
				return nil, errs.NewVariableNotFoundError(name)
			}

			if allResolved(deps[name], resolved, name) {
				v, err := eval.Evaluate(input[name], resolved, cache)
				if err != nil {
					return nil, err
				}
				resolved[name] = v
				progress = true
			}
		}

		if !progress {
			break
		}
	}

	if len(resolved) < len(input) {
		if cycle := findCycle(names, deps, resolved); len(cycle) > 0 {
			return nil, errs.NewCycleError(cycle)
		}
		// No cycle among the remaining names: they depend on names
		// outside this map entirely. Return the partial map; the caller
		// (or the final evaluate pass) surfaces VariableNotFoundError for
		// whichever reference truly never resolves.
		return resolved, nil
	}

	return resolved, nil
}

func allResolved(d map[string]struct{}, resolved map[string]any, self string) bool {
	for dep := range d {
		if dep == self {
			continue
		}
		if _, ok := resolved[dep]; !ok {
			return false
		}
	}
	return true
}

// findCycle runs Tarjan's strongly-connected-components algorithm over
// the subgraph of names still unresolved, restricted to edges that stay
// within that subgraph (an edge to an already-resolved or wholly external
// name is not part of any cycle). Returns the members of the first
// nontrivial SCC found (size > 1), or nil if the stall is caused purely
// by references to names outside the input map.
func findCycle(names []string, deps map[string]map[string]struct{}, resolved map[string]any) []string {
	remaining := make(map[string]struct{})
	for _, n := range names {
		if _, done := resolved[n]; !done {
			remaining[n] = struct{}{}
		}
	}

	t := &tarjan{
		deps:    deps,
		nodes:   remaining,
		index:   make(map[string]int),
		lowlink: make(map[string]int),
		onStack: make(map[string]bool),
	}

	// Iterate in sorted order for determinism.
	sorted := make([]string, 0, len(remaining))
	for n := range remaining {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, n := range sorted {
		if _, seen := t.index[n]; !seen {
			t.strongConnect(n)
			if t.found != nil {
				return t.found
			}
		}
	}
	return nil
}

type tarjan struct {
	deps    map[string]map[string]struct{}
	nodes   map[string]struct{}
	index   map[string]int
	lowlink map[string]int
	onStack map[string]bool
	stack   []string
	counter int
	found   []string
}

func (t *tarjan) strongConnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	neighbors := make([]string, 0, len(t.deps[v]))
	for w := range t.deps[v] {
		if _, ok := t.nodes[w]; ok {
			neighbors = append(neighbors, w)
		}
	}
	sort.Strings(neighbors)

	for _, w := range neighbors {
		if t.found != nil {
			return
		}
		if _, seen := t.index[w]; !seen {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] {
			if t.index[w] < t.lowlink[v] {
				t.lowlink[v] = t.index[w]
			}
		}
	}

	if t.lowlink[v] != t.index[v] {
		return
	}

	// v is the root of an SCC: pop it off the stack.
	var scc []string
	for {
		n := len(t.stack) - 1
		w := t.stack[n]
		t.stack = t.stack[:n]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == v {
			break
		}
	}

	if len(scc) > 1 && t.found == nil {
		sort.Strings(scc)
		t.found = scc
	}
}

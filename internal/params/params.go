// Package params implements the Parameter Expander (spec §4.I): producing
// the cartesian product of parameter lists, evaluating any lazy
// generators first.
package params

import (
	"fmt"
	"strings"

	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/functions"
	"github.com/smilemakc/httpdef/internal/eval"
	"github.com/smilemakc/httpdef/internal/prepare"
)

// Spec is one {name: source} entry. Name may be a hyphen-joined composite
// such as "user-password", producing entries for each of "user" and
// "password" from every row of source.
type Spec struct {
	Name   string
	Source any
}

// SpecsFromRaw converts the raw []map[string]any parameter list (one
// single-key map per entry, as documents declare it) into ordered Specs.
func SpecsFromRaw(raw []map[string]any) ([]Spec, error) {
	specs := make([]Spec, 0, len(raw))
	for _, m := range raw {
		if len(m) != 1 {
			return nil, errs.NewParamsError("parameterize", "each parameter entry must have exactly one name")
		}
		for name, source := range m {
			specs = append(specs, Spec{Name: name, Source: source})
		}
	}
	return specs, nil
}

// Expand computes the cartesian product of every spec's row-list (spec §8
// property 5: output length = product of each source's row count).
// knownVars/reg/vars/cache drive resolution of any template-string source.
func Expand(specs []Spec, knownVars prepare.KnownVariables, reg *functions.Registry, vars map[string]any, cache *eval.FunctionCache) ([]map[string]any, error) {
	rowLists := make([][]map[string]any, len(specs))
	for i, spec := range specs {
		composite := strings.Split(spec.Name, "-")
		rows, err := rowsForSource(spec.Source, composite, knownVars, reg, vars, cache)
		if err != nil {
			return nil, err
		}
		rowLists[i] = rows
	}
	return cartesian(rowLists), nil
}

func rowsForSource(source any, composite []string, knownVars prepare.KnownVariables, reg *functions.Registry, vars map[string]any, cache *eval.FunctionCache) ([]map[string]any, error) {
	switch s := source.(type) {
	case []any:
		rows := make([]map[string]any, len(s))
		for i, elem := range s {
			row, err := zipOrSingle(elem, composite)
			if err != nil {
				return nil, err
			}
			rows[i] = row
		}
		return rows, nil

	case string:
		prepared, err := prepare.Prepare(s, reg, knownVars, false)
		if err != nil {
			return nil, err
		}
		evaluated, err := eval.Evaluate(prepared, vars, cache)
		if err != nil {
			return nil, err
		}
		list, ok := evaluated.([]any)
		if !ok {
			return nil, errs.NewParamsError("parameterize", "template parameter source must evaluate to a list")
		}
		rows := make([]map[string]any, len(list))
		for i, elem := range list {
			row, err := zipOrSingle(elem, composite)
			if err != nil {
				return nil, err
			}
			rows[i] = row
		}
		return rows, nil

	default:
		row, err := zipOrSingle(source, composite)
		if err != nil {
			return nil, err
		}
		return []map[string]any{row}, nil
	}
}

// zipOrSingle maps one source element against the composite parameter
// name list: a map selects exactly the named keys, a list/tuple zips
// positionally, and a scalar is valid only for a single-name composite.
func zipOrSingle(elem any, composite []string) (map[string]any, error) {
	switch e := elem.(type) {
	case map[string]any:
		row := make(map[string]any, len(composite))
		for _, name := range composite {
			v, ok := e[name]
			if !ok {
				return nil, errs.NewParamsError("parameterize", fmt.Sprintf("row missing key %q", name))
			}
			row[name] = v
		}
		return row, nil

	case []any:
		if len(e) != len(composite) {
			return nil, errs.NewParamsError("parameterize", fmt.Sprintf("row has %d entries, expected %d for %v", len(e), len(composite), composite))
		}
		row := make(map[string]any, len(composite))
		for i, name := range composite {
			row[name] = e[i]
		}
		return row, nil

	default:
		if len(composite) != 1 {
			return nil, errs.NewParamsError("parameterize", "scalar row requires exactly one parameter name")
		}
		return map[string]any{composite[0]: elem}, nil
	}
}

func cartesian(rowLists [][]map[string]any) []map[string]any {
	result := []map[string]any{{}}
	for _, rows := range rowLists {
		next := make([]map[string]any, 0, len(result)*len(rows))
		for _, acc := range result {
			for _, row := range rows {
				merged := make(map[string]any, len(acc)+len(row))
				for k, v := range acc {
					merged[k] = v
				}
				for k, v := range row {
					merged[k] = v
				}
				next = append(next, merged)
			}
		}
		result = next
	}
	return result
}

// Package httpdef is the Top-Level Driver (spec §4.J): it walks a parsed
// Document's apis/testcases/testsuites buckets and produces the fully
// resolved ParseResult a downstream HTTP test runner consumes.
package httpdef

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/smilemakc/httpdef/config"
	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/functions"
	"github.com/smilemakc/httpdef/internal/eval"
	"github.com/smilemakc/httpdef/internal/merge"
	"github.com/smilemakc/httpdef/internal/params"
	"github.com/smilemakc/httpdef/internal/prepare"
	"github.com/smilemakc/httpdef/internal/resolve"
	"github.com/smilemakc/httpdef/logger"
	"github.com/smilemakc/httpdef/model"
)

// Parser ties the Function Registry and Merge Engine's configured knobs
// together to run the whole resolution pipeline over a Document.
type Parser struct {
	Registry *functions.Registry
	Options  merge.Options
	Log      *logger.Logger

	doc model.Document
}

// New builds a Parser. reg must not be nil; opts configures the merge
// engine's request-merge knob (spec §4.H.1). Diagnostics are discarded;
// use NewFromConfig to wire up the ambient logger.
func New(reg *functions.Registry, opts merge.Options) *Parser {
	return &Parser{Registry: reg, Options: opts, Log: logger.Noop()}
}

// NewFromConfig builds a Parser from a resolver-core Config (see package
// config): its DefaultComparator feeds the Merge Engine's validator
// normalization knob, and LogLevel/LogFormat construct the ambient
// Logger used for per-step resolution diagnostics.
func NewFromConfig(reg *functions.Registry, cfg config.Config) *Parser {
	return &Parser{
		Registry: reg,
		Options:  merge.Options{DefaultComparator: cfg.DefaultComparator},
		Log:      logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}),
	}
}

// Parse runs the full pipeline over doc, producing one ResolvedTestCase per
// API (synthetic one-step case), per standalone test case, and per
// suite/parameter-row combination (spec §4.J).
func (p *Parser) Parse(doc model.Document) (model.ParseResult, error) {
	p.doc = doc
	cache := eval.NewFunctionCache()
	if p.Log == nil {
		p.Log = logger.Noop()
	}
	p.Log.Debug("parse starting", "apis", len(doc.APIs), "testcases", len(doc.TestCases), "testsuites", len(doc.TestSuites))

	var out []model.ResolvedTestCase

	for _, name := range sortedKeys(doc.APIs) {
		p.Log.Debug("resolving synthetic api case", "api", name)
		api := doc.APIs[name]
		tc := model.TestCase{
			Config:    map[string]any{"name": name, "id": uuid.NewString()},
			TestSteps: []map[string]any{api},
		}
		rtc, err := p.runTestCase(tc, nil, cache)
		if err != nil {
			return model.ParseResult{}, fmt.Errorf("api %s: %w", name, err)
		}
		out = append(out, rtc)
	}

	for _, name := range sortedKeys(doc.TestCases) {
		p.Log.Debug("resolving testcase", "testcase", name)
		rtc, err := p.runTestCase(doc.TestCases[name], nil, cache)
		if err != nil {
			return model.ParseResult{}, fmt.Errorf("testcase %s: %w", name, err)
		}
		out = append(out, rtc)
	}

	for _, name := range sortedKeys(doc.TestSuites) {
		p.Log.Debug("resolving testsuite", "testsuite", name)
		results, err := p.runTestSuite(doc.TestSuites[name], cache)
		if err != nil {
			return model.ParseResult{}, fmt.Errorf("testsuite %s: %w", name, err)
		}
		out = append(out, results...)
	}

	p.Log.Debug("parse complete", "resolved_cases", len(out))
	return model.ParseResult{ProjectMapping: doc.ProjectMapping, TestCases: out}, nil
}

// runTestCase resolves one test case's config (fully concrete, including
// variables merged with overlayVars, the latter winning per key — used by
// runTestSuite to overlay suite/parameter-row values) and prepares (but
// does not evaluate) its teststeps, accumulating known_variables from each
// step's extract block as it goes (spec §4.J).
func (p *Parser) runTestCase(tc model.TestCase, overlayVars map[string]any, cache *eval.FunctionCache) (model.ResolvedTestCase, error) {
	rawVars := merge.MergeVariables(asMap(tc.Config["variables"]), overlayVars)
	known := prepare.NewKnownVariables(sortedKeys(rawVars)...)

	preparedVars := make(map[string]any, len(rawVars))
	for k, v := range rawVars {
		pv, err := prepare.Prepare(v, p.Registry, known, true)
		if err != nil {
			return model.ResolvedTestCase{}, fmt.Errorf("variable %s: %w", k, err)
		}
		preparedVars[k] = pv
	}

	resolvedVars, err := resolve.Resolve(preparedVars, false, cache)
	if err != nil {
		return model.ResolvedTestCase{}, err
	}

	resolvedConfig := make(map[string]any, len(tc.Config))
	for k, v := range tc.Config {
		if k == "variables" {
			continue
		}
		pv, err := prepare.Prepare(v, p.Registry, known, true)
		if err != nil {
			return model.ResolvedTestCase{}, fmt.Errorf("config %s: %w", k, err)
		}
		ev, err := eval.Evaluate(pv, resolvedVars, cache)
		if err != nil {
			return model.ResolvedTestCase{}, fmt.Errorf("config %s: %w", k, err)
		}
		resolvedConfig[k] = ev
	}
	resolvedConfig["variables"] = resolvedVars

	// verify priority: testcase teststep (api) > testcase config > testsuite
	// config (httprunner/parser.py:896-897, 907, 946-947). Defaults to true
	// when absent anywhere in the chain.
	configVerify := true
	if v, ok := resolvedConfig["verify"].(bool); ok {
		configVerify = v
	}

	stepKnown := known.Add(sortedKeys(resolvedVars)...).Add("request", "response")

	outSteps := make([]map[string]any, 0, len(tc.TestSteps))
	for i, step := range tc.TestSteps {
		step, err := p.resolveStepReferences(step, cache, configVerify)
		if err != nil {
			return model.ResolvedTestCase{}, fmt.Errorf("step %d: %w", i, err)
		}
		step = applyDefaultVerify(step, configVerify)

		prepared, err := prepare.Prepare(step, p.Registry, stepKnown, false)
		if err != nil {
			return model.ResolvedTestCase{}, fmt.Errorf("step %d: %w", i, err)
		}
		preparedStep, ok := prepared.(map[string]any)
		if !ok {
			return model.ResolvedTestCase{}, errs.NewParamsError("teststep", "must be a mapping")
		}

		outSteps = append(outSteps, preparedStep)

		if extract, ok := preparedStep["extract"].(map[string]any); ok {
			stepKnown = stepKnown.Add(sortedKeys(extract)...)
		}
	}

	return model.ResolvedTestCase{Config: resolvedConfig, TestSteps: outSteps}, nil
}

// resolveStepReferences expands a step's "api" or "testcase" reference
// before preparation (spec §4.H.1/§4.H.2). A plain request step with
// neither key is returned unchanged. parentVerify is the enclosing test
// case's effective verify value, propagated into a nested test case's
// config when that config doesn't already declare its own (spec §4.J /
// httprunner/parser.py:934, "verify priority: nested testcase config >
// testcase config").
func (p *Parser) resolveStepReferences(step map[string]any, cache *eval.FunctionCache, parentVerify bool) (map[string]any, error) {
	if apiName, ok := step["api"].(string); ok {
		api, exists := p.doc.APIs[apiName]
		if !exists {
			return nil, errs.NewParamsError("teststep", "unknown api reference: "+apiName)
		}
		return merge.ExtendStepWithAPI(withoutKey(step, "api"), api, p.Options)
	}

	if ref, ok := step["testcase"]; ok {
		var nested model.TestCase
		switch t := ref.(type) {
		case string:
			nc, exists := p.doc.TestCases[t]
			if !exists {
				return nil, errs.NewParamsError("teststep", "unknown testcase reference: "+t)
			}
			nested = nc
		case map[string]any:
			nested = model.TestCase{Config: asMap(t["config"]), TestSteps: toStepList(t["teststeps"])}
		default:
			return nil, errs.NewParamsError("teststep", "'testcase' must be a name or inline mapping")
		}

		wrapper := merge.ExtendStepWithTestCase(withoutKey(step, "testcase"), nested)
		nestedConfig := asMap(wrapper["config"])
		if _, hasVerify := nestedConfig["verify"]; !hasVerify {
			nestedConfig["verify"] = parentVerify
		}
		nestedTC := model.TestCase{
			Config:    nestedConfig,
			TestSteps: toStepList(wrapper["teststeps"]),
		}

		resolvedNested, err := p.runTestCase(nestedTC, nil, cache)
		if err != nil {
			return nil, err
		}

		return map[string]any{
			"name":      wrapper["name"],
			"config":    resolvedNested.Config,
			"teststeps": resolvedNested.TestSteps,
		}, nil
	}

	return step, nil
}

// applyDefaultVerify sets step["request"]["verify"] to verify when the
// step has a request block that doesn't already declare its own verify
// flag — the last stop in the priority chain (httprunner/parser.py:946-947).
// A step whose request already carries verify (from an API extension, or
// authored directly) is returned unchanged.
func applyDefaultVerify(step map[string]any, verify bool) map[string]any {
	request, ok := step["request"].(map[string]any)
	if !ok {
		return step
	}
	if _, hasVerify := request["verify"]; hasVerify {
		return step
	}

	reqOut := make(map[string]any, len(request)+1)
	for k, v := range request {
		reqOut[k] = v
	}
	reqOut["verify"] = verify

	out := make(map[string]any, len(step))
	for k, v := range step {
		out[k] = v
	}
	out["request"] = reqOut
	return out
}

// runTestSuite implements spec §4.J's testsuites case: merge each child
// test case's variables over the suite's (case winning per key), resolve
// the merged set eagerly, expand parameters against it if present, then
// run the per-case pipeline once per resulting row.
func (p *Parser) runTestSuite(suite model.TestSuite, cache *eval.FunctionCache) ([]model.ResolvedTestCase, error) {
	suiteVarsRaw := asMap(suite.Config["variables"])

	var out []model.ResolvedTestCase
	for _, name := range sortedKeys(suite.TestCases) {
		ref := suite.TestCases[name]
		caseTC := ref.TestCase
		if sv, ok := suite.Config["verify"]; ok {
			if _, has := caseTC.Config["verify"]; !has {
				cfg := make(map[string]any, len(caseTC.Config)+1)
				for k, v := range caseTC.Config {
					cfg[k] = v
				}
				cfg["verify"] = sv
				caseTC.Config = cfg
			}
		}
		caseVarsRaw := asMap(ref.TestCase.Config["variables"])
		mergedRaw := merge.MergeVariables(suiteVarsRaw, caseVarsRaw)

		known := prepare.NewKnownVariables(sortedKeys(mergedRaw)...)
		prepared := make(map[string]any, len(mergedRaw))
		for k, v := range mergedRaw {
			pv, err := prepare.Prepare(v, p.Registry, known, true)
			if err != nil {
				return nil, fmt.Errorf("suite case %s: variable %s: %w", name, k, err)
			}
			prepared[k] = pv
		}

		resolved, err := resolve.Resolve(prepared, false, cache)
		if err != nil {
			return nil, fmt.Errorf("suite case %s: %w", name, err)
		}

		rows := []map[string]any{resolved}
		if len(ref.Parameters) > 0 {
			specs, err := params.SpecsFromRaw(ref.Parameters)
			if err != nil {
				return nil, fmt.Errorf("suite case %s: %w", name, err)
			}
			expanded, err := params.Expand(specs, known, p.Registry, resolved, cache)
			if err != nil {
				return nil, fmt.Errorf("suite case %s: %w", name, err)
			}
			rows = make([]map[string]any, len(expanded))
			for i, row := range expanded {
				rows[i] = merge.MergeVariables(resolved, row)
			}
			p.Log.Debug("expanded parameters", "testcase", name, "rows", len(rows))
		}

		for _, rowVars := range rows {
			rtc, err := p.runTestCase(caseTC, rowVars, cache)
			if err != nil {
				return nil, fmt.Errorf("suite case %s: %w", name, err)
			}
			if ref.Path != "" {
				rtc.Config["path"] = ref.Path
			}
			if ref.Weight != nil {
				rtc.Config["weight"] = ref.Weight
			}
			out = append(out, rtc)
		}
	}

	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func withoutKey(m map[string]any, key string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k == key {
			continue
		}
		out[k] = v
	}
	return out
}

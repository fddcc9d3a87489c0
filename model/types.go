// Package model defines the plain-data shapes the resolver core operates
// over. Following spec §3/§6, an API definition, test step, test case
// config, and test suite are all "plain data" — maps, lists, and scalars —
// because loading them from YAML/JSON/CSV is an external collaborator's
// job (spec §1, Out of scope). Only the normalized Validator and the
// resolved output shapes are given concrete Go types, since those are
// part of this package's own output contract.
package model

// Validator is the normalized form every accepted validator shape
// collapses to (spec §4.H.3).
type Validator struct {
	Check      string
	Comparator string
	Expect     any
	// Expr holds the raw expression source for the {expr: "..."} form
	// (Comparator == "expr"); Check/Expect are unused in that case since
	// the whole boolean condition lives in the expression text.
	Expr string
}

// Map returns the validator as plain data, the shape a downstream HTTP
// runner or reporter expects to consume.
func (v Validator) Map() map[string]any {
	m := map[string]any{
		"check":      v.Check,
		"comparator": v.Comparator,
		"expect":     v.Expect,
	}
	if v.Comparator == "expr" {
		m["expr"] = v.Expr
	}
	return m
}

// TestCase is a config block plus an ordered list of test steps, still in
// plain-data form (pre-preparation).
type TestCase struct {
	Config    map[string]any
	TestSteps []map[string]any
}

// TestSuite is a config block plus named test cases, each optionally
// carrying a parameter matrix.
type TestSuite struct {
	Config    map[string]any
	TestCases map[string]SuiteTestCaseRef
}

// SuiteTestCaseRef is one test case entry inside a test suite: the
// (possibly inline) test case body plus its optional parameter spec and
// source path (spec §4.J: "config.path is set to the original case's
// source path").
type SuiteTestCaseRef struct {
	TestCase   TestCase
	Parameters []map[string]any // list of {name: source} parameter specs
	Path       string
	Weight     any
}

// Document is the top-level input (spec §6, "tests_mapping").
type Document struct {
	ProjectMapping map[string]any
	APIs           map[string]map[string]any
	TestCases      map[string]TestCase
	TestSuites     map[string]TestSuite
}

// ResolvedTestCase is one fully-resolved output entry (spec §6). Config
// is entirely concrete; TestSteps may still carry *value.LazyString /
// *value.LazyFunction nodes for request/response fields the downstream
// HTTP runner materializes at execution time.
type ResolvedTestCase struct {
	Config    map[string]any
	TestSteps []map[string]any
}

// ParseResult is the top-level output (spec §6).
type ParseResult struct {
	ProjectMapping map[string]any
	TestCases      []ResolvedTestCase
}

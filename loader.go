package httpdef

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/smilemakc/httpdef/errs"
	"github.com/smilemakc/httpdef/model"
)

// LoadDocumentYAML decodes raw YAML bytes into a model.Document. Loading
// the bytes themselves from disk remains the caller's job (spec §1,
// Out of scope); this only covers the boundary between "bytes already in
// memory" and the generic map[string]any structure the rest of the core
// expects, grounded on the teacher's own YAML workflow importer.
func LoadDocumentYAML(data []byte) (model.Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return model.Document{}, fmt.Errorf("decode yaml: %w", err)
	}
	return LoadDocument(raw)
}

// LoadDocument shapes an already-decoded generic document (e.g. from
// encoding/json.Unmarshal into map[string]any, or a caller-assembled map)
// into a model.Document.
func LoadDocument(raw map[string]any) (model.Document, error) {
	doc := model.Document{
		ProjectMapping: asMap(raw["project_mapping"]),
		APIs:           map[string]map[string]any{},
		TestCases:      map[string]model.TestCase{},
		TestSuites:     map[string]model.TestSuite{},
	}

	for name, v := range asMap(raw["apis"]) {
		api, ok := v.(map[string]any)
		if !ok {
			return model.Document{}, errs.NewParamsError("document", "api "+name+" must be a mapping")
		}
		doc.APIs[name] = api
	}

	for name, v := range asMap(raw["testcases"]) {
		tc, err := decodeTestCase(v)
		if err != nil {
			return model.Document{}, fmt.Errorf("testcase %s: %w", name, err)
		}
		doc.TestCases[name] = tc
	}

	for name, v := range asMap(raw["testsuites"]) {
		ts, err := decodeTestSuite(v)
		if err != nil {
			return model.Document{}, fmt.Errorf("testsuite %s: %w", name, err)
		}
		doc.TestSuites[name] = ts
	}

	return doc, nil
}

func decodeTestCase(v any) (model.TestCase, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return model.TestCase{}, errs.NewParamsError("document", "test case must be a mapping")
	}
	return model.TestCase{
		Config:    asMap(m["config"]),
		TestSteps: toStepList(m["teststeps"]),
	}, nil
}

func decodeTestSuite(v any) (model.TestSuite, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return model.TestSuite{}, errs.NewParamsError("document", "test suite must be a mapping")
	}

	suite := model.TestSuite{
		Config:    asMap(m["config"]),
		TestCases: map[string]model.SuiteTestCaseRef{},
	}

	for name, cv := range asMap(m["testcases"]) {
		cm, ok := cv.(map[string]any)
		if !ok {
			return model.TestSuite{}, errs.NewParamsError("document", "suite test case "+name+" must be a mapping")
		}

		body := cm
		if inline, ok := cm["testcase"].(map[string]any); ok {
			body = inline
		}

		tc, err := decodeTestCase(map[string]any{
			"config":    body["config"],
			"teststeps": body["teststeps"],
		})
		if err != nil {
			return model.TestSuite{}, fmt.Errorf("suite test case %s: %w", name, err)
		}

		params := make([]map[string]any, 0)
		for _, p := range toList(cm["parameters"]) {
			if pm, ok := p.(map[string]any); ok {
				params = append(params, pm)
			}
		}

		path, _ := cm["path"].(string)

		suite.TestCases[name] = model.SuiteTestCaseRef{
			TestCase:   tc,
			Parameters: params,
			Path:       path,
			Weight:     cm["weight"],
		}
	}

	return suite, nil
}

func toStepList(v any) []map[string]any {
	steps := make([]map[string]any, 0)
	for _, s := range toList(v) {
		if sm, ok := s.(map[string]any); ok {
			steps = append(steps, sm)
		}
	}
	return steps
}

func toList(v any) []any {
	l, _ := v.([]any)
	return l
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/httpdef/model"
)

func TestNormalizeValidator_LegacyForm(t *testing.T) {
	v, err := NormalizeValidator(map[string]any{
		"check":  "status_code",
		"expect": 200,
	}, "eq")
	require.NoError(t, err)
	assert.Equal(t, model.Validator{Check: "status_code", Comparator: "eq", Expect: 200}, v)
}

func TestNormalizeValidator_LegacyForm_EmptyDefaultComparatorFallsBackToEq(t *testing.T) {
	v, err := NormalizeValidator(map[string]any{
		"check":  "status_code",
		"expect": 200,
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "eq", v.Comparator)
}

func TestNormalizeValidator_LegacyForm_ExplicitComparator(t *testing.T) {
	v, err := NormalizeValidator(map[string]any{
		"check":      "status_code",
		"comparator": "gte",
		"expect":     200,
	}, "eq")
	require.NoError(t, err)
	assert.Equal(t, "gte", v.Comparator)
}

func TestNormalizeValidator_LegacyForm_ExpectedAlias(t *testing.T) {
	v, err := NormalizeValidator(map[string]any{
		"check":    "status_code",
		"expected": 200,
	}, "eq")
	require.NoError(t, err)
	assert.Equal(t, 200, v.Expect)
}

func TestNormalizeValidator_CompactForm(t *testing.T) {
	v, err := NormalizeValidator(map[string]any{
		"eq": []any{"status_code", 200},
	}, "eq")
	require.NoError(t, err)
	assert.Equal(t, model.Validator{Check: "status_code", Comparator: "eq", Expect: 200}, v)
}

func TestNormalizeValidator_AlreadyNormalized_Idempotent(t *testing.T) {
	in := model.Validator{Check: "status_code", Comparator: "eq", Expect: 200}
	v, err := NormalizeValidator(in, "eq")
	require.NoError(t, err)
	assert.Equal(t, in, v)
}

func TestNormalizeValidator_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"not a mapping", "oops"},
		{"legacy missing expect", map[string]any{"check": "status_code"}},
		{"compact too many keys", map[string]any{"eq": []any{"a", 1}, "ne": []any{"b", 2}}},
		{"compact wrong length", map[string]any{"eq": []any{"a"}}},
		{"compact not a list", map[string]any{"eq": "not-a-list"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeValidator(tt.in, "eq")
			assert.Error(t, err)
		})
	}
}

func TestNormalizeValidator_ExprForm(t *testing.T) {
	v, err := NormalizeValidator(map[string]any{
		"expr": "status_code >= 200 && status_code < 300",
	}, "eq")
	require.NoError(t, err)
	assert.Equal(t, model.Validator{Comparator: "expr", Expr: "status_code >= 200 && status_code < 300"}, v)
}

func TestNormalizeValidator_ExprForm_CachesCompiledProgram(t *testing.T) {
	before := exprCache.Len()
	src := "len(body.items) > 0"

	_, err := NormalizeValidator(map[string]any{"expr": src}, "eq")
	require.NoError(t, err)
	assert.Equal(t, before+1, exprCache.Len())

	// Same source string again should hit the cache, not grow it further.
	_, err = NormalizeValidator(map[string]any{"expr": src}, "eq")
	require.NoError(t, err)
	assert.Equal(t, before+1, exprCache.Len())
}

func TestNormalizeValidator_ExprForm_InvalidSyntaxErrors(t *testing.T) {
	_, err := NormalizeValidator(map[string]any{"expr": "status_code >="}, "eq")
	assert.Error(t, err)
}

func TestNormalizeValidator_ExprForm_NonStringErrors(t *testing.T) {
	_, err := NormalizeValidator(map[string]any{"expr": 123}, "eq")
	assert.Error(t, err)
}

func TestValidator_Map_IncludesExprForExprComparator(t *testing.T) {
	v := model.Validator{Comparator: "expr", Expr: "status_code == 200"}
	m := v.Map()
	assert.Equal(t, "status_code == 200", m["expr"])
}

func TestMergeValidators_StepWinsOnMatchingCheck(t *testing.T) {
	api := []any{
		map[string]any{"check": "status_code", "expect": 200},
		map[string]any{"check": "content_type", "expect": "application/json"},
	}
	step := []any{
		map[string]any{"check": "status_code", "expect": 201},
	}

	merged, err := MergeValidators(api, step, "eq")
	require.NoError(t, err)
	require.Len(t, merged, 2)
	assert.Equal(t, "content_type", merged[0].Check, "non-overridden API validator keeps its position")
	assert.Equal(t, "status_code", merged[1].Check)
	assert.Equal(t, 201, merged[1].Expect, "step validator should win over the API's for the same check")
}

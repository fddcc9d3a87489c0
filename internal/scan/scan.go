// Package scan implements the Token Scanner (spec §4.A): finding $var and
// ${func(...)} occurrences and their byte offsets, left to right.
package scan

import "regexp"

// FunctionPattern matches ${name(args)}. The argument character class is
// deliberately narrow — no quote characters — matching spec §4.A exactly;
// this is a documented grammar limitation (spec §9, "Argument parser is
// naive"), not a bug to silently widen.
var FunctionPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\(([$A-Za-z0-9_.\-/\s=,]*)\)\}`)

// VariablePattern matches $name.
var VariablePattern = regexp.MustCompile(`\$([A-Za-z0-9_]+)`)

// FunctionMatch is one ${func(args)} occurrence.
type FunctionMatch struct {
	Start, End int // byte offsets into the scanned string
	Name       string
	ArgsText   string
}

// VariableMatch is one $name occurrence.
type VariableMatch struct {
	Start, End int
	Name       string
}

// Functions returns every function-call occurrence in s, left to right.
// Functions must be scanned before variables (spec §4.A) because a
// function's argument text may itself contain $var fragments that must
// stay inside the call, not be hoisted out as independent variable slots.
func Functions(s string) []FunctionMatch {
	idx := FunctionPattern.FindAllStringSubmatchIndex(s, -1)
	out := make([]FunctionMatch, 0, len(idx))
	for _, m := range idx {
		out = append(out, FunctionMatch{
			Start:    m[0],
			End:      m[1],
			Name:     s[m[2]:m[3]],
			ArgsText: s[m[4]:m[5]],
		})
	}
	return out
}

// Variables returns every $name occurrence in s, left to right. Callers
// must run this against a string that has already had function calls
// removed/placeholdered, so embedded $refs inside function args are not
// double-counted as outer variable slots.
func Variables(s string) []VariableMatch {
	idx := VariablePattern.FindAllStringSubmatchIndex(s, -1)
	out := make([]VariableMatch, 0, len(idx))
	for _, m := range idx {
		out = append(out, VariableMatch{
			Start: m[0],
			End:   m[1],
			Name:  s[m[2]:m[3]],
		})
	}
	return out
}

// HasTemplate reports whether s contains any $var or ${func(...)} token,
// the fast path spec §4.D/E's string case relies on to skip Lazy wrapping.
// A function-only template (e.g. "${uuid()}") has no bare $var anywhere
// in it, so both patterns must be checked.
func HasTemplate(s string) bool {
	return VariablePattern.MatchString(s) || FunctionPattern.MatchString(s)
}

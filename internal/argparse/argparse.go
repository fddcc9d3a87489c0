// Package argparse implements the Argument Parser (spec §4.B): splitting a
// function's argument text into positional and keyword parts with typed
// literal coercion.
package argparse

import (
	"strconv"
	"strings"
)

// Parsed holds the split-and-coerced argument list for one function call.
// Values are either a native Go scalar (int64, float64, bool, string) or
// a raw string still carrying $var tokens, left for the caller (the
// Preparer) to recursively prepare.
type Parsed struct {
	Positional []any
	Keyword    map[string]any
}

// Parse splits argsText on top-level commas — this grammar never allows a
// comma inside a single argument value, a documented limitation (spec §9)
// — and coerces each fragment to a typed literal or leaves it as a raw
// string when coercion fails (preserving embedded $var tokens).
func Parse(argsText string) Parsed {
	p := Parsed{Keyword: map[string]any{}}

	argsText = strings.TrimSpace(argsText)
	if argsText == "" {
		return p
	}

	for _, frag := range strings.Split(argsText, ",") {
		frag = strings.TrimSpace(frag)
		if frag == "" {
			continue
		}

		if eq := strings.Index(frag, "="); eq >= 0 {
			key := strings.TrimSpace(frag[:eq])
			val := strings.TrimSpace(frag[eq+1:])
			p.Keyword[key] = coerce(val)
			continue
		}

		p.Positional = append(p.Positional, coerce(frag))
	}

	return p
}

// coerce attempts to parse s as an int, float, bool, or quoted string
// literal, in that order; on failure it returns s unchanged so a $var
// token embedded in it survives for deferred resolution.
func coerce(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

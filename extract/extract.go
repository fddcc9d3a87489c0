// Package extract implements the supplemented nested-path extraction
// helper (SPEC_FULL §4): resolving a dotted/bracketed path such as
// "body.items[0].id" against a concrete value. The core never calls this
// itself — teststeps carry extract paths as plain strings for the
// downstream HTTP runner to apply once a real response exists (spec §1,
// "actually sending HTTP requests" is out of scope) — but the shape of
// the path grammar is part of this module's contract, so the traversal
// lives here rather than being reinvented by every runner.
package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// Path resolves path against root, supporting dotted field access
// ("body.id"), bracketed array indexing ("items[0]"), and chained
// indices ("items[0][1]"). root is expected to be built from decoded
// JSON/YAML: map[string]any, []any, and scalars.
func Path(root any, path string) (any, error) {
	parts := splitPath(strings.TrimSpace(path))
	if len(parts) == 0 {
		return root, nil
	}

	current := root
	for _, part := range parts {
		next, err := step(current, part)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
		current = next
	}
	return current, nil
}

// step applies one path segment, which may combine a field name with one
// or more array indices (e.g. "items[0][1]" or just "[0]").
func step(value any, part string) (any, error) {
	fieldName := part
	indexPart := ""
	if i := strings.Index(part, "["); i >= 0 {
		fieldName = part[:i]
		indexPart = part[i:]
	}

	current := value
	if fieldName != "" {
		f, err := field(current, fieldName)
		if err != nil {
			return nil, err
		}
		current = f
	}

	if indexPart == "" {
		return current, nil
	}

	indices, err := parseIndices(indexPart)
	if err != nil {
		return nil, err
	}
	for _, idx := range indices {
		current, err = index(current, idx)
		if err != nil {
			return nil, err
		}
	}
	return current, nil
}

func field(value any, name string) (any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot access field %q: value is not an object", name)
	}
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("field %q not found", name)
	}
	return v, nil
}

func index(value any, idx int) (any, error) {
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("cannot index into non-array value")
	}
	if idx < 0 || idx >= len(list) {
		return nil, fmt.Errorf("index %d out of bounds, length %d", idx, len(list))
	}
	return list[idx], nil
}

func parseIndices(expr string) ([]int, error) {
	var indices []int
	start := 0
	for {
		open := strings.Index(expr[start:], "[")
		if open == -1 {
			break
		}
		open += start
		closeIdx := strings.Index(expr[open:], "]")
		if closeIdx == -1 {
			return nil, fmt.Errorf("unterminated index in %q", expr)
		}
		closeIdx += open

		n, err := strconv.Atoi(strings.TrimSpace(expr[open+1 : closeIdx]))
		if err != nil {
			return nil, fmt.Errorf("invalid array index in %q: %w", expr, err)
		}
		indices = append(indices, n)
		start = closeIdx + 1
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("no array index found in %q", expr)
	}
	return indices, nil
}

// splitPath breaks a path into dotted segments, keeping bracketed index
// expressions attached to the segment they follow rather than splitting
// on dots found inside brackets.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}

	var parts []string
	var current strings.Builder
	inBracket := false

	for _, ch := range path {
		switch ch {
		case '.':
			if !inBracket && current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			} else if inBracket {
				current.WriteRune(ch)
			}
		case '[':
			inBracket = true
			current.WriteRune(ch)
		case ']':
			inBracket = false
			current.WriteRune(ch)
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

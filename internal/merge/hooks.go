package merge

import "encoding/json"

// MergeHooks unions two hook lists, API hooks first then step hooks,
// deduplicating by each hook's canonical representation while keeping the
// first occurrence's position. The source deduplicates with an unordered
// set and loses declaration order; per REDESIGN FLAGS ("Merging hooks with
// set semantics loses order") this preserves API-before-step ordering
// instead, since a reasonable hook author expects setup hooks to run in
// the order they were declared.
func MergeHooks(apiHooks, stepHooks []any) []any {
	seen := make(map[string]bool, len(apiHooks)+len(stepHooks))
	out := make([]any, 0, len(apiHooks)+len(stepHooks))

	add := func(hooks []any) {
		for _, h := range hooks {
			key := canonicalKey(h)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, h)
		}
	}

	add(apiHooks)
	add(stepHooks)
	return out
}

func canonicalKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

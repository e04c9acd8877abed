// Package suggest offers "did you mean" candidates for mistyped config keys,
// profile names and schema names, ranked by Levenshtein distance.
package suggest

import (
	"sort"
	"strings"
)

// maxResults caps the number of candidates returned
const maxResults = 3

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// Similar returns up to three names close to unknown, best first.
// Matching is case-insensitive; ties keep the order of names.
func Similar(unknown string, names []string) []string {
	u := strings.ToLower(strings.TrimSpace(unknown))
	if u == "" {
		return nil
	}

	type scored struct {
		name  string
		score int
	}
	var candidates []scored
	limit := max(2, len(u)/2)
	for _, n := range names {
		l := strings.ToLower(n)
		d := levenshtein(u, l)
		// a dotted key whose last segment matches is a strong hint
		if i := strings.LastIndexByte(l, '.'); i >= 0 && l[i+1:] == u {
			d = 0
		}
		if d <= limit {
			candidates = append(candidates, scored{n, d})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})

	var out []string
	for i := 0; i < len(candidates) && i < maxResults; i++ {
		out = append(out, candidates[i].name)
	}
	return out
}

// Hint renders a "did you mean" suffix, or "" when nothing is close
func Hint(unknown string, names []string) string {
	s := Similar(unknown, names)
	if len(s) == 0 {
		return ""
	}
	return " (did you mean " + strings.Join(s, ", ") + "?)"
}

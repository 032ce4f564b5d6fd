package countries

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultLimit caps the number of suggestions.
const DefaultLimit = 100

// Suggest returns the names matching input: case-insensitive prefix matches
// in their original order first, then fuzzy matches by score. A limit of zero
// or less means DefaultLimit. Blank input suggests nothing.
func Suggest(names []string, input string, limit int) []string {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	lower := strings.ToLower(input)
	seen := make(map[int]bool)
	var out []string
	for i, n := range names {
		if strings.HasPrefix(strings.ToLower(n), lower) {
			seen[i] = true
			out = append(out, n)
			if len(out) == limit {
				return out
			}
		}
	}

	for _, m := range fuzzy.Find(input, names) {
		if seen[m.Index] {
			continue
		}
		out = append(out, m.Str)
		if len(out) == limit {
			break
		}
	}
	return out
}

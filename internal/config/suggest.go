package config

import (
	"sort"

	"github.com/sahilm/fuzzy"
)

// Suggest returns up to three known names that fuzzy-match name
func Suggest(name string, known []string) []string {
	matches := fuzzy.Find(name, known)
	if len(matches) == 0 {
		// fall back to the reverse direction: "kovn" won't match "kovan" as a pattern
		for _, k := range known {
			if len(fuzzy.Find(k, []string{name})) > 0 {
				matches = append(matches, fuzzy.Match{Str: k})
			}
		}
	}

	out := make([]string, 0, 3)
	for _, m := range matches {
		if len(out) == 3 {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

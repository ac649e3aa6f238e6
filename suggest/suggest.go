// Package suggest proposes likely intended values for user input that did
// not match any accepted value, such as a mistyped cache setting name.
package suggest

import "github.com/agext/levenshtein"

// String suggests the candidate that most closely matches the input string.
//
// The maximum allowed difference scales with the length of the input. Users
// of the package should not rely on this heuristic as it may change.
//
// If no candidate is close enough, an empty string is returned.
func String(input string, candidates []string) string {
	// Maximum characters that can differ
	maxDist := len(input) / 5
	if maxDist == 0 {
		maxDist = 1
	}

	var match string
	dist := maxDist + 1

	for _, cand := range candidates {
		if input == cand {
			// Exact match.
			return input
		}
		d := levenshtein.Distance(input, cand, nil)
		if d < dist {
			match = cand
			dist = d
		}
	}

	if dist > maxDist {
		// Nothing within the maximum distance.
		return ""
	}

	return match
}

package filter

import "strings"

// Similarity computes Jaccard similarity over the sets of
// whitespace-delimited, case-folded tokens of the two inputs. The result
// is symmetric and in [0, 1]; an empty input on either side yields 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	wordsA := tokenSet(a)
	wordsB := tokenSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}

	union := len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = true
	}
	return set
}

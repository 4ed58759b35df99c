package scoring

import (
	"strings"
	"unicode"

	"github.com/boshu2/playbook/internal/types"
)

// Similarity computes fuzzy lexical similarity between two strings as the
// token-set overlap (Jaccard index) in [0,1]. Identical non-empty strings
// score 1; disjoint or empty strings score 0.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	intersection := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

// LessonSimilarity is the composite similarity between two lessons: the
// mean of the per-field similarity across problem, condition, and
// solution. Averaging all three keeps lessons with matching problems but
// disagreeing remedies from merging.
func LessonSimilarity(a, b types.Lesson) float64 {
	return (Similarity(a.Problem, b.Problem) +
		Similarity(a.Condition, b.Condition) +
		Similarity(a.Solution, b.Solution)) / 3
}

// ExactMatch reports whether two lessons describe the same problem under
// the same condition, the candidate store's dedup key.
func ExactMatch(a, b types.Lesson) bool {
	return a.Problem == b.Problem && a.Condition == b.Condition
}

// tokenize lowercases s and splits it into a set of alphanumeric tokens.
func tokenize(s string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// Package scoring provides the pure functions behind lesson trust: the
// evidence-weighted confidence model, the bounded merge shared by the
// candidate store and the curator, and lexical similarity for dedup.
package scoring

// Confidence converts evidence counts to a trust score in [0,1]:
//
//	(helpful + W*human) / (helpful + notHelpful + W*human)
//
// where W is the human feedback weight. All-helpful evidence scores 1,
// all-not-helpful scores 0, and zero evidence scores 0: no trust
// without evidence. Confidence is always recomputed from counts and
// never stored independently.
func Confidence(helpful, notHelpful, human, humanWeight int) float64 {
	weighted := helpful + humanWeight*human
	total := weighted + notHelpful
	if total <= 0 {
		return 0
	}
	return float64(weighted) / float64(total)
}

// ClampCount bounds a counter to [0, max].
func ClampCount(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}

// AddClamped adds delta to n, clamping the result to [0, max].
func AddClamped(n, delta, max int) int {
	return ClampCount(n+delta, max)
}

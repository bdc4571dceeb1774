// Package similarity implements edit-distance based string comparison used
// for fuzzy matching of words and tags.
//
// Inputs are expected to be short (single words or tags). Both functions are
// quadratic in input length and must not be fed whole documents.
package similarity

import "strings"

// EditDistance returns the Levenshtein distance between a and b, where
// insertion, deletion and substitution each cost 1. Comparison is per rune
// and case-sensitive.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	dp := make([][]int, len(ra)+1)
	for i := range dp {
		dp[i] = make([]int, len(rb)+1)
		dp[i][0] = i
	}
	for j := 0; j <= len(rb); j++ {
		dp[0][j] = j
	}

	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				dp[i][j] = dp[i-1][j-1]
				continue
			}
			dp[i][j] = 1 + min(dp[i-1][j-1], dp[i-1][j], dp[i][j-1])
		}
	}
	return dp[len(ra)][len(rb)]
}

// Similarity returns 1 - distance/maxLen for the lowercased inputs, a value
// in [0, 1]. Two empty strings are identical.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1
	}
	return 1 - float64(EditDistance(a, b))/float64(longest)
}

package similarity

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Composite weights and the substring bonus. The boost can push the weighted
// sum past 1.0, which is why Score clamps.
const (
	ratioWeight    = 0.7
	overlapWeight  = 0.3
	containsBoost  = 0.1
	scorePrecision = 1000 // round to 3 decimal places
)

// Ratio computes a subsequence-based edit similarity: twice the longest
// common subsequence length over the combined rune length of both strings.
// Returns 0 if either string is empty.
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 0
	}
	lcs := edlib.LCS(a, b)
	return float64(2*lcs) / float64(total)
}

// WordOverlap computes the Jaccard index of the whitespace-delimited token
// sets of the two strings. Returns 0 if either token set is empty.
func WordOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// Score combines Ratio and WordOverlap with a flat bonus when one string
// contains the other, rounded to three decimals and clamped to 1.0. Either
// input empty yields 0.
func Score(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	score := Ratio(a, b)*ratioWeight + WordOverlap(a, b)*overlapWeight
	if strings.Contains(a, b) || strings.Contains(b, a) {
		score += containsBoost
	}

	score = math.Round(score*scorePrecision) / scorePrecision
	return math.Min(score, 1.0)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		set[field] = struct{}{}
	}
	return set
}

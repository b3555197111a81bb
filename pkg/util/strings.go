package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

/////////////////////////////////////////////////////////////////////////
////// Name matching
/////////////////////////////////////////////////////////////////////////

// NormaliseName lowercases a team name and collapses its whitespace
func NormaliseName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// LevenshteinDistance counts the single rune edits needed to turn a into b
func LevenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// NameSimilarity scores two whole names from 0 to 1: one minus their edit distance
// over the length of the longer normalised name. Two empty names score 1.
func NameSimilarity(a, b string) float64 {
	a, b = NormaliseName(a), NormaliseName(b)
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(LevenshteinDistance(a, b))/float64(longest)
}

/////////////////////////////////////////////////////////////////////////
////// Decoded value coercion
/////////////////////////////////////////////////////////////////////////

// GetAsInteger reads an int out of a decoded JSON or CSV value. Integers, whole
// floats and numeric strings are accepted.
func GetAsInteger(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, fmt.Errorf("%d is out of int range", n)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, fmt.Errorf("%v is not a whole number in int range", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("cannot read %q as an integer: %w", n, err)
		}
		return i, nil
	case nil:
		return 0, fmt.Errorf("cannot convert nil to integer")
	default:
		return 0, fmt.Errorf("cannot convert type %T to integer", v)
	}
}

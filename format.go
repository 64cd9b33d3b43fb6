// ABOUTME: Monotonic precision formatting for fitness values
// ABOUTME: Formats float64 pairs with just enough digits to show the difference

package main

import (
	"math"
	"strconv"
)

const (
	minFitnessPrecision = 2
	maxFitnessPrecision = 10
)

// FormatWithMonotonicPrecision formats curr with enough decimals to tell it
// apart from prev, never fewer than minPrecision. It returns the precision
// used so callers can pass it back in and keep precision from shrinking.
func FormatWithMonotonicPrecision(prev, curr float64, minPrecision int) (string, int) {
	precision := max(minPrecision, minFitnessPrecision, distinguishingPrecision(prev, curr))
	precision = min(precision, maxFitnessPrecision)

	return strconv.FormatFloat(curr, 'f', precision, 64), precision
}

// distinguishingPrecision returns one digit more than the first precision at
// which prev and curr format differently, or 0 when no digits are needed.
func distinguishingPrecision(prev, curr float64) int {
	if prev == curr || math.IsNaN(prev) || math.IsNaN(curr) || math.IsInf(prev, 0) || math.IsInf(curr, 0) {
		return 0
	}

	for precision := 1; precision <= maxFitnessPrecision; precision++ {
		if strconv.FormatFloat(prev, 'f', precision, 64) != strconv.FormatFloat(curr, 'f', precision, 64) {
			return precision + 1
		}
	}

	return maxFitnessPrecision
}

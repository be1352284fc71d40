package model

import (
	"strconv"
	"strings"
)

// RoundSize returns the number of bracket slots a tableau round label
// stands for: "Table of 64" is 64, "Semi-Finals" is 4, "Finals" is 2.
// Unrecognized labels return 0.
func RoundSize(label string) int {
	normalized := strings.ToLower(strings.TrimSpace(label))
	switch normalized {
	case "finals", "final":
		return 2
	case "semi-finals", "semifinals", "semi-final":
		return 4
	case "quarter-finals", "quarterfinals", "quarter-final":
		return 8
	}
	if rest, ok := strings.CutPrefix(normalized, "table of "); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// SortRoundLabels orders tableau round labels from the largest table to
// the final, keeping unrecognized labels at the end in their given order.
// The bracket page lists rounds left to right in this order already; this
// restores it after grouping rows by label.
func SortRoundLabels(labels []string) []string {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	// Insertion sort keeps the relative order of unrecognized labels.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && RoundSize(sorted[j]) > RoundSize(sorted[j-1]); j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	return sorted
}

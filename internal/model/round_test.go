package model

import (
	"reflect"
	"testing"
)

// TestRoundSize tests bracket size parsing from round labels.
func TestRoundSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		label string
		want  int
	}{
		{
			name:  "table of 64",
			label: "Table of 64",
			want:  64,
		},
		{
			name:  "table of 8",
			label: "Table of 8",
			want:  8,
		},
		{
			name:  "semi finals",
			label: "Semi-Finals",
			want:  4,
		},
		{
			name:  "finals",
			label: "Finals",
			want:  2,
		},
		{
			name:  "lowercase final",
			label: "final",
			want:  2,
		},
		{
			name:  "quarter finals",
			label: "Quarter-Finals",
			want:  8,
		},
		{
			name:  "surrounding whitespace",
			label: "  Table of 128  ",
			want:  128,
		},
		{
			name:  "unrecognized label",
			label: "Repechage",
			want:  0,
		},
		{
			name:  "empty label",
			label: "",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := RoundSize(tt.label); got != tt.want {
				t.Errorf("RoundSize(%q) = %d, want %d", tt.label, got, tt.want)
			}
		})
	}
}

// TestSortRoundLabels tests ordering rounds from largest table to final.
func TestSortRoundLabels(t *testing.T) {
	t.Parallel()

	t.Run("orders mixed labels by bracket size", func(t *testing.T) {
		t.Parallel()

		labels := []string{"Finals", "Table of 64", "Semi-Finals", "Table of 16", "Table of 32", "Table of 8"}
		want := []string{"Table of 64", "Table of 32", "Table of 16", "Table of 8", "Semi-Finals", "Finals"}

		got := SortRoundLabels(labels)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("SortRoundLabels() = %v, want %v", got, want)
		}
	})

	t.Run("keeps unrecognized labels last", func(t *testing.T) {
		t.Parallel()

		labels := []string{"Repechage", "Finals", "Table of 16"}
		want := []string{"Table of 16", "Finals", "Repechage"}

		got := SortRoundLabels(labels)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("SortRoundLabels() = %v, want %v", got, want)
		}
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		t.Parallel()

		labels := []string{"Finals", "Table of 16"}
		SortRoundLabels(labels)
		if labels[0] != "Finals" {
			t.Errorf("input slice changed: %v", labels)
		}
	})
}

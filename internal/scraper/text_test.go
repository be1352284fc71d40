package scraper

import "testing"

// TestCleanText tests whitespace normalization of rendered cell text.
func TestCleanText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text passes through",
			input: "BUDOVSKYI Borys",
			want:  "BUDOVSKYI Borys",
		},
		{
			name:  "non-breaking spaces collapse",
			input: "15 - 5",
			want:  "15 - 5",
		},
		{
			name:  "newlines and tabs collapse",
			input: "\n\tEPIC \n Alberta\t",
			want:  "EPIC Alberta",
		},
		{
			name:  "empty string stays empty",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only becomes empty",
			input: "  \n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestFoldASCII tests diacritic folding of accented names.
func TestFoldASCII(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "epee folds to ASCII",
			input: "Épée",
			want:  "Epee",
		},
		{
			name:  "french names fold",
			input: "François Côté",
			want:  "Francois Cote",
		},
		{
			name:  "umlaut folds",
			input: "Müller",
			want:  "Muller",
		},
		{
			name:  "plain ASCII passes through",
			input: "Senior Mixed Foil",
			want:  "Senior Mixed Foil",
		},
		{
			name:  "empty string stays empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FoldASCII(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestSanitizeFilename tests the tournament name to file name stem rule.
func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spaces become underscores",
			input: "Coupe Excellence 2025",
			want:  "Coupe_Excellence_2025",
		},
		{
			name:  "accents fold",
			input: "Défi Québec",
			want:  "Defi_Quebec",
		},
		{
			name:  "unsafe characters are dropped",
			input: `Open "A/B" <2025>: finale?`,
			want:  "Open_AB_2025_finale",
		},
		{
			name:  "degree sign is dropped",
			input: "45° Open",
			want:  "45_Open",
		},
		{
			name:  "non-breaking space becomes underscore",
			input: "Cup Final",
			want:  "Cup_Final",
		},
		{
			name:  "apostrophes survive",
			input: "Coupe de l'Est",
			want:  "Coupe_de_l'Est",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

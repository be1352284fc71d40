package model

import (
	"strings"
	"testing"
)

// TestNewPage tests page snapshot creation.
func TestNewPage(t *testing.T) {
	t.Parallel()

	t.Run("captures url and content", func(t *testing.T) {
		t.Parallel()

		p := NewPage("https://www.fencingtimelive.com/tournaments/eventSchedule/AAA", "<html><body>schedule</body></html>")

		if p.URL != "https://www.fencingtimelive.com/tournaments/eventSchedule/AAA" {
			t.Errorf("unexpected URL: %q", p.URL)
		}
		if len(p.Raw) == 0 {
			t.Error("expected raw content to be set")
		}
		if p.Hash == "" {
			t.Error("expected hash to be computed")
		}
		if p.FetchedAt.IsZero() {
			t.Error("expected fetched time to be set")
		}
	})

	t.Run("truncates oversized content", func(t *testing.T) {
		t.Parallel()

		big := strings.Repeat("a", MaxPageSize+100)
		p := NewPage("https://www.fencingtimelive.com/pools/scores/AAA/BBB", big)

		if len(p.Raw) != MaxPageSize {
			t.Errorf("raw content is %d bytes, want %d", len(p.Raw), MaxPageSize)
		}
	})
}

// TestComputeHash tests content hashing.
func TestComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("same content yields same hash", func(t *testing.T) {
		t.Parallel()

		a := &Page{Raw: []byte("<html>same</html>")}
		b := &Page{Raw: []byte("<html>same</html>")}
		a.ComputeHash()
		b.ComputeHash()

		if a.Hash != b.Hash {
			t.Errorf("hashes differ: %q vs %q", a.Hash, b.Hash)
		}
	})

	t.Run("different content yields different hash", func(t *testing.T) {
		t.Parallel()

		a := &Page{Raw: []byte("<html>one</html>")}
		b := &Page{Raw: []byte("<html>two</html>")}
		a.ComputeHash()
		b.ComputeHash()

		if a.Hash == b.Hash {
			t.Error("expected different hashes for different content")
		}
	})

	t.Run("empty content clears the hash", func(t *testing.T) {
		t.Parallel()

		p := &Page{Hash: "stale"}
		p.ComputeHash()

		if p.Hash != "" {
			t.Errorf("hash = %q, want empty", p.Hash)
		}
	})
}

package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Page is a rendered page snapshot kept for debugging failed extractions.
// Raw holds the outer HTML the browser produced after client-side
// rendering settled, which is what the extractors actually saw.
type Page struct {
	// URL is the full URL the browser navigated to.
	URL string `json:"url"`

	// FetchedAt is when rendering settled and the snapshot was taken.
	FetchedAt time.Time `json:"fetched_at"`

	// Title is the page title, when one was extracted.
	Title string `json:"title,omitempty"`

	// Raw contains the rendered HTML bytes, truncated to MaxPageSize.
	Raw []byte `json:"-"` // Excluded from JSON to keep reports small

	// Hash is the SHA-256 hash of the raw content, for change detection
	// between runs against the same tournament.
	Hash string `json:"hash,omitempty"`
}

// MaxPageSize is the maximum size of rendered page content to keep.
// Tableau pages with wide viewports render large DOMs; anything beyond
// this is truncated.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// NewPage creates a snapshot of the given rendered HTML, truncating and
// hashing it.
func NewPage(url, html string) *Page {
	p := &Page{
		URL:       url,
		FetchedAt: time.Now(),
		Raw:       []byte(html),
	}
	p.TruncateRaw()
	p.ComputeHash()
	return p
}

// ComputeHash calculates and sets the SHA-256 hash of the page's raw
// content. Call after setting Raw.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}

// TruncateRaw ensures the raw content doesn't exceed MaxPageSize.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}

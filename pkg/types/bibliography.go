// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// BibliographyEntry is one record from the authoritative bibliography source,
// pre-flattened by a loader before index construction.
type BibliographyEntry struct {
	// Key is the citation key, unique within one source.
	Key string `json:"key" yaml:"key"`

	// Identifiers holds the entry's normalized identifiers: DOI, arXiv id,
	// canonical URL. All are normalized the same way as citation targets.
	Identifiers []string `json:"identifiers" yaml:"identifiers"`

	// Authors lists author surnames in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year, or 0 if unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Title is the work's title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Venue is the journal, conference, or preprint server (optional).
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`
}

// IndexWarning is a structured data-quality warning recorded during index
// construction. Warnings are not fatal; the first entry wins.
type IndexWarning struct {
	// Identifier is the colliding normalized identifier.
	Identifier string `json:"identifier" yaml:"identifier"`

	// KeptKey is the key of the entry that won (first in source order).
	KeptKey string `json:"kept_key" yaml:"kept_key"`

	// DroppedKey is the key whose identifier mapping was discarded.
	DroppedKey string `json:"dropped_key" yaml:"dropped_key"`
}

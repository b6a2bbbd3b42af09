// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bibindex builds the in-memory bibliography index that citations
// are resolved against.
//
// The index is constructed once per run from a pre-flattened entry list and
// is read-only afterwards. Identifier collisions keep the first entry in
// source order and are recorded as data-quality warnings, never errors.
package bibindex

import (
	"strings"

	"github.com/pdiddy/cite-engine/internal/keys"
	"github.com/pdiddy/cite-engine/internal/normalize"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// Index maps normalized identifiers to bibliography entries, with a
// secondary author+year table for the low-confidence fallback strategy.
type Index struct {
	entries      []types.BibliographyEntry
	byIdentifier map[string]int
	byKey        map[string]int
	byAuthorYear map[string][]int
	warnings     []types.IndexWarning
}

// Build constructs an Index from entries in O(n). Entry identifiers are
// re-normalized on the way in so that file contents and citation targets
// always compare through the same canonical form.
func Build(entries []types.BibliographyEntry) *Index {
	ix := &Index{
		entries:      entries,
		byIdentifier: make(map[string]int, len(entries)),
		byKey:        make(map[string]int, len(entries)),
		byAuthorYear: make(map[string][]int),
	}

	for i, e := range entries {
		if _, dup := ix.byKey[e.Key]; !dup {
			ix.byKey[e.Key] = i
		}

		for _, raw := range e.Identifiers {
			id := normalize.Normalize(raw)
			if id == "" {
				continue
			}
			if prev, dup := ix.byIdentifier[id]; dup {
				if prev != i {
					ix.warnings = append(ix.warnings, types.IndexWarning{
						Identifier: id,
						KeptKey:    entries[prev].Key,
						DroppedKey: e.Key,
					})
				}
				continue
			}
			ix.byIdentifier[id] = i
		}

		if ay := authorYearKey(e); ay != "" {
			ix.byAuthorYear[ay] = append(ix.byAuthorYear[ay], i)
		}
	}

	return ix
}

// Lookup returns the entry for a normalized identifier.
func (ix *Index) Lookup(normalizedID string) (types.BibliographyEntry, bool) {
	i, ok := ix.byIdentifier[normalizedID]
	if !ok {
		return types.BibliographyEntry{}, false
	}
	return ix.entries[i], true
}

// LookupKey returns the entry with the given citation key.
func (ix *Index) LookupKey(key string) (types.BibliographyEntry, bool) {
	i, ok := ix.byKey[key]
	if !ok {
		return types.BibliographyEntry{}, false
	}
	return ix.entries[i], true
}

// LookupAuthorYear returns every entry whose first author surname and year
// match the heuristic pair. More than one result means the pair is
// ambiguous and must not resolve.
func (ix *Index) LookupAuthorYear(author string, year int) []types.BibliographyEntry {
	if author == "" || year == 0 {
		return nil
	}
	var out []types.BibliographyEntry
	for _, i := range ix.byAuthorYear[keys.Seed(author, year)] {
		out = append(out, ix.entries[i])
	}
	return out
}

// Len returns the number of entries in the index.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Keys returns the set of all entry keys, used to seed the placeholder
// allocator so synthetic keys never shadow real ones.
func (ix *Index) Keys() map[string]bool {
	out := make(map[string]bool, len(ix.byKey))
	for k := range ix.byKey {
		out[k] = true
	}
	return out
}

// Warnings returns the identifier-collision warnings recorded during Build,
// in source order.
func (ix *Index) Warnings() []types.IndexWarning {
	return ix.warnings
}

// authorYearKey derives the secondary lookup key for an entry from its
// first author's surname and year. Entries without both are not indexed
// for the fallback.
func authorYearKey(e types.BibliographyEntry) string {
	if len(e.Authors) == 0 || e.Year == 0 {
		return ""
	}
	name := surname(e.Authors[0])
	if name == "" {
		return ""
	}
	return keys.Seed(name, e.Year)
}

// surname extracts a family name from "Last, First", "First Last", or a
// bare name.
func surname(author string) string {
	author = strings.TrimSpace(author)
	if before, _, found := strings.Cut(author, ","); found {
		return strings.TrimSpace(before)
	}
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

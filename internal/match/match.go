// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match resolves classified citations against the bibliography
// index.
//
// Strategies run in strict priority order and the first hit wins:
//
//  1. exact match on the normalized target,
//  2. retry with an identifier extracted from inside the raw target
//     (a DOI buried in a publisher URL),
//  3. author+year fallback, flagged low-confidence on success.
//
// No strategy fabricates bibliographic data: a resolution either points at
// an entry that exists in the index or the citation stays unresolved with a
// reason code.
package match

import (
	"github.com/pdiddy/cite-engine/internal/bibindex"
	"github.com/pdiddy/cite-engine/internal/normalize"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// Resolve matches one citation against the index and returns its
// resolution. It is a pure function of the citation and the read-only
// index.
func Resolve(cit types.Citation, ix *bibindex.Index) types.Resolution {
	if cit.NormalizedTarget != "" {
		if e, ok := ix.Lookup(cit.NormalizedTarget); ok {
			return types.Resolution{Key: e.Key, Method: types.MethodIdentifier}
		}
	}

	if id, ok := normalize.ExtractEmbedded(cit.RawTarget); ok && id != cit.NormalizedTarget {
		if e, ok := ix.Lookup(id); ok {
			return types.Resolution{Key: e.Key, Method: types.MethodEmbedded}
		}
	}

	if cit.Author != "" && cit.Year != 0 {
		switch candidates := ix.LookupAuthorYear(cit.Author, cit.Year); len(candidates) {
		case 0:
			// Fall through to the unresolved reasons.
		case 1:
			return types.Resolution{
				Key:           candidates[0].Key,
				Method:        types.MethodAuthorYear,
				LowConfidence: true,
			}
		default:
			return types.Resolution{Reason: types.ReasonAmbiguousAuthorYear}
		}
	}

	if cit.NormalizedTarget == "" {
		return types.Resolution{Reason: types.ReasonNoIdentifierFound}
	}
	return types.Resolution{Reason: types.ReasonIdentifierNotInSource}
}

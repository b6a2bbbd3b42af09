// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import "github.com/pdiddy/cite-engine/pkg/types"

// Tracker accumulates every citation that failed resolution. It has no side
// effects beyond accumulation; serialization is a collaborator concern.
type Tracker struct {
	records []types.UnresolvedCitation
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record appends one unresolved citation with its reason code and a
// suggested external action. Nothing is ever dropped or deduplicated: the
// report enumerates each failing citation occurrence.
func (t *Tracker) Record(c types.Citation, reason types.UnresolvedReason) {
	t.records = append(t.records, types.UnresolvedCitation{
		RawTarget:       c.RawTarget,
		AnchorText:      c.AnchorText,
		Author:          c.Author,
		Year:            c.Year,
		Reason:          reason,
		SuggestedAction: suggestedAction(reason),
	})
}

// Report returns the accumulated records in document order.
func (t *Tracker) Report() []types.UnresolvedCitation {
	return t.records
}

func suggestedAction(reason types.UnresolvedReason) string {
	switch reason {
	case types.ReasonNoIdentifierFound:
		return "fix the link target; no DOI, arXiv id, or URL could be derived from it"
	case types.ReasonIdentifierNotInSource:
		return "add the work to the bibliography source"
	case types.ReasonAmbiguousAuthorYear:
		return "multiple entries share this author and year; cite by DOI or arXiv id"
	default:
		return "review the citation manually"
	}
}

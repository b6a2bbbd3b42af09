// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Classification labels a document link after inspection.
type Classification string

const (
	// ClassAcademic marks a link asserted to reference a scholarly work:
	// the anchor text carries a parenthesized year and the target host is
	// not on the exclusion list.
	ClassAcademic Classification = "academic"

	// ClassPlainHyperlink marks an ordinary link with no citation shape.
	ClassPlainHyperlink Classification = "plain"

	// ClassExcluded marks a link whose target host is on the configured
	// denylist of non-scholarly domains. Exclusion wins over anchor shape.
	ClassExcluded Classification = "excluded"
)

// ResolutionMethod records which matching strategy produced a resolution.
type ResolutionMethod string

const (
	// MethodIdentifier is an exact match on the normalized target.
	MethodIdentifier ResolutionMethod = "identifier"

	// MethodEmbedded is a match on an identifier extracted from inside a
	// publisher URL on a secondary pass.
	MethodEmbedded ResolutionMethod = "embedded-identifier"

	// MethodAuthorYear is the heuristic author+year fallback. Matches made
	// this way are low-confidence and should be manually reviewed.
	MethodAuthorYear ResolutionMethod = "author-year"

	// MethodPlaceholder marks a synthetic key allocated for an unresolved
	// citation so the document body can still reference it. Placeholder
	// keys never appear in bibliography output.
	MethodPlaceholder ResolutionMethod = "placeholder"
)

// UnresolvedReason explains why a citation could not be resolved.
type UnresolvedReason string

const (
	// ReasonNoIdentifierFound means the link target yielded no usable
	// comparison key at all (empty or unparsable target).
	ReasonNoIdentifierFound UnresolvedReason = "no-identifier-found"

	// ReasonIdentifierNotInSource means the target produced a comparison
	// key but the bibliography source has no entry for it.
	ReasonIdentifierNotInSource UnresolvedReason = "identifier-not-in-source"

	// ReasonAmbiguousAuthorYear means the author+year fallback matched
	// more than one bibliography entry.
	ReasonAmbiguousAuthorYear UnresolvedReason = "ambiguous-author-year"
)

// Resolution is the outcome of matching one citation against the
// bibliography index. Exactly one of Key or Reason is set.
type Resolution struct {
	// Key is the bibliography entry key, or a placeholder key when
	// Method is MethodPlaceholder.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// Method records the strategy that produced Key.
	Method ResolutionMethod `json:"method,omitempty" yaml:"method,omitempty"`

	// LowConfidence flags heuristic matches for manual review.
	LowConfidence bool `json:"low_confidence,omitempty" yaml:"low_confidence,omitempty"`

	// Reason is set when the citation could not be resolved.
	Reason UnresolvedReason `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Resolved reports whether the resolution points at a real bibliography entry.
func (r Resolution) Resolved() bool {
	return r.Key != "" && r.Method != MethodPlaceholder
}

// Citation is one candidate reference found in the document. It is created
// once per link token during extraction and is immutable afterwards except
// for Resolution, which the matcher sets exactly once.
type Citation struct {
	// AnchorText is the link text as written in the document.
	AnchorText string `json:"anchor_text" yaml:"anchor_text"`

	// RawTarget is the literal URL or identifier as written.
	RawTarget string `json:"raw_target" yaml:"raw_target"`

	// NormalizedTarget is the canonical comparison form of RawTarget.
	NormalizedTarget string `json:"normalized_target" yaml:"normalized_target"`

	// Author is the surname heuristically parsed from the anchor text.
	// Empty when no author shape was found.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Year is the parenthesized year parsed from the anchor text, or 0.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Classification labels the link: academic, plain, or excluded.
	Classification Classification `json:"classification" yaml:"classification"`

	// Resolution is the matching outcome for academic citations.
	Resolution Resolution `json:"resolution" yaml:"resolution"`

	// Start and End are the byte offsets of the whole link in the source
	// document, used by the rewriter to splice in the reference token.
	Start int `json:"-" yaml:"-"`
	End   int `json:"-" yaml:"-"`
}

// UnresolvedCitation is one record in the unresolved-citation report.
type UnresolvedCitation struct {
	// RawTarget is the citation's literal URL or identifier.
	RawTarget string `json:"raw_target" yaml:"raw_target"`

	// AnchorText is the link text as written.
	AnchorText string `json:"anchor_text" yaml:"anchor_text"`

	// Author is the heuristically extracted author surname, if any.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Year is the heuristically extracted year, or 0.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Reason is the machine-readable reason code.
	Reason UnresolvedReason `json:"reason" yaml:"reason"`

	// SuggestedAction tells the reader what would resolve the citation.
	SuggestedAction string `json:"suggested_action" yaml:"suggested_action"`
}

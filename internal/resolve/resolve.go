// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve runs the citation resolution pipeline over one document:
// classify every link, match academic citations against the bibliography
// index, splice reference tokens into the document, and account for every
// citation that could not be resolved.
//
// The pipeline is single-pass and synchronous. It performs no I/O: loaders
// hand it the document bytes and the flattened bibliography entries, and
// collaborators serialize its outputs.
package resolve

import (
	"fmt"

	"github.com/pdiddy/cite-engine/internal/bibindex"
	"github.com/pdiddy/cite-engine/internal/classify"
	"github.com/pdiddy/cite-engine/internal/docmodel"
	"github.com/pdiddy/cite-engine/internal/keys"
	"github.com/pdiddy/cite-engine/internal/match"
	"github.com/pdiddy/cite-engine/internal/normalize"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// Options configure one pipeline run.
type Options struct {
	// Deterministic aborts the run before any document parsing when the
	// bibliography source is empty. Network access never happens inside
	// the pipeline regardless; this flag only hardens the input contract.
	Deterministic bool

	// ExcludedDomains is the denylist injected into the classifier.
	ExcludedDomains []string
}

// Result is the outcome of a completed run.
type Result struct {
	// Output is the rewritten document text.
	Output []byte

	// Citations lists every link found, with classification and
	// resolution, in document order.
	Citations []types.Citation

	// UsedKeys lists each bibliography entry key referenced by a resolved
	// citation, deduplicated, in first-use order. Placeholder keys never
	// appear here.
	UsedKeys []string

	// Unresolved is the report of citations that failed resolution.
	Unresolved []types.UnresolvedCitation

	// Warnings carries identifier-collision warnings from index
	// construction.
	Warnings []types.IndexWarning
}

// Run executes the pipeline. Fatal conditions (empty source in
// deterministic mode, unparsable document) abort before any output is
// produced; per-citation failures accumulate in the unresolved report.
func Run(source []byte, entries []types.BibliographyEntry, opts Options) (*Result, error) {
	if opts.Deterministic && len(entries) == 0 {
		return nil, fmt.Errorf("bibliography source is empty; deterministic mode requires a non-empty source")
	}

	ix := bibindex.Build(entries)

	doc, err := docmodel.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	citations := Extract(doc, opts.ExcludedDomains)

	// Matching is a pure function of each citation and the read-only
	// index, in document order.
	for i := range citations {
		if citations[i].Classification != types.ClassAcademic {
			continue
		}
		citations[i].Resolution = match.Resolve(citations[i], ix)
	}

	// Allocate placeholder keys for unresolved academic citations so the
	// rewritten body can still mark them. Seeding the used set with every
	// index key keeps placeholders from shadowing real entries.
	used := ix.Keys()
	tracker := NewTracker()
	for i := range citations {
		c := &citations[i]
		if c.Classification != types.ClassAcademic || c.Resolution.Key != "" {
			continue
		}
		tracker.Record(*c, c.Resolution.Reason)
		key := keys.Allocate(keys.Seed(c.Author, c.Year), used)
		used[key] = true
		c.Resolution.Key = key
		c.Resolution.Method = types.MethodPlaceholder
	}

	output, err := Rewrite(doc, citations)
	if err != nil {
		return nil, err
	}

	usedKeys, err := usageList(citations, ix)
	if err != nil {
		return nil, err
	}

	return &Result{
		Output:     output,
		Citations:  citations,
		UsedKeys:   usedKeys,
		Unresolved: tracker.Report(),
		Warnings:   ix.Warnings(),
	}, nil
}

// Extract walks the document's link tokens and creates one Citation per
// link, classified and with heuristic author/year fields filled in. Each
// citation is created exactly once; only its resolution is set later.
func Extract(doc *docmodel.Document, excludedDomains []string) []types.Citation {
	classifier := classify.New(excludedDomains)

	links := doc.Links()
	citations := make([]types.Citation, 0, len(links))
	for _, l := range links {
		c := types.Citation{
			AnchorText:       l.AnchorText,
			RawTarget:        l.Destination,
			NormalizedTarget: normalize.Normalize(l.Destination),
			Classification:   classifier.Classify(l.AnchorText, l.Destination),
			Start:            l.Start,
			End:              l.End,
		}
		c.Author, c.Year = classify.ExtractAuthorYear(l.AnchorText)
		citations = append(citations, c)
	}
	return citations
}

// usageList collects the bibliography keys referenced by resolved
// citations, deduplicated in first-use order. A resolved key that is absent
// from the index means fabricated data is about to reach bibliography
// output; that violates the non-fabrication policy and fails the run.
func usageList(citations []types.Citation, ix *bibindex.Index) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, c := range citations {
		if !c.Resolution.Resolved() {
			continue
		}
		key := c.Resolution.Key
		if _, ok := ix.LookupKey(key); !ok {
			return nil, fmt.Errorf("internal: resolved key %q is not in the bibliography index", key)
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out, nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"github.com/pdiddy/cite-engine/internal/docmodel"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// Rewrite replaces each academic citation that carries a key (resolved or
// placeholder) with a Pandoc-style reference token "[@key]". Plain
// hyperlinks, excluded links, and keyless citations pass through untouched.
//
// Replacement operates on link extents from the token tree, never on raw
// substrings, so anchor text containing brackets, ampersands, or nested
// emphasis cannot corrupt the splice. The pass is single and forward-only:
// extents come from the original parse, so rewritten tokens are never
// re-scanned.
func Rewrite(doc *docmodel.Document, citations []types.Citation) ([]byte, error) {
	var reps []docmodel.Replacement
	for _, c := range citations {
		if c.Classification != types.ClassAcademic || c.Resolution.Key == "" {
			continue
		}
		reps = append(reps, docmodel.Replacement{
			Start: c.Start,
			End:   c.End,
			Text:  "[@" + c.Resolution.Key + "]",
		})
	}
	return doc.Splice(reps)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docmodel parses Markdown into a structural token tree and locates
// inline links as subtrees with exact byte extents in the source.
//
// Rewriting operates by splicing replacement text over link extents, so
// every byte outside a replaced extent survives unchanged and serializing
// an untouched document reproduces the input exactly. Anchor text that
// contains nested emphasis, brackets, or ampersands is handled by the tree,
// not by flat string matching.
package docmodel

import (
	"bytes"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Document is a parsed Markdown document. The source bytes are retained
// alongside the tree; all extents index into them.
type Document struct {
	source []byte
	root   ast.Node
}

// Link is one inline link token with its byte extent in the source.
// Start..End covers the whole link form, "[anchor](destination)".
type Link struct {
	// AnchorText is the flattened anchor text, with inline markup removed.
	AnchorText string

	// Destination is the link target exactly as written.
	Destination string

	// Start is the byte offset of the opening bracket.
	Start int

	// End is the byte offset just past the closing parenthesis.
	End int
}

// Parse builds a Document from raw Markdown text. The only fatal input is
// text that is not valid UTF-8; anything else parses into some tree.
func Parse(input []byte) (*Document, error) {
	if !utf8.Valid(input) {
		return nil, fmt.Errorf("document is not valid UTF-8")
	}
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(input))
	return &Document{source: input, root: root}, nil
}

// Source returns the original document bytes.
func (d *Document) Source() []byte {
	return d.source
}

// Serialize returns the document text. With no replacements applied this is
// the input byte-for-byte.
func (d *Document) Serialize() []byte {
	return d.source
}

// Links walks the tree and returns every inline link whose source extent
// could be established, in document order. Reference-style links, autolinks,
// and links with empty anchor text are omitted: the rewriter never touches
// them, so leaving them out keeps them intact.
func (d *Document) Links() []Link {
	var links []Link
	ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		if l, ok := d.linkExtent(link); ok {
			links = append(links, l)
		}
		return ast.WalkSkipChildren, nil
	})
	sort.Slice(links, func(i, j int) bool { return links[i].Start < links[j].Start })
	return links
}

// Replacement substitutes Text for the source bytes in [Start, End).
type Replacement struct {
	Start int
	End   int
	Text  string
}

// Splice applies replacements to the source in a single pass and returns the
// rewritten text. Replacements must lie within the document and must not
// overlap; violations are programming errors and are returned as such.
func (d *Document) Splice(reps []Replacement) ([]byte, error) {
	sorted := make([]Replacement, len(reps))
	copy(sorted, reps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var out []byte
	last := 0
	for _, r := range sorted {
		if r.Start < last || r.End > len(d.source) || r.End < r.Start {
			return nil, fmt.Errorf("internal: replacement [%d,%d) out of order or out of range", r.Start, r.End)
		}
		out = append(out, d.source[last:r.Start]...)
		out = append(out, r.Text...)
		last = r.End
	}
	out = append(out, d.source[last:]...)
	return out, nil
}

// linkExtent computes the full source extent of an inline link node. The
// tree gives exact segments for the anchor text; the surrounding bracket
// and destination syntax is located by scanning outward from those segments
// with a bracket/paren/quote state machine.
func (d *Document) linkExtent(link *ast.Link) (Link, bool) {
	first, lastEnd, ok := textBounds(link)
	if !ok {
		return Link{}, false
	}

	// Scan left from the first anchor byte to the opening bracket. Only
	// inline markers and whitespace may sit between them. An anchor that
	// begins with an image puts that image's "![" between the link bracket
	// and the first text byte; step past it to the real bracket.
	start := first - 1
	for start >= 0 && isInlineMarker(d.source[start]) {
		start--
	}
	for start >= 1 && d.source[start] == '[' && d.source[start-1] == '!' {
		start -= 2
		for start >= 0 && isInlineMarker(d.source[start]) {
			start--
		}
	}
	if start < 0 || d.source[start] != '[' {
		return Link{}, false
	}

	// Scan right from the last anchor byte to the closing bracket, then
	// across "(destination)" honoring nested parens, escapes, and quoted
	// titles. An anchor that ends with an image contributes its own
	// "](...)" group first; accept only the group that carries this
	// link's destination.
	i := lastEnd
	var end int
	for {
		for i < len(d.source) && isInlineMarker(d.source[i]) {
			i++
		}
		if i >= len(d.source) || d.source[i] != ']' {
			return Link{}, false
		}
		i++
		if i >= len(d.source) || d.source[i] != '(' {
			return Link{}, false
		}
		stop, ok := scanDestination(d.source, i)
		if !ok {
			return Link{}, false
		}
		if len(link.Destination) == 0 || bytes.Contains(d.source[i:stop], link.Destination) {
			end = stop
			break
		}
		i = stop
	}

	return Link{
		AnchorText:  anchorText(link, d.source),
		Destination: string(link.Destination),
		Start:       start,
		End:         end,
	}, true
}

// textBounds returns the byte offsets of the first and one past the last
// text segment beneath n. ok is false when n has no text content.
func textBounds(n ast.Node) (first, lastEnd int, ok bool) {
	first, lastEnd = -1, -1
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		t, isText := c.(*ast.Text)
		if !isText || t.Segment.Len() == 0 {
			return ast.WalkContinue, nil
		}
		if first < 0 {
			first = t.Segment.Start
		}
		lastEnd = t.Segment.Stop
		return ast.WalkContinue, nil
	})
	return first, lastEnd, first >= 0
}

// anchorText flattens the anchor subtree to plain text. Backslash escapes
// are resolved so "\[ed.\]" reads back as "[ed.]".
func anchorText(n ast.Node, source []byte) string {
	var out []byte
	ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			out = append(out, t.Segment.Value(source)...)
			if t.SoftLineBreak() || t.HardLineBreak() {
				out = append(out, ' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return string(unescapePunct(out))
}

// unescapePunct removes backslashes that escape ASCII punctuation.
func unescapePunct(b []byte) []byte {
	out := b[:0]
	for i := 0; i < len(b); i++ {
		if b[i] == '\\' && i+1 < len(b) && isASCIIPunct(b[i+1]) {
			continue
		}
		out = append(out, b[i])
	}
	return out
}

func isASCIIPunct(b byte) bool {
	return (b >= '!' && b <= '/') || (b >= ':' && b <= '@') ||
		(b >= '[' && b <= '`') || (b >= '{' && b <= '~')
}

// scanDestination consumes "(...)" starting at the opening parenthesis at
// offset open and returns the offset just past the matching close. Nested
// parentheses balance, backslash escapes the next byte, and quoted titles
// may contain unbalanced parens.
func scanDestination(source []byte, open int) (int, bool) {
	depth := 0
	var quote byte
	for i := open; i < len(source); i++ {
		b := source[i]
		if b == '\\' {
			i++
			continue
		}
		if quote != 0 {
			if b == quote {
				quote = 0
			}
			continue
		}
		switch b {
		case '"', '\'':
			quote = b
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case '\n':
			// Destinations may wrap, but a blank line ends the scan.
			if i+1 < len(source) && source[i+1] == '\n' {
				return 0, false
			}
		}
	}
	return 0, false
}

// isInlineMarker reports whether b is an emphasis or code marker that may
// sit between a bracket and the anchor's first or last text byte.
func isInlineMarker(b byte) bool {
	switch b {
	case '*', '_', '`', '~', ' ', '\t':
		return true
	}
	return false
}

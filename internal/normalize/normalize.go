// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes citation targets into comparison keys.
//
// A comparison key is either a tagged identifier ("doi:10.1145/3377811",
// "arxiv:2301.07041") or a canonicalized https URL. Normalization is pure,
// total, and idempotent: it never fails, and feeding its output back in
// returns the same string.
//
// Identifier shapes are recognized with explicit character scanners rather
// than pattern matching, so malformed input degrades to a best-effort URL
// form instead of misfiring.
package normalize

import (
	"net/url"
	"strings"
)

// mirrorHosts maps known identifier mirror hosts to their primary host.
var mirrorHosts = map[string]string{
	"dx.doi.org":       "doi.org",
	"export.arxiv.org": "arxiv.org",
}

// Normalize returns the canonical comparison key for a raw citation target.
//
// Rules, in order: scheme canonicalization (http to https), mirror-host
// folding, trailing-slash removal, arXiv version-suffix stripping, and
// extraction of DOI or arXiv identifiers into tagged form. Anything else
// comes back as a canonicalized URL string.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if id, ok := bareIdentifier(s); ok {
		return id
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" || u.Scheme == "" {
		return strings.TrimSuffix(s, "/")
	}

	// Only the http scheme is canonicalized; ftp and friends stay as
	// written.
	if u.Scheme == "http" {
		u.Scheme = "https"
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if primary, ok := mirrorHosts[host]; ok {
		host = primary
	}

	path := strings.TrimSuffix(u.EscapedPath(), "/")

	switch host {
	case "doi.org":
		if doi, ok := scanDOI(decodePath(strings.TrimPrefix(path, "/"))); ok {
			return "doi:" + strings.ToLower(doi)
		}
	case "arxiv.org":
		if id, ok := arxivFromPath(path); ok {
			return "arxiv:" + id
		}
	}

	out := u.Scheme + "://" + host + path
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out
}

// ExtractEmbedded scans a raw target for a DOI or arXiv identifier embedded
// inside a publisher URL (for example a DOI in a journal article path). It
// returns the tagged identifier and true, or "" and false. This is the
// secondary extraction pass used when direct lookup fails.
func ExtractEmbedded(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if u, err := url.Parse(s); err == nil && u.Host != "" {
		s = decodePath(u.Path)
		if u.RawQuery != "" {
			if q, err := url.QueryUnescape(u.RawQuery); err == nil {
				s += "?" + q
			}
		}
	}

	// DOI embedded anywhere in the path: find a "10." run and scan from it.
	for i := 0; i+4 < len(s); i++ {
		if s[i] != '1' || s[i+1] != '0' || s[i+2] != '.' {
			continue
		}
		if doi, ok := scanDOI(s[i:]); ok {
			return "doi:" + strings.ToLower(doi), true
		}
	}

	// arXiv id after an "abs/" or "pdf/" path element.
	for _, marker := range []string{"abs/", "pdf/"} {
		if j := strings.Index(s, marker); j >= 0 {
			if id, ok := scanArxiv(s[j+len(marker):]); ok {
				return "arxiv:" + id, true
			}
		}
	}

	return "", false
}

// bareIdentifier recognizes targets that are already identifiers rather
// than URLs: tagged forms, bare DOIs, and arXiv ids with or without the
// "arXiv:" prefix.
func bareIdentifier(s string) (string, bool) {
	lower := strings.ToLower(s)

	if rest, ok := strings.CutPrefix(lower, "doi:"); ok {
		rest = strings.TrimSuffix(rest, "/")
		if doi, ok := scanDOI(rest); ok && len(doi) == len(rest) {
			return "doi:" + doi, true
		}
		return "", false
	}

	if rest, ok := strings.CutPrefix(lower, "arxiv:"); ok {
		if id, ok := scanArxiv(rest); ok {
			return "arxiv:" + id, true
		}
		return "", false
	}

	if doi, ok := scanDOI(lower); ok && len(doi) == len(lower) {
		return "doi:" + doi, true
	}

	if id, ok := scanArxiv(s); ok && trailerLen(s) == 0 {
		return "arxiv:" + id, true
	}

	return "", false
}

// scanDOI reads a DOI from the start of s: "10." followed by a registrant
// code of up to nine digits, a slash, and a non-empty suffix. The suffix
// ends at the first whitespace character; trailing sentence punctuation is
// trimmed.
func scanDOI(s string) (string, bool) {
	if !strings.HasPrefix(s, "10.") {
		return "", false
	}
	i := 3
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	digits := i - 3
	if digits < 1 || digits > 9 || i >= len(s) || s[i] != '/' {
		return "", false
	}
	i++ // slash
	start := i
	for i < len(s) && !isSpace(s[i]) {
		i++
	}
	doi := strings.TrimRight(s[:i], ".,;:)]}\"'")
	if len(doi) <= start {
		return "", false
	}
	return doi, true
}

// scanArxiv reads a new-style arXiv id from the start of s: four digits,
// a dot, four or five digits, and an optional version suffix ("v2"). The
// version suffix is stripped from the returned id.
func scanArxiv(s string) (string, bool) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i != 4 || i >= len(s) || s[i] != '.' {
		return "", false
	}
	i++ // dot
	j := i
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j-i < 4 || j-i > 5 {
		return "", false
	}
	id := s[:j]

	// Optional version suffix: strip it.
	if j < len(s) && (s[j] == 'v' || s[j] == 'V') {
		k := j + 1
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j+1 {
			j = k
		}
	}
	if j < len(s) && !isDelimiter(s[j]) {
		return "", false
	}
	return id, true
}

// arxivFromPath extracts an arXiv id from an arxiv.org URL path like
// "/abs/2301.07041v2" or "/pdf/2301.07041.pdf".
func arxivFromPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, "/abs/")
	if !ok {
		rest, ok = strings.CutPrefix(path, "/pdf/")
	}
	if !ok {
		return "", false
	}
	rest = strings.TrimSuffix(rest, ".pdf")
	return scanArxiv(decodePath(rest))
}

// trailerLen counts characters after a leading arXiv id in s. Zero means the
// whole string is the id (plus at most a version suffix).
func trailerLen(s string) int {
	i := 0
	for i < len(s) && (isDigit(s[i]) || s[i] == '.') {
		i++
	}
	if i < len(s) && (s[i] == 'v' || s[i] == 'V') {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return len(s) - i
}

func decodePath(p string) string {
	if decoded, err := url.PathUnescape(p); err == nil {
		return decoded
	}
	return p
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// isDelimiter reports whether b can legitimately follow an arXiv id inside
// a longer string (path separator, query, or whitespace).
func isDelimiter(b byte) bool {
	return isSpace(b) || b == '/' || b == '?' || b == '#' || b == ')' || b == ']'
}

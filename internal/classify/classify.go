// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides whether a document link is an academic citation,
// a plain hyperlink, or a link on an excluded domain.
//
// Exclusion is checked before anchor shape: a link on an excluded host is
// never a citation even when its anchor text happens to look like
// "Author (Year)".
package classify

import (
	"net/url"
	"strings"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// Classifier applies the injected domain denylist and the anchor-text shape
// test. The denylist is configuration data, not logic.
type Classifier struct {
	excluded []string
}

// New builds a Classifier from a denylist of hosts. A listed host matches
// itself and any subdomain.
func New(excludedDomains []string) *Classifier {
	hosts := make([]string, 0, len(excludedDomains))
	for _, d := range excludedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			hosts = append(hosts, d)
		}
	}
	return &Classifier{excluded: hosts}
}

// Classify labels one link. Order matters: excluded domain first, then the
// parenthesized-year test, then academic.
func (c *Classifier) Classify(anchorText, target string) types.Classification {
	if c.isExcludedHost(target) {
		return types.ClassExcluded
	}
	if _, ok := parenYear(anchorText); !ok {
		return types.ClassPlainHyperlink
	}
	return types.ClassAcademic
}

func (c *Classifier) isExcludedHost(target string) bool {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range c.excluded {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// ExtractAuthorYear pulls a heuristic author surname and year from anchor
// text shaped like "Smith (2020)" or "Lee et al. (2021)". The author is the
// first word before the parenthesized year; connectives and initials are
// not untangled. Callers must treat the result as low-confidence.
func ExtractAuthorYear(anchorText string) (author string, year int) {
	year, ok := parenYear(anchorText)
	if !ok {
		return "", 0
	}

	open := strings.LastIndex(anchorText, "(")
	fields := strings.Fields(anchorText[:open])
	if len(fields) == 0 {
		return "", year
	}
	author = strings.Trim(fields[0], ",.;:")
	return author, year
}

// parenYear scans for a "(dddd)" token and returns the year. Scanning is an
// explicit character walk so bracketed years inside larger parenthesized
// runs ("(see Smith 2020)") do not match.
func parenYear(s string) (int, bool) {
	for i := 0; i+5 < len(s); i++ {
		if s[i] != '(' {
			continue
		}
		year := 0
		j := i + 1
		for ; j < i+5; j++ {
			if s[j] < '0' || s[j] > '9' {
				year = -1
				break
			}
			year = year*10 + int(s[j]-'0')
		}
		if year > 0 && j < len(s) && s[j] == ')' {
			return year, true
		}
	}
	return 0, false
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdiddy/cite-engine/pkg/types"
)

var testEntries = []types.BibliographyEntry{
	{
		Key:         "smith2020",
		Identifiers: []string{"doi:10.1/x"},
		Authors:     []string{"Smith"},
		Year:        2020,
		Title:       "A Study of Studies",
	},
	{
		Key:         "lee2021",
		Identifiers: []string{"arxiv:2301.07041"},
		Authors:     []string{"Lee"},
		Year:        2021,
		Title:       "Learning to Cite",
	},
}

func TestRunResolvesIdentifierMatch(t *testing.T) {
	source := []byte("See [Smith (2020)](https://doi.org/10.1/x) for details.\n")

	res, err := Run(source, testEntries, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "See [@smith2020] for details.\n"
	if string(res.Output) != want {
		t.Errorf("output = %q, want %q", res.Output, want)
	}
	if len(res.Unresolved) != 0 {
		t.Errorf("unresolved = %+v, want none", res.Unresolved)
	}
	if len(res.UsedKeys) != 1 || res.UsedKeys[0] != "smith2020" {
		t.Errorf("used keys = %v, want [smith2020]", res.UsedKeys)
	}
}

func TestRunLeavesExcludedAndPlainLinks(t *testing.T) {
	source := []byte("Code at [GitHub repo](https://github.com/org/repo), " +
		"docs at [Docs](https://example.com/page).\n")

	res, err := Run(source, testEntries, Options{ExcludedDomains: []string{"github.com"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !bytes.Equal(res.Output, source) {
		t.Errorf("output = %q, want input unchanged", res.Output)
	}
	if len(res.Citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(res.Citations))
	}
	if got := res.Citations[0].Classification; got != types.ClassExcluded {
		t.Errorf("github link classified %q, want %q", got, types.ClassExcluded)
	}
	if got := res.Citations[1].Classification; got != types.ClassPlainHyperlink {
		t.Errorf("docs link classified %q, want %q", got, types.ClassPlainHyperlink)
	}
	if len(res.UsedKeys) != 0 {
		t.Errorf("used keys = %v, want none", res.UsedKeys)
	}
}

func TestRunUnresolvedGetsPlaceholderNotUsage(t *testing.T) {
	source := []byte("Per [Lee et al. (2021)](https://example.org/missing), citing is hard.\n")

	res, err := Run(source, nil, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(res.Unresolved) != 1 {
		t.Fatalf("unresolved = %+v, want one record", res.Unresolved)
	}
	rec := res.Unresolved[0]
	if rec.Reason != types.ReasonIdentifierNotInSource {
		t.Errorf("reason = %q, want %q", rec.Reason, types.ReasonIdentifierNotInSource)
	}
	if rec.Author != "Lee" || rec.Year != 2021 {
		t.Errorf("record author/year = %q/%d, want Lee/2021", rec.Author, rec.Year)
	}
	if rec.SuggestedAction == "" {
		t.Error("record has no suggested action")
	}

	// The body is marked with a placeholder key, but the usage list stays
	// empty: placeholders must never reach bibliography output.
	if !strings.Contains(string(res.Output), "[@lee2021]") {
		t.Errorf("output missing placeholder token: %q", res.Output)
	}
	if len(res.UsedKeys) != 0 {
		t.Errorf("used keys = %v, want none", res.UsedKeys)
	}
}

func TestRunPlaceholderKeysDoNotCollide(t *testing.T) {
	source := []byte("First [Lee (2021)](https://example.org/a), " +
		"then [Lee (2021)](https://example.org/b).\n")

	res, err := Run(source, nil, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := string(res.Output)
	if !strings.Contains(out, "[@lee2021]") || !strings.Contains(out, "[@lee2021a]") {
		t.Errorf("output = %q, want placeholders lee2021 and lee2021a", out)
	}
}

// A placeholder seed matching a real entry key must step past it rather
// than shadow the entry.
func TestRunPlaceholderAvoidsIndexKeys(t *testing.T) {
	source := []byte("See [Lee (2021)](https://example.org/unrelated).\n")

	res, err := Run(source, []types.BibliographyEntry{testEntries[0]}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// smith2020 is the only entry; the Lee citation misses and gets a
	// placeholder seeded lee2021, which is free.
	if !strings.Contains(string(res.Output), "[@lee2021]") {
		t.Errorf("output = %q, want [@lee2021]", res.Output)
	}

	// Now with lee2021 occupied by a real entry the placeholder steps to
	// lee2021a. The real entry has different identifiers, so the citation
	// still resolves by author/year first; use an author the index does
	// not know to force the placeholder path.
	source = []byte("See [Leeson (2021)](https://example.org/unrelated).\n")
	entries := []types.BibliographyEntry{
		{Key: "leeson2021", Identifiers: []string{"doi:10.7/z"}, Authors: []string{"Zed"}, Year: 1999},
	}
	res, err = Run(source, entries, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(string(res.Output), "[@leeson2021a]") {
		t.Errorf("output = %q, want [@leeson2021a]", res.Output)
	}
}

func TestRunDeterministicRejectsEmptySource(t *testing.T) {
	source := []byte("\xff\xfe not even valid utf-8")

	_, err := Run(source, nil, Options{Deterministic: true})
	if err == nil {
		t.Fatal("Run succeeded with an empty bibliography in deterministic mode")
	}
	// The abort happens before document parsing: an unparsable document
	// must not surface a parse error here.
	if strings.Contains(err.Error(), "parsing document") {
		t.Errorf("err = %v, want empty-source error before parsing", err)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	source := []byte("[Smith (2020)](https://doi.org/10.1/x) and " +
		"[Lee et al. (2021)](https://example.org/missing) and " +
		"[Docs](https://example.com/page).\n")

	first, err := Run(source, testEntries, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := Run(source, testEntries, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !bytes.Equal(first.Output, second.Output) {
		t.Errorf("outputs differ:\n%q\n%q", first.Output, second.Output)
	}
	if len(first.Unresolved) != len(second.Unresolved) {
		t.Fatalf("unresolved counts differ: %d vs %d", len(first.Unresolved), len(second.Unresolved))
	}
	for i := range first.Unresolved {
		if first.Unresolved[i] != second.Unresolved[i] {
			t.Errorf("unresolved[%d] differs: %+v vs %+v", i, first.Unresolved[i], second.Unresolved[i])
		}
	}
}

func TestRunUsageListDedupesInFirstUseOrder(t *testing.T) {
	source := []byte("[Lee (2021)](https://arxiv.org/abs/2301.07041), then " +
		"[Smith (2020)](https://doi.org/10.1/x), then " +
		"[Lee again (2021)](https://arxiv.org/abs/2301.07041v2).\n")

	res, err := Run(source, testEntries, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{"lee2021", "smith2020"}
	if len(res.UsedKeys) != len(want) {
		t.Fatalf("used keys = %v, want %v", res.UsedKeys, want)
	}
	for i, k := range want {
		if res.UsedKeys[i] != k {
			t.Errorf("used keys = %v, want %v", res.UsedKeys, want)
			break
		}
	}
}

func TestRunCollisionWarnings(t *testing.T) {
	entries := append([]types.BibliographyEntry{}, testEntries...)
	entries = append(entries, types.BibliographyEntry{
		Key:         "smith2020dup",
		Identifiers: []string{"doi:10.1/x"},
		Authors:     []string{"Smith"},
		Year:        2020,
	})

	res, err := Run([]byte("no links here\n"), entries, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %+v, want one", res.Warnings)
	}
	w := res.Warnings[0]
	if w.Identifier != "doi:10.1/x" || w.KeptKey != "smith2020" || w.DroppedKey != "smith2020dup" {
		t.Errorf("warning = %+v", w)
	}
}

func TestRunRoundTripsWhenNothingResolves(t *testing.T) {
	source := []byte("# Notes\n\nPlain text, a [link](https://example.com/a), and *emphasis*.\n")

	res, err := Run(source, testEntries, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !bytes.Equal(res.Output, source) {
		t.Errorf("output = %q, want input unchanged", res.Output)
	}
}

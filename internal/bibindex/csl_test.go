// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibindex

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/cite-engine/pkg/types"
)

const testBibliography = `- id: smith2020
  type: article
  title: A Study of Studies
  author:
    - family: Smith
      given: Jane
  issued:
    date-parts:
      - [2020, 3]
  DOI: 10.1/X
- id: lee2021
  type: article
  title: Learning to Cite
  author:
    - family: Lee
    - literal: The Cite Consortium
  issued:
    date-parts:
      - [2021]
  URL: https://arxiv.org/abs/2301.07041
`

func writeBibliography(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "references.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLibraryAndEntries(t *testing.T) {
	lib, err := LoadLibrary(writeBibliography(t, testBibliography))
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}

	entries := lib.Entries()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	smith := entries[0]
	if smith.Key != "smith2020" || smith.Year != 2020 || smith.Title != "A Study of Studies" {
		t.Errorf("smith entry = %+v", smith)
	}
	if len(smith.Identifiers) != 1 || smith.Identifiers[0] != "doi:10.1/x" {
		t.Errorf("smith identifiers = %v", smith.Identifiers)
	}
	if len(smith.Authors) != 1 || smith.Authors[0] != "Smith" {
		t.Errorf("smith authors = %v", smith.Authors)
	}

	lee := entries[1]
	if lee.Key != "lee2021" || lee.Year != 2021 {
		t.Errorf("lee entry = %+v", lee)
	}
	if len(lee.Authors) != 2 || lee.Authors[1] != "The Cite Consortium" {
		t.Errorf("lee authors = %v", lee.Authors)
	}

	// The URL identifier must survive into the index through normalization.
	ix := Build(entries)
	if e, ok := ix.Lookup("arxiv:2301.07041"); !ok || e.Key != "lee2021" {
		t.Errorf("Lookup(arxiv:2301.07041) = %q, %v", e.Key, ok)
	}
}

func TestLoadLibraryMissingFile(t *testing.T) {
	if _, err := LoadLibrary(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadLibrary succeeded on a missing file")
	}
}

func TestLoadLibraryMalformed(t *testing.T) {
	if _, err := LoadLibrary(writeBibliography(t, "id: [unclosed")); err == nil {
		t.Fatal("LoadLibrary succeeded on malformed YAML")
	}
}

func TestWriteFiltered(t *testing.T) {
	lib, err := LoadLibrary(writeBibliography(t, testBibliography))
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}

	var buf bytes.Buffer
	if err := lib.WriteFiltered(&buf, []string{"lee2021"}); err != nil {
		t.Fatalf("WriteFiltered: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "lee2021") {
		t.Errorf("filtered output missing cited entry:\n%s", out)
	}
	if strings.Contains(out, "smith2020") {
		t.Errorf("filtered output contains uncited entry:\n%s", out)
	}
}

// A key that is not in the library is a placeholder leaking toward
// bibliography output; WriteFiltered must refuse, not guess.
func TestWriteFilteredRejectsUnknownKey(t *testing.T) {
	lib, err := LoadLibrary(writeBibliography(t, testBibliography))
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}

	var buf bytes.Buffer
	err = lib.WriteFiltered(&buf, []string{"smith2020", "ghost2019"})
	if err == nil {
		t.Fatal("WriteFiltered accepted a key absent from the library")
	}
	if !strings.Contains(err.Error(), "ghost2019") {
		t.Errorf("error does not name the offending key: %v", err)
	}
}

func TestLibraryFromEntries(t *testing.T) {
	entries := []types.BibliographyEntry{
		{
			Key:         "smith2020",
			Identifiers: []string{"doi:10.1/x", "https://example.com/smith"},
			Authors:     []string{"Smith"},
			Year:        2020,
			Title:       "A Study of Studies",
		},
		{
			Key:         "lee2021",
			Identifiers: []string{"arxiv:2301.07041"},
			Year:        2021,
		},
	}

	lib := LibraryFromEntries(entries)
	if len(lib.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(lib.Items))
	}

	smith := lib.Items[0]
	if smith.ID != "smith2020" || smith.DOI != "10.1/x" || smith.URL != "https://example.com/smith" {
		t.Errorf("smith item = %+v", smith)
	}
	if smith.Issued == nil || smith.Issued.DateParts[0][0] != 2020 {
		t.Errorf("smith issued = %+v", smith.Issued)
	}

	lee := lib.Items[1]
	if lee.URL != "https://arxiv.org/abs/2301.07041" {
		t.Errorf("lee URL = %q", lee.URL)
	}

	// Round trip: flattening the rebuilt library matches on identifiers.
	rebuilt := lib.Entries()
	ix := Build(rebuilt)
	if e, ok := ix.Lookup("doi:10.1/x"); !ok || e.Key != "smith2020" {
		t.Errorf("rebuilt Lookup(doi:10.1/x) = %q, %v", e.Key, ok)
	}
	if e, ok := ix.Lookup("arxiv:2301.07041"); !ok || e.Key != "lee2021" {
		t.Errorf("rebuilt Lookup(arxiv:2301.07041) = %q, %v", e.Key, ok)
	}
}

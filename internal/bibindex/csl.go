// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibindex

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/cite-engine/pkg/types"
)

// CSLItem is one bibliographic entry in CSL (Citation Style Language)
// format. Field names follow the CSL-JSON/CSL-YAML schema so bibliography
// files are interchangeable with Pandoc and reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	DOI      string    `yaml:"DOI,omitempty"`
	URL      string    `yaml:"URL,omitempty"`
	Venue    string    `yaml:"container-title,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// Library holds a loaded CSL bibliography. It retains the original items so
// a filtered bibliography can be emitted without re-deriving any field.
type Library struct {
	Items []CSLItem
}

// LoadLibrary reads a CSL-YAML bibliography file. A missing file is an
// error: callers decide whether that aborts the run.
func LoadLibrary(path string) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Library{}, fmt.Errorf("reading bibliography %s: %w", path, err)
	}
	var items []CSLItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return Library{}, fmt.Errorf("parsing bibliography %s: %w", path, err)
	}
	return Library{Items: items}, nil
}

// Entries flattens the library into BibliographyEntry values for index
// construction. Identifier strings are passed through as written; Build
// normalizes them.
func (l Library) Entries() []types.BibliographyEntry {
	entries := make([]types.BibliographyEntry, 0, len(l.Items))
	for _, item := range l.Items {
		e := types.BibliographyEntry{
			Key:   item.ID,
			Title: item.Title,
			Venue: item.Venue,
		}
		if item.DOI != "" {
			e.Identifiers = append(e.Identifiers, "doi:"+strings.ToLower(item.DOI))
		}
		if item.URL != "" {
			e.Identifiers = append(e.Identifiers, item.URL)
		}
		for _, a := range item.Author {
			if a.Family != "" {
				e.Authors = append(e.Authors, a.Family)
			} else if a.Literal != "" {
				e.Authors = append(e.Authors, a.Literal)
			}
		}
		if item.Issued != nil && len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
			e.Year = item.Issued.DateParts[0][0]
		}
		entries = append(entries, e)
	}
	return entries
}

// WriteFiltered emits a CSL-YAML bibliography containing only the entries
// whose keys appear in usedKeys, preserving library order. Every key must
// exist in the library: a key that does not is a placeholder or fabricated
// key leaking into bibliography output, which is a programming error.
func (l Library) WriteFiltered(w io.Writer, usedKeys []string) error {
	want := make(map[string]bool, len(usedKeys))
	for _, k := range usedKeys {
		want[k] = true
	}

	var items []CSLItem
	for _, item := range l.Items {
		if want[item.ID] {
			items = append(items, item)
			delete(want, item.ID)
		}
	}
	if len(want) > 0 {
		for k := range want {
			return fmt.Errorf("internal: key %q is not in the bibliography source; refusing to emit it", k)
		}
	}

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// LibraryFromEntries rebuilds CSL items from flattened entries, for sources
// (such as the local catalog) that do not carry original CSL records.
func LibraryFromEntries(entries []types.BibliographyEntry) Library {
	items := make([]CSLItem, 0, len(entries))
	for _, e := range entries {
		item := CSLItem{
			ID:    e.Key,
			Type:  "article",
			Title: e.Title,
			Venue: e.Venue,
		}
		for _, id := range e.Identifiers {
			switch {
			case strings.HasPrefix(id, "doi:"):
				item.DOI = strings.TrimPrefix(id, "doi:")
			case strings.HasPrefix(id, "arxiv:"):
				item.URL = "https://arxiv.org/abs/" + strings.TrimPrefix(id, "arxiv:")
			case item.URL == "":
				item.URL = id
			}
		}
		for _, a := range e.Authors {
			item.Author = append(item.Author, CSLName{Family: a})
		}
		if e.Year > 0 {
			item.Issued = &CSLDate{DateParts: [][]int{{e.Year}}}
		}
		items = append(items, item)
	}
	return Library{Items: items}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/cite-engine/internal/httputil"
	"github.com/pdiddy/cite-engine/internal/normalize"
	"github.com/pdiddy/cite-engine/pkg/types"
)

// openAlexWorksBase is the OpenAlex single-work endpoint. Declared as a var
// so tests can substitute an httptest server.
var openAlexWorksBase = "https://api.openalex.org/works/"

// ResponseCache memoizes raw API responses. The store implements it; the
// cache is passed in explicitly rather than held in package state.
type ResponseCache interface {
	CachedResponse(ctx context.Context, url string) ([]byte, bool, error)
	StoreResponse(ctx context.Context, url string, body []byte) error
}

// Fetcher retrieves bibliography metadata for DOI identifiers from the
// OpenAlex API.
type Fetcher struct {
	Client *http.Client
	Cache  ResponseCache
}

// FetchWork looks up one identifier and returns a flattened bibliography
// entry without a key; the caller allocates a key against its existing set.
// Only DOI identifiers are supported: the target form is normalized first,
// so both bare DOIs and doi.org URLs work.
func (f *Fetcher) FetchWork(ctx context.Context, identifier string, cfg types.CatalogConfig) (types.BibliographyEntry, error) {
	id := normalize.Normalize(identifier)
	doi, ok := strings.CutPrefix(id, "doi:")
	if !ok {
		return types.BibliographyEntry{}, fmt.Errorf("identifier %q is not a DOI; only DOIs can be fetched", identifier)
	}

	reqURL := openAlexWorksBase + url.PathEscape("doi:"+doi)
	if cfg.Email != "" {
		reqURL += "?mailto=" + url.QueryEscape(cfg.Email)
	}

	body, err := f.get(ctx, reqURL, cfg)
	if err != nil {
		return types.BibliographyEntry{}, err
	}

	var work openAlexWork
	if err := json.Unmarshal(body, &work); err != nil {
		return types.BibliographyEntry{}, fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	return workToEntry(doi, work), nil
}

// get returns the response body for reqURL, consulting the cache first and
// recording fresh responses into it.
func (f *Fetcher) get(ctx context.Context, reqURL string, cfg types.CatalogConfig) ([]byte, error) {
	if f.Cache != nil {
		if body, ok, err := f.Cache.CachedResponse(ctx, reqURL); err != nil {
			return nil, err
		} else if ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, f.Client, req, cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading OpenAlex response: %w", err)
	}

	if f.Cache != nil {
		if err := f.Cache.StoreResponse(ctx, reqURL, body); err != nil {
			return nil, err
		}
	}
	return body, nil
}

// workToEntry flattens an OpenAlex work into a BibliographyEntry. Only
// fields present in the response are carried over.
func workToEntry(doi string, work openAlexWork) types.BibliographyEntry {
	e := types.BibliographyEntry{
		Title:       work.Title,
		Identifiers: []string{"doi:" + strings.ToLower(doi)},
	}

	for _, authorship := range work.Authorships {
		if authorship.Author.DisplayName != "" {
			e.Authors = append(e.Authors, authorship.Author.DisplayName)
		}
	}

	if work.PublicationDate != "" {
		if t, err := time.Parse("2006-01-02", work.PublicationDate); err == nil {
			e.Year = t.Year()
		}
	}
	if e.Year == 0 && work.PublicationYear > 0 {
		e.Year = work.PublicationYear
	}

	if work.PrimaryLocation.Source.DisplayName != "" {
		e.Venue = work.PrimaryLocation.Source.DisplayName
	}

	return e
}

// OpenAlex API JSON structures.
type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	PublicationDate string               `json:"publication_date"`
	PublicationYear int                  `json:"publication_year"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	PrimaryLocation openAlexLocation     `json:"primary_location"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	Source openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "cite-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ResolveConfig holds settings for the citation resolution stage.
type ResolveConfig struct {
	// Bibliography is the path to a CSL-YAML bibliography file. When empty,
	// entries are loaded from the local catalog instead.
	Bibliography string `json:"bibliography" yaml:"bibliography"`

	// CatalogDir is the base directory for the local catalog database.
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// Deterministic requires a non-empty bibliography source and forbids
	// any network access; missing data is reported, never fetched.
	Deterministic bool `json:"deterministic" yaml:"deterministic"`

	// ExcludedDomains is the denylist of non-scholarly hosts whose links
	// are never treated as citations. Subdomains of a listed host match.
	ExcludedDomains []string `json:"excluded_domains" yaml:"excluded_domains"`
}

// CatalogConfig holds settings for the catalog stage, which fetches and
// stores bibliography entries.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// CatalogDir is the base directory for the local catalog database.
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// Email is sent as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// MaxRetries is the number of retry attempts on rate-limited calls.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// DefaultExcludedDomains is the built-in denylist of non-scholarly hosts.
// It is configuration data, not logic: config files and flags replace it.
var DefaultExcludedDomains = []string{
	"github.com",
	"gitlab.com",
	"bitbucket.org",
	"twitter.com",
	"x.com",
	"facebook.com",
	"linkedin.com",
	"reddit.com",
	"youtube.com",
	"medium.com",
	"substack.com",
	"nytimes.com",
	"theguardian.com",
	"bbc.com",
	"bbc.co.uk",
	"reuters.com",
	"bloomberg.com",
	"wikipedia.org",
	"whitehouse.gov",
	"europa.eu",
	"google.com",
	"microsoft.com",
	"apple.com",
	"amazon.com",
	"openai.com",
	"anthropic.com",
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cite-engine/internal/bibindex"
	"github.com/pdiddy/cite-engine/internal/catalog"
	"github.com/pdiddy/cite-engine/internal/keys"
	"github.com/pdiddy/cite-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "cite-engine/0.1"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local bibliography catalog",
	Long: `Catalog manages the local SQLite database of bibliography entries that
resolve runs can use as their source. Fetching entries over the network
happens only here, never during resolution, so deterministic resolve runs
stay reproducible.`,
}

var catalogFetchCmd = &cobra.Command{
	Use:   "fetch [identifiers...]",
	Short: "Fetch entries for DOIs from the OpenAlex API",
	RunE:  runCatalogFetch,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [bibliography.yaml]",
	Short: "Import a CSL-YAML bibliography file into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogImport,
}

var catalogInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show catalog statistics",
	RunE:  runCatalogInfo,
}

func init() {
	catalogCmd.PersistentFlags().String("catalog-dir", "catalog", "local catalog directory")
	catalogFetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	catalogFetchCmd.Flags().String("email", "", "contact email for polite pool access (default: openalex-email secret)")
	catalogFetchCmd.Flags().Int("max-retries", 0, "retry attempts on rate-limited requests (default 5)")

	catalogCmd.AddCommand(catalogFetchCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogInfoCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more DOIs to fetch")
	}

	cfg := catalogFetchConfig(cmd)
	cfg.CatalogDir, _ = cmd.Flags().GetString("catalog-dir")

	store, err := catalog.NewStore(cfg.CatalogDir)
	if err != nil {
		return err
	}
	defer store.Close()

	existing, err := store.Keys(cmd.Context())
	if err != nil {
		return err
	}

	fetcher := &catalog.Fetcher{
		Client: &http.Client{Timeout: cfg.Timeout},
		Cache:  store,
	}

	failed := 0
	for _, id := range args {
		entry, err := fetcher.FetchWork(cmd.Context(), id, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed  %s: %v\n", id, err)
			failed++
			continue
		}

		key := keys.Allocate(keys.Seed(firstAuthorSurname(entry), entry.Year), existing)
		existing[key] = true
		entry.Key = key

		if err := store.Upsert(cmd.Context(), []types.BibliographyEntry{entry}); err != nil {
			fmt.Fprintf(os.Stderr, "failed  %s: %v\n", id, err)
			failed++
			continue
		}
		fmt.Printf("fetched %s -> %s\n", id, key)
	}

	if failed > 0 {
		return fmt.Errorf("%d identifier(s) failed", failed)
	}
	return nil
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")

	lib, err := bibindex.LoadLibrary(args[0])
	if err != nil {
		return err
	}

	store, err := catalog.NewStore(catalogDir)
	if err != nil {
		return err
	}
	defer store.Close()

	entries := lib.Entries()
	if err := store.Upsert(cmd.Context(), entries); err != nil {
		return err
	}
	fmt.Printf("imported %d entries from %s\n", len(entries), args[0])
	return nil
}

func runCatalogInfo(cmd *cobra.Command, args []string) error {
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")

	store, err := catalog.NewStore(catalogDir)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Count(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("catalog: %s\nentries: %d\n", catalogDir, n)
	return nil
}

// catalogFetchConfig merges fetch flags over viper configuration. A zero
// MaxRetries lets the retry helper apply its own default.
func catalogFetchConfig(cmd *cobra.Command) types.CatalogConfig {
	cfg := types.CatalogConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: defaultUserAgent,
		},
		MaxRetries: viper.GetInt("max_retries"),
	}

	if t, _ := cmd.Flags().GetDuration("timeout"); t != 0 {
		cfg.Timeout = t
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if n, _ := cmd.Flags().GetInt("max-retries"); n != 0 {
		cfg.MaxRetries = n
	}
	email, _ := cmd.Flags().GetString("email")
	cfg.Email = secretDefault("openalex-email", email)
	return cfg
}

// firstAuthorSurname extracts a surname from the first author's display
// name for key seeding.
func firstAuthorSurname(e types.BibliographyEntry) string {
	if len(e.Authors) == 0 {
		return ""
	}
	fields := strings.Fields(e.Authors[0])
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/cite-engine/internal/bibindex"
	"github.com/pdiddy/cite-engine/internal/catalog"
	"github.com/pdiddy/cite-engine/internal/resolve"
	"github.com/pdiddy/cite-engine/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [document]",
	Short: "Resolve citations in a document and rewrite it",
	Long: `Resolve classifies every link in a Markdown document, matches academic
citations against the bibliography source, and rewrites matched links as
Pandoc-style reference tokens ([@key]). Citations that cannot be resolved are
listed in the unresolved report with a reason code; nothing is ever invented
for them.

The bibliography source is a CSL-YAML file (--bibliography) or the local
catalog (--catalog-dir). In deterministic mode the run aborts if the source
is missing or empty and no network access of any kind happens.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("bibliography", "", "CSL-YAML bibliography file")
	resolveCmd.Flags().String("catalog-dir", "catalog", "local catalog directory (used when --bibliography is empty)")
	resolveCmd.Flags().Bool("deterministic", false, "require a non-empty bibliography source and forbid network access")
	resolveCmd.Flags().StringP("output", "o", "", "write the rewritten document here (default: stdout)")
	resolveCmd.Flags().Bool("write", false, "rewrite the document in place")
	resolveCmd.Flags().String("report", "", "write the unresolved report as YAML to this path")
	resolveCmd.Flags().String("report-json", "", "write the unresolved report as JSON to this path")
	resolveCmd.Flags().String("bib-out", "", "write the cited-entries bibliography (CSL-YAML) to this path")
	resolveCmd.Flags().StringSlice("exclude-domain", nil, "additional non-scholarly domains to exclude")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg := resolveConfigFromFlags(cmd)

	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	entries, lib, err := loadBibliography(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	result, err := resolve.Run(source, entries, resolve.Options{
		Deterministic:   cfg.Deterministic,
		ExcludedDomains: cfg.ExcludedDomains,
	})
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: identifier %s maps to both %s and %s; keeping %s\n",
			w.Identifier, w.KeptKey, w.DroppedKey, w.KeptKey)
	}

	// All fatal paths are behind us: only now do output files get written.
	outPath, _ := cmd.Flags().GetString("output")
	if inPlace, _ := cmd.Flags().GetBool("write"); inPlace {
		outPath = args[0]
	}
	if outPath == "" {
		if _, err := os.Stdout.Write(result.Output); err != nil {
			return err
		}
	} else if err := os.WriteFile(outPath, result.Output, 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}

	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := writeReport(path, result, resolve.WriteReportYAML); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("report-json"); path != "" {
		if err := writeReport(path, result, resolve.WriteReportJSON); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("bib-out"); path != "" {
		if err := writeFilteredBib(path, lib, result.UsedKeys); err != nil {
			return err
		}
	}

	resolved := 0
	for _, c := range result.Citations {
		if c.Resolution.Resolved() {
			resolved++
		}
	}
	fmt.Fprintf(os.Stderr, "resolved: %d, unresolved: %d, cited entries: %d\n",
		resolved, len(result.Unresolved), len(result.UsedKeys))
	return nil
}

// resolveConfigFromFlags merges flags over viper configuration.
func resolveConfigFromFlags(cmd *cobra.Command) types.ResolveConfig {
	cfg := types.ResolveConfig{
		Bibliography:    viper.GetString("bibliography"),
		CatalogDir:      viper.GetString("catalog_dir"),
		Deterministic:   viper.GetBool("deterministic"),
		ExcludedDomains: viper.GetStringSlice("excluded_domains"),
	}

	if v, _ := cmd.Flags().GetString("bibliography"); v != "" {
		cfg.Bibliography = v
	}
	if cmd.Flags().Changed("catalog-dir") || cfg.CatalogDir == "" {
		cfg.CatalogDir, _ = cmd.Flags().GetString("catalog-dir")
	}
	if v, _ := cmd.Flags().GetBool("deterministic"); v {
		cfg.Deterministic = true
	}
	if len(cfg.ExcludedDomains) == 0 {
		cfg.ExcludedDomains = types.DefaultExcludedDomains
	}
	if extra, _ := cmd.Flags().GetStringSlice("exclude-domain"); len(extra) > 0 {
		cfg.ExcludedDomains = append(cfg.ExcludedDomains, extra...)
	}
	return cfg
}

// loadBibliography flattens the configured source into entries plus the
// library used for filtered bibliography output. The CSL file wins when
// both are configured; otherwise the local catalog is read.
func loadBibliography(ctx context.Context, cfg types.ResolveConfig) ([]types.BibliographyEntry, bibindex.Library, error) {
	if cfg.Bibliography != "" {
		lib, err := bibindex.LoadLibrary(cfg.Bibliography)
		if err != nil {
			return nil, bibindex.Library{}, err
		}
		return lib.Entries(), lib, nil
	}

	store, err := catalog.NewStore(cfg.CatalogDir)
	if err != nil {
		return nil, bibindex.Library{}, err
	}
	defer store.Close()

	entries, err := store.Entries(ctx)
	if err != nil {
		return nil, bibindex.Library{}, err
	}
	return entries, bibindex.LibraryFromEntries(entries), nil
}

func writeReport(path string, result *resolve.Result, write func(w io.Writer, records []types.UnresolvedCitation) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f, result.Unresolved); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

func writeFilteredBib(path string, lib bibindex.Library, usedKeys []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bibliography %s: %w", path, err)
	}
	defer f.Close()
	if err := lib.WriteFiltered(f, usedKeys); err != nil {
		return fmt.Errorf("writing bibliography %s: %w", path, err)
	}
	return nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/cite-engine/internal/resolve"
)

var bibCmd = &cobra.Command{
	Use:   "bib [document]",
	Short: "Emit the bibliography subset a document actually cites",
	Long: `Bib resolves the document's citations without writing the rewritten text
and emits a CSL-YAML bibliography containing only the entries referenced by a
resolved citation. Placeholder keys for unresolved citations are never
included.`,
	Args: cobra.ExactArgs(1),
	RunE: runBib,
}

func init() {
	bibCmd.Flags().String("bibliography", "", "CSL-YAML bibliography file")
	bibCmd.Flags().String("catalog-dir", "catalog", "local catalog directory (used when --bibliography is empty)")
	bibCmd.Flags().Bool("deterministic", false, "require a non-empty bibliography source and forbid network access")
	bibCmd.Flags().StringP("output", "o", "", "write the bibliography here (default: stdout)")
	bibCmd.Flags().StringSlice("exclude-domain", nil, "additional non-scholarly domains to exclude")

	rootCmd.AddCommand(bibCmd)
}

func runBib(cmd *cobra.Command, args []string) error {
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

	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		return lib.WriteFiltered(os.Stdout, result.UsedKeys)
	}
	return writeFilteredBib(outPath, lib, result.UsedKeys)
}

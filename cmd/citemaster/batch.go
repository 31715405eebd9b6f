// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshintel/citemaster/internal/batch"
	"github.com/meshintel/citemaster/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Generate citations for a file of paper titles",
	Long: `Batch reads titles from a .txt file (one per line) or a .csv file (first
column), resolves each through CrossRef, and writes the formatted citations
and BibTeX entries to the configured output files. Duplicate titles are
skipped; per-title failures are recorded and the batch continues.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().String("style", "apa", "citation style: apa, mla, or ieee")
	batchCmd.Flags().Bool("bibtex", false, "also fetch BibTeX entries")
	batchCmd.Flags().String("csl", "", "write resolved records as CSL-YAML to this file")
	batchCmd.Flags().Int("workers", 0, "concurrent workers (default: batch.max_workers from config)")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	styleToken, _ := cmd.Flags().GetString("style")
	style, err := types.ParseStyle(styleToken)
	if err != nil {
		return err
	}
	includeBibTeX, _ := cmd.Flags().GetBool("bibtex")
	cslPath, _ := cmd.Flags().GetString("csl")
	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = cfg.Batch.MaxWorkers
	}

	titles, err := batch.ReadTitles(args[0])
	if err != nil {
		return err
	}
	if len(titles) == 0 {
		return fmt.Errorf("no titles found in %s", args[0])
	}

	p := buildPipeline(cfg)
	defer p.Close()

	orch := batch.New(p.resolver, p.fetcher, p.logger)
	result, err := orch.Run(cmd.Context(), titles, styleToken, batch.Options{
		IncludeBibTeX:     includeBibTeX,
		Workers:           workers,
		ProgressThreshold: cfg.Batch.ProgressThreshold,
		Progress:          os.Stderr,
	})
	if err != nil {
		return err
	}

	written, err := batch.WriteOutputs(result, style, cfg.Output)
	if err != nil {
		return err
	}
	if cslPath != "" {
		if err := batch.WriteCSL(result, cslPath); err != nil {
			return err
		}
		written = append(written, cslPath)
	}

	p.printer.Summary(result.Stats)
	p.printer.FailureDetails(result.Outcomes, 10)
	for _, path := range written {
		p.printer.Success("wrote %s", path)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d title(s) failed", result.Stats.Failed)
	}
	return nil
}

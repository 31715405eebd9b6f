// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meshintel/citemaster/internal/batch"
	"github.com/meshintel/citemaster/internal/citation"
	"github.com/meshintel/citemaster/internal/fetch"
	"github.com/meshintel/citemaster/pkg/types"
)

var citeCmd = &cobra.Command{
	Use:   "cite <title>",
	Short: "Generate a citation for a single paper title",
	Long: `Cite resolves a paper title to its DOI via CrossRef, optionally fetches
the BibTeX record, and prints the citation in the requested style.`,
	Args: cobra.ExactArgs(1),
	RunE: runCite,
}

func init() {
	citeCmd.Flags().String("style", "apa", "citation style: apa, mla, or ieee")
	citeCmd.Flags().Bool("bibtex", false, "also fetch and print the BibTeX entry")

	rootCmd.AddCommand(citeCmd)
}

func runCite(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	styleToken, _ := cmd.Flags().GetString("style")
	style, err := types.ParseStyle(styleToken)
	if err != nil {
		return err
	}
	includeBibTeX, _ := cmd.Flags().GetBool("bibtex")

	p := buildPipeline(cfg)
	defer p.Close()
	ctx := cmd.Context()
	title := args[0]

	rec, err := p.resolver.Resolve(ctx, title)
	if err != nil {
		logSingleFailure(cfg.Output.ErrorLog, title, err)
		var nf *types.NotFoundError
		if errors.As(err, &nf) {
			p.printer.Warning("Hint: %s", nf.Suggestion())
		}
		return err
	}

	var entry types.BibTeXEntry
	if includeBibTeX {
		entry, err = p.fetcher.Fetch(ctx, rec.DOI)
		if err != nil {
			p.printer.Warning("BibTeX unavailable for %s: %v", rec.DOI, err)
		} else {
			rec = fetch.Enrich(rec, entry)
		}
	}

	cite, err := citation.Format(rec, style)
	if err != nil {
		return err
	}

	p.printer.Header(fmt.Sprintf("Citation (%s)", strings.ToUpper(string(style))))
	p.printer.Result(cite)
	if entry.Body != "" {
		p.printer.Header("BibTeX")
		p.printer.Result(entry.Body)
	}
	return nil
}

// logSingleFailure appends a single-title failure to the error log, matching
// the batch log format.
func logSingleFailure(path, title string, err error) {
	batch.AppendErrors(path, []types.Outcome{{
		Status: types.OutcomeFailed,
		Title:  title,
		Reason: err.Error(),
	}})
}

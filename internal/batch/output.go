// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/meshintel/citemaster/internal/citation"
	"github.com/meshintel/citemaster/pkg/types"
)

// WriteOutputs writes the citations file and, when entries are present, the
// BibTeX file under the configured output directory, and appends failures to
// the error log. It returns the paths written.
func WriteOutputs(result types.BatchResult, style types.CitationStyle, cfg types.OutputConfig) ([]string, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string

	citationsPath := cfg.CitationsPath()
	if err := os.WriteFile(citationsPath, []byte(renderCitations(result.Outcomes, style)), 0o644); err != nil {
		return written, fmt.Errorf("writing citations: %w", err)
	}
	written = append(written, citationsPath)

	if bib := renderBibTeX(result.Outcomes); bib != "" {
		bibtexPath := cfg.BibTeXPath()
		if err := os.WriteFile(bibtexPath, []byte(bib), 0o644); err != nil {
			return written, fmt.Errorf("writing bibtex: %w", err)
		}
		written = append(written, bibtexPath)
	}

	if err := AppendErrors(cfg.ErrorLog, result.Outcomes); err != nil {
		return written, err
	}
	return written, nil
}

// renderCitations produces one block per resolved title.
func renderCitations(outcomes []types.Outcome, style types.CitationStyle) string {
	var b strings.Builder
	for _, out := range outcomes {
		if out.Status != types.OutcomeResolved {
			continue
		}
		fmt.Fprintf(&b, "Title: %s\n", out.Title)
		fmt.Fprintf(&b, "DOI: %s\n", out.DOI)
		fmt.Fprintf(&b, "Citation (%s):\n%s\n\n", strings.ToUpper(string(style)), out.Citation)
	}
	return b.String()
}

// renderBibTeX joins the fetched entries, blank-line separated.
func renderBibTeX(outcomes []types.Outcome) string {
	var entries []string
	for _, out := range outcomes {
		if out.BibTeX != "" {
			entries = append(entries, out.BibTeX)
		}
	}
	if len(entries) == 0 {
		return ""
	}
	return strings.Join(entries, "\n\n") + "\n"
}

// AppendErrors appends failed outcomes to the error log, one timestamped
// line per failure. The log is append-only across runs.
func AppendErrors(path string, outcomes []types.Outcome) error {
	var lines []string
	now := time.Now().Format("2006-01-02 15:04:05")
	for _, out := range outcomes {
		if out.Status != types.OutcomeFailed {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s - %s - %s", now, out.Title, out.Reason))
	}
	if len(lines) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening error log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		return fmt.Errorf("writing error log: %w", err)
	}
	return nil
}

// WriteCSL writes the resolved records as CSL-YAML to path.
func WriteCSL(result types.BatchResult, path string) error {
	var records []types.BibliographicRecord
	for _, out := range result.Outcomes {
		if out.Status == types.OutcomeResolved {
			records = append(records, out.Record)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSL output: %w", err)
	}
	defer f.Close()

	return citation.WriteCSL(records, f)
}

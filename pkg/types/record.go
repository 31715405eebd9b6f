// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citemaster pipeline:
// bibliographic records, citation styles, batch outcomes, and configuration.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Author is a single paper author. Given-name order follows the source
// record; formatting into style-specific shapes happens in the citation stage.
type Author struct {
	// Given is the first/given name(s), e.g. "John" or "John Michael".
	Given string `json:"given" yaml:"given"`

	// Family is the last/family name.
	Family string `json:"family" yaml:"family"`
}

// BibliographicRecord holds the metadata for one resolved paper. Records are
// built once by the resolver (optionally backfilled from a fetched BibTeX
// entry) and never mutated afterwards.
type BibliographicRecord struct {
	// DOI is the bare DOI, without the https://doi.org/ prefix.
	DOI string `json:"doi" yaml:"doi"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []Author `json:"authors" yaml:"authors"`

	// Journal is the container title (journal or proceedings name).
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Volume is the journal volume, when known.
	Volume string `json:"volume,omitempty" yaml:"volume,omitempty"`

	// Pages is the page or page range, e.g. "42" or "123-130".
	Pages string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// Year is the publication year; zero when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Publisher is the publisher name, when known.
	Publisher string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
}

// BibTeXEntry is a raw BibTeX text blob fetched for a DOI.
type BibTeXEntry struct {
	// DOI the entry was fetched for.
	DOI string `json:"doi" yaml:"doi"`

	// Body is the whitespace-trimmed BibTeX text.
	Body string `json:"body" yaml:"body"`
}

// CitationStyle selects one of the supported citation formats.
type CitationStyle string

const (
	StyleAPA  CitationStyle = "apa"
	StyleMLA  CitationStyle = "mla"
	StyleIEEE CitationStyle = "ieee"
)

// ParseStyle maps a user-supplied style token to a CitationStyle. Matching is
// case-insensitive; anything other than apa/mla/ieee is a FormatError.
func ParseStyle(token string) (CitationStyle, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "apa":
		return StyleAPA, nil
	case "mla":
		return StyleMLA, nil
	case "ieee":
		return StyleIEEE, nil
	default:
		return "", &FormatError{Style: token}
	}
}

// OutcomeStatus classifies a per-title batch outcome.
type OutcomeStatus string

const (
	OutcomeResolved OutcomeStatus = "resolved"
	OutcomeFailed   OutcomeStatus = "failed"
	OutcomeSkipped  OutcomeStatus = "skipped"
)

// Outcome is the result of processing a single title in a batch run.
type Outcome struct {
	// Status is resolved, failed, or skipped (duplicate).
	Status OutcomeStatus `json:"status" yaml:"status"`

	// Title is the input title, as supplied.
	Title string `json:"title" yaml:"title"`

	// Record is the resolved metadata; zero for failed and skipped outcomes.
	Record BibliographicRecord `json:"record,omitempty" yaml:"record,omitempty"`

	// DOI is the resolved DOI; empty when resolution failed.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Citation is the formatted citation for resolved outcomes.
	Citation string `json:"citation,omitempty" yaml:"citation,omitempty"`

	// BibTeX is the fetched entry body; empty when fetching was not requested
	// or degraded (see Reason).
	BibTeX string `json:"bibtex,omitempty" yaml:"bibtex,omitempty"`

	// Reason carries the failure cause for failed outcomes, the duplicate
	// note for skipped ones, and the fetch warning for degraded successes.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// BatchStats summarizes one batch run.
type BatchStats struct {
	Total     int           `json:"total" yaml:"total"`
	Succeeded int           `json:"succeeded" yaml:"succeeded"`
	Failed    int           `json:"failed" yaml:"failed"`
	Skipped   int           `json:"skipped" yaml:"skipped"`
	Elapsed   time.Duration `json:"elapsed" yaml:"elapsed"`
}

// SuccessRate returns succeeded/(total-skipped), clamped to [0, 1]. A batch
// consisting entirely of duplicates has no attempted titles and rates 0.
func (s BatchStats) SuccessRate() float64 {
	attempted := s.Total - s.Skipped
	if attempted <= 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(attempted)
}

// String renders the stats as a one-line summary.
func (s BatchStats) String() string {
	return fmt.Sprintf("%d total, %d succeeded, %d failed, %d skipped (%.1f%% in %.2fs)",
		s.Total, s.Succeeded, s.Failed, s.Skipped, s.SuccessRate()*100, s.Elapsed.Seconds())
}

// BatchResult holds the ordered per-title outcomes of a batch run plus the
// final statistics. Outcomes preserve input order regardless of how many
// workers processed the batch.
type BatchResult struct {
	Outcomes []Outcome  `json:"outcomes" yaml:"outcomes"`
	Stats    BatchStats `json:"stats" yaml:"stats"`
}

// HasFailures reports whether any titles failed.
func (r BatchResult) HasFailures() bool {
	return r.Stats.Failed > 0
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch drives the resolve → fetch → format pipeline over a list of
// titles and accumulates per-title outcomes into a BatchResult.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/meshintel/citemaster/internal/citation"
	"github.com/meshintel/citemaster/internal/fetch"
	"github.com/meshintel/citemaster/internal/resolve"
	"github.com/meshintel/citemaster/pkg/types"
)

// Resolver looks up the bibliographic record for a title.
type Resolver interface {
	Resolve(ctx context.Context, title string) (types.BibliographicRecord, error)
}

// Fetcher retrieves the BibTeX entry for a DOI.
type Fetcher interface {
	Fetch(ctx context.Context, doi string) (types.BibTeXEntry, error)
}

// Options controls one batch run.
type Options struct {
	// IncludeBibTeX also fetches the BibTeX entry for each resolved title.
	IncludeBibTeX bool

	// Workers bounds concurrent title processing; values below 1 run
	// sequentially. Titles are independent, so workers never share state
	// beyond their own outcome slots.
	Workers int

	// ProgressThreshold is the batch size above which a progress indicator
	// is written to Progress. Zero disables it.
	ProgressThreshold int

	// Progress receives the progress indicator; nil disables it.
	Progress io.Writer
}

// Orchestrator runs batches of titles through the pipeline.
type Orchestrator struct {
	resolver Resolver
	fetcher  Fetcher
	logger   *log.Logger
}

// New constructs an Orchestrator.
func New(resolver Resolver, fetcher Fetcher, logger *log.Logger) *Orchestrator {
	return &Orchestrator{resolver: resolver, fetcher: fetcher, logger: logger}
}

// Run processes titles in input order. Duplicate titles (after trimming and
// case-folding) are skipped after their first occurrence. Per-title failures
// are recorded and do not abort the batch; an invalid style token is fatal
// because style is a single upfront parameter. Outcomes preserve input order
// regardless of worker count.
func (o *Orchestrator) Run(ctx context.Context, titles []string, styleToken string, opts Options) (types.BatchResult, error) {
	style, err := types.ParseStyle(styleToken)
	if err != nil {
		return types.BatchResult{}, err
	}

	start := time.Now()
	outcomes := make([]types.Outcome, len(titles))

	// Duplicate detection happens before dispatch so workers only ever see
	// unique titles.
	seen := make(map[string]int, len(titles))
	var jobs []int
	for i, t := range titles {
		key := resolve.NormalizeTitle(t)
		if first, dup := seen[key]; dup {
			outcomes[i] = types.Outcome{
				Status: types.OutcomeSkipped,
				Title:  t,
				Reason: fmt.Sprintf("duplicate of %q", titles[first]),
			}
			continue
		}
		seen[key] = i
		jobs = append(jobs, i)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) && len(jobs) > 0 {
		workers = len(jobs)
	}

	showProgress := opts.Progress != nil && opts.ProgressThreshold > 0 && len(titles) > opts.ProgressThreshold
	var done atomic.Int64

	jobCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobCh {
				outcomes[i] = o.process(ctx, titles[i], style, opts.IncludeBibTeX)
				if showProgress {
					fmt.Fprintf(opts.Progress, "\rprocessed %d/%d", done.Add(1), len(jobs))
				}
			}
		}()
	}
	for _, i := range jobs {
		jobCh <- i
	}
	close(jobCh)
	wg.Wait()
	if showProgress {
		fmt.Fprintln(opts.Progress)
	}

	result := types.BatchResult{Outcomes: outcomes}
	for _, out := range outcomes {
		switch out.Status {
		case types.OutcomeResolved:
			result.Stats.Succeeded++
		case types.OutcomeFailed:
			result.Stats.Failed++
		case types.OutcomeSkipped:
			result.Stats.Skipped++
		}
	}
	result.Stats.Total = len(titles)
	result.Stats.Elapsed = time.Since(start)
	return result, nil
}

// process runs one title through resolve → fetch → format. Fetch failures
// degrade gracefully: the outcome stays resolved with an empty BibTeX body
// and a warning in Reason.
func (o *Orchestrator) process(ctx context.Context, title string, style types.CitationStyle, includeBibTeX bool) types.Outcome {
	rec, err := o.resolver.Resolve(ctx, title)
	if err != nil {
		o.logger.Error("resolve failed", "title", title, "err", err)
		reason := err.Error()
		var nf *types.NotFoundError
		if errors.As(err, &nf) {
			reason += "; " + nf.Suggestion()
		}
		return types.Outcome{Status: types.OutcomeFailed, Title: title, Reason: reason}
	}

	out := types.Outcome{Status: types.OutcomeResolved, Title: title, DOI: rec.DOI}
	if includeBibTeX {
		entry, ferr := o.fetcher.Fetch(ctx, rec.DOI)
		if ferr != nil {
			o.logger.Warn("bibtex unavailable", "title", title, "doi", rec.DOI, "err", ferr)
			out.Reason = "bibtex unavailable: " + ferr.Error()
		} else {
			out.BibTeX = entry.Body
			rec = fetch.Enrich(rec, entry)
		}
	}
	out.Record = rec

	cite, cerr := citation.Format(rec, style)
	if cerr != nil {
		// Unreachable for styles validated by Run; kept for direct callers.
		return types.Outcome{Status: types.OutcomeFailed, Title: title, Reason: cerr.Error()}
	}
	out.Citation = cite
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"context"
	"io"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshintel/citemaster/pkg/types"
)

// fakeResolver resolves titles from a fixed map and counts calls.
type fakeResolver struct {
	records map[string]types.BibliographicRecord
	calls   atomic.Int64
}

func (r *fakeResolver) Resolve(ctx context.Context, title string) (types.BibliographicRecord, error) {
	r.calls.Add(1)
	rec, ok := r.records[title]
	if !ok {
		return types.BibliographicRecord{}, &types.NotFoundError{Kind: "doi", Key: title}
	}
	return rec, nil
}

// fakeFetcher returns a canned entry, or an error when failing is set.
type fakeFetcher struct {
	failing bool
	calls   atomic.Int64
}

func (f *fakeFetcher) Fetch(ctx context.Context, doi string) (types.BibTeXEntry, error) {
	f.calls.Add(1)
	if f.failing {
		return types.BibTeXEntry{}, &types.NotFoundError{Kind: "bibtex", Key: doi}
	}
	return types.BibTeXEntry{DOI: doi, Body: "@article{x, doi = {" + doi + "}}"}, nil
}

func record(doi, title string) types.BibliographicRecord {
	return types.BibliographicRecord{
		DOI:     doi,
		Title:   title,
		Authors: []types.Author{{Given: "John", Family: "Smith"}},
		Journal: "Nature",
		Year:    2020,
	}
}

func newTestOrchestrator(r Resolver, f Fetcher) *Orchestrator {
	return New(r, f, log.New(io.Discard))
}

func TestRun_DuplicatesSkippedOrderPreserved(t *testing.T) {
	resolver := &fakeResolver{records: map[string]types.BibliographicRecord{
		"A": record("10.1/a", "A"),
		"a": record("10.1/a", "a"),
		"B": record("10.1/b", "B"),
	}}
	o := newTestOrchestrator(resolver, &fakeFetcher{})

	result, err := o.Run(context.Background(), []string{"A", "a", "B"}, "apa", Options{})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 3)

	assert.Equal(t, types.OutcomeResolved, result.Outcomes[0].Status)
	assert.Equal(t, "A", result.Outcomes[0].Title)
	assert.Equal(t, types.OutcomeSkipped, result.Outcomes[1].Status)
	assert.Contains(t, result.Outcomes[1].Reason, `duplicate of "A"`)
	assert.Equal(t, types.OutcomeResolved, result.Outcomes[2].Status)
	assert.Equal(t, "B", result.Outcomes[2].Title)

	// Only the unique titles reach the resolver.
	assert.Equal(t, int64(2), resolver.calls.Load())
	assert.Equal(t, 2, result.Stats.Succeeded)
	assert.Equal(t, 1, result.Stats.Skipped)
}

func TestRun_StatsInvariant(t *testing.T) {
	resolver := &fakeResolver{records: map[string]types.BibliographicRecord{
		"Known": record("10.1/k", "Known"),
	}}
	o := newTestOrchestrator(resolver, &fakeFetcher{})

	result, err := o.Run(context.Background(), []string{"Known", "Unknown", "known", "Also Unknown"}, "apa", Options{})
	require.NoError(t, err)

	s := result.Stats
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, s.Total, s.Succeeded+s.Failed+s.Skipped)
	assert.GreaterOrEqual(t, s.SuccessRate(), 0.0)
	assert.LessOrEqual(t, s.SuccessRate(), 1.0)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 1, s.Skipped)
}

func TestRun_InvalidStyleIsFatal(t *testing.T) {
	resolver := &fakeResolver{records: map[string]types.BibliographicRecord{}}
	o := newTestOrchestrator(resolver, &fakeFetcher{})

	_, err := o.Run(context.Background(), []string{"A"}, "harvard", Options{})
	var fe *types.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "harvard", fe.Style)
	// Nothing is processed when the style is rejected.
	assert.Equal(t, int64(0), resolver.calls.Load())
}

func TestRun_FetchFailureDegradesGracefully(t *testing.T) {
	resolver := &fakeResolver{records: map[string]types.BibliographicRecord{
		"A": record("10.1/a", "A"),
	}}
	o := newTestOrchestrator(resolver, &fakeFetcher{failing: true})

	result, err := o.Run(context.Background(), []string{"A"}, "apa", Options{IncludeBibTeX: true})
	require.NoError(t, err)

	out := result.Outcomes[0]
	assert.Equal(t, types.OutcomeResolved, out.Status)
	assert.NotEmpty(t, out.Citation)
	assert.Empty(t, out.BibTeX)
	assert.Contains(t, out.Reason, "bibtex unavailable")
	assert.Equal(t, 1, result.Stats.Succeeded)
}

func TestRun_FetchSkippedWithoutFlag(t *testing.T) {
	resolver := &fakeResolver{records: map[string]types.BibliographicRecord{
		"A": record("10.1/a", "A"),
	}}
	fetcher := &fakeFetcher{}
	o := newTestOrchestrator(resolver, fetcher)

	_, err := o.Run(context.Background(), []string{"A"}, "apa", Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), fetcher.calls.Load())
}

func TestRun_FailureCarriesSuggestion(t *testing.T) {
	resolver := &fakeResolver{records: map[string]types.BibliographicRecord{}}
	o := newTestOrchestrator(resolver, &fakeFetcher{})

	result, err := o.Run(context.Background(), []string{"Ghost Paper"}, "mla", Options{})
	require.NoError(t, err)

	out := result.Outcomes[0]
	assert.Equal(t, types.OutcomeFailed, out.Status)
	assert.Contains(t, out.Reason, "DOI not found")
	assert.Contains(t, out.Reason, "check the title spelling")
}

func TestRun_WorkersPreserveInputOrder(t *testing.T) {
	titles := make([]string, 40)
	records := make(map[string]types.BibliographicRecord, len(titles))
	for i := range titles {
		titles[i] = "Paper " + strings.Repeat("x", i+1)
		records[titles[i]] = record("10.1/"+titles[i], titles[i])
	}
	o := newTestOrchestrator(&fakeResolver{records: records}, &fakeFetcher{})

	result, err := o.Run(context.Background(), titles, "ieee", Options{Workers: 8})
	require.NoError(t, err)
	require.Len(t, result.Outcomes, len(titles))
	for i, out := range result.Outcomes {
		assert.Equal(t, titles[i], out.Title)
		assert.Equal(t, types.OutcomeResolved, out.Status)
	}
	assert.Equal(t, len(titles), result.Stats.Succeeded)
}

func TestRun_ProgressAboveThreshold(t *testing.T) {
	titles := []string{"A", "B", "C", "D"}
	records := map[string]types.BibliographicRecord{}
	for _, tl := range titles {
		records[tl] = record("10.1/"+tl, tl)
	}
	o := newTestOrchestrator(&fakeResolver{records: records}, &fakeFetcher{})

	var buf strings.Builder
	_, err := o.Run(context.Background(), titles, "apa", Options{
		ProgressThreshold: 2,
		Progress:          &buf,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "processed 4/4")

	buf.Reset()
	_, err = o.Run(context.Background(), titles[:2], "apa", Options{
		ProgressThreshold: 2,
		Progress:          &buf,
	})
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

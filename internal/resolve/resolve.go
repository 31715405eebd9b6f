// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve looks up DOIs and bibliographic metadata for paper titles
// via the CrossRef search API.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/meshintel/citemaster/internal/httputil"
	"github.com/meshintel/citemaster/pkg/types"
)

// searchRows is how many candidates to request; the top-ranked item wins.
const searchRows = 5

// Cache is the optional read-through cache for resolved records. A nil Cache
// disables caching.
type Cache interface {
	GetRecord(titleKey string) (types.BibliographicRecord, bool)
	PutRecord(titleKey string, rec types.BibliographicRecord)
}

// Resolver queries CrossRef for the best-matching work for a title.
type Resolver struct {
	client  *http.Client
	cfg     types.APIConfig
	policy  httputil.RetryPolicy
	limiter *rate.Limiter
	cache   Cache
	logger  *log.Logger
}

// New constructs a Resolver. limiter and cache may be shared with the fetch
// stage; cache may be nil.
func New(client *http.Client, cfg types.APIConfig, limiter *rate.Limiter, cache Cache, logger *log.Logger) *Resolver {
	return &Resolver{
		client:  client,
		cfg:     cfg,
		policy:  httputil.PolicyFromConfig(cfg.Retry),
		limiter: limiter,
		cache:   cache,
		logger:  logger,
	}
}

// NormalizeTitle returns the cache and duplicate-detection key for a title:
// trimmed, case-folded, inner whitespace collapsed.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// Resolve returns the bibliographic record for the top-ranked CrossRef match.
// An empty or whitespace-only title fails with a ValidationError before any
// network call; zero search results fail with a NotFoundError. Transient
// failures are retried per the configured policy.
func (r *Resolver) Resolve(ctx context.Context, title string) (types.BibliographicRecord, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return types.BibliographicRecord{}, &types.ValidationError{
			Field: "title", Value: title, Reason: "title cannot be empty",
		}
	}

	key := NormalizeTitle(trimmed)
	if r.cache != nil {
		if rec, ok := r.cache.GetRecord(key); ok {
			r.logger.Debug("cache hit", "title", trimmed, "doi", rec.DOI)
			return rec, nil
		}
	}

	var rec types.BibliographicRecord
	err := r.policy.Do(ctx, r.logger, "crossref search", func(ctx context.Context) error {
		got, err := r.search(ctx, trimmed)
		if err != nil {
			return err
		}
		rec = got
		return nil
	})
	if err != nil {
		return types.BibliographicRecord{}, err
	}

	r.logger.Info("DOI resolved", "title", trimmed, "doi", rec.DOI)
	if r.cache != nil {
		r.cache.PutRecord(key, rec)
	}
	return rec, nil
}

// search performs one CrossRef works query and maps the top item.
func (r *Resolver) search(ctx context.Context, title string) (types.BibliographicRecord, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return types.BibliographicRecord{}, err
	}

	params := url.Values{
		"query.title": {title},
		"rows":        {strconv.Itoa(searchRows)},
	}
	if r.cfg.Mailto != "" {
		params.Set("mailto", r.cfg.Mailto)
	}
	reqURL := r.cfg.CrossRefBaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return types.BibliographicRecord{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent(r.cfg))

	resp, err := r.client.Do(req)
	if err != nil {
		return types.BibliographicRecord{}, fmt.Errorf("CrossRef API request: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp, "CrossRef"); err != nil {
		return types.BibliographicRecord{}, err
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.BibliographicRecord{}, fmt.Errorf("parsing CrossRef response: %w", err)
	}

	if len(cr.Message.Items) == 0 {
		return types.BibliographicRecord{}, &types.NotFoundError{Kind: "doi", Key: title}
	}
	work := cr.Message.Items[0]
	if work.DOI == "" {
		return types.BibliographicRecord{}, &types.NotFoundError{Kind: "doi", Key: title}
	}
	return mapWork(work), nil
}

// userAgent builds the polite User-Agent header, appending the contact email
// when one is configured.
func userAgent(cfg types.APIConfig) string {
	if cfg.Mailto != "" {
		return fmt.Sprintf("%s (mailto:%s)", cfg.UserAgent, cfg.Mailto)
	}
	return cfg.UserAgent
}

// mapWork converts a CrossRef work into a BibliographicRecord.
func mapWork(w crossrefWork) types.BibliographicRecord {
	rec := types.BibliographicRecord{
		// CrossRef returns DOIs bare, but strip the resolver prefix in case.
		DOI:       strings.TrimPrefix(w.DOI, "https://doi.org/"),
		Volume:    w.Volume,
		Pages:     strings.ReplaceAll(w.Page, "--", "-"),
		Publisher: w.Publisher,
	}
	if len(w.Title) > 0 {
		rec.Title = strings.TrimSpace(w.Title[0])
	}
	if len(w.ContainerTitle) > 0 {
		rec.Journal = strings.TrimSpace(w.ContainerTitle[0])
	}
	for _, a := range w.Author {
		if a.Given == "" && a.Family == "" {
			continue
		}
		rec.Authors = append(rec.Authors, types.Author{Given: a.Given, Family: a.Family})
	}
	rec.Year = issuedYear(w)
	return rec
}

// issuedYear prefers the issued date, falling back to the deposit date.
func issuedYear(w crossrefWork) int {
	for _, d := range []crossrefDate{w.Issued, w.Created} {
		if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 && d.DateParts[0][0] > 0 {
			return d.DateParts[0][0]
		}
	}
	return 0
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefWork `json:"items"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Title          []string         `json:"title"`
	Author         []crossrefAuthor `json:"author"`
	ContainerTitle []string         `json:"container-title"`
	Volume         string           `json:"volume"`
	Page           string           `json:"page"`
	Publisher      string           `json:"publisher"`
	Issued         crossrefDate     `json:"issued"`
	Created        crossrefDate     `json:"created"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

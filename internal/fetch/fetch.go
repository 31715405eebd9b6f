// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves BibTeX records for DOIs via the doi.org
// content-negotiation endpoint.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/meshintel/citemaster/internal/httputil"
	"github.com/meshintel/citemaster/pkg/types"
)

// doiPattern matches syntactically plausible DOIs: "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

// Cache is the optional read-through cache for fetched entries. A nil Cache
// disables caching.
type Cache interface {
	GetBibTeX(doi string) (string, bool)
	PutBibTeX(doi, body string)
}

// Fetcher retrieves BibTeX text for DOIs.
type Fetcher struct {
	client  *http.Client
	cfg     types.APIConfig
	policy  httputil.RetryPolicy
	limiter *rate.Limiter
	cache   Cache
	logger  *log.Logger
}

// New constructs a Fetcher. limiter and cache may be shared with the resolve
// stage; cache may be nil.
func New(client *http.Client, cfg types.APIConfig, limiter *rate.Limiter, cache Cache, logger *log.Logger) *Fetcher {
	return &Fetcher{
		client:  client,
		cfg:     cfg,
		policy:  httputil.PolicyFromConfig(cfg.Retry),
		limiter: limiter,
		cache:   cache,
		logger:  logger,
	}
}

// ValidDOI reports whether doi is syntactically plausible.
func ValidDOI(doi string) bool {
	return doiPattern.MatchString(doi)
}

// Fetch returns the BibTeX entry for a DOI. A malformed DOI fails with a
// ValidationError before any network call; a 404 or an empty 200 body fails
// with a NotFoundError. Transient failures are retried per the configured
// policy.
func (f *Fetcher) Fetch(ctx context.Context, doi string) (types.BibTeXEntry, error) {
	doi = strings.TrimSpace(doi)
	if !ValidDOI(doi) {
		return types.BibTeXEntry{}, &types.ValidationError{
			Field: "doi", Value: doi, Reason: "not a plausible DOI (expected prefix/suffix form)",
		}
	}

	if f.cache != nil {
		if body, ok := f.cache.GetBibTeX(doi); ok {
			f.logger.Debug("cache hit", "doi", doi)
			return types.BibTeXEntry{DOI: doi, Body: body}, nil
		}
	}

	var body string
	err := f.policy.Do(ctx, f.logger, "bibtex fetch", func(ctx context.Context) error {
		got, err := f.get(ctx, doi)
		if err != nil {
			return err
		}
		body = got
		return nil
	})
	if err != nil {
		return types.BibTeXEntry{}, err
	}

	f.logger.Info("BibTeX fetched", "doi", doi)
	if f.cache != nil {
		f.cache.PutBibTeX(doi, body)
	}
	return types.BibTeXEntry{DOI: doi, Body: body}, nil
}

// get performs one content-negotiated GET against the DOI resolver.
func (f *Fetcher) get(ctx context.Context, doi string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.DOIBaseURL+doi, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/x-bibtex")
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("DOI content negotiation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &types.NotFoundError{Kind: "bibtex", Key: doi}
	}
	if err := httputil.CheckStatus(resp, "DOI resolver"); err != nil {
		return "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	body := strings.TrimSpace(string(data))
	if body == "" {
		return "", &types.NotFoundError{Kind: "bibtex", Key: doi}
	}
	return body, nil
}

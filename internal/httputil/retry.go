// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the retry policy and request-rate budget shared
// by stages that call external APIs.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/meshintel/citemaster/pkg/types"
)

// RetryPolicy retries an operation on transient failures with exponential
// backoff. It is a plain value so tests can apply it around fakes without
// any HTTP machinery.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// Multiplier scales the delay after each retry.
	Multiplier float64
}

// PolicyFromConfig builds a RetryPolicy from configuration, filling zero
// values with the defaults.
func PolicyFromConfig(cfg types.RetryConfig) RetryPolicy {
	p := RetryPolicy{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Multiplier:  cfg.Multiplier,
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2.0
	}
	return p
}

// Retryable reports whether err warrants another attempt. Validation,
// not-found, and citation-format errors are terminal, as are 4xx API
// responses. Rate-limit responses, 5xx responses, and untyped failures
// (network errors) are transient.
func Retryable(err error) bool {
	var ve *types.ValidationError
	var nf *types.NotFoundError
	var fe *types.FormatError
	if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &fe) {
		return false
	}
	var ae *types.APIError
	if errors.As(err, &ae) {
		return ae.Temporary()
	}
	return true
}

// Do runs op up to MaxAttempts times, sleeping between attempts with
// exponential backoff. Rate-limit errors double the computed wait, or use
// the server-requested Retry-After when longer. Each retry is logged.
// Exhausting the policy on a transient error returns a failure tagged with
// the attempt count; terminal errors are returned unchanged after the first
// attempt.
func (p RetryPolicy) Do(ctx context.Context, logger *log.Logger, op string, fn func(ctx context.Context) error) error {
	delay := p.BaseDelay
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !Retryable(err) {
			return err
		}
		if attempt >= p.MaxAttempts {
			return exhausted(err, op, p.MaxAttempts)
		}

		wait := delay
		var rl *types.RateLimitError
		if errors.As(err, &rl) {
			wait *= 2
			if rl.RetryAfter > wait {
				wait = rl.RetryAfter
			}
		}

		if logger != nil {
			logger.Warn("retrying", "op", op, "attempt", attempt, "max", p.MaxAttempts, "wait", wait, "err", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
}

// exhausted tags a transient error with the attempt count so the surfaced
// failure reads "API error after N attempts".
func exhausted(err error, op string, attempts int) error {
	var ae *types.APIError
	if errors.As(err, &ae) {
		ae.Attempts = attempts
		return ae
	}
	return fmt.Errorf("API error after %d attempts: %s: %w", attempts, op, err)
}

// NewLimiter returns a token bucket enforcing the configured
// requests-per-minute budget. A non-positive budget disables limiting.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
}

// CheckStatus classifies an HTTP response status into the error taxonomy:
// 429 becomes a RateLimitError carrying any Retry-After hint, other non-2xx
// statuses become APIErrors. 2xx returns nil.
func CheckStatus(resp *http.Response, api string) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		var retryAfter time.Duration
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &types.RateLimitError{API: api, RetryAfter: retryAfter}
	case resp.StatusCode >= 400:
		return &types.APIError{API: api, StatusCode: resp.StatusCode}
	default:
		return nil
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// ValidationError reports malformed or empty input (title, DOI, file path).
// Validation failures are surfaced immediately and never retried.
type ValidationError struct {
	// Field names the offending input, e.g. "title" or "doi".
	Field string

	// Value is the rejected input value.
	Value string

	// Reason explains what was wrong with it.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError reports that a lookup returned no usable result: no DOI for a
// title, or no BibTeX for a DOI. Terminal, never retried.
type NotFoundError struct {
	// Kind is "doi" or "bibtex".
	Kind string

	// Key is the title or DOI that was looked up.
	Key string
}

func (e *NotFoundError) Error() string {
	switch e.Kind {
	case "doi":
		return fmt.Sprintf("DOI not found for title %q", e.Key)
	case "bibtex":
		return fmt.Sprintf("BibTeX not found for DOI %s", e.Key)
	default:
		return fmt.Sprintf("%s not found for %q", e.Kind, e.Key)
	}
}

// Suggestion returns a human-readable hint for recovering from the failure.
func (e *NotFoundError) Suggestion() string {
	switch e.Kind {
	case "doi":
		return "check the title spelling, try simplifying it (drop subtitles), or verify the paper is published and indexed"
	case "bibtex":
		return "verify the DOI is correct and that the publisher supports BibTeX export"
	default:
		return "verify the input and try again"
	}
}

// APIError reports a failed HTTP exchange with an external API. Server-side
// responses (5xx) are retryable; client errors (4xx) are terminal.
type APIError struct {
	// API names the remote service, e.g. "CrossRef".
	API string

	// StatusCode is the HTTP status, or 0 for network-level failures.
	StatusCode int

	// Attempts is the number of attempts made; set when retries are exhausted.
	Attempts int
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s API request failed", e.API)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		msg = fmt.Sprintf("API error after %d attempts: %s", e.Attempts, msg)
	}
	return msg
}

// Temporary reports whether the error is worth retrying.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// RateLimitError reports an explicit rate-limit response (HTTP 429).
// Retryable, but callers back off more aggressively than for other
// transient failures.
type RateLimitError struct {
	// API names the remote service.
	API string

	// RetryAfter is the server-requested wait, zero when not provided.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	msg := fmt.Sprintf("rate limit exceeded for %s", e.API)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	return msg
}

// FormatError reports an unrecognized citation style token. Style is a single
// upfront parameter, so this error is fatal to a whole batch.
type FormatError struct {
	// Style is the offending token as supplied by the user.
	Style string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid citation style %q: supported styles are apa, mla, ieee", e.Style)
}

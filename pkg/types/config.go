// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citemaster/0.1"). The contact email, when configured, is
	// appended as a mailto clause for polite-pool access.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetryConfig describes the retry policy applied around outbound API calls.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first
	// (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BaseDelay is the wait before the first retry (default 1s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`

	// Multiplier scales the delay after each retry (default 2.0).
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
}

// APIConfig holds settings for the CrossRef-backed resolve and fetch stages.
type APIConfig struct {
	HTTPConfig `yaml:",inline"`

	// CrossRefBaseURL is the CrossRef works search endpoint.
	CrossRefBaseURL string `json:"crossref_base_url" yaml:"crossref_base_url"`

	// DOIBaseURL is the DOI content-negotiation endpoint.
	DOIBaseURL string `json:"doi_base_url" yaml:"doi_base_url"`

	// Mailto is an optional contact email sent to CrossRef for preferential
	// rate limiting.
	Mailto string `json:"mailto,omitempty" yaml:"mailto,omitempty"`

	// RateLimit caps outbound requests per minute across both stages
	// (default 50; 0 disables the limiter).
	RateLimit int `json:"rate_limit" yaml:"rate_limit"`

	// Retry is the policy for transient failures.
	Retry RetryConfig `json:"retry" yaml:"retry"`
}

// OutputConfig names the files a batch run produces.
type OutputConfig struct {
	// Dir is the base directory for output files (default "outputs").
	Dir string `json:"dir" yaml:"dir"`

	// CitationsFile is the formatted-citations filename.
	CitationsFile string `json:"citations_file" yaml:"citations_file"`

	// BibTeXFile is the BibTeX entries filename.
	BibTeXFile string `json:"bibtex_file" yaml:"bibtex_file"`

	// ErrorLog is the append-only error log filename. Unlike the other
	// outputs it lives in the working directory, not under Dir.
	ErrorLog string `json:"error_log" yaml:"error_log"`
}

// CitationsPath returns the full path of the citations output file.
func (c OutputConfig) CitationsPath() string {
	return filepath.Join(c.Dir, c.CitationsFile)
}

// BibTeXPath returns the full path of the BibTeX output file.
func (c OutputConfig) BibTeXPath() string {
	return filepath.Join(c.Dir, c.BibTeXFile)
}

// BatchConfig holds settings for batch orchestration.
type BatchConfig struct {
	// MaxWorkers bounds the number of titles processed concurrently
	// (default 5; 1 gives strictly sequential processing).
	MaxWorkers int `json:"max_workers" yaml:"max_workers"`

	// ProgressThreshold is the batch size above which a progress indicator
	// is shown (default 50).
	ProgressThreshold int `json:"progress_threshold" yaml:"progress_threshold"`
}

// CacheConfig holds settings for the optional SQLite read-through cache.
type CacheConfig struct {
	// Enabled toggles the cache (default true).
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file (default "outputs/cache.db").
	Path string `json:"path" yaml:"path"`

	// ExpiryDays is the age after which cached entries are treated as
	// misses (default 30).
	ExpiryDays int `json:"expiry_days" yaml:"expiry_days"`
}

// UIConfig holds terminal-output settings.
type UIConfig struct {
	// Verbose enables debug-level console logging.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Quiet suppresses everything except errors and final results.
	Quiet bool `json:"quiet" yaml:"quiet"`

	// Color toggles styled terminal output (default true).
	Color bool `json:"color" yaml:"color"`
}

// Config groups all pipeline settings. A Config value is passed into each
// component at construction time; there is no process-wide configuration
// state.
type Config struct {
	API    APIConfig    `json:"api" yaml:"api"`
	Output OutputConfig `json:"output" yaml:"output"`
	Batch  BatchConfig  `json:"batch" yaml:"batch"`
	Cache  CacheConfig  `json:"cache" yaml:"cache"`
	UI     UIConfig     `json:"ui" yaml:"ui"`
}

// DefaultConfig returns the built-in defaults, used whenever no config file
// is present.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "citemaster/0.2",
			},
			CrossRefBaseURL: "https://api.crossref.org/works",
			DOIBaseURL:      "https://doi.org/",
			RateLimit:       50,
			Retry: RetryConfig{
				MaxAttempts: 3,
				BaseDelay:   time.Second,
				Multiplier:  2.0,
			},
		},
		Output: OutputConfig{
			Dir:           "outputs",
			CitationsFile: "citations_output.txt",
			BibTeXFile:    "bibtex_output.txt",
			ErrorLog:      "errors.log",
		},
		Batch: BatchConfig{
			MaxWorkers:        5,
			ProgressThreshold: 50,
		},
		Cache: CacheConfig{
			Enabled:    true,
			Path:       filepath.Join("outputs", "cache.db"),
			ExpiryDays: 30,
		},
		UI: UIConfig{
			Color: true,
		},
	}
}

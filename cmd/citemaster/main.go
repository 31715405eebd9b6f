// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the citemaster CLI. It wires the
// configuration, cache, and HTTP stages together; the pipeline itself lives
// under internal/.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/meshintel/citemaster/internal/cache"
	"github.com/meshintel/citemaster/internal/fetch"
	"github.com/meshintel/citemaster/internal/httputil"
	"github.com/meshintel/citemaster/internal/resolve"
	"github.com/meshintel/citemaster/internal/ui"
	"github.com/meshintel/citemaster/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the citemaster CLI.
var rootCmd = &cobra.Command{
	Use:   "citemaster",
	Short: "Generate formatted citations from paper titles",
	Long: `citemaster resolves research-paper titles to DOIs via the CrossRef API,
fetches BibTeX records through DOI content negotiation, and renders citations
in APA, MLA, or IEEE style.

Use "cite" for a single title and "batch" for a .txt or .csv file of titles.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./citemaster.yaml or ~/.config/citemaster/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress everything except errors and results")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable styled output")
}

func initConfig() {
	// A .env file may carry CITEMASTER_API_MAILTO for the CrossRef polite pool.
	godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("citemaster")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "citemaster"))
		}
	}

	viper.SetEnvPrefix("CITEMASTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults(types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers the built-in defaults so unset keys resolve to them.
func setDefaults(def types.Config) {
	viper.SetDefault("api.timeout", def.API.Timeout)
	viper.SetDefault("api.user_agent", def.API.UserAgent)
	viper.SetDefault("api.crossref_base_url", def.API.CrossRefBaseURL)
	viper.SetDefault("api.doi_base_url", def.API.DOIBaseURL)
	viper.SetDefault("api.mailto", def.API.Mailto)
	viper.SetDefault("api.rate_limit", def.API.RateLimit)
	viper.SetDefault("api.retry.max_attempts", def.API.Retry.MaxAttempts)
	viper.SetDefault("api.retry.base_delay", def.API.Retry.BaseDelay)
	viper.SetDefault("api.retry.multiplier", def.API.Retry.Multiplier)
	viper.SetDefault("output.dir", def.Output.Dir)
	viper.SetDefault("output.citations_file", def.Output.CitationsFile)
	viper.SetDefault("output.bibtex_file", def.Output.BibTeXFile)
	viper.SetDefault("output.error_log", def.Output.ErrorLog)
	viper.SetDefault("batch.max_workers", def.Batch.MaxWorkers)
	viper.SetDefault("batch.progress_threshold", def.Batch.ProgressThreshold)
	viper.SetDefault("cache.enabled", def.Cache.Enabled)
	viper.SetDefault("cache.path", def.Cache.Path)
	viper.SetDefault("cache.expiry_days", def.Cache.ExpiryDays)
	viper.SetDefault("ui.verbose", def.UI.Verbose)
	viper.SetDefault("ui.quiet", def.UI.Quiet)
	viper.SetDefault("ui.color", def.UI.Color)
}

// loadConfig assembles the effective configuration from viper plus the
// persistent flags. The result is passed by value into each component; no
// package holds configuration state.
func loadConfig() types.Config {
	cfg := types.Config{
		API: types.APIConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("api.timeout"),
				UserAgent: viper.GetString("api.user_agent"),
			},
			CrossRefBaseURL: viper.GetString("api.crossref_base_url"),
			DOIBaseURL:      viper.GetString("api.doi_base_url"),
			Mailto:          viper.GetString("api.mailto"),
			RateLimit:       viper.GetInt("api.rate_limit"),
			Retry: types.RetryConfig{
				MaxAttempts: viper.GetInt("api.retry.max_attempts"),
				BaseDelay:   viper.GetDuration("api.retry.base_delay"),
				Multiplier:  viper.GetFloat64("api.retry.multiplier"),
			},
		},
		Output: types.OutputConfig{
			Dir:           viper.GetString("output.dir"),
			CitationsFile: viper.GetString("output.citations_file"),
			BibTeXFile:    viper.GetString("output.bibtex_file"),
			ErrorLog:      viper.GetString("output.error_log"),
		},
		Batch: types.BatchConfig{
			MaxWorkers:        viper.GetInt("batch.max_workers"),
			ProgressThreshold: viper.GetInt("batch.progress_threshold"),
		},
		Cache: types.CacheConfig{
			Enabled:    viper.GetBool("cache.enabled"),
			Path:       viper.GetString("cache.path"),
			ExpiryDays: viper.GetInt("cache.expiry_days"),
		},
		UI: types.UIConfig{
			Verbose: viper.GetBool("ui.verbose"),
			Quiet:   viper.GetBool("ui.quiet"),
			Color:   viper.GetBool("ui.color"),
		},
	}

	if v, _ := rootCmd.PersistentFlags().GetBool("verbose"); v {
		cfg.UI.Verbose = true
	}
	if q, _ := rootCmd.PersistentFlags().GetBool("quiet"); q {
		cfg.UI.Quiet = true
	}
	if nc, _ := rootCmd.PersistentFlags().GetBool("no-color"); nc {
		cfg.UI.Color = false
	}
	return cfg
}

// pipeline bundles the constructed stages for one command invocation.
type pipeline struct {
	resolver *resolve.Resolver
	fetcher  *fetch.Fetcher
	cache    *cache.Store
	printer  *ui.Printer
	logger   *log.Logger
}

// buildPipeline constructs the HTTP client, rate limiter, optional cache,
// and both API stages from one Config value. A cache that fails to open
// logs a warning and degrades to uncached operation.
func buildPipeline(cfg types.Config) *pipeline {
	logger := newLogger(cfg.UI)
	client := &http.Client{Timeout: cfg.API.Timeout}
	limiter := httputil.NewLimiter(cfg.API.RateLimit)

	var store *cache.Store
	var resolveCache resolve.Cache
	var fetchCache fetch.Cache
	if cfg.Cache.Enabled {
		s, err := cache.Open(cfg.Cache.Path, cfg.Cache.ExpiryDays)
		if err != nil {
			logger.Warn("cache unavailable, continuing without it", "err", err)
		} else {
			store = s
			resolveCache = s
			fetchCache = s
		}
	}

	return &pipeline{
		resolver: resolve.New(client, cfg.API, limiter, resolveCache, logger),
		fetcher:  fetch.New(client, cfg.API, limiter, fetchCache, logger),
		cache:    store,
		printer:  ui.NewPrinter(os.Stdout, cfg.UI),
		logger:   logger,
	}
}

// Close releases pipeline resources.
func (p *pipeline) Close() {
	if p.cache != nil {
		p.cache.Close()
	}
}

func newLogger(cfg types.UIConfig) *log.Logger {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	if cfg.Quiet {
		level = log.ErrorLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: false,
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

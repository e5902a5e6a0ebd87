package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"moscowrests/lib/configutil"
	"moscowrests/lib/telemetry"

	"github.com/spf13/cobra"
)

type Config struct {
	// StartURL is the first restaurant-listing page to crawl.
	StartURL string `json:"start_url"`
	// PagesDir receives (and later feeds) the saved detail pages.
	PagesDir string `json:"pages_dir"`
	// Output is the line-delimited JSON file the parse command writes.
	Output string `json:"output"`
	// Store is an optional sqlite archive path.
	Store string `json:"store"`
	// CrawlDelayMs spaces out detail-page fetches.
	CrawlDelayMs int `json:"crawl_delay_ms"`
}

var config Config

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "moscowrests",
	Short: "moscowrests crawls restaurant listings and extracts structured records from the saved pages.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		cfg, err := configutil.ReadConfig[Config]("config.json5")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		config = cfg
		applyDefaults(&config)
		return nil
	},
}

func applyDefaults(c *Config) {
	if c.PagesDir == "" {
		c.PagesDir = "pages"
	}
	if c.Output == "" {
		c.Output = "restaurants.jl"
	}
	if c.CrawlDelayMs == 0 {
		c.CrawlDelayMs = 3000
	}
}

func Execute() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	ctx := context.Background()
	tel, err := telemetry.SetupFromEnv(ctx, "moscowrests")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() {
		err := tel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to shut down telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

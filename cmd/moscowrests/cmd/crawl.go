package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"moscowrests/lib/scrapers/tripadvisor"

	"github.com/spf13/cobra"
)

func init() {
	crawlCmd.Flags().StringVar(&crawlStartURL, "start-url", "", "listing page to start from (overrides config)")
	rootCmd.AddCommand(crawlCmd)
}

var crawlStartURL string

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Walks listing pagination and saves every restaurant detail page to disk.",
	RunE: func(cmd *cobra.Command, args []string) error {
		startURL := config.StartURL
		if crawlStartURL != "" {
			startURL = crawlStartURL
		}
		if startURL == "" {
			return fmt.Errorf("no start url: set start_url in config.json5 or pass --start-url")
		}

		crawler, err := tripadvisor.NewCrawler(tripadvisor.CrawlerOptions{
			StartURL: startURL,
			PagesDir: config.PagesDir,
			Delay:    time.Duration(config.CrawlDelayMs) * time.Millisecond,
		})
		if err != nil {
			return err
		}

		t1 := time.Now()
		saved, err := crawler.Run(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("crawl finished",
			"pages", saved,
			"dir", config.PagesDir,
			"seconds", time.Since(t1).Seconds(),
		)
		return nil
	},
}

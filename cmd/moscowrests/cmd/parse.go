package cmd

import (
	"os"

	"moscowrests/lib/batch"
	"moscowrests/lib/reststore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extracts one JSON record per saved detail page into a line-delimited output file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var store *reststore.Store
		if config.Store != "" {
			var err error
			store, err = reststore.Open(config.Store)
			if err != nil {
				return err
			}
			defer store.Close()
		}

		summary, err := batch.Run(cmd.Context(), batch.Options{
			PagesDir:   config.PagesDir,
			OutputPath: config.Output,
			Store:      store,
			Progress:   true,
		})
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Pages", "Parsed", "Skipped", "Failed"})
		t.AppendRow(table.Row{summary.TotalPages, summary.Parsed, summary.Skipped, summary.Failed})
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dascraper/pkg/checkpoint"
	"dascraper/pkg/logger"
)

var (
	searchPages  int
	searchResume bool
	searchFresh  bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Walk search results page by page",
	Long: `Search DeviantArt and print the deviations found, one page of
results per request.

Progress is checkpointed after every page, keyed by the query. Running
the same search with --resume continues from the stored cursor and
skips deviations already seen.`,
	Example: `  dascraper search "landscape painting"
  dascraper search --pages 5 "landscape painting"
  dascraper search --resume "landscape painting"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchPages, "pages", 1, "number of result pages to fetch")
	searchCmd.Flags().BoolVar(&searchResume, "resume", false, "resume from the stored checkpoint")
	searchCmd.Flags().BoolVar(&searchFresh, "fresh", false, "discard any stored checkpoint first")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	manager, err := checkpoint.NewManager(filepath.Dir(cfg.Scrape.CheckpointFile), query)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint: %w", err)
	}
	if searchFresh {
		if err := manager.Delete(); err != nil {
			return err
		}
	}

	var cp *checkpoint.Checkpoint
	if searchResume && manager.Exists() {
		cp, err = manager.Load()
	} else {
		cp, err = manager.Create(query)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare checkpoint: %w", err)
	}

	client := newClient()
	cursor := client.Search(query)
	if cp.Cursor != "" {
		cursor.Resume(cp.Cursor)
	}

	newResults := 0
	for page := 0; page < searchPages; page++ {
		if page > 0 && !cursor.HasMore() {
			break
		}

		if err := cursor.NextPage(cmd.Context()); err != nil {
			return fmt.Errorf("failed to fetch result page: %w", err)
		}

		deviations, err := cursor.CurrentDeviations()
		if err != nil {
			return fmt.Errorf("failed to read result page: %w", err)
		}

		for _, dev := range deviations {
			if cp.HasSeen(dev.DeviationID) {
				continue
			}
			cp.RecordSeen(dev.DeviationID, dev.Title)
			newResults++
			fmt.Printf("%d  %s\n    %s\n", dev.DeviationID, dev.Title, dev.URL)
		}

		if err := manager.UpdateProgress(cp, cursor.Cursor()); err != nil {
			logger.WithError(err).Warn("failed to save checkpoint")
		}
	}
	persistCookies(client)

	fmt.Printf("\n%d new deviations (%d seen across runs)\n", newResults, cp.TotalSeen)
	if cursor.HasMore() {
		fmt.Println("More results available; run again with --resume")
	}
	return nil
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dascraper/pkg/deviantart"
)

var folderAll bool

// folderCmd represents the folder command
var folderCmd = &cobra.Command{
	Use:   "folder <url>",
	Short: "List the deviations in a gallery folder",
	Long: `List the deviation ids held by a gallery folder page.

By default only the ids embedded in the page itself are printed. With
--all the folder listing endpoint is followed until the folder is
exhausted.`,
	Example: `  dascraper folder https://www.deviantart.com/someone/gallery/12345/folder-name
  dascraper folder --all https://www.deviantart.com/someone/gallery/12345/folder-name`,
	Args: cobra.ExactArgs(1),
	RunE: runFolder,
}

func init() {
	folderCmd.Flags().BoolVar(&folderAll, "all", false, "follow pagination until the folder is exhausted")

	rootCmd.AddCommand(folderCmd)
}

func runFolder(cmd *cobra.Command, args []string) error {
	client := newClient()

	var folder *deviantart.Folder
	var err error
	if folderAll {
		folder, err = client.WalkFolder(cmd.Context(), args[0])
	} else {
		folder, err = client.ScrapeFolder(cmd.Context(), args[0])
	}

	truncated := errors.Is(err, deviantart.ErrFolderWalkTruncated)
	if err != nil && !truncated {
		return err
	}
	persistCookies(client)

	name := folder.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Printf("Folder %d: %s", folder.ID, name)
	if folder.Owner != "" {
		fmt.Printf(" by %s", folder.Owner)
	}
	fmt.Printf("\n%d deviations\n", len(folder.DeviationIDs))

	for _, id := range folder.DeviationIDs {
		fmt.Println(id)
	}

	if truncated {
		fmt.Println("listing stopped early; the folder has more pages than the walk limit")
	} else if folder.HasMore {
		fmt.Println("more deviations available; rerun with --all")
	}
	return nil
}

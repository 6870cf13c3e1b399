// Package deviantart scrapes deviantart pages and decodes the state
// blobs embedded in them.
//
// This package includes:
//   - State extraction from page HTML and sta.sh HTML
//   - Typed entity models that preserve unrecognized JSON fields
//   - Media url construction, including the fullview template
//   - A client with sign-in, search pagination, and folder walking
//
// Example usage:
//
//	client := deviantart.NewClient(30*time.Second, nil)
//
//	state, err := client.ScrapePage(ctx, pageURL)
//	if err != nil {
//	    return err
//	}
//	deviation := state.CurrentDeviation()
//	if deviation == nil {
//	    return errors.New("page has no open deviation")
//	}
//	if url, ok := deviation.DownloadURL(); ok {
//	    // Fetch the full resolution file.
//	}
//
//	// Page through search results.
//	cursor := client.Search("landscape")
//	if err := cursor.NextPage(ctx); err != nil {
//	    return err
//	}
//	results, err := cursor.CurrentDeviations()
package deviantart

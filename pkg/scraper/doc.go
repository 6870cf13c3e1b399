// Package scraper turns deviation pages into download plans.
//
// A Scraper wraps a PageSource (normally a deviantart.Client) and, for
// each page, picks the best reachable media url: the granted download,
// a token signed original, the widest video rendition, or the fullview
// preview as a last resort. Batches resolve with bounded parallelism:
//
//	s := scraper.New(client, 4, nil)
//	plans, err := s.ResolveAll(ctx, urls)
package scraper

package scraper

import (
	"context"

	"dascraper/pkg/deviantart"
)

// PageSource fetches deviation pages. *deviantart.Client satisfies it;
// tests substitute a canned source.
type PageSource interface {
	ScrapePage(ctx context.Context, rawURL string) (*deviantart.PageState, error)
	ScrapeDeviation(ctx context.Context, id uint64) (*deviantart.PageState, error)
}

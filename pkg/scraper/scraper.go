package scraper

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"dascraper/pkg/deviantart"
	"dascraper/pkg/logger"
)

// ErrNoDeviation is returned when a scraped page carries no current
// deviation in its embedded state.
var ErrNoDeviation = errors.New("page has no current deviation")

// Media sources, in order of preference.
const (
	SourceDownload = "download"
	SourceToken    = "token"
	SourceVideo    = "video"
	SourceFullview = "fullview"
	SourceNone     = "none"
)

// ResolvedDeviation is the download plan for one deviation page.
type ResolvedDeviation struct {
	DeviationID uint64
	Title       string
	Kind        string
	PageURL     string

	// MediaURL is the preferred media url, empty for literature and for
	// posts where nothing could be resolved.
	MediaURL string

	// Source names which rendition MediaURL points at.
	Source string

	// Extension is the guessed file extension, empty when unknown.
	Extension string

	// Protected reports that the post withholds token signed urls and
	// only the fullview rendition was reachable.
	Protected bool

	// SecondaryURLs holds the resolved urls of a multi-image post's
	// additional images, in display order.
	SecondaryURLs []string
}

// Scraper resolves deviation pages into download plans.
type Scraper struct {
	source   PageSource
	logger   logger.Logger
	fullview deviantart.FullviewOptions
	limit    int
}

// New creates a Scraper. limit bounds how many pages ResolveAll works
// on at once; values below 1 mean no bound.
func New(source PageSource, limit int, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		source: source,
		logger: log,
		limit:  limit,
	}
}

// SetFullviewOptions overrides the rendition options used when falling
// back to fullview urls.
func (s *Scraper) SetFullviewOptions(opts deviantart.FullviewOptions) {
	s.fullview = opts
}

// ResolveDeviation scrapes one deviation page by url and resolves its
// media.
func (s *Scraper) ResolveDeviation(ctx context.Context, rawURL string) (*ResolvedDeviation, error) {
	state, err := s.source.ScrapePage(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return s.resolveState(state, rawURL)
}

// ResolveByID scrapes one deviation page by id and resolves its media.
func (s *Scraper) ResolveByID(ctx context.Context, id uint64) (*ResolvedDeviation, error) {
	state, err := s.source.ScrapeDeviation(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolveState(state, deviantart.DeviationViewURL(id))
}

// ResolveAll resolves a batch of deviation pages. Pages are fetched
// with bounded parallelism; the result slice lines up with urls. The
// first failure cancels the remaining fetches.
func (s *Scraper) ResolveAll(ctx context.Context, urls []string) ([]*ResolvedDeviation, error) {
	results := make([]*ResolvedDeviation, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	if s.limit > 0 {
		g.SetLimit(s.limit)
	}

	for i, rawURL := range urls {
		i, rawURL := i, rawURL
		g.Go(func() error {
			resolved, err := s.ResolveDeviation(ctx, rawURL)
			if err != nil {
				return err
			}
			results[i] = resolved
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// resolveState turns an extracted page state into a download plan.
func (s *Scraper) resolveState(state *deviantart.PageState, pageURL string) (*ResolvedDeviation, error) {
	dev := state.CurrentDeviation()
	if dev == nil {
		return nil, ErrNoDeviation
	}
	ext := state.CurrentDeviationExtended()

	resolved := &ResolvedDeviation{
		DeviationID: dev.DeviationID,
		Title:       dev.Title,
		Kind:        dev.Kind,
		PageURL:     pageURL,
		Source:      SourceNone,
		Protected:   ext != nil && ext.DAProtected,
	}
	if extension, ok := dev.Extension(); ok {
		resolved.Extension = extension
	}

	s.pickMediaURL(dev, ext, resolved)
	s.resolveSecondary(ext, resolved)

	s.logger.DebugWithFields("resolved deviation", map[string]interface{}{
		"deviation_id": resolved.DeviationID,
		"source":       resolved.Source,
		"secondary":    len(resolved.SecondaryURLs),
	})
	return resolved, nil
}

// pickMediaURL fills MediaURL and Source by preference. Protected posts
// withhold their signing tokens, so only fullview is attempted for
// them. Literature has no media url at all.
func (s *Scraper) pickMediaURL(dev *deviantart.Deviation, ext *deviantart.DeviationExtended, resolved *ResolvedDeviation) {
	if dev.IsLiterature() {
		return
	}

	if dev.IsFilm() {
		if u, ok := dev.BestVideoURL(); ok {
			resolved.MediaURL = u
			resolved.Source = SourceVideo
			return
		}
	}

	if !resolved.Protected {
		if ext != nil && ext.Download != nil && ext.Download.URL != "" {
			resolved.MediaURL = ext.Download.URL
			resolved.Source = SourceDownload
			return
		}
		if u, ok := dev.ImageDownloadURL(); ok {
			resolved.MediaURL = u
			resolved.Source = SourceToken
			return
		}
	}

	u, err := dev.FullviewURL(s.fullview)
	if err != nil {
		s.logger.WarnWithFields("no fullview rendition", map[string]interface{}{
			"deviation_id": dev.DeviationID,
			"error":        err.Error(),
		})
		return
	}
	resolved.MediaURL = u
	resolved.Source = SourceFullview
}

// resolveSecondary collects the urls of a multi-image post's additional
// images. Protected posts fall back to each image's fullview rendition.
func (s *Scraper) resolveSecondary(ext *deviantart.DeviationExtended, resolved *ResolvedDeviation) {
	if ext == nil || len(ext.AdditionalMedia) == 0 {
		return
	}

	for i := range ext.AdditionalMedia {
		u, err := ext.SecondaryMediaURL(i)
		if errors.Is(err, deviantart.ErrMediaProtected) {
			u, err = ext.AdditionalMedia[i].Media.FullviewURL(s.fullview)
		}
		if err != nil {
			s.logger.WarnWithFields("skipping secondary image", map[string]interface{}{
				"deviation_id": resolved.DeviationID,
				"index":        i,
				"error":        err.Error(),
			})
			continue
		}
		resolved.SecondaryURLs = append(resolved.SecondaryURLs, u)
	}
}

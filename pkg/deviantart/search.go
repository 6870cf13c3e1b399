package deviantart

import (
	"context"
)

// SearchCursor pages through search results. It remembers the
// continuation cursor of the last fetched page, so repeated NextPage
// calls walk forward through the result set.
type SearchCursor struct {
	client *Client
	page   *PageState
	query  string
	cursor string
}

// NewSearchCursor creates a cursor for a query. An empty cursor string
// starts from the first page; a saved cursor resumes a previous walk.
func NewSearchCursor(client *Client, query string) *SearchCursor {
	return &SearchCursor{
		client: client,
		query:  query,
	}
}

// Resume sets the continuation cursor, discarding any held page.
func (s *SearchCursor) Resume(cursor string) {
	s.cursor = cursor
	s.page = nil
}

// Cursor returns the current continuation cursor. Persist it to resume
// the walk later.
func (s *SearchCursor) Cursor() string {
	return s.cursor
}

// Query returns the search query.
func (s *SearchCursor) Query() string {
	return s.query
}

// Page returns the currently held page, or nil before the first
// NextPage call.
func (s *SearchCursor) Page() *PageState {
	return s.page
}

// NextPage fetches the next page of results and advances the cursor.
// The fetched page is validated before the cursor moves, so a failed
// call leaves the walk where it was.
func (s *SearchCursor) NextPage(ctx context.Context) error {
	page, err := s.client.SearchPage(ctx, s.query, s.cursor)
	if err != nil {
		return err
	}

	if page.Streams == nil {
		return ErrMissingStreams
	}
	stream := page.Streams.BrowsePage
	if stream == nil {
		return ErrMissingBrowsePageStream
	}

	s.cursor = stream.Cursor
	s.page = page
	return nil
}

// HasMore reports whether the held page says more results follow.
func (s *SearchCursor) HasMore() bool {
	if s.page == nil || s.page.Streams == nil || s.page.Streams.BrowsePage == nil {
		return false
	}
	return s.page.Streams.BrowsePage.HasMore
}

// CurrentDeviations returns the deviations of the held page, in stream
// order. Stream items that are not numeric ids are skipped; a numeric
// id without a matching entity is a MissingDeviationError.
func (s *SearchCursor) CurrentDeviations() ([]*Deviation, error) {
	if s.page == nil {
		return nil, ErrNoCurrentPage
	}
	stream := s.page.Streams.BrowsePage

	deviations := make([]*Deviation, 0, len(stream.Items))
	for _, item := range stream.Items {
		id, ok := item.Uint64()
		if !ok {
			continue
		}
		deviation := s.page.DeviationByID(id)
		if deviation == nil {
			return nil, &MissingDeviationError{ID: id}
		}
		deviations = append(deviations, deviation)
	}
	return deviations, nil
}

// TakeCurrentDeviations drains the held page: the stream items and
// their deviation entities move to the caller and the page is dropped.
// Other entities on the page are discarded with it.
func (s *SearchCursor) TakeCurrentDeviations() ([]*Deviation, error) {
	if s.page == nil {
		return nil, ErrNoCurrentPage
	}
	page := s.page
	s.page = nil

	stream := page.Streams.BrowsePage
	items := stream.Items
	stream.Items = nil

	deviations := make([]*Deviation, 0, len(items))
	for _, item := range items {
		id, ok := item.Uint64()
		if !ok {
			continue
		}
		deviation := page.TakeDeviationByID(id)
		if deviation == nil {
			return nil, &MissingDeviationError{ID: id}
		}
		deviations = append(deviations, deviation)
	}
	return deviations, nil
}

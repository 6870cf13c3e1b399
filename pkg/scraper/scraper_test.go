package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dascraper/pkg/deviantart"
	"dascraper/pkg/logger"
)

// fakeSource serves canned page states keyed by url.
type fakeSource struct {
	mu     sync.Mutex
	states map[string]*deviantart.PageState
	errs   map[string]error
	calls  int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		states: make(map[string]*deviantart.PageState),
		errs:   make(map[string]error),
	}
}

func (f *fakeSource) ScrapePage(ctx context.Context, rawURL string) (*deviantart.PageState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if err := f.errs[rawURL]; err != nil {
		return nil, err
	}
	state, ok := f.states[rawURL]
	if !ok {
		return nil, fmt.Errorf("no canned state for %s", rawURL)
	}
	return state, nil
}

func (f *fakeSource) ScrapeDeviation(ctx context.Context, id uint64) (*deviantart.PageState, error) {
	return f.ScrapePage(ctx, deviantart.DeviationViewURL(id))
}

func mustState(t *testing.T, stateJSON string) *deviantart.PageState {
	t.Helper()
	var state deviantart.PageState
	require.NoError(t, json.Unmarshal([]byte(stateJSON), &state))
	return &state
}

// pageStateJSON wraps one deviation (and optional extended record) into
// a full page state with the deviation open.
func pageStateJSON(deviationJSON, extendedJSON string) string {
	extended := ""
	if extendedJSON != "" {
		extended = fmt.Sprintf(`,"deviationExtended":{"42":%s}`, extendedJSON)
	}
	return fmt.Sprintf(`{
		"@@config":{"csrfToken":"csrf-abc"},
		"@@publicSession":{"isLoggedIn":false},
		"@@DUPERBROWSE":{"rootStream":{"currentOpenItem":42}},
		"@@entities":{"deviation":{"42":%s}%s}
	}`, deviationJSON, extended)
}

const imageDeviationJSON = `{
	"deviationId":42,
	"type":"image",
	"url":"https://www.deviantart.com/someone/art/sample-42",
	"title":"Sample",
	"isDownloadable":true,
	"media":{
		"baseUri":"https://images.example.com/f/abc/sample.jpg",
		"prettyName":"sample",
		"token":["tok-preview","tok-download"],
		"types":[
			{"t":"fullview","c":"/v1/fit/w_1280,h_1024,q_80,strp/<prettyName>-fullview.jpg","w":1280,"h":1024}
		]
	}
}`

func newTestScraper(source PageSource, limit int) *Scraper {
	return New(source, limit, logger.NewTestLogger())
}

func TestResolveDeviationPrefersDownload(t *testing.T) {
	source := newFakeSource()
	source.states["https://page"] = mustState(t, pageStateJSON(imageDeviationJSON,
		`{"download":{"url":"https://images.example.com/download/sample-full.jpg","width":4000,"height":3000,"type":"image"}}`))

	resolved, err := newTestScraper(source, 1).ResolveDeviation(context.Background(), "https://page")
	require.NoError(t, err)

	assert.Equal(t, uint64(42), resolved.DeviationID)
	assert.Equal(t, "Sample", resolved.Title)
	assert.Equal(t, deviantart.KindImage, resolved.Kind)
	assert.Equal(t, "https://page", resolved.PageURL)
	assert.Equal(t, SourceDownload, resolved.Source)
	assert.Equal(t, "https://images.example.com/download/sample-full.jpg", resolved.MediaURL)
	assert.Equal(t, "jpg", resolved.Extension)
	assert.False(t, resolved.Protected)
}

func TestResolveDeviationTokenFallback(t *testing.T) {
	source := newFakeSource()
	source.states["https://page"] = mustState(t, pageStateJSON(imageDeviationJSON, ""))

	resolved, err := newTestScraper(source, 1).ResolveDeviation(context.Background(), "https://page")
	require.NoError(t, err)

	assert.Equal(t, SourceToken, resolved.Source)
	assert.Equal(t, "https://images.example.com/f/abc/sample.jpg?token=tok-download", resolved.MediaURL)
}

func TestResolveDeviationProtected(t *testing.T) {
	source := newFakeSource()
	source.states["https://page"] = mustState(t, pageStateJSON(imageDeviationJSON,
		`{"isDaProtected":true,"download":{"url":"https://images.example.com/download/withheld.jpg"}}`))

	resolved, err := newTestScraper(source, 1).ResolveDeviation(context.Background(), "https://page")
	require.NoError(t, err)

	assert.True(t, resolved.Protected)
	assert.Equal(t, SourceFullview, resolved.Source)
	assert.Equal(t,
		"https://images.example.com/f/abc/sample.jpg/v1/fit/w_1280,h_1024,q_80,strp/sample-fullview.jpg?token=tok-preview",
		resolved.MediaURL)
}

func TestResolveDeviationLiterature(t *testing.T) {
	source := newFakeSource()
	source.states["https://page"] = mustState(t, pageStateJSON(`{
		"deviationId":42,
		"type":"literature",
		"title":"A Poem",
		"media":{"types":[]}
	}`, ""))

	resolved, err := newTestScraper(source, 1).ResolveDeviation(context.Background(), "https://page")
	require.NoError(t, err)

	assert.Equal(t, deviantart.KindLiterature, resolved.Kind)
	assert.Equal(t, SourceNone, resolved.Source)
	assert.Empty(t, resolved.MediaURL)
	assert.Empty(t, resolved.Extension)
}

func TestResolveDeviationFilm(t *testing.T) {
	source := newFakeSource()
	source.states["https://page"] = mustState(t, pageStateJSON(`{
		"deviationId":42,
		"type":"film",
		"title":"A Clip",
		"media":{"types":[
			{"t":"video","b":"https://video.example.com/small.mp4","w":640},
			{"t":"video","b":"https://video.example.com/large.mp4","w":1920}
		]}
	}`, ""))

	resolved, err := newTestScraper(source, 1).ResolveDeviation(context.Background(), "https://page")
	require.NoError(t, err)

	assert.Equal(t, SourceVideo, resolved.Source)
	assert.Equal(t, "https://video.example.com/large.mp4", resolved.MediaURL)
	assert.Equal(t, "mp4", resolved.Extension)
}

func TestResolveDeviationSecondaryMedia(t *testing.T) {
	source := newFakeSource()
	source.states["https://page"] = mustState(t, pageStateJSON(imageDeviationJSON, `{
		"additionalMedia":[
			{"media":{"baseUri":"https://images.example.com/f/sec1.jpg","token":["sec-tok-1"],"types":[]}},
			{"media":{"baseUri":"https://images.example.com/f/sec2.jpg","token":["sec-tok-2"],"types":[]}}
		]
	}`))

	resolved, err := newTestScraper(source, 1).ResolveDeviation(context.Background(), "https://page")
	require.NoError(t, err)

	require.Len(t, resolved.SecondaryURLs, 2)
	assert.Equal(t, "https://images.example.com/f/sec1.jpg?token=sec-tok-1", resolved.SecondaryURLs[0])
	assert.Equal(t, "https://images.example.com/f/sec2.jpg?token=sec-tok-2", resolved.SecondaryURLs[1])
}

func TestResolveDeviationSecondaryMediaProtected(t *testing.T) {
	source := newFakeSource()
	source.states["https://page"] = mustState(t, pageStateJSON(imageDeviationJSON, `{
		"isDaProtected":true,
		"additionalMedia":[
			{"media":{
				"baseUri":"https://images.example.com/f/sec1.jpg",
				"prettyName":"sec1",
				"token":["sec-tok-1"],
				"types":[{"t":"fullview","c":"/v1/fit/w_800,h_600,q_70,strp/<prettyName>-fullview.jpg","w":800,"h":600}]
			}}
		]
	}`))

	resolved, err := newTestScraper(source, 1).ResolveDeviation(context.Background(), "https://page")
	require.NoError(t, err)

	require.Len(t, resolved.SecondaryURLs, 1)
	assert.Equal(t,
		"https://images.example.com/f/sec1.jpg/v1/fit/w_800,h_600,q_70,strp/sec1-fullview.jpg?token=sec-tok-1",
		resolved.SecondaryURLs[0])
}

func TestResolveByID(t *testing.T) {
	source := newFakeSource()
	source.states[deviantart.DeviationViewURL(42)] = mustState(t, pageStateJSON(imageDeviationJSON, ""))

	resolved, err := newTestScraper(source, 1).ResolveByID(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, deviantart.DeviationViewURL(42), resolved.PageURL)
	assert.Equal(t, uint64(42), resolved.DeviationID)
}

func TestResolveDeviationNoDeviation(t *testing.T) {
	source := newFakeSource()
	source.states["https://page"] = mustState(t, `{
		"@@config":{"csrfToken":"csrf-abc"},
		"@@publicSession":{"isLoggedIn":false}
	}`)

	_, err := newTestScraper(source, 1).ResolveDeviation(context.Background(), "https://page")
	assert.ErrorIs(t, err, ErrNoDeviation)
}

func TestResolveAll(t *testing.T) {
	source := newFakeSource()
	urls := []string{"https://page/1", "https://page/2", "https://page/3"}
	for _, u := range urls {
		source.states[u] = mustState(t, pageStateJSON(imageDeviationJSON, ""))
	}

	results, err := newTestScraper(source, 2).ResolveAll(context.Background(), urls)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, resolved := range results {
		assert.Equal(t, urls[i], resolved.PageURL)
		assert.Equal(t, uint64(42), resolved.DeviationID)
	}
	assert.Equal(t, 3, source.calls)
}

func TestResolveAllPropagatesErrors(t *testing.T) {
	source := newFakeSource()
	source.states["https://page/1"] = mustState(t, pageStateJSON(imageDeviationJSON, ""))
	wantErr := errors.New("network down")
	source.errs["https://page/2"] = wantErr

	_, err := newTestScraper(source, 2).ResolveAll(context.Background(), []string{"https://page/1", "https://page/2"})
	assert.ErrorIs(t, err, wantErr)
}

package deviantart

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dascraper/pkg/cookiejar"
	"dascraper/pkg/logger"
)

// Client scrapes deviantart pages and decodes their embedded state.
type Client struct {
	httpClient *http.Client
	jar        *cookiejar.Jar
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a new client. A nil logger falls back to the global
// one.
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	jar := cookiejar.New()
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		jar: jar,
		headers: map[string]string{
			"User-Agent":      DefaultUserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		logger: log,
	}
}

// SetHeader sets a custom header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetUserAgent overrides the browser identity.
func (c *Client) SetUserAgent(userAgent string) {
	c.headers["User-Agent"] = userAgent
}

// Jar exposes the client's cookie jar.
func (c *Client) Jar() *cookiejar.Jar {
	return c.jar
}

// LoadCookies restores a saved session from a cookie file. A missing
// file is not an error.
func (c *Client) LoadCookies(path string) error {
	if err := c.jar.LoadFile(path); err != nil {
		return err
	}
	c.logger.DebugWithFields("loaded cookies", map[string]interface{}{
		"file":  path,
		"count": c.jar.Len(),
	})
	return nil
}

// SaveCookies persists the current session to a cookie file.
func (c *Client) SaveCookies(path string) error {
	if err := c.jar.SaveFile(path); err != nil {
		return err
	}
	c.logger.DebugWithFields("saved cookies", map[string]interface{}{
		"file":  path,
		"count": c.jar.Len(),
	})
	return nil
}

// doRequest performs a request with the configured headers and returns
// the response body as a string. Non-2xx statuses become an HTTPError.
func (c *Client) doRequest(req *http.Request) (string, error) {
	for key, value := range c.headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", &HTTPError{StatusCode: resp.StatusCode, URL: req.URL.String()}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	return string(body), nil
}

// get fetches a url and returns its body.
func (c *Client) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	return c.doRequest(req)
}

// postForm posts url-encoded form values and returns the response body.
func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.doRequest(req)
}

// ScrapePage fetches a deviantart page and decodes its embedded state.
func (c *Client) ScrapePage(ctx context.Context, rawURL string) (*PageState, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	state, err := ExtractPageState(body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract page state from %s: %w", rawURL, err)
	}
	return state, nil
}

// ScrapeDeviation fetches the page of a bare deviation id.
func (c *Client) ScrapeDeviation(ctx context.Context, id uint64) (*PageState, error) {
	return c.ScrapePage(ctx, DeviationViewURL(id))
}

// ScrapeStash fetches a sta.sh page and decodes its state blob.
func (c *Client) ScrapeStash(ctx context.Context, rawURL string) (*StashState, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	state, err := ExtractStashState(body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract stash state from %s: %w", rawURL, err)
	}
	return state, nil
}

// IsLoggedInOnline fetches the home page and reports the session flag
// the server put in it.
func (c *Client) IsLoggedInOnline(ctx context.Context) (bool, error) {
	state, err := c.ScrapePage(ctx, HomeURL)
	if err != nil {
		return false, err
	}
	return state.IsLoggedIn(), nil
}

// Search starts a search for a query. Call NextPage on the returned
// cursor to fetch results.
func (c *Client) Search(query string) *SearchCursor {
	return NewSearchCursor(c, query)
}

// SearchPage fetches one search results page directly, with an optional
// continuation cursor.
func (c *Client) SearchPage(ctx context.Context, query, cursor string) (*PageState, error) {
	return c.ScrapePage(ctx, SearchURL(query, cursor))
}

// ListFolderContents fetches one offset page of a gallery folder
// listing.
func (c *Client) ListFolderContents(ctx context.Context, username string, folderID uint64, offset int, csrfToken string) (*FolderContentsResponse, error) {
	body, err := c.get(ctx, FolderContentsURL(username, folderID, offset, csrfToken))
	if err != nil {
		return nil, err
	}

	var contents FolderContentsResponse
	if err := json.Unmarshal([]byte(body), &contents); err != nil {
		return nil, &StateDecodeError{Err: err}
	}
	return &contents, nil
}

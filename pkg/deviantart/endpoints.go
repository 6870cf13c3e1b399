package deviantart

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the base url for the main site.
	BaseURL = "https://www.deviantart.com"

	// HomeURL is the home page, used for the lightweight logged-in check.
	HomeURL = BaseURL + "/"

	// LoginURL is the page whose state carries the sign-in tokens.
	LoginURL = BaseURL + "/users/login"

	// SearchEndpoint serves search result pages.
	SearchEndpoint = BaseURL + "/search"

	// signInStep2URL receives the username step of the modern flow.
	signInStep2URL = BaseURL + "/_sisu/do/step2"

	// signInURL receives the password step of both flow generations.
	signInURL = BaseURL + "/_sisu/do/signin"

	// folderContentsEndpoint is the offset-paged folder listing api.
	folderContentsEndpoint = BaseURL + "/_puppy/dashared/gallection/contents"

	// folderContentsLimit is the page size the site's own client asks
	// for when listing a folder.
	folderContentsLimit = 24
)

// DefaultUserAgent is sent when the caller does not configure one.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/101.0.4951.54 Safari/537.36"

// SearchURL builds a search page url for a query, with an optional
// continuation cursor.
func SearchURL(query, cursor string) string {
	params := url.Values{}
	params.Set("q", query)
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	return SearchEndpoint + "?" + params.Encode()
}

// FolderContentsURL builds an offset listing request for a folder. The
// endpoint wants the owner's username, the folder id, the numeric
// offset, and the csrf token scraped from the folder page.
func FolderContentsURL(username string, folderID uint64, offset int, csrfToken string) string {
	params := url.Values{}
	params.Set("username", username)
	params.Set("type", "gallery")
	params.Set("offset", fmt.Sprintf("%d", offset))
	params.Set("limit", fmt.Sprintf("%d", folderContentsLimit))
	params.Set("folderid", fmt.Sprintf("%d", folderID))
	params.Set("csrf_token", csrfToken)
	return folderContentsEndpoint + "?" + params.Encode()
}

// DeviationViewURL builds the canonical view url for a bare deviation
// id.
func DeviationViewURL(id uint64) string {
	return fmt.Sprintf("%s/view/%d", BaseURL, id)
}

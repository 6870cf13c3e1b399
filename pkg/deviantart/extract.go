package deviantart

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Marker patterns for the embedded state blobs. The main site assigns an
// escaped JSON string literal through JSON.parse; sta.sh assigns a bare
// object literal.
var (
	initialStateRegex  = regexp.MustCompile(`window\.__INITIAL_STATE__ = JSON\.parse\("(.*)"\);`)
	stashPageDataRegex = regexp.MustCompile(`deviantART\.pageData=(.*);`)
)

// ExtractPageState locates the __INITIAL_STATE__ blob in raw page HTML
// and decodes it. It is a pure function of its input: no I/O, and
// failures are terminal for the page (a changed layout will not decode
// on retry).
func ExtractPageState(html string) (*PageState, error) {
	literal, ok := findStateLiteral(html, initialStateRegex)
	if !ok {
		return nil, ErrMissingInitialState
	}

	var page PageState
	if err := json.Unmarshal([]byte(unescapeStateLiteral(literal)), &page); err != nil {
		return nil, &StateDecodeError{Err: err}
	}
	return &page, nil
}

// ExtractStashState locates the sta.sh pageData blob and decodes it.
// The stash form is an unescaped object literal, so no unescaping pass
// is applied.
func ExtractStashState(html string) (*StashState, error) {
	literal, ok := findStateLiteral(html, stashPageDataRegex)
	if !ok {
		return nil, ErrMissingPageData
	}

	var stash StashState
	if err := json.Unmarshal([]byte(literal), &stash); err != nil {
		return nil, &StateDecodeError{Err: err}
	}
	return &stash, nil
}

// findStateLiteral captures the state literal behind the given marker.
// Pages run to several megabytes, so the scan is narrowed to script
// elements first; a raw scan of the whole input is the fallback when the
// document does not parse as HTML.
func findStateLiteral(html string, marker *regexp.Regexp) (string, bool) {
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		var literal string
		var found bool
		doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
			if m := marker.FindStringSubmatch(script.Text()); m != nil {
				literal = m[1]
				found = true
				return false
			}
			return true
		})
		if found {
			return literal, true
		}
	}

	if m := marker.FindStringSubmatch(html); m != nil {
		return m[1], true
	}
	return "", false
}

// unescapeStateLiteral undoes the minimal backslash escaping applied to
// the JSON.parse string literal. The replacement order is significant:
// escaped quotes are restored before escaped backslashes so that a
// literal backslash is not unescaped twice.
func unescapeStateLiteral(literal string) string {
	literal = strings.ReplaceAll(literal, `\"`, `"`)
	literal = strings.ReplaceAll(literal, `\'`, `'`)
	literal = strings.ReplaceAll(literal, `\\`, `\`)
	return literal
}

package deviantart

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no extra context. Callers
// match them with errors.Is.
var (
	// ErrMissingInitialState means the __INITIAL_STATE__ marker was not
	// found in the page. The layout changed or this is not a state-bearing
	// page (a deleted deviation, for example). Not retryable.
	ErrMissingInitialState = errors.New("missing initial state")

	// ErrMissingPageData means the sta.sh pageData marker was not found.
	ErrMissingPageData = errors.New("missing pageData variable")

	// ErrSignInFailed is returned when the site rejects a sign-in attempt.
	// The upstream gives no structured reason, so neither do we.
	ErrSignInFailed = errors.New("sign in failed")

	// ErrMissingStreams means a page expected to carry a streams section
	// had none at all.
	ErrMissingStreams = errors.New("missing streams")

	// ErrMissingBrowsePageStream means the streams section exists but the
	// browse page stream is absent. Kept distinct from ErrMissingStreams
	// so callers can tell a layout change from an empty result page.
	ErrMissingBrowsePageStream = errors.New("missing browse page stream")

	// ErrMissingFolderStream means a folder page had no offset-paged
	// deviation stream under its synthetic stream key.
	ErrMissingFolderStream = errors.New("missing folder deviations stream")

	// ErrNoCurrentPage is returned by cursor accessors before the first
	// successful NextPage call.
	ErrNoCurrentPage = errors.New("no current page")

	// ErrFolderWalkTruncated means a folder listing kept reporting more
	// results past the walker's fetch cap.
	ErrFolderWalkTruncated = errors.New("folder listing exceeded fetch cap")

	// ErrMediaProtected means the deviation's secondary media is marked
	// protected and token based urls must not be constructed for it.
	ErrMediaProtected = errors.New("media is protected")
)

// Fullview url resolution errors. Each rejection is distinct so callers
// can present an actionable diagnostic instead of "parse failed".
var (
	ErrMissingBaseURI            = errors.New("missing base uri")
	ErrMissingMediaType          = errors.New("missing fullview media type")
	ErrMissingPathPart           = errors.New("missing path part")
	ErrMissingPrettyName         = errors.New("missing pretty name")
	ErrMissingPrettyNameTemplate = errors.New("missing pretty name template")
	ErrInvalidOptionFormat       = errors.New("invalid fullview option format")
	ErrNotJPG                    = errors.New("the fullview url is not for a jpg")
)

// MissingFieldError reports a required field absent from an otherwise
// valid page state, named so callers can log or branch on it.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q", e.Name)
}

// MissingDeviationError reports a stream item id with no matching entry
// in the page's deviation entity map.
type MissingDeviationError struct {
	ID uint64
}

func (e *MissingDeviationError) Error() string {
	return fmt.Sprintf("missing deviation %d", e.ID)
}

// StateDecodeError wraps the JSON diagnostic produced while decoding an
// extracted state blob.
type StateDecodeError struct {
	Err error
}

func (e *StateDecodeError) Error() string {
	return fmt.Sprintf("invalid page state: %v", e.Err)
}

func (e *StateDecodeError) Unwrap() error {
	return e.Err
}

// InvalidPathPartError reports a fullview path segment whose value did
// not match the expected set. Both sides are preserved.
type InvalidPathPartError struct {
	Actual   string
	Expected string
}

func (e *InvalidPathPartError) Error() string {
	return fmt.Sprintf("expected %s, found %q", e.Expected, e.Actual)
}

// UnexpectedPathPartError reports a trailing fullview path segment past
// the four the template format defines.
type UnexpectedPathPartError struct {
	PathPart string
}

func (e *UnexpectedPathPartError) Error() string {
	return fmt.Sprintf("unexpected path part %q", e.PathPart)
}

// InvalidOptionError reports an unparseable or unknown entry in the
// fullview option list.
type InvalidOptionError struct {
	Option string
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("invalid fullview option %q", e.Option)
}

// DuplicateOptionError reports an option that appeared twice in the
// fullview option list.
type DuplicateOptionError struct {
	Option string
}

func (e *DuplicateOptionError) Error() string {
	return fmt.Sprintf("duplicate fullview option %q", e.Option)
}

// HTTPError reports a non-success status from the site.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

package deviantart

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// prettyNameTemplate is the placeholder the site leaves in fullview
// filename segments.
const prettyNameTemplate = "<prettyName>"

// Media is the metadata blob needed to construct image urls for a
// deviation. Tokens are position sensitive: index 0 signs preview-grade
// urls, index 1 signs the full download.
type Media struct {
	BaseURI    string      `json:"baseUri,omitempty"`
	Token      []string    `json:"token,omitempty"`
	Types      []MediaType `json:"types"`
	PrettyName string      `json:"prettyName,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (m *Media) UnmarshalJSON(data []byte) error {
	type media Media
	var aux media
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*m = Media(aux)
	return nil
}

// MediaType is one rendition of a Media: a kind tag, dimensions, and
// either a content path template used against the base uri or a direct
// url in B.
type MediaType struct {
	Content string `json:"c,omitempty"`
	Height  uint64 `json:"h,omitempty"`
	Kind    string `json:"t"`
	Width   uint64 `json:"w,omitempty"`
	B       string `json:"b,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (t *MediaType) UnmarshalJSON(data []byte) error {
	type mediaType MediaType
	var aux mediaType
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*t = MediaType(aux)
	return nil
}

// IsFullview reports whether this is the fullview rendition.
func (t *MediaType) IsFullview() bool { return t.Kind == "fullview" }

// IsGif reports whether this is the gif rendition.
func (t *MediaType) IsGif() bool { return t.Kind == "gif" }

// IsVideo reports whether this is a video rendition.
func (t *MediaType) IsVideo() bool { return t.Kind == "video" }

// FullviewType returns the fullview rendition, or nil. Only one is
// expected per Media.
func (m *Media) FullviewType() *MediaType {
	for i := range m.Types {
		if m.Types[i].IsFullview() {
			return &m.Types[i]
		}
	}
	return nil
}

// GifType returns the gif rendition, or nil.
func (m *Media) GifType() *MediaType {
	for i := range m.Types {
		if m.Types[i].IsGif() {
			return &m.Types[i]
		}
	}
	return nil
}

// BestVideoType returns the widest video rendition, or nil. On a width
// tie the first entry in input order wins, which keeps the choice
// deterministic.
func (m *Media) BestVideoType() *MediaType {
	var best *MediaType
	for i := range m.Types {
		if !m.Types[i].IsVideo() {
			continue
		}
		if best == nil || m.Types[i].Width > best.Width {
			best = &m.Types[i]
		}
	}
	return best
}

// FullviewOptions adjusts fullview url resolution. Quality and Strip
// override the template's values when set; width and height always come
// from the template. PNG swaps the filename extension.
type FullviewOptions struct {
	Quality *uint8
	Strip   *bool
	PNG     bool
}

// FullviewURL resolves the size-limited preview url for this Media.
//
// The content template has the shape
//
//	/v1/{fit,fill}/w_1280,h_1024,q_80,strp/<prettyName>-fullview.jpg
//
// and is re-emitted segment by segment with the pretty name substituted.
// A Media whose fullview rendition has no content template resolves to
// the bare base uri. The first token is appended as a query parameter
// when present; so far a token is only ever absent alongside a missing
// content template, but "always attach when available" is a heuristic,
// not a verified upstream rule.
func (m *Media) FullviewURL(opts FullviewOptions) (string, error) {
	if m.BaseURI == "" {
		return "", ErrMissingBaseURI
	}
	resolved, err := url.Parse(m.BaseURI)
	if err != nil {
		return "", fmt.Errorf("invalid base uri: %w", err)
	}

	fullview := m.FullviewType()
	if fullview == nil {
		return "", ErrMissingMediaType
	}

	if fullview.Content != "" {
		if m.PrettyName == "" {
			return "", ErrMissingPrettyName
		}
		segments, err := buildFullviewPath(fullview.Content, m.PrettyName, opts)
		if err != nil {
			return "", err
		}
		resolved.Path = strings.TrimRight(resolved.Path, "/") + "/" + strings.Join(segments, "/")
	}

	if len(m.Token) > 0 {
		query := resolved.Query()
		query.Set("token", m.Token[0])
		resolved.RawQuery = query.Encode()
	}

	return resolved.String(), nil
}

// buildFullviewPath parses a fullview content template into its four
// path segments and re-emits them with overrides applied.
func buildFullviewPath(content, prettyName string, opts FullviewOptions) ([]string, error) {
	var parts []string
	for _, part := range strings.Split(content, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}

	segments := make([]string, 0, 4)

	// Segment 1: the literal version tag.
	if len(parts) < 1 {
		return nil, ErrMissingPathPart
	}
	if parts[0] != "v1" {
		return nil, &InvalidPathPartError{Actual: parts[0], Expected: `"v1"`}
	}
	segments = append(segments, parts[0])

	// Segment 2: the scaling mode.
	if len(parts) < 2 {
		return nil, ErrMissingPathPart
	}
	if parts[1] != "fit" && parts[1] != "fill" {
		return nil, &InvalidPathPartError{Actual: parts[1], Expected: `"fit" or "fill"`}
	}
	segments = append(segments, parts[1])

	// Segment 3: the comma-separated option list.
	if len(parts) < 3 {
		return nil, ErrMissingPathPart
	}
	optionSegment, err := rebuildFullviewOptions(parts[2], opts)
	if err != nil {
		return nil, err
	}
	segments = append(segments, optionSegment)

	// Segment 4: the filename with the pretty name placeholder.
	if len(parts) < 4 {
		return nil, ErrMissingPathPart
	}
	if !strings.Contains(parts[3], prettyNameTemplate) {
		return nil, ErrMissingPrettyNameTemplate
	}
	filename := strings.ReplaceAll(parts[3], prettyNameTemplate, prettyName)
	if opts.PNG {
		stem, ok := strings.CutSuffix(filename, ".jpg")
		if !ok {
			return nil, ErrNotJPG
		}
		filename = stem + ".png"
	}
	segments = append(segments, filename)

	if len(parts) > 4 {
		return nil, &UnexpectedPathPartError{PathPart: parts[4]}
	}

	return segments, nil
}

// rebuildFullviewOptions parses a "w_1280,h_1024,q_80,strp" option list
// and re-emits it. Width and height pass through untouched; quality and
// the strip flag yield to the caller's overrides.
func rebuildFullviewOptions(optionList string, opts FullviewOptions) (string, error) {
	var width, height *uint32
	var quality *uint8
	strip := false

	for _, option := range strings.Split(optionList, ",") {
		if option == "strp" {
			strip = true
			continue
		}

		name, value, found := strings.Cut(option, "_")
		if !found {
			return "", ErrInvalidOptionFormat
		}
		switch name {
		case "w":
			if width != nil {
				return "", &DuplicateOptionError{Option: name}
			}
			parsed, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return "", &InvalidOptionError{Option: name}
			}
			v := uint32(parsed)
			width = &v
		case "h":
			if height != nil {
				return "", &DuplicateOptionError{Option: name}
			}
			parsed, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return "", &InvalidOptionError{Option: name}
			}
			v := uint32(parsed)
			height = &v
		case "q":
			if quality != nil {
				return "", &DuplicateOptionError{Option: name}
			}
			parsed, err := strconv.ParseUint(value, 10, 8)
			if err != nil {
				return "", &InvalidOptionError{Option: name}
			}
			v := uint8(parsed)
			quality = &v
		default:
			return "", &InvalidOptionError{Option: name}
		}
	}

	if opts.Quality != nil {
		quality = opts.Quality
	}
	if opts.Strip != nil {
		strip = *opts.Strip
	}

	var rebuilt []string
	if width != nil {
		rebuilt = append(rebuilt, fmt.Sprintf("w_%d", *width))
	}
	if height != nil {
		rebuilt = append(rebuilt, fmt.Sprintf("h_%d", *height))
	}
	if quality != nil {
		rebuilt = append(rebuilt, fmt.Sprintf("q_%d", *quality))
	}
	if strip {
		rebuilt = append(rebuilt, "strp")
	}
	return strings.Join(rebuilt, ","), nil
}

// appendToken appends a signing token to a url as a query parameter.
func appendToken(rawURL, token string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), true
}

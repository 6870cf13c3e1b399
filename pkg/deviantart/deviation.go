package deviantart

import (
	"encoding/json"
	"net/url"
	"path"
)

// Deviation kind tags. The set is open; anything else is passed through
// untouched.
const (
	KindImage      = "image"
	KindLiterature = "literature"
	KindFilm       = "film"
)

// Deviation is a single posted work.
type Deviation struct {
	BlockReasons []json.RawMessage `json:"blockReasons,omitempty"`
	DeviationID  uint64            `json:"deviationId"`
	Kind         string            `json:"type"`
	URL          string            `json:"url"`
	Media        Media             `json:"media"`
	Title        string            `json:"title"`
	TextContent  *TextContent      `json:"textContent,omitempty"`
	Downloadable bool              `json:"isDownloadable"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (d *Deviation) UnmarshalJSON(data []byte) error {
	type deviation Deviation
	var aux deviation
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*d = Deviation(aux)
	return nil
}

// IsImage reports whether this deviation is an image.
func (d *Deviation) IsImage() bool { return d.Kind == KindImage }

// IsLiterature reports whether this deviation is a literature piece.
func (d *Deviation) IsLiterature() bool { return d.Kind == KindLiterature }

// IsFilm reports whether this deviation is a video.
func (d *Deviation) IsFilm() bool { return d.Kind == KindFilm }

// PreviewURL builds the preview-grade media url: base uri signed with
// the first token.
func (d *Deviation) PreviewURL() (string, bool) {
	if d.Media.BaseURI == "" || len(d.Media.Token) < 1 {
		return "", false
	}
	return appendToken(d.Media.BaseURI, d.Media.Token[0])
}

// DownloadURL builds the full-resolution download url: base uri signed
// with the second token. The site withholds that token for posts that
// are not downloadable or are protected, in which case there is no url.
func (d *Deviation) DownloadURL() (string, bool) {
	if d.Media.BaseURI == "" || len(d.Media.Token) < 2 {
		return "", false
	}
	return appendToken(d.Media.BaseURI, d.Media.Token[1])
}

// GifURL builds the url of the gif rendition signed with the first
// token.
func (d *Deviation) GifURL() (string, bool) {
	gif := d.Media.GifType()
	if gif == nil || gif.B == "" || len(d.Media.Token) < 1 {
		return "", false
	}
	return appendToken(gif.B, d.Media.Token[0])
}

// BestVideoURL returns the widest video rendition's url. Video urls are
// pre-signed; no token is appended.
func (d *Deviation) BestVideoURL() (string, bool) {
	video := d.Media.BestVideoType()
	if video == nil || video.B == "" {
		return "", false
	}
	return video.B, true
}

// ImageDownloadURL returns the most fitting url to download an image:
// the download url when granted, else the gif url. Literature and film
// never resolve through here. The extended record usually holds better
// data, so prefer that when available.
func (d *Deviation) ImageDownloadURL() (string, bool) {
	if u, ok := d.DownloadURL(); ok {
		return u, true
	}
	if u, ok := d.GifURL(); ok {
		return u, true
	}
	return "", false
}

// FullviewURL resolves the size-limited preview rendition.
func (d *Deviation) FullviewURL(opts FullviewOptions) (string, error) {
	return d.Media.FullviewURL(opts)
}

// Extension guesses the original file extension: images from the gif
// url or base uri, film from the best video url, literature has none.
func (d *Deviation) Extension() (string, bool) {
	switch {
	case d.IsImage():
		source := d.Media.BaseURI
		if gif := d.Media.GifType(); gif != nil && gif.B != "" {
			source = gif.B
		}
		return urlExtension(source)
	case d.IsFilm():
		video := d.Media.BestVideoType()
		if video == nil || video.B == "" {
			return "", false
		}
		return urlExtension(video.B)
	default:
		return "", false
	}
}

// urlExtension extracts the bare file extension from a url path.
func urlExtension(rawURL string) (string, bool) {
	if rawURL == "" {
		return "", false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	ext := path.Ext(parsed.Path)
	if len(ext) < 2 {
		return "", false
	}
	return ext[1:], true
}

// TextContent carries the body of a literature deviation.
type TextContent struct {
	Excerpt string `json:"excerpt"`
	HTML    HTML   `json:"html"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (t *TextContent) UnmarshalJSON(data []byte) error {
	type textContent TextContent
	var aux textContent
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*t = TextContent(aux)
	return nil
}

// HTML is the markup container inside literature text content. The
// markup field is itself a JSON document serialized into a string.
type HTML struct {
	Features string `json:"features"`
	Markup   string `json:"markup,omitempty"`
	Kind     string `json:"type"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (h *HTML) UnmarshalJSON(data []byte) error {
	type html HTML
	var aux html
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*h = HTML(aux)
	return nil
}

// ParseMarkup decodes the embedded markup document. Absent markup
// returns (nil, nil).
func (h *HTML) ParseMarkup() (*Markup, error) {
	if h.Markup == "" {
		return nil, nil
	}
	var markup Markup
	if err := json.Unmarshal([]byte(h.Markup), &markup); err != nil {
		return nil, err
	}
	return &markup, nil
}

// Markup is the decoded literature markup document.
type Markup struct {
	Version  uint32         `json:"version"`
	Document MarkupDocument `json:"document"`
}

// MarkupDocument is the root node of a markup document.
type MarkupDocument struct {
	Content []MarkupNode `json:"content"`
	Kind    string       `json:"type"`
}

// MarkupNode is a block level markup node. Attrs holds element
// attributes and any associated data only relevant to the node kind.
type MarkupNode struct {
	Kind    string                     `json:"type"`
	Attrs   map[string]json.RawMessage `json:"attrs,omitempty"`
	Content []MarkupInline             `json:"content,omitempty"`
}

// MarkupInline is an inline markup node. Text is only set when the kind
// is "text".
type MarkupInline struct {
	Kind string `json:"type"`
	Text string `json:"text,omitempty"`
}

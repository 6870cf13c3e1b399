package deviantart

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DeviationExtended is the supplementary per-deviation record keyed by
// the same id as the deviation itself.
type DeviationExtended struct {
	// Download is the resolved download descriptor, when the site
	// granted one.
	Download *Download `json:"download,omitempty"`

	// Description is the HTML description.
	Description string `json:"description,omitempty"`

	// AdditionalMedia lists the secondary images of a multi-image post.
	AdditionalMedia []AdditionalMedia `json:"additionalMedia,omitempty"`

	// DAProtected gates secondary media: when set, token based urls must
	// not be constructed for it.
	DAProtected bool `json:"isDaProtected,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (e *DeviationExtended) UnmarshalJSON(data []byte) error {
	type deviationExtended DeviationExtended
	var aux deviationExtended
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*e = DeviationExtended(aux)
	return nil
}

// DescriptionText strips the HTML description down to plain text.
func (e *DeviationExtended) DescriptionText() (string, error) {
	if e.Description == "" {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(e.Description))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Text()), nil
}

// AdditionalMediaIndex maps a 1-based display number onto an index into
// AdditionalMedia. Display number 1 is the post's primary image, which
// lives on the deviation itself, so the secondary list starts at display
// number 2. The upstream multi-image contract is undocumented; keeping
// the mapping explicit here keeps the off-by-one in one tested place.
func AdditionalMediaIndex(displayNumber int) (int, bool) {
	if displayNumber < 2 {
		return 0, false
	}
	return displayNumber - 2, true
}

// AdditionalMediaForDisplay returns the secondary media shown at the
// given 1-based display number, or nil.
func (e *DeviationExtended) AdditionalMediaForDisplay(displayNumber int) *AdditionalMedia {
	index, ok := AdditionalMediaIndex(displayNumber)
	if !ok || index >= len(e.AdditionalMedia) {
		return nil
	}
	return &e.AdditionalMedia[index]
}

// SecondaryMediaURL builds the token signed url for one secondary
// image. Protected posts refuse outright; callers that accept a lower
// quality rendition can fall back to the media's FullviewURL.
func (e *DeviationExtended) SecondaryMediaURL(index int) (string, error) {
	if index < 0 || index >= len(e.AdditionalMedia) {
		return "", &MissingFieldError{Name: "additionalMedia"}
	}
	if e.DAProtected {
		return "", ErrMediaProtected
	}

	media := &e.AdditionalMedia[index].Media
	if media.BaseURI == "" {
		return "", ErrMissingBaseURI
	}
	if len(media.Token) == 0 {
		return media.BaseURI, nil
	}
	signed, ok := appendToken(media.BaseURI, media.Token[0])
	if !ok {
		return "", ErrMissingBaseURI
	}
	return signed, nil
}

// AdditionalMedia is one secondary image or video of a multi-image
// post.
type AdditionalMedia struct {
	Media Media `json:"media"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (a *AdditionalMedia) UnmarshalJSON(data []byte) error {
	type additionalMedia AdditionalMedia
	var aux additionalMedia
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*a = AdditionalMedia(aux)
	return nil
}

// Download is a resolved download descriptor from the extended record.
type Download struct {
	Filesize uint64 `json:"filesize"`
	Height   uint32 `json:"height"`
	Width    uint32 `json:"width"`
	Kind     string `json:"type"`
	URL      string `json:"url"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (d *Download) UnmarshalJSON(data []byte) error {
	type download Download
	var aux download
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*d = Download(aux)
	return nil
}

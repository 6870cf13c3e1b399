package deviantart

import (
	"context"
	"encoding/json"
	"net/url"
)

// oembedEndpoint serves deviation metadata for arbitrary page urls.
const oembedEndpoint = "https://backend.deviantart.com/oembed"

// OEmbed is the oEmbed record for a deviation page.
type OEmbed struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Title        string `json:"title"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (o *OEmbed) UnmarshalJSON(data []byte) error {
	type oEmbed OEmbed
	var aux oEmbed
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*o = OEmbed(aux)
	return nil
}

// GetOEmbed fetches the oEmbed record for a deviation page url.
func (c *Client) GetOEmbed(ctx context.Context, pageURL string) (*OEmbed, error) {
	params := url.Values{}
	params.Set("url", pageURL)

	body, err := c.get(ctx, oembedEndpoint+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var oembed OEmbed
	if err := json.Unmarshal([]byte(body), &oembed); err != nil {
		return nil, &StateDecodeError{Err: err}
	}
	return &oembed, nil
}

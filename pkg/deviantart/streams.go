package deviantart

import "encoding/json"

// streamTypeWithOffset tags the one stream shape this package decodes
// strictly: offset-based pagination over a fixed item list.
const streamTypeWithOffset = "WITH_OFFSET"

// Streams is the page's named stream map. The browse page stream has a
// well-known key and a typed shape; every other entry stays opaque until
// a caller narrows it by name.
type Streams struct {
	// BrowsePage is where search results appear.
	BrowsePage *BrowsePageStream `json:"@@BROWSE_PAGE_STREAM,omitempty"`

	// Extra holds the remaining named streams, undecoded.
	Extra map[string]json.RawMessage `json:"-"`
}

func (s *Streams) UnmarshalJSON(data []byte) error {
	type streams Streams
	var aux streams
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*s = Streams(aux)
	return nil
}

// WithOffset narrows the named stream to the offset-paged variant. Any
// other variant at that key, or an undecodable entry, reads as absent
// rather than erroring: most of the stream map is intentionally opaque.
func (s *Streams) WithOffset(name string) *WithOffsetStream {
	raw, ok := s.Extra[name]
	if !ok {
		return nil
	}

	var head struct {
		StreamType string `json:"streamType"`
	}
	if err := json.Unmarshal(raw, &head); err != nil || head.StreamType != streamTypeWithOffset {
		return nil
	}

	var stream WithOffsetStream
	if err := json.Unmarshal(raw, &stream); err != nil {
		return nil
	}
	return &stream
}

// BrowsePageStream is the search result stream: an opaque continuation
// cursor plus the item ids resolvable against the page's entity map.
type BrowsePageStream struct {
	Cursor        string       `json:"cursor"`
	HasLess       bool         `json:"hasLess"`
	HasMore       bool         `json:"hasMore"`
	Items         []ItemID     `json:"items"`
	ItemsPerFetch uint64       `json:"itemsPerFetch"`
	StreamParams  StreamParams `json:"streamParams"`
	StreamType    string       `json:"streamType"`
	StreamID      string       `json:"streamId"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (b *BrowsePageStream) UnmarshalJSON(data []byte) error {
	type browsePageStream BrowsePageStream
	var aux browsePageStream
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*b = BrowsePageStream(aux)
	return nil
}

// StreamParams describes how the site's own client would fetch the next
// chunk of a stream.
type StreamParams struct {
	RequestParams   map[string]string `json:"requestParams,omitempty"`
	ItemType        string            `json:"itemType,omitempty"`
	RequestEndpoint string            `json:"requestEndpoint,omitempty"`
	InitialOffset   uint64            `json:"initialOffset,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (p *StreamParams) UnmarshalJSON(data []byte) error {
	type streamParams StreamParams
	var aux streamParams
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*p = StreamParams(aux)
	return nil
}

// WithOffsetStream is a folder's deviation listing: a fixed item list
// paged by numeric offset instead of a cursor.
type WithOffsetStream struct {
	StreamType string   `json:"streamType"`
	Items      []ItemID `json:"items"`
	HasLess    bool     `json:"hasLess"`
	HasMore    bool     `json:"hasMore"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (w *WithOffsetStream) UnmarshalJSON(data []byte) error {
	type withOffsetStream WithOffsetStream
	var aux withOffsetStream
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*w = WithOffsetStream(aux)
	return nil
}

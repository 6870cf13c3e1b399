package deviantart

import (
	"encoding/json"
	"sort"
)

// StashState is the decoded pageData blob from a sta.sh page. Sta.sh
// predates the __INITIAL_STATE__ layout and keeps its own flat shape.
type StashState struct {
	CSRF            string `json:"csrf"`
	DeviationID     uint64 `json:"deviationid"`
	Film            *Film  `json:"film,omitempty"`
	DeviationWidth  uint64 `json:"deviation_width,omitempty"`
	DeviationHeight uint64 `json:"deviation_height,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (s *StashState) UnmarshalJSON(data []byte) error {
	type stashState StashState
	var aux stashState
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*s = StashState(aux)
	return nil
}

// Film is the video data on a sta.sh page, present only for videos.
type Film struct {
	Sizes map[string]FilmSize `json:"sizes"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (f *Film) UnmarshalJSON(data []byte) error {
	type film Film
	var aux film
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*f = Film(aux)
	return nil
}

// BestSize returns the rendition with the largest pixel area. Sizes are
// visited in sorted key order so ties break deterministically.
func (f *Film) BestSize() *FilmSize {
	names := make([]string, 0, len(f.Sizes))
	for name := range f.Sizes {
		names = append(names, name)
	}
	sort.Strings(names)

	var best *FilmSize
	var bestArea uint64
	for _, name := range names {
		size := f.Sizes[name]
		area := uint64(size.Width) * uint64(size.Height)
		if best == nil || area > bestArea {
			best = &size
			bestArea = area
		}
	}
	return best
}

// FilmSize is one sta.sh video rendition.
type FilmSize struct {
	Height uint32 `json:"height"`
	Width  uint32 `json:"width"`
	Src    string `json:"src"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (s *FilmSize) UnmarshalJSON(data []byte) error {
	type filmSize FilmSize
	var aux filmSize
	extra, err := decodeWithExtra(data, &aux)
	if err != nil {
		return err
	}
	aux.Extra = extra
	*s = FilmSize(aux)
	return nil
}

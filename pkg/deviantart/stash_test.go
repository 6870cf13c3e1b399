package deviantart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilmBestSize(t *testing.T) {
	film := Film{Sizes: map[string]FilmSize{
		"small": {Width: 640, Height: 360, Src: "small.mp4"},
		"large": {Width: 1920, Height: 1080, Src: "large.mp4"},
	}}

	best := film.BestSize()
	require.NotNil(t, best)
	assert.Equal(t, "large.mp4", best.Src)
}

func TestFilmBestSizeTie(t *testing.T) {
	// Equal areas resolve by sorted name, so the pick is stable across
	// runs despite map iteration order.
	film := Film{Sizes: map[string]FilmSize{
		"b": {Width: 100, Height: 100, Src: "b.mp4"},
		"a": {Width: 100, Height: 100, Src: "a.mp4"},
	}}

	best := film.BestSize()
	require.NotNil(t, best)
	assert.Equal(t, "a.mp4", best.Src)
}

func TestFilmBestSizeEmpty(t *testing.T) {
	film := Film{}
	assert.Nil(t, film.BestSize())
}

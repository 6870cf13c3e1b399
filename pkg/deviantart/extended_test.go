package deviantart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptionText(t *testing.T) {
	extended := DeviationExtended{Description: "<p>hello <b>world</b></p>"}

	text, err := extended.DescriptionText()
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestDescriptionTextEmpty(t *testing.T) {
	var extended DeviationExtended
	text, err := extended.DescriptionText()
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestAdditionalMediaIndex(t *testing.T) {
	tests := []struct {
		displayNumber int
		wantIndex     int
		wantOK        bool
	}{
		{displayNumber: 0, wantOK: false},
		{displayNumber: 1, wantOK: false},
		{displayNumber: 2, wantIndex: 0, wantOK: true},
		{displayNumber: 5, wantIndex: 3, wantOK: true},
	}

	for _, tt := range tests {
		index, ok := AdditionalMediaIndex(tt.displayNumber)
		assert.Equal(t, tt.wantOK, ok, "display number %d", tt.displayNumber)
		if tt.wantOK {
			assert.Equal(t, tt.wantIndex, index, "display number %d", tt.displayNumber)
		}
	}
}

func TestAdditionalMediaForDisplay(t *testing.T) {
	extended := DeviationExtended{
		AdditionalMedia: []AdditionalMedia{
			{Media: Media{BaseURI: "https://example.com/second.jpg"}},
			{Media: Media{BaseURI: "https://example.com/third.jpg"}},
		},
	}

	second := extended.AdditionalMediaForDisplay(2)
	require.NotNil(t, second)
	assert.Equal(t, "https://example.com/second.jpg", second.Media.BaseURI)

	assert.Nil(t, extended.AdditionalMediaForDisplay(1))
	assert.Nil(t, extended.AdditionalMediaForDisplay(4))
}

func TestSecondaryMediaURL(t *testing.T) {
	extended := DeviationExtended{
		AdditionalMedia: []AdditionalMedia{
			{Media: Media{BaseURI: "https://example.com/second.jpg", Token: []string{"tok"}}},
		},
	}

	resolved, err := extended.SecondaryMediaURL(0)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/second.jpg?token=tok", resolved)
}

func TestSecondaryMediaURLProtected(t *testing.T) {
	extended := DeviationExtended{
		DAProtected: true,
		AdditionalMedia: []AdditionalMedia{
			{Media: Media{BaseURI: "https://example.com/second.jpg", Token: []string{"tok"}}},
		},
	}

	_, err := extended.SecondaryMediaURL(0)
	assert.ErrorIs(t, err, ErrMediaProtected)
}

func TestSecondaryMediaURLOutOfRange(t *testing.T) {
	var extended DeviationExtended

	_, err := extended.SecondaryMediaURL(0)
	var fieldErr *MissingFieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "additionalMedia", fieldErr.Name)
}

func TestSecondaryMediaURLNoToken(t *testing.T) {
	extended := DeviationExtended{
		AdditionalMedia: []AdditionalMedia{
			{Media: Media{BaseURI: "https://example.com/second.jpg"}},
		},
	}

	resolved, err := extended.SecondaryMediaURL(0)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/second.jpg", resolved)
}

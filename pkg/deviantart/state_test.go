package deviantart

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageStatePreservesUnknownKeys(t *testing.T) {
	var state PageState
	err := json.Unmarshal([]byte(`{
		"@@publicSession": {"isLoggedIn": false, "userId": 7},
		"@@futureSection": {"something": "new"},
		"legacyFlag": true
	}`), &state)
	require.NoError(t, err)

	require.Contains(t, state.Extra, "@@futureSection")
	require.Contains(t, state.Extra, "legacyFlag")
	assert.JSONEq(t, `{"something": "new"}`, string(state.Extra["@@futureSection"]))

	// Unknown keys inside modeled sections land in that section's Extra.
	require.Contains(t, state.PublicSession.Extra, "userId")
	assert.Equal(t, "7", string(state.PublicSession.Extra["userId"]))
}

func TestPageStateRoundTripKeepsExtras(t *testing.T) {
	original := `{"@@publicSession":{"isLoggedIn":true},"@@unknown":{"a":1}}`

	var state PageState
	require.NoError(t, json.Unmarshal([]byte(original), &state))

	assert.True(t, state.IsLoggedIn())
	assert.JSONEq(t, `{"a":1}`, string(state.Extra["@@unknown"]))
}

func TestItemID(t *testing.T) {
	t.Run("number", func(t *testing.T) {
		var id ItemID
		require.NoError(t, json.Unmarshal([]byte(`119577071`), &id))

		value, ok := id.Uint64()
		assert.True(t, ok)
		assert.Equal(t, uint64(119577071), value)
		assert.Equal(t, "119577071", id.Key())
	})

	t.Run("decimal string", func(t *testing.T) {
		var id ItemID
		require.NoError(t, json.Unmarshal([]byte(`"119577071"`), &id))

		value, ok := id.Uint64()
		assert.True(t, ok)
		assert.Equal(t, uint64(119577071), value)
		assert.Equal(t, "119577071", id.Key())
	})

	t.Run("composite string", func(t *testing.T) {
		var id ItemID
		require.NoError(t, json.Unmarshal([]byte(`"tiptap-12345"`), &id))

		_, ok := id.Uint64()
		assert.False(t, ok)
		assert.Equal(t, "tiptap-12345", id.Key())
	})

	t.Run("marshal preserves form", func(t *testing.T) {
		numeric := NewItemID(42)
		data, err := json.Marshal(numeric)
		require.NoError(t, err)
		assert.Equal(t, "42", string(data))

		var fromNumber ItemID
		require.NoError(t, json.Unmarshal([]byte(`119577071`), &fromNumber))
		data, err = json.Marshal(fromNumber)
		require.NoError(t, err)
		assert.Equal(t, `119577071`, string(data))

		// A numeric id that arrived quoted stays quoted; the JSON type
		// must not change on round-trip.
		var fromString ItemID
		require.NoError(t, json.Unmarshal([]byte(`"119577071"`), &fromString))
		data, err = json.Marshal(fromString)
		require.NoError(t, err)
		assert.Equal(t, `"119577071"`, string(data))

		var str ItemID
		require.NoError(t, json.Unmarshal([]byte(`"abc-1"`), &str))
		data, err = json.Marshal(str)
		require.NoError(t, err)
		assert.Equal(t, `"abc-1"`, string(data))
	})
}

func TestTakeDeviationByID(t *testing.T) {
	state, err := ExtractPageState(statePageHTML(deviationPageJSON))
	require.NoError(t, err)

	taken := state.TakeDeviationByID(119577071)
	require.NotNil(t, taken)
	assert.Equal(t, uint64(119577071), taken.DeviationID)

	// A second take finds nothing, but the extended record is untouched.
	assert.Nil(t, state.TakeDeviationByID(119577071))
	assert.NotNil(t, state.DeviationExtendedByID(119577071))
}

func TestFolderStream(t *testing.T) {
	folderJSON := `{
		"@@publicSession": {"isLoggedIn": false},
		"gallectionSection": {"folderId": 42},
		"@@entities": {
			"deviation": {},
			"galleryFolder": {"42": {"folderId": 42, "name": "scenery", "owner": 7}},
			"user": {"7": {"userId": 7, "username": "alice"}}
		},
		"@@streams": {
			"folder-deviations-gallery-42": {
				"streamType": "WITH_OFFSET",
				"items": [101, 102, "tiptap-1", 103],
				"hasLess": false,
				"hasMore": true
			},
			"unrelated-stream": {"streamType": "WITH_CURSOR", "cursor": "x"}
		}
	}`

	var state PageState
	require.NoError(t, json.Unmarshal([]byte(folderJSON), &state))

	folderID, ok := state.FolderID()
	require.True(t, ok)
	assert.Equal(t, uint64(42), folderID)

	stream := state.FolderStream(folderID)
	require.NotNil(t, stream)
	assert.True(t, stream.HasMore)
	assert.Len(t, stream.Items, 4)

	folder := state.FolderByID(folderID)
	require.NotNil(t, folder)
	assert.Equal(t, "scenery", folder.Name)

	ownerID, ok := folder.Owner.Uint64()
	require.True(t, ok)
	user := state.UserByID(ownerID)
	require.NotNil(t, user)
	assert.Equal(t, "alice", user.Username)
}

func TestFolderStreamWrongVariant(t *testing.T) {
	var state PageState
	require.NoError(t, json.Unmarshal([]byte(`{
		"@@publicSession": {"isLoggedIn": false},
		"@@streams": {
			"folder-deviations-gallery-9": {"streamType": "WITH_CURSOR", "cursor": "c"}
		}
	}`), &state))

	// A cursor stream under the folder key is treated as absent.
	assert.Nil(t, state.FolderStream(9))
	assert.Nil(t, state.FolderStream(10))
}

func TestLoginCSRFTokenFallback(t *testing.T) {
	var topLevel PageState
	require.NoError(t, json.Unmarshal([]byte(`{
		"@@config": {"csrfToken": "from-config"},
		"@@publicSession": {"isLoggedIn": false},
		"csrfToken": "from-top"
	}`), &topLevel))
	assert.Equal(t, "from-top", topLevel.loginCSRFToken())

	var configOnly PageState
	require.NoError(t, json.Unmarshal([]byte(`{
		"@@config": {"csrfToken": "from-config"},
		"@@publicSession": {"isLoggedIn": false}
	}`), &configOnly))
	assert.Equal(t, "from-config", configOnly.loginCSRFToken())
}

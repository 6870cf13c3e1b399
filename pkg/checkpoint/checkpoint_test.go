package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointLifecycle(t *testing.T) {
	manager, err := NewManager(t.TempDir(), "red panda")
	require.NoError(t, err)

	// Nothing saved yet.
	loaded, err := manager.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.False(t, manager.Exists())

	checkpoint, err := manager.Create("red panda")
	require.NoError(t, err)
	assert.True(t, manager.Exists())

	checkpoint.RecordSeen(101, "first")
	checkpoint.RecordSeen(102, "second")
	require.NoError(t, manager.UpdateProgress(checkpoint, "cursor-1"))

	loaded, err = manager.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "red panda", loaded.Query)
	assert.Equal(t, "cursor-1", loaded.Cursor)
	assert.Equal(t, 1, loaded.PagesFetched)
	assert.Equal(t, 2, loaded.TotalSeen)
	assert.True(t, loaded.HasSeen(101))
	assert.False(t, loaded.HasSeen(999))

	require.NoError(t, manager.Delete())
	assert.False(t, manager.Exists())
}

func TestRecordSeenIdempotent(t *testing.T) {
	checkpoint := &Checkpoint{Seen: make(map[uint64]string)}

	checkpoint.RecordSeen(1, "a")
	checkpoint.RecordSeen(1, "a")
	assert.Equal(t, 1, checkpoint.TotalSeen)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "red_panda", sanitizeName("red panda"))
	assert.Equal(t, "a-b_c", sanitizeName("a-b_c"))
	assert.Equal(t, "___", sanitizeName("../"))
	assert.Equal(t, "default", sanitizeName(""))
}

func TestSeparateQueriesSeparateFiles(t *testing.T) {
	dir := t.TempDir()

	first, err := NewManager(dir, "cats")
	require.NoError(t, err)
	second, err := NewManager(dir, "dogs")
	require.NoError(t, err)

	_, err = first.Create("cats")
	require.NoError(t, err)

	assert.True(t, first.Exists())
	assert.False(t, second.Exists())
}

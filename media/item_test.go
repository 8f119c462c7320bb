package media

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryFindAndByKind(t *testing.T) {
	lib := NewLibrary()
	id1 := uuid.New()
	id2 := uuid.New()
	lib.Replace([]Item{
		{ID: id1, Kind: KindVideo, Path: "/a.mp4"},
		{ID: id2, Kind: KindAudio, Path: "/b.mp3"},
	})

	require.Equal(t, 2, lib.Len())

	got, ok := lib.Find(id1)
	require.True(t, ok)
	assert.Equal(t, "/a.mp4", got.Path)

	_, ok = lib.Find(uuid.New())
	assert.False(t, ok)

	videos := lib.ByKind(KindVideo)
	require.Len(t, videos, 1)
	assert.Equal(t, id1, videos[0].ID)
}

func TestLibrarySnapshotIsIndependentCopy(t *testing.T) {
	lib := NewLibrary()
	lib.Replace([]Item{{Path: "/a.mp4"}})
	snap := lib.Snapshot()
	snap[0].Path = "/mutated.mp4"

	again := lib.Snapshot()
	assert.Equal(t, "/a.mp4", again[0].Path)
}

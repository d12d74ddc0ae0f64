package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"video-library/repository"
)

func seededStore(t *testing.T, keys ...string) repository.ObjectStore {
	t.Helper()
	store := repository.NewLocalStore(afero.NewMemMapFs(), "/data", repository.MediaURLPrefix)
	for _, key := range keys {
		_, err := store.Put(context.Background(), key, strings.NewReader("x"), 1, "")
		require.NoError(t, err)
	}
	return store
}

func TestListVideos(t *testing.T) {
	store := seededStore(t, "abc/video.mp4", "abc/thumbnail.jpg", "orphan/metadata.json")

	var out bytes.Buffer
	require.NoError(t, listVideos(context.Background(), &out, store))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[1], "abc")
	assert.Contains(t, lines[1], "true")
	assert.NotContains(t, out.String(), "orphan")
}

func TestDeleteVideo(t *testing.T) {
	store := seededStore(t, "abc/video.mp4", "abc/thumbnail.jpg", "abc/metadata.json", "abcd/video.mp4")

	var out bytes.Buffer
	require.NoError(t, deleteVideo(context.Background(), &out, store, "abc"))
	assert.Equal(t, "deleted 3 objects of abc\n", out.String())

	left, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "abcd/video.mp4", left[0].Key)
}

func TestDeleteVideoNotFound(t *testing.T) {
	store := seededStore(t, "abc/thumbnail.jpg")

	err := deleteVideo(context.Background(), &bytes.Buffer{}, store, "abc")
	require.ErrorContains(t, err, "not found")
}

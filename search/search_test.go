package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Search {
	t.Helper()

	s, err := New()
	require.NoError(t, err)

	docs := []Document{
		{ID: "artist_1", Kind: KindArtist, Name: "Radiohead", NameExact: "radiohead", SortName: "Radiohead"},
		{ID: "artist_2", Kind: KindArtist, Name: "Portishead", NameExact: "portishead", SortName: "Portishead"},
		{ID: "album_1", Kind: KindAlbum, Name: "OK Computer", NameExact: "ok computer", SortName: "OK Computer", Artist: "Radiohead"},
		{ID: "album_2", Kind: KindAlbum, Name: "Kid A", NameExact: "kid a", SortName: "Kid A", Artist: "Radiohead"},
		{ID: "song_1", Kind: KindSong, Name: "Paranoid Android", NameExact: "paranoid android", Artist: "Radiohead", Album: "OK Computer", Genre: "Rock"},
		{ID: "song_2", Kind: KindSong, Name: "Karma Police", NameExact: "karma police", Artist: "Radiohead", Album: "OK Computer", Genre: "Rock"},
	}
	require.NoError(t, s.IndexBatch(context.Background(), docs))
	return s
}

func TestQueryRestrictsByKind(t *testing.T) {
	s := newTestIndex(t)

	ids, err := s.Query(context.Background(), "radiohead", KindArtist, 10, 0)
	require.NoError(t, err)
	assert.Contains(t, ids, "artist_1")
	assert.NotContains(t, ids, "album_1")
	assert.NotContains(t, ids, "song_1")
}

func TestQueryExactNameRanksFirst(t *testing.T) {
	s := newTestIndex(t)

	ids, err := s.Query(context.Background(), "ok computer", KindAlbum, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, ids)
	assert.Equal(t, "album_1", ids[0])
}

func TestQueryFuzzyMatch(t *testing.T) {
	s := newTestIndex(t)

	// one character off
	ids, err := s.Query(context.Background(), "radiohed", KindArtist, 10, 0)
	require.NoError(t, err)
	assert.Contains(t, ids, "artist_1")
}

func TestQueryCreditsMatchSongs(t *testing.T) {
	s := newTestIndex(t)

	ids, err := s.Query(context.Background(), "radiohead", KindSong, 10, 0)
	require.NoError(t, err)
	assert.Contains(t, ids, "song_1")
	assert.Contains(t, ids, "song_2")
}

func TestQueryEmptyTerm(t *testing.T) {
	s := newTestIndex(t)

	ids, err := s.Query(context.Background(), "   ", KindArtist, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

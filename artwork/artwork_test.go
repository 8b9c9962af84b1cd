package artwork

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/cache"
	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/imageresize"
)

// stubRepo overrides only the lookups the resolver needs.
type stubRepo struct {
	database.Repository
	artists   map[uuid.UUID]*model.Artist
	playlists map[uuid.UUID]*model.Playlist
}

func (s *stubRepo) GetArtist(ctx context.Context, id uuid.UUID) (*model.Artist, error) {
	if artist, ok := s.artists[id]; ok {
		return artist, nil
	}
	return nil, model.ErrNotFound
}

func (s *stubRepo) GetPlaylist(ctx context.Context, id uuid.UUID) (*model.Playlist, error) {
	if playlist, ok := s.playlists[id]; ok {
		return playlist, nil
	}
	return nil, model.ErrNotFound
}

func newTestResolver(t *testing.T, repo database.Repository) *Resolver {
	t.Helper()
	return New(Options{
		Repo:    repo,
		Resizer: imageresize.New(imageresize.Options{}),
		Cache:   cache.New(time.Minute),
	})
}

func TestPlaceholderForMissingImage(t *testing.T) {
	artistID := uuid.New()
	repo := &stubRepo{artists: map[uuid.UUID]*model.Artist{
		artistID: {ID: artistID, Name: "No Image"},
	}}
	r := newTestResolver(t, repo)

	art, err := r.Get(context.Background(), apikey.New(apikey.KindArtist, artistID), "")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderETag, art.ETag)
	assert.Equal(t, placeholderPNG, art.Bytes)
	assert.Equal(t, "image/png", art.MIME)
}

func TestETagVariesPerSizeBucket(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "artist.jpg")
	require.NoError(t, os.WriteFile(imagePath, []byte("not really a jpeg"), 0o644))

	artistID := uuid.New()
	repo := &stubRepo{artists: map[uuid.UUID]*model.Artist{
		artistID: {ID: artistID, Name: "With Image", ImagePath: imagePath},
	}}
	r := newTestResolver(t, repo)

	id := apikey.New(apikey.KindArtist, artistID)
	small, err := r.Get(context.Background(), id, "small")
	require.NoError(t, err)
	large, err := r.Get(context.Background(), id, "large")
	require.NoError(t, err)

	assert.NotEqual(t, PlaceholderETag, small.ETag)
	assert.NotEqual(t, small.ETag, large.ETag, "size buckets must not share an ETag")
}

func TestPlaylistArtIsAnimatedPlaceholder(t *testing.T) {
	playlistID := uuid.New()
	repo := &stubRepo{playlists: map[uuid.UUID]*model.Playlist{
		playlistID: {ID: playlistID, Name: "Mix"},
	}}
	r := newTestResolver(t, repo)

	art, err := r.Get(context.Background(), apikey.New(apikey.KindPlaylist, playlistID), "large")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderETag, art.ETag)
	assert.Equal(t, "image/gif", art.MIME)
	assert.Equal(t, placeholderGIF, art.Bytes)
}

func TestUnknownIdentityIsNotFound(t *testing.T) {
	repo := &stubRepo{}
	r := newTestResolver(t, repo)

	_, err := r.Get(context.Background(), apikey.New(apikey.KindArtist, uuid.New()), "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

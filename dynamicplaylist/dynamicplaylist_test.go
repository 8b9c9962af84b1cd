package dynamicplaylist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Huuberrt/melodee-sub000/auth"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/database/sqlite"
)

func newTestEngine(t *testing.T) (*Engine, *sqlite.SqliteRepo, string) {
	t.Helper()

	repo, err := sqlite.New(&sqlite.ConfigFile{Filename: ":memory:"})
	require.NoError(t, err)

	dir := t.TempDir()
	engine := New(Options{Repo: repo, Dir: dir})
	return engine, repo, dir
}

func writeDefinition(t *testing.T, dir string, definition Definition) {
	t.Helper()
	data, err := json.Marshal(definition)
	require.NoError(t, err)
	filename := filepath.Join(dir, definition.ID.String()+".json")
	require.NoError(t, os.WriteFile(filename, data, 0o644))
}

func seedSongs(t *testing.T, repo *sqlite.SqliteRepo, genre string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		song := &model.Song{
			ID:       uuid.New(),
			AlbumID:  uuid.New(),
			ArtistID: uuid.New(),
			Title:    fmt.Sprintf("%s song %02d", genre, i),
			Genre:    genre,
			Year:     2000 + i,
			Duration: 60 + i,
			Path:     fmt.Sprintf("/music/%s/%02d.mp3", genre, i),
		}
		require.NoError(t, repo.UpsertSong(context.Background(), song))
	}
}

func TestPrivateDefinitionInvisibleToOthers(t *testing.T) {
	engine, repo, dir := newTestEngine(t)
	seedSongs(t, repo, "rock", 3)

	definitionID := uuid.New()
	writeDefinition(t, dir, Definition{
		ID:        definitionID,
		Name:      "U1 private",
		IsEnabled: true,
		IsPublic:  false,
		ForUser:   "u1",
		Filter:    Filter{Field: "genre", Op: "eq", Value: "rock"},
	})

	u1 := auth.Identity{ID: uuid.New(), Username: "u1"}
	u2 := auth.Identity{ID: uuid.New(), Username: "u2"}

	assert.Len(t, engine.List(context.Background(), u1), 1)
	assert.Empty(t, engine.List(context.Background(), u2))

	_, err := engine.Resolve(context.Background(), u2, definitionID)
	assert.ErrorIs(t, err, ErrUnknownPlaylist)

	_, err = engine.Songs(context.Background(), u2, definitionID, 0, 10)
	assert.ErrorIs(t, err, ErrUnknownPlaylist)
}

func TestDisabledDefinitionHidden(t *testing.T) {
	engine, repo, dir := newTestEngine(t)
	seedSongs(t, repo, "rock", 1)

	writeDefinition(t, dir, Definition{
		ID:        uuid.New(),
		Name:      "disabled",
		IsEnabled: false,
		IsPublic:  true,
		Filter:    Filter{Field: "genre", Op: "eq", Value: "rock"},
	})

	assert.Empty(t, engine.List(context.Background(), auth.Identity{Username: "u1"}))
}

func TestDeterministicSongs(t *testing.T) {
	engine, repo, dir := newTestEngine(t)
	seedSongs(t, repo, "jazz", 10)
	seedSongs(t, repo, "rock", 5)

	definition := Definition{
		ID:        uuid.New(),
		Name:      "all jazz",
		IsEnabled: true,
		IsPublic:  true,
		Filter:    Filter{Field: "genre", Op: "eq", Value: "jazz"},
		OrderBy:   "year desc",
	}
	writeDefinition(t, dir, definition)

	requester := auth.Identity{ID: uuid.New(), Username: "u1"}

	first, err := engine.Songs(context.Background(), requester, definition.ID, 0, 100)
	require.NoError(t, err)
	second, err := engine.Songs(context.Background(), requester, definition.ID, 0, 100)
	require.NoError(t, err)

	require.Len(t, first, 10)
	assert.Equal(t, first, second, "unchanged catalog must materialize identically")
	// year desc ordering
	assert.Equal(t, 2009, first[0].Year)

	playlist, err := engine.Resolve(context.Background(), requester, definition.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, playlist.SongCount)
	assert.True(t, playlist.IsDynamic)
}

func TestAggregatesOnlyMatchingSet(t *testing.T) {
	engine, repo, dir := newTestEngine(t)
	seedSongs(t, repo, "jazz", 4)
	seedSongs(t, repo, "rock", 6)

	definition := Definition{
		ID:        uuid.New(),
		Name:      "jazz only",
		IsEnabled: true,
		IsPublic:  true,
		Filter:    Filter{Field: "genre", Op: "eq", Value: "jazz"},
		OrderBy:   "title",
	}
	writeDefinition(t, dir, definition)

	playlist, err := engine.Resolve(context.Background(), auth.Identity{Username: "u"}, definition.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, playlist.SongCount)
	// durations are 60..63 for the four jazz songs
	assert.Equal(t, 60+61+62+63, playlist.Duration)
}

func TestBrokenDefinitionSkippedInListing(t *testing.T) {
	engine, repo, dir := newTestEngine(t)
	seedSongs(t, repo, "rock", 2)

	// one good, one with an unknown field
	good := Definition{
		ID:        uuid.New(),
		Name:      "good",
		IsEnabled: true,
		IsPublic:  true,
		Filter:    Filter{Field: "genre", Op: "eq", Value: "rock"},
	}
	writeDefinition(t, dir, good)
	writeDefinition(t, dir, Definition{
		ID:        uuid.New(),
		Name:      "broken",
		IsEnabled: true,
		IsPublic:  true,
		Filter:    Filter{Field: "nonsense", Op: "eq", Value: 1},
	})
	// one with a whitespace-only sort expression
	writeDefinition(t, dir, Definition{
		ID:        uuid.New(),
		Name:      "blank sort",
		IsEnabled: true,
		IsPublic:  true,
		Filter:    Filter{Field: "genre", Op: "eq", Value: "rock"},
		OrderBy:   "  ",
	})
	// and one file that is not json at all
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{"), 0o644))

	playlists := engine.List(context.Background(), auth.Identity{Username: "u"})
	require.Len(t, playlists, 1)
	assert.Equal(t, "good", playlists[0].Name)
}

func TestLimitCapsSongs(t *testing.T) {
	engine, repo, dir := newTestEngine(t)
	seedSongs(t, repo, "jazz", 10)

	definition := Definition{
		ID:        uuid.New(),
		Name:      "top three",
		IsEnabled: true,
		IsPublic:  true,
		Filter:    Filter{Field: "genre", Op: "eq", Value: "jazz"},
		OrderBy:   "year",
		Limit:     3,
	}
	writeDefinition(t, dir, definition)

	songs, err := engine.Songs(context.Background(), auth.Identity{Username: "u"}, definition.ID, 0, 100)
	require.NoError(t, err)
	assert.Len(t, songs, 3)

	// header aggregates describe the capped set, not the whole match
	playlist, err := engine.Resolve(context.Background(), auth.Identity{Username: "u"}, definition.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, playlist.SongCount)
	assert.Equal(t, 60+61+62, playlist.Duration)
}

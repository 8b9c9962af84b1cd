package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

func newTestRepo(t *testing.T) *SqliteRepo {
	t.Helper()
	repo, err := New(&ConfigFile{Filename: ":memory:"})
	require.NoError(t, err)
	return repo
}

// The split read and write handles must see the same in-memory database,
// while separate opens must not.
func TestMemoryDatabasesAreIsolated(t *testing.T) {
	ctx := context.Background()
	first := newTestRepo(t)
	second := newTestRepo(t)

	require.NoError(t, first.CreateUser(ctx, &model.User{
		ID:       uuid.New(),
		Username: "solo",
	}))

	// written through the write handle, visible through the read handle
	user, err := first.GetUser(ctx, "solo")
	require.NoError(t, err)
	assert.Equal(t, "solo", user.Username)

	// but not through a sibling open
	_, err = second.GetUser(ctx, "solo")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, second.CreateUser(ctx, &model.User{
		ID:       uuid.New(),
		Username: "solo",
	}))
}

// A song's path is its catalog key. Re-upserting the same path under a new
// id replaces the old row instead of duplicating the file.
func TestUpsertSongReplacesByPath(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	firstID := uuid.New()
	require.NoError(t, repo.UpsertSong(ctx, &model.Song{
		ID: firstID, Title: "one", Path: "/music/a.mp3",
	}))
	secondID := uuid.New()
	require.NoError(t, repo.UpsertSong(ctx, &model.Song{
		ID: secondID, Title: "two", Path: "/music/a.mp3",
	}))

	_, err := repo.GetSong(ctx, firstID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	song, err := repo.GetSong(ctx, secondID)
	require.NoError(t, err)
	assert.Equal(t, "two", song.Title)

	// distinct paths coexist
	thirdID := uuid.New()
	require.NoError(t, repo.UpsertSong(ctx, &model.Song{
		ID: thirdID, Title: "three", Path: "/music/b.mp3",
	}))
	_, err = repo.GetSong(ctx, secondID)
	assert.NoError(t, err)
	_, err = repo.GetSong(ctx, thirdID)
	assert.NoError(t, err)
}

func TestSubmissionFingerprintLifecycle(t *testing.T) {
	repo := newTestRepo(t)

	assert.False(t, repo.SeenSubmission("fp"), "unseen fingerprint must not dedup")
	// nothing is marked until the play is recorded
	assert.False(t, repo.SeenSubmission("fp"))

	repo.MarkSubmission("fp")
	assert.True(t, repo.SeenSubmission("fp"))
	assert.False(t, repo.SeenSubmission("other"))
}

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/sqlite"
	"github.com/Huuberrt/melodee-sub000/search"
)

// newTestTree writes a small Artist/Album/track layout to a temp dir.
func newTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string][]byte{
		"Radiohead/OK Computer (1997)/01 - Airbag.flac":           []byte("flacdata-airbag"),
		"Radiohead/OK Computer (1997)/02 - Paranoid Android.flac": []byte("flacdata-paranoid"),
		"Radiohead/OK Computer (1997)/cover.jpg":                  []byte("jpegdata"),
		"Radiohead/Kid A (2000)/01 - Everything.flac":             []byte("flacdata-everything"),
		"Radiohead/artist.jpg":                                    []byte("jpegdata"),
		"Portishead/Dummy (1994)/01 - Mysterons.ogg":              []byte("oggdata"),
		// junk that must be ignored
		"Portishead/Dummy (1994)/notes.txt": []byte("not audio"),
		".Trash/whatever/x.mp3":             []byte("hidden"),
	}
	for name, data := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, data, 0o644))
	}
	return root
}

func newTestScanner(t *testing.T) (*Scanner, database.Repository, *search.Search) {
	t.Helper()

	repo, err := sqlite.New(&sqlite.ConfigFile{Filename: ":memory:"})
	require.NoError(t, err)
	idx, err := search.New()
	require.NoError(t, err)

	s := New(&Options{
		Folders: []Folder{{ID: 1, Name: "Music", Path: newTestTree(t)}},
		Repo:    repo,
		Index:   idx,
	})
	return s, repo, idx
}

func TestScanCatalogContents(t *testing.T) {
	s, repo, _ := newTestScanner(t)
	ctx := context.Background()

	require.NoError(t, s.Scan(ctx))

	artists, err := repo.ListArtists(ctx)
	require.NoError(t, err)
	require.Len(t, artists, 2)

	byName := map[string]int{}
	for i, a := range artists {
		byName[a.Name] = i
	}
	require.Contains(t, byName, "Radiohead")
	require.Contains(t, byName, "Portishead")

	radiohead := artists[byName["Radiohead"]]
	assert.Equal(t, 2, radiohead.AlbumCount)
	assert.NotEmpty(t, radiohead.ImagePath)

	albums, err := repo.GetArtistAlbums(ctx, radiohead.ID)
	require.NoError(t, err)
	require.Len(t, albums, 2)

	var okComputer *int
	for i := range albums {
		if albums[i].Name == "OK Computer" {
			i := i
			okComputer = &i
		}
	}
	require.NotNil(t, okComputer, "year suffix must be stripped from the album name")
	album := albums[*okComputer]
	assert.Equal(t, 1997, album.Year)
	assert.Equal(t, 2, album.SongCount)
	assert.NotEmpty(t, album.CoverPath)

	songs, err := repo.GetAlbumSongs(ctx, album.ID)
	require.NoError(t, err)
	require.Len(t, songs, 2)
	assert.Equal(t, "Airbag", songs[0].Title)
	assert.Equal(t, 1, songs[0].Track)
	assert.Equal(t, "flac", songs[0].Suffix)
	assert.Equal(t, "audio/flac", songs[0].ContentType)
	assert.Equal(t, int64(len("flacdata-airbag")), songs[0].Size)
	assert.False(t, songs[0].Created.IsZero())
}

func TestRescanDoesNotDuplicate(t *testing.T) {
	s, repo, _ := newTestScanner(t)
	ctx := context.Background()

	require.NoError(t, s.Scan(ctx))
	require.NoError(t, s.Scan(ctx))

	artists, err := repo.ListArtists(ctx)
	require.NoError(t, err)
	assert.Len(t, artists, 2)

	count, _, err := repo.CountSongs(ctx, database.SongSearch{})
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestScanFeedsSearchIndex(t *testing.T) {
	s, _, idx := newTestScanner(t)
	ctx := context.Background()

	require.NoError(t, s.Scan(ctx))

	ids, err := idx.Query(ctx, "paranoid android", search.KindSong, 10, 0)
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	id, err := apikey.Parse(ids[0])
	require.NoError(t, err)
	assert.Equal(t, apikey.KindSong, id.Kind)
}

func TestScanStatus(t *testing.T) {
	s, _, _ := newTestScanner(t)

	scanning, _ := s.Status()
	assert.False(t, scanning)

	require.NoError(t, s.Scan(context.Background()))

	scanning, count := s.Status()
	assert.False(t, scanning)
	assert.Equal(t, int64(4), count)
}

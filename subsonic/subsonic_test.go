package subsonic

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/artwork"
	"github.com/Huuberrt/melodee-sub000/auth"
	"github.com/Huuberrt/melodee-sub000/cache"
	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/database/sqlite"
	"github.com/Huuberrt/melodee-sub000/dynamicplaylist"
	"github.com/Huuberrt/melodee-sub000/imageresize"
	"github.com/Huuberrt/melodee-sub000/scanner"
	"github.com/Huuberrt/melodee-sub000/search"
)

type testEnv struct {
	repo    database.Repository
	srv     *httptest.Server
	songID  apikey.ID
	albumID apikey.ID
	dplID   apikey.ID
}

const (
	adminPassword = "adminpw"
	alicePassword = "alicepw"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := sqlite.New(&sqlite.ConfigFile{Filename: ":memory:"})
	require.NoError(t, err)

	seedUser(t, repo, "admin", adminPassword, true, true)
	seedUser(t, repo, "alice", alicePassword, false, false)

	ctx := context.Background()
	now := time.Now().UTC()

	artistID := uuid.New()
	require.NoError(t, repo.UpsertArtist(ctx, &model.Artist{
		ID: artistID, Name: "Radiohead", SortName: "radiohead", AlbumCount: 1, Created: now,
	}))

	albumID := uuid.New()
	require.NoError(t, repo.UpsertAlbum(ctx, &model.Album{
		ID: albumID, ArtistID: artistID, Artist: "Radiohead",
		Name: "OK Computer", SortName: "ok computer",
		Genre: "Rock", Year: 1997, SongCount: 2, Created: now,
	}))

	// real media files for the stream tests; songs.path is unique, so
	// every seeded song needs its own file
	mediaDir := t.TempDir()
	mediaPath := filepath.Join(mediaDir, "airbag.mp3")
	require.NoError(t, os.WriteFile(mediaPath, bytes.Repeat([]byte{0x55}, 10000), 0o644))
	mediaPath2 := filepath.Join(mediaDir, "paranoid-android.mp3")
	require.NoError(t, os.WriteFile(mediaPath2, bytes.Repeat([]byte{0x55}, 10000), 0o644))

	songID := uuid.New()
	require.NoError(t, repo.UpsertSong(ctx, &model.Song{
		ID: songID, AlbumID: albumID, ArtistID: artistID,
		Title: "Airbag", Album: "OK Computer", Artist: "Radiohead",
		Track: 1, Genre: "Rock", Year: 1997, Duration: 284,
		Path: mediaPath, Suffix: "mp3", ContentType: "audio/mpeg",
		Size: 10000, Created: now,
	}))
	require.NoError(t, repo.UpsertSong(ctx, &model.Song{
		ID: uuid.New(), AlbumID: albumID, ArtistID: artistID,
		Title: "Paranoid Android", Album: "OK Computer", Artist: "Radiohead",
		Track: 2, Genre: "Rock", Year: 1997, Duration: 386,
		Path: mediaPath2, Suffix: "mp3", ContentType: "audio/mpeg",
		Size: 10000, Created: now,
	}))

	dplUUID := uuid.New()
	dplDir := t.TempDir()
	definition := fmt.Sprintf(`{
		"id": %q,
		"name": "Rock Mix",
		"isEnabled": true,
		"isPublic": true,
		"filter": {"field": "genre", "op": "eq", "value": "Rock"},
		"orderBy": "title asc"
	}`, dplUUID)
	require.NoError(t, os.WriteFile(filepath.Join(dplDir, "rockmix.json"), []byte(definition), 0o644))

	index, err := search.New()
	require.NoError(t, err)

	s := New(&Options{
		Repo:          repo,
		Authenticator: auth.New(repo),
		Artwork: artwork.New(artwork.Options{
			Repo:    repo,
			Resizer: imageresize.New(imageresize.Options{}),
			Cache:   cache.New(time.Minute),
		}),
		Playlists: dynamicplaylist.New(dynamicplaylist.Options{Repo: repo, Dir: dplDir}),
		Scanner:   scanner.New(&scanner.Options{Repo: repo, Index: index}),
		Index:     index,
		BaseURL:   "https://music.example.com/",
	})
	r := mux.NewRouter()
	s.RegisterHandlers(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testEnv{
		repo:    repo,
		srv:     srv,
		songID:  apikey.New(apikey.KindSong, songID),
		albumID: apikey.New(apikey.KindAlbum, albumID),
		dplID:   apikey.New(apikey.KindDynamicPlaylist, dplUUID),
	}
}

func seedUser(t *testing.T, repo database.Repository, username, password string, admin, share bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repo.CreateUser(context.Background(), &model.User{
		ID:           uuid.New(),
		Username:     username,
		Secret:       password,
		PasswordHash: string(hash),
		IsAdmin:      admin,
		CanShare:     share,
		Created:      time.Now().UTC(),
	}))
}

// get issues a request with json negotiation and decodes the envelope.
func (e *testEnv) get(t *testing.T, endpoint, username, password string, params url.Values) *Response {
	t.Helper()
	resp, err := http.Get(e.buildURL(endpoint, username, password, params))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var wrapper jsonWrapper
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&wrapper))
	require.NotNil(t, wrapper.Response)
	return wrapper.Response
}

func (e *testEnv) buildURL(endpoint, username, password string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("f", "json")
	params.Set("v", "1.16.1")
	params.Set("c", "melodee-test")
	if username != "" {
		params.Set("u", username)
		params.Set("p", password)
	}
	return e.srv.URL + "/rest/" + endpoint + "?" + params.Encode()
}

func TestPingUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	for _, endpoint := range []string{"ping", "ping.view"} {
		response := env.get(t, endpoint, "", "", nil)
		assert.Equal(t, "ok", response.Status)
		assert.Equal(t, "1.16.1", response.Version)
		assert.True(t, response.OpenSubsonic)
		assert.Nil(t, response.Error)
	}
}

func TestOpenSubsonicExtensionsListedWithoutAuth(t *testing.T) {
	env := newTestEnv(t)

	response := env.get(t, "getOpenSubsonicExtensions", "", "", nil)
	require.NotNil(t, response.OpenSubsonicExt)

	names := make([]string, 0, len(response.OpenSubsonicExt))
	for _, extension := range response.OpenSubsonicExt {
		names = append(names, extension.Name)
	}
	assert.Contains(t, names, "formPost")
	assert.Contains(t, names, "songLyrics")
}

// Every way of failing authentication must produce the same envelope, so
// callers cannot probe which usernames exist.
func TestAuthFailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)

	cases := map[string]url.Values{
		"wrong password": {"u": {"alice"}, "p": {"nope"}},
		"unknown user":   {"u": {"nobody"}, "p": {"nope"}},
		"wrong token":    {"u": {"alice"}, "t": {"00000000000000000000000000000000"}, "s": {"abcdef"}},
		"no credentials": {},
		"username only":  {"u": {"alice"}},
	}

	var bodies [][]byte
	for name, params := range cases {
		params.Set("f", "json")
		params.Set("v", "1.16.1")
		params.Set("c", "melodee-test")
		resp, err := http.Get(env.srv.URL + "/rest/getLicense?" + params.Encode())
		require.NoError(t, err, name)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err, name)

		var wrapper jsonWrapper
		require.NoError(t, json.Unmarshal(body, &wrapper), name)
		require.NotNil(t, wrapper.Response.Error, name)
		assert.Equal(t, 40, wrapper.Response.Error.Code, name)
		bodies = append(bodies, body)
	}
	for i := 1; i < len(bodies); i++ {
		assert.Equal(t, string(bodies[0]), string(bodies[i]))
	}
}

func TestStreamRangeRequest(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodGet,
		env.buildURL("stream", "alice", alicePassword, url.Values{"id": {env.songID.String()}}), nil)
	require.NoError(t, err)
	req.Header.Set("Range", "bytes=9000-")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusPartialContent, resp.StatusCode)
	assert.Equal(t, "bytes 9000-9999/10000", resp.Header.Get("Content-Range"))
	assert.Equal(t, "audio/mpeg", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Len(t, body, 1000)
}

func TestStreamRejectsTimeOffset(t *testing.T) {
	env := newTestEnv(t)

	response := env.get(t, "stream", "alice", alicePassword,
		url.Values{"id": {env.songID.String()}, "timeOffset": {"30"}})
	require.NotNil(t, response.Error)
	assert.Equal(t, 0, response.Error.Code)
}

func TestDownloadServesFullFile(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.buildURL("download", "alice", alicePassword,
		url.Values{"id": {env.songID.String()}}))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Len(t, body, 10000)
}

func TestCreateShareRequiresPrivilege(t *testing.T) {
	env := newTestEnv(t)

	response := env.get(t, "createShare", "alice", alicePassword,
		url.Values{"id": {env.songID.String()}})
	require.NotNil(t, response.Error)
	assert.Equal(t, 50, response.Error.Code)

	response = env.get(t, "createShare", "admin", adminPassword,
		url.Values{"id": {env.songID.String()}, "description": {"check this out"}})
	require.Nil(t, response.Error)
	require.NotNil(t, response.Shares)
	require.Len(t, response.Shares.Share, 1)
	share := response.Shares.Share[0]
	assert.Equal(t, "https://music.example.com/share/"+share.ID, share.URL)
	assert.Equal(t, "admin", share.Username)
	require.Len(t, share.Entry, 1)
	assert.Equal(t, "Airbag", share.Entry[0].Title)
}

func TestConcurrentAlbumListingsAgree(t *testing.T) {
	env := newTestEnv(t)

	counts := make([]int, 5)
	errs := make([]error, 5)
	var wg sync.WaitGroup
	for i := range counts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Get(env.buildURL("getAlbumList2", "alice", alicePassword,
				url.Values{"type": {"alphabeticalByName"}, "size": {"100"}}))
			if err != nil {
				errs[i] = err
				return
			}
			defer resp.Body.Close()
			var wrapper jsonWrapper
			if errs[i] = json.NewDecoder(resp.Body).Decode(&wrapper); errs[i] != nil {
				return
			}
			if wrapper.Response != nil && wrapper.Response.AlbumList2 != nil {
				counts[i] = len(wrapper.Response.AlbumList2.Album)
			}
		}(i)
	}
	wg.Wait()

	for i, count := range counts {
		require.NoError(t, errs[i])
		assert.Equal(t, 1, count)
	}
}

func TestDynamicPlaylistListingAndReadOnly(t *testing.T) {
	env := newTestEnv(t)

	response := env.get(t, "getPlaylists", "alice", alicePassword, nil)
	require.Nil(t, response.Error)
	require.NotNil(t, response.Playlists)

	var rockMix *Playlist
	for i, playlist := range response.Playlists.Playlist {
		if playlist.ID == env.dplID.String() {
			rockMix = &response.Playlists.Playlist[i]
		}
	}
	require.NotNil(t, rockMix, "dynamic playlist missing from listing")
	assert.Equal(t, "Rock Mix", rockMix.Name)
	assert.Equal(t, 2, rockMix.SongCount)

	detail := env.get(t, "getPlaylist", "alice", alicePassword,
		url.Values{"id": {env.dplID.String()}})
	require.Nil(t, detail.Error)
	require.NotNil(t, detail.Playlist)
	require.Len(t, detail.Playlist.Entry, 2)
	assert.Equal(t, "Airbag", detail.Playlist.Entry[0].Title)

	mutated := env.get(t, "updatePlaylist", "alice", alicePassword,
		url.Values{"playlistId": {env.dplID.String()}, "name": {"hacked"}})
	require.NotNil(t, mutated.Error)
	assert.Equal(t, 50, mutated.Error.Code)
}

func TestPlaylistLifecycle(t *testing.T) {
	env := newTestEnv(t)

	created := env.get(t, "createPlaylist", "alice", alicePassword,
		url.Values{"name": {"Favourites"}, "songId": {env.songID.String()}})
	require.Nil(t, created.Error)
	require.NotNil(t, created.Playlist)
	assert.Equal(t, 1, created.Playlist.SongCount)
	playlistID := created.Playlist.ID

	// private playlists of others are invisible, even to their owner check
	foreign := env.get(t, "getPlaylist", "admin", adminPassword,
		url.Values{"id": {playlistID}})
	require.Nil(t, foreign.Error, "admins see every playlist")

	renamed := env.get(t, "updatePlaylist", "alice", alicePassword,
		url.Values{"playlistId": {playlistID}, "name": {"Favourites 2"}})
	require.Nil(t, renamed.Error)

	detail := env.get(t, "getPlaylist", "alice", alicePassword,
		url.Values{"id": {playlistID}})
	require.Nil(t, detail.Error)
	assert.Equal(t, "Favourites 2", detail.Playlist.Name)

	deleted := env.get(t, "deletePlaylist", "alice", alicePassword,
		url.Values{"id": {playlistID}})
	require.Nil(t, deleted.Error)
}

func TestGetUserSelfAndAdmin(t *testing.T) {
	env := newTestEnv(t)

	self := env.get(t, "getUser", "alice", alicePassword, url.Values{"username": {"alice"}})
	require.Nil(t, self.Error)
	require.NotNil(t, self.User)
	assert.False(t, self.User.AdminRole)
	assert.False(t, self.User.ShareRole)

	denied := env.get(t, "getUser", "alice", alicePassword, url.Values{"username": {"admin"}})
	require.NotNil(t, denied.Error)
	assert.Equal(t, 50, denied.Error.Code)

	other := env.get(t, "getUser", "admin", adminPassword, url.Values{"username": {"alice"}})
	require.Nil(t, other.Error)
	require.NotNil(t, other.User)
	assert.Equal(t, "alice", other.User.Username)
}

func TestStarAndGetStarred(t *testing.T) {
	env := newTestEnv(t)

	starred := env.get(t, "star", "alice", alicePassword,
		url.Values{"id": {env.songID.String()}, "albumId": {env.albumID.String()}})
	require.Nil(t, starred.Error)

	listing := env.get(t, "getStarred2", "alice", alicePassword, nil)
	require.Nil(t, listing.Error)
	require.NotNil(t, listing.Starred2)
	assert.Len(t, listing.Starred2.Song, 1)
	assert.Len(t, listing.Starred2.Album, 1)

	unstarred := env.get(t, "unstar", "alice", alicePassword,
		url.Values{"id": {env.songID.String()}})
	require.Nil(t, unstarred.Error)

	listing = env.get(t, "getStarred2", "alice", alicePassword, nil)
	require.Nil(t, listing.Error)
	assert.Empty(t, listing.Starred2.Song)
}

func TestScrobbleRecordsPlayOnce(t *testing.T) {
	env := newTestEnv(t)

	// a repeated submission inside the dedup window is dropped
	for i := 0; i < 2; i++ {
		response := env.get(t, "scrobble", "alice", alicePassword,
			url.Values{"id": {env.songID.String()}, "submission": {"true"}})
		require.Nil(t, response.Error)
	}

	song, err := env.repo.GetSong(context.Background(), env.songID.UUID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), song.PlayCount)
}

func TestUnknownIDReturnsNotFound(t *testing.T) {
	env := newTestEnv(t)

	missing := apikey.New(apikey.KindAlbum, uuid.New())
	response := env.get(t, "getAlbum", "alice", alicePassword,
		url.Values{"id": {missing.String()}})
	require.NotNil(t, response.Error)
	assert.Equal(t, 70, response.Error.Code)

	response = env.get(t, "getAlbum", "alice", alicePassword, nil)
	require.NotNil(t, response.Error)
	assert.Equal(t, 10, response.Error.Code)
}

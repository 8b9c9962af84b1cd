package subsonic

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/database/model"
)

// getPlaylists merges stored playlists with the generated dynamic ones.
func (s *Subsonic) getPlaylistsHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()

	ownerID := c.user.ID
	if username := c.param("username"); username != "" && username != c.user.Username {
		if !c.user.IsAdmin {
			s.serveError(w, c, errorNotAuthorized, "only admins may list playlists of other users")
			return
		}
		owner, err := s.repo.GetUser(ctx, username)
		if err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		ownerID = owner.ID
	}

	stored, err := s.repo.GetPlaylists(ctx, ownerID)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	result := &Playlists{Playlist: make([]Playlist, 0, len(stored))}
	for _, playlist := range stored {
		entry := storedPlaylist(playlist)
		entry.Duration = s.playlistDuration(ctx, playlist.SongIDs)
		result.Playlist = append(result.Playlist, entry)
	}
	for _, playlist := range s.playlists.List(ctx, c.user) {
		result.Playlist = append(result.Playlist, dynamicPlaylist(playlist))
	}

	response := s.newResponse()
	response.Playlists = result
	s.serve(w, c, response)
}

func (s *Subsonic) getPlaylistHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	if err != nil {
		s.serveError(w, c, errorNotFound, "playlist not found")
		return
	}

	ctx := r.Context()
	if id.IsDynamicPlaylist() {
		playlist, err := s.playlists.Resolve(ctx, c.user, id.UUID)
		if err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		songs, err := s.playlists.Songs(ctx, c.user, id.UUID, 0, playlist.SongCount)
		if err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		result := &PlaylistWithSongs{
			Playlist: dynamicPlaylist(playlist),
			Entry:    s.songChildren(ctx, c, songs),
		}
		response := s.newResponse()
		response.Playlist = result
		s.serve(w, c, response)
		return
	}

	playlist, err := s.loadVisiblePlaylist(ctx, c, id)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	result := &PlaylistWithSongs{Playlist: storedPlaylist(*playlist)}
	duration := 0
	for _, songID := range playlist.SongIDs {
		song, err := s.repo.GetSong(ctx, songID)
		if err != nil {
			continue
		}
		duration += song.Duration
		result.Entry = append(result.Entry, songChild(*song))
	}
	result.Duration = duration

	response := s.newResponse()
	response.Playlist = result
	s.serve(w, c, response)
}

// createPlaylist creates a playlist, or replaces the song list of an
// existing one when playlistId is supplied.
func (s *Subsonic) createPlaylistHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()

	var songIDs []uuid.UUID
	for _, value := range c.paramList("songId") {
		id, err := apikey.Parse(value)
		if err != nil {
			s.serveError(w, c, errorNotFound, "song not found")
			return
		}
		songIDs = append(songIDs, id.UUID)
	}

	if value := c.param("playlistId"); value != "" {
		id, err := apikey.Parse(value)
		if err != nil || id.IsDynamicPlaylist() {
			s.serveError(w, c, errorNotAuthorized, "playlist cannot be modified")
			return
		}
		playlist, err := s.ownedPlaylist(ctx, c, id)
		if err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		// replace the whole song list
		removeAll := make([]int, len(playlist.SongIDs))
		for i := range removeAll {
			removeAll[i] = i
		}
		var name *string
		if v := c.param("name"); v != "" {
			name = &v
		}
		if err := s.repo.UpdatePlaylist(ctx, playlist.ID, name, nil, nil, songIDs, removeAll); err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		s.servePlaylistByID(w, r, c, playlist.ID)
		return
	}

	name := c.param("name")
	if name == "" {
		s.serveError(w, c, errorMissingParameter, "required parameter name is missing")
		return
	}
	playlist := &model.Playlist{
		ID:      uuid.New(),
		OwnerID: c.user.ID,
		Owner:   c.user.Username,
		Name:    name,
		Created: time.Now().UTC(),
		Changed: time.Now().UTC(),
		SongIDs: songIDs,
	}
	if err := s.repo.CreatePlaylist(ctx, playlist); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.servePlaylistByID(w, r, c, playlist.ID)
}

func (s *Subsonic) updatePlaylistHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	value := c.param("playlistId")
	if value == "" {
		s.serveError(w, c, errorMissingParameter, "required parameter playlistId is missing")
		return
	}
	id, err := apikey.Parse(value)
	if err != nil {
		s.serveError(w, c, errorNotFound, "playlist not found")
		return
	}
	if id.IsDynamicPlaylist() {
		s.serveError(w, c, errorNotAuthorized, "dynamic playlists cannot be modified")
		return
	}

	ctx := r.Context()
	playlist, err := s.ownedPlaylist(ctx, c, id)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	var name, comment *string
	var public *bool
	if v := c.param("name"); v != "" {
		name = &v
	}
	if c.has("comment") {
		v := c.param("comment")
		comment = &v
	}
	if c.has("public") {
		v := c.boolParam("public", false)
		public = &v
	}

	var add []uuid.UUID
	for _, value := range c.paramList("songIdToAdd") {
		songID, err := apikey.Parse(value)
		if err != nil {
			s.serveError(w, c, errorNotFound, "song not found")
			return
		}
		add = append(add, songID.UUID)
	}
	var remove []int
	for _, value := range c.paramList("songIndexToRemove") {
		index, err := strconv.Atoi(value)
		if err != nil || index < 0 || index >= len(playlist.SongIDs) {
			s.serveError(w, c, errorGeneric, "song index out of range")
			return
		}
		remove = append(remove, index)
	}

	if err := s.repo.UpdatePlaylist(ctx, playlist.ID, name, comment, public, add, remove); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

func (s *Subsonic) deletePlaylistHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	if err != nil {
		s.serveError(w, c, errorNotFound, "playlist not found")
		return
	}
	if id.IsDynamicPlaylist() {
		s.serveError(w, c, errorNotAuthorized, "dynamic playlists cannot be deleted")
		return
	}

	ctx := r.Context()
	playlist, err := s.ownedPlaylist(ctx, c, id)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	if err := s.repo.DeletePlaylist(ctx, playlist.ID); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

// loadVisiblePlaylist fetches a stored playlist the caller may read: own,
// public, or any when admin.
func (s *Subsonic) loadVisiblePlaylist(ctx context.Context, c *inboundCall, id apikey.ID) (*model.Playlist, error) {
	playlistID, ok := id.As(apikey.KindPlaylist)
	if !ok {
		return nil, model.ErrNotFound
	}
	playlist, err := s.repo.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if !playlist.Public && playlist.OwnerID != c.user.ID && !c.user.IsAdmin {
		return nil, model.ErrNotFound
	}
	return playlist, nil
}

// ownedPlaylist fetches a stored playlist the caller may modify: own, or
// any when admin. A visible but foreign playlist reads as not found so
// ownership is not leaked.
func (s *Subsonic) ownedPlaylist(ctx context.Context, c *inboundCall, id apikey.ID) (*model.Playlist, error) {
	playlist, err := s.loadVisiblePlaylist(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if playlist.OwnerID != c.user.ID && !c.user.IsAdmin {
		return nil, model.ErrNotFound
	}
	return playlist, nil
}

// servePlaylistByID re-reads a playlist and answers with its full shape,
// used after create so clients see the stored result.
func (s *Subsonic) servePlaylistByID(w http.ResponseWriter, r *http.Request, c *inboundCall, playlistID uuid.UUID) {
	ctx := r.Context()
	playlist, err := s.repo.GetPlaylist(ctx, playlistID)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	result := &PlaylistWithSongs{Playlist: storedPlaylist(*playlist)}
	for _, songID := range playlist.SongIDs {
		song, err := s.repo.GetSong(ctx, songID)
		if err != nil {
			continue
		}
		result.Duration += song.Duration
		result.Entry = append(result.Entry, songChild(*song))
	}
	response := s.newResponse()
	response.Playlist = result
	s.serve(w, c, response)
}

func (s *Subsonic) playlistDuration(ctx context.Context, songIDs []uuid.UUID) int {
	duration := 0
	for _, songID := range songIDs {
		if song, err := s.repo.GetSong(ctx, songID); err == nil {
			duration += song.Duration
		}
	}
	return duration
}

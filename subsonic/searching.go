package subsonic

import (
	"context"
	"net/http"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/search"
)

// The search helpers run the index query for one kind and hydrate the hits
// from the catalog. Hits whose entity vanished since the last index build
// are skipped.
func (s *Subsonic) searchArtists(ctx context.Context, query string, count, offset int) []model.Artist {
	ids, err := s.index.Query(ctx, query, search.KindArtist, count, offset)
	if err != nil {
		return nil
	}
	var artists []model.Artist
	for _, hit := range ids {
		id, err := apikey.Parse(hit)
		if err != nil {
			continue
		}
		if artist, err := s.repo.GetArtist(ctx, id.UUID); err == nil {
			artists = append(artists, *artist)
		}
	}
	return artists
}

func (s *Subsonic) searchAlbums(ctx context.Context, query string, count, offset int) []model.Album {
	ids, err := s.index.Query(ctx, query, search.KindAlbum, count, offset)
	if err != nil {
		return nil
	}
	var albums []model.Album
	for _, hit := range ids {
		id, err := apikey.Parse(hit)
		if err != nil {
			continue
		}
		if album, err := s.repo.GetAlbum(ctx, id.UUID); err == nil {
			albums = append(albums, *album)
		}
	}
	return albums
}

func (s *Subsonic) searchSongs(ctx context.Context, query string, count, offset int) []model.Song {
	ids, err := s.index.Query(ctx, query, search.KindSong, count, offset)
	if err != nil {
		return nil
	}
	var songs []model.Song
	for _, hit := range ids {
		id, err := apikey.Parse(hit)
		if err != nil {
			continue
		}
		if song, err := s.repo.GetSong(ctx, id.UUID); err == nil {
			songs = append(songs, *song)
		}
	}
	return songs
}

func (s *Subsonic) search2Handler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	query := c.param("query")
	if query == "" {
		s.serveError(w, c, errorMissingParameter, "required parameter query is missing")
		return
	}

	ctx := r.Context()
	result := &SearchResult2{}
	for _, artist := range s.searchArtists(ctx, query,
		c.intParam("artistCount", 20), c.intParam("artistOffset", 0)) {
		result.Artist = append(result.Artist, indexArtist(artist))
	}
	for _, album := range s.searchAlbums(ctx, query,
		c.intParam("albumCount", 20), c.intParam("albumOffset", 0)) {
		result.Album = append(result.Album, albumChild(album))
	}
	result.Song = s.songChildren(ctx, c, s.searchSongs(ctx, query,
		c.intParam("songCount", 20), c.intParam("songOffset", 0)))

	response := s.newResponse()
	response.SearchResult2 = result
	s.serve(w, c, response)
}

func (s *Subsonic) search3Handler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	// OpenSubsonic allows an empty query to list the whole library, which we
	// do not support; require the parameter like search2.
	query := c.param("query")
	if query == "" {
		s.serveError(w, c, errorMissingParameter, "required parameter query is missing")
		return
	}

	ctx := r.Context()
	result := &SearchResult3{}
	for _, artist := range s.searchArtists(ctx, query,
		c.intParam("artistCount", 20), c.intParam("artistOffset", 0)) {
		result.Artist = append(result.Artist, artistID3(artist))
	}
	for _, album := range s.searchAlbums(ctx, query,
		c.intParam("albumCount", 20), c.intParam("albumOffset", 0)) {
		result.Album = append(result.Album, albumID3(album))
	}
	result.Song = s.songChildren(ctx, c, s.searchSongs(ctx, query,
		c.intParam("songCount", 20), c.intParam("songOffset", 0)))

	response := s.newResponse()
	response.SearchResult3 = result
	s.serve(w, c, response)
}

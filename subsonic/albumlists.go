package subsonic

import (
	"net/http"

	"github.com/Huuberrt/melodee-sub000/database"
)

// albumListTypes are the accepted getAlbumList type values.
var albumListTypes = map[string]bool{
	"random":               true,
	"newest":               true,
	"highest":              true,
	"frequent":             true,
	"recent":               true,
	"alphabeticalByName":   true,
	"alphabeticalByArtist": true,
	"byYear":               true,
	"byGenre":              true,
	"starred":              true,
}

// albumListFilter validates the getAlbumList parameters and builds the
// repository filter. The error message doubles as the response message.
func (s *Subsonic) albumListFilter(c *inboundCall) (database.AlbumListFilter, int, string) {
	listType := c.param("type")
	if listType == "" {
		return database.AlbumListFilter{}, errorMissingParameter, "required parameter type is missing"
	}
	if !albumListTypes[listType] {
		return database.AlbumListFilter{}, errorGeneric, "unknown album list type"
	}

	filter := database.AlbumListFilter{
		Sort:   listType,
		UserID: c.user.ID,
		Offset: c.intParam("offset", 0),
		Size:   clamp(c.intParam("size", 10), 1, 500),
	}
	switch listType {
	case "byYear":
		filter.FromYear = c.intParam("fromYear", 0)
		filter.ToYear = c.intParam("toYear", 0)
		if !c.has("fromYear") || !c.has("toYear") {
			return database.AlbumListFilter{}, errorMissingParameter, "byYear requires fromYear and toYear"
		}
	case "byGenre":
		filter.Genre = c.param("genre")
		if filter.Genre == "" {
			return database.AlbumListFilter{}, errorMissingParameter, "byGenre requires genre"
		}
	}
	return filter, 0, ""
}

func (s *Subsonic) getAlbumListHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	filter, code, message := s.albumListFilter(c)
	if message != "" {
		s.serveError(w, c, code, message)
		return
	}

	albums, err := s.repo.ListAlbums(r.Context(), filter)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	list := &AlbumList{Album: make([]Child, 0, len(albums))}
	for _, album := range albums {
		list.Album = append(list.Album, albumChild(album))
	}

	response := s.newResponse()
	response.AlbumList = list
	s.serve(w, c, response)
}

func (s *Subsonic) getAlbumList2Handler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	filter, code, message := s.albumListFilter(c)
	if message != "" {
		s.serveError(w, c, code, message)
		return
	}

	albums, err := s.repo.ListAlbums(r.Context(), filter)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	list := &AlbumList2{Album: make([]AlbumID3, 0, len(albums))}
	for _, album := range albums {
		list.Album = append(list.Album, albumID3(album))
	}

	response := s.newResponse()
	response.AlbumList2 = list
	s.serve(w, c, response)
}

func (s *Subsonic) getRandomSongsHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	size := clamp(c.intParam("size", 10), 1, 500)
	songs, err := s.repo.GetRandomSongs(r.Context(), size,
		c.param("genre"), c.intParam("fromYear", 0), c.intParam("toYear", 0))
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	response := s.newResponse()
	response.RandomSongs = &Songs{Song: s.songChildren(r.Context(), c, songs)}
	s.serve(w, c, response)
}

func (s *Subsonic) getSongsByGenreHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	genre := c.param("genre")
	if genre == "" {
		s.serveError(w, c, errorMissingParameter, "required parameter genre is missing")
		return
	}
	count := clamp(c.intParam("count", 10), 1, 500)
	songs, err := s.repo.GetSongsByGenre(r.Context(), genre, c.intParam("offset", 0), count)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	response := s.newResponse()
	response.SongsByGenre = &Songs{Song: s.songChildren(r.Context(), c, songs)}
	s.serve(w, c, response)
}

// starredItems resolves the caller's starred annotations to their entities.
// An annotation whose item vanished from the catalog is skipped.
func (s *Subsonic) starredItems(w http.ResponseWriter, r *http.Request, c *inboundCall) (*Starred2, bool) {
	ctx := r.Context()
	annotations, err := s.repo.GetStarred(ctx, c.user.ID)
	if err != nil {
		s.serveRepoError(w, c, err)
		return nil, false
	}

	result := &Starred2{}
	for _, annotation := range annotations {
		starredAt := annotation.Starred
		if artist, err := s.repo.GetArtist(ctx, annotation.ItemID); err == nil {
			entry := artistID3(*artist)
			entry.Starred = &starredAt
			result.Artist = append(result.Artist, entry)
			continue
		}
		if album, err := s.repo.GetAlbum(ctx, annotation.ItemID); err == nil {
			entry := albumID3(*album)
			entry.Starred = &starredAt
			entry.UserRating = annotation.Rating
			result.Album = append(result.Album, entry)
			continue
		}
		if song, err := s.repo.GetSong(ctx, annotation.ItemID); err == nil {
			entry := songChild(*song)
			entry.Starred = &starredAt
			entry.UserRating = annotation.Rating
			result.Song = append(result.Song, entry)
		}
	}
	return result, true
}

func (s *Subsonic) getStarredHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	starred2, ok := s.starredItems(w, r, c)
	if !ok {
		return
	}

	result := &Starred{Song: starred2.Song}
	for _, artist := range starred2.Artist {
		result.Artist = append(result.Artist, IndexArtist{
			ID:         artist.ID,
			Name:       artist.Name,
			CoverArt:   artist.CoverArt,
			AlbumCount: artist.AlbumCount,
			Starred:    artist.Starred,
		})
	}
	for _, album := range starred2.Album {
		result.Album = append(result.Album, Child{
			ID:       album.ID,
			Parent:   album.ArtistID,
			IsDir:    true,
			Title:    album.Name,
			Album:    album.Name,
			Artist:   album.Artist,
			Year:     album.Year,
			Genre:    album.Genre,
			CoverArt: album.CoverArt,
			Duration: album.Duration,
			Starred:  album.Starred,
			AlbumID:  album.ID,
			ArtistID: album.ArtistID,
		})
	}

	response := s.newResponse()
	response.Starred = result
	s.serve(w, c, response)
}

func (s *Subsonic) getStarred2Handler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	result, ok := s.starredItems(w, r, c)
	if !ok {
		return
	}
	response := s.newResponse()
	response.Starred2 = result
	s.serve(w, c, response)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

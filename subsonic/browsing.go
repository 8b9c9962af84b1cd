package subsonic

import (
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/Huuberrt/melodee-sub000/apikey"
)

const ignoredArticles = "The El La Los Las Le Les"

func (s *Subsonic) getMusicFoldersHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	folders := make([]MusicFolder, 0)
	for _, f := range s.scanner.Folders() {
		folders = append(folders, MusicFolder{ID: f.ID, Name: f.Name})
	}
	response := s.newResponse()
	response.MusicFolders = &MusicFolders{MusicFolder: folders}
	s.serve(w, c, response)
}

// getIndexes returns the artist list in directory style, grouped by the
// first letter of the sort name.
func (s *Subsonic) getIndexesHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	artists, err := s.repo.ListArtists(r.Context())
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	a := s.loadAnnotations(r.Context(), c)
	grouped := make(map[string][]IndexArtist)
	var letters []string
	for _, artist := range artists {
		letter := indexLetter(artist.SortName, artist.Name)
		if _, seen := grouped[letter]; !seen {
			letters = append(letters, letter)
		}
		entry := indexArtist(artist)
		if annotation, ok := a.byItem[artist.ID]; ok {
			entry.Starred = optTime(annotation.Starred)
		}
		grouped[letter] = append(grouped[letter], entry)
	}

	indexes := &Indexes{
		LastModified:    time.Now().UnixMilli(),
		IgnoredArticles: ignoredArticles,
	}
	for _, letter := range letters {
		indexes.Index = append(indexes.Index, Index{Name: letter, Artist: grouped[letter]})
	}

	response := s.newResponse()
	response.Indexes = indexes
	s.serve(w, c, response)
}

// getMusicDirectory renders an artist as a directory of albums, or an album
// as a directory of songs.
func (s *Subsonic) getMusicDirectoryHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	if err != nil {
		s.serveError(w, c, errorNotFound, "directory not found")
		return
	}

	ctx := r.Context()
	switch id.Kind {
	case apikey.KindArtist:
		artist, err := s.repo.GetArtist(ctx, id.UUID)
		if err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		albums, err := s.repo.GetArtistAlbums(ctx, id.UUID)
		if err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		directory := &Directory{ID: id.String(), Name: artist.Name}
		for _, album := range albums {
			directory.Child = append(directory.Child, albumChild(album))
		}
		response := s.newResponse()
		response.Directory = directory
		s.serve(w, c, response)
	case apikey.KindAlbum:
		album, err := s.repo.GetAlbum(ctx, id.UUID)
		if err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		songs, err := s.repo.GetAlbumSongs(ctx, id.UUID)
		if err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		directory := &Directory{
			ID:     id.String(),
			Parent: apikey.New(apikey.KindArtist, album.ArtistID).String(),
			Name:   album.Name,
			Child:  s.songChildren(ctx, c, songs),
		}
		response := s.newResponse()
		response.Directory = directory
		s.serve(w, c, response)
	default:
		s.serveError(w, c, errorNotFound, "directory not found")
	}
}

func (s *Subsonic) getArtistsHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	artists, err := s.repo.ListArtists(r.Context())
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	a := s.loadAnnotations(r.Context(), c)
	grouped := make(map[string][]ArtistID3)
	var letters []string
	for _, artist := range artists {
		letter := indexLetter(artist.SortName, artist.Name)
		if _, seen := grouped[letter]; !seen {
			letters = append(letters, letter)
		}
		entry := artistID3(artist)
		if annotation, ok := a.byItem[artist.ID]; ok {
			entry.Starred = optTime(annotation.Starred)
		}
		grouped[letter] = append(grouped[letter], entry)
	}

	result := &ArtistsID3{IgnoredArticles: ignoredArticles}
	for _, letter := range letters {
		result.Index = append(result.Index, IndexID3{Name: letter, Artist: grouped[letter]})
	}

	response := s.newResponse()
	response.Artists = result
	s.serve(w, c, response)
}

func (s *Subsonic) getArtistHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	artistID, ok := id.As(apikey.KindArtist)
	if err != nil || !ok {
		s.serveError(w, c, errorNotFound, "artist not found")
		return
	}

	ctx := r.Context()
	artist, err := s.repo.GetArtist(ctx, artistID)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	albums, err := s.repo.GetArtistAlbums(ctx, artistID)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	result := &ArtistWithAlbumsID3{ArtistID3: artistID3(*artist)}
	a := s.loadAnnotations(ctx, c)
	if annotation, ok := a.byItem[artist.ID]; ok {
		result.Starred = optTime(annotation.Starred)
	}
	for _, album := range albums {
		entry := albumID3(album)
		if annotation, ok := a.byItem[album.ID]; ok {
			entry.Starred = optTime(annotation.Starred)
			entry.UserRating = annotation.Rating
		}
		result.Album = append(result.Album, entry)
	}

	response := s.newResponse()
	response.Artist = result
	s.serve(w, c, response)
}

func (s *Subsonic) getAlbumHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	albumID, ok := id.As(apikey.KindAlbum)
	if err != nil || !ok {
		s.serveError(w, c, errorNotFound, "album not found")
		return
	}

	ctx := r.Context()
	album, err := s.repo.GetAlbum(ctx, albumID)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	songs, err := s.repo.GetAlbumSongs(ctx, albumID)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	result := &AlbumWithSongsID3{
		AlbumID3: albumID3(*album),
		Song:     s.songChildren(ctx, c, songs),
	}
	if annotation, err := s.repo.GetAnnotation(ctx, c.user.ID, album.ID); err == nil {
		result.Starred = optTime(annotation.Starred)
		result.UserRating = annotation.Rating
	}

	response := s.newResponse()
	response.Album = result
	s.serve(w, c, response)
}

func (s *Subsonic) getSongHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	songID, ok := id.As(apikey.KindSong)
	if err != nil || !ok {
		s.serveError(w, c, errorNotFound, "song not found")
		return
	}

	ctx := r.Context()
	song, err := s.repo.GetSong(ctx, songID)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	child := songChild(*song)
	if annotation, err := s.repo.GetAnnotation(ctx, c.user.ID, song.ID); err == nil {
		child.Starred = optTime(annotation.Starred)
		child.UserRating = annotation.Rating
	}

	response := s.newResponse()
	response.Song = &child
	s.serve(w, c, response)
}

func (s *Subsonic) getGenresHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	genres, err := s.repo.ListGenres(r.Context())
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	result := &Genres{}
	for _, genre := range genres {
		result.Genre = append(result.Genre, Genre{
			Value:      genre.Name,
			SongCount:  genre.SongCount,
			AlbumCount: genre.AlbumCount,
		})
	}

	response := s.newResponse()
	response.Genres = result
	s.serve(w, c, response)
}

// indexLetter picks the getIndexes group of an artist: the first letter of
// its sort name, "#" for anything not alphabetic.
func indexLetter(sortName, name string) string {
	s := sortName
	if s == "" {
		s = name
	}
	for _, r := range s {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
		return "#"
	}
	return "#"
}

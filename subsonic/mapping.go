package subsonic

import (
	"context"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/dynamicplaylist"
)

// annotations is the caller's starred/rating state, loaded once per request
// and consulted while mapping entities.
type annotations struct {
	byItem map[uuid.UUID]model.Annotation
}

// loadAnnotations fetches the caller's starred set. Failures degrade to no
// decoration, they never fail the request.
func (s *Subsonic) loadAnnotations(ctx context.Context, c *inboundCall) annotations {
	a := annotations{byItem: make(map[uuid.UUID]model.Annotation)}
	if c.user.IsBlank() {
		return a
	}
	starred, err := s.repo.GetStarred(ctx, c.user.ID)
	if err != nil {
		return a
	}
	for _, annotation := range starred {
		a.byItem[annotation.ItemID] = annotation
	}
	return a
}

func songChild(song model.Song) Child {
	albumID := apikey.New(apikey.KindAlbum, song.AlbumID).String()
	return Child{
		ID:          apikey.New(apikey.KindSong, song.ID).String(),
		Parent:      albumID,
		Title:       song.Title,
		Album:       song.Album,
		Artist:      song.Artist,
		Track:       song.Track,
		Year:        song.Year,
		Genre:       song.Genre,
		CoverArt:    albumID,
		Size:        song.Size,
		ContentType: song.ContentType,
		Suffix:      song.Suffix,
		Duration:    song.Duration,
		BitRate:     song.BitRate,
		Path:        song.Path,
		PlayCount:   song.PlayCount,
		DiscNumber:  song.Disc,
		Created:     optTime(song.Created),
		AlbumID:     albumID,
		ArtistID:    apikey.New(apikey.KindArtist, song.ArtistID).String(),
		Type:        "music",
	}
}

// songChildren maps a song list, one starred lookup for the whole batch.
func (s *Subsonic) songChildren(ctx context.Context, c *inboundCall, songs []model.Song) []Child {
	a := s.loadAnnotations(ctx, c)
	children := make([]Child, 0, len(songs))
	for _, song := range songs {
		child := songChild(song)
		if annotation, ok := a.byItem[song.ID]; ok {
			child.Starred = optTime(annotation.Starred)
			child.UserRating = annotation.Rating
		}
		children = append(children, child)
	}
	return children
}

func albumID3(album model.Album) AlbumID3 {
	return AlbumID3{
		ID:        apikey.New(apikey.KindAlbum, album.ID).String(),
		Name:      album.Name,
		Artist:    album.Artist,
		ArtistID:  apikey.New(apikey.KindArtist, album.ArtistID).String(),
		CoverArt:  apikey.New(apikey.KindAlbum, album.ID).String(),
		SongCount: album.SongCount,
		Duration:  album.Duration,
		PlayCount: album.PlayCount,
		Created:   album.Created,
		Year:      album.Year,
		Genre:     album.Genre,
	}
}

// albumChild is the directory-style rendering of an album used by
// getAlbumList and search2.
func albumChild(album model.Album) Child {
	return Child{
		ID:       apikey.New(apikey.KindAlbum, album.ID).String(),
		Parent:   apikey.New(apikey.KindArtist, album.ArtistID).String(),
		IsDir:    true,
		Title:    album.Name,
		Album:    album.Name,
		Artist:   album.Artist,
		Year:     album.Year,
		Genre:    album.Genre,
		CoverArt: apikey.New(apikey.KindAlbum, album.ID).String(),
		Duration: album.Duration,
		Created:  optTime(album.Created),
		AlbumID:  apikey.New(apikey.KindAlbum, album.ID).String(),
		ArtistID: apikey.New(apikey.KindArtist, album.ArtistID).String(),
	}
}

func artistID3(artist model.Artist) ArtistID3 {
	a := ArtistID3{
		ID:         apikey.New(apikey.KindArtist, artist.ID).String(),
		Name:       artist.Name,
		AlbumCount: artist.AlbumCount,
	}
	if artist.ImagePath != "" {
		a.CoverArt = a.ID
	}
	return a
}

func indexArtist(artist model.Artist) IndexArtist {
	a := IndexArtist{
		ID:         apikey.New(apikey.KindArtist, artist.ID).String(),
		Name:       artist.Name,
		AlbumCount: artist.AlbumCount,
	}
	if artist.ImagePath != "" {
		a.CoverArt = a.ID
	}
	return a
}

func storedPlaylist(playlist model.Playlist) Playlist {
	return Playlist{
		ID:        apikey.New(apikey.KindPlaylist, playlist.ID).String(),
		Name:      playlist.Name,
		Comment:   playlist.Comment,
		Owner:     playlist.Owner,
		Public:    playlist.Public,
		SongCount: len(playlist.SongIDs),
		Created:   playlist.Created,
		Changed:   playlist.Changed,
		CoverArt:  apikey.New(apikey.KindPlaylist, playlist.ID).String(),
	}
}

func dynamicPlaylist(playlist dynamicplaylist.Playlist) Playlist {
	return Playlist{
		ID:        playlist.ID.String(),
		Name:      playlist.Name,
		Comment:   playlist.Comment,
		Owner:     playlist.Owner,
		Public:    playlist.Public,
		SongCount: playlist.SongCount,
		Duration:  playlist.Duration,
		Created:   playlist.Changed,
		Changed:   playlist.Changed,
		CoverArt:  playlist.ID.String(),
	}
}

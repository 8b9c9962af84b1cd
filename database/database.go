// Package database defines the repository interfaces the API packages
// consume. The sqlite subpackage provides the implementation.
package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

type (
	// Repository bundles all catalog access.
	Repository interface {
		UserRepo
		ArtistRepo
		AlbumRepo
		SongRepo
		AnnotationRepo
		PlaylistRepo
		BookmarkRepo
		PlayQueueRepo
		ShareRepo
		RadioRepo
		NowPlayingRepo
	}

	// UserRepo defines user account operations.
	UserRepo interface {
		// GetUser retrieves a user by username.
		GetUser(ctx context.Context, username string) (*model.User, error)
		// GetUserByID retrieves a user by id.
		GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
		// CreateUser inserts a new user account.
		CreateUser(ctx context.Context, user *model.User) error
		// TouchLastLogin records a successful authentication.
		TouchLastLogin(ctx context.Context, id uuid.UUID) error
	}

	ArtistRepo interface {
		GetArtist(ctx context.Context, id uuid.UUID) (*model.Artist, error)
		// ListArtists returns all artists ordered by sort name.
		ListArtists(ctx context.Context) ([]model.Artist, error)
		// GetArtistAlbums returns the albums of one artist.
		GetArtistAlbums(ctx context.Context, artistID uuid.UUID) ([]model.Album, error)
		UpsertArtist(ctx context.Context, artist *model.Artist) error
	}

	// AlbumListFilter selects and orders an album listing.
	AlbumListFilter struct {
		// Sort is one of the albumlist type keywords: random, newest,
		// highest, frequent, recent, alphabeticalByName,
		// alphabeticalByArtist, byYear, byGenre, starred.
		Sort     string
		FromYear int
		ToYear   int
		Genre    string
		// UserID scopes highest and starred listings to a user.
		UserID uuid.UUID
		Offset int
		Size   int
	}

	AlbumRepo interface {
		GetAlbum(ctx context.Context, id uuid.UUID) (*model.Album, error)
		GetAlbumSongs(ctx context.Context, albumID uuid.UUID) ([]model.Song, error)
		ListAlbums(ctx context.Context, filter AlbumListFilter) ([]model.Album, error)
		UpsertAlbum(ctx context.Context, album *model.Album) error
	}

	// SongSearch is a parameterized, server-controlled song selection used
	// by the dynamic playlist engine. Where and OrderBy are SQL fragments
	// produced by a whitelisting compiler, never raw client input.
	SongSearch struct {
		Where   string
		Args    []any
		OrderBy string
		Limit   int
		Offset  int
	}

	SongRepo interface {
		GetSong(ctx context.Context, id uuid.UUID) (*model.Song, error)
		GetRandomSongs(ctx context.Context, size int, genre string, fromYear, toYear int) ([]model.Song, error)
		GetSongsByGenre(ctx context.Context, genre string, offset, size int) ([]model.Song, error)
		// FindSongs runs a compiled dynamic playlist selection.
		FindSongs(ctx context.Context, search SongSearch) ([]model.Song, error)
		// CountSongs returns match count and summed duration in seconds of
		// a selection. A positive Limit caps the aggregated set.
		CountSongs(ctx context.Context, search SongSearch) (count int, duration int, err error)
		// FindSongByTitle locates a song by artist and title, for lyrics
		// lookup by name.
		FindSongByTitle(ctx context.Context, artist, title string) (*model.Song, error)
		ListGenres(ctx context.Context) ([]model.Genre, error)
		UpsertSong(ctx context.Context, song *model.Song) error
	}

	AnnotationRepo interface {
		// Star marks items starred for a user; unstarring deletes the mark.
		Star(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, starred bool) error
		SetRating(ctx context.Context, userID, itemID uuid.UUID, rating int) error
		GetAnnotation(ctx context.Context, userID, itemID uuid.UUID) (*model.Annotation, error)
		// GetStarred returns the user's annotations that carry a star,
		// newest first.
		GetStarred(ctx context.Context, userID uuid.UUID) ([]model.Annotation, error)
		// RecordPlay bumps global play counts of a song and its album.
		RecordPlay(ctx context.Context, songID uuid.UUID, at time.Time) error
	}

	PlaylistRepo interface {
		CreatePlaylist(ctx context.Context, playlist *model.Playlist) error
		GetPlaylist(ctx context.Context, id uuid.UUID) (*model.Playlist, error)
		// GetPlaylists returns playlists visible to the user: own ones plus
		// public ones of others.
		GetPlaylists(ctx context.Context, userID uuid.UUID) ([]model.Playlist, error)
		// UpdatePlaylist renames, changes visibility and applies song
		// additions and removals in one transaction. Removals are indexes
		// into the current song list.
		UpdatePlaylist(ctx context.Context, id uuid.UUID, name, comment *string, public *bool, add []uuid.UUID, removeIndexes []int) error
		DeletePlaylist(ctx context.Context, id uuid.UUID) error
	}

	BookmarkRepo interface {
		GetBookmarks(ctx context.Context, userID uuid.UUID) ([]model.Bookmark, error)
		SaveBookmark(ctx context.Context, bookmark *model.Bookmark) error
		DeleteBookmark(ctx context.Context, userID, songID uuid.UUID) error
	}

	PlayQueueRepo interface {
		GetPlayQueue(ctx context.Context, userID uuid.UUID) (*model.PlayQueue, error)
		SavePlayQueue(ctx context.Context, queue *model.PlayQueue) error
	}

	ShareRepo interface {
		CreateShare(ctx context.Context, share *model.Share) error
		GetShare(ctx context.Context, id string) (*model.Share, error)
		// GetShares returns the user's shares, or all shares for admins.
		GetShares(ctx context.Context, userID uuid.UUID, all bool) ([]model.Share, error)
		UpdateShare(ctx context.Context, share *model.Share) error
		DeleteShare(ctx context.Context, id string) error
	}

	RadioRepo interface {
		ListRadioStations(ctx context.Context) ([]model.RadioStation, error)
		CreateRadioStation(ctx context.Context, station *model.RadioStation) error
		UpdateRadioStation(ctx context.Context, station *model.RadioStation) error
		DeleteRadioStation(ctx context.Context, id uuid.UUID) error
	}

	// NowPlayingRepo is the in-memory play state store. Entries expire,
	// nothing is persisted.
	NowPlayingRepo interface {
		SetNowPlaying(entry model.NowPlaying)
		// ListNowPlaying returns entries newer than the cutoff window.
		ListNowPlaying() []model.NowPlaying
		// SeenSubmission reports whether a scrobble submission with this
		// fingerprint was already accepted within the dedup window.
		SeenSubmission(fingerprint string) bool
		// MarkSubmission records an accepted submission fingerprint, after
		// the play has been recorded.
		MarkSubmission(fingerprint string)
	}
)

// Package model holds the catalog entities shared between the repository
// implementations and the API packages.
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoConfiguration = errors.New("database filename not set")
	ErrNotFound        = errors.New("not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrDuplicate       = errors.New("already exists")
)

// User is an account allowed to talk to the API.
type User struct {
	// ID is the unique identifier for the user.
	ID uuid.UUID `db:"id"`
	// Username is the login name, unique across the server.
	Username string `db:"username"`
	// Email address of the user.
	Email string `db:"email"`
	// DisplayName is the human readable name shown in clients.
	DisplayName string `db:"displayname"`
	// Secret is the shared secret used for Subsonic token authentication.
	Secret string `db:"secret"`
	// PasswordHash is the bcrypt hash validated on direct password logins.
	PasswordHash string `db:"passwordhash"`
	// IsAdmin grants access to admin-only operations.
	IsAdmin bool `db:"isadmin"`
	// CanShare grants the right to create public shares.
	CanShare bool `db:"canshare"`
	// Created is the time the account was created.
	Created time.Time `db:"created"`
	// LastLogin is the last successful authentication.
	LastLogin time.Time `db:"lastlogin"`
}

// Artist is a catalog artist.
type Artist struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	SortName  string    `db:"sortname"`
	ImagePath string    `db:"imagepath"`
	// AlbumCount is maintained by the scanner.
	AlbumCount int       `db:"albumcount"`
	Created    time.Time `db:"created"`
}

// Album is a catalog album.
type Album struct {
	ID        uuid.UUID `db:"id"`
	ArtistID  uuid.UUID `db:"artistid"`
	Artist    string    `db:"artist"`
	Name      string    `db:"name"`
	SortName  string    `db:"sortname"`
	Genre     string    `db:"genre"`
	Year      int       `db:"year"`
	CoverPath string    `db:"coverpath"`
	SongCount int       `db:"songcount"`
	// Duration is the summed song duration in seconds.
	Duration  int       `db:"duration"`
	PlayCount int64     `db:"playcount"`
	Created   time.Time `db:"created"`
}

// Song is a single playable catalog entry.
type Song struct {
	ID       uuid.UUID `db:"id"`
	AlbumID  uuid.UUID `db:"albumid"`
	ArtistID uuid.UUID `db:"artistid"`
	Title    string    `db:"title"`
	Album    string    `db:"album"`
	Artist   string    `db:"artist"`
	Track    int       `db:"track"`
	Disc     int       `db:"disc"`
	Genre    string    `db:"genre"`
	Year     int       `db:"year"`
	// Duration in seconds.
	Duration int `db:"duration"`
	// BitRate in kbit/s.
	BitRate int `db:"bitrate"`
	// Path is the absolute filesystem path of the media file.
	Path string `db:"path"`
	// Suffix is the file extension without the leading dot.
	Suffix string `db:"suffix"`
	// ContentType of the media file.
	ContentType string `db:"contenttype"`
	// Size of the file in bytes.
	Size       int64     `db:"size"`
	PlayCount  int64     `db:"playcount"`
	LastPlayed time.Time `db:"lastplayed"`
	Created    time.Time `db:"created"`
}

// Annotation is per-user state attached to an artist, album or song.
type Annotation struct {
	UserID uuid.UUID `db:"userid"`
	ItemID uuid.UUID `db:"itemid"`
	// Starred is the time the item was starred, zero when not starred.
	Starred time.Time `db:"starred"`
	// Rating 1..5, 0 means unrated.
	Rating int `db:"rating"`
}

// Playlist is a stored playlist. Dynamic playlists never appear here; they
// are materialized from definition files on every read.
type Playlist struct {
	ID      uuid.UUID `db:"id"`
	OwnerID uuid.UUID `db:"ownerid"`
	Owner   string    `db:"owner"`
	Name    string    `db:"name"`
	Comment string    `db:"comment"`
	Public  bool      `db:"public"`
	Created time.Time `db:"created"`
	Changed time.Time `db:"changed"`
	// SongIDs in playlist order.
	SongIDs []uuid.UUID
}

// Bookmark is a saved playback position within a song.
type Bookmark struct {
	UserID uuid.UUID `db:"userid"`
	SongID uuid.UUID `db:"songid"`
	// Position within the song in milliseconds.
	Position int64     `db:"position"`
	Comment  string    `db:"comment"`
	Created  time.Time `db:"created"`
	Changed  time.Time `db:"changed"`
}

// PlayQueue is the saved play queue of a user, one per user.
type PlayQueue struct {
	UserID uuid.UUID `db:"userid"`
	// Current is the song the user was listening to.
	Current uuid.UUID `db:"current"`
	// Position within the current song in milliseconds.
	Position  int64     `db:"position"`
	ChangedBy string    `db:"changedby"`
	Changed   time.Time `db:"changed"`
	SongIDs   []uuid.UUID
}

// Share is a publicly reachable set of songs or albums.
type Share struct {
	// ID is the url-safe share identifier.
	ID          string    `db:"id"`
	OwnerID     uuid.UUID `db:"ownerid"`
	Description string    `db:"description"`
	Created     time.Time `db:"created"`
	Expires     time.Time `db:"expires"`
	LastVisited time.Time `db:"lastvisited"`
	VisitCount  int       `db:"visitcount"`
	// ItemIDs are the shared entity ids in wire form.
	ItemIDs []string
}

// RadioStation is an internet radio station entry.
type RadioStation struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	StreamURL   string    `db:"streamurl"`
	HomepageURL string    `db:"homepageurl"`
	Created     time.Time `db:"created"`
}

// Genre with usage counts, derived from the song table.
type Genre struct {
	Name       string `db:"name"`
	SongCount  int    `db:"songcount"`
	AlbumCount int    `db:"albumcount"`
}

// NowPlaying is an in-memory record of a song a user is currently playing.
type NowPlaying struct {
	UserID   uuid.UUID
	Username string
	SongID   uuid.UUID
	Client   string
	At       time.Time
}

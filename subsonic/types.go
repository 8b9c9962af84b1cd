package subsonic

import (
	"encoding/xml"
	"time"
)

// Response is the subsonic-response envelope. Exactly one payload field is
// set per reply; all others stay nil so they are omitted from the output.
type Response struct {
	XMLName       xml.Name `xml:"http://subsonic.org/restapi subsonic-response" json:"-"`
	Status        string   `xml:"status,attr" json:"status"`
	Version       string   `xml:"version,attr" json:"version"`
	Type          string   `xml:"type,attr" json:"type"`
	ServerVersion string   `xml:"serverVersion,attr" json:"serverVersion"`
	OpenSubsonic  bool     `xml:"openSubsonic,attr" json:"openSubsonic"`

	Error *Error `xml:"error,omitempty" json:"error,omitempty"`

	License               *License               `xml:"license,omitempty" json:"license,omitempty"`
	OpenSubsonicExt       []Extension            `xml:"openSubsonicExtensions,omitempty" json:"openSubsonicExtensions,omitempty"`
	MusicFolders          *MusicFolders          `xml:"musicFolders,omitempty" json:"musicFolders,omitempty"`
	Indexes               *Indexes               `xml:"indexes,omitempty" json:"indexes,omitempty"`
	Directory             *Directory             `xml:"directory,omitempty" json:"directory,omitempty"`
	Artists               *ArtistsID3            `xml:"artists,omitempty" json:"artists,omitempty"`
	Artist                *ArtistWithAlbumsID3   `xml:"artist,omitempty" json:"artist,omitempty"`
	Album                 *AlbumWithSongsID3     `xml:"album,omitempty" json:"album,omitempty"`
	Song                  *Child                 `xml:"song,omitempty" json:"song,omitempty"`
	Genres                *Genres                `xml:"genres,omitempty" json:"genres,omitempty"`
	AlbumList             *AlbumList             `xml:"albumList,omitempty" json:"albumList,omitempty"`
	AlbumList2            *AlbumList2            `xml:"albumList2,omitempty" json:"albumList2,omitempty"`
	RandomSongs           *Songs                 `xml:"randomSongs,omitempty" json:"randomSongs,omitempty"`
	SongsByGenre          *Songs                 `xml:"songsByGenre,omitempty" json:"songsByGenre,omitempty"`
	SearchResult2         *SearchResult2         `xml:"searchResult2,omitempty" json:"searchResult2,omitempty"`
	SearchResult3         *SearchResult3         `xml:"searchResult3,omitempty" json:"searchResult3,omitempty"`
	Starred               *Starred               `xml:"starred,omitempty" json:"starred,omitempty"`
	Starred2              *Starred2              `xml:"starred2,omitempty" json:"starred2,omitempty"`
	NowPlaying            *NowPlaying            `xml:"nowPlaying,omitempty" json:"nowPlaying,omitempty"`
	Bookmarks             *Bookmarks             `xml:"bookmarks,omitempty" json:"bookmarks,omitempty"`
	PlayQueue             *PlayQueue             `xml:"playQueue,omitempty" json:"playQueue,omitempty"`
	Playlists             *Playlists             `xml:"playlists,omitempty" json:"playlists,omitempty"`
	Playlist              *PlaylistWithSongs     `xml:"playlist,omitempty" json:"playlist,omitempty"`
	Shares                *Shares                `xml:"shares,omitempty" json:"shares,omitempty"`
	InternetRadioStations *InternetRadioStations `xml:"internetRadioStations,omitempty" json:"internetRadioStations,omitempty"`
	Lyrics                *Lyrics                `xml:"lyrics,omitempty" json:"lyrics,omitempty"`
	LyricsList            *LyricsList            `xml:"lyricsList,omitempty" json:"lyricsList,omitempty"`
	User                  *User                  `xml:"user,omitempty" json:"user,omitempty"`
	ScanStatus            *ScanStatus            `xml:"scanStatus,omitempty" json:"scanStatus,omitempty"`
}

type Error struct {
	Code    int    `xml:"code,attr" json:"code"`
	Message string `xml:"message,attr" json:"message,omitempty"`
}

type License struct {
	Valid bool `xml:"valid,attr" json:"valid"`
}

// Extension is one OpenSubsonic extension supported by this server.
type Extension struct {
	Name     string `xml:"name,attr" json:"name"`
	Versions []int  `xml:"versions" json:"versions"`
}

type MusicFolders struct {
	MusicFolder []MusicFolder `xml:"musicFolder" json:"musicFolder,omitempty"`
}

type MusicFolder struct {
	ID   int    `xml:"id,attr" json:"id"`
	Name string `xml:"name,attr" json:"name,omitempty"`
}

type Indexes struct {
	LastModified    int64   `xml:"lastModified,attr" json:"lastModified"`
	IgnoredArticles string  `xml:"ignoredArticles,attr" json:"ignoredArticles"`
	Index           []Index `xml:"index" json:"index,omitempty"`
}

type Index struct {
	Name   string        `xml:"name,attr" json:"name"`
	Artist []IndexArtist `xml:"artist" json:"artist,omitempty"`
}

// IndexArtist is the directory-style artist element of getIndexes.
type IndexArtist struct {
	ID         string     `xml:"id,attr" json:"id"`
	Name       string     `xml:"name,attr" json:"name"`
	CoverArt   string     `xml:"coverArt,attr,omitempty" json:"coverArt,omitempty"`
	AlbumCount int        `xml:"albumCount,attr,omitempty" json:"albumCount,omitempty"`
	Starred    *time.Time `xml:"starred,attr,omitempty" json:"starred,omitempty"`
}

type Directory struct {
	ID      string     `xml:"id,attr" json:"id"`
	Parent  string     `xml:"parent,attr,omitempty" json:"parent,omitempty"`
	Name    string     `xml:"name,attr" json:"name"`
	Starred *time.Time `xml:"starred,attr,omitempty" json:"starred,omitempty"`
	Child   []Child    `xml:"child" json:"child,omitempty"`
}

// Child is the directory-style song or album element shared by browsing,
// album list, search and playlist responses.
type Child struct {
	ID          string     `xml:"id,attr" json:"id"`
	Parent      string     `xml:"parent,attr,omitempty" json:"parent,omitempty"`
	IsDir       bool       `xml:"isDir,attr" json:"isDir"`
	Title       string     `xml:"title,attr" json:"title"`
	Album       string     `xml:"album,attr,omitempty" json:"album,omitempty"`
	Artist      string     `xml:"artist,attr,omitempty" json:"artist,omitempty"`
	Track       int        `xml:"track,attr,omitempty" json:"track,omitempty"`
	Year        int        `xml:"year,attr,omitempty" json:"year,omitempty"`
	Genre       string     `xml:"genre,attr,omitempty" json:"genre,omitempty"`
	CoverArt    string     `xml:"coverArt,attr,omitempty" json:"coverArt,omitempty"`
	Size        int64      `xml:"size,attr,omitempty" json:"size,omitempty"`
	ContentType string     `xml:"contentType,attr,omitempty" json:"contentType,omitempty"`
	Suffix      string     `xml:"suffix,attr,omitempty" json:"suffix,omitempty"`
	Duration    int        `xml:"duration,attr,omitempty" json:"duration,omitempty"`
	BitRate     int        `xml:"bitRate,attr,omitempty" json:"bitRate,omitempty"`
	Path        string     `xml:"path,attr,omitempty" json:"path,omitempty"`
	PlayCount   int64      `xml:"playCount,attr,omitempty" json:"playCount,omitempty"`
	DiscNumber  int        `xml:"discNumber,attr,omitempty" json:"discNumber,omitempty"`
	Created     *time.Time `xml:"created,attr,omitempty" json:"created,omitempty"`
	Starred     *time.Time `xml:"starred,attr,omitempty" json:"starred,omitempty"`
	UserRating  int        `xml:"userRating,attr,omitempty" json:"userRating,omitempty"`
	AlbumID     string     `xml:"albumId,attr,omitempty" json:"albumId,omitempty"`
	ArtistID    string     `xml:"artistId,attr,omitempty" json:"artistId,omitempty"`
	Type        string     `xml:"type,attr,omitempty" json:"type,omitempty"`
}

type ArtistsID3 struct {
	IgnoredArticles string     `xml:"ignoredArticles,attr" json:"ignoredArticles"`
	Index           []IndexID3 `xml:"index" json:"index,omitempty"`
}

type IndexID3 struct {
	Name   string      `xml:"name,attr" json:"name"`
	Artist []ArtistID3 `xml:"artist" json:"artist,omitempty"`
}

type ArtistID3 struct {
	ID             string     `xml:"id,attr" json:"id"`
	Name           string     `xml:"name,attr" json:"name"`
	CoverArt       string     `xml:"coverArt,attr,omitempty" json:"coverArt,omitempty"`
	ArtistImageURL string     `xml:"artistImageUrl,attr,omitempty" json:"artistImageUrl,omitempty"`
	AlbumCount     int        `xml:"albumCount,attr,omitempty" json:"albumCount,omitempty"`
	Starred        *time.Time `xml:"starred,attr,omitempty" json:"starred,omitempty"`
}

type ArtistWithAlbumsID3 struct {
	ArtistID3
	Album []AlbumID3 `xml:"album" json:"album,omitempty"`
}

type AlbumID3 struct {
	ID         string     `xml:"id,attr" json:"id"`
	Name       string     `xml:"name,attr" json:"name"`
	Artist     string     `xml:"artist,attr,omitempty" json:"artist,omitempty"`
	ArtistID   string     `xml:"artistId,attr,omitempty" json:"artistId,omitempty"`
	CoverArt   string     `xml:"coverArt,attr,omitempty" json:"coverArt,omitempty"`
	SongCount  int        `xml:"songCount,attr" json:"songCount"`
	Duration   int        `xml:"duration,attr" json:"duration"`
	PlayCount  int64      `xml:"playCount,attr,omitempty" json:"playCount,omitempty"`
	Created    time.Time  `xml:"created,attr" json:"created"`
	Year       int        `xml:"year,attr,omitempty" json:"year,omitempty"`
	Genre      string     `xml:"genre,attr,omitempty" json:"genre,omitempty"`
	Starred    *time.Time `xml:"starred,attr,omitempty" json:"starred,omitempty"`
	UserRating int        `xml:"userRating,attr,omitempty" json:"userRating,omitempty"`
}

type AlbumWithSongsID3 struct {
	AlbumID3
	Song []Child `xml:"song" json:"song,omitempty"`
}

type Genres struct {
	Genre []Genre `xml:"genre" json:"genre,omitempty"`
}

type Genre struct {
	SongCount  int    `xml:"songCount,attr" json:"songCount"`
	AlbumCount int    `xml:"albumCount,attr" json:"albumCount"`
	Value      string `xml:",chardata" json:"value"`
}

type AlbumList struct {
	Album []Child `xml:"album" json:"album,omitempty"`
}

type AlbumList2 struct {
	Album []AlbumID3 `xml:"album" json:"album,omitempty"`
}

type Songs struct {
	Song []Child `xml:"song" json:"song,omitempty"`
}

type SearchResult2 struct {
	Artist []IndexArtist `xml:"artist" json:"artist,omitempty"`
	Album  []Child       `xml:"album" json:"album,omitempty"`
	Song   []Child       `xml:"song" json:"song,omitempty"`
}

type SearchResult3 struct {
	Artist []ArtistID3 `xml:"artist" json:"artist,omitempty"`
	Album  []AlbumID3  `xml:"album" json:"album,omitempty"`
	Song   []Child     `xml:"song" json:"song,omitempty"`
}

type Starred struct {
	Artist []IndexArtist `xml:"artist" json:"artist,omitempty"`
	Album  []Child       `xml:"album" json:"album,omitempty"`
	Song   []Child       `xml:"song" json:"song,omitempty"`
}

type Starred2 struct {
	Artist []ArtistID3 `xml:"artist" json:"artist,omitempty"`
	Album  []AlbumID3  `xml:"album" json:"album,omitempty"`
	Song   []Child     `xml:"song" json:"song,omitempty"`
}

type NowPlaying struct {
	Entry []NowPlayingEntry `xml:"entry" json:"entry,omitempty"`
}

type NowPlayingEntry struct {
	Child
	Username   string `xml:"username,attr" json:"username"`
	MinutesAgo int    `xml:"minutesAgo,attr" json:"minutesAgo"`
	PlayerName string `xml:"playerName,attr,omitempty" json:"playerName,omitempty"`
}

type Bookmarks struct {
	Bookmark []Bookmark `xml:"bookmark" json:"bookmark,omitempty"`
}

type Bookmark struct {
	Position int64     `xml:"position,attr" json:"position"`
	Username string    `xml:"username,attr" json:"username"`
	Comment  string    `xml:"comment,attr,omitempty" json:"comment,omitempty"`
	Created  time.Time `xml:"created,attr" json:"created"`
	Changed  time.Time `xml:"changed,attr" json:"changed"`
	Entry    Child     `xml:"entry" json:"entry"`
}

type PlayQueue struct {
	Current   string    `xml:"current,attr,omitempty" json:"current,omitempty"`
	Position  int64     `xml:"position,attr,omitempty" json:"position,omitempty"`
	Username  string    `xml:"username,attr" json:"username"`
	Changed   time.Time `xml:"changed,attr" json:"changed"`
	ChangedBy string    `xml:"changedBy,attr,omitempty" json:"changedBy,omitempty"`
	Entry     []Child   `xml:"entry" json:"entry,omitempty"`
}

type Playlists struct {
	Playlist []Playlist `xml:"playlist" json:"playlist,omitempty"`
}

type Playlist struct {
	ID        string    `xml:"id,attr" json:"id"`
	Name      string    `xml:"name,attr" json:"name"`
	Comment   string    `xml:"comment,attr,omitempty" json:"comment,omitempty"`
	Owner     string    `xml:"owner,attr,omitempty" json:"owner,omitempty"`
	Public    bool      `xml:"public,attr" json:"public"`
	SongCount int       `xml:"songCount,attr" json:"songCount"`
	Duration  int       `xml:"duration,attr" json:"duration"`
	Created   time.Time `xml:"created,attr" json:"created"`
	Changed   time.Time `xml:"changed,attr" json:"changed"`
	CoverArt  string    `xml:"coverArt,attr,omitempty" json:"coverArt,omitempty"`
}

type PlaylistWithSongs struct {
	Playlist
	Entry []Child `xml:"entry" json:"entry,omitempty"`
}

type Shares struct {
	Share []Share `xml:"share" json:"share,omitempty"`
}

type Share struct {
	ID          string     `xml:"id,attr" json:"id"`
	URL         string     `xml:"url,attr" json:"url"`
	Description string     `xml:"description,attr,omitempty" json:"description,omitempty"`
	Username    string     `xml:"username,attr" json:"username"`
	Created     time.Time  `xml:"created,attr" json:"created"`
	Expires     *time.Time `xml:"expires,attr,omitempty" json:"expires,omitempty"`
	LastVisited *time.Time `xml:"lastVisited,attr,omitempty" json:"lastVisited,omitempty"`
	VisitCount  int        `xml:"visitCount,attr" json:"visitCount"`
	Entry       []Child    `xml:"entry" json:"entry,omitempty"`
}

type InternetRadioStations struct {
	InternetRadioStation []InternetRadioStation `xml:"internetRadioStation" json:"internetRadioStation,omitempty"`
}

type InternetRadioStation struct {
	ID          string `xml:"id,attr" json:"id"`
	Name        string `xml:"name,attr" json:"name"`
	StreamURL   string `xml:"streamUrl,attr" json:"streamUrl"`
	HomepageURL string `xml:"homePageUrl,attr,omitempty" json:"homePageUrl,omitempty"`
}

type Lyrics struct {
	Artist string `xml:"artist,attr,omitempty" json:"artist,omitempty"`
	Title  string `xml:"title,attr,omitempty" json:"title,omitempty"`
	Value  string `xml:",chardata" json:"value,omitempty"`
}

// LyricsList is the OpenSubsonic getLyricsBySongId response.
type LyricsList struct {
	StructuredLyrics []StructuredLyrics `xml:"structuredLyrics" json:"structuredLyrics,omitempty"`
}

type StructuredLyrics struct {
	Lang          string      `xml:"lang,attr" json:"lang"`
	Synced        bool        `xml:"synced,attr" json:"synced"`
	DisplayArtist string      `xml:"displayArtist,attr,omitempty" json:"displayArtist,omitempty"`
	DisplayTitle  string      `xml:"displayTitle,attr,omitempty" json:"displayTitle,omitempty"`
	Line          []LyricLine `xml:"line" json:"line"`
}

type LyricLine struct {
	// Start offset in milliseconds, only set for synced lyrics.
	Start *int64 `xml:"start,attr,omitempty" json:"start,omitempty"`
	Value string `xml:",chardata" json:"value"`
}

type User struct {
	Username          string    `xml:"username,attr" json:"username"`
	Email             string    `xml:"email,attr,omitempty" json:"email,omitempty"`
	ScrobblingEnabled bool      `xml:"scrobblingEnabled,attr" json:"scrobblingEnabled"`
	AdminRole         bool      `xml:"adminRole,attr" json:"adminRole"`
	SettingsRole      bool      `xml:"settingsRole,attr" json:"settingsRole"`
	DownloadRole      bool      `xml:"downloadRole,attr" json:"downloadRole"`
	UploadRole        bool      `xml:"uploadRole,attr" json:"uploadRole"`
	PlaylistRole      bool      `xml:"playlistRole,attr" json:"playlistRole"`
	CoverArtRole      bool      `xml:"coverArtRole,attr" json:"coverArtRole"`
	CommentRole       bool      `xml:"commentRole,attr" json:"commentRole"`
	PodcastRole       bool      `xml:"podcastRole,attr" json:"podcastRole"`
	StreamRole        bool      `xml:"streamRole,attr" json:"streamRole"`
	JukeboxRole       bool      `xml:"jukeboxRole,attr" json:"jukeboxRole"`
	ShareRole         bool      `xml:"shareRole,attr" json:"shareRole"`
	VideoConversion   bool      `xml:"videoConversionRole,attr" json:"videoConversionRole"`
	Folder            []int     `xml:"folder" json:"folder,omitempty"`
	Created           time.Time `xml:"-" json:"-"`
}

type ScanStatus struct {
	Scanning bool  `xml:"scanning,attr" json:"scanning"`
	Count    int64 `xml:"count,attr,omitempty" json:"count,omitempty"`
}

// Package subsonic implements the Subsonic/OpenSubsonic REST API on top of
// the catalog repository. All endpoints live under /rest/ and answer in the
// subsonic-response envelope, XML by default and JSON on request.
package subsonic

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/Huuberrt/melodee-sub000/artwork"
	"github.com/Huuberrt/melodee-sub000/auth"
	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/dynamicplaylist"
	"github.com/Huuberrt/melodee-sub000/scanner"
	"github.com/Huuberrt/melodee-sub000/search"
)

// API definitions: https://www.subsonic.org/pages/api.jsp and
// https://opensubsonic.netlify.app/

type Options struct {
	Repo          database.Repository
	Authenticator *auth.Authenticator
	Artwork       *artwork.Resolver
	Playlists     *dynamicplaylist.Engine
	Scanner       *scanner.Scanner
	Index         *search.Search
	// ServerName is returned in the envelope type attribute.
	ServerName string
	// ServerVersion is returned in the envelope serverVersion attribute.
	ServerVersion string
	// BaseURL is the public URL of this server, used to build share links.
	BaseURL string
	// InviteCode gates self-service account creation. Empty disables it.
	InviteCode string
}

type Subsonic struct {
	repo          database.Repository
	authenticator *auth.Authenticator
	artwork       *artwork.Resolver
	playlists     *dynamicplaylist.Engine
	scanner       *scanner.Scanner
	index         *search.Search
	serverName    string
	serverVersion string
	baseURL       string
	inviteCode    string
}

func New(o *Options) *Subsonic {
	s := &Subsonic{
		repo:          o.Repo,
		authenticator: o.Authenticator,
		artwork:       o.Artwork,
		playlists:     o.Playlists,
		scanner:       o.Scanner,
		index:         o.Index,
		serverName:    o.ServerName,
		serverVersion: o.ServerVersion,
		baseURL:       strings.TrimSuffix(o.BaseURL, "/"),
		inviteCode:    o.InviteCode,
	}
	if s.serverName == "" {
		s.serverName = "melodee"
	}
	if s.serverVersion == "" {
		s.serverVersion = "1.0.0"
	}
	return s
}

// handlerFunc is an endpoint implementation. The call carries the parsed
// parameters and, for protected endpoints, the authenticated caller.
type handlerFunc func(w http.ResponseWriter, r *http.Request, c *inboundCall)

func (s *Subsonic) RegisterHandlers(r *mux.Router) {
	public := func(name string, handler handlerFunc) {
		s.register(r, name, handler, false)
	}
	protected := func(name string, handler handlerFunc) {
		s.register(r, name, handler, true)
	}

	public("ping", s.pingHandler)
	public("getOpenSubsonicExtensions", s.openSubsonicExtensionsHandler)
	protected("getLicense", s.getLicenseHandler)

	protected("getMusicFolders", s.getMusicFoldersHandler)
	protected("getIndexes", s.getIndexesHandler)
	protected("getMusicDirectory", s.getMusicDirectoryHandler)
	protected("getArtists", s.getArtistsHandler)
	protected("getArtist", s.getArtistHandler)
	protected("getAlbum", s.getAlbumHandler)
	protected("getSong", s.getSongHandler)
	protected("getGenres", s.getGenresHandler)

	protected("getAlbumList", s.getAlbumListHandler)
	protected("getAlbumList2", s.getAlbumList2Handler)
	protected("getRandomSongs", s.getRandomSongsHandler)
	protected("getSongsByGenre", s.getSongsByGenreHandler)
	protected("getStarred", s.getStarredHandler)
	protected("getStarred2", s.getStarred2Handler)

	protected("search2", s.search2Handler)
	protected("search3", s.search3Handler)

	protected("star", s.starHandler)
	protected("unstar", s.unstarHandler)
	protected("setRating", s.setRatingHandler)
	protected("scrobble", s.scrobbleHandler)
	protected("getNowPlaying", s.getNowPlayingHandler)

	protected("getBookmarks", s.getBookmarksHandler)
	protected("createBookmark", s.createBookmarkHandler)
	protected("deleteBookmark", s.deleteBookmarkHandler)
	protected("getPlayQueue", s.getPlayQueueHandler)
	protected("savePlayQueue", s.savePlayQueueHandler)

	protected("getInternetRadioStations", s.getInternetRadioStationsHandler)
	protected("createInternetRadioStation", s.createInternetRadioStationHandler)
	protected("updateInternetRadioStation", s.updateInternetRadioStationHandler)
	protected("deleteInternetRadioStation", s.deleteInternetRadioStationHandler)

	protected("getPlaylists", s.getPlaylistsHandler)
	protected("getPlaylist", s.getPlaylistHandler)
	protected("createPlaylist", s.createPlaylistHandler)
	protected("updatePlaylist", s.updatePlaylistHandler)
	protected("deletePlaylist", s.deletePlaylistHandler)

	protected("stream", s.streamHandler)
	protected("download", s.downloadHandler)
	protected("getCoverArt", s.getCoverArtHandler)
	protected("getAvatar", s.getAvatarHandler)
	protected("getLyrics", s.getLyricsHandler)
	protected("getLyricsBySongId", s.getLyricsBySongIDHandler)

	protected("getShares", s.getSharesHandler)
	protected("createShare", s.createShareHandler)
	protected("updateShare", s.updateShareHandler)
	protected("deleteShare", s.deleteShareHandler)

	protected("createUser", s.createUserHandler)
	protected("getUser", s.getUserHandler)

	protected("startScan", s.startScanHandler)
	protected("getScanStatus", s.getScanStatusHandler)
}

// register mounts one endpoint at /rest/{name} and /rest/{name}.view,
// wrapped with parameter parsing, authentication and panic recovery.
func (s *Subsonic) register(r *mux.Router, name string, handler handlerFunc, authRequired bool) {
	wrapped := handlers.CompressHandler(s.wrap(handler, authRequired))
	r.Handle("/rest/"+name, wrapped)
	r.Handle("/rest/"+name+".view", wrapped)
}

func (s *Subsonic) wrap(handler handlerFunc, authRequired bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := parseCall(r)
		defer func() {
			if p := recover(); p != nil {
				log.Printf("subsonic: panic serving %s: %v", r.URL.Path, p)
				s.serveError(w, c, errorGeneric, "internal error")
			}
		}()

		user, ok := s.authenticator.Authenticate(r.Context(), c.credentials(authRequired))
		if !ok {
			s.serveError(w, c, errorWrongCredentials, "wrong username or password")
			return
		}
		c.user = user

		if err := r.Context().Err(); err != nil {
			return
		}
		handler(w, r, c)
	})
}

// serveRepoError maps a repository error onto the envelope: ErrNotFound gets
// the not-found code, everything else the generic one.
func (s *Subsonic) serveRepoError(w http.ResponseWriter, c *inboundCall, err error) {
	if err == nil {
		return
	}
	if isNotFound(err) {
		s.serveError(w, c, errorNotFound, "not found")
		return
	}
	log.Printf("subsonic: repository error: %v", err)
	s.serveError(w, c, errorGeneric, "internal error")
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound) || errors.Is(err, dynamicplaylist.ErrUnknownPlaylist)
}

// optTime turns a zero time into nil so the attribute is omitted.
func optTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

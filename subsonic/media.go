package subsonic

import (
	"io"
	"log"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/httprange"
)

// streamHandler serves the media file of a song. Range requests are honored
// with a 206 so players can seek; transcoding is not offered, a timeOffset
// parameter fails fast instead of silently serving from the start.
func (s *Subsonic) streamHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	s.serveMedia(w, r, c, true)
}

// downloadHandler serves the full original file.
func (s *Subsonic) downloadHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	s.serveMedia(w, r, c, false)
}

func (s *Subsonic) serveMedia(w http.ResponseWriter, r *http.Request, c *inboundCall, allowRange bool) {
	if allowRange && c.has("timeOffset") && c.intParam("timeOffset", 0) != 0 {
		s.serveError(w, c, errorGeneric, "transcoding is not supported")
		return
	}

	song, code, message := s.songFromIDParam(r, c)
	if code >= 0 {
		s.serveError(w, c, code, message)
		return
	}

	file, err := os.Open(song.Path)
	if err != nil {
		log.Printf("subsonic: opening %s: %v", song.Path, err)
		s.serveError(w, c, errorNotFound, "media file unavailable")
		return
	}
	defer file.Close()

	size := song.Size
	if fi, err := file.Stat(); err == nil {
		size = fi.Size()
	}

	w.Header().Set("Content-Type", song.ContentType)
	w.Header().Set("Accept-Ranges", "bytes")

	if allowRange {
		if br, ok := httprange.Parse(r.Header.Get("Range"), size); ok {
			if _, err := file.Seek(br.Start, io.SeekStart); err != nil {
				s.serveError(w, c, errorGeneric, "internal error")
				return
			}
			w.Header().Set("Content-Length", strconv.FormatInt(br.Length(), 10))
			w.Header().Set("Content-Range", br.ContentRange(size))
			w.WriteHeader(http.StatusPartialContent)
			io.CopyN(w, file, br.Length())
			return
		}
	}

	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	io.Copy(w, file)
}

// songFromIDParam resolves the id parameter to a song. A negative code means
// success; otherwise the caller serves the error envelope.
func (s *Subsonic) songFromIDParam(r *http.Request, c *inboundCall) (*model.Song, int, string) {
	id, present, err := c.idParam("id")
	if !present {
		return nil, errorMissingParameter, "required parameter id is missing"
	}
	if err != nil {
		return nil, errorNotFound, "not found"
	}
	songID, ok := id.As(apikey.KindSong)
	if !ok {
		return nil, errorNotFound, "not found"
	}
	song, err := s.repo.GetSong(r.Context(), songID)
	if err != nil {
		if isNotFound(err) {
			return nil, errorNotFound, "not found"
		}
		return nil, errorGeneric, "internal error"
	}
	return song, -1, ""
}

// getCoverArtHandler serves resolved artwork. The ETag allows clients to
// revalidate cheaply; placeholder responses carry a sentinel tag so they are
// re-fetched once real art appears.
func (s *Subsonic) getCoverArtHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	if err != nil {
		s.serveError(w, c, errorNotFound, "not found")
		return
	}
	s.serveArt(w, r, c, id)
}

// getAvatarHandler serves the avatar image of a user, looked up by username.
func (s *Subsonic) getAvatarHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	username := c.param("username")
	if username == "" {
		s.serveError(w, c, errorMissingParameter, "required parameter username is missing")
		return
	}
	user, err := s.repo.GetUser(r.Context(), username)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serveArt(w, r, c, apikey.New(apikey.KindUser, user.ID))
}

func (s *Subsonic) serveArt(w http.ResponseWriter, r *http.Request, c *inboundCall, id apikey.ID) {
	art, err := s.artwork.Get(r.Context(), id, c.param("size"))
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	if match := r.Header.Get("If-None-Match"); match != "" && match == art.ETag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", art.ETag)
	w.Header().Set("Content-Type", art.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Bytes)))
	w.Write(art.Bytes)
}

// getLyricsHandler looks lyrics up by artist and title. The response is
// always ok; an empty lyrics element means nothing was found, matching what
// clients expect from this legacy endpoint.
func (s *Subsonic) getLyricsHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	artist := c.param("artist")
	title := c.param("title")

	response := s.newResponse()
	response.Lyrics = &Lyrics{Artist: artist, Title: title}

	song, err := s.repo.FindSongByTitle(r.Context(), artist, title)
	if err == nil {
		if text, synced, ok := sidecarLyrics(song.Path); ok {
			if synced {
				text = stripLyricTimestamps(text)
			}
			response.Lyrics.Value = text
		}
	} else if !isNotFound(err) {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, response)
}

// getLyricsBySongIDHandler is the OpenSubsonic structured variant. A .lrc
// sidecar produces synced lines, a .txt one unsynced; no sidecar means an
// empty list, still status ok.
func (s *Subsonic) getLyricsBySongIDHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	song, code, message := s.songFromIDParam(r, c)
	if code >= 0 {
		s.serveError(w, c, code, message)
		return
	}

	response := s.newResponse()
	response.LyricsList = &LyricsList{StructuredLyrics: []StructuredLyrics{}}

	if text, synced, ok := sidecarLyrics(song.Path); ok {
		entry := StructuredLyrics{
			Lang:          "und",
			Synced:        synced,
			DisplayArtist: song.Artist,
			DisplayTitle:  song.Title,
		}
		if synced {
			entry.Line = parseLRC(text)
		} else {
			for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
				entry.Line = append(entry.Line, LyricLine{Value: line})
			}
		}
		response.LyricsList.StructuredLyrics = append(response.LyricsList.StructuredLyrics, entry)
	}
	s.serve(w, c, response)
}

// sidecarLyrics loads lyrics sitting next to the media file, preferring the
// synced .lrc form over plain .txt.
func sidecarLyrics(mediaPath string) (text string, synced, ok bool) {
	base := strings.TrimSuffix(mediaPath, "."+suffixOf(mediaPath))
	if data, err := os.ReadFile(base + ".lrc"); err == nil {
		return string(data), true, true
	}
	if data, err := os.ReadFile(base + ".txt"); err == nil {
		return string(data), false, true
	}
	return "", false, false
}

func suffixOf(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return ""
}

var lrcLine = regexp.MustCompile(`^\[(\d+):(\d+)(?:\.(\d+))?\](.*)$`)

// parseLRC turns "[mm:ss.xx] text" lines into timestamped lyric lines.
// Metadata tags like [ar:...] do not match the timestamp shape and are
// dropped.
func parseLRC(text string) []LyricLine {
	var lines []LyricLine
	for _, raw := range strings.Split(text, "\n") {
		m := lrcLine.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}
		minutes, _ := strconv.ParseInt(m[1], 10, 64)
		seconds, _ := strconv.ParseInt(m[2], 10, 64)
		start := (minutes*60 + seconds) * 1000
		if m[3] != "" {
			// fractional part, hundredths or thousandths
			frac, _ := strconv.ParseInt(m[3], 10, 64)
			switch len(m[3]) {
			case 2:
				start += frac * 10
			case 3:
				start += frac
			}
		}
		lines = append(lines, LyricLine{Start: &start, Value: strings.TrimSpace(m[4])})
	}
	return lines
}

// stripLyricTimestamps flattens an .lrc body to plain text.
func stripLyricTimestamps(text string) string {
	var b strings.Builder
	for _, line := range parseLRC(text) {
		b.WriteString(line.Value)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

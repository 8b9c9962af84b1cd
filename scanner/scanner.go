// Package scanner walks the configured music folders and keeps the catalog
// database and the search index in sync with what is on disk. Layout is
// `Artist/Album (year)/nn - title.ext`, id3 tags win over filenames for mp3.
package scanner

import (
	"context"
	"log"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/bogem/id3v2"
	"github.com/djherbis/times"
	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/search"
)

var (
	isAudio     = regexp.MustCompile(`^(.+)\.(mp3|flac|ogg|oga|opus|m4a|aac|wav)$`)
	isCover     = regexp.MustCompile(`^(cover|folder|front|album)\.(jpg|jpeg|png)$`)
	isArtistImg = regexp.MustCompile(`^(artist|poster|folder)\.(jpg|jpeg|png)$`)
	isYear      = regexp.MustCompile(` \(([0-9]{4})\)$`)
	// `01 - title`, `01. title`, `01 title` or plain `title`.
	isTrack = regexp.MustCompile(`^([0-9]{1,3})[ .\-_]+(.+)$`)
)

var contentTypes = map[string]string{
	"mp3":  "audio/mpeg",
	"flac": "audio/flac",
	"ogg":  "audio/ogg",
	"oga":  "audio/ogg",
	"opus": "audio/opus",
	"m4a":  "audio/mp4",
	"aac":  "audio/aac",
	"wav":  "audio/wav",
}

// Folder is one configured top-level music directory.
type Folder struct {
	ID   int
	Name string
	Path string
}

type Options struct {
	Folders []Folder
	Repo    database.Repository
	Index   *search.Search
}

// Scanner walks music folders and upserts catalog rows.
type Scanner struct {
	folders []Folder
	repo    database.Repository
	index   *search.Search

	mu       sync.Mutex
	scanning bool
	count    int64
	lastScan time.Time
}

// New creates a new Scanner with the provided options.
func New(options *Options) *Scanner {
	return &Scanner{
		folders: options.Folders,
		repo:    options.Repo,
		index:   options.Index,
	}
}

// Folders returns the configured music folders.
func (s *Scanner) Folders() []Folder {
	return s.folders
}

// Status reports whether a scan is running and the number of songs seen by
// the last (or running) scan.
func (s *Scanner) Status() (scanning bool, count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning, s.count
}

// Start kicks off a background scan. Returns false when one is already
// running.
func (s *Scanner) Start(ctx context.Context) bool {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return false
	}
	s.scanning = true
	s.count = 0
	s.mu.Unlock()

	go func() {
		if err := s.scan(ctx); err != nil {
			log.Printf("scanner: scan failed: %v", err)
		}
		s.mu.Lock()
		s.scanning = false
		s.lastScan = time.Now()
		s.mu.Unlock()
	}()
	return true
}

// Scan runs a full scan synchronously. Used at startup and in tests.
func (s *Scanner) Scan(ctx context.Context) error {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil
	}
	s.scanning = true
	s.count = 0
	s.mu.Unlock()

	err := s.scan(ctx)

	s.mu.Lock()
	s.scanning = false
	s.lastScan = time.Now()
	s.mu.Unlock()
	return err
}

func (s *Scanner) scan(ctx context.Context) error {
	log.Printf("scanner: scanning %d folders", len(s.folders))

	var docs []search.Document
	for _, folder := range s.folders {
		d, err := s.scanFolder(ctx, folder)
		if err != nil {
			log.Printf("scanner: folder %s: %v", folder.Path, err)
			continue
		}
		docs = append(docs, d...)
	}

	if s.index != nil {
		if err := s.index.IndexBatch(ctx, docs); err != nil {
			return err
		}
	}

	log.Printf("scanner: indexed %d documents", len(docs))
	return nil
}

// scanFolder walks one music folder: every subdirectory is an artist, every
// directory below that an album.
func (s *Scanner) scanFolder(ctx context.Context, folder Folder) ([]search.Document, error) {
	entries, err := os.ReadDir(folder.Path)
	if err != nil {
		return nil, err
	}

	var docs []search.Document
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		d, err := s.scanArtist(ctx, folder, name)
		if err != nil {
			log.Printf("scanner: artist %s: %v", name, err)
			continue
		}
		docs = append(docs, d...)
	}
	return docs, nil
}

func (s *Scanner) scanArtist(ctx context.Context, folder Folder, dir string) ([]search.Document, error) {
	artistDir := path.Join(folder.Path, dir)
	entries, err := os.ReadDir(artistDir)
	if err != nil {
		return nil, err
	}

	artist := model.Artist{
		ID:       catalogID("artist", dir),
		Name:     dir,
		SortName: makeSortName(dir),
	}

	var albumDirs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if !strings.HasPrefix(name, ".") {
				albumDirs = append(albumDirs, name)
			}
			continue
		}
		if isArtistImg.MatchString(strings.ToLower(name)) {
			artist.ImagePath = path.Join(artistDir, name)
		}
	}
	if len(albumDirs) == 0 {
		return nil, nil
	}
	sort.Strings(albumDirs)
	artist.AlbumCount = len(albumDirs)

	if err := s.repo.UpsertArtist(ctx, &artist); err != nil {
		return nil, err
	}

	docs := []search.Document{{
		ID:        apikey.ID{Kind: apikey.KindArtist, UUID: artist.ID}.String(),
		Kind:      search.KindArtist,
		Name:      strings.ToLower(artist.Name),
		NameExact: strings.ToLower(artist.Name),
		SortName:  strings.ToLower(artist.SortName),
	}}

	for _, albumDir := range albumDirs {
		d, err := s.scanAlbum(ctx, &artist, artistDir, albumDir)
		if err != nil {
			log.Printf("scanner: album %s/%s: %v", dir, albumDir, err)
			continue
		}
		docs = append(docs, d...)
	}
	return docs, nil
}

func (s *Scanner) scanAlbum(ctx context.Context, artist *model.Artist, artistDir, dir string) ([]search.Document, error) {
	albumDir := path.Join(artistDir, dir)
	entries, err := os.ReadDir(albumDir)
	if err != nil {
		return nil, err
	}

	albumName := dir
	year := 0
	if m := isYear.FindStringSubmatch(dir); len(m) > 0 {
		year = parseInt(m[1])
		albumName = strings.TrimSuffix(dir, m[0])
	}

	album := model.Album{
		ID:       catalogID("album", artist.Name+"/"+albumName),
		ArtistID: artist.ID,
		Artist:   artist.Name,
		Name:     albumName,
		SortName: makeSortName(albumName),
		Year:     year,
	}

	var songs []model.Song
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if isCover.MatchString(strings.ToLower(name)) {
			album.CoverPath = path.Join(albumDir, name)
			continue
		}
		m := isAudio.FindStringSubmatch(name)
		if len(m) == 0 {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		song := buildSong(&album, albumDir, name, m[1], strings.ToLower(m[2]), fi)
		songs = append(songs, song)
	}
	if len(songs) == 0 {
		return nil, nil
	}

	sort.Slice(songs, func(i, j int) bool {
		if songs[i].Disc != songs[j].Disc {
			return songs[i].Disc < songs[j].Disc
		}
		if songs[i].Track != songs[j].Track {
			return songs[i].Track < songs[j].Track
		}
		return songs[i].Title < songs[j].Title
	})

	album.SongCount = len(songs)
	for i := range songs {
		album.Duration += songs[i].Duration
		if album.Genre == "" {
			album.Genre = songs[i].Genre
		}
		if album.Year == 0 {
			album.Year = songs[i].Year
		}
		if album.Created.IsZero() || songs[i].Created.Before(album.Created) {
			album.Created = songs[i].Created
		}
	}

	if err := s.repo.UpsertAlbum(ctx, &album); err != nil {
		return nil, err
	}

	docs := []search.Document{{
		ID:        apikey.ID{Kind: apikey.KindAlbum, UUID: album.ID}.String(),
		Kind:      search.KindAlbum,
		Name:      strings.ToLower(album.Name),
		NameExact: strings.ToLower(album.Name),
		SortName:  strings.ToLower(album.SortName),
		Artist:    strings.ToLower(album.Artist),
		Genre:     strings.ToLower(album.Genre),
	}}

	for i := range songs {
		// fill in values only known after the album pass
		if songs[i].Year == 0 {
			songs[i].Year = album.Year
		}
		if songs[i].Genre == "" {
			songs[i].Genre = album.Genre
		}
		if err := s.repo.UpsertSong(ctx, &songs[i]); err != nil {
			log.Printf("scanner: song %s: %v", songs[i].Path, err)
			continue
		}
		s.mu.Lock()
		s.count++
		s.mu.Unlock()
		docs = append(docs, search.Document{
			ID:        apikey.ID{Kind: apikey.KindSong, UUID: songs[i].ID}.String(),
			Kind:      search.KindSong,
			Name:      strings.ToLower(songs[i].Title),
			NameExact: strings.ToLower(songs[i].Title),
			Artist:    strings.ToLower(songs[i].Artist),
			Album:     strings.ToLower(songs[i].Album),
			Genre:     strings.ToLower(songs[i].Genre),
		})
	}
	return docs, nil
}

// buildSong derives a song from its filename and file metadata, then lets
// id3 tags override for mp3 files.
func buildSong(album *model.Album, albumDir, fileName, baseName, suffix string, fi os.FileInfo) model.Song {
	fullPath := path.Join(albumDir, fileName)

	song := model.Song{
		ID:          catalogID("song", fullPath),
		AlbumID:     album.ID,
		ArtistID:    album.ArtistID,
		Album:       album.Name,
		Artist:      album.Artist,
		Title:       baseName,
		Year:        album.Year,
		Path:        fullPath,
		Suffix:      suffix,
		ContentType: contentTypes[suffix],
		Size:        fi.Size(),
		Created:     createTime(fi),
	}

	if m := isTrack.FindStringSubmatch(baseName); len(m) > 0 {
		song.Track = parseInt(m[1])
		song.Title = m[2]
	}

	if suffix == "mp3" {
		applyID3(fullPath, &song)
	}
	return song
}

// applyID3 overrides filename-derived metadata with id3 tag values.
func applyID3(path string, song *model.Song) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return
	}
	defer tag.Close()

	if v := tag.Title(); v != "" {
		song.Title = v
	}
	if v := tag.Artist(); v != "" {
		song.Artist = v
	}
	if v := tag.Album(); v != "" {
		song.Album = v
	}
	if v := tag.Genre(); v != "" {
		song.Genre = v
	}
	if v := parseInt(tag.Year()); v != 0 {
		song.Year = v
	}
	// TRCK and TPOS can be `n` or `n/total`.
	if v := firstInt(tag.GetTextFrame(tag.CommonID("Track number/Position in set")).Text); v != 0 {
		song.Track = v
	}
	if v := firstInt(tag.GetTextFrame(tag.CommonID("Part of a set")).Text); v != 0 {
		song.Disc = v
	}
	// TLEN is the length in milliseconds.
	if v := parseInt(tag.GetTextFrame("TLEN").Text); v != 0 {
		song.Duration = v / 1000
		if song.Duration > 0 {
			song.BitRate = int(song.Size * 8 / int64(song.Duration) / 1000)
		}
	}
}

// createTime returns file creation time where the filesystem records it,
// modification time otherwise.
func createTime(fi os.FileInfo) time.Time {
	ts := times.Get(fi)
	if ts.HasBirthTime() {
		return ts.BirthTime()
	}
	return fi.ModTime()
}

// catalogID derives a stable id from the entity's catalog key, so rescans
// update rows instead of duplicating them.
func catalogID(kind, key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+"|"+key))
}

// makeSortName returns a name suitable for sorting: lowercased, leading
// articles and punctuation removed.
func makeSortName(name string) string {
	title := strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(title, prefix) {
			title = strings.TrimSpace(title[len(prefix):])
			break
		}
	}
	title = strings.TrimLeftFunc(title, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return title
}

func firstInt(s string) int {
	if idx := strings.IndexByte(s, '/'); idx >= 0 {
		s = s[:idx]
	}
	return parseInt(strings.TrimSpace(s))
}

func parseInt(s string) (i int) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		i = int(n)
	}
	return
}

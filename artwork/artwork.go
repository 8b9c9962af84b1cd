// Package artwork resolves any addressable entity to image bytes with an
// ETag. Dispatch is by identity kind; entities without a real image get a
// built-in placeholder under a sentinel ETag so clients can cache negative
// results too.
package artwork

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/cache"
	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/idhash"
	"github.com/Huuberrt/melodee-sub000/imageresize"
)

// PlaceholderETag marks responses carrying a built-in placeholder instead
// of real artwork.
const PlaceholderETag = "placeholder"

// Art is a resolved artwork response.
type Art struct {
	Bytes []byte
	ETag  string
	MIME  string
}

type Options struct {
	Repo    database.Repository
	Resizer *imageresize.Resizer
	Cache   *cache.Cache
	// DynamicPlaylistDir is where dynamic playlist definitions live;
	// an image file named after the definition id is its artwork.
	DynamicPlaylistDir string
	// AvatarDir holds per-username avatar images.
	AvatarDir string
	// SizeBuckets maps named size buckets to pixel dimensions.
	SizeBuckets map[string]int
}

type Resolver struct {
	repo        database.Repository
	resizer     *imageresize.Resizer
	cache       *cache.Cache
	dplDir      string
	avatarDir   string
	sizeBuckets map[string]int
}

// DefaultSizeBuckets are used when the config does not define any.
var DefaultSizeBuckets = map[string]int{
	"small":  64,
	"medium": 256,
	"large":  1024,
}

func New(o Options) *Resolver {
	r := &Resolver{
		repo:        o.Repo,
		resizer:     o.Resizer,
		cache:       o.Cache,
		dplDir:      o.DynamicPlaylistDir,
		avatarDir:   o.AvatarDir,
		sizeBuckets: o.SizeBuckets,
	}
	if len(r.sizeBuckets) == 0 {
		r.sizeBuckets = DefaultSizeBuckets
	}
	return r
}

// Get resolves artwork for an identity at a size bucket. size is a named
// bucket ("small", "medium", "large"), a pixel count, or empty for the
// original. Concurrent first requests for the same (identity, size)
// collapse into one resolution.
func (r *Resolver) Get(ctx context.Context, id apikey.ID, size string) (Art, error) {
	key := id.String() + "|" + size
	value, err := r.cache.GetOrCompute(key, func() (any, error) {
		return r.resolve(ctx, id, size)
	})
	if err != nil {
		return Art{}, err
	}
	return value.(Art), nil
}

func (r *Resolver) resolve(ctx context.Context, id apikey.ID, size string) (Art, error) {
	switch id.Kind {
	case apikey.KindArtist:
		artist, err := r.repo.GetArtist(ctx, id.UUID)
		if err != nil {
			return Art{}, err
		}
		return r.fromFile(artist.ImagePath, size)
	case apikey.KindAlbum:
		album, err := r.repo.GetAlbum(ctx, id.UUID)
		if err != nil {
			return Art{}, err
		}
		return r.fromFile(album.CoverPath, size)
	case apikey.KindSong:
		song, err := r.repo.GetSong(ctx, id.UUID)
		if err != nil {
			return Art{}, err
		}
		album, err := r.repo.GetAlbum(ctx, song.AlbumID)
		if err != nil {
			return r.placeholder(), nil
		}
		return r.fromFile(album.CoverPath, size)
	case apikey.KindPlaylist:
		if _, err := r.repo.GetPlaylist(ctx, id.UUID); err != nil {
			return Art{}, err
		}
		// playlists have no photo to scale
		return r.playlistPlaceholder(), nil
	case apikey.KindDynamicPlaylist:
		return r.dynamicPlaylistArt(id.UUID), nil
	case apikey.KindUser:
		user, err := r.repo.GetUserByID(ctx, id.UUID)
		if err != nil {
			return Art{}, err
		}
		return r.avatarArt(user, size)
	}
	return Art{}, model.ErrNotFound
}

// fromFile loads and, when asked, resizes a real image file. A missing or
// unreadable file degrades to the placeholder.
func (r *Resolver) fromFile(filename, size string) (Art, error) {
	if filename == "" {
		return r.placeholder(), nil
	}
	info, err := os.Stat(filename)
	if err != nil {
		return r.placeholder(), nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return r.placeholder(), nil
	}

	mime := mimeByExtension(filename)
	// ETag covers source identity and the size bucket so differently
	// sized variants never collide.
	etag := idhash.Hash(fmt.Sprintf("%s|%d|%d|%s", filename, info.ModTime().UnixNano(), info.Size(), size))

	px := r.bucketPixels(size)
	if px > 0 {
		resized, resizedMime, err := r.resizer.Fit(data, px)
		if err == nil {
			data = resized
			mime = resizedMime
		}
	}
	return Art{Bytes: data, ETag: etag, MIME: mime}, nil
}

// dynamicPlaylistArt serves the image file sitting next to the definition,
// or the animated placeholder. Dynamic playlist art is never resized.
func (r *Resolver) dynamicPlaylistArt(id uuid.UUID) Art {
	for _, ext := range []string{".gif", ".png", ".jpg", ".jpeg"} {
		filename := filepath.Join(r.dplDir, id.String()+ext)
		info, err := os.Stat(filename)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filename)
		if err != nil {
			continue
		}
		etag := idhash.Hash(fmt.Sprintf("%s|%d|%d", filename, info.ModTime().UnixNano(), info.Size()))
		return Art{Bytes: data, ETag: etag, MIME: mimeByExtension(filename)}
	}
	return r.playlistPlaceholder()
}

func (r *Resolver) avatarArt(user *model.User, size string) (Art, error) {
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".gif"} {
		filename := filepath.Join(r.avatarDir, user.Username+ext)
		if _, err := os.Stat(filename); err == nil {
			return r.fromFile(filename, size)
		}
	}
	return r.placeholder(), nil
}

func (r *Resolver) placeholder() Art {
	return Art{Bytes: placeholderPNG, ETag: PlaceholderETag, MIME: "image/png"}
}

func (r *Resolver) playlistPlaceholder() Art {
	return Art{Bytes: placeholderGIF, ETag: PlaceholderETag, MIME: "image/gif"}
}

// bucketPixels translates a size parameter to a pixel dimension. 0 means
// serve the original.
func (r *Resolver) bucketPixels(size string) int {
	if size == "" {
		return 0
	}
	if px, ok := r.sizeBuckets[strings.ToLower(size)]; ok {
		return px
	}
	if px, err := strconv.Atoi(size); err == nil && px > 0 {
		return px
	}
	return 0
}

// mimeByExtension returns the mime type based on the file extension.
func mimeByExtension(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

// Package dynamicplaylist evaluates declarative, file-defined playlist
// selection rules against the live catalog. Definitions are JSON files in a
// configured directory, re-read on every listing; membership is computed
// per request and never persisted.
package dynamicplaylist

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/auth"
	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/model"
)

// ErrUnknownPlaylist is returned for ids that do not resolve to a visible
// definition. Invisible and nonexistent definitions are indistinguishable.
var ErrUnknownPlaylist = errors.New("unknown playlist")

// Definition is one dynamic playlist rule file.
type Definition struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	IsEnabled bool      `json:"isEnabled"`
	IsPublic  bool      `json:"isPublic"`
	// ForUser is the owning username; empty means server-owned.
	ForUser string `json:"forUser"`
	Filter  Filter `json:"filter"`
	// OrderBy is a whitelisted sort expression like "playCount desc";
	// empty means random order.
	OrderBy string `json:"orderBy"`
	// Limit caps the materialized song count; 0 uses the engine default.
	Limit int `json:"limit"`
}

// Playlist is a materialized dynamic playlist: the definition plus what it
// currently matches. Carries the definition's own id so it can be addressed
// exactly like a stored playlist.
type Playlist struct {
	ID        apikey.ID
	Name      string
	Comment   string
	Owner     string
	Public    bool
	SongCount int
	// Duration in seconds, aggregated over the same capped set SongCount
	// describes.
	Duration  int
	Changed   time.Time
	IsDynamic bool
}

type Options struct {
	Repo database.SongRepo
	// Dir is the definition file directory.
	Dir string
	// DefaultLimit applies to definitions without their own cap.
	DefaultLimit int
}

type Engine struct {
	repo         database.SongRepo
	dir          string
	defaultLimit int
}

func New(o Options) *Engine {
	e := &Engine{
		repo:         o.Repo,
		dir:          o.Dir,
		defaultLimit: o.DefaultLimit,
	}
	if e.defaultLimit <= 0 {
		e.defaultLimit = 500
	}
	return e
}

// load re-reads every definition file. Unparseable files are logged and
// skipped so one bad definition never breaks the listing.
func (e *Engine) load() []Definition {
	entries, err := os.ReadDir(e.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("dynamicplaylist: reading %s: %v", e.dir, err)
		}
		return nil
	}

	var definitions []Definition
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		filename := filepath.Join(e.dir, entry.Name())
		data, err := os.ReadFile(filename)
		if err != nil {
			log.Printf("dynamicplaylist: reading %s: %v", filename, err)
			continue
		}
		var definition Definition
		if err := json.Unmarshal(data, &definition); err != nil {
			log.Printf("dynamicplaylist: parsing %s: %v", filename, err)
			continue
		}
		if definition.ID == uuid.Nil || definition.Name == "" {
			log.Printf("dynamicplaylist: %s misses id or name, skipped", filename)
			continue
		}
		definitions = append(definitions, definition)
	}
	return definitions
}

// visible reports whether the requester may see a definition. Checked
// before any query is built from it.
func visible(definition Definition, requester auth.Identity) bool {
	if !definition.IsEnabled {
		return false
	}
	return definition.IsPublic || (definition.ForUser != "" && definition.ForUser == requester.Username)
}

// List materializes every definition visible to the requester. Definitions
// that fail to compile or execute are logged and skipped.
func (e *Engine) List(ctx context.Context, requester auth.Identity) []Playlist {
	var playlists []Playlist
	for _, definition := range e.load() {
		if !visible(definition, requester) {
			continue
		}
		playlist, err := e.materialize(ctx, definition, requester)
		if err != nil {
			log.Printf("dynamicplaylist: materializing %q: %v", definition.Name, err)
			continue
		}
		playlists = append(playlists, playlist)
	}
	return playlists
}

// Resolve materializes one definition by id. Unknown, invisible and
// failing definitions all surface as ErrUnknownPlaylist.
func (e *Engine) Resolve(ctx context.Context, requester auth.Identity, id uuid.UUID) (Playlist, error) {
	for _, definition := range e.load() {
		if definition.ID != id {
			continue
		}
		if !visible(definition, requester) {
			return Playlist{}, ErrUnknownPlaylist
		}
		playlist, err := e.materialize(ctx, definition, requester)
		if err != nil {
			log.Printf("dynamicplaylist: materializing %q: %v", definition.Name, err)
			return Playlist{}, ErrUnknownPlaylist
		}
		return playlist, nil
	}
	return Playlist{}, ErrUnknownPlaylist
}

// Songs returns a page of the songs a definition currently matches.
func (e *Engine) Songs(ctx context.Context, requester auth.Identity, id uuid.UUID, offset, count int) ([]model.Song, error) {
	definition, err := e.definition(id, requester)
	if err != nil {
		return nil, err
	}
	search, err := e.compile(definition, requester)
	if err != nil {
		log.Printf("dynamicplaylist: compiling %q: %v", definition.Name, err)
		return nil, ErrUnknownPlaylist
	}

	limit := e.limitOf(definition)
	if offset >= limit {
		return nil, nil
	}
	if count <= 0 || offset+count > limit {
		count = limit - offset
	}
	search.Limit = count
	search.Offset = offset
	return e.repo.FindSongs(ctx, search)
}

func (e *Engine) definition(id uuid.UUID, requester auth.Identity) (Definition, error) {
	for _, definition := range e.load() {
		if definition.ID == id {
			if !visible(definition, requester) {
				return Definition{}, ErrUnknownPlaylist
			}
			return definition, nil
		}
	}
	return Definition{}, ErrUnknownPlaylist
}

func (e *Engine) compile(definition Definition, requester auth.Identity) (database.SongSearch, error) {
	where, args, err := definition.Filter.Compile(requester.ID)
	if err != nil {
		return database.SongSearch{}, err
	}
	orderBy, err := compileOrderBy(definition.OrderBy)
	if err != nil {
		return database.SongSearch{}, err
	}
	return database.SongSearch{
		Where:   where,
		Args:    args,
		OrderBy: orderBy,
	}, nil
}

func (e *Engine) materialize(ctx context.Context, definition Definition, requester auth.Identity) (Playlist, error) {
	search, err := e.compile(definition, requester)
	if err != nil {
		return Playlist{}, err
	}
	// cap the aggregation so SongCount and Duration describe the same
	// capped set a listing would return
	search.Limit = e.limitOf(definition)
	count, duration, err := e.repo.CountSongs(ctx, search)
	if err != nil {
		return Playlist{}, err
	}
	return Playlist{
		ID:        apikey.New(apikey.KindDynamicPlaylist, definition.ID),
		Name:      definition.Name,
		Comment:   definition.Comment,
		Owner:     definition.ForUser,
		Public:    definition.IsPublic,
		SongCount: count,
		Duration:  duration,
		Changed:   time.Now().UTC(),
		IsDynamic: true,
	}, nil
}

func (e *Engine) limitOf(definition Definition) int {
	if definition.Limit > 0 {
		return definition.Limit
	}
	return e.defaultLimit
}

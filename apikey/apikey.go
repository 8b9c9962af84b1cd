// Package apikey implements the opaque, type-tagged resource identifiers
// used on the wire. Every catalog entity is addressed by a single string of
// the shape "<kind>_<uuid>" so clients never need to know what kind of thing
// an id refers to.
package apikey

import (
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

// Kind is the resource type an ID is tagged with.
type Kind string

const (
	KindArtist   Kind = "artist"
	KindAlbum    Kind = "album"
	KindSong     Kind = "song"
	KindPlaylist Kind = "playlist"
	// KindDynamicPlaylist tags playlists whose membership is computed from a
	// definition file rather than stored.
	KindDynamicPlaylist Kind = "dpl"
	KindUser            Kind = "user"
	// KindUnknown is the result of a tolerant parse of an untagged value.
	KindUnknown Kind = ""
)

// separator between kind tag and raw id. Must never occur in a kind tag.
const separator = "_"

// ID is a decoded resource identifier.
type ID struct {
	Kind Kind
	UUID uuid.UUID
}

// New returns the identifier for a resource of the given kind.
func New(kind Kind, id uuid.UUID) ID {
	return ID{Kind: kind, UUID: id}
}

// String renders the wire form of the identifier.
func (id ID) String() string {
	if id.Kind == KindUnknown {
		return id.UUID.String()
	}
	return string(id.Kind) + separator + id.UUID.String()
}

// IsZero reports whether the identifier carries no raw id at all.
func (id ID) IsZero() bool {
	return id.UUID == uuid.Nil
}

var kinds = []Kind{
	KindArtist,
	KindAlbum,
	KindSong,
	KindPlaylist,
	KindDynamicPlaylist,
	KindUser,
}

// Parse decodes a wire identifier. Decoding is total: a value without a
// known kind tag is parsed as a bare uuid and tagged KindUnknown, with a
// warning logged. An error is only returned when the raw id itself is not
// a valid uuid, which callers treat as "resource not found".
func Parse(s string) (ID, error) {
	if tag, raw, found := strings.Cut(s, separator); found {
		for _, k := range kinds {
			if tag == string(k) {
				u, err := uuid.Parse(raw)
				if err != nil {
					return ID{}, fmt.Errorf("apikey: %q is not a valid %s id: %w", s, k, err)
				}
				return ID{Kind: k, UUID: u}, nil
			}
		}
	}
	// Tolerant mode: no separator or unknown tag, try the whole string.
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("apikey: cannot parse id %q: %w", s, err)
	}
	log.Printf("apikey: untagged id %q parsed in tolerant mode", s)
	return ID{Kind: KindUnknown, UUID: u}, nil
}

// As returns the raw id when the identifier is tagged with the wanted kind.
// A mismatch reads as "no such resource of this type", not as a failure.
func (id ID) As(kind Kind) (uuid.UUID, bool) {
	if id.Kind != kind {
		return uuid.Nil, false
	}
	return id.UUID, true
}

func (id ID) IsArtist() bool          { return id.Kind == KindArtist }
func (id ID) IsAlbum() bool           { return id.Kind == KindAlbum }
func (id ID) IsSong() bool            { return id.Kind == KindSong }
func (id ID) IsPlaylist() bool        { return id.Kind == KindPlaylist }
func (id ID) IsDynamicPlaylist() bool { return id.Kind == KindDynamicPlaylist }
func (id ID) IsUser() bool            { return id.Kind == KindUser }

package apikey

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, kind := range kinds {
		raw := uuid.New()
		id := New(kind, raw)

		parsed, err := Parse(id.String())
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, kind, parsed.Kind)
		assert.Equal(t, raw, parsed.UUID)
	}
}

func TestTolerantParse(t *testing.T) {
	raw := uuid.New()

	// Bare uuid without a kind tag parses in tolerant mode.
	id, err := Parse(raw.String())
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, id.Kind)
	assert.Equal(t, raw, id.UUID)

	// Unknown tag falls back to tolerant mode and fails only because the
	// whole string is not a uuid.
	_, err = Parse("thing_" + raw.String())
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)

	_, err = Parse("song_not-a-uuid")
	assert.Error(t, err)
}

func TestKindTagsNoPrefixCollision(t *testing.T) {
	for _, a := range kinds {
		for _, b := range kinds {
			if a == b {
				continue
			}
			assert.False(t, len(a) <= len(b) && string(b[:len(a)]) == string(a),
				"kind %q is a prefix of %q", a, b)
		}
	}
}

func TestAs(t *testing.T) {
	raw := uuid.New()
	id := New(KindSong, raw)

	got, ok := id.As(KindSong)
	require.True(t, ok)
	assert.Equal(t, raw, got)

	_, ok = id.As(KindAlbum)
	assert.False(t, ok)
}

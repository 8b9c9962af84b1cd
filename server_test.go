package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestArtworkBuckets(t *testing.T) {
	v := viper.New()
	v.Set("artwork.buckets", map[string]any{
		"small": 64,
		"large": "1200",
		"wonky": "wide",
		"zero":  0,
	})

	assert.Equal(t, map[string]int{"small": 64, "large": 1200}, artworkBuckets(v))

	// no config leaves the resolver on its built-in buckets
	assert.Empty(t, artworkBuckets(viper.New()))
}

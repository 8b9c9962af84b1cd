// Package search is the Bleve-based catalog search index serving the
// search2/search3 endpoints. The index lives in memory and is rebuilt by
// the scanner; only ids are stored, hits are hydrated from the catalog.
package search

import (
	"context"
	"strings"

	bleve "github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Document kinds.
const (
	KindArtist = "artist"
	KindAlbum  = "album"
	KindSong   = "song"
)

// Search is the Bleve-based search index.
type Search struct {
	// index is the underlying bleve index.
	index bleve.Index
}

// Document is the document we store in Bleve per catalog entity.
type Document struct {
	// Entity ID
	ID string `json:"id"`
	// Kind is artist, album or song.
	Kind string `json:"kind"`
	Name string `json:"name"`
	// NameExact is helper field to make exact name match more accurate
	NameExact string `json:"name_exact"`
	SortName  string `json:"sort_name"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	Genre     string `json:"genre"`
}

// New creates a new in-memory index.
func New() (*Search, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &Search{
		index: idx,
	}, nil
}

// buildIndexMapping builds the Bleve index field mapping configuration.
func buildIndexMapping() mapping.IndexMapping {
	m := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()

	// text mapping for names and credits
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = "en"
	// Not storing the full text, only indexing. We only care about getting
	// a match and then retrieving IDs.
	textFieldMapping.Store = false
	textFieldMapping.Index = true

	// keyword mapping for exact matches like IDs and kinds
	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true

	doc.AddFieldMappingsAt("id", keyword)
	doc.AddFieldMappingsAt("kind", keyword)
	doc.AddFieldMappingsAt("name", textFieldMapping)
	doc.AddFieldMappingsAt("name_exact", keyword)
	doc.AddFieldMappingsAt("sort_name", textFieldMapping)
	doc.AddFieldMappingsAt("artist", textFieldMapping)
	doc.AddFieldMappingsAt("album", textFieldMapping)
	doc.AddFieldMappingsAt("genre", textFieldMapping)

	m.DefaultMapping = doc

	return m
}

// Index indexes or updates a document.
func (b *Search) Index(ctx context.Context, doc Document) error {
	return b.index.Index(doc.ID, doc)
}

// IndexBatch indexes a slice of documents in a single batch (faster).
func (b *Search) IndexBatch(ctx context.Context, docs []Document) error {
	batch := b.index.NewBatch()
	for _, d := range docs {
		if err := batch.Index(d.ID, d); err != nil {
			return err
		}
		// commit in big batches to avoid huge memory usage
		if batch.Size() > 1000 {
			if err := b.index.Batch(batch); err != nil {
				return err
			}
			batch = b.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := b.index.Batch(batch); err != nil {
			return err
		}
	}
	return nil
}

// Query runs a fuzzy search restricted to one document kind.
//
// - searchTerm is the raw user input.
// - kind restricts hits to artist, album or song documents.
// - size/offset page through the result.
func (b *Search) Query(ctx context.Context, searchTerm, kind string, size, offset int) ([]string, error) {
	searchTerm = strings.ToLower(strings.TrimSpace(searchTerm))
	if searchTerm == "" {
		return nil, nil
	}

	// Weights for boosting certain query types and fields.
	const (
		boostNameExact  = 50.0 // strongest: exact match on name_exact field
		boostNamePhrase = 12.0 // very strong: exact phrase in name
		boostNamePrefix = 6.0  // very strong: prefix on whole query against name
		boostNameField  = 3.0  // strong: fuzzy/prefix on name tokens
		boostOther      = 1.0  // default for other fields
	)

	boolQuery := bleve.NewBooleanQuery()

	// restrict to the wanted document kind
	kindQuery := bleve.NewTermQuery(kind)
	kindQuery.SetField("kind")
	boolQuery.AddMust(kindQuery)

	termExact := bleve.NewTermQuery(searchTerm)
	termExact.SetField("name_exact")
	termExact.SetBoost(boostNameExact)
	boolQuery.AddShould(termExact)

	matchPhrase := bleve.NewMatchPhraseQuery(searchTerm)
	matchPhrase.SetField("name")
	matchPhrase.SetBoost(boostNamePhrase)
	boolQuery.AddShould(matchPhrase)

	prefixFull := bleve.NewPrefixQuery(searchTerm)
	prefixFull.SetField("name")
	prefixFull.SetBoost(boostNamePrefix)
	boolQuery.AddShould(prefixFull)

	// Token-wise fuzzy + prefix queries across fields
	for _, tok := range strings.Fields(searchTerm) {
		fuzz := 1
		if len(tok) >= 6 {
			fuzz = 2
		}

		for _, f := range []string{"name", "sort_name", "artist", "album"} {
			fq := bleve.NewFuzzyQuery(tok)
			fq.SetField(f)
			fq.SetFuzziness(fuzz)
			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(f)
			if f == "name" {
				fq.SetBoost(boostNameField)
				pq.SetBoost(boostNameField)
			} else {
				fq.SetBoost(boostOther)
				pq.SetBoost(boostOther)
			}
			boolQuery.AddShould(fq)
			boolQuery.AddShould(pq)
		}
	}

	boolQuery.SetMinShould(1)

	req := bleve.NewSearchRequestOptions(boolQuery, size, offset, false)
	req.Fields = []string{"id"}
	req.SortBy([]string{"-_score"})

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	var foundIDs []string
	for _, h := range res.Hits {
		foundIDs = append(foundIDs, h.ID)
	}
	return foundIDs, nil
}

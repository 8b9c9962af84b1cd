package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

const artistColumns = `id, name, sortname, imagepath, albumcount, created`

// GetArtist retrieves one artist.
func (s *SqliteRepo) GetArtist(ctx context.Context, id uuid.UUID) (*model.Artist, error) {
	const query = `SELECT ` + artistColumns + ` FROM artists WHERE id=? LIMIT 1`

	var artist model.Artist
	if err := s.dbReadHandle.GetContext(ctx, &artist, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &artist, nil
}

// ListArtists returns all artists ordered by sort name.
func (s *SqliteRepo) ListArtists(ctx context.Context) ([]model.Artist, error) {
	const query = `SELECT ` + artistColumns + ` FROM artists ORDER BY sortname`

	var artists []model.Artist
	if err := s.dbReadHandle.SelectContext(ctx, &artists, query); err != nil {
		return nil, err
	}
	return artists, nil
}

// GetArtistAlbums returns the albums of one artist, oldest first.
func (s *SqliteRepo) GetArtistAlbums(ctx context.Context, artistID uuid.UUID) ([]model.Album, error) {
	const query = `SELECT ` + albumColumns + ` FROM albums WHERE artistid=? ORDER BY year, sortname`

	var albums []model.Album
	if err := s.dbReadHandle.SelectContext(ctx, &albums, query, artistID); err != nil {
		return nil, err
	}
	return albums, nil
}

// UpsertArtist inserts or replaces an artist, used by the scanner.
func (s *SqliteRepo) UpsertArtist(ctx context.Context, artist *model.Artist) error {
	if artist.Created.IsZero() {
		artist.Created = time.Now().UTC()
	}

	const query = `REPLACE INTO artists (` + artistColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.dbWriteHandle.ExecContext(ctx, query,
		artist.ID,
		artist.Name,
		artist.SortName,
		artist.ImagePath,
		artist.AlbumCount,
		artist.Created)
	return err
}

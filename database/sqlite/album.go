package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/model"
)

const albumColumns = `id, artistid, artist, name, sortname, genre, year,
	coverpath, songcount, duration, playcount, created`

// GetAlbum retrieves one album.
func (s *SqliteRepo) GetAlbum(ctx context.Context, id uuid.UUID) (*model.Album, error) {
	const query = `SELECT ` + albumColumns + ` FROM albums WHERE id=? LIMIT 1`

	var album model.Album
	if err := s.dbReadHandle.GetContext(ctx, &album, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &album, nil
}

// GetAlbumSongs returns the songs of an album in track order.
func (s *SqliteRepo) GetAlbumSongs(ctx context.Context, albumID uuid.UUID) ([]model.Song, error) {
	const query = `SELECT ` + songColumns + ` FROM songs WHERE albumid=? ORDER BY disc, track`

	var songs []model.Song
	if err := s.dbReadHandle.SelectContext(ctx, &songs, query, albumID); err != nil {
		return nil, err
	}
	return songs, nil
}

// ListAlbums returns an album listing for the getAlbumList endpoints.
func (s *SqliteRepo) ListAlbums(ctx context.Context, filter database.AlbumListFilter) ([]model.Album, error) {
	query := `SELECT ` + albumColumns + ` FROM albums`
	var args []any

	switch filter.Sort {
	case "byYear":
		// a reversed year window means a descending listing
		from, to := filter.FromYear, filter.ToYear
		order := "year, sortname"
		if from > to {
			from, to = to, from
			order = "year DESC, sortname"
		}
		query += ` WHERE year >= ? AND year <= ? ORDER BY ` + order
		args = append(args, from, to)
	case "byGenre":
		query += ` WHERE genre = ? ORDER BY sortname`
		args = append(args, filter.Genre)
	case "starred":
		query += ` JOIN annotations ON annotations.itemid = albums.id
			WHERE annotations.userid = ? AND annotations.starred > ?
			ORDER BY annotations.starred DESC`
		args = append(args, filter.UserID, time.Time{})
	case "highest":
		query += ` JOIN annotations ON annotations.itemid = albums.id
			WHERE annotations.userid = ? AND annotations.rating > 0
			ORDER BY annotations.rating DESC`
		args = append(args, filter.UserID)
	case "frequent":
		query += ` WHERE playcount > 0 ORDER BY playcount DESC`
	case "recent":
		query += ` WHERE playcount > 0 ORDER BY (SELECT MAX(lastplayed) FROM songs WHERE songs.albumid = albums.id) DESC`
	case "newest":
		query += ` ORDER BY created DESC`
	case "alphabeticalByArtist":
		query += ` ORDER BY artist, sortname`
	case "alphabeticalByName":
		query += ` ORDER BY sortname`
	case "random":
		query += ` ORDER BY RANDOM()`
	default:
		return nil, model.ErrNotFound
	}

	query += ` LIMIT ? OFFSET ?`
	args = append(args, filter.Size, filter.Offset)

	var albums []model.Album
	if err := s.dbReadHandle.SelectContext(ctx, &albums, query, args...); err != nil {
		return nil, err
	}
	return albums, nil
}

// UpsertAlbum inserts or replaces an album, used by the scanner.
func (s *SqliteRepo) UpsertAlbum(ctx context.Context, album *model.Album) error {
	if album.Created.IsZero() {
		album.Created = time.Now().UTC()
	}

	const query = `REPLACE INTO albums (` + albumColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.dbWriteHandle.ExecContext(ctx, query,
		album.ID,
		album.ArtistID,
		album.Artist,
		album.Name,
		album.SortName,
		album.Genre,
		album.Year,
		album.CoverPath,
		album.SongCount,
		album.Duration,
		album.PlayCount,
		album.Created)
	return err
}

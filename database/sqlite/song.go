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

const songColumns = `id, albumid, artistid, title, album, artist, track, disc,
	genre, year, duration, bitrate, path, suffix, contenttype, size,
	playcount, lastplayed, created`

// GetSong retrieves one song.
func (s *SqliteRepo) GetSong(ctx context.Context, id uuid.UUID) (*model.Song, error) {
	const query = `SELECT ` + songColumns + ` FROM songs WHERE id=? LIMIT 1`

	var song model.Song
	if err := s.dbReadHandle.GetContext(ctx, &song, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &song, nil
}

// GetRandomSongs returns up to size random songs, optionally constrained by
// genre and year window.
func (s *SqliteRepo) GetRandomSongs(ctx context.Context, size int, genre string, fromYear, toYear int) ([]model.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE 1=1`
	var args []any
	if genre != "" {
		query += ` AND genre = ?`
		args = append(args, genre)
	}
	if fromYear > 0 {
		query += ` AND year >= ?`
		args = append(args, fromYear)
	}
	if toYear > 0 {
		query += ` AND year <= ?`
		args = append(args, toYear)
	}
	query += ` ORDER BY RANDOM() LIMIT ?`
	args = append(args, size)

	var songs []model.Song
	if err := s.dbReadHandle.SelectContext(ctx, &songs, query, args...); err != nil {
		return nil, err
	}
	return songs, nil
}

// GetSongsByGenre returns a page of songs of one genre.
func (s *SqliteRepo) GetSongsByGenre(ctx context.Context, genre string, offset, size int) ([]model.Song, error) {
	const query = `SELECT ` + songColumns + ` FROM songs WHERE genre=? ORDER BY album, disc, track LIMIT ? OFFSET ?`

	var songs []model.Song
	if err := s.dbReadHandle.SelectContext(ctx, &songs, query, genre, size, offset); err != nil {
		return nil, err
	}
	return songs, nil
}

// FindSongs runs a compiled dynamic playlist selection. The where and order
// fragments come from the dynamicplaylist compiler, never from clients.
func (s *SqliteRepo) FindSongs(ctx context.Context, search database.SongSearch) ([]model.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs`
	args := search.Args
	if search.Where != "" {
		query += ` WHERE ` + search.Where
	}
	orderBy := search.OrderBy
	if orderBy == "" {
		orderBy = "RANDOM()"
	}
	query += ` ORDER BY ` + orderBy
	query += ` LIMIT ? OFFSET ?`
	args = append(args, search.Limit, search.Offset)

	var songs []model.Song
	if err := s.dbReadHandle.SelectContext(ctx, &songs, query, args...); err != nil {
		return nil, err
	}
	return songs, nil
}

// CountSongs returns match count and summed duration of a selection. A
// positive Limit caps the aggregated set, so both numbers describe the
// same songs a capped listing would return.
func (s *SqliteRepo) CountSongs(ctx context.Context, search database.SongSearch) (int, int, error) {
	inner := `SELECT duration FROM songs`
	args := search.Args
	if search.Where != "" {
		inner += ` WHERE ` + search.Where
	}
	if search.Limit > 0 {
		orderBy := search.OrderBy
		if orderBy == "" {
			orderBy = "RANDOM()"
		}
		inner += ` ORDER BY ` + orderBy + ` LIMIT ?`
		args = append(args, search.Limit)
	}
	query := `SELECT COUNT(*) AS count, COALESCE(SUM(duration), 0) AS duration FROM (` + inner + `)`

	var result struct {
		Count    int `db:"count"`
		Duration int `db:"duration"`
	}
	if err := s.dbReadHandle.GetContext(ctx, &result, query, args...); err != nil {
		return 0, 0, err
	}
	return result.Count, result.Duration, nil
}

// FindSongByTitle locates a song by artist and title, case-insensitive.
func (s *SqliteRepo) FindSongByTitle(ctx context.Context, artist, title string) (*model.Song, error) {
	const query = `SELECT ` + songColumns + ` FROM songs
		WHERE title LIKE ? AND artist LIKE ? LIMIT 1`

	var song model.Song
	if err := s.dbReadHandle.GetContext(ctx, &song, query, title, artist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &song, nil
}

// ListGenres returns all genres with song and album counts.
func (s *SqliteRepo) ListGenres(ctx context.Context) ([]model.Genre, error) {
	const query = `SELECT genre AS name,
		COUNT(*) AS songcount,
		COUNT(DISTINCT albumid) AS albumcount
		FROM songs WHERE genre != '' GROUP BY genre ORDER BY genre`

	var genres []model.Genre
	if err := s.dbReadHandle.SelectContext(ctx, &genres, query); err != nil {
		return nil, err
	}
	return genres, nil
}

// UpsertSong inserts or replaces a song, used by the scanner.
func (s *SqliteRepo) UpsertSong(ctx context.Context, song *model.Song) error {
	if song.Created.IsZero() {
		song.Created = time.Now().UTC()
	}

	const query = `REPLACE INTO songs (` + songColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.dbWriteHandle.ExecContext(ctx, query,
		song.ID,
		song.AlbumID,
		song.ArtistID,
		song.Title,
		song.Album,
		song.Artist,
		song.Track,
		song.Disc,
		song.Genre,
		song.Year,
		song.Duration,
		song.BitRate,
		song.Path,
		song.Suffix,
		song.ContentType,
		song.Size,
		song.PlayCount,
		song.LastPlayed,
		song.Created)
	return err
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

const playlistColumns = `id, ownerid, owner, name, comment, public, created, changed`

// CreatePlaylist stores a new playlist with its songs.
func (s *SqliteRepo) CreatePlaylist(ctx context.Context, playlist *model.Playlist) error {
	if playlist.ID == uuid.Nil {
		playlist.ID = uuid.New()
	}
	now := time.Now().UTC()
	playlist.Created = now
	playlist.Changed = now

	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `INSERT INTO playlists (` + playlistColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query,
		playlist.ID,
		playlist.OwnerID,
		playlist.Owner,
		playlist.Name,
		playlist.Comment,
		playlist.Public,
		playlist.Created,
		playlist.Changed); err != nil {
		return err
	}
	if err := writePlaylistSongs(ctx, tx, playlist.ID, playlist.SongIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// GetPlaylist retrieves one playlist with its songs in order.
func (s *SqliteRepo) GetPlaylist(ctx context.Context, id uuid.UUID) (*model.Playlist, error) {
	const query = `SELECT ` + playlistColumns + ` FROM playlists WHERE id=? LIMIT 1`

	var playlist model.Playlist
	if err := s.dbReadHandle.GetContext(ctx, &playlist, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}

	const songQuery = `SELECT songid FROM playlist_songs WHERE playlistid=? ORDER BY songorder`
	if err := s.dbReadHandle.SelectContext(ctx, &playlist.SongIDs, songQuery, id); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// GetPlaylists returns playlists visible to the user: their own plus public
// ones of other users.
func (s *SqliteRepo) GetPlaylists(ctx context.Context, userID uuid.UUID) ([]model.Playlist, error) {
	const query = `SELECT ` + playlistColumns + ` FROM playlists
		WHERE ownerid=? OR public=1 ORDER BY name`

	var playlists []model.Playlist
	if err := s.dbReadHandle.SelectContext(ctx, &playlists, query, userID); err != nil {
		return nil, err
	}
	for i := range playlists {
		const songQuery = `SELECT songid FROM playlist_songs WHERE playlistid=? ORDER BY songorder`
		if err := s.dbReadHandle.SelectContext(ctx, &playlists[i].SongIDs, songQuery, playlists[i].ID); err != nil {
			return nil, err
		}
	}
	return playlists, nil
}

// UpdatePlaylist applies metadata changes and song additions and removals
// in one transaction. Removals are indexes into the current song order.
func (s *SqliteRepo) UpdatePlaylist(ctx context.Context, id uuid.UUID, name, comment *string, public *bool, add []uuid.UUID, removeIndexes []int) error {
	playlist, err := s.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}

	if name != nil {
		playlist.Name = *name
	}
	if comment != nil {
		playlist.Comment = *comment
	}
	if public != nil {
		playlist.Public = *public
	}

	songIDs := make([]uuid.UUID, 0, len(playlist.SongIDs)+len(add))
	for i, songID := range playlist.SongIDs {
		if slices.Contains(removeIndexes, i) {
			continue
		}
		songIDs = append(songIDs, songID)
	}
	songIDs = append(songIDs, add...)

	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `UPDATE playlists SET name=?, comment=?, public=?, changed=? WHERE id=?`
	if _, err := tx.ExecContext(ctx, query,
		playlist.Name, playlist.Comment, playlist.Public, time.Now().UTC(), id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlistid=?`, id); err != nil {
		return err
	}
	if err := writePlaylistSongs(ctx, tx, id, songIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePlaylist removes a playlist and its songs.
func (s *SqliteRepo) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_songs WHERE playlistid=?`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id=?`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return model.ErrNotFound
	}
	return tx.Commit()
}

func writePlaylistSongs(ctx context.Context, tx *sqlx.Tx, playlistID uuid.UUID, songIDs []uuid.UUID) error {
	const query = `INSERT INTO playlist_songs (playlistid, songid, songorder) VALUES (?, ?, ?)`
	for order, songID := range songIDs {
		if _, err := tx.ExecContext(ctx, query, playlistID, songID, order); err != nil {
			return err
		}
	}
	return nil
}

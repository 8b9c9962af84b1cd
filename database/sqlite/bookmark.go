package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

// GetBookmarks returns all bookmarks of a user, most recently changed first.
func (s *SqliteRepo) GetBookmarks(ctx context.Context, userID uuid.UUID) ([]model.Bookmark, error) {
	const query = `SELECT userid, songid, position, comment, created, changed
		FROM bookmarks WHERE userid=? ORDER BY changed DESC`

	var bookmarks []model.Bookmark
	if err := s.dbReadHandle.SelectContext(ctx, &bookmarks, query, userID); err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// SaveBookmark creates or updates the bookmark of a user on a song.
func (s *SqliteRepo) SaveBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	now := time.Now().UTC()
	const query = `INSERT INTO bookmarks (userid, songid, position, comment, created, changed)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (userid, songid) DO UPDATE SET position=excluded.position,
		comment=excluded.comment, changed=excluded.changed`
	_, err := s.dbWriteHandle.ExecContext(ctx, query,
		bookmark.UserID,
		bookmark.SongID,
		bookmark.Position,
		bookmark.Comment,
		now,
		now)
	return err
}

// DeleteBookmark removes the bookmark of a user on a song.
func (s *SqliteRepo) DeleteBookmark(ctx context.Context, userID, songID uuid.UUID) error {
	const query = `DELETE FROM bookmarks WHERE userid=? AND songid=?`
	result, err := s.dbWriteHandle.ExecContext(ctx, query, userID, songID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

// GetPlayQueue retrieves the saved play queue of a user.
func (s *SqliteRepo) GetPlayQueue(ctx context.Context, userID uuid.UUID) (*model.PlayQueue, error) {
	const query = `SELECT userid, current, position, changedby, changed
		FROM playqueues WHERE userid=? LIMIT 1`

	var queue struct {
		UserID    uuid.UUID `db:"userid"`
		Current   string    `db:"current"`
		Position  int64     `db:"position"`
		ChangedBy string    `db:"changedby"`
		Changed   time.Time `db:"changed"`
	}
	if err := s.dbReadHandle.GetContext(ctx, &queue, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}

	result := &model.PlayQueue{
		UserID:    queue.UserID,
		Position:  queue.Position,
		ChangedBy: queue.ChangedBy,
		Changed:   queue.Changed,
	}
	// current may be empty when the client saved a queue without a position
	if queue.Current != "" {
		current, err := uuid.Parse(queue.Current)
		if err == nil {
			result.Current = current
		}
	}

	const songQuery = `SELECT songid FROM playqueue_songs WHERE userid=? ORDER BY songorder`
	if err := s.dbReadHandle.SelectContext(ctx, &result.SongIDs, songQuery, userID); err != nil {
		return nil, err
	}
	return result, nil
}

// SavePlayQueue replaces the saved play queue of a user.
func (s *SqliteRepo) SavePlayQueue(ctx context.Context, queue *model.PlayQueue) error {
	queue.Changed = time.Now().UTC()

	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current := ""
	if queue.Current != uuid.Nil {
		current = queue.Current.String()
	}
	const query = `REPLACE INTO playqueues (userid, current, position, changedby, changed)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query,
		queue.UserID, current, queue.Position, queue.ChangedBy, queue.Changed); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM playqueue_songs WHERE userid=?`, queue.UserID); err != nil {
		return err
	}
	const songQuery = `INSERT INTO playqueue_songs (userid, songid, songorder) VALUES (?, ?, ?)`
	for order, songID := range queue.SongIDs {
		if _, err := tx.ExecContext(ctx, songQuery, queue.UserID, songID, order); err != nil {
			return err
		}
	}
	return tx.Commit()
}

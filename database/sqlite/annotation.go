package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

// Star marks or unmarks items as starred for a user in one transaction.
func (s *SqliteRepo) Star(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID, starred bool) error {
	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, itemID := range itemIDs {
		var query string
		var args []any
		if starred {
			query = `INSERT INTO annotations (userid, itemid, starred, rating) VALUES (?, ?, ?, 0)
				ON CONFLICT (userid, itemid) DO UPDATE SET starred=excluded.starred`
			args = []any{userID, itemID, time.Now().UTC()}
		} else {
			query = `UPDATE annotations SET starred=? WHERE userid=? AND itemid=?`
			args = []any{time.Time{}, userID, itemID}
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetRating stores a 0-5 rating for an item. 0 clears the rating.
func (s *SqliteRepo) SetRating(ctx context.Context, userID, itemID uuid.UUID, rating int) error {
	const query = `INSERT INTO annotations (userid, itemid, starred, rating) VALUES (?, ?, ?, ?)
		ON CONFLICT (userid, itemid) DO UPDATE SET rating=excluded.rating`
	_, err := s.dbWriteHandle.ExecContext(ctx, query, userID, itemID, time.Time{}, rating)
	return err
}

// GetAnnotation returns the per-user state of one item.
func (s *SqliteRepo) GetAnnotation(ctx context.Context, userID, itemID uuid.UUID) (*model.Annotation, error) {
	const query = `SELECT userid, itemid, starred, rating FROM annotations
		WHERE userid=? AND itemid=? LIMIT 1`

	var annotation model.Annotation
	if err := s.dbReadHandle.GetContext(ctx, &annotation, query, userID, itemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &annotation, nil
}

// GetStarred returns the user's annotations carrying a star, newest first.
func (s *SqliteRepo) GetStarred(ctx context.Context, userID uuid.UUID) ([]model.Annotation, error) {
	const query = `SELECT userid, itemid, starred, rating FROM annotations
		WHERE userid=? AND starred > ? ORDER BY starred DESC`

	var annotations []model.Annotation
	if err := s.dbReadHandle.SelectContext(ctx, &annotations, query, userID, time.Time{}); err != nil {
		return nil, err
	}
	return annotations, nil
}

// RecordPlay bumps the play counters of a song and its album.
func (s *SqliteRepo) RecordPlay(ctx context.Context, songID uuid.UUID, at time.Time) error {
	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE songs SET playcount=playcount+1, lastplayed=? WHERE id=?`,
		at.UTC(), songID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE albums SET playcount=playcount+1 WHERE id=(SELECT albumid FROM songs WHERE id=?)`,
		songID); err != nil {
		return err
	}
	return tx.Commit()
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

const shareColumns = `id, ownerid, description, created, expires, lastvisited, visitcount`

// CreateShare stores a new share with its items.
func (s *SqliteRepo) CreateShare(ctx context.Context, share *model.Share) error {
	share.Created = time.Now().UTC()

	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `INSERT INTO shares (` + shareColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query,
		share.ID,
		share.OwnerID,
		share.Description,
		share.Created,
		share.Expires,
		share.LastVisited,
		share.VisitCount); err != nil {
		return err
	}
	const itemQuery = `INSERT INTO share_items (shareid, itemid, itemorder) VALUES (?, ?, ?)`
	for order, itemID := range share.ItemIDs {
		if _, err := tx.ExecContext(ctx, itemQuery, share.ID, itemID, order); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetShare retrieves one share with its items.
func (s *SqliteRepo) GetShare(ctx context.Context, id string) (*model.Share, error) {
	const query = `SELECT ` + shareColumns + ` FROM shares WHERE id=? LIMIT 1`

	var share model.Share
	if err := s.dbReadHandle.GetContext(ctx, &share, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	if err := s.loadShareItems(ctx, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

// GetShares returns the shares of one user, or every share when all is set.
func (s *SqliteRepo) GetShares(ctx context.Context, userID uuid.UUID, all bool) ([]model.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares`
	var args []any
	if !all {
		query += ` WHERE ownerid=?`
		args = append(args, userID)
	}
	query += ` ORDER BY created DESC`

	var shares []model.Share
	if err := s.dbReadHandle.SelectContext(ctx, &shares, query, args...); err != nil {
		return nil, err
	}
	for i := range shares {
		if err := s.loadShareItems(ctx, &shares[i]); err != nil {
			return nil, err
		}
	}
	return shares, nil
}

// UpdateShare updates description and expiry of a share.
func (s *SqliteRepo) UpdateShare(ctx context.Context, share *model.Share) error {
	const query = `UPDATE shares SET description=?, expires=? WHERE id=?`
	result, err := s.dbWriteHandle.ExecContext(ctx, query, share.Description, share.Expires, share.ID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteShare removes a share and its items.
func (s *SqliteRepo) DeleteShare(ctx context.Context, id string) error {
	tx, err := s.dbWriteHandle.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM share_items WHERE shareid=?`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM shares WHERE id=?`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return model.ErrNotFound
	}
	return tx.Commit()
}

func (s *SqliteRepo) loadShareItems(ctx context.Context, share *model.Share) error {
	const query = `SELECT itemid FROM share_items WHERE shareid=? ORDER BY itemorder`
	return s.dbReadHandle.SelectContext(ctx, &share.ItemIDs, query, share.ID)
}

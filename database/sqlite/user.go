package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

const userColumns = `id,
	username,
	email,
	displayname,
	secret,
	passwordhash,
	isadmin,
	canshare,
	created,
	lastlogin`

// GetUser retrieves a user by username.
func (s *SqliteRepo) GetUser(ctx context.Context, username string) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username=? LIMIT 1`

	var user model.User
	if err := s.dbReadHandle.GetContext(ctx, &user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by their id.
func (s *SqliteRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id=? LIMIT 1`

	var user model.User
	if err := s.dbReadHandle.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user account.
func (s *SqliteRepo) CreateUser(ctx context.Context, user *model.User) error {
	if _, err := s.GetUser(ctx, user.Username); err == nil {
		return model.ErrDuplicate
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Created = time.Now().UTC()

	const query = `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.dbWriteHandle.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.DisplayName,
		user.Secret,
		user.PasswordHash,
		user.IsAdmin,
		user.CanShare,
		user.Created,
		user.LastLogin)
	return err
}

// TouchLastLogin records a successful authentication.
func (s *SqliteRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE users SET lastlogin=? WHERE id=?`
	_, err := s.dbWriteHandle.ExecContext(ctx, query, time.Now().UTC(), id)
	return err
}

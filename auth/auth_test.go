package auth

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

type fakeUserRepo struct {
	users map[string]*model.User
	err   error
}

func (f *fakeUserRepo) GetUser(ctx context.Context, username string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.users[username]; ok {
		return user, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return nil, model.ErrNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *model.User) error { return nil }

func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error { return nil }

func tokenFor(secret, salt string) string {
	sum := md5.Sum([]byte(secret + salt))
	return hex.EncodeToString(sum[:])
}

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	return New(&fakeUserRepo{
		users: map[string]*model.User{
			"alice": {
				ID:       uuid.New(),
				Username: "alice",
				Secret:   "sesame",
			},
		},
	})
}

func TestTokenAuth(t *testing.T) {
	a := newTestAuthenticator(t)

	identity, ok := a.Authenticate(context.Background(), Call{
		Username: "alice",
		Token:    tokenFor("sesame", "abc123"),
		Salt:     "abc123",
		Required: true,
	})
	require.True(t, ok)
	assert.Equal(t, "alice", identity.Username)
	assert.False(t, identity.IsBlank())
}

// All failure modes must be indistinguishable: same blank identity,
// same not-ok result.
func TestAuthFailuresAreUniform(t *testing.T) {
	a := newTestAuthenticator(t)

	calls := []Call{
		// wrong token
		{Username: "alice", Token: "00000000000000000000000000000000", Salt: "abc123", Required: true},
		// unknown user
		{Username: "mallory", Token: tokenFor("sesame", "abc123"), Salt: "abc123", Required: true},
		// no credentials at all
		{Username: "alice", Required: true},
		// no username
		{Password: "sesame", Required: true},
		// wrong password
		{Username: "alice", Password: "wrong", Required: true},
	}
	for _, call := range calls {
		identity, ok := a.Authenticate(context.Background(), call)
		assert.False(t, ok, "call %+v", call)
		assert.Equal(t, Identity{}, identity, "call %+v", call)
	}
}

func TestPasswordAuth(t *testing.T) {
	a := newTestAuthenticator(t)

	_, ok := a.Authenticate(context.Background(), Call{
		Username: "alice", Password: "sesame", Required: true,
	})
	assert.True(t, ok)

	// hex-encoded password with the enc: marker
	_, ok = a.Authenticate(context.Background(), Call{
		Username: "alice",
		Password: "enc:" + hex.EncodeToString([]byte("sesame")),
		Required: true,
	})
	assert.True(t, ok)
}

func TestBcryptPasswordAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sesame"), bcrypt.MinCost)
	require.NoError(t, err)

	a := New(&fakeUserRepo{
		users: map[string]*model.User{
			"bob": {ID: uuid.New(), Username: "bob", Secret: "sesame", PasswordHash: string(hash)},
		},
	})

	_, ok := a.Authenticate(context.Background(), Call{
		Username: "bob", Password: "sesame", Required: true,
	})
	assert.True(t, ok)

	_, ok = a.Authenticate(context.Background(), Call{
		Username: "bob", Password: "wrong", Required: true,
	})
	assert.False(t, ok)
}

func TestOptionalAuth(t *testing.T) {
	a := newTestAuthenticator(t)

	// no username: blank identity, still ok
	identity, ok := a.Authenticate(context.Background(), Call{})
	assert.True(t, ok)
	assert.True(t, identity.IsBlank())

	// known username without credentials resolves the identity
	identity, ok = a.Authenticate(context.Background(), Call{Username: "alice"})
	assert.True(t, ok)
	assert.Equal(t, "alice", identity.Username)

	// unknown username degrades to blank, not failure
	identity, ok = a.Authenticate(context.Background(), Call{Username: "mallory"})
	assert.True(t, ok)
	assert.True(t, identity.IsBlank())
}

func TestLookupErrorReportsAuthFailure(t *testing.T) {
	a := New(&fakeUserRepo{err: errors.New("connection lost")})

	identity, ok := a.Authenticate(context.Background(), Call{
		Username: "alice", Password: "sesame", Required: true,
	})
	assert.False(t, ok)
	assert.True(t, identity.IsBlank())
}

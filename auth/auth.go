// Package auth validates inbound API credentials against stored user
// accounts. Both Subsonic credential forms are supported: a direct password
// (optionally "enc:" hex-encoded) and the token+salt challenge/response
// where token = md5(secret + salt).
package auth

import (
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/Huuberrt/melodee-sub000/database"
	"github.com/Huuberrt/melodee-sub000/database/model"
)

// encPrefix marks a hex-encoded password parameter.
const encPrefix = "enc:"

// Call carries the credential material of one inbound request.
type Call struct {
	Username string
	Password string
	Token    string
	Salt     string
	// Required is false for public operations like ping and the
	// extension listing.
	Required bool
}

// Identity is the authenticated caller. The zero value is the blank,
// unauthenticated identity.
type Identity struct {
	ID          uuid.UUID
	Username    string
	Email       string
	DisplayName string
	IsAdmin     bool
	CanShare    bool
}

// IsBlank reports whether this is the unauthenticated identity.
func (i Identity) IsBlank() bool {
	return i.ID == uuid.Nil
}

// Authenticator validates credentials against the user repository.
type Authenticator struct {
	repo database.UserRepo

	// per-username limiters slow down credential stuffing; consulted
	// before any database lookup.
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func New(repo database.UserRepo) *Authenticator {
	return &Authenticator{
		repo:     repo,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Authenticate resolves the caller identity. ok is false only for required
// authentication that failed; the reason is never distinguishable to the
// caller. Optional authentication always succeeds, with a blank identity
// when the user is unknown.
func (a *Authenticator) Authenticate(ctx context.Context, call Call) (Identity, bool) {
	if !call.Required {
		if call.Username == "" {
			return Identity{}, true
		}
		user, err := a.repo.GetUser(ctx, call.Username)
		if err != nil {
			return Identity{}, true
		}
		return identityOf(user), true
	}

	if call.Username == "" {
		return Identity{}, false
	}
	hasToken := call.Token != "" && call.Salt != ""
	if call.Password == "" && !hasToken {
		return Identity{}, false
	}
	if !a.allow(call.Username) {
		log.Printf("auth: throttling login attempts for %q", call.Username)
		return Identity{}, false
	}

	user, err := a.repo.GetUser(ctx, call.Username)
	if err != nil {
		// unknown user and lookup failure look identical to the caller
		log.Printf("auth: lookup for %q failed: %v", call.Username, err)
		return Identity{}, false
	}

	var valid bool
	if hasToken {
		valid = validToken(user.Secret, call.Token, call.Salt)
	} else {
		valid = validPassword(user.Secret, user.PasswordHash, call.Password)
	}
	if !valid {
		return Identity{}, false
	}

	if err := a.repo.TouchLastLogin(ctx, user.ID); err != nil {
		log.Printf("auth: updating last login of %q failed: %v", call.Username, err)
	}
	return identityOf(user), true
}

// validToken checks token == md5(secret + salt).
func validToken(secret, token, salt string) bool {
	sum := md5.Sum([]byte(secret + salt))
	expected := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(token))) == 1
}

// validPassword checks a direct password, hex-decoding the "enc:" form
// first. Accounts carrying a bcrypt hash are validated against the hash,
// the rest against the stored secret.
func validPassword(secret, passwordHash, password string) bool {
	if encoded, found := strings.CutPrefix(password, encPrefix); found {
		decoded, err := hex.DecodeString(encoded)
		if err != nil {
			return false
		}
		password = string(decoded)
	}
	if passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}

// allow consults the per-username rate limiter.
func (a *Authenticator) allow(username string) bool {
	a.mu.Lock()
	limiter, ok := a.limiters[username]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Second), 10)
		a.limiters[username] = limiter
	}
	a.mu.Unlock()
	return limiter.Allow()
}

func identityOf(user *model.User) Identity {
	return Identity{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		CanShare:    user.CanShare,
	}
}

package subsonic

import (
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

// createUserHandler creates an account. Admins may always create users;
// everyone else must present the configured invite code, which keeps the
// endpoint usable for self-service signup without opening it to the world.
func (s *Subsonic) createUserHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()

	if !c.user.IsAdmin {
		if s.inviteCode == "" || c.param("inviteCode") != s.inviteCode {
			s.serveError(w, c, errorNotAuthorized, "not authorized to create users")
			return
		}
	}

	username := c.param("username")
	password := c.param("password")
	if username == "" || password == "" {
		s.serveError(w, c, errorMissingParameter, "required parameter is missing")
		return
	}
	if encoded, found := strings.CutPrefix(password, "enc:"); found {
		decoded, err := hex.DecodeString(encoded)
		if err != nil {
			s.serveError(w, c, errorGeneric, "malformed password parameter")
			return
		}
		password = string(decoded)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.serveError(w, c, errorGeneric, "internal error")
		return
	}

	user := &model.User{
		ID:       uuid.New(),
		Username: username,
		Email:    c.param("email"),
		// The token challenge needs the cleartext secret; direct password
		// logins validate against the bcrypt hash.
		Secret:       password,
		PasswordHash: string(hash),
		IsAdmin:      c.user.IsAdmin && c.boolParam("adminRole", false),
		CanShare:     c.boolParam("shareRole", false),
		Created:      time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			s.serveError(w, c, errorGeneric, "user already exists")
			return
		}
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

// getUserHandler returns account details of the caller, or of any user when
// the caller is an admin.
func (s *Subsonic) getUserHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	username := c.param("username")
	if username == "" {
		s.serveError(w, c, errorMissingParameter, "required parameter username is missing")
		return
	}
	if username != c.user.Username && !c.user.IsAdmin {
		s.serveError(w, c, errorNotAuthorized, "not authorized to view this user")
		return
	}

	user, err := s.repo.GetUser(r.Context(), username)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	entry := &User{
		Username:     user.Username,
		Email:        user.Email,
		AdminRole:    user.IsAdmin,
		SettingsRole: user.IsAdmin,
		ShareRole:    user.CanShare,
		DownloadRole: true,
		StreamRole:   true,
		PlaylistRole: true,
		CoverArtRole: true,
		Created:      user.Created,
	}
	for _, folder := range s.scanner.Folders() {
		entry.Folder = append(entry.Folder, folder.ID)
	}

	response := s.newResponse()
	response.User = entry
	s.serve(w, c, response)
}

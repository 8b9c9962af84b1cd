package subsonic

import (
	"context"
	"net/http"
	"time"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/idhash"
)

// getSharesHandler lists the caller's shares. Admins see every share on the
// server.
func (s *Subsonic) getSharesHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()

	shares, err := s.repo.GetShares(ctx, c.user.ID, c.user.IsAdmin)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	response := s.newResponse()
	response.Shares = &Shares{Share: []Share{}}
	for _, share := range shares {
		response.Shares.Share = append(response.Shares.Share, s.shareEntry(ctx, share))
	}
	s.serve(w, c, response)
}

func (s *Subsonic) createShareHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()

	if !c.user.CanShare && !c.user.IsAdmin {
		s.serveError(w, c, errorNotAuthorized, "user is not allowed to share media")
		return
	}

	ids := c.paramList("id")
	if len(ids) == 0 {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	items := make([]string, 0, len(ids))
	for _, raw := range ids {
		id, err := apikey.Parse(raw)
		if err != nil {
			s.serveError(w, c, errorNotFound, "not found")
			return
		}
		items = append(items, id.String())
	}

	share := &model.Share{
		ID:          idhash.NewRandomID(),
		OwnerID:     c.user.ID,
		Description: c.param("description"),
		Created:     time.Now().UTC(),
		Expires:     c.timeParam("expires"),
		ItemIDs:     items,
	}
	if err := s.repo.CreateShare(ctx, share); err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	response := s.newResponse()
	response.Shares = &Shares{Share: []Share{s.shareEntry(ctx, *share)}}
	s.serve(w, c, response)
}

func (s *Subsonic) updateShareHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()

	share, code, message := s.ownedShare(ctx, c)
	if code >= 0 {
		s.serveError(w, c, code, message)
		return
	}

	if c.has("description") {
		share.Description = c.param("description")
	}
	if c.has("expires") {
		// expires=0 removes the expiration
		share.Expires = c.timeParam("expires")
	}
	if err := s.repo.UpdateShare(ctx, share); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

func (s *Subsonic) deleteShareHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()

	share, code, message := s.ownedShare(ctx, c)
	if code >= 0 {
		s.serveError(w, c, code, message)
		return
	}
	if err := s.repo.DeleteShare(ctx, share.ID); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

// ownedShare loads the share named by the id parameter and checks the caller
// may modify it. A negative code means success.
func (s *Subsonic) ownedShare(ctx context.Context, c *inboundCall) (*model.Share, int, string) {
	id := c.param("id")
	if id == "" {
		return nil, errorMissingParameter, "required parameter id is missing"
	}
	share, err := s.repo.GetShare(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, errorNotFound, "not found"
		}
		return nil, errorGeneric, "internal error"
	}
	if share.OwnerID != c.user.ID && !c.user.IsAdmin {
		return nil, errorNotAuthorized, "not the owner of this share"
	}
	return share, -1, ""
}

// shareEntry renders one share with its entries hydrated. Items that no
// longer exist in the catalog are skipped.
func (s *Subsonic) shareEntry(ctx context.Context, share model.Share) Share {
	entry := Share{
		ID:          share.ID,
		URL:         s.baseURL + "/share/" + share.ID,
		Description: share.Description,
		Created:     share.Created,
		Expires:     optTime(share.Expires),
		LastVisited: optTime(share.LastVisited),
		VisitCount:  share.VisitCount,
	}
	if owner, err := s.repo.GetUserByID(ctx, share.OwnerID); err == nil {
		entry.Username = owner.Username
	}
	for _, raw := range share.ItemIDs {
		id, err := apikey.Parse(raw)
		if err != nil {
			continue
		}
		switch id.Kind {
		case apikey.KindSong:
			if song, err := s.repo.GetSong(ctx, id.UUID); err == nil {
				entry.Entry = append(entry.Entry, songChild(*song))
			}
		case apikey.KindAlbum:
			if album, err := s.repo.GetAlbum(ctx, id.UUID); err == nil {
				entry.Entry = append(entry.Entry, albumChild(*album))
			}
		}
	}
	return entry
}

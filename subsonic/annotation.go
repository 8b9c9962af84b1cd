package subsonic

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/database/model"
	"github.com/Huuberrt/melodee-sub000/idhash"
)

// starTargets gathers the item ids of a star/unstar call. The API spreads
// them over three repeatable parameters.
func starTargets(c *inboundCall) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, name := range []string{"id", "albumId", "artistId"} {
		for _, value := range c.paramList(name) {
			id, err := apikey.Parse(value)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id.UUID)
		}
	}
	return ids, nil
}

func (s *Subsonic) starHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	s.setStarred(w, r, c, true)
}

func (s *Subsonic) unstarHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	s.setStarred(w, r, c, false)
}

func (s *Subsonic) setStarred(w http.ResponseWriter, r *http.Request, c *inboundCall, starred bool) {
	ids, err := starTargets(c)
	if err != nil {
		s.serveError(w, c, errorNotFound, "no such item")
		return
	}
	if len(ids) == 0 {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	if err := s.repo.Star(r.Context(), c.user.ID, ids, starred); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

func (s *Subsonic) setRatingHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present || !c.has("rating") {
		s.serveError(w, c, errorMissingParameter, "required parameters id and rating are missing")
		return
	}
	if err != nil {
		s.serveError(w, c, errorNotFound, "no such item")
		return
	}
	rating := c.intParam("rating", -1)
	if rating < 0 || rating > 5 {
		s.serveError(w, c, errorGeneric, "rating must be between 0 and 5")
		return
	}
	if err := s.repo.SetRating(r.Context(), c.user.ID, id.UUID, rating); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

// scrobble registers played songs. submission=true (the default) bumps play
// counts, submission=false only updates the now playing list. Repeated
// submissions of the same song by the same user within the deduplication
// window are dropped.
func (s *Subsonic) scrobbleHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	idValues := c.paramList("id")
	if len(idValues) == 0 {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	times := c.paramList("time")
	submission := c.boolParam("submission", true)

	ctx := r.Context()
	for i, value := range idValues {
		id, err := apikey.Parse(value)
		if err != nil {
			s.serveError(w, c, errorNotFound, "no such song")
			return
		}
		song, err := s.repo.GetSong(ctx, id.UUID)
		if err != nil {
			s.serveRepoError(w, c, err)
			return
		}

		if !submission {
			s.repo.SetNowPlaying(model.NowPlaying{
				UserID:   c.user.ID,
				Username: c.user.Username,
				SongID:   song.ID,
				Client:   c.param("c"),
				At:       time.Now(),
			})
			continue
		}

		at := time.Now()
		if i < len(times) {
			if t := parseEpochMillis(times[i]); !t.IsZero() {
				at = t
			}
		}
		fingerprint := idhash.Hash(c.user.ID.String() + "|" + song.ID.String())
		if s.repo.SeenSubmission(fingerprint) {
			// duplicate within the window
			continue
		}
		if err := s.repo.RecordPlay(ctx, song.ID, at); err != nil {
			s.serveRepoError(w, c, err)
			return
		}
		// marked only once the play is recorded, so a failed write can be
		// retried by the client
		s.repo.MarkSubmission(fingerprint)
	}
	s.serve(w, c, s.newResponse())
}

func (s *Subsonic) getNowPlayingHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()
	result := &NowPlaying{}
	for _, entry := range s.repo.ListNowPlaying() {
		song, err := s.repo.GetSong(ctx, entry.SongID)
		if err != nil {
			continue
		}
		result.Entry = append(result.Entry, NowPlayingEntry{
			Child:      songChild(*song),
			Username:   entry.Username,
			MinutesAgo: int(time.Since(entry.At).Minutes()),
			PlayerName: entry.Client,
		})
	}

	response := s.newResponse()
	response.NowPlaying = result
	s.serve(w, c, response)
}

func parseEpochMillis(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

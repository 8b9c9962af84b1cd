package subsonic

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/apikey"
	"github.com/Huuberrt/melodee-sub000/database/model"
)

func (s *Subsonic) getBookmarksHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()
	bookmarks, err := s.repo.GetBookmarks(ctx, c.user.ID)
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	result := &Bookmarks{}
	for _, bookmark := range bookmarks {
		song, err := s.repo.GetSong(ctx, bookmark.SongID)
		if err != nil {
			continue
		}
		result.Bookmark = append(result.Bookmark, Bookmark{
			Position: bookmark.Position,
			Username: c.user.Username,
			Comment:  bookmark.Comment,
			Created:  bookmark.Created,
			Changed:  bookmark.Changed,
			Entry:    songChild(*song),
		})
	}

	response := s.newResponse()
	response.Bookmarks = result
	s.serve(w, c, response)
}

func (s *Subsonic) createBookmarkHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present || !c.has("position") {
		s.serveError(w, c, errorMissingParameter, "required parameters id and position are missing")
		return
	}
	songID, ok := id.As(apikey.KindSong)
	if err != nil || !ok {
		s.serveError(w, c, errorNotFound, "song not found")
		return
	}
	if _, err := s.repo.GetSong(r.Context(), songID); err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	bookmark := &model.Bookmark{
		UserID:   c.user.ID,
		SongID:   songID,
		Position: c.int64Param("position", 0),
		Comment:  c.param("comment"),
	}
	if err := s.repo.SaveBookmark(r.Context(), bookmark); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

func (s *Subsonic) deleteBookmarkHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	id, present, err := c.idParam("id")
	if !present {
		s.serveError(w, c, errorMissingParameter, "required parameter id is missing")
		return
	}
	songID, ok := id.As(apikey.KindSong)
	if err != nil || !ok {
		s.serveError(w, c, errorNotFound, "song not found")
		return
	}
	if err := s.repo.DeleteBookmark(r.Context(), c.user.ID, songID); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

func (s *Subsonic) getPlayQueueHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	ctx := r.Context()
	queue, err := s.repo.GetPlayQueue(ctx, c.user.ID)
	if err != nil {
		if isNotFound(err) {
			// no queue saved yet, empty ok response per the API
			s.serve(w, c, s.newResponse())
			return
		}
		s.serveRepoError(w, c, err)
		return
	}

	result := &PlayQueue{
		Position:  queue.Position,
		Username:  c.user.Username,
		Changed:   queue.Changed,
		ChangedBy: queue.ChangedBy,
	}
	if queue.Current != uuid.Nil {
		result.Current = apikey.New(apikey.KindSong, queue.Current).String()
	}
	for _, songID := range queue.SongIDs {
		song, err := s.repo.GetSong(ctx, songID)
		if err != nil {
			continue
		}
		result.Entry = append(result.Entry, songChild(*song))
	}

	response := s.newResponse()
	response.PlayQueue = result
	s.serve(w, c, response)
}

func (s *Subsonic) savePlayQueueHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	queue := &model.PlayQueue{
		UserID:    c.user.ID,
		Position:  c.int64Param("position", 0),
		ChangedBy: c.param("c"),
		Changed:   time.Now().UTC(),
	}
	if current := c.param("current"); current != "" {
		id, err := apikey.Parse(current)
		if err != nil {
			s.serveError(w, c, errorNotFound, "song not found")
			return
		}
		queue.Current = id.UUID
	}
	for _, value := range c.paramList("id") {
		id, err := apikey.Parse(value)
		if err != nil {
			s.serveError(w, c, errorNotFound, "song not found")
			return
		}
		queue.SongIDs = append(queue.SongIDs, id.UUID)
	}

	if err := s.repo.SavePlayQueue(r.Context(), queue); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

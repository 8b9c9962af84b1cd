package subsonic

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Huuberrt/melodee-sub000/database/model"
)

func (s *Subsonic) getInternetRadioStationsHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	stations, err := s.repo.ListRadioStations(r.Context())
	if err != nil {
		s.serveRepoError(w, c, err)
		return
	}

	result := &InternetRadioStations{}
	for _, station := range stations {
		result.InternetRadioStation = append(result.InternetRadioStation, InternetRadioStation{
			ID:          station.ID.String(),
			Name:        station.Name,
			StreamURL:   station.StreamURL,
			HomepageURL: station.HomepageURL,
		})
	}

	response := s.newResponse()
	response.InternetRadioStations = result
	s.serve(w, c, response)
}

func (s *Subsonic) createInternetRadioStationHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	if !c.user.IsAdmin {
		s.serveError(w, c, errorNotAuthorized, "only admins may manage radio stations")
		return
	}
	streamURL := c.param("streamUrl")
	name := c.param("name")
	if streamURL == "" || name == "" {
		s.serveError(w, c, errorMissingParameter, "required parameters streamUrl and name are missing")
		return
	}

	station := &model.RadioStation{
		ID:          uuid.New(),
		Name:        name,
		StreamURL:   streamURL,
		HomepageURL: c.param("homepageUrl"),
	}
	if err := s.repo.CreateRadioStation(r.Context(), station); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

func (s *Subsonic) updateInternetRadioStationHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	if !c.user.IsAdmin {
		s.serveError(w, c, errorNotAuthorized, "only admins may manage radio stations")
		return
	}
	stationID, err := uuid.Parse(c.param("id"))
	if err != nil {
		s.serveError(w, c, errorNotFound, "station not found")
		return
	}
	streamURL := c.param("streamUrl")
	name := c.param("name")
	if streamURL == "" || name == "" {
		s.serveError(w, c, errorMissingParameter, "required parameters streamUrl and name are missing")
		return
	}

	station := &model.RadioStation{
		ID:          stationID,
		Name:        name,
		StreamURL:   streamURL,
		HomepageURL: c.param("homepageUrl"),
	}
	if err := s.repo.UpdateRadioStation(r.Context(), station); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

func (s *Subsonic) deleteInternetRadioStationHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	if !c.user.IsAdmin {
		s.serveError(w, c, errorNotAuthorized, "only admins may manage radio stations")
		return
	}
	stationID, err := uuid.Parse(c.param("id"))
	if err != nil {
		s.serveError(w, c, errorNotFound, "station not found")
		return
	}
	if err := s.repo.DeleteRadioStation(r.Context(), stationID); err != nil {
		s.serveRepoError(w, c, err)
		return
	}
	s.serve(w, c, s.newResponse())
}

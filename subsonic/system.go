package subsonic

import (
	"net/http"
)

// ping is public so clients can probe the server before logging in. When
// credentials are supplied anyway they are still validated best-effort.
func (s *Subsonic) pingHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	s.serve(w, c, s.newResponse())
}

func (s *Subsonic) getLicenseHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	response := s.newResponse()
	response.License = &License{Valid: true}
	s.serve(w, c, response)
}

// openSubsonicExtensionsHandler lists the OpenSubsonic extensions this
// server implements. Public per the OpenSubsonic spec.
func (s *Subsonic) openSubsonicExtensionsHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	response := s.newResponse()
	response.OpenSubsonicExt = []Extension{
		{Name: "formPost", Versions: []int{1}},
		{Name: "songLyrics", Versions: []int{1}},
	}
	s.serve(w, c, response)
}

package subsonic

import (
	"context"
	"net/http"
)

// startScanHandler kicks off a library rescan in the background. Admin only.
func (s *Subsonic) startScanHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	if !c.user.IsAdmin {
		s.serveError(w, c, errorNotAuthorized, "only admins may start a scan")
		return
	}
	// Detached from the request context so the scan survives the response.
	s.scanner.Start(context.Background())
	s.serveScanStatus(w, c)
}

func (s *Subsonic) getScanStatusHandler(w http.ResponseWriter, r *http.Request, c *inboundCall) {
	s.serveScanStatus(w, c)
}

func (s *Subsonic) serveScanStatus(w http.ResponseWriter, c *inboundCall) {
	scanning, count := s.scanner.Status()
	response := s.newResponse()
	response.ScanStatus = &ScanStatus{Scanning: scanning, Count: count}
	s.serve(w, c, response)
}

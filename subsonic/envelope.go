package subsonic

import (
	"encoding/xml"
	"fmt"
	"log"
	"net/http"

	json "github.com/goccy/go-json"
)

// protocolVersion is the Subsonic API version we implement.
const protocolVersion = "1.16.1"

// Error codes defined by the Subsonic API. The set is closed: every failure
// is mapped onto one of these before it leaves the server.
const (
	errorGeneric          = 0
	errorMissingParameter = 10
	errorWrongCredentials = 40
	errorNotAuthorized    = 50
	errorNotFound         = 70
)

// newResponse returns an ok envelope ready for a payload.
func (s *Subsonic) newResponse() *Response {
	return &Response{
		Status:        "ok",
		Version:       protocolVersion,
		Type:          s.serverName,
		ServerVersion: s.serverVersion,
		OpenSubsonic:  true,
	}
}

// jsonWrapper is the outer object of the JSON rendering.
type jsonWrapper struct {
	Response *Response `json:"subsonic-response"`
}

// serve writes the envelope in the format the request asked for.
func (s *Subsonic) serve(w http.ResponseWriter, c *inboundCall, response *Response) {
	switch c.format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(jsonWrapper{Response: response}); err != nil {
			log.Printf("subsonic: writing json response: %v", err)
		}
	case "jsonp":
		w.Header().Set("Content-Type", "application/javascript")
		data, err := json.Marshal(jsonWrapper{Response: response})
		if err != nil {
			log.Printf("subsonic: writing jsonp response: %v", err)
			return
		}
		fmt.Fprintf(w, "%s(%s);", c.callback, data)
	default:
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(xml.Header))
		if err := xml.NewEncoder(w).Encode(response); err != nil {
			log.Printf("subsonic: writing xml response: %v", err)
		}
	}
}

// serveError writes a failed envelope with one of the closed error codes.
func (s *Subsonic) serveError(w http.ResponseWriter, c *inboundCall, code int, message string) {
	response := s.newResponse()
	response.Status = "failed"
	response.Error = &Error{Code: code, Message: message}
	s.serve(w, c, response)
}

package main

import (
	"log"
	"net/http"
	"strconv"
	"time"
)

// statusWriter wraps http.ResponseWriter to capture the status code and
// body size for the access log.
type statusWriter struct {
	http.ResponseWriter
	status int
	length int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.length += n
	return n, err
}

// HttpLog wraps a handler with one access log line per request.
func HttpLog(handle http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		writer := statusWriter{ResponseWriter: w}
		handle.ServeHTTP(&writer, r)

		log.Printf("%s \"%s %s %s\" %d %d %s %dms",
			r.RemoteAddr,
			r.Method,
			r.URL.String(),
			r.Proto,
			writer.status,
			writer.length,
			strconv.Quote(r.Header.Get("User-Agent")),
			time.Since(start).Milliseconds())
	}
}

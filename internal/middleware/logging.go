package middleware

import (
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.WithFields(log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"ua":     r.Header.Get("User-Agent"),
			}).Trace(" ====> request")
			next.ServeHTTP(w, r)
		})
	}
}

// DrainAndCloseRequest drains and closes the request body once the handler
// is done, so the connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.Copy(io.Discard, r.Body)
				_ = r.Body.Close()
			}
		})
	}
}

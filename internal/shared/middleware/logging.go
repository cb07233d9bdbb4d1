package middleware

import (
	"log"
	"net/http"
	"time"
)

// statusRecorder remembers the first status code a handler writes so the
// access log can report it. Follow-up WriteHeader calls are ignored, the
// same way net/http treats them.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w}
}

func (rw *statusRecorder) Status() int {
	return rw.status
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.status != 0 {
		return
	}

	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logging emits one access-log line per request: method, path, status and
// elapsed time.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := wrapResponseWriter(w)
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			// A body write without an explicit header defaults to 200
			status = http.StatusOK
		}

		log.Printf("%s %s -> %d in %s", r.Method, r.URL.Path, status, time.Since(start))
	})
}

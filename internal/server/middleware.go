package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"griddemo/internal/metrics"
)

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// instrument tags each request with an id, then logs it and records the
// request counter and latency histogram by route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// ServeMux fills r.Pattern while routing.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.IncCounter(metrics.RequestsTotal, 1, metrics.Labels{
			"route":  route,
			"status": strconv.Itoa(rec.status),
		})
		metrics.Since(s.metrics, metrics.RequestDuration, start, metrics.Labels{"route": route})

		s.logger.Printf("server: %s %s %d %s id=%s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond), id)
	})
}

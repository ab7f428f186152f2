package api

import (
	"net/http"
	"strconv"
	"time"

	"patternleader/observability"

	"github.com/go-chi/chi/v5"
)

// statusRecorder captures the status code and body size written downstream.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// MetricsMiddleware records request count, latency and response size per
// chi route pattern, so every symbol hits the same label value.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}

		observability.GetMetrics().RecordHTTPRequest(
			r.Method, route, strconv.Itoa(rec.status), time.Since(start), rec.bytes)
	})
}

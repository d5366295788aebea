package middleware

import (
	"net/http"
	"taskPlanner/internal/telemetry"
	"time"

	"github.com/go-chi/chi/v5"
)

// Metrics учитывает запросы в Prometheus. Шаблон маршрута известен только
// после маршрутизации, поэтому читается после next.
func Metrics(m *telemetry.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.Started()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			m.Finished(r.Method, route, sw.status, time.Since(start))
		})
	}
}

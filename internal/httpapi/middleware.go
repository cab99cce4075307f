package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
)

// accessLog пишет каждый запрос на уровне debug.
func accessLog(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.WithFields(log.Fields{
					"method":     r.Method,
					"path":       r.URL.Path,
					"status":     statusOf(ww),
					"duration":   time.Since(start),
					"remote":     r.RemoteAddr,
					"request_id": chimiddleware.GetReqID(r.Context()),
				}).Debug("request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// observe записывает метрики запроса с шаблоном маршрута chi в label route,
// чтобы id из пути не раздувал кардинальность.
func observe(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				route := ""
				if rctx := chi.RouteContext(r.Context()); rctx != nil {
					route = rctx.RoutePattern()
				}
				m.RecordRequest(r.Method, route, statusOf(ww), time.Since(start))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// statusOf возвращает 200, если handler не вызвал WriteHeader явно.
func statusOf(ww chimiddleware.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}

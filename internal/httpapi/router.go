// Package httpapi публикует каталог по HTTP: маршруты REST API, статические файлы,
// метрики и health-пробы поверх chi.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/health"
	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
	"github.com/vladislavdragonenkov/whiskies/internal/service/catalog"
)

// maxBodyBytes ограничивает размер тела запроса на запись.
const maxBodyBytes = 1 << 20

// Options перечисляет зависимости роутера.
type Options struct {
	Dispatcher *catalog.Dispatcher
	Health     *health.Handler
	Metrics    *metrics.HTTPMetrics
	// MetricsHandler отдаёт /metrics; по умолчанию promhttp.Handler().
	MetricsHandler http.Handler
	// AssetsDir задаёт каталог для /assets/*; пустая строка отключает раздачу.
	AssetsDir string
	Logger    *log.Entry
}

// NewRouter собирает http.Handler со всеми маршрутами сервиса.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "http")
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog(logger))
	r.Use(observe(opts.Metrics))
	r.Use(chimiddleware.Recoverer)

	api := &catalogHandlers{dispatcher: opts.Dispatcher, logger: logger}
	r.Route("/api/whiskies", func(r chi.Router) {
		r.Get("/", api.list)
		r.Post("/", api.create)
		r.Get("/{id}", api.get)
		r.Put("/{id}", api.update)
		r.Delete("/{id}", api.delete)
	})

	if dir := strings.TrimSpace(opts.AssetsDir); dir != "" {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.Dir(dir))))
	}

	metricsHandler := opts.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)

	if opts.Health != nil {
		r.Handle("/healthz", opts.Health)
		r.Get("/readyz", opts.Health.ReadinessHandler)
	}
	r.Get("/livez", health.LivenessHandler)

	return r
}

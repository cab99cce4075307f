// Package app собирает сервис каталога из конфигурации и управляет его жизненным циклом.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/whiskies/internal/domain"
	"github.com/vladislavdragonenkov/whiskies/internal/health"
	"github.com/vladislavdragonenkov/whiskies/internal/httpapi"
	"github.com/vladislavdragonenkov/whiskies/internal/metrics"
	"github.com/vladislavdragonenkov/whiskies/internal/service/bootstrap"
	"github.com/vladislavdragonenkov/whiskies/internal/service/catalog"
	"github.com/vladislavdragonenkov/whiskies/internal/version"
)

// Run открывает хранилище, готовит схему (и начальные данные), затем обслуживает
// HTTP до отмены ctx. Ошибка подготовки хранилища прерывает запуск до открытия порта.
func Run(ctx context.Context, cfg Config) error {
	return run(ctx, cfg, nil)
}

// run принимает onListen, чтобы тесты узнавали фактический адрес при ":0".
func run(ctx context.Context, cfg Config, onListen func(addr net.Addr)) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, metrics.NewStoreMetrics(), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.close(); err != nil {
			logger.WithError(err).Warn("failed to close store")
		} else {
			logger.Info("store closed")
		}
	}()

	if err := prepareStore(ctx, cfg, deps, logger); err != nil {
		logger.WithError(err).Error("store bootstrap failed")
		return fmt.Errorf("bootstrap: %w", err)
	}

	producer := initKafkaProducer(cfg.Kafka, logger)
	defer closeKafka(producer, logger)

	opts := []catalog.Option{
		catalog.WithStoreFailureStatus(cfg.API.StoreFailureStatus),
		catalog.WithLogger(logger.WithField("layer", "catalog")),
	}
	if producer != nil {
		opts = append(opts, catalog.WithPublisher(producer))
	}
	dispatcher := catalog.NewDispatcher(deps.repo, opts...)

	healthHandler := newHealthHandler(cfg.Health, deps.storeChecker)

	handler := httpapi.NewRouter(httpapi.Options{
		Dispatcher: dispatcher,
		Health:     healthHandler,
		Metrics:    metrics.NewHTTPMetrics(),
		AssetsDir:  cfg.AssetsDir,
		Logger:     logger.WithField("layer", "http"),
	})

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}
	if onListen != nil {
		onListen(lis.Addr())
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP сервер слушает %s", lis.Addr())
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(srv, cfg.ShutdownTimeout, logger)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// prepareStore создаёт схему и, если включено, заполняет пустой каталог.
func prepareStore(ctx context.Context, cfg Config, deps runtimeDependencies, logger *log.Entry) error {
	bootstrapLogger := logger.WithField("layer", "bootstrap")
	if !cfg.SeedOnStartup {
		return ensureSchemaOnly(ctx, deps.schema, bootstrapLogger)
	}

	result, err := bootstrap.Run(ctx, deps.schema, deps.repo, bootstrapLogger)
	if err != nil {
		return err
	}
	if result.Seeded {
		for _, w := range result.Created {
			bootstrapLogger.WithFields(log.Fields{"id": w.ID, "name": w.Name}).Debug("seed row created")
		}
	}
	return nil
}

func ensureSchemaOnly(ctx context.Context, schema domain.SchemaManager, logger *log.Entry) error {
	if err := schema.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("schema ensured, seeding disabled")
	return nil
}

// newHealthHandler регистрирует проверку хранилища с таймаутом из конфигурации.
func newHealthHandler(cfg HealthConfig, store health.Pinger) *health.Handler {
	handler := health.NewHandler(version.GetVersion())
	handler.SetCheckTimeout(cfg.CheckTimeout)
	handler.Register("store", store)
	return handler
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}

// Package app собирает зависимости сервиса и управляет жизненным циклом
// HTTP API, сервера метрик и outbox-воркера.
package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/foodorder/internal/health"
	"github.com/vladislavdragonenkov/foodorder/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
	"github.com/vladislavdragonenkov/foodorder/internal/service/basket"
	"github.com/vladislavdragonenkov/foodorder/internal/service/catalog"
	"github.com/vladislavdragonenkov/foodorder/internal/service/identity"
	"github.com/vladislavdragonenkov/foodorder/internal/service/order"
	"github.com/vladislavdragonenkov/foodorder/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/foodorder/internal/version"
)

// Run запускает сервис и блокируется до отмены ctx или ошибки API-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	shopMetrics := metrics.NewShopMetrics()
	httpMetrics := metrics.NewHTTPMetrics()

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", deps.storageChecker)

	catalogOptions := []catalog.Option{
		catalog.WithLogger(logger.WithField("layer", "catalog")),
		catalog.WithMetrics(shopMetrics),
	}
	dishCache, cacheChecker, closeCache := initDishCache(ctx, cfg, logger)
	if dishCache != nil {
		catalogOptions = append(catalogOptions, catalog.WithCache(dishCache))
		healthHandler.RegisterChecker("dish-cache", cacheChecker)
		defer func() { _ = closeCache() }()
	}

	orderOptions := []order.Option{
		order.WithLogger(logger.WithField("layer", "orders")),
		order.WithMetrics(shopMetrics),
	}

	// Outbox включается только вместе с Kafka: без брокера события некому читать.
	var kafkaProducer *kafka.Producer
	if producer, err := initKafkaProducer(cfg, logger); err == nil && producer != nil {
		kafkaProducer = producer
		orderOptions = append(orderOptions, order.WithOutbox(deps.outboxRepo))
	}
	defer closeKafka(kafkaProducer, logger)

	var (
		outboxCancel context.CancelFunc
		outboxDone   <-chan struct{}
	)
	if kafkaProducer != nil {
		workers := []runner{newOutboxWorker(cfg, deps.outboxRepo, kafkaProducer, logger)}
		if cleanup := newOutboxCleanup(cfg, deps.outboxRepo, logger); cleanup != nil {
			workers = append(workers, cleanup)
		}
		outboxCancel, outboxDone = startOutboxWorker(ctx, workers...)
	}
	defer shutdownOutboxWorker(outboxCancel, outboxDone, logger)

	router := httpapi.NewRouter(httpapi.Config{
		StaticDir:      cfg.StaticDir,
		SPAIndex:       cfg.SPAIndex,
		AllowedOrigins: cfg.AllowedOrigins(),
	}, httpapi.Dependencies{
		Catalog:  catalog.NewService(deps.dishes, catalogOptions...),
		Baskets:  basket.NewService(deps.baskets, logger.WithField("layer", "basket"), shopMetrics),
		Orders:   order.NewService(deps.orders, orderOptions...),
		Identity: identity.NewService(deps.identity, logger.WithField("layer", "identity"), shopMetrics),
		Logger:   logger.WithField("layer", "http"),
		Metrics:  httpMetrics,
	})

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, cfg.ShutdownTimeout, logger)

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}

	apiSrv := &http.Server{Handler: router, ReadHeaderTimeout: readHeaderTimeout}
	errCh := serveAPI(apiSrv, lis, logger)

	logger.WithFields(version.Fields()).WithFields(log.Fields{
		"storage":  cfg.StorageDriver,
		"identity": cfg.IdentityProvider,
		"kafka":    kafkaProducer != nil,
	}).Info("food service started")

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, cfg.ShutdownTimeout, logger)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

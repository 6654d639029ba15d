package app

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/foodorder/internal/health"
	rediscache "github.com/vladislavdragonenkov/foodorder/internal/storage/redis"
)

// initDishCache подключает Redis-кэш каталога, если задан REDIS_ADDR.
// Недоступный Redis не мешает запуску: каталог читается напрямую из хранилища.
func initDishCache(ctx context.Context, cfg Config, logger *log.Entry) (domain.DishCache, healthcheck.Checker, func() error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, nil, nil
	}

	client, err := rediscache.NewClient(ctx, addr)
	if err != nil {
		logger.WithError(err).Warn("failed to connect to redis, continuing without dish cache")
		return nil, nil, nil
	}

	logger.WithField("addr", addr).Info("dish cache initialized")
	checker := healthcheck.NewOptionalChecker("dish-cache", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return rediscache.NewDishCache(client, cfg.DishCacheTTL), checker, client.Close
}

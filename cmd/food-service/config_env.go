package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/foodorder/internal/app"
)

const (
	envPort                   = "PORT"
	envMetricsAddr            = "METRICS_ADDR"
	envFirebaseServiceAccount = "FIREBASE_SERVICE_ACCOUNT"
	envStorageDriver          = "STORAGE_DRIVER"
	envPostgresDSN            = "POSTGRES_DSN"
	envPostgresEnsureSchema   = "POSTGRES_ENSURE_SCHEMA"
	envPostgresMaxConns       = "POSTGRES_MAX_CONNS"
	envIdentityProvider       = "IDENTITY_PROVIDER"
	envLocalAuthSecret        = "LOCAL_AUTH_SECRET"
	envLocalAuthTokenTTL      = "LOCAL_AUTH_TOKEN_TTL"
	envIdentityToolkitURL     = "IDENTITY_TOOLKIT_URL"
	envKafkaBrokers           = "KAFKA_BROKERS"
	envKafkaOrderTopic        = "KAFKA_ORDER_TOPIC"
	envKafkaDLQTopic          = "KAFKA_DLQ_TOPIC"
	envOutboxPollInterval     = "OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize        = "OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts      = "OUTBOX_MAX_ATTEMPTS"
	envOutboxRetention        = "OUTBOX_RETENTION"
	envOutboxCleanupInterval  = "OUTBOX_CLEANUP_INTERVAL"
	envRedisAddr              = "REDIS_ADDR"
	envDishCacheTTL           = "DISH_CACHE_TTL"
	envDishesSeedFile         = "DISHES_SEED_FILE"
	envStaticDir              = "STATIC_DIR"
	envSPAIndex               = "SPA_INDEX"
	envCORSAllowedOrigins     = "CORS_ALLOWED_ORIGINS"
	envShutdownTimeout        = "SHUTDOWN_TIMEOUT"
	envLogLevel               = "LOG_LEVEL"
	envLogFormat              = "LOG_FORMAT"
)

type envLookup func(string) (string, bool)

// readConfigFromEnv собирает конфигурацию из окружения. Некорректные значения
// не валят старт: остаётся значение по умолчанию, а в warnings пишется причина.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	warn := func(key, raw string, err error) {
		warnings = append(warnings, fmt.Sprintf("invalid %s=%q: %v; using default", key, raw, err))
	}
	positive := func(v time.Duration) bool { return v > 0 }

	if v, ok := lookup(envPort); ok && strings.TrimSpace(v) != "" {
		cfg.HTTPAddr = portToAddr(strings.TrimSpace(v))
	}
	str(envMetricsAddr, &cfg.MetricsAddr)

	str(envFirebaseServiceAccount, &cfg.FirebaseServiceAccount)
	if cfg.FirebaseServiceAccount != "" {
		cfg.StorageDriver = app.StorageDriverFirestore
		cfg.IdentityProvider = app.IdentityProviderFirebase
	}
	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(envIdentityProvider); ok && strings.TrimSpace(v) != "" {
		cfg.IdentityProvider = strings.ToLower(strings.TrimSpace(v))
	}

	str(envPostgresDSN, &cfg.PostgresDSN)
	if raw, ok := lookup(envPostgresEnsureSchema); ok {
		if v, err := parseBool(raw); err != nil {
			warn(envPostgresEnsureSchema, raw, err)
		} else {
			cfg.PostgresEnsureSchema = v
		}
	}

	str(envLocalAuthSecret, &cfg.LocalAuthSecret)
	if raw, ok := lookup(envLocalAuthTokenTTL); ok {
		if v, err := parseDuration(raw, positive, "must be > 0"); err != nil {
			warn(envLocalAuthTokenTTL, raw, err)
		} else {
			cfg.LocalAuthTokenTTL = v
		}
	}
	str(envIdentityToolkitURL, &cfg.IdentityToolkitURL)

	str(envKafkaBrokers, &cfg.KafkaBrokers)
	str(envKafkaOrderTopic, &cfg.KafkaOrderTopic)
	str(envKafkaDLQTopic, &cfg.KafkaDLQTopic)
	if raw, ok := lookup(envOutboxPollInterval); ok {
		if v, err := parseDuration(raw, positive, "must be > 0"); err != nil {
			warn(envOutboxPollInterval, raw, err)
		} else {
			cfg.OutboxPollInterval = v
		}
	}

	// Срезы, а не map: предупреждения должны идти в порядке объявления.
	for _, setting := range []struct {
		key string
		dst *time.Duration
	}{
		{key: envOutboxRetention, dst: &cfg.OutboxRetention},
		{key: envOutboxCleanupInterval, dst: &cfg.OutboxCleanupInterval},
	} {
		raw, ok := lookup(setting.key)
		if !ok {
			continue
		}
		if v, err := parseDuration(raw, positive, "must be > 0"); err != nil {
			warn(setting.key, raw, err)
		} else {
			*setting.dst = v
		}
	}
	for _, setting := range []struct {
		key string
		dst *int
	}{
		{key: envPostgresMaxConns, dst: &cfg.PostgresMaxConns},
		{key: envOutboxBatchSize, dst: &cfg.OutboxBatchSize},
		{key: envOutboxMaxAttempts, dst: &cfg.OutboxMaxAttempts},
	} {
		raw, ok := lookup(setting.key)
		if !ok {
			continue
		}
		if v, err := parseInt(raw, func(v int) bool { return v > 0 }, "must be > 0"); err != nil {
			warn(setting.key, raw, err)
		} else {
			*setting.dst = v
		}
	}

	str(envRedisAddr, &cfg.RedisAddr)
	if raw, ok := lookup(envDishCacheTTL); ok {
		if v, err := parseDuration(raw, positive, "must be > 0"); err != nil {
			warn(envDishCacheTTL, raw, err)
		} else {
			cfg.DishCacheTTL = v
		}
	}
	str(envDishesSeedFile, &cfg.DishesSeedFile)

	// Пустое значение отключает раздачу статики.
	if v, ok := lookup(envStaticDir); ok {
		cfg.StaticDir = strings.TrimSpace(v)
	}
	if v, ok := lookup(envSPAIndex); ok {
		cfg.SPAIndex = strings.TrimSpace(v)
	}
	str(envCORSAllowedOrigins, &cfg.CORSAllowedOrigins)

	if raw, ok := lookup(envShutdownTimeout); ok {
		if v, err := parseDuration(raw, positive, "must be > 0"); err != nil {
			warn(envShutdownTimeout, raw, err)
		} else {
			cfg.ShutdownTimeout = v
		}
	}

	return cfg, warnings
}

// portToAddr принимает и голый порт ("3000"), и адрес (":3000", "127.0.0.1:3000").
func portToAddr(port string) string {
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean")
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(v) {
		return 0, fmt.Errorf("%s", rule)
	}
	return v, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(v) {
		return 0, fmt.Errorf("%s", rule)
	}
	return v, nil
}

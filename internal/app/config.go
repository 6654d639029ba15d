package app

import (
	"fmt"
	"strings"
	"time"
)

// Драйверы документного хранилища.
const (
	StorageDriverMemory    = "memory"
	StorageDriverPostgres  = "postgres"
	StorageDriverFirestore = "firestore"
)

// Провайдеры идентификации.
const (
	IdentityProviderFirebase = "firebase"
	IdentityProviderLocal    = "local"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver        string
	PostgresDSN          string
	PostgresEnsureSchema bool
	// PostgresMaxConns: размер пула; 0 оставляет значение по умолчанию.
	PostgresMaxConns int
	// DishesSeedFile загружается в каталог при драйвере memory.
	DishesSeedFile string

	// FirebaseServiceAccount: JSON сервисного аккаунта с дополнительным полем webApiKey.
	FirebaseServiceAccount string
	IdentityProvider       string
	IdentityToolkitURL     string
	LocalAuthSecret        string
	LocalAuthTokenTTL      time.Duration

	RedisAddr    string
	DishCacheTTL time.Duration

	KafkaBrokers    string
	KafkaClientID   string
	KafkaOrderTopic string
	KafkaDLQTopic   string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration

	// OutboxRetention: сколько опубликованные события хранятся до очистки.
	OutboxRetention       time.Duration
	OutboxCleanupInterval time.Duration

	StaticDir          string
	SPAIndex           string
	CORSAllowedOrigins string

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает настройки для локального запуска без внешних сервисов.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:              ":3000",
		MetricsAddr:           ":9090",
		StorageDriver:         StorageDriverMemory,
		PostgresEnsureSchema:  true,
		IdentityProvider:      IdentityProviderLocal,
		LocalAuthTokenTTL:     time.Hour,
		DishCacheTTL:          5 * time.Minute,
		KafkaClientID:         "food-service",
		KafkaOrderTopic:       "food.order.events",
		OutboxPollInterval:    time.Second,
		OutboxBatchSize:       100,
		OutboxMaxAttempts:     3,
		OutboxRetryDelay:      50 * time.Millisecond,
		OutboxRetention:       24 * time.Hour,
		OutboxCleanupInterval: 10 * time.Minute,
		StaticDir:             "public",
		SPAIndex:              "dist/index.html",
		CORSAllowedOrigins:    "*",
		ShutdownTimeout:       10 * time.Second,
	}
}

// Validate проверяет согласованность настроек до инициализации зависимостей.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return fmt.Errorf("postgres storage driver requires POSTGRES_DSN")
		}
	case StorageDriverFirestore:
		if strings.TrimSpace(c.FirebaseServiceAccount) == "" {
			return fmt.Errorf("firestore storage driver requires FIREBASE_SERVICE_ACCOUNT")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}

	switch c.IdentityProvider {
	case IdentityProviderLocal:
	case IdentityProviderFirebase:
		if strings.TrimSpace(c.FirebaseServiceAccount) == "" {
			return fmt.Errorf("firebase identity provider requires FIREBASE_SERVICE_ACCOUNT")
		}
	default:
		return fmt.Errorf("unsupported identity provider %q", c.IdentityProvider)
	}
	return nil
}

// AllowedOrigins разбирает CORSAllowedOrigins.
func (c Config) AllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// Brokers разбирает KafkaBrokers.
func (c Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

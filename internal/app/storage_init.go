package app

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebasesdk "firebase.google.com/go/v4"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/foodorder/internal/health"
	fbidentity "github.com/vladislavdragonenkov/foodorder/internal/identity/firebase"
	fsstore "github.com/vladislavdragonenkov/foodorder/internal/storage/firestore"
	"github.com/vladislavdragonenkov/foodorder/internal/storage/memory"
	"github.com/vladislavdragonenkov/foodorder/internal/storage/postgres"
)

// runtimeDependencies: хранилища и провайдер идентификации выбранной конфигурации.
type runtimeDependencies struct {
	dishes     domain.DishRepository
	baskets    domain.BasketRepository
	orders     domain.OrderRepository
	outboxRepo domain.OutboxRepository

	identity       domain.IdentityProvider
	storageChecker healthcheck.Checker

	closers []func() error
}

// firebaseRuntime: общий Firebase App для Firestore и Auth.
type firebaseRuntime struct {
	app     *firebasesdk.App
	account fbidentity.ServiceAccount
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps := &runtimeDependencies{}

	var fb *firebaseRuntime
	if cfg.StorageDriver == StorageDriverFirestore || cfg.IdentityProvider == IdentityProviderFirebase {
		app, account, err := fbidentity.NewApp(ctx, []byte(cfg.FirebaseServiceAccount))
		if err != nil {
			return nil, err
		}
		fb = &firebaseRuntime{app: app, account: account}
		logger.WithField("project_id", account.ProjectID).Info("firebase app initialized")
	}

	if err := deps.initStorage(ctx, cfg, fb, logger); err != nil {
		_ = deps.close()
		return nil, err
	}
	if err := deps.initIdentity(ctx, cfg, fb, logger); err != nil {
		_ = deps.close()
		return nil, err
	}
	return deps, nil
}

func (d *runtimeDependencies) initStorage(ctx context.Context, cfg Config, fb *firebaseRuntime, logger *log.Entry) error {
	storageLogger := logger.WithField("storage", cfg.StorageDriver)

	switch cfg.StorageDriver {
	case StorageDriverMemory:
		dishes := memory.NewDishRepository(storageLogger)
		if path := strings.TrimSpace(cfg.DishesSeedFile); path != "" {
			n, err := dishes.LoadFile(path)
			if err != nil {
				return err
			}
			storageLogger.WithField("dishes", n).Info("dish catalog seeded")
		}
		d.dishes = dishes
		d.baskets = memory.NewBasketRepository()
		d.orders = memory.NewOrderRepository()
		d.outboxRepo = memory.NewOutboxRepository()
		d.storageChecker = healthcheck.NewPingChecker("storage", func(context.Context) error { return nil })

	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN, postgres.WithMaxOpenConns(cfg.PostgresMaxConns))
		if err != nil {
			return err
		}
		d.closers = append(d.closers, store.Close)

		if cfg.PostgresEnsureSchema {
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
		}
		d.dishes = postgres.NewDishRepository(store, storageLogger)
		d.baskets = postgres.NewBasketRepository(store)
		d.orders = postgres.NewOrderRepository(store)
		d.outboxRepo = postgres.NewOutboxRepository(store)
		d.storageChecker = healthcheck.NewPingChecker("storage", store.Ping)

	case StorageDriverFirestore:
		client, err := fb.firestore(ctx)
		if err != nil {
			return err
		}
		store := fsstore.NewStore(client)
		d.closers = append(d.closers, store.Close)

		d.dishes = fsstore.NewDishRepository(store, storageLogger)
		d.baskets = fsstore.NewBasketRepository(store)
		d.orders = fsstore.NewOrderRepository(store)
		// Firestore не хранит outbox: события живут в памяти процесса до публикации.
		d.outboxRepo = memory.NewOutboxRepository()
		d.storageChecker = healthcheck.NewPingChecker("storage", store.Ping)

	default:
		return fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	storageLogger.Info("storage initialized")
	return nil
}

func (fb *firebaseRuntime) firestore(ctx context.Context) (*firestore.Client, error) {
	client, err := fb.app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}
	return client, nil
}

// close закрывает ресурсы в обратном порядке открытия.
func (d *runtimeDependencies) close() error {
	var firstErr error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.closers = nil
	return firstErr
}

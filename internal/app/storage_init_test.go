package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/foodorder/internal/health"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	deps, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "memory-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(memory) failed: %v", err)
	}
	defer func() { _ = deps.close() }()

	if deps.dishes == nil || deps.baskets == nil || deps.orders == nil || deps.outboxRepo == nil {
		t.Fatalf("memory repositories must be initialized: %+v", deps)
	}
	if deps.identity == nil {
		t.Fatal("identity provider should not be nil")
	}
	if check := deps.storageChecker.Check(context.Background()); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy memory storage, got %+v", check)
	}
}

func TestInitRuntimeDependencies_MemorySeed(t *testing.T) {
	t.Parallel()

	seed := filepath.Join(t.TempDir(), "dishes.json")
	if err := os.WriteFile(seed, []byte(`{"borsch":{"name":"Борщ","price":"120"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.DishesSeedFile = seed

	deps, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "memory-seed"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies failed: %v", err)
	}

	dishes, err := deps.dishes.List(context.Background())
	if err != nil {
		t.Fatalf("list dishes: %v", err)
	}
	if len(dishes) != 1 || dishes[0].Price != 120 {
		t.Fatalf("unexpected dishes %+v", dishes)
	}

	cfg.DishesSeedFile = filepath.Join(t.TempDir(), "missing.json")
	if _, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "memory-seed")); err == nil {
		t.Fatal("expected error for missing seed file")
	}
}

func TestInitRuntimeDependencies_LocalIdentityWorksWithoutSecret(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.LocalAuthSecret = ""

	deps, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "local-identity"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies failed: %v", err)
	}

	session, err := deps.identity.SignUp(context.Background(), "user@example.com", "secret1")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := deps.identity.Verify(context.Background(), session.Token); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverPostgres

	_, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "postgres-missing-dsn"))
	if err == nil {
		t.Fatal("expected error when postgres driver is selected without DSN")
	}
}

func TestInitRuntimeDependencies_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.StorageDriver = "sqlite"

	_, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "unsupported-driver"))
	if err == nil || !strings.Contains(err.Error(), "unsupported storage driver") {
		t.Fatalf("expected unsupported storage driver error, got %v", err)
	}
}

func TestInitRuntimeDependencies_InvalidServiceAccount(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.IdentityProvider = IdentityProviderFirebase
	cfg.FirebaseServiceAccount = `{"type":"service_account"}`

	if _, err := initRuntimeDependencies(context.Background(), cfg, log.WithField("test", "firebase")); err == nil {
		t.Fatal("expected error for service account without project_id")
	}
}

func TestRuntimeDependencies_CloseOrder(t *testing.T) {
	var order []string
	deps := &runtimeDependencies{closers: []func() error{
		func() error { order = append(order, "first"); return nil },
		func() error { order = append(order, "second"); return domain.ErrStoreUnavailable },
	}}

	if err := deps.close(); err == nil {
		t.Fatal("expected close error to be returned")
	}
	if strings.Join(order, ",") != "second,first" {
		t.Fatalf("expected reverse close order, got %v", order)
	}
	if err := deps.close(); err != nil {
		t.Fatalf("second close must be a no-op, got %v", err)
	}
}

func TestInitDishCache_Disabled(t *testing.T) {
	cache, checker, closeFn := initDishCache(context.Background(), DefaultConfig(), log.WithField("test", "cache"))
	if cache != nil || checker != nil || closeFn != nil {
		t.Fatal("cache must be disabled without REDIS_ADDR")
	}
}

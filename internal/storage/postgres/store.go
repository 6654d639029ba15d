package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const opTimeout = 5 * time.Second

var errStoreNotInitialized = errors.New("postgres store is not initialized")

type openOptions struct {
	pingTimeout     time.Duration
	maxOpenConns    int
	connMaxLifetime time.Duration
	connMaxIdleTime time.Duration
}

// Option настраивает пул подключений в Open.
type Option func(*openOptions)

// WithMaxOpenConns ограничивает размер пула; idle-подключений держится столько же.
func WithMaxOpenConns(n int) Option {
	return func(o *openOptions) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithPingTimeout задаёт таймаут проверки доступности базы.
func WithPingTimeout(d time.Duration) Option {
	return func(o *openOptions) {
		if d > 0 {
			o.pingTimeout = d
		}
	}
}

// Store: PostgreSQL, используемый как документное хранилище коллекций dishes/basket/orders.
type Store struct {
	db          *sql.DB
	pingTimeout time.Duration
}

// Open открывает пул pgx через database/sql и проверяет доступность базы.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	o := openOptions{
		pingTimeout:     5 * time.Second,
		maxOpenConns:    25,
		connMaxLifetime: 30 * time.Minute,
		connMaxIdleTime: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(o.maxOpenConns)
	db.SetMaxIdleConns(o.maxOpenConns)
	db.SetConnMaxLifetime(o.connMaxLifetime)
	db.SetConnMaxIdleTime(o.connMaxIdleTime)

	store := &Store{db: db, pingTimeout: o.pingTimeout}
	if err := store.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return store, nil
}

// NewStore оборачивает уже открытое подключение (sqlmock в тестах).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, pingTimeout: opTimeout}
}

// DB возвращает пул для репозиториев пакета.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping используется readiness-проверкой хранилища.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errStoreNotInitialized
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()
	return s.db.PingContext(pingCtx)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Package redis хранит кэш листинга блюд в Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

const (
	defaultDishesKey = "food:dishes:all"
	defaultTTL       = 5 * time.Minute
	opTimeout        = time.Second
)

// cmdable: подмножество команд go-redis, которое использует кэш.
type cmdable interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
}

// DishCache кэширует полный листинг блюд одним ключом.
type DishCache struct {
	client cmdable
	key    string
	ttl    time.Duration
}

// NewClient создаёт клиент Redis и проверяет соединение.
func NewClient(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// NewDishCache создаёт кэш; ttl<=0 заменяется значением по умолчанию.
func NewDishCache(client cmdable, ttl time.Duration) *DishCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &DishCache{client: client, key: defaultDishesKey, ttl: ttl}
}

// Get возвращает закэшированный листинг; ok=false при промахе.
func (c *DishCache) Get(ctx context.Context) ([]domain.Dish, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", c.key, err)
	}

	var dishes []domain.Dish
	if err := json.Unmarshal(raw, &dishes); err != nil {
		return nil, false, fmt.Errorf("decode cached dishes: %w", err)
	}
	return dishes, true, nil
}

// Set сохраняет листинг с TTL.
func (c *DishCache) Set(ctx context.Context, dishes []domain.Dish) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	payload, err := json.Marshal(dishes)
	if err != nil {
		return fmt.Errorf("encode dishes: %w", err)
	}
	if err := c.client.Set(ctx, c.key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key, err)
	}
	return nil
}

var _ domain.DishCache = (*DishCache)(nil)

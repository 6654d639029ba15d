package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

type basketRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string][]domain.BasketItem
}

// NewBasketRepository создаёт in-memory реализацию BasketRepository.
func NewBasketRepository() domain.BasketRepository {
	return &basketRepositoryInMemory{
		items: make(map[string][]domain.BasketItem),
	}
}

func (r *basketRepositoryInMemory) Get(ctx context.Context, userID string) ([]domain.BasketItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StoreError("read basket", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	basket, ok := r.items[strings.TrimSpace(userID)]
	if !ok {
		return []domain.BasketItem{}, nil
	}
	return append([]domain.BasketItem{}, basket...), nil
}

// Put полностью перезаписывает корзину (last write wins).
func (r *basketRepositoryInMemory) Put(ctx context.Context, userID string, items []domain.BasketItem) error {
	if err := ctx.Err(); err != nil {
		return domain.StoreError("write basket", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[strings.TrimSpace(userID)] = append([]domain.BasketItem{}, items...)
	return nil
}

var _ domain.BasketRepository = (*basketRepositoryInMemory)(nil)

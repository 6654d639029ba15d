package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// DishRepository хранит сырые документы каталога так же, как документное хранилище:
// поле price может оказаться строкой или мусором и приводится при чтении.
type DishRepository struct {
	mu     sync.RWMutex
	docs   map[string]map[string]any
	logger *log.Entry
}

// NewDishRepository создаёт пустой in-memory каталог.
func NewDishRepository(logger *log.Entry) *DishRepository {
	if logger == nil {
		logger = log.WithField("component", "memory-dishes")
	}
	return &DishRepository{
		docs:   make(map[string]map[string]any),
		logger: logger,
	}
}

// Put добавляет или заменяет документ блюда.
func (r *DishRepository) Put(id string, fields map[string]any) {
	doc := make(map[string]any, len(fields))
	for k, v := range fields {
		doc[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[id] = doc
}

// LoadFile загружает каталог из JSON-файла вида {"<id>": {"name": ..., "price": ...}}.
func (r *DishRepository) LoadFile(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read dishes seed: %w", err)
	}

	var docs map[string]map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return 0, fmt.Errorf("decode dishes seed: %w", err)
	}

	for id, fields := range docs {
		r.Put(id, fields)
	}
	return len(docs), nil
}

// List возвращает блюда, отсортированные по id.
func (r *DishRepository) List(ctx context.Context) ([]domain.Dish, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StoreError("list dishes", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	dishes := make([]domain.Dish, 0, len(r.docs))
	for id, fields := range r.docs {
		dish, ok := domain.DishFromFields(id, fields)
		if !ok {
			r.logger.WithFields(log.Fields{
				"dish_id": id,
				"price":   fields["price"],
			}).Warn("dish price is not numeric, using 0")
		}
		dishes = append(dishes, dish)
	}

	sort.Slice(dishes, func(i, j int) bool {
		return dishes[i].ID < dishes[j].ID
	})
	return dishes, nil
}

var _ domain.DishRepository = (*DishRepository)(nil)

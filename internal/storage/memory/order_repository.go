package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

// orderRepositoryInMemory: in-memory реализация OrderRepository.
// Один мьютекс на репозиторий сериализует все Update, поэтому orderId назначаются без дублей.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string][]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string][]domain.Order),
	}
}

// List возвращает копию заказов пользователя или пустой срез, если документа нет.
func (r *orderRepositoryInMemory) List(ctx context.Context, userID string) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.StoreError("list orders", err)
	}
	userID = strings.TrimSpace(userID)

	r.mu.RLock()
	defer r.mu.RUnlock()

	orders, ok := r.items[userID]
	if !ok {
		return []domain.Order{}, nil
	}
	return cloneOrders(orders), nil
}

// Update применяет mutate к копии документа и сохраняет результат под эксклюзивной блокировкой.
func (r *orderRepositoryInMemory) Update(ctx context.Context, userID string, mutate domain.OrderMutation) error {
	if err := ctx.Err(); err != nil {
		return domain.StoreError("update orders", err)
	}
	userID = strings.TrimSpace(userID)

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.items[userID]
	next, err := mutate(cloneOrders(current), exists)
	if err != nil {
		return err
	}
	// Сохраняем копию, чтобы вызывающий код не мог изменить состояние репозитория.
	r.items[userID] = cloneOrders(next)
	return nil
}

func cloneOrders(src []domain.Order) []domain.Order {
	dst := make([]domain.Order, len(src))
	for i, order := range src {
		dst[i] = order
		dst[i].Items = make([]domain.OrderItem, len(order.Items))
		for j, item := range order.Items {
			if item.Grade != nil {
				g := *item.Grade
				item.Grade = &g
			}
			dst[i].Items[j] = item
		}
	}
	return dst
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)

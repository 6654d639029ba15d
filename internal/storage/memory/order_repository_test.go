package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/storage/memory"
)

func newOrder() domain.Order {
	return domain.Order{
		Items: []domain.OrderItem{
			{OrderDishID: 1, DishID: "borsch", Name: "Борщ", Price: 120, Quantity: 2},
			{OrderDishID: 2, DishID: "kompot", Name: "Компот", Price: 40, Quantity: 1},
		},
		TotalPrice: 280,
	}
}

func appendMutation(order domain.Order) domain.OrderMutation {
	return func(orders []domain.Order, _ bool) ([]domain.Order, error) {
		next, _ := domain.AppendOrder(orders, order)
		return next, nil
	}
}

func TestOrderRepository_ListMissingUser(t *testing.T) {
	repo := memory.NewOrderRepository()

	orders, err := repo.List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if orders == nil || len(orders) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", orders)
	}
}

func TestOrderRepository_UpdateAndList(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()

	var sawExists []bool
	for i := 0; i < 2; i++ {
		err := repo.Update(ctx, "user-1", func(orders []domain.Order, exists bool) ([]domain.Order, error) {
			sawExists = append(sawExists, exists)
			next, _ := domain.AppendOrder(orders, newOrder())
			return next, nil
		})
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
	}
	if sawExists[0] || !sawExists[1] {
		t.Fatalf("unexpected exists flags: %v", sawExists)
	}

	orders, err := repo.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 || orders[0].OrderID != 1 || orders[1].OrderID != 2 {
		t.Fatalf("unexpected orders: %+v", orders)
	}
}

func TestOrderRepository_UpdateErrorKeepsDocument(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()

	if err := repo.Update(ctx, "user-1", appendMutation(newOrder())); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	err := repo.Update(ctx, "user-1", func(orders []domain.Order, _ bool) ([]domain.Order, error) {
		orders[0].Items[0].Quantity = 99
		return nil, domain.ErrOrderItemNotFound
	})
	if !errors.Is(err, domain.ErrOrderItemNotFound) {
		t.Fatalf("expected mutation error, got %v", err)
	}

	orders, _ := repo.List(ctx, "user-1")
	if orders[0].Items[0].Quantity != 2 {
		t.Fatalf("document must stay unchanged, got %+v", orders[0].Items[0])
	}
}

func TestOrderRepository_ListReturnsCopy(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()

	if err := repo.Update(ctx, "user-1", appendMutation(newOrder())); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	orders, _ := repo.List(ctx, "user-1")
	grade := 5
	orders[0].Items[0].Grade = &grade

	again, _ := repo.List(ctx, "user-1")
	if again[0].Items[0].Grade != nil {
		t.Fatal("external mutation leaked into repository")
	}
}

func TestOrderRepository_ConcurrentUpdatesAssignDistinctIDs(t *testing.T) {
	repo := memory.NewOrderRepository()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if err := repo.Update(ctx, "user-1", appendMutation(newOrder())); err != nil {
				t.Errorf("update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	orders, err := repo.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != workers {
		t.Fatalf("expected %d orders, got %d", workers, len(orders))
	}
	for i, order := range orders {
		if order.OrderID != i+1 {
			t.Fatalf("expected orderId %d at position %d, got %d", i+1, i, order.OrderID)
		}
	}
}

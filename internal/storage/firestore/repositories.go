package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

type dishRepository struct {
	client *firestore.Client
	logger *log.Entry
}

// NewDishRepository создаёт Firestore-реализацию DishRepository.
func NewDishRepository(store *Store, logger *log.Entry) domain.DishRepository {
	if logger == nil {
		logger = log.WithField("component", "firestore-dishes")
	}
	return &dishRepository{client: store.Client(), logger: logger}
}

func (r *dishRepository) List(ctx context.Context) ([]domain.Dish, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	snaps, err := r.client.Collection(collectionDishes).Documents(ctx).GetAll()
	if err != nil {
		return nil, domain.StoreError("list dishes", err)
	}

	dishes := make([]domain.Dish, 0, len(snaps))
	for _, snap := range snaps {
		fields := snap.Data()
		dish, ok := domain.DishFromFields(snap.Ref.ID, fields)
		if !ok {
			r.logger.WithFields(log.Fields{
				"dish_id": snap.Ref.ID,
				"price":   fields["price"],
			}).Warn("dish price is not numeric, using 0")
		}
		dishes = append(dishes, dish)
	}
	return dishes, nil
}

type basketRepository struct {
	client *firestore.Client
}

// NewBasketRepository создаёт Firestore-реализацию BasketRepository.
func NewBasketRepository(store *Store) domain.BasketRepository {
	return &basketRepository{client: store.Client()}
}

func (r *basketRepository) Get(ctx context.Context, userID string) ([]domain.BasketItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	snap, err := r.client.Collection(collectionBaskets).Doc(userID).Get(ctx)
	if isNotFound(err) {
		return []domain.BasketItem{}, nil
	}
	if err != nil {
		return nil, domain.StoreError("read basket", err)
	}

	var doc domain.BasketDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, domain.StoreError("decode basket", err)
	}
	if doc.Basket == nil {
		return []domain.BasketItem{}, nil
	}
	return doc.Basket, nil
}

func (r *basketRepository) Put(ctx context.Context, userID string, items []domain.BasketItem) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.client.Collection(collectionBaskets).Doc(userID).Set(ctx, domain.BasketDocument{Basket: items}); err != nil {
		return domain.StoreError("write basket", err)
	}
	return nil
}

type orderRepository struct {
	client *firestore.Client
}

// NewOrderRepository создаёт Firestore-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{client: store.Client()}
}

func (r *orderRepository) List(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	snap, err := r.client.Collection(collectionOrders).Doc(userID).Get(ctx)
	if isNotFound(err) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, domain.StoreError("list orders", err)
	}
	return decodeOrders(snap)
}

// Update выполняет read-modify-write внутри транзакции Firestore. При конфликте
// Firestore перезапускает функцию транзакции, поэтому mutate обязан быть чистым.
func (r *orderRepository) Update(ctx context.Context, userID string, mutate domain.OrderMutation) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	ref := r.client.Collection(collectionOrders).Doc(userID)

	var mutateErr error
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		mutateErr = nil

		snap, err := tx.Get(ref)
		if err != nil && !isNotFound(err) {
			return err
		}
		exists := err == nil && snap.Exists()

		var orders []domain.Order
		if exists {
			if orders, err = decodeOrders(snap); err != nil {
				return err
			}
		}

		next, err := mutate(orders, exists)
		if err != nil {
			mutateErr = err
			return err
		}
		return tx.Set(ref, domain.OrdersDocument{Orders: next})
	})
	if mutateErr != nil {
		return mutateErr
	}
	if err != nil {
		return domain.StoreError("update orders", fmt.Errorf("user %s: %w", userID, err))
	}
	return nil
}

func decodeOrders(snap *firestore.DocumentSnapshot) ([]domain.Order, error) {
	var doc domain.OrdersDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, domain.StoreError("decode orders", err)
	}
	if doc.Orders == nil {
		return []domain.Order{}, nil
	}
	return doc.Orders, nil
}

var (
	_ domain.DishRepository   = (*dishRepository)(nil)
	_ domain.BasketRepository = (*basketRepository)(nil)
	_ domain.OrderRepository  = (*orderRepository)(nil)
)

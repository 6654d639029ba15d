package postgres

import (
	"context"
	"database/sql"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

type basketRepository struct {
	db *sql.DB
}

// NewBasketRepository создаёт PostgreSQL-реализацию BasketRepository.
func NewBasketRepository(store *Store) domain.BasketRepository {
	return &basketRepository{db: store.DB()}
}

func (r *basketRepository) Get(ctx context.Context, userID string) ([]domain.BasketItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc domain.BasketDocument
	found, err := getDocument(ctx, r.db, collectionBaskets, userID, &doc)
	if err != nil {
		return nil, domain.StoreError("read basket", err)
	}
	if !found || doc.Basket == nil {
		return []domain.BasketItem{}, nil
	}
	return doc.Basket, nil
}

func (r *basketRepository) Put(ctx context.Context, userID string, items []domain.BasketItem) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := putDocument(ctx, r.db, collectionBaskets, userID, domain.BasketDocument{Basket: items}); err != nil {
		return domain.StoreError("write basket", err)
	}
	return nil
}

var _ domain.BasketRepository = (*basketRepository)(nil)

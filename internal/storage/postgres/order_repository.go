package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

var emptyOrdersDocument = []byte(`{"orders":[]}`)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) List(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc domain.OrdersDocument
	found, err := getDocument(ctx, r.db, collectionOrders, userID, &doc)
	if err != nil {
		return nil, domain.StoreError("list orders", err)
	}
	if !found || doc.Orders == nil {
		return []domain.Order{}, nil
	}
	return doc.Orders, nil
}

// Update выполняет read-modify-write документа заказов в одной транзакции.
// Пустой документ вставляется через ON CONFLICT DO NOTHING, после чего строка
// блокируется SELECT ... FOR UPDATE, так что конкурентные Update одного пользователя
// выполняются строго по очереди.
func (r *orderRepository) Update(ctx context.Context, userID string, mutate domain.OrderMutation) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.StoreError("begin orders tx", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id) DO NOTHING
	`, collectionOrders, userID, emptyOrdersDocument, now)
	if err != nil {
		return domain.StoreError("ensure orders document", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return domain.StoreError("ensure orders document", err)
	}

	var raw []byte
	if err = tx.QueryRowContext(ctx, `
		SELECT data FROM documents
		WHERE collection = $1 AND id = $2
		FOR UPDATE
	`, collectionOrders, userID).Scan(&raw); err != nil {
		return domain.StoreError("lock orders document", err)
	}

	var doc domain.OrdersDocument
	if err = json.Unmarshal(raw, &doc); err != nil {
		return domain.StoreError("decode orders document", err)
	}

	next, err := mutate(doc.Orders, inserted == 0)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(domain.OrdersDocument{Orders: next})
	if err != nil {
		return domain.StoreError("encode orders document", err)
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE documents
		SET data = $3, updated_at = $4
		WHERE collection = $1 AND id = $2
	`, collectionOrders, userID, payload, now); err != nil {
		return domain.StoreError("write orders document", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.StoreError("commit orders tx", fmt.Errorf("user %s: %w", userID, err))
	}
	return nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)

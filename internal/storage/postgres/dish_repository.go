package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

type dishRepository struct {
	db     *sql.DB
	logger *log.Entry
}

// NewDishRepository создаёт PostgreSQL-реализацию DishRepository поверх коллекции dishes.
func NewDishRepository(store *Store, logger *log.Entry) domain.DishRepository {
	if logger == nil {
		logger = log.WithField("component", "postgres-dishes")
	}
	return &dishRepository{db: store.DB(), logger: logger}
}

func (r *dishRepository) List(ctx context.Context) ([]domain.Dish, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, data FROM documents
		WHERE collection = $1
		ORDER BY id
	`, collectionDishes)
	if err != nil {
		return nil, domain.StoreError("list dishes", err)
	}
	defer rows.Close()

	dishes := make([]domain.Dish, 0)
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, domain.StoreError("scan dish", err)
		}

		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, domain.StoreError("decode dish", fmt.Errorf("%s: %w", id, err))
		}

		dish, ok := domain.DishFromFields(id, fields)
		if !ok {
			r.logger.WithFields(log.Fields{
				"dish_id": id,
				"price":   fields["price"],
			}).Warn("dish price is not numeric, using 0")
		}
		dishes = append(dishes, dish)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreError("iterate dishes", err)
	}

	return dishes, nil
}

var _ domain.DishRepository = (*dishRepository)(nil)

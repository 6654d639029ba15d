// Package basket хранит корзину пользователя.
package basket

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
)

// Service читает и перезаписывает корзины.
type Service struct {
	repo    domain.BasketRepository
	logger  *log.Entry
	metrics *metrics.ShopMetrics
}

// NewService создаёт сервис корзины. logger и m могут быть nil.
func NewService(repo domain.BasketRepository, logger *log.Entry, m *metrics.ShopMetrics) *Service {
	if logger == nil {
		logger = log.WithField("component", "basket")
	}
	return &Service{repo: repo, logger: logger, metrics: m}
}

// GetBasket возвращает корзину пользователя; отсутствие документа: пустой список.
func (s *Service) GetBasket(ctx context.Context, userID string) ([]domain.BasketItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}

	items, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, domain.StoreError("read basket", err)
	}
	if items == nil {
		items = []domain.BasketItem{}
	}
	return items, nil
}

// SetBasket полностью заменяет корзину пользователя.
func (s *Service) SetBasket(ctx context.Context, userID string, items []domain.BasketItem) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrUserIDRequired
	}
	if err := domain.ValidateBasket(items); err != nil {
		return err
	}

	if err := s.repo.Put(ctx, userID, items); err != nil {
		return domain.StoreError("write basket", err)
	}

	if s.metrics != nil {
		s.metrics.RecordBasketWrite()
	}
	s.logger.WithFields(log.Fields{
		"user_id": userID,
		"items":   len(items),
	}).Debug("basket saved")
	return nil
}

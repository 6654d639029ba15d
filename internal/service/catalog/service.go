// Package catalog отдаёт каталог блюд с опциональным кэшем.
package catalog

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
)

// Option настраивает Service.
type Option func(*Service)

// WithCache подключает кэш листинга.
func WithCache(cache domain.DishCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics включает учёт попаданий в кэш.
func WithMetrics(m *metrics.ShopMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service читает каталог блюд.
type Service struct {
	dishes  domain.DishRepository
	cache   domain.DishCache
	logger  *log.Entry
	metrics *metrics.ShopMetrics
}

// NewService создаёт сервис каталога.
func NewService(dishes domain.DishRepository, options ...Option) *Service {
	s := &Service{dishes: dishes}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "catalog")
	}
	return s
}

// ListDishes возвращает все блюда. Пустой каталог: ErrCatalogEmpty, пустой листинг не кэшируется.
func (s *Service) ListDishes(ctx context.Context) ([]domain.Dish, error) {
	if dishes, ok := s.fromCache(ctx); ok {
		return dishes, nil
	}

	dishes, err := s.dishes.List(ctx)
	if err != nil {
		return nil, domain.StoreError("list dishes", err)
	}
	if len(dishes) == 0 {
		return nil, domain.ErrCatalogEmpty
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dishes); err != nil {
			s.logger.WithError(err).Warn("failed to cache dish listing")
		}
	}
	return dishes, nil
}

func (s *Service) fromCache(ctx context.Context) ([]domain.Dish, bool) {
	if s.cache == nil {
		return nil, false
	}

	dishes, ok, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		s.logger.WithError(err).Warn("dish cache lookup failed, reading store")
		s.recordCache("error")
		return nil, false
	case !ok || len(dishes) == 0:
		s.recordCache("miss")
		return nil, false
	default:
		s.recordCache("hit")
		return dishes, true
	}
}

func (s *Service) recordCache(result string) {
	if s.metrics != nil {
		s.metrics.RecordDishCache(result)
	}
}

// Package order создаёт заказы и принимает оценки блюд.
package order

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
)

// Option настраивает Service.
type Option func(*Service)

// WithOutbox включает публикацию событий заказа через outbox.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(s *Service) {
		s.outbox = outbox
	}
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics включает бизнес-метрики заказов.
func WithMetrics(m *metrics.ShopMetrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock подменяет источник времени (для тестов).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service управляет документом заказов пользователя.
type Service struct {
	repo    domain.OrderRepository
	outbox  domain.OutboxRepository
	logger  *log.Entry
	metrics *metrics.ShopMetrics
	now     func() time.Time
}

// NewService создаёт сервис заказов.
func NewService(repo domain.OrderRepository, options ...Option) *Service {
	s := &Service{repo: repo}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "orders")
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// ListOrders возвращает заказы пользователя; пользователь без заказов получает пустой список.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrUserIDRequired
	}

	orders, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, domain.StoreError("list orders", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

// CreateOrder добавляет заказ в конец списка пользователя и назначает orderId = число заказов + 1.
// Чтение, подсчёт и запись выполняются одной атомарной операцией хранилища.
func (s *Service) CreateOrder(ctx context.Context, userID string, order *domain.Order) (domain.Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Order{}, domain.ErrUserIDRequired
	}
	if err := order.ValidateNew(); err != nil {
		return domain.Order{}, err
	}

	pending := *order
	pending.CreatedAt = s.now()

	var stored domain.Order
	start := time.Now()
	err := s.repo.Update(ctx, userID, func(orders []domain.Order, _ bool) ([]domain.Order, error) {
		var next []domain.Order
		next, stored = domain.AppendOrder(orders, pending)
		return next, nil
	})
	if err != nil {
		return domain.Order{}, domain.StoreError("create order", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderUpdateDuration(time.Since(start))
		s.metrics.RecordOrderCreated(len(stored.Items))
	}
	s.logger.WithFields(log.Fields{
		"user_id":  userID,
		"order_id": stored.OrderID,
		"items":    len(stored.Items),
	}).Info("order created")

	s.enqueue(ctx, userID, stored.OrderID, domain.EventTypeOrderCreated, domain.OrderCreatedEvent{
		UserID:     userID,
		OrderID:    stored.OrderID,
		ItemCount:  len(stored.Items),
		TotalPrice: stored.TotalPrice,
		CreatedAt:  stored.CreatedAt,
	})
	return stored, nil
}

// RateOrderItem выставляет оценку позиции orderDishId в заказе orderId.
// Любая ошибка оставляет документ заказов без изменений.
func (s *Service) RateOrderItem(ctx context.Context, userID, orderID, dishID string, grade int) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.ErrUserIDRequired
	}
	oid, err := parseIntAtLeast(orderID, 1, domain.ErrOrderIDInvalid)
	if err != nil {
		return err
	}
	// Номера позиций задаёт клиент, нумерация может начинаться с 0.
	did, err := parseIntAtLeast(dishID, 0, domain.ErrDishIDInvalid)
	if err != nil {
		return err
	}
	if err := domain.ValidateGrade(grade); err != nil {
		return err
	}

	var rated domain.OrderItem
	start := time.Now()
	err = s.repo.Update(ctx, userID, func(orders []domain.Order, exists bool) ([]domain.Order, error) {
		if !exists {
			return nil, domain.ErrOrderNotFound
		}
		next, err := domain.RateItem(orders, oid, did, grade)
		if err != nil {
			return nil, err
		}
		rated = findItem(next, oid, did)
		return next, nil
	})
	if err != nil {
		return domain.StoreError("rate order item", err)
	}

	if s.metrics != nil {
		s.metrics.RecordOrderUpdateDuration(time.Since(start))
		s.metrics.RecordItemRated(grade)
	}
	s.logger.WithFields(log.Fields{
		"user_id":       userID,
		"order_id":      oid,
		"order_dish_id": did,
		"grade":         grade,
	}).Info("order item rated")

	s.enqueue(ctx, userID, oid, domain.EventTypeOrderItemRated, domain.OrderItemRatedEvent{
		UserID:      userID,
		OrderID:     oid,
		OrderDishID: did,
		DishID:      rated.DishID,
		Grade:       grade,
		RatedAt:     s.now(),
	})
	return nil
}

// enqueue кладёт событие в outbox. Ошибка не отменяет уже сохранённый заказ.
func (s *Service) enqueue(ctx context.Context, userID string, orderID int, eventType string, event any) {
	if s.outbox == nil {
		return
	}

	entry := s.logger.WithFields(log.Fields{
		"user_id":    userID,
		"order_id":   orderID,
		"event_type": eventType,
	})

	payload, err := json.Marshal(event)
	if err != nil {
		entry.WithError(err).Error("failed to marshal order event")
		s.recordOutboxFailure()
		return
	}

	if _, err := s.outbox.Enqueue(ctx, domain.OutboxMessage{
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   domain.OrderAggregateID(userID, orderID),
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		entry.WithError(err).Warn("failed to enqueue order event")
		s.recordOutboxFailure()
	}
}

func (s *Service) recordOutboxFailure() {
	if s.metrics != nil {
		s.metrics.RecordOutboxEnqueueFailure()
	}
}

func parseIntAtLeast(raw string, minValue int, invalid error) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < minValue {
		return 0, invalid
	}
	return v, nil
}

func findItem(orders []domain.Order, orderID, dishID int) domain.OrderItem {
	for _, o := range orders {
		if o.OrderID != orderID {
			continue
		}
		for _, item := range o.Items {
			if item.OrderDishID == dishID {
				return item
			}
		}
	}
	return domain.OrderItem{}
}

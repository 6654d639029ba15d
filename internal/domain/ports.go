package domain

import (
	"context"
	"time"
)

// DishRepository читает коллекцию dishes.
type DishRepository interface {
	// List возвращает все блюда; пустой каталог: пустой срез без ошибки.
	List(ctx context.Context) ([]Dish, error)
}

// DishCache: опциональный кэш листинга блюд.
type DishCache interface {
	// Get возвращает закэшированный листинг; ok=false при промахе.
	Get(ctx context.Context) (dishes []Dish, ok bool, err error)
	Set(ctx context.Context, dishes []Dish) error
}

// BasketRepository хранит по одному документу корзины на пользователя.
type BasketRepository interface {
	// Get возвращает позиции корзины; отсутствие документа: пустой срез без ошибки.
	Get(ctx context.Context, userID string) ([]BasketItem, error)
	// Put полностью перезаписывает документ корзины.
	Put(ctx context.Context, userID string, items []BasketItem) error
}

// OrderMutation получает текущий список заказов пользователя (exists=false, если документа нет)
// и возвращает новый список. Ошибка прерывает обновление без записи.
type OrderMutation func(orders []Order, exists bool) ([]Order, error)

// OrderRepository хранит по одному документу заказов на пользователя.
type OrderRepository interface {
	// List возвращает заказы пользователя; отсутствие документа: пустой срез без ошибки.
	List(ctx context.Context, userID string) ([]Order, error)
	// Update атомарно читает документ заказов, применяет mutate и перезаписывает документ.
	// Конкурентные Update для одного пользователя сериализуются хранилищем.
	Update(ctx context.Context, userID string, mutate OrderMutation) error
}

// IdentityProvider: внешний провайдер идентификации.
type IdentityProvider interface {
	// SignUp создаёт аккаунт и возвращает сессию. ErrEmailInUse, если email занят.
	SignUp(ctx context.Context, email, password string) (Session, error)
	// SignIn проверяет пароль у провайдера и возвращает сессию. ErrInvalidCredentials при неудаче.
	SignIn(ctx context.Context, email, password string) (Session, error)
	// Verify проверяет сессионный токен (включая отзыв) и возвращает пользователя.
	Verify(ctx context.Context, token string) (User, error)
	// RevokeSessions отзывает все выданные пользователю сессии.
	RevokeSessions(ctx context.Context, uid string) error
	// GetUser возвращает актуальные данные пользователя.
	GetUser(ctx context.Context, uid string) (User, error)
}

// OutboxPublisher публикует события из outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxPurger удаляет опубликованные события, чтобы outbox не рос бесконечно.
type OutboxPurger interface {
	// DeleteSent удаляет не более limit событий со статусом sent, обновлённых не позже before.
	DeleteSent(ctx context.Context, before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

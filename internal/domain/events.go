package domain

import (
	"strconv"
	"time"
)

// Типы событий заказа, публикуемых через outbox.
const (
	AggregateTypeOrder = "order"

	EventTypeOrderCreated   = "order.created"
	EventTypeOrderItemRated = "order.item_rated"
)

// OrderCreatedEvent: полезная нагрузка события order.created.
type OrderCreatedEvent struct {
	UserID     string    `json:"user_id"`
	OrderID    int       `json:"order_id"`
	ItemCount  int       `json:"item_count"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderItemRatedEvent: полезная нагрузка события order.item_rated.
type OrderItemRatedEvent struct {
	UserID      string    `json:"user_id"`
	OrderID     int       `json:"order_id"`
	OrderDishID int       `json:"order_dish_id"`
	DishID      string    `json:"dish_id,omitempty"`
	Grade       int       `json:"grade"`
	RatedAt     time.Time `json:"rated_at"`
}

// OrderAggregateID строит ключ агрегата "<userId>/<orderId>" для событий заказа.
func OrderAggregateID(userID string, orderID int) string {
	return userID + "/" + strconv.Itoa(orderID)
}

package domain

import (
	"fmt"
	"time"
)

const (
	// MinOrderItems и MaxOrderItems задают допустимое число позиций в новом заказе.
	MinOrderItems = 1
	MaxOrderItems = 10

	// MinGrade и MaxGrade задают шкалу оценки блюда.
	MinGrade = 1
	MaxGrade = 5
)

// OrderItem представляет одну позицию заказа.
type OrderItem struct {
	// OrderDishID задаётся клиентом и идентифицирует позицию внутри заказа.
	OrderDishID int     `json:"orderDishId" firestore:"orderDishId"`
	DishID      string  `json:"dishId" firestore:"dishId"`
	Name        string  `json:"name" firestore:"name"`
	Price       float64 `json:"price" firestore:"price"`
	Quantity    int     `json:"quantity" firestore:"quantity"`
	// Grade выставляется пользователем после получения заказа.
	Grade *int `json:"grade,omitempty" firestore:"grade,omitempty"`
}

// Order: заказ пользователя. OrderID уникален только в пределах списка заказов пользователя.
type Order struct {
	OrderID    int         `json:"orderId" firestore:"orderId"`
	Items      []OrderItem `json:"items" firestore:"items"`
	TotalPrice float64     `json:"totalPrice,omitempty" firestore:"totalPrice,omitempty"`
	CreatedAt  time.Time   `json:"createdAt" firestore:"createdAt"`
}

// OrdersDocument: форма документа в коллекции orders.
type OrdersDocument struct {
	Orders []Order `json:"orders" firestore:"orders"`
}

// ValidateNew проверяет заказ до любой записи в хранилище.
func (o *Order) ValidateNew() error {
	if o == nil {
		return ErrOrderRequired
	}
	if len(o.Items) < MinOrderItems || len(o.Items) > MaxOrderItems {
		return ErrItemCountRange
	}
	if o.TotalPrice < 0 {
		return fmt.Errorf("%w: totalPrice must be >= 0", ErrInvalidArgument)
	}
	for idx, item := range o.Items {
		if item.OrderDishID < 0 {
			return fmt.Errorf("%w: items[%d].orderDishId must be >= 0", ErrInvalidArgument, idx)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: items[%d].quantity must be >= 1", ErrInvalidArgument, idx)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: items[%d].price must be >= 0", ErrInvalidArgument, idx)
		}
		if item.Grade != nil {
			return fmt.Errorf("%w: items[%d].grade cannot be set on a new order", ErrInvalidArgument, idx)
		}
	}
	return nil
}

// ValidateGrade проверяет значение оценки.
func ValidateGrade(grade int) error {
	if grade == 0 {
		return ErrGradeRequired
	}
	if grade < MinGrade || grade > MaxGrade {
		return ErrGradeOutOfRange
	}
	return nil
}

// AppendOrder добавляет заказ в конец списка, назначая orderId = len(orders)+1.
// Возвращает новый список и сохранённый заказ; исходный срез не изменяется.
func AppendOrder(orders []Order, order Order) ([]Order, Order) {
	order.OrderID = len(orders) + 1
	next := make([]Order, 0, len(orders)+1)
	next = append(next, orders...)
	next = append(next, order)
	return next, order
}

// RateItem выставляет оценку позиции dishID в заказе orderID.
// Возвращает копию списка; исходный срез и остальные заказы не изменяются.
func RateItem(orders []Order, orderID, dishID, grade int) ([]Order, error) {
	orderIdx := -1
	for i := range orders {
		if orders[i].OrderID == orderID {
			orderIdx = i
			break
		}
	}
	if orderIdx == -1 {
		return nil, ErrOrderNotFound
	}

	itemIdx := -1
	for i := range orders[orderIdx].Items {
		if orders[orderIdx].Items[i].OrderDishID == dishID {
			itemIdx = i
			break
		}
	}
	if itemIdx == -1 {
		return nil, ErrOrderItemNotFound
	}

	next := make([]Order, len(orders))
	copy(next, orders)

	items := make([]OrderItem, len(orders[orderIdx].Items))
	copy(items, orders[orderIdx].Items)
	g := grade
	items[itemIdx].Grade = &g
	next[orderIdx].Items = items

	return next, nil
}

package domain

import "fmt"

// BasketItem: позиция корзины пользователя.
type BasketItem struct {
	DishID   string  `json:"dishId" firestore:"dishId"`
	Name     string  `json:"name" firestore:"name"`
	Price    float64 `json:"price" firestore:"price"`
	Quantity int     `json:"quantity" firestore:"quantity"`
	Image    string  `json:"image,omitempty" firestore:"image,omitempty"`
}

// BasketDocument: форма документа в коллекции baskets.
type BasketDocument struct {
	Basket []BasketItem `json:"basket" firestore:"basket"`
}

// ValidateBasket проверяет позиции корзины перед полной перезаписью документа.
// Пустой (не nil) список допустим и очищает корзину.
func ValidateBasket(items []BasketItem) error {
	if items == nil {
		return ErrBasketRequired
	}
	for idx, item := range items {
		if item.DishID == "" {
			return fmt.Errorf("%w: basket[%d].dishId is required", ErrInvalidArgument, idx)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: basket[%d].quantity must be >= 1", ErrInvalidArgument, idx)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: basket[%d].price must be >= 0", ErrInvalidArgument, idx)
		}
	}
	return nil
}

package domain

import (
	"math"
	"strconv"
	"strings"
)

// Dish: блюдо каталога. Для этого сервиса каталог только для чтения.
type Dish struct {
	ID          string  `json:"id" firestore:"-"`
	Name        string  `json:"name" firestore:"name"`
	Description string  `json:"description" firestore:"description"`
	Price       float64 `json:"price" firestore:"price"`
	Category    string  `json:"category" firestore:"category"`
	Image       string  `json:"image,omitempty" firestore:"image,omitempty"`
}

// CoercePrice приводит хранимое значение цены к числу.
// Числа проходят как есть, числовые строки парсятся; всё остальное даёт (0, false).
func CoercePrice(raw any) (float64, bool) {
	var v float64
	switch p := raw.(type) {
	case float64:
		v = p
	case float32:
		v = float64(p)
	case int:
		v = float64(p)
	case int32:
		v = float64(p)
	case int64:
		v = float64(p)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// DishFromFields собирает блюдо из произвольного документа хранилища.
// Второй результат false, если цену пришлось обнулить.
func DishFromFields(id string, fields map[string]any) (Dish, bool) {
	price, ok := CoercePrice(fields["price"])
	return Dish{
		ID:          id,
		Name:        stringField(fields, "name"),
		Description: stringField(fields, "description"),
		Price:       price,
		Category:    stringField(fields, "category"),
		Image:       stringField(fields, "image"),
	}, ok
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

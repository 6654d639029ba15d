package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ShopMetrics содержит бизнес-метрики заказов, корзин и авторизации.
type ShopMetrics struct {
	// Заказы
	ordersCreated    prometheus.Counter
	orderItems       prometheus.Histogram
	orderItemsRated  *prometheus.CounterVec
	orderUpdateTime  prometheus.Histogram
	orderOutboxFails prometheus.Counter

	basketWrites prometheus.Counter

	// Авторизация: операция × результат
	authOperations *prometheus.CounterVec

	// Кэш каталога: hit / miss / error
	dishCache *prometheus.CounterVec
}

// NewShopMetrics создаёт метрики в DefaultRegisterer.
func NewShopMetrics() *ShopMetrics {
	return NewShopMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewShopMetricsWithRegisterer создаёт метрики в указанном registerer (тесты используют отдельный registry).
func NewShopMetricsWithRegisterer(registerer prometheus.Registerer) *ShopMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ShopMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "food_orders_created_total",
			Help: "Total number of orders created",
		}),
		orderItems: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "food_order_items",
			Help:    "Number of items per created order",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		}),
		orderItemsRated: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "food_order_items_rated_total",
			Help: "Total number of order items rated, grouped by grade",
		}, []string{"grade"}),
		orderUpdateTime: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "food_order_document_update_seconds",
			Help:    "Duration of atomic order document updates in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		orderOutboxFails: registerCounter(registerer, prometheus.CounterOpts{
			Name: "food_order_outbox_enqueue_failures_total",
			Help: "Total number of order events that could not be enqueued to outbox",
		}),
		basketWrites: registerCounter(registerer, prometheus.CounterOpts{
			Name: "food_basket_writes_total",
			Help: "Total number of basket overwrites",
		}),
		authOperations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "food_auth_operations_total",
			Help: "Total number of identity operations grouped by operation and result",
		}, []string{"operation", "result"}),
		dishCache: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "food_dish_cache_lookups_total",
			Help: "Dish listing cache lookups grouped by result",
		}, []string{"result"}),
	}
}

// RecordOrderCreated учитывает новый заказ и число позиций в нём.
func (m *ShopMetrics) RecordOrderCreated(items int) {
	m.ordersCreated.Inc()
	m.orderItems.Observe(float64(items))
}

// RecordItemRated учитывает выставленную оценку.
func (m *ShopMetrics) RecordItemRated(grade int) {
	m.orderItemsRated.WithLabelValues(gradeLabel(grade)).Inc()
}

// RecordOrderUpdateDuration записывает длительность атомарного обновления документа заказов.
func (m *ShopMetrics) RecordOrderUpdateDuration(d time.Duration) {
	m.orderUpdateTime.Observe(d.Seconds())
}

// RecordOutboxEnqueueFailure учитывает событие, не попавшее в outbox.
func (m *ShopMetrics) RecordOutboxEnqueueFailure() {
	m.orderOutboxFails.Inc()
}

// RecordBasketWrite учитывает перезапись корзины.
func (m *ShopMetrics) RecordBasketWrite() {
	m.basketWrites.Inc()
}

// RecordAuth учитывает операцию авторизации (signup, login, logout, verify).
func (m *ShopMetrics) RecordAuth(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.authOperations.WithLabelValues(operation, result).Inc()
}

// RecordDishCache учитывает результат обращения к кэшу каталога.
func (m *ShopMetrics) RecordDishCache(result string) {
	m.dishCache.WithLabelValues(result).Inc()
}

func gradeLabel(grade int) string {
	if grade < 1 || grade > 5 {
		return "invalid"
	}
	return string(rune('0' + grade))
}

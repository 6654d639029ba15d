// Package httpapi: REST API сервиса заказа еды на gin.
package httpapi

import (
	"context"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
	"github.com/vladislavdragonenkov/foodorder/internal/metrics"
)

// DishLister отдаёт каталог блюд.
type DishLister interface {
	ListDishes(ctx context.Context) ([]domain.Dish, error)
}

// BasketService читает и перезаписывает корзины.
type BasketService interface {
	GetBasket(ctx context.Context, userID string) ([]domain.BasketItem, error)
	SetBasket(ctx context.Context, userID string, items []domain.BasketItem) error
}

// OrderService создаёт, читает и оценивает заказы.
type OrderService interface {
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	CreateOrder(ctx context.Context, userID string, order *domain.Order) (domain.Order, error)
	RateOrderItem(ctx context.Context, userID, orderID, dishID string, grade int) error
}

// IdentityGateway: операции авторизации.
type IdentityGateway interface {
	SignUp(ctx context.Context, email, password string) (domain.Session, error)
	LogIn(ctx context.Context, email, password string) (domain.Session, error)
	LogOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (domain.User, error)
	Authenticate(ctx context.Context, token string) (domain.User, error)
}

// Config: параметры HTTP-слоя.
type Config struct {
	// StaticDir раздаётся в корне сайта.
	StaticDir string
	// SPAIndex отдаётся на неизвестные GET-пути вне /api.
	SPAIndex string
	// AllowedOrigins для CORS; "*" разрешает любой origin.
	AllowedOrigins []string
}

// Dependencies: сервисы, которые обслуживает API. Logger и Metrics могут быть nil.
type Dependencies struct {
	Catalog  DishLister
	Baskets  BasketService
	Orders   OrderService
	Identity IdentityGateway
	Logger   *log.Entry
	Metrics  *metrics.HTTPMetrics
}

type handler struct {
	catalog  DishLister
	baskets  BasketService
	orders   OrderService
	identity IdentityGateway
	logger   *log.Entry
}

// NewRouter собирает gin.Engine со всеми маршрутами и middleware.
func NewRouter(cfg Config, deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "http")
	}

	h := &handler{
		catalog:  deps.Catalog,
		baskets:  deps.Baskets,
		orders:   deps.Orders,
		identity: deps.Identity,
		logger:   logger,
	}

	r := gin.New()
	r.Use(
		requestID(),
		requestLogger(logger),
		recordMetrics(deps.Metrics),
		gin.CustomRecovery(recoverPanic(logger)),
		cors(cfg.AllowedOrigins),
	)

	api := r.Group("/api")
	{
		api.GET("/dishes", h.listDishes)

		api.GET("/basket/:userId", h.getBasket)
		api.POST("/basket", h.saveBasket)

		api.GET("/orders/:userId", h.listOrders)
		api.POST("/orders", h.createOrder)
		api.PATCH("/orders/:userId/:orderId/:dishId", h.rateOrderItem)

		api.POST("/signup", h.signUp)
		api.POST("/login", h.logIn)
		api.POST("/logout", requireAuth(h.identity, logger), h.logOut)
		api.GET("/user", requireAuth(h.identity, logger), h.currentUser)
	}

	r.NoRoute(frontend(cfg.StaticDir, cfg.SPAIndex))

	return r
}

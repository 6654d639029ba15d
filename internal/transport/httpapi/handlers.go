package httpapi

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/foodorder/internal/domain"
)

type saveBasketRequest struct {
	UserID string              `json:"userId"`
	Basket []domain.BasketItem `json:"basket"`
}

type createOrderRequest struct {
	UserID string        `json:"userId"`
	Order  *domain.Order `json:"order"`
}

type rateItemRequest struct {
	Grade any `json:"grade"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
}

type createOrderResponse struct {
	Message string `json:"message"`
	OrderID int    `json:"orderId"`
}

func (h *handler) listDishes(c *gin.Context) {
	dishes, err := h.catalog.ListDishes(c.Request.Context())
	if err != nil {
		message := msgDishesFailed
		if domain.IsNotFound(err) {
			message = msgDishesNotFound
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusOK, dishes)
}

func (h *handler) getBasket(c *gin.Context) {
	items, err := h.baskets.GetBasket(c.Request.Context(), c.Param("userId"))
	if err != nil {
		message := msgBasketReadFailed
		if errors.Is(err, domain.ErrInvalidArgument) {
			message = msgUserMissing
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusOK, domain.BasketDocument{Basket: items})
}

func (h *handler) saveBasket(c *gin.Context) {
	var req saveBasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, malformed(err), msgBasketMissing)
		return
	}

	if err := h.baskets.SetBasket(c.Request.Context(), req.UserID, req.Basket); err != nil {
		message := msgBasketSaveFailed
		if errors.Is(err, domain.ErrInvalidArgument) {
			message = msgBasketMissing
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msgBasketSaved})
}

func (h *handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), c.Param("userId"))
	if err != nil {
		message := msgOrdersFailed
		if errors.Is(err, domain.ErrInvalidArgument) {
			message = msgUserMissing
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, malformed(err), msgBasketMissing)
		return
	}

	created, err := h.orders.CreateOrder(c.Request.Context(), req.UserID, req.Order)
	if err != nil {
		message := msgOrderSaveFailed
		switch {
		case errors.Is(err, domain.ErrItemCountRange):
			message = msgItemCount
		case errors.Is(err, domain.ErrInvalidArgument):
			message = msgBasketMissing
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusOK, createOrderResponse{Message: msgOrderSaved, OrderID: created.OrderID})
}

func (h *handler) rateOrderItem(c *gin.Context) {
	var req rateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, malformed(err), msgRequiredMissing)
		return
	}

	grade, err := parseGrade(req.Grade)
	if err != nil {
		h.fail(c, err, msgRequiredMissing)
		return
	}

	err = h.orders.RateOrderItem(c.Request.Context(), c.Param("userId"), c.Param("orderId"), c.Param("dishId"), grade)
	if err != nil {
		message := msgGradeFailed
		switch {
		case errors.Is(err, domain.ErrOrderItemNotFound):
			message = msgItemNotFound
		case errors.Is(err, domain.ErrOrderNotFound):
			message = msgOrderNotFound
		case errors.Is(err, domain.ErrInvalidArgument):
			message = msgRequiredMissing
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msgGradeSet})
}

func (h *handler) signUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, malformed(err), msgFieldsMissing)
		return
	}

	session, err := h.identity.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		message := msgSignUpFailed
		switch {
		case errors.Is(err, domain.ErrConflict):
			message = msgEmailInUse
		case errors.Is(err, domain.ErrInvalidArgument):
			message = msgFieldsMissing
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{Message: msgUserCreated, Token: session.Token, User: session.User})
}

func (h *handler) logIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, malformed(err), msgFieldsMissing)
		return
	}

	session, err := h.identity.LogIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		message := msgLogInFailed
		switch {
		case errors.Is(err, domain.ErrUnauthenticated):
			message = msgBadCredentials
		case errors.Is(err, domain.ErrInvalidArgument):
			message = msgFieldsMissing
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Message: msgLoggedIn, Token: session.Token, User: session.User})
}

func (h *handler) logOut(c *gin.Context) {
	if err := h.identity.LogOut(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		message := msgLogOutFailed
		if errors.Is(err, domain.ErrUnauthenticated) {
			message = msgUnauthorized
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: msgLoggedOut})
}

func (h *handler) currentUser(c *gin.Context) {
	user, err := h.identity.CurrentUser(c.Request.Context(), c.GetString(tokenKey))
	if err != nil {
		message := msgUserFailed
		if errors.Is(err, domain.ErrUnauthenticated) {
			message = msgUnauthorized
		}
		h.fail(c, err, message)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// parseGrade принимает число или числовую строку; отсутствие оценки: ErrGradeRequired.
func parseGrade(raw any) (int, error) {
	switch v := raw.(type) {
	case nil:
		return 0, domain.ErrGradeRequired
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: grade must be an integer", domain.ErrInvalidArgument)
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			return 0, domain.ErrGradeOutOfRange
		}
		return int(v), nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, domain.ErrGradeRequired
		}
		grade, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: grade must be an integer", domain.ErrInvalidArgument)
		}
		return grade, nil
	default:
		return 0, fmt.Errorf("%w: grade must be a number", domain.ErrInvalidArgument)
	}
}

func malformed(err error) error {
	return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidArgument, err)
}

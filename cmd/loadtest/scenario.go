package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const codeTransportError = "transport-error"

var errDuplicateOrderID = errors.New("duplicate order id")

type basketItem struct {
	DishID   string  `json:"dishId"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type orderItem struct {
	OrderDishID int     `json:"orderDishId"`
	DishID      string  `json:"dishId"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type orderPayload struct {
	Items      []orderItem `json:"items"`
	TotalPrice float64     `json:"totalPrice"`
}

type createOrderResponse struct {
	Message string `json:"message"`
	OrderID int    `json:"orderId"`
}

// shopClient: тонкий клиент HTTP API магазина для сценариев нагрузки.
type shopClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	col     *collector
}

func newShopClient(baseURL string, httpClient *http.Client, timeout time.Duration, col *collector) *shopClient {
	return &shopClient{baseURL: baseURL, http: httpClient, timeout: timeout, col: col}
}

// userFor распределяет сценарии по ограниченному набору пользователей, чтобы
// заказы одного пользователя создавались конкурентно.
func userFor(cfg config, runID string, index int) string {
	return fmt.Sprintf("%s-%s-%d", cfg.userTag, runID, index%cfg.users)
}

func runScenario(client *shopClient, cfg config, index int, runID string) (err error) {
	scenarioStart := time.Now()
	defer func() {
		code := strconv.Itoa(http.StatusOK)
		if err != nil {
			code = "failed"
		}
		client.col.record(scenarioMethod, time.Since(scenarioStart), code, err == nil)
	}()

	userID := userFor(cfg, runID, index)
	item := orderItem{OrderDishID: 1, DishID: cfg.dishID, Name: cfg.dishName, Price: cfg.price, Quantity: 1}

	if cfg.mode == modeBasketOrder {
		basket := []basketItem{{DishID: item.DishID, Name: item.Name, Price: item.Price, Quantity: item.Quantity}}
		if err := client.saveBasket(userID, basket); err != nil {
			return err
		}
	}

	orderID, err := client.createOrder(userID, orderPayload{Items: []orderItem{item}, TotalPrice: item.Price})
	if err != nil {
		return err
	}
	if orderID <= 0 {
		return fmt.Errorf("create order returned orderId %d", orderID)
	}
	if !client.col.trackOrderID(userID, orderID) {
		return fmt.Errorf("%w: user=%s orderId=%d", errDuplicateOrderID, userID, orderID)
	}

	if cfg.mode == modeCreateRate {
		return client.rateItem(userID, orderID, item.OrderDishID, index%5+1)
	}
	return nil
}

func (c *shopClient) saveBasket(userID string, items []basketItem) error {
	return c.call("SaveBasket", http.MethodPost, "/api/basket", map[string]any{
		"userId": userID,
		"basket": items,
	}, nil)
}

func (c *shopClient) createOrder(userID string, order orderPayload) (int, error) {
	var resp createOrderResponse
	err := c.call("CreateOrder", http.MethodPost, "/api/orders", map[string]any{
		"userId": userID,
		"order":  order,
	}, &resp)
	return resp.OrderID, err
}

func (c *shopClient) rateItem(userID string, orderID, orderDishID, grade int) error {
	path := fmt.Sprintf("/api/orders/%s/%d/%d", url.PathEscape(userID), orderID, orderDishID)
	return c.call("RateOrderItem", http.MethodPatch, path, map[string]any{"grade": grade}, nil)
}

// call выполняет запрос, учитывает его в статистике и декодирует ответ в out.
func (c *shopClient) call(method, httpMethod, path string, body, out any) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, httpMethod, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.col.record(method, time.Since(start), codeTransportError, false)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	ok := err == nil && resp.StatusCode == http.StatusOK
	c.col.record(method, time.Since(start), strconv.Itoa(resp.StatusCode), ok)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d: %s", method, resp.StatusCode, bytes.TrimSpace(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s: decode response: %w", method, err)
		}
	}
	return nil
}

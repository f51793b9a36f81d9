package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmeshcher/foodorder-client/internal/model"
)

// PaymentCompletion описывает ответ на завершение оплаты через PayPal.
type PaymentCompletion struct {
	Message string `json:"message"`
	OrderID int64  `json:"order_id"`
}

type paymentRequest struct {
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

type paypalCompleteRequest struct {
	OrderID string `json:"orderID"`
}

// Orders возвращает заказы, видимые текущему пользователю.
func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	var res []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders/", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Order возвращает заказ по идентификатору.
func (c *Client) Order(ctx context.Context, id int64) (*model.Order, error) {
	return c.orderAction(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/", id), nil)
}

// PlaceOrder подтверждает размещение заказа.
func (c *Client) PlaceOrder(ctx context.Context, id int64) (*model.Order, error) {
	return c.orderAction(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/place/", id), nil)
}

// CancelOrder отменяет заказ и возвращает его обновлённое состояние.
func (c *Client) CancelOrder(ctx context.Context, id int64) (*model.Order, error) {
	return c.orderAction(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/cancel/", id), nil)
}

// UpdateOrderPayment меняет способ оплаты заказа.
func (c *Client) UpdateOrderPayment(ctx context.Context, id int64, method model.PaymentMethod) (*model.Order, error) {
	return c.orderAction(ctx, http.MethodPost, fmt.Sprintf("/orders/%d/update_payment/", id), paymentRequest{PaymentMethod: method})
}

// CompletePayPalPayment сообщает серверу об одобренном платеже PayPal.
// Сервер сам создаёт заказ из корзины.
func (c *Client) CompletePayPalPayment(ctx context.Context, paypalOrderID string) (*PaymentCompletion, error) {
	var res PaymentCompletion
	if err := c.do(ctx, http.MethodPost, "/payments/paypal/complete/", nil, paypalCompleteRequest{OrderID: paypalOrderID}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) orderAction(ctx context.Context, method, endpoint string, in any) (*model.Order, error) {
	var order model.Order
	if err := c.do(ctx, method, endpoint, nil, in, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

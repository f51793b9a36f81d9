package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmeshcher/foodorder-client/internal/model"
)

type addItemRequest struct {
	MenuItemID          int64  `json:"menu_item_id"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions"`
}

type cartItemRequest struct {
	CartItemID int64 `json:"cart_item_id"`
	Quantity   int   `json:"quantity,omitempty"`
}

type checkoutRequest struct {
	PaymentMethod       model.PaymentMethod `json:"payment_method"`
	SpecialInstructions string              `json:"special_instructions"`
}

// CurrentCart возвращает корзину текущего покупателя.
func (c *Client) CurrentCart(ctx context.Context) (*model.Cart, error) {
	var cart model.Cart
	if err := c.do(ctx, http.MethodGet, "/cart/current/", nil, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem добавляет позицию меню в корзину и возвращает обновлённую корзину.
func (c *Client) AddCartItem(ctx context.Context, cartID, menuItemID int64, quantity int, instructions string) (*model.Cart, error) {
	req := addItemRequest{
		MenuItemID:          menuItemID,
		Quantity:            quantity,
		SpecialInstructions: instructions,
	}

	var cart model.Cart
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/%d/add_item/", cartID), nil, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// RemoveCartItem удаляет позицию из корзины.
func (c *Client) RemoveCartItem(ctx context.Context, cartID, cartItemID int64) (*model.Cart, error) {
	var cart model.Cart
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/%d/remove_item/", cartID), nil, cartItemRequest{CartItemID: cartItemID}, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItemQuantity меняет количество позиции в корзине.
func (c *Client) UpdateCartItemQuantity(ctx context.Context, cartID, cartItemID int64, quantity int) (*model.Cart, error) {
	req := cartItemRequest{CartItemID: cartItemID, Quantity: quantity}

	var cart model.Cart
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/%d/update_quantity/", cartID), nil, req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Checkout превращает корзину в заказ.
func (c *Client) Checkout(ctx context.Context, cartID int64, method model.PaymentMethod, instructions string) (*model.Order, error) {
	req := checkoutRequest{PaymentMethod: method, SpecialInstructions: instructions}

	var order model.Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/cart/%d/checkout/", cartID), nil, req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mmeshcher/foodorder-client/internal/model"
)

// CartAPI описывает вызовы API, используемые корзиной.
type CartAPI interface {
	CurrentCart(ctx context.Context) (*model.Cart, error)
	AddCartItem(ctx context.Context, cartID, menuItemID int64, quantity int, instructions string) (*model.Cart, error)
	RemoveCartItem(ctx context.Context, cartID, cartItemID int64) (*model.Cart, error)
	UpdateCartItemQuantity(ctx context.Context, cartID, cartItemID int64, quantity int) (*model.Cart, error)
	Checkout(ctx context.Context, cartID int64, method model.PaymentMethod, instructions string) (*model.Order, error)
}

// CartState содержит снимок состояния корзины. Cart разделяется со снимками и не
// должен изменяться вызывающим кодом.
type CartState struct {
	Cart      *model.Cart
	IsLoading bool
	Error     string
}

// Cart кэширует серверную корзину текущего покупателя. Каждая изменяющая
// операция заменяет кэш ответом сервера.
type Cart struct {
	api    CartAPI
	logger *zap.Logger

	mu    sync.RWMutex
	state CartState
}

// NewCart создаёт пустую корзину.
func NewCart(a CartAPI, logger *zap.Logger) *Cart {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cart{api: a, logger: logger}
}

// State возвращает снимок текущего состояния.
func (c *Cart) State() CartState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Cart) begin() {
	c.mu.Lock()
	c.state.IsLoading = true
	c.state.Error = ""
	c.mu.Unlock()
}

func (c *Cart) replace(cart *model.Cart) {
	c.mu.Lock()
	c.state.Cart = cart
	c.state.IsLoading = false
	c.mu.Unlock()
}

func (c *Cart) fail(op string, err error, msg string) error {
	c.mu.Lock()
	c.state.IsLoading = false
	c.state.Error = msg
	c.mu.Unlock()

	c.logger.Debug("cart operation failed", zap.String("op", op), zap.Error(err))
	return &Error{Op: op, Message: msg, Err: err}
}

// GetCart загружает корзину и заменяет ею локальную копию.
func (c *Cart) GetCart(ctx context.Context) error {
	c.begin()

	cart, err := c.api.CurrentCart(ctx)
	if err != nil {
		return c.fail("get cart", err, detailMessage(err, "Failed to load cart"))
	}
	c.replace(cart)
	return nil
}

// AddToCart добавляет позицию меню в серверную корзину. Объединение с уже
// лежащими позициями решает сервер. quantity проверяет вызывающий код.
func (c *Cart) AddToCart(ctx context.Context, item model.MenuItem, quantity int, instructions string) error {
	const fallback = "Failed to add item to cart"
	c.begin()

	current, err := c.api.CurrentCart(ctx)
	if err != nil {
		return c.fail("add to cart", err, detailMessage(err, fallback))
	}

	cart, err := c.api.AddCartItem(ctx, current.ID, item.ID, quantity, instructions)
	if err != nil {
		return c.fail("add to cart", err, detailMessage(err, fallback))
	}
	c.replace(cart)
	return nil
}

// RemoveFromCart удаляет позицию из загруженной корзины.
func (c *Cart) RemoveFromCart(ctx context.Context, cartItemID int64) error {
	c.begin()

	cartID, ok := c.loadedCartID()
	if !ok {
		return c.fail("remove from cart", ErrCartNotLoaded, "Cart not loaded. Cannot remove item.")
	}

	cart, err := c.api.RemoveCartItem(ctx, cartID, cartItemID)
	if err != nil {
		return c.fail("remove from cart", err, detailMessage(err, "Failed to remove item from cart"))
	}
	c.replace(cart)
	return nil
}

// UpdateQuantity меняет количество позиции в загруженной корзине.
func (c *Cart) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	c.begin()

	cartID, ok := c.loadedCartID()
	if !ok {
		return c.fail("update quantity", ErrCartNotLoaded, "Cart not loaded. Cannot update quantity.")
	}

	cart, err := c.api.UpdateCartItemQuantity(ctx, cartID, cartItemID, quantity)
	if err != nil {
		return c.fail("update quantity", err, detailMessage(err, "Failed to update quantity"))
	}
	c.replace(cart)
	return nil
}

// Checkout оформляет заказ из серверной корзины. После успеха локальная
// корзина очищается независимо от содержимого заказа.
func (c *Cart) Checkout(ctx context.Context, method model.PaymentMethod, instructions string) (*model.Order, error) {
	const fallback = "Checkout failed"
	c.begin()

	current, err := c.api.CurrentCart(ctx)
	if err != nil {
		return nil, c.fail("checkout", err, detailMessage(err, fallback))
	}

	order, err := c.api.Checkout(ctx, current.ID, method, instructions)
	if err != nil {
		return nil, c.fail("checkout", err, detailMessage(err, fallback))
	}

	c.replace(nil)
	c.logger.Info("order placed", zap.Int64("order_id", order.ID), zap.String("payment_method", string(method)))
	return order, nil
}

// ClearCart сбрасывает локальное состояние без обращения к API.
func (c *Cart) ClearCart() {
	c.mu.Lock()
	c.state.Cart = nil
	c.state.Error = ""
	c.mu.Unlock()
}

// ClearError сбрасывает записанную ошибку.
func (c *Cart) ClearError() {
	c.mu.Lock()
	c.state.Error = ""
	c.mu.Unlock()
}

func (c *Cart) loadedCartID() (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state.Cart == nil {
		return 0, false
	}
	return c.state.Cart.ID, true
}

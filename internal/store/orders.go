package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mmeshcher/foodorder-client/internal/model"
)

// OrderAPI описывает вызовы API, используемые списком заказов.
type OrderAPI interface {
	Orders(ctx context.Context) ([]model.Order, error)
	Order(ctx context.Context, id int64) (*model.Order, error)
	PlaceOrder(ctx context.Context, id int64) (*model.Order, error)
	CancelOrder(ctx context.Context, id int64) (*model.Order, error)
	UpdateOrderPayment(ctx context.Context, id int64, method model.PaymentMethod) (*model.Order, error)
}

// OrdersState содержит снимок списка заказов и выбранного заказа.
type OrdersState struct {
	Orders    []model.Order
	Current   *model.Order
	IsLoading bool
	Error     string
}

// Orders хранит список заказов и выбранный заказ. Состояние заменяется
// целиком, кроме отмены и смены оплаты, которые точечно обновляют совпавшие записи.
type Orders struct {
	api    OrderAPI
	logger *zap.Logger

	mu    sync.RWMutex
	state OrdersState
}

// NewOrders создаёт пустой список заказов.
func NewOrders(a OrderAPI, logger *zap.Logger) *Orders {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orders{api: a, logger: logger}
}

// State возвращает снимок состояния. Срез и заказ не копируются и не должны изменяться.
func (o *Orders) State() OrdersState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

func (o *Orders) begin() {
	o.mu.Lock()
	o.state.IsLoading = true
	o.state.Error = ""
	o.mu.Unlock()
}

func (o *Orders) fail(op string, err error, msg string) error {
	o.mu.Lock()
	o.state.IsLoading = false
	o.state.Error = msg
	o.mu.Unlock()

	o.logger.Debug("order operation failed", zap.String("op", op), zap.Error(err))
	return &Error{Op: op, Message: msg, Err: err}
}

// FetchOrders заменяет список заказов.
func (o *Orders) FetchOrders(ctx context.Context) error {
	o.begin()

	orders, err := o.api.Orders(ctx)
	if err != nil {
		return o.fail("fetch orders", err, detailMessage(err, "Failed to fetch orders"))
	}

	o.mu.Lock()
	o.state.Orders = orders
	o.state.IsLoading = false
	o.mu.Unlock()
	return nil
}

// FetchOrder заменяет выбранный заказ.
func (o *Orders) FetchOrder(ctx context.Context, id int64) error {
	o.begin()

	order, err := o.api.Order(ctx, id)
	if err != nil {
		return o.fail("fetch order", err, detailMessage(err, "Failed to fetch order"))
	}

	o.mu.Lock()
	o.state.Current = order
	o.state.IsLoading = false
	o.mu.Unlock()
	return nil
}

// PlaceOrder подтверждает ожидающий заказ.
func (o *Orders) PlaceOrder(ctx context.Context, id int64) error {
	o.begin()

	updated, err := o.api.PlaceOrder(ctx, id)
	if err != nil {
		return o.fail("place order", err, detailMessage(err, "Failed to place order"))
	}

	o.patch(id, updated)
	return nil
}

// CancelOrder отменяет заказ и подставляет ответ сервера в список и в выбранный заказ.
func (o *Orders) CancelOrder(ctx context.Context, id int64) error {
	o.begin()

	updated, err := o.api.CancelOrder(ctx, id)
	if err != nil {
		return o.fail("cancel order", err, detailMessage(err, "Failed to cancel order"))
	}

	o.patch(id, updated)
	o.logger.Info("order cancelled", zap.Int64("order_id", id), zap.String("status", string(updated.Status)))
	return nil
}

// UpdatePayment меняет способ оплаты заказа с тем же точечным обновлением, что и CancelOrder.
func (o *Orders) UpdatePayment(ctx context.Context, id int64, method model.PaymentMethod) error {
	o.begin()

	updated, err := o.api.UpdateOrderPayment(ctx, id, method)
	if err != nil {
		return o.fail("update payment", err, detailMessage(err, "Failed to update payment"))
	}

	o.patch(id, updated)
	return nil
}

// patch строит новый срез, чтобы ранее выданные снимки не менялись.
func (o *Orders) patch(id int64, updated *model.Order) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Orders != nil {
		next := make([]model.Order, len(o.state.Orders))
		for i, order := range o.state.Orders {
			if order.ID == id {
				next[i] = *updated
				continue
			}
			next[i] = order
		}
		o.state.Orders = next
	}

	if o.state.Current != nil && o.state.Current.ID == id {
		o.state.Current = updated
	}
	o.state.IsLoading = false
}

package handler

import (
	"net/http"

	"github.com/mmeshcher/foodorder-client/internal/middleware"
	"github.com/mmeshcher/foodorder-client/internal/model"
	"github.com/mmeshcher/foodorder-client/internal/store"
	"github.com/mmeshcher/foodorder-client/internal/validation"
)

// orderView дополняет заказ полями для отображения.
type orderView struct {
	*model.Order
	StatusLabel string `json:"status_label"`
	Final       bool   `json:"final"`
	CanCancel   bool   `json:"can_cancel"`
}

// newOrderView строит представление заказа. Отменить можно только ожидающий
// заказ, и только администратору или менеджеру.
func newOrderView(o *model.Order, u *model.User) *orderView {
	if o == nil {
		return nil
	}
	staff := u != nil && (u.Role == model.RoleAdmin || u.Role == model.RoleManager)
	return &orderView{
		Order:       o,
		StatusLabel: o.Status.Label(),
		Final:       o.Status.Terminal(),
		CanCancel:   staff && o.Status == model.OrderStatusPending,
	}
}

type orderResponse struct {
	Order *orderView `json:"order"`
}

type ordersResponse struct {
	Orders    []*orderView `json:"orders"`
	IsLoading bool         `json:"is_loading"`
	Error     string       `json:"error,omitempty"`
}

// Orders загружает и отдаёт список заказов.
func (h *Handler) Orders(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.FetchOrders(r.Context()); err != nil {
		h.renderError(w, r, err)
		return
	}

	u, _ := middleware.UserFromContext(r.Context())
	state := h.orders.State()
	views := make([]*orderView, 0, len(state.Orders))
	for i := range state.Orders {
		views = append(views, newOrderView(&state.Orders[i], u))
	}
	writeJSON(w, http.StatusOK, ordersResponse{Orders: views, IsLoading: state.IsLoading, Error: state.Error})
}

// Order загружает и отдаёт заказ.
func (h *Handler) Order(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.orders.FetchOrder(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	h.writeCurrent(w, r, h.orders.State())
}

// PlaceOrder подтверждает заказ.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.orders.PlaceOrder(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	h.writeOrder(w, r, h.orders.State(), id)
}

// CancelOrder отменяет заказ.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.orders.CancelOrder(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	h.writeOrder(w, r, h.orders.State(), id)
}

type paymentRequest struct {
	PaymentMethod model.PaymentMethod `json:"payment_method"`
}

// UpdatePayment меняет способ оплаты заказа.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.PaymentMethod.Valid() {
		h.renderError(w, r, &validation.Error{Field: "payment_method", Message: "Invalid payment method"})
		return
	}

	if err := h.orders.UpdatePayment(r.Context(), id, req.PaymentMethod); err != nil {
		h.renderError(w, r, err)
		return
	}
	h.writeOrder(w, r, h.orders.State(), id)
}

func (h *Handler) writeCurrent(w http.ResponseWriter, r *http.Request, state store.OrdersState) {
	u, _ := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, orderResponse{Order: newOrderView(state.Current, u)})
}

// writeOrder отдаёт обновлённый заказ из выбранного или из списка.
func (h *Handler) writeOrder(w http.ResponseWriter, r *http.Request, state store.OrdersState, id int64) {
	if state.Current != nil && state.Current.ID == id {
		h.writeCurrent(w, r, state)
		return
	}
	u, _ := middleware.UserFromContext(r.Context())
	for i := range state.Orders {
		if state.Orders[i].ID == id {
			writeJSON(w, http.StatusOK, orderResponse{Order: newOrderView(&state.Orders[i], u)})
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

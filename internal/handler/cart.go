package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mmeshcher/foodorder-client/internal/middleware"
	"github.com/mmeshcher/foodorder-client/internal/model"
	"github.com/mmeshcher/foodorder-client/internal/store"
	"github.com/mmeshcher/foodorder-client/internal/validation"
)

var errCartEmpty = errors.New("Your cart is empty.")

type cartResponse struct {
	Cart      *model.Cart `json:"cart"`
	IsLoading bool        `json:"is_loading"`
	Error     string      `json:"error,omitempty"`
}

func newCartResponse(s store.CartState) cartResponse {
	return cartResponse{Cart: s.Cart, IsLoading: s.IsLoading, Error: s.Error}
}

// Cart загружает корзину и отдаёт её состояние.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.GetCart(r.Context()); err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(h.cart.State()))
}

type addItemRequest struct {
	MenuItemID          int64  `json:"menu_item_id"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"special_instructions"`
}

// AddCartItem добавляет позицию меню в корзину.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MenuItemID <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateQuantity(req.Quantity); err != nil {
		h.renderError(w, r, err)
		return
	}

	item := model.MenuItem{ID: req.MenuItemID}
	if err := h.cart.AddToCart(r.Context(), item, req.Quantity, req.SpecialInstructions); err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(h.cart.State()))
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateCartItem меняет количество позиции корзины.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req quantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateQuantity(req.Quantity); err != nil {
		h.renderError(w, r, err)
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), id, req.Quantity); err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(h.cart.State()))
}

// RemoveCartItem удаляет позицию из корзины.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.cart.RemoveFromCart(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(h.cart.State()))
}

type checkoutRequest struct {
	PaymentMethod       model.PaymentMethod `json:"payment_method"`
	SpecialInstructions string              `json:"special_instructions"`
}

// Checkout оформляет заказ из загруженной корзины.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = model.PaymentCard
	}
	if !req.PaymentMethod.Valid() {
		h.renderError(w, r, &validation.Error{Field: "payment_method", Message: "Invalid payment method"})
		return
	}

	if state := h.cart.State(); state.Cart == nil || len(state.Cart.Items) == 0 {
		h.renderError(w, r, errCartEmpty)
		return
	}

	order, err := h.cart.Checkout(r.Context(), req.PaymentMethod, req.SpecialInstructions)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	u, _ := middleware.UserFromContext(r.Context())
	writeJSON(w, http.StatusCreated, orderResponse{Order: newOrderView(order, u)})
}

type paypalCompleteRequest struct {
	OrderID string `json:"order_id"`
}

// CompletePayPal завершает оплату через PayPal и обновляет корзину.
func (h *Handler) CompletePayPal(w http.ResponseWriter, r *http.Request) {
	var req paypalCompleteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := h.catalog.CompletePayPalPayment(r.Context(), req.OrderID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if err := h.cart.GetCart(r.Context()); err != nil {
		h.logger.Warn("refresh cart after payment", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, res)
}

// Package handler содержит HTTP-обработчики страниц клиента системы заказа еды.
//
// Страницы отдаются в JSON и строятся из состояния хранилищ сессии, корзины и
// заказов. Доступ к страницам проверяет middleware.Guard.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/foodorder-client/internal/access"
	"github.com/mmeshcher/foodorder-client/internal/api"
	"github.com/mmeshcher/foodorder-client/internal/model"
	"github.com/mmeshcher/foodorder-client/internal/obs"
	"github.com/mmeshcher/foodorder-client/internal/store"
	"github.com/mmeshcher/foodorder-client/internal/validation"
)

// SessionStore определяет операции сессии, используемые страницами.
type SessionStore interface {
	State() store.SessionState
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, data model.RegisterData) error
	Logout(ctx context.Context)
	ResetPassword(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, reNewPassword string) error
	ClearError()
}

// CartStore определяет операции корзины, используемые страницами.
type CartStore interface {
	State() store.CartState
	GetCart(ctx context.Context) error
	AddToCart(ctx context.Context, item model.MenuItem, quantity int, instructions string) error
	RemoveFromCart(ctx context.Context, cartItemID int64) error
	UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) error
	Checkout(ctx context.Context, method model.PaymentMethod, instructions string) (*model.Order, error)
	ClearCart()
}

// OrderStore определяет операции списка заказов, используемые страницами.
type OrderStore interface {
	State() store.OrdersState
	FetchOrders(ctx context.Context) error
	FetchOrder(ctx context.Context, id int64) error
	PlaceOrder(ctx context.Context, id int64) error
	CancelOrder(ctx context.Context, id int64) error
	UpdatePayment(ctx context.Context, id int64, method model.PaymentMethod) error
}

// Catalog определяет вызовы API, которые страницы выполняют напрямую, минуя хранилища.
type Catalog interface {
	Restaurants(ctx context.Context) ([]model.Restaurant, error)
	Restaurant(ctx context.Context, id int64) (*model.Restaurant, error)
	CreateRestaurant(ctx context.Context, in api.RestaurantInput) (*model.Restaurant, error)
	UpdateRestaurant(ctx context.Context, id int64, patch api.RestaurantPatch) (*model.Restaurant, error)
	DeleteRestaurant(ctx context.Context, id int64) error

	MenuItems(ctx context.Context, restaurantID int64) ([]model.MenuItem, error)
	MenuItem(ctx context.Context, id int64) (*model.MenuItem, error)
	CreateMenuItem(ctx context.Context, in api.MenuItemInput) (*model.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id int64, patch api.MenuItemPatch) (*model.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) error

	Users(ctx context.Context) ([]model.User, error)
	User(ctx context.Context, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, patch api.UserPatch) (*model.User, error)
	DeleteUser(ctx context.Context, id int64) error

	Dashboard(ctx context.Context, role model.Role) (*model.DashboardStats, error)
	CompletePayPalPayment(ctx context.Context, paypalOrderID string) (*api.PaymentCompletion, error)
}

// Settings содержит необязательные параметры страниц.
type Settings struct {
	PayPalClientID string
	Metrics        *obs.Metrics
}

// Handler реализует страницы клиента.
type Handler struct {
	session  SessionStore
	cart     CartStore
	orders   OrderStore
	catalog  Catalog
	logger   *zap.Logger
	settings Settings
}

// NewHandler создаёт обработчик страниц.
func NewHandler(session SessionStore, cart CartStore, orders OrderStore, catalog Catalog, logger *zap.Logger, settings Settings) *Handler {
	return &Handler{
		session:  session,
		cart:     cart,
		orders:   orders,
		catalog:  catalog,
		logger:   logger,
		settings: settings,
	}
}

type sessionView struct {
	User            *model.User `json:"user"`
	IsAuthenticated bool        `json:"is_authenticated"`
	IsLoading       bool        `json:"is_loading"`
	Error           string      `json:"error,omitempty"`
	AccessExpiresAt *time.Time  `json:"access_expires_at,omitempty"`
}

func newSessionView(s store.SessionState) sessionView {
	return sessionView{
		User:            s.User,
		IsAuthenticated: s.IsAuthenticated,
		IsLoading:       s.IsLoading,
		Error:           s.Error,
		AccessExpiresAt: s.AccessExpiresAt,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// renderError переводит ошибку операции в ответ страницы. Истёкшая сессия
// всегда ведёт на страницу входа.
func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, api.ErrSessionExpired) {
		http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
		return
	}

	var vErr *validation.Error
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: vErr.Message, Field: vErr.Field})
		return
	}

	if errors.Is(err, store.ErrCartNotLoaded) || errors.Is(err, errCartEmpty) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	}

	msg := err.Error()
	var storeErr *store.Error
	isStoreErr := errors.As(err, &storeErr)

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if !isStoreErr {
			msg = apiErr.Message()
			if msg == "" {
				msg = http.StatusText(apiErr.Status)
			}
		}
		if apiErr.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(apiErr.RetryAfter.Seconds())))
		}
		writeJSON(w, apiErr.Status, errorResponse{Error: msg})
		return
	}

	if !isStoreErr {
		msg = http.StatusText(http.StatusBadGateway)
	}
	h.logger.Error("page error", zap.String("path", r.URL.Path), zap.Error(err))
	writeJSON(w, http.StatusBadGateway, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return false
	}
	return true
}

func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

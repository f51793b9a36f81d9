package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/foodorder-client/internal/api"
	"github.com/mmeshcher/foodorder-client/internal/model"
	"github.com/mmeshcher/foodorder-client/internal/obs"
	"github.com/mmeshcher/foodorder-client/internal/store"
)

type stubSession struct {
	state store.SessionState

	loginErr    error
	registerErr error
	resetErr    error
	confirmErr  error

	loginCalls  int
	logoutCalls int
}

func (s *stubSession) State() store.SessionState { return s.state }

func (s *stubSession) Login(ctx context.Context, email, password string) error {
	s.loginCalls++
	if s.loginErr != nil {
		return s.loginErr
	}
	s.state = store.SessionState{User: &model.User{ID: 1, Email: email, Role: model.RoleMember}, IsAuthenticated: true}
	return nil
}

func (s *stubSession) Register(ctx context.Context, data model.RegisterData) error {
	return s.registerErr
}

func (s *stubSession) Logout(ctx context.Context) {
	s.logoutCalls++
	s.state = store.SessionState{}
}

func (s *stubSession) ResetPassword(ctx context.Context, email string) error {
	return s.resetErr
}

func (s *stubSession) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, reNewPassword string) error {
	return s.confirmErr
}

func (s *stubSession) ClearError() { s.state.Error = "" }

type stubCart struct {
	state store.CartState

	getErr    error
	addErr    error
	removeErr error
	updateErr error

	order       *model.Order
	checkoutErr error

	addCalls      int
	checkoutCalls int
	clearCalls    int
}

func (s *stubCart) State() store.CartState { return s.state }

func (s *stubCart) GetCart(ctx context.Context) error { return s.getErr }

func (s *stubCart) AddToCart(ctx context.Context, item model.MenuItem, quantity int, instructions string) error {
	s.addCalls++
	return s.addErr
}

func (s *stubCart) RemoveFromCart(ctx context.Context, cartItemID int64) error { return s.removeErr }

func (s *stubCart) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	return s.updateErr
}

func (s *stubCart) Checkout(ctx context.Context, method model.PaymentMethod, instructions string) (*model.Order, error) {
	s.checkoutCalls++
	return s.order, s.checkoutErr
}

func (s *stubCart) ClearCart() { s.clearCalls++ }

type stubOrders struct {
	state     store.OrdersState
	err       error
	cancelled *model.Order
}

func (s *stubOrders) State() store.OrdersState { return s.state }

func (s *stubOrders) FetchOrders(ctx context.Context) error { return s.err }

func (s *stubOrders) FetchOrder(ctx context.Context, id int64) error { return s.err }

func (s *stubOrders) PlaceOrder(ctx context.Context, id int64) error { return s.err }

func (s *stubOrders) CancelOrder(ctx context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.state.Orders = []model.Order{*s.cancelled}
	return nil
}

func (s *stubOrders) UpdatePayment(ctx context.Context, id int64, method model.PaymentMethod) error {
	return s.err
}

// stubCatalog переопределяет только нужные тестам методы; остальные вызовут панику.
type stubCatalog struct {
	Catalog

	restaurant *model.Restaurant
	menu       []model.MenuItem
	err        error
}

func (s *stubCatalog) Restaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	return s.restaurant, s.err
}

func (s *stubCatalog) MenuItems(ctx context.Context, restaurantID int64) ([]model.MenuItem, error) {
	return s.menu, s.err
}

func (s *stubCatalog) Dashboard(ctx context.Context, role model.Role) (*model.DashboardStats, error) {
	return &model.DashboardStats{}, s.err
}

type testDeps struct {
	session *stubSession
	cart    *stubCart
	orders  *stubOrders
	catalog *stubCatalog
}

func newTestHandler(t *testing.T, deps testDeps, settings Settings) http.Handler {
	t.Helper()

	logger, err := zap.NewDevelopment()
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	if deps.session == nil {
		deps.session = &stubSession{}
	}
	if deps.cart == nil {
		deps.cart = &stubCart{}
	}
	if deps.orders == nil {
		deps.orders = &stubOrders{}
	}
	if deps.catalog == nil {
		deps.catalog = &stubCatalog{}
	}

	return NewHandler(deps.session, deps.cart, deps.orders, deps.catalog, logger, settings).SetupRouter()
}

func signedIn(role model.Role) *stubSession {
	return &stubSession{state: store.SessionState{
		User:            &model.User{ID: 7, Role: role},
		IsAuthenticated: true,
	}}
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Result()
}

func decodeError(t *testing.T, res *http.Response) errorResponse {
	t.Helper()
	defer res.Body.Close()

	var resp errorResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestGuard_AnonymousRedirectedToLogin(t *testing.T) {
	h := newTestHandler(t, testDeps{}, Settings{})

	res := doRequest(t, h, http.MethodGet, "/orders", nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if loc := res.Header.Get("Location"); loc != "/login" {
		t.Fatalf("location = %q, want /login", loc)
	}
}

func TestCheckout_MemberRedirectedHome(t *testing.T) {
	cart := &stubCart{}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleMember), cart: cart}, Settings{})

	res := doRequest(t, h, http.MethodPost, "/cart/checkout", checkoutRequest{PaymentMethod: model.PaymentCash})
	defer res.Body.Close()

	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if loc := res.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("location = %q, want /dashboard", loc)
	}
	if cart.checkoutCalls != 0 {
		t.Fatalf("checkout must not run for member")
	}
}

func TestCheckout_EmptyCartConflict(t *testing.T) {
	cart := &stubCart{state: store.CartState{Cart: &model.Cart{ID: 1}}}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleManager), cart: cart}, Settings{})

	res := doRequest(t, h, http.MethodPost, "/cart/checkout", checkoutRequest{PaymentMethod: model.PaymentCash})
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
	if got := decodeError(t, res).Error; got != "Your cart is empty." {
		t.Fatalf("error = %q", got)
	}
	if cart.checkoutCalls != 0 {
		t.Fatalf("checkout must not be called for empty cart")
	}
}

func TestCheckout_Created(t *testing.T) {
	cart := &stubCart{
		state: store.CartState{Cart: &model.Cart{ID: 1, Items: []model.CartItem{{ID: 1, Quantity: 2}}}},
		order: &model.Order{ID: 55, Status: model.OrderStatusPending},
	}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleAdmin), cart: cart}, Settings{})

	res := doRequest(t, h, http.MethodPost, "/cart/checkout", checkoutRequest{PaymentMethod: model.PaymentCard})
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusCreated)
	}
	var resp orderResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Order == nil || resp.Order.ID != 55 {
		t.Fatalf("unexpected order %+v", resp.Order)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	session := &stubSession{loginErr: &store.Error{
		Op:      "login",
		Message: "Invalid credentials",
		Err:     &api.APIError{Status: http.StatusUnauthorized, Detail: "Invalid credentials"},
	}}
	h := newTestHandler(t, testDeps{session: session}, Settings{})

	res := doRequest(t, h, http.MethodPost, "/login", loginRequest{Email: "bad@x.com", Password: "wrong"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnauthorized)
	}
	if got := decodeError(t, res).Error; got != "Invalid credentials" {
		t.Fatalf("error = %q, want Invalid credentials", got)
	}
}

func TestLogin_SuccessRedirectsHome(t *testing.T) {
	session := &stubSession{}
	h := newTestHandler(t, testDeps{session: session}, Settings{})

	res := doRequest(t, h, http.MethodPost, "/login", loginRequest{Email: "m@example.com", Password: "Secret123"})
	defer res.Body.Close()

	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if loc := res.Header.Get("Location"); loc != "/dashboard" {
		t.Fatalf("location = %q, want /dashboard", loc)
	}
}

func TestLogin_AuthenticatedUserRedirected(t *testing.T) {
	session := signedIn(model.RoleMember)
	h := newTestHandler(t, testDeps{session: session}, Settings{})

	res := doRequest(t, h, http.MethodGet, "/login", nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if session.loginCalls != 0 {
		t.Fatalf("login should not be called")
	}
}

func TestRegister_ValidationError(t *testing.T) {
	h := newTestHandler(t, testDeps{}, Settings{})

	res := doRequest(t, h, http.MethodPost, "/register", model.RegisterData{
		Email:      "new@example.com",
		Password:   "Secret123",
		RePassword: "Secret999",
		FirstName:  "A",
		LastName:   "B",
		Region:     model.RegionIndia,
	})
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}
	resp := decodeError(t, res)
	if resp.Field != "re_password" || resp.Error != "Passwords do not match" {
		t.Fatalf("unexpected error %+v", resp)
	}
}

func TestLogout_ClearsSessionAndCart(t *testing.T) {
	session := signedIn(model.RoleMember)
	cart := &stubCart{}
	h := newTestHandler(t, testDeps{session: session, cart: cart}, Settings{})

	res := doRequest(t, h, http.MethodPost, "/logout", nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if session.logoutCalls != 1 || cart.clearCalls != 1 {
		t.Fatalf("logout=%d clear=%d, want 1 and 1", session.logoutCalls, cart.clearCalls)
	}
}

func TestAddCartItem_InvalidQuantity(t *testing.T) {
	cart := &stubCart{}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleMember), cart: cart}, Settings{})

	res := doRequest(t, h, http.MethodPost, "/cart/items", addItemRequest{MenuItemID: 3, Quantity: 0})
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusUnprocessableEntity)
	}
	if got := decodeError(t, res).Error; got != "Quantity must be at least 1" {
		t.Fatalf("error = %q", got)
	}
	if cart.addCalls != 0 {
		t.Fatalf("add must not be called")
	}
}

func TestUpdateCartItem_CartNotLoaded(t *testing.T) {
	cart := &stubCart{updateErr: &store.Error{
		Op:      "update quantity",
		Message: "Cart not loaded. Cannot update quantity.",
		Err:     store.ErrCartNotLoaded,
	}}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleMember), cart: cart}, Settings{})

	res := doRequest(t, h, http.MethodPatch, "/cart/items/3", quantityRequest{Quantity: 2})
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusConflict)
	}
	if got := decodeError(t, res).Error; got != "Cart not loaded. Cannot update quantity." {
		t.Fatalf("error = %q", got)
	}
}

func TestCart_SessionExpiredRedirectsToLogin(t *testing.T) {
	cart := &stubCart{getErr: &store.Error{
		Op:      "get cart",
		Message: "Failed to load cart",
		Err:     errors.Join(api.ErrSessionExpired, errors.New("no refresh token")),
	}}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleMember), cart: cart}, Settings{})

	res := doRequest(t, h, http.MethodGet, "/cart", nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusSeeOther)
	}
	if loc := res.Header.Get("Location"); loc != "/login" {
		t.Fatalf("location = %q, want /login", loc)
	}
}

func TestOrders_UpstreamFailure(t *testing.T) {
	orders := &stubOrders{err: &store.Error{Op: "fetch orders", Message: "Failed to fetch orders", Err: errors.New("dial tcp")}}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleMember), orders: orders}, Settings{})

	res := doRequest(t, h, http.MethodGet, "/orders", nil)
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusBadGateway)
	}
	if got := decodeError(t, res).Error; got != "Failed to fetch orders" {
		t.Fatalf("error = %q", got)
	}
}

func TestCancelOrder_ReturnsPatchedOrder(t *testing.T) {
	orders := &stubOrders{cancelled: &model.Order{ID: 2, Status: model.OrderStatusCancelled}}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleManager), orders: orders}, Settings{})

	res := doRequest(t, h, http.MethodPost, "/orders/2/cancel", nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var resp orderResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Order == nil || resp.Order.Status != model.OrderStatusCancelled {
		t.Fatalf("unexpected order %+v", resp.Order)
	}
}

func TestRestaurant_WithMenu(t *testing.T) {
	catalog := &stubCatalog{
		restaurant: &model.Restaurant{ID: 5, Name: "Saravana Bhavan", Region: model.RegionIndia},
		menu:       []model.MenuItem{{ID: 1, Name: "Dosa", Restaurant: 5}},
	}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleMember), catalog: catalog}, Settings{})

	res := doRequest(t, h, http.MethodGet, "/restaurants/5", nil)
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q, want application/json", ct)
	}

	var resp restaurantResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Restaurant.Name != "Saravana Bhavan" || len(resp.Menu) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestRestaurant_NotFound(t *testing.T) {
	catalog := &stubCatalog{err: &api.APIError{Status: http.StatusNotFound, Detail: "Not found."}}
	h := newTestHandler(t, testDeps{session: signedIn(model.RoleMember), catalog: catalog}, Settings{})

	res := doRequest(t, h, http.MethodGet, "/restaurants/5", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusNotFound)
	}
	if got := decodeError(t, res).Error; got != "Not found." {
		t.Fatalf("error = %q", got)
	}
}

func TestConfigAndMetrics(t *testing.T) {
	h := newTestHandler(t, testDeps{}, Settings{PayPalClientID: "sb-client", Metrics: obs.NewMetrics()})

	res := doRequest(t, h, http.MethodGet, "/config", nil)
	var cfg configResponse
	if err := json.NewDecoder(res.Body).Decode(&cfg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	res.Body.Close()
	if cfg.PayPalClientID != "sb-client" {
		t.Fatalf("paypal client id = %q", cfg.PayPalClientID)
	}

	res = doRequest(t, h, http.MethodGet, "/metrics", nil)
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", res.StatusCode, http.StatusOK)
	}
	var body bytes.Buffer
	if _, err := body.ReadFrom(res.Body); err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	if !strings.Contains(body.String(), `route="/config"`) {
		t.Fatalf("metrics do not contain /config route:\n%s", body.String())
	}
}

func TestOrders_View(t *testing.T) {
	orders := &stubOrders{state: store.OrdersState{Orders: []model.Order{
		{ID: 1, Status: model.OrderStatusPending},
		{ID: 2, Status: model.OrderStatusDelivered},
	}}}

	tests := []struct {
		name      string
		role      model.Role
		canCancel []bool
	}{
		{name: "manager", role: model.RoleManager, canCancel: []bool{true, false}},
		{name: "member", role: model.RoleMember, canCancel: []bool{false, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, testDeps{session: signedIn(tt.role), orders: orders}, Settings{})

			res := doRequest(t, h, http.MethodGet, "/orders", nil)
			defer res.Body.Close()

			var resp struct {
				Orders []struct {
					ID          int64  `json:"id"`
					StatusLabel string `json:"status_label"`
					Final       bool   `json:"final"`
					CanCancel   bool   `json:"can_cancel"`
				} `json:"orders"`
			}
			if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(resp.Orders) != 2 {
				t.Fatalf("orders = %d, want 2", len(resp.Orders))
			}
			if resp.Orders[0].StatusLabel != "Pending" || !resp.Orders[1].Final {
				t.Fatalf("unexpected view %+v", resp.Orders)
			}
			for i, want := range tt.canCancel {
				if resp.Orders[i].CanCancel != want {
					t.Fatalf("order %d can_cancel = %v, want %v", resp.Orders[i].ID, resp.Orders[i].CanCancel, want)
				}
			}
		})
	}
}

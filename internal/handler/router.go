package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/foodorder-client/internal/middleware"
	"github.com/mmeshcher/foodorder-client/internal/model"
)

// SetupRouter настраивает маршруты страниц и middleware.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	if h.settings.Metrics != nil {
		r.Use(h.settings.Metrics.Instrument(routePattern))
	}
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	auth := custommiddleware.Guard(h.session)
	staff := custommiddleware.Guard(h.session, model.RoleAdmin, model.RoleManager)
	admin := custommiddleware.Guard(h.session, model.RoleAdmin)

	r.Get("/config", h.Config)
	if h.settings.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.settings.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.PublicOnly(h.session))

		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password/{uid}/{token}", h.ResetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Post("/logout", h.Logout)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/profile", h.Profile)

		r.Get("/restaurants", h.Restaurants)
		r.Get("/restaurants/{id}", h.Restaurant)
		r.Get("/menu-items", h.MenuItems)
		r.Get("/menu-items/{id}", h.MenuItem)

		r.Get("/cart", h.Cart)
		r.Post("/cart/items", h.AddCartItem)
		r.Patch("/cart/items/{id}", h.UpdateCartItem)
		r.Delete("/cart/items/{id}", h.RemoveCartItem)
		r.Post("/payments/paypal/complete", h.CompletePayPal)

		r.Get("/orders", h.Orders)
		r.Get("/orders/{id}", h.Order)
	})

	r.Group(func(r chi.Router) {
		r.Use(staff)

		r.Post("/restaurants", h.CreateRestaurant)
		r.Post("/cart/checkout", h.Checkout)
		r.Post("/orders/{id}/place", h.PlaceOrder)
		r.Post("/orders/{id}/cancel", h.CancelOrder)

		r.Get("/users", h.Users)
		r.Get("/users/{id}", h.User)
		r.Patch("/users/{id}", h.UpdateUser)
		r.Delete("/users/{id}", h.DeleteUser)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin)

		r.Patch("/restaurants/{id}", h.UpdateRestaurant)
		r.Delete("/restaurants/{id}", h.DeleteRestaurant)
		r.Post("/menu-items", h.CreateMenuItem)
		r.Patch("/menu-items/{id}", h.UpdateMenuItem)
		r.Delete("/menu-items/{id}", h.DeleteMenuItem)
		r.Post("/orders/{id}/payment", h.UpdatePayment)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}

// routePattern возвращает шаблон маршрута chi, чтобы метки метрик не зависели от идентификаторов.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

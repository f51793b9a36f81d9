package handler

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/foodorder-client/internal/api"
	"github.com/mmeshcher/foodorder-client/internal/model"
)

// Restaurants отдаёт список ресторанов.
func (h *Handler) Restaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.catalog.Restaurants(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurants)
}

type restaurantResponse struct {
	Restaurant *model.Restaurant `json:"restaurant"`
	Menu       []model.MenuItem  `json:"menu"`
}

// Restaurant отдаёт ресторан вместе с его меню. Оба запроса выполняются параллельно.
func (h *Handler) Restaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var resp restaurantResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		restaurant, err := h.catalog.Restaurant(ctx, id)
		resp.Restaurant = restaurant
		return err
	})
	g.Go(func() error {
		menu, err := h.catalog.MenuItems(ctx, id)
		resp.Menu = menu
		return err
	})
	if err := g.Wait(); err != nil {
		h.renderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateRestaurant создаёт ресторан.
func (h *Handler) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req api.RestaurantInput
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || !req.Region.Valid() {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	restaurant, err := h.catalog.CreateRestaurant(r.Context(), req)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, restaurant)
}

// UpdateRestaurant частично обновляет ресторан.
func (h *Handler) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req api.RestaurantPatch
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Region != nil && !req.Region.Valid() {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	restaurant, err := h.catalog.UpdateRestaurant(r.Context(), id, req)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

// DeleteRestaurant удаляет ресторан.
func (h *Handler) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteRestaurant(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MenuItems отдаёт позиции меню, при наличии restaurant_id только одного ресторана.
func (h *Handler) MenuItems(w http.ResponseWriter, r *http.Request) {
	var restaurantID int64
	if raw := r.URL.Query().Get("restaurant_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		restaurantID = id
	}

	items, err := h.catalog.MenuItems(r.Context(), restaurantID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// MenuItem отдаёт позицию меню.
func (h *Handler) MenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	item, err := h.catalog.MenuItem(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CreateMenuItem создаёт позицию меню.
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req api.MenuItemInput
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" || req.Restaurant <= 0 || req.Price.IsNegative() {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	item, err := h.catalog.CreateMenuItem(r.Context(), req)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// UpdateMenuItem частично обновляет позицию меню.
func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req api.MenuItemPatch
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	item, err := h.catalog.UpdateMenuItem(r.Context(), id, req)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// DeleteMenuItem удаляет позицию меню.
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteMenuItem(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Users отдаёт список пользователей.
func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.catalog.Users(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// User отдаёт пользователя.
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.catalog.User(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser частично обновляет пользователя.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	var req api.UserPatch
	if !decodeBody(w, r, &req) {
		return
	}
	if (req.Role != nil && !req.Role.Valid()) || (req.Region != nil && !req.Region.Valid()) {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	user, err := h.catalog.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser удаляет пользователя.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.catalog.DeleteUser(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/foodorder-client/internal/model"
)

// RestaurantInput содержит поля для создания ресторана.
type RestaurantInput struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	CuisineType string       `json:"cuisine_type"`
	Region      model.Region `json:"region"`
	ImageURL    string       `json:"image_url,omitempty"`
	IsActive    bool         `json:"is_active"`
}

// RestaurantPatch содержит изменяемые поля ресторана; nil означает "не менять".
type RestaurantPatch struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	CuisineType *string       `json:"cuisine_type,omitempty"`
	Region      *model.Region `json:"region,omitempty"`
	ImageURL    *string       `json:"image_url,omitempty"`
	IsActive    *bool         `json:"is_active,omitempty"`
}

// MenuItemInput содержит поля для создания позиции меню.
type MenuItemInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	CategoryID  int64           `json:"category_id"`
	IsAvailable bool            `json:"is_available"`
	Restaurant  int64           `json:"restaurant"`
}

// MenuItemPatch содержит изменяемые поля позиции меню.
type MenuItemPatch struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	CategoryID  *int64           `json:"category_id,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}

// UserPatch содержит изменяемые поля пользователя.
type UserPatch struct {
	FirstName *string       `json:"first_name,omitempty"`
	LastName  *string       `json:"last_name,omitempty"`
	Role      *model.Role   `json:"role,omitempty"`
	Region    *model.Region `json:"region,omitempty"`
	IsActive  *bool         `json:"is_active,omitempty"`
}

// Restaurants возвращает список ресторанов.
func (c *Client) Restaurants(ctx context.Context) ([]model.Restaurant, error) {
	var res []model.Restaurant
	if err := c.do(ctx, http.MethodGet, "/restaurants/", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// Restaurant возвращает ресторан по идентификатору.
func (c *Client) Restaurant(ctx context.Context, id int64) (*model.Restaurant, error) {
	var r model.Restaurant
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/restaurants/%d/", id), nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRestaurant создаёт ресторан.
func (c *Client) CreateRestaurant(ctx context.Context, in RestaurantInput) (*model.Restaurant, error) {
	var r model.Restaurant
	if err := c.do(ctx, http.MethodPost, "/restaurants/", nil, in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRestaurant частично обновляет ресторан.
func (c *Client) UpdateRestaurant(ctx context.Context, id int64, patch RestaurantPatch) (*model.Restaurant, error) {
	var r model.Restaurant
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/restaurants/%d/", id), nil, patch, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRestaurant удаляет ресторан.
func (c *Client) DeleteRestaurant(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/restaurants/%d/", id), nil, nil, nil)
}

// MenuItems возвращает позиции меню; restaurantID == 0 означает все рестораны.
func (c *Client) MenuItems(ctx context.Context, restaurantID int64) ([]model.MenuItem, error) {
	var query url.Values
	if restaurantID != 0 {
		query = url.Values{"restaurant_id": []string{strconv.FormatInt(restaurantID, 10)}}
	}

	var res []model.MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu-items/", query, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// MenuItem возвращает позицию меню по идентификатору.
func (c *Client) MenuItem(ctx context.Context, id int64) (*model.MenuItem, error) {
	var m model.MenuItem
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/menu-items/%d/", id), nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMenuItem создаёт позицию меню.
func (c *Client) CreateMenuItem(ctx context.Context, in MenuItemInput) (*model.MenuItem, error) {
	var m model.MenuItem
	if err := c.do(ctx, http.MethodPost, "/menu-items/", nil, in, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMenuItem частично обновляет позицию меню.
func (c *Client) UpdateMenuItem(ctx context.Context, id int64, patch MenuItemPatch) (*model.MenuItem, error) {
	var m model.MenuItem
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/menu-items/%d/", id), nil, patch, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMenuItem удаляет позицию меню.
func (c *Client) DeleteMenuItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/menu-items/%d/", id), nil, nil, nil)
}

// Users возвращает список пользователей.
func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var res []model.User
	if err := c.do(ctx, http.MethodGet, "/users/", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// User возвращает пользователя по идентификатору.
func (c *Client) User(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/", id), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser частично обновляет пользователя.
func (c *Client) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/", id), nil, patch, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser удаляет пользователя.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d/", id), nil, nil, nil)
}

// Dashboard возвращает сводку дашборда для указанной роли.
func (c *Client) Dashboard(ctx context.Context, role model.Role) (*model.DashboardStats, error) {
	var endpoint string
	switch role {
	case model.RoleAdmin:
		endpoint = "/dashboard/admin/"
	case model.RoleManager:
		endpoint = "/dashboard/manager/"
	case model.RoleMember:
		endpoint = "/dashboard/member/"
	default:
		endpoint = "/dashboard/member/"
	}

	var stats model.DashboardStats
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

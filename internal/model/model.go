// Package model содержит доменные сущности клиента системы заказа еды.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role описывает роль пользователя.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// Valid сообщает, является ли значение одной из известных ролей.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

// Region описывает регион пользователя или ресторана.
type Region string

const (
	RegionIndia   Region = "india"
	RegionAmerica Region = "america"
	RegionGlobal  Region = "global"
)

// Valid сообщает, является ли значение одним из известных регионов.
func (r Region) Valid() bool {
	switch r {
	case RegionIndia, RegionAmerica, RegionGlobal:
		return true
	}
	return false
}

// User представляет учётную запись пользователя.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
	Region    Region `json:"region"`
	IsActive  bool   `json:"is_active"`
}

// Restaurant описывает ресторан из каталога.
type Restaurant struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CuisineType string          `json:"cuisine_type"`
	Region      Region          `json:"region"`
	Rating      decimal.Decimal `json:"rating"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsActive    bool            `json:"is_active"`
	CreatedBy   *int64          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Category описывает категорию блюд.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// MenuItem описывает позицию меню ресторана.
type MenuItem struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Category    Category        `json:"category"`
	IsAvailable bool            `json:"is_available"`
	Restaurant  int64           `json:"restaurant"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CartItem описывает позицию корзины. Subtotal вычисляется сервером.
type CartItem struct {
	ID                  int64           `json:"id"`
	MenuItem            MenuItem        `json:"menu_item"`
	Quantity            int             `json:"quantity"`
	SpecialInstructions string          `json:"special_instructions"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Cart описывает корзину текущего покупателя. Total вычисляется сервером и
// на клиенте не пересчитывается.
type Cart struct {
	ID        int64           `json:"id"`
	Customer  int64           `json:"customer"`
	Items     []CartItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderStatus описывает статус заказа.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Valid сообщает, является ли значение известным статусом.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Label возвращает человекочитаемое название статуса.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Pending"
	case OrderStatusConfirmed:
		return "Confirmed"
	case OrderStatusPreparing:
		return "Preparing"
	case OrderStatusReady:
		return "Ready"
	case OrderStatusDelivered:
		return "Delivered"
	case OrderStatusCancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// Terminal сообщает, что заказ больше не изменяет статус.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled:
		return true
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing, OrderStatusReady:
		return false
	}
	return false
}

// PaymentMethod описывает способ оплаты заказа.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentPayPal PaymentMethod = "paypal"
)

// Valid сообщает, является ли значение известным способом оплаты.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentPayPal:
		return true
	}
	return false
}

// OrderItem описывает позицию заказа с зафиксированной ценой.
type OrderItem struct {
	ID                  int64           `json:"id"`
	MenuItem            MenuItem        `json:"menu_item"`
	Quantity            int             `json:"quantity"`
	Price               decimal.Decimal `json:"price"`
	SpecialInstructions string          `json:"special_instructions"`
	Subtotal            decimal.Decimal `json:"subtotal"`
}

// Order описывает оформленный заказ.
type Order struct {
	ID                  int64           `json:"id"`
	Customer            int64           `json:"customer"`
	Restaurant          *Restaurant     `json:"restaurant,omitempty"`
	Status              OrderStatus     `json:"status"`
	PaymentMethod       PaymentMethod   `json:"payment_method"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	SpecialInstructions string          `json:"special_instructions"`
	Items               []OrderItem     `json:"items"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	PlacedAt            *time.Time      `json:"placed_at,omitempty"`
	CancelledAt         *time.Time      `json:"cancelled_at,omitempty"`
}

// AuthResponse содержит пару токенов и данные пользователя после входа.
type AuthResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// RegisterData содержит поля формы регистрации.
type RegisterData struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RePassword string `json:"re_password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Region     Region `json:"region"`
}

// RecentOrder описывает строку последних заказов на дашборде.
type RecentOrder struct {
	ID                int64           `json:"id"`
	CustomerFirstName string          `json:"customer__first_name,omitempty"`
	RestaurantName    string          `json:"restaurant__name"`
	Status            OrderStatus     `json:"status"`
	CreatedAt         time.Time       `json:"created_at"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

// TopRestaurant описывает ресторан в рейтинге дашборда.
type TopRestaurant struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	OrderCount int64  `json:"order_count"`
}

// DashboardStats содержит сводку дашборда; набор заполненных полей зависит от роли.
type DashboardStats struct {
	TotalUsers       *int64           `json:"total_users,omitempty"`
	TotalRestaurants *int64           `json:"total_restaurants,omitempty"`
	TotalOrders      *int64           `json:"total_orders,omitempty"`
	TotalRevenue     *decimal.Decimal `json:"total_revenue,omitempty"`
	Region           Region           `json:"region,omitempty"`
	TotalSpent       *decimal.Decimal `json:"total_spent,omitempty"`
	RecentOrders     []RecentOrder    `json:"recent_orders,omitempty"`
	TopRestaurants   []TopRestaurant  `json:"top_restaurants,omitempty"`
}

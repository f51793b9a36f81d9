package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mmeshcher/foodorder-client/internal/access"
	"github.com/mmeshcher/foodorder-client/internal/middleware"
	"github.com/mmeshcher/foodorder-client/internal/model"
	"github.com/mmeshcher/foodorder-client/internal/validation"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPage отдаёт состояние сессии для формы входа. Записанная ошибка
// показывается один раз.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSessionView(h.session.State()))
	h.session.ClearError()
}

// Login выполняет вход и перенаправляет на главную.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		h.renderError(w, r, err)
		return
	}
	if req.Password == "" {
		h.renderError(w, r, &validation.Error{Field: "password", Message: "Password is required"})
		return
	}

	if err := h.session.Login(r.Context(), req.Email, req.Password); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, access.HomePath, http.StatusSeeOther)
}

// Register регистрирует пользователя и перенаправляет на главную.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterData
	if !decodeBody(w, r, &req) {
		return
	}

	if err := validation.ValidateRegisterData(req); err != nil {
		h.renderError(w, r, err)
		return
	}

	if err := h.session.Register(r.Context(), req); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, access.HomePath, http.StatusSeeOther)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword запрашивает письмо для сброса пароля.
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		h.renderError(w, r, err)
		return
	}

	if err := h.session.ResetPassword(r.Context(), req.Email); err != nil {
		h.renderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password reset email sent"})
}

type resetPasswordRequest struct {
	NewPassword   string `json:"new_password"`
	ReNewPassword string `json:"re_new_password"`
}

// ResetPassword устанавливает новый пароль по ссылке из письма и ведёт на страницу входа.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	uid, token := chi.URLParam(r, "uid"), chi.URLParam(r, "token")
	if uid == "" || token == "" {
		h.renderError(w, r, &validation.Error{Field: "token", Message: "Invalid reset link"})
		return
	}

	var req resetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := validation.ValidatePassword(req.NewPassword, req.ReNewPassword); err != nil {
		h.renderError(w, r, err)
		return
	}

	if err := h.session.ConfirmPasswordReset(r.Context(), uid, token, req.NewPassword, req.ReNewPassword); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
}

// Logout завершает сессию и очищает корзину.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		h.logger.Info("signed out", zap.Int64("user_id", u.ID))
	}
	h.session.Logout(r.Context())
	h.cart.ClearCart()
	http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
}

// Profile отдаёт текущего пользователя и срок действия токена доступа.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSessionView(h.session.State()))
}

type dashboardResponse struct {
	User  *model.User           `json:"user"`
	Stats *model.DashboardStats `json:"stats"`
}

// Dashboard отдаёт сводку, набор полей которой зависит от роли пользователя.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	u, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
		return
	}

	stats, err := h.catalog.Dashboard(r.Context(), u.Role)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{User: u, Stats: stats})
}

type configResponse struct {
	PayPalClientID string `json:"paypal_client_id"`
}

// Config отдаёт публичные параметры, нужные для оплаты через PayPal.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, configResponse{PayPalClientID: h.settings.PayPalClientID})
}

package api

import (
	"context"
	"net/http"

	"github.com/mmeshcher/foodorder-client/internal/model"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login обменивает email и пароль на пару токенов и данные пользователя.
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.doPublic(ctx, http.MethodPost, "/auth/jwt/create/", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register регистрирует пользователя и возвращает пару токенов.
func (c *Client) Register(ctx context.Context, data model.RegisterData) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.doPublic(ctx, http.MethodPost, "/auth/users/", data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser возвращает пользователя, которому принадлежит токен доступа.
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/auth/users/me/", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type confirmResetRequest struct {
	UID           string `json:"uid"`
	Token         string `json:"token"`
	NewPassword   string `json:"new_password"`
	ReNewPassword string `json:"re_new_password"`
}

// ResetPassword запрашивает письмо для сброса пароля.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.doPublic(ctx, http.MethodPost, "/auth/password/reset/", resetPasswordRequest{Email: email}, nil)
}

// ConfirmPasswordReset устанавливает новый пароль по ссылке из письма.
func (c *Client) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, reNewPassword string) error {
	req := confirmResetRequest{
		UID:           uid,
		Token:         token,
		NewPassword:   newPassword,
		ReNewPassword: reNewPassword,
	}
	return c.doPublic(ctx, http.MethodPost, "/auth/password/reset/confirm/", req, nil)
}

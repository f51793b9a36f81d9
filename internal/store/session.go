package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/foodorder-client/internal/api"
	"github.com/mmeshcher/foodorder-client/internal/model"
	"github.com/mmeshcher/foodorder-client/internal/storage"
)

// AuthAPI описывает вызовы API, используемые сессией.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*model.AuthResponse, error)
	Register(ctx context.Context, data model.RegisterData) (*model.AuthResponse, error)
	CurrentUser(ctx context.Context) (*model.User, error)
	ResetPassword(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, reNewPassword string) error
}

// SessionState содержит снимок состояния сессии. IsAuthenticated истинно тогда и только
// тогда, когда User не nil.
type SessionState struct {
	User            *model.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
	AccessExpiresAt *time.Time
}

// Session хранит личность текущего пользователя и управляет сохранёнными токенами.
type Session struct {
	api     AuthAPI
	storage storage.Store
	logger  *zap.Logger

	mu    sync.RWMutex
	state SessionState
}

// NewSession создаёт сессию в неаутентифицированном состоянии.
func NewSession(a AuthAPI, s storage.Store, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{api: a, storage: s, logger: logger}
}

// State возвращает копию текущего состояния.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Session) update(fn func(st *SessionState)) {
	s.mu.Lock()
	fn(&s.state)
	s.mu.Unlock()
}

// Login входит по email и паролю.
func (s *Session) Login(ctx context.Context, email, password string) error {
	s.update(func(st *SessionState) {
		st.IsLoading = true
		st.Error = ""
	})

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return s.fail("login", err, validationMessage(err, "Login failed"))
	}
	return s.authenticate(ctx, "login", resp, "Login failed")
}

// Register регистрирует пользователя и сразу входит под ним.
func (s *Session) Register(ctx context.Context, data model.RegisterData) error {
	s.update(func(st *SessionState) {
		st.IsLoading = true
		st.Error = ""
	})

	resp, err := s.api.Register(ctx, data)
	if err != nil {
		return s.fail("register", err, validationMessage(err, "Registration failed"))
	}
	return s.authenticate(ctx, "register", resp, "Registration failed")
}

// authenticate сохраняет пару токенов вместе с пользователем и переводит сессию
// в аутентифицированное состояние.
func (s *Session) authenticate(ctx context.Context, op string, resp *model.AuthResponse, fallback string) error {
	userJSON, err := json.Marshal(resp.User)
	if err != nil {
		return s.fail(op, fmt.Errorf("encode user: %w", err), fallback)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds := [][2]string{
		{storage.KeyAccessToken, resp.Access},
		{storage.KeyRefreshToken, resp.Refresh},
		{storage.KeyUser, string(userJSON)},
	}
	for _, kv := range creds {
		if err := s.storage.Set(ctx, kv[0], kv[1]); err != nil {
			s.clearCredentials(ctx)
			s.state.IsLoading = false
			s.state.Error = fallback
			return &Error{Op: op, Message: fallback, Err: fmt.Errorf("store credentials: %w", err)}
		}
	}

	user := resp.User
	s.state = SessionState{
		User:            &user,
		IsAuthenticated: true,
		AccessExpiresAt: expiryOf(resp.Access),
	}
	s.logger.Info("signed in", zap.String("op", op), zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return nil
}

// Logout удаляет сохранённые учётные данные без обращения к API.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearCredentials(ctx)
	s.state = SessionState{}
}

// Expire переводит сессию в неаутентифицированное состояние после того, как
// клиент API удалил учётные данные из-за неудачного обновления токена.
func (s *Session) Expire(context.Context) {
	s.update(func(st *SessionState) {
		*st = SessionState{}
	})
}

// GetCurrentUser восстанавливает сессию по сохранённому токену доступа.
// Без токена запрос к API не выполняется. Ошибка запроса означает истёкшую
// сессию: учётные данные удаляются, а ошибка в состояние не записывается.
func (s *Session) GetCurrentUser(ctx context.Context) {
	token, err := s.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("read access token", zap.Error(err))
	}
	if err != nil || token == "" {
		s.update(func(st *SessionState) {
			st.User = nil
			st.IsAuthenticated = false
		})
		return
	}

	s.update(func(st *SessionState) {
		st.IsLoading = true
	})

	user, err := s.api.CurrentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger.Info("session not restored", zap.Error(err))
		s.clearCredentials(ctx)
		s.state = SessionState{}
		return
	}

	if userJSON, err := json.Marshal(user); err == nil {
		if err := s.storage.Set(ctx, storage.KeyUser, string(userJSON)); err != nil {
			s.logger.Error("store user", zap.Error(err))
		}
	}

	// Токен мог обновиться во время запроса.
	if fresh, err := s.storage.Get(ctx, storage.KeyAccessToken); err == nil {
		token = fresh
	}

	s.state = SessionState{
		User:            user,
		IsAuthenticated: true,
		AccessExpiresAt: expiryOf(token),
	}
}

// ResetPassword запрашивает сброс пароля. Состояние аутентификации не меняется.
func (s *Session) ResetPassword(ctx context.Context, email string) error {
	s.update(func(st *SessionState) {
		st.IsLoading = true
		st.Error = ""
	})

	if err := s.api.ResetPassword(ctx, email); err != nil {
		return s.fail("reset password", err, detailMessage(err, "Password reset failed"))
	}

	s.update(func(st *SessionState) {
		st.IsLoading = false
	})
	return nil
}

// ConfirmPasswordReset устанавливает новый пароль по uid и токену из письма.
func (s *Session) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword, reNewPassword string) error {
	s.update(func(st *SessionState) {
		st.IsLoading = true
		st.Error = ""
	})

	if err := s.api.ConfirmPasswordReset(ctx, uid, token, newPassword, reNewPassword); err != nil {
		return s.fail("confirm password reset", err, detailMessage(err, "Password reset confirmation failed"))
	}

	s.update(func(st *SessionState) {
		st.IsLoading = false
	})
	return nil
}

// ClearError сбрасывает записанную ошибку.
func (s *Session) ClearError() {
	s.update(func(st *SessionState) {
		st.Error = ""
	})
}

func (s *Session) fail(op string, err error, msg string) error {
	s.update(func(st *SessionState) {
		st.IsLoading = false
		st.Error = msg
	})
	s.logger.Debug("session operation failed", zap.String("op", op), zap.Error(err))
	return &Error{Op: op, Message: msg, Err: err}
}

// clearCredentials удаляет токены и пользователя. Вызывается под s.mu.
func (s *Session) clearCredentials(ctx context.Context) {
	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
		if err := s.storage.Remove(ctx, key); err != nil {
			s.logger.Error("remove credential", zap.String("key", key), zap.Error(err))
		}
	}
}

func expiryOf(token string) *time.Time {
	exp, ok := api.AccessExpiry(token)
	if !ok {
		return nil
	}
	return &exp
}

// Package middleware содержит HTTP middleware клиента системы заказа еды.
package middleware

import (
	"context"
	"net/http"

	"github.com/mmeshcher/foodorder-client/internal/access"
	"github.com/mmeshcher/foodorder-client/internal/model"
	"github.com/mmeshcher/foodorder-client/internal/store"
)

type contextKey string

const userKey contextKey = "user"

// SessionSource отдаёт текущий снимок сессии.
type SessionSource interface {
	State() store.SessionState
}

// Guard пропускает запрос, только если текущая сессия допущена к странице.
// Решение принимается заново на каждый запрос.
func Guard(session SessionSource, allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := session.State()

			switch d := access.Decide(state, allowed...); d {
			case access.Render:
				ctx := r.Context()
				if state.User != nil {
					ctx = context.WithValue(ctx, userKey, state.User)
				}
				next.ServeHTTP(w, r.WithContext(ctx))
			case access.Wait:
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			default:
				http.Redirect(w, r, d.Location(), http.StatusSeeOther)
			}
		})
	}
}

// PublicOnly перенаправляет аутентифицированного пользователя с публичных
// страниц входа и регистрации на главную.
func PublicOnly(session SessionSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session.State().IsAuthenticated {
				http.Redirect(w, r, access.HomePath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext извлекает пользователя, допущенного Guard.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok
}

// Package access решает, можно ли показать страницу текущему пользователю.
package access

import (
	"slices"

	"github.com/mmeshcher/foodorder-client/internal/model"
	"github.com/mmeshcher/foodorder-client/internal/store"
)

const (
	LoginPath = "/login"
	HomePath  = "/dashboard"
)

// Decision описывает результат проверки доступа.
type Decision int

const (
	Render Decision = iota
	RedirectLogin
	RedirectHome
	Wait
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	case Wait:
		return "wait"
	}
	return "unknown"
}

// Location возвращает адрес перенаправления или пустую строку.
func (d Decision) Location() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectHome:
		return HomePath
	}
	return ""
}

// Decide вычисляет решение по снимку сессии. Пустой allowed пускает любого
// аутентифицированного пользователя. Результат не кэшируется.
func Decide(session store.SessionState, allowed ...model.Role) Decision {
	if session.IsLoading && !session.IsAuthenticated {
		return Wait
	}
	if !session.IsAuthenticated {
		return RedirectLogin
	}
	if len(allowed) == 0 {
		return Render
	}
	if session.User == nil || !slices.Contains(allowed, session.User.Role) {
		return RedirectHome
	}
	return Render
}

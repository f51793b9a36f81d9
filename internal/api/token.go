package api

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessExpiry читает срок действия из токена доступа без проверки подписи.
// Подпись проверяет сервер; клиенту срок нужен только для отображения.
func AccessExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

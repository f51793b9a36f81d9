// Package store содержит контейнеры состояния клиента: сессию, корзину и заказы.
//
// Каждая операция выставляет флаг загрузки, выполняет запросы к API и по их
// завершении либо заменяет состояние ответом сервера, либо записывает сообщение
// об ошибке в состояние и возвращает ту же ошибку вызывающему коду.
package store

import (
	"errors"

	"github.com/mmeshcher/foodorder-client/internal/api"
)

// ErrCartNotLoaded возвращается при изменении корзины, которая ещё не загружена.
var ErrCartNotLoaded = errors.New("cart not loaded")

// Error описывает ошибку операции хранилища. Error() возвращает то же сообщение,
// что записано в состояние хранилища.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// detailMessage возвращает поле detail ответа API или fallback.
func detailMessage(err error, fallback string) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// validationMessage возвращает detail, затем первое сообщение валидации поля, затем fallback.
func validationMessage(err error, fallback string) string {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	return fallback
}

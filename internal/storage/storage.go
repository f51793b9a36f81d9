// Package storage содержит хранилища ключ-значение для сохранения учётных данных клиента.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Ключи, под которыми клиент сохраняет сессию.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// ErrNotFound возвращается, если ключ отсутствует в хранилище.
var ErrNotFound = errors.New("key not found")

// Store описывает контракт хранилища ключ-значение.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open создаёт хранилище по строке подключения.
// Пустая строка и "memory" дают хранилище в памяти, "sqlite://path" открывает файл SQLite,
// "postgres://..." открывает таблицу в PostgreSQL.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case dsn == "" || dsn == "memory":
		return NewMemoryStore(), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return OpenPostgres(ctx, dsn)
	}
	return nil, fmt.Errorf("unsupported storage dsn %q", dsn)
}

package storage

import (
	"context"
	"errors"
)

// ErrObjectNotFound возвращается Get/Head, когда объекта нет по ключу.
// Вызывающие различают её и прочие ошибки ввода-вывода.
var ErrObjectNotFound = errors.New("object not found")

type PutResult struct {
	Key      string
	Location string
	ETag     string
	Size     int64
}

// ObjectStore — тонкая обёртка над удалённым блоб-хранилищем.
// Все операции могут проявлять eventual consistency: запись не обязана
// быть немедленно видимой последующему чтению или листингу.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, data []byte) (*PutResult, error)

	Get(ctx context.Context, key string) ([]byte, error)

	Head(ctx context.Context, key string) (bool, error)

	Delete(ctx context.Context, key string) error

	List(ctx context.Context, prefix string) ([]string, error)

	GetPublicURL(key string) string
}

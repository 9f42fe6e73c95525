package cache

import (
	"context"
	"time"
)

// Store минимальный контракт кеша, общий для Redis и памяти процесса.
type Store interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// SetIfNotExists возвращает true, если ключ был записан.
	SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// TopFreelancersKey ключ кеша выдачи лучших фрилансеров.
const TopFreelancersKey = "freelancers:top"

package cache

import (
	"context"
	"time"
)

const revokedPrefix = "auth:revoked:"

// TokenBlacklist хранит идентификаторы отозванных refresh токенов до их истечения.
type TokenBlacklist struct {
	store Store
}

// NewTokenBlacklist использует Redis, если он доступен, иначе память процесса.
func NewTokenBlacklist(redis *Redis, fallback *Memory) *TokenBlacklist {
	if redis.Available() {
		return &TokenBlacklist{store: redis}
	}
	return &TokenBlacklist{store: fallback}
}

func NewTokenBlacklistWithStore(store Store) *TokenBlacklist {
	return &TokenBlacklist{store: store}
}

// Revoke возвращает false, если токен уже был отозван.
func (b *TokenBlacklist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return true, nil
	}
	return b.store.SetIfNotExists(ctx, revokedPrefix+tokenID, "1", ttl)
}

func (b *TokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return b.store.Exists(ctx, revokedPrefix+tokenID)
}

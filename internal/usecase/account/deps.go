package account

import (
	"context"
	"io"
	"time"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/service"
	"github.com/ignatzorin/freelance-marketplace/internal/storage"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenIssuer interface {
	GeneratePair(user *entity.User) (*service.TokenPair, error)
	ParseRefresh(token string) (*service.RefreshClaims, error)
}

// TokenBlacklist хранит id отозванных refresh токенов до их истечения.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type MediaStore interface {
	Save(ctx context.Context, kind storage.Kind, r io.Reader) (string, error)
}

type SkillResolver interface {
	Execute(ctx context.Context, names []string) ([]entity.Skill, error)
}

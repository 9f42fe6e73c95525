package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
)

type ListingRepository interface {
	Create(ctx context.Context, l *entity.Listing) error
	Update(ctx context.Context, l *entity.Listing) error
	ReplaceSkills(ctx context.Context, listingID uuid.UUID, skillIDs []uuid.UUID) error
	FindBySlug(ctx context.Context, slug string) (*entity.Listing, error)
	// LockBySlug читает заказ с блокировкой строки до конца транзакции.
	LockBySlug(ctx context.Context, slug string) (*entity.Listing, error)
	// SlugsWithBase возвращает занятые slug вида base и base-N.
	SlugsWithBase(ctx context.Context, base string) ([]string, error)
	ListOpen(ctx context.Context, filter ListingFilter) ([]*entity.Listing, int, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*entity.Listing, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Listing, error)
	Search(ctx context.Context, query string, limit int) ([]*entity.Listing, error)
	SkillIDsOfClient(ctx context.Context, clientID uuid.UUID) ([]uuid.UUID, error)
}

type ListingFilter struct {
	MinPrice *valueobject.Price
	MaxPrice *valueobject.Price
	Skills   []string
	Limit    int
	Offset   int
}

type InterestRepository interface {
	// Upsert сохраняет отклик. Повторный отклик обновляет ссылку на чат.
	Upsert(ctx context.Context, interest *entity.Interest) error
	Exists(ctx context.Context, listingID, freelancerID uuid.UUID) (bool, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]*entity.Interest, error)
}

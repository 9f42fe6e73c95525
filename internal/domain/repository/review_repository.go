package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	ExistsForPair(ctx context.Context, clientID, freelancerID uuid.UUID) (bool, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Review, error)
	// LockFreelancer блокирует профиль фрилансера до конца транзакции, чтобы
	// параллельные отзывы пересчитывали рейтинг по очереди.
	LockFreelancer(ctx context.Context, freelancerID uuid.UUID) error
	RatingsOf(ctx context.Context, freelancerID uuid.UUID) ([]float64, error)
	// SaveRating записывает пересчитанный средний рейтинг в профиль фрилансера.
	SaveRating(ctx context.Context, freelancerID uuid.UUID, average float64, count int) error
}

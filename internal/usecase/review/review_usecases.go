package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/cache"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type CacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

type CreateReviewInput struct {
	ClientID           uuid.UUID
	FreelancerUsername string
	Rating             float64
	Text               string
}

type CreateReviewUseCase struct {
	userRepo       repository.UserRepository
	freelancerRepo repository.FreelancerRepository
	reviewRepo     repository.ReviewRepository
	tx             repository.Transactor
	cache          CacheInvalidator
}

func NewCreateReviewUseCase(
	userRepo repository.UserRepository,
	freelancerRepo repository.FreelancerRepository,
	reviewRepo repository.ReviewRepository,
	tx repository.Transactor,
	c CacheInvalidator,
) *CreateReviewUseCase {
	return &CreateReviewUseCase{
		userRepo:       userRepo,
		freelancerRepo: freelancerRepo,
		reviewRepo:     reviewRepo,
		tx:             tx,
		cache:          c,
	}
}

// Execute сохраняет отзыв и пересчитывает средний рейтинг фрилансера по всем
// его отзывам в той же транзакции.
func (uc *CreateReviewUseCase) Execute(ctx context.Context, input CreateReviewInput) (*entity.Review, error) {
	client, err := uc.userRepo.FindByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.Role.IsClient() {
		return nil, apperror.ErrClientOnly
	}

	card, err := uc.freelancerRepo.FindByUsername(ctx, input.FreelancerUsername)
	if err != nil {
		return nil, err
	}

	review, err := entity.NewReview(client.ID, card.User.ID, input.Rating, input.Text)
	if err != nil {
		return nil, err
	}
	review.ClientUsername = client.Username

	exists, err := uc.reviewRepo.ExistsForPair(ctx, client.ID, card.User.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.ErrDuplicateReview
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Блокировка профиля упорядочивает пересчёты при параллельных отзывах.
		if err := uc.reviewRepo.LockFreelancer(ctx, card.User.ID); err != nil {
			return err
		}
		if err := uc.reviewRepo.Create(ctx, review); err != nil {
			return err
		}
		ratings, err := uc.reviewRepo.RatingsOf(ctx, card.User.ID)
		if err != nil {
			return err
		}
		return uc.reviewRepo.SaveRating(ctx, card.User.ID, entity.AverageRating(ratings), len(ratings))
	})
	if err != nil {
		return nil, err
	}

	if err := uc.cache.Delete(ctx, cache.TopFreelancersKey); err != nil {
		logger.Log.WithError(err).Warn("Не удалось сбросить кеш лучших фрилансеров")
	}
	return review, nil
}

type ListFreelancerReviewsUseCase struct {
	freelancerRepo repository.FreelancerRepository
	reviewRepo     repository.ReviewRepository
}

func NewListFreelancerReviewsUseCase(freelancerRepo repository.FreelancerRepository, reviewRepo repository.ReviewRepository) *ListFreelancerReviewsUseCase {
	return &ListFreelancerReviewsUseCase{freelancerRepo: freelancerRepo, reviewRepo: reviewRepo}
}

func (uc *ListFreelancerReviewsUseCase) Execute(ctx context.Context, username string) ([]*entity.Review, error) {
	card, err := uc.freelancerRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return uc.reviewRepo.ListByFreelancer(ctx, card.User.ID)
}

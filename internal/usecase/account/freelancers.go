package account

import (
	"context"
	"strings"
	"time"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/cache"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/validation"
)

const (
	TopFreelancersLimit = 3
	defaultPageSize     = 20
	maxPageSize         = 100
	searchLimit         = 50
)

// Page нормализует параметры пагинации.
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

type ListFreelancersUseCase struct {
	freelancerRepo repository.FreelancerRepository
}

func NewListFreelancersUseCase(freelancerRepo repository.FreelancerRepository) *ListFreelancersUseCase {
	return &ListFreelancersUseCase{freelancerRepo: freelancerRepo}
}

func (uc *ListFreelancersUseCase) Execute(ctx context.Context, limit, offset int) ([]*entity.FreelancerCard, int, error) {
	limit, offset = Page(limit, offset)
	return uc.freelancerRepo.List(ctx, limit, offset)
}

type FreelancerDetail struct {
	Card    *entity.FreelancerCard
	Reviews []*entity.Review
}

type GetFreelancerUseCase struct {
	freelancerRepo repository.FreelancerRepository
	reviewRepo     repository.ReviewRepository
}

func NewGetFreelancerUseCase(freelancerRepo repository.FreelancerRepository, reviewRepo repository.ReviewRepository) *GetFreelancerUseCase {
	return &GetFreelancerUseCase{freelancerRepo: freelancerRepo, reviewRepo: reviewRepo}
}

func (uc *GetFreelancerUseCase) Execute(ctx context.Context, username string) (*FreelancerDetail, error) {
	card, err := uc.freelancerRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	reviews, err := uc.reviewRepo.ListByFreelancer(ctx, card.User.ID)
	if err != nil {
		return nil, err
	}
	return &FreelancerDetail{Card: card, Reviews: reviews}, nil
}

type TopFreelancersUseCase struct {
	freelancerRepo repository.FreelancerRepository
	cache          Cache
	ttl            time.Duration
}

func NewTopFreelancersUseCase(freelancerRepo repository.FreelancerRepository, c Cache, ttl time.Duration) *TopFreelancersUseCase {
	return &TopFreelancersUseCase{freelancerRepo: freelancerRepo, cache: c, ttl: ttl}
}

// Execute читает выдачу из кеша, при промахе берёт из базы и кладёт в кеш.
// Ошибки кеша не мешают ответу.
func (uc *TopFreelancersUseCase) Execute(ctx context.Context) ([]*entity.FreelancerCard, error) {
	var cached []*entity.FreelancerCard
	hit, err := uc.cache.GetJSON(ctx, cache.TopFreelancersKey, &cached)
	if err != nil {
		logger.Log.WithError(err).Warn("Не удалось прочитать кеш лучших фрилансеров")
	}
	if hit {
		return cached, nil
	}

	top, err := uc.freelancerRepo.Top(ctx, TopFreelancersLimit)
	if err != nil {
		return nil, err
	}
	if err := uc.cache.SetJSON(ctx, cache.TopFreelancersKey, top, uc.ttl); err != nil {
		logger.Log.WithError(err).Warn("Не удалось записать кеш лучших фрилансеров")
	}
	return top, nil
}

type SearchFreelancersUseCase struct {
	freelancerRepo repository.FreelancerRepository
}

func NewSearchFreelancersUseCase(freelancerRepo repository.FreelancerRepository) *SearchFreelancersUseCase {
	return &SearchFreelancersUseCase{freelancerRepo: freelancerRepo}
}

func (uc *SearchFreelancersUseCase) Execute(ctx context.Context, query string) ([]*entity.FreelancerCard, error) {
	query, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	return uc.freelancerRepo.Search(ctx, query, searchLimit)
}

// NormalizeQuery проверяет поисковую строку.
func NormalizeQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", apperror.Validation("параметр q обязателен")
	}
	if err := validation.ValidateLength("поисковый запрос", query, 1, validation.MaxSearchQueryLength); err != nil {
		return "", apperror.Validation(err.Error())
	}
	return query, nil
}

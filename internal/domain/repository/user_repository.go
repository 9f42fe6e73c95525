package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type UserRepository interface {
	// Create сохраняет пользователя и профиль его роли.
	Create(ctx context.Context, acc *entity.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	GetAccount(ctx context.Context, userID uuid.UUID) (*entity.Account, error)
	UpdateUser(ctx context.Context, u *entity.User) error
	UpdateClientProfile(ctx context.Context, p *entity.ClientProfile) error
	UpdateFreelancerProfile(ctx context.Context, p *entity.FreelancerProfile) error
	ReplaceFreelancerSkills(ctx context.Context, userID uuid.UUID, skillIDs []uuid.UUID) error
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
}

type FreelancerRepository interface {
	List(ctx context.Context, limit, offset int) ([]*entity.FreelancerCard, int, error)
	FindByUsername(ctx context.Context, username string) (*entity.FreelancerCard, error)
	Top(ctx context.Context, limit int) ([]*entity.FreelancerCard, error)
	Search(ctx context.Context, query string, limit int) ([]*entity.FreelancerCard, error)
	// FindBySkills фрилансеры, у которых есть хотя бы один навык из набора.
	FindBySkills(ctx context.Context, skillIDs []uuid.UUID) ([]*entity.FreelancerCard, error)
}

package listing

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// SkillResolver превращает свободный ввод в навыки каталога.
type SkillResolver interface {
	Execute(ctx context.Context, names []string) ([]entity.Skill, error)
}

// requireRole загружает пользователя и проверяет его роль.
func requireRole(ctx context.Context, users repository.UserRepository, userID uuid.UUID, role valueobject.Role, denied error) (*entity.User, error) {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, denied
		}
		return nil, err
	}
	if user.Role != role {
		return nil, denied
	}
	return user, nil
}

// ownedListing блокирует заказ и проверяет, что им владеет userID.
// Вызывать внутри транзакции.
func ownedListing(ctx context.Context, listings repository.ListingRepository, slug string, userID uuid.UUID) (*entity.Listing, error) {
	l, err := listings.LockBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !l.IsOwnedBy(userID) {
		return nil, apperror.ErrNotOwner
	}
	return l, nil
}

package account

import (
	"context"
	"time"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/service"
)

type LoginResult struct {
	Tokens *service.TokenPair
	User   *entity.User
}

type LoginUseCase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
}

func NewLoginUseCase(userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenIssuer) *LoginUseCase {
	return &LoginUseCase{userRepo: userRepo, hasher: hasher, tokens: tokens}
}

func (uc *LoginUseCase) Execute(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := uc.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.ErrInvalidCredentials
	}

	ok, err := uc.hasher.Compare(user.PasswordHash, password)
	if err != nil || !ok {
		return nil, apperror.ErrInvalidCredentials
	}

	pair, err := uc.tokens.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}

	if err := uc.userRepo.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.Log.WithError(err).WithField("user_id", user.ID).Warn("Не удалось обновить время входа")
	}

	return &LoginResult{Tokens: pair, User: user}, nil
}

type LogoutUseCase struct {
	tokens    TokenIssuer
	blacklist TokenBlacklist
}

func NewLogoutUseCase(tokens TokenIssuer, blacklist TokenBlacklist) *LogoutUseCase {
	return &LogoutUseCase{tokens: tokens, blacklist: blacklist}
}

// Execute отзывает refresh токен. Повторный logout с тем же токеном не ошибка.
func (uc *LogoutUseCase) Execute(ctx context.Context, refreshToken string) error {
	claims, err := uc.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return apperror.Validation("невалидный refresh токен")
	}
	if _, err := uc.blacklist.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отозвать токен")
	}
	return nil
}

type RefreshUseCase struct {
	userRepo  repository.UserRepository
	tokens    TokenIssuer
	blacklist TokenBlacklist
}

func NewRefreshUseCase(userRepo repository.UserRepository, tokens TokenIssuer, blacklist TokenBlacklist) *RefreshUseCase {
	return &RefreshUseCase{userRepo: userRepo, tokens: tokens, blacklist: blacklist}
}

// Execute выпускает новую пару и отзывает использованный refresh токен.
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	claims, err := uc.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	revoked, err := uc.blacklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить токен")
	}
	if revoked {
		return nil, apperror.ErrInvalidToken
	}

	// Revoke атомарен: из двух одновременных обновлений одним токеном
	// пройдёт только одно.
	first, err := uc.blacklist.Revoke(ctx, claims.TokenID, claims.ExpiresAt)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить токен")
	}
	if !first {
		return nil, apperror.ErrInvalidToken
	}

	user, err := uc.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperror.ErrInvalidToken
	}

	pair, err := uc.tokens.GeneratePair(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токены")
	}
	return pair, nil
}

package account

import (
	"context"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/validation"
)

type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      string
}

type RegisterUseCase struct {
	userRepo repository.UserRepository
	outbox   repository.OutboxWriter
	tx       repository.Transactor
	hasher   PasswordHasher
}

func NewRegisterUseCase(userRepo repository.UserRepository, outbox repository.OutboxWriter, tx repository.Transactor, hasher PasswordHasher) *RegisterUseCase {
	return &RegisterUseCase{userRepo: userRepo, outbox: outbox, tx: tx, hasher: hasher}
}

// Execute создаёт пользователя и профиль его роли в одной транзакции.
func (uc *RegisterUseCase) Execute(ctx context.Context, input RegisterInput) (*entity.User, error) {
	role, err := valueobject.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(input.Password); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	// Данные проверяем до bcrypt, чтобы не тратить время на заведомо неверный ввод.
	user, err := entity.NewUser(input.Username, input.FirstName, input.LastName, input.Email, "", role)
	if err != nil {
		return nil, err
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "ошибка хеширования пароля")
	}
	user.PasswordHash = hash

	acc, err := entity.NewAccount(user)
	if err != nil {
		return nil, err
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Create(ctx, acc); err != nil {
			return err
		}
		return uc.outbox.Enqueue(ctx, entity.EventUserCreated, entity.NewUserMirror(user))
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

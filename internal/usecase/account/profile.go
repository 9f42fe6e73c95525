package account

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/cache"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/storage"
)

type GetProfileUseCase struct {
	userRepo repository.UserRepository
}

func NewGetProfileUseCase(userRepo repository.UserRepository) *GetProfileUseCase {
	return &GetProfileUseCase{userRepo: userRepo}
}

func (uc *GetProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.Account, error) {
	return uc.userRepo.GetAccount(ctx, userID)
}

// UpdateProfileInput частичное обновление профиля. Поля чужой роли игнорируются.
type UpdateProfileInput struct {
	UserID    uuid.UUID
	User      entity.UserPatch
	Client    entity.ClientProfilePatch
	Portfolio *string
	// SkillNames nil означает, что навыки не меняются.
	SkillNames *[]string
	Image      io.Reader
	Video      io.Reader
}

type UpdateProfileUseCase struct {
	userRepo repository.UserRepository
	skills   SkillResolver
	media    MediaStore
	cache    Cache
	tx       repository.Transactor
}

func NewUpdateProfileUseCase(userRepo repository.UserRepository, skills SkillResolver, media MediaStore, c Cache, tx repository.Transactor) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{userRepo: userRepo, skills: skills, media: media, cache: c, tx: tx}
}

func (uc *UpdateProfileUseCase) Execute(ctx context.Context, input UpdateProfileInput) (*entity.Account, error) {
	acc, err := uc.userRepo.GetAccount(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	u := acc.User

	if err := u.Apply(input.User); err != nil {
		return nil, err
	}

	// Сначала применяем все проверки, файлы сохраняем только при валидном вводе.
	err = u.Role.Switch(
		func() error {
			if err := acc.Client.Apply(input.Client); err != nil {
				return err
			}
			acc.Client.Sync(u)
			return nil
		},
		func() error {
			if input.Portfolio != nil {
				return acc.Freelancer.SetPortfolio(*input.Portfolio)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	imagePath, err := uc.save(ctx, storage.KindImage, input.Image)
	if err != nil {
		return nil, err
	}
	videoPath, err := uc.save(ctx, storage.KindVideo, input.Video)
	if err != nil {
		return nil, err
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.UpdateUser(ctx, u); err != nil {
			return err
		}
		return u.Role.Switch(
			func() error {
				setPath(&acc.Client.ImagePath, imagePath)
				setPath(&acc.Client.VideoPath, videoPath)
				return uc.userRepo.UpdateClientProfile(ctx, acc.Client)
			},
			func() error {
				p := acc.Freelancer
				setPath(&p.ImagePath, imagePath)
				setPath(&p.VideoPath, videoPath)
				if err := uc.userRepo.UpdateFreelancerProfile(ctx, p); err != nil {
					return err
				}
				if input.SkillNames == nil {
					return nil
				}
				skills, err := uc.skills.Execute(ctx, *input.SkillNames)
				if err != nil {
					return err
				}
				return uc.userRepo.ReplaceFreelancerSkills(ctx, u.ID, entity.SkillIDs(skills))
			},
		)
	})
	if err != nil {
		return nil, err
	}

	if u.Role.IsFreelancer() {
		invalidateTop(ctx, uc.cache)
	}
	return uc.userRepo.GetAccount(ctx, u.ID)
}

func (uc *UpdateProfileUseCase) save(ctx context.Context, kind storage.Kind, r io.Reader) (string, error) {
	if r == nil {
		return "", nil
	}
	return uc.media.Save(ctx, kind, r)
}

func setPath(dst *string, path string) {
	if path != "" {
		*dst = path
	}
}

func invalidateTop(ctx context.Context, c Cache) {
	if err := c.Delete(ctx, cache.TopFreelancersKey); err != nil {
		logger.Log.WithError(err).Warn("Не удалось сбросить кеш лучших фрилансеров")
	}
}

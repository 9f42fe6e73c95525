package listing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
)

type UpdateListingInput struct {
	EditorID uuid.UUID
	Slug     string
	Patch    entity.ListingPatch
	// SkillNames nil означает "не менять", пустой срез очищает навыки.
	SkillNames         *[]string
	FreelancerUsername *string
}

type UpdateListingUseCase struct {
	listingRepo    repository.ListingRepository
	freelancerRepo repository.FreelancerRepository
	skills         SkillResolver
	tx             repository.Transactor
}

func NewUpdateListingUseCase(
	listingRepo repository.ListingRepository,
	freelancerRepo repository.FreelancerRepository,
	skills SkillResolver,
	tx repository.Transactor,
) *UpdateListingUseCase {
	return &UpdateListingUseCase{
		listingRepo:    listingRepo,
		freelancerRepo: freelancerRepo,
		skills:         skills,
		tx:             tx,
	}
}

// Execute меняет поля заказа. Slug остаётся прежним даже при смене заголовка.
func (uc *UpdateListingUseCase) Execute(ctx context.Context, input UpdateListingInput) (*entity.Listing, error) {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		l, err := ownedListing(ctx, uc.listingRepo, input.Slug, input.EditorID)
		if err != nil {
			return err
		}
		if err := l.Apply(input.Patch); err != nil {
			return err
		}

		if input.FreelancerUsername != nil {
			card, err := uc.freelancerRepo.FindByUsername(ctx, *input.FreelancerUsername)
			if err != nil {
				return err
			}
			if err := l.Assign(card.User.ID, time.Now()); err != nil {
				return err
			}
		}

		if err := uc.listingRepo.Update(ctx, l); err != nil {
			return err
		}

		if input.SkillNames != nil {
			skills, err := uc.skills.Execute(ctx, *input.SkillNames)
			if err != nil {
				return err
			}
			return uc.listingRepo.ReplaceSkills(ctx, l.ID, entity.SkillIDs(skills))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.listingRepo.FindBySlug(ctx, input.Slug)
}

package listing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// maxSlugAttempts сколько раз повторяем вставку, если параллельный запрос занял тот же slug.
const maxSlugAttempts = 5

type CreateListingInput struct {
	ClientID    uuid.UUID
	Title       string
	Description string
	Price       valueobject.Price
	SkillNames  []string
}

type CreateListingUseCase struct {
	listingRepo repository.ListingRepository
	userRepo    repository.UserRepository
	skills      SkillResolver
	outbox      repository.OutboxWriter
	tx          repository.Transactor
}

func NewCreateListingUseCase(
	listingRepo repository.ListingRepository,
	userRepo repository.UserRepository,
	skills SkillResolver,
	outbox repository.OutboxWriter,
	tx repository.Transactor,
) *CreateListingUseCase {
	return &CreateListingUseCase{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		skills:      skills,
		outbox:      outbox,
		tx:          tx,
	}
}

func (uc *CreateListingUseCase) Execute(ctx context.Context, input CreateListingInput) (*entity.Listing, error) {
	client, err := requireRole(ctx, uc.userRepo, input.ClientID, valueobject.RoleClient, apperror.ErrClientOnly)
	if err != nil {
		return nil, err
	}

	l, err := entity.NewListing(client.ID, input.Title, input.Description, input.Price)
	if err != nil {
		return nil, err
	}
	l.ClientUsername = client.Username
	base := valueobject.BaseSlug(l.Title)

	for attempt := 1; ; attempt++ {
		err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
			return uc.insert(ctx, l, base, input.SkillNames)
		})
		if !errors.Is(err, apperror.ErrSlugTaken) || attempt == maxSlugAttempts {
			break
		}
		logger.Log.WithField("slug", l.Slug).Debug("Slug занят параллельным запросом, повторяем")
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (uc *CreateListingUseCase) insert(ctx context.Context, l *entity.Listing, base string, skillNames []string) error {
	skills, err := uc.skills.Execute(ctx, skillNames)
	if err != nil {
		return err
	}

	taken, err := uc.listingRepo.SlugsWithBase(ctx, base)
	if err != nil {
		return err
	}
	l.Slug = valueobject.NextFreeSlug(base, taken)

	if err := uc.listingRepo.Create(ctx, l); err != nil {
		return err
	}
	if err := uc.listingRepo.ReplaceSkills(ctx, l.ID, entity.SkillIDs(skills)); err != nil {
		return err
	}
	l.Skills = skills

	return uc.outbox.Enqueue(ctx, entity.EventListingCreated, entity.NewListingMirror(l))
}

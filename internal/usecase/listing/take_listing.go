package listing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/chat"
)

type TakeListingUseCase struct {
	listingRepo  repository.ListingRepository
	interestRepo repository.InterestRepository
	userRepo     repository.UserRepository
	chatRepo     repository.ChatRepository
	messageRepo  repository.MessageRepository
	tx           repository.Transactor
	notifier     chat.Notifier
}

func NewTakeListingUseCase(
	listingRepo repository.ListingRepository,
	interestRepo repository.InterestRepository,
	userRepo repository.UserRepository,
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	tx repository.Transactor,
	notifier chat.Notifier,
) *TakeListingUseCase {
	return &TakeListingUseCase{
		listingRepo:  listingRepo,
		interestRepo: interestRepo,
		userRepo:     userRepo,
		chatRepo:     chatRepo,
		messageRepo:  messageRepo,
		tx:           tx,
		notifier:     notifier,
	}
}

// Execute фиксирует отклик фрилансера: открывает чат с заказчиком и пишет
// в него приветствие. Статус заказа не меняется, исполнителя выбирает заказчик.
func (uc *TakeListingUseCase) Execute(ctx context.Context, freelancerID uuid.UUID, slug string) (*entity.Chat, error) {
	freelancer, err := requireRole(ctx, uc.userRepo, freelancerID, valueobject.RoleFreelancer, apperror.ErrFreelancerOnly)
	if err != nil {
		return nil, err
	}

	var (
		c   *entity.Chat
		msg *entity.Message
	)
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		l, err := uc.listingRepo.LockBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if err := l.EnsureOpen(); err != nil {
			return err
		}

		pair, err := entity.NewPair(freelancer.ID, l.ClientID)
		if err != nil {
			return err
		}
		c, err = uc.chatRepo.GetOrCreate(ctx, pair)
		if err != nil {
			return err
		}

		msg, err = entity.NewMessage(c.ID, freelancer.ID, l.IntroMessage())
		if err != nil {
			return err
		}
		if err := uc.messageRepo.Create(ctx, msg); err != nil {
			return err
		}

		return uc.interestRepo.Upsert(ctx, entity.NewInterest(l.ID, freelancer.ID, c.ID))
	})
	if err != nil {
		return nil, err
	}

	msg.AuthorUsername = freelancer.Username
	if uc.notifier != nil {
		uc.notifier.NotifyMessage(c.Participants.Other(freelancer.ID), c, msg)
	}
	return c, nil
}

type SelectFreelancerUseCase struct {
	listingRepo  repository.ListingRepository
	interestRepo repository.InterestRepository
	tx           repository.Transactor
}

func NewSelectFreelancerUseCase(listingRepo repository.ListingRepository, interestRepo repository.InterestRepository, tx repository.Transactor) *SelectFreelancerUseCase {
	return &SelectFreelancerUseCase{listingRepo: listingRepo, interestRepo: interestRepo, tx: tx}
}

// Execute назначает исполнителем одного из откликнувшихся фрилансеров.
func (uc *SelectFreelancerUseCase) Execute(ctx context.Context, clientID uuid.UUID, slug string, freelancerID uuid.UUID) (*entity.Listing, error) {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		l, err := ownedListing(ctx, uc.listingRepo, slug, clientID)
		if err != nil {
			return err
		}
		if err := l.EnsureOpen(); err != nil {
			return err
		}

		interested, err := uc.interestRepo.Exists(ctx, l.ID, freelancerID)
		if err != nil {
			return err
		}
		if !interested {
			return apperror.ErrNoInterest
		}

		if err := l.Assign(freelancerID, time.Now()); err != nil {
			return err
		}
		return uc.listingRepo.Update(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return uc.listingRepo.FindBySlug(ctx, slug)
}

type CloseListingUseCase struct {
	listingRepo repository.ListingRepository
	tx          repository.Transactor
}

func NewCloseListingUseCase(listingRepo repository.ListingRepository, tx repository.Transactor) *CloseListingUseCase {
	return &CloseListingUseCase{listingRepo: listingRepo, tx: tx}
}

func (uc *CloseListingUseCase) Execute(ctx context.Context, clientID uuid.UUID, slug string) (*entity.Listing, error) {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		l, err := ownedListing(ctx, uc.listingRepo, slug, clientID)
		if err != nil {
			return err
		}
		if err := l.Close(time.Now()); err != nil {
			return err
		}
		return uc.listingRepo.Update(ctx, l)
	})
	if err != nil {
		return nil, err
	}
	return uc.listingRepo.FindBySlug(ctx, slug)
}

type ListInterestedUseCase struct {
	listingRepo  repository.ListingRepository
	interestRepo repository.InterestRepository
}

func NewListInterestedUseCase(listingRepo repository.ListingRepository, interestRepo repository.InterestRepository) *ListInterestedUseCase {
	return &ListInterestedUseCase{listingRepo: listingRepo, interestRepo: interestRepo}
}

func (uc *ListInterestedUseCase) Execute(ctx context.Context, clientID uuid.UUID, slug string) ([]*entity.Interest, error) {
	l, err := uc.listingRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !l.IsOwnedBy(clientID) {
		return nil, apperror.ErrNotOwner
	}
	return uc.interestRepo.ListByListing(ctx, l.ID)
}

package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/validation"
)

type Listing struct {
	ID                 uuid.UUID
	ClientID           uuid.UUID
	ClientUsername     string
	Title              string
	Slug               string
	Description        string
	Price              valueobject.Price
	Status             valueobject.ListingStatus
	FreelancerID       *uuid.UUID
	FreelancerUsername string
	Skills             []Skill
	CreatedAt          time.Time
	TakenAt            *time.Time
	EndedAt            *time.Time
	UpdatedAt          time.Time
}

// NewListing создаёт открытый заказ без исполнителя. Slug назначается при сохранении.
func NewListing(clientID uuid.UUID, title, description string, price valueobject.Price) (*Listing, error) {
	title = strings.TrimSpace(title)
	if err := validation.ValidateListingTitle(title); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	if err := validation.ValidateListingDescription(description); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	now := time.Now()
	return &Listing{
		ID:          uuid.New(),
		ClientID:    clientID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Price:       price,
		Status:      valueobject.ListingStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (l *Listing) IsOwnedBy(userID uuid.UUID) bool {
	return l.ClientID == userID
}

func (l *Listing) IsAssignedTo(userID uuid.UUID) bool {
	return l.FreelancerID != nil && *l.FreelancerID == userID
}

// EnsureOpen проверяет, что заказ ещё можно взять.
func (l *Listing) EnsureOpen() error {
	if l.Status != valueobject.ListingStatusOpen {
		return apperror.ErrListingNotOpen
	}
	if l.FreelancerID != nil {
		return apperror.ErrListingTaken
	}
	return nil
}

// Assign назначает исполнителя. Открытый заказ переходит в работу,
// у заказа в работе меняется только исполнитель.
func (l *Listing) Assign(freelancerID uuid.UUID, now time.Time) error {
	switch l.Status {
	case valueobject.ListingStatusOpen:
		if !l.Status.CanTransitionTo(valueobject.ListingStatusInProgress) {
			return apperror.ErrInvalidTransition
		}
		l.Status = valueobject.ListingStatusInProgress
		l.TakenAt = &now
	case valueobject.ListingStatusInProgress:
	default:
		return apperror.ErrListingClosed
	}
	id := freelancerID
	l.FreelancerID = &id
	l.UpdatedAt = now
	return nil
}

func (l *Listing) Close(now time.Time) error {
	if !l.Status.CanTransitionTo(valueobject.ListingStatusClosed) {
		return apperror.New(apperror.ErrCodeConflict,
			fmt.Sprintf("заказ в статусе %s нельзя закрыть", l.Status))
	}
	l.Status = valueobject.ListingStatusClosed
	l.EndedAt = &now
	l.UpdatedAt = now
	return nil
}

// ListingPatch редактируемые поля заказа. Slug не меняется никогда.
type ListingPatch struct {
	Title       *string
	Description *string
	Price       *valueobject.Price
}

func (l *Listing) Apply(p ListingPatch) error {
	if l.Status == valueobject.ListingStatusClosed {
		return apperror.ErrListingClosed
	}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if err := validation.ValidateListingTitle(title); err != nil {
			return apperror.Validation(err.Error())
		}
		l.Title = title
	}
	if p.Description != nil {
		if err := validation.ValidateListingDescription(*p.Description); err != nil {
			return apperror.Validation(err.Error())
		}
		l.Description = strings.TrimSpace(*p.Description)
	}
	if p.Price != nil {
		l.Price = *p.Price
	}
	l.UpdatedAt = time.Now()
	return nil
}

// IntroMessage текст первого сообщения фрилансера при отклике на заказ.
func (l *Listing) IntroMessage() string {
	return fmt.Sprintf("Здравствуйте! Меня интересует ваш заказ «%s».", l.Title)
}

// Interest отклик фрилансера на заказ до выбора исполнителя.
type Interest struct {
	ListingID          uuid.UUID
	FreelancerID       uuid.UUID
	FreelancerUsername string
	ChatID             *uuid.UUID
	CreatedAt          time.Time
}

func NewInterest(listingID, freelancerID, chatID uuid.UUID) *Interest {
	return &Interest{
		ListingID:    listingID,
		FreelancerID: freelancerID,
		ChatID:       &chatID,
		CreatedAt:    time.Now(),
	}
}

// ListingMatch заказ с числом совпавших навыков.
type ListingMatch struct {
	Listing      *Listing
	MatchedCount int
}

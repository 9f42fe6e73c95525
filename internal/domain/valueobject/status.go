package valueobject

import "github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"

type ListingStatus string

const (
	ListingStatusOpen       ListingStatus = "open"
	ListingStatusInProgress ListingStatus = "in_progress"
	ListingStatusClosed     ListingStatus = "closed"
)

func (s ListingStatus) IsValid() bool {
	switch s {
	case ListingStatusOpen, ListingStatusInProgress, ListingStatusClosed:
		return true
	}
	return false
}

// CanTransitionTo описывает машину состояний заказа: open -> in_progress -> closed.
// Возврат в open не поддерживается.
func (s ListingStatus) CanTransitionTo(newStatus ListingStatus) bool {
	transitions := map[ListingStatus][]ListingStatus{
		ListingStatusOpen:       {ListingStatusInProgress},
		ListingStatusInProgress: {ListingStatusClosed},
		ListingStatusClosed:     {},
	}

	for _, status := range transitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewListingStatus(status string) (ListingStatus, error) {
	s := ListingStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус заказа")
	}
	return s, nil
}

type CommunicationChannel string

const (
	CommunicationEmail CommunicationChannel = "email"
	CommunicationChat  CommunicationChannel = "chat"
	CommunicationPhone CommunicationChannel = "phone"
)

func NewCommunicationChannel(channel string) (CommunicationChannel, error) {
	switch c := CommunicationChannel(channel); c {
	case CommunicationEmail, CommunicationChat, CommunicationPhone:
		return c, nil
	case "":
		return CommunicationEmail, nil
	}
	return "", apperror.Validation("способ связи должен быть email, chat или phone")
}

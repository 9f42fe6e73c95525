package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EventUserCreated    = "user.created"
	EventListingCreated = "listing.created"
)

// OutboxEvent событие, ожидающее отправки во внешнюю систему.
type OutboxEvent struct {
	ID            uuid.UUID
	Event         string
	Payload       json.RawMessage
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
}

// UserMirror представление пользователя для внешней системы.
type UserMirror struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

func NewUserMirror(u *User) UserMirror {
	return UserMirror{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      string(u.Role),
	}
}

type ListingMirror struct {
	ID          uuid.UUID `json:"id"`
	ClientID    uuid.UUID `json:"client_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Skills      []string  `json:"skills"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewListingMirror(l *Listing) ListingMirror {
	return ListingMirror{
		ID:          l.ID,
		ClientID:    l.ClientID,
		Title:       l.Title,
		Slug:        l.Slug,
		Description: l.Description,
		Price:       l.Price.String(),
		Skills:      SkillNames(l.Skills),
		CreatedAt:   l.CreatedAt,
	}
}

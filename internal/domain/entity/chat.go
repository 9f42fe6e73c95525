package entity

import (
	"bytes"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/validation"
)

// Pair неупорядоченная пара участников, нормализованная так, что Low < High
// побайтно. Такой же порядок у типа uuid в Postgres.
type Pair struct {
	Low  uuid.UUID
	High uuid.UUID
}

func NewPair(a, b uuid.UUID) (Pair, error) {
	if a == b {
		return Pair{}, apperror.Validation("нельзя создать чат с самим собой")
	}
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return Pair{Low: a, High: b}, nil
}

func (p Pair) Contains(userID uuid.UUID) bool {
	return p.Low == userID || p.High == userID
}

// Other возвращает второго участника пары.
func (p Pair) Other(userID uuid.UUID) uuid.UUID {
	if p.Low == userID {
		return p.High
	}
	return p.Low
}

type Chat struct {
	ID            uuid.UUID
	Participants  Pair
	LowUsername   string
	HighUsername  string
	UnreadCount   int
	Messages      []*Message
	CreatedAt     time.Time
	LastMessageAt *time.Time
}

func NewChat(a, b uuid.UUID) (*Chat, error) {
	pair, err := NewPair(a, b)
	if err != nil {
		return nil, err
	}
	return &Chat{
		ID:           uuid.New(),
		Participants: pair,
		CreatedAt:    time.Now(),
	}, nil
}

func (c *Chat) IsParticipant(userID uuid.UUID) bool {
	return c.Participants.Contains(userID)
}

// ParticipantUsernames имена участников в порядке хранения пары.
func (c *Chat) ParticipantUsernames() []string {
	return []string{c.LowUsername, c.HighUsername}
}

// CounterpartUsername имя собеседника для пользователя userID.
func (c *Chat) CounterpartUsername(userID uuid.UUID) string {
	if c.Participants.Low == userID {
		return c.HighUsername
	}
	return c.LowUsername
}

type Message struct {
	ID             uuid.UUID
	ChatID         uuid.UUID
	AuthorID       uuid.UUID
	AuthorUsername string
	Content        string
	IsRead         bool
	CreatedAt      time.Time
}

func NewMessage(chatID, authorID uuid.UUID, content string) (*Message, error) {
	if err := validation.ValidateMessageContent(content); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	return &Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		AuthorID:  authorID,
		Content:   strings.TrimSpace(content),
		IsRead:    false,
		CreatedAt: time.Now(),
	}, nil
}

func (m *Message) IsOwnedBy(userID uuid.UUID) bool {
	return m.AuthorID == userID
}

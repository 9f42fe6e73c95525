package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type StartChatRequest struct {
	Username string `json:"username" binding:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ChatResponse struct {
	ID                   uuid.UUID          `json:"id"`
	ParticipantUsernames []string           `json:"participant_usernames"`
	Counterpart          string             `json:"counterpart"`
	UnreadCount          int                `json:"unread_count"`
	LastMessageAt        *time.Time         `json:"last_message_at"`
	Messages             *[]MessageResponse `json:"messages,omitempty"`
}

type MessageResponse struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// ToChatResponse собирает чат с точки зрения viewerID.
func ToChatResponse(c *entity.Chat, viewerID uuid.UUID) ChatResponse {
	resp := ChatResponse{
		ID:                   c.ID,
		ParticipantUsernames: c.ParticipantUsernames(),
		Counterpart:          c.CounterpartUsername(viewerID),
		UnreadCount:          c.UnreadCount,
		LastMessageAt:        optionalTime(c.LastMessageAt),
	}
	if c.Messages != nil {
		msgs := ToMessageResponses(c.Messages)
		resp.Messages = &msgs
	}
	return resp
}

func ToChatResponses(chats []*entity.Chat, viewerID uuid.UUID) []ChatResponse {
	out := make([]ChatResponse, len(chats))
	for i, c := range chats {
		out[i] = ToChatResponse(c, viewerID)
	}
	return out
}

func ToMessageResponse(m *entity.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Author:    m.AuthorUsername,
		Content:   m.Content,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
	}
}

func ToMessageResponses(msgs []*entity.Message) []MessageResponse {
	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = ToMessageResponse(m)
	}
	return out
}

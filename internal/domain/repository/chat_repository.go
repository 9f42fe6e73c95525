package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type ChatRepository interface {
	// GetOrCreate возвращает единственный чат пары, создавая его при отсутствии.
	GetOrCreate(ctx context.Context, pair entity.Pair) (*entity.Chat, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Chat, error)
	// ListByUser чаты пользователя с числом непрочитанных чужих сообщений.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Chat, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	ListByChat(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*entity.Message, error)
	// MarkRead помечает прочитанными сообщения чата, написанные не readerID.
	MarkRead(ctx context.Context, chatID, readerID uuid.UUID) (int64, error)
}

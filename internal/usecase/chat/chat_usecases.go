package chat

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const (
	defaultMessagesLimit = 200
	maxMessagesLimit     = 500
)

// Notifier доставляет событие о новом сообщении подключённому собеседнику.
// Доставка не гарантируется, клиенты всё равно опрашивают API.
type Notifier interface {
	NotifyMessage(recipientID uuid.UUID, chat *entity.Chat, msg *entity.Message)
}

type GetOrCreateChatUseCase struct {
	chatRepo repository.ChatRepository
}

func NewGetOrCreateChatUseCase(chatRepo repository.ChatRepository) *GetOrCreateChatUseCase {
	return &GetOrCreateChatUseCase{chatRepo: chatRepo}
}

// Execute возвращает единственный чат пары независимо от порядка участников.
func (uc *GetOrCreateChatUseCase) Execute(ctx context.Context, a, b uuid.UUID) (*entity.Chat, error) {
	pair, err := entity.NewPair(a, b)
	if err != nil {
		return nil, err
	}
	return uc.chatRepo.GetOrCreate(ctx, pair)
}

type StartChatUseCase struct {
	userRepo repository.UserRepository
	chats    *GetOrCreateChatUseCase
}

func NewStartChatUseCase(userRepo repository.UserRepository, chatRepo repository.ChatRepository) *StartChatUseCase {
	return &StartChatUseCase{userRepo: userRepo, chats: NewGetOrCreateChatUseCase(chatRepo)}
}

// Execute открывает чат с пользователем противоположной роли.
func (uc *StartChatUseCase) Execute(ctx context.Context, actorID uuid.UUID, counterpartUsername string) (*entity.Chat, error) {
	actor, err := uc.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	counterpart, err := uc.userRepo.FindByUsername(ctx, counterpartUsername)
	if err != nil {
		return nil, err
	}

	want, err := actor.Role.Opposite()
	if err != nil {
		return nil, err
	}
	if counterpart.Role != want {
		return nil, apperror.Validation("чат возможен только между заказчиком и фрилансером")
	}

	return uc.chats.Execute(ctx, actor.ID, counterpart.ID)
}

type ListChatsUseCase struct {
	chatRepo repository.ChatRepository
}

func NewListChatsUseCase(chatRepo repository.ChatRepository) *ListChatsUseCase {
	return &ListChatsUseCase{chatRepo: chatRepo}
}

func (uc *ListChatsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]*entity.Chat, error) {
	return uc.chatRepo.ListByUser(ctx, userID)
}

// participantChat загружает чат и проверяет, что userID его участник.
func participantChat(ctx context.Context, chatRepo repository.ChatRepository, chatID, userID uuid.UUID) (*entity.Chat, error) {
	chat, err := chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsParticipant(userID) {
		return nil, apperror.ErrNotParticipant
	}
	return chat, nil
}

type GetChatUseCase struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
}

func NewGetChatUseCase(chatRepo repository.ChatRepository, messageRepo repository.MessageRepository) *GetChatUseCase {
	return &GetChatUseCase{chatRepo: chatRepo, messageRepo: messageRepo}
}

// Execute возвращает чат с сообщениями в порядке отправки.
func (uc *GetChatUseCase) Execute(ctx context.Context, chatID, userID uuid.UUID, limit, offset int) (*entity.Chat, error) {
	chat, err := participantChat(ctx, uc.chatRepo, chatID, userID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultMessagesLimit
	}
	if limit > maxMessagesLimit {
		limit = maxMessagesLimit
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := uc.messageRepo.ListByChat(ctx, chat.ID, limit, offset)
	if err != nil {
		return nil, err
	}
	chat.Messages = messages
	return chat, nil
}

type SendMessageUseCase struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	notifier    Notifier
}

func NewSendMessageUseCase(chatRepo repository.ChatRepository, messageRepo repository.MessageRepository, notifier Notifier) *SendMessageUseCase {
	return &SendMessageUseCase{chatRepo: chatRepo, messageRepo: messageRepo, notifier: notifier}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, chatID, authorID uuid.UUID, content string) (*entity.Message, error) {
	chat, err := participantChat(ctx, uc.chatRepo, chatID, authorID)
	if err != nil {
		return nil, err
	}

	msg, err := entity.NewMessage(chat.ID, authorID, content)
	if err != nil {
		return nil, err
	}
	if err := uc.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	msg.AuthorUsername = AuthorUsername(chat, authorID)
	if uc.notifier != nil {
		uc.notifier.NotifyMessage(chat.Participants.Other(authorID), chat, msg)
	}
	return msg, nil
}

// AuthorUsername имя автора сообщения среди участников чата.
func AuthorUsername(chat *entity.Chat, authorID uuid.UUID) string {
	if chat.Participants.Low == authorID {
		return chat.LowUsername
	}
	return chat.HighUsername
}

type MarkReadUseCase struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
}

func NewMarkReadUseCase(chatRepo repository.ChatRepository, messageRepo repository.MessageRepository) *MarkReadUseCase {
	return &MarkReadUseCase{chatRepo: chatRepo, messageRepo: messageRepo}
}

// Execute помечает прочитанными чужие сообщения и возвращает их число.
func (uc *MarkReadUseCase) Execute(ctx context.Context, chatID, userID uuid.UUID) (int64, error) {
	chat, err := participantChat(ctx, uc.chatRepo, chatID, userID)
	if err != nil {
		return 0, err
	}
	return uc.messageRepo.MarkRead(ctx, chat.ID, userID)
}

type DeleteChatUseCase struct {
	chatRepo repository.ChatRepository
}

func NewDeleteChatUseCase(chatRepo repository.ChatRepository) *DeleteChatUseCase {
	return &DeleteChatUseCase{chatRepo: chatRepo}
}

func (uc *DeleteChatUseCase) Execute(ctx context.Context, chatID, userID uuid.UUID) error {
	chat, err := participantChat(ctx, uc.chatRepo, chatID, userID)
	if err != nil {
		return err
	}
	return uc.chatRepo.Delete(ctx, chat.ID)
}

package chat_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/chat"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/usecasetest"
)

type recordingNotifier struct {
	mu         sync.Mutex
	recipients []uuid.UUID
}

func (n *recordingNotifier) NotifyMessage(recipientID uuid.UUID, _ *entity.Chat, _ *entity.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.recipients = append(n.recipients, recipientID)
}

func TestGetOrCreateChat_SymmetricPair(t *testing.T) {
	store := usecasetest.NewStore()
	ctx := context.Background()
	a := store.MustAccount("clientuser1", valueobject.RoleClient)
	b := store.MustAccount("freelancer1", valueobject.RoleFreelancer)
	uc := chat.NewGetOrCreateChatUseCase(store.Chats())

	ab, err := uc.Execute(ctx, a.ID, b.ID)
	require.NoError(t, err)
	ba, err := uc.Execute(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, ab.ID, ba.ID)

	_, err = uc.Execute(ctx, a.ID, a.ID)
	assert.True(t, apperror.IsValidation(err))
}

func TestStartChat_RequiresOppositeRole(t *testing.T) {
	store := usecasetest.NewStore()
	ctx := context.Background()
	c1 := store.MustAccount("clientuser1", valueobject.RoleClient)
	store.MustAccount("clientuser2", valueobject.RoleClient)
	f := store.MustAccount("freelancer1", valueobject.RoleFreelancer)
	uc := chat.NewStartChatUseCase(store.Users(), store.Chats())

	_, err := uc.Execute(ctx, c1.ID, "clientuser2")
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(ctx, c1.ID, "missing_user")
	assert.True(t, apperror.IsNotFound(err))

	fromClient, err := uc.Execute(ctx, c1.ID, "freelancer1")
	require.NoError(t, err)
	fromFreelancer, err := uc.Execute(ctx, f.ID, "clientuser1")
	require.NoError(t, err)
	assert.Equal(t, fromClient.ID, fromFreelancer.ID)
}

func TestMessagingFlow(t *testing.T) {
	store := usecasetest.NewStore()
	ctx := context.Background()
	client := store.MustAccount("clientuser1", valueobject.RoleClient)
	freelancer := store.MustAccount("freelancer1", valueobject.RoleFreelancer)
	outsider := store.MustAccount("freelancer2", valueobject.RoleFreelancer)

	c, err := chat.NewGetOrCreateChatUseCase(store.Chats()).Execute(ctx, client.ID, freelancer.ID)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	send := chat.NewSendMessageUseCase(store.Chats(), store.Messages(), notifier)

	msg, err := send.Execute(ctx, c.ID, client.ID, "  Привет!  ")
	require.NoError(t, err)
	assert.Equal(t, "Привет!", msg.Content)
	assert.Equal(t, "clientuser1", msg.AuthorUsername)
	assert.False(t, msg.IsRead)
	_, err = send.Execute(ctx, c.ID, client.ID, "Есть задача")
	require.NoError(t, err)
	_, err = send.Execute(ctx, c.ID, freelancer.ID, "Слушаю")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{freelancer.ID, freelancer.ID, client.ID}, notifier.recipients)

	_, err = send.Execute(ctx, c.ID, outsider.ID, "я тоже тут")
	assert.ErrorIs(t, err, apperror.ErrNotParticipant)
	_, err = send.Execute(ctx, c.ID, client.ID, strings.Repeat("a", 5001))
	assert.True(t, apperror.IsValidation(err))

	list, err := chat.NewListChatsUseCase(store.Chats()).Execute(ctx, freelancer.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].UnreadCount)
	assert.Equal(t, "clientuser1", list[0].CounterpartUsername(freelancer.ID))

	n, err := chat.NewMarkReadUseCase(store.Chats(), store.Messages()).Execute(ctx, c.ID, freelancer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "свои сообщения не помечаются")

	detail, err := chat.NewGetChatUseCase(store.Chats(), store.Messages()).Execute(ctx, c.ID, client.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 3)
	assert.True(t, detail.Messages[0].IsRead)
	assert.False(t, detail.Messages[2].IsRead, "сообщение фрилансера клиент ещё не прочитал")

	_, err = chat.NewGetChatUseCase(store.Chats(), store.Messages()).Execute(ctx, c.ID, outsider.ID, 0, 0)
	assert.ErrorIs(t, err, apperror.ErrNotParticipant)

	del := chat.NewDeleteChatUseCase(store.Chats())
	assert.ErrorIs(t, del.Execute(ctx, c.ID, outsider.ID), apperror.ErrNotParticipant)
	require.NoError(t, del.Execute(ctx, c.ID, client.ID))
	_, err = store.Chats().FindByID(ctx, c.ID)
	assert.ErrorIs(t, err, apperror.ErrChatNotFound)
}

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

func TestUserRepository_CreateMapsDuplicateUsername(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepositoryAdapter(db, NewTransactor(db))

	u, err := entity.NewUser("freelancer1", "Иван", "Петров", "ivan@example.com", "hash", valueobject.RoleFreelancer)
	require.NoError(t, err)
	acc, err := entity.NewAccount(u)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})
	mock.ExpectRollback()

	err = repo.Create(context.Background(), acc)
	assert.ErrorIs(t, err, apperror.ErrUsernameTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateInsertsRoleProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepositoryAdapter(db, NewTransactor(db))

	u, err := entity.NewUser("clientuser1", "Анна", "Смирнова", "anna@example.com", "hash", valueobject.RoleClient)
	require.NoError(t, err)
	acc, err := entity.NewAccount(u)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO client_profiles").
		WithArgs(u.ID.String(), "", "", "Анна Смирнова", "anna@example.com", "email", "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), acc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_GetOrCreateReadsBackPair(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepositoryAdapter(db)

	pair, err := entity.NewPair(uuid.New(), uuid.New())
	require.NoError(t, err)
	chatID := uuid.New()

	mock.ExpectExec("INSERT INTO chats .* ON CONFLICT \\(user_low, user_high\\) DO NOTHING").
		WithArgs(sqlmock.AnyArg(), pair.Low.String(), pair.High.String(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM chats ch").
		WithArgs(pair.Low.String(), pair.High.String()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_low", "user_high", "low_username", "high_username", "created_at", "last_message_at", "unread_count",
		}).AddRow(chatID.String(), pair.Low.String(), pair.High.String(), "alice_low", "bob_high", time.Now(), nil, 0))

	chat, err := repo.GetOrCreate(context.Background(), pair)
	require.NoError(t, err)
	assert.Equal(t, chatID, chat.ID)
	assert.Equal(t, pair, chat.Participants)
	assert.Equal(t, []string{"alice_low", "bob_high"}, chat.ParticipantUsernames())
	assert.Nil(t, chat.LastMessageAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_DeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewChatRepositoryAdapter(db)

	mock.ExpectExec("DELETE FROM chats").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), uuid.New()), apperror.ErrChatNotFound)
}

func TestMessageRepository_MarkReadSkipsOwnMessages(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepositoryAdapter(db, NewTransactor(db))
	chatID, readerID := uuid.New(), uuid.New()

	mock.ExpectExec("UPDATE messages SET is_read = TRUE\\s+WHERE chat_id = \\$1 AND author_id <> \\$2 AND NOT is_read").
		WithArgs(chatID.String(), readerID.String()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.MarkRead(context.Background(), chatID, readerID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_ListOpenAppliesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewListingRepositoryAdapter(db, NewTransactor(db))

	minPrice, err := valueobject.NewPrice(10)
	require.NoError(t, err)
	listingID, clientID := uuid.New(), uuid.New()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM listings l WHERE l.status = 'open' AND l.freelancer_id IS NULL AND l.price >= \\$1::numeric AND EXISTS").
		WithArgs("10.00", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM listings l .* ORDER BY l.created_at DESC, l.id LIMIT \\$3 OFFSET \\$4").
		WithArgs("10.00", sqlmock.AnyArg(), 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "client_id", "client_username", "title", "slug", "description", "price", "status",
			"freelancer_id", "freelancer_username", "created_at", "taken_at", "ended_at", "updated_at",
		}).AddRow(listingID.String(), clientID.String(), "clientuser1", "Logo Design", "logo-design", "", "100.00", "open",
			nil, nil, time.Now(), nil, nil, time.Now()))
	mock.ExpectQuery("FROM listing_skills ls").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "id", "name", "created_at"}).
			AddRow(listingID.String(), uuid.NewString(), "python", time.Now()))

	list, total, err := repo.ListOpen(context.Background(), repository.ListingFilter{
		MinPrice: &minPrice,
		Skills:   []string{"python"},
		Limit:    20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "100.00", list[0].Price.String())
	assert.Nil(t, list[0].FreelancerID)
	assert.Equal(t, []string{"python"}, entity.SkillNames(list[0].Skills))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_SearchMatchesTitleOnly(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewListingRepositoryAdapter(db, NewTransactor(db))

	mock.ExpectQuery("WHERE l.title ILIKE \\$1\\s+ORDER BY l.created_at DESC\\s+LIMIT \\$2").
		WithArgs("%logo%", 50).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "client_id", "client_username", "title", "slug", "description", "price", "status",
			"freelancer_id", "freelancer_username", "created_at", "taken_at", "ended_at", "updated_at",
		}))

	list, err := repo.Search(context.Background(), "logo", 50)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepository_CreateMapsSlugConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewListingRepositoryAdapter(db, NewTransactor(db))

	l, err := entity.NewListing(uuid.New(), "Logo Design", "", valueobject.Price{})
	require.NoError(t, err)
	l.Slug = "logo-design"

	mock.ExpectExec("INSERT INTO listings").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "listings_slug_key"})

	assert.ErrorIs(t, repo.Create(context.Background(), l), apperror.ErrSlugTaken)
}

func TestReviewRepository_DuplicateAndMissingProfile(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReviewRepositoryAdapter(db)

	review, err := entity.NewReview(uuid.New(), uuid.New(), 5, "")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "reviews_pair_key"})
	assert.ErrorIs(t, repo.Create(context.Background(), review), apperror.ErrDuplicateReview)

	mock.ExpectExec("UPDATE freelancer_profiles SET average_rating").
		WithArgs(review.FreelancerID.String(), 4.5, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SaveRating(context.Background(), review.FreelancerID, 4.5, 2), apperror.ErrFreelancerNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSkillRepository_GetOrCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSkillRepositoryAdapter(db)

	mock.ExpectExec("INSERT INTO skills .* ON CONFLICT \\(name\\) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT id, name, created_at FROM skills WHERE name = ANY").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at"}).
			AddRow(uuid.NewString(), "python", time.Now()).
			AddRow(uuid.NewString(), "django", time.Now()))

	skills, err := repo.GetOrCreate(context.Background(), []string{"python", "django"})
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "django"}, entity.SkillNames(skills))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_EnqueueSerializesPayload(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOutboxRepositoryAdapter(db)

	mock.ExpectExec("INSERT INTO mirror_outbox").
		WithArgs(sqlmock.AnyArg(), entity.EventUserCreated, `{"username":"freelancer1"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Enqueue(context.Background(), entity.EventUserCreated, map[string]string{"username": "freelancer1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

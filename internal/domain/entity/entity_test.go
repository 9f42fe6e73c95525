package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, AverageRating(nil))
	assert.Equal(t, 4.0, AverageRating([]float64{4}))
	assert.InDelta(t, 3.5, AverageRating([]float64{3, 4, 5, 2}), 1e-9)
}

func TestNewPair_IsOrderIndependent(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	p1, err := NewPair(a, b)
	require.NoError(t, err)
	p2, err := NewPair(b, a)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.True(t, p1.Contains(a))
	assert.True(t, p1.Contains(b))
	assert.Equal(t, b, p1.Other(a))
}

func TestNewPair_SameUser(t *testing.T) {
	id := uuid.New()
	_, err := NewPair(id, id)
	assert.True(t, apperror.IsValidation(err))
}

func newTestListing(t *testing.T) *Listing {
	t.Helper()
	price, err := valueobject.NewPrice(100)
	require.NoError(t, err)
	l, err := NewListing(uuid.New(), "Build API", "REST API на Go", price)
	require.NoError(t, err)
	return l
}

func TestListing_AssignAndClose(t *testing.T) {
	l := newTestListing(t)
	require.NoError(t, l.EnsureOpen())

	now := time.Now()
	freelancerID := uuid.New()
	require.NoError(t, l.Assign(freelancerID, now))

	assert.Equal(t, valueobject.ListingStatusInProgress, l.Status)
	assert.True(t, l.IsAssignedTo(freelancerID))
	assert.Equal(t, now, *l.TakenAt)
	assert.ErrorIs(t, l.EnsureOpen(), apperror.ErrListingNotOpen)

	require.NoError(t, l.Close(now))
	assert.Equal(t, valueobject.ListingStatusClosed, l.Status)
	assert.NotNil(t, l.EndedAt)

	assert.ErrorIs(t, l.Assign(uuid.New(), now), apperror.ErrListingClosed)
	assert.True(t, apperror.IsConflict(l.Close(now)))
}

func TestListing_ReassignKeepsTakenAt(t *testing.T) {
	l := newTestListing(t)
	first := time.Now().Add(-time.Hour)
	require.NoError(t, l.Assign(uuid.New(), first))

	other := uuid.New()
	require.NoError(t, l.Assign(other, time.Now()))

	assert.True(t, l.IsAssignedTo(other))
	assert.Equal(t, first, *l.TakenAt)
}

func TestListing_CloseOpenIsConflict(t *testing.T) {
	l := newTestListing(t)
	assert.True(t, apperror.IsConflict(l.Close(time.Now())))
}

func TestNewListing_Validation(t *testing.T) {
	_, err := NewListing(uuid.New(), "ab", "", valueobject.Price{})
	assert.True(t, apperror.IsValidation(err))
}

func TestNewAccount_CreatesRoleProfile(t *testing.T) {
	u, err := NewUser("clientuser1", "Анна", "Смирнова", "anna@example.com", "hash", valueobject.RoleClient)
	require.NoError(t, err)

	acc, err := NewAccount(u)
	require.NoError(t, err)
	require.NotNil(t, acc.Client)
	assert.Nil(t, acc.Freelancer)
	assert.Equal(t, "Анна Смирнова", acc.Client.ContactName)
	assert.Equal(t, "anna@example.com", acc.Client.ContactEmail)
	assert.Equal(t, valueobject.CommunicationEmail, acc.Client.PreferredCommunication)

	u.Role = "admin"
	_, err = NewAccount(u)
	assert.Equal(t, apperror.ErrCodeConfiguration, apperror.CodeOf(err))
}

func TestNewUser_ShortUsername(t *testing.T) {
	_, err := NewUser("short", "", "", "a@example.com", "hash", valueobject.RoleFreelancer)
	assert.True(t, apperror.IsValidation(err))
}

func TestClientProfile_SyncFollowsUser(t *testing.T) {
	u, err := NewUser("clientuser1", "Анна", "Смирнова", "anna@example.com", "hash", valueobject.RoleClient)
	require.NoError(t, err)
	p := NewClientProfile(u)

	email := "new@example.com"
	require.NoError(t, u.Apply(UserPatch{Email: &email}))
	p.Sync(u)

	assert.Equal(t, "new@example.com", p.ContactEmail)
}

func TestNewMessage(t *testing.T) {
	m, err := NewMessage(uuid.New(), uuid.New(), "  привет ")
	require.NoError(t, err)
	assert.Equal(t, "привет", m.Content)
	assert.False(t, m.IsRead)

	_, err = NewMessage(uuid.New(), uuid.New(), "   ")
	assert.True(t, apperror.IsValidation(err))
}

func TestCountOverlap(t *testing.T) {
	python := Skill{ID: uuid.New(), Name: "python"}
	django := Skill{ID: uuid.New(), Name: "django"}
	java := Skill{ID: uuid.New(), Name: "java"}

	have := SkillSet([]Skill{python, django})
	assert.Equal(t, 2, CountOverlap([]Skill{python, django, java}, have))
	assert.Equal(t, 0, CountOverlap([]Skill{java}, have))
}

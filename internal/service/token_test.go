package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
)

func newTestManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func TestTokenManager_AccessRoundTrip(t *testing.T) {
	m := newTestManager()
	user := &entity.User{ID: uuid.New(), Role: valueobject.RoleFreelancer}

	pair, err := m.GeneratePair(user)
	require.NoError(t, err)

	userID, role, err := m.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
	assert.Equal(t, valueobject.RoleFreelancer, role)
}

func TestTokenManager_RefreshClaims(t *testing.T) {
	m := newTestManager()
	user := &entity.User{ID: uuid.New(), Role: valueobject.RoleClient}

	pair, err := m.GeneratePair(user)
	require.NoError(t, err)

	claims, err := m.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestTokenManager_RejectsSwappedTokens(t *testing.T) {
	m := newTestManager()
	user := &entity.User{ID: uuid.New(), Role: valueobject.RoleClient}

	pair, err := m.GeneratePair(user)
	require.NoError(t, err)

	_, _, err = m.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)

	_, err = m.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	require.NoError(t, err)

	ok, err := h.Compare(hash, "secret123")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "wrong-pass1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "secret123")
	assert.Error(t, err)
}

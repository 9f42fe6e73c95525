package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

func TestListingStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, ListingStatusOpen.CanTransitionTo(ListingStatusInProgress))
	assert.True(t, ListingStatusInProgress.CanTransitionTo(ListingStatusClosed))

	assert.False(t, ListingStatusOpen.CanTransitionTo(ListingStatusClosed))
	assert.False(t, ListingStatusInProgress.CanTransitionTo(ListingStatusOpen))
	assert.False(t, ListingStatusClosed.CanTransitionTo(ListingStatusOpen))
	assert.False(t, ListingStatusClosed.CanTransitionTo(ListingStatusInProgress))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("client")
	require.NoError(t, err)
	assert.True(t, r.IsClient())

	_, err = ParseRole("admin")
	assert.True(t, apperror.IsValidation(err))
}

func TestRole_SwitchUnknown(t *testing.T) {
	err := Role("admin").Switch(func() error { return nil }, func() error { return nil })
	assert.Equal(t, apperror.ErrCodeConfiguration, apperror.CodeOf(err))
}

func TestRole_Opposite(t *testing.T) {
	r, err := RoleClient.Opposite()
	require.NoError(t, err)
	assert.Equal(t, RoleFreelancer, r)

	r, err = RoleFreelancer.Opposite()
	require.NoError(t, err)
	assert.Equal(t, RoleClient, r)
}

func TestParsePrice(t *testing.T) {
	cases := map[string]string{
		"100":    "100.00",
		"100.5":  "100.50",
		"0.99":   "0.99",
		" 42.10": "42.10",
	}
	for in, want := range cases {
		p, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, p.String())
	}

	for _, bad := range []string{"", "-1", "1.234", "abc", "1.", "100000000", "1.-5", "1.+5", "+7", ".5", "1e2", "1 000"} {
		_, err := ParsePrice(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewPrice_RoundsToCents(t *testing.T) {
	p, err := NewPrice(19.999)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), p.Cents())

	_, err = NewPrice(-0.01)
	assert.Error(t, err)
}

func TestNewCommunicationChannel(t *testing.T) {
	c, err := NewCommunicationChannel("")
	require.NoError(t, err)
	assert.Equal(t, CommunicationEmail, c)

	_, err = NewCommunicationChannel("telegram")
	assert.Error(t, err)
}

func TestBaseSlug(t *testing.T) {
	assert.Equal(t, "build-api", BaseSlug("Build API"))
	assert.Equal(t, "logo-design", BaseSlug("  Logo   Design "))
	assert.Equal(t, "logotip", BaseSlug("Логотип"))
	assert.Equal(t, "listing", BaseSlug("!!!"))
}

func TestNextFreeSlug(t *testing.T) {
	assert.Equal(t, "logo-design", NextFreeSlug("logo-design", nil))
	assert.Equal(t, "logo-design-1", NextFreeSlug("logo-design", []string{"logo-design"}))
	assert.Equal(t, "logo-design-2", NextFreeSlug("logo-design", []string{"logo-design", "logo-design-1", "logo-design-3"}))
	assert.Equal(t, "logo-design", NextFreeSlug("logo-design", []string{"logo-design-1"}))
}

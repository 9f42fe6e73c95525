package review_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/infrastructure/cache"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/review"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/usecasetest"
)

func newCreate(store *usecasetest.Store, c review.CacheInvalidator) *review.CreateReviewUseCase {
	return review.NewCreateReviewUseCase(store.Users(), store.Freelancers(), store.Reviews(), usecasetest.Tx{}, c)
}

func TestCreateReview_RecomputesAverage(t *testing.T) {
	store := usecasetest.NewStore()
	ctx := context.Background()
	store.MustAccount("freelancer1", valueobject.RoleFreelancer)
	c1 := store.MustAccount("clientuser1", valueobject.RoleClient)
	c2 := store.MustAccount("clientuser2", valueobject.RoleClient)

	mem := cache.NewMemory()
	require.NoError(t, mem.SetJSON(ctx, cache.TopFreelancersKey, []string{"stale"}, time.Minute))
	uc := newCreate(store, mem)

	r, err := uc.Execute(ctx, review.CreateReviewInput{ClientID: c1.ID, FreelancerUsername: "freelancer1", Rating: 5, Text: "Отлично"})
	require.NoError(t, err)
	assert.Equal(t, "clientuser1", r.ClientUsername)

	_, err = uc.Execute(ctx, review.CreateReviewInput{ClientID: c2.ID, FreelancerUsername: "freelancer1", Rating: 2})
	require.NoError(t, err)

	card, err := store.Freelancers().FindByUsername(ctx, "freelancer1")
	require.NoError(t, err)
	assert.InDelta(t, 3.5, card.Profile.AverageRating, 1e-9)
	assert.Equal(t, 2, card.Profile.ReviewCount)

	exists, err := mem.Exists(ctx, cache.TopFreelancersKey)
	require.NoError(t, err)
	assert.False(t, exists)

	list, err := review.NewListFreelancerReviewsUseCase(store.Freelancers(), store.Reviews()).Execute(ctx, "freelancer1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "clientuser2", list[0].ClientUsername, "новые отзывы первыми")
}

func TestCreateReview_Rejections(t *testing.T) {
	store := usecasetest.NewStore()
	ctx := context.Background()
	f := store.MustAccount("freelancer1", valueobject.RoleFreelancer)
	client := store.MustAccount("clientuser1", valueobject.RoleClient)
	uc := newCreate(store, cache.NewMemory())

	_, err := uc.Execute(ctx, review.CreateReviewInput{ClientID: f.ID, FreelancerUsername: "freelancer1", Rating: 5})
	assert.ErrorIs(t, err, apperror.ErrClientOnly)

	_, err = uc.Execute(ctx, review.CreateReviewInput{ClientID: client.ID, FreelancerUsername: "clientuser1", Rating: 5})
	assert.True(t, apperror.IsNotFound(err))

	for _, rating := range []float64{0.5, 5.5} {
		_, err = uc.Execute(ctx, review.CreateReviewInput{ClientID: client.ID, FreelancerUsername: "freelancer1", Rating: rating})
		assert.True(t, apperror.IsValidation(err))
	}

	_, err = uc.Execute(ctx, review.CreateReviewInput{ClientID: client.ID, FreelancerUsername: "freelancer1", Rating: 4})
	require.NoError(t, err)
	_, err = uc.Execute(ctx, review.CreateReviewInput{ClientID: client.ID, FreelancerUsername: "freelancer1", Rating: 1})
	assert.True(t, apperror.IsDuplicate(err))

	card, err := store.Freelancers().FindByUsername(ctx, "freelancer1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, card.Profile.AverageRating, "повторный отзыв не меняет рейтинг")
}

func TestCreateReview_ConcurrentClientsKeepMeanExact(t *testing.T) {
	store := usecasetest.NewStore()
	ctx := context.Background()
	store.MustAccount("freelancer1", valueobject.RoleFreelancer)
	uc := newCreate(store, cache.NewMemory())

	names := []string{"clientuser1", "clientuser2", "clientuser3", "clientuser4"}
	ratings := []float64{1, 2, 4, 5}
	var wg sync.WaitGroup
	for i, name := range names {
		c := store.MustAccount(name, valueobject.RoleClient)
		wg.Add(1)
		go func(rating float64) {
			defer wg.Done()
			_, err := uc.Execute(ctx, review.CreateReviewInput{ClientID: c.ID, FreelancerUsername: "freelancer1", Rating: rating})
			assert.NoError(t, err)
		}(ratings[i])
	}
	wg.Wait()

	card, err := store.Freelancers().FindByUsername(ctx, "freelancer1")
	require.NoError(t, err)
	assert.Equal(t, 4, card.Profile.ReviewCount)
}

package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

func TestBackoff(t *testing.T) {
	assert.Equal(t, 5*time.Second, Backoff(0))
	assert.Equal(t, 5*time.Second, Backoff(1))
	assert.Equal(t, 10*time.Second, Backoff(2))
	assert.Equal(t, 40*time.Second, Backoff(4))
	assert.Equal(t, time.Hour, Backoff(20))
}

func TestClient_DeliverPostsToResource(t *testing.T) {
	var gotPath, gotAuth, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("Idempotency-Key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", time.Second)
	ev := &entity.OutboxEvent{ID: uuid.New(), Event: entity.EventListingCreated, Payload: json.RawMessage(`{"slug":"logo-design"}`)}

	require.NoError(t, c.Deliver(context.Background(), ev))
	assert.Equal(t, "/listings", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, ev.ID.String(), gotKey)
	assert.Equal(t, "logo-design", gotBody["slug"])
}

func TestClient_DeliverNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"down"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	err := c.Deliver(context.Background(), &entity.OutboxEvent{ID: uuid.New(), Event: entity.EventUserCreated, Payload: json.RawMessage(`{}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_UnknownEvent(t *testing.T) {
	c := NewClient("http://localhost", "", time.Second)
	err := c.Deliver(context.Background(), &entity.OutboxEvent{Event: "user.deleted"})
	assert.Error(t, err)
}

type fakeOutbox struct {
	due       []*entity.OutboxEvent
	delivered []uuid.UUID
	failed    map[uuid.UUID]int
	next      map[uuid.UUID]time.Time
}

func (f *fakeOutbox) Enqueue(context.Context, string, any) error { return nil }

func (f *fakeOutbox) FetchDue(_ context.Context, now time.Time, maxAttempts, limit int) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	for _, ev := range f.due {
		if ev.Attempts < maxAttempts && !ev.NextAttemptAt.After(now) && len(out) < limit {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkDelivered(_ context.Context, id uuid.UUID, _ time.Time) error {
	f.delivered = append(f.delivered, id)
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id uuid.UUID, attempts int, next time.Time, _ string) error {
	f.failed[id] = attempts
	f.next[id] = next
	for _, ev := range f.due {
		if ev.ID == id {
			ev.Attempts = attempts
			ev.NextAttemptAt = next
		}
	}
	return nil
}

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type deliverFunc func(ctx context.Context, ev *entity.OutboxEvent) error

func (f deliverFunc) Deliver(ctx context.Context, ev *entity.OutboxEvent) error { return f(ctx, ev) }

func TestWorker_RunOnceDeliversAndSchedulesRetry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ok := &entity.OutboxEvent{ID: uuid.New(), Event: entity.EventUserCreated, NextAttemptAt: now}
	bad := &entity.OutboxEvent{ID: uuid.New(), Event: entity.EventListingCreated, Attempts: 1, NextAttemptAt: now}
	outbox := &fakeOutbox{due: []*entity.OutboxEvent{ok, bad}, failed: map[uuid.UUID]int{}, next: map[uuid.UUID]time.Time{}}

	w := NewWorker(outbox, passTx{}, deliverFunc(func(_ context.Context, ev *entity.OutboxEvent) error {
		if ev.ID == bad.ID {
			return errors.New("connection refused")
		}
		return nil
	}), WorkerConfig{MaxAttempts: 5})
	w.now = func() time.Time { return now }

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{ok.ID}, outbox.delivered)
	assert.Equal(t, 2, outbox.failed[bad.ID])
	assert.Equal(t, now.Add(10*time.Second), outbox.next[bad.ID])
}

func TestWorker_SkipsExhaustedEvents(t *testing.T) {
	now := time.Now()
	parked := &entity.OutboxEvent{ID: uuid.New(), Event: entity.EventUserCreated, Attempts: 3, NextAttemptAt: now.Add(-time.Minute)}
	outbox := &fakeOutbox{due: []*entity.OutboxEvent{parked}, failed: map[uuid.UUID]int{}, next: map[uuid.UUID]time.Time{}}

	called := false
	w := NewWorker(outbox, passTx{}, deliverFunc(func(context.Context, *entity.OutboxEvent) error {
		called = true
		return nil
	}), WorkerConfig{MaxAttempts: 3})

	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, called)
}

type mockDeliverer struct {
	mock.Mock
}

func (m *mockDeliverer) Deliver(ctx context.Context, ev *entity.OutboxEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func TestWorker_ParksEventOnLastAttempt(t *testing.T) {
	now := time.Now()
	ev := &entity.OutboxEvent{ID: uuid.New(), Event: entity.EventListingCreated, Attempts: 2, NextAttemptAt: now.Add(-time.Second)}
	outbox := &fakeOutbox{due: []*entity.OutboxEvent{ev}, failed: map[uuid.UUID]int{}, next: map[uuid.UUID]time.Time{}}

	d := &mockDeliverer{}
	d.On("Deliver", mock.Anything, ev).Return(errors.New("timeout")).Once()

	w := NewWorker(outbox, passTx{}, d, WorkerConfig{MaxAttempts: 3})
	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 3, outbox.failed[ev.ID])

	// исчерпанное событие больше не выбирается
	n, err = w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	d.AssertExpectations(t)
}

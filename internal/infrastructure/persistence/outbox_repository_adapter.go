package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type OutboxRepositoryAdapter struct {
	db *sqlx.DB
}

func NewOutboxRepositoryAdapter(db *sqlx.DB) *OutboxRepositoryAdapter {
	return &OutboxRepositoryAdapter{db: db}
}

func (r *OutboxRepositoryAdapter) Enqueue(ctx context.Context, event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сериализовать событие")
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO mirror_outbox (id, event, payload, next_attempt_at, created_at)
		VALUES ($1, $2, $3::jsonb, NOW(), NOW())`, uuid.New(), event, string(raw)); err != nil {
		return dbError(err, "не удалось поставить событие в очередь")
	}
	return nil
}

func (r *OutboxRepositoryAdapter) FetchDue(ctx context.Context, now time.Time, maxAttempts, limit int) ([]*entity.OutboxEvent, error) {
	var rows []outboxRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT id, event, payload::text AS payload, attempts, next_attempt_at, last_error, created_at
		FROM mirror_outbox
		WHERE delivered_at IS NULL AND next_attempt_at <= $1 AND attempts < $2
		ORDER BY next_attempt_at, created_at
		LIMIT $3
		FOR UPDATE SKIP LOCKED`, now, maxAttempts, limit); err != nil {
		return nil, dbError(err, "не удалось получить события очереди")
	}

	out := make([]*entity.OutboxEvent, len(rows))
	for i, row := range rows {
		out[i] = &entity.OutboxEvent{
			ID:            row.ID,
			Event:         row.Event,
			Payload:       json.RawMessage(row.Payload),
			Attempts:      row.Attempts,
			NextAttemptAt: row.NextAttemptAt,
			LastError:     row.LastError,
			CreatedAt:     row.CreatedAt,
		}
	}
	return out, nil
}

func (r *OutboxRepositoryAdapter) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE mirror_outbox SET delivered_at = $2, last_error = '' WHERE id = $1`, id, at); err != nil {
		return dbError(err, "не удалось отметить событие доставленным")
	}
	return nil
}

func (r *OutboxRepositoryAdapter) MarkFailed(ctx context.Context, id uuid.UUID, attempts int, nextAttemptAt time.Time, lastError string) error {
	if _, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE mirror_outbox SET attempts = $2, next_attempt_at = $3, last_error = $4 WHERE id = $1`,
		id, attempts, nextAttemptAt, lastError); err != nil {
		return dbError(err, "не удалось сохранить ошибку доставки")
	}
	return nil
}

type outboxRow struct {
	ID            uuid.UUID `db:"id"`
	Event         string    `db:"event"`
	Payload       string    `db:"payload"`
	Attempts      int       `db:"attempts"`
	NextAttemptAt time.Time `db:"next_attempt_at"`
	LastError     string    `db:"last_error"`
	CreatedAt     time.Time `db:"created_at"`
}

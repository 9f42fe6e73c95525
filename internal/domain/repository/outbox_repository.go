package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

// OutboxWriter очередь событий для синхронизации с внешней системой.
// Запись выполняется в той же транзакции, что и локальное изменение.
type OutboxWriter interface {
	Enqueue(ctx context.Context, event string, payload any) error
}

type OutboxRepository interface {
	OutboxWriter
	// FetchDue блокирует готовые к отправке события до конца транзакции.
	// Строки, заблокированные другим обработчиком, пропускаются.
	FetchDue(ctx context.Context, now time.Time, maxAttempts, limit int) ([]*entity.OutboxEvent, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, attempts int, nextAttemptAt time.Time, lastError string) error
}

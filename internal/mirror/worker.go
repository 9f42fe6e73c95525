package mirror

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/goroutine"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
)

const (
	baseBackoff = 5 * time.Second
	maxBackoff  = time.Hour
	batchSize   = 50
)

type Deliverer interface {
	Deliver(ctx context.Context, ev *entity.OutboxEvent) error
}

type WorkerConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
}

// Worker переносит события из outbox во внешнюю систему. Локальные данные
// при ошибках доставки не откатываются, событие повторяется позже.
type Worker struct {
	outbox    repository.OutboxRepository
	tx        repository.Transactor
	deliverer Deliverer
	cfg       WorkerConfig
	now       func() time.Time
	log       *logrus.Entry
}

func NewWorker(outbox repository.OutboxRepository, tx repository.Transactor, deliverer Deliverer, cfg WorkerConfig) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	return &Worker{
		outbox:    outbox,
		tx:        tx,
		deliverer: deliverer,
		cfg:       cfg,
		now:       time.Now,
		log:       logger.Component("mirror"),
	}
}

// Backoff задержка перед следующей попыткой: 5s, 10s, 20s, ... но не больше часа.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := baseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}

// Start запускает опрос outbox в отдельной горутине до отмены ctx.
func (w *Worker) Start(ctx context.Context) {
	goroutine.SafeGoWithContext(ctx, "mirror-worker", func(ctx context.Context) {
		ticker := time.NewTicker(w.cfg.PollInterval)
		defer ticker.Stop()

		for {
			if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				w.log.WithError(err).Error("Ошибка обработки очереди синхронизации")
			}
			select {
			case <-ctx.Done():
				w.log.Info("Синхронизация остановлена")
				return
			case <-ticker.C:
			}
		}
	})
}

// RunOnce обрабатывает одну пачку событий и возвращает число доставленных.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	delivered := 0
	err := w.tx.WithinTx(ctx, func(ctx context.Context) error {
		events, err := w.outbox.FetchDue(ctx, w.now(), w.cfg.MaxAttempts, batchSize)
		if err != nil {
			return err
		}

		for _, ev := range events {
			if err := w.deliverer.Deliver(ctx, ev); err != nil {
				if markErr := w.fail(ctx, ev, err); markErr != nil {
					return markErr
				}
				continue
			}
			if err := w.outbox.MarkDelivered(ctx, ev.ID, w.now()); err != nil {
				return err
			}
			delivered++
		}
		return nil
	})
	return delivered, err
}

func (w *Worker) fail(ctx context.Context, ev *entity.OutboxEvent, cause error) error {
	attempts := ev.Attempts + 1
	next := w.now().Add(Backoff(attempts))

	entry := w.log.WithFields(logrus.Fields{
		"event_id": ev.ID,
		"event":    ev.Event,
		"attempts": attempts,
	}).WithError(cause)
	if attempts >= w.cfg.MaxAttempts {
		entry.Error("Событие не доставлено, попытки исчерпаны")
	} else {
		entry.WithField("next_attempt_at", next).Warn("Событие не доставлено, повтор позже")
	}

	return w.outbox.MarkFailed(ctx, ev.ID, attempts, next, cause.Error())
}

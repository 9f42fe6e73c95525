package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const chatSelect = `
	SELECT ch.id, ch.user_low, ch.user_high, lo.username AS low_username, hi.username AS high_username,
		ch.created_at, ch.last_message_at`

const chatJoins = `
	FROM chats ch
	JOIN users lo ON lo.id = ch.user_low
	JOIN users hi ON hi.id = ch.user_high`

type ChatRepositoryAdapter struct {
	db *sqlx.DB
}

func NewChatRepositoryAdapter(db *sqlx.DB) *ChatRepositoryAdapter {
	return &ChatRepositoryAdapter{db: db}
}

// GetOrCreate опирается на уникальный ключ пары: при гонке двух вставок
// вторая ничего не пишет и читает чат, созданный первой.
func (r *ChatRepositoryAdapter) GetOrCreate(ctx context.Context, pair entity.Pair) (*entity.Chat, error) {
	q := conn(ctx, r.db)

	if _, err := q.ExecContext(ctx, `
		INSERT INTO chats (id, user_low, user_high, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_low, user_high) DO NOTHING`,
		uuid.New(), pair.Low, pair.High, time.Now()); err != nil {
		return nil, dbError(err, "не удалось создать чат")
	}

	var row chatRow
	if err := q.GetContext(ctx, &row, chatSelect+`, 0 AS unread_count`+chatJoins+`
		WHERE ch.user_low = $1 AND ch.user_high = $2`, pair.Low, pair.High); err != nil {
		return nil, dbError(err, "не удалось получить чат")
	}
	return row.toEntity(), nil
}

func (r *ChatRepositoryAdapter) FindByID(ctx context.Context, id uuid.UUID) (*entity.Chat, error) {
	var row chatRow
	err := conn(ctx, r.db).GetContext(ctx, &row, chatSelect+`, 0 AS unread_count`+chatJoins+`
		WHERE ch.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrChatNotFound
	}
	if err != nil {
		return nil, dbError(err, "не удалось получить чат")
	}
	return row.toEntity(), nil
}

func (r *ChatRepositoryAdapter) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Chat, error) {
	var rows []chatRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, chatSelect+`,
		(SELECT COUNT(*) FROM messages m
			WHERE m.chat_id = ch.id AND m.author_id <> $1 AND NOT m.is_read) AS unread_count`+chatJoins+`
		WHERE ch.user_low = $1 OR ch.user_high = $1
		ORDER BY COALESCE(ch.last_message_at, ch.created_at) DESC`, userID); err != nil {
		return nil, dbError(err, "не удалось получить чаты")
	}

	out := make([]*entity.Chat, len(rows))
	for i := range rows {
		out[i] = rows[i].toEntity()
	}
	return out, nil
}

func (r *ChatRepositoryAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return dbError(err, "не удалось удалить чат")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.ErrChatNotFound
	}
	return nil
}

type chatRow struct {
	ID            uuid.UUID  `db:"id"`
	UserLow       uuid.UUID  `db:"user_low"`
	UserHigh      uuid.UUID  `db:"user_high"`
	LowUsername   string     `db:"low_username"`
	HighUsername  string     `db:"high_username"`
	UnreadCount   int        `db:"unread_count"`
	CreatedAt     time.Time  `db:"created_at"`
	LastMessageAt *time.Time `db:"last_message_at"`
}

func (r *chatRow) toEntity() *entity.Chat {
	return &entity.Chat{
		ID:            r.ID,
		Participants:  entity.Pair{Low: r.UserLow, High: r.UserHigh},
		LowUsername:   r.LowUsername,
		HighUsername:  r.HighUsername,
		UnreadCount:   r.UnreadCount,
		CreatedAt:     r.CreatedAt,
		LastMessageAt: r.LastMessageAt,
	}
}

type MessageRepositoryAdapter struct {
	db *sqlx.DB
	tx *Transactor
}

func NewMessageRepositoryAdapter(db *sqlx.DB, tx *Transactor) *MessageRepositoryAdapter {
	return &MessageRepositoryAdapter{db: db, tx: tx}
}

func (r *MessageRepositoryAdapter) Create(ctx context.Context, msg *entity.Message) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.db)
		if _, err := q.ExecContext(ctx, `
			INSERT INTO messages (id, chat_id, author_id, content, is_read, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			msg.ID, msg.ChatID, msg.AuthorID, msg.Content, msg.IsRead, msg.CreatedAt); err != nil {
			return dbError(err, "не удалось сохранить сообщение")
		}
		if _, err := q.ExecContext(ctx, `
			UPDATE chats SET last_message_at = $2 WHERE id = $1`, msg.ChatID, msg.CreatedAt); err != nil {
			return dbError(err, "не удалось обновить чат")
		}
		return nil
	})
}

func (r *MessageRepositoryAdapter) ListByChat(ctx context.Context, chatID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	var rows []messageRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT m.id, m.chat_id, m.author_id, u.username AS author_username, m.content, m.is_read, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.author_id
		WHERE m.chat_id = $1
		ORDER BY m.created_at, m.id
		LIMIT $2 OFFSET $3`, chatID, limit, offset); err != nil {
		return nil, dbError(err, "не удалось получить сообщения")
	}

	out := make([]*entity.Message, len(rows))
	for i, row := range rows {
		out[i] = &entity.Message{
			ID:             row.ID,
			ChatID:         row.ChatID,
			AuthorID:       row.AuthorID,
			AuthorUsername: row.AuthorUsername,
			Content:        row.Content,
			IsRead:         row.IsRead,
			CreatedAt:      row.CreatedAt,
		}
	}
	return out, nil
}

func (r *MessageRepositoryAdapter) MarkRead(ctx context.Context, chatID, readerID uuid.UUID) (int64, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE chat_id = $1 AND author_id <> $2 AND NOT is_read`, chatID, readerID)
	if err != nil {
		return 0, dbError(err, "не удалось отметить сообщения прочитанными")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, dbError(err, "не удалось отметить сообщения прочитанными")
	}
	return n, nil
}

type messageRow struct {
	ID             uuid.UUID `db:"id"`
	ChatID         uuid.UUID `db:"chat_id"`
	AuthorID       uuid.UUID `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	Content        string    `db:"content"`
	IsRead         bool      `db:"is_read"`
	CreatedAt      time.Time `db:"created_at"`
}

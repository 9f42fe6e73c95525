package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-marketplace/internal/db"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

type ReviewRepositoryAdapter struct {
	db *sqlx.DB
}

func NewReviewRepositoryAdapter(db *sqlx.DB) *ReviewRepositoryAdapter {
	return &ReviewRepositoryAdapter{db: db}
}

func (r *ReviewRepositoryAdapter) Create(ctx context.Context, review *entity.Review) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO reviews (id, client_id, freelancer_id, rating, text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.ClientID, review.FreelancerID, review.Rating, review.Text, review.CreatedAt)
	if db.IsUniqueViolation(err, "reviews_pair_key") {
		return apperror.ErrDuplicateReview
	}
	if db.IsForeignKeyViolation(err, "") {
		return apperror.ErrFreelancerNotFound
	}
	if err != nil {
		return dbError(err, "не удалось сохранить отзыв")
	}
	return nil
}

func (r *ReviewRepositoryAdapter) ExistsForPair(ctx context.Context, clientID, freelancerID uuid.UUID) (bool, error) {
	var exists bool
	if err := conn(ctx, r.db).GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM reviews WHERE client_id = $1 AND freelancer_id = $2)`,
		clientID, freelancerID); err != nil {
		return false, dbError(err, "не удалось проверить отзыв")
	}
	return exists, nil
}

func (r *ReviewRepositoryAdapter) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Review, error) {
	var rows []reviewRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT r.id, r.client_id, r.freelancer_id, r.rating, r.text, r.created_at, u.username AS client_username
		FROM reviews r
		JOIN users u ON u.id = r.client_id
		WHERE r.freelancer_id = $1
		ORDER BY r.created_at DESC`, freelancerID); err != nil {
		return nil, dbError(err, "не удалось получить отзывы")
	}

	out := make([]*entity.Review, len(rows))
	for i := range rows {
		out[i] = rows[i].toEntity()
	}
	return out, nil
}

func (r *ReviewRepositoryAdapter) LockFreelancer(ctx context.Context, freelancerID uuid.UUID) error {
	var id uuid.UUID
	err := conn(ctx, r.db).GetContext(ctx, &id, `
		SELECT user_id FROM freelancer_profiles WHERE user_id = $1 FOR UPDATE`, freelancerID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.ErrFreelancerNotFound
	}
	if err != nil {
		return dbError(err, "не удалось заблокировать профиль фрилансера")
	}
	return nil
}

func (r *ReviewRepositoryAdapter) RatingsOf(ctx context.Context, freelancerID uuid.UUID) ([]float64, error) {
	var ratings []float64
	if err := conn(ctx, r.db).SelectContext(ctx, &ratings, `
		SELECT rating FROM reviews WHERE freelancer_id = $1`, freelancerID); err != nil {
		return nil, dbError(err, "не удалось получить оценки")
	}
	return ratings, nil
}

func (r *ReviewRepositoryAdapter) SaveRating(ctx context.Context, freelancerID uuid.UUID, average float64, count int) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE freelancer_profiles SET average_rating = $2, review_count = $3, updated_at = NOW()
		WHERE user_id = $1`, freelancerID, average, count)
	if err != nil {
		return dbError(err, "не удалось сохранить рейтинг")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.ErrFreelancerNotFound
	}
	return nil
}

type reviewRow struct {
	ID             uuid.UUID `db:"id"`
	ClientID       uuid.UUID `db:"client_id"`
	FreelancerID   uuid.UUID `db:"freelancer_id"`
	Rating         float64   `db:"rating"`
	Text           string    `db:"text"`
	CreatedAt      time.Time `db:"created_at"`
	ClientUsername string    `db:"client_username"`
}

func (r *reviewRow) toEntity() *entity.Review {
	return &entity.Review{
		ID:             r.ID,
		ClientID:       r.ClientID,
		FreelancerID:   r.FreelancerID,
		Rating:         r.Rating,
		Text:           r.Text,
		ClientUsername: r.ClientUsername,
		CreatedAt:      r.CreatedAt,
	}
}

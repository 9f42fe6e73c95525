package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const freelancerCardQuery = `
	SELECT u.id, u.username, u.first_name, u.last_name, u.email, u.created_at,
		fp.portfolio, fp.average_rating, fp.review_count, fp.image_path, fp.video_path
	FROM users u
	JOIN freelancer_profiles fp ON fp.user_id = u.id
	WHERE u.role = 'freelancer' AND u.is_active = TRUE`

type FreelancerRepositoryAdapter struct {
	db *sqlx.DB
}

func NewFreelancerRepositoryAdapter(db *sqlx.DB) *FreelancerRepositoryAdapter {
	return &FreelancerRepositoryAdapter{db: db}
}

func (r *FreelancerRepositoryAdapter) List(ctx context.Context, limit, offset int) ([]*entity.FreelancerCard, int, error) {
	q := conn(ctx, r.db)

	var total int
	if err := q.GetContext(ctx, &total, `
		SELECT COUNT(*) FROM users u JOIN freelancer_profiles fp ON fp.user_id = u.id
		WHERE u.role = 'freelancer' AND u.is_active = TRUE`); err != nil {
		return nil, 0, dbError(err, "не удалось посчитать фрилансеров")
	}

	cards, err := r.selectCards(ctx, freelancerCardQuery+` ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

func (r *FreelancerRepositoryAdapter) FindByUsername(ctx context.Context, username string) (*entity.FreelancerCard, error) {
	cards, err := r.selectCards(ctx, freelancerCardQuery+` AND u.username = $1`, username)
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, apperror.ErrFreelancerNotFound
	}
	return cards[0], nil
}

func (r *FreelancerRepositoryAdapter) Top(ctx context.Context, limit int) ([]*entity.FreelancerCard, error) {
	return r.selectCards(ctx, freelancerCardQuery+`
		ORDER BY fp.average_rating DESC, fp.review_count DESC, u.username
		LIMIT $1`, limit)
}

func (r *FreelancerRepositoryAdapter) Search(ctx context.Context, query string, limit int) ([]*entity.FreelancerCard, error) {
	// EXISTS вместо JOIN по навыкам, чтобы фрилансер не повторялся в выдаче.
	return r.selectCards(ctx, freelancerCardQuery+`
		AND (u.username ILIKE $1 OR u.email ILIKE $1 OR u.first_name ILIKE $1 OR u.last_name ILIKE $1
			OR EXISTS (
				SELECT 1 FROM freelancer_skills fs JOIN skills s ON s.id = fs.skill_id
				WHERE fs.user_id = u.id AND s.name ILIKE $1
			))
		ORDER BY fp.average_rating DESC, u.username
		LIMIT $2`, containsPattern(query), limit)
}

func (r *FreelancerRepositoryAdapter) FindBySkills(ctx context.Context, skillIDs []uuid.UUID) ([]*entity.FreelancerCard, error) {
	if len(skillIDs) == 0 {
		return []*entity.FreelancerCard{}, nil
	}
	return r.selectCards(ctx, freelancerCardQuery+`
		AND EXISTS (
			SELECT 1 FROM freelancer_skills fs
			WHERE fs.user_id = u.id AND fs.skill_id = ANY($1::uuid[])
		)
		ORDER BY fp.average_rating DESC, u.username`, uuidArray(skillIDs))
}

func (r *FreelancerRepositoryAdapter) selectCards(ctx context.Context, query string, args ...any) ([]*entity.FreelancerCard, error) {
	q := conn(ctx, r.db)

	var rows []freelancerCardRow
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*entity.FreelancerCard{}, nil
		}
		return nil, dbError(err, "не удалось получить фрилансеров")
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	skills, err := loadFreelancerSkills(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]*entity.FreelancerCard, len(rows))
	for i, row := range rows {
		cards[i] = row.toEntity(skills[row.ID])
	}
	return cards, nil
}

type freelancerCardRow struct {
	ID            uuid.UUID `db:"id"`
	Username      string    `db:"username"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Email         string    `db:"email"`
	CreatedAt     time.Time `db:"created_at"`
	Portfolio     string    `db:"portfolio"`
	AverageRating float64   `db:"average_rating"`
	ReviewCount   int       `db:"review_count"`
	ImagePath     string    `db:"image_path"`
	VideoPath     string    `db:"video_path"`
}

func (r *freelancerCardRow) toEntity(skills []entity.Skill) *entity.FreelancerCard {
	if skills == nil {
		skills = []entity.Skill{}
	}
	return &entity.FreelancerCard{
		User: &entity.User{
			ID:        r.ID,
			Username:  r.Username,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Role:      valueobject.RoleFreelancer,
			IsActive:  true,
			CreatedAt: r.CreatedAt,
		},
		Profile: &entity.FreelancerProfile{
			UserID:        r.ID,
			Portfolio:     r.Portfolio,
			Skills:        skills,
			AverageRating: r.AverageRating,
			ReviewCount:   r.ReviewCount,
			ImagePath:     r.ImagePath,
			VideoPath:     r.VideoPath,
		},
	}
}

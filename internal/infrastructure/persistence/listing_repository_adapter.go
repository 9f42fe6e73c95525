package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-marketplace/internal/db"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const listingSelect = `
	SELECT l.id, l.client_id, c.username AS client_username, l.title, l.slug, l.description,
		l.price::text AS price, l.status, l.freelancer_id, f.username AS freelancer_username,
		l.created_at, l.taken_at, l.ended_at, l.updated_at
	FROM listings l
	JOIN users c ON c.id = l.client_id
	LEFT JOIN users f ON f.id = l.freelancer_id`

type ListingRepositoryAdapter struct {
	db *sqlx.DB
	tx *Transactor
}

func NewListingRepositoryAdapter(db *sqlx.DB, tx *Transactor) *ListingRepositoryAdapter {
	return &ListingRepositoryAdapter{db: db, tx: tx}
}

func (r *ListingRepositoryAdapter) Create(ctx context.Context, l *entity.Listing) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO listings (id, client_id, title, slug, description, price, status, freelancer_id, created_at, taken_at, ended_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11, $12)`,
		l.ID, l.ClientID, l.Title, l.Slug, l.Description, l.Price.String(), string(l.Status),
		l.FreelancerID, l.CreatedAt, l.TakenAt, l.EndedAt, l.UpdatedAt)
	if db.IsUniqueViolation(err, "listings_slug_key") {
		return apperror.ErrSlugTaken
	}
	if err != nil {
		return dbError(err, "не удалось создать заказ")
	}
	return nil
}

// Update сохраняет изменяемые поля. slug и client_id не обновляются.
func (r *ListingRepositoryAdapter) Update(ctx context.Context, l *entity.Listing) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE listings SET title = $2, description = $3, price = $4::numeric, status = $5,
			freelancer_id = $6, taken_at = $7, ended_at = $8, updated_at = $9
		WHERE id = $1`,
		l.ID, l.Title, l.Description, l.Price.String(), string(l.Status),
		l.FreelancerID, l.TakenAt, l.EndedAt, l.UpdatedAt)
	if err != nil {
		return dbError(err, "не удалось обновить заказ")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepositoryAdapter) ReplaceSkills(ctx context.Context, listingID uuid.UUID, skillIDs []uuid.UUID) error {
	return r.tx.WithinTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, r.db)
		if _, err := q.ExecContext(ctx, `DELETE FROM listing_skills WHERE listing_id = $1`, listingID); err != nil {
			return dbError(err, "не удалось обновить навыки заказа")
		}
		if len(skillIDs) == 0 {
			return nil
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO listing_skills (listing_id, skill_id)
			SELECT $1, unnest($2::uuid[])
			ON CONFLICT DO NOTHING`, listingID, uuidArray(skillIDs)); err != nil {
			return dbError(err, "не удалось обновить навыки заказа")
		}
		return nil
	})
}

func (r *ListingRepositoryAdapter) FindBySlug(ctx context.Context, slug string) (*entity.Listing, error) {
	return r.findOne(ctx, listingSelect+` WHERE l.slug = $1`, slug)
}

func (r *ListingRepositoryAdapter) LockBySlug(ctx context.Context, slug string) (*entity.Listing, error) {
	return r.findOne(ctx, listingSelect+` WHERE l.slug = $1 FOR UPDATE OF l`, slug)
}

func (r *ListingRepositoryAdapter) findOne(ctx context.Context, query string, args ...any) (*entity.Listing, error) {
	list, err := r.selectListings(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperror.ErrListingNotFound
	}
	return list[0], nil
}

func (r *ListingRepositoryAdapter) SlugsWithBase(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	if err := conn(ctx, r.db).SelectContext(ctx, &slugs, `
		SELECT slug FROM listings WHERE slug = $1 OR slug LIKE $2`,
		base, likeEscaper.Replace(base)+"-%"); err != nil {
		return nil, dbError(err, "не удалось проверить slug")
	}
	return slugs, nil
}

func (r *ListingRepositoryAdapter) ListOpen(ctx context.Context, filter repository.ListingFilter) ([]*entity.Listing, int, error) {
	conditions := []string{"l.status = 'open'", "l.freelancer_id IS NULL"}
	args := []any{}
	argIndex := 1

	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("l.price >= $%d::numeric", argIndex))
		args = append(args, filter.MinPrice.String())
		argIndex++
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("l.price <= $%d::numeric", argIndex))
		args = append(args, filter.MaxPrice.String())
		argIndex++
	}
	if len(filter.Skills) > 0 {
		// EXISTS не размножает заказ, если совпало несколько навыков.
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM listing_skills ls JOIN skills s ON s.id = ls.skill_id
			WHERE ls.listing_id = l.id AND s.name = ANY($%d::text[]))`, argIndex))
		args = append(args, pq.StringArray(filter.Skills))
		argIndex++
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM listings l`+where, args...); err != nil {
		return nil, 0, dbError(err, "не удалось посчитать заказы")
	}

	query := listingSelect + where + " ORDER BY l.created_at DESC, l.id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	list, err := r.selectListings(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *ListingRepositoryAdapter) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*entity.Listing, error) {
	return r.selectListings(ctx, listingSelect+` WHERE l.client_id = $1 ORDER BY l.created_at DESC`, clientID)
}

func (r *ListingRepositoryAdapter) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*entity.Listing, error) {
	return r.selectListings(ctx, listingSelect+` WHERE l.freelancer_id = $1 ORDER BY l.created_at DESC`, freelancerID)
}

func (r *ListingRepositoryAdapter) Search(ctx context.Context, query string, limit int) ([]*entity.Listing, error) {
	return r.selectListings(ctx, listingSelect+`
		WHERE l.title ILIKE $1
		ORDER BY l.created_at DESC
		LIMIT $2`, containsPattern(query), limit)
}

// SkillIDsOfClient объединение навыков всех заказов клиента.
func (r *ListingRepositoryAdapter) SkillIDsOfClient(ctx context.Context, clientID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := conn(ctx, r.db).SelectContext(ctx, &ids, `
		SELECT DISTINCT ls.skill_id
		FROM listing_skills ls
		JOIN listings l ON l.id = ls.listing_id
		WHERE l.client_id = $1`, clientID); err != nil {
		return nil, dbError(err, "не удалось получить навыки заказов")
	}
	return ids, nil
}

func (r *ListingRepositoryAdapter) selectListings(ctx context.Context, query string, args ...any) ([]*entity.Listing, error) {
	q := conn(ctx, r.db)

	var rows []listingRow
	if err := q.SelectContext(ctx, &rows, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*entity.Listing{}, nil
		}
		return nil, dbError(err, "не удалось получить заказы")
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	skills, err := loadListingSkills(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Listing, 0, len(rows))
	for i := range rows {
		l, err := rows[i].toEntity(skills[rows[i].ID])
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func loadListingSkills(ctx context.Context, q querier, listingIDs []uuid.UUID) (map[uuid.UUID][]entity.Skill, error) {
	if len(listingIDs) == 0 {
		return map[uuid.UUID][]entity.Skill{}, nil
	}
	var rows []ownedSkillRow
	if err := q.SelectContext(ctx, &rows, `
		SELECT ls.listing_id AS owner_id, s.id, s.name, s.created_at
		FROM listing_skills ls
		JOIN skills s ON s.id = ls.skill_id
		WHERE ls.listing_id = ANY($1::uuid[])
		ORDER BY s.name`, uuidArray(listingIDs)); err != nil {
		return nil, dbError(err, "не удалось получить навыки заказов")
	}
	return groupSkills(rows), nil
}

type listingRow struct {
	ID                 uuid.UUID  `db:"id"`
	ClientID           uuid.UUID  `db:"client_id"`
	ClientUsername     string     `db:"client_username"`
	Title              string     `db:"title"`
	Slug               string     `db:"slug"`
	Description        string     `db:"description"`
	Price              string     `db:"price"`
	Status             string     `db:"status"`
	FreelancerID       *uuid.UUID `db:"freelancer_id"`
	FreelancerUsername *string    `db:"freelancer_username"`
	CreatedAt          time.Time  `db:"created_at"`
	TakenAt            *time.Time `db:"taken_at"`
	EndedAt            *time.Time `db:"ended_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

func (r *listingRow) toEntity(skills []entity.Skill) (*entity.Listing, error) {
	price, err := valueobject.ParsePrice(r.Price)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "некорректная цена заказа в базе")
	}
	if skills == nil {
		skills = []entity.Skill{}
	}
	l := &entity.Listing{
		ID:             r.ID,
		ClientID:       r.ClientID,
		ClientUsername: r.ClientUsername,
		Title:          r.Title,
		Slug:           r.Slug,
		Description:    r.Description,
		Price:          price,
		Status:         valueobject.ListingStatus(r.Status),
		FreelancerID:   r.FreelancerID,
		Skills:         skills,
		CreatedAt:      r.CreatedAt,
		TakenAt:        r.TakenAt,
		EndedAt:        r.EndedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.FreelancerUsername != nil {
		l.FreelancerUsername = *r.FreelancerUsername
	}
	return l, nil
}

type InterestRepositoryAdapter struct {
	db *sqlx.DB
}

func NewInterestRepositoryAdapter(db *sqlx.DB) *InterestRepositoryAdapter {
	return &InterestRepositoryAdapter{db: db}
}

func (r *InterestRepositoryAdapter) Upsert(ctx context.Context, interest *entity.Interest) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO listing_interests (listing_id, freelancer_id, chat_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (listing_id, freelancer_id) DO UPDATE SET chat_id = EXCLUDED.chat_id`,
		interest.ListingID, interest.FreelancerID, interest.ChatID, interest.CreatedAt)
	if err != nil {
		return dbError(err, "не удалось сохранить отклик")
	}
	return nil
}

func (r *InterestRepositoryAdapter) Exists(ctx context.Context, listingID, freelancerID uuid.UUID) (bool, error) {
	var exists bool
	if err := conn(ctx, r.db).GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM listing_interests WHERE listing_id = $1 AND freelancer_id = $2)`,
		listingID, freelancerID); err != nil {
		return false, dbError(err, "не удалось проверить отклик")
	}
	return exists, nil
}

func (r *InterestRepositoryAdapter) ListByListing(ctx context.Context, listingID uuid.UUID) ([]*entity.Interest, error) {
	var rows []interestRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT i.listing_id, i.freelancer_id, u.username AS freelancer_username, i.chat_id, i.created_at
		FROM listing_interests i
		JOIN users u ON u.id = i.freelancer_id
		WHERE i.listing_id = $1
		ORDER BY i.created_at`, listingID); err != nil {
		return nil, dbError(err, "не удалось получить отклики")
	}

	out := make([]*entity.Interest, len(rows))
	for i, row := range rows {
		out[i] = &entity.Interest{
			ListingID:          row.ListingID,
			FreelancerID:       row.FreelancerID,
			FreelancerUsername: row.FreelancerUsername,
			ChatID:             row.ChatID,
			CreatedAt:          row.CreatedAt,
		}
	}
	return out, nil
}

type interestRow struct {
	ListingID          uuid.UUID  `db:"listing_id"`
	FreelancerID       uuid.UUID  `db:"freelancer_id"`
	FreelancerUsername string     `db:"freelancer_username"`
	ChatID             *uuid.UUID `db:"chat_id"`
	CreatedAt          time.Time  `db:"created_at"`
}

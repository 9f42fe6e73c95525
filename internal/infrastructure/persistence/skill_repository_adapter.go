package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type SkillRepositoryAdapter struct {
	db *sqlx.DB
}

func NewSkillRepositoryAdapter(db *sqlx.DB) *SkillRepositoryAdapter {
	return &SkillRepositoryAdapter{db: db}
}

// GetOrCreate вставляет недостающие навыки одним запросом. ON CONFLICT
// закрывает гонку двух одновременных запросов с одинаковым названием.
func (r *SkillRepositoryAdapter) GetOrCreate(ctx context.Context, names []string) ([]entity.Skill, error) {
	if len(names) == 0 {
		return []entity.Skill{}, nil
	}
	q := conn(ctx, r.db)

	ids := make([]uuid.UUID, len(names))
	for i := range names {
		ids[i] = uuid.New()
	}
	if _, err := q.ExecContext(ctx, `
		INSERT INTO skills (id, name)
		SELECT * FROM unnest($1::uuid[], $2::text[])
		ON CONFLICT (name) DO NOTHING`, uuidArray(ids), pq.StringArray(names)); err != nil {
		return nil, dbError(err, "не удалось сохранить навыки")
	}

	var rows []skillRow
	if err := q.SelectContext(ctx, &rows, `
		SELECT id, name, created_at FROM skills WHERE name = ANY($1::text[]) ORDER BY created_at, name`,
		pq.StringArray(names)); err != nil {
		return nil, dbError(err, "не удалось получить навыки")
	}
	return toSkills(rows), nil
}

func (r *SkillRepositoryAdapter) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Skill, error) {
	if len(ids) == 0 {
		return []entity.Skill{}, nil
	}
	var rows []skillRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT id, name, created_at FROM skills WHERE id = ANY($1::uuid[]) ORDER BY created_at, name`,
		uuidArray(ids)); err != nil {
		return nil, dbError(err, "не удалось получить навыки")
	}
	return toSkills(rows), nil
}

func (r *SkillRepositoryAdapter) List(ctx context.Context) ([]entity.Skill, error) {
	var rows []skillRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `SELECT id, name, created_at FROM skills ORDER BY created_at, name`); err != nil {
		return nil, dbError(err, "не удалось получить навыки")
	}
	return toSkills(rows), nil
}

type skillRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func toSkills(rows []skillRow) []entity.Skill {
	out := make([]entity.Skill, len(rows))
	for i, row := range rows {
		out[i] = entity.Skill{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
	}
	return out
}

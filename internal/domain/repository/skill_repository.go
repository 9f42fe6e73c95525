package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
)

type SkillRepository interface {
	// GetOrCreate атомарно создаёт недостающие навыки и возвращает все запрошенные.
	GetOrCreate(ctx context.Context, names []string) ([]entity.Skill, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Skill, error)
	List(ctx context.Context) ([]entity.Skill, error)
}

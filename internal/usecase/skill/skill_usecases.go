package skill

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/domain/repository"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/validation"
)

// NormalizeNames проверяет названия и возвращает их в каноничном виде без
// повторов, сохраняя порядок первого появления.
func NormalizeNames(names []string) ([]string, error) {
	if err := validation.ValidateSkills(names); err != nil {
		return nil, apperror.Validation(err.Error())
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		n := validation.NormalizeSkillName(name)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

type ResolveSkillNamesUseCase struct {
	skillRepo repository.SkillRepository
}

func NewResolveSkillNamesUseCase(skillRepo repository.SkillRepository) *ResolveSkillNamesUseCase {
	return &ResolveSkillNamesUseCase{skillRepo: skillRepo}
}

// Execute возвращает навыки по названиям, создавая отсутствующие.
func (uc *ResolveSkillNamesUseCase) Execute(ctx context.Context, names []string) ([]entity.Skill, error) {
	normalized, err := NormalizeNames(names)
	if err != nil {
		return nil, err
	}
	if len(normalized) == 0 {
		return []entity.Skill{}, nil
	}
	return uc.skillRepo.GetOrCreate(ctx, normalized)
}

type ResolveSkillIDsUseCase struct {
	skillRepo repository.SkillRepository
}

func NewResolveSkillIDsUseCase(skillRepo repository.SkillRepository) *ResolveSkillIDsUseCase {
	return &ResolveSkillIDsUseCase{skillRepo: skillRepo}
}

// Execute неизвестные id молча отбрасывает.
func (uc *ResolveSkillIDsUseCase) Execute(ctx context.Context, ids []uuid.UUID) ([]entity.Skill, error) {
	return uc.skillRepo.FindByIDs(ctx, ids)
}

type ListSkillsUseCase struct {
	skillRepo repository.SkillRepository
}

func NewListSkillsUseCase(skillRepo repository.SkillRepository) *ListSkillsUseCase {
	return &ListSkillsUseCase{skillRepo: skillRepo}
}

func (uc *ListSkillsUseCase) Execute(ctx context.Context) ([]entity.Skill, error) {
	return uc.skillRepo.List(ctx)
}

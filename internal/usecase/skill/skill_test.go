package skill_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/entity"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/skill"
	"github.com/ignatzorin/freelance-marketplace/internal/usecase/usecasetest"
)

func TestResolveSkillNames_FoldsCaseAndDeduplicates(t *testing.T) {
	store := usecasetest.NewStore()
	uc := skill.NewResolveSkillNamesUseCase(store.Skills())
	ctx := context.Background()

	first, err := uc.Execute(ctx, []string{"Python", "  machine   learning ", "python"})
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "machine learning"}, entity.SkillNames(first))

	second, err := uc.Execute(ctx, []string{"PYTHON"})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)

	all, err := skill.NewListSkillsUseCase(store.Skills()).Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestResolveSkillNames_RejectsInvalid(t *testing.T) {
	uc := skill.NewResolveSkillNamesUseCase(usecasetest.NewStore().Skills())

	_, err := uc.Execute(context.Background(), []string{"go", "   "})
	assert.True(t, apperror.IsValidation(err))

	_, err = uc.Execute(context.Background(), []string{strings.Repeat("x", 51)})
	assert.True(t, apperror.IsValidation(err))
}

func TestResolveSkillIDs_DropsUnknown(t *testing.T) {
	store := usecasetest.NewStore()
	ctx := context.Background()
	created, err := skill.NewResolveSkillNamesUseCase(store.Skills()).Execute(ctx, []string{"go"})
	require.NoError(t, err)

	found, err := skill.NewResolveSkillIDsUseCase(store.Skills()).Execute(ctx, []uuid.UUID{created[0].ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, entity.SkillNames(found))
}

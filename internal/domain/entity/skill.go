package entity

import (
	"time"

	"github.com/google/uuid"
)

type Skill struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

func SkillIDs(skills []Skill) []uuid.UUID {
	ids := make([]uuid.UUID, len(skills))
	for i, s := range skills {
		ids[i] = s.ID
	}
	return ids
}

func SkillNames(skills []Skill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}

// CountOverlap считает, сколько навыков из skills входит в набор have.
func CountOverlap(skills []Skill, have map[uuid.UUID]struct{}) int {
	n := 0
	for _, s := range skills {
		if _, ok := have[s.ID]; ok {
			n++
		}
	}
	return n
}

func SkillSet(skills []Skill) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(skills))
	for _, s := range skills {
		set[s.ID] = struct{}{}
	}
	return set
}

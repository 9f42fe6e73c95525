package valueobject

import "github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"

// Role тип аккаунта. Других значений, кроме двух констант ниже, быть не может.
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleClient, RoleFreelancer:
		return r, nil
	}
	return "", apperror.Validation("роль должна быть client или freelancer")
}

func (r Role) IsClient() bool     { return r == RoleClient }
func (r Role) IsFreelancer() bool { return r == RoleFreelancer }

// Opposite возвращает роль собеседника: клиент общается с фрилансером и наоборот.
func (r Role) Opposite() (Role, error) {
	var out Role
	err := r.Switch(
		func() error { out = RoleFreelancer; return nil },
		func() error { out = RoleClient; return nil },
	)
	return out, err
}

// Switch выполняет ветку, соответствующую роли. Любая неизвестная роль
// означает испорченные данные и возвращает ошибку конфигурации.
func (r Role) Switch(onClient, onFreelancer func() error) error {
	switch r {
	case RoleClient:
		return onClient()
	case RoleFreelancer:
		return onFreelancer()
	default:
		return apperror.ErrUnknownRole
	}
}

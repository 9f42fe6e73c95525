package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/freelance-marketplace/internal/domain/valueobject"
)

// RegisterBindingRules добавляет в валидатор gin теги username, skillname и
// role, чтобы их можно было использовать в `binding:"..."` у DTO.
func RegisterBindingRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return Register(v)
}

// Register регистрирует правила на переданном валидаторе.
func Register(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"username": func(fl validator.FieldLevel) bool {
			return ValidateUsername(fl.Field().String()) == nil
		},
		"skillname": func(fl validator.FieldLevel) bool {
			return ValidateSkillName(fl.Field().String()) == nil
		},
		"role": func(fl validator.FieldLevel) bool {
			_, err := valueobject.ParseRole(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

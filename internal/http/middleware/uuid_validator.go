package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// UUIDValidator проверяет, что параметр пути paramName является UUID.
// Использование: chat.GET("/:id", UUIDValidator("id"), h.GetChat)
func UUIDValidator(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := uuid.Parse(c.Param(paramName)); err != nil {
			abort(c, apperror.Validation("параметр "+paramName+" должен быть валидным UUID"))
			return
		}
		c.Next()
	}
}

package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/interface/http/response"
	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

// ErrorHandler перехватывает panic и ошибки, добавленные через c.Error.
// Клиент получает только код и сообщение, причина остаётся в логах.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Log.WithFields(requestFields(c)).
					WithField("panic", r).
					WithField("stack", string(debug.Stack())).
					Error("Panic при обработке запроса")
				if !c.Writer.Written() {
					response.Error(c, apperror.New(apperror.ErrCodeInternal, "внутренняя ошибка сервера"))
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		if apperror.CodeOf(err) == apperror.ErrCodeInternal || apperror.CodeOf(err) == apperror.ErrCodeDatabaseError {
			logger.Log.WithFields(requestFields(c)).WithError(err).Error("Ошибка обработки запроса")
		}
		if !c.Writer.Written() {
			response.Error(c, err)
		}
	}
}

func requestFields(c *gin.Context) logrus.Fields {
	fields := logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
	}
	if id := c.GetString(ContextRequestIDKey); id != "" {
		fields["request_id"] = id
	}
	if userID, ok := UserIDFrom(c); ok {
		fields["user_id"] = userID.String()
	}
	return fields
}

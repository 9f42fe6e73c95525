package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/logger"
)

// RecoveryHandler обрабатывает panic в горутинах
type RecoveryHandler struct {
	log func() logrus.FieldLogger
}

// NewRecoveryHandler создает обработчик, пишущий в переданный логгер
func NewRecoveryHandler(log logrus.FieldLogger) *RecoveryHandler {
	return &RecoveryHandler{log: func() logrus.FieldLogger { return log }}
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic
func (rh *RecoveryHandler) SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				rh.log().WithFields(logrus.Fields{
					"goroutine": name,
					"panic":     r,
					"stack":     string(debug.Stack()),
				}).Error("panic в горутине")
			}
		}()
		fn(ctx)
	}()
}

// SafeGo запускает горутину без контекста
func (rh *RecoveryHandler) SafeGo(name string, fn func()) {
	rh.SafeGoWithContext(context.Background(), name, func(context.Context) { fn() })
}

// DefaultRecoveryHandler пишет в глобальный logger.Log. Логгер берётся при
// каждом panic, потому что logger.Init может его заменить.
var DefaultRecoveryHandler = &RecoveryHandler{log: func() logrus.FieldLogger { return logger.Log }}

// SafeGo - упрощенная функция для запуска безопасной горутины
func SafeGo(name string, fn func()) {
	DefaultRecoveryHandler.SafeGo(name, fn)
}

// SafeGoWithContext - упрощенная функция для запуска безопасной горутины с контекстом
func SafeGoWithContext(ctx context.Context, name string, fn func(context.Context)) {
	DefaultRecoveryHandler.SafeGoWithContext(ctx, name, fn)
}

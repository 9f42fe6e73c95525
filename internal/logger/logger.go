package logger

import (
	"github.com/sirupsen/logrus"
)

// Log глобальный логгер. До вызова Init пишет в stderr с настройками по умолчанию,
// поэтому пакеты могут логировать и в тестах.
var Log = logrus.New()

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// JSON для production, text включается отдельно через SetTextFormatter
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Component логгер с полем component, чтобы фильтровать подсистемы.
func Component(name string) *logrus.Entry {
	return Log.WithField("component", name)
}

package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Log доступен до вызова Setup, чтобы пакеты и тесты могли логировать без настройки.
var Log = logrus.New()

// Setup пересоздаёт общий логгер. В production пишет JSON, иначе текст с полным временем.
// Неизвестный уровень заменяется на info.
func Setup(level string, production bool) {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if production {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	Log = l
}

// Report возвращает запись с полями отчёта, общими для логов переходов.
func Report(reportID, status string) *logrus.Entry {
	return Log.WithFields(logrus.Fields{
		"report_id": reportID,
		"status":    status,
	})
}

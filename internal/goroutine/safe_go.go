package goroutine

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

// Reporter получает имя задачи, значение panic и стек.
type Reporter func(task string, recovered any, stack []byte)

// RecoveryHandler не даёт panic в фоновой задаче уронить процесс.
type RecoveryHandler struct {
	report Reporter
}

func NewRecoveryHandler(report Reporter) *RecoveryHandler {
	return &RecoveryHandler{report: report}
}

// Go запускает горутину. Panic логируется и не распространяется.
func (rh *RecoveryHandler) Go(task string, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				rh.report(task, r, debug.Stack())
			}
		}()
		fn()
	}()
}

// Guard выполняет fn синхронно и превращает panic в ошибку.
func (rh *RecoveryHandler) Guard(task string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			rh.report(task, r, debug.Stack())
			err = fmt.Errorf("%s: panic: %v", task, r)
		}
	}()
	return fn()
}

func logPanic(task string, recovered any, stack []byte) {
	logger.Log.WithFields(logrus.Fields{
		"task":  task,
		"panic": fmt.Sprint(recovered),
		"stack": string(stack),
	}).Error("panic в фоновой задаче")
}

var defaultHandler = NewRecoveryHandler(logPanic)

// SafeGo запускает именованную горутину с восстановлением после panic.
func SafeGo(task string, fn func()) {
	defaultHandler.Go(task, fn)
}

func Guard(task string, fn func() error) error {
	return defaultHandler.Guard(task, fn)
}

package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

type decideFunc func(*entity.FoodReport) (*entity.Transition, error)

// transitioner применяет переход через условное обновление строки и
// сверяет результат, если ответ хранилища потерян.
type transitioner struct {
	reports repository.FoodReportRepository
	opts    Options
}

type outcome struct {
	report *entity.FoodReport
	// changed=true только если строку изменил именно этот вызов.
	changed bool
}

func (t transitioner) run(ctx context.Context, reportID uuid.UUID, action string, decide decideFunc) (outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	current, err := t.reports.GetByID(ctx, reportID)
	if err != nil {
		return outcome{}, err
	}

	plan, err := decide(current)
	if err != nil {
		return outcome{}, err
	}
	if plan == nil {
		return outcome{report: current}, nil
	}

	at := t.opts.Clock()
	applied, err := t.reports.ConditionalUpdate(ctx, reportID, *plan, at)
	if err != nil {
		if apperror.IsTransport(err) || ctx.Err() != nil {
			return t.reconcile(reportID, action, *plan, decide, err)
		}
		return outcome{}, err
	}

	if !applied {
		// Строка изменилась между чтением и записью: повторно оцениваем её актуальное состояние.
		fresh, err := t.reports.GetByID(ctx, reportID)
		if err != nil {
			return outcome{}, err
		}
		next, err := decide(fresh)
		if err != nil {
			return outcome{}, err
		}
		if next == nil {
			return outcome{report: fresh}, nil
		}
		return outcome{}, apperror.New(apperror.ErrCodeInvalidTransition, "состояние отчёта изменилось, обновите данные")
	}

	plan.Apply(current, at)
	if updated, err := t.reports.GetByID(ctx, reportID); err == nil {
		current = updated
	}

	logger.Report(reportID.String(), string(current.Status)).
		WithField("action", action).
		Info("переход отчёта выполнен")

	return outcome{report: current, changed: true}, nil
}

// reconcile перечитывает строку в новом контексте. Если она уже в целевом состоянии,
// операция считается успешной. Если переход из нового состояния невозможен, возвращается
// его ошибка (например, заявку занял другой курьер). Иначе исход неизвестен и
// возвращается повторяемая ошибка транспорта.
func (t transitioner) reconcile(reportID uuid.UUID, action string, plan entity.Transition, decide decideFunc, cause error) (outcome, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.opts.Timeout)
	defer cancel()

	log := logger.Log.WithFields(logrus.Fields{
		"report_id": reportID,
		"action":    action,
	})

	fresh, err := t.reports.GetByID(ctx, reportID)
	if err == nil && plan.Reached(fresh) {
		log.WithError(cause).Warn("ответ хранилища потерян, но переход уже применён")
		return outcome{report: fresh}, nil
	}
	if err == nil {
		if _, decideErr := decide(fresh); decideErr != nil {
			log.WithError(cause).Warn("ответ хранилища потерян, переход больше невозможен")
			return outcome{}, decideErr
		}
	} else {
		log.WithError(err).Warn("не удалось сверить состояние отчёта")
	}

	var appErr *apperror.AppError
	if errors.As(cause, &appErr) && appErr.Code == apperror.ErrCodeTransport {
		return outcome{}, appErr
	}
	return outcome{}, apperror.Wrap(cause, apperror.ErrCodeTransport, "результат операции неизвестен, повторите запрос")
}

package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

type Publisher interface {
	Publish(change event.Change)
}

// PublishingReportRepository публикует события INSERT/UPDATE после успешной записи.
// Используется там, где хранилище само не умеет присылать изменения (SQLite).
type PublishingReportRepository struct {
	repository.FoodReportRepository
	publisher Publisher
}

func NewPublishingReportRepository(inner repository.FoodReportRepository, publisher Publisher) *PublishingReportRepository {
	return &PublishingReportRepository{FoodReportRepository: inner, publisher: publisher}
}

func (r *PublishingReportRepository) Insert(ctx context.Context, report *entity.FoodReport) error {
	if err := r.FoodReportRepository.Insert(ctx, report); err != nil {
		return err
	}

	stored, err := r.FoodReportRepository.GetByID(ctx, report.ID)
	if err != nil {
		logger.Report(report.ID.String(), string(report.Status)).WithError(err).
			Warn("не удалось перечитать созданный отчёт, событие собрано из входных данных")
		stored = report
	}
	r.publisher.Publish(event.NewReportChange(event.OpInsert, nil, stored))
	return nil
}

func (r *PublishingReportRepository) ConditionalUpdate(ctx context.Context, id uuid.UUID, t entity.Transition, at time.Time) (bool, error) {
	old, err := r.FoodReportRepository.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	applied, err := r.FoodReportRepository.ConditionalUpdate(ctx, id, t, at)
	if err != nil || !applied {
		return applied, err
	}

	updated, err := r.FoodReportRepository.GetByID(ctx, id)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"report_id": id,
			"status":    t.To,
		}).WithError(err).Warn("не удалось перечитать отчёт после перехода")
		copied := *old
		t.Apply(&copied, at)
		updated = &copied
	}
	r.publisher.Publish(event.NewReportChange(event.OpUpdate, old, updated))
	return true, nil
}

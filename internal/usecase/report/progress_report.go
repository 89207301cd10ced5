package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

type MarkPickedUseCase struct {
	tr transitioner
}

func NewMarkPickedUseCase(reports repository.FoodReportRepository, opts Options) *MarkPickedUseCase {
	return &MarkPickedUseCase{tr: transitioner{reports: reports, opts: opts.withDefaults()}}
}

func (uc *MarkPickedUseCase) Execute(ctx context.Context, reportID, agentID uuid.UUID) (*entity.FoodReport, error) {
	res, err := uc.tr.run(ctx, reportID, "picked", func(r *entity.FoodReport) (*entity.Transition, error) {
		return r.MarkPicked(agentID)
	})
	if err != nil {
		return nil, err
	}
	return res.report, nil
}

type MarkDeliveredUseCase struct {
	tr     transitioner
	agents repository.AgentRepository
	hotels repository.HotelRepository
}

func NewMarkDeliveredUseCase(
	reports repository.FoodReportRepository,
	agents repository.AgentRepository,
	hotels repository.HotelRepository,
	opts Options,
) *MarkDeliveredUseCase {
	return &MarkDeliveredUseCase{
		tr:     transitioner{reports: reports, opts: opts.withDefaults()},
		agents: agents,
		hotels: hotels,
	}
}

// Execute завершает доставку и обновляет счётчики курьера и отеля.
// Ошибки счётчиков не отменяют доставку, они только логируются.
func (uc *MarkDeliveredUseCase) Execute(ctx context.Context, reportID, agentID uuid.UUID) (*entity.FoodReport, error) {
	res, err := uc.tr.run(ctx, reportID, "delivered", func(r *entity.FoodReport) (*entity.Transition, error) {
		return r.MarkDelivered(agentID)
	})
	if err != nil {
		return nil, err
	}

	if res.changed {
		uc.updateCounters(ctx, res.report)
	}
	return res.report, nil
}

func (uc *MarkDeliveredUseCase) updateCounters(ctx context.Context, r *entity.FoodReport) {
	log := logger.Log.WithFields(logrus.Fields{"report_id": r.ID})

	if r.AssignedAgentID != nil {
		if err := uc.agents.IncrementDeliveries(ctx, *r.AssignedAgentID); err != nil {
			log.WithError(err).Warn("не удалось обновить счётчик доставок курьера")
		}
	}
	if err := uc.hotels.AddFoodSaved(ctx, r.HotelID, r.Quantity); err != nil {
		log.WithError(err).Warn("не удалось обновить счётчик спасённых порций отеля")
	}
}

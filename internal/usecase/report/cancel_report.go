package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
)

type CancelReportUseCase struct {
	tr transitioner
}

func NewCancelReportUseCase(reports repository.FoodReportRepository, opts Options) *CancelReportUseCase {
	return &CancelReportUseCase{tr: transitioner{reports: reports, opts: opts.withDefaults()}}
}

func (uc *CancelReportUseCase) Execute(ctx context.Context, reportID uuid.UUID, actor entity.Actor) (*entity.FoodReport, error) {
	res, err := uc.tr.run(ctx, reportID, "cancel", func(r *entity.FoodReport) (*entity.Transition, error) {
		return r.Cancel(actor)
	})
	if err != nil {
		return nil, err
	}
	return res.report, nil
}

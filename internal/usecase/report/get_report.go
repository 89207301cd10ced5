package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
)

type GetReportUseCase struct {
	reports repository.FoodReportRepository
}

func NewGetReportUseCase(reports repository.FoodReportRepository) *GetReportUseCase {
	return &GetReportUseCase{reports: reports}
}

func (uc *GetReportUseCase) Execute(ctx context.Context, reportID uuid.UUID) (*entity.FoodReport, error) {
	return uc.reports.GetByID(ctx, reportID)
}

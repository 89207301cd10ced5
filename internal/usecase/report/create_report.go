package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
)

type CreateReportInput struct {
	HotelID             uuid.UUID
	FoodName            string
	Category            string
	Quantity            int
	PickupAvailableFrom *time.Time
	ExpiryAt            *time.Time
	Description         *string
	ImageURL            *string
}

type CreateReportUseCase struct {
	reports repository.FoodReportRepository
	hotels  repository.HotelRepository
	opts    Options
}

func NewCreateReportUseCase(reports repository.FoodReportRepository, hotels repository.HotelRepository, opts Options) *CreateReportUseCase {
	return &CreateReportUseCase{reports: reports, hotels: hotels, opts: opts.withDefaults()}
}

func (uc *CreateReportUseCase) Execute(ctx context.Context, input CreateReportInput) (*entity.FoodReport, error) {
	hotel, err := uc.hotels.GetByID(ctx, input.HotelID)
	if err != nil {
		return nil, err
	}

	report, err := entity.NewFoodReport(hotel, entity.NewFoodReportParams{
		FoodName:            input.FoodName,
		Category:            input.Category,
		Quantity:            input.Quantity,
		PickupAvailableFrom: input.PickupAvailableFrom,
		ExpiryAt:            input.ExpiryAt,
		Description:         input.Description,
		ImageURL:            input.ImageURL,
	}, uc.opts.Clock())
	if err != nil {
		return nil, err
	}

	if err := uc.reports.Insert(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

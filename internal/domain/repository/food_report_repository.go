package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

type FoodReportRepository interface {
	Insert(ctx context.Context, report *entity.FoodReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.FoodReport, error)
	ListAvailable(ctx context.Context, filter AvailableFilter) ([]*entity.FoodReport, error)
	ListForAgent(ctx context.Context, agentID uuid.UUID, statuses []valueobject.ReportStatus) ([]*entity.FoodReport, error)
	ListForHotel(ctx context.Context, hotelID uuid.UUID, statuses []valueobject.ReportStatus) ([]*entity.FoodReport, error)

	// ConditionalUpdate атомарно применяет переход, только если строка находится
	// в ожидаемом состоянии. false без ошибки означает, что ни одна строка не изменилась.
	ConditionalUpdate(ctx context.Context, id uuid.UUID, t entity.Transition, at time.Time) (bool, error)
}

type AvailableFilter struct {
	Zone     string
	Category valueobject.FoodCategory
	// ExpiredBefore оставляет только отчёты с истёкшим сроком годности.
	ExpiredBefore *time.Time
	Limit         int
}

package report

import (
	"context"
	"sort"
	"time"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/scoring"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

const defaultAvailableLimit = 100

// RankedReport - отчёт с вычисленными при чтении срочностью и приоритетом.
type RankedReport struct {
	Report     *entity.FoodReport
	Urgency    valueobject.Urgency
	Priority   float64
	DistanceKm *float64
}

type ListAvailableInput struct {
	Zone     string
	Category valueobject.FoodCategory
	Origin   *valueobject.GeoPoint
	Limit    int
}

type ListAvailableUseCase struct {
	reports  repository.FoodReportRepository
	distance scoring.DistanceStrategy
	opts     Options
}

func NewListAvailableUseCase(reports repository.FoodReportRepository, distance scoring.DistanceStrategy, opts Options) *ListAvailableUseCase {
	if distance == nil {
		distance = scoring.Haversine{}
	}
	return &ListAvailableUseCase{reports: reports, distance: distance, opts: opts.withDefaults()}
}

// Execute возвращает свободные непросроченные отчёты, отсортированные по убыванию приоритета.
func (uc *ListAvailableUseCase) Execute(ctx context.Context, input ListAvailableInput) ([]RankedReport, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultAvailableLimit
	}

	reports, err := uc.reports.ListAvailable(ctx, repository.AvailableFilter{
		Zone:     input.Zone,
		Category: input.Category,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	now := uc.opts.Clock()
	ranked := make([]RankedReport, 0, len(reports))
	for _, r := range reports {
		if r.IsExpired(now) {
			continue
		}
		ranked = append(ranked, Rank(r, input.Origin, uc.distance, now))
	}

	SortByPriority(ranked)
	return ranked, nil
}

// Rank вычисляет срочность и приоритет отчёта относительно точки origin.
func Rank(r *entity.FoodReport, origin *valueobject.GeoPoint, distance scoring.DistanceStrategy, now time.Time) RankedReport {
	ranked := RankedReport{Report: r, Urgency: scoring.Urgency(r, now)}
	d, ok := scoring.Distance(distance, origin, r.PickupLocation)
	if ok {
		ranked.DistanceKm = &d
	}
	ranked.Priority = scoring.PriorityScore(r, d, now)
	return ranked
}

// SortByPriority: сначала высокий приоритет, при равенстве - более ранний срок годности.
func SortByPriority(ranked []RankedReport) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority > ranked[j].Priority
		}
		ei, ej := ranked[i].Report.ExpiryAt, ranked[j].Report.ExpiryAt
		switch {
		case ei != nil && ej != nil:
			return ei.Before(*ej)
		case ei != nil:
			return true
		default:
			return false
		}
	})
}

type ListMyReportsUseCase struct {
	reports repository.FoodReportRepository
}

func NewListMyReportsUseCase(reports repository.FoodReportRepository) *ListMyReportsUseCase {
	return &ListMyReportsUseCase{reports: reports}
}

// Execute возвращает отчёты, назначенные курьеру, или отчёты отеля.
// Для курьера без фильтра по статусу возвращаются только активные задачи.
func (uc *ListMyReportsUseCase) Execute(ctx context.Context, actor entity.Actor, statuses []valueobject.ReportStatus) ([]*entity.FoodReport, error) {
	switch actor.Role {
	case valueobject.RoleAgent:
		if len(statuses) == 0 {
			statuses = []valueobject.ReportStatus{valueobject.ReportStatusAssigned, valueobject.ReportStatusPicked}
		}
		return uc.reports.ListForAgent(ctx, actor.UserID, statuses)
	case valueobject.RoleHotel:
		return uc.reports.ListForHotel(ctx, actor.UserID, statuses)
	default:
		return nil, apperror.New(apperror.ErrCodeForbidden, "список доступен только отелям и курьерам")
	}
}

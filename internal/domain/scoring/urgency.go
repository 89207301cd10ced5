package scoring

import (
	"math"
	"time"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

const (
	UrgentWindow = 2 * time.Hour
	MediumWindow = 6 * time.Hour
)

// HoursUntilExpiry возвращает оставшееся время в часах. ok=false, если срок не задан.
func HoursUntilExpiry(r *entity.FoodReport, now time.Time) (hours float64, ok bool) {
	if r.ExpiryAt == nil {
		return 0, false
	}
	return r.ExpiryAt.Sub(now).Hours(), true
}

func Urgency(r *entity.FoodReport, now time.Time) valueobject.Urgency {
	if r.ExpiryAt == nil {
		return valueobject.UrgencyFlexible
	}
	remaining := r.ExpiryAt.Sub(now)
	switch {
	case remaining <= UrgentWindow:
		return valueobject.UrgencyUrgent
	case remaining <= MediumWindow:
		return valueobject.UrgencyMedium
	default:
		return valueobject.UrgencyFlexible
	}
}

// PriorityScore = 0.5*U + 0.3*P + 0.2*Q с округлением до одного знака.
// U растёт по мере приближения срока годности, P убывает с расстоянием,
// Q растёт с количеством порций. Каждая компонента ограничена 10 баллами.
func PriorityScore(r *entity.FoodReport, distanceKm float64, now time.Time) float64 {
	var u float64
	if hours, ok := HoursUntilExpiry(r, now); ok {
		u = clamp(10-hours, 0, 10)
	}
	p := clamp(10-distanceKm, 0, 10)
	q := clamp(float64(r.Quantity)/2, 0, 10)

	return round1(0.5*u + 0.3*p + 0.2*q)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

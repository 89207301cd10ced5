package scoring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/scoring"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func reportExpiringIn(d time.Duration, quantity int) *entity.FoodReport {
	expiry := now.Add(d)
	return &entity.FoodReport{Quantity: quantity, ExpiryAt: &expiry}
}

func TestUrgencyBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   time.Duration
		want valueobject.Urgency
	}{
		{"already expired", -time.Minute, valueobject.UrgencyUrgent},
		{"exactly two hours", 2 * time.Hour, valueobject.UrgencyUrgent},
		{"two hours and a second", 2*time.Hour + time.Second, valueobject.UrgencyMedium},
		{"three hours", 3 * time.Hour, valueobject.UrgencyMedium},
		{"exactly six hours", 6 * time.Hour, valueobject.UrgencyMedium},
		{"six hours and a second", 6*time.Hour + time.Second, valueobject.UrgencyFlexible},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, scoring.Urgency(reportExpiringIn(tc.in, 1), now))
		})
	}

	assert.Equal(t, valueobject.UrgencyFlexible, scoring.Urgency(&entity.FoodReport{}, now))
}

func TestPriorityScore(t *testing.T) {
	// U = 7, P = 8, Q = 5
	assert.InDelta(t, 6.9, scoring.PriorityScore(reportExpiringIn(3*time.Hour, 10), 2, now), 1e-9)

	// без срока годности U = 0, дальше 10 км P = 0, Q ограничено 10
	noExpiry := &entity.FoodReport{Quantity: 100}
	assert.InDelta(t, 2.0, scoring.PriorityScore(noExpiry, 25, now), 1e-9)

	// просроченный отчёт даёт не больше 10 баллов за срочность
	assert.InDelta(t, 8.0, scoring.PriorityScore(reportExpiringIn(-5*time.Hour, 0), 0, now), 1e-9)
}

func TestPriorityScoreIsRoundedToOneDecimal(t *testing.T) {
	score := scoring.PriorityScore(reportExpiringIn(90*time.Minute, 3), 1.234, now)
	assert.Equal(t, score, float64(int(score*10+0.5))/10)
}

func TestHaversine(t *testing.T) {
	moscow := valueobject.GeoPoint{Lat: 55.7558, Lng: 37.6173}
	spb := valueobject.GeoPoint{Lat: 59.9343, Lng: 30.3351}

	assert.InDelta(t, 634, scoring.Haversine{}.DistanceKm(moscow, spb), 5)
	assert.InDelta(t, 0, scoring.Haversine{}.DistanceKm(moscow, moscow), 1e-9)
}

func TestDistanceWithoutLocation(t *testing.T) {
	p := valueobject.GeoPoint{Lat: 1, Lng: 1}

	d, ok := scoring.Distance(scoring.Haversine{}, nil, &p)
	assert.False(t, ok)
	assert.Zero(t, d)

	_, ok = scoring.Distance(scoring.Haversine{}, &p, &p)
	assert.True(t, ok)
}

package scoring

import (
	"math"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

type DistanceStrategy interface {
	DistanceKm(from, to valueobject.GeoPoint) float64
}

const earthRadiusKm = 6371.0

// Haversine - расстояние по большому кругу.
type Haversine struct{}

func (Haversine) DistanceKm(from, to valueobject.GeoPoint) float64 {
	lat1, lat2 := radians(from.Lat), radians(to.Lat)
	dLat := lat2 - lat1
	dLng := radians(to.Lng - from.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance возвращает 0 и false, если одна из точек неизвестна.
func Distance(strategy DistanceStrategy, from, to *valueobject.GeoPoint) (float64, bool) {
	if strategy == nil || from == nil || to == nil {
		return 0, false
	}
	return strategy.DistanceKm(*from, *to), true
}

package valueobject

import (
	"fmt"

	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

type GeoPoint struct {
	Lat float64
	Lng float64
}

func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if lat < -90 || lat > 90 {
		return GeoPoint{}, apperror.New(apperror.ErrCodeValidation, "широта должна быть в диапазоне [-90, 90]")
	}
	if lng < -180 || lng > 180 {
		return GeoPoint{}, apperror.New(apperror.ErrCodeValidation, "долгота должна быть в диапазоне [-180, 180]")
	}
	return GeoPoint{Lat: lat, Lng: lng}, nil
}

// PointFromNullable возвращает nil, если хотя бы одна координата не задана.
func PointFromNullable(lat, lng *float64) *GeoPoint {
	if lat == nil || lng == nil {
		return nil
	}
	return &GeoPoint{Lat: *lat, Lng: *lng}
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.5f,%.5f", p.Lat, p.Lng)
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/validation"
)

type Hotel struct {
	ID        uuid.UUID
	Name      string
	Address   string
	City      string
	Zone      string
	Phone     string
	Latitude  *float64
	Longitude *float64
	FoodSaved int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type HotelProfileParams struct {
	Name      string
	Address   string
	City      string
	Zone      string
	Phone     string
	Latitude  *float64
	Longitude *float64
}

// NewHotel создаёт профиль отеля. Идентификатор совпадает с идентификатором пользователя.
func NewHotel(userID uuid.UUID, params HotelProfileParams, now time.Time) (*Hotel, error) {
	h := &Hotel{ID: userID, CreatedAt: now}
	if err := h.Update(params, now); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hotel) Update(params HotelProfileParams, now time.Time) error {
	name := validation.NormalizeText(params.Name)
	if err := validation.ValidateDisplayName(name); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	address := validation.NormalizeText(params.Address)
	if err := validation.ValidateLength("адрес", address, 1, validation.MaxAddressLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	zone := validation.NormalizeText(params.Zone)
	if err := validation.ValidateZone(zone); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	phone := validation.NormalizeText(params.Phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if (params.Latitude == nil) != (params.Longitude == nil) {
		return apperror.New(apperror.ErrCodeValidation, "координаты задаются парой широта/долгота")
	}
	if params.Latitude != nil {
		if _, err := valueobject.NewGeoPoint(*params.Latitude, *params.Longitude); err != nil {
			return err
		}
	}

	h.Name = name
	h.Address = address
	h.City = validation.NormalizeText(params.City)
	h.Zone = zone
	h.Phone = phone
	h.Latitude = params.Latitude
	h.Longitude = params.Longitude
	h.UpdatedAt = now
	return nil
}

func (h *Hotel) Location() *valueobject.GeoPoint {
	return valueobject.PointFromNullable(h.Latitude, h.Longitude)
}

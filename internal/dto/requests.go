package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/report"
)

// CreateReportRequest - отчёт отеля об излишках еды. Время в формате RFC3339.
type CreateReportRequest struct {
	FoodName            string     `json:"food_name" binding:"required"`
	Category            string     `json:"category" binding:"required,food_category"`
	Quantity            int        `json:"quantity" binding:"required,min=1"`
	PickupAvailableFrom *time.Time `json:"pickup_available_from" binding:"required"`
	ExpiryAt            *time.Time `json:"expiry_at"`
	Description         *string    `json:"description"`
	ImageURL            *string    `json:"image_url"`
}

func (r CreateReportRequest) ToInput(hotelID uuid.UUID) report.CreateReportInput {
	return report.CreateReportInput{
		HotelID:             hotelID,
		FoodName:            r.FoodName,
		Category:            r.Category,
		Quantity:            r.Quantity,
		PickupAvailableFrom: r.PickupAvailableFrom,
		ExpiryAt:            r.ExpiryAt,
		Description:         r.Description,
		ImageURL:            r.ImageURL,
	}
}

type HotelProfileRequest struct {
	Name      string   `json:"name" binding:"required"`
	Address   string   `json:"address" binding:"required"`
	City      string   `json:"city"`
	Zone      string   `json:"zone" binding:"required"`
	Phone     string   `json:"phone"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r HotelProfileRequest) ToParams() entity.HotelProfileParams {
	return entity.HotelProfileParams{
		Name:      r.Name,
		Address:   r.Address,
		City:      r.City,
		Zone:      r.Zone,
		Phone:     r.Phone,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}

type AgentProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Phone       string `json:"phone"`
	Zone        string `json:"zone" binding:"required"`
	Active      *bool  `json:"active"`
}

func (r AgentProfileRequest) ToParams() entity.AgentProfileParams {
	return entity.AgentProfileParams{
		DisplayName: r.DisplayName,
		Phone:       r.Phone,
		Zone:        r.Zone,
		Active:      r.Active,
	}
}

type NeedyPersonRequest struct {
	Name         string  `json:"name" binding:"required"`
	Phone        string  `json:"phone"`
	Address      string  `json:"address"`
	Zone         string  `json:"zone" binding:"required"`
	FamilySize   int     `json:"family_size" binding:"min=0"`
	DietaryNotes *string `json:"dietary_notes"`
}

func (r NeedyPersonRequest) ToParams() entity.NeedyPersonParams {
	return entity.NeedyPersonParams{
		Name:         r.Name,
		Phone:        r.Phone,
		Address:      r.Address,
		Zone:         r.Zone,
		FamilySize:   r.FamilySize,
		DietaryNotes: r.DietaryNotes,
	}
}

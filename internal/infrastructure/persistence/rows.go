package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

// FoodReportRow - строка food_reports вместе со связанными полями.
// JSON-теги совпадают с именами колонок: так же выглядит событие из триггера PostgreSQL.
type FoodReportRow struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	HotelID             uuid.UUID  `db:"hotel_id" json:"hotel_id"`
	FoodName            string     `db:"food_name" json:"food_name"`
	Category            string     `db:"category" json:"category"`
	Quantity            int        `db:"quantity" json:"quantity"`
	PickupAvailableFrom time.Time  `db:"pickup_available_from" json:"pickup_available_from"`
	ExpiryAt            *time.Time `db:"expiry_at" json:"expiry_at"`
	Description         *string    `db:"description" json:"description"`
	ImageURL            *string    `db:"image_url" json:"image_url"`
	Status              string     `db:"status" json:"status"`
	AssignedAgentID     *uuid.UUID `db:"assigned_agent_id" json:"assigned_agent_id"`
	Zone                string     `db:"zone" json:"zone"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`

	HotelName      *string  `db:"hotel_name" json:"-"`
	HotelAddress   *string  `db:"hotel_address" json:"-"`
	HotelLatitude  *float64 `db:"hotel_latitude" json:"-"`
	HotelLongitude *float64 `db:"hotel_longitude" json:"-"`
	AgentName      *string  `db:"agent_name" json:"-"`
}

func (row FoodReportRow) ToEntity() *entity.FoodReport {
	r := &entity.FoodReport{
		ID:                  row.ID,
		HotelID:             row.HotelID,
		FoodName:            row.FoodName,
		Category:            valueobject.FoodCategory(row.Category),
		Quantity:            row.Quantity,
		PickupAvailableFrom: row.PickupAvailableFrom.UTC(),
		ExpiryAt:            utcPtr(row.ExpiryAt),
		Description:         row.Description,
		ImageURL:            row.ImageURL,
		Status:              valueobject.ReportStatus(row.Status),
		AssignedAgentID:     row.AssignedAgentID,
		Zone:                row.Zone,
		CreatedAt:           row.CreatedAt.UTC(),
		UpdatedAt:           row.UpdatedAt.UTC(),
		PickupLocation:      valueobject.PointFromNullable(row.HotelLatitude, row.HotelLongitude),
		AgentName:           row.AgentName,
	}
	if row.HotelName != nil {
		r.HotelName = *row.HotelName
	}
	if row.HotelAddress != nil {
		r.HotelAddress = *row.HotelAddress
	}
	return r
}

type hotelRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	City      string    `db:"city"`
	Zone      string    `db:"zone"`
	Phone     string    `db:"phone"`
	Latitude  *float64  `db:"latitude"`
	Longitude *float64  `db:"longitude"`
	FoodSaved int       `db:"food_saved"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row hotelRow) toEntity() *entity.Hotel {
	return &entity.Hotel{
		ID:        row.ID,
		Name:      row.Name,
		Address:   row.Address,
		City:      row.City,
		Zone:      row.Zone,
		Phone:     row.Phone,
		Latitude:  row.Latitude,
		Longitude: row.Longitude,
		FoodSaved: row.FoodSaved,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type agentRow struct {
	ID             uuid.UUID `db:"id"`
	DisplayName    string    `db:"display_name"`
	Phone          string    `db:"phone"`
	Zone           string    `db:"zone"`
	Active         bool      `db:"active"`
	Deliveries     int       `db:"deliveries"`
	Rating         float64   `db:"rating"`
	TelegramChatID *int64    `db:"telegram_chat_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (row agentRow) toEntity() *entity.DeliveryAgent {
	return &entity.DeliveryAgent{
		ID:             row.ID,
		DisplayName:    row.DisplayName,
		Phone:          row.Phone,
		Zone:           row.Zone,
		Active:         row.Active,
		Deliveries:     row.Deliveries,
		Rating:         row.Rating,
		TelegramChatID: row.TelegramChatID,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}

type needyPersonRow struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	Address      string    `db:"address"`
	Zone         string    `db:"zone"`
	FamilySize   int       `db:"family_size"`
	DietaryNotes *string   `db:"dietary_notes"`
	RegisteredBy uuid.UUID `db:"registered_by"`
	CreatedAt    time.Time `db:"created_at"`
}

func (row needyPersonRow) toEntity() *entity.NeedyPerson {
	return &entity.NeedyPerson{
		ID:           row.ID,
		Name:         row.Name,
		Phone:        row.Phone,
		Address:      row.Address,
		Zone:         row.Zone,
		FamilySize:   row.FamilySize,
		DietaryNotes: row.DietaryNotes,
		RegisteredBy: row.RegisteredBy,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

type preferenceRow struct {
	UserID        uuid.UUID `db:"user_id"`
	NewTasks      bool      `db:"new_tasks"`
	StatusUpdates bool      `db:"status_updates"`
	UrgentTasks   bool      `db:"urgent_tasks"`
	Sound         bool      `db:"sound"`
	Vibration     bool      `db:"vibration"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row preferenceRow) toEntity() *entity.NotificationPreference {
	return &entity.NotificationPreference{
		UserID:        row.UserID,
		NewTasks:      row.NewTasks,
		StatusUpdates: row.StatusUpdates,
		UrgentTasks:   row.UrgentTasks,
		Sound:         row.Sound,
		Vibration:     row.Vibration,
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/scoring"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/report"
)

type GeoPointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ReportResponse содержит срочность и приоритет, вычисленные в момент ответа.
type ReportResponse struct {
	ID                  uuid.UUID         `json:"id"`
	HotelID             uuid.UUID         `json:"hotel_id"`
	HotelName           string            `json:"hotel_name,omitempty"`
	HotelAddress        string            `json:"hotel_address,omitempty"`
	PickupLocation      *GeoPointResponse `json:"pickup_location,omitempty"`
	FoodName            string            `json:"food_name"`
	Category            string            `json:"category"`
	Quantity            int               `json:"quantity"`
	PickupAvailableFrom time.Time         `json:"pickup_available_from"`
	ExpiryAt            *time.Time        `json:"expiry_at"`
	Description         *string           `json:"description"`
	ImageURL            *string           `json:"image_url"`
	Status              string            `json:"status"`
	AssignedAgentID     *uuid.UUID        `json:"assigned_agent_id"`
	AgentName           *string           `json:"agent_name,omitempty"`
	Zone                string            `json:"zone"`
	Urgency             string            `json:"urgency"`
	PriorityScore       float64           `json:"priority_score"`
	DistanceKm          *float64          `json:"distance_km,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

func ToReportResponse(r *entity.FoodReport, now time.Time) ReportResponse {
	return FromRanked(report.Rank(r, nil, scoring.Haversine{}, now))
}

func FromRanked(ranked report.RankedReport) ReportResponse {
	r := ranked.Report
	resp := ReportResponse{
		ID:                  r.ID,
		HotelID:             r.HotelID,
		HotelName:           r.HotelName,
		HotelAddress:        r.HotelAddress,
		FoodName:            r.FoodName,
		Category:            string(r.Category),
		Quantity:            r.Quantity,
		PickupAvailableFrom: r.PickupAvailableFrom,
		ExpiryAt:            r.ExpiryAt,
		Description:         r.Description,
		ImageURL:            r.ImageURL,
		Status:              string(r.Status),
		AssignedAgentID:     r.AssignedAgentID,
		AgentName:           r.AgentName,
		Zone:                r.Zone,
		Urgency:             string(ranked.Urgency),
		PriorityScore:       ranked.Priority,
		DistanceKm:          ranked.DistanceKm,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if r.PickupLocation != nil {
		resp.PickupLocation = &GeoPointResponse{Lat: r.PickupLocation.Lat, Lng: r.PickupLocation.Lng}
	}
	return resp
}

func ToReportResponses(reports []*entity.FoodReport, now time.Time) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, ToReportResponse(r, now))
	}
	return out
}

func FromRankedList(ranked []report.RankedReport) []ReportResponse {
	out := make([]ReportResponse, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, FromRanked(r))
	}
	return out
}

// ClaimConflictData возвращается вместе с ошибкой CLAIM_CONFLICT: свежий список свободных заявок.
type ClaimConflictData struct {
	ReportID  uuid.UUID        `json:"report_id"`
	Available []ReportResponse `json:"available"`
}

// BoardResponse - снимок доски задач, отправляемый по WebSocket.
type BoardResponse struct {
	Available []ReportResponse `json:"available"`
	Mine      []ReportResponse `json:"mine"`
}

type HotelResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Zone      string    `json:"zone"`
	Phone     string    `json:"phone"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	FoodSaved int       `json:"food_saved"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToHotelResponse(h *entity.Hotel) HotelResponse {
	return HotelResponse{
		ID:        h.ID,
		Name:      h.Name,
		Address:   h.Address,
		City:      h.City,
		Zone:      h.Zone,
		Phone:     h.Phone,
		Latitude:  h.Latitude,
		Longitude: h.Longitude,
		FoodSaved: h.FoodSaved,
		UpdatedAt: h.UpdatedAt,
	}
}

type AgentResponse struct {
	ID             uuid.UUID `json:"id"`
	DisplayName    string    `json:"display_name"`
	Phone          string    `json:"phone"`
	Zone           string    `json:"zone"`
	Active         bool      `json:"active"`
	Deliveries     int       `json:"deliveries"`
	Rating         float64   `json:"rating"`
	TelegramLinked bool      `json:"telegram_linked"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func ToAgentResponse(a *entity.DeliveryAgent) AgentResponse {
	return AgentResponse{
		ID:             a.ID,
		DisplayName:    a.DisplayName,
		Phone:          a.Phone,
		Zone:           a.Zone,
		Active:         a.Active,
		Deliveries:     a.Deliveries,
		Rating:         a.Rating,
		TelegramLinked: a.TelegramChatID != nil,
		UpdatedAt:      a.UpdatedAt,
	}
}

type NeedyPersonResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Zone         string    `json:"zone"`
	FamilySize   int       `json:"family_size"`
	DietaryNotes *string   `json:"dietary_notes"`
	RegisteredBy uuid.UUID `json:"registered_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToNeedyPersonResponses(persons []*entity.NeedyPerson) []NeedyPersonResponse {
	out := make([]NeedyPersonResponse, 0, len(persons))
	for _, p := range persons {
		out = append(out, ToNeedyPersonResponse(p))
	}
	return out
}

func ToNeedyPersonResponse(p *entity.NeedyPerson) NeedyPersonResponse {
	return NeedyPersonResponse{
		ID:           p.ID,
		Name:         p.Name,
		Phone:        p.Phone,
		Address:      p.Address,
		Zone:         p.Zone,
		FamilySize:   p.FamilySize,
		DietaryNotes: p.DietaryNotes,
		RegisteredBy: p.RegisteredBy,
		CreatedAt:    p.CreatedAt,
	}
}

type PreferencesResponse struct {
	NewTasks      bool `json:"new_tasks"`
	StatusUpdates bool `json:"status_updates"`
	UrgentTasks   bool `json:"urgent_tasks"`
	Sound         bool `json:"sound"`
	Vibration     bool `json:"vibration"`
}

func ToPreferencesResponse(p *entity.NotificationPreference) PreferencesResponse {
	return PreferencesResponse{
		NewTasks:      p.NewTasks,
		StatusUpdates: p.StatusUpdates,
		UrgentTasks:   p.UrgentTasks,
		Sound:         p.Sound,
		Vibration:     p.Vibration,
	}
}

type PhotoResponse struct {
	URL         string `json:"url"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

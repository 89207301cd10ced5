package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

// Kind - тип уведомления, он же поле "type" в сообщении WebSocket.
type Kind string

const (
	KindNewTask     Kind = "task.new"
	KindTaskStatus  Kind = "task.status"
	KindTaskRemoved Kind = "task.removed"
)

// Effects управляют только звуком и вибрацией, но не самим фактом уведомления.
type Effects struct {
	Sound     bool `json:"sound"`
	Vibration bool `json:"vibration"`
}

type Alert struct {
	Kind           Kind                     `json:"kind"`
	EventID        string                   `json:"event_id"`
	ReportID       uuid.UUID                `json:"report_id"`
	Status         valueobject.ReportStatus `json:"status"`
	PreviousStatus valueobject.ReportStatus `json:"previous_status,omitempty"`
	Urgency        valueobject.Urgency      `json:"urgency"`
	Title          string                   `json:"title"`
	Message        string                   `json:"message"`
	FoodName       string                   `json:"food_name"`
	Quantity       int                      `json:"quantity"`
	HotelName      string                   `json:"hotel_name,omitempty"`
	Zone           string                   `json:"zone,omitempty"`
	ExpiryAt       *time.Time               `json:"expiry_at,omitempty"`
	Effects        Effects                  `json:"effects"`
	At             time.Time                `json:"at"`
}

// Delivery - уведомление для конкретного получателя.
type Delivery struct {
	UserID uuid.UUID
	Role   valueobject.Role
	Alert  Alert
}

var statusLabels = map[valueobject.ReportStatus]string{
	valueobject.ReportStatusNew:       "ожидает курьера",
	valueobject.ReportStatusAssigned:  "назначена курьеру",
	valueobject.ReportStatusPicked:    "забрана из отеля",
	valueobject.ReportStatusDelivered: "доставлена",
	valueobject.ReportStatusCancelled: "отменена",
}

func StatusLabel(s valueobject.ReportStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func baseAlert(kind Kind, eventID string, r *entity.FoodReport, urgency valueobject.Urgency, at time.Time) Alert {
	return Alert{
		Kind:      kind,
		EventID:   eventID,
		ReportID:  r.ID,
		Status:    r.Status,
		Urgency:   urgency,
		FoodName:  r.FoodName,
		Quantity:  r.Quantity,
		HotelName: r.HotelName,
		Zone:      r.Zone,
		ExpiryAt:  r.ExpiryAt,
		At:        at,
	}
}

func newTaskText(r *entity.FoodReport, urgency valueobject.Urgency) (string, string) {
	title := "Новая заявка"
	if urgency == valueobject.UrgencyUrgent {
		title = "Срочная заявка"
	}
	source := r.HotelName
	if source == "" {
		source = "Отель"
	}
	return title, fmt.Sprintf("%s: %s, порций: %d", source, r.FoodName, r.Quantity)
}

func statusText(old, updated *entity.FoodReport) (string, string) {
	return "Статус заявки изменён",
		fmt.Sprintf("%s: %s → %s", updated.FoodName, StatusLabel(old.Status), StatusLabel(updated.Status))
}

func removedText(r *entity.FoodReport) (string, string) {
	return "Заявка больше недоступна", fmt.Sprintf("%s: %s", r.FoodName, StatusLabel(r.Status))
}

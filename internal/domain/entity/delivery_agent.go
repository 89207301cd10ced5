package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/validation"
)

type DeliveryAgent struct {
	ID             uuid.UUID
	DisplayName    string
	Phone          string
	Zone           string
	Active         bool
	Deliveries     int
	Rating         float64
	TelegramChatID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type AgentProfileParams struct {
	DisplayName string
	Phone       string
	Zone        string
	Active      *bool
}

// NewDeliveryAgent создаёт профиль курьера. Новый курьер активен, если не указано иное.
func NewDeliveryAgent(userID uuid.UUID, params AgentProfileParams, now time.Time) (*DeliveryAgent, error) {
	a := &DeliveryAgent{ID: userID, Active: true, CreatedAt: now}
	if err := a.Update(params, now); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *DeliveryAgent) Update(params AgentProfileParams, now time.Time) error {
	name := validation.NormalizeText(params.DisplayName)
	if err := validation.ValidateDisplayName(name); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	phone := validation.NormalizeText(params.Phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	zone := validation.NormalizeText(params.Zone)
	if err := validation.ValidateZone(zone); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	a.DisplayName = name
	a.Phone = phone
	a.Zone = zone
	if params.Active != nil {
		a.Active = *params.Active
	}
	a.UpdatedAt = now
	return nil
}

// ServesZone: пустая зона у курьера или у отчёта означает отсутствие ограничения.
func (a *DeliveryAgent) ServesZone(zone string) bool {
	return a.Zone == "" || zone == "" || a.Zone == zone
}

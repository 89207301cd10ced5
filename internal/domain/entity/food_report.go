package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/validation"
)

type FoodReport struct {
	ID                  uuid.UUID
	HotelID             uuid.UUID
	FoodName            string
	Category            valueobject.FoodCategory
	Quantity            int
	PickupAvailableFrom time.Time
	ExpiryAt            *time.Time
	Description         *string
	ImageURL            *string
	Status              valueobject.ReportStatus
	AssignedAgentID     *uuid.UUID
	Zone                string
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// Заполняются при чтении из связанных таблиц.
	HotelName      string
	HotelAddress   string
	PickupLocation *valueobject.GeoPoint
	AgentName      *string
}

type NewFoodReportParams struct {
	FoodName            string
	Category            string
	Quantity            int
	PickupAvailableFrom *time.Time
	ExpiryAt            *time.Time
	Description         *string
	ImageURL            *string
}

func NewFoodReport(hotel *Hotel, params NewFoodReportParams, now time.Time) (*FoodReport, error) {
	name := validation.NormalizeText(params.FoodName)
	if err := validation.ValidateFoodName(name); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	category, err := valueobject.NewFoodCategory(params.Category)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateQuantity(params.Quantity); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if params.PickupAvailableFrom == nil || params.PickupAvailableFrom.IsZero() {
		return nil, apperror.New(apperror.ErrCodeValidation, "время начала выдачи обязательно")
	}
	pickup := params.PickupAvailableFrom.UTC()

	var expiry *time.Time
	if params.ExpiryAt != nil {
		e := params.ExpiryAt.UTC()
		if !e.After(pickup) {
			return nil, apperror.New(apperror.ErrCodeValidation, "срок годности должен быть позже начала выдачи")
		}
		if !e.After(now) {
			return nil, apperror.New(apperror.ErrCodeValidation, "срок годности уже истёк")
		}
		expiry = &e
	}

	description := validation.NormalizeOptional(params.Description)
	if err := validation.ValidateDescription(description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	imageURL := validation.NormalizeOptional(params.ImageURL)
	if err := validation.ValidateImageURL(imageURL); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	return &FoodReport{
		ID:                  uuid.New(),
		HotelID:             hotel.ID,
		FoodName:            name,
		Category:            category,
		Quantity:            params.Quantity,
		PickupAvailableFrom: pickup,
		ExpiryAt:            expiry,
		Description:         description,
		ImageURL:            imageURL,
		Status:              valueobject.ReportStatusNew,
		Zone:                hotel.Zone,
		CreatedAt:           now,
		UpdatedAt:           now,
		HotelName:           hotel.Name,
		HotelAddress:        hotel.Address,
		PickupLocation:      hotel.Location(),
	}, nil
}

func (r *FoodReport) IsAssignedTo(agentID uuid.UUID) bool {
	return r.AssignedAgentID != nil && *r.AssignedAgentID == agentID
}

func (r *FoodReport) IsOwnedBy(hotelID uuid.UUID) bool {
	return r.HotelID == hotelID
}

func (r *FoodReport) IsAvailable() bool {
	return r.Status == valueobject.ReportStatusNew && r.AssignedAgentID == nil
}

func (r *FoodReport) IsExpired(now time.Time) bool {
	return r.ExpiryAt != nil && !r.ExpiryAt.After(now)
}

// Consistent проверяет инвариант: исполнитель задан тогда и только тогда,
// когда статус assigned, picked или delivered.
func (r *FoodReport) Consistent() bool {
	return (r.AssignedAgentID != nil) == r.Status.HoldsAgent()
}

// Claim готовит переход new -> assigned. Возвращает nil без ошибки, если отчёт
// уже назначен этому же курьеру.
func (r *FoodReport) Claim(agentID uuid.UUID) (*Transition, error) {
	switch {
	case r.IsAvailable():
		return &Transition{
			From:       []valueobject.ReportStatus{valueobject.ReportStatusNew},
			Unassigned: true,
			To:         valueobject.ReportStatusAssigned,
			Agent:      &agentID,
		}, nil
	case r.Status.IsTerminal():
		return nil, invalidTransition(r.Status, "взять в работу")
	case r.Status == valueobject.ReportStatusAssigned && r.IsAssignedTo(agentID):
		return nil, nil
	case r.IsAssignedTo(agentID):
		return nil, invalidTransition(r.Status, "взять в работу")
	default:
		return nil, apperror.ErrClaimConflict
	}
}

// MarkPicked готовит переход assigned -> picked для назначенного курьера.
func (r *FoodReport) MarkPicked(agentID uuid.UUID) (*Transition, error) {
	return r.advance(agentID, valueobject.ReportStatusAssigned, valueobject.ReportStatusPicked, "отметить как забранный")
}

// MarkDelivered готовит переход picked -> delivered для назначенного курьера.
func (r *FoodReport) MarkDelivered(agentID uuid.UUID) (*Transition, error) {
	return r.advance(agentID, valueobject.ReportStatusPicked, valueobject.ReportStatusDelivered, "отметить как доставленный")
}

// advance: чужой курьер получает INVALID_TRANSITION при любом статусе отчёта.
func (r *FoodReport) advance(agentID uuid.UUID, from, to valueobject.ReportStatus, action string) (*Transition, error) {
	if r.Status == to && r.IsAssignedTo(agentID) {
		return nil, nil
	}
	if r.Status != from {
		return nil, invalidTransition(r.Status, action)
	}
	if !r.IsAssignedTo(agentID) {
		return nil, apperror.ErrNotAssignedAgent
	}
	return &Transition{
		From:   []valueobject.ReportStatus{from},
		Holder: &agentID,
		To:     to,
		Agent:  &agentID,
	}, nil
}

// Cancel готовит отмену из new или assigned. Назначенный курьер снимается.
// Повторная отмена уже отменённого отчёта ничего не меняет.
func (r *FoodReport) Cancel(actor Actor) (*Transition, error) {
	if !actor.CanManage(r) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отменить отчёт может только отель-владелец или администратор")
	}
	if r.Status == valueobject.ReportStatusCancelled {
		return nil, nil
	}
	if !r.Status.CanTransitionTo(valueobject.ReportStatusCancelled) {
		return nil, invalidTransition(r.Status, "отменить")
	}
	return &Transition{
		From: []valueobject.ReportStatus{valueobject.ReportStatusNew, valueobject.ReportStatusAssigned},
		To:   valueobject.ReportStatusCancelled,
	}, nil
}

// Expire готовит отмену просроченного отчёта, который никто не взял.
func (r *FoodReport) Expire(now time.Time) (*Transition, error) {
	if !r.IsAvailable() {
		return nil, invalidTransition(r.Status, "списать как просроченный")
	}
	if !r.IsExpired(now) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition, "срок годности ещё не истёк")
	}
	return &Transition{
		From:       []valueobject.ReportStatus{valueobject.ReportStatusNew},
		Unassigned: true,
		To:         valueobject.ReportStatusCancelled,
	}, nil
}

func invalidTransition(status valueobject.ReportStatus, action string) *apperror.AppError {
	return apperror.New(apperror.ErrCodeInvalidTransition, "нельзя "+action+" отчёт в статусе "+string(status))
}

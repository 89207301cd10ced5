package valueobject

import "github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"

type ReportStatus string

const (
	ReportStatusNew       ReportStatus = "new"
	ReportStatusAssigned  ReportStatus = "assigned"
	ReportStatusPicked    ReportStatus = "picked"
	ReportStatusDelivered ReportStatus = "delivered"
	ReportStatusCancelled ReportStatus = "cancelled"
)

var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusNew:       {ReportStatusAssigned, ReportStatusCancelled},
	ReportStatusAssigned:  {ReportStatusPicked, ReportStatusCancelled},
	ReportStatusPicked:    {ReportStatusDelivered},
	ReportStatusDelivered: {},
	ReportStatusCancelled: {},
}

func (s ReportStatus) IsValid() bool {
	_, ok := reportTransitions[s]
	return ok
}

func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusDelivered || s == ReportStatusCancelled
}

// HoldsAgent сообщает, должен ли отчёт в этом статусе иметь назначенного курьера.
func (s ReportStatus) HoldsAgent() bool {
	switch s {
	case ReportStatusAssigned, ReportStatusPicked, ReportStatusDelivered:
		return true
	}
	return false
}

func (s ReportStatus) CanTransitionTo(newStatus ReportStatus) bool {
	for _, status := range reportTransitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewReportStatus(status string) (ReportStatus, error) {
	s := ReportStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус отчёта")
	}
	return s, nil
}

// ParseReportStatuses разбирает список статусов, пустые значения пропускаются.
func ParseReportStatuses(values []string) ([]ReportStatus, error) {
	statuses := make([]ReportStatus, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		s, err := NewReportStatus(v)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, nil
}

type Role string

const (
	RoleHotel Role = "hotel"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
	// RoleSystem используется фоновыми задачами, например очисткой просроченных отчётов.
	RoleSystem Role = "system"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleHotel, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

func NewRole(role string) (Role, error) {
	r := Role(role)
	if !r.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректная роль пользователя")
	}
	return r, nil
}

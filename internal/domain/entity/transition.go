package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

// Transition описывает условное обновление строки отчёта: ожидаемое состояние
// и новое значение статуса с исполнителем.
type Transition struct {
	From       []valueobject.ReportStatus
	Holder     *uuid.UUID
	Unassigned bool

	To    valueobject.ReportStatus
	Agent *uuid.UUID
}

// Matches проверяет, что отчёт находится в ожидаемом состоянии.
func (t Transition) Matches(r *FoodReport) bool {
	matched := false
	for _, s := range t.From {
		if r.Status == s {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if t.Unassigned && r.AssignedAgentID != nil {
		return false
	}
	if t.Holder != nil && !r.IsAssignedTo(*t.Holder) {
		return false
	}
	return true
}

// Reached проверяет, что отчёт уже находится в целевом состоянии перехода.
func (t Transition) Reached(r *FoodReport) bool {
	if r.Status != t.To {
		return false
	}
	if t.Agent == nil {
		return r.AssignedAgentID == nil
	}
	return r.IsAssignedTo(*t.Agent)
}

func (t Transition) Apply(r *FoodReport, at time.Time) {
	r.Status = t.To
	if t.Agent != nil {
		agent := *t.Agent
		r.AssignedAgentID = &agent
	} else {
		r.AssignedAgentID = nil
		r.AgentName = nil
	}
	r.UpdatedAt = at
}

package entity

import (
	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

// Actor - пользователь или фоновая задача, от имени которой выполняется операция.
type Actor struct {
	UserID uuid.UUID
	Role   valueobject.Role
}

func SystemActor() Actor {
	return Actor{UserID: uuid.Nil, Role: valueobject.RoleSystem}
}

func (a Actor) IsAdmin() bool {
	return a.Role == valueobject.RoleAdmin || a.Role == valueobject.RoleSystem
}

// CanManage разрешает управление отчётом его отелю и администраторам.
func (a Actor) CanManage(r *FoodReport) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Role == valueobject.RoleHotel && r.IsOwnedBy(a.UserID)
}

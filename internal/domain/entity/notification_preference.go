package entity

import (
	"time"

	"github.com/google/uuid"
)

type NotificationPreference struct {
	UserID        uuid.UUID
	NewTasks      bool
	StatusUpdates bool
	UrgentTasks   bool
	Sound         bool
	Vibration     bool
	UpdatedAt     time.Time
}

// DefaultNotificationPreference возвращает настройки, при которых включены все уведомления.
func DefaultNotificationPreference(userID uuid.UUID) *NotificationPreference {
	return &NotificationPreference{
		UserID:        userID,
		NewTasks:      true,
		StatusUpdates: true,
		UrgentTasks:   true,
		Sound:         true,
		Vibration:     true,
	}
}

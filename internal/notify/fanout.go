package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/event"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/scoring"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
)

// Fanout превращает событие изменения отчёта в уведомления для подписчиков.
type Fanout struct {
	registry *Registry
	clock    func() time.Time
}

func NewFanout(registry *Registry, clock func() time.Time) *Fanout {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Fanout{registry: registry, clock: clock}
}

// OnChange возвращает уведомления в порядке идентификаторов получателей.
func (f *Fanout) OnChange(c event.Change) []Delivery {
	if c.Table != event.TableFoodReports || c.New == nil {
		return nil
	}

	at := c.At
	if at.IsZero() {
		at = f.clock()
	}

	switch c.Op {
	case event.OpInsert:
		return f.onInsert(c, at)
	case event.OpUpdate:
		return f.onUpdate(c, at)
	}
	return nil
}

func (f *Fanout) onInsert(c event.Change, at time.Time) []Delivery {
	r := c.New
	if r.Status != valueobject.ReportStatusNew {
		return nil
	}

	urgency := scoring.Urgency(r, at)
	title, message := newTaskText(r, urgency)

	var deliveries []Delivery
	for _, sub := range f.registry.Snapshot() {
		if !receivesNewTasks(sub, r) {
			continue
		}
		pref := sub.Preferences
		// срочные заявки проходят только через urgent_tasks, остальные через new_tasks
		if urgency == valueobject.UrgencyUrgent {
			if !pref.UrgentTasks {
				continue
			}
		} else if !pref.NewTasks {
			continue
		}

		alert := baseAlert(KindNewTask, c.ID, r, urgency, at)
		alert.Title, alert.Message = title, message
		alert.Effects = effects(pref)
		deliveries = append(deliveries, Delivery{UserID: sub.UserID, Role: sub.Role, Alert: alert})
	}
	return deliveries
}

func (f *Fanout) onUpdate(c event.Change, at time.Time) []Delivery {
	if !c.StatusChanged() {
		return nil
	}
	old, r := c.Old, c.New
	urgency := scoring.Urgency(r, at)
	holder := holderOf(old, r)
	leftPool := old.Status == valueobject.ReportStatusNew && r.Status != valueobject.ReportStatusNew

	var deliveries []Delivery
	for _, sub := range f.registry.Snapshot() {
		switch {
		case isInterested(sub, r, holder):
			if !sub.Preferences.StatusUpdates {
				continue
			}
			alert := baseAlert(KindTaskStatus, c.ID, r, urgency, at)
			alert.PreviousStatus = old.Status
			alert.Title, alert.Message = statusText(old, r)
			alert.Effects = effects(sub.Preferences)
			deliveries = append(deliveries, Delivery{UserID: sub.UserID, Role: sub.Role, Alert: alert})

		case leftPool && sub.Role == valueobject.RoleAgent && sub.InZone(r.Zone):
			// сигнал для синхронизации списка доступных заявок, без звука и без проверки настроек
			alert := baseAlert(KindTaskRemoved, c.ID, r, urgency, at)
			alert.PreviousStatus = old.Status
			alert.Title, alert.Message = removedText(r)
			deliveries = append(deliveries, Delivery{UserID: sub.UserID, Role: sub.Role, Alert: alert})
		}
	}
	return deliveries
}

func receivesNewTasks(sub Subscriber, r *entity.FoodReport) bool {
	switch sub.Role {
	case valueobject.RoleAdmin:
		return true
	case valueobject.RoleAgent:
		return sub.Active && sub.InZone(r.Zone)
	}
	return false
}

func isInterested(sub Subscriber, r *entity.FoodReport, holder *uuid.UUID) bool {
	switch sub.Role {
	case valueobject.RoleAdmin:
		return true
	case valueobject.RoleHotel:
		return r.IsOwnedBy(sub.UserID)
	case valueobject.RoleAgent:
		return holder != nil && *holder == sub.UserID
	}
	return false
}

// holderOf возвращает курьера, державшего заявку: при отмене назначение сбрасывается,
// но прежний курьер должен узнать об этом.
func holderOf(old, updated *entity.FoodReport) *uuid.UUID {
	if updated.AssignedAgentID != nil {
		return updated.AssignedAgentID
	}
	return old.AssignedAgentID
}

func effects(pref entity.NotificationPreference) Effects {
	return Effects{Sound: pref.Sound, Vibration: pref.Vibration}
}

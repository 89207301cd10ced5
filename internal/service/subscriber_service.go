package service

import (
	"context"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

// SubscriberService собирает данные подписчика уведомлений из профиля и настроек.
type SubscriberService struct {
	agents      repository.AgentRepository
	hotels      repository.HotelRepository
	preferences repository.PreferenceRepository
}

func NewSubscriberService(agents repository.AgentRepository, hotels repository.HotelRepository, preferences repository.PreferenceRepository) *SubscriberService {
	return &SubscriberService{agents: agents, hotels: hotels, preferences: preferences}
}

// Load возвращает подписчика. Пользователь без профиля подписывается без зоны,
// курьер без профиля считается неактивным.
func (s *SubscriberService) Load(ctx context.Context, actor entity.Actor) (notify.Subscriber, error) {
	pref, err := s.preferences.Get(ctx, actor.UserID)
	if err != nil {
		return notify.Subscriber{}, err
	}
	sub := notify.Subscriber{
		UserID:      actor.UserID,
		Role:        actor.Role,
		Preferences: *pref,
	}

	switch actor.Role {
	case valueobject.RoleAgent:
		agent, err := s.agents.GetByID(ctx, actor.UserID)
		if err != nil && !apperror.IsNotFound(err) {
			return notify.Subscriber{}, err
		}
		if agent != nil {
			sub.Zone = agent.Zone
			sub.Active = agent.Active
		}
	case valueobject.RoleHotel:
		hotel, err := s.hotels.GetByID(ctx, actor.UserID)
		if err != nil && !apperror.IsNotFound(err) {
			return notify.Subscriber{}, err
		}
		if hotel != nil {
			sub.Zone = hotel.Zone
		}
	}
	return sub, nil
}

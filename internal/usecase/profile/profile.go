package profile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

// SubscriberUpdater получает новую зону и активность пользователя, пока он подключён.
type SubscriberUpdater interface {
	UpdateProfile(userID uuid.UUID, zone string, active bool)
}

type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

type GetHotelProfileUseCase struct {
	hotels repository.HotelRepository
}

func NewGetHotelProfileUseCase(hotels repository.HotelRepository) *GetHotelProfileUseCase {
	return &GetHotelProfileUseCase{hotels: hotels}
}

func (uc *GetHotelProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.Hotel, error) {
	return uc.hotels.GetByID(ctx, userID)
}

type UpsertHotelProfileUseCase struct {
	hotels      repository.HotelRepository
	subscribers SubscriberUpdater
	now         clock
}

func NewUpsertHotelProfileUseCase(hotels repository.HotelRepository, subscribers SubscriberUpdater) *UpsertHotelProfileUseCase {
	return &UpsertHotelProfileUseCase{hotels: hotels, subscribers: subscribers, now: utcNow}
}

// Execute создаёт профиль отеля при первом сохранении и обновляет его при последующих.
func (uc *UpsertHotelProfileUseCase) Execute(ctx context.Context, userID uuid.UUID, params entity.HotelProfileParams) (*entity.Hotel, error) {
	now := uc.now()
	hotel, err := uc.hotels.GetByID(ctx, userID)
	switch {
	case apperror.IsNotFound(err):
		hotel, err = entity.NewHotel(userID, params, now)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := hotel.Update(params, now); err != nil {
			return nil, err
		}
	}

	if err := uc.hotels.Upsert(ctx, hotel); err != nil {
		return nil, err
	}
	if uc.subscribers != nil {
		uc.subscribers.UpdateProfile(hotel.ID, hotel.Zone, true)
	}
	return hotel, nil
}

type GetAgentProfileUseCase struct {
	agents repository.AgentRepository
}

func NewGetAgentProfileUseCase(agents repository.AgentRepository) *GetAgentProfileUseCase {
	return &GetAgentProfileUseCase{agents: agents}
}

func (uc *GetAgentProfileUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.DeliveryAgent, error) {
	return uc.agents.GetByID(ctx, userID)
}

type UpsertAgentProfileUseCase struct {
	agents      repository.AgentRepository
	subscribers SubscriberUpdater
	now         clock
}

func NewUpsertAgentProfileUseCase(agents repository.AgentRepository, subscribers SubscriberUpdater) *UpsertAgentProfileUseCase {
	return &UpsertAgentProfileUseCase{agents: agents, subscribers: subscribers, now: utcNow}
}

func (uc *UpsertAgentProfileUseCase) Execute(ctx context.Context, userID uuid.UUID, params entity.AgentProfileParams) (*entity.DeliveryAgent, error) {
	now := uc.now()
	agent, err := uc.agents.GetByID(ctx, userID)
	switch {
	case apperror.IsNotFound(err):
		agent, err = entity.NewDeliveryAgent(userID, params, now)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := agent.Update(params, now); err != nil {
			return nil, err
		}
	}

	if err := uc.agents.Upsert(ctx, agent); err != nil {
		return nil, err
	}
	if uc.subscribers != nil {
		uc.subscribers.UpdateProfile(agent.ID, agent.Zone, agent.Active)
	}
	return agent, nil
}

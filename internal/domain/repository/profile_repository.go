package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
)

type HotelRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Hotel, error)
	Upsert(ctx context.Context, hotel *entity.Hotel) error
	AddFoodSaved(ctx context.Context, id uuid.UUID, servings int) error
}

type AgentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.DeliveryAgent, error)
	GetByTelegramChatID(ctx context.Context, chatID int64) (*entity.DeliveryAgent, error)
	ListLinkedToTelegram(ctx context.Context) ([]*entity.DeliveryAgent, error)
	Upsert(ctx context.Context, agent *entity.DeliveryAgent) error
	LinkTelegram(ctx context.Context, id uuid.UUID, chatID int64) error
	IncrementDeliveries(ctx context.Context, id uuid.UUID) error
}

type NeedyPersonRepository interface {
	Create(ctx context.Context, person *entity.NeedyPerson) error
	CreateBatch(ctx context.Context, persons []*entity.NeedyPerson) error
	List(ctx context.Context, zone string, limit int) ([]*entity.NeedyPerson, error)
}

type PreferenceRepository interface {
	// Get возвращает настройки по умолчанию, если пользователь их не сохранял.
	Get(ctx context.Context, userID uuid.UUID) (*entity.NotificationPreference, error)
	Save(ctx context.Context, pref *entity.NotificationPreference) error
}

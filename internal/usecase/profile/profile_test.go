package profile_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/usecase/profile"
)

type mockHotels struct {
	hotels map[uuid.UUID]*entity.Hotel
}

func (m *mockHotels) GetByID(_ context.Context, id uuid.UUID) (*entity.Hotel, error) {
	h, ok := m.hotels[id]
	if !ok {
		return nil, apperror.ErrHotelNotFound
	}
	copied := *h
	return &copied, nil
}

func (m *mockHotels) Upsert(_ context.Context, h *entity.Hotel) error {
	copied := *h
	m.hotels[h.ID] = &copied
	return nil
}

func (m *mockHotels) AddFoodSaved(context.Context, uuid.UUID, int) error { return nil }

type mockAgents struct {
	agents map[uuid.UUID]*entity.DeliveryAgent
}

func (m *mockAgents) GetByID(_ context.Context, id uuid.UUID) (*entity.DeliveryAgent, error) {
	a, ok := m.agents[id]
	if !ok {
		return nil, apperror.ErrAgentNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAgents) GetByTelegramChatID(context.Context, int64) (*entity.DeliveryAgent, error) {
	return nil, apperror.ErrAgentNotFound
}

func (m *mockAgents) ListLinkedToTelegram(context.Context) ([]*entity.DeliveryAgent, error) {
	return nil, nil
}

func (m *mockAgents) Upsert(_ context.Context, a *entity.DeliveryAgent) error {
	copied := *a
	m.agents[a.ID] = &copied
	return nil
}

func (m *mockAgents) LinkTelegram(context.Context, uuid.UUID, int64) error { return nil }

func (m *mockAgents) IncrementDeliveries(context.Context, uuid.UUID) error { return nil }

type recordedProfile struct {
	zone   string
	active bool
}

type recordingUpdater map[uuid.UUID]recordedProfile

func (r recordingUpdater) UpdateProfile(userID uuid.UUID, zone string, active bool) {
	r[userID] = recordedProfile{zone: zone, active: active}
}

func TestUpsertHotelProfile(t *testing.T) {
	repo := &mockHotels{hotels: map[uuid.UUID]*entity.Hotel{}}
	updates := recordingUpdater{}
	uc := profile.NewUpsertHotelProfileUseCase(repo, updates)
	userID := uuid.New()

	created, err := uc.Execute(context.Background(), userID, entity.HotelProfileParams{Name: "Гранд", Address: "Тверская, 1", Zone: "center"})
	require.NoError(t, err)
	assert.Equal(t, userID, created.ID)

	lat := 55.7
	_, err = uc.Execute(context.Background(), userID, entity.HotelProfileParams{Name: "Гранд", Address: "Тверская, 1", Latitude: &lat})
	assert.True(t, apperror.IsValidation(err))

	updated, err := uc.Execute(context.Background(), userID, entity.HotelProfileParams{Name: "Гранд Отель", Address: "Тверская, 1", Zone: "north"})
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := profile.NewGetHotelProfileUseCase(repo).Execute(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Гранд Отель", got.Name)
	assert.Equal(t, recordedProfile{zone: "north", active: true}, updates[userID])
}

func TestUpsertAgentProfile(t *testing.T) {
	repo := &mockAgents{agents: map[uuid.UUID]*entity.DeliveryAgent{}}
	updates := recordingUpdater{}
	uc := profile.NewUpsertAgentProfileUseCase(repo, updates)
	userID := uuid.New()

	created, err := uc.Execute(context.Background(), userID, entity.AgentProfileParams{DisplayName: "Анна", Zone: "center"})
	require.NoError(t, err)
	assert.True(t, created.Active)

	off := false
	updated, err := uc.Execute(context.Background(), userID, entity.AgentProfileParams{DisplayName: "Анна", Zone: "center", Active: &off})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, recordedProfile{zone: "center", active: false}, updates[userID])

	_, err = profile.NewGetAgentProfileUseCase(repo).Execute(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

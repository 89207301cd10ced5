package report_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
)

type mockReportRepository struct {
	mu      sync.Mutex
	reports map[uuid.UUID]*entity.FoodReport

	// failNextUpdate имитирует потерянный ответ: запись применяется, но возвращается ошибка.
	failNextUpdate error
	applyOnFailure bool
	// onFailure меняет строку вместо потерянной записи, например от имени другого курьера.
	onFailure func(r *entity.FoodReport)
	updates   int
}

func newMockReportRepository() *mockReportRepository {
	return &mockReportRepository{reports: make(map[uuid.UUID]*entity.FoodReport)}
}

func clone(r *entity.FoodReport) *entity.FoodReport {
	c := *r
	if r.AssignedAgentID != nil {
		id := *r.AssignedAgentID
		c.AssignedAgentID = &id
	}
	return &c
}

func (m *mockReportRepository) Insert(ctx context.Context, r *entity.FoodReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = clone(r)
	return nil
}

func (m *mockReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.FoodReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[id]; ok {
		return clone(r), nil
	}
	return nil, apperror.ErrReportNotFound
}

func (m *mockReportRepository) ListAvailable(ctx context.Context, filter repository.AvailableFilter) ([]*entity.FoodReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.FoodReport
	for _, r := range m.reports {
		if !r.IsAvailable() {
			continue
		}
		if filter.Zone != "" && r.Zone != "" && r.Zone != filter.Zone {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.ExpiredBefore != nil && !r.IsExpired(*filter.ExpiredBefore) {
			continue
		}
		result = append(result, clone(r))
	}
	return result, nil
}

func (m *mockReportRepository) ListForAgent(ctx context.Context, agentID uuid.UUID, statuses []valueobject.ReportStatus) ([]*entity.FoodReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.FoodReport
	for _, r := range m.reports {
		if r.IsAssignedTo(agentID) && hasStatus(statuses, r.Status) {
			result = append(result, clone(r))
		}
	}
	return result, nil
}

func (m *mockReportRepository) ListForHotel(ctx context.Context, hotelID uuid.UUID, statuses []valueobject.ReportStatus) ([]*entity.FoodReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*entity.FoodReport
	for _, r := range m.reports {
		if r.HotelID == hotelID && hasStatus(statuses, r.Status) {
			result = append(result, clone(r))
		}
	}
	return result, nil
}

func (m *mockReportRepository) ConditionalUpdate(ctx context.Context, id uuid.UUID, t entity.Transition, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++

	r, ok := m.reports[id]
	if m.failNextUpdate != nil {
		err := m.failNextUpdate
		m.failNextUpdate = nil
		if ok && m.applyOnFailure && t.Matches(r) {
			t.Apply(r, at)
		}
		if ok && m.onFailure != nil {
			m.onFailure(r)
		}
		return false, err
	}
	if !ok || !t.Matches(r) {
		return false, nil
	}
	t.Apply(r, at)
	return true, nil
}

func hasStatus(statuses []valueobject.ReportStatus, s valueobject.ReportStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

type mockHotelRepository struct {
	mu     sync.Mutex
	hotels map[uuid.UUID]*entity.Hotel
}

func newMockHotelRepository(hotels ...*entity.Hotel) *mockHotelRepository {
	m := &mockHotelRepository{hotels: make(map[uuid.UUID]*entity.Hotel)}
	for _, h := range hotels {
		m.hotels[h.ID] = h
	}
	return m
}

func (m *mockHotelRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Hotel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.hotels[id]; ok {
		return h, nil
	}
	return nil, apperror.ErrHotelNotFound
}

func (m *mockHotelRepository) Upsert(ctx context.Context, h *entity.Hotel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotels[h.ID] = h
	return nil
}

func (m *mockHotelRepository) AddFoodSaved(ctx context.Context, id uuid.UUID, servings int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.hotels[id]
	if !ok {
		return apperror.ErrHotelNotFound
	}
	h.FoodSaved += servings
	return nil
}

type mockAgentRepository struct {
	mu     sync.Mutex
	agents map[uuid.UUID]*entity.DeliveryAgent
}

func newMockAgentRepository(agents ...*entity.DeliveryAgent) *mockAgentRepository {
	m := &mockAgentRepository{agents: make(map[uuid.UUID]*entity.DeliveryAgent)}
	for _, a := range agents {
		m.agents[a.ID] = a
	}
	return m
}

func (m *mockAgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.DeliveryAgent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.agents[id]; ok {
		return a, nil
	}
	return nil, apperror.ErrAgentNotFound
}

func (m *mockAgentRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*entity.DeliveryAgent, error) {
	return nil, apperror.ErrAgentNotFound
}

func (m *mockAgentRepository) ListLinkedToTelegram(ctx context.Context) ([]*entity.DeliveryAgent, error) {
	return nil, nil
}

func (m *mockAgentRepository) Upsert(ctx context.Context, a *entity.DeliveryAgent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[a.ID] = a
	return nil
}

func (m *mockAgentRepository) LinkTelegram(ctx context.Context, id uuid.UUID, chatID int64) error {
	return nil
}

func (m *mockAgentRepository) IncrementDeliveries(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[id]
	if !ok {
		return apperror.ErrAgentNotFound
	}
	a.Deliveries++
	return nil
}

var errConnectionReset = errors.New("connection reset by peer")

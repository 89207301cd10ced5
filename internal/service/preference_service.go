package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/notify"
)

// UpdatePreferencesInput - частичное обновление: nil поля не меняются.
type UpdatePreferencesInput struct {
	NewTasks      *bool `json:"new_tasks"`
	StatusUpdates *bool `json:"status_updates"`
	UrgentTasks   *bool `json:"urgent_tasks"`
	Sound         *bool `json:"sound"`
	Vibration     *bool `json:"vibration"`
}

// PreferenceService хранит настройки уведомлений и сразу применяет их к активным подпискам.
type PreferenceService struct {
	repo     repository.PreferenceRepository
	registry *notify.Registry
	clock    func() time.Time
}

func NewPreferenceService(repo repository.PreferenceRepository, registry *notify.Registry) *PreferenceService {
	return &PreferenceService{
		repo:     repo,
		registry: registry,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *PreferenceService) Get(ctx context.Context, userID uuid.UUID) (*entity.NotificationPreference, error) {
	return s.repo.Get(ctx, userID)
}

func (s *PreferenceService) Update(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*entity.NotificationPreference, error) {
	pref, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	apply(&pref.NewTasks, input.NewTasks)
	apply(&pref.StatusUpdates, input.StatusUpdates)
	apply(&pref.UrgentTasks, input.UrgentTasks)
	apply(&pref.Sound, input.Sound)
	apply(&pref.Vibration, input.Vibration)
	pref.UpdatedAt = s.clock()

	if err := s.repo.Save(ctx, pref); err != nil {
		return nil, err
	}
	if s.registry != nil {
		s.registry.UpdatePreferences(*pref)
	}
	return pref, nil
}

func apply(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}

package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/repository/common"
)

type PreferenceRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.PreferenceRepository = (*PreferenceRepositoryAdapter)(nil)

func NewPreferenceRepositoryAdapter(db *sqlx.DB) *PreferenceRepositoryAdapter {
	return &PreferenceRepositoryAdapter{db: db}
}

func (r *PreferenceRepositoryAdapter) Get(ctx context.Context, userID uuid.UUID) (*entity.NotificationPreference, error) {
	row, err := common.GetOne[preferenceRow](ctx, r.db, `
		SELECT user_id, new_tasks, status_updates, urgent_tasks, sound, vibration, updated_at
		FROM notification_preferences
		WHERE user_id = ?
	`, errPreferencesMissing, userID)
	if err == errPreferencesMissing {
		return entity.DefaultNotificationPreference(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *PreferenceRepositoryAdapter) Save(ctx context.Context, pref *entity.NotificationPreference) error {
	if pref.UpdatedAt.IsZero() {
		pref.UpdatedAt = time.Now().UTC()
	}
	query := r.db.Rebind(`
		INSERT INTO notification_preferences (user_id, new_tasks, status_updates, urgent_tasks, sound, vibration, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			new_tasks = excluded.new_tasks,
			status_updates = excluded.status_updates,
			urgent_tasks = excluded.urgent_tasks,
			sound = excluded.sound,
			vibration = excluded.vibration,
			updated_at = excluded.updated_at
	`)
	_, err := r.db.ExecContext(ctx, query,
		pref.UserID,
		pref.NewTasks,
		pref.StatusUpdates,
		pref.UrgentTasks,
		pref.Sound,
		pref.Vibration,
		pref.UpdatedAt.UTC(),
	)
	return common.WrapDBError(err, nil, "не удалось сохранить настройки уведомлений")
}

var errPreferencesMissing = apperror.New(apperror.ErrCodeNotFound, "настройки уведомлений не сохранены")

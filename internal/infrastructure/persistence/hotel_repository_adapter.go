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

type HotelRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.HotelRepository = (*HotelRepositoryAdapter)(nil)

func NewHotelRepositoryAdapter(db *sqlx.DB) *HotelRepositoryAdapter {
	return &HotelRepositoryAdapter{db: db}
}

func (r *HotelRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*entity.Hotel, error) {
	row, err := common.GetOne[hotelRow](ctx, r.db, `
		SELECT id, name, address, city, zone, phone, latitude, longitude, food_saved, created_at, updated_at
		FROM hotels
		WHERE id = ?
	`, apperror.ErrHotelNotFound, id)
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *HotelRepositoryAdapter) Upsert(ctx context.Context, hotel *entity.Hotel) error {
	query := r.db.Rebind(`
		INSERT INTO hotels (id, name, address, city, zone, phone, latitude, longitude, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			city = excluded.city,
			zone = excluded.zone,
			phone = excluded.phone,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			updated_at = excluded.updated_at
	`)

	_, err := r.db.ExecContext(ctx, query,
		hotel.ID,
		hotel.Name,
		hotel.Address,
		hotel.City,
		hotel.Zone,
		hotel.Phone,
		hotel.Latitude,
		hotel.Longitude,
		hotel.CreatedAt.UTC(),
		hotel.UpdatedAt.UTC(),
	)
	return common.WrapDBError(err, nil, "не удалось сохранить профиль отеля")
}

func (r *HotelRepositoryAdapter) AddFoodSaved(ctx context.Context, id uuid.UUID, servings int) error {
	query := r.db.Rebind(`UPDATE hotels SET food_saved = food_saved + ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, servings, time.Now().UTC(), id)
	if err != nil {
		return common.WrapDBError(err, nil, "не удалось обновить счётчик отеля")
	}
	return requireRow(res, apperror.ErrHotelNotFound)
}

package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/valueobject"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/repository/common"
)

const reportSelect = `
	SELECT r.id, r.hotel_id, r.food_name, r.category, r.quantity, r.pickup_available_from,
	       r.expiry_at, r.description, r.image_url, r.status, r.assigned_agent_id, r.zone,
	       r.created_at, r.updated_at,
	       h.name AS hotel_name, h.address AS hotel_address,
	       h.latitude AS hotel_latitude, h.longitude AS hotel_longitude,
	       a.display_name AS agent_name
	FROM food_reports r
	JOIN hotels h ON h.id = r.hotel_id
	LEFT JOIN delivery_agents a ON a.id = r.assigned_agent_id
`

// FoodReportRepositoryAdapter работает и с PostgreSQL, и с SQLite: запросы пишутся
// с плейсхолдерами "?" и переводятся в синтаксис драйвера через Rebind.
type FoodReportRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.FoodReportRepository = (*FoodReportRepositoryAdapter)(nil)

func NewFoodReportRepositoryAdapter(db *sqlx.DB) *FoodReportRepositoryAdapter {
	return &FoodReportRepositoryAdapter{db: db}
}

func (r *FoodReportRepositoryAdapter) Insert(ctx context.Context, report *entity.FoodReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	query := r.db.Rebind(`
		INSERT INTO food_reports (id, hotel_id, food_name, category, quantity, pickup_available_from,
		                          expiry_at, description, image_url, status, assigned_agent_id, zone,
		                          created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := r.db.ExecContext(ctx, query,
		report.ID,
		report.HotelID,
		report.FoodName,
		string(report.Category),
		report.Quantity,
		report.PickupAvailableFrom.UTC(),
		utcPtr(report.ExpiryAt),
		report.Description,
		report.ImageURL,
		string(report.Status),
		report.AssignedAgentID,
		report.Zone,
		report.CreatedAt.UTC(),
		report.UpdatedAt.UTC(),
	)
	return common.WrapDBError(err, nil, "не удалось сохранить отчёт")
}

func (r *FoodReportRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*entity.FoodReport, error) {
	row, err := common.GetOne[FoodReportRow](ctx, r.db, reportSelect+` WHERE r.id = ?`, apperror.ErrReportNotFound, id)
	if err != nil {
		return nil, err
	}
	return row.ToEntity(), nil
}

func (r *FoodReportRepositoryAdapter) ListAvailable(ctx context.Context, filter repository.AvailableFilter) ([]*entity.FoodReport, error) {
	query := reportSelect + ` WHERE r.status = ? AND r.assigned_agent_id IS NULL`
	args := []interface{}{string(valueobject.ReportStatusNew)}

	if filter.Zone != "" {
		query += ` AND (r.zone = ? OR r.zone = '')`
		args = append(args, filter.Zone)
	}
	if filter.Category != "" {
		query += ` AND r.category = ?`
		args = append(args, string(filter.Category))
	}
	if filter.ExpiredBefore != nil {
		query += ` AND r.expiry_at IS NOT NULL AND r.expiry_at <= ?`
		args = append(args, filter.ExpiredBefore.UTC())
	}

	query += ` ORDER BY r.created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	return r.list(ctx, query, args...)
}

func (r *FoodReportRepositoryAdapter) ListForAgent(ctx context.Context, agentID uuid.UUID, statuses []valueobject.ReportStatus) ([]*entity.FoodReport, error) {
	query := reportSelect + ` WHERE r.assigned_agent_id = ?`
	args := []interface{}{agentID}
	query, args = withStatuses(query, args, "r.status", statuses)
	return r.list(ctx, query+` ORDER BY r.updated_at DESC`, args...)
}

func (r *FoodReportRepositoryAdapter) ListForHotel(ctx context.Context, hotelID uuid.UUID, statuses []valueobject.ReportStatus) ([]*entity.FoodReport, error) {
	query := reportSelect + ` WHERE r.hotel_id = ?`
	args := []interface{}{hotelID}
	query, args = withStatuses(query, args, "r.status", statuses)
	return r.list(ctx, query+` ORDER BY r.created_at DESC`, args...)
}

// ConditionalUpdate выполняет UPDATE ... WHERE id = ? AND status IN (...) [AND исполнитель].
// Строку меняет не более одного из конкурирующих вызовов: проигравший получает 0 строк.
func (r *FoodReportRepositoryAdapter) ConditionalUpdate(ctx context.Context, id uuid.UUID, t entity.Transition, at time.Time) (bool, error) {
	if len(t.From) == 0 {
		return false, apperror.New(apperror.ErrCodeInternal, "переход без ожидаемого статуса")
	}

	query := `UPDATE food_reports SET status = ?, assigned_agent_id = ?, updated_at = ? WHERE id = ?`
	args := []interface{}{string(t.To), t.Agent, at.UTC(), id}

	query, args = withStatuses(query, args, "status", t.From)
	if t.Unassigned {
		query += ` AND assigned_agent_id IS NULL`
	}
	if t.Holder != nil {
		query += ` AND assigned_agent_id = ?`
		args = append(args, *t.Holder)
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return false, common.WrapDBError(err, nil, "не удалось обновить статус отчёта")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, common.WrapDBError(err, nil, "не удалось проверить результат обновления")
	}
	return rows > 0, nil
}

func (r *FoodReportRepositoryAdapter) list(ctx context.Context, query string, args ...interface{}) ([]*entity.FoodReport, error) {
	var rows []FoodReportRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, common.WrapDBError(err, nil, "не удалось получить отчёты")
	}

	reports := make([]*entity.FoodReport, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, row.ToEntity())
	}
	return reports, nil
}

func withStatuses(query string, args []interface{}, column string, statuses []valueobject.ReportStatus) (string, []interface{}) {
	if len(statuses) == 0 {
		return query, args
	}
	query += ` AND ` + column + ` IN (` + common.In(len(statuses)) + `)`
	for _, s := range statuses {
		args = append(args, string(s))
	}
	return query, args
}

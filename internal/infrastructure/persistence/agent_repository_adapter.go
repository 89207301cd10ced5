package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/pkg/apperror"
	"github.com/ignatzorin/foodrescue-backend/internal/repository/common"
)

const agentSelect = `
	SELECT id, display_name, phone, zone, active, deliveries, rating, telegram_chat_id, created_at, updated_at
	FROM delivery_agents
`

type AgentRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.AgentRepository = (*AgentRepositoryAdapter)(nil)

func NewAgentRepositoryAdapter(db *sqlx.DB) *AgentRepositoryAdapter {
	return &AgentRepositoryAdapter{db: db}
}

func (r *AgentRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*entity.DeliveryAgent, error) {
	row, err := common.GetOne[agentRow](ctx, r.db, agentSelect+` WHERE id = ?`, apperror.ErrAgentNotFound, id)
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *AgentRepositoryAdapter) GetByTelegramChatID(ctx context.Context, chatID int64) (*entity.DeliveryAgent, error) {
	row, err := common.GetOne[agentRow](ctx, r.db, agentSelect+` WHERE telegram_chat_id = ?`, apperror.ErrAgentNotFound, chatID)
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *AgentRepositoryAdapter) ListLinkedToTelegram(ctx context.Context) ([]*entity.DeliveryAgent, error) {
	var rows []agentRow
	if err := r.db.SelectContext(ctx, &rows, agentSelect+` WHERE telegram_chat_id IS NOT NULL`); err != nil {
		return nil, common.WrapDBError(err, nil, "не удалось получить курьеров")
	}

	agents := make([]*entity.DeliveryAgent, 0, len(rows))
	for _, row := range rows {
		agents = append(agents, row.toEntity())
	}
	return agents, nil
}

func (r *AgentRepositoryAdapter) Upsert(ctx context.Context, agent *entity.DeliveryAgent) error {
	query := r.db.Rebind(`
		INSERT INTO delivery_agents (id, display_name, phone, zone, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			display_name = excluded.display_name,
			phone = excluded.phone,
			zone = excluded.zone,
			active = excluded.active,
			updated_at = excluded.updated_at
	`)

	_, err := r.db.ExecContext(ctx, query,
		agent.ID,
		agent.DisplayName,
		agent.Phone,
		agent.Zone,
		agent.Active,
		agent.CreatedAt.UTC(),
		agent.UpdatedAt.UTC(),
	)
	return common.WrapDBError(err, nil, "не удалось сохранить профиль курьера")
}

// LinkTelegram привязывает чат к курьеру. Чат, ранее привязанный к другому курьеру, отвязывается.
func (r *AgentRepositoryAdapter) LinkTelegram(ctx context.Context, id uuid.UUID, chatID int64) error {
	return common.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE delivery_agents SET telegram_chat_id = NULL, updated_at = ? WHERE telegram_chat_id = ? AND id <> ?`), now, chatID, id); err != nil {
			return common.WrapDBError(err, nil, "не удалось отвязать чат")
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE delivery_agents SET telegram_chat_id = ?, updated_at = ? WHERE id = ?`), chatID, now, id)
		if err != nil {
			return common.WrapDBError(err, nil, "не удалось привязать чат")
		}
		return requireRow(res, apperror.ErrAgentNotFound)
	})
}

func (r *AgentRepositoryAdapter) IncrementDeliveries(ctx context.Context, id uuid.UUID) error {
	query := r.db.Rebind(`UPDATE delivery_agents SET deliveries = deliveries + 1, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return common.WrapDBError(err, nil, "не удалось обновить счётчик доставок")
	}
	return requireRow(res, apperror.ErrAgentNotFound)
}

func requireRow(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return common.WrapDBError(err, nil, "не удалось проверить результат обновления")
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

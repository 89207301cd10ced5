package persistence

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/foodrescue-backend/internal/domain/entity"
	"github.com/ignatzorin/foodrescue-backend/internal/domain/repository"
	"github.com/ignatzorin/foodrescue-backend/internal/repository/common"
)

type NeedyPersonRepositoryAdapter struct {
	db *sqlx.DB
}

var _ repository.NeedyPersonRepository = (*NeedyPersonRepositoryAdapter)(nil)

func NewNeedyPersonRepositoryAdapter(db *sqlx.DB) *NeedyPersonRepositoryAdapter {
	return &NeedyPersonRepositoryAdapter{db: db}
}

var needyPersonFields = []string{"id", "name", "phone", "address", "zone", "family_size", "dietary_notes", "registered_by", "created_at"}

var needyPersonColumns = strings.Join(needyPersonFields, ", ")

func (r *NeedyPersonRepositoryAdapter) Create(ctx context.Context, person *entity.NeedyPerson) error {
	query := r.db.Rebind(`INSERT INTO needy_persons (` + needyPersonColumns + `) VALUES (` + common.In(len(needyPersonFields)) + `)`)
	_, err := r.db.ExecContext(ctx, query, needyPersonArgs(person)...)
	return common.WrapDBError(err, nil, "не удалось сохранить получателя")
}

// CreateBatch вставляет получателей пачками в одной транзакции.
func (r *NeedyPersonRepositoryAdapter) CreateBatch(ctx context.Context, persons []*entity.NeedyPerson) error {
	rows := make([][]interface{}, 0, len(persons))
	for _, p := range persons {
		rows = append(rows, needyPersonArgs(p))
	}
	return common.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := common.InsertRows(ctx, tx, "needy_persons", needyPersonFields, rows, 50)
		return common.WrapDBError(err, nil, "не удалось сохранить получателей")
	})
}

func (r *NeedyPersonRepositoryAdapter) List(ctx context.Context, zone string, limit int) ([]*entity.NeedyPerson, error) {
	query := `SELECT ` + needyPersonColumns + ` FROM needy_persons`
	var args []interface{}
	if zone != "" {
		query += ` WHERE zone = ?`
		args = append(args, zone)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var rows []needyPersonRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, common.WrapDBError(err, nil, "не удалось получить список получателей")
	}

	persons := make([]*entity.NeedyPerson, 0, len(rows))
	for _, row := range rows {
		persons = append(persons, row.toEntity())
	}
	return persons, nil
}

func needyPersonArgs(p *entity.NeedyPerson) []interface{} {
	return []interface{}{
		p.ID,
		p.Name,
		p.Phone,
		p.Address,
		p.Zone,
		p.FamilySize,
		p.DietaryNotes,
		p.RegisteredBy,
		p.CreatedAt.UTC(),
	}
}

package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Queryer - *sqlx.DB или *sqlx.Tx.
type Queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// Execer - *sqlx.DB или *sqlx.Tx.
type Execer interface {
	sqlx.ExecerContext
	Rebind(query string) string
}

// GetOne выполняет запрос с плейсхолдерами "?" и сканирует одну строку.
// Отсутствие строки превращается в notFoundErr.
func GetOne[T any](ctx context.Context, db Queryer, query string, notFoundErr error, args ...interface{}) (*T, error) {
	var row T
	if err := sqlx.GetContext(ctx, db, &row, db.Rebind(query), args...); err != nil {
		return nil, WrapDBError(err, notFoundErr, "не удалось выполнить запрос")
	}
	return &row, nil
}

// In возвращает плейсхолдеры "?, ?, ?" для n значений.
func In(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

const defaultChunk = 100

// InsertRows вставляет строки многострочными INSERT по chunk строк.
// Каждая строка должна содержать значение для каждой колонки.
func InsertRows(ctx context.Context, db Execer, table string, columns []string, rows [][]interface{}, chunk int) error {
	if len(rows) == 0 {
		return nil
	}
	if chunk <= 0 {
		chunk = defaultChunk
	}

	head := "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES "
	tuple := "(" + In(len(columns)) + ")"

	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))

		tuples := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*len(columns))
		for i, row := range rows[start:end] {
			if len(row) != len(columns) {
				return fmt.Errorf("%s: строка %d: ожидалось %d значений, получено %d", table, start+i, len(columns), len(row))
			}
			tuples = append(tuples, tuple)
			args = append(args, row...)
		}

		if _, err := db.ExecContext(ctx, db.Rebind(head+strings.Join(tuples, ", ")), args...); err != nil {
			return fmt.Errorf("%s: вставка строк %d-%d: %w", table, start, end-1, err)
		}
	}
	return nil
}

// InTx выполняет fn в транзакции. Ошибка или panic в fn откатывают её.
func InTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return WrapDBError(err, nil, "не удалось открыть транзакцию")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return WrapDBError(err, nil, "не удалось зафиксировать транзакцию")
	}
	committed = true
	return nil
}

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// sqlitePragmas: WAL для чтения во время записи, ожидание блокировки
// и проверка внешних ключей.
var sqlitePragmas = []string{
	"_journal_mode=WAL",
	"_synchronous=NORMAL",
	"_busy_timeout=5000",
	"_foreign_keys=on",
}

// NewSQLite открывает встроенную базу. Для ":memory:" и mode=memory WAL не включается.
func NewSQLite(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, DriverSQLite, withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("sqlite: не удалось открыть базу: %w", err)
	}

	// SQLite допускает одного писателя, поэтому держим одно соединение.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	return conn, nil
}

func withPragmas(dsn string) string {
	inMemory := dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
	var params []string
	for _, p := range sqlitePragmas {
		key := p[:strings.Index(p, "=")]
		if strings.Contains(dsn, key+"=") {
			continue
		}
		if inMemory && key == "_journal_mode" {
			continue
		}
		params = append(params, p)
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

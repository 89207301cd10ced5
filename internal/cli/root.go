// Package cli - команды foodrescue: serve, migrate, seed.
package cli

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/foodrescue-backend/internal/config"
	"github.com/ignatzorin/foodrescue-backend/internal/db"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

// RootOptions - общие флаги всех команд.
type RootOptions struct {
	EnvFile  string
	LogLevel string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "foodrescue",
		Short:         "Сервис спасения еды",
		Long:          "Бэкенд для передачи излишков еды из отелей нуждающимся через курьеров-волонтёров.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "файл с переменными окружения")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "уровень логирования (по умолчанию LOG_LEVEL)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// loadConfig читает конфигурацию и настраивает логгер.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.LoadFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logger.Setup(cfg.LogLevel, cfg.IsProduction())
	return cfg, nil
}

// openMigrated подключается к базе и применяет миграции.
func openMigrated(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, db.Options{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		return nil, err
	}

	fsys, err := db.MigrationsFS(cfg.MigrationsPath, cfg.DBDriver)
	if err == nil {
		err = db.RunMigrations(ctx, conn, fsys)
	}
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("миграции: %w", err)
	}
	return conn, nil
}

func closeDB(conn *sqlx.DB) {
	if err := conn.Close(); err != nil {
		logger.Log.WithError(err).Warn("не удалось закрыть подключение к базе")
	}
}

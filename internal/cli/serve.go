package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/foodrescue-backend/internal/app"
	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

func NewServeCommand(root *RootOptions) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API, WebSocket, рассылку уведомлений и Telegram бота",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if skipMigrations {
				cfg.MigrationsPath = ""
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, err := openMigrated(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeDB(conn)

			application, err := app.New(ctx, cfg, conn)
			if err != nil {
				return err
			}
			defer application.Close()

			logger.Log.WithField("driver", cfg.DBDriver).Info("сервис запускается")
			if err := application.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			logger.Log.Info("сервис остановлен")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "embedded-migrations", false, "игнорировать MIGRATIONS_PATH и применять встроенные миграции")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/ignatzorin/foodrescue-backend/internal/logger"
)

func NewMigrateCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции базы данных",
		Long:  "Применяет ещё не выполненные миграции. Повторный запуск ничего не меняет.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			conn, err := openMigrated(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB(conn)

			logger.Log.WithField("driver", cfg.DBDriver).Info("миграции применены")
			return nil
		},
	}
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/foodrescue-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/foodrescue-backend/internal/service"
)

func NewSeedCommand(root *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Загрузить отели, курьеров, получателей и отчёты из YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			defer f.Close()

			fixtures, err := service.DecodeFixtures(f)
			if err != nil {
				return err
			}

			conn, err := openMigrated(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeDB(conn)

			seeder := service.NewSeedService(
				persistence.NewHotelRepositoryAdapter(conn),
				persistence.NewAgentRepositoryAdapter(conn),
				persistence.NewNeedyPersonRepositoryAdapter(conn),
				persistence.NewFoodReportRepositoryAdapter(conn),
			)
			sum, err := seeder.Seed(cmd.Context(), fixtures)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "отели: %d, курьеры: %d, получатели: %d, отчёты: %d (пропущено %d)\n",
				sum.Hotels, sum.Agents, sum.Needy, sum.Reports, sum.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "fixtures.yaml", "путь к YAML файлу с фикстурами")
	return cmd
}
